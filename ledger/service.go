/*
service.go - Ledger Service: validate, persist, refetch, recompute

PURPOSE:
  The single entry point the presentation layer calls. Every mutation
  follows the same cycle:

    1. Validate and normalize input (no store call on failure)
    2. Persist through the Store
    3. Re-fetch the actor's full transaction set
    4. Re-aggregate balances from that set

  Balances are never patched incrementally. Recomputing from the store
  after each write means an edit that renames a counterparty, flips a
  type or changes a total is always reflected exactly.

ACTOR:
  The authenticated actor is an explicit parameter on every method. An
  empty ActorID is an AuthError; the store scopes every call by it.

STALE REFRESHES:
  Each Refresh takes a generation number per actor. If a newer refresh
  was issued while an older one was waiting on the store, the older one
  returns ErrSuperseded and its result is dropped rather than merged.

FAILURE AFTER WRITE:
  If the write succeeds but the follow-up refresh fails, the mutation
  still succeeds and its View is marked Stale. The caller must Refresh
  before rendering balances again.

SEE ALSO:
  - validate.go: create/update rules
  - balance.go: Aggregate
  - store.go: Store contract
*/
package ledger

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

// View is the materialized state a UI renders after an operation.
type View struct {
	Transactions []Transaction
	Balances     []PharmacyBalance
	Generation   uint64

	// Stale is set when the refresh following a write failed or was
	// superseded. Transactions and Balances are empty in that case.
	Stale bool
}

// =============================================================================
// SERVICE
// =============================================================================

type Service struct {
	store   Store
	logger  *zap.Logger
	now     func() time.Time
	minDate Date

	mu     sync.Mutex
	seq    uint64
	latest map[ActorID]uint64
}

type Option func(*Service)

// WithClock overrides the clock used to decide what "today" is.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithMinDate overrides the earliest accepted transaction date.
func WithMinDate(d Date) Option {
	return func(s *Service) { s.minDate = d }
}

// NewService creates a Service over store. A nil logger falls back to a
// production zap logger.
func NewService(store Store, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger, _ = zap.NewProduction()
	}
	s := &Service{
		store:   store,
		logger:  logger,
		now:     time.Now,
		minDate: MinDate,
		latest:  make(map[ActorID]uint64),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Now reads the service clock.
func (s *Service) Now() time.Time { return s.now() }

func (s *Service) rules() rules {
	return rules{minDate: s.minDate, today: DateOf(s.now())}
}

// =============================================================================
// MUTATIONS
// =============================================================================

// Create validates d, binds it to actor and persists it.
func (s *Service) Create(ctx context.Context, actor ActorID, d Draft) (Transaction, View, error) {
	if actor == "" {
		return Transaction{}, View{}, &AuthError{Op: "create"}
	}

	tx, err := s.rules().normalizeDraft(d)
	if err != nil {
		return Transaction{}, View{}, err
	}
	tx.OwnerID = actor

	stored, err := s.store.Insert(ctx, tx)
	if err != nil {
		return Transaction{}, View{}, s.storeErr("insert", "", err)
	}

	s.logger.Info("transaction created",
		zap.String("transaction_id", string(stored.ID)),
		zap.String("actor_id", string(actor)),
		zap.String("counterparty", stored.Counterparty),
		zap.String("type", string(stored.Type)),
		zap.String("total_value", stored.TotalValue.String()),
	)
	return stored, s.refreshAfterWrite(ctx, actor), nil
}

// Update applies p to the record id owned by actor.
func (s *Service) Update(ctx context.Context, actor ActorID, id TransactionID, p Patch) (Transaction, View, error) {
	if actor == "" {
		return Transaction{}, View{}, &AuthError{Op: "update"}
	}

	r := s.rules()
	if err := r.validatePatch(p); err != nil {
		return Transaction{}, View{}, err
	}

	cur, err := s.store.Get(ctx, actor, id)
	if err != nil {
		return Transaction{}, View{}, s.storeErr("get", id, err)
	}

	next, err := r.applyPatch(cur, p)
	if err != nil {
		return Transaction{}, View{}, err
	}

	stored, err := s.store.Update(ctx, next)
	if err != nil {
		return Transaction{}, View{}, s.storeErr("update", id, err)
	}

	s.logger.Info("transaction updated",
		zap.String("transaction_id", string(id)),
		zap.String("actor_id", string(actor)),
		zap.String("counterparty", stored.Counterparty),
	)
	return stored, s.refreshAfterWrite(ctx, actor), nil
}

// Delete removes the record id owned by actor. Deleting a missing record
// is a NotFoundError, not a no-op.
func (s *Service) Delete(ctx context.Context, actor ActorID, id TransactionID) (View, error) {
	if actor == "" {
		return View{}, &AuthError{Op: "delete"}
	}

	if err := s.store.Delete(ctx, actor, id); err != nil {
		return View{}, s.storeErr("delete", id, err)
	}

	s.logger.Info("transaction deleted",
		zap.String("transaction_id", string(id)),
		zap.String("actor_id", string(actor)),
	)
	return s.refreshAfterWrite(ctx, actor), nil
}

// =============================================================================
// READS
// =============================================================================

// List returns every transaction visible to actor, most recent first.
func (s *Service) List(ctx context.Context, actor ActorID) ([]Transaction, error) {
	if actor == "" {
		return nil, &AuthError{Op: "list"}
	}
	txs, err := s.store.QueryAll(ctx, actor, DefaultOrder)
	if err != nil {
		return nil, s.storeErr("query", "", err)
	}
	if txs == nil {
		txs = []Transaction{}
	}
	return txs, nil
}

// Refresh lists the actor's transactions and aggregates balances. It
// returns ErrSuperseded if another Refresh for the same actor started
// after this one did.
func (s *Service) Refresh(ctx context.Context, actor ActorID) (View, error) {
	if actor == "" {
		return View{}, &AuthError{Op: "refresh"}
	}

	gen := s.issue(actor)
	txs, err := s.List(ctx, actor)
	if err != nil {
		return View{}, err
	}
	if !s.isLatest(actor, gen) {
		return View{}, ErrSuperseded
	}

	return View{
		Transactions: txs,
		Balances:     Aggregate(txs),
		Generation:   gen,
	}, nil
}

func (s *Service) refreshAfterWrite(ctx context.Context, actor ActorID) View {
	v, err := s.Refresh(ctx, actor)
	if err != nil {
		if !IsSuperseded(err) {
			s.logger.Warn("refresh after write failed; view is stale",
				zap.String("actor_id", string(actor)),
				zap.Error(err),
			)
		}
		return View{Stale: true}
	}
	return v
}

func (s *Service) issue(actor ActorID) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	s.latest[actor] = s.seq
	return s.seq
}

func (s *Service) isLatest(actor ActorID, gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest[actor] == gen
}

// storeErr classifies a store failure. ErrNotFound becomes a NotFoundError
// for id; everything else is a PersistenceError.
func (s *Service) storeErr(op string, id TransactionID, err error) error {
	if errors.Is(err, ErrNotFound) {
		return &NotFoundError{ID: id}
	}
	s.logger.Error("store call failed",
		zap.String("op", op),
		zap.String("transaction_id", string(id)),
		zap.Error(err),
	)
	return &PersistenceError{Op: op, Err: err}
}
