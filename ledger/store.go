/*
store.go - Interfaces the ledger consumes

PURPOSE:
  Defines the boundary between the ledger core and the outside world:
  the transactional data store that holds records, and the identity
  provider that says who is calling.

OWNERSHIP:
  Every read and write is scoped to an owner. A record that exists but
  belongs to someone else is indistinguishable from a missing one:
  both come back as ErrNotFound.

ATOMICITY:
  The core relies on the store's per-record atomicity. There is no
  in-process locking and no conflict detection across sessions; the
  last write wins.

IMPLEMENTATIONS:
  - store/sqlite/sqlite.go: SQLite
  - ledger/store/memory.go: in-memory for tests and local runs

SEE ALSO:
  - service.go: the only caller of Store
*/
package ledger

import "context"

// =============================================================================
// STORE - Transaction persistence
// =============================================================================

type Store interface {
	// Insert persists a new record. The store assigns ID, CreatedAt and
	// UpdatedAt and returns the stored record.
	Insert(ctx context.Context, tx Transaction) (Transaction, error)

	// Get returns one record of owner, or ErrNotFound.
	Get(ctx context.Context, owner ActorID, id TransactionID) (Transaction, error)

	// Update replaces the mutable fields of tx.ID for tx.OwnerID and bumps
	// UpdatedAt. ID, OwnerID and CreatedAt are never written. Returns
	// ErrNotFound if the record is gone.
	Update(ctx context.Context, tx Transaction) (Transaction, error)

	// Delete removes one record of owner, or returns ErrNotFound.
	Delete(ctx context.Context, owner ActorID, id TransactionID) error

	// QueryAll returns every record of owner in the given order.
	QueryAll(ctx context.Context, owner ActorID, order OrderSpec) ([]Transaction, error)
}

// =============================================================================
// ACTOR PROVIDER - Who is calling
// =============================================================================

// ActorProvider resolves the authenticated actor for a request. The Service
// never calls it: the presentation layer resolves the actor once and passes
// it explicitly to every Service method.
type ActorProvider interface {
	CurrentActor(ctx context.Context) (ActorID, bool)
}

// StaticActor is an ActorProvider that always returns the same actor.
// Used by the CLI, where the operator is fixed by a flag.
type StaticActor ActorID

func (a StaticActor) CurrentActor(context.Context) (ActorID, bool) {
	return ActorID(a), a != ""
}
