/*
Package sqlite provides a SQLite-backed implementation of ledger.Store.

PURPOSE:
  Persists transaction records for the ledger. In production the same
  patterns apply to PostgreSQL; only minor SQL dialect differences.

OWNERSHIP:
  Every statement carries `owner_id = ?`. A row owned by another actor
  behaves exactly like a missing row (ledger.ErrNotFound).

NUMERIC STORAGE:
  quantity, unit_price and total_value are stored as TEXT in decimal
  notation so no precision is lost to REAL.

KEY TABLES:
  transactions: one row per exchange

INDEXES:
  - idx_transactions_owner_date: default listing order (hot path)
  - idx_transactions_owner_counterparty: counterparty lookups

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. In production with PostgreSQL,
  database-level concurrency control handles this instead.

USAGE:
  store, err := sqlite.New("./data/ledger.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  svc := ledger.NewService(store, logger)

MIGRATION:
  Schema is auto-migrated on New().

SEE ALSO:
  - ledger/store.go: Interface definition
  - ledger/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/farmacinallis/exchange-ledger/ledger"
)

// Fixed-width so that lexical order in SQL matches chronological order.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store implements ledger.Store using SQLite.
type Store struct {
	db  *sql.DB
	mu  sync.RWMutex
	now func() time.Time
}

type Option func(*Store)

// WithClock sets the clock used for created_at / updated_at.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string, opts ...Option) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		// Each connection would otherwise get its own empty database.
		db.SetMaxOpenConns(1)
	}

	store := &Store{db: db, now: time.Now}
	for _, opt := range opts {
		opt(store)
	}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS transactions (
		id TEXT PRIMARY KEY,
		transaction_date TEXT NOT NULL,
		transaction_type TEXT NOT NULL CHECK (transaction_type IN ('purchase', 'sale')),
		counterparty_name TEXT NOT NULL,
		material_name TEXT NOT NULL,
		quantity TEXT NOT NULL,
		unit_price TEXT NOT NULL,
		total_value TEXT NOT NULL,
		owner_id TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_transactions_owner_date
		ON transactions(owner_id, transaction_date DESC, created_at DESC);

	CREATE INDEX IF NOT EXISTS idx_transactions_owner_counterparty
		ON transactions(owner_id, counterparty_name);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// TRANSACTION STORE (ledger.Store interface)
// =============================================================================

const selectColumns = `
	SELECT id, transaction_date, transaction_type, counterparty_name, material_name,
	       quantity, unit_price, total_value, owner_id, created_at, updated_at
	FROM transactions
`

// Insert adds a transaction and returns it with ID and timestamps set.
func (s *Store) Insert(ctx context.Context, tx ledger.Transaction) (ledger.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	tx.ID = ledger.TransactionID(uuid.NewString())
	tx.CreatedAt = now
	tx.UpdatedAt = now

	query := `
		INSERT INTO transactions
		(id, transaction_date, transaction_type, counterparty_name, material_name,
		 quantity, unit_price, total_value, owner_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		tx.ID,
		tx.Date.String(),
		tx.Type,
		tx.Counterparty,
		tx.Material,
		tx.Quantity.String(),
		tx.UnitPrice.String(),
		tx.TotalValue.String(),
		tx.OwnerID,
		now.Format(timestampLayout),
		now.Format(timestampLayout),
	)
	if err != nil {
		return ledger.Transaction{}, fmt.Errorf("failed to insert transaction: %w", err)
	}

	return tx, nil
}

// Get returns a single transaction of owner.
func (s *Store) Get(ctx context.Context, owner ledger.ActorID, id ledger.TransactionID) (ledger.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.get(ctx, owner, id)
}

func (s *Store) get(ctx context.Context, owner ledger.ActorID, id ledger.TransactionID) (ledger.Transaction, error) {
	txs, err := s.queryTransactions(ctx, selectColumns+` WHERE owner_id = ? AND id = ?`, owner, id)
	if err != nil {
		return ledger.Transaction{}, err
	}
	if len(txs) == 0 {
		return ledger.Transaction{}, ledger.ErrNotFound
	}
	return txs[0], nil
}

// Update rewrites the mutable columns of one row.
func (s *Store) Update(ctx context.Context, tx ledger.Transaction) (ledger.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		UPDATE transactions SET
			transaction_date = ?, transaction_type = ?, counterparty_name = ?, material_name = ?,
			quantity = ?, unit_price = ?, total_value = ?, updated_at = ?
		WHERE id = ? AND owner_id = ?
	`

	res, err := s.db.ExecContext(ctx, query,
		tx.Date.String(),
		tx.Type,
		tx.Counterparty,
		tx.Material,
		tx.Quantity.String(),
		tx.UnitPrice.String(),
		tx.TotalValue.String(),
		s.now().UTC().Format(timestampLayout),
		tx.ID,
		tx.OwnerID,
	)
	if err != nil {
		return ledger.Transaction{}, fmt.Errorf("failed to update transaction: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return ledger.Transaction{}, err
	} else if n == 0 {
		return ledger.Transaction{}, ledger.ErrNotFound
	}

	return s.get(ctx, tx.OwnerID, tx.ID)
}

// Delete removes one row of owner.
func (s *Store) Delete(ctx context.Context, owner ledger.ActorID, id ledger.TransactionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ? AND owner_id = ?`, id, owner)
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ledger.ErrNotFound
	}
	return nil
}

// QueryAll returns every transaction of owner in the given order.
func (s *Store) QueryAll(ctx context.Context, owner ledger.ActorID, order ledger.OrderSpec) ([]ledger.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	orderBy, err := orderClause(order)
	if err != nil {
		return nil, err
	}
	return s.queryTransactions(ctx, selectColumns+` WHERE owner_id = ?`+orderBy, owner)
}

// Reset deletes every row. Used by tests.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `DELETE FROM transactions`)
	return err
}

func (s *Store) queryTransactions(ctx context.Context, query string, args ...any) ([]ledger.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	transactions := []ledger.Transaction{}
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, tx)
	}

	return transactions, rows.Err()
}

func scanTransaction(rows *sql.Rows) (ledger.Transaction, error) {
	var (
		tx         ledger.Transaction
		date       string
		txType     string
		quantity   string
		unitPrice  string
		totalValue string
		createdAt  string
		updatedAt  string
	)

	err := rows.Scan(
		&tx.ID, &date, &txType, &tx.Counterparty, &tx.Material,
		&quantity, &unitPrice, &totalValue, &tx.OwnerID, &createdAt, &updatedAt,
	)
	if err != nil {
		return tx, fmt.Errorf("failed to scan transaction: %w", err)
	}

	if tx.Date, err = ledger.ParseDate(date); err != nil {
		return tx, fmt.Errorf("corrupt transaction_date for %s: %w", tx.ID, err)
	}
	tx.Type = ledger.TransactionType(txType)
	if tx.Quantity, err = decimal.NewFromString(quantity); err != nil {
		return tx, fmt.Errorf("corrupt quantity for %s: %w", tx.ID, err)
	}
	if tx.UnitPrice, err = decimal.NewFromString(unitPrice); err != nil {
		return tx, fmt.Errorf("corrupt unit_price for %s: %w", tx.ID, err)
	}
	if tx.TotalValue, err = decimal.NewFromString(totalValue); err != nil {
		return tx, fmt.Errorf("corrupt total_value for %s: %w", tx.ID, err)
	}
	if tx.CreatedAt, err = time.Parse(timestampLayout, createdAt); err != nil {
		return tx, fmt.Errorf("corrupt created_at for %s: %w", tx.ID, err)
	}
	if tx.UpdatedAt, err = time.Parse(timestampLayout, updatedAt); err != nil {
		return tx, fmt.Errorf("corrupt updated_at for %s: %w", tx.ID, err)
	}

	return tx, nil
}

// Helper functions

// orderClause builds ORDER BY from a whitelist. Numeric text columns are
// cast so "10" sorts after "9". id breaks any remaining tie.
func orderClause(order ledger.OrderSpec) (string, error) {
	if len(order) == 0 {
		return " ORDER BY id ASC", nil
	}
	terms := make([]string, 0, len(order))
	for _, t := range order {
		var expr string
		switch t.Column {
		case ledger.OrderByDate:
			expr = "transaction_date"
		case ledger.OrderByCreatedAt:
			expr = "created_at"
		case ledger.OrderByCounterparty:
			expr = "counterparty_name"
		case ledger.OrderByTotalValue:
			expr = "CAST(total_value AS REAL)"
		default:
			return "", fmt.Errorf("unsupported order column %q", t.Column)
		}
		if t.Descending {
			expr += " DESC"
		} else {
			expr += " ASC"
		}
		terms = append(terms, expr)
	}
	terms = append(terms, "id ASC")
	return " ORDER BY " + strings.Join(terms, ", "), nil
}
