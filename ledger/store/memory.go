// Package store provides an in-memory ledger.Store.
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/farmacinallis/exchange-ledger/ledger"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu           sync.RWMutex
	transactions map[ledger.TransactionID]ledger.Transaction
	now          func() time.Time
}

type Option func(*Memory)

// WithClock sets the clock used for CreatedAt / UpdatedAt.
func WithClock(now func() time.Time) Option {
	return func(m *Memory) { m.now = now }
}

func NewMemory(opts ...Option) *Memory {
	m := &Memory{
		transactions: make(map[ledger.TransactionID]ledger.Transaction),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Memory) Insert(_ context.Context, tx ledger.Transaction) (ledger.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now().UTC()
	tx.ID = ledger.TransactionID(uuid.NewString())
	tx.CreatedAt = now
	tx.UpdatedAt = now
	m.transactions[tx.ID] = tx
	return tx, nil
}

func (m *Memory) Get(_ context.Context, owner ledger.ActorID, id ledger.TransactionID) (ledger.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	tx, ok := m.transactions[id]
	if !ok || tx.OwnerID != owner {
		return ledger.Transaction{}, ledger.ErrNotFound
	}
	return tx, nil
}

// Update overwrites the mutable fields only; ID, owner and CreatedAt are
// taken from the stored copy.
func (m *Memory) Update(_ context.Context, tx ledger.Transaction) (ledger.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cur, ok := m.transactions[tx.ID]
	if !ok || cur.OwnerID != tx.OwnerID {
		return ledger.Transaction{}, ledger.ErrNotFound
	}

	cur.Date = tx.Date
	cur.Type = tx.Type
	cur.Counterparty = tx.Counterparty
	cur.Material = tx.Material
	cur.Quantity = tx.Quantity
	cur.UnitPrice = tx.UnitPrice
	cur.TotalValue = tx.TotalValue
	cur.UpdatedAt = m.now().UTC()
	m.transactions[cur.ID] = cur
	return cur, nil
}

func (m *Memory) Delete(_ context.Context, owner ledger.ActorID, id ledger.TransactionID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	tx, ok := m.transactions[id]
	if !ok || tx.OwnerID != owner {
		return ledger.ErrNotFound
	}
	delete(m.transactions, id)
	return nil
}

func (m *Memory) QueryAll(_ context.Context, owner ledger.ActorID, order ledger.OrderSpec) ([]ledger.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]ledger.Transaction, 0, len(m.transactions))
	for _, tx := range m.transactions {
		if tx.OwnerID == owner {
			result = append(result, tx)
		}
	}
	// Map order is random; id settles ties the order leaves open.
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	ledger.SortTransactions(result, order)
	return result, nil
}
