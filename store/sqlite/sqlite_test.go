package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farmacinallis/exchange-ledger/ledger"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sample(owner ledger.ActorID, day int, counterparty, total string) ledger.Transaction {
	return ledger.Transaction{
		Date:         ledger.NewDate(2025, time.March, day),
		Type:         ledger.Purchase,
		Counterparty: counterparty,
		Material:     "Amoxicilina 500mg",
		Quantity:     decimal.RequireFromString("2.5"),
		UnitPrice:    decimal.RequireFromString("0.1"),
		TotalValue:   decimal.RequireFromString(total),
		OwnerID:      owner,
	}
}

// =============================================================================
// TESTS
// =============================================================================

func TestInsertGet_RoundTripsDecimalsExactly(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	in := sample("u1", 10, "Farmácia Alpha", "0.25")
	in.UnitPrice = decimal.RequireFromString("0.1000000000000000001")

	created, err := s.Insert(ctx, in)
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	got, err := s.Get(ctx, "u1", created.ID)
	require.NoError(t, err)

	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, in.Date, got.Date)
	assert.Equal(t, ledger.Purchase, got.Type)
	assert.Equal(t, "Farmácia Alpha", got.Counterparty)
	assert.True(t, in.Quantity.Equal(got.Quantity))
	assert.Equal(t, "0.1000000000000000001", got.UnitPrice.String())
	assert.True(t, in.TotalValue.Equal(got.TotalValue))
	assert.Equal(t, ledger.ActorID("u1"), got.OwnerID)
	assert.True(t, created.CreatedAt.Equal(got.CreatedAt))
}

func TestGet_OtherOwnerIsNotFound(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	created, err := s.Insert(ctx, sample("u1", 10, "Alpha", "1"))
	require.NoError(t, err)

	_, err = s.Get(ctx, "u2", created.ID)
	assert.ErrorIs(t, err, ledger.ErrNotFound)
}

func TestUpdate_RewritesMutableColumns(t *testing.T) {
	clock := time.Date(2025, time.April, 1, 8, 0, 0, 0, time.UTC)
	s, err := New(":memory:", WithClock(func() time.Time { return clock }))
	require.NoError(t, err)
	defer s.Close()
	ctx := context.Background()

	created, err := s.Insert(ctx, sample("u1", 10, "Alpha", "1"))
	require.NoError(t, err)

	clock = clock.Add(2 * time.Hour)
	next := created
	next.Type = ledger.Sale
	next.Counterparty = "Beta"
	next.TotalValue = decimal.RequireFromString("42.10")

	got, err := s.Update(ctx, next)
	require.NoError(t, err)
	assert.Equal(t, ledger.Sale, got.Type)
	assert.Equal(t, "Beta", got.Counterparty)
	assert.Equal(t, "42.1", got.TotalValue.String())
	assert.True(t, created.CreatedAt.Equal(got.CreatedAt))
	assert.True(t, clock.Equal(got.UpdatedAt))
}

func TestUpdate_MissingOrForeignRow(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	created, err := s.Insert(ctx, sample("u1", 10, "Alpha", "1"))
	require.NoError(t, err)

	forged := created
	forged.OwnerID = "u2"
	_, err = s.Update(ctx, forged)
	assert.ErrorIs(t, err, ledger.ErrNotFound)

	ghost := created
	ghost.ID = "ghost"
	_, err = s.Update(ctx, ghost)
	assert.ErrorIs(t, err, ledger.ErrNotFound)
}

func TestDelete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	created, err := s.Insert(ctx, sample("u1", 10, "Alpha", "1"))
	require.NoError(t, err)

	assert.ErrorIs(t, s.Delete(ctx, "u2", created.ID), ledger.ErrNotFound)
	require.NoError(t, s.Delete(ctx, "u1", created.ID))
	assert.ErrorIs(t, s.Delete(ctx, "u1", created.ID), ledger.ErrNotFound)
}

func TestQueryAll_DefaultOrder(t *testing.T) {
	clock := time.Date(2025, time.April, 1, 8, 0, 0, 0, time.UTC)
	s, err := New(":memory:", WithClock(func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}))
	require.NoError(t, err)
	defer s.Close()
	ctx := context.Background()

	_, err = s.Insert(ctx, sample("u1", 2, "Old", "1"))
	require.NoError(t, err)
	_, err = s.Insert(ctx, sample("u1", 20, "First", "1"))
	require.NoError(t, err)
	_, err = s.Insert(ctx, sample("u1", 20, "Second", "1"))
	require.NoError(t, err)
	_, err = s.Insert(ctx, sample("u2", 25, "Foreign", "1"))
	require.NoError(t, err)

	txs, err := s.QueryAll(ctx, "u1", ledger.DefaultOrder)
	require.NoError(t, err)
	require.Len(t, txs, 3)
	assert.Equal(t, "Second", txs[0].Counterparty)
	assert.Equal(t, "First", txs[1].Counterparty)
	assert.Equal(t, "Old", txs[2].Counterparty)
}

func TestQueryAll_NumericOrderOnTotals(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, total := range []string{"10", "9", "100"} {
		_, err := s.Insert(ctx, sample("u1", 1, "T"+total, total))
		require.NoError(t, err)
	}

	txs, err := s.QueryAll(ctx, "u1", ledger.OrderSpec{{Column: ledger.OrderByTotalValue}})
	require.NoError(t, err)
	require.Len(t, txs, 3)
	assert.Equal(t, []string{"T9", "T10", "T100"},
		[]string{txs[0].Counterparty, txs[1].Counterparty, txs[2].Counterparty})
}

func TestQueryAll_EmptyIsNotNil(t *testing.T) {
	s := newTestStore(t)
	txs, err := s.QueryAll(context.Background(), "nobody", ledger.DefaultOrder)
	require.NoError(t, err)
	assert.NotNil(t, txs)
	assert.Empty(t, txs)
}

func TestOrderClause_RejectsUnknownColumn(t *testing.T) {
	_, err := orderClause(ledger.OrderSpec{{Column: "owner_id; DROP TABLE transactions"}})
	assert.Error(t, err)

	clause, err := orderClause(ledger.DefaultOrder)
	require.NoError(t, err)
	assert.Equal(t, " ORDER BY transaction_date DESC, created_at DESC, id ASC", clause)
}

func TestReset(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.Insert(ctx, sample("u1", 1, "Alpha", "1"))
	require.NoError(t, err)
	require.NoError(t, s.Reset(ctx))

	txs, err := s.QueryAll(ctx, "u1", nil)
	require.NoError(t, err)
	assert.Empty(t, txs)
}

func TestNew_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")
	ctx := context.Background()

	s, err := New(path)
	require.NoError(t, err)
	created, err := s.Insert(ctx, sample("u1", 1, "Alpha", "7.77"))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = New(path)
	require.NoError(t, err)
	defer s.Close()

	got, err := s.Get(ctx, "u1", created.ID)
	require.NoError(t, err)
	assert.Equal(t, "7.77", got.TotalValue.String())
}

func TestQueryAll_CorruptTimestampIsAnError(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	created, err := s.Insert(ctx, sample("u1", 1, "Alpha", "1"))
	require.NoError(t, err)
	_, err = s.db.ExecContext(ctx, `UPDATE transactions SET created_at = 'yesterday' WHERE id = ?`, created.ID)
	require.NoError(t, err)

	_, err = s.QueryAll(ctx, "u1", ledger.DefaultOrder)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "corrupt created_at")

	_, err = s.Get(ctx, "u1", created.ID)
	assert.Error(t, err)
}

func TestQueryAll_TiesBrokenByID(t *testing.T) {
	clock := time.Date(2025, time.April, 1, 8, 0, 0, 0, time.UTC)
	s, err := New(":memory:", WithClock(func() time.Time { return clock }))
	require.NoError(t, err)
	defer s.Close()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := s.Insert(ctx, sample("u1", 3, "Alpha", "1"))
		require.NoError(t, err)
	}

	txs, err := s.QueryAll(ctx, "u1", ledger.DefaultOrder)
	require.NoError(t, err)
	require.Len(t, txs, 5)
	for i := 1; i < len(txs); i++ {
		assert.Less(t, txs[i-1].ID, txs[i].ID)
	}
}
