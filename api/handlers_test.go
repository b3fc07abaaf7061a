/*
handlers_test.go - HTTP tests for the ledger API

Tests for:
- Create / update / delete round trips and the refreshed view
- Error mapping (400 with field, 401, 404)
- Search and limit on the list endpoint
- Draft reconciliation
*/
package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/farmacinallis/exchange-ledger/ledger"
	"github.com/farmacinallis/exchange-ledger/ledger/store"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	logger := zaptest.NewLogger(t)
	now := func() time.Time { return time.Date(2025, time.June, 30, 12, 0, 0, 0, time.UTC) }
	svc := ledger.NewService(store.NewMemory(), logger, ledger.WithClock(now))
	return NewRouter(NewHandler(svc, ContextActors{}, logger), nil)
}

func do(t *testing.T, h http.Handler, method, path, actor string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if actor != "" {
		req.Header.Set(ActorHeader, actor)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func alphaPurchase() CreateTransactionRequest {
	return CreateTransactionRequest{
		TransactionDate: "2025-03-10",
		TransactionType: "purchase",
		Counterparty:    "Alpha",
		Material:        "Amoxicilina",
		Quantity:        "10",
		UnitPrice:       "2.50",
	}
}

func create(t *testing.T, h http.Handler, req CreateTransactionRequest) MutationResponse {
	t.Helper()
	rec := do(t, h, http.MethodPost, "/api/transactions", "user-1", req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[MutationResponse](t, rec)
}

// =============================================================================
// TRANSACTIONS
// =============================================================================

func TestCreateTransaction(t *testing.T) {
	h := newTestServer(t)

	resp := create(t, h, alphaPurchase())

	assert.NotEmpty(t, resp.Transaction.ID)
	assert.Equal(t, "25", resp.Transaction.TotalValue)
	assert.Equal(t, "2.5", resp.Transaction.UnitPrice)
	assert.Equal(t, "25.00", resp.Transaction.TotalValueDisplay)
	assert.Equal(t, "2.50", resp.Transaction.UnitPriceDisplay)
	assert.Equal(t, "un", resp.Transaction.UnitLabel)
	assert.Equal(t, "user-1", resp.Transaction.OwnerID)

	assert.False(t, resp.View.Stale)
	require.Len(t, resp.View.Balances, 1)
	assert.Equal(t, "-25.00", resp.View.Balances[0].Balance)
	assert.Equal(t, "25.00", resp.View.Balances[0].Magnitude)
	assert.Equal(t, string(ledger.OwedByOperator), resp.View.Balances[0].Standing)
}

func TestCreateTransaction_TotalOnly(t *testing.T) {
	h := newTestServer(t)

	req := alphaPurchase()
	req.UnitPrice = ""
	total := "30"
	req.TotalValue = &total
	req.Material = "Dipirona 1 grama"

	resp := create(t, h, req)
	assert.Equal(t, "3", resp.Transaction.UnitPrice)
	assert.Equal(t, "30", resp.Transaction.TotalValue)
	assert.Equal(t, "3.00", resp.Transaction.UnitPriceDisplay)
	assert.Equal(t, "gr", resp.Transaction.UnitLabel)
}

func TestCreateTransaction_ValidationNamesField(t *testing.T) {
	h := newTestServer(t)

	req := alphaPurchase()
	req.Quantity = "0"
	rec := do(t, h, http.MethodPost, "/api/transactions", "user-1", req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	errResp := decode[ErrorResponse](t, rec)
	assert.Equal(t, "quantity", errResp.Field)
}

func TestCreateTransaction_UnparseableNumber(t *testing.T) {
	h := newTestServer(t)

	req := alphaPurchase()
	req.UnitPrice = "two fifty"
	rec := do(t, h, http.MethodPost, "/api/transactions", "user-1", req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "unit_price", decode[ErrorResponse](t, rec).Field)
}

func TestCreateTransaction_RejectsHugeExponent(t *testing.T) {
	h := newTestServer(t)

	req := alphaPurchase()
	req.Quantity = "1e20000000"
	req.UnitPrice = "1e20000000"
	rec := do(t, h, http.MethodPost, "/api/transactions", "user-1", req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "quantity", decode[ErrorResponse](t, rec).Field)
	assert.Less(t, rec.Body.Len(), 1024)
}

func TestTransactions_SubCentPriceSurvivesListAndEdit(t *testing.T) {
	// GIVEN: a by-the-gram material priced below one cent
	h := newTestServer(t)
	req := alphaPurchase()
	req.Material = "Minoxidil (grama)"
	req.Quantity = "1000"
	req.UnitPrice = "0.0035"
	created := create(t, h, req)
	assert.Equal(t, "3.5", created.Transaction.TotalValue)

	// WHEN: a client lists it and echoes the listed numbers back
	rec := do(t, h, http.MethodGet, "/api/transactions", "user-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[[]TransactionDTO](t, rec)
	require.Len(t, list, 1)
	assert.Equal(t, "0.0035", list[0].UnitPrice)
	assert.Equal(t, "0.00", list[0].UnitPriceDisplay)
	assert.Equal(t, "3.50", list[0].TotalValueDisplay)

	rec = do(t, h, http.MethodPatch, "/api/transactions/"+list[0].ID, "user-1",
		UpdateTransactionRequest{Quantity: &list[0].Quantity, UnitPrice: &list[0].UnitPrice})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// THEN: nothing was rounded away
	resp := decode[MutationResponse](t, rec)
	assert.Equal(t, "0.0035", resp.Transaction.UnitPrice)
	assert.Equal(t, "3.5", resp.Transaction.TotalValue)
	assert.Equal(t, "-3.50", resp.View.Balances[0].Balance)
}

func TestTransactions_DerivedPriceCanBeSentBack(t *testing.T) {
	h := newTestServer(t)
	req := alphaPurchase()
	req.Quantity = "3"
	req.UnitPrice = ""
	total := "10"
	req.TotalValue = &total
	created := create(t, h, req)
	assert.Equal(t, "3.3333333333333333", created.Transaction.UnitPrice)

	price := created.Transaction.UnitPrice
	rec := do(t, h, http.MethodPatch, "/api/transactions/"+created.Transaction.ID, "user-1",
		UpdateTransactionRequest{UnitPrice: &price})
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestCreateTransaction_RequiresActor(t *testing.T) {
	h := newTestServer(t)

	rec := do(t, h, http.MethodPost, "/api/transactions", "", alphaPurchase())
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateTransaction_MalformedBody(t *testing.T) {
	h := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/transactions", bytes.NewBufferString("{"))
	req.Header.Set(ActorHeader, "user-1")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateTransaction(t *testing.T) {
	h := newTestServer(t)
	created := create(t, h, alphaPurchase())

	qty := "4"
	rec := do(t, h, http.MethodPatch, "/api/transactions/"+created.Transaction.ID, "user-1",
		UpdateTransactionRequest{Quantity: &qty})

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode[MutationResponse](t, rec)
	assert.Equal(t, "10", resp.Transaction.TotalValue)
	assert.Equal(t, "-10.00", resp.View.Balances[0].Balance)
}

func TestUpdateTransaction_OwnerChangeRejected(t *testing.T) {
	h := newTestServer(t)
	created := create(t, h, alphaPurchase())

	owner := "user-2"
	rec := do(t, h, http.MethodPatch, "/api/transactions/"+created.Transaction.ID, "user-1",
		UpdateTransactionRequest{OwnerID: &owner})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "owner_id", decode[ErrorResponse](t, rec).Field)
}

func TestUpdateTransaction_OtherActorGets404(t *testing.T) {
	h := newTestServer(t)
	created := create(t, h, alphaPurchase())

	name := "Beta"
	rec := do(t, h, http.MethodPatch, "/api/transactions/"+created.Transaction.ID, "user-2",
		UpdateTransactionRequest{Counterparty: &name})

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteTransaction(t *testing.T) {
	h := newTestServer(t)
	created := create(t, h, alphaPurchase())

	rec := do(t, h, http.MethodDelete, "/api/transactions/"+created.Transaction.ID, "user-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode[struct {
		View ViewDTO `json:"view"`
	}](t, rec)
	assert.Empty(t, body.View.Transactions)
	assert.Empty(t, body.View.Balances)

	rec = do(t, h, http.MethodDelete, "/api/transactions/"+created.Transaction.ID, "user-1", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListTransactions_SearchAndLimit(t *testing.T) {
	h := newTestServer(t)

	create(t, h, alphaPurchase())
	beta := alphaPurchase()
	beta.Counterparty = "Beta"
	beta.Material = "Ibuprofeno"
	beta.TransactionDate = "2025-03-12"
	create(t, h, beta)

	rec := do(t, h, http.MethodGet, "/api/transactions?search=AMOX", "user-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[[]TransactionDTO](t, rec)
	require.Len(t, list, 1)
	assert.Equal(t, "Alpha", list[0].Counterparty)

	rec = do(t, h, http.MethodGet, "/api/transactions?limit=1", "user-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list = decode[[]TransactionDTO](t, rec)
	require.Len(t, list, 1)
	assert.Equal(t, "Beta", list[0].Counterparty, "most recent first")

	rec = do(t, h, http.MethodGet, "/api/transactions?limit=-1", "user-1", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// =============================================================================
// BALANCES
// =============================================================================

func TestGetBalances(t *testing.T) {
	h := newTestServer(t)

	create(t, h, alphaPurchase())
	sale := alphaPurchase()
	sale.TransactionType = "venda"
	sale.Quantity = "16"
	create(t, h, sale)

	rec := do(t, h, http.MethodGet, "/api/balances", "user-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode[struct {
		Balances   []BalanceDTO `json:"balances"`
		Generation uint64       `json:"generation"`
	}](t, rec)
	require.Len(t, body.Balances, 1)
	assert.Equal(t, "15.00", body.Balances[0].Balance)
	assert.Equal(t, 2, body.Balances[0].TransactionCount)
	assert.Equal(t, string(ledger.OwedToOperator), body.Balances[0].Standing)
	assert.NotZero(t, body.Generation)
}

func TestGetBalances_EmptyForNewActor(t *testing.T) {
	h := newTestServer(t)
	create(t, h, alphaPurchase())

	rec := do(t, h, http.MethodGet, "/api/balances", "user-2", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[struct {
		Balances []BalanceDTO `json:"balances"`
	}](t, rec)
	assert.NotNil(t, body.Balances)
	assert.Empty(t, body.Balances)
}

// =============================================================================
// DRAFTS
// =============================================================================

func TestReconcileDraft(t *testing.T) {
	h := newTestServer(t)

	rec := do(t, h, http.MethodPost, "/api/drafts/reconcile", "", ReconcileRequest{
		Changed: "total_value", Quantity: "10", UnitPrice: "2.50", TotalValue: "30",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	out := decode[ReconcileResponse](t, rec)
	assert.Equal(t, "3", out.UnitPrice)
	assert.Equal(t, "30", out.TotalValue)

	rec = do(t, h, http.MethodPost, "/api/drafts/reconcile", "", ReconcileRequest{
		Changed: "unit_price", Quantity: "1000", UnitPrice: "0.0035",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "3.5", decode[ReconcileResponse](t, rec).TotalValue)

	rec = do(t, h, http.MethodPost, "/api/drafts/reconcile", "", ReconcileRequest{
		Changed: "quantity", Quantity: "10", UnitPrice: "2.50",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "25", decode[ReconcileResponse](t, rec).TotalValue)

	rec = do(t, h, http.MethodPost, "/api/drafts/reconcile", "", ReconcileRequest{Changed: "material_name"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealthz(t *testing.T) {
	rec := do(t, newTestServer(t), http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
