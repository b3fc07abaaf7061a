/*
handlers.go - HTTP API handlers for the exchange ledger

PURPOSE:
  Exposes the ledger Service to a browser UI. Handles HTTP
  request/response, JSON serialization, and delegates to the ledger.

ENDPOINTS:
  Transactions:
    GET    /api/transactions          List (?search= substring, ?limit= recent N)
    POST   /api/transactions          Create, returns refreshed view
    PATCH  /api/transactions/{id}     Update, returns refreshed view
    DELETE /api/transactions/{id}     Delete, returns refreshed view

  Balances:
    GET    /api/balances              Per-counterparty balances

  Drafts:
    POST   /api/drafts/reconcile      Sync quantity / unit price / total

ARCHITECTURE:
  Handler holds the Service and the ActorProvider. The actor is resolved
  once per request and passed explicitly into every Service call.

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 401: No authenticated actor
  - 404: Transaction not found
  - 409: Refresh superseded by a newer one
  - 500: Store failures

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/farmacinallis/exchange-ledger/ledger"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Service *ledger.Service
	Actors  ledger.ActorProvider
	Logger  *zap.Logger
}

// NewHandler creates a new handler. A nil logger disables handler logging.
func NewHandler(svc *ledger.Service, actors ledger.ActorProvider, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{Service: svc, Actors: actors, Logger: logger}
}

// actor resolves the caller or writes 401.
func (h *Handler) actor(w http.ResponseWriter, r *http.Request) (ledger.ActorID, bool) {
	id, ok := h.Actors.CurrentActor(r.Context())
	if !ok {
		h.writeLedgerError(w, r, &ledger.AuthError{Op: r.Method + " " + r.URL.Path})
		return "", false
	}
	return id, true
}

// =============================================================================
// TRANSACTION HANDLERS
// =============================================================================

// ListTransactions returns the caller's transactions, most recent first.
// GET /api/transactions?search=amox&limit=10
func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "Invalid limit", err)
			return
		}
		limit = n
	}

	txs, err := h.Service.List(r.Context(), actor)
	if err != nil {
		h.writeLedgerError(w, r, err)
		return
	}

	txs = ledger.Recent(ledger.Filter(txs, r.URL.Query().Get("search")), limit)
	writeJSON(w, http.StatusOK, toTransactionDTOs(txs))
}

// CreateTransaction registers a new purchase or sale.
// POST /api/transactions
func (h *Handler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	var req CreateTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	draft, err := req.toDraft()
	if err != nil {
		h.writeLedgerError(w, r, err)
		return
	}

	tx, view, err := h.Service.Create(r.Context(), actor, draft)
	if err != nil {
		h.writeLedgerError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, MutationResponse{
		Transaction: toTransactionDTO(tx),
		View:        toViewDTO(view),
	})
}

// UpdateTransaction edits an existing transaction.
// PATCH /api/transactions/{id}
func (h *Handler) UpdateTransaction(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	id := ledger.TransactionID(chi.URLParam(r, "id"))

	var req UpdateTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	patch, err := req.toPatch()
	if err != nil {
		h.writeLedgerError(w, r, err)
		return
	}

	tx, view, err := h.Service.Update(r.Context(), actor, id, patch)
	if err != nil {
		h.writeLedgerError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, MutationResponse{
		Transaction: toTransactionDTO(tx),
		View:        toViewDTO(view),
	})
}

// DeleteTransaction removes a transaction.
// DELETE /api/transactions/{id}
func (h *Handler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	id := ledger.TransactionID(chi.URLParam(r, "id"))

	view, err := h.Service.Delete(r.Context(), actor, id)
	if err != nil {
		h.writeLedgerError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"view": toViewDTO(view)})
}

// =============================================================================
// BALANCE HANDLERS
// =============================================================================

// GetBalances returns balances recomputed from the caller's live set.
// GET /api/balances
func (h *Handler) GetBalances(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	view, err := h.Service.Refresh(r.Context(), actor)
	if err != nil {
		h.writeLedgerError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"balances":   toBalanceDTOs(view.Balances),
		"generation": view.Generation,
	})
}

// =============================================================================
// DRAFT HANDLERS
// =============================================================================

// ReconcileDraft applies the quantity/price/total rule to a form's values.
// It touches neither the store nor the actor.
// POST /api/drafts/reconcile
func (h *Handler) ReconcileDraft(w http.ResponseWriter, r *http.Request) {
	var req ReconcileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	draft, changed, err := req.toDraft()
	if err != nil {
		h.writeLedgerError(w, r, err)
		return
	}

	out := ledger.Reconcile(draft, changed)
	writeJSON(w, http.StatusOK, ReconcileResponse{
		Quantity:   out.Quantity.String(),
		UnitPrice:  out.UnitPrice.String(),
		TotalValue: out.TotalValue.Decimal.String(),
	})
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeLedgerError maps the ledger error taxonomy onto HTTP statuses.
func (h *Handler) writeLedgerError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *ledger.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid transaction",
			Field:   string(verr.Field),
			Details: verr.Reason,
		})
	case errors.Is(err, ledger.ErrUnauthenticated):
		writeError(w, http.StatusUnauthorized, "Authentication required", err)
	case ledger.IsNotFound(err):
		writeError(w, http.StatusNotFound, "Transaction not found", err)
	case ledger.IsSuperseded(err):
		writeError(w, http.StatusConflict, "Refresh superseded", err)
	default:
		h.Logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		writeError(w, http.StatusInternalServerError, "Failed to reach the transaction store", err)
	}
}
