/*
scenarios.go - Demo scenario endpoints

PURPOSE:
  Lets the UI list the demo ledgers and load one for the calling actor.

USAGE VIA API:
  GET  /api/scenarios
  POST /api/scenarios/load
  {"scenario_id": "mixed-standings"}

NOTE:
  Loading wipes the caller's own transactions first. Other actors are
  never touched.

SEE ALSO:
  - scenario/scenario.go: Scenario definitions and loader
*/
package api

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/farmacinallis/exchange-ledger/scenario"
)

type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

// ListScenarios returns all available scenarios.
// GET /api/scenarios
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenario.List())
}

// LoadScenario replaces the caller's ledger with a demo scenario.
// POST /api/scenarios/load
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	var req LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if _, ok := scenario.Find(req.ScenarioID); !ok {
		writeError(w, http.StatusNotFound, "Unknown scenario", nil)
		return
	}

	view, err := scenario.Load(r.Context(), h.Service, actor, req.ScenarioID)
	if err != nil {
		h.writeLedgerError(w, r, err)
		return
	}

	h.Logger.Info("scenario loaded",
		zap.String("scenario_id", req.ScenarioID),
		zap.String("actor_id", string(actor)),
	)
	writeJSON(w, http.StatusOK, map[string]any{
		"scenario_id": req.ScenarioID,
		"view":        toViewDTO(view),
	})
}
