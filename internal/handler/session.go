package handler

import (
	"net/http"
	"strings"
)

// GetSession reports the active household and sync state.
// GET /api/session
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"activeHouseholdId": h.session.Active(),
		"sync":              h.engine.Status(),
	})
}

type switchRequest struct {
	HouseholdID string `json:"householdId"`
}

// SwitchHousehold makes another household active: pull its data, open its
// feed. POST /api/session/switch
func (h *Handler) SwitchHousehold(w http.ResponseWriter, r *http.Request) {
	var req switchRequest
	if !decodeBody(w, r, &req) {
		return
	}
	req.HouseholdID = strings.TrimSpace(req.HouseholdID)
	if req.HouseholdID == "" {
		writeError(w, http.StatusBadRequest, "householdId is required")
		return
	}

	if err := h.session.Switch(r.Context(), req.HouseholdID); err != nil {
		h.writeRepoError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"activeHouseholdId": h.session.Active(),
	})
}

// SyncStatus exposes the engine's snapshot. GET /api/sync/status
func (h *Handler) SyncStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.engine.Status())
}
