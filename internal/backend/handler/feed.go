package handler

import (
	"net/http"

	"github.com/kitchenhub/kitchenhub/internal/websocket"
)

// SyncFeed upgrades to a websocket carrying the household's change events.
// GET /api/sync/ws?household_id=...
func (h *Handler) SyncFeed(w http.ResponseWriter, r *http.Request) {
	householdID := r.URL.Query().Get("household_id")
	if householdID == "" {
		writeError(w, http.StatusBadRequest, "household_id is required")
		return
	}
	if !h.requireMember(w, r, householdID) {
		return
	}

	websocket.Handle(h.hub, h.logger, func(*http.Request) string {
		return householdID
	})(w, r)
}
