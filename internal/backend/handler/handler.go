// Package handler implements the backend HTTP API: bearer-token auth, the
// generic object store endpoints, household management, and the websocket
// change feed.
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/kitchenhub/kitchenhub/internal/backend/store"
	"github.com/kitchenhub/kitchenhub/internal/rowmap"
	"github.com/kitchenhub/kitchenhub/internal/websocket"
)

type Handler struct {
	objects    *store.ObjectStore
	households *store.HouseholdStore
	sessions   *store.SessionStore
	hub        *websocket.Hub
	logger     *slog.Logger

	// adminSecret guards token provisioning. Empty disables the endpoint.
	adminSecret string
}

func New(objects *store.ObjectStore, households *store.HouseholdStore, sessions *store.SessionStore, hub *websocket.Hub, adminSecret string, logger *slog.Logger) *Handler {
	return &Handler{
		objects:     objects,
		households:  households,
		sessions:    sessions,
		hub:         hub,
		logger:      logger.With("component", "handler"),
		adminSecret: adminSecret,
	}
}

var validTables = func() map[string]bool {
	m := make(map[string]bool, len(rowmap.Tables))
	for _, t := range rowmap.Tables {
		m[t] = true
	}
	return m
}()

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
