// Package handler implements the device app's local HTTP API. Every read
// is served from the local store; writes go through the repos, which queue
// remote pushes on their own. Household management calls are proxied to
// the backend when one is configured.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/kitchenhub/kitchenhub/internal/localstore"
	"github.com/kitchenhub/kitchenhub/internal/remote"
	"github.com/kitchenhub/kitchenhub/internal/repo"
	"github.com/kitchenhub/kitchenhub/internal/session"
	"github.com/kitchenhub/kitchenhub/internal/syncer"
)

type Handler struct {
	store     *localstore.Store
	recipes   *repo.Recipes
	inventory *repo.Inventory
	shopping  *repo.Shopping
	chat      *repo.Chat
	session   *session.Manager
	engine    *syncer.Engine
	logger    *slog.Logger

	// remote is nil when the device runs without a backend.
	remote *remote.Client
}

func New(store *localstore.Store, recipes *repo.Recipes, inventory *repo.Inventory, shopping *repo.Shopping, chat *repo.Chat, sess *session.Manager, engine *syncer.Engine, rc *remote.Client, logger *slog.Logger) *Handler {
	return &Handler{
		store:     store,
		recipes:   recipes,
		inventory: inventory,
		shopping:  shopping,
		chat:      chat,
		session:   sess,
		engine:    engine,
		remote:    rc,
		logger:    logger.With("component", "handler"),
	}
}

// household returns the household every request operates on. The UI never
// passes one; it always works in whatever household is active.
func (h *Handler) household() string {
	return h.session.Active()
}

// requireRemote guards the endpoints that only make sense with a backend.
func (h *Handler) requireRemote(w http.ResponseWriter) bool {
	if h.remote == nil {
		writeError(w, http.StatusServiceUnavailable, "no backend configured")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeRepoError translates repo and remote errors to HTTP statuses.
func (h *Handler) writeRepoError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repo.ErrNotFound), errors.Is(err, remote.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, remote.ErrPermission):
		writeError(w, http.StatusForbidden, "permission denied")
	case errors.Is(err, remote.ErrConflict):
		writeError(w, http.StatusConflict, "conflict")
	case errors.Is(err, remote.ErrUnavailable):
		writeError(w, http.StatusBadGateway, "backend unavailable")
	default:
		h.logger.Error("request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return false
	}
	return true
}
