package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/kitchenhub/kitchenhub/internal/auth"
	"github.com/kitchenhub/kitchenhub/internal/backend/store"
)

// RequireAuth resolves the bearer token and puts the user id on the
// request context. Requests without a valid token get 401.
func (h *Handler) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}

		userID, err := h.sessions.Lookup(token)
		if err != nil {
			h.logger.Error("session lookup", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if userID == "" {
			writeError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		next.ServeHTTP(w, r.WithContext(auth.WithUserID(r.Context(), userID)))
	})
}

type tokenRequest struct {
	UserID string `json:"userId"`
	Name   string `json:"name"`
}

// CreateToken provisions a bearer token for a device. It is guarded by the
// admin secret, not by user auth: the operator hands tokens out when
// setting up a device.
func (h *Handler) CreateToken(w http.ResponseWriter, r *http.Request) {
	if h.adminSecret == "" || r.Header.Get("X-Admin-Secret") != h.adminSecret {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}

	var req tokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.UserID = strings.TrimSpace(req.UserID)
	if req.UserID == "" {
		writeError(w, http.StatusBadRequest, "userId is required")
		return
	}

	if err := h.sessions.EnsureUser(req.UserID, req.Name); err != nil {
		h.logger.Error("ensure user", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	token, err := h.sessions.CreateToken(req.UserID, store.DefaultSessionTTL)
	if err != nil {
		h.logger.Error("create token", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"token": token})
}
