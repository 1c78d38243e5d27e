package handler

import (
	"net/http"
	"strings"

	"github.com/kitchenhub/kitchenhub/internal/model"
)

// The household endpoints proxy to the backend. The device stays the only
// thing the UI talks to, so the UI needs no token of its own.

func (h *Handler) ListHouseholds(w http.ResponseWriter, r *http.Request) {
	if !h.requireRemote(w) {
		return
	}
	households, err := h.remote.ListHouseholds(r.Context())
	if err != nil {
		h.writeRepoError(w, err)
		return
	}
	if households == nil {
		households = []model.Household{}
	}
	writeJSON(w, http.StatusOK, households)
}

type householdRequest struct {
	Name string `json:"name"`
}

func (h *Handler) CreateHousehold(w http.ResponseWriter, r *http.Request) {
	if !h.requireRemote(w) {
		return
	}
	var req householdRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	household, err := h.remote.CreateHousehold(r.Context(), req.Name)
	if err != nil {
		h.writeRepoError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, household)
}

type joinRequest struct {
	InviteCode string `json:"inviteCode"`
}

func (h *Handler) JoinHousehold(w http.ResponseWriter, r *http.Request) {
	if !h.requireRemote(w) {
		return
	}
	var req joinRequest
	if !decodeBody(w, r, &req) {
		return
	}
	code := strings.ToUpper(strings.TrimSpace(req.InviteCode))
	if code == "" {
		writeError(w, http.StatusBadRequest, "inviteCode is required")
		return
	}

	household, err := h.remote.JoinByInviteCode(r.Context(), code)
	if err != nil {
		h.writeRepoError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, household)
}

func (h *Handler) RenameHousehold(w http.ResponseWriter, r *http.Request) {
	if !h.requireRemote(w) {
		return
	}
	var req householdRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if err := h.remote.RenameHousehold(r.Context(), r.PathValue("id"), req.Name); err != nil {
		h.writeRepoError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) DeleteHousehold(w http.ResponseWriter, r *http.Request) {
	if !h.requireRemote(w) {
		return
	}
	id := r.PathValue("id")
	if err := h.remote.DeleteHousehold(r.Context(), id); err != nil {
		h.writeRepoError(w, err)
		return
	}
	h.leaveIfActive(r, id)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) LeaveHousehold(w http.ResponseWriter, r *http.Request) {
	if !h.requireRemote(w) {
		return
	}
	id := r.PathValue("id")
	if err := h.remote.LeaveHousehold(r.Context(), id); err != nil {
		h.writeRepoError(w, err)
		return
	}
	h.leaveIfActive(r, id)
	w.WriteHeader(http.StatusNoContent)
}

// leaveIfActive falls back to the offline household when the one the user
// just left or deleted was active.
func (h *Handler) leaveIfActive(r *http.Request, id string) {
	if h.session.Active() != id {
		return
	}
	if err := h.session.Switch(r.Context(), model.OfflineHouseholdID); err != nil {
		h.logger.Error("switch to offline household", "error", err)
	}
}

func (h *Handler) ListMembers(w http.ResponseWriter, r *http.Request) {
	if !h.requireRemote(w) {
		return
	}
	members, err := h.remote.ListMembers(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeRepoError(w, err)
		return
	}
	if members == nil {
		members = []model.HouseholdMember{}
	}
	writeJSON(w, http.StatusOK, members)
}
