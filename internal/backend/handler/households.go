package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/kitchenhub/kitchenhub/internal/auth"
	"github.com/kitchenhub/kitchenhub/internal/model"
)

// ListHouseholds returns every household the caller belongs to.
func (h *Handler) ListHouseholds(w http.ResponseWriter, r *http.Request) {
	households, err := h.households.ListForUser(auth.UserID(r.Context()))
	if err != nil {
		h.logger.Error("list households", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
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
	var req householdRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	household, err := h.households.Create(req.Name, auth.UserID(r.Context()))
	if err != nil {
		h.logger.Error("create household", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusCreated, household)
}

type joinRequest struct {
	InviteCode string `json:"inviteCode"`
}

// JoinHousehold adds the caller via invite code. Joining a household the
// caller already belongs to returns it again rather than failing, so a
// retried request or a re-scanned code is harmless.
func (h *Handler) JoinHousehold(w http.ResponseWriter, r *http.Request) {
	var req joinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	code := strings.ToUpper(strings.TrimSpace(req.InviteCode))
	if code == "" {
		writeError(w, http.StatusBadRequest, "inviteCode is required")
		return
	}

	household, err := h.households.Join(code, auth.UserID(r.Context()))
	if err != nil {
		h.logger.Error("join household", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if household == nil {
		writeError(w, http.StatusNotFound, "invite code not found")
		return
	}
	writeJSON(w, http.StatusOK, household)
}

// requireOwner loads the household and checks the caller owns it.
func (h *Handler) requireOwner(w http.ResponseWriter, r *http.Request, id string) *model.Household {
	household, err := h.households.GetByID(id)
	if err != nil {
		h.logger.Error("get household", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return nil
	}
	if household == nil {
		writeError(w, http.StatusNotFound, "household not found")
		return nil
	}
	if household.OwnerID != auth.UserID(r.Context()) {
		writeError(w, http.StatusForbidden, "only the owner can do that")
		return nil
	}
	return household
}

func (h *Handler) RenameHousehold(w http.ResponseWriter, r *http.Request) {
	household := h.requireOwner(w, r, r.PathValue("id"))
	if household == nil {
		return
	}

	var req householdRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	if err := h.households.Rename(household.ID, req.Name); err != nil {
		h.logger.Error("rename household", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	household.Name = req.Name
	writeJSON(w, http.StatusOK, household)
}

// DeleteHousehold removes the household, its members, and every object it
// owns. Owner only.
func (h *Handler) DeleteHousehold(w http.ResponseWriter, r *http.Request) {
	household := h.requireOwner(w, r, r.PathValue("id"))
	if household == nil {
		return
	}

	if err := h.objects.DeleteHousehold(household.ID); err != nil {
		h.logger.Error("delete household objects", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if err := h.households.Delete(household.ID); err != nil {
		h.logger.Error("delete household", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) LeaveHousehold(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	userID := auth.UserID(r.Context())

	household, err := h.households.GetByID(id)
	if err != nil {
		h.logger.Error("get household", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if household == nil {
		writeError(w, http.StatusNotFound, "household not found")
		return
	}
	if household.OwnerID == userID {
		writeError(w, http.StatusConflict, "the owner cannot leave; delete the household instead")
		return
	}

	if err := h.households.Leave(id, userID); err != nil {
		h.logger.Error("leave household", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListMembers(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !h.requireMember(w, r, id) {
		return
	}

	members, err := h.households.Members(id)
	if err != nil {
		h.logger.Error("list members", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if members == nil {
		members = []model.HouseholdMember{}
	}
	writeJSON(w, http.StatusOK, members)
}
