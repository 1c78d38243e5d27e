package handler

import (
	"net/http"
	"strings"

	"github.com/kitchenhub/kitchenhub/internal/model"
	"github.com/kitchenhub/kitchenhub/internal/repo"
)

// expiringSoonDays is the default window for the expiry warning list.
const expiringSoonDays = 3

func (h *Handler) ListInventory(w http.ResponseWriter, r *http.Request) {
	items, err := h.inventory.List(h.household())
	if err != nil {
		h.writeRepoError(w, err)
		return
	}
	if items == nil {
		items = []model.InventoryItem{}
	}
	writeJSON(w, http.StatusOK, items)
}

// ListExpiring returns items expiring within the next few days.
// GET /api/inventory/expiring?days=3
func (h *Handler) ListExpiring(w http.ResponseWriter, r *http.Request) {
	days := queryInt(r, "days")
	if days <= 0 {
		days = expiringSoonDays
	}
	items, err := h.inventory.ListExpiringWithin(h.household(), days)
	if err != nil {
		h.writeRepoError(w, err)
		return
	}
	if items == nil {
		items = []model.InventoryItem{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *Handler) GetInventoryItem(w http.ResponseWriter, r *http.Request) {
	item, err := h.inventory.Get(r.PathValue("id"))
	if err != nil {
		h.writeRepoError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *Handler) CreateInventoryItem(w http.ResponseWriter, r *http.Request) {
	var in repo.InventoryInput
	if !decodeBody(w, r, &in) {
		return
	}
	if strings.TrimSpace(in.Name) == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	item, err := h.inventory.Create(h.household(), in)
	if err != nil {
		h.writeRepoError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (h *Handler) UpdateInventoryItem(w http.ResponseWriter, r *http.Request) {
	var in repo.InventoryInput
	if !decodeBody(w, r, &in) {
		return
	}
	if strings.TrimSpace(in.Name) == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	item, err := h.inventory.Update(r.PathValue("id"), in)
	if err != nil {
		h.writeRepoError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *Handler) DeleteInventoryItem(w http.ResponseWriter, r *http.Request) {
	if err := h.inventory.Delete(r.PathValue("id")); err != nil {
		h.writeRepoError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
