package handler

import (
	"net/http"

	"github.com/kitchenhub/kitchenhub/internal/reconcile"
)

// TodaySuggestions is the home screen payload: recipes the pantry fully
// covers, recipes just short of it, and items about to expire.
// GET /api/today
func (h *Handler) TodaySuggestions(w http.ResponseWriter, r *http.Request) {
	recipes, err := h.recipes.List(h.household())
	if err != nil {
		h.writeRepoError(w, err)
		return
	}
	inventory, err := h.inventory.List(h.household())
	if err != nil {
		h.writeRepoError(w, err)
		return
	}
	expiring, err := h.inventory.ListExpiringWithin(h.household(), expiringSoonDays)
	if err != nil {
		h.writeRepoError(w, err)
		return
	}

	categorized := reconcile.CategorizeByInventory(recipes, inventory)
	writeJSON(w, http.StatusOK, map[string]any{
		"canCook":  categorized.CanCook,
		"close":    categorized.Close,
		"expiring": expiring,
	})
}
