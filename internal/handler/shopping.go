package handler

import (
	"net/http"
	"strings"

	"github.com/kitchenhub/kitchenhub/internal/model"
	"github.com/kitchenhub/kitchenhub/internal/reconcile"
	"github.com/kitchenhub/kitchenhub/internal/repo"
)

func (h *Handler) ListShopping(w http.ResponseWriter, r *http.Request) {
	items, err := h.shopping.List(h.household())
	if err != nil {
		h.writeRepoError(w, err)
		return
	}
	if items == nil {
		items = []model.ShoppingListItem{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *Handler) CreateShoppingItem(w http.ResponseWriter, r *http.Request) {
	var in repo.ShoppingInput
	if !decodeBody(w, r, &in) {
		return
	}
	if strings.TrimSpace(in.Name) == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	item, err := h.shopping.Create(h.household(), in)
	if err != nil {
		h.writeRepoError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (h *Handler) UpdateShoppingItem(w http.ResponseWriter, r *http.Request) {
	var in repo.ShoppingInput
	if !decodeBody(w, r, &in) {
		return
	}
	item, err := h.shopping.Update(r.PathValue("id"), in)
	if err != nil {
		h.writeRepoError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *Handler) DeleteShoppingItem(w http.ResponseWriter, r *http.Request) {
	if err := h.shopping.Delete(r.PathValue("id")); err != nil {
		h.writeRepoError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ToggleShoppingItem flips the bought flag.
// POST /api/shopping/{id}/toggle
func (h *Handler) ToggleShoppingItem(w http.ResponseWriter, r *http.Request) {
	item, err := h.shopping.ToggleBought(r.PathValue("id"))
	if err != nil {
		h.writeRepoError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// ClearBoughtItems removes everything already bought.
// POST /api/shopping/clear-bought
func (h *Handler) ClearBoughtItems(w http.ResponseWriter, r *http.Request) {
	n, err := h.shopping.ClearBought(h.household())
	if err != nil {
		h.writeRepoError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"removed": n})
}

// AddMissingToShopping computes a recipe's missing ingredients and puts
// them on the shopping list. POST /api/recipes/{id}/shopping
func (h *Handler) AddMissingToShopping(w http.ResponseWriter, r *http.Request) {
	rec, err := h.recipes.Get(r.PathValue("id"))
	if err != nil {
		h.writeRepoError(w, err)
		return
	}
	inventory, err := h.inventory.List(h.household())
	if err != nil {
		h.writeRepoError(w, err)
		return
	}

	diff := reconcile.IngredientDiff(rec.Ingredients, inventory)
	items, err := h.shopping.AddForRecipe(h.household(), rec.ID, diff.Missing)
	if err != nil {
		h.writeRepoError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, items)
}
