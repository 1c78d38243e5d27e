package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/kitchenhub/kitchenhub/internal/model"
	"github.com/kitchenhub/kitchenhub/internal/reconcile"
	"github.com/kitchenhub/kitchenhub/internal/repo"
)

// ListRecipes returns the household's recipes, optionally filtered.
// GET /api/recipes?keyword=...&tags=a,b&max_duration=30
func (h *Handler) ListRecipes(w http.ResponseWriter, r *http.Request) {
	recipes, err := h.recipes.List(h.household())
	if err != nil {
		h.writeRepoError(w, err)
		return
	}

	f := reconcile.Filter{
		Keyword:     r.URL.Query().Get("keyword"),
		Tags:        splitTags(r.URL.Query().Get("tags")),
		MaxDuration: queryInt(r, "max_duration"),
	}
	if f.Keyword != "" || len(f.Tags) > 0 || f.MaxDuration > 0 {
		recipes = reconcile.FilterRecipes(recipes, f)
	}
	writeJSON(w, http.StatusOK, orEmptyRecipes(recipes))
}

func (h *Handler) GetRecipe(w http.ResponseWriter, r *http.Request) {
	rec, err := h.recipes.Get(r.PathValue("id"))
	if err != nil {
		h.writeRepoError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *Handler) CreateRecipe(w http.ResponseWriter, r *http.Request) {
	var in repo.RecipeInput
	if !decodeBody(w, r, &in) {
		return
	}
	if strings.TrimSpace(in.Title) == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}

	rec, err := h.recipes.Create(h.household(), in)
	if err != nil {
		h.writeRepoError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

func (h *Handler) UpdateRecipe(w http.ResponseWriter, r *http.Request) {
	var in repo.RecipeInput
	if !decodeBody(w, r, &in) {
		return
	}
	if strings.TrimSpace(in.Title) == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}

	rec, err := h.recipes.Update(r.PathValue("id"), in)
	if err != nil {
		h.writeRepoError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *Handler) DeleteRecipe(w http.ResponseWriter, r *http.Request) {
	if err := h.recipes.Delete(r.PathValue("id")); err != nil {
		h.writeRepoError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RecipeDiff compares a recipe's ingredients against the pantry.
// GET /api/recipes/{id}/diff
func (h *Handler) RecipeDiff(w http.ResponseWriter, r *http.Request) {
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
	writeJSON(w, http.StatusOK, reconcile.IngredientDiff(rec.Ingredients, inventory))
}

// RecommendRecipes picks random recipes for the "what should we cook"
// button. GET /api/recipes/recommendations?count=3&tags=...&max_duration=30
func (h *Handler) RecommendRecipes(w http.ResponseWriter, r *http.Request) {
	recipes, err := h.recipes.List(h.household())
	if err != nil {
		h.writeRepoError(w, err)
		return
	}
	picked := reconcile.Recommend(recipes, reconcile.RecommendParams{
		MaxDuration: queryInt(r, "max_duration"),
		Tags:        splitTags(r.URL.Query().Get("tags")),
		Count:       queryInt(r, "count"),
	})
	writeJSON(w, http.StatusOK, orEmptyRecipes(picked))
}

func orEmptyRecipes(recipes []model.Recipe) []model.Recipe {
	if recipes == nil {
		return []model.Recipe{}
	}
	return recipes
}

func splitTags(raw string) []string {
	if raw == "" {
		return nil
	}
	var tags []string
	for _, t := range strings.Split(raw, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

func queryInt(r *http.Request, key string) int {
	n, _ := strconv.Atoi(r.URL.Query().Get(key))
	return n
}
