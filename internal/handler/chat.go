package handler

import (
	"net/http"
	"strings"

	"github.com/kitchenhub/kitchenhub/internal/model"
)

// ListChatLogs returns the household's conversations, optionally narrowed
// to one recipe. GET /api/chats?recipe_id=...
func (h *Handler) ListChatLogs(w http.ResponseWriter, r *http.Request) {
	var (
		logs []model.ChatLog
		err  error
	)
	if recipeID := r.URL.Query().Get("recipe_id"); recipeID != "" {
		logs, err = h.chat.ListByRecipe(h.household(), recipeID)
	} else {
		logs, err = h.chat.List(h.household())
	}
	if err != nil {
		h.writeRepoError(w, err)
		return
	}
	if logs == nil {
		logs = []model.ChatLog{}
	}
	writeJSON(w, http.StatusOK, logs)
}

func (h *Handler) GetChatLog(w http.ResponseWriter, r *http.Request) {
	log, err := h.chat.Get(r.PathValue("id"))
	if err != nil {
		h.writeRepoError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, log)
}

type createChatRequest struct {
	Title    string `json:"title"`
	RecipeID string `json:"recipeId"`
}

func (h *Handler) CreateChatLog(w http.ResponseWriter, r *http.Request) {
	var req createChatRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}

	log, err := h.chat.CreateLog(h.household(), req.RecipeID, req.Title)
	if err != nil {
		h.writeRepoError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, log)
}

type chatMessageRequest struct {
	Role    model.ChatRole `json:"role"`
	Content string         `json:"content"`
}

// AddChatMessage appends a message to a conversation.
// POST /api/chats/{id}/messages
func (h *Handler) AddChatMessage(w http.ResponseWriter, r *http.Request) {
	var req chatMessageRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Role != model.RoleUser && req.Role != model.RoleAssistant {
		writeError(w, http.StatusBadRequest, "role must be user or assistant")
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		writeError(w, http.StatusBadRequest, "content is required")
		return
	}

	log, err := h.chat.AddMessage(r.PathValue("id"), req.Role, req.Content)
	if err != nil {
		h.writeRepoError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, log)
}

func (h *Handler) DeleteChatLog(w http.ResponseWriter, r *http.Request) {
	if err := h.chat.Delete(r.PathValue("id")); err != nil {
		h.writeRepoError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
