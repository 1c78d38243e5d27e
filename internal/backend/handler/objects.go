package handler

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/kitchenhub/kitchenhub/internal/auth"
)

// maxRowBytes caps a single object payload. Recipes with photos belong in
// object storage, not here.
const maxRowBytes = 1 << 20

// requireMember checks that the caller belongs to the household. It writes
// the error response itself and reports whether the caller may proceed.
func (h *Handler) requireMember(w http.ResponseWriter, r *http.Request, householdID string) bool {
	m, err := h.households.Membership(householdID, auth.UserID(r.Context()))
	if err != nil {
		h.logger.Error("membership lookup", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return false
	}
	if m == nil {
		writeError(w, http.StatusForbidden, "not a member of this household")
		return false
	}
	return true
}

// ListObjects returns every row of a table belonging to one household.
// GET /api/objects/{table}?household_id=...
func (h *Handler) ListObjects(w http.ResponseWriter, r *http.Request) {
	table := r.PathValue("table")
	if !validTables[table] {
		writeError(w, http.StatusNotFound, "unknown table")
		return
	}
	householdID := r.URL.Query().Get("household_id")
	if householdID == "" {
		writeError(w, http.StatusBadRequest, "household_id is required")
		return
	}
	if !h.requireMember(w, r, householdID) {
		return
	}

	rows, err := h.objects.Select(table, householdID)
	if err != nil {
		h.logger.Error("select objects", "table", table, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if rows == nil {
		rows = []json.RawMessage{}
	}
	writeJSON(w, http.StatusOK, rows)
}

// UpsertObject stores a full row. PUT /api/objects/{table}/{id}
func (h *Handler) UpsertObject(w http.ResponseWriter, r *http.Request) {
	table := r.PathValue("table")
	if !validTables[table] {
		writeError(w, http.StatusNotFound, "unknown table")
		return
	}
	id := r.PathValue("id")

	body, err := io.ReadAll(io.LimitReader(r.Body, maxRowBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "read body")
		return
	}
	var row struct {
		ID          string `json:"id"`
		HouseholdID string `json:"household_id"`
	}
	if err := json.Unmarshal(body, &row); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if row.ID != id {
		writeError(w, http.StatusBadRequest, "row id does not match URL")
		return
	}
	if row.HouseholdID == "" {
		writeError(w, http.StatusBadRequest, "household_id is required")
		return
	}
	if !h.requireMember(w, r, row.HouseholdID) {
		return
	}

	// A row cannot silently move between households.
	_, existingHousehold, err := h.objects.Get(table, id)
	if err != nil {
		h.logger.Error("get object", "table", table, "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if existingHousehold != "" && existingHousehold != row.HouseholdID {
		writeError(w, http.StatusConflict, "row belongs to another household")
		return
	}

	if err := h.objects.Upsert(table, id, row.HouseholdID, body); err != nil {
		h.logger.Error("upsert object", "table", table, "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteObject removes a row. DELETE /api/objects/{table}/{id}
func (h *Handler) DeleteObject(w http.ResponseWriter, r *http.Request) {
	table := r.PathValue("table")
	if !validTables[table] {
		writeError(w, http.StatusNotFound, "unknown table")
		return
	}
	id := r.PathValue("id")

	_, householdID, err := h.objects.Get(table, id)
	if err != nil {
		h.logger.Error("get object", "table", table, "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if householdID == "" {
		// Already gone; deletes are idempotent.
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if !h.requireMember(w, r, householdID) {
		return
	}

	if err := h.objects.Delete(table, id); err != nil {
		h.logger.Error("delete object", "table", table, "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
