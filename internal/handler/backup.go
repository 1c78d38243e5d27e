package handler

import (
	"io"
	"net/http"

	"github.com/kitchenhub/kitchenhub/internal/backup"
)

// maxBackupBytes caps an uploaded snapshot.
const maxBackupBytes = 32 << 20

const passphraseHeader = "X-Backup-Passphrase"

// ExportBackup streams the active household's data as an encrypted
// snapshot. POST /api/backup/export with the passphrase in a header, so it
// never lands in access logs.
func (h *Handler) ExportBackup(w http.ResponseWriter, r *http.Request) {
	passphrase := r.Header.Get(passphraseHeader)
	if passphrase == "" {
		writeError(w, http.StatusBadRequest, "passphrase header is required")
		return
	}

	data, err := backup.Export(h.store, h.household(), passphrase)
	if err != nil {
		h.logger.Error("export backup", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", `attachment; filename="kitchenhub-backup.bin"`)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// ImportBackup restores a snapshot into the local store.
// POST /api/backup/import with the snapshot as the request body.
func (h *Handler) ImportBackup(w http.ResponseWriter, r *http.Request) {
	passphrase := r.Header.Get(passphraseHeader)
	if passphrase == "" {
		writeError(w, http.StatusBadRequest, "passphrase header is required")
		return
	}

	data, err := io.ReadAll(io.LimitReader(r.Body, maxBackupBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "read body")
		return
	}
	if len(data) == 0 {
		writeError(w, http.StatusBadRequest, "empty snapshot")
		return
	}

	snap, err := backup.Import(h.store, data, passphrase)
	if err != nil {
		writeError(w, http.StatusBadRequest, "snapshot could not be decrypted or decoded")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"householdId": snap.HouseholdID,
		"exportedAt":  snap.ExportedAt,
		"recipes":     len(snap.Recipes),
		"inventory":   len(snap.Inventory),
		"shopping":    len(snap.ShoppingList),
		"chatLogs":    len(snap.ChatLogs),
	})
}
