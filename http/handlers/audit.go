package handlers

import (
	"net/http"

	"counsellor-console/db"
	"counsellor-console/errors"
	"counsellor-console/utils"
)

type AuditHandler struct {
	store *db.AuditStore
}

func NewAuditHandler(store *db.AuditStore) *AuditHandler {
	return &AuditHandler{store: store}
}

// Recent lists the latest reassignment attempts, newest first.
func (h *AuditHandler) Recent(w http.ResponseWriter, r *http.Request) {
	limit, err := utils.ParseLimit(r, "limit", 100)
	if err != nil {
		respondErr(w, errors.E(errors.ValidationFailed, err.Error()))
		return
	}
	entries, err := h.store.Recent(r.Context(), limit)
	if err != nil {
		respondErr(w, errors.E(errors.Internal, "load audit entries", err))
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"enabled": h.store.Enabled(),
		"entries": entries,
	})
}
