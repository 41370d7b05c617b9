package api

import (
	"net/http"

	"tablecheck/internal/domain"
)

func (h *Handler) handleListAudit(w http.ResponseWriter, r *http.Request) {
	page := pageFromQuery(r)
	filter := domain.AuditFilter{
		Actor:     optionalQuery(r, "actor"),
		Action:    optionalQuery(r, "action"),
		DatasetID: optionalQuery(r, "dataset_id"),
		Page:      page,
	}

	entries, total, err := h.audit.List(r.Context(), filter)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, newListResponse(entries, page, total))
}

func optionalQuery(r *http.Request, key string) *string {
	if v := r.URL.Query().Get(key); v != "" {
		return &v
	}
	return nil
}
