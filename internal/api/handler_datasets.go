package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"tablecheck/internal/domain"
	"tablecheck/internal/service"
)

// handleUploadDataset accepts one multipart file under the "file" field.
func (h *Handler) handleUploadDataset(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.writeError(w, r, domain.ErrValidation("upload exceeds the %d byte limit", h.maxUploadBytes))
			return
		}
		h.writeError(w, r, domain.ErrValidation("invalid multipart request: %v", err))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.writeError(w, r, domain.ErrValidation("multipart field %q is required", "file"))
		return
	}
	defer file.Close() //nolint:errcheck

	data, err := io.ReadAll(file)
	if err != nil {
		h.writeError(w, r, domain.ErrValidation("read upload: %v", err))
		return
	}

	d, err := h.datasets.Upload(r.Context(), actor(r), service.UploadInput{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, d)
}

func (h *Handler) handleListDatasets(w http.ResponseWriter, r *http.Request) {
	page := pageFromQuery(r)
	items, total, err := h.datasets.List(r.Context(), page)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, newListResponse(items, page, total))
}

func (h *Handler) handleGetDataset(w http.ResponseWriter, r *http.Request) {
	d, err := h.datasets.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, d)
}

func (h *Handler) handleDeleteDataset(w http.ResponseWriter, r *http.Request) {
	if err := h.datasets.Delete(r.Context(), actor(r), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleUnderstanding(w http.ResponseWriter, r *http.Request) {
	u, err := h.datasets.Understanding(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, u)
}

func (h *Handler) handleSample(w http.ResponseWriter, r *http.Request) {
	rows, err := h.datasets.Sample(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if rows == nil {
		rows = []map[string]any{}
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"rows": rows, "row_count": len(rows)})
}

func (h *Handler) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	rep, err := h.analysis.Analyze(r.Context(), actor(r), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, rep)
}

func (h *Handler) handleGetReport(w http.ResponseWriter, r *http.Request) {
	rep, err := h.analysis.LatestReport(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, rep)
}
