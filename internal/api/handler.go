// Package api exposes the service over HTTP: JSON handlers, routing, and
// error mapping.
package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"tablecheck/internal/domain"
	"tablecheck/internal/middleware"
	"tablecheck/internal/service"
)

// DatasetAPI is what the handlers need from the dataset service.
type DatasetAPI interface {
	Upload(ctx context.Context, actor string, in service.UploadInput) (*domain.Dataset, error)
	Get(ctx context.Context, id string) (*domain.Dataset, error)
	List(ctx context.Context, page domain.PageRequest) ([]domain.Dataset, int64, error)
	Delete(ctx context.Context, actor, id string) error
	Understanding(ctx context.Context, id string) (*domain.DatasetUnderstanding, error)
	Sample(ctx context.Context, id string) ([]map[string]any, error)
}

// AnalysisAPI is what the handlers need from the analysis service.
type AnalysisAPI interface {
	Analyze(ctx context.Context, actor, datasetID string) (*domain.Report, error)
	LatestReport(ctx context.Context, datasetID string) (*domain.Report, error)
}

// ChatAPI is what the handlers need from the chat service.
type ChatAPI interface {
	Send(ctx context.Context, actor, sessionID, message string) (*domain.ChatMessage, error)
	SendWithDataset(ctx context.Context, actor, sessionID, datasetID, message string) (*domain.ChatMessage, error)
	History(ctx context.Context, sessionID string, page domain.PageRequest) ([]domain.ChatMessage, int64, error)
}

// AuditAPI is what the handlers need from the audit service.
type AuditAPI interface {
	List(ctx context.Context, filter domain.AuditFilter) ([]domain.AuditEntry, int64, error)
}

// Handler carries the services behind the HTTP surface.
type Handler struct {
	datasets       DatasetAPI
	analysis       AnalysisAPI
	chat           ChatAPI
	audit          AuditAPI
	maxUploadBytes int64
	logger         *slog.Logger
}

func NewHandler(datasets DatasetAPI, analysis AnalysisAPI, chat ChatAPI, audit AuditAPI, maxUploadBytes int64, logger *slog.Logger) *Handler {
	return &Handler{
		datasets:       datasets,
		analysis:       analysis,
		chat:           chat,
		audit:          audit,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("write response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := httpStatus(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("request failed",
			"method", r.Method, "path", r.URL.Path,
			"request_id", middleware.RequestIDFromContext(r.Context()),
			"error", err)
		h.writeJSON(w, status, map[string]string{"error": "internal error"})
		return
	}
	h.writeJSON(w, status, map[string]string{"error": err.Error()})
}

// actor resolves the audit actor from the authenticated principal.
func actor(r *http.Request) string {
	if sub := middleware.PrincipalFromContext(r.Context()); sub != "" {
		return sub
	}
	return service.AnonymousActor
}

// pageFromQuery reads max_results and page_token list parameters.
func pageFromQuery(r *http.Request) domain.PageRequest {
	page := domain.PageRequest{PageToken: r.URL.Query().Get("page_token")}
	if raw := r.URL.Query().Get("max_results"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			page.MaxResults = n
		}
	}
	return page
}

// listResponse is the shared envelope for paginated listings.
type listResponse[T any] struct {
	Items         []T    `json:"items"`
	TotalCount    int64  `json:"total_count"`
	NextPageToken string `json:"next_page_token,omitempty"`
}

func newListResponse[T any](items []T, page domain.PageRequest, total int64) listResponse[T] {
	if items == nil {
		items = []T{}
	}
	return listResponse[T]{
		Items:         items,
		TotalCount:    total,
		NextPageToken: domain.NextPageToken(page.Offset(), page.Limit(), total),
	}
}
