package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"tablecheck/internal/middleware"
)

// RouterConfig carries the transport-level knobs. An empty JWTSecret leaves
// the API unauthenticated; /health is always open.
type RouterConfig struct {
	JWTSecret          string
	CORSAllowedOrigins []string
	RateLimitRPS       float64
	RateLimitBurst     int
}

// NewRouter mounts the middleware stack and the versioned routes.
func NewRouter(h *Handler, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst).Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", middleware.HeaderRequestID},
		MaxAge:         300,
	}))

	r.Get("/health", h.handleHealth)

	r.Route("/v1", func(r chi.Router) {
		if cfg.JWTSecret != "" {
			r.Use(middleware.RequireJWT([]byte(cfg.JWTSecret)))
		}

		r.Route("/datasets", func(r chi.Router) {
			r.Post("/", h.handleUploadDataset)
			r.Get("/", h.handleListDatasets)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.handleGetDataset)
				r.Delete("/", h.handleDeleteDataset)
				r.Get("/understanding", h.handleUnderstanding)
				r.Get("/sample", h.handleSample)
				r.Post("/analyze", h.handleAnalyze)
				r.Get("/report", h.handleGetReport)
				r.Post("/chat", h.handleDatasetChat)
			})
		})

		r.Post("/chat", h.handleChat)
		r.Get("/chat/{sessionID}/messages", h.handleChatHistory)

		r.Get("/audit", h.handleListAudit)
	})

	return r
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
