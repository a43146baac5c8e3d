// Package server implements the component store HTTP API. It is the
// endpoint a Builder talks to for cloud export and import by name.
package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/pthm/wcx/internal/storage"
)

// Options configures the router.
type Options struct {
	AuthEnabled bool
	Token       string
	Logger      *slog.Logger
}

// NewRouter returns the full store router: health checks and the
// component routes.
func NewRouter(repo storage.Repository, opts Options) chi.Router {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handler{repo: repo, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(logger))
	r.Use(middleware.Recoverer)

	// Health checks are unauthenticated.
	r.Get("/health/live", h.Live)
	r.Get("/health/ready", h.Ready)

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(opts.AuthEnabled, opts.Token))

		r.Get("/components", h.ListComponents)
		r.Post("/components", h.SaveComponent)
		r.Get("/components/{name}", h.GetComponent)
		r.Get("/components/{name}/script", h.GetScript)
		r.Get("/components/{name}/document", h.GetDocument)
		r.Get("/components/{name}/preview", h.Preview)
	})

	return r
}

// Handler serves the component routes.
type Handler struct {
	repo   storage.Repository
	logger *slog.Logger
}

// Live reports that the process is up.
func (h *Handler) Live(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Ready reports whether storage is reachable.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	if err := h.repo.Ping(r.Context()); err != nil {
		h.logger.Warn("readiness check failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
