// Package api provides HTTP handlers for the sales training API.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/containerd/errdefs"
	"github.com/go-chi/chi/v5"

	"github.com/ovasilenko/salescoach/internal/live"
	"github.com/ovasilenko/salescoach/internal/persona"
	"github.com/ovasilenko/salescoach/internal/session"
	"github.com/ovasilenko/salescoach/internal/store"
)

// Handler carries the shared dependencies of all API endpoints.
type Handler struct {
	sessions     *session.Manager
	catalog      *persona.Catalog
	repo         store.Repository
	hub          *live.Hub
	rateLimiter  *RateLimiter
	historyLimit int
	isDev        bool
}

// NewHandler creates a Handler with common dependencies.
func NewHandler(sessions *session.Manager, catalog *persona.Catalog, repo store.Repository, hub *live.Hub, rl *RateLimiter, historyLimit int, isDev bool) *Handler {
	return &Handler{
		sessions:     sessions,
		catalog:      catalog,
		repo:         repo,
		hub:          hub,
		rateLimiter:  rl,
		historyLimit: historyLimit,
		isDev:        isDev,
	}
}

// RegisterRoutes mounts all API endpoints.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Get("/personas", h.HandleListPersonas)
		r.Get("/personas/{personaID}", h.HandleGetPersona)

		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", h.HandleStartSession)
			r.Get("/", h.HandleListSessions)
			r.Get("/{sessionID}", h.HandleGetSession)
			r.Post("/{sessionID}/turns", h.HandleTurn)
			r.Post("/{sessionID}/end", h.HandleEndSession)
			r.Get("/{sessionID}/report", h.HandleGetReport)
		})
	})
	r.Get("/ws/sessions/{sessionID}/live", h.HandleLive)
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

// statusFromError maps classified errors to HTTP status codes.
func statusFromError(err error) int {
	switch {
	case errdefs.IsNotFound(err):
		return http.StatusNotFound
	case errdefs.IsConflict(err):
		return http.StatusConflict
	case errdefs.IsFailedPrecondition(err):
		return http.StatusConflict
	case errdefs.IsInvalidArgument(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
