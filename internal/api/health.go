package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// HealthHandler reports service health.
type HealthHandler struct {
	handler   *Handler
	aiEnabled bool
}

// NewHealthHandler creates a health handler. aiEnabled reports whether the
// service runs against a live model or the offline provider.
func NewHealthHandler(handler *Handler, aiEnabled bool) *HealthHandler {
	return &HealthHandler{handler: handler, aiEnabled: aiEnabled}
}

// RegisterHealth mounts the readiness endpoint.
func (h *HealthHandler) RegisterHealth(r chi.Router) {
	r.Get("/healthz", h.HandleHealth)
}

// HandleHealth handles GET /healthz. Database reachability decides
// readiness; provider mode is informational.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	code := http.StatusOK
	if err := h.handler.repo.Ping(r.Context()); err != nil {
		status = "database unreachable"
		code = http.StatusServiceUnavailable
	}

	JSON(w, code, map[string]any{
		"status":     status,
		"ai_enabled": h.aiEnabled,
		"time":       time.Now().UTC().Format(time.RFC3339),
	})
}
