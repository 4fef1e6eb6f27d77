package http

import (
	"net/http"
	"time"

	"github.com/go-chi/render"

	"tariffscope/internal/artifact"
)

// HealthHandler reports service liveness and the loaded model.
type HealthHandler struct {
	bundle  *artifact.Bundle
	version string
	started time.Time
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(bundle *artifact.Bundle, version string) *HealthHandler {
	return &HealthHandler{
		bundle:  bundle,
		version: version,
		started: time.Now().UTC(),
	}
}

// HealthCheck handles GET /api/health.
func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	status := map[string]any{
		"status":       "ok",
		"version":      h.version,
		"uptime":       time.Since(h.started).String(),
		"model_loaded": h.bundle != nil,
	}
	if h.bundle != nil {
		status["strategy"] = h.bundle.Meta.Strategy
		status["trained_at"] = h.bundle.Meta.CreatedAt
	}
	render.JSON(w, r, status)
}
