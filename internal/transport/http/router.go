// Package http wires the prediction API: routing, handlers and the
// middleware chain.
package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"tariffscope/internal/artifact"
	"tariffscope/internal/config"
	"tariffscope/internal/middleware"
)

// RouterDeps carries everything the router needs.
type RouterDeps struct {
	Config  *config.Config
	Bundle  *artifact.Bundle
	Predict PredictService
	Logger  *slog.Logger
	Version string
}

// NewRouter builds the chi router with the full middleware chain.
func NewRouter(deps RouterDeps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.StructuredLogger(logger))
	r.Use(middleware.Recoverer(logger))
	r.Use(Metrics)
	if deps.Config != nil && deps.Config.Security.RateLimit.Enabled {
		limiter := middleware.NewRateLimiter(
			deps.Config.Security.RateLimit.RPS,
			deps.Config.Security.RateLimit.Burst,
			logger,
		)
		r.Use(limiter.Handler)
	}

	predictHandler := NewPredictHandler(deps.Predict, logger)
	modelHandler := NewModelHandler(deps.Bundle, logger)
	healthHandler := NewHealthHandler(deps.Bundle, deps.Version)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", healthHandler.HealthCheck)
		r.Get("/predict", predictHandler.Predict)
		r.Get("/model", modelHandler.Info)
		r.Get("/countries", modelHandler.Countries)
		r.Get("/sectors", modelHandler.Sectors)
	})
	r.Handle("/metrics", promhttp.Handler())

	return r
}
