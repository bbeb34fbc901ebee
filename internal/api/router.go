package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/seoforge/query-fanout/internal/config"
)

func NewRouter(handler *Handler, health *HealthHandler, cfg config.ServerConfig, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middleware (applied to all routes)
	r.Use(RecoveryMiddleware(logger))
	r.Use(CORSMiddleware)
	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(logger))

	// Health and metrics endpoints are registered BEFORE the rate limiter
	// so Kubernetes probes and Prometheus scrapes are never rejected under load.
	r.Get("/healthz", health.Liveness)
	r.Get("/readyz", health.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	// Rate limiter only applies to API routes below
	r.Group(func(r chi.Router) {
		rl := NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, logger)
		r.Use(rl.Middleware)

		// API v1
		r.Route("/api/v1", func(r chi.Router) {
			r.Get("/analyze", handler.Analyze)
			r.Post("/analyze", handler.Analyze)
			r.Get("/fanout", handler.Fanout)
			r.Post("/fanout", handler.Fanout)
			r.Get("/fanout/ai", handler.FanoutAI)
			r.Post("/fanout/ai", handler.FanoutAI)
			r.Post("/export", handler.Export)
			r.Get("/languages", handler.Languages)
		})
	})

	return r
}
