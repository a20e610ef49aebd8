package http

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"enrollapi/internal/config"
	"enrollapi/internal/middleware"
	"enrollapi/internal/services"
)

// NewRouter assembles the full HTTP API: middleware chain, dashboard
// routes under /api/v1, health and Prometheus metrics.
func NewRouter(cfg *config.Config, logger *slog.Logger, service *services.DashboardService, version string) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.StructuredLogger(logger))
	r.Use(middleware.Recoverer(logger))
	r.Use(middleware.Compress(5))
	r.Use(middleware.CORS(cfg.Server.AllowedOrigins))
	r.Use(chimiddleware.Timeout(cfg.Server.WriteTimeout))

	if cfg.RateLimit.Enabled {
		limiter := middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst, logger)
		r.Use(limiter.Handler)
	}

	r.Mount("/api/v1", NewDashboardHandler(service, logger).Routes())
	r.Mount("/health", NewHealthHandler(logger, version).Routes())
	r.Handle("/metrics", promhttp.Handler())

	return r
}
