package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/iho/leaseledger/internal/adapter/http/handler"
	"github.com/iho/leaseledger/internal/adapter/http/middleware"
	"github.com/iho/leaseledger/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	LeaseHandler          *handler.LeaseHandler
	CalculationHandler    *handler.CalculationHandler
	PostingHandler        *handler.PostingHandler
	ReconciliationHandler *handler.ReconciliationHandler
	AssetHandler          *handler.AssetHandler
	HealthHandler         *handler.HealthHandler
	IdempotencyStore      usecase.IdempotencyStore
	Logger                zerolog.Logger
	// MetricsHandler serves /metrics; promhttp.Handler() when nil.
	MetricsHandler http.Handler
	// AllowedOrigins enables CORS for browser clients; disabled when empty.
	AllowedOrigins []string
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.Metrics)

	if len(cfg.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", middleware.TenantHeader, middleware.IdempotencyKeyHeader},
			ExposedHeaders:   []string{"X-Request-Id", "X-Idempotency-Replay"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}

	// Health endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)

	metricsHandler := cfg.MetricsHandler
	if metricsHandler == nil {
		metricsHandler = promhttp.Handler()
	}
	r.Method(http.MethodGet, "/metrics", metricsHandler)

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.RequireTenant)

		// Idempotency middleware for mutating requests
		if cfg.IdempotencyStore != nil {
			idempotencyMiddleware := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore)
			r.Use(idempotencyMiddleware.Wrap)
		}

		// Leases
		r.Route("/leases", func(r chi.Router) {
			r.Post("/", cfg.LeaseHandler.Create)
			r.Get("/", cfg.LeaseHandler.List)
			r.Get("/{id}", cfg.LeaseHandler.Get)
			r.Post("/{id}/activate", cfg.LeaseHandler.Activate)
			r.Post("/{id}/terminate", cfg.LeaseHandler.Terminate)
			r.Get("/{id}/schedule", cfg.LeaseHandler.Schedule)
			r.Get("/{id}/calculations", cfg.LeaseHandler.Calculations)
			r.Get("/{id}/reconciliation", cfg.ReconciliationHandler.ReconcileLease)
		})

		// Period-end
		r.Route("/calculations", func(r chi.Router) {
			r.Post("/period-end", cfg.CalculationHandler.RunPeriodEnd)
			r.Get("/preview", cfg.CalculationHandler.Preview)
		})

		// ERP posting
		r.Route("/erp", func(r chi.Router) {
			r.Post("/post-batch", cfg.PostingHandler.PostBatch)
			r.Post("/post-period", cfg.PostingHandler.PostPeriod)
			r.Get("/health", cfg.PostingHandler.Health)
			r.Get("/assets", cfg.AssetHandler.List)
			r.Get("/assets/{id}", cfg.AssetHandler.Get)
		})

		r.Get("/reconciliation", cfg.ReconciliationHandler.Report)
	})

	return r
}
