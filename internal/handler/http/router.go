package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/utafrali/catalogsearch/internal/auth"
	"github.com/utafrali/catalogsearch/pkg/health"
	"github.com/utafrali/catalogsearch/pkg/middleware"
)

const serviceName = "search"

// RouterOptions tunes browser-facing behaviour of the public routes.
type RouterOptions struct {
	// CORSOrigins may call the API from a browser. Empty disables CORS.
	CORSOrigins []string
	// CacheMaxAge lets shared caches keep successful search responses.
	CacheMaxAge time.Duration
	// RateLimitRPS and RateLimitBurst bound each client on search and
	// suggest, which can trigger a hydration. Zero RPS disables the limit.
	RateLimitRPS   float64
	RateLimitBurst int
}

// NewRouter creates a chi router with all search service routes registered.
// Mutating routes require a token with the admin role.
func NewRouter(
	search Searcher,
	sync Syncer,
	validate middleware.TokenValidator,
	healthHandler *health.Handler,
	opts RouterOptions,
	logger *slog.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Tracing(serviceName))
	r.Use(middleware.PrometheusMetrics(serviceName))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(60 * time.Second))

	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())

	h := NewSearchHandler(search, sync, logger)

	r.Route("/api/v1/search", func(r chi.Router) {
		if len(opts.CORSOrigins) > 0 {
			r.Use(middleware.CORS(middleware.CORSConfig{AllowedOrigins: opts.CORSOrigins}))
		}

		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimit(opts.RateLimitRPS, opts.RateLimitBurst, logger))
			r.Use(middleware.CacheControl(opts.CacheMaxAge))

			r.Get("/", h.Search)
			r.Get("/suggest", h.Suggest)
		})
		r.Get("/stats", h.Stats)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(validate))
			r.Use(middleware.RequireRole(auth.RoleAdmin))
			r.Use(ContentTypeJSON)

			r.Post("/reindex", h.Reindex)
			r.Put("/products", h.UpsertProduct)
			r.Put("/categories", h.UpsertCategory)
			r.Delete("/documents/{id}", h.DeleteDocument)
		})
	})

	return r
}
