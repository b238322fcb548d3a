package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/finlens/leienrich/internal/cache"
	"github.com/finlens/leienrich/internal/enrich"
	"github.com/finlens/leienrich/internal/resolver"
)

// NewRouter creates the Chi router with all API routes mounted.
func NewRouter(
	enrichSvc *enrich.Service,
	res *resolver.Resolver,
	store *cache.Store,
	gatherer prometheus.Gatherer,
) http.Handler {
	h := &Handlers{
		enrichSvc: enrichSvc,
		resolver:  res,
		store:     store,
	}

	r := chi.NewRouter()

	// Middleware.
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Route("/api/v1", func(r chi.Router) {
		// Enrichment.
		r.Post("/enrich", h.EnrichCSV)

		// Cached entities.
		r.Get("/entities", h.ListEntities)
		r.Get("/entities/{lei}", h.GetEntity)

		// Cache inspection.
		r.Get("/cache/stats", h.GetCacheStats)
	})

	r.Get("/healthz", h.Health)
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	return r
}
