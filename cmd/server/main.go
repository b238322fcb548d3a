package main

import (
	"log"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/finlens/leienrich/internal/api"
	"github.com/finlens/leienrich/internal/cache"
	"github.com/finlens/leienrich/internal/config"
	"github.com/finlens/leienrich/internal/enrich"
	"github.com/finlens/leienrich/internal/gleif"
	"github.com/finlens/leienrich/internal/metrics"
	"github.com/finlens/leienrich/internal/resolver"
)

func main() {
	cfg := config.FromEnv()

	log.Printf("Opening LEI cache at %s", cfg.CachePath)
	store, err := cache.Open(cfg.CachePath)
	if err != nil {
		log.Fatalf("Failed to open cache: %v", err)
	}
	defer store.Close()
	log.Printf("Cache loaded with %d entries", store.Len())

	registry := prometheus.NewRegistry()
	m := metrics.New(registry)

	// Create the resolution pipeline.
	client := gleif.New(cfg.Registry, m)
	res := resolver.New(store, client, m)
	enrichSvc := enrich.NewService(res, m)

	// Create router.
	router := api.NewRouter(enrichSvc, res, store, registry)

	log.Printf("LEI Enrichment Service")
	log.Printf("Listening on http://localhost:%s", cfg.Port)
	log.Printf("API base: http://localhost:%s/api/v1", cfg.Port)
	log.Printf("")
	log.Printf("Endpoints:")
	log.Printf("  POST   /api/v1/enrich")
	log.Printf("  GET    /api/v1/entities")
	log.Printf("  GET    /api/v1/entities/{lei}")
	log.Printf("  GET    /api/v1/cache/stats")
	log.Printf("  GET    /healthz")
	log.Printf("  GET    /metrics")

	if err := http.ListenAndServe(":"+cfg.Port, router); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
