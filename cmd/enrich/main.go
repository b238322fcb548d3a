package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/finlens/leienrich/internal/cache"
	"github.com/finlens/leienrich/internal/config"
	"github.com/finlens/leienrich/internal/csvio"
	"github.com/finlens/leienrich/internal/enrich"
	"github.com/finlens/leienrich/internal/gleif"
	"github.com/finlens/leienrich/internal/resolver"
)

func main() {
	input := flag.String("in", "testdata/sample_input.csv", "input transactions CSV")
	output := flag.String("out", "output.csv", "enriched output CSV")
	cachePath := flag.String("cache", "", "LEI cache path (default from LEI_CACHE_PATH env)")
	flag.Parse()

	cfg := config.FromEnv()
	if *cachePath != "" {
		cfg.CachePath = *cachePath
	}

	log.Printf("Opening LEI cache at %s", cfg.CachePath)
	store, err := cache.Open(cfg.CachePath)
	if err != nil {
		log.Fatalf("Failed to open cache: %v", err)
	}
	defer store.Close()
	log.Printf("Cache loaded with %d entries", store.Len())

	client := gleif.New(cfg.Registry, nil)
	res := resolver.New(store, client, nil)
	svc := enrich.NewService(res, nil)

	in, err := os.Open(*input)
	if err != nil {
		log.Fatalf("Failed to open input: %v", err)
	}
	table, err := csvio.ReadTable(in)
	in.Close()
	if err != nil {
		log.Fatalf("Failed to parse input: %v", err)
	}
	log.Printf("Read %d records from %s", len(table.Rows), *input)

	enriched, result, err := svc.EnrichTable(context.Background(), table)
	if err != nil {
		log.Fatalf("Enrichment failed: %v", err)
	}

	out, err := os.Create(*output)
	if err != nil {
		log.Fatalf("Failed to create output: %v", err)
	}
	if err := csvio.WriteTable(out, enriched); err != nil {
		out.Close()
		log.Fatalf("Failed to write output: %v", err)
	}
	if err := out.Close(); err != nil {
		log.Fatalf("Failed to close output: %v", err)
	}
	log.Printf("Enriched data saved to %s", *output)

	log.Printf("")
	log.Printf("Enrichment Summary:")
	log.Printf("  Run ID:                         %s", result.RunID)
	log.Printf("  Records processed:              %d", result.Records)
	log.Printf("  Unique LEIs processed:          %d", result.UniqueLEIs)
	log.Printf("  Records with legal names:       %d", result.WithLegalName)
	log.Printf("  Records with BIC codes:         %d", result.WithBIC)
	log.Printf("  Records with transaction costs: %d", result.WithCosts)
	if result.UnresolvedLEIs > 0 {
		log.Printf("  Unresolved LEIs:                %d", result.UnresolvedLEIs)
	}
}
