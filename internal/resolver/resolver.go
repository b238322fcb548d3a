package resolver

import (
	"context"
	"fmt"
	"log"

	"github.com/finlens/leienrich/internal/cache"
	"github.com/finlens/leienrich/internal/domain"
	"github.com/finlens/leienrich/internal/metrics"
)

// Fetcher is the registry lookup capability the resolver depends on. The
// production implementation is *gleif.Client.
type Fetcher interface {
	Fetch(ctx context.Context, lei string) domain.Outcome
}

// Resolver turns a set of LEIs into entity data, consulting the cache
// before the network and persisting newly discovered entities. It owns
// the cache policy; the fetcher knows nothing about caching.
type Resolver struct {
	store   *cache.Store
	fetcher Fetcher
	metrics *metrics.Metrics
}

// New creates a resolver. A nil metrics argument disables instrumentation.
func New(store *cache.Store, fetcher Fetcher, m *metrics.Metrics) *Resolver {
	if m == nil {
		m = metrics.NewNop()
	}
	return &Resolver{store: store, fetcher: fetcher, metrics: m}
}

// Resolve maps each unique LEI to its entity data. Absent entries mean
// the LEI could not be resolved this run; callers treat absence as "no
// enrichment available", not as an error. Each LEI hits the network at
// most once per run. The only error returned is a cache persistence
// failure, which aborts the run.
func (r *Resolver) Resolve(ctx context.Context, leis []string) (map[string]domain.Entity, error) {
	unique := dedupe(leis)
	log.Printf("[resolver] resolving %d unique LEIs (%d input references)", len(unique), len(leis))

	result := make(map[string]domain.Entity, len(unique))
	for _, lei := range unique {
		if e, ok := r.store.Get(lei); ok {
			r.metrics.IncrementCacheHits()
			result[lei] = e
			continue
		}
		r.metrics.IncrementCacheMisses()

		out := r.fetcher.Fetch(ctx, lei)
		switch out.Status {
		case domain.StatusResolved:
			result[lei] = out.Entity
			r.store.Put(lei, out.Entity)
		case domain.StatusNotFound:
			// Cache the known-empty sentinel so future runs skip the
			// network for this LEI too.
			log.Printf("[resolver] no registry record for %s", lei)
			result[lei] = domain.Entity{}
			r.store.Put(lei, domain.Entity{})
		case domain.StatusTransient:
			log.Printf("[resolver] WARNING: %s unresolved after retries: %v", lei, out.Err)
		case domain.StatusPermanent:
			log.Printf("[resolver] WARNING: %s unresolved (permanent): %v", lei, out.Err)
		}
	}

	if err := r.store.Persist(); err != nil {
		return nil, fmt.Errorf("persist cache: %w", err)
	}

	return result, nil
}

// ResolveOne resolves a single LEI through the same cache-first path.
func (r *Resolver) ResolveOne(ctx context.Context, lei string) (domain.Entity, bool, error) {
	m, err := r.Resolve(ctx, []string{lei})
	if err != nil {
		return domain.Entity{}, false, err
	}
	e, ok := m[lei]
	return e, ok, nil
}

// dedupe returns the unique LEIs in first-seen order.
func dedupe(leis []string) []string {
	seen := make(map[string]struct{}, len(leis))
	var unique []string
	for _, lei := range leis {
		if _, ok := seen[lei]; ok {
			continue
		}
		seen[lei] = struct{}{}
		unique = append(unique, lei)
	}
	return unique
}
