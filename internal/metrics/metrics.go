package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus instruments for the enrichment pipeline.
type Metrics struct {
	LookupsTotal    *prometheus.CounterVec
	RetriesTotal    prometheus.Counter
	CacheHitsTotal  prometheus.Counter
	CacheMissTotal  prometheus.Counter
	RecordsEnriched prometheus.Counter
}

// New registers the instruments against the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		LookupsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "leienrich_registry_lookups_total",
			Help: "Total registry lookups by final outcome",
		}, []string{"outcome"}),
		RetriesTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "leienrich_registry_retries_total",
			Help: "Total retry attempts after transient registry failures",
		}),
		CacheHitsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "leienrich_cache_hits_total",
			Help: "Total LEI resolutions served from the cache",
		}),
		CacheMissTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "leienrich_cache_misses_total",
			Help: "Total LEI resolutions that required a registry call",
		}),
		RecordsEnriched: factory.NewCounter(prometheus.CounterOpts{
			Name: "leienrich_records_enriched_total",
			Help: "Total transaction records written to enriched output",
		}),
	}
}

// NewNop returns metrics bound to a throwaway registry, for callers that
// do not scrape.
func NewNop() *Metrics {
	return New(prometheus.NewRegistry())
}

func (m *Metrics) ObserveLookup(outcome string) {
	m.LookupsTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncrementRetries() {
	m.RetriesTotal.Inc()
}

func (m *Metrics) IncrementCacheHits() {
	m.CacheHitsTotal.Inc()
}

func (m *Metrics) IncrementCacheMisses() {
	m.CacheMissTotal.Inc()
}

func (m *Metrics) AddRecordsEnriched(n int) {
	m.RecordsEnriched.Add(float64(n))
}
