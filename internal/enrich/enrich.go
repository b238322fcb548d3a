package enrich

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"sync"

	"github.com/google/uuid"

	"github.com/finlens/leienrich/internal/cost"
	"github.com/finlens/leienrich/internal/csvio"
	"github.com/finlens/leienrich/internal/domain"
	"github.com/finlens/leienrich/internal/metrics"
	"github.com/finlens/leienrich/internal/resolver"
)

// Appended columns, in output order.
const (
	ColLegalName = "legalName"
	ColBIC       = "bic"
	ColCosts     = "transaction_costs"
)

// Required input columns.
const (
	ColLEI      = "lei"
	ColNotional = "notional"
	ColRate     = "rate"
)

// InputError marks a structural problem with the input dataset: missing
// required columns or a malformed LEI. It is fatal and raised before any
// network activity.
type InputError struct {
	Msg string
}

func (e *InputError) Error() string { return e.Msg }

// Result summarises one enrichment run.
type Result struct {
	RunID          string `json:"run_id"`
	Records        int    `json:"records"`
	UniqueLEIs     int    `json:"unique_leis"`
	WithLegalName  int    `json:"with_legal_name"`
	WithBIC        int    `json:"with_bic"`
	WithCosts      int    `json:"with_costs"`
	UnresolvedLEIs int    `json:"unresolved_leis"`
}

// Service runs the enrichment pipeline: validate input, resolve LEIs,
// join entity data and computed costs onto every record.
type Service struct {
	resolver *resolver.Resolver
	metrics  *metrics.Metrics

	// The registry rate gate is global, so concurrent API callers are
	// serialised around the resolution phase.
	mu sync.Mutex
}

// NewService creates an enrichment service. A nil metrics argument
// disables instrumentation.
func NewService(r *resolver.Resolver, m *metrics.Metrics) *Service {
	if m == nil {
		m = metrics.NewNop()
	}
	return &Service{resolver: r, metrics: m}
}

// EnrichTable validates the input table, resolves its LEIs and returns a
// new table with legalName, bic and transaction_costs appended after the
// original columns. The input table is not modified; row count and row
// order are preserved, and every row is emitted even when its LEI could
// not be resolved.
func (s *Service) EnrichTable(ctx context.Context, t *csvio.Table) (*csvio.Table, *Result, error) {
	leiCol := t.Column(ColLEI)
	notionalCol := t.Column(ColNotional)
	rateCol := t.Column(ColRate)
	if leiCol < 0 || notionalCol < 0 || rateCol < 0 {
		return nil, nil, &InputError{Msg: fmt.Sprintf(
			"input must contain %q, %q and %q columns", ColLEI, ColNotional, ColRate)}
	}

	// Reject malformed LEIs before any network activity.
	leis := make([]string, 0, len(t.Rows))
	for i, row := range t.Rows {
		lei := row[leiCol]
		if !domain.ValidLEI(lei) {
			return nil, nil, &InputError{Msg: fmt.Sprintf(
				"row %d: malformed LEI %q: want %d alphanumeric characters", i+1, lei, domain.LEILength)}
		}
		leis = append(leis, lei)
	}

	runID := uuid.NewString()
	log.Printf("[enrich] run %s: %d records", runID, len(t.Rows))

	s.mu.Lock()
	entities, err := s.resolver.Resolve(ctx, leis)
	s.mu.Unlock()
	if err != nil {
		return nil, nil, fmt.Errorf("resolve LEIs: %w", err)
	}

	out := &csvio.Table{
		Header: append(append([]string{}, t.Header...), ColLegalName, ColBIC, ColCosts),
		Rows:   make([][]string, 0, len(t.Rows)),
	}

	result := &Result{
		RunID:      runID,
		Records:    len(t.Rows),
		UniqueLEIs: countUnique(leis),
	}

	unresolved := make(map[string]struct{})
	for _, row := range t.Rows {
		entity, resolved := entities[row[leiCol]]
		if !resolved {
			unresolved[row[leiCol]] = struct{}{}
		}

		c := 0.0
		if resolved {
			c = cost.Cost(entity.Country,
				parseFloatOrZero(row[notionalCol]),
				parseFloatOrZero(row[rateCol]))
		}

		enrichedRow := append(append([]string{}, row...),
			entity.LegalName,
			entity.BIC,
			strconv.FormatFloat(c, 'f', -1, 64),
		)
		out.Rows = append(out.Rows, enrichedRow)

		if entity.LegalName != "" {
			result.WithLegalName++
		}
		if entity.BIC != "" {
			result.WithBIC++
		}
		if c != 0 {
			result.WithCosts++
		}
	}
	result.UnresolvedLEIs = len(unresolved)

	s.metrics.AddRecordsEnriched(len(out.Rows))
	log.Printf("[enrich] run %s complete: %d records, %d unique LEIs, %d unresolved",
		runID, result.Records, result.UniqueLEIs, result.UnresolvedLEIs)

	return out, result, nil
}

// parseFloatOrZero treats unparseable numerics as 0 so a bad cell never
// faults the run; the cost calculator already defines 0-input behaviour.
func parseFloatOrZero(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

func countUnique(leis []string) int {
	seen := make(map[string]struct{}, len(leis))
	for _, lei := range leis {
		seen[lei] = struct{}{}
	}
	return len(seen)
}
