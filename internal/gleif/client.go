package gleif

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/finlens/leienrich/internal/domain"
	"github.com/finlens/leienrich/internal/metrics"
)

// DefaultBaseURL is the GLEIF lei-records endpoint.
const DefaultBaseURL = "https://api.gleif.org/api/v1/lei-records"

const (
	defaultRateDelay   = 100 * time.Millisecond
	defaultMaxRetries  = 3
	defaultTimeout     = 30 * time.Second
	defaultBackoffBase = 1 * time.Second
)

// Config holds the tunable knobs of the registry client. Zero values are
// replaced with the defaults above.
type Config struct {
	BaseURL     string
	RateDelay   time.Duration // minimum delay between outbound calls
	MaxRetries  int           // total attempts for transient failures
	Timeout     time.Duration // per-request timeout
	BackoffBase time.Duration // first backoff interval, doubled per attempt
}

// Client performs single-LEI lookups against the GLEIF registry. It owns
// the global rate gate and the retry policy; it knows nothing about
// caching.
type Client struct {
	baseURL     string
	maxRetries  int
	backoffBase time.Duration
	httpClient  *http.Client
	gate        *gate
	metrics     *metrics.Metrics
}

// New creates a registry client. A nil metrics argument disables
// instrumentation.
func New(cfg Config, m *metrics.Metrics) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.RateDelay <= 0 {
		cfg.RateDelay = defaultRateDelay
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = defaultMaxRetries
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.BackoffBase <= 0 {
		cfg.BackoffBase = defaultBackoffBase
	}
	if m == nil {
		m = metrics.NewNop()
	}
	return &Client{
		baseURL:     cfg.BaseURL,
		maxRetries:  cfg.MaxRetries,
		backoffBase: cfg.BackoffBase,
		httpClient:  &http.Client{Timeout: cfg.Timeout},
		gate:        newGate(cfg.RateDelay),
		metrics:     m,
	}
}

// leiRecordsResponse mirrors the slice of the GLEIF payload this tool
// consumes: the first record's legal name, BIC list and legal-address
// country.
type leiRecordsResponse struct {
	Data []struct {
		Attributes struct {
			BIC    bicList `json:"bic"`
			Entity struct {
				LegalName struct {
					Name string `json:"name"`
				} `json:"legalName"`
				LegalAddress struct {
					Country string `json:"country"`
				} `json:"legalAddress"`
			} `json:"entity"`
		} `json:"attributes"`
	} `json:"data"`
}

// bicList accepts the BIC attribute as an array, a bare string, or null.
type bicList []string

func (b *bicList) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*b = nil
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*b = list
		return nil
	}
	var single string
	if err := json.Unmarshal(data, &single); err != nil {
		return fmt.Errorf("bic is neither array nor string: %w", err)
	}
	*b = []string{single}
	return nil
}

// Fetch resolves one LEI, applying the rate gate before every outbound
// call and retrying transient failures with exponential backoff. The
// final outcome is one of the four domain.Outcome variants; the last
// transient failure is surfaced after the retry budget is exhausted,
// never converted.
func (c *Client) Fetch(ctx context.Context, lei string) domain.Outcome {
	// Callers validate before resolving; this guard keeps a malformed
	// LEI from ever reaching the network.
	if !domain.ValidLEI(lei) {
		out := domain.Permanent(fmt.Errorf("malformed LEI %q: want %d alphanumeric characters", lei, domain.LEILength))
		c.metrics.ObserveLookup(string(out.Status))
		return out
	}

	var out domain.Outcome
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		out = c.doFetch(ctx, lei)
		if out.Status != domain.StatusTransient {
			break
		}
		if attempt == c.maxRetries-1 {
			break
		}

		backoff := c.backoffBase << attempt
		log.Printf("[gleif] transient failure for %s (attempt %d/%d), retrying in %s: %v",
			lei, attempt+1, c.maxRetries, backoff, out.Err)
		c.metrics.IncrementRetries()

		timer := time.NewTimer(backoff)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			c.metrics.ObserveLookup(string(domain.StatusTransient))
			return domain.Transient(ctx.Err())
		}
	}

	c.metrics.ObserveLookup(string(out.Status))
	return out
}

// doFetch performs a single gated request and classifies the response.
func (c *Client) doFetch(ctx context.Context, lei string) domain.Outcome {
	if err := c.gate.wait(ctx); err != nil {
		return domain.Transient(fmt.Errorf("rate gate: %w", err))
	}

	reqURL := c.baseURL + "?filter[lei]=" + url.QueryEscape(lei)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return domain.Permanent(fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("Accept", "application/vnd.api+json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Connection refused, DNS failure, timeout: all retryable.
		return domain.Transient(fmt.Errorf("request: %w", err))
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		// Fall through to decode.
	case resp.StatusCode == http.StatusNotFound:
		return domain.NotFound()
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return domain.Transient(fmt.Errorf("registry returned HTTP %d", resp.StatusCode))
	default:
		return domain.Permanent(fmt.Errorf("registry returned HTTP %d", resp.StatusCode))
	}

	var payload leiRecordsResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return domain.Permanent(fmt.Errorf("decode payload: %w", err))
	}

	if len(payload.Data) == 0 {
		return domain.NotFound()
	}

	attrs := payload.Data[0].Attributes
	entity := domain.Entity{
		LegalName: attrs.Entity.LegalName.Name,
		Country:   attrs.Entity.LegalAddress.Country,
	}
	// Absent BIC is not an error; take the first when present.
	if len(attrs.BIC) > 0 {
		entity.BIC = attrs.BIC[0]
	}

	return domain.Resolved(entity)
}
