package gleif

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finlens/leienrich/internal/domain"
)

const testLEI = "529900T8BM49AURSDO55"

const fullPayload = `{
	"data": [{
		"attributes": {
			"bic": ["DEUTDEFFXXX", "DEUTDEFF500"],
			"entity": {
				"legalName": {"name": "Deutsche Bank Aktiengesellschaft"},
				"legalAddress": {"country": "DE"}
			}
		}
	}]
}`

func testClient(baseURL string) *Client {
	return New(Config{
		BaseURL:     baseURL,
		RateDelay:   time.Millisecond,
		MaxRetries:  3,
		Timeout:     2 * time.Second,
		BackoffBase: time.Millisecond,
	}, nil)
}

func TestFetchResolved(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("filter[lei]")
		w.Write([]byte(fullPayload))
	}))
	defer server.Close()

	out := testClient(server.URL).Fetch(context.Background(), testLEI)

	require.Equal(t, domain.StatusResolved, out.Status)
	assert.Equal(t, testLEI, gotQuery)
	assert.Equal(t, "Deutsche Bank Aktiengesellschaft", out.Entity.LegalName)
	assert.Equal(t, "DEUTDEFFXXX", out.Entity.BIC, "first BIC wins")
	assert.Equal(t, "DE", out.Entity.Country)
}

func TestFetchScalarBIC(t *testing.T) {
	payload := `{"data":[{"attributes":{"bic":"ABNANL2AXXX","entity":{"legalName":{"name":"ABN AMRO Bank N.V."},"legalAddress":{"country":"NL"}}}}]}`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(payload))
	}))
	defer server.Close()

	out := testClient(server.URL).Fetch(context.Background(), testLEI)

	require.Equal(t, domain.StatusResolved, out.Status)
	assert.Equal(t, "ABNANL2AXXX", out.Entity.BIC)
}

func TestFetchMissingBIC(t *testing.T) {
	payload := `{"data":[{"attributes":{"entity":{"legalName":{"name":"Some GmbH"},"legalAddress":{"country":"DE"}}}}]}`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(payload))
	}))
	defer server.Close()

	out := testClient(server.URL).Fetch(context.Background(), testLEI)

	require.Equal(t, domain.StatusResolved, out.Status, "absent BIC is not an error")
	assert.Empty(t, out.Entity.BIC)
	assert.Equal(t, "Some GmbH", out.Entity.LegalName)
}

func TestFetchNotFound(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"empty data array", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"data":[]}`))
		}},
		{"http 404", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			out := testClient(server.URL).Fetch(context.Background(), testLEI)
			assert.Equal(t, domain.StatusNotFound, out.Status)
		})
	}
}

func TestFetchRetriesTransientThenSucceeds(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(fullPayload))
	}))
	defer server.Close()

	out := testClient(server.URL).Fetch(context.Background(), testLEI)

	require.Equal(t, domain.StatusResolved, out.Status)
	assert.Equal(t, int32(3), calls.Load())
}

func TestFetchSurfacesLastTransientAfterRetries(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	out := testClient(server.URL).Fetch(context.Background(), testLEI)

	require.Equal(t, domain.StatusTransient, out.Status)
	require.Error(t, out.Err)
	assert.Equal(t, int32(3), calls.Load(), "max retries = 3 means 3 attempts total")
}

func TestFetchRateLimitedIsTransient(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(fullPayload))
	}))
	defer server.Close()

	out := testClient(server.URL).Fetch(context.Background(), testLEI)

	require.Equal(t, domain.StatusResolved, out.Status)
	assert.Equal(t, int32(2), calls.Load())
}

func TestFetchMalformedPayloadIsPermanentAndNotRetried(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(`{"data": "this is not the expected shape`))
	}))
	defer server.Close()

	out := testClient(server.URL).Fetch(context.Background(), testLEI)

	require.Equal(t, domain.StatusPermanent, out.Status)
	assert.Equal(t, int32(1), calls.Load())
}

func TestFetchClientErrorIsPermanent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	out := testClient(server.URL).Fetch(context.Background(), testLEI)
	assert.Equal(t, domain.StatusPermanent, out.Status)
}

func TestFetchConnectionRefusedIsTransient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // nothing listening any more

	out := testClient(server.URL).Fetch(context.Background(), testLEI)
	assert.Equal(t, domain.StatusTransient, out.Status)
}

func TestFetchMalformedLEINeverHitsNetwork(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer server.Close()

	client := testClient(server.URL)
	for _, lei := range []string{"too-short", "", "WAY-TOO-LONG-AND-HAS-DASHES!", "12345678901234567890X"} {
		out := client.Fetch(context.Background(), lei)
		assert.Equal(t, domain.StatusPermanent, out.Status, "lei %q", lei)
	}
	assert.Zero(t, calls.Load(), "malformed LEIs must not consume network calls or retry budget")
}

func TestFetchAppliesRateGateBetweenCalls(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(fullPayload))
	}))
	defer server.Close()

	delay := 40 * time.Millisecond
	client := New(Config{
		BaseURL:    server.URL,
		RateDelay:  delay,
		MaxRetries: 3,
		Timeout:    time.Second,
	}, nil)

	client.Fetch(context.Background(), testLEI)
	start := time.Now()
	client.Fetch(context.Background(), testLEI)
	assert.GreaterOrEqual(t, time.Since(start), delay)
}
