package cost

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCostGB(t *testing.T) {
	notional := 763000.0
	rate := 0.0070956

	got := Cost("GB", notional, rate)
	assert.Equal(t, notional*rate-notional, got)
	assert.Negative(t, got)
}

func TestCostNL(t *testing.T) {
	notional := 5000000.0
	rate := 0.0062469

	got := Cost("NL", notional, rate)
	assert.Equal(t, math.Abs(notional*(1/rate)-notional), got)
	assert.Positive(t, got)
}

func TestCostLowercaseCountry(t *testing.T) {
	assert.Equal(t, Cost("GB", 1000, 0.5), Cost("gb", 1000, 0.5))
}

func TestCostUnmappedCountries(t *testing.T) {
	for _, country := range []string{"FR", "DE", "US", "XX", ""} {
		assert.Zero(t, Cost(country, 763000.0, 0.0070956), "country %q", country)
	}
}

func TestCostEdgeCases(t *testing.T) {
	tests := []struct {
		name     string
		country  string
		notional float64
		rate     float64
	}{
		{"NL zero rate", "NL", 5000000.0, 0},
		{"NL NaN rate", "NL", 5000000.0, math.NaN()},
		{"NL infinite rate", "NL", 5000000.0, math.Inf(1)},
		{"GB NaN notional", "GB", math.NaN(), 0.007},
		{"GB infinite notional", "GB", math.Inf(-1), 0.007},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Cost(tt.country, tt.notional, tt.rate)
			assert.Zero(t, got)
			assert.False(t, math.IsNaN(got))
		})
	}
}

func TestCostZeroNotional(t *testing.T) {
	assert.Zero(t, Cost("GB", 0, 0.007))
	assert.Zero(t, Cost("NL", 0, 0.007))
}
