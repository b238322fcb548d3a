package cost

import (
	"math"
	"strings"
)

// Rule computes a transaction cost from notional and rate.
type Rule func(notional, rate float64) float64

// rules maps ISO country codes to their cost formula. Countries without a
// rule cost zero.
var rules = map[string]Rule{
	"GB": func(notional, rate float64) float64 {
		return notional*rate - notional
	},
	"NL": func(notional, rate float64) float64 {
		if rate == 0 {
			return 0
		}
		return math.Abs(notional*(1/rate) - notional)
	},
}

// Cost returns the transaction cost for a country. It is a total function:
// unknown or empty countries, non-finite inputs and zero rates under a
// division-based rule all yield 0 rather than a floating-point fault.
func Cost(country string, notional, rate float64) float64 {
	rule, ok := rules[strings.ToUpper(country)]
	if !ok {
		return 0
	}
	if math.IsNaN(notional) || math.IsInf(notional, 0) ||
		math.IsNaN(rate) || math.IsInf(rate, 0) {
		return 0
	}
	c := rule(notional, rate)
	if math.IsNaN(c) || math.IsInf(c, 0) {
		return 0
	}
	return c
}
