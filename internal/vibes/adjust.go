// Package vibes derives time-of-day variants of neighborhood "vibe" scores.
//
// Base scores per category come from a language model. Adjust reshapes them
// for a period of the day with a fixed multiplier table; it is pure and never
// calls out.
package vibes

import (
	"fmt"
	"math"
)

// Period is a time of day.
type Period string

// Periods of the day.
const (
	Morning Period = "morning"
	Daytime Period = "daytime"
	Evening Period = "evening"
	Night   Period = "night"
)

// Categories scored for every area.
const (
	Nature    = "nature"
	Nightlife = "nightlife"
	Family    = "family"
	Culture   = "culture"
	Shopping  = "shopping"
)

// Periods lists every period in chronological order.
func Periods() []Period {
	return []Period{Morning, Daytime, Evening, Night}
}

// Categories lists the known categories.
func Categories() []string {
	return []string{Nature, Nightlife, Family, Culture, Shopping}
}

// ParsePeriod validates a period name.
func ParsePeriod(s string) (Period, error) {
	p := Period(s)
	if _, ok := multipliers[p]; !ok {
		return "", fmt.Errorf("unknown period %q", s)
	}
	return p, nil
}

// multipliers scale a category's base score for a period. Categories missing
// from a row use 1.0.
var multipliers = map[Period]map[string]float64{
	Morning: {Nature: 1.10, Nightlife: 0.30, Family: 1.10, Culture: 0.90, Shopping: 0.70},
	Daytime: {Nature: 1.00, Nightlife: 0.50, Family: 1.20, Culture: 1.10, Shopping: 1.20},
	Evening: {Nature: 0.90, Nightlife: 1.10, Family: 0.90, Culture: 1.00, Shopping: 1.10},
	Night:   {Nature: 1.15, Nightlife: 1.30, Family: 0.60, Culture: 0.70, Shopping: 0.50},
}

// Multiplier returns the factor applied to category during period.
func Multiplier(period Period, category string) float64 {
	if m, ok := multipliers[period][category]; ok {
		return m
	}
	return 1.0
}

// Adjust scales every base score for period. Inputs are clamped to [0,100]
// before scaling and outputs are clamped again, then rounded half away from zero.
func Adjust(base map[string]float64, period Period) (map[string]int, error) {
	if _, ok := multipliers[period]; !ok {
		return nil, fmt.Errorf("unknown period %q", period)
	}

	out := make(map[string]int, len(base))
	for category, score := range base {
		out[category] = int(math.Round(clamp(clamp(score) * Multiplier(period, category))))
	}
	return out, nil
}

// AdjustAll runs Adjust for every period.
func AdjustAll(base map[string]float64) map[Period]map[string]int {
	out := make(map[Period]map[string]int, len(multipliers))
	for _, p := range Periods() {
		adjusted, _ := Adjust(base, p)
		out[p] = adjusted
	}
	return out
}

// clamp limits v to [0,100]. NaN becomes 0.
func clamp(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 100:
		return 100
	}
	return v
}
