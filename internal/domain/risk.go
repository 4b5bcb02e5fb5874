package domain

import "time"

// YearPoint is one year's value for a fixed target day.
type YearPoint struct {
	Year  int     `json:"year"`
	Value float64 `json:"value"`
}

// YearlySample is one value per year for a fixed (month, day), the unit of
// input to the risk statistics engine. The engine does not care whether the
// values came from real aggregates or a synthetic generator.
type YearlySample []YearPoint

// Bin is one histogram interval. All bins are half-open [Lower, Upper) except
// the last, which is closed on both ends so the maximum observation lands in it.
type Bin struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// Distribution is a histogram as parallel slices of equal length.
type Distribution struct {
	Bins        []Bin `json:"bins"`
	Frequencies []int `json:"frequencies"`
}

// RiskStatistics is the result of one threshold-probability computation.
// Computed fresh per request and never persisted.
type RiskStatistics struct {
	VariableID         string       `json:"variable"`
	Unit               string       `json:"unit"`
	Threshold          float64      `json:"threshold"`
	ProbabilityPercent float64      `json:"probability_percent"`
	Mean               float64      `json:"mean"`
	TrendChangePercent float64      `json:"trend_change_percent"`
	TrendDescription   string       `json:"trend_description"`
	Distribution       Distribution `json:"distribution"`
	SampleSize         int          `json:"sample_size"`
	ComputedAt         time.Time    `json:"computed_at"`
}
