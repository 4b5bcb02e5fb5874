package domain

import "time"

// Reading is one validated, unit-normalized measurement. It belongs to exactly
// one calendar date.
type Reading struct {
	Date            time.Time // midnight, native timezone of the source file
	TimeOfDay       string
	RawValue        float64
	NormalizedValue float64
}

// Date builds a calendar-date key: midnight UTC for the given day.
// All indexing and range arithmetic uses these keys.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// DailyAggregate summarizes all readings of one calendar date. It is immutable
// once computed; absence of an aggregate means "no data", which is distinct
// from zero.
type DailyAggregate struct {
	VariableID   string    `json:"variable"`
	Date         time.Time `json:"date"`
	ReadingCount int       `json:"reading_count"`
	Average      float64   `json:"average"`
	Min          float64   `json:"min"`
	Max          float64   `json:"max"`

	// DerivedTotal is the daily accumulated amount for accumulation-type
	// variables, nil otherwise.
	DerivedTotal *float64 `json:"derived_total,omitempty"`
	// Category is the qualitative label for variables with a categorical
	// scale, nil otherwise.
	Category *string `json:"category,omitempty"`
}

// MonthlyAggregate is the on-demand fold of one month's DailyAggregates.
// It is always recomputable from the daily index and never stored.
type MonthlyAggregate struct {
	VariableID   string     `json:"variable"`
	Year         int        `json:"year"`
	Month        time.Month `json:"month"`
	DaysWithData int        `json:"days_with_data"`

	// Average is the mean of daily means for instantaneous variables.
	Average float64 `json:"average"`
	// Total is the sum of daily derived totals for accumulation variables.
	Total float64 `json:"total"`
	Max   float64 `json:"max"`

	// CountAboveThreshold is the number of days whose mean crossed the
	// variable's advisory threshold in the adverse direction.
	CountAboveThreshold int `json:"count_above_threshold"`
}
