// Package store holds the in-memory per-variable time-series indices and
// answers daily, range, monthly, and yearly-sample queries over them.
//
// Indices follow a single-writer-then-freeze discipline: a Builder accumulates
// readings for one variable, Install computes the immutable daily aggregates
// and publishes them, and from then on the index is read-only and safe for
// unbounded concurrent readers. Nothing is persisted; indices are rebuilt from
// source files at process start.
package store

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/couchcryptid/climate-risk-service/internal/domain"
)

// Store owns the installed per-variable indices. The zero value is not usable;
// construct with New.
type Store struct {
	mu        sync.RWMutex
	variables map[string]*index
}

// index is one variable's frozen daily index.
type index struct {
	descriptor domain.VariableDescriptor
	days       map[time.Time]domain.DailyAggregate
	minDate    time.Time
	maxDate    time.Time
}

// New creates an empty store.
func New() *Store {
	return &Store{variables: make(map[string]*index)}
}

// Builder accumulates one variable's readings before the index is frozen.
// It is not safe for concurrent use; each variable load owns its builder.
type Builder struct {
	descriptor domain.VariableDescriptor
	days       map[time.Time][]float64
	total      int
	minDate    time.Time
	maxDate    time.Time
}

// NewBuilder starts an index build for one variable.
func NewBuilder(descriptor domain.VariableDescriptor) *Builder {
	return &Builder{
		descriptor: descriptor,
		days:       make(map[time.Time][]float64),
	}
}

// Add records one normalized reading under its calendar date.
func (b *Builder) Add(r domain.Reading) {
	b.days[r.Date] = append(b.days[r.Date], r.NormalizedValue)
	b.total++
	if b.minDate.IsZero() || r.Date.Before(b.minDate) {
		b.minDate = r.Date
	}
	if b.maxDate.IsZero() || r.Date.After(b.maxDate) {
		b.maxDate = r.Date
	}
}

// ReadingCount returns the number of readings added so far.
func (b *Builder) ReadingCount() int { return b.total }

// DayCount returns the number of distinct calendar dates seen so far.
func (b *Builder) DayCount() int { return len(b.days) }

// MinDate returns the earliest date seen, zero if none.
func (b *Builder) MinDate() time.Time { return b.minDate }

// MaxDate returns the latest date seen, zero if none.
func (b *Builder) MaxDate() time.Time { return b.maxDate }

// Install computes the daily aggregates from the builder and publishes the
// frozen index, replacing any previous index for the variable. Aggregates are
// never modified after this point.
func (s *Store) Install(b *Builder) {
	idx := &index{
		descriptor: b.descriptor,
		days:       make(map[time.Time]domain.DailyAggregate, len(b.days)),
		minDate:    b.minDate,
		maxDate:    b.maxDate,
	}
	for date, values := range b.days {
		idx.days[date] = aggregateDay(b.descriptor, date, values)
	}

	s.mu.Lock()
	s.variables[b.descriptor.ID] = idx
	s.mu.Unlock()
}

// aggregateDay folds one day's normalized values into a DailyAggregate.
func aggregateDay(d domain.VariableDescriptor, date time.Time, values []float64) domain.DailyAggregate {
	agg := domain.DailyAggregate{
		VariableID:   d.ID,
		Date:         date,
		ReadingCount: len(values),
		Min:          values[0],
		Max:          values[0],
	}

	var sum float64
	for _, v := range values {
		sum += v
		if v < agg.Min {
			agg.Min = v
		}
		if v > agg.Max {
			agg.Max = v
		}
	}
	agg.Average = sum / float64(len(values))

	if d.Kind == domain.KindAccumulation {
		// Each reading is an hourly-equivalent rate averaged over its
		// reporting window, so the daily total multiplies by the window
		// length rather than assuming 24h of coverage.
		total := sum * d.WindowHours
		agg.DerivedTotal = &total
	}
	if label := d.Categorize(agg.Average); label != "" {
		agg.Category = &label
	}
	return agg
}

// lookup fetches a variable's frozen index, nil if not installed.
func (s *Store) lookup(variableID string) *index {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.variables[variableID]
}

// AggregateFor returns the daily aggregate for a calendar date. ok is false
// when the variable is not loaded or the date has no readings; "no data" is
// distinct from a zero-valued day.
func (s *Store) AggregateFor(variableID string, date time.Time) (domain.DailyAggregate, bool) {
	idx := s.lookup(variableID)
	if idx == nil {
		return domain.DailyAggregate{}, false
	}
	agg, ok := idx.days[date]
	return agg, ok
}

// RangeQuery returns the daily aggregates for every day in [start, end],
// ordered by date, with dataless days omitted rather than zero-filled. The
// query itself does not bound the range length; callers with latency budgets
// must bound it themselves.
func (s *Store) RangeQuery(variableID string, start, end time.Time) ([]domain.DailyAggregate, error) {
	if start.After(end) {
		return nil, &domain.InvalidRangeError{Start: start, End: end}
	}

	idx := s.lookup(variableID)
	if idx == nil {
		return nil, nil
	}

	var out []domain.DailyAggregate
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if agg, ok := idx.days[d]; ok {
			out = append(out, agg)
		}
	}
	return out, nil
}

// MonthlyAggregate folds every daily aggregate of the given month. ok is false
// when the variable is not loaded or no day of the month has data. The result
// is recomputed on every call, never cached.
func (s *Store) MonthlyAggregate(variableID string, year int, month time.Month) (domain.MonthlyAggregate, bool) {
	idx := s.lookup(variableID)
	if idx == nil {
		return domain.MonthlyAggregate{}, false
	}

	agg := domain.MonthlyAggregate{
		VariableID: variableID,
		Year:       year,
		Month:      month,
	}

	var meanSum float64
	first := domain.Date(year, month, 1)
	for d := first; d.Month() == month; d = d.AddDate(0, 0, 1) {
		day, ok := idx.days[d]
		if !ok {
			continue
		}
		agg.DaysWithData++
		meanSum += day.Average
		if day.Max > agg.Max || agg.DaysWithData == 1 {
			agg.Max = day.Max
		}
		if day.DerivedTotal != nil {
			agg.Total += *day.DerivedTotal
		}
		if idx.descriptor.Adverse.Satisfied(day.Average, idx.descriptor.AdvisoryThreshold) {
			agg.CountAboveThreshold++
		}
	}

	if agg.DaysWithData == 0 {
		return domain.MonthlyAggregate{}, false
	}
	agg.Average = meanSum / float64(agg.DaysWithData)
	return agg, true
}

// YearlySampleFor extracts one value per year for a fixed (month, day) across
// every year the index covers: the derived daily total for accumulation
// variables, the daily mean otherwise. Years without data for that day are
// omitted. The sample is ordered by year ascending.
func (s *Store) YearlySampleFor(variableID string, month time.Month, day int) domain.YearlySample {
	idx := s.lookup(variableID)
	if idx == nil || idx.minDate.IsZero() {
		return nil
	}

	var sample domain.YearlySample
	for year := idx.minDate.Year(); year <= idx.maxDate.Year(); year++ {
		agg, ok := idx.days[domain.Date(year, month, day)]
		if !ok {
			continue
		}
		value := agg.Average
		if agg.DerivedTotal != nil {
			value = *agg.DerivedTotal
		}
		sample = append(sample, domain.YearPoint{Year: year, Value: value})
	}
	return sample
}

// DailyAggregates returns every daily aggregate of a loaded variable ordered
// by date. Used by the export path; nil when the variable is not loaded.
func (s *Store) DailyAggregates(variableID string) []domain.DailyAggregate {
	idx := s.lookup(variableID)
	if idx == nil {
		return nil
	}

	out := make([]domain.DailyAggregate, 0, len(idx.days))
	for _, agg := range idx.days {
		out = append(out, agg)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// Loaded reports whether a variable's index has been installed.
func (s *Store) Loaded(variableID string) bool {
	return s.lookup(variableID) != nil
}

// LoadedVariables returns the ids of installed variables, sorted.
func (s *Store) LoadedVariables() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, 0, len(s.variables))
	for id := range s.variables {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Coverage returns the inclusive date span a loaded variable covers.
func (s *Store) Coverage(variableID string) (minDate, maxDate time.Time, ok bool) {
	idx := s.lookup(variableID)
	if idx == nil {
		return time.Time{}, time.Time{}, false
	}
	return idx.minDate, idx.maxDate, true
}

// CheckReadiness returns nil once at least one variable index is installed,
// or an error describing why the service is not yet ready.
func (s *Store) CheckReadiness(_ context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.variables) == 0 {
		return errors.New("no variable index has been loaded yet")
	}
	return nil
}
