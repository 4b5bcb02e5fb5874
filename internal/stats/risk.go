// Package stats computes threshold-exceedance risk statistics over yearly
// samples: probability, mean, split-period trend, and a value distribution.
//
// Every function here is pure, with no state and no I/O, so computations are
// safe to run concurrently and trivially unit-testable. The engine does not
// care whether a sample came from real aggregates or a synthetic generator.
package stats

import (
	"fmt"
	"math"
	"sort"

	"github.com/couchcryptid/climate-risk-service/internal/domain"
	"github.com/montanaflynn/stats"
)

// minTrendSample is the smallest sample the split-period trend is attempted on.
const minTrendSample = 10

// Compute calculates the full risk statistics for one (sample, threshold,
// variable) triple. It fails with InvalidInputError on a non-finite threshold,
// an unknown variable id, or a non-finite sample value; an empty sample is a
// defined edge case, not an error.
func Compute(sample domain.YearlySample, threshold float64, variableID string) (domain.RiskStatistics, error) {
	if !isFinite(threshold) {
		return domain.RiskStatistics{}, &domain.InvalidInputError{
			Reason: fmt.Sprintf("threshold %v is not a finite number", threshold),
		}
	}
	descriptor, ok := domain.DescribeVariable(variableID)
	if !ok {
		return domain.RiskStatistics{}, &domain.InvalidInputError{
			Reason: fmt.Sprintf("unknown variable %q", variableID),
		}
	}
	for _, p := range sample {
		if !isFinite(p.Value) {
			return domain.RiskStatistics{}, &domain.InvalidInputError{
				Reason: fmt.Sprintf("sample value for year %d is not a finite number", p.Year),
			}
		}
	}

	values := sampleValues(sample)
	change, description := trend(sample, threshold, descriptor.Adverse)

	return domain.RiskStatistics{
		VariableID:         variableID,
		Unit:               descriptor.Unit,
		Threshold:          threshold,
		ProbabilityPercent: exceedance(values, threshold, descriptor.Adverse),
		Mean:               mean(values),
		TrendChangePercent: change,
		TrendDescription:   description,
		Distribution:       histogram(values),
		SampleSize:         len(sample),
		ComputedAt:         domain.Clock().Now(),
	}, nil
}

// exceedance is the share of values crossing threshold in the adverse
// direction, in percent rounded to 2 decimals. An empty sample yields 0.
func exceedance(values []float64, threshold float64, op domain.Operator) float64 {
	if len(values) == 0 {
		return 0
	}
	var count int
	for _, v := range values {
		if op.Satisfied(v, threshold) {
			count++
		}
	}
	return round2(float64(count) / float64(len(values)) * 100)
}

// mean is the arithmetic mean rounded to 2 decimals, 0 for an empty sample.
func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m, err := stats.Mean(values)
	if err != nil {
		return 0
	}
	return round2(m)
}

// trend splits the sample into an early and a recent half and compares their
// exceedance probabilities. Samples under minTrendSample years report
// insufficient data and a change of 0 rather than attempting a split.
func trend(sample domain.YearlySample, threshold float64, op domain.Operator) (float64, string) {
	if len(sample) < minTrendSample {
		return 0, fmt.Sprintf(
			"Insufficient data for trend analysis: %d years available, %d required.",
			len(sample), minTrendSample)
	}

	sorted := make(domain.YearlySample, len(sample))
	copy(sorted, sample)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Year < sorted[j].Year })

	// Odd-sized samples put the extra element in the recent half.
	mid := len(sorted) / 2
	early, recent := sorted[:mid], sorted[mid:]

	earlyProb := exceedance(sampleValues(early), threshold, op)
	recentProb := exceedance(sampleValues(recent), threshold, op)
	change := round2(recentProb - earlyProb)

	earlyRange := fmt.Sprintf("%d-%d", early[0].Year, early[len(early)-1].Year)
	recentRange := fmt.Sprintf("%d-%d", recent[0].Year, recent[len(recent)-1].Year)

	switch {
	case math.Abs(change) < 2:
		return change, fmt.Sprintf(
			"Threshold exceedance has remained stable: %.1f%% in %s vs %.1f%% in %s.",
			earlyProb, earlyRange, recentProb, recentRange)
	case change > 0:
		return change, fmt.Sprintf(
			"Threshold exceedance increased by %.1f points: %.1f%% in %s to %.1f%% in %s.",
			change, earlyProb, earlyRange, recentProb, recentRange)
	default:
		return change, fmt.Sprintf(
			"Threshold exceedance decreased by %.1f points: %.1f%% in %s to %.1f%% in %s.",
			-change, earlyProb, earlyRange, recentProb, recentRange)
	}
}

// histogram bins the sample into clamp(N/5, 10, 20) equal-width bins. All bins
// are half-open except the last, which is closed on both ends so the maximum
// observation lands in it. A zero-range sample produces a single [v, v] bin.
func histogram(values []float64) domain.Distribution {
	if len(values) == 0 {
		return domain.Distribution{}
	}

	minVal, _ := stats.Min(values)
	maxVal, _ := stats.Max(values)
	span := maxVal - minVal

	if span == 0 {
		return domain.Distribution{
			Bins:        []domain.Bin{{Lower: minVal, Upper: maxVal}},
			Frequencies: []int{len(values)},
		}
	}

	binCount := len(values) / 5
	if binCount < 10 {
		binCount = 10
	} else if binCount > 20 {
		binCount = 20
	}
	width := span / float64(binCount)

	bins := make([]domain.Bin, binCount)
	for i := range bins {
		bins[i] = domain.Bin{
			Lower: minVal + float64(i)*width,
			Upper: minVal + float64(i+1)*width,
		}
	}

	frequencies := make([]int, binCount)
	for _, v := range values {
		i := int((v - minVal) / width)
		if i >= binCount {
			i = binCount - 1
		}
		frequencies[i]++
	}

	return domain.Distribution{Bins: bins, Frequencies: frequencies}
}

func sampleValues(sample domain.YearlySample) []float64 {
	values := make([]float64, len(sample))
	for i, p := range sample {
		values[i] = p.Value
	}
	return values
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
