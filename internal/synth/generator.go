// Package synth generates deterministic synthetic yearly samples for
// locations with no station file. The risk engine is agnostic to provenance;
// this generator exists so the service can still answer when real data is
// missing, and is fully seeded so repeated requests (and tests) see identical
// samples.
package synth

import (
	"fmt"
	"hash/fnv"
	"math"
	"math/rand"
	"time"

	"github.com/couchcryptid/climate-risk-service/internal/domain"
)

// profile shapes one variable's synthetic values, in its normalized unit.
type profile struct {
	base     float64 // climatological mean of the daily value
	seasonal float64 // amplitude of the annual cycle
	noise    float64 // bound of the seeded year-to-year variation
	floor    float64 // physical lower bound
}

var profiles = map[string]profile{
	domain.VarPrecipitation: {base: 3, seasonal: 2.5, noise: 4, floor: 0}, // mm/day
	domain.VarWindSpeed:     {base: 4.5, seasonal: 1.5, noise: 2.5, floor: 0},
	domain.VarHumidity:      {base: 8, seasonal: 4, noise: 2, floor: 0.3},
	domain.VarTemperature:   {base: 14, seasonal: 11, noise: 4, floor: -60},
}

// Generator produces seeded yearly samples.
type Generator struct {
	years int
}

// NewGenerator creates a Generator covering the given number of years, ending
// with the last complete calendar year.
func NewGenerator(years int) *Generator {
	return &Generator{years: years}
}

// Sample builds one value per year for the fixed (month, day) at a location.
// Identical inputs always produce identical samples.
func (g *Generator) Sample(variableID string, place domain.Place, month time.Month, day int) (domain.YearlySample, error) {
	p, ok := profiles[variableID]
	if !ok {
		return nil, fmt.Errorf("synthetic sample: unknown variable %q", variableID)
	}

	lastYear := domain.Clock().Now().Year() - 1
	sample := make(domain.YearlySample, 0, g.years)

	for year := lastYear - g.years + 1; year <= lastYear; year++ {
		value := p.base + p.seasonal*seasonalFactor(place.Lat, month, day)
		value += p.noise * (seededUnit(variableID, place, month, day, year)*2 - 1)
		if value < p.floor {
			value = p.floor
		}
		sample = append(sample, domain.YearPoint{Year: year, Value: round2(value)})
	}
	return sample, nil
}

// seasonalFactor is the annual cycle in [-1, 1], peaking mid-July in the
// northern hemisphere and mid-January in the southern.
func seasonalFactor(lat float64, month time.Month, day int) float64 {
	doy := domain.Date(2001, month, day).YearDay() // non-leap reference year
	phase := 2 * math.Pi * float64(doy-197) / 365  // day 197 ≈ July 16
	factor := math.Cos(phase)
	if lat < 0 {
		factor = -factor
	}
	return factor
}

// seededUnit returns a deterministic pseudo-random value in [0, 1) for the
// exact (variable, location, date, year) tuple.
func seededUnit(variableID string, place domain.Place, month time.Month, day, year int) float64 {
	h := fnv.New64a()
	fmt.Fprintf(h, "%s|%.4f|%.4f|%d|%d|%d", variableID, place.Lat, place.Lon, month, day, year)
	return rand.New(rand.NewSource(int64(h.Sum64()))).Float64()
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
