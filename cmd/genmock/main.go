// Command genmock generates mock GLDAS-style CSV archives for every supported
// weather variable. Output files pass through the real ingest path, so the
// service and its tests exercise the same parsing and normalization as
// production archives. A handful of sentinel and malformed rows are injected
// to keep skip handling honest.
//
// Usage:
//
//	go run ./cmd/genmock -out data -years 10
package main

import (
	"flag"
	"fmt"
	"hash/fnv"
	"log"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/couchcryptid/climate-risk-service/internal/domain"
	"github.com/jonboulle/clockwork"
)

// rawProfile shapes the generated raw values so each column lands in the
// magnitude range the real archives use.
type rawProfile struct {
	base     float64 // mean normalized value
	seasonal float64 // amplitude of the annual cycle
	noise    float64 // uniform jitter span
	floor    float64 // lower clamp in normalized units
}

var profiles = map[string]rawProfile{
	domain.VarPrecipitation: {base: 0.3, seasonal: 0.2, noise: 0.6, floor: 0},
	domain.VarWindSpeed:     {base: 4.5, seasonal: 1.5, noise: 3, floor: 0},
	domain.VarHumidity:      {base: 8, seasonal: 4, noise: 2, floor: 0.3},
	domain.VarTemperature:   {base: 14, seasonal: 11, noise: 5, floor: -60},
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	outDir := flag.String("out", "data", "output directory for generated CSV archives")
	years := flag.Int("years", 10, "number of calendar years to generate")
	flag.Parse()

	if *years < 1 {
		return fmt.Errorf("-years must be at least 1, got %d", *years)
	}

	// Fix the clock so the generated year range is reproducible.
	domain.SetClock(clockwork.NewFakeClockAt(
		time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC),
	))
	defer domain.SetClock(nil)

	lastYear := domain.Clock().Now().Year() - 1
	firstYear := lastYear - *years + 1

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		return err
	}

	for _, id := range domain.Variables() {
		descriptor, _ := domain.DescribeVariable(id)
		path := filepath.Join(*outDir, descriptor.ID+".csv")
		rows, err := writeArchive(path, descriptor, firstYear, lastYear)
		if err != nil {
			return fmt.Errorf("generating %s: %w", descriptor.ID, err)
		}
		log.Printf("%s: %d rows (%d-%d)", descriptor.ID, rows, firstYear, lastYear)
	}
	return nil
}

// writeArchive emits one variable's archive: a preamble, the header line, and
// 3-hourly readings for every day in the year range. Every 385th row carries
// the missing-data sentinel and one row per file is deliberately garbage.
func writeArchive(path string, descriptor domain.VariableDescriptor, firstYear, lastYear int) (int, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# GLDAS NOAH025 subset, variable %s\n", descriptor.ColumnName)
	fmt.Fprintf(&sb, "# units converted on ingest, see service documentation\n")
	fmt.Fprintf(&sb, "%s,%s\n", domain.TimeColumn, descriptor.ColumnName)

	profile := profiles[descriptor.ID]
	rng := rand.New(rand.NewSource(int64(seed(descriptor.ID))))

	rows := 0
	start := domain.Date(firstYear, time.January, 1)
	end := domain.Date(lastYear, time.December, 31)
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		for hour := 0; hour < 24; hour += int(descriptor.WindowHours) {
			rows++
			ts := fmt.Sprintf("%s %02d:00:00", day.Format(time.DateOnly), hour)
			if rows%385 == 0 {
				fmt.Fprintf(&sb, "%s,%.1f\n", ts, domain.SentinelMissing)
				continue
			}
			fmt.Fprintf(&sb, "%s,%.6g\n", ts, rawValue(descriptor, profile, day, rng))
		}
	}

	// One malformed row so skip counters are never trivially zero.
	fmt.Fprintf(&sb, "%s 00:00:00,###\n", end.Format(time.DateOnly))
	rows++

	return rows, os.WriteFile(path, []byte(sb.String()), 0o600)
}

// rawValue produces a raw-unit reading whose normalized value follows an
// annual cycle with jitter. Raw is recovered by inverting the variable's
// normalization.
func rawValue(descriptor domain.VariableDescriptor, profile rawProfile, day time.Time, rng *rand.Rand) float64 {
	phase := 2 * math.Pi * float64(day.YearDay()-197) / 365
	normalized := profile.base + profile.seasonal*math.Cos(phase) +
		profile.noise*(rng.Float64()-0.5)
	if normalized < profile.floor {
		normalized = profile.floor
	}
	return (normalized - descriptor.Offset) / descriptor.Scale
}

func seed(variableID string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(variableID))
	return h.Sum64()
}
