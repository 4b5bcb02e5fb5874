package ingest_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/couchcryptid/climate-risk-service/internal/domain"
	"github.com/couchcryptid/climate-risk-service/internal/ingest"
	"github.com/couchcryptid/climate-risk-service/internal/observability"
	"github.com/couchcryptid/climate-risk-service/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const precipFixture = `# Station subset export
# Source: GLDAS Noah 3-hourly
# Columns described below
time,Rainf_f_tavg
2020-07-04 00:00,0.001
2020-07-04 03:00,-9999
2020-07-04 06:00,0
2020-07-04 09:00,not-a-number
2020-07-04
2020-07-05 00:00,0.002
`

func writeFixture(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func newLoader(t *testing.T) (*ingest.Loader, *store.Store) {
	t.Helper()
	st := store.New()
	return ingest.NewLoader(st, slog.Default(), observability.NewMetricsForTesting()), st
}

func TestLoadVariable(t *testing.T) {
	loader, st := newLoader(t)
	path := writeFixture(t, "precipitation.csv", precipFixture)

	summary, err := loader.LoadVariable(domain.VarPrecipitation, path)
	require.NoError(t, err)

	t.Run("sentinel and noise are skipped, zero is counted", func(t *testing.T) {
		assert.Equal(t, 3, summary.Accepted, "the -9999 row is dropped but the 0 row counts")
		assert.Equal(t, 1, summary.Skipped[ingest.SkipSentinel])
		assert.Equal(t, 1, summary.Skipped[ingest.SkipNotNumeric])
		assert.Equal(t, 1, summary.Skipped[ingest.SkipShortRow])
		assert.Equal(t, 3, summary.SkippedTotal())
	})

	t.Run("counters and coverage", func(t *testing.T) {
		assert.Equal(t, 2, summary.Days)
		assert.Equal(t, domain.Date(2020, time.July, 4), summary.MinDate)
		assert.Equal(t, domain.Date(2020, time.July, 5), summary.MaxDate)
	})

	t.Run("index is populated and normalized", func(t *testing.T) {
		agg, ok := st.AggregateFor(domain.VarPrecipitation, domain.Date(2020, time.July, 4))
		require.True(t, ok)
		assert.Equal(t, 2, agg.ReadingCount, "sentinel row is not counted")
		// 0.001 kg/m²/s → 3.6 mm/h; mean of {3.6, 0} = 1.8.
		assert.InDelta(t, 1.8, agg.Average, 1e-9)
	})
}

func TestLoadVariable_HeaderDetection(t *testing.T) {
	t.Run("no header is a format error", func(t *testing.T) {
		loader, st := newLoader(t)
		path := writeFixture(t, "precipitation.csv", "just,some,metadata\n1,2,3\n")

		_, err := loader.LoadVariable(domain.VarPrecipitation, path)
		require.Error(t, err)

		var formatErr *domain.FormatError
		require.ErrorAs(t, err, &formatErr)
		assert.Equal(t, path, formatErr.Path)
		assert.False(t, st.Loaded(domain.VarPrecipitation), "failed load leaves the index unloaded")
	})

	t.Run("wrong variable column is a format error", func(t *testing.T) {
		loader, _ := newLoader(t)
		path := writeFixture(t, "precipitation.csv", "time,Tair_f_inst\n2020-07-04 00:00,300\n")

		_, err := loader.LoadVariable(domain.VarPrecipitation, path)
		var formatErr *domain.FormatError
		require.ErrorAs(t, err, &formatErr)
	})

	t.Run("value column position is taken from the header", func(t *testing.T) {
		loader, st := newLoader(t)
		path := writeFixture(t, "temperature.csv",
			"time,quality_flag,Tair_f_inst\n2020-07-04 00:00,ok,300.15\n")

		summary, err := loader.LoadVariable(domain.VarTemperature, path)
		require.NoError(t, err)
		assert.Equal(t, 1, summary.Accepted)

		agg, ok := st.AggregateFor(domain.VarTemperature, domain.Date(2020, time.July, 4))
		require.True(t, ok)
		assert.InDelta(t, 27.0, agg.Average, 1e-9, "Kelvin is converted at parse time")
	})
}

func TestLoadVariable_BadTimestamp(t *testing.T) {
	loader, _ := newLoader(t)
	path := writeFixture(t, "windspeed.csv",
		"time,Wind_f_inst\nyesterday 12:00,5\n2020-07-04 12:00:30,5\n")

	summary, err := loader.LoadVariable(domain.VarWindSpeed, path)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Accepted)
	assert.Equal(t, 1, summary.Skipped[ingest.SkipBadTimestamp])
}

func TestLoadVariable_NegativeMeasurementSurvives(t *testing.T) {
	loader, st := newLoader(t)
	// -20°C is a legitimate reading; only exactly -9999 is missing data.
	path := writeFixture(t, "temperature.csv",
		"time,Tair_f_inst\n2020-01-15 00:00,253.15\n2020-01-15 03:00,-9999\n")

	summary, err := loader.LoadVariable(domain.VarTemperature, path)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Accepted)

	agg, ok := st.AggregateFor(domain.VarTemperature, domain.Date(2020, time.January, 15))
	require.True(t, ok)
	assert.InDelta(t, -20.0, agg.Average, 1e-9)
}

func TestLoadVariable_UnknownVariable(t *testing.T) {
	loader, _ := newLoader(t)
	_, err := loader.LoadVariable("snowfall", "irrelevant.csv")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown variable")
}

func TestLoadAll(t *testing.T) {
	st := store.New()
	loader := ingest.NewLoader(st, slog.Default(), observability.NewMetricsForTesting())

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "precipitation.csv"),
		[]byte("time,Rainf_f_tavg\n2020-07-04 00:00,0.001\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "temperature.csv"),
		[]byte("time,Tair_f_inst\n2020-07-04 00:00,300.15\n"), 0o600))
	// windspeed.csv and humidity.csv are absent on purpose.

	summaries, err := loader.LoadAll(dir)
	require.NoError(t, err)
	assert.Len(t, summaries, 2)
	assert.ElementsMatch(t,
		[]string{domain.VarPrecipitation, domain.VarTemperature},
		st.LoadedVariables())
}

func TestLoadAll_FormatErrorUnloadsOnlyThatVariable(t *testing.T) {
	st := store.New()
	loader := ingest.NewLoader(st, slog.Default(), observability.NewMetricsForTesting())

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "precipitation.csv"),
		[]byte("no header here\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "temperature.csv"),
		[]byte("time,Tair_f_inst\n2020-07-04 00:00,300.15\n"), 0o600))

	_, err := loader.LoadAll(dir)
	require.Error(t, err)

	var formatErr *domain.FormatError
	assert.ErrorAs(t, err, &formatErr)
	assert.False(t, st.Loaded(domain.VarPrecipitation))
	assert.True(t, st.Loaded(domain.VarTemperature), "other variables still load")
}
