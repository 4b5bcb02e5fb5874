// Package ingest turns raw per-variable time-series files into normalized
// readings and installs the resulting daily indices in the store.
//
// Source files carry an arbitrary metadata preamble, so the column header is
// located by pattern, not position. Per-line anomalies (short rows, non-numeric
// values, the -9999 sentinel) are expected noise in multi-year instrument logs:
// they are skipped silently and surface only through skip counters.
package ingest

import (
	"bufio"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/couchcryptid/climate-risk-service/internal/domain"
	"github.com/couchcryptid/climate-risk-service/internal/observability"
	"github.com/couchcryptid/climate-risk-service/internal/store"
)

// Skip reasons, used both as metric labels and summary keys.
const (
	SkipShortRow     = "short_row"
	SkipNotNumeric   = "not_numeric"
	SkipSentinel     = "sentinel"
	SkipBadTimestamp = "bad_timestamp"
)

// Summary reports what one variable load accepted and rejected.
type Summary struct {
	VariableID string
	Accepted   int
	Skipped    map[string]int
	Days       int
	MinDate    time.Time
	MaxDate    time.Time
}

// SkippedTotal returns the total number of skipped lines across all reasons.
func (s Summary) SkippedTotal() int {
	var n int
	for _, c := range s.Skipped {
		n += c
	}
	return n
}

// Loader performs one-shot, synchronous-per-file scans and installs frozen
// indices into the store. Distinct variables may be loaded concurrently since
// each builds a disjoint index.
type Loader struct {
	store   *store.Store
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewLoader creates a Loader writing into the given store.
func NewLoader(st *store.Store, logger *slog.Logger, metrics *observability.Metrics) *Loader {
	return &Loader{store: st, logger: logger, metrics: metrics}
}

// LoadVariable scans one variable's file, normalizes its readings, and
// installs the variable's daily index. On a FormatError the variable's index
// is left unloaded and the process keeps running.
func (l *Loader) LoadVariable(variableID, path string) (Summary, error) {
	descriptor, ok := domain.DescribeVariable(variableID)
	if !ok {
		return Summary{}, fmt.Errorf("load variable: unknown variable %q", variableID)
	}

	start := time.Now()

	f, err := os.Open(path)
	if err != nil {
		return Summary{}, fmt.Errorf("load variable %s: %w", variableID, err)
	}
	defer f.Close()

	summary, err := l.scan(descriptor, path, bufio.NewScanner(f))
	if err != nil {
		return Summary{}, err
	}

	l.metrics.LoadDuration.WithLabelValues(variableID).Observe(time.Since(start).Seconds())
	l.metrics.IndexDays.WithLabelValues(variableID).Set(float64(summary.Days))
	l.metrics.VariableLoaded.WithLabelValues(variableID).Set(1)

	l.logger.Info("variable loaded",
		"variable", variableID,
		"path", path,
		"readings", summary.Accepted,
		"skipped", summary.SkippedTotal(),
		"days", summary.Days,
		"from", summary.MinDate.Format("2006-01-02"),
		"to", summary.MaxDate.Format("2006-01-02"),
	)
	if scanned := summary.Accepted + summary.SkippedTotal(); scanned > 0 &&
		summary.SkippedTotal()*10 > scanned {
		l.logger.Warn("high skip ratio",
			"variable", variableID, "skipped", summary.SkippedTotal(), "scanned", scanned)
	}
	return summary, nil
}

// scan locates the header, then feeds every parseable data line into a builder
// and installs the frozen index.
func (l *Loader) scan(descriptor domain.VariableDescriptor, path string, sc *bufio.Scanner) (Summary, error) {
	timeIdx, valueIdx, err := locateHeader(sc, descriptor, path)
	if err != nil {
		return Summary{}, err
	}

	builder := store.NewBuilder(descriptor)
	summary := Summary{
		VariableID: descriptor.ID,
		Skipped:    make(map[string]int),
	}

	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		reading, skipReason := parseLine(descriptor, line, timeIdx, valueIdx)
		if skipReason != "" {
			summary.Skipped[skipReason]++
			l.metrics.LinesSkipped.WithLabelValues(descriptor.ID, skipReason).Inc()
			continue
		}
		builder.Add(reading)
		summary.Accepted++
		l.metrics.ReadingsAccepted.WithLabelValues(descriptor.ID).Inc()
	}
	if err := sc.Err(); err != nil {
		return Summary{}, fmt.Errorf("scan %s: %w", path, err)
	}

	summary.Days = builder.DayCount()
	summary.MinDate = builder.MinDate()
	summary.MaxDate = builder.MaxDate()

	l.store.Install(builder)
	return summary, nil
}

// locateHeader advances the scanner to the column header: the first line that
// begins with the time column and also names the variable's own column. It
// returns the two column indices. Everything before the header is preamble and
// is discarded.
func locateHeader(sc *bufio.Scanner, descriptor domain.VariableDescriptor, path string) (timeIdx, valueIdx int, err error) {
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if !strings.HasPrefix(strings.ToLower(line), domain.TimeColumn) ||
			!strings.Contains(line, descriptor.ColumnName) {
			continue
		}

		timeIdx, valueIdx = -1, -1
		for i, col := range strings.Split(line, ",") {
			switch strings.TrimSpace(col) {
			case domain.TimeColumn:
				timeIdx = i
			case descriptor.ColumnName:
				valueIdx = i
			}
		}
		if timeIdx >= 0 && valueIdx >= 0 {
			return timeIdx, valueIdx, nil
		}
	}
	if err := sc.Err(); err != nil {
		return 0, 0, fmt.Errorf("scan %s: %w", path, err)
	}
	return 0, 0, &domain.FormatError{
		Path:   path,
		Reason: fmt.Sprintf("no header line with columns %q and %q", domain.TimeColumn, descriptor.ColumnName),
	}
}

// parseLine converts one data line into a normalized reading, or names the
// skip reason. Sentinel comparison is exact equality so legitimate negative
// measurements survive.
func parseLine(descriptor domain.VariableDescriptor, line string, timeIdx, valueIdx int) (domain.Reading, string) {
	cols := strings.Split(line, ",")
	if len(cols) <= timeIdx || len(cols) <= valueIdx {
		return domain.Reading{}, SkipShortRow
	}

	raw, err := strconv.ParseFloat(strings.TrimSpace(cols[valueIdx]), 64)
	if err != nil {
		return domain.Reading{}, SkipNotNumeric
	}
	if raw == domain.SentinelMissing {
		return domain.Reading{}, SkipSentinel
	}

	date, timeOfDay, ok := splitTimestamp(strings.TrimSpace(cols[timeIdx]))
	if !ok {
		return domain.Reading{}, SkipBadTimestamp
	}

	return domain.Reading{
		Date:            date,
		TimeOfDay:       timeOfDay,
		RawValue:        raw,
		NormalizedValue: descriptor.Normalize(raw),
	}, ""
}

// splitTimestamp splits "YYYY-MM-DD HH:MM[:SS]" on the first whitespace into
// a calendar date and a time-of-day string. No timezone conversion; analysis
// stays in the timestamps' native timezone.
func splitTimestamp(ts string) (time.Time, string, bool) {
	datePart, timePart := ts, ""
	if i := strings.IndexAny(ts, " \t"); i >= 0 {
		datePart, timePart = ts[:i], strings.TrimSpace(ts[i+1:])
	}

	parsed, err := time.Parse("2006-01-02", datePart)
	if err != nil {
		return time.Time{}, "", false
	}
	return domain.Date(parsed.Year(), parsed.Month(), parsed.Day()), timePart, true
}

// LoadAll loads every supported variable whose file exists under dataDir,
// concurrently; each variable populates a disjoint index. Missing files are
// logged and skipped; a FormatError unloads only that variable. The returned
// error joins the per-variable failures.
func (l *Loader) LoadAll(dataDir string) ([]Summary, error) {
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		summaries []Summary
		errs      []error
	)

	for _, id := range domain.Variables() {
		path := filepath.Join(dataDir, id+".csv")
		if _, err := os.Stat(path); err != nil {
			l.logger.Warn("no data file for variable", "variable", id, "path", path)
			continue
		}

		wg.Add(1)
		go func(id, path string) {
			defer wg.Done()
			summary, err := l.LoadVariable(id, path)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				l.logger.Error("variable load failed", "variable", id, "error", err)
				errs = append(errs, err)
				return
			}
			summaries = append(summaries, summary)
		}(id, path)
	}
	wg.Wait()

	if len(errs) > 0 {
		return summaries, fmt.Errorf("load data dir %s: %w", dataDir, errors.Join(errs...))
	}
	return summaries, nil
}
