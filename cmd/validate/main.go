// Command validate runs archive CSV files through the real ingest path and
// reports what the service would accept. Useful for checking a data drop
// before pointing the server at it.
//
// Usage:
//
//	go run ./cmd/validate -data data
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/couchcryptid/climate-risk-service/internal/domain"
	"github.com/couchcryptid/climate-risk-service/internal/ingest"
	"github.com/couchcryptid/climate-risk-service/internal/observability"
	"github.com/couchcryptid/climate-risk-service/internal/store"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	dataDir := flag.String("data", "data", "directory containing <variable>.csv archives")
	verbose := flag.Bool("v", false, "log ingest progress")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if *verbose {
		logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}

	st := store.New()
	loader := ingest.NewLoader(st, logger, observability.NewMetricsForTesting())

	var failed bool
	for _, id := range domain.Variables() {
		descriptor, _ := domain.DescribeVariable(id)
		path := filepath.Join(*dataDir, descriptor.ID+".csv")
		if _, err := os.Stat(path); err != nil {
			fmt.Printf("%-14s  missing (%s)\n", descriptor.ID, path)
			continue
		}

		summary, err := loader.LoadVariable(descriptor.ID, path)
		if err != nil {
			fmt.Printf("%-14s  FAILED: %v\n", descriptor.ID, err)
			failed = true
			continue
		}
		printSummary(summary)
	}

	if failed {
		return fmt.Errorf("one or more archives failed validation")
	}
	return nil
}

func printSummary(summary ingest.Summary) {
	fmt.Printf("%-14s  accepted=%d skipped=%d days=%d coverage=%s..%s\n",
		summary.VariableID, summary.Accepted, summary.SkippedTotal(), summary.Days,
		summary.MinDate.Format(time.DateOnly), summary.MaxDate.Format(time.DateOnly))

	reasons := make([]string, 0, len(summary.Skipped))
	for reason := range summary.Skipped {
		reasons = append(reasons, reason)
	}
	sort.Strings(reasons)
	for _, reason := range reasons {
		fmt.Printf("%-14s    skip %s: %d\n", "", reason, summary.Skipped[reason])
	}
}
