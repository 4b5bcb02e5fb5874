package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/climate-risk-service/internal/adapter/httpapi"
	kafkaadapter "github.com/couchcryptid/climate-risk-service/internal/adapter/kafka"
	"github.com/couchcryptid/climate-risk-service/internal/config"
	"github.com/couchcryptid/climate-risk-service/internal/geocode"
	"github.com/couchcryptid/climate-risk-service/internal/ingest"
	"github.com/couchcryptid/climate-risk-service/internal/observability"
	"github.com/couchcryptid/climate-risk-service/internal/store"
	"github.com/couchcryptid/climate-risk-service/internal/synth"
)

const syntheticYears = 30

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	st := store.New()
	loader := ingest.NewLoader(st, logger, metrics)

	srv := httpapi.NewServer(cfg.HTTPAddr, st, geocode.NewTable(),
		synth.NewGenerator(syntheticYears), cfg.RiskCacheSize, metrics, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server. Readiness stays down until the first variable loads.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	var exporter *kafkaadapter.Writer
	if cfg.KafkaExportEnabled {
		exporter = kafkaadapter.NewWriter(cfg, logger)
		logger.Info("kafka export enabled", "topic", cfg.KafkaExportTopic)
	} else {
		logger.Info("kafka export disabled")
	}

	// Load archives, then export aggregates once the indexes are installed.
	go func() {
		summaries, err := loader.LoadAll(cfg.DataDir)
		if err != nil {
			logger.Error("archive load finished with errors", "error", err)
		}
		if exporter == nil {
			return
		}
		for _, summary := range summaries {
			aggs := st.DailyAggregates(summary.VariableID)
			if err := exporter.ExportBatch(ctx, aggs); err != nil {
				logger.Error("aggregate export failed",
					"variable", summary.VariableID, "error", err)
			}
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if exporter != nil {
		if err := exporter.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
