// Package httpapi exposes the query surface of the service over HTTP, plus
// health, readiness, and metrics endpoints. Request validation and range
// bounding live here so the core layers stay reusable.
package httpapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/climate-risk-service/internal/domain"
	"github.com/couchcryptid/climate-risk-service/internal/observability"
	"github.com/couchcryptid/climate-risk-service/internal/store"
	"github.com/couchcryptid/climate-risk-service/internal/synth"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// maxRangeDays bounds /api/v1/range spans. The store itself performs no
// limiting; the bound is an HTTP-layer policy.
const maxRangeDays = 366

// ReadinessChecker reports whether the service is ready to serve traffic.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// Server exposes the query API and operational endpoints.
type Server struct {
	httpServer *http.Server
	store      *store.Store
	locator    domain.Locator
	generator  *synth.Generator
	cache      *riskCache
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewServer creates an HTTP server with the API and operational routes wired.
func NewServer(addr string, st *store.Store, locator domain.Locator, generator *synth.Generator,
	cacheSize int, metrics *observability.Metrics, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		store:     st,
		locator:   locator,
		generator: generator,
		cache:     newRiskCache(cacheSize),
		metrics:   metrics,
		logger:    logger,
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", handleReady(st))
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /api/v1/variables", s.handleVariables)
	mux.HandleFunc("GET /api/v1/daily", s.handleDaily)
	mux.HandleFunc("GET /api/v1/range", s.handleRange)
	mux.HandleFunc("GET /api/v1/monthly", s.handleMonthly)
	mux.HandleFunc("GET /api/v1/risk", s.handleRisk)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func handleReady(checker ReadinessChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := checker.CheckReadiness(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"error":  err.Error(),
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response write
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
