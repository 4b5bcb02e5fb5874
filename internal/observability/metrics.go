package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the service.
type Metrics struct {
	// Ingestion metrics.
	ReadingsAccepted *prometheus.CounterVec   // labels: variable
	LinesSkipped     *prometheus.CounterVec   // labels: variable, reason={short_row,not_numeric,sentinel,bad_timestamp}
	LoadDuration     *prometheus.HistogramVec // labels: variable
	IndexDays        *prometheus.GaugeVec     // labels: variable
	VariableLoaded   *prometheus.GaugeVec     // labels: variable

	// Query metrics.
	RiskQueries         *prometheus.CounterVec // labels: variable, source={observed,synthetic}
	RiskComputeDuration prometheus.Histogram
	CacheLookups        *prometheus.CounterVec // labels: result={hit,miss}
}

// NewMetrics creates and registers all service metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		ReadingsAccepted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "climate_risk",
			Name:      "readings_accepted_total",
			Help:      "Readings parsed, normalized, and indexed, by variable.",
		}, []string{"variable"}),
		LinesSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "climate_risk",
			Name:      "lines_skipped_total",
			Help:      "Source lines silently skipped during ingestion, by variable and reason.",
		}, []string{"variable", "reason"}),
		LoadDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "climate_risk",
			Name:      "load_duration_seconds",
			Help:      "Duration of one variable file load, scan through index freeze.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"variable"}),
		IndexDays: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "climate_risk",
			Name:      "index_days",
			Help:      "Calendar days with data in the daily index, by variable.",
		}, []string{"variable"}),
		VariableLoaded: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "climate_risk",
			Name:      "variable_loaded",
			Help:      "1 when the variable's index is installed and queryable, 0 otherwise.",
		}, []string{"variable"}),
		RiskQueries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "climate_risk",
			Name:      "risk_queries_total",
			Help:      "Risk statistics computations served, by variable and sample source.",
		}, []string{"variable", "source"}),
		RiskComputeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "climate_risk",
			Name:      "risk_compute_duration_seconds",
			Help:      "Duration of one risk statistics computation.",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "climate_risk",
			Name:      "risk_cache_total",
			Help:      "Risk response cache lookups by result.",
		}, []string{"result"}),
	}

	prometheus.MustRegister(
		m.ReadingsAccepted,
		m.LinesSkipped,
		m.LoadDuration,
		m.IndexDays,
		m.VariableLoaded,
		m.RiskQueries,
		m.RiskComputeDuration,
		m.CacheLookups,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		ReadingsAccepted:    prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "climate_risk", Name: "readings_accepted_total"}, []string{"variable"}),
		LinesSkipped:        prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "climate_risk", Name: "lines_skipped_total"}, []string{"variable", "reason"}),
		LoadDuration:        prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: "climate_risk", Name: "load_duration_seconds"}, []string{"variable"}),
		IndexDays:           prometheus.NewGaugeVec(prometheus.GaugeOpts{Namespace: "climate_risk", Name: "index_days"}, []string{"variable"}),
		VariableLoaded:      prometheus.NewGaugeVec(prometheus.GaugeOpts{Namespace: "climate_risk", Name: "variable_loaded"}, []string{"variable"}),
		RiskQueries:         prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "climate_risk", Name: "risk_queries_total"}, []string{"variable", "source"}),
		RiskComputeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "climate_risk", Name: "risk_compute_duration_seconds"}),
		CacheLookups:        prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "climate_risk", Name: "risk_cache_total"}, []string{"result"}),
	}
}
