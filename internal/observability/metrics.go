package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "neo_dashboard"

// Metrics holds the Prometheus counters, histograms, and gauges for the dashboard.
type Metrics struct {
	// Data access metrics.
	Queries       *prometheus.CounterVec   // labels: query, outcome={success,error}
	QueryDuration *prometheus.HistogramVec // labels: query
	QueryRows     *prometheus.HistogramVec // labels: query

	// Render metrics.
	Renders      *prometheus.CounterVec // labels: screen={home,filter,query,export}, outcome={success,error}
	EmptyResults *prometheus.CounterVec // labels: view

	// Fact of the day metrics.
	FactRequests *prometheus.CounterVec // labels: outcome={success,error,disabled}
	FactCache    *prometheus.CounterVec // labels: result={hit,miss}
	FactEnabled  prometheus.Gauge
}

// NewMetrics creates and registers all dashboard metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		Queries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "queries_total",
			Help:      "Statements executed against the store by query name and outcome.",
		}, []string{"query", "outcome"}),
		QueryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "query_duration_seconds",
			Help:      "Store statement duration in seconds.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"query"}),
		QueryRows: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "query_rows",
			Help:      "Rows returned per store statement.",
			Buckets:   []float64{0, 1, 10, 20, 50, 100, 500, 1000, 5000},
		}, []string{"query"}),
		Renders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "renders_total",
			Help:      "Render passes by screen and outcome.",
		}, []string{"screen", "outcome"}),
		EmptyResults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "empty_results_total",
			Help:      "Renders that produced an empty result set, by view.",
		}, []string{"view"}),
		FactRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fact_requests_total",
			Help:      "Fact of the day lookups by outcome.",
		}, []string{"outcome"}),
		FactCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fact_cache_total",
			Help:      "Fact of the day cache lookups by result.",
		}, []string{"result"}),
		FactEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "fact_enabled",
			Help:      "1 when the fact of the day lookup is enabled, 0 otherwise.",
		}),
	}

	prometheus.MustRegister(
		m.Queries,
		m.QueryDuration,
		m.QueryRows,
		m.Renders,
		m.EmptyResults,
		m.FactRequests,
		m.FactCache,
		m.FactEnabled,
	)

	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		Queries:       prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "queries_total"}, []string{"query", "outcome"}),
		QueryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: namespace, Name: "query_duration_seconds"}, []string{"query"}),
		QueryRows:     prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: namespace, Name: "query_rows"}, []string{"query"}),
		Renders:       prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "renders_total"}, []string{"screen", "outcome"}),
		EmptyResults:  prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "empty_results_total"}, []string{"view"}),
		FactRequests:  prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "fact_requests_total"}, []string{"outcome"}),
		FactCache:     prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "fact_cache_total"}, []string{"result"}),
		FactEnabled:   prometheus.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Name: "fact_enabled"}),
	}
}
