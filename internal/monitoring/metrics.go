package monitoring

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Fetch outcomes used as label values
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

var (
	// Data fetching metrics
	fetchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agts_data_fetch_requests_total",
			Help: "Total number of market data fetch requests",
		},
		[]string{"source", "outcome"},
	)

	barsFetchedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agts_data_bars_fetched_total",
			Help: "Total number of OHLCV bars received from data sources",
		},
		[]string{"source"},
	)

	fetchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "agts_data_fetch_duration_seconds",
			Help:    "Latency of market data fetch requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"source"},
	)

	// Configuration metrics
	configLoadsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "agts_config_loads_total",
			Help: "Total number of configuration snapshots built",
		},
	)

	// Error metrics
	errorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agts_errors_total",
			Help: "Total number of errors by category",
		},
		[]string{"category"},
	)
)

func init() {
	prometheus.MustRegister(fetchRequestsTotal)
	prometheus.MustRegister(barsFetchedTotal)
	prometheus.MustRegister(fetchDuration)
	prometheus.MustRegister(configLoadsTotal)
	prometheus.MustRegister(errorsTotal)
}

// MetricsHandler handles the Prometheus metrics endpoint
type MetricsHandler struct{}

// NewMetricsHandler creates a new metrics handler
func NewMetricsHandler() *MetricsHandler {
	return &MetricsHandler{}
}

// ServeHTTP serves the Prometheus metrics endpoint
func (m *MetricsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// RecordFetch records the outcome of one fetch against a source
func RecordFetch(source string, bars int, elapsed time.Duration, err error) {
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeError
	}

	fetchRequestsTotal.WithLabelValues(source, outcome).Inc()
	fetchDuration.WithLabelValues(source).Observe(elapsed.Seconds())
	if err == nil && bars > 0 {
		barsFetchedTotal.WithLabelValues(source).Add(float64(bars))
	}
}

// RecordConfigLoad counts a configuration snapshot being built
func RecordConfigLoad() {
	configLoadsTotal.Inc()
}

// RecordError records an error metric
func RecordError(category string) {
	if category == "" {
		category = "unknown"
	}
	errorsTotal.WithLabelValues(category).Inc()
}
