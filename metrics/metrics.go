// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestsTotal counts handled requests.
	// Labels:
	//   - method: HTTP method
	//   - route: chi route pattern (e.g. "/movie_details/{movieId}")
	//   - status: response status code
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests handled",
		},
		[]string{"method", "route", "status"},
	)

	// HTTPRequestDuration measures request latency by route.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"method", "route"},
	)

	// LoginAttempts counts POST /token outcomes: "success", "failure", "error".
	LoginAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_login_attempts_total",
			Help: "Total number of login attempts",
		},
		[]string{"outcome"},
	)

	// AuthGateRejections counts requests refused by the bearer-token gate.
	AuthGateRejections = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "auth_gate_rejections_total",
			Help: "Total number of requests rejected for missing or invalid credentials",
		},
	)

	// CatalogTableRows reports rows loaded per catalog table (-1 when unavailable).
	CatalogTableRows = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "catalog_table_rows",
			Help: "Rows loaded per catalog table, -1 if the table is unavailable",
		},
		[]string{"table"},
	)
)

// Login outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeError   = "error"
)

// RecordLogin increments the login counter for outcome.
func RecordLogin(outcome string) {
	LoginAttempts.WithLabelValues(outcome).Inc()
}

// RecordGateRejection increments the gate rejection counter.
func RecordGateRejection() {
	AuthGateRejections.Inc()
}

// SetTableRows records a table's row count; available=false exports -1.
func SetTableRows(table string, rows int, available bool) {
	if !available {
		CatalogTableRows.WithLabelValues(table).Set(-1)
		return
	}
	CatalogTableRows.WithLabelValues(table).Set(float64(rows))
}
