package metrics

import (
	"database/sql"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Store operation outcomes / Résultats des opérations de stockage
const (
	OutcomeSuccess  = "success"
	OutcomeInvalid  = "invalid"
	OutcomeNotFound = "not_found"
	OutcomeConflict = "conflict"
	OutcomeError    = "error"
)

// Metrics holds all Prometheus metric collectors / Contient tous les collecteurs de métriques Prometheus
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec   // Total HTTP requests by method, route, status
	HTTPRequestDuration *prometheus.HistogramVec // HTTP request latency in seconds
	ActiveConnections   prometheus.Gauge         // Current number of in-flight HTTP requests

	// Security metrics
	RateLimitHits *prometheus.CounterVec // Rate limit violations by endpoint

	// Record metrics
	StoreOperations    *prometheus.CounterVec // Record operations by entity, operation, outcome
	ValidationFailures *prometheus.CounterVec // Rejected inputs by entity and schema

	// System metrics
	DatabaseConnections *prometheus.GaugeVec // Database pool connections by state
	BackgroundTasks     *prometheus.GaugeVec // Status of background tasks (running/stopped)
}

// NewMetrics initializes Metrics instance / Initialise une instance Metrics
//
// A nil registerer uses the Prometheus default registry, which only accepts
// one Metrics per process.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests by method, route, and status code",
			},
			[]string{"method", "path", "status_code"},
		),

		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),

		ActiveConnections: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_active_connections",
				Help: "Current number of in-flight HTTP requests",
			},
		),

		RateLimitHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "security_rate_limit_hits_total",
				Help: "Total number of rate limit violations by endpoint",
			},
			[]string{"endpoint"},
		),

		StoreOperations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "records_operations_total",
				Help: "Total number of record operations by entity, operation and outcome",
			},
			[]string{"entity", "operation", "outcome"},
		),

		ValidationFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "records_validation_failures_total",
				Help: "Total number of rejected inputs by entity and schema",
			},
			[]string{"entity", "schema"},
		),

		DatabaseConnections: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "database_connections",
				Help: "Database pool connections by state (open, in_use, idle)",
			},
			[]string{"state"},
		),

		BackgroundTasks: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "background_tasks_status",
				Help: "Status of background tasks (1=running, 0=stopped)",
			},
			[]string{"task_name"},
		),
	}
}

// RecordHTTPRequest records an HTTP request with method, route, and status code.
func (m *Metrics) RecordHTTPRequest(method, path string, statusCode int) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, statusCodeToString(statusCode)).Inc()
}

// RecordHTTPDuration records the duration of an HTTP request.
func (m *Metrics) RecordHTTPDuration(method, path string, duration time.Duration) {
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// IncrementActiveConnections increments the active connections gauge.
func (m *Metrics) IncrementActiveConnections() {
	m.ActiveConnections.Inc()
}

// DecrementActiveConnections decrements the active connections gauge.
func (m *Metrics) DecrementActiveConnections() {
	m.ActiveConnections.Dec()
}

// RecordRateLimitHit records a rate limit violation for a specific endpoint.
func (m *Metrics) RecordRateLimitHit(endpoint string) {
	m.RateLimitHits.WithLabelValues(endpoint).Inc()
}

// RecordStoreOperation counts a record operation / Compte une opération sur les enregistrements
func (m *Metrics) RecordStoreOperation(entity, operation, outcome string) {
	m.StoreOperations.WithLabelValues(entity, operation, outcome).Inc()
}

// RecordValidationFailure counts a rejected input / Compte une entrée rejetée
func (m *Metrics) RecordValidationFailure(entity, schema string) {
	m.ValidationFailures.WithLabelValues(entity, schema).Inc()
}

// UpdateDatabaseStats publishes pool statistics / Publie les statistiques du pool
func (m *Metrics) UpdateDatabaseStats(stats sql.DBStats) {
	m.DatabaseConnections.WithLabelValues("open").Set(float64(stats.OpenConnections))
	m.DatabaseConnections.WithLabelValues("in_use").Set(float64(stats.InUse))
	m.DatabaseConnections.WithLabelValues("idle").Set(float64(stats.Idle))
}

// SetBackgroundTaskStatus sets the status of a background task.
// Status: 1 for running, 0 for stopped.
func (m *Metrics) SetBackgroundTaskStatus(taskName string, running bool) {
	status := 0.0
	if running {
		status = 1.0
	}
	m.BackgroundTasks.WithLabelValues(taskName).Set(status)
}

// statusCodeToString keeps exact codes the API emits and groups the rest / Garde les codes exacts de l'API
func statusCodeToString(code int) string {
	switch code {
	case 200, 201, 400, 404, 405, 409, 413, 429, 500, 503:
		return strconv.Itoa(code)
	}
	switch {
	case code >= 200 && code < 300:
		return "2xx"
	case code >= 300 && code < 400:
		return "3xx"
	case code >= 400 && code < 500:
		return "4xx"
	case code >= 500 && code < 600:
		return "5xx"
	}
	return "unknown"
}
