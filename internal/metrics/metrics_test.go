package metrics_test

import (
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/Olprog59/go-crudstarter/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNewMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewMetrics(reg)
	assert.NotNil(t, m)
	assert.NotNil(t, m.StoreOperations)
	assert.NotNil(t, m.HTTPRequestsTotal)
	assert.NotNil(t, m.DatabaseConnections)
}

func TestNewMetrics_SeparateRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		metrics.NewMetrics(prometheus.NewRegistry())
		metrics.NewMetrics(prometheus.NewRegistry())
	})
}

func TestRecordStoreOperation(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewMetrics(reg)
	m.RecordStoreOperation("pizzas", "create", metrics.OutcomeSuccess)
	m.RecordStoreOperation("pizzas", "create", metrics.OutcomeConflict)
	m.RecordStoreOperation("pizzas", "create", metrics.OutcomeConflict)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StoreOperations.WithLabelValues("pizzas", "create", "success")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.StoreOperations.WithLabelValues("pizzas", "create", "conflict")))
}

func TestRecordValidationFailure(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewMetrics(reg)
	m.RecordValidationFailure("orders", "orders:update")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ValidationFailures.WithLabelValues("orders", "orders:update")))
}

func TestRecordHTTPRequest(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewMetrics(reg)
	m.RecordHTTPRequest("GET", "/pizzas/{id}", 200)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/pizzas/{id}", "200")))
}

func TestRecordHTTPDuration(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewMetrics(reg)
	m.RecordHTTPDuration("GET", "/pizzas/{id}", 1*time.Second)

	expected := `
# HELP http_request_duration_seconds HTTP request latency in seconds
# TYPE http_request_duration_seconds histogram
http_request_duration_seconds_bucket{method="GET",path="/pizzas/{id}",le="0.01"} 0
http_request_duration_seconds_bucket{method="GET",path="/pizzas/{id}",le="0.05"} 0
http_request_duration_seconds_bucket{method="GET",path="/pizzas/{id}",le="0.1"} 0
http_request_duration_seconds_bucket{method="GET",path="/pizzas/{id}",le="0.25"} 0
http_request_duration_seconds_bucket{method="GET",path="/pizzas/{id}",le="0.5"} 0
http_request_duration_seconds_bucket{method="GET",path="/pizzas/{id}",le="1"} 1
http_request_duration_seconds_bucket{method="GET",path="/pizzas/{id}",le="2.5"} 1
http_request_duration_seconds_bucket{method="GET",path="/pizzas/{id}",le="5"} 1
http_request_duration_seconds_bucket{method="GET",path="/pizzas/{id}",le="10"} 1
http_request_duration_seconds_bucket{method="GET",path="/pizzas/{id}",le="+Inf"} 1
http_request_duration_seconds_sum{method="GET",path="/pizzas/{id}"} 1
http_request_duration_seconds_count{method="GET",path="/pizzas/{id}"} 1
`
	err := testutil.CollectAndCompare(m.HTTPRequestDuration, strings.NewReader(expected), "http_request_duration_seconds")
	assert.NoError(t, err)
}

func TestIncrementDecrementActiveConnections(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewMetrics(reg)
	m.IncrementActiveConnections()
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ActiveConnections))
	m.DecrementActiveConnections()
	assert.Equal(t, 0.0, testutil.ToFloat64(m.ActiveConnections))
}

func TestRecordRateLimitHit(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewMetrics(reg)
	m.RecordRateLimitHit("/pizzas")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RateLimitHits.WithLabelValues("/pizzas")))
}

func TestUpdateDatabaseStats(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewMetrics(reg)
	m.UpdateDatabaseStats(sql.DBStats{OpenConnections: 10, InUse: 3, Idle: 7})
	assert.Equal(t, 10.0, testutil.ToFloat64(m.DatabaseConnections.WithLabelValues("open")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.DatabaseConnections.WithLabelValues("in_use")))
	assert.Equal(t, 7.0, testutil.ToFloat64(m.DatabaseConnections.WithLabelValues("idle")))
}

func TestSetBackgroundTaskStatus(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewMetrics(reg)
	m.SetBackgroundTaskStatus("db_stats", true)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.BackgroundTasks.WithLabelValues("db_stats")))
	m.SetBackgroundTaskStatus("db_stats", false)
	assert.Equal(t, 0.0, testutil.ToFloat64(m.BackgroundTasks.WithLabelValues("db_stats")))
}

func TestRecordHTTPRequest_StatusGrouping(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewMetrics(reg)
	m.RecordHTTPRequest("DELETE", "/users/{id}", 409)
	m.RecordHTTPRequest("GET", "/todos", 304)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("DELETE", "/users/{id}", "409")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/todos", "3xx")))
}
