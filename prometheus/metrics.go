package prometheus

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Counter metrics
var (
	// Login counter
	LoginCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "rbac_login_total",
			Help: "Total number of login attempts",
		},
	)

	// Token verification counter
	TokenVerificationCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rbac_token_verifications_total",
			Help: "Total number of token verifications by outcome",
		},
		[]string{"outcome"}, // outcome can be "ok", "unauthenticated", "unauthorized"
	)

	// Entity operation counter
	EntityOperationCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rbac_entity_operations_total",
			Help: "Total number of entity operations",
		},
		[]string{"entity", "operation"}, // e.g. entity "tenant", operation "create"
	)

	// Error counter
	ErrorCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rbac_errors_total",
			Help: "Total number of request errors by code",
		},
		[]string{"code"},
	)

	// HTTP request counter by endpoint and status
	HTTPRequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rbac_http_requests_total",
			Help: "Total number of HTTP requests by endpoint and status",
		},
		[]string{"endpoint", "method", "status"},
	)
)

// Histogram metrics
var (
	// Request duration
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rbac_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "method", "status"},
	)

	// Database operation duration
	DBOperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rbac_db_operation_duration_seconds",
			Help:    "Duration of database operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"}, // operation can be "query", "insert", "update", "delete"
	)
)

// InitMetrics registers all metrics with the default registry
func InitMetrics() {
	prometheus.MustRegister(
		LoginCounter,
		TokenVerificationCounter,
		EntityOperationCounter,
		ErrorCounter,
		HTTPRequestCounter,
		RequestDuration,
		DBOperationDuration,
	)
}

// RecordError increments the error counter for the given code
func RecordError(code string) {
	ErrorCounter.WithLabelValues(code).Inc()
}

// RecordEntityOperation increments the entity operation counter
func RecordEntityOperation(entity, operation string) {
	EntityOperationCounter.WithLabelValues(entity, operation).Inc()
}

// TrackDBOperation returns a function that records the duration of a
// database operation when called. Use with defer.
func TrackDBOperation(operation string) func(time.Time) {
	return func(start time.Time) {
		DBOperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	}
}

// MetricsMiddleware returns an Echo middleware that records request metrics
func MetricsMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			status := strconv.Itoa(c.Response().Status)
			endpoint := c.Path()
			method := c.Request().Method

			HTTPRequestCounter.WithLabelValues(endpoint, method, status).Inc()
			RequestDuration.WithLabelValues(endpoint, method, status).
				Observe(time.Since(start).Seconds())

			return err
		}
	}
}

// GetPrometheusHandler returns the HTTP handler exposing the metrics
func GetPrometheusHandler() http.Handler {
	return promhttp.Handler()
}
