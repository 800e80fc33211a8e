// Package metrics provides Prometheus metrics collection.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jobrunner/geomkit/internal/ports/output"
)

// Collector implements the MetricsCollector port using Prometheus.
type Collector struct {
	operations          *prometheus.CounterVec
	operationDuration   *prometheus.HistogramVec
	validations         *prometheus.CounterVec
	collectionsLoaded   prometheus.Gauge
	collectionsReady    prometheus.Gauge
	storageOperations   *prometheus.CounterVec
	storageDuration     *prometheus.HistogramVec
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

var _ output.MetricsCollector = (*Collector)(nil)

// NewCollector creates a collector whose metrics are registered with reg.
// A nil reg selects the default Prometheus registry.
func NewCollector(namespace string, reg prometheus.Registerer) *Collector {
	if namespace == "" {
		namespace = "geomkit"
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Collector{
		operations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "operations_total",
				Help:      "Total number of geometry operations",
			},
			[]string{"op", "status"},
		),

		operationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "operation_duration_seconds",
				Help:      "Geometry operation duration in seconds",
				Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1, 5},
			},
			[]string{"op"},
		),

		validations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "validations_total",
				Help:      "Validity verdicts per geometry type",
			},
			[]string{"type", "valid"},
		),

		collectionsLoaded: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "collections_loaded",
				Help:      "Number of registered feature collections",
			},
		),

		collectionsReady: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "collections_ready",
				Help:      "Number of validated feature collections",
			},
		),

		storageOperations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "storage_operations_total",
				Help:      "Total number of storage operations",
			},
			[]string{"operation", "status"},
		),

		storageDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "storage_duration_seconds",
				Help:      "Storage operation duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"operation"},
		),

		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),

		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
	}
}

func status(success bool) string {
	if success {
		return "success"
	}
	return "error"
}

// IncOperation counts a geometry operation.
func (c *Collector) IncOperation(op string, success bool) {
	c.operations.WithLabelValues(op, status(success)).Inc()
}

// ObserveOperationDuration records how long an operation took.
func (c *Collector) ObserveOperationDuration(op string, duration time.Duration) {
	c.operationDuration.WithLabelValues(op).Observe(duration.Seconds())
}

// IncValidation counts a validity verdict.
func (c *Collector) IncValidation(geometryType string, valid bool) {
	c.validations.WithLabelValues(geometryType, strconv.FormatBool(valid)).Inc()
}

// SetCollectionsLoaded sets the number of registered collections.
func (c *Collector) SetCollectionsLoaded(count int) {
	c.collectionsLoaded.Set(float64(count))
}

// SetCollectionsReady sets the number of validated collections.
func (c *Collector) SetCollectionsReady(count int) {
	c.collectionsReady.Set(float64(count))
}

// IncStorageOperations increments storage operation counter.
func (c *Collector) IncStorageOperations(operation string, success bool) {
	c.storageOperations.WithLabelValues(operation, status(success)).Inc()
}

// ObserveStorageDuration records storage operation duration.
func (c *Collector) ObserveStorageDuration(operation string, duration time.Duration) {
	c.storageDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// IncHTTPRequests increments the HTTP request counter.
func (c *Collector) IncHTTPRequests(method, path, status string) {
	c.httpRequestsTotal.WithLabelValues(method, path, status).Inc()
}

// ObserveHTTPDuration records HTTP request duration.
func (c *Collector) ObserveHTTPDuration(method, path string, duration time.Duration) {
	c.httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// Handler returns the Prometheus HTTP handler for g. A nil g selects the
// default gatherer.
func Handler(g prometheus.Gatherer) http.Handler {
	if g == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// Middleware returns HTTP middleware for metrics collection. It is meant
// for a mux router so the route template can label the request.
func (c *Collector) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapped := &statusResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		path := routePath(r)
		c.IncHTTPRequests(r.Method, path, statusClass(wrapped.statusCode))
		c.ObserveHTTPDuration(r.Method, path, time.Since(start))
	})
}

type statusResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusResponseWriter) WriteHeader(code int) {
	w.statusCode = code
	w.ResponseWriter.WriteHeader(code)
}

// routePath returns the matched route template, which keeps collection
// IDs out of the label values.
func routePath(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tmpl, err := route.GetPathTemplate(); err == nil {
			return tmpl
		}
	}
	return "unmatched"
}

// statusClass converts an HTTP status code to its class.
func statusClass(code int) string {
	switch {
	case code >= 200 && code < 300:
		return "2xx"
	case code >= 300 && code < 400:
		return "3xx"
	case code >= 400 && code < 500:
		return "4xx"
	case code >= 500:
		return "5xx"
	default:
		return "unknown"
	}
}
