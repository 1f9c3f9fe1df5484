package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Lookup outcomes.
const (
	OutcomeFound       = "found"
	OutcomeNotFound    = "not_found"
	OutcomeInvalid     = "invalid"
	OutcomeUnavailable = "unavailable"
	OutcomeCanceled    = "canceled"
)

// Background change results.
const (
	ChangeOK         = "ok"
	ChangeBusy       = "busy"
	ChangeAssetError = "asset_error"
	ChangeError      = "error"
)

var latencyBucketsMs = []float64{1, 5, 10, 25, 50, 100, 250, 300, 400, 500, 1000, 2500}

// Manager owns the service's Prometheus collectors.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	customLabels     map[string]string
	registry         prometheus.Registerer

	// Lookup metrics
	lookups            *prometheus.CounterVec
	validationFailures *prometheus.CounterVec
	lookupLatency      prometheus.Histogram

	// Dataset metrics
	datasetRecords      prometheus.Gauge
	datasetLoadDuration prometheus.Gauge
	datasetLoadFailures prometheus.Counter

	// Background metrics
	backgroundChanges         *prometheus.CounterVec
	backgroundAssetsAvailable prometheus.Gauge

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Error metrics
	errorRateByType     *prometheus.CounterVec
	errorRateByEndpoint *prometheus.CounterVec
	errorLatency        *prometheus.HistogramVec

	// System metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

var globalManager *Manager //nolint:gochecknoglobals // singleton used by the package-level helpers

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // registry served by /healthz

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "gradecard",
		subsystem:        "lookup",
		histogramBuckets: latencyBucketsMs,
		enabled:          true,
		customLabels:     make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	auto := promauto.With(m.registry)
	labels := prometheus.Labels(m.customLabels)

	m.lookups = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: "requests_total",
		Help: "Student lookups by outcome",
	}, []string{"outcome"})

	m.validationFailures = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: "validation_failures_total",
		Help: "Rejected identifiers by validation reason",
	}, []string{"reason"})

	m.lookupLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name:    "latency_milliseconds",
		Help:    "Lookup latency in milliseconds, including the simulated delay",
		Buckets: m.histogramBuckets,
	})

	m.datasetRecords = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: "dataset", ConstLabels: labels,
		Name: "records",
		Help: "Number of records loaded into the store",
	})

	m.datasetLoadDuration = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: "dataset", ConstLabels: labels,
		Name: "load_duration_milliseconds",
		Help: "Duration of the startup dataset load",
	})

	m.datasetLoadFailures = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: "dataset", ConstLabels: labels,
		Name: "load_failures_total",
		Help: "Failed dataset loads",
	})

	m.backgroundChanges = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: "background", ConstLabels: labels,
		Name: "changes_total",
		Help: "Background change requests by result",
	}, []string{"result"})

	m.backgroundAssetsAvailable = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: "background", ConstLabels: labels,
		Name: "assets_available",
		Help: "Background images that passed the last preload",
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: "http", ConstLabels: labels,
		Name: "requests_total",
		Help: "HTTP requests by endpoint, method and status",
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: "http", ConstLabels: labels,
		Name:    "request_duration_milliseconds",
		Help:    "HTTP request duration in milliseconds",
		Buckets: m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})

	m.errorRateByType = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: "errors", ConstLabels: labels,
		Name: "by_type_total",
		Help: "Errors by type and severity",
	}, []string{"error_type", "severity"})

	m.errorRateByEndpoint = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: "errors", ConstLabels: labels,
		Name: "by_endpoint_total",
		Help: "Errors by endpoint",
	}, []string{"endpoint", "method", "error_type"})

	m.errorLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: "errors", ConstLabels: labels,
		Name:    "latency_milliseconds",
		Help:    "Latency of failed requests in milliseconds",
		Buckets: m.histogramBuckets,
	}, []string{"component", "error_type"})

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: "system", ConstLabels: labels,
		Name: "memory_usage_bytes",
		Help: "Allocated heap bytes",
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: "system", ConstLabels: labels,
		Name: "goroutines",
		Help: "Number of goroutines",
	})

	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: "system", ConstLabels: labels,
		Name:    "gc_pause_milliseconds",
		Help:    "Average GC pause in milliseconds",
		Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10},
	})
}

// RecordLookup counts a lookup outcome and its latency.
func (m *Manager) RecordLookup(outcome string, latencyMs float64) {
	if !m.enabled {
		return
	}
	m.lookups.WithLabelValues(outcome).Inc()
	m.lookupLatency.Observe(latencyMs)
}

// RecordValidationFailure counts a rejected identifier.
func (m *Manager) RecordValidationFailure(reason string) {
	if m.enabled {
		m.validationFailures.WithLabelValues(reason).Inc()
	}
}

// RecordDatasetLoad records a successful load.
func (m *Manager) RecordDatasetLoad(records int, durationMs float64) {
	if !m.enabled {
		return
	}
	m.datasetRecords.Set(float64(records))
	m.datasetLoadDuration.Set(durationMs)
}

// RecordDatasetLoadFailure counts a failed load.
func (m *Manager) RecordDatasetLoadFailure() {
	if m.enabled {
		m.datasetLoadFailures.Inc()
	}
}

// RecordBackgroundChange counts a background change request.
func (m *Manager) RecordBackgroundChange(result string) {
	if m.enabled {
		m.backgroundChanges.WithLabelValues(result).Inc()
	}
}

// UpdateBackgroundAssetsAvailable sets the preload result.
func (m *Manager) UpdateBackgroundAssetsAvailable(n int) {
	if m.enabled {
		m.backgroundAssetsAvailable.Set(float64(n))
	}
}

// RecordHTTPRequest counts one request and its duration.
func (m *Manager) RecordHTTPRequest(endpoint, method, statusCode string, durationMs float64) {
	if !m.enabled {
		return
	}
	m.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	m.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// RecordHTTPError counts a failed request.
func (m *Manager) RecordHTTPError(endpoint, method, errorType, severity string, latencyMs float64) {
	if !m.enabled {
		return
	}
	m.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
	m.errorRateByType.WithLabelValues(errorType, severity).Inc()
	m.errorLatency.WithLabelValues("http", errorType).Observe(latencyMs)
}

// UpdateSystem sets the process gauges.
func (m *Manager) UpdateSystem(memoryBytes uint64, goroutines int, avgGCPauseMs float64) {
	if !m.enabled {
		return
	}
	m.systemMemoryUsage.Set(float64(memoryBytes))
	m.systemGoroutineCount.Set(float64(goroutines))
	if avgGCPauseMs > 0 {
		m.systemGCPauseTime.Observe(avgGCPauseMs)
	}
}

// Package-level helpers delegate to the global manager.

func RecordLookup(outcome string, latencyMs float64) { globalManager.RecordLookup(outcome, latencyMs) }
func RecordValidationFailure(reason string)           { globalManager.RecordValidationFailure(reason) }
func RecordDatasetLoad(records int, durationMs float64) {
	globalManager.RecordDatasetLoad(records, durationMs)
}
func RecordDatasetLoadFailure()                { globalManager.RecordDatasetLoadFailure() }
func RecordBackgroundChange(result string)     { globalManager.RecordBackgroundChange(result) }
func UpdateBackgroundAssetsAvailable(n int)    { globalManager.UpdateBackgroundAssetsAvailable(n) }
func RecordHTTPRequest(endpoint, method, statusCode string, durationMs float64) {
	globalManager.RecordHTTPRequest(endpoint, method, statusCode, durationMs)
}
func RecordHTTPError(endpoint, method, errorType, severity string, latencyMs float64) {
	globalManager.RecordHTTPError(endpoint, method, errorType, severity, latencyMs)
}
func UpdateSystem(memoryBytes uint64, goroutines int, avgGCPauseMs float64) {
	globalManager.UpdateSystem(memoryBytes, goroutines, avgGCPauseMs)
}

// GetRegistry returns the registry served at /healthz.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
