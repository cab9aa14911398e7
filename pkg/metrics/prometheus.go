// Package metrics provides Prometheus metrics for the cardio prediction service.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the cardio service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	customLabels     map[string]string
	registry         prometheus.Registerer

	// Prediction metrics
	predictions         *prometheus.CounterVec
	predictionLatency   prometheus.Histogram
	predictionProba     prometheus.Histogram
	outOfDomain         *prometheus.CounterVec
	validationFailures  *prometheus.CounterVec
	modelReady          prometheus.Gauge
	modelFeatures       prometheus.Gauge
	modelTrees          prometheus.Gauge
	artifactLatency     *prometheus.HistogramVec

	// Training metrics
	trainingRuns     *prometheus.CounterVec
	trainingDuration prometheus.Histogram
	trainingRows     prometheus.Gauge
	trainingAccuracy *prometheus.GaugeVec
	trainingDropped  prometheus.Gauge
	scalerDegenerate prometheus.Gauge

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Error Metrics
	errorRateByComponent *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec

	// System Performance Metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "cardio",
		histogramBuckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25, 50, 100, 250},
		customLabels:     make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) counter(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.customLabels}
}

func (m *Manager) gauge(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.customLabels}
}

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
		ConstLabels: m.customLabels, Buckets: buckets,
	}
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	auto := promauto.With(m.registry)

	m.predictions = auto.NewCounterVec(m.counter("predictions_total", "Predictions served by label"), []string{"label"})
	m.predictionLatency = auto.NewHistogram(m.histogram("prediction_latency_milliseconds",
		"Encode, scale and forest evaluation time in milliseconds", m.histogramBuckets))
	m.predictionProba = auto.NewHistogram(m.histogram("prediction_probability",
		"Distribution of positive-class probability", prometheus.LinearBuckets(0.1, 0.1, 9)))
	m.outOfDomain = auto.NewCounterVec(m.counter("predict_out_of_domain_total",
		"Categorical values outside the declared domain, by feature"), []string{"feature"})
	m.validationFailures = auto.NewCounterVec(m.counter("validation_failures_total",
		"Rejected prediction inputs by field"), []string{"field"})
	m.modelReady = auto.NewGauge(m.gauge("model_ready", "1 when a trained model is loaded"))
	m.modelFeatures = auto.NewGauge(m.gauge("model_features", "Length of the loaded feature ordering"))
	m.modelTrees = auto.NewGauge(m.gauge("model_trees", "Trees in the loaded forest"))
	m.artifactLatency = auto.NewHistogramVec(m.histogram("artifact_operation_milliseconds",
		"Artifact store operation latency in milliseconds", m.histogramBuckets), []string{"operation", "status"})

	m.trainingRuns = auto.NewCounterVec(m.counter("training_runs_total", "Training runs by outcome"), []string{"status"})
	m.trainingDuration = auto.NewHistogram(m.histogram("training_duration_seconds",
		"Wall time of a training run in seconds", prometheus.ExponentialBuckets(0.05, 2, 12)))
	m.trainingRows = auto.NewGauge(m.gauge("training_rows", "Rows used by the last training run"))
	m.trainingAccuracy = auto.NewGaugeVec(m.gauge("training_accuracy",
		"Accuracy of the last training run by split"), []string{"split"})
	m.trainingDropped = auto.NewGauge(m.gauge("training_dropped_rows", "Rows dropped by the last training run"))
	m.scalerDegenerate = auto.NewGauge(m.gauge("scaler_constant_columns", "Continuous columns with zero variance at fit time"))

	m.httpRequests = auto.NewCounterVec(m.counter("http_requests_total",
		"Total number of HTTP requests by endpoint and method"), []string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(m.histogram("http_request_duration_milliseconds",
		"HTTP request duration in milliseconds", m.histogramBuckets), []string{"endpoint", "method", "status_code"})

	m.errorRateByComponent = auto.NewCounterVec(m.counter("errors_by_component_total",
		"Total number of errors by component"), []string{"component", "error_type"})
	m.errorRateByEndpoint = auto.NewCounterVec(m.counter("errors_by_endpoint_total",
		"Total number of errors by endpoint"), []string{"endpoint", "method", "error_type"})

	m.systemMemoryUsage = auto.NewGauge(m.gauge("system_memory_usage_bytes", "System memory usage in bytes"))
	m.systemGoroutineCount = auto.NewGauge(m.gauge("system_goroutine_count", "Number of goroutines"))
	m.systemGCPauseTime = auto.NewHistogram(m.histogram("system_gc_pause_time_milliseconds",
		"GC pause time in milliseconds", []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000}))
}

// Prediction Metrics Functions.

// RecordPrediction counts a served prediction and observes its probability and latency.
func RecordPrediction(label int, probability, latencyMs float64) {
	globalManager.predictions.WithLabelValues(strconv.Itoa(label)).Inc()
	globalManager.predictionProba.Observe(probability)
	globalManager.predictionLatency.Observe(latencyMs)
}

// RecordOutOfDomain counts a categorical value outside its declared domain.
func RecordOutOfDomain(feature string) {
	globalManager.outOfDomain.WithLabelValues(feature).Inc()
}

// RecordValidationFailure counts a rejected input field.
func RecordValidationFailure(field string) {
	globalManager.validationFailures.WithLabelValues(field).Inc()
}

// UpdateModelInfo publishes the loaded model's shape. ready=false marks the
// service untrained.
func UpdateModelInfo(ready bool, features, trees int) {
	v := 0.0
	if ready {
		v = 1
	}
	globalManager.modelReady.Set(v)
	globalManager.modelFeatures.Set(float64(features))
	globalManager.modelTrees.Set(float64(trees))
}

// RecordArtifactOperation records an artifact store save or load.
func RecordArtifactOperation(operation, status string, latencyMs float64) {
	globalManager.artifactLatency.WithLabelValues(operation, status).Observe(latencyMs)
}

// Training Metrics Functions.

// RecordTrainingRun records the outcome of one training run.
func RecordTrainingRun(status string, seconds float64) {
	globalManager.trainingRuns.WithLabelValues(status).Inc()
	globalManager.trainingDuration.Observe(seconds)
}

// UpdateTrainingResult publishes the last successful run's numbers.
func UpdateTrainingResult(rows, dropped, constantColumns int, trainAccuracy, testAccuracy float64) {
	globalManager.trainingRows.Set(float64(rows))
	globalManager.trainingDropped.Set(float64(dropped))
	globalManager.scalerDegenerate.Set(float64(constantColumns))
	globalManager.trainingAccuracy.WithLabelValues("train").Set(trainAccuracy)
	globalManager.trainingAccuracy.WithLabelValues("test").Set(testAccuracy)
}

// HTTP Metrics Functions.

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// Error Metrics Functions.

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// System Performance Metrics Functions.

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
