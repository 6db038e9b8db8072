// Package metrics provides Prometheus metrics for the TrueRate review service.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// latencyBucketsMs covers sub-millisecond scoring up to slow store round-trips.
var latencyBucketsMs = []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000, 2500}

// Manager manages all Prometheus metrics for the TrueRate service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Review analysis
	reviewsAnalyzed  *prometheus.CounterVec
	sarcasmDetected  prometheus.Counter
	adjustedRating   prometheus.Histogram
	ratingDelta      prometheus.Histogram
	credibilityScore prometheus.Histogram
	analysisLatency  prometheus.Histogram

	// Feedback and learning
	feedbackReceived    *prometheus.CounterVec
	feedbackDuplicate   prometheus.Counter
	feedbackRateLimited prometheus.Counter
	weightUpdates       prometheus.Counter
	learnedWeights      prometheus.Gauge

	// Sentiment cache
	sentimentCacheHits   prometheus.Counter
	sentimentCacheMisses prometheus.Counter

	// Weight persistence
	weightPersist        *prometheus.CounterVec
	weightPersistLatency prometheus.Histogram
	weightPersistDropped prometheus.Counter
	storeLatency         *prometheus.HistogramVec
	storeErrors          *prometheus.CounterVec

	// Persistence queue
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueUtilization   prometheus.Gauge
	queueEnqueue       prometheus.Counter
	queueDequeue       prometheus.Counter
	queueEnqueueErrors prometheus.Counter

	// Persistence workers
	workerCount             prometheus.Gauge
	workerActiveCount       prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrors            prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Errors
	errorRateByComponent *prometheus.CounterVec

	// Dedupe
	dedupeSize prometheus.Gauge

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "truerate",
		subsystem:        "reviews",
		histogramBuckets: latencyBucketsMs,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
	})
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
	}, labels)
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
	})
}

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, Buckets: buckets,
	})
}

func (m *Manager) histogramVec(name, help string, buckets []float64, labels ...string) *prometheus.HistogramVec {
	return promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, Buckets: buckets,
	}, labels)
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // comprehensive metrics initialization
	m.reviewsAnalyzed = m.counterVec("analyzed_total", "Reviews analyzed by credibility classification", "classification")
	m.sarcasmDetected = m.counter("sarcasm_detected_total", "Reviews flagged as sarcastic")
	m.adjustedRating = m.histogram("adjusted_rating", "Distribution of adjusted ratings",
		[]float64{1, 1.5, 2, 2.5, 3, 3.5, 4, 4.5, 5})
	m.ratingDelta = m.histogram("rating_delta", "Adjusted rating minus original stars (truth gap)",
		[]float64{-4, -3, -2, -1, -0.5, 0, 0.5, 1, 2, 3, 4})
	m.credibilityScore = m.histogram("credibility_score", "Distribution of final credibility scores",
		prometheus.LinearBuckets(0.1, 0.1, 10))
	m.analysisLatency = m.histogram("analysis_latency_milliseconds", "Time to analyze one review", m.histogramBuckets)

	m.feedbackReceived = m.counterVec("feedback_total", "Feedback events by vote", "vote")
	m.feedbackDuplicate = m.counter("feedback_duplicate_total", "Feedback events rejected as duplicates")
	m.feedbackRateLimited = m.counter("feedback_rate_limited_total", "Feedback requests rejected by the rate limiter")
	m.weightUpdates = m.counter("weight_updates_total", "Individual learned weight updates applied")
	m.learnedWeights = m.gauge("learned_weights", "Number of learned weight keys held in memory")

	m.sentimentCacheHits = m.counter("sentiment_cache_hits_total", "Sentiment cache hits")
	m.sentimentCacheMisses = m.counter("sentiment_cache_misses_total", "Sentiment cache misses")

	m.weightPersist = m.counterVec("weight_persist_total", "Weight persistence attempts by result", "result")
	m.weightPersistLatency = m.histogram("weight_persist_latency_milliseconds", "Time to persist one weight", m.histogramBuckets)
	m.weightPersistDropped = m.counter("weight_persist_dropped_total", "Weight writes dropped because the queue was full")
	m.storeLatency = m.histogramVec("store_latency_milliseconds", "Weight store latency by backend and operation",
		m.histogramBuckets, "backend", "op")
	m.storeErrors = m.counterVec("store_errors_total", "Weight store errors by backend and operation", "backend", "op")

	m.queueSize = m.gauge("persist_queue_size", "Pending weight writes")
	m.queueCapacity = m.gauge("persist_queue_capacity", "Capacity of the weight write queue")
	m.queueUtilization = m.gauge("persist_queue_utilization_percent", "Queue utilization percentage")
	m.queueEnqueue = m.counter("persist_queue_enqueue_total", "Weight writes enqueued")
	m.queueDequeue = m.counter("persist_queue_dequeue_total", "Weight writes dequeued")
	m.queueEnqueueErrors = m.counter("persist_queue_enqueue_errors_total", "Failed enqueue attempts")

	m.workerCount = m.gauge("persist_worker_count", "Configured persistence workers")
	m.workerActiveCount = m.gauge("persist_worker_active", "Persistence workers currently writing")
	m.workerProcessingLatency = m.histogram("persist_worker_latency_milliseconds", "Worker time per write", m.histogramBuckets)
	m.workerErrors = m.counter("persist_worker_errors_total", "Worker write failures")

	m.httpRequests = m.counterVec("http_requests_total", "HTTP requests by endpoint and method",
		"endpoint", "method", "status_code")
	m.httpRequestDuration = m.histogramVec("http_request_duration_milliseconds", "HTTP request duration in milliseconds",
		m.histogramBuckets, "endpoint", "method", "status_code")

	m.errorRateByComponent = m.counterVec("errors_by_component_total", "Errors by component and type", "component", "error_type")

	m.dedupeSize = m.gauge("feedback_dedupe_size", "Feedback ids held by the deduper")

	m.systemMemoryUsage = m.gauge("system_memory_bytes", "Heap memory in use")
	m.systemGoroutineCount = m.gauge("system_goroutines", "Number of goroutines")
}

// Review analysis.

// RecordReviewAnalyzed counts one analyzed review.
func RecordReviewAnalyzed(classification string) {
	globalManager.reviewsAnalyzed.WithLabelValues(classification).Inc()
}

// RecordSarcasmDetected counts one sarcastic review.
func RecordSarcasmDetected() { globalManager.sarcasmDetected.Inc() }

// RecordAdjustedRating observes an adjusted rating and its delta from the stars.
func RecordAdjustedRating(adjusted, delta float64) {
	globalManager.adjustedRating.Observe(adjusted)
	globalManager.ratingDelta.Observe(delta)
}

// RecordCredibility observes a final credibility score.
func RecordCredibility(score float64) { globalManager.credibilityScore.Observe(score) }

// RecordAnalysisLatency records analysis time in milliseconds.
func RecordAnalysisLatency(ms float64) { globalManager.analysisLatency.Observe(ms) }

// Feedback and learning.

// RecordFeedback counts a feedback vote (+1 or -1).
func RecordFeedback(vote int) {
	globalManager.feedbackReceived.WithLabelValues(strconv.Itoa(vote)).Inc()
}

// RecordFeedbackDuplicate counts a duplicate feedback id.
func RecordFeedbackDuplicate() { globalManager.feedbackDuplicate.Inc() }

// RecordFeedbackRateLimited counts a rate-limited feedback request.
func RecordFeedbackRateLimited() { globalManager.feedbackRateLimited.Inc() }

// RecordWeightUpdates adds n applied weight updates.
func RecordWeightUpdates(n int) { globalManager.weightUpdates.Add(float64(n)) }

// UpdateLearnedWeights sets the number of learned weight keys.
func UpdateLearnedWeights(n int) { globalManager.learnedWeights.Set(float64(n)) }

// Sentiment cache.

// RecordSentimentCacheHit counts a cache hit.
func RecordSentimentCacheHit() { globalManager.sentimentCacheHits.Inc() }

// RecordSentimentCacheMiss counts a cache miss.
func RecordSentimentCacheMiss() { globalManager.sentimentCacheMisses.Inc() }

// Weight persistence.

// RecordWeightPersist records one persistence attempt.
func RecordWeightPersist(ok bool, latencyMs float64) {
	result := "ok"
	if !ok {
		result = "error"
	}
	globalManager.weightPersist.WithLabelValues(result).Inc()
	globalManager.weightPersistLatency.Observe(latencyMs)
}

// RecordWeightPersistDropped counts a write dropped on a full queue.
func RecordWeightPersistDropped() { globalManager.weightPersistDropped.Inc() }

// RecordStoreOperation records latency for a store call and counts failures.
func RecordStoreOperation(backend, op string, latencyMs float64, err error) {
	globalManager.storeLatency.WithLabelValues(backend, op).Observe(latencyMs)
	if err != nil {
		globalManager.storeErrors.WithLabelValues(backend, op).Inc()
	}
}

// Persistence queue.

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) { globalManager.queueSize.Set(float64(size)) }

// UpdateQueueCapacity sets the queue capacity.
func UpdateQueueCapacity(capacity int) { globalManager.queueCapacity.Set(float64(capacity)) }

// UpdateQueueUtilization sets the queue utilization percentage.
func UpdateQueueUtilization(utilization float64) { globalManager.queueUtilization.Set(utilization) }

// RecordQueueEnqueue counts an enqueue.
func RecordQueueEnqueue() { globalManager.queueEnqueue.Inc() }

// RecordQueueDequeue counts a dequeue.
func RecordQueueDequeue() { globalManager.queueDequeue.Inc() }

// RecordQueueEnqueueError counts a failed enqueue.
func RecordQueueEnqueueError() { globalManager.queueEnqueueErrors.Inc() }

// Persistence workers.

// UpdateWorkerCount sets the configured worker count.
func UpdateWorkerCount(count int) { globalManager.workerCount.Set(float64(count)) }

// UpdateWorkerActiveCount sets the number of busy workers.
func UpdateWorkerActiveCount(count int) { globalManager.workerActiveCount.Set(float64(count)) }

// RecordWorkerProcessingLatency records worker time per write in milliseconds.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// RecordWorkerError counts a worker failure.
func RecordWorkerError() { globalManager.workerErrors.Inc() }

// HTTP.

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// Errors.

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// UpdateDedupeSize sets the deduper size.
func UpdateDedupeSize(n int64) { globalManager.dedupeSize.Set(float64(n)) }

// System.

// UpdateSystemMemoryUsage sets the heap memory in use.
func UpdateSystemMemoryUsage(bytes uint64) { globalManager.systemMemoryUsage.Set(float64(bytes)) }

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) { globalManager.systemGoroutineCount.Set(float64(count)) }

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
