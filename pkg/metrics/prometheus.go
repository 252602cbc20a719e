// Package metrics provides Prometheus metrics for the HackBite service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Latency histograms are in milliseconds; rating jobs can take tens of seconds.
var defaultLatencyBuckets = []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000, 60000} //nolint:gochecknoglobals // read-only defaults

// Manager owns every collector exported by the service.
type Manager struct {
	namespace      string
	subsystem      string
	latencyBuckets []float64
	constLabels    map[string]string
	registry       prometheus.Registerer

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorsByEndpoint    *prometheus.CounterVec
	errorsByComponent   *prometheus.CounterVec

	// Candidate matching
	matchRequests     *prometheus.CounterVec
	matchLatency      prometheus.Histogram
	matchCandidates   prometheus.Histogram
	matchErrorsByKind *prometheus.CounterVec

	// Rating pipeline
	ratingSubmitted     prometheus.Counter
	ratingDuplicate     prometheus.Counter
	ratingCompleted     *prometheus.CounterVec
	ratingLatency       prometheus.Histogram
	aiLatency           prometheus.Histogram
	aiErrors            prometheus.Counter
	scrapeLatency       prometheus.Histogram
	scrapeErrors        prometheus.Counter
	resumeExtractErrors prometheus.Counter

	// Queue
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueUtilization   prometheus.Gauge
	queueEnqueued      prometheus.Counter
	queueDequeued      prometheus.Counter
	queueEnqueueErrors *prometheus.CounterVec

	// Workers
	workerCount             prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrors            prometheus.Counter

	// Repository
	repositoryQueryLatency *prometheus.HistogramVec
	usersTotal             prometheus.Gauge
	teamsTotal             prometheus.Gauge

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry so /metrics only exposes service collectors.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:      "hackbite",
		subsystem:      "api",
		latencyBuckets: defaultLatencyBuckets,
		registry:       prometheus.NewRegistry(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	})
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	}, labels)
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	})
}

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels, Buckets: buckets,
	})
}

func (m *Manager) histogramVec(name, help string, labels ...string) *prometheus.HistogramVec {
	return promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels, Buckets: m.latencyBuckets,
	}, labels)
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	m.httpRequests = m.counterVec("http_requests_total", "HTTP requests by endpoint, method and status", "endpoint", "method", "status_code")
	m.httpRequestDuration = m.histogramVec("http_request_duration_milliseconds", "HTTP request duration in milliseconds", "endpoint", "method", "status_code")
	m.errorsByEndpoint = m.counterVec("http_errors_total", "HTTP error responses by endpoint and error type", "endpoint", "method", "error_type")
	m.errorsByComponent = m.counterVec("component_errors_total", "Errors by component and error type", "component", "error_type")

	m.matchRequests = m.counterVec("match_requests_total", "Candidate match requests by sort key", "sort_by")
	m.matchLatency = m.histogram("match_latency_milliseconds", "Candidate match latency including the candidate fetch", m.latencyBuckets)
	m.matchCandidates = m.histogram("match_candidates_returned", "Candidates returned per match request", []float64{0, 1, 5, 10, 25, 50, 100, 250})
	m.matchErrorsByKind = m.counterVec("match_errors_total", "Candidate match failures by kind", "kind")

	m.ratingSubmitted = m.counter("rating_jobs_submitted_total", "Rating jobs accepted for processing")
	m.ratingDuplicate = m.counter("rating_jobs_duplicate_total", "Rating submissions collapsed onto an in-flight job")
	m.ratingCompleted = m.counterVec("rating_jobs_finished_total", "Rating jobs finished by final status", "status")
	m.ratingLatency = m.histogram("rating_job_latency_milliseconds", "End-to-end rating pipeline latency", m.latencyBuckets)
	m.aiLatency = m.histogram("ai_request_latency_milliseconds", "Generative model request latency", m.latencyBuckets)
	m.aiErrors = m.counter("ai_request_errors_total", "Failed generative model requests")
	m.scrapeLatency = m.histogram("github_scrape_latency_milliseconds", "GitHub profile scrape latency", m.latencyBuckets)
	m.scrapeErrors = m.counter("github_scrape_errors_total", "Failed GitHub profile scrapes")
	m.resumeExtractErrors = m.counter("resume_extract_errors_total", "Failed resume text extractions")

	m.queueSize = m.gauge("queue_size", "Current number of queued rating jobs")
	m.queueCapacity = m.gauge("queue_capacity", "Maximum number of queued rating jobs")
	m.queueUtilization = m.gauge("queue_utilization_ratio", "Queue size divided by capacity")
	m.queueEnqueued = m.counter("queue_enqueued_total", "Rating jobs enqueued")
	m.queueDequeued = m.counter("queue_dequeued_total", "Rating jobs handed to workers")
	m.queueEnqueueErrors = m.counterVec("queue_enqueue_errors_total", "Rejected enqueues by reason", "reason")

	m.workerCount = m.gauge("worker_count", "Number of rating workers")
	m.workerProcessingLatency = m.histogram("worker_processing_latency_milliseconds", "Per-job worker processing latency", m.latencyBuckets)
	m.workerErrors = m.counter("worker_errors_total", "Jobs that finished with an error")

	m.repositoryQueryLatency = m.histogramVec("repository_query_latency_milliseconds", "Repository query latency by operation", "operation")
	m.usersTotal = m.gauge("users_total", "Active registered users")
	m.teamsTotal = m.gauge("teams_total", "Teams currently stored")

	m.systemMemoryUsage = m.gauge("system_memory_bytes", "Heap bytes allocated")
	m.systemGoroutineCount = m.gauge("system_goroutines", "Number of goroutines")
	m.systemGCPauseTime = m.histogram("system_gc_pause_milliseconds", "Average GC pause in milliseconds", []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 50})
}

// HTTP metrics.

// RecordHTTPRequest increments the request counter.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// RecordErrorByEndpoint records an HTTP error response.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorsByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// Matching metrics.

// RecordMatch records a successful match request.
func RecordMatch(sortBy string, candidates int, latencyMs float64) {
	globalManager.matchRequests.WithLabelValues(sortBy).Inc()
	globalManager.matchCandidates.Observe(float64(candidates))
	globalManager.matchLatency.Observe(latencyMs)
}

// RecordMatchError records a failed match request.
func RecordMatchError(kind string) {
	globalManager.matchErrorsByKind.WithLabelValues(kind).Inc()
}

// Rating metrics.

// RecordRatingSubmitted increments accepted rating jobs.
func RecordRatingSubmitted() { globalManager.ratingSubmitted.Inc() }

// RecordRatingDuplicate increments collapsed duplicate submissions.
func RecordRatingDuplicate() { globalManager.ratingDuplicate.Inc() }

// RecordRatingFinished records a finished job and its pipeline latency.
func RecordRatingFinished(status string, latencyMs float64) {
	globalManager.ratingCompleted.WithLabelValues(status).Inc()
	globalManager.ratingLatency.Observe(latencyMs)
}

// RecordAIRequest records a generative model call.
func RecordAIRequest(latencyMs float64, failed bool) {
	globalManager.aiLatency.Observe(latencyMs)
	if failed {
		globalManager.aiErrors.Inc()
	}
}

// RecordScrape records a GitHub scrape.
func RecordScrape(latencyMs float64, failed bool) {
	globalManager.scrapeLatency.Observe(latencyMs)
	if failed {
		globalManager.scrapeErrors.Inc()
	}
}

// RecordResumeExtractError increments failed resume extractions.
func RecordResumeExtractError() { globalManager.resumeExtractErrors.Inc() }

// Queue metrics.

// UpdateQueueCapacity sets the queue capacity.
func UpdateQueueCapacity(capacity int) { globalManager.queueCapacity.Set(float64(capacity)) }

// UpdateQueueSize sets the queue length and derived utilization.
func UpdateQueueSize(size, capacity int) {
	globalManager.queueSize.Set(float64(size))
	if capacity > 0 {
		globalManager.queueUtilization.Set(float64(size) / float64(capacity))
	}
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() { globalManager.queueEnqueued.Inc() }

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() { globalManager.queueDequeued.Inc() }

// RecordQueueEnqueueError records a rejected enqueue.
func RecordQueueEnqueueError(reason string) {
	globalManager.queueEnqueueErrors.WithLabelValues(reason).Inc()
}

// Worker metrics.

// UpdateWorkerCount sets the number of workers.
func UpdateWorkerCount(count int) { globalManager.workerCount.Set(float64(count)) }

// RecordWorkerProcessingLatency records per-job worker latency.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() { globalManager.workerErrors.Inc() }

// Repository metrics.

// RecordRepositoryQueryLatency records repository latency for an operation.
func RecordRepositoryQueryLatency(operation string, latencyMs float64) {
	globalManager.repositoryQueryLatency.WithLabelValues(operation).Observe(latencyMs)
}

// UpdateUsersTotal sets the number of active users.
func UpdateUsersTotal(count int) { globalManager.usersTotal.Set(float64(count)) }

// UpdateTeamsTotal sets the number of teams.
func UpdateTeamsTotal(count int) { globalManager.teamsTotal.Set(float64(count)) }

// System metrics.

// UpdateSystemMemoryUsage sets heap usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) { globalManager.systemMemoryUsage.Set(float64(bytes)) }

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) { globalManager.systemGCPauseTime.Observe(pauseMs) }

// GetRegistry returns the registry backing the global metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
