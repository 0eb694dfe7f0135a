// Package metrics provides Prometheus metrics for the wicket fantasy scoring service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus collector of the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Roster rules
	rosterChecks      *prometheus.CounterVec
	rosterSubmissions *prometheus.CounterVec

	// Performance ingestion
	performancePublications *prometheus.CounterVec
	performancesIngested    prometheus.Counter

	// Scoring
	scoringJobs    prometheus.Counter
	scoringErrors  prometheus.Counter
	scoringLatency prometheus.Histogram

	// Leaderboards
	leaderboardUpdates prometheus.Counter
	leaderboardErrors  prometheus.Counter
	leaderboardBoards  prometheus.Gauge
	leaderboardRosters prometheus.Gauge

	// Repository snapshot timings
	repositoryUpdateLatency           prometheus.Histogram
	repositoryQueryLatency            prometheus.Histogram
	repositorySnapshotRebuildDuration prometheus.Histogram
	repositorySnapshotLastUnix        prometheus.Gauge
	repositorySnapshotCount           prometheus.Counter

	// Queue
	queueSize              prometheus.Gauge
	queueCapacity          prometheus.Gauge
	queueUtilization       prometheus.Gauge
	queueEnqueued          prometheus.Counter
	queueDequeued          prometheus.Counter
	queueEnqueueErrors     prometheus.Counter
	queueProcessingLatency prometheus.Histogram

	// Workers
	workerCount             prometheus.Gauge
	workerActiveCount       prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrors            prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	errorsByComponent *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "wicket",
		subsystem:        "fantasy",
		histogramBuckets: prometheus.DefBuckets,
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

func (m *Manager) histogram(name, help string) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      name,
		Help:      help,
		Buckets:   m.histogramBuckets,
	})
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	m.rosterChecks = m.counterVec("roster_checks_total",
		"Roster rule checks by check and outcome", "check", "outcome")
	m.rosterSubmissions = m.counterVec("roster_submissions_total",
		"Finalized roster submissions by result", "result")

	m.performancePublications = m.counterVec("performance_publications_total",
		"Performance publications by result", "result")
	m.performancesIngested = m.counter("performances_ingested_total",
		"Player performance records accepted")

	m.scoringJobs = m.counter("scoring_jobs_total", "Roster scoring jobs completed")
	m.scoringErrors = m.counter("scoring_errors_total", "Roster scoring jobs that failed")
	m.scoringLatency = m.histogram("scoring_latency_milliseconds", "Roster scoring latency in milliseconds")

	m.leaderboardUpdates = m.counter("leaderboard_updates_total", "Leaderboard upserts")
	m.leaderboardErrors = m.counter("leaderboard_errors_total", "Leaderboard update errors")
	m.leaderboardBoards = m.gauge("leaderboard_matches", "Matches with a leaderboard")
	m.leaderboardRosters = m.gauge("leaderboard_rosters", "Rosters ranked across all matches")

	m.repositoryUpdateLatency = m.histogram("repository_update_latency_milliseconds",
		"Repository update operation latency in milliseconds")
	m.repositoryQueryLatency = m.histogram("repository_query_latency_milliseconds",
		"Repository query operation latency in milliseconds")
	m.repositorySnapshotRebuildDuration = m.histogram("repository_snapshot_rebuild_duration_milliseconds",
		"Repository snapshot rebuild duration in milliseconds")
	m.repositorySnapshotLastUnix = m.gauge("repository_snapshot_last_unix",
		"Unix timestamp of the last repository snapshot publish")
	m.repositorySnapshotCount = m.counter("repository_snapshot_count_total",
		"Total number of repository snapshots published")

	m.queueSize = m.gauge("queue_size", "Scoring jobs waiting in the queue")
	m.queueCapacity = m.gauge("queue_capacity", "Maximum queue capacity")
	m.queueUtilization = m.gauge("queue_utilization_ratio", "Queue utilization ratio (size / capacity)")
	m.queueEnqueued = m.counter("queue_enqueue_total", "Jobs enqueued")
	m.queueDequeued = m.counter("queue_dequeue_total", "Jobs dequeued")
	m.queueEnqueueErrors = m.counter("queue_enqueue_errors_total", "Jobs rejected by a full or closed queue")
	m.queueProcessingLatency = m.histogram("queue_processing_latency_milliseconds",
		"Time from enqueue to dequeue in milliseconds")

	m.workerCount = m.gauge("worker_count", "Configured scoring workers")
	m.workerActiveCount = m.gauge("worker_active_count", "Workers currently scoring")
	m.workerProcessingLatency = m.histogram("worker_processing_latency_milliseconds",
		"Worker job processing latency in milliseconds")
	m.workerErrors = m.counter("worker_errors_total", "Worker job errors")

	m.httpRequests = m.counterVec("http_requests_total",
		"HTTP requests by endpoint, method and status", "endpoint", "method", "status_code")
	m.httpRequestDuration = promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_milliseconds",
		Help:      "HTTP request duration in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})

	m.errorsByComponent = m.counterVec("errors_by_component_total",
		"Errors by component and type", "component", "error_type")

	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "Heap bytes allocated")
	m.systemGoroutineCount = m.gauge("system_goroutine_count", "Number of goroutines")
	m.systemGCPauseTime = promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_gc_pause_time_milliseconds",
		Help:      "GC pause time in milliseconds",
		Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
	})
}

// RecordRosterCheck records the outcome of a roster rule check.
func RecordRosterCheck(check, outcome string) {
	globalManager.rosterChecks.WithLabelValues(check, outcome).Inc()
}

// RecordRosterSubmission records a finalized roster submission result.
func RecordRosterSubmission(result string) {
	globalManager.rosterSubmissions.WithLabelValues(result).Inc()
}

// RecordPerformancePublication records a performance publication result.
func RecordPerformancePublication(result string) {
	globalManager.performancePublications.WithLabelValues(result).Inc()
}

// RecordPerformancesIngested adds accepted performance records.
func RecordPerformancesIngested(n int) {
	globalManager.performancesIngested.Add(float64(n))
}

// RecordScoringJob counts a completed scoring job.
func RecordScoringJob() {
	globalManager.scoringJobs.Inc()
}

// RecordScoringError counts a failed scoring job.
func RecordScoringError() {
	globalManager.scoringErrors.Inc()
}

// RecordScoringLatency records scoring latency in milliseconds.
func RecordScoringLatency(latencyMs float64) {
	globalManager.scoringLatency.Observe(latencyMs)
}

// RecordLeaderboardUpdate counts a leaderboard upsert.
func RecordLeaderboardUpdate() {
	globalManager.leaderboardUpdates.Inc()
}

// RecordLeaderboardError counts a leaderboard update error.
func RecordLeaderboardError() {
	globalManager.leaderboardErrors.Inc()
}

// UpdateLeaderboardMatches sets the number of matches with a leaderboard.
func UpdateLeaderboardMatches(count int) {
	globalManager.leaderboardBoards.Set(float64(count))
}

// UpdateLeaderboardRosters sets the number of ranked rosters.
func UpdateLeaderboardRosters(count int) {
	globalManager.leaderboardRosters.Set(float64(count))
}

// RecordRepositoryUpdateLatency records repository update latency in milliseconds.
func RecordRepositoryUpdateLatency(latencyMs float64) {
	globalManager.repositoryUpdateLatency.Observe(latencyMs)
}

// RecordRepositoryQueryLatency records repository query latency in milliseconds.
func RecordRepositoryQueryLatency(latencyMs float64) {
	globalManager.repositoryQueryLatency.Observe(latencyMs)
}

// RecordRepositorySnapshotRebuildDuration records a snapshot rebuild duration in milliseconds.
func RecordRepositorySnapshotRebuildDuration(ms float64) {
	globalManager.repositorySnapshotRebuildDuration.Observe(ms)
}

// UpdateRepositorySnapshotLastUnix sets the time of the last snapshot publish.
func UpdateRepositorySnapshotLastUnix(unix float64) {
	globalManager.repositorySnapshotLastUnix.Set(unix)
}

// IncrementRepositorySnapshotCount counts a published snapshot.
func IncrementRepositorySnapshotCount() {
	globalManager.repositorySnapshotCount.Inc()
}

// UpdateQueueSize sets the current queue length.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// UpdateQueueUtilization sets the queue utilization ratio.
func UpdateQueueUtilization(utilization float64) {
	globalManager.queueUtilization.Set(utilization)
}

// RecordQueueEnqueue counts an enqueued job.
func RecordQueueEnqueue() {
	globalManager.queueEnqueued.Inc()
}

// RecordQueueDequeue counts a dequeued job.
func RecordQueueDequeue() {
	globalManager.queueDequeued.Inc()
}

// RecordQueueEnqueueError counts a rejected enqueue.
func RecordQueueEnqueueError() {
	globalManager.queueEnqueueErrors.Inc()
}

// RecordQueueProcessingLatency records time spent queued in milliseconds.
func RecordQueueProcessingLatency(latencyMs float64) {
	globalManager.queueProcessingLatency.Observe(latencyMs)
}

// UpdateWorkerCount sets the configured worker count.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// UpdateWorkerActiveCount sets the number of busy workers.
func UpdateWorkerActiveCount(count int) {
	globalManager.workerActiveCount.Set(float64(count))
}

// RecordWorkerProcessingLatency records job processing latency in milliseconds.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// RecordWorkerError counts a worker error.
func RecordWorkerError() {
	globalManager.workerErrors.Inc()
}

// RecordHTTPRequest counts an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// UpdateSystemMemoryUsage sets the heap allocation in bytes.
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
