package metrics

import (
	"runtime"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const nanosecondsPerMillisecond = 1e6

// distanceBuckets follow the scoring ring radii.
var distanceBuckets = []float64{8, 12, 20, 30, 40, 45, 60, 75} //nolint:gochecknoglobals // fixed bucket layout

// Manager manages all Prometheus metrics for the game service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Game metrics
	throws          *prometheus.CounterVec
	points          *prometheus.CounterVec
	impactDistance  prometheus.Histogram
	busts           prometheus.Counter
	wins            prometheus.Counter
	gamesStarted    prometheus.Counter
	gamesActive     prometheus.Gauge
	aimActions      *prometheus.CounterVec
	sessionsDropped prometheus.Counter

	// Pipeline metrics
	throwsDuplicate   prometheus.Counter
	throwsDropped     prometheus.Counter
	queueSize         prometheus.Gauge
	queueCapacity     prometheus.Gauge
	queueUtilization  prometheus.Gauge
	queueEnqueued     prometheus.Counter
	queueDequeued     prometheus.Counter
	queueEnqueueError prometheus.Counter
	workerCount       prometheus.Gauge
	workerLatency     prometheus.Histogram
	workerErrors      prometheus.Counter
	scoringLatency    prometheus.Histogram

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	streamClients       prometheus.Gauge

	errorsByComponent *prometheus.CounterVec

	// System metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// customRegistry keeps the default Go collectors out of the exposition.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers every metric.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "oche",
		subsystem:        "game",
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

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, Buckets: buckets,
	})
}

func (m *Manager) initializeMetrics() {
	m.throws = m.counterVec("throws_total", "Throws scored, by aiming variant", "variant")
	m.points = m.counterVec("points_total", "Scored throws, by point value", "points")
	m.impactDistance = m.histogram("impact_distance", "Distance of impacts from the board center, in board percent", distanceBuckets)
	m.busts = m.counter("busts_total", "Throws that would have gone below zero")
	m.wins = m.counter("wins_total", "Matches won")
	m.gamesStarted = m.counter("games_started_total", "Games created")
	m.gamesActive = m.gauge("games_active", "Games currently held in memory")
	m.aimActions = m.counterVec("aim_actions_total", "Aim inputs accepted, by action", "action")
	m.sessionsDropped = m.counter("sessions_cancelled_total", "Aim sessions abandoned by disable or teardown")

	m.throwsDuplicate = m.counter("throws_duplicate_total", "Throw ids seen more than once")
	m.throwsDropped = m.counter("throws_dropped_total", "Throws dropped because the queue refused them")
	m.queueSize = m.gauge("queue_size", "Throws waiting to be scored")
	m.queueCapacity = m.gauge("queue_capacity", "Maximum throws the queue holds")
	m.queueUtilization = m.gauge("queue_utilization_ratio", "Queue fill ratio (0.0-1.0)")
	m.queueEnqueued = m.counter("queue_enqueue_total", "Throws enqueued")
	m.queueDequeued = m.counter("queue_dequeue_total", "Throws dequeued")
	m.queueEnqueueError = m.counter("queue_enqueue_errors_total", "Enqueue attempts that failed")
	m.workerCount = m.gauge("worker_count", "Scoring workers running")
	m.workerLatency = m.histogram("worker_processing_latency_milliseconds", "Time to score and apply one throw", m.histogramBuckets)
	m.workerErrors = m.counter("worker_errors_total", "Throws a worker failed to process")
	m.scoringLatency = m.histogram("scoring_latency_milliseconds", "Time spent in the scorer", m.histogramBuckets)

	m.httpRequests = m.counterVec("http_requests_total", "HTTP requests by endpoint and method", "endpoint", "method", "status_code")
	m.httpRequestDuration = promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_milliseconds",
		Help:      "HTTP request duration in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})
	m.streamClients = m.gauge("stream_clients", "Connected WebSocket stream clients")

	m.errorsByComponent = m.counterVec("errors_total", "Errors by component and type", "component", "error_type")

	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "Heap bytes allocated")
	m.systemGoroutineCount = m.gauge("system_goroutine_count", "Goroutines running")
	m.systemGCPauseTime = m.histogram("system_gc_pause_time_milliseconds", "Average GC pause time", m.histogramBuckets)
}

// Game metrics.

// RecordThrow records a scored throw.
func RecordThrow(variant string, points int, distance float64) {
	globalManager.throws.WithLabelValues(variant).Inc()
	globalManager.points.WithLabelValues(strconv.Itoa(points)).Inc()
	globalManager.impactDistance.Observe(distance)
}

// RecordBust increments the bust counter.
func RecordBust() { globalManager.busts.Inc() }

// RecordWin increments the win counter.
func RecordWin() { globalManager.wins.Inc() }

// RecordGameStarted increments the started games counter.
func RecordGameStarted() { globalManager.gamesStarted.Inc() }

// UpdateGamesActive sets the number of live games.
func UpdateGamesActive(count int) { globalManager.gamesActive.Set(float64(count)) }

// RecordAimAction counts an accepted aim input (lock, down, move, up).
func RecordAimAction(action string) { globalManager.aimActions.WithLabelValues(action).Inc() }

// RecordSessionCancelled counts an abandoned aim session.
func RecordSessionCancelled() { globalManager.sessionsDropped.Inc() }

// Pipeline metrics.

// RecordThrowDuplicate counts a throw id seen twice.
func RecordThrowDuplicate() { globalManager.throwsDuplicate.Inc() }

// RecordThrowDropped counts a throw the queue refused.
func RecordThrowDropped() { globalManager.throwsDropped.Inc() }

// UpdateQueueSize sets the current queue length and utilization.
func UpdateQueueSize(size, capacity int) {
	globalManager.queueSize.Set(float64(size))
	if capacity > 0 {
		globalManager.queueUtilization.Set(float64(size) / float64(capacity))
	}
}

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) { globalManager.queueCapacity.Set(float64(capacity)) }

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() { globalManager.queueEnqueued.Inc() }

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() { globalManager.queueDequeued.Inc() }

// RecordQueueEnqueueError increments the enqueue error counter.
func RecordQueueEnqueueError() { globalManager.queueEnqueueError.Inc() }

// UpdateWorkerCount sets the number of running workers.
func UpdateWorkerCount(count int) { globalManager.workerCount.Set(float64(count)) }

// RecordWorkerProcessingLatency records how long one throw took end to end.
func RecordWorkerProcessingLatency(latencyMs float64) { globalManager.workerLatency.Observe(latencyMs) }

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() { globalManager.workerErrors.Inc() }

// RecordScoringLatency records scorer latency.
func RecordScoringLatency(latencyMs float64) { globalManager.scoringLatency.Observe(latencyMs) }

// HTTP metrics.

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// StreamClientConnected and StreamClientDisconnected track live WebSocket clients.
func StreamClientConnected()    { globalManager.streamClients.Inc() }
func StreamClientDisconnected() { globalManager.streamClients.Dec() }

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// System metrics.

// CollectSystem samples memory, goroutines and average GC pause.
func CollectSystem() {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	globalManager.systemMemoryUsage.Set(float64(ms.Alloc))
	globalManager.systemGoroutineCount.Set(float64(runtime.NumGoroutine()))
	if ms.NumGC > 0 {
		globalManager.systemGCPauseTime.Observe(float64(ms.PauseTotalNs) / float64(ms.NumGC) / nanosecondsPerMillisecond)
	}
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
