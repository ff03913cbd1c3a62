// Package metrics provides Prometheus metrics for the pitwall engine.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Manager manages all Prometheus metrics for the engine.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         *prometheus.Registry

	// Pipeline metrics: the tick loop is the product, so its throughput
	// and latency are the primary signals.
	ticksProcessed prometheus.Counter
	tickLatency    prometheus.Histogram
	snapshotErrors prometheus.Counter
	lapsCompleted  prometheus.Counter

	// Event metrics
	eventsEmitted    *prometheus.CounterVec
	eventsSuppressed *prometheus.CounterVec

	// Hand-off health
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueEnqueueErrors prometheus.Counter
	announceLatency    prometheus.Histogram

	// Adapters
	overlayClients prometheus.Gauge
	sessionRows    prometheus.Counter
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager()
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "pitwall",
		subsystem:        "engine",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.NewRegistry(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.ticksProcessed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ticks_processed_total",
		Help:      "Total number of telemetry ticks processed",
	})

	m.tickLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "tick_latency_milliseconds",
		Help:      "Histogram of full tick processing latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.snapshotErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "snapshot_errors_total",
		Help:      "Total number of ticks skipped because no snapshot was available",
	})

	m.lapsCompleted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "laps_completed_total",
		Help:      "Total number of lap-completion edges observed",
	})

	m.eventsEmitted = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "events_emitted_total",
			Help:      "Total number of events emitted, by kind",
		},
		[]string{"kind"},
	)

	m.eventsSuppressed = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "events_suppressed_total",
			Help:      "Total number of events dropped downstream of detection, by reason",
		},
		[]string{"reason"},
	)

	m.queueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_size",
		Help:      "Current size of the notification queue",
	})

	m.queueCapacity = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_capacity",
		Help:      "Configured capacity of the notification queue",
	})

	m.queueEnqueueErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_enqueue_errors_total",
		Help:      "Total number of events that could not be enqueued",
	})

	m.announceLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "announce_latency_milliseconds",
		Help:      "Histogram of notifier announce latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.overlayClients = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "overlay_clients",
		Help:      "Current number of connected overlay WebSocket clients",
	})

	m.sessionRows = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "session_rows_total",
		Help:      "Total number of rows written to the session store",
	})
}

// Handler returns an HTTP handler exposing the manager's registry.
func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Handler exposes the global manager's registry.
func Handler() http.Handler { return globalManager.Handler() }

// Package-level helpers against the global manager.

// RecordTick counts one processed tick and its latency in milliseconds.
func RecordTick(latencyMS float64) {
	globalManager.ticksProcessed.Inc()
	globalManager.tickLatency.Observe(latencyMS)
}

// RecordSnapshotError counts a tick with no usable snapshot.
func RecordSnapshotError() { globalManager.snapshotErrors.Inc() }

// RecordLapCompleted counts a lap-completion edge.
func RecordLapCompleted() { globalManager.lapsCompleted.Inc() }

// RecordEventEmitted counts one emitted event by kind name.
func RecordEventEmitted(kind string) { globalManager.eventsEmitted.WithLabelValues(kind).Inc() }

// RecordEventSuppressed counts one dropped event by reason.
func RecordEventSuppressed(reason string) {
	globalManager.eventsSuppressed.WithLabelValues(reason).Inc()
}

// UpdateQueueSize sets the current notification queue depth.
func UpdateQueueSize(size int) { globalManager.queueSize.Set(float64(size)) }

// UpdateQueueCapacity sets the configured queue capacity.
func UpdateQueueCapacity(capacity int) { globalManager.queueCapacity.Set(float64(capacity)) }

// RecordQueueEnqueueError counts a failed enqueue.
func RecordQueueEnqueueError() { globalManager.queueEnqueueErrors.Inc() }

// RecordAnnounceLatency observes one notifier announce, milliseconds.
func RecordAnnounceLatency(latencyMS float64) { globalManager.announceLatency.Observe(latencyMS) }

// UpdateOverlayClients sets the connected overlay client count.
func UpdateOverlayClients(n int) { globalManager.overlayClients.Set(float64(n)) }

// RecordSessionRow counts one row written to the session store.
func RecordSessionRow() { globalManager.sessionRows.Inc() }
