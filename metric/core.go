package metric

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics contains all synchronizer-level metrics (not store-specific)
type Metrics struct {
	// Sync pass metrics
	SyncPasses     *prometheus.CounterVec
	PassDuration   *prometheus.HistogramVec
	FragmentWrites *prometheus.CounterVec
	Publishes      *prometheus.CounterVec

	// Subscription metrics
	NotificationsReceived  prometheus.Counter
	NotificationsCoalesced prometheus.Counter

	// Store connection metrics, fed by the store adapters
	StoreConnected  prometheus.Gauge
	StoreReconnects prometheus.Counter
}

// NewMetrics creates a new Metrics instance with all synchronizer metrics
func NewMetrics() *Metrics {
	return &Metrics{
		// Sync pass metrics
		SyncPasses: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "confsync",
				Subsystem: "sync",
				Name:      "passes_total",
				Help:      "Total number of materialize passes by trigger and outcome",
			},
			[]string{"trigger", "status"},
		),

		PassDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "confsync",
				Subsystem: "sync",
				Name:      "pass_duration_seconds",
				Help:      "Materialize pass duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"trigger"},
		),

		FragmentWrites: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "confsync",
				Subsystem: "sync",
				Name:      "fragment_writes_total",
				Help:      "Total number of fragment writes by status",
			},
			[]string{"status"},
		),

		Publishes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "confsync",
				Subsystem: "sync",
				Name:      "publishes_total",
				Help:      "Total number of composite publishes by status",
			},
			[]string{"status"},
		),

		// Subscription metrics
		NotificationsReceived: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "confsync",
				Subsystem: "sync",
				Name:      "notifications_received_total",
				Help:      "Total number of change notifications delivered by the store",
			},
		),

		NotificationsCoalesced: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "confsync",
				Subsystem: "sync",
				Name:      "notifications_coalesced_total",
				Help:      "Total number of pending notifications replaced by a newer one before processing",
			},
		),

		// Store metrics
		StoreConnected: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "confsync",
				Subsystem: "store",
				Name:      "connected",
				Help:      "Store connection status (0=disconnected, 1=connected)",
			},
		),

		StoreReconnects: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "confsync",
				Subsystem: "store",
				Name:      "reconnects_total",
				Help:      "Total number of store reconnections",
			},
		),
	}
}

// RecordSyncPass increments the pass counter for one trigger/outcome pair
func (c *Metrics) RecordSyncPass(trigger, status string) {
	c.SyncPasses.WithLabelValues(trigger, status).Inc()
}

// RecordPassDuration records how long one materialize pass took
func (c *Metrics) RecordPassDuration(trigger string, duration time.Duration) {
	c.PassDuration.WithLabelValues(trigger).Observe(duration.Seconds())
}

// RecordFragmentWrite increments the fragment write counter
func (c *Metrics) RecordFragmentWrite(status string) {
	c.FragmentWrites.WithLabelValues(status).Inc()
}

// RecordPublish increments the publish counter
func (c *Metrics) RecordPublish(status string) {
	c.Publishes.WithLabelValues(status).Inc()
}

// RecordNotificationReceived increments the notification counter
func (c *Metrics) RecordNotificationReceived() {
	c.NotificationsReceived.Inc()
}

// RecordNotificationCoalesced increments the coalesced notification counter
func (c *Metrics) RecordNotificationCoalesced() {
	c.NotificationsCoalesced.Inc()
}

// RecordStoreStatus updates store connection status
func (c *Metrics) RecordStoreStatus(connected bool) {
	value := 0.0
	if connected {
		value = 1.0
	}
	c.StoreConnected.Set(value)
}

// RecordStoreReconnect increments reconnection counter
func (c *Metrics) RecordStoreReconnect() {
	c.StoreReconnects.Inc()
}
