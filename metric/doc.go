// Package metric provides Prometheus-based metrics collection and an HTTP
// server for synchronizer monitoring and observability.
//
// The package offers a centralized metrics registry managing both core
// synchronizer metrics (sync passes, fragment writes, publishes, store
// connectivity) and custom adapter-specific metrics. It includes an HTTP
// server exposing metrics in Prometheus format plus a health endpoint.
//
// # Architecture
//
// The package follows a three-layer design:
//
//  1. Core Metrics: Synchronizer-level metrics automatically registered (Metrics type)
//  2. Service Registry: Extensible registration for adapter-specific metrics (MetricsRegistrar interface)
//  3. HTTP Server: Metrics endpoint with health checks (Server type)
//
// This separates infrastructure concerns (core metrics) from adapter
// concerns (store-specific metrics) while providing a unified endpoint for
// monitoring systems.
//
// # Basic Usage
//
// Setting up metrics collection and the HTTP server:
//
//	registry := metric.NewMetricsRegistry()
//	securityCfg := security.Config{}
//	server := metric.NewServer(9090, "/metrics", registry, securityCfg)
//
//	go func() {
//	    if err := server.Start(); err != nil {
//	        log.Printf("Metrics server error: %v", err)
//	    }
//	}()
//
//	// Record core synchronizer metrics
//	coreMetrics := registry.CoreMetrics()
//	coreMetrics.RecordSyncPass("notify", "ok")
//	coreMetrics.RecordFragmentWrite("written")
//	coreMetrics.RecordStoreStatus(true)
//
// The server exposes Prometheus-formatted metrics at
// http://localhost:9090/metrics and a health check at
// http://localhost:9090/healthz.
//
// # Core Metrics
//
// The package automatically registers core metrics tracking:
//
//   - Sync passes: sync_passes_total{trigger,status}, sync_pass_duration_seconds{trigger}
//   - Fragment writes: sync_fragment_writes_total{status}
//   - Publishes: sync_publishes_total{status}
//   - Subscription flow: sync_notifications_received_total, sync_notifications_coalesced_total
//   - Store connectivity: store_connected, store_reconnects_total
//
// All core metrics use the namespace "confsync":
//   - confsync_sync_passes_total{trigger="notify",status="ok"}
//   - confsync_store_connected
//
// # Adapter-Specific Metrics
//
// Store adapters can register custom metrics through the registry:
//
//	fetches := prometheus.NewCounter(prometheus.CounterOpts{
//	    Name: "nacos_fetches_total",
//	    Help: "Total number of composite fetches",
//	})
//	err := registry.RegisterCounter("nacos-store", "nacos_fetches_total", fetches)
//
// Adapters implement against the MetricsRegistrar interface for dependency
// injection and testable registration.
//
// # Thread Safety
//
// All registry operations are thread-safe:
//   - Registration methods use mutex protection
//   - Metric recording is lock-free (Prometheus guarantee)
//   - CoreMetrics() returns a thread-safe shared instance
//
// # Error Handling
//
// Registration methods return errors for duplicate registrations and
// prometheus-level conflicts (classified invalid), and for internal
// registration failures (classified fatal). Server.Start returns an error
// when the server is already running, the registry is nil, or the listener
// cannot be established; a Stop-initiated shutdown is not an error.
package metric
