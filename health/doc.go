// Package health tracks the liveness of the synchronizer's long-running
// parts and exposes an aggregate over HTTP.
//
// A Monitor holds one Status per named component (the syncer, the store
// client, the metrics server) and rolls them up: any unhealthy component
// makes the system unhealthy, otherwise any degraded component makes it
// degraded. Components update their own status on state changes:
//
//	monitor := health.NewMonitor()
//	monitor.UpdateHealthy("store", "connected")
//	monitor.Update("syncer", health.FromError("syncer", err))
//
// Handler serves the aggregate as JSON, intended for the metrics server's
// /healthz mount. Error text entering a Status through FromError is
// sanitized first (URLs, paths, addresses, and credential-shaped tokens are
// masked) because health output is commonly scraped and stored.
package health
