package health

import (
	"encoding/json"
	"net/http"
)

// Handler serves the monitor's aggregate status as JSON. Unhealthy systems
// answer 503 so load-balancer probes need no body parsing; degraded systems
// stay 200 because the synchronizer keeps working through partial passes.
func Handler(m *Monitor, systemName string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		status := m.AggregateHealth(systemName)

		w.Header().Set("Content-Type", "application/json")
		if status.IsUnhealthy() {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		if err := json.NewEncoder(w).Encode(status); err != nil {
			http.Error(w, "encode health status", http.StatusInternalServerError)
		}
	})
}
