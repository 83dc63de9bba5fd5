package health

import "time"

func newStatus(component, state, message string) Status {
	return Status{
		Component: component,
		Healthy:   state == "healthy",
		Status:    state,
		Message:   message,
		Timestamp: time.Now(),
	}
}

// NewHealthy builds a healthy status for a component.
func NewHealthy(component, message string) Status {
	return newStatus(component, "healthy", message)
}

// NewUnhealthy builds an unhealthy status for a component.
func NewUnhealthy(component, message string) Status {
	return newStatus(component, "unhealthy", message)
}

// NewDegraded builds a degraded status. Degraded means the component still
// works but not cleanly, like a pass that wrote some fragments and failed
// others.
func NewDegraded(component, message string) Status {
	return newStatus(component, "degraded", message)
}

// Aggregate rolls component statuses up into one system status. Any
// unhealthy component makes the system unhealthy; otherwise any degraded
// component makes it degraded. The inputs are copied into SubStatuses.
func Aggregate(component string, subStatuses []Status) Status {
	if len(subStatuses) == 0 {
		return NewHealthy(component, "no components registered")
	}

	worst := "healthy"
	for _, sub := range subStatuses {
		if sub.IsUnhealthy() {
			worst = "unhealthy"
			break
		}
		if sub.IsDegraded() {
			worst = "degraded"
		}
	}

	var status Status
	switch worst {
	case "unhealthy":
		status = NewUnhealthy(component, "at least one component is unhealthy")
	case "degraded":
		status = NewDegraded(component, "at least one component is degraded")
	default:
		status = NewHealthy(component, "all components healthy")
	}

	status.SubStatuses = make([]Status, len(subStatuses))
	copy(status.SubStatuses, subStatuses)
	return status
}
