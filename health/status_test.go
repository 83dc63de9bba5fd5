package health

import (
	"errors"
	"testing"
)

func TestStatus_IsHealthy(t *testing.T) {
	tests := []struct {
		name   string
		status Status
		want   bool
	}{
		{
			name:   "healthy status returns true",
			status: Status{Status: "healthy"},
			want:   true,
		},
		{
			name:   "unhealthy status returns false",
			status: Status{Status: "unhealthy"},
			want:   false,
		},
		{
			name:   "degraded status returns false",
			status: Status{Status: "degraded"},
			want:   false,
		},
		{
			name:   "empty status returns false",
			status: Status{Status: ""},
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.status.IsHealthy(); got != tt.want {
				t.Errorf("Status.IsHealthy() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStatus_IsDegraded(t *testing.T) {
	tests := []struct {
		name   string
		status Status
		want   bool
	}{
		{
			name:   "degraded status returns true",
			status: Status{Status: "degraded"},
			want:   true,
		},
		{
			name:   "healthy status returns false",
			status: Status{Status: "healthy"},
			want:   false,
		},
		{
			name:   "unhealthy status returns false",
			status: Status{Status: "unhealthy"},
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.status.IsDegraded(); got != tt.want {
				t.Errorf("Status.IsDegraded() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStatus_IsUnhealthy(t *testing.T) {
	tests := []struct {
		name   string
		status Status
		want   bool
	}{
		{
			name:   "unhealthy status returns true",
			status: Status{Status: "unhealthy"},
			want:   true,
		},
		{
			name:   "healthy status returns false",
			status: Status{Status: "healthy"},
			want:   false,
		},
		{
			name:   "degraded status returns false",
			status: Status{Status: "degraded"},
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.status.IsUnhealthy(); got != tt.want {
				t.Errorf("Status.IsUnhealthy() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFromError(t *testing.T) {
	t.Run("nil error is healthy", func(t *testing.T) {
		result := FromError("syncer", nil)

		if !result.Healthy {
			t.Error("Expected healthy status for nil error")
		}
		if result.Component != "syncer" {
			t.Errorf("Expected component syncer, got %s", result.Component)
		}
		if result.Timestamp.IsZero() {
			t.Error("Expected timestamp to be set")
		}
	})

	t.Run("error is unhealthy", func(t *testing.T) {
		result := FromError("store", errors.New("connection refused"))

		if result.Healthy {
			t.Error("Expected unhealthy status for error")
		}
		if result.Status != "unhealthy" {
			t.Errorf("Expected status unhealthy, got %s", result.Status)
		}
		if result.Message != "connection refused" {
			t.Errorf("Unexpected message: %s", result.Message)
		}
	})

	t.Run("error message is sanitized", func(t *testing.T) {
		result := FromError("store", errors.New("cannot reach nats://10.0.0.1:4222"))

		if result.Message != "cannot reach [URL]" {
			t.Errorf("Expected sanitized message, got %s", result.Message)
		}
	})
}
