package health

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusConstructors(t *testing.T) {
	tests := []struct {
		name       string
		build      func() Status
		wantState  string
		wantHealth bool
	}{
		{"healthy", func() Status { return NewHealthy("syncer", "pass complete") }, "healthy", true},
		{"unhealthy", func() Status { return NewUnhealthy("store", "connection refused") }, "unhealthy", false},
		{"degraded", func() Status { return NewDegraded("syncer", "2 fragments failed") }, "degraded", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status := tt.build()
			assert.Equal(t, tt.wantState, status.Status)
			assert.Equal(t, tt.wantHealth, status.Healthy)
			assert.False(t, status.Timestamp.IsZero(), "constructor should stamp the status")
		})
	}
}

func TestAggregate(t *testing.T) {
	tests := []struct {
		name      string
		subs      []Status
		wantState string
	}{
		{
			name:      "no components",
			subs:      nil,
			wantState: "healthy",
		},
		{
			name: "all healthy",
			subs: []Status{
				NewHealthy("syncer", "ok"),
				NewHealthy("store", "ok"),
			},
			wantState: "healthy",
		},
		{
			name: "degraded component degrades the system",
			subs: []Status{
				NewHealthy("store", "ok"),
				NewDegraded("syncer", "partial pass"),
			},
			wantState: "degraded",
		},
		{
			name: "unhealthy component wins over degraded",
			subs: []Status{
				NewDegraded("syncer", "partial pass"),
				NewUnhealthy("store", "connection lost"),
			},
			wantState: "unhealthy",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			agg := Aggregate("confsync", tt.subs)
			assert.Equal(t, "confsync", agg.Component)
			assert.Equal(t, tt.wantState, agg.Status)
			assert.Len(t, agg.SubStatuses, len(tt.subs))
		})
	}
}

func TestAggregate_CopiesSubStatuses(t *testing.T) {
	subs := []Status{NewHealthy("syncer", "ok")}

	agg := Aggregate("confsync", subs)
	require.Len(t, agg.SubStatuses, 1)

	agg.SubStatuses[0].Component = "mutated"
	assert.Equal(t, "syncer", subs[0].Component,
		"mutating the aggregate must not touch the input")
}
