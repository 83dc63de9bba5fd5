package nacosclient

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cerrors "github.com/c360/confsync/errors"
)

func TestNew_RequiresAddress(t *testing.T) {
	tests := []struct {
		name string
		addr string
	}{
		{"empty", ""},
		{"whitespace", "   "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.addr)
			require.Error(t, err)
			assert.ErrorIs(t, err, cerrors.ErrMissingConfig)
		})
	}
}

func TestParseServers(t *testing.T) {
	tests := []struct {
		name    string
		addr    string
		want    int
		wantErr bool
	}{
		{"host with port", "10.0.0.1:8848", 1, false},
		{"host without port", "nacos.internal", 1, false},
		{"multiple servers", "10.0.0.1:8848,10.0.0.2:8849", 2, false},
		{"trailing comma", "10.0.0.1:8848,", 1, false},
		{"spaces around entries", " 10.0.0.1:8848 , 10.0.0.2:8848 ", 2, false},
		{"bad port", "10.0.0.1:notaport", 0, true},
		{"only commas", ",,", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			servers, err := parseServers(tt.addr)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, servers, tt.want)
		})
	}
}

func TestParseServers_DefaultPort(t *testing.T) {
	servers, err := parseServers("nacos.internal")
	require.NoError(t, err)
	require.Len(t, servers, 1)
	assert.Equal(t, "nacos.internal", servers[0].IpAddr)
	assert.Equal(t, uint64(DefaultPort), servers[0].Port)
}

func TestParseServers_ExplicitPort(t *testing.T) {
	servers, err := parseServers("10.1.2.3:9999")
	require.NoError(t, err)
	require.Len(t, servers, 1)
	assert.Equal(t, "10.1.2.3", servers[0].IpAddr)
	assert.Equal(t, uint64(9999), servers[0].Port)
}

type recordingStatus struct {
	connected []bool
}

func (r *recordingStatus) RecordStoreStatus(connected bool) {
	r.connected = append(r.connected, connected)
}

func TestWithMetrics_Option(t *testing.T) {
	rec := &recordingStatus{}

	c := &Client{metrics: nopRecorder{}}
	require.NoError(t, WithMetrics(rec)(c))
	assert.Same(t, rec, c.metrics)

	// nil is ignored; the previous recorder stays
	require.NoError(t, WithMetrics(nil)(c))
	assert.Same(t, rec, c.metrics)
}

func TestIsNotFound(t *testing.T) {
	assert.False(t, isNotFound(nil))
	assert.False(t, isNotFound(errors.New("connection refused")))
	assert.True(t, isNotFound(errors.New("config data not exist")))
	assert.True(t, isNotFound(errors.New("config not found")))
}
