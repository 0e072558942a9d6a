package observability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMetricsSnapshot(t *testing.T) {
	m := NewMetrics()
	m.RecordRequest("/api/recipes/", "GET", 200, 10*time.Millisecond)
	m.RecordRequest("/api/recipes/", "GET", 200, 30*time.Millisecond)
	m.RecordError("/api/recipes/", "GET", "NOT_FOUND")

	snap := m.Snapshot()
	assert.Equal(t, int64(2), snap.Requests["/api/recipes/|GET|200"])
	assert.Equal(t, int64(20), snap.AvgLatencyMilli["/api/recipes/|GET|200"])
	assert.Equal(t, int64(1), snap.Errors["/api/recipes/|GET|NOT_FOUND"])
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.RecordRequest("/", "GET", 200, time.Millisecond)
	m.RecordError("/", "GET", "X")
	assert.Empty(t, m.Snapshot().Requests)
}
