package metrics_test

import (
	"testing"
	"time"

	"fenrir/internal/metrics"

	"github.com/stretchr/testify/assert"
)

func TestLatencyRecorder_RecordAndSnapshot(t *testing.T) {
	r := metrics.NewLatencyRecorder()

	r.Record("order", 10*time.Microsecond)
	r.Record("order", 20*time.Microsecond)
	r.Record("order", 30*time.Microsecond)

	snap := r.Snapshot("order")
	assert.EqualValues(t, 3, snap.Count)
	assert.Greater(t, snap.P99, int64(0))
}

func TestLatencyRecorder_UnknownOpIsZeroValue(t *testing.T) {
	r := metrics.NewLatencyRecorder()
	assert.Equal(t, metrics.Snapshot{}, r.Snapshot("never-recorded"))
}

func TestObserve_RecordsAndReturnsResult(t *testing.T) {
	r := metrics.NewLatencyRecorder()
	result := metrics.Observe(r, "noop", func() int {
		time.Sleep(time.Millisecond)
		return 42
	})
	assert.Equal(t, 42, result)
	assert.EqualValues(t, 1, r.Snapshot("noop").Count)
}
