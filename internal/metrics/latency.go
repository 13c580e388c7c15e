// Package metrics records matching-engine latency distributions using
// HdrHistogram, the histogram library the retrieved matchingo
// reference engine (Altilar-Labs-matchingo/go.mod) already depends on
// for this exact purpose: capturing wide-dynamic-range, low-overhead
// latency samples off a hot path without the coordinated-omission
// problems a naive min/max/average accumulator has.
package metrics

import (
	"sync"
	"time"

	hdrhistogram "github.com/HdrHistogram/hdrhistogram-go"
)

const (
	lowestTrackable   = 1               // nanoseconds
	highestTrackable  = 10 * 1000000000 // 10 seconds, nanoseconds
	significantDigits = 3
)

// LatencyRecorder tracks the distribution of how long matcher
// operations take, keyed by operation name, safe for concurrent
// recording from multiple Matcher shards.
type LatencyRecorder struct {
	mu         sync.Mutex
	histograms map[string]*hdrhistogram.Histogram
}

// NewLatencyRecorder returns an empty recorder.
func NewLatencyRecorder() *LatencyRecorder {
	return &LatencyRecorder{histograms: make(map[string]*hdrhistogram.Histogram)}
}

func (r *LatencyRecorder) histogramFor(op string) *hdrhistogram.Histogram {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.histograms[op]
	if !ok {
		h = hdrhistogram.New(lowestTrackable, highestTrackable, significantDigits)
		r.histograms[op] = h
	}
	return h
}

// Record adds one latency sample for op.
func (r *LatencyRecorder) Record(op string, d time.Duration) {
	h := r.histogramFor(op)
	r.mu.Lock()
	defer r.mu.Unlock()
	_ = h.RecordValue(d.Nanoseconds())
}

// Observe times fn and records its duration under op, returning
// whatever fn returns. Intended for wrapping a single Matcher call:
// metrics.Observe(recorder, "cancel", func() error { return m.Cancel(...) }).
func Observe[T any](r *LatencyRecorder, op string, fn func() T) T {
	start := time.Now()
	result := fn()
	r.Record(op, time.Since(start))
	return result
}

// Snapshot is a point-in-time read of one operation's distribution.
type Snapshot struct {
	Count int64
	Mean  float64
	P50   int64
	P99   int64
	P999  int64
	Max   int64
}

// Snapshot returns the current distribution for op, or the zero value
// if no samples have been recorded for it.
func (r *LatencyRecorder) Snapshot(op string) Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.histograms[op]
	if !ok {
		return Snapshot{}
	}
	return Snapshot{
		Count: h.TotalCount(),
		Mean:  h.Mean(),
		P50:   h.ValueAtQuantile(50),
		P99:   h.ValueAtQuantile(99),
		P999:  h.ValueAtQuantile(99.9),
		Max:   h.Max(),
	}
}
