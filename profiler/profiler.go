// Package profiler - Operation latency tracking for the perception pipeline.
package profiler

import (
	"sync"
	"time"
)

// LatencyTracker accumulates completion latencies per operation. It is
// thread-safe and cheap enough to sit on the inference completion path.
type LatencyTracker struct {
	mu  sync.RWMutex
	ops map[string]*opStats
}

type opStats struct {
	count  int64
	total  time.Duration
	min    time.Duration
	max    time.Duration
	last   time.Duration
	lastID string
}

// LatencyStats is a snapshot of one operation's accumulated timings.
type LatencyStats struct {
	Count int64
	Min   time.Duration
	Max   time.Duration
	Mean  time.Duration
	Last  time.Duration
	// LastID identifies the dispatch behind Last, correlating the stats
	// with per-dispatch log lines.
	LastID string
}

// NewLatencyTracker returns an empty tracker.
func NewLatencyTracker() *LatencyTracker {
	return &LatencyTracker{ops: make(map[string]*opStats)}
}

// Record adds one completed operation's duration, tagged with the dispatch
// ID that produced it.
func (t *LatencyTracker) Record(op, dispatchID string, d time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, ok := t.ops[op]
	if !ok {
		s = &opStats{min: d, max: d}
		t.ops[op] = s
	}
	s.count++
	s.total += d
	s.last = d
	s.lastID = dispatchID
	if d < s.min {
		s.min = d
	}
	if d > s.max {
		s.max = d
	}
}

// Snapshot returns the current statistics for every recorded operation.
func (t *LatencyTracker) Snapshot() map[string]LatencyStats {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make(map[string]LatencyStats, len(t.ops))
	for op, s := range t.ops {
		out[op] = LatencyStats{
			Count:  s.count,
			Min:    s.min,
			Max:    s.max,
			Mean:   time.Duration(int64(s.total) / s.count),
			Last:   s.last,
			LastID: s.lastID,
		}
	}
	return out
}
