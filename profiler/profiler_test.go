package profiler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLatencyTrackerStats(t *testing.T) {
	tr := NewLatencyTracker()

	tr.Record("object", "d-1", 10*time.Millisecond)
	tr.Record("object", "d-2", 30*time.Millisecond)
	tr.Record("depth", "d-3", 100*time.Millisecond)

	snap := tr.Snapshot()
	require.Contains(t, snap, "object")
	require.Contains(t, snap, "depth")

	obj := snap["object"]
	assert.Equal(t, int64(2), obj.Count)
	assert.Equal(t, 10*time.Millisecond, obj.Min)
	assert.Equal(t, 30*time.Millisecond, obj.Max)
	assert.Equal(t, 20*time.Millisecond, obj.Mean)
	assert.Equal(t, 30*time.Millisecond, obj.Last)
	assert.Equal(t, "d-2", obj.LastID, "stats carry the dispatch behind the latest sample")
}

func TestLatencyTrackerEmptySnapshot(t *testing.T) {
	assert.Empty(t, NewLatencyTracker().Snapshot())
}
