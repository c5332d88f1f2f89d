package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inboxy/policamera-sub001/results"
)

func TestResultCacheStartsEmpty(t *testing.T) {
	var c resultCache
	assert.Nil(t, c.load())

	_, ok := c.snapshot("object", results.KindBoxes, time.Now())
	assert.False(t, ok, "an empty cache must emit nothing, not a zeroed result")
}

func TestResultCacheFreshness(t *testing.T) {
	var c resultCache
	frameTS := time.Now()
	res := results.Result{Kind: results.KindBoxes}.Stamp(frameTS)
	c.store(&res)

	snap, ok := c.snapshot("object", results.KindBoxes, frameTS)
	require.True(t, ok)
	assert.True(t, snap.Fresh)

	later, ok := c.snapshot("object", results.KindBoxes, frameTS.Add(16*time.Millisecond))
	require.True(t, ok)
	assert.False(t, later.Fresh)
}

func TestResultCacheClear(t *testing.T) {
	var c resultCache
	res := results.Result{Kind: results.KindBoxes}.Stamp(time.Now())
	c.store(&res)
	c.clear()

	assert.Nil(t, c.load())
}
