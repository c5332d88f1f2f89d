package scheduler

import (
	"sync/atomic"
	"time"

	"github.com/inboxy/policamera-sub001/results"
)

// resultCache holds one detector's last-good result. The pointer is swapped
// atomically, so the renderer path reads a consistent snapshot without
// holding the scheduler lock. The cache starts empty and stays empty until
// the first successful completion; no zeroed default result is ever served.
type resultCache struct {
	current atomic.Pointer[results.Result]
}

// store supersedes the previous result.
func (c *resultCache) store(r *results.Result) {
	c.current.Store(r)
}

// load returns the cached result, or nil if none has completed yet.
func (c *resultCache) load() *results.Result {
	return c.current.Load()
}

// clear drops the cached result so a re-enabled detector starts without a
// stale overlay.
func (c *resultCache) clear() {
	c.current.Store(nil)
}

// snapshot wraps the cached result for the renderer, computing freshness
// against the current tick's frame timestamp. Returns false if the cache is
// empty.
func (c *resultCache) snapshot(name string, kind results.Kind, frameTS time.Time) (Snapshot, bool) {
	r := c.load()
	if r == nil {
		return Snapshot{}, false
	}
	return Snapshot{
		Detector:   name,
		Capability: kind,
		Result:     r,
		Fresh:      r.FrameTimestamp.Equal(frameTS),
	}, true
}
