// Package lifecycle - Scoped release of transient per-inference resources.
package lifecycle

import (
	"log"
	"sync"
)

// Guard collects the transient buffers one inference call allocates and
// releases them all exactly once, in LIFO order, when Close is called —
// typically via defer, so release happens on every exit path. A release
// function that fails or panics is logged and skipped; disposal problems
// never propagate to the caller and never block later releases.
type Guard struct {
	mu       sync.Mutex
	releases []release
	closed   bool
}

type release struct {
	name string
	fn   func() error
}

// NewGuard returns an empty guard.
func NewGuard() *Guard {
	return &Guard{}
}

// Track registers a release function for a resource the caller just
// acquired. Tracking after Close releases the resource immediately, so a
// racing late acquisition cannot leak.
func (g *Guard) Track(name string, fn func() error) {
	if fn == nil {
		return
	}
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		runRelease(release{name: name, fn: fn})
		return
	}
	g.releases = append(g.releases, release{name: name, fn: fn})
	g.mu.Unlock()
}

// Close releases every tracked resource in reverse acquisition order.
// Idempotent: a second Close is a no-op.
func (g *Guard) Close() {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return
	}
	g.closed = true
	releases := g.releases
	g.releases = nil
	g.mu.Unlock()

	for i := len(releases) - 1; i >= 0; i-- {
		runRelease(releases[i])
	}
}

func runRelease(r release) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("lifecycle: panic releasing %s: %v", r.name, rec)
		}
	}()
	if err := r.fn(); err != nil {
		log.Printf("lifecycle: failed to release %s: %v", r.name, err)
	}
}
