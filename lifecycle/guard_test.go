package lifecycle

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestGuardReleasesLIFO(t *testing.T) {
	g := NewGuard()
	var order []string

	g.Track("input", func() error { order = append(order, "input"); return nil })
	g.Track("output", func() error { order = append(order, "output"); return nil })
	g.Track("scratch", func() error { order = append(order, "scratch"); return nil })

	g.Close()

	assert.Equal(t, []string{"scratch", "output", "input"}, order)
}

func TestGuardCloseIsIdempotent(t *testing.T) {
	g := NewGuard()
	count := 0
	g.Track("buf", func() error { count++; return nil })

	g.Close()
	g.Close()

	assert.Equal(t, 1, count)
}

func TestGuardReleasesOnEveryPath(t *testing.T) {
	released := false

	func() {
		g := NewGuard()
		defer g.Close()
		g.Track("buf", func() error { released = true; return nil })

		defer func() { _ = recover() }()
		panic("inference blew up")
	}()

	assert.True(t, released)
}

func TestGuardSwallowsReleaseFailures(t *testing.T) {
	g := NewGuard()
	var order []string

	g.Track("first", func() error { order = append(order, "first"); return nil })
	g.Track("failing", func() error { return errors.New("device busy") })
	g.Track("panicking", func() error { panic("double free") })

	// Must not panic, and must still release the remaining resource.
	g.Close()

	assert.Equal(t, []string{"first"}, order)
}

func TestGuardTrackAfterCloseReleasesImmediately(t *testing.T) {
	g := NewGuard()
	g.Close()

	released := false
	g.Track("late", func() error { released = true; return nil })

	assert.True(t, released)
}
