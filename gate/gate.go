// Package gate - Per-detector enable/disable state machine governing
// scheduler dispatch eligibility.
package gate

import (
	"log"
	"sync"
	"time"

	"github.com/pkg/errors"
)

// State is a feature gate state.
type State string

const (
	// Disabled means the detector is off and may be enabled.
	Disabled State = "disabled"
	// Enabling means initialization is in progress.
	Enabling State = "enabling"
	// Enabled means the scheduler may dispatch the detector.
	Enabled State = "enabled"
	// Disabling means a disable request is being committed.
	Disabling State = "disabling"
	// Error means initialization or a runtime fault stopped the detector;
	// it stays blocked until explicitly re-enabled.
	Error State = "error"
)

// HistoryCapacity bounds the transition ring buffer.
const HistoryCapacity = 50

// Transition is one accepted state change, recorded for diagnostics.
type Transition struct {
	From   State
	To     State
	Reason string
	At     time.Time
}

// Listener receives accepted transitions. Notification is one-way: the gate
// never waits on a listener's behalf beyond the synchronous call itself, and
// listeners must not call back into the gate.
type Listener func(name string, tr Transition)

// legal maps each state to the states it may move to.
var legal = map[State][]State{
	Disabled:  {Enabling},
	Enabling:  {Enabled, Disabling, Error},
	Enabled:   {Disabling, Error},
	Disabling: {Disabled},
	Error:     {Enabling},
}

// Gate is the state machine for one detector. Safe for concurrent use.
type Gate struct {
	name string

	mu        sync.Mutex
	state     State
	history   []Transition
	historyAt int
	full      bool
	listeners []Listener
}

// New returns a gate in the Disabled state.
func New(name string) *Gate {
	return &Gate{
		name:    name,
		state:   Disabled,
		history: make([]Transition, HistoryCapacity),
	}
}

// State returns the current state.
func (g *Gate) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Transition requests a move to the given state. Illegal moves are rejected
// with an error and logged; the gate state is unchanged. Accepted moves are
// appended to the history ring and broadcast to listeners after the lock is
// released.
func (g *Gate) Transition(to State, reason string) error {
	g.mu.Lock()
	from := g.state
	if !allowed(from, to) {
		g.mu.Unlock()
		log.Printf("gate %s: rejected transition %s -> %s (%s)", g.name, from, to, reason)
		return errors.Errorf("gate %s: illegal transition %s -> %s", g.name, from, to)
	}

	tr := Transition{From: from, To: to, Reason: reason, At: time.Now()}
	g.state = to
	g.history[g.historyAt] = tr
	g.historyAt++
	if g.historyAt == HistoryCapacity {
		g.historyAt = 0
		g.full = true
	}
	listeners := make([]Listener, len(g.listeners))
	copy(listeners, g.listeners)
	g.mu.Unlock()

	for _, l := range listeners {
		l(g.name, tr)
	}
	return nil
}

// Subscribe registers a listener for future accepted transitions.
func (g *Gate) Subscribe(l Listener) {
	if l == nil {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.listeners = append(g.listeners, l)
}

// History returns the recorded transitions, oldest first, at most
// HistoryCapacity entries.
func (g *Gate) History() []Transition {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.full {
		out := make([]Transition, g.historyAt)
		copy(out, g.history[:g.historyAt])
		return out
	}
	out := make([]Transition, 0, HistoryCapacity)
	out = append(out, g.history[g.historyAt:]...)
	out = append(out, g.history[:g.historyAt]...)
	return out
}

func allowed(from, to State) bool {
	for _, s := range legal[from] {
		if s == to {
			return true
		}
	}
	return false
}
