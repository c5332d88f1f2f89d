package scheduler

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/inboxy/policamera-sub001/detectors"
	"github.com/inboxy/policamera-sub001/frames"
	"github.com/inboxy/policamera-sub001/gate"
	"github.com/inboxy/policamera-sub001/profiler"
)

// entry is one registered detector with its scheduling state. All mutable
// fields are owned by the scheduler mutex.
type entry struct {
	adapter  detectors.Adapter
	gate     *gate.Gate
	interval time.Duration

	busy         bool
	lastDispatch time.Time
	cache        resultCache
	// epoch advances on every disable. A dispatch captures the epoch it was
	// issued under and may only commit while it is unchanged, so a result
	// computed before a disable can never land after a quick re-enable.
	epoch uint64
}

// Scheduler drives every registered detector from a single rendering tick:
// it throttles each to its own target interval, skips detectors that are
// still busy (the frame is dropped for them, never queued), and serves the
// last cached result whenever a detector is skipped. Detectors run
// independently; a slow one degrades to its achievable rate without holding
// back the tick or the other detectors.
//
// Tick is intended to be called from the single render/tick goroutine.
// Completions commit from inference goroutines under the scheduler mutex,
// preserving the single-writer discipline on per-detector state.
type Scheduler struct {
	mu      sync.Mutex
	entries map[string]*entry
	tracker *profiler.LatencyTracker

	// clock is swapped in throttle tests.
	clock func() time.Time
}

// New returns an empty scheduler recording completion latencies into the
// given tracker. A nil tracker gets a private one.
func New(tracker *profiler.LatencyTracker) *Scheduler {
	if tracker == nil {
		tracker = profiler.NewLatencyTracker()
	}
	return &Scheduler{
		entries: make(map[string]*entry),
		tracker: tracker,
		clock:   time.Now,
	}
}

// Register adds a detector in the Disabled state. Names must be unique.
func (s *Scheduler) Register(adapter detectors.Adapter, cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return errors.Wrapf(err, "registering detector %s", adapter.Name())
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	name := adapter.Name()
	if _, exists := s.entries[name]; exists {
		return errors.Errorf("detector %s is already registered", name)
	}
	s.entries[name] = &entry{
		adapter:  adapter,
		gate:     gate.New(name),
		interval: cfg.interval(),
	}
	return nil
}

// SetEnabled requests an enable or disable of one detector. Enabling moves
// the gate to Enabling and kicks asynchronous initialization; Enabled (or
// Error, with the cause recorded) is committed by the init goroutine.
// Disabling commits immediately and clears the cache; an in-flight inference
// is not aborted, its result is discarded on completion. Requests that
// match the current direction (enabling an Enabling/Enabled detector,
// disabling a Disabled one) are no-ops.
func (s *Scheduler) SetEnabled(ctx context.Context, name string, enabled bool) error {
	e, err := s.entry(name)
	if err != nil {
		return err
	}

	if enabled {
		switch e.gate.State() {
		case gate.Enabling, gate.Enabled:
			return nil
		}
		if err := e.gate.Transition(gate.Enabling, "enable requested"); err != nil {
			return err
		}
		go s.initialize(ctx, e)
		return nil
	}

	switch e.gate.State() {
	case gate.Disabled, gate.Disabling:
		return nil
	}
	if err := e.gate.Transition(gate.Disabling, "disable requested"); err != nil {
		return err
	}
	if err := e.gate.Transition(gate.Disabled, "disable committed"); err != nil {
		return err
	}
	// Advance the epoch and clear the cache under the scheduler lock so a
	// concurrent commit either lands before (and is wiped by the clear) or
	// observes the new epoch and discards itself.
	s.mu.Lock()
	e.epoch++
	e.cache.clear()
	s.mu.Unlock()
	return nil
}

// initialize loads the adapter's model and commits the gate outcome.
func (s *Scheduler) initialize(ctx context.Context, e *entry) {
	name := e.adapter.Name()
	if err := e.adapter.Initialize(ctx); err != nil {
		log.Printf("scheduler: initializing %s: %v", name, err)
		if terr := e.gate.Transition(gate.Error, err.Error()); terr != nil {
			// The user disabled the detector while it was loading.
			log.Printf("scheduler: %v", terr)
		}
		return
	}
	if err := e.gate.Transition(gate.Enabled, "model loaded"); err != nil {
		// Disabled mid-load; the model stays resident for the next enable.
		log.Printf("scheduler: %v", err)
	}
}

// Tick runs one scheduling pass against the current frame and returns the
// renderer's view: for every Enabled detector with at least one completed
// result, the freshly computed or last cached result. Detectors that are
// not Enabled emit nothing. Tick never blocks on inference.
func (s *Scheduler) Tick(ctx context.Context, frame frames.Frame) map[string]Snapshot {
	out := make(map[string]Snapshot)

	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.clock()

	for name, e := range s.entries {
		if e.gate.State() != gate.Enabled {
			continue
		}

		if !e.busy && now.Sub(e.lastDispatch) >= e.interval {
			e.busy = true
			e.lastDispatch = now
			go s.run(ctx, e, frame, uuid.NewString(), e.epoch)
		}

		if snap, ok := e.cache.snapshot(name, e.adapter.Capability(), frame.CapturedAt); ok {
			out[name] = snap
		}
	}
	return out
}

// run executes one dispatched inference and commits its outcome. The commit
// requires the dispatch epoch to be unchanged: any disable since dispatch
// invalidates the result even if the detector was already re-enabled.
func (s *Scheduler) run(ctx context.Context, e *entry, frame frames.Frame, dispatchID string, epoch uint64) {
	name := e.adapter.Name()
	start := time.Now()
	res, err := e.adapter.Infer(ctx, frame)
	latency := time.Since(start)

	s.mu.Lock()
	e.busy = false
	if err != nil {
		s.mu.Unlock()
		// A single bad frame is never fatal: the previous result stays
		// authoritative and scheduling continues.
		log.Printf("scheduler: inference %s on %s failed: %v", dispatchID, name, err)
		return
	}
	if e.epoch != epoch || e.gate.State() != gate.Enabled {
		s.mu.Unlock()
		log.Printf("scheduler: discarding result %s: %s was disabled mid-flight", dispatchID, name)
		return
	}
	e.cache.store(res)
	s.mu.Unlock()

	s.tracker.Record(name, dispatchID, latency)
}

// Descriptor returns a read-only view of one detector's scheduling state.
func (s *Scheduler) Descriptor(name string) (Descriptor, error) {
	e, err := s.entry(name)
	if err != nil {
		return Descriptor{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return Descriptor{
		Name:           name,
		Capability:     e.adapter.Capability(),
		TargetInterval: e.interval,
		Busy:           e.busy,
		LastDispatch:   e.lastDispatch,
	}, nil
}

// State returns the gate state of one detector.
func (s *Scheduler) State(name string) (gate.State, error) {
	e, err := s.entry(name)
	if err != nil {
		return "", err
	}
	return e.gate.State(), nil
}

// Subscribe registers a transition listener on one detector's gate.
func (s *Scheduler) Subscribe(name string, l gate.Listener) error {
	e, err := s.entry(name)
	if err != nil {
		return err
	}
	e.gate.Subscribe(l)
	return nil
}

// History returns one detector's recorded gate transitions, oldest first.
func (s *Scheduler) History(name string) ([]gate.Transition, error) {
	e, err := s.entry(name)
	if err != nil {
		return nil, err
	}
	return e.gate.History(), nil
}

// Latencies returns per-detector completion latency statistics.
func (s *Scheduler) Latencies() map[string]profiler.LatencyStats {
	return s.tracker.Snapshot()
}

// Close disposes every registered adapter. Disposal failures are logged,
// not returned: shutdown proceeds regardless.
func (s *Scheduler) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for name, e := range s.entries {
		if err := e.adapter.Dispose(); err != nil {
			log.Printf("scheduler: disposing %s: %v", name, err)
		}
	}
}

func (s *Scheduler) entry(name string) (*entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[name]
	if !ok {
		return nil, errors.Errorf("unknown detector %s", name)
	}
	return e, nil
}
