// Package detectors - Detector adapter contract and the perceptual model
// variants behind it.
package detectors

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"github.com/inboxy/policamera-sub001/frames"
	"github.com/inboxy/policamera-sub001/inference"
	"github.com/inboxy/policamera-sub001/results"
)

// Adapter is the uniform contract wrapping one perceptual model. The
// scheduler guarantees Infer is never invoked while a previous Infer for the
// same adapter is still in flight. Adapters borrow frames read-only and
// never mutate them.
type Adapter interface {
	// Name identifies the detector in the registry, logs, and results map.
	Name() string
	// Capability tags which Result payload this adapter produces.
	Capability() results.Kind
	// Initialize loads the underlying model. Idempotent; a call made while
	// another Initialize is outstanding waits for and returns the
	// outstanding result rather than double-loading.
	Initialize(ctx context.Context) error
	// Infer runs one inference against the frame. All transient buffers are
	// released before it returns, success or failure.
	Infer(ctx context.Context, frame frames.Frame) (*results.Result, error)
	// Dispose releases the loaded model; a fresh Initialize is required
	// afterwards.
	Dispose() error
}

// base carries the model lifecycle shared by every adapter variant:
// coalesced initialization, loaded-model access, and disposal.
type base struct {
	name    string
	kind    results.Kind
	runtime inference.Runtime
	ref     inference.ModelRef

	mu      sync.Mutex
	model   inference.Model
	pending chan struct{} // non-nil while an Initialize is outstanding
	lastErr error
}

func newBase(name string, kind results.Kind, runtime inference.Runtime, ref inference.ModelRef) base {
	return base{name: name, kind: kind, runtime: runtime, ref: ref}
}

func (b *base) Name() string {
	return b.name
}

func (b *base) Capability() results.Kind {
	return b.kind
}

// Initialize loads the model through the runtime. Concurrent callers
// coalesce onto one load; once loaded, further calls return nil immediately.
func (b *base) Initialize(ctx context.Context) error {
	b.mu.Lock()
	if b.model != nil {
		b.mu.Unlock()
		return nil
	}
	if b.pending != nil {
		done := b.pending
		b.mu.Unlock()
		<-done
		b.mu.Lock()
		defer b.mu.Unlock()
		if b.model != nil {
			return nil
		}
		return b.lastErr
	}
	done := make(chan struct{})
	b.pending = done
	b.mu.Unlock()

	model, err := b.runtime.Load(ctx, b.ref)

	b.mu.Lock()
	if err == nil {
		b.model = model
	}
	// Wrapf passes nil through, so success clears lastErr.
	b.lastErr = errors.Wrapf(err, "initializing detector %s", b.name)
	b.pending = nil
	close(done)
	b.mu.Unlock()
	return b.lastErr
}

// loaded returns the current model or an error if none is loaded.
func (b *base) loaded() (inference.Model, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.model == nil {
		return nil, errors.Errorf("detector %s is not initialized", b.name)
	}
	return b.model, nil
}

// Dispose releases the loaded model. Disposal of an uninitialized adapter is
// a no-op.
func (b *base) Dispose() error {
	b.mu.Lock()
	model := b.model
	b.model = nil
	b.mu.Unlock()

	if model == nil {
		return nil
	}
	return errors.Wrapf(model.Close(), "disposing detector %s", b.name)
}
