package detectors

import (
	"context"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inboxy/policamera-sub001/inference"
)

// mockModel is a controllable inference.Model.
type mockModel struct {
	mu     sync.Mutex
	output []float32
	runErr error
	runs   int
	closed bool
}

func (m *mockModel) Run(ctx context.Context, input []float32) ([]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs++
	if m.runErr != nil {
		return nil, m.runErr
	}
	out := make([]float32, len(m.output))
	copy(out, m.output)
	return out, nil
}

func (m *mockModel) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// mockRuntime counts loads and can fail or block on demand.
type mockRuntime struct {
	mu      sync.Mutex
	model   *mockModel
	loadErr error
	loads   int
	release chan struct{} // when non-nil, Load blocks until closed
}

func (r *mockRuntime) Load(ctx context.Context, ref inference.ModelRef) (inference.Model, error) {
	r.mu.Lock()
	r.loads++
	release := r.release
	r.mu.Unlock()

	if release != nil {
		<-release
	}
	if r.loadErr != nil {
		return nil, r.loadErr
	}
	return r.model, nil
}

func (r *mockRuntime) loadCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loads
}

func TestInitializeIsIdempotent(t *testing.T) {
	rt := &mockRuntime{model: &mockModel{}}
	d := NewObjectDetector("object", rt, ObjectConfig{})

	require.NoError(t, d.Initialize(context.Background()))
	require.NoError(t, d.Initialize(context.Background()))

	assert.Equal(t, 1, rt.loadCount(), "second Initialize must not reload")
}

func TestInitializeCoalescesConcurrentCalls(t *testing.T) {
	rt := &mockRuntime{model: &mockModel{}, release: make(chan struct{})}
	d := NewObjectDetector("object", rt, ObjectConfig{})

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = d.Initialize(context.Background())
		}(i)
	}

	// Both callers are now either loading or waiting; release the load.
	close(rt.release)
	wg.Wait()

	assert.NoError(t, errs[0])
	assert.NoError(t, errs[1])
	assert.Equal(t, 1, rt.loadCount(), "concurrent Initialize calls must share one load")
}

func TestInitializeFailureIsRetryable(t *testing.T) {
	rt := &mockRuntime{model: &mockModel{}, loadErr: errors.New("runtime unavailable")}
	d := NewObjectDetector("object", rt, ObjectConfig{})

	err := d.Initialize(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "runtime unavailable")

	rt.loadErr = nil
	require.NoError(t, d.Initialize(context.Background()))
	assert.Equal(t, 2, rt.loadCount())
}

func TestInferBeforeInitializeFails(t *testing.T) {
	d := NewObjectDetector("object", &mockRuntime{model: &mockModel{}}, ObjectConfig{})

	_, err := d.Infer(context.Background(), testFrame(64, 48))
	assert.Error(t, err)
}

func TestDisposeRequiresFreshInitialize(t *testing.T) {
	model := &mockModel{}
	rt := &mockRuntime{model: model}
	d := NewObjectDetector("object", rt, ObjectConfig{})

	require.NoError(t, d.Initialize(context.Background()))
	require.NoError(t, d.Dispose())
	assert.True(t, model.closed)

	_, err := d.Infer(context.Background(), testFrame(64, 48))
	assert.Error(t, err)

	require.NoError(t, d.Initialize(context.Background()))
	assert.Equal(t, 2, rt.loadCount())
}

func TestDisposeWithoutInitializeIsNoOp(t *testing.T) {
	d := NewObjectDetector("object", &mockRuntime{model: &mockModel{}}, ObjectConfig{})
	assert.NoError(t, d.Dispose())
}
