package inference

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	ort "github.com/yalue/onnxruntime_go"

	"github.com/inboxy/policamera-sub001/lifecycle"
)

var (
	ortInitOnce sync.Once
	ortInitErr  error
)

// ensureEnvironment initializes the process-wide ONNX Runtime environment
// exactly once.
func ensureEnvironment() error {
	ortInitOnce.Do(func() {
		ortInitErr = ort.InitializeEnvironment()
	})
	return errors.Wrap(ortInitErr, "initializing onnxruntime environment")
}

// ONNXRuntime loads models through ONNX Runtime sessions.
type ONNXRuntime struct{}

// NewONNXRuntime returns a runtime backed by ONNX Runtime. The shared
// environment is initialized lazily on first Load.
func NewONNXRuntime() *ONNXRuntime {
	return &ONNXRuntime{}
}

// Load creates a dynamic session for the referenced model.
//
// Arguments:
//   - ctx: Honored before the (blocking, non-preemptible) session creation.
//   - ref: The model reference; validated before the runtime is touched.
//
// Returns:
//   - Model: The loaded model.
//   - error: Validation, environment, or session creation failure.
func (r *ONNXRuntime) Load(ctx context.Context, ref ModelRef) (Model, error) {
	if err := ref.Validate(); err != nil {
		return nil, err
	}
	if err := ensureEnvironment(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrapf(err, "loading model %s", ref.Name)
	}

	session, err := ort.NewDynamicAdvancedSession(
		ref.Path,
		[]string{ref.InputName},
		[]string{ref.OutputName},
		nil,
	)
	if err != nil {
		return nil, errors.Wrapf(err, "creating session for model %s", ref.Name)
	}

	return &onnxModel{ref: ref, session: session}, nil
}

// onnxModel wraps one dynamic session. Input and output tensors are
// transient per call and released through a lifecycle guard, so a failing
// Run never leaks native memory.
type onnxModel struct {
	mu      sync.Mutex
	ref     ModelRef
	session *ort.DynamicAdvancedSession
}

func (m *onnxModel) Run(ctx context.Context, input []float32) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrapf(err, "running model %s", m.ref.Name)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil {
		return nil, errors.Errorf("model %s is closed", m.ref.Name)
	}

	if want := elementCount(m.ref.InputShape); int64(len(input)) != want {
		return nil, errors.Errorf(
			"model %s: input holds %d floats, shape needs %d",
			m.ref.Name, len(input), want,
		)
	}

	guard := lifecycle.NewGuard()
	defer guard.Close()

	inputTensor, err := ort.NewTensor(ort.NewShape(m.ref.InputShape...), input)
	if err != nil {
		return nil, errors.Wrapf(err, "creating input tensor for %s", m.ref.Name)
	}
	guard.Track("input tensor", inputTensor.Destroy)

	outputTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(m.ref.OutputShape...))
	if err != nil {
		return nil, errors.Wrapf(err, "creating output tensor for %s", m.ref.Name)
	}
	guard.Track("output tensor", outputTensor.Destroy)

	if err := m.session.Run(
		[]ort.Value{inputTensor},
		[]ort.Value{outputTensor},
	); err != nil {
		return nil, errors.Wrapf(err, "running model %s", m.ref.Name)
	}

	// Copy out before the guard destroys the backing tensor.
	data := outputTensor.GetData()
	out := make([]float32, len(data))
	copy(out, data)
	return out, nil
}

func (m *onnxModel) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil {
		return nil
	}
	err := m.session.Destroy()
	m.session = nil
	return errors.Wrapf(err, "destroying session for %s", m.ref.Name)
}
