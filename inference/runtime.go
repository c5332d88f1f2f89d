// Package inference - Opaque model runtime the detector adapters run on.
package inference

import (
	"context"
	"os"

	"github.com/pkg/errors"
)

// ModelRef identifies one loadable model and the tensor shapes it exchanges.
type ModelRef struct {
	// Name is a short identifier used in logs.
	Name string `json:"name" yaml:"name"`
	// Path is the model file on disk.
	Path string `json:"path" yaml:"path"`
	// InputName and OutputName are the bound tensor names.
	InputName  string `json:"input_name" yaml:"input_name"`
	OutputName string `json:"output_name" yaml:"output_name"`
	// InputShape and OutputShape are the fixed tensor shapes, e.g.
	// {1,3,640,640} and {1,84,8400}.
	InputShape  []int64 `json:"input_shape" yaml:"input_shape"`
	OutputShape []int64 `json:"output_shape" yaml:"output_shape"`
}

// Validate checks the reference is loadable before touching the runtime.
func (r ModelRef) Validate() error {
	if r.Path == "" {
		return errors.New("model path is required")
	}
	if _, err := os.Stat(r.Path); err != nil {
		return errors.Wrapf(err, "model file %s", r.Path)
	}
	if len(r.InputShape) == 0 || len(r.OutputShape) == 0 {
		return errors.Errorf("model %s: input and output shapes are required", r.Name)
	}
	return nil
}

// elementCount multiplies out a tensor shape.
func elementCount(shape []int64) int64 {
	n := int64(1)
	for _, d := range shape {
		n *= d
	}
	return n
}

// Model is one loaded model. Run executes a single inference; it cannot be
// preempted mid-computation, so cancellation is only honored between calls.
type Model interface {
	Run(ctx context.Context, input []float32) ([]float32, error)
	Close() error
}

// Runtime loads models. The scheduler core treats it as an opaque
// asynchronous function with a failure mode.
type Runtime interface {
	Load(ctx context.Context, ref ModelRef) (Model, error)
}
