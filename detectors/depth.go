package detectors

import (
	"context"

	"github.com/pkg/errors"

	"github.com/inboxy/policamera-sub001/frames"
	"github.com/inboxy/policamera-sub001/inference"
	"github.com/inboxy/policamera-sub001/preprocess"
	"github.com/inboxy/policamera-sub001/results"
)

// DepthEstimator runs a monocular depth model (MiDaS-style) producing a
// dense relative-depth grid at model output resolution.
type DepthEstimator struct {
	base
	inputSize int
	outH      int
	outW      int
}

// DepthConfig configures a DepthEstimator.
type DepthConfig struct {
	Model inference.ModelRef `json:"model" yaml:"model"`
	// InputSize is the square model input, default 256.
	InputSize int `json:"input_size" yaml:"input_size"`
	// OutputHeight and OutputWidth give the depth grid shape; both default
	// to InputSize.
	OutputHeight int `json:"output_height" yaml:"output_height"`
	OutputWidth  int `json:"output_width" yaml:"output_width"`
}

// NewDepthEstimator builds the adapter; the model is not loaded until
// Initialize.
func NewDepthEstimator(name string, runtime inference.Runtime, cfg DepthConfig) *DepthEstimator {
	if cfg.InputSize == 0 {
		cfg.InputSize = 256
	}
	if cfg.OutputHeight == 0 {
		cfg.OutputHeight = cfg.InputSize
	}
	if cfg.OutputWidth == 0 {
		cfg.OutputWidth = cfg.InputSize
	}
	return &DepthEstimator{
		base:      newBase(name, results.KindDepthMap, runtime, cfg.Model),
		inputSize: cfg.InputSize,
		outH:      cfg.OutputHeight,
		outW:      cfg.OutputWidth,
	}
}

// Infer runs one depth pass and wraps the output grid with its min/max/mean
// statistics.
func (d *DepthEstimator) Infer(ctx context.Context, frame frames.Frame) (*results.Result, error) {
	model, err := d.loaded()
	if err != nil {
		return nil, err
	}

	input, err := preprocess.LetterboxInput(frame, d.inputSize)
	if err != nil {
		return nil, err
	}

	raw, err := model.Run(ctx, input)
	if err != nil {
		return nil, err
	}

	depth, err := results.NewDepthMap(raw, d.outH, d.outW)
	if err != nil {
		return nil, errors.Wrapf(err, "decoding depth output for %s", d.Name())
	}

	res := results.Result{Kind: results.KindDepthMap, Depth: depth}.Stamp(frame.CapturedAt)
	return &res, nil
}
