package detectors

import (
	"context"

	"github.com/inboxy/policamera-sub001/frames"
	"github.com/inboxy/policamera-sub001/inference"
	"github.com/inboxy/policamera-sub001/postprocess"
	"github.com/inboxy/policamera-sub001/preprocess"
	"github.com/inboxy/policamera-sub001/results"
)

// faceLabels is the single-class table for face detection models.
var faceLabels = []string{"face"}

// FaceDetector runs a single-class face model. Output decoding is identical
// to the object detector with a one-entry class table.
type FaceDetector struct {
	base
	inputSize   int
	predictions int
	params      postprocess.Params
}

// FaceConfig configures a FaceDetector.
type FaceConfig struct {
	Model inference.ModelRef `json:"model" yaml:"model"`
	// InputSize is the square model input, default 640.
	InputSize int `json:"input_size" yaml:"input_size"`
	// Predictions is the grid's prediction count, default 8400.
	Predictions int `json:"predictions" yaml:"predictions"`
	// Postprocess holds decode and NMS thresholds; zero value takes the
	// package defaults.
	Postprocess postprocess.Params `json:"postprocess" yaml:"postprocess"`
}

// NewFaceDetector builds the adapter; the model is not loaded until
// Initialize.
func NewFaceDetector(name string, runtime inference.Runtime, cfg FaceConfig) *FaceDetector {
	if cfg.InputSize == 0 {
		cfg.InputSize = 640
	}
	if cfg.Predictions == 0 {
		cfg.Predictions = 8400
	}
	if cfg.Postprocess == (postprocess.Params{}) {
		cfg.Postprocess = postprocess.DefaultParams()
	}
	return &FaceDetector{
		base:        newBase(name, results.KindBoxes, runtime, cfg.Model),
		inputSize:   cfg.InputSize,
		predictions: cfg.Predictions,
		params:      cfg.Postprocess,
	}
}

// Infer runs one face detection pass.
func (d *FaceDetector) Infer(ctx context.Context, frame frames.Frame) (*results.Result, error) {
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

	boxes, err := postprocess.DetectObjects(
		raw, faceLabels, d.predictions, d.inputSize, frame.Width, frame.Height, d.params,
	)
	if err != nil {
		return nil, err
	}

	res := results.Result{Kind: results.KindBoxes, Boxes: boxes}.Stamp(frame.CapturedAt)
	return &res, nil
}
