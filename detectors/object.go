package detectors

import (
	"context"

	"github.com/inboxy/policamera-sub001/frames"
	"github.com/inboxy/policamera-sub001/inference"
	"github.com/inboxy/policamera-sub001/postprocess"
	"github.com/inboxy/policamera-sub001/preprocess"
	"github.com/inboxy/policamera-sub001/results"
)

// ObjectDetector runs a YOLO-family model producing class-labeled bounding
// boxes over the full COCO label set.
type ObjectDetector struct {
	base
	labels      []string
	inputSize   int
	predictions int
	params      postprocess.Params
}

// ObjectConfig configures an ObjectDetector.
type ObjectConfig struct {
	Model inference.ModelRef `json:"model" yaml:"model"`
	// InputSize is the square model input, default 640.
	InputSize int `json:"input_size" yaml:"input_size"`
	// Predictions is the grid's prediction count, default 8400.
	Predictions int `json:"predictions" yaml:"predictions"`
	// Postprocess holds decode and NMS thresholds; zero value takes the
	// package defaults.
	Postprocess postprocess.Params `json:"postprocess" yaml:"postprocess"`
	// Labels overrides the class table, default COCOLabels.
	Labels []string `json:"labels" yaml:"labels"`
}

// NewObjectDetector builds the adapter; the model is not loaded until
// Initialize.
func NewObjectDetector(name string, runtime inference.Runtime, cfg ObjectConfig) *ObjectDetector {
	if cfg.InputSize == 0 {
		cfg.InputSize = 640
	}
	if cfg.Predictions == 0 {
		cfg.Predictions = 8400
	}
	if cfg.Postprocess == (postprocess.Params{}) {
		cfg.Postprocess = postprocess.DefaultParams()
	}
	if cfg.Labels == nil {
		cfg.Labels = COCOLabels
	}
	return &ObjectDetector{
		base:        newBase(name, results.KindBoxes, runtime, cfg.Model),
		labels:      cfg.Labels,
		inputSize:   cfg.InputSize,
		predictions: cfg.Predictions,
		params:      cfg.Postprocess,
	}
}

// Infer runs one detection pass and decodes the output grid into labeled
// boxes in original-frame coordinates.
func (d *ObjectDetector) Infer(ctx context.Context, frame frames.Frame) (*results.Result, error) {
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
		raw, d.labels, d.predictions, d.inputSize, frame.Width, frame.Height, d.params,
	)
	if err != nil {
		return nil, err
	}

	res := results.Result{Kind: results.KindBoxes, Boxes: boxes}.Stamp(frame.CapturedAt)
	return &res, nil
}
