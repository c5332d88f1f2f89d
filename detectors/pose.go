package detectors

import (
	"context"

	"github.com/chewxy/math32"
	"github.com/pkg/errors"

	"github.com/inboxy/policamera-sub001/frames"
	"github.com/inboxy/policamera-sub001/images"
	"github.com/inboxy/policamera-sub001/inference"
	"github.com/inboxy/policamera-sub001/preprocess"
	"github.com/inboxy/policamera-sub001/results"
)

// PoseDetector runs a YOLO-pose model and reports the 17 COCO keypoints of
// the highest-confidence person in the frame.
type PoseDetector struct {
	base
	inputSize     int
	predictions   int
	confThreshold float32
}

// PoseConfig configures a PoseDetector.
type PoseConfig struct {
	Model inference.ModelRef `json:"model" yaml:"model"`
	// InputSize is the square model input, default 640.
	InputSize int `json:"input_size" yaml:"input_size"`
	// Predictions is the grid's prediction count, default 8400.
	Predictions int `json:"predictions" yaml:"predictions"`
	// ConfThreshold is the minimum person score, default 0.45.
	ConfThreshold float32 `json:"conf_threshold" yaml:"conf_threshold"`
}

// NewPoseDetector builds the adapter; the model is not loaded until
// Initialize.
func NewPoseDetector(name string, runtime inference.Runtime, cfg PoseConfig) *PoseDetector {
	if cfg.InputSize == 0 {
		cfg.InputSize = 640
	}
	if cfg.Predictions == 0 {
		cfg.Predictions = 8400
	}
	if cfg.ConfThreshold == 0 {
		cfg.ConfThreshold = 0.45
	}
	return &PoseDetector{
		base:          newBase(name, results.KindKeypoints, runtime, cfg.Model),
		inputSize:     cfg.InputSize,
		predictions:   cfg.Predictions,
		confThreshold: cfg.ConfThreshold,
	}
}

// Infer runs one pose pass. A frame with no person above the confidence
// threshold yields an empty keypoint list, not an error.
func (d *PoseDetector) Infer(ctx context.Context, frame frames.Frame) (*results.Result, error) {
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

	keypoints, err := d.decode(raw, frame)
	if err != nil {
		return nil, err
	}

	res := results.Result{Kind: results.KindKeypoints, Keypoints: keypoints}.Stamp(frame.CapturedAt)
	return &res, nil
}

// decode reads a pose output grid laid out attribute-major as
// (4 box + 1 score + 17*3 keypoint) x predictions, picks the strongest
// person, and maps its keypoints back to original-frame coordinates.
func (d *PoseDetector) decode(raw []float32, frame frames.Frame) ([]results.Keypoint, error) {
	attrs := 5 + len(COCOKeypointNames)*3
	if len(raw) != attrs*d.predictions {
		return nil, errors.Errorf(
			"pose output holds %d values, grid (%d attrs x %d predictions) needs %d",
			len(raw), attrs, d.predictions, attrs*d.predictions,
		)
	}

	best := -1
	bestScore := d.confThreshold
	for i := 0; i < d.predictions; i++ {
		if s := raw[4*d.predictions+i]; s >= bestScore {
			bestScore = s
			best = i
		}
	}
	if best < 0 {
		return nil, nil
	}

	scale := images.LetterboxScale(d.inputSize, frame.Width, frame.Height)
	keypoints := make([]results.Keypoint, 0, len(COCOKeypointNames))
	for j, name := range COCOKeypointNames {
		x := raw[(5+j*3)*d.predictions+best] / scale
		y := raw[(5+j*3+1)*d.predictions+best] / scale
		keypoints = append(keypoints, results.Keypoint{
			Name:       name,
			X:          math32.Min(math32.Max(x, 0), float32(frame.Width)),
			Y:          math32.Min(math32.Max(y, 0), float32(frame.Height)),
			Confidence: raw[(5+j*3+2)*d.predictions+best],
		})
	}
	return keypoints, nil
}
