// Package postprocess - Decodes raw detector output grids into filtered,
// frame-space detections.
package postprocess

import (
	"sort"

	"github.com/chewxy/math32"
	"github.com/pkg/errors"

	"github.com/inboxy/policamera-sub001/images"
	"github.com/inboxy/policamera-sub001/results"
)

// Params configures box decoding and Non-Maximum Suppression.
type Params struct {
	// ConfThreshold is the minimum class score required for a prediction to
	// be considered at all.
	ConfThreshold float32 `json:"conf_threshold" yaml:"conf_threshold"`
	// IoUThreshold is the maximum allowed Intersection-over-Union between
	// two same-class boxes for both to survive NMS.
	IoUThreshold float32 `json:"iou_threshold" yaml:"iou_threshold"`
	// MaxResults caps the number of boxes returned after NMS. Zero means
	// unlimited.
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// DefaultParams returns thresholds tuned for COCO-trained detectors:
// confidence 0.45, IoU 0.45, at most 64 boxes.
func DefaultParams() Params {
	return Params{
		ConfThreshold: 0.45,
		IoUThreshold:  0.45,
		MaxResults:    64,
	}
}

// Candidate is one decoded prediction prior to labeling.
type Candidate struct {
	Class int
	Score float32
	Rect  images.Rect
}

// DecodeBoxes turns a raw attribute-major output grid into candidates in
// original-frame coordinates. The grid is laid out as (attributes,
// predictions): for prediction i, attribute a lives at raw[a*predictions+i].
// The first four attributes are box center-x, center-y, width, height in
// model-input space; the remaining numClasses attributes are per-class
// scores.
//
// For each prediction the maximum class score is taken; predictions below
// params.ConfThreshold are discarded. Surviving boxes are converted to
// corner format, mapped back to original-frame coordinates through the
// isotropic letterbox scale inputSize/max(origW, origH), and clamped to the
// frame.
//
// Arguments:
//   - raw: The flat output grid, len must be (4+numClasses)*predictions.
//   - numClasses: Number of class score attributes per prediction.
//   - predictions: Number of predictions in the grid.
//   - inputSize: Square model input size the grid coordinates live in.
//   - origW, origH: Original frame dimensions.
//   - params: Thresholds; only ConfThreshold is consulted here.
//
// Returns:
//   - []Candidate: Decoded candidates in grid iteration order.
//   - error: Grid shape mismatch.
func DecodeBoxes(
	raw []float32,
	numClasses, predictions, inputSize, origW, origH int,
	params Params,
) ([]Candidate, error) {
	attrs := 4 + numClasses
	if len(raw) != attrs*predictions {
		return nil, errors.Errorf(
			"raw output holds %d values, grid (%d attrs x %d predictions) needs %d",
			len(raw), attrs, predictions, attrs*predictions,
		)
	}

	scale := images.LetterboxScale(inputSize, origW, origH)
	candidates := make([]Candidate, 0, predictions/8)

	for i := 0; i < predictions; i++ {
		classID := 0
		score := math32.Inf(-1)
		for c := 0; c < numClasses; c++ {
			if s := raw[(4+c)*predictions+i]; s > score {
				score = s
				classID = c
			}
		}
		if score < params.ConfThreshold {
			continue
		}

		xc := raw[i]
		yc := raw[predictions+i]
		w := raw[2*predictions+i]
		h := raw[3*predictions+i]

		// Center format to corner format, then model-input space back to
		// original-frame space.
		rect := images.Rect{
			X1: int(math32.Round((xc - w/2) / scale)),
			Y1: int(math32.Round((yc - h/2) / scale)),
			X2: int(math32.Round((xc + w/2) / scale)),
			Y2: int(math32.Round((yc + h/2) / scale)),
		}
		candidates = append(candidates, Candidate{
			Class: classID,
			Score: score,
			Rect:  images.ClampRect(rect, origW, origH),
		})
	}

	return candidates, nil
}

// NMS applies greedy class-aware Non-Maximum Suppression. Candidates are
// stable-sorted by score descending, so equal-confidence candidates keep
// their grid iteration order and the whole pipeline stays deterministic.
// For each unsuppressed candidate, every later candidate of the same class
// whose IoU with it exceeds params.IoUThreshold is suppressed.
func NMS(candidates []Candidate, params Params) []Candidate {
	if len(candidates) == 0 {
		return nil
	}

	ordered := make([]Candidate, len(candidates))
	copy(ordered, candidates)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Score > ordered[j].Score
	})

	suppressed := make([]bool, len(ordered))
	kept := make([]Candidate, 0, len(ordered))

	for i, c := range ordered {
		if suppressed[i] {
			continue
		}
		kept = append(kept, c)
		if params.MaxResults > 0 && len(kept) >= params.MaxResults {
			break
		}
		for j := i + 1; j < len(ordered); j++ {
			if suppressed[j] || ordered[j].Class != c.Class {
				continue
			}
			if c.Rect.IoU(ordered[j].Rect) > params.IoUThreshold {
				suppressed[j] = true
			}
		}
	}

	return kept
}

// DetectObjects runs the full decode + NMS pipeline and labels the survivors,
// rounding scores to integer percentages.
//
// Arguments:
//   - raw: The flat attribute-major output grid.
//   - labels: Class index to label table; indices past its end are skipped.
//   - predictions, inputSize, origW, origH: Grid and frame geometry.
//   - params: Decode and suppression thresholds.
//
// Returns:
//   - []results.Box: Labeled detections in confidence order.
//   - error: Grid shape mismatch.
func DetectObjects(
	raw []float32,
	labels []string,
	predictions, inputSize, origW, origH int,
	params Params,
) ([]results.Box, error) {
	candidates, err := DecodeBoxes(raw, len(labels), predictions, inputSize, origW, origH, params)
	if err != nil {
		return nil, err
	}

	kept := NMS(candidates, params)
	boxes := make([]results.Box, 0, len(kept))
	for _, c := range kept {
		if c.Class >= len(labels) {
			continue
		}
		boxes = append(boxes, results.Box{
			Label:      labels[c.Class],
			Confidence: int(math32.Round(c.Score * 100)),
			Rect:       c.Rect,
		})
	}
	return boxes, nil
}
