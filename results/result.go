// Package results - Detection result types shared by all detector variants.
package results

import (
	"image"
	"time"

	"github.com/inboxy/policamera-sub001/images"
)

// Kind tags which capability produced a Result and which of its payload
// slices is populated.
type Kind string

const (
	// KindBoxes is the capability tag for bounding-box detectors.
	KindBoxes Kind = "boxes"
	// KindKeypoints is the capability tag for pose estimators.
	KindKeypoints Kind = "keypoints"
	// KindDepthMap is the capability tag for monocular depth estimators.
	KindDepthMap Kind = "depth-map"
	// KindText is the capability tag for text recognizers.
	KindText Kind = "text"
)

// Box is a single object detection in original-frame coordinates.
type Box struct {
	// Label is the predicted class label.
	Label string
	// Confidence is the class score as an integer percentage 0-100.
	Confidence int
	// Rect is the bounding box in original-frame coordinates.
	Rect images.Rect
}

// Keypoint is a single named body landmark from a pose estimator.
type Keypoint struct {
	Name       string
	X, Y       float32
	Confidence float32
}

// TextSpan is one recognized text region.
type TextSpan struct {
	Text       string
	Confidence float32
	// Quad is the bounding quadrilateral in original-frame coordinates,
	// clockwise from top-left.
	Quad [4]image.Point
}

// Result is the tagged union every detector variant produces. Exactly one
// payload field matching Kind is populated. A Result is immutable once
// produced; the scheduler supersedes it atomically with the next one.
type Result struct {
	Kind      Kind
	Boxes     []Box
	Keypoints []Keypoint
	Depth     *DepthMap
	Text      []TextSpan

	// FrameTimestamp is the capture timestamp of the frame this result was
	// computed from, not the time it completed.
	FrameTimestamp time.Time
	// CompletedAt is the wall-clock time inference finished.
	CompletedAt time.Time
}

// Stamp returns a copy of the result tagged with its source-frame capture
// time and a completion time of now.
func (r Result) Stamp(frameTimestamp time.Time) Result {
	r.FrameTimestamp = frameTimestamp
	r.CompletedAt = time.Now()
	return r
}
