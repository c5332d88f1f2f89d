package frames

import (
	"time"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// FromMat copies a BGR capture Mat into an immutable Frame. The copy matters:
// capture loops reuse their Mat buffer between reads, while a Frame may still
// be borrowed by in-flight inferences several ticks later.
//
// Arguments:
//   - id: Monotonically increasing frame ID assigned by the capture loop.
//   - mat: The BGR Mat read from the capture device.
//
// Returns:
//   - Frame: The immutable frame snapshot.
//   - error: Conversion failure, e.g. an empty Mat.
func FromMat(id uint64, mat gocv.Mat) (Frame, error) {
	if mat.Empty() {
		return Frame{}, errors.New("cannot build frame from empty mat")
	}

	img, err := mat.ToImage()
	if err != nil {
		return Frame{}, errors.Wrap(err, "converting mat to image")
	}

	return New(id, img, time.Now()), nil
}
