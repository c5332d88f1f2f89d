// Package frames - Immutable capture-frame handles shared between the
// capture subsystem and detectors.
package frames

import (
	"image"
	"time"
)

// Frame is an immutable handle to one captured image. It is owned by the
// capture subsystem and borrowed read-only by detectors for the duration of
// a single inference call; nothing downstream may mutate it. CapturedAt
// carries Go's monotonic clock reading, so frame timestamps order correctly
// across wall-clock adjustments.
type Frame struct {
	ID         uint64
	Image      image.Image
	Width      int
	Height     int
	CapturedAt time.Time
}

// Source is the capture subsystem's interface to the scheduler: one current
// frame per tick. Implementations typically keep only the latest frame and
// drop the rest.
type Source interface {
	CurrentFrame() (Frame, error)
}

// New wraps an already-decoded image as a Frame stamped with the given
// capture time.
func New(id uint64, img image.Image, capturedAt time.Time) Frame {
	b := img.Bounds()
	return Frame{
		ID:         id,
		Image:      img,
		Width:      b.Dx(),
		Height:     b.Dy(),
		CapturedAt: capturedAt,
	}
}
