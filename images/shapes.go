// Package images - Geometry primitives shared by the detection pipeline.
package images

// Rect is a lightweight axis-aligned bounding box.
type Rect struct {
	// X2,Y2 are exclusive (like image.Rectangle).
	X1, Y1, X2, Y2 int
}

// Width returns the horizontal extent of the rectangle.
func (r Rect) Width() int {
	return r.X2 - r.X1
}

// Height returns the vertical extent of the rectangle.
func (r Rect) Height() int {
	return r.Y2 - r.Y1
}

// Area returns the rectangle's area, never negative.
func (r Rect) Area() int {
	w, h := r.Width(), r.Height()
	if w <= 0 || h <= 0 {
		return 0
	}
	return w * h
}

// IoU (Intersection over Union) measures the extent of overlap between two
// bounding boxes as intersection-area / union-area, yielding a value in
// [0.0, 1.0]. 1.0 means the boxes are identical, 0.0 means they are
// disjoint. A degenerate pair whose union area is zero is defined to have
// an IoU of zero.
//
// Arguments:
//   - o: The other rectangle to compare against.
//
// Returns:
//   - float32: The IoU score between the receiver and o.
func (r Rect) IoU(o Rect) float32 {
	ix1 := max(r.X1, o.X1)
	iy1 := max(r.Y1, o.Y1)
	ix2 := min(r.X2, o.X2)
	iy2 := min(r.Y2, o.Y2)

	iw, ih := ix2-ix1, iy2-iy1
	if iw <= 0 || ih <= 0 {
		return 0
	}
	intersection := iw * ih

	// Inclusion-exclusion: union = A + B - intersection.
	union := r.Area() + o.Area() - intersection
	if union <= 0 {
		return 0
	}
	return float32(intersection) / float32(union)
}

// LetterboxScale returns the single isotropic scale factor used when fitting
// an original frame into a square model input of the given size:
// inputSize / max(originalWidth, originalHeight). Dividing model-input
// coordinates by this factor maps them back to original-frame coordinates.
func LetterboxScale(inputSize, originalWidth, originalHeight int) float32 {
	longest := max(originalWidth, originalHeight)
	if longest <= 0 {
		return 1
	}
	return float32(inputSize) / float32(longest)
}

// ClampRect clamps rectangle coordinates to [0, width] x [0, height].
func ClampRect(r Rect, width, height int) Rect {
	return Rect{
		X1: clamp(r.X1, 0, width),
		Y1: clamp(r.Y1, 0, height),
		X2: clamp(r.X2, 0, width),
		Y2: clamp(r.Y2, 0, height),
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
