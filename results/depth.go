package results

import (
	"github.com/chewxy/math32"
	"github.com/pkg/errors"
	"gorgonia.org/tensor"
)

// DepthMap holds a dense per-pixel depth estimate at model output resolution,
// together with summary statistics computed once at construction.
type DepthMap struct {
	// Grid is an HxW float32 tensor of relative depth values.
	Grid *tensor.Dense
	Min  float32
	Max  float32
	Mean float32
}

// NewDepthMap wraps a flat row-major depth buffer as an HxW tensor and
// computes its min/max/mean. The buffer is owned by the returned DepthMap;
// callers must not reuse it.
//
// Arguments:
//   - values: Row-major depth values, len must equal height*width.
//   - height: Grid height in cells.
//   - width: Grid width in cells.
//
// Returns:
//   - *DepthMap: The constructed depth map.
//   - error: Shape mismatch between values and height*width.
func NewDepthMap(values []float32, height, width int) (*DepthMap, error) {
	if height <= 0 || width <= 0 {
		return nil, errors.Errorf("invalid depth grid shape %dx%d", height, width)
	}
	if len(values) != height*width {
		return nil, errors.Errorf(
			"depth buffer holds %d values, shape %dx%d needs %d",
			len(values), height, width, height*width,
		)
	}

	minV := math32.Inf(1)
	maxV := math32.Inf(-1)
	sum := float32(0)
	for _, v := range values {
		minV = math32.Min(minV, v)
		maxV = math32.Max(maxV, v)
		sum += v
	}

	grid := tensor.New(tensor.WithShape(height, width), tensor.WithBacking(values))
	return &DepthMap{
		Grid: grid,
		Min:  minV,
		Max:  maxV,
		Mean: sum / float32(len(values)),
	}, nil
}

// At returns the depth value at row y, column x.
func (d *DepthMap) At(y, x int) (float32, error) {
	v, err := d.Grid.At(y, x)
	if err != nil {
		return 0, errors.Wrap(err, "reading depth grid")
	}
	return v.(float32), nil
}

// Size returns the grid dimensions as (height, width).
func (d *DepthMap) Size() (int, int) {
	shape := d.Grid.Shape()
	return shape[0], shape[1]
}
