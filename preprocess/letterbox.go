// Package preprocess - Converts captured frames into model input tensors.
package preprocess

import (
	"github.com/nfnt/resize"
	"github.com/pkg/errors"

	"github.com/inboxy/policamera-sub001/frames"
	"github.com/inboxy/policamera-sub001/images"
)

// padValue is the normalized gray used for letterbox padding (114/255, the
// conventional YOLO fill).
const padValue = float32(114) / 255

// LetterboxInput resizes a frame isotropically into a square inputSize
// buffer and returns it as CHW float32 in [0,1]. The image is anchored at
// the top-left and the remainder padded gray, so model-space coordinates map
// back to the frame by dividing by LetterboxScale alone, with no offset.
//
// Arguments:
//   - frame: The source frame; read-only.
//   - inputSize: Square model input size in pixels.
//
// Returns:
//   - []float32: CHW buffer of length 3*inputSize*inputSize.
//   - error: Degenerate frame dimensions.
func LetterboxInput(frame frames.Frame, inputSize int) ([]float32, error) {
	if frame.Width <= 0 || frame.Height <= 0 {
		return nil, errors.Errorf("degenerate frame %dx%d", frame.Width, frame.Height)
	}

	scale := images.LetterboxScale(inputSize, frame.Width, frame.Height)
	scaledW := int(float32(frame.Width) * scale)
	scaledH := int(float32(frame.Height) * scale)
	if scaledW < 1 {
		scaledW = 1
	}
	if scaledH < 1 {
		scaledH = 1
	}

	// Lanczos3 matches the quality/cost tradeoff used at capture resolution.
	scaled := resize.Resize(uint(scaledW), uint(scaledH), frame.Image, resize.Lanczos3)

	channelSize := inputSize * inputSize
	data := make([]float32, 3*channelSize)
	red := data[0:channelSize]
	green := data[channelSize : 2*channelSize]
	blue := data[2*channelSize : 3*channelSize]
	for i := range data {
		data[i] = padValue
	}

	bounds := scaled.Bounds()
	for y := 0; y < scaledH && y < inputSize; y++ {
		for x := 0; x < scaledW && x < inputSize; x++ {
			r, g, b, _ := scaled.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			i := y*inputSize + x
			red[i] = float32(r>>8) / 255.0
			green[i] = float32(g>>8) / 255.0
			blue[i] = float32(b>>8) / 255.0
		}
	}

	return data, nil
}
