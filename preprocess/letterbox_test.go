package preprocess

import (
	"image"
	"image/color"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inboxy/policamera-sub001/frames"
)

func solidFrame(w, h int, c color.RGBA) frames.Frame {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return frames.New(1, img, time.Now())
}

func TestLetterboxInputShape(t *testing.T) {
	f := solidFrame(1280, 720, color.RGBA{R: 255, A: 255})

	data, err := LetterboxInput(f, 640)
	require.NoError(t, err)
	assert.Len(t, data, 3*640*640)
}

func TestLetterboxInputAnchorsTopLeftAndPads(t *testing.T) {
	// A pure red 1280x720 frame scales to 640x360: the top half of each
	// channel holds image content, the bottom half padding.
	f := solidFrame(1280, 720, color.RGBA{R: 255, A: 255})

	data, err := LetterboxInput(f, 640)
	require.NoError(t, err)

	channel := 640 * 640
	red, green := data[:channel], data[channel:2*channel]

	// Inside the scaled region.
	inside := 100*640 + 100
	assert.InDelta(t, 1.0, red[inside], 0.02)
	assert.InDelta(t, 0.0, green[inside], 0.02)

	// Below row 360: padding.
	padded := 500*640 + 100
	assert.InDelta(t, float64(padValue), red[padded], 1e-6)
	assert.InDelta(t, float64(padValue), green[padded], 1e-6)
}

func TestLetterboxInputRejectsDegenerateFrame(t *testing.T) {
	_, err := LetterboxInput(frames.Frame{}, 640)
	assert.Error(t, err)
}
