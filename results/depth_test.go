package results

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDepthMapStats(t *testing.T) {
	values := []float32{1, 2, 3, 4, 5, 6}

	d, err := NewDepthMap(values, 2, 3)
	require.NoError(t, err)

	assert.InDelta(t, 1.0, d.Min, 1e-6)
	assert.InDelta(t, 6.0, d.Max, 1e-6)
	assert.InDelta(t, 3.5, d.Mean, 1e-6)

	h, w := d.Size()
	assert.Equal(t, 2, h)
	assert.Equal(t, 3, w)

	v, err := d.At(1, 2)
	require.NoError(t, err)
	assert.InDelta(t, 6.0, v, 1e-6)
}

func TestNewDepthMapShapeMismatch(t *testing.T) {
	_, err := NewDepthMap([]float32{1, 2, 3}, 2, 2)
	assert.Error(t, err)

	_, err = NewDepthMap(nil, 0, 4)
	assert.Error(t, err)
}
