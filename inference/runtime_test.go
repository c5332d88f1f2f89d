package inference

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModelRefValidate(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "model.onnx")
	require.NoError(t, os.WriteFile(path, []byte("stub"), 0o644))

	valid := ModelRef{
		Name:        "object",
		Path:        path,
		InputName:   "images",
		OutputName:  "output0",
		InputShape:  []int64{1, 3, 640, 640},
		OutputShape: []int64{1, 84, 8400},
	}
	assert.NoError(t, valid.Validate())

	missing := valid
	missing.Path = filepath.Join(dir, "absent.onnx")
	assert.Error(t, missing.Validate())

	empty := valid
	empty.Path = ""
	assert.Error(t, empty.Validate())

	shapeless := valid
	shapeless.OutputShape = nil
	assert.Error(t, shapeless.Validate())
}

func TestElementCount(t *testing.T) {
	assert.Equal(t, int64(1*3*640*640), elementCount([]int64{1, 3, 640, 640}))
	assert.Equal(t, int64(1), elementCount(nil))
}
