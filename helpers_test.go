package hyperband

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// newTestImage writes data, given in (l,s,b) order (each pixel's bands
// together, whatever iv is), to a fresh temp file stored under iv and
// returns it as a writable streamed Image. The store and file are closed
// through t.Cleanup.
func newTestImage(t *testing.T, dims ImageDims, iv Interleave, data []float32) *Image {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cube.bin")
	f, err := os.Create(path)
	require.NoError(t, err)
	store, err := OpenWrite(BackendStreamed, f, 0, dims.ByteSize(4))
	require.NoError(t, err)
	img, err := NewImage(store, dims, iv)
	require.NoError(t, err)

	ix := img.Index
	for l := 0; l < dims.Lines; l++ {
		for s := 0; s < dims.Samples; s++ {
			for b := 0; b < dims.Bands; b++ {
				j := l*dims.Samples + s
				img.SetAt(l, s, b, data[j*dims.Bands+b])
			}
		}
	}
	_ = ix
	t.Cleanup(func() {
		store.Close()
		f.Close()
	})
	return img
}

// newEmptyImage creates a zero-initialized writable image of the given dims
// and interleave, backed by a fresh temp file.
func newEmptyImage(t *testing.T, dims ImageDims, iv Interleave) *Image {
	t.Helper()
	path := filepath.Join(t.TempDir(), "out.bin")
	f, err := os.Create(path)
	require.NoError(t, err)
	store, err := OpenWrite(BackendStreamed, f, 0, dims.ByteSize(4))
	require.NoError(t, err)
	img, err := NewImage(store, dims, iv)
	require.NoError(t, err)
	t.Cleanup(func() {
		store.Close()
		f.Close()
	})
	return img
}

// newRawTestImage writes raw (element-major under iv, elemWidth bytes per
// element) bytes to a fresh temp file and opens it as a writable streamed
// Image via NewRawImage, for exercising the generic DataType path.
func newRawTestImage(t *testing.T, dims ImageDims, iv Interleave, elemWidth int, data []byte) *Image {
	t.Helper()
	path := filepath.Join(t.TempDir(), "raw.bin")
	f, err := os.Create(path)
	require.NoError(t, err)
	store, err := OpenWrite(BackendStreamed, f, 0, dims.ByteSize(elemWidth))
	require.NoError(t, err)
	img, err := NewRawImage(store, dims, iv, elemWidth)
	require.NoError(t, err)
	_, err = store.WriteAt(data, 0)
	require.NoError(t, err)
	t.Cleanup(func() {
		store.Close()
		f.Close()
	})
	return img
}

// newEmptyRawImage creates a zero-initialized writable raw image.
func newEmptyRawImage(t *testing.T, dims ImageDims, iv Interleave, elemWidth int) *Image {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rawout.bin")
	f, err := os.Create(path)
	require.NoError(t, err)
	store, err := OpenWrite(BackendStreamed, f, 0, dims.ByteSize(elemWidth))
	require.NoError(t, err)
	img, err := NewRawImage(store, dims, iv, elemWidth)
	require.NoError(t, err)
	t.Cleanup(func() {
		store.Close()
		f.Close()
	})
	return img
}
