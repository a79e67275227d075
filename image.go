package hyperband

import "math"

// Image is the pair of a BackingStore and the Index that interprets its
// bytes. Two images are equal iff their dims match and every (l,s,b)
// element compares equal, regardless of either image's interleave — layout
// never affects logical equality (spec.md §3).
type Image struct {
	Store BackingStore
	Index Index
	// ElemWidth is the byte width of one element: 4 for the float32 path
	// At/SetAt and the statistics/PCA/render components require, or any
	// DataType.ElemWidth() for the raw-byte path ConvertRaw/CropRaw accept
	// (spec.md §3's DataType enum, SPEC_FULL.md §3).
	ElemWidth int
}

// NewImage validates dims via Index construction and pairs it with a
// float32-element store. Statistics, PCA, and rendering only ever operate
// on images built this way.
func NewImage(store BackingStore, dims ImageDims, iv Interleave) (*Image, error) {
	return newImage(store, dims, iv, 4)
}

// NewRawImage is NewImage's generic counterpart for any other ENVI
// DataType: convert and crop move such images' elements as opaque bytes,
// never decoding them numerically (spec.md §3).
func NewRawImage(store BackingStore, dims ImageDims, iv Interleave, elemWidth int) (*Image, error) {
	return newImage(store, dims, iv, elemWidth)
}

func newImage(store BackingStore, dims ImageDims, iv Interleave, elemWidth int) (*Image, error) {
	ix, err := NewIndex(dims, iv)
	if err != nil {
		return nil, err
	}
	wantLen := dims.ByteSize(elemWidth)
	if store.Len() != wantLen {
		return nil, newError(KindHeaderMismatch, "backing store length disagrees with dims", nil)
	}
	return &Image{Store: store, Index: ix, ElemWidth: elemWidth}, nil
}

// At reads the float32 element at (l,s,b). It is used by tests and by
// equality checks, not on the reducer's hot path.
func (img *Image) At(l, s, b int) float32 {
	off := img.Index.Offset(l, s, b) * 4
	var buf [4]byte
	_, _ = img.Store.ReadAt(buf[:], off)
	return DecodeFloat32LE(buf[:], 0)
}

// SetAt writes the float32 element at (l,s,b) into a writable image.
func (img *Image) SetAt(l, s, b int, v float32) {
	var buf [4]byte
	EncodeFloat32LE(buf[:], 0, v)
	_, _ = img.Store.WriteAt(buf[:], img.Index.Offset(l, s, b)*4)
}

// Equal reports whether img and other have the same dims and every (l,s,b)
// element compares equal, independent of interleave.
func Equal(a, b *Image) bool {
	if a.Index.Dims != b.Index.Dims {
		return false
	}
	d := a.Index.Dims
	for l := 0; l < d.Lines; l++ {
		for s := 0; s < d.Samples; s++ {
			for bnd := 0; bnd < d.Bands; bnd++ {
				av, bv := a.At(l, s, bnd), b.At(l, s, bnd)
				if av != bv && !(isNaN(av) && isNaN(bv)) {
					return false
				}
			}
		}
	}
	return true
}

func isNaN(v float32) bool { return math.IsNaN(float64(v)) }
