package hyperband

// ImageDims is the shape of a hyperspectral cube: L lines, S samples per
// line, B bands (channels) per pixel. All three must be positive; Validate
// enforces that.
type ImageDims struct {
	Lines   int
	Samples int
	Bands   int
}

// Validate reports KindInvalidHeader if any dimension is non-positive.
func (d ImageDims) Validate() error {
	if d.Lines <= 0 || d.Samples <= 0 || d.Bands <= 0 {
		return newError(KindInvalidHeader, "image dimensions must be positive", nil)
	}
	return nil
}

// Count returns the total element count L*S*B.
func (d ImageDims) Count() int64 {
	return int64(d.Lines) * int64(d.Samples) * int64(d.Bands)
}

// ByteSize returns the total byte size of the dense array for an element of
// the given width.
func (d ImageDims) ByteSize(elemWidth int) int64 {
	return d.Count() * int64(elemWidth)
}

// PixelLength is the number of elements in one pixel's worth of channels,
// i.e. Bands.
func (d ImageDims) PixelLength() int { return d.Bands }

// Interleave is the byte ordering of a dense ENVI array.
type Interleave int

const (
	// BIP stores all bands of one pixel contiguously: offset(l,s,b) =
	// (l*S+s)*B + b. The fastest axis is Sample.
	BIP Interleave = iota
	// BIL stores one line's bands sequentially, one band-row at a time:
	// offset(l,s,b) = l*S*B + b*S + s. No single axis is contiguous; the
	// fastest axis defaults conservatively to Band.
	BIL
	// BSQ stores one band's whole plane, then the next: offset(l,s,b) =
	// b*L*S + l*S + s. The fastest axis is Band.
	BSQ
)

func (iv Interleave) String() string {
	switch iv {
	case BIP:
		return "bip"
	case BIL:
		return "bil"
	case BSQ:
		return "bsq"
	default:
		return "unknown"
	}
}

// ParseInterleave maps the ENVI header's recognized interleave values.
func ParseInterleave(s string) (Interleave, error) {
	switch s {
	case "bip":
		return BIP, nil
	case "bil":
		return BIL, nil
	case "bsq":
		return BSQ, nil
	default:
		return 0, newError(KindInvalidHeader, "unknown interleave value: "+s, nil)
	}
}

// Axis names the storage-contiguous direction of iteration.
type Axis int

const (
	AxisBands Axis = iota
	AxisSamples
)

// Index computes element offsets for a fixed ImageDims and Interleave. Offset
// holds the three layout formulas; the BIP and BSQ cases of gatherBatch,
// scatterBatch and their raw-byte counterparts apply the same formulas inline
// to find the start of each contiguous run.
type Index struct {
	Dims       ImageDims
	Interleave Interleave
}

// NewIndex validates dims and constructs an Index.
func NewIndex(dims ImageDims, iv Interleave) (Index, error) {
	if err := dims.Validate(); err != nil {
		return Index{}, err
	}
	return Index{Dims: dims, Interleave: iv}, nil
}

// Offset returns the element index (not byte offset) of pixel (l,s,b).
// Out-of-bounds (l,s,b) is a programmer error: Offset does not bounds-check
// on this hot path, matching the iterator contract in the pixel iterator
// model.
func (ix Index) Offset(l, s, b int) int64 {
	L, S, B := int64(ix.Dims.Lines), int64(ix.Dims.Samples), int64(ix.Dims.Bands)
	li, si, bi := int64(l), int64(s), int64(b)
	switch ix.Interleave {
	case BIP:
		return (li*S+si)*B + bi
	case BIL:
		return li*S*B + bi*S + si
	case BSQ:
		return bi*L*S + li*S + si
	default:
		return 0
	}
}

// FastestAxis reports the axis along which consecutive elements are
// contiguous in storage: Band for BSQ, Sample for BIP. BIL returns Bands as
// a conservative default, since no single axis is trivially contiguous for
// that layout.
func (ix Index) FastestAxis() Axis {
	switch ix.Interleave {
	case BIP:
		return AxisSamples
	default:
		return AxisBands
	}
}

// IsContiguousAlongAxis reports whether iterating that axis visits
// consecutive storage offsets for this layout.
func (ix Index) IsContiguousAlongAxis(a Axis) bool {
	switch ix.Interleave {
	case BIP:
		return a == AxisSamples
	case BSQ:
		return a == AxisBands
	default:
		return false
	}
}

// assertBounds reports whether (l,s,b) lies inside dims. Offset and the
// iterators do not call it, so no bounds check runs per element.
func assertBounds(dims ImageDims, l, s, b int) bool {
	return l >= 0 && l < dims.Lines && s >= 0 && s < dims.Samples && b >= 0 && b < dims.Bands
}
