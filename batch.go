package hyperband

// Batch is a (rows-in-batch) x (pixel-length) view of consecutive samples,
// in element-major order: Data[i*PixelLength : (i+1)*PixelLength] is one
// pixel's channels. For a BIP input this is assembled from one contiguous
// read; for BSQ it is a band-chunk reinterpreted row-wise; for BIL each
// sample's channels are read one element at a time, since they are strided
// by Samples within a line (spec.md §4.4).
type Batch struct {
	Rows        int
	PixelLength int
	Data        []float32
}

// Row returns pixel i's channel slice.
func (b *Batch) Row(i int) []float32 {
	return b.Data[i*b.PixelLength : (i+1)*b.PixelLength]
}

// WriteBatch is the output-side counterpart of Batch: Rows pixels of
// OutCols channels each, written by a map_and_write_batched callback before
// being flushed to the output store.
type WriteBatch struct {
	Rows    int
	OutCols int
	Data    []float32
}

// Row returns pixel i's output channel slice.
func (w *WriteBatch) Row(i int) []float32 {
	return w.Data[i*w.OutCols : (i+1)*w.OutCols]
}

// chunkSize implements the chunk-size policy of spec.md §4.3: as many
// samples as fit in MaxChunkBytes given pixelLength channels of elemWidth
// bytes, at least 1, clamped to the total sample count.
func chunkSize(totalSamples, pixelLength, elemWidth int, maxChunkBytes int64) int {
	perSample := int64(pixelLength) * int64(elemWidth)
	if perSample <= 0 {
		perSample = 1
	}
	n := int(maxChunkBytes / perSample)
	if n < 1 {
		n = 1
	}
	if n > totalSamples {
		n = totalSamples
	}
	return n
}

// gatherBatch reads rows consecutive samples starting at sample index j0
// from store under index ix, interpreting every element as little-endian
// float32. It is the one place layout-specific assembly happens for the
// statistics/PCA path and float32 convert/crop; Render reads pixels through
// Image.At instead.
func gatherBatch(store BackingStore, ix Index, j0, rows int) (*Batch, error) {
	B := ix.Dims.Bands
	S := ix.Dims.Samples
	out := &Batch{Rows: rows, PixelLength: B, Data: make([]float32, rows*B)}

	switch ix.Interleave {
	case BIP:
		raw := make([]byte, rows*B*4)
		n, err := store.ReadAt(raw, int64(j0)*int64(B)*4)
		if err != nil && n < len(raw) {
			return nil, newError(KindIO, "reading BIP batch", err)
		}
		for i := 0; i < rows*B; i++ {
			out.Data[i] = DecodeFloat32LE(raw, int64(i)*4)
		}
	case BSQ:
		L := ix.Dims.Lines
		raw := make([]byte, rows*4)
		for b := 0; b < B; b++ {
			off := (int64(b)*int64(L)*int64(S) + int64(j0)) * 4
			n, err := store.ReadAt(raw, off)
			if err != nil && n < len(raw) {
				return nil, newError(KindIO, "reading BSQ batch", err)
			}
			for i := 0; i < rows; i++ {
				out.Data[i*B+b] = DecodeFloat32LE(raw, int64(i)*4)
			}
		}
	case BIL:
		for i := 0; i < rows; i++ {
			j := j0 + i
			l, s := j/S, j%S
			raw := make([]byte, B*4)
			// One BIL line holds all bands for that line, each band's S
			// samples contiguous: offset(l,s,b) = l*S*B + b*S + s. A
			// single sample's channels are therefore strided by S, so we
			// read element-by-element rather than as one contiguous run.
			for b := 0; b < B; b++ {
				off := ix.Offset(l, s, b) * 4
				var e [4]byte
				if _, err := store.ReadAt(e[:], off); err != nil {
					return nil, newError(KindIO, "reading BIL batch", err)
				}
				copy(raw[b*4:], e[:])
			}
			for b := 0; b < B; b++ {
				out.Data[i*B+b] = DecodeFloat32LE(raw, int64(b)*4)
			}
		}
	}
	return out, nil
}

// scatterBatch is the write-side counterpart of gatherBatch: it writes a
// WriteBatch of rows consecutive output samples starting at sample index j0
// into store under output index ix.
func scatterBatch(store BackingStore, ix Index, j0 int, wb *WriteBatch) error {
	B := ix.Dims.Bands
	S := ix.Dims.Samples

	switch ix.Interleave {
	case BIP:
		raw := make([]byte, wb.Rows*B*4)
		for i := 0; i < wb.Rows*B; i++ {
			EncodeFloat32LE(raw, int64(i)*4, wb.Data[i])
		}
		if _, err := store.WriteAt(raw, int64(j0)*int64(B)*4); err != nil {
			return newError(KindIO, "writing BIP batch", err)
		}
	case BSQ:
		L := ix.Dims.Lines
		for b := 0; b < B; b++ {
			raw := make([]byte, wb.Rows*4)
			for i := 0; i < wb.Rows; i++ {
				EncodeFloat32LE(raw, int64(i)*4, wb.Data[i*B+b])
			}
			off := (int64(b)*int64(L)*int64(S) + int64(j0)) * 4
			if _, err := store.WriteAt(raw, off); err != nil {
				return newError(KindIO, "writing BSQ batch", err)
			}
		}
	case BIL:
		for i := 0; i < wb.Rows; i++ {
			j := j0 + i
			l, s := j/S, j%S
			for b := 0; b < B; b++ {
				var e [4]byte
				EncodeFloat32LE(e[:], 0, wb.Data[i*B+b])
				off := ix.Offset(l, s, b) * 4
				if _, err := store.WriteAt(e[:], off); err != nil {
					return newError(KindIO, "writing BIL batch", err)
				}
			}
		}
	}
	return nil
}
