package hyperband

// gatherRawBytes reads rows consecutive samples starting at sample index j0
// from store under index ix, copying each element's elemWidth bytes
// verbatim. It is gatherBatch's generic counterpart for the convert/crop
// raw-byte path, which moves any ENVI DataType without decoding it
// numerically (spec.md §3, SPEC_FULL.md §3).
func gatherRawBytes(store BackingStore, ix Index, j0, rows, elemWidth int) ([]byte, error) {
	B := ix.Dims.Bands
	S := ix.Dims.Samples
	out := make([]byte, rows*B*elemWidth)

	switch ix.Interleave {
	case BIP:
		n, err := store.ReadAt(out, int64(j0)*int64(B)*int64(elemWidth))
		if err != nil && n < len(out) {
			return nil, newError(KindIO, "reading BIP raw batch", err)
		}
	case BSQ:
		L := ix.Dims.Lines
		raw := make([]byte, rows*elemWidth)
		for b := 0; b < B; b++ {
			off := (int64(b)*int64(L)*int64(S) + int64(j0)) * int64(elemWidth)
			n, err := store.ReadAt(raw, off)
			if err != nil && n < len(raw) {
				return nil, newError(KindIO, "reading BSQ raw batch", err)
			}
			for i := 0; i < rows; i++ {
				copy(out[(i*B+b)*elemWidth:], raw[i*elemWidth:(i+1)*elemWidth])
			}
		}
	case BIL:
		for i := 0; i < rows; i++ {
			j := j0 + i
			l, s := j/S, j%S
			for b := 0; b < B; b++ {
				off := ix.Offset(l, s, b) * int64(elemWidth)
				dst := out[(i*B+b)*elemWidth : (i*B+b+1)*elemWidth]
				if _, err := store.ReadAt(dst, off); err != nil {
					return nil, newError(KindIO, "reading BIL raw batch", err)
				}
			}
		}
	}
	return out, nil
}

// scatterRawBytes is the write-side counterpart of gatherRawBytes: it writes
// rows consecutive output samples of elemWidth-byte elements, starting at
// sample index j0, into store under output index ix.
func scatterRawBytes(store BackingStore, ix Index, j0, rows, elemWidth int, data []byte) error {
	B := ix.Dims.Bands
	S := ix.Dims.Samples

	switch ix.Interleave {
	case BIP:
		if _, err := store.WriteAt(data, int64(j0)*int64(B)*int64(elemWidth)); err != nil {
			return newError(KindIO, "writing BIP raw batch", err)
		}
	case BSQ:
		L := ix.Dims.Lines
		for b := 0; b < B; b++ {
			raw := make([]byte, rows*elemWidth)
			for i := 0; i < rows; i++ {
				copy(raw[i*elemWidth:], data[(i*B+b)*elemWidth:(i*B+b+1)*elemWidth])
			}
			off := (int64(b)*int64(L)*int64(S) + int64(j0)) * int64(elemWidth)
			if _, err := store.WriteAt(raw, off); err != nil {
				return newError(KindIO, "writing BSQ raw batch", err)
			}
		}
	case BIL:
		for i := 0; i < rows; i++ {
			j := j0 + i
			l, s := j/S, j%S
			for b := 0; b < B; b++ {
				off := ix.Offset(l, s, b) * int64(elemWidth)
				src := data[(i*B+b)*elemWidth : (i*B+b+1)*elemWidth]
				if _, err := store.WriteAt(src, off); err != nil {
					return newError(KindIO, "writing BIL raw batch", err)
				}
			}
		}
	}
	return nil
}
