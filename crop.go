package hyperband

import "context"

// Crop writes the rectangular sub-region [rows.Start,rows.End) x
// [cols.Start,cols.End) of img into output, preserving every band. A nil
// range defaults to the image's full extent along that axis.
func Crop(ctx context.Context, img, output *Image, rows, cols *RowRange, progress ProgressSink) error {
	B := img.Index.Dims.Bands
	return CropMap(ctx, img, output, rows, cols, B, func(b *Batch, wb *WriteBatch) {
		copy(wb.Data, b.Data)
	}, progress)
}

// CropRaw is Crop's generic counterpart for any ENVI DataType other than
// float32: it copies the same rectangular sub-region as Crop, but moves
// elements as opaque elemWidth-byte runs via gatherRawBytes/scatterRawBytes
// rather than through the float32 Batch/WriteBatch path (SPEC_FULL.md §3).
func CropRaw(ctx context.Context, img, output *Image, rows, cols *RowRange, progress ProgressSink) error {
	if img.ElemWidth != output.ElemWidth {
		return newError(KindDimsMismatch, "crop output element width must match input", nil)
	}
	d := img.Index.Dims
	rr := RowRange{0, d.Lines}
	if rows != nil {
		rr = *rows
	}
	cr := RowRange{0, d.Samples}
	if cols != nil {
		cr = *cols
	}
	if rr.Start < 0 || rr.End > d.Lines || rr.Start >= rr.End {
		return newError(KindDimsMismatch, "crop row range out of bounds", nil)
	}
	if cr.Start < 0 || cr.End > d.Samples || cr.Start >= cr.End {
		return newError(KindDimsMismatch, "crop col range out of bounds", nil)
	}

	outSamples := cr.End - cr.Start
	total := (rr.End - rr.Start) * outSamples
	if progress != nil {
		progress.Started("crop", int64(total))
	}

	outJ := 0
	for l := rr.Start; l < rr.End; l++ {
		select {
		case <-ctx.Done():
			return ErrCancelled
		default:
		}
		j0 := l*d.Samples + cr.Start
		data, err := gatherRawBytes(img.Store, img.Index, j0, outSamples, img.ElemWidth)
		if err != nil {
			return err
		}
		if err := scatterRawBytes(output.Store, output.Index, outJ, outSamples, output.ElemWidth, data); err != nil {
			return err
		}
		outJ += outSamples
		if progress != nil {
			progress.Incremented(int64(outSamples))
		}
	}
	if progress != nil {
		progress.Finished()
	}
	return nil
}
