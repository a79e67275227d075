package hyperband

import "context"

// Convert rewrites img into output under output's interleave, preserving
// every element value. gatherBatch/scatterBatch already resolve the
// layout-specific access pattern for each side, so the map step here is the
// identity: spec.md §8's round-trip property — convert(convert(I,a),b)==I —
// follows directly from that identity plus Offset's bijectivity (spec.md
// §4.1).
func Convert(ctx context.Context, img, output *Image, progress ProgressSink) error {
	if img.Index.Dims != output.Index.Dims {
		return newError(KindDimsMismatch, "conversion output dims must match input", nil)
	}
	B := img.Index.Dims.Bands
	return MapAndWriteBatched(ctx, img, output, B, func(b *Batch, wb *WriteBatch) {
		copy(wb.Data, b.Data)
	}, progress)
}

// ConvertRaw is Convert's generic counterpart for any ENVI DataType other
// than float32: it moves img's elements to output under output's interleave
// as opaque elemWidth-byte runs, never decoding them numerically
// (SPEC_FULL.md §3). It runs as a simple sequential chunked loop rather than
// MapAndWriteBatched's worker pool, since a raw byte copy has no reduction
// step to parallelize.
func ConvertRaw(ctx context.Context, img, output *Image, progress ProgressSink) error {
	if img.Index.Dims != output.Index.Dims {
		return newError(KindDimsMismatch, "conversion output dims must match input", nil)
	}
	if img.ElemWidth != output.ElemWidth {
		return newError(KindDimsMismatch, "conversion output element width must match input", nil)
	}
	d := img.Index.Dims
	total := d.Lines * d.Samples
	chunk := chunkSize(total, d.Bands, img.ElemWidth, MaxChunkBytes)
	jobs := planChunks(total, chunk)
	if len(jobs) == 0 {
		return nil
	}

	if progress != nil {
		progress.Started("write", int64(total))
	}
	for _, job := range jobs {
		select {
		case <-ctx.Done():
			return ErrCancelled
		default:
		}
		data, err := gatherRawBytes(img.Store, img.Index, job.j0, job.rows, img.ElemWidth)
		if err != nil {
			return err
		}
		if err := scatterRawBytes(output.Store, output.Index, job.j0, job.rows, output.ElemWidth, data); err != nil {
			return err
		}
		if progress != nil {
			progress.Incremented(int64(job.rows))
		}
	}
	if progress != nil {
		progress.Finished()
	}
	return nil
}
