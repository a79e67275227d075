package hyperband

import (
	"context"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"
)

// chunkJob is one unit of work: the sample range [J0, J0+Rows) to gather,
// process, and (for the write path) scatter.
type chunkJob struct {
	j0, rows int
}

func planChunks(totalSamples, chunk int) []chunkJob {
	if chunk < 1 {
		chunk = 1
	}
	jobs := make([]chunkJob, 0, totalSamples/chunk+1)
	for j0 := 0; j0 < totalSamples; j0 += chunk {
		rows := chunk
		if j0+rows > totalSamples {
			rows = totalSamples - j0
		}
		jobs = append(jobs, chunkJob{j0: j0, rows: rows})
	}
	return jobs
}

func workerCount(numChunks int) int {
	n := runtime.GOMAXPROCS(0)
	if n > numChunks {
		n = numChunks
	}
	if n < 1 {
		n = 1
	}
	return n
}

// FoldBatched drives kernel f over every pixel of img exactly once, in
// storage-order-consistent chunks, accumulating into a per-worker copy of
// zero() that is merged into the returned accumulator via merge once each
// worker's share of chunks is exhausted. Concurrency is bounded by
// min(GOMAXPROCS, number of chunks); cancellation is checked once per chunk
// boundary (spec.md §4.4, §5).
func FoldBatched[A any](ctx context.Context, img *Image, zero func() A, mapFn func(*Batch, *A), merge func(dst *A, src A), progress ProgressSink) (A, error) {
	d := img.Index.Dims
	total := d.Lines * d.Samples
	chunk := chunkSize(total, d.Bands, 4, MaxChunkBytes)
	jobs := planChunks(total, chunk)

	var result A
	result = zero()
	if len(jobs) == 0 {
		return result, nil
	}

	if progress != nil {
		progress.Started("fold", int64(total))
	}

	jobCh := make(chan chunkJob)
	g, gctx := errgroup.WithContext(ctx)
	var mu sync.Mutex

	workers := workerCount(len(jobs))
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			local := zero()
			for job := range jobCh {
				select {
				case <-gctx.Done():
					return ErrCancelled
				default:
				}
				batch, err := gatherBatch(img.Store, img.Index, job.j0, job.rows)
				if err != nil {
					return err
				}
				mapFn(batch, &local)
				if progress != nil {
					progress.Incremented(int64(job.rows))
				}
			}
			mu.Lock()
			merge(&result, local)
			mu.Unlock()
			return nil
		})
	}

	g.Go(func() error {
		defer close(jobCh)
		for _, job := range jobs {
			select {
			case jobCh <- job:
			case <-gctx.Done():
				return ErrCancelled
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return result, err
	}
	if progress != nil {
		progress.Finished()
	}
	return result, nil
}

// MapAndWriteBatched reads img in storage-order chunks, maps each Batch to a
// WriteBatch of outCols channels via f, and writes the result to output at
// the matching sample range. Chunks are processed in parallel; writes do not
// need additional synchronization because disjoint chunks write disjoint
// byte ranges of output.
func MapAndWriteBatched(ctx context.Context, img, output *Image, outCols int, f func(*Batch, *WriteBatch), progress ProgressSink) error {
	d := img.Index.Dims
	total := d.Lines * d.Samples
	chunk := chunkSize(total, d.Bands, 4, MaxChunkBytes)
	jobs := planChunks(total, chunk)
	if len(jobs) == 0 {
		return nil
	}

	if progress != nil {
		progress.Started("write", int64(total))
	}

	jobCh := make(chan chunkJob)
	g, gctx := errgroup.WithContext(ctx)
	workers := workerCount(len(jobs))
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			for job := range jobCh {
				select {
				case <-gctx.Done():
					return ErrCancelled
				default:
				}
				batch, err := gatherBatch(img.Store, img.Index, job.j0, job.rows)
				if err != nil {
					return err
				}
				wb := &WriteBatch{Rows: job.rows, OutCols: outCols, Data: make([]float32, job.rows*outCols)}
				f(batch, wb)
				if err := scatterBatch(output.Store, output.Index, job.j0, wb); err != nil {
					return err
				}
				if progress != nil {
					progress.Incremented(int64(job.rows))
				}
			}
			return nil
		})
	}
	g.Go(func() error {
		defer close(jobCh)
		for _, job := range jobs {
			select {
			case jobCh <- job:
			case <-gctx.Done():
				return ErrCancelled
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	if progress != nil {
		progress.Finished()
	}
	return nil
}

// RowRange is a half-open [Start, End) range of line or sample indices.
type RowRange struct {
	Start, End int
}

// CropMap reads a rectangular sub-region of img — rows x cols, defaulting to
// the full extent when a range is nil — and writes it to output through f,
// which may perform an identity copy or a further per-pixel transform. For
// each kept line it gathers the samples starting at that line's first kept
// column, reading exactly (endCol-startCol)*pixelLength elements per row;
// the rows outside the range are never read.
func CropMap(ctx context.Context, img, output *Image, rows, cols *RowRange, outCols int, f func(*Batch, *WriteBatch), progress ProgressSink) error {
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

	outLines := rr.End - rr.Start
	outSamples := cr.End - cr.Start
	total := outLines * outSamples
	if progress != nil {
		progress.Started("crop", int64(total))
	}

	// One row of the cropped region at a time: a row is contiguous in
	// sample-space for every interleave once gatherBatch resolves the
	// layout-specific access pattern, so per-row chunking keeps CropMap's
	// read pattern simple while still bounding memory.
	outJ := 0
	for l := rr.Start; l < rr.End; l++ {
		select {
		case <-ctx.Done():
			return ErrCancelled
		default:
		}
		j0 := l*d.Samples + cr.Start
		batch, err := gatherBatch(img.Store, img.Index, j0, outSamples)
		if err != nil {
			return err
		}
		wb := &WriteBatch{Rows: outSamples, OutCols: outCols, Data: make([]float32, outSamples*outCols)}
		f(batch, wb)
		if err := scatterBatch(output.Store, output.Index, outJ, wb); err != nil {
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
