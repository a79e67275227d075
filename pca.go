package hyperband

import (
	"context"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// Stage names the PCA orchestrator's state machine positions (spec.md
// §4.6): Init -> Means -> StdDev -> Cov -> Eigen -> Write -> Done. Any error
// aborts the run and surfaces verbatim; the orchestrator never truncates a
// partially-written output file back to empty.
type Stage int

const (
	StageInit Stage = iota
	StageMeans
	StageStdDev
	StageCov
	StageEigen
	StageWrite
	StageDone
)

func (s Stage) String() string {
	switch s {
	case StageInit:
		return "Init"
	case StageMeans:
		return "Means"
	case StageStdDev:
		return "StdDev"
	case StageCov:
		return "Cov"
	case StageEigen:
		return "Eigen"
	case StageWrite:
		return "Write"
	case StageDone:
		return "Done"
	default:
		return "Unknown"
	}
}

// PCAOptions configures a PCA run.
type PCAOptions struct {
	// Range applies the (min, max] masking rule to every statistics pass.
	Range *ValueRange
	// K is the number of kept principal components for the projection
	// writeout. Unused by Solve.
	K int
	// Standardized selects the standardized-covariance variant: the
	// covariance pass divides centered cross-products by both channels'
	// standard deviations before accumulating, rather than raw centered
	// products.
	Standardized bool
	Progress     ProgressSink
}

// PCAResult holds the three statistics passes and the eigendecomposition
// shared by Solve and Run.
type PCAResult struct {
	Mean        []float32
	StdDev      []float32
	Cov         []float64 // B*B row-major
	Eigenvalues []float64 // ascending, as returned by gonum
	Eigenvectors *mat.Dense // B x B, columns are eigenvectors
}

func (opts PCAOptions) progress() ProgressSink {
	if opts.Progress != nil {
		return opts.Progress
	}
	return noopProgressSink{}
}

// Solve runs stages Init through Eigen: means, standard deviations, the
// covariance matrix, and its symmetric eigendecomposition. It does not
// write a projected image; the CLI's `pca solve` subcommand uses it
// directly to emit eigenvalues/eigenvectors as CSV (SPEC_FULL.md §4.6).
func Solve(ctx context.Context, img *Image, opts PCAOptions) (*PCAResult, error) {
	B := img.Index.Dims.Bands
	progress := opts.progress()

	progress.Message(StageMeans.String())
	meanAcc, err := FoldBatched(ctx, img,
		func() MeanAcc { return NewMeanAcc(B) },
		func(b *Batch, acc *MeanAcc) { MapMean(b, acc, opts.Range) },
		MergeMean, progress)
	if err != nil {
		return nil, err
	}
	mean := FinalizeMean(meanAcc)

	progress.Message(StageStdDev.String())
	sdAcc, err := FoldBatched(ctx, img,
		func() StdDevAcc { return NewStdDevAcc(B) },
		func(b *Batch, acc *StdDevAcc) { MapStdDev(b, acc, mean, opts.Range) },
		MergeStdDev, progress)
	if err != nil {
		return nil, err
	}
	stddev := FinalizeStdDev(sdAcc)

	progress.Message(StageCov.String())
	covAcc, err := FoldBatched(ctx, img,
		func() CovAcc { return NewCovAcc(B) },
		func(b *Batch, acc *CovAcc) {
			if opts.Standardized {
				mapStandardizedCov(b, acc, mean, stddev, opts.Range)
			} else {
				MapCov(b, acc, mean, opts.Range)
			}
		},
		MergeCov, progress)
	if err != nil {
		return nil, err
	}
	cov := FinalizeCov(covAcc)

	progress.Message(StageEigen.String())
	covMat := mat.NewSymDense(B, cov)
	var eig mat.EigenSym
	if ok := eig.Factorize(covMat, true); !ok {
		return nil, newError(KindNumericFailure, "covariance eigendecomposition did not converge", nil)
	}
	var vectors mat.Dense
	eig.VectorsTo(&vectors)

	return &PCAResult{
		Mean:         mean,
		StdDev:       stddev,
		Cov:          cov,
		Eigenvalues:  eig.Values(nil),
		Eigenvectors: &vectors,
	}, nil
}

// mapStandardizedCov folds centered-and-standardized cross-products, the
// variant spec.md §4.6 permits when the covariance pass is run on
// standardized rather than raw-centered values.
func mapStandardizedCov(b *Batch, acc *CovAcc, mean, stddev []float32, rng *ValueRange) {
	B := acc.Bands
	for r := 0; r < b.Rows; r++ {
		row := b.Row(r)
		for i := 0; i < B; i++ {
			vi := row[i]
			if !rng.includes(vi) {
				continue
			}
			zi := standardize(vi, mean[i], stddev[i])
			for j := i; j < B; j++ {
				vj := row[j]
				if !rng.includes(vj) {
					continue
				}
				zj := standardize(vj, mean[j], stddev[j])
				idx := i*B + j
				acc.Sum[idx] += float64(zi) * float64(zj)
				acc.Count[idx]++
			}
		}
	}
}

func standardize(v, mean, stddev float32) float32 {
	if stddev == 0 {
		return 0
	}
	return (v - mean) / stddev
}

// NodataValue is the minimum representable float32, written in place of a
// projected pixel whose raw reading equals the channel mean in every band
// to within one unit-of-least-precision (spec.md §4.6).
const NodataValue float32 = -math.MaxFloat32

func withinULP(a, b float32) bool {
	if a == b {
		return true
	}
	ab, bb := math.Float32bits(a), math.Float32bits(b)
	var diff uint32
	if ab > bb {
		diff = ab - bb
	} else {
		diff = bb - ab
	}
	return diff <= 1
}

// Run executes the full PCA pipeline — Solve, followed by the standardized
// projection writeout — into output, which must already be sized to
// (Lines, Samples, opts.K).
func Run(ctx context.Context, img, output *Image, opts PCAOptions) (*PCAResult, error) {
	res, err := Solve(ctx, img, opts)
	if err != nil {
		return nil, err
	}
	if opts.K <= 0 || opts.K > img.Index.Dims.Bands {
		return nil, newError(KindDimsMismatch, "PCA K must be in [1, bands]", nil)
	}

	progress := opts.progress()
	progress.Message(StageWrite.String())

	B := img.Index.Dims.Bands
	K := opts.K
	// gonum's EigenSym orders eigenvalues ascending; the kept components
	// are the K with the largest eigenvalues (most explained variance), so
	// projection uses the descending-sorted column indices, not columns
	// [0,K).
	order := descendingEigenOrder(res.Eigenvalues)

	err = MapAndWriteBatched(ctx, img, output, K, func(batch *Batch, wb *WriteBatch) {
		for p := 0; p < batch.Rows; p++ {
			raw := batch.Row(p)
			out := wb.Row(p)
			if pixelIsNodata(raw, res.Mean) {
				for k := range out {
					out[k] = NodataValue
				}
				continue
			}
			z := make([]float32, B)
			for c := 0; c < B; c++ {
				z[c] = standardize(raw[c], res.Mean[c], res.StdDev[c])
			}
			for k := 0; k < K; k++ {
				col := order[k]
				var dot float64
				for c := 0; c < B; c++ {
					dot += float64(z[c]) * res.Eigenvectors.At(c, col)
				}
				out[k] = float32(dot)
			}
		}
	}, progress)
	if err != nil {
		return nil, err
	}
	progress.Message(StageDone.String())
	return res, nil
}

// descendingEigenOrder returns the indices of values sorted from largest to
// smallest eigenvalue.
func descendingEigenOrder(values []float64) []int {
	order := make([]int, len(values))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(i, j int) bool { return values[order[i]] > values[order[j]] })
	return order
}

func pixelIsNodata(raw, mean []float32) bool {
	for c := range raw {
		if !withinULP(raw[c], mean[c]) {
			return false
		}
	}
	return true
}
