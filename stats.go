package hyperband

import "math"

// ValueRange is the optional (min, max] half-open masking range spec.md
// §4.5 attaches to every statistics kernel: elements outside the range are
// excluded from both sum and count. A nil *ValueRange means "no masking".
type ValueRange struct {
	Min, Max float32
}

func (r *ValueRange) includes(v float32) bool {
	if r == nil {
		return true
	}
	return v > r.Min && v <= r.Max
}

// MeanAcc accumulates per-channel sums and counts. Its zero value is the
// identity of the map operation, so the order batches are merged in does
// not matter for the finite sums involved (spec.md §3).
type MeanAcc struct {
	Sum   []float64
	Count []int64
}

// NewMeanAcc allocates a zero MeanAcc for bands channels.
func NewMeanAcc(bands int) MeanAcc {
	return MeanAcc{Sum: make([]float64, bands), Count: make([]int64, bands)}
}

// MapMean folds one Batch's elements into acc, honoring rng.
func MapMean(b *Batch, acc *MeanAcc, rng *ValueRange) {
	for i := 0; i < b.Rows; i++ {
		row := b.Row(i)
		for c, v := range row {
			if rng.includes(v) {
				acc.Sum[c] += float64(v)
				acc.Count[c]++
			}
		}
	}
}

// MergeMean combines src into dst; it is the associative reduce used when
// FoldBatched merges per-worker accumulators.
func MergeMean(dst *MeanAcc, src MeanAcc) {
	for c := range dst.Sum {
		dst.Sum[c] += src.Sum[c]
		dst.Count[c] += src.Count[c]
	}
}

// FinalizeMean divides sum by count per channel. A channel with zero count
// (every value masked out) yields NaN, per spec.md §8 scenario 3.
func FinalizeMean(acc MeanAcc) []float32 {
	mean := make([]float32, len(acc.Sum))
	for c := range mean {
		if acc.Count[c] == 0 {
			mean[c] = float32(math.NaN())
			continue
		}
		mean[c] = float32(acc.Sum[c] / float64(acc.Count[c]))
	}
	return mean
}

// StdDevAcc accumulates per-channel sums of squared deviations from a
// precomputed mean, and the parallel counts.
type StdDevAcc struct {
	Sum   []float64
	Count []int64
}

// NewStdDevAcc allocates a zero StdDevAcc for bands channels.
func NewStdDevAcc(bands int) StdDevAcc {
	return StdDevAcc{Sum: make([]float64, bands), Count: make([]int64, bands)}
}

// MapStdDev folds one Batch's squared deviations from mean into acc.
func MapStdDev(b *Batch, acc *StdDevAcc, mean []float32, rng *ValueRange) {
	for i := 0; i < b.Rows; i++ {
		row := b.Row(i)
		for c, v := range row {
			if rng.includes(v) {
				d := float64(v) - float64(mean[c])
				acc.Sum[c] += d * d
				acc.Count[c]++
			}
		}
	}
}

// MergeStdDev combines src into dst.
func MergeStdDev(dst *StdDevAcc, src StdDevAcc) {
	for c := range dst.Sum {
		dst.Sum[c] += src.Sum[c]
		dst.Count[c] += src.Count[c]
	}
}

// FinalizeStdDev computes sqrt(sum/(count-1)) per channel; a channel with
// fewer than two unmasked samples yields NaN.
func FinalizeStdDev(acc StdDevAcc) []float32 {
	sd := make([]float32, len(acc.Sum))
	for c := range sd {
		if acc.Count[c] < 2 {
			sd[c] = float32(math.NaN())
			continue
		}
		sd[c] = float32(math.Sqrt(acc.Sum[c] / float64(acc.Count[c]-1)))
	}
	return sd
}

// CovAcc accumulates the upper triangle of a B x B sum-of-products matrix
// and its parallel counts, both stored densely for simplicity (spec.md's
// mirror-to-lower-triangle step happens in FinalizeCov).
type CovAcc struct {
	Bands int
	Sum   []float64 // Bands*Bands, row-major, upper triangle populated
	Count []int64
}

// NewCovAcc allocates a zero CovAcc for the given band count.
func NewCovAcc(bands int) CovAcc {
	return CovAcc{Bands: bands, Sum: make([]float64, bands*bands), Count: make([]int64, bands*bands)}
}

// MapCov folds one Batch's centered cross-products into acc for every
// ordered pair (i<=j), honoring rng independently per channel (a pair is
// counted only when both channels are in range).
func MapCov(b *Batch, acc *CovAcc, mean []float32, rng *ValueRange) {
	B := acc.Bands
	for r := 0; r < b.Rows; r++ {
		row := b.Row(r)
		for i := 0; i < B; i++ {
			vi := row[i]
			if !rng.includes(vi) {
				continue
			}
			di := float64(vi) - float64(mean[i])
			for j := i; j < B; j++ {
				vj := row[j]
				if !rng.includes(vj) {
					continue
				}
				dj := float64(vj) - float64(mean[j])
				idx := i*B + j
				acc.Sum[idx] += di * dj
				acc.Count[idx]++
			}
		}
	}
}

// MergeCov combines src into dst.
func MergeCov(dst *CovAcc, src CovAcc) {
	for i := range dst.Sum {
		dst.Sum[i] += src.Sum[i]
		dst.Count[i] += src.Count[i]
	}
}

// FinalizeCov divides each upper-triangle entry by (count-1) and mirrors it
// to the lower triangle, returning a dense, symmetric B x B matrix in
// row-major order. This is the mathematically correct normalization; the
// source's sqrt(sum/count) variant (spec.md §9) is not reproduced.
func FinalizeCov(acc CovAcc) []float64 {
	B := acc.Bands
	cov := make([]float64, B*B)
	for i := 0; i < B; i++ {
		for j := i; j < B; j++ {
			idx := i*B + j
			var v float64
			if acc.Count[idx] < 2 {
				v = math.NaN()
			} else {
				v = acc.Sum[idx] / float64(acc.Count[idx]-1)
			}
			cov[i*B+j] = v
			cov[j*B+i] = v
		}
	}
	return cov
}
