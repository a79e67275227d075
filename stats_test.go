package hyperband

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

// fivePixelBatch builds the reference scenario: 5 pixels, 2 bands.
// band0 = [1,2,3,4,5], band1 = [10,20,30,40,50].
func fivePixelBatch() *Batch {
	data := make([]float32, 10)
	b0 := []float32{1, 2, 3, 4, 5}
	b1 := []float32{10, 20, 30, 40, 50}
	for i := 0; i < 5; i++ {
		data[i*2] = b0[i]
		data[i*2+1] = b1[i]
	}
	return &Batch{Rows: 5, PixelLength: 2, Data: data}
}

func TestMeanStdDevCovReferenceScenario(t *testing.T) {
	b := fivePixelBatch()

	meanAcc := NewMeanAcc(2)
	MapMean(b, &meanAcc, nil)
	mean := FinalizeMean(meanAcc)
	require.InDelta(t, 3.0, mean[0], 1e-6)
	require.InDelta(t, 30.0, mean[1], 1e-6)

	sdAcc := NewStdDevAcc(2)
	MapStdDev(b, &sdAcc, mean, nil)
	sd := FinalizeStdDev(sdAcc)
	require.InDelta(t, math.Sqrt(2.5), float64(sd[0]), 1e-4)
	require.InDelta(t, math.Sqrt(250), float64(sd[1]), 1e-3)

	covAcc := NewCovAcc(2)
	MapCov(b, &covAcc, mean, nil)
	cov := FinalizeCov(covAcc)
	require.InDelta(t, 2.5, cov[0*2+0], 1e-6)
	require.InDelta(t, 250.0, cov[1*2+1], 1e-3)
	require.InDelta(t, 25.0, cov[0*2+1], 1e-6)
	require.InDelta(t, 25.0, cov[1*2+0], 1e-6)
}

func TestMeanWithMaskedRangeYieldsNaNWhenAllExcluded(t *testing.T) {
	b := fivePixelBatch()
	rng := &ValueRange{Min: 1, Max: 4} // (1,4]: keeps band0 in {2,3,4}, band1 has no values in (1,4]

	meanAcc := NewMeanAcc(2)
	MapMean(b, &meanAcc, rng)
	mean := FinalizeMean(meanAcc)

	require.InDelta(t, 3.0, mean[0], 1e-6) // (2+3+4)/3
	require.True(t, math.IsNaN(float64(mean[1])))
}

func TestFinalizeStdDevNaNWhenFewerThanTwoSamples(t *testing.T) {
	acc := NewStdDevAcc(1)
	acc.Sum[0] = 5
	acc.Count[0] = 1
	sd := FinalizeStdDev(acc)
	require.True(t, math.IsNaN(float64(sd[0])))
}

func TestValueRangeIncludesIsHalfOpen(t *testing.T) {
	rng := &ValueRange{Min: 1, Max: 4}
	require.False(t, rng.includes(1))
	require.True(t, rng.includes(4))
	require.True(t, rng.includes(2))
	require.False(t, rng.includes(5))

	var nilRange *ValueRange
	require.True(t, nilRange.includes(-1000))
}

func TestMergeCovIsAssociative(t *testing.T) {
	b := fivePixelBatch()
	whole := NewCovAcc(2)
	mean := []float32{3, 30}
	MapCov(b, &whole, mean, nil)

	part1 := &Batch{Rows: 2, PixelLength: 2, Data: b.Data[:4]}
	part2 := &Batch{Rows: 3, PixelLength: 2, Data: b.Data[4:]}
	split := NewCovAcc(2)
	a1 := NewCovAcc(2)
	MapCov(part1, &a1, mean, nil)
	a2 := NewCovAcc(2)
	MapCov(part2, &a2, mean, nil)
	MergeCov(&split, a1)
	MergeCov(&split, a2)

	wholeFinal := FinalizeCov(whole)
	splitFinal := FinalizeCov(split)
	for i := range wholeFinal {
		require.InDelta(t, wholeFinal[i], splitFinal[i], 1e-9)
	}
}
