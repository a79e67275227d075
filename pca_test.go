package hyperband

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDescendingEigenOrderSortsLargestFirst(t *testing.T) {
	order := descendingEigenOrder([]float64{0.1, 4.0, 2.0})
	require.Equal(t, []int{1, 2, 0}, order)
}

func TestWithinULP(t *testing.T) {
	require.True(t, withinULP(1.0, 1.0))
	a := float32(1.0)
	b := math.Float32frombits(math.Float32bits(a) + 1)
	require.True(t, withinULP(a, b))
	require.False(t, withinULP(1.0, 1.1))
}

func TestPixelIsNodataRequiresEveryChannel(t *testing.T) {
	mean := []float32{3, 30}
	require.True(t, pixelIsNodata([]float32{3, 30}, mean))
	require.False(t, pixelIsNodata([]float32{3, 31}, mean))
}

func TestSolveComputesMeanStdDevCov(t *testing.T) {
	dims := ImageDims{Lines: 5, Samples: 1, Bands: 2}
	data := make([]float32, 10)
	b0 := []float32{1, 2, 3, 4, 5}
	b1 := []float32{10, 20, 30, 40, 50}
	for i := 0; i < 5; i++ {
		data[i*2] = b0[i]
		data[i*2+1] = b1[i]
	}
	img := newTestImage(t, dims, BIP, data)

	res, err := Solve(context.Background(), img, PCAOptions{})
	require.NoError(t, err)
	require.InDelta(t, 3.0, res.Mean[0], 1e-6)
	require.InDelta(t, 30.0, res.Mean[1], 1e-6)
	require.InDelta(t, math.Sqrt(2.5), float64(res.StdDev[0]), 1e-4)
	require.InDelta(t, math.Sqrt(250), float64(res.StdDev[1]), 1e-3)
	require.InDelta(t, 2.5, res.Cov[0*2+0], 1e-6)
	require.InDelta(t, 250.0, res.Cov[1*2+1], 1e-3)
	require.Len(t, res.Eigenvalues, 2)
	r, c := res.Eigenvectors.Dims()
	require.Equal(t, 2, r)
	require.Equal(t, 2, c)
}

func TestRunWritesNodataForMeanEqualPixel(t *testing.T) {
	dims := ImageDims{Lines: 3, Samples: 1, Bands: 2}
	data := []float32{
		1, 10,
		3, 30, // equals the mean of the three pixels
		5, 50,
	}
	img := newTestImage(t, dims, BIP, data)
	out := newEmptyImage(t, ImageDims{Lines: 3, Samples: 1, Bands: 1}, BIP)

	res, err := Run(context.Background(), img, out, PCAOptions{K: 1})
	require.NoError(t, err)
	require.NotNil(t, res)

	require.Equal(t, NodataValue, out.At(1, 0, 0))
	require.NotEqual(t, NodataValue, out.At(0, 0, 0))
	require.NotEqual(t, NodataValue, out.At(2, 0, 0))
	require.False(t, math.IsNaN(float64(out.At(0, 0, 0))))
}

func TestRunRejectsOutOfRangeK(t *testing.T) {
	dims := ImageDims{Lines: 3, Samples: 1, Bands: 2}
	img := newTestImage(t, dims, BIP, make([]float32, 6))
	out := newEmptyImage(t, ImageDims{Lines: 3, Samples: 1, Bands: 3}, BIP)

	_, err := Run(context.Background(), img, out, PCAOptions{K: 3})
	require.Error(t, err)
	var herr *Error
	require.ErrorAs(t, err, &herr)
	require.Equal(t, KindDimsMismatch, herr.Kind)
}
