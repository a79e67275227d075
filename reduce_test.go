package hyperband

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFoldBatchedSumsEveryPixelOnce(t *testing.T) {
	dims := ImageDims{Lines: 3, Samples: 3, Bands: 2}
	data := make([]float32, dims.Lines*dims.Samples*dims.Bands)
	for i := range data {
		data[i] = float32(i + 1)
	}
	img := newTestImage(t, dims, BIP, data)

	old := MaxChunkBytes
	MaxChunkBytes = 16 // force several chunks across 9 samples
	defer func() { MaxChunkBytes = old }()

	type acc struct {
		sum   [2]float64
		count int
	}
	result, err := FoldBatched(context.Background(), img,
		func() acc { return acc{} },
		func(b *Batch, a *acc) {
			for i := 0; i < b.Rows; i++ {
				row := b.Row(i)
				a.sum[0] += float64(row[0])
				a.sum[1] += float64(row[1])
				a.count++
			}
		},
		func(dst *acc, src acc) {
			dst.sum[0] += src.sum[0]
			dst.sum[1] += src.sum[1]
			dst.count += src.count
		},
		nil,
	)
	require.NoError(t, err)
	require.Equal(t, 9, result.count)

	var wantSum [2]float64
	for i := 0; i < 9; i++ {
		wantSum[0] += float64(data[i*2])
		wantSum[1] += float64(data[i*2+1])
	}
	require.Equal(t, wantSum, result.sum)
}

func TestFoldBatchedHonorsCancellation(t *testing.T) {
	dims := ImageDims{Lines: 10, Samples: 10, Bands: 1}
	img := newEmptyImage(t, dims, BIP)

	old := MaxChunkBytes
	MaxChunkBytes = 4
	defer func() { MaxChunkBytes = old }()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := FoldBatched(ctx, img,
		func() int { return 0 },
		func(b *Batch, a *int) { *a += b.Rows },
		func(dst *int, src int) { *dst += src },
		nil,
	)
	require.ErrorIs(t, err, ErrCancelled)
}

func TestMapAndWriteBatchedIdentity(t *testing.T) {
	dims := ImageDims{Lines: 2, Samples: 3, Bands: 2}
	data := tinyRampData(dims)
	img := newTestImage(t, dims, BIP, data)
	out := newEmptyImage(t, dims, BSQ)

	err := MapAndWriteBatched(context.Background(), img, out, dims.Bands, func(b *Batch, wb *WriteBatch) {
		copy(wb.Data, b.Data)
	}, nil)
	require.NoError(t, err)
	require.True(t, Equal(img, out))
}

func TestCropMapExtractsSubRegion(t *testing.T) {
	dims := ImageDims{Lines: 4, Samples: 4, Bands: 1}
	data := make([]float32, 16)
	for l := 0; l < 4; l++ {
		for s := 0; s < 4; s++ {
			data[l*4+s] = float32(l*10 + s)
		}
	}
	img := newTestImage(t, dims, BIP, data)
	out := newEmptyImage(t, ImageDims{Lines: 2, Samples: 2, Bands: 1}, BIP)

	rows := &RowRange{Start: 1, End: 3}
	cols := &RowRange{Start: 1, End: 3}
	err := CropMap(context.Background(), img, out, rows, cols, 1, func(b *Batch, wb *WriteBatch) {
		copy(wb.Data, b.Data)
	}, nil)
	require.NoError(t, err)

	require.Equal(t, float32(11), out.At(0, 0, 0))
	require.Equal(t, float32(12), out.At(0, 1, 0))
	require.Equal(t, float32(21), out.At(1, 0, 0))
	require.Equal(t, float32(22), out.At(1, 1, 0))
}

func tinyRampData(dims ImageDims) []float32 {
	n := dims.Lines * dims.Samples * dims.Bands
	data := make([]float32, n)
	for i := range data {
		data[i] = float32(i)
	}
	return data
}
