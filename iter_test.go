package hyperband

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// cube data laid out element-major (l,s,b): value = l*100+s*10+b, 2x2x2.
func tinyCubeData() []float32 {
	return []float32{
		0, 1, 10, 11,
		100, 101, 110, 111,
	}
}

func TestBandIterRasterOrder(t *testing.T) {
	dims := ImageDims{Lines: 2, Samples: 2, Bands: 2}
	img := newTestImage(t, dims, BIP, tinyCubeData())

	var got []float32
	it := img.Band(1)
	for {
		v, ok := it.Next()
		if !ok {
			break
		}
		got = append(got, v)
	}
	require.Equal(t, []float32{1, 11, 101, 111}, got)
}

func TestBandSeqCoversAllBands(t *testing.T) {
	dims := ImageDims{Lines: 2, Samples: 2, Bands: 2}
	img := newTestImage(t, dims, BIP, tinyCubeData())

	count := 0
	bs := img.Bands()
	for {
		_, ok := bs.Next()
		if !ok {
			break
		}
		count++
	}
	require.Equal(t, 2, count)
}

func TestSampleIterYieldsChannelsInOrder(t *testing.T) {
	dims := ImageDims{Lines: 2, Samples: 2, Bands: 2}
	img := newTestImage(t, dims, BIP, tinyCubeData())

	it := img.Sample(3) // l=1,s=1
	var got []float32
	for {
		v, ok := it.Next()
		if !ok {
			break
		}
		got = append(got, v)
	}
	require.Equal(t, []float32{110, 111}, got)
}

func TestSampleSeqCount(t *testing.T) {
	dims := ImageDims{Lines: 2, Samples: 2, Bands: 2}
	img := newTestImage(t, dims, BIP, tinyCubeData())
	count := 0
	ss := img.Samples()
	for {
		_, ok := ss.Next()
		if !ok {
			break
		}
		count++
	}
	require.Equal(t, 4, count)
}

func TestChunkSeqExhaustsAllSamples(t *testing.T) {
	dims := ImageDims{Lines: 2, Samples: 2, Bands: 2}
	img := newTestImage(t, dims, BIP, tinyCubeData())

	old := MaxChunkBytes
	MaxChunkBytes = 8 // 1 sample (2 bands * 4 bytes) per chunk, forcing multiple chunks
	defer func() { MaxChunkBytes = old }()

	total := 0
	cs := img.SamplesChunked()
	for {
		b, err, ok := cs.Next()
		if !ok {
			break
		}
		require.NoError(t, err)
		total += b.Rows
	}
	require.Equal(t, 4, total)
}
