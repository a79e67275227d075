package hyperband

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormifyClamps(t *testing.T) {
	require.Equal(t, float32(0), normify(-5, 0, 10))
	require.Equal(t, float32(1), normify(15, 0, 10))
	require.InDelta(t, 0.5, normify(5, 0, 10), 1e-6)
	require.Equal(t, float32(0), normify(5, 10, 10))
}

func TestRenderGrayScheme(t *testing.T) {
	dims := ImageDims{Lines: 2, Samples: 2, Bands: 1}
	data := []float32{0, 5, 10, 15}
	img := newTestImage(t, dims, BIP, data)

	out, err := Render(img, RenderOptions{
		Scheme: SchemeGray,
		Bands:  []int{0},
		Min:    []float32{0},
		Max:    []float32{15},
	})
	require.NoError(t, err)
	require.Equal(t, 2, out.Bounds().Dx())
	require.Equal(t, 2, out.Bounds().Dy())

	r, g, b, _ := out.At(0, 0).RGBA()
	require.Equal(t, r, g)
	require.Equal(t, g, b)
}

func TestRenderRGBRequiresThreeBands(t *testing.T) {
	dims := ImageDims{Lines: 1, Samples: 1, Bands: 3}
	img := newTestImage(t, dims, BIP, []float32{1, 2, 3})

	_, err := Render(img, RenderOptions{Scheme: SchemeRGB, Bands: []int{0, 1}})
	require.Error(t, err)
}

func TestRenderSolidColourScenario(t *testing.T) {
	dims := ImageDims{Lines: 1, Samples: 2, Bands: 1}
	data := []float32{0, 1}
	img := newTestImage(t, dims, BIP, data)

	out, err := Render(img, RenderOptions{
		Scheme: SchemeRed,
		Bands:  []int{0},
		Min:    []float32{0},
		Max:    []float32{1},
	})
	require.NoError(t, err)

	c0 := out.At(0, 0).(color.RGBA)
	c1 := out.At(1, 0).(color.RGBA)
	require.Equal(t, uint8(0), c0.R)
	require.Equal(t, uint8(0), c0.G)
	require.Equal(t, uint8(0), c0.B)
	require.Equal(t, uint8(255), c1.R)
	require.Equal(t, uint8(255), c1.G)
	require.Equal(t, uint8(255), c1.B)
}

// TestRenderSolidColourMidpoint pins down the pri=sqrt(v)*255 vs alt=v*255
// split at v=0.5, where the two diverge (180 vs 127) — the 0/1 endpoints
// above can't catch a pri/alt swap since sqrt(0)=0 and sqrt(1)=1.
func TestRenderSolidColourMidpoint(t *testing.T) {
	dims := ImageDims{Lines: 1, Samples: 1, Bands: 1}
	img := newTestImage(t, dims, BIP, []float32{0.5})

	out, err := Render(img, RenderOptions{
		Scheme: SchemeRed,
		Bands:  []int{0},
		Min:    []float32{0},
		Max:    []float32{1},
	})
	require.NoError(t, err)

	c := out.At(0, 0).(color.RGBA)
	require.Equal(t, uint8(180), c.R)
	require.Equal(t, uint8(127), c.G)
	require.Equal(t, uint8(127), c.B)
}

func TestRenderMaskScheme(t *testing.T) {
	dims := ImageDims{Lines: 1, Samples: 2, Bands: 2}
	data := []float32{0, 0, 10, 10}
	img := newTestImage(t, dims, BIP, data)

	out, err := Render(img, RenderOptions{
		Scheme: SchemeMask,
		Bands:  []int{0},
		Min:    []float32{5},
	})
	require.NoError(t, err)
	black := out.At(0, 0).(color.RGBA)
	white := out.At(1, 0).(color.RGBA)
	require.Equal(t, uint8(0), black.R)
	require.Equal(t, uint8(255), white.R)
}

func TestRenderParallelMatchesSerial(t *testing.T) {
	dims := ImageDims{Lines: 8, Samples: 8, Bands: 1}
	data := make([]float32, 64)
	for i := range data {
		data[i] = float32(i)
	}
	img := newTestImage(t, dims, BIP, data)

	opts := RenderOptions{Scheme: SchemeGray, Bands: []int{0}, Min: []float32{0}, Max: []float32{63}}
	serial, err := Render(img, opts)
	require.NoError(t, err)
	opts.Parallel = true
	parallel, err := Render(img, opts)
	require.NoError(t, err)

	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			require.Equal(t, serial.At(x, y), parallel.At(x, y))
		}
	}
}
