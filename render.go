package hyperband

import (
	"image"
	"image/color"
	"math"
	"runtime"
	"sync"
)

// ColorScheme is the closed set of colour renderings spec.md §3/§4.7
// supports.
type ColorScheme int

const (
	SchemeRed ColorScheme = iota
	SchemeGreen
	SchemeBlue
	SchemePurple
	SchemeYellow
	SchemeTeal
	SchemeGray
	SchemeRGB
	SchemeMask
)

// normify maps v into [0,1] given the (min,max) range, clamping outside it.
func normify(v, min, max float32) float32 {
	if max == min {
		return 0
	}
	n := (v - min) / (max - min)
	if n < 0 {
		return 0
	}
	if n > 1 {
		return 1
	}
	return n
}

func to255(n float32) uint8 {
	return uint8(math.Floor(float64(n) * 255))
}

// soloTint is the RGB component triple table for the six single-colour
// schemes (spec.md §4.7): pri is the tinted channel(s), alt is every other
// channel.
var soloTint = map[ColorScheme][3]bool{
	// true marks a channel that takes `pri`; false takes `alt`.
	SchemeRed:    {true, false, false},
	SchemeGreen:  {false, true, false},
	SchemeBlue:   {false, false, true},
	SchemePurple: {true, false, true},
	SchemeYellow: {true, true, false},
	SchemeTeal:   {false, true, true},
}

// RenderOptions configures a single render pass.
type RenderOptions struct {
	Scheme ColorScheme
	// Bands/Min/Max hold one entry for Gray/Mask/solid-colour schemes and
	// three for RGB.
	Bands    []int
	Min, Max []float32
	// Parallel enables per-line-range goroutine fan-out; output is
	// identical either way since lines write disjoint pixels.
	Parallel bool
}

// Render produces an S x L 8-bit image from img according to opts.
func Render(img *Image, opts RenderOptions) (image.Image, error) {
	d := img.Index.Dims
	switch opts.Scheme {
	case SchemeGray, SchemeMask, SchemeRed, SchemeGreen, SchemeBlue, SchemePurple, SchemeYellow, SchemeTeal:
		if len(opts.Bands) < 1 {
			return nil, newError(KindInvalidHeader, "render scheme requires one band index", nil)
		}
	case SchemeRGB:
		if len(opts.Bands) != 3 || len(opts.Min) != 3 || len(opts.Max) != 3 {
			return nil, newError(KindInvalidHeader, "rgb scheme requires three bands and three (min,max) pairs", nil)
		}
	}

	out := image.NewRGBA(image.Rect(0, 0, d.Samples, d.Lines))
	renderLines := func(lStart, lEnd int) {
		for l := lStart; l < lEnd; l++ {
			for s := 0; s < d.Samples; s++ {
				var c color.RGBA
				switch opts.Scheme {
				case SchemeGray:
					v := normify(img.At(l, s, opts.Bands[0]), opts.Min[0], opts.Max[0])
					g := to255(v)
					c = color.RGBA{g, g, g, 255}
				case SchemeMask:
					sum := float32(0)
					for b := 0; b < d.Bands; b++ {
						sum += img.At(l, s, b)
					}
					if sum <= opts.Min[0] {
						c = color.RGBA{0, 0, 0, 255}
					} else {
						c = color.RGBA{255, 255, 255, 255}
					}
				case SchemeRGB:
					r := to255(normify(img.At(l, s, opts.Bands[0]), opts.Min[0], opts.Max[0]))
					g := to255(normify(img.At(l, s, opts.Bands[1]), opts.Min[1], opts.Max[1]))
					b := to255(normify(img.At(l, s, opts.Bands[2]), opts.Min[2], opts.Max[2]))
					c = color.RGBA{r, g, b, 255}
				default: // solid-colour schemes
					v := normify(img.At(l, s, opts.Bands[0]), opts.Min[0], opts.Max[0])
					pri := to255(float32(math.Sqrt(float64(v))))
					alt := to255(v)
					tint := soloTint[opts.Scheme]
					pick := func(isPri bool) uint8 {
						if isPri {
							return pri
						}
						return alt
					}
					c = color.RGBA{pick(tint[0]), pick(tint[1]), pick(tint[2]), 255}
				}
				out.SetRGBA(s, l, c)
			}
		}
	}

	if !opts.Parallel || d.Lines < 2 {
		renderLines(0, d.Lines)
		return out, nil
	}

	workers := runtime.GOMAXPROCS(0)
	if workers > d.Lines {
		workers = d.Lines
	}
	var wg sync.WaitGroup
	rows := d.Lines / workers
	for w := 0; w < workers; w++ {
		lStart := w * rows
		lEnd := lStart + rows
		if w == workers-1 {
			lEnd = d.Lines
		}
		wg.Add(1)
		go func(a, b int) {
			defer wg.Done()
			renderLines(a, b)
		}(lStart, lEnd)
	}
	wg.Wait()
	return out, nil
}
