package main

import (
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"github.com/kjorgensen/hyperband"
)

var solidSchemes = map[string]hyperband.ColorScheme{
	"red":    hyperband.SchemeRed,
	"green":  hyperband.SchemeGreen,
	"blue":   hyperband.SchemeBlue,
	"purple": hyperband.SchemePurple,
	"yellow": hyperband.SchemeYellow,
	"teal":   hyperband.SchemeTeal,
	"gray":   hyperband.SchemeGray,
}

func newColorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "color",
		Short: "Render a cube to an 8-bit raster image",
	}
	cmd.AddCommand(newColorSoloCmd())
	cmd.AddCommand(newColorRGBCmd())
	cmd.AddCommand(newColorMaskCmd())
	return cmd
}

func newColorSoloCmd() *cobra.Command {
	var inData, inHdr, out, scheme string
	var band int
	var min, max float64
	cmd := &cobra.Command{
		Use:   "solo",
		Short: "Render one band through a single-colour or grayscale scheme",
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, ok := solidSchemes[strings.ToLower(scheme)]
			if !ok {
				return fmt.Errorf("unknown scheme %q (want one of red,green,blue,purple,yellow,teal,gray)", scheme)
			}
			backend, err := parseBackend(flagBackend)
			if err != nil {
				return err
			}
			if inHdr == "" {
				inHdr = inData + ".hdr"
			}
			in, err := openDataset(inData, inHdr, backend)
			if err != nil {
				return err
			}
			defer in.Close()
			if err := in.requireFloat32("color solo"); err != nil {
				return err
			}

			img, err := hyperband.Render(in.img, hyperband.RenderOptions{
				Scheme:   sc,
				Bands:    []int{band},
				Min:      []float32{float32(min)},
				Max:      []float32{float32(max)},
				Parallel: true,
			})
			if err != nil {
				return err
			}
			log.Info().Str("scheme", scheme).Int("band", band).Msg("rendered")
			return writeRasterImage(out, img)
		},
	}
	cmd.Flags().StringVar(&inData, "in", "", "input data file path")
	cmd.Flags().StringVar(&inHdr, "in-header", "", "input header path (defaults to <in>.hdr)")
	cmd.Flags().StringVar(&out, "out", "", "output image path (.png, .jpg, .tif, or .bmp)")
	cmd.Flags().StringVar(&scheme, "scheme", "gray", "red, green, blue, purple, yellow, teal, or gray")
	cmd.Flags().IntVar(&band, "band", 0, "band index to render")
	cmd.Flags().Float64Var(&min, "min", 0, "value mapped to 0")
	cmd.Flags().Float64Var(&max, "max", 1, "value mapped to 255")
	cmd.MarkFlagRequired("in")
	cmd.MarkFlagRequired("out")
	return cmd
}

func newColorRGBCmd() *cobra.Command {
	var inData, inHdr, out string
	var bands [3]int
	var mins, maxs [3]float64
	cmd := &cobra.Command{
		Use:   "rgb",
		Short: "Render three bands as an RGB composite",
		RunE: func(cmd *cobra.Command, args []string) error {
			backend, err := parseBackend(flagBackend)
			if err != nil {
				return err
			}
			if inHdr == "" {
				inHdr = inData + ".hdr"
			}
			in, err := openDataset(inData, inHdr, backend)
			if err != nil {
				return err
			}
			defer in.Close()
			if err := in.requireFloat32("color rgb"); err != nil {
				return err
			}

			img, err := hyperband.Render(in.img, hyperband.RenderOptions{
				Scheme:   hyperband.SchemeRGB,
				Bands:    bands[:],
				Min:      []float32{float32(mins[0]), float32(mins[1]), float32(mins[2])},
				Max:      []float32{float32(maxs[0]), float32(maxs[1]), float32(maxs[2])},
				Parallel: true,
			})
			if err != nil {
				return err
			}
			log.Info().Ints("bands", bands[:]).Msg("rendered rgb composite")
			return writeRasterImage(out, img)
		},
	}
	cmd.Flags().StringVar(&inData, "in", "", "input data file path")
	cmd.Flags().StringVar(&inHdr, "in-header", "", "input header path (defaults to <in>.hdr)")
	cmd.Flags().StringVar(&out, "out", "", "output image path (.png, .jpg, .tif, or .bmp)")
	cmd.Flags().IntVar(&bands[0], "r-band", 0, "band index for red")
	cmd.Flags().IntVar(&bands[1], "g-band", 1, "band index for green")
	cmd.Flags().IntVar(&bands[2], "b-band", 2, "band index for blue")
	cmd.Flags().Float64Var(&mins[0], "r-min", 0, "red channel min")
	cmd.Flags().Float64Var(&maxs[0], "r-max", 1, "red channel max")
	cmd.Flags().Float64Var(&mins[1], "g-min", 0, "green channel min")
	cmd.Flags().Float64Var(&maxs[1], "g-max", 1, "green channel max")
	cmd.Flags().Float64Var(&mins[2], "b-min", 0, "blue channel min")
	cmd.Flags().Float64Var(&maxs[2], "b-max", 1, "blue channel max")
	cmd.MarkFlagRequired("in")
	cmd.MarkFlagRequired("out")
	return cmd
}

func newColorMaskCmd() *cobra.Command {
	var inData, inHdr, out string
	var threshold float64
	cmd := &cobra.Command{
		Use:   "mask",
		Short: "Render a binary mask of pixels whose band sum exceeds a threshold",
		RunE: func(cmd *cobra.Command, args []string) error {
			backend, err := parseBackend(flagBackend)
			if err != nil {
				return err
			}
			if inHdr == "" {
				inHdr = inData + ".hdr"
			}
			in, err := openDataset(inData, inHdr, backend)
			if err != nil {
				return err
			}
			defer in.Close()
			if err := in.requireFloat32("color mask"); err != nil {
				return err
			}

			img, err := hyperband.Render(in.img, hyperband.RenderOptions{
				Scheme: hyperband.SchemeMask,
				Bands:  []int{0},
				Min:    []float32{float32(threshold)},
			})
			if err != nil {
				return err
			}
			return writeRasterImage(out, img)
		},
	}
	cmd.Flags().StringVar(&inData, "in", "", "input data file path")
	cmd.Flags().StringVar(&inHdr, "in-header", "", "input header path (defaults to <in>.hdr)")
	cmd.Flags().StringVar(&out, "out", "", "output image path (.png, .jpg, .tif, or .bmp)")
	cmd.Flags().Float64Var(&threshold, "threshold", 0, "band-sum threshold at or below which a pixel is masked out")
	cmd.MarkFlagRequired("in")
	cmd.MarkFlagRequired("out")
	return cmd
}

// writeRasterImage picks an encoder by out's extension, the same dispatch
// style the teacher's main.go used for image.Decode's registered formats.
func writeRasterImage(out string, img image.Image) error {
	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("creating %s: %w", out, err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(out)) {
	case ".png":
		return png.Encode(f, img)
	case ".jpg", ".jpeg":
		return jpeg.Encode(f, img, &jpeg.Options{Quality: 90})
	case ".tif", ".tiff":
		return tiff.Encode(f, img, nil)
	case ".bmp":
		return bmp.Encode(f, img)
	default:
		return fmt.Errorf("unsupported output extension %q (want .png, .jpg, .tif, or .bmp)", filepath.Ext(out))
	}
}
