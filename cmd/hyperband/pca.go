package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/kjorgensen/hyperband"
)

func newPCACmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pca",
		Short: "Principal component analysis over a hyperspectral cube",
	}
	cmd.AddCommand(newPCASolveCmd())
	cmd.AddCommand(newPCARunCmd())
	return cmd
}

func addPCACommonFlags(cmd *cobra.Command, rangeMin, rangeMax *float64, standardized *bool) {
	cmd.Flags().Float64Var(rangeMin, "range-min", 0, "exclusive lower bound for masking; requires --range-max")
	cmd.Flags().Float64Var(rangeMax, "range-max", 0, "inclusive upper bound for masking; requires --range-min")
	cmd.Flags().BoolVar(standardized, "standardized", false, "accumulate covariance on standardized rather than raw-centered values")
}

func newPCASolveCmd() *cobra.Command {
	var inData, inHdr, outCSV string
	var rangeMin, rangeMax float64
	var standardized bool
	cmd := &cobra.Command{
		Use:   "solve",
		Short: "Compute mean, standard deviation, covariance and eigendecomposition, emitting CSV",
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
			if err := in.requireFloat32("pca solve"); err != nil {
				return err
			}

			opts := hyperband.PCAOptions{
				Standardized: standardized,
			}
			if cmd.Flags().Changed("range-min") || cmd.Flags().Changed("range-max") {
				opts.Range = &hyperband.ValueRange{Min: float32(rangeMin), Max: float32(rangeMax)}
			}

			sink := hyperband.NewChanProgressSink(64)
			opts.Progress = sink
			done := make(chan struct{})
			go drainProgress(sink, done)
			res, err := hyperband.Solve(context.Background(), in.img, opts)
			close(done)
			if err != nil {
				return fmt.Errorf("pca solve: %w", err)
			}

			log.Info().Int("bands", in.img.Index.Dims.Bands).Msg("pca solve complete")
			return writeSolveCSV(outCSV, res)
		},
	}
	cmd.Flags().StringVar(&inData, "in", "", "input data file path")
	cmd.Flags().StringVar(&inHdr, "in-header", "", "input header path (defaults to <in>.hdr)")
	cmd.Flags().StringVar(&outCSV, "out", "", "output CSV path")
	addPCACommonFlags(cmd, &rangeMin, &rangeMax, &standardized)
	cmd.MarkFlagRequired("in")
	cmd.MarkFlagRequired("out")
	return cmd
}

func newPCARunCmd() *cobra.Command {
	var inData, inHdr, outData, outHdr string
	var k int
	var rangeMin, rangeMax float64
	var standardized bool
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Project a cube onto its top K principal components",
		RunE: func(cmd *cobra.Command, args []string) error {
			backend, err := parseBackend(flagBackend)
			if err != nil {
				return err
			}
			if outHdr == "" {
				outHdr = outData + ".hdr"
			}
			if inHdr == "" {
				inHdr = inData + ".hdr"
			}
			in, err := openDataset(inData, inHdr, backend)
			if err != nil {
				return err
			}
			defer in.Close()
			if err := in.requireFloat32("pca run"); err != nil {
				return err
			}

			d := in.img.Index.Dims
			outDims := hyperband.ImageDims{Lines: d.Lines, Samples: d.Samples, Bands: k}
			out, err := createDataset(outData, outHdr, outDims, in.img.Index.Interleave, hyperband.DataFloat32, backend)
			if err != nil {
				return err
			}
			defer out.Close()

			opts := hyperband.PCAOptions{K: k, Standardized: standardized}
			if cmd.Flags().Changed("range-min") || cmd.Flags().Changed("range-max") {
				opts.Range = &hyperband.ValueRange{Min: float32(rangeMin), Max: float32(rangeMax)}
			}

			sink := hyperband.NewChanProgressSink(64)
			opts.Progress = sink
			done := make(chan struct{})
			go drainProgress(sink, done)
			_, err = hyperband.Run(context.Background(), in.img, out.img, opts)
			close(done)
			if err != nil {
				return fmt.Errorf("pca run: %w", err)
			}
			log.Info().Int("k", k).Msg("pca projection written")
			return nil
		},
	}
	cmd.Flags().StringVar(&inData, "in", "", "input data file path")
	cmd.Flags().StringVar(&inHdr, "in-header", "", "input header path (defaults to <in>.hdr)")
	cmd.Flags().StringVar(&outData, "out", "", "output data file path")
	cmd.Flags().StringVar(&outHdr, "out-header", "", "output header path (defaults to <out>.hdr)")
	cmd.Flags().IntVar(&k, "k", 1, "number of principal components to keep")
	addPCACommonFlags(cmd, &rangeMin, &rangeMax, &standardized)
	cmd.MarkFlagRequired("in")
	cmd.MarkFlagRequired("out")
	return cmd
}

// writeSolveCSV emits the eigenvalues as one header-ish row followed by the
// B x B eigenvector matrix, one row per band, one column per component —
// consumable by spreadsheets or a quick plotting script.
func writeSolveCSV(path string, res *hyperband.PCAResult) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	eigRow := make([]string, len(res.Eigenvalues)+1)
	eigRow[0] = "eigenvalue"
	for i, v := range res.Eigenvalues {
		eigRow[i+1] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	if err := w.Write(eigRow); err != nil {
		return err
	}

	B, _ := res.Eigenvectors.Dims()
	for r := 0; r < B; r++ {
		row := make([]string, B+1)
		row[0] = "band" + strconv.Itoa(r)
		for c := 0; c < B; c++ {
			row[c+1] = strconv.FormatFloat(res.Eigenvectors.At(r, c), 'g', -1, 64)
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return w.Error()
}
