package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/kjorgensen/hyperband"
)

func newCropCmd() *cobra.Command {
	var inData, inHdr, outData, outHdr string
	var rowStart, rowEnd, colStart, colEnd int
	cmd := &cobra.Command{
		Use:   "crop",
		Short: "Extract a rectangular line/sample sub-region, keeping every band",
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

			d := in.img.Index.Dims
			rows := &hyperband.RowRange{Start: rowStart, End: rowEnd}
			if rowEnd <= 0 {
				rows.End = d.Lines
			}
			cols := &hyperband.RowRange{Start: colStart, End: colEnd}
			if colEnd <= 0 {
				cols.End = d.Samples
			}

			outDims := hyperband.ImageDims{Lines: rows.End - rows.Start, Samples: cols.End - cols.Start, Bands: d.Bands}
			out, err := createDataset(outData, outHdr, outDims, in.img.Index.Interleave, in.dataType, backend)
			if err != nil {
				return err
			}
			defer out.Close()

			log.Info().Int("rows", outDims.Lines).Int("cols", outDims.Samples).Msg("cropping")

			sink := hyperband.NewChanProgressSink(64)
			done := make(chan struct{})
			go drainProgress(sink, done)
			if in.dataType == hyperband.DataFloat32 {
				err = hyperband.Crop(context.Background(), in.img, out.img, rows, cols, sink)
			} else {
				err = hyperband.CropRaw(context.Background(), in.img, out.img, rows, cols, sink)
			}
			close(done)
			if err != nil {
				return fmt.Errorf("crop: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&inData, "in", "", "input data file path")
	cmd.Flags().StringVar(&inHdr, "in-header", "", "input header path (defaults to <in>.hdr)")
	cmd.Flags().StringVar(&outData, "out", "", "output data file path")
	cmd.Flags().StringVar(&outHdr, "out-header", "", "output header path (defaults to <out>.hdr)")
	cmd.Flags().IntVar(&rowStart, "row-start", 0, "first kept line (inclusive)")
	cmd.Flags().IntVar(&rowEnd, "row-end", 0, "last kept line (exclusive); 0 means image height")
	cmd.Flags().IntVar(&colStart, "col-start", 0, "first kept sample (inclusive)")
	cmd.Flags().IntVar(&colEnd, "col-end", 0, "last kept sample (exclusive); 0 means image width")
	cmd.MarkFlagRequired("in")
	cmd.MarkFlagRequired("out")
	return cmd
}
