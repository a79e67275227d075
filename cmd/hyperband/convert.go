package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/kjorgensen/hyperband"
)

func newConvertCmd() *cobra.Command {
	var inData, inHdr, outData, outHdr, outInterleave string
	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Rewrite an ENVI cube under a different interleave",
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
			iv, err := parseInterleave(outInterleave)
			if err != nil {
				return err
			}

			in, err := openDataset(inData, inHdr, backend)
			if err != nil {
				return err
			}
			defer in.Close()

			out, err := createDataset(outData, outHdr, in.img.Index.Dims, iv, in.dataType, backend)
			if err != nil {
				return err
			}
			defer out.Close()

			log.Info().Str("from", in.img.Index.Interleave.String()).Str("to", iv.String()).Int("dataType", int(in.dataType)).Msg("converting")

			sink := hyperband.NewChanProgressSink(64)
			done := make(chan struct{})
			go drainProgress(sink, done)
			if in.dataType == hyperband.DataFloat32 {
				err = hyperband.Convert(context.Background(), in.img, out.img, sink)
			} else {
				err = hyperband.ConvertRaw(context.Background(), in.img, out.img, sink)
			}
			close(done)
			if err != nil {
				return fmt.Errorf("convert: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&inData, "in", "", "input data file path")
	cmd.Flags().StringVar(&inHdr, "in-header", "", "input header path (defaults to <in>.hdr)")
	cmd.Flags().StringVar(&outData, "out", "", "output data file path")
	cmd.Flags().StringVar(&outHdr, "out-header", "", "output header path (defaults to <out>.hdr)")
	cmd.Flags().StringVar(&outInterleave, "interleave", "bip", "output interleave: bip, bil, or bsq")
	cmd.MarkFlagRequired("in")
	cmd.MarkFlagRequired("out")
	return cmd
}
