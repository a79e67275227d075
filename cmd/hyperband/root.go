package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/kjorgensen/hyperband"
)

var (
	flagBackend    string
	flagChunkBytes int64
	flagLogLevel   string
	flagLogFile    string
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hyperband",
		Short: "Batch processing for large ENVI hyperspectral cubes",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogging()
		},
	}
	cmd.PersistentFlags().StringVar(&flagBackend, "backend", "mapped", "backing store: mapped or streamed")
	cmd.PersistentFlags().Int64Var(&flagChunkBytes, "chunk-bytes", hyperband.MaxChunkBytes, "streaming chunk size budget in bytes")
	cmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "log level: debug, info, warn, error")
	cmd.PersistentFlags().StringVar(&flagLogFile, "log-file", "", "write logs to this file (with rotation) instead of stderr")

	cmd.AddCommand(newConvertCmd())
	cmd.AddCommand(newCropCmd())
	cmd.AddCommand(newPCACmd())
	cmd.AddCommand(newColorCmd())
	return cmd
}

func setupLogging() error {
	hyperband.MaxChunkBytes = flagChunkBytes

	level, err := zerolog.ParseLevel(flagLogLevel)
	if err != nil {
		return fmt.Errorf("bad --log-level: %w", err)
	}
	zerolog.SetGlobalLevel(level)

	var w = os.Stderr
	if flagLogFile != "" {
		log.Logger = zerolog.New(&lumberjack.Logger{
			Filename:   flagLogFile,
			MaxSize:    50,
			MaxBackups: 3,
			MaxAge:     28,
		}).With().Timestamp().Logger()
		return nil
	}
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}).With().Timestamp().Logger()
	return nil
}

// drainProgress reads from sink's channel and drives a terminal progress
// bar until done is closed. The core never blocks on this goroutine running
// slow (progress.go's ChanProgressSink drops the oldest event rather than
// backpressure the producer), so a stalled terminal never stalls a run.
func drainProgress(sink *hyperband.ChanProgressSink, done <-chan struct{}) {
	var bar *progressbar.ProgressBar
	for {
		select {
		case ev := <-sink.Events:
			switch ev.Kind() {
			case hyperband.ProgressStarted:
				bar = progressbar.NewOptions64(ev.Total(),
					progressbar.OptionSetDescription(ev.Stage()),
					progressbar.OptionSetWriter(os.Stderr),
					progressbar.OptionClearOnFinish(),
				)
			case hyperband.ProgressIncremented:
				if bar != nil {
					_ = bar.Add64(ev.N())
				}
			case hyperband.ProgressMessage:
				if bar != nil {
					bar.Describe(ev.Msg())
				}
			case hyperband.ProgressFinished:
				if bar != nil {
					_ = bar.Finish()
				}
			}
		case <-done:
			return
		}
	}
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Error().Err(err).Msg("hyperband failed")
		os.Exit(exitCodeFor(err))
	}
}

// exitCodeFor maps a hyperband.Error's Kind to a distinct process exit
// code, so scripts invoking this CLI can branch on failure mode without
// parsing stderr.
func exitCodeFor(err error) int {
	var herr *hyperband.Error
	if errors.As(err, &herr) {
		switch herr.Kind {
		case hyperband.KindInvalidHeader:
			return 2
		case hyperband.KindHeaderMismatch:
			return 3
		case hyperband.KindIO:
			return 4
		case hyperband.KindTruncatedFile:
			return 5
		case hyperband.KindDimsMismatch:
			return 6
		case hyperband.KindUnsupported:
			return 7
		case hyperband.KindNumericFailure:
			return 8
		case hyperband.KindCancelled:
			return 130
		}
	}
	return 1
}
