package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/drowsiness-alarm/internal/service/replay"
)

var (
	// realtime paces frames by their timestamps.
	realtime bool
	// outputDir receives annotated frame images.
	outputDir string

	// replayCmd feeds a recorded trace through the monitor.
	replayCmd = &cobra.Command{
		Use:   "replay <trace>",
		Short: "Replay a recorded landmark trace.",
		Long: `Reads a YAML trace of face landmarks and runs every frame through the monitor.

Frames are processed as fast as possible unless --realtime is set, in which
case the gaps between frame timestamps are respected. With --output-dir every
frame that references an image is written there with the warning marks drawn.`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			return replay.Run(ctx, &replay.Options{
				ConfigPath: configPath,
				TracePath:  args[0],
				Realtime:   realtime,
				OutputDir:  outputDir,
				Verbose:    verbose,
			})
		},
	}
)

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	replayCmd.Flags().BoolVar(&realtime, "realtime", false, "pace frames by their timestamps")
	replayCmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "write annotated frame images to this directory")
}
