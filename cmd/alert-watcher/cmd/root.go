package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/oshokin/drowsiness-alarm/internal/config"
	"github.com/oshokin/drowsiness-alarm/internal/service/watcher"
	"github.com/oshokin/drowsiness-alarm/internal/version"
)

var (
	// configPath stores the path to the configuration YAML file.
	configPath string
	// pollInterval overrides the configured polling interval.
	pollInterval time.Duration
	// verbose enables debug logging.
	verbose bool

	// rootCmd represents the base command for polling relayed alerts.
	rootCmd = &cobra.Command{
		Use:   "alert-watcher [server-address]",
		Short: "Sound a local alarm while any monitored subject is drowsy.",
		Long: `Background service that mirrors the alert relay onto this machine.

Polls the relay at a fixed interval (5 seconds by default). While any subject
is alarming the configured sound is played, and it stops once all alerts clear.
Server address can be provided as argument or loaded from configuration file.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			// Use server address argument if provided, otherwise rely on config.
			var serverAddress string
			if len(args) > 0 {
				serverAddress = args[0]
			}

			return watcher.Run(ctx, &watcher.Options{
				ConfigPath:    configPath,
				ServerAddress: serverAddress,
				PollInterval:  pollInterval,
				Verbose:       verbose,
			})
		},
	}
)

// Execute runs the alert-watcher CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.Flags().DurationVarP(&pollInterval, "interval", "i", 0, "polling interval (overrides config)")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}
