package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/drowsiness-alarm/internal/config"
	"github.com/oshokin/drowsiness-alarm/internal/service/relay"
	"github.com/oshokin/drowsiness-alarm/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string
	// stateFile path where alert states are persisted.
	stateFile string
	// verbose enables debug logging.
	verbose bool

	// rootCmd represents the base command for running the gRPC relay.
	rootCmd = &cobra.Command{
		Use:   "alert-relay [listen-address]",
		Short: "Run the alert relay gRPC server.",
		Long: `Starts the gRPC alert relay that collects drowsiness alerts from monitors.

Monitors push the alert state of every tracked subject; watchers list them.
Only the port from relay.server_addr config is used for listening (e.g., :7070).
Listen address can be provided as argument to override config (e.g., :9090, 0.0.0.0:7070).
Alert states are persisted to a JSON file, or to Redis when relay.redis_addr is set.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			// Use listen address argument if provided, otherwise rely on config.
			var listenAddress string
			if len(args) > 0 {
				listenAddress = args[0]
			}

			options := &relay.Options{
				ConfigPath:    configPath,
				ListenAddress: listenAddress,
				StateFile:     stateFile,
				Verbose:       verbose,
			}

			return relay.Run(ctx, options)
		},
	}
)

// Execute runs the alert-relay CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.Flags().StringVarP(&stateFile, "state-file", "s", "", "path to persist alert states (overrides config)")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}
