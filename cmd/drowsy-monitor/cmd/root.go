package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/oshokin/drowsiness-alarm/internal/config"
	"github.com/oshokin/drowsiness-alarm/internal/version"
)

var (
	// configPath stores the path to the configuration YAML file.
	configPath string
	// verbose enables debug logging.
	verbose bool

	// rootCmd represents the base command of the drowsiness monitor.
	rootCmd = &cobra.Command{
		Use:   "drowsy-monitor",
		Short: "Detect drowsiness from eye landmarks and raise alerts.",
		Long: `Turns per-frame eye landmarks into a debounced drowsiness alert.

Every detected face is tracked on its own: the eye aspect ratio is smoothed,
an alert starts after the eyes stay closed for the configured number of frames
and alarm delay, and stops as soon as they open again. Alerts are written to the
log and, when configured, played as a sound, published over MQTT and pushed to
the alert relay.`,
		SilenceUsage: true,
	}
)

// Execute runs the drowsy-monitor CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.PersistentFlags().
		StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(replayCmd)
}
