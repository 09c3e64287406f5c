package replay

import (
	"context"
	"fmt"

	"github.com/oshokin/drowsiness-alarm/internal/actuator"
	"github.com/oshokin/drowsiness-alarm/internal/actuator/logcue"
	"github.com/oshokin/drowsiness-alarm/internal/actuator/mqtt"
	relayactuator "github.com/oshokin/drowsiness-alarm/internal/actuator/relay"
	"github.com/oshokin/drowsiness-alarm/internal/actuator/sound"
	"github.com/oshokin/drowsiness-alarm/internal/config"
	"github.com/oshokin/drowsiness-alarm/internal/logger"
	"github.com/oshokin/drowsiness-alarm/internal/overlay"
	"github.com/oshokin/drowsiness-alarm/internal/service/common"
	"github.com/oshokin/drowsiness-alarm/internal/service/monitor"
	"github.com/oshokin/drowsiness-alarm/internal/trace"
	"github.com/oshokin/drowsiness-alarm/internal/version"
)

// Options controls a replay run.
type Options struct {
	// ConfigPath specifies the path to the settings YAML file.
	ConfigPath string
	// TracePath is the recorded trace to replay.
	TracePath string
	// Realtime paces frames by their capture timestamps.
	Realtime bool
	// OutputDir receives annotated images when set.
	OutputDir string
	// Verbose enables debug logging regardless of the configured level.
	Verbose bool
}

// Run loads settings and the trace, wires the actuators and replays the trace.
func Run(ctx context.Context, opts *Options) error {
	settings, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	if err = logger.Init(settings.Log.LoggerOptions()); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	if opts.Verbose {
		logger.Verbose()
	}

	ctx = logger.WithName(ctx, "drowsy-monitor")

	logger.InfoKV(ctx, "Starting", version.KV()...)

	defer logger.Sync()

	source, err := trace.Load(opts.TracePath)
	if err != nil {
		return fmt.Errorf("load trace: %w", err)
	}

	var renderer Renderer

	if opts.OutputDir != "" {
		r, err := overlay.NewRenderer(opts.OutputDir)
		if err != nil {
			return err
		}

		renderer = r
	}

	fanout, closeActuators, err := buildActuators(ctx, settings)
	if err != nil {
		return err
	}

	defer closeActuators()

	mon := monitor.New(monitor.NewOptions(&settings.Detection), fanout)

	logger.InfoKV(ctx, "Replaying trace",
		"trace", opts.TracePath,
		"frames", source.Len(),
		"actuators", fanout.Len(),
		"realtime", opts.Realtime,
		"ear_threshold", settings.Detection.EARThreshold,
		"consec_frames", settings.Detection.ConsecFrames,
		"alarm_delay", settings.Detection.Delay().String(),
		"cool_off", settings.Detection.CoolOff.String())

	summary, err := Replay(ctx, source, mon, renderer, opts.Realtime)

	// Never leave a cue running after the trace ends.
	mon.Close(context.WithoutCancel(ctx))

	if err != nil {
		return fmt.Errorf("replay: %w", err)
	}

	logger.InfoKV(ctx, "Replay finished",
		"frames", summary.Frames,
		"faces", summary.Faces,
		"indeterminate", summary.Indeterminate,
		"alerts", summary.Alerts,
		"rendered", summary.Rendered)

	return nil
}

// buildActuators wires every configured actuator into a fanout.
// The returned function releases their resources.
func buildActuators(ctx context.Context, settings *config.Config) (*actuator.Fanout, func(), error) {
	var (
		fanout  = actuator.NewFanout()
		closers []func()
	)

	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	fanout.Add("log", logcue.New())

	if settings.Sound.File != "" {
		player, err := sound.New(&sound.Options{
			File:    settings.Sound.File,
			Command: settings.Sound.Command,
		})
		if err != nil {
			closeAll()

			return nil, nil, fmt.Errorf("sound actuator: %w", err)
		}

		fanout.Add("sound", player)
		closers = append(closers, func() {
			if err := player.Close(context.WithoutCancel(ctx)); err != nil {
				logger.ErrorKV(ctx, "Failed to close sound player", "error", err)
			}
		})
	}

	source, err := common.DetectSource()
	if err != nil {
		closeAll()

		return nil, nil, fmt.Errorf("detect source: %w", err)
	}

	if settings.MQTT.Broker != "" {
		publisher, err := mqtt.Connect(ctx, &mqtt.Options{
			Broker:   settings.MQTT.Broker,
			Topic:    settings.MQTT.Topic,
			Username: settings.MQTT.Username,
			Password: settings.MQTT.Password,
			QoS:      settings.MQTT.QoS,
			Timeout:  settings.MQTT.Timeout,
			Hostname: source.GetHostname(),
		})
		if err != nil {
			closeAll()

			return nil, nil, fmt.Errorf("mqtt actuator: %w", err)
		}

		fanout.Add("mqtt", publisher)
		closers = append(closers, publisher.Close)
	}

	if settings.Relay.PushCues {
		client, err := common.Dial(ctx, settings.Relay.ServerAddress, common.WithCallTimeout(settings.Relay.Timeout))
		if err != nil {
			closeAll()

			return nil, nil, fmt.Errorf("relay actuator: %w", err)
		}

		fanout.Add("relay", relayactuator.New(client, source))
		closers = append(closers, func() {
			_ = client.Close()
		})
	}

	return fanout, closeAll, nil
}
