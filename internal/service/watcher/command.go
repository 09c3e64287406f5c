package watcher

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/oshokin/drowsiness-alarm/internal/actuator"
	"github.com/oshokin/drowsiness-alarm/internal/actuator/logcue"
	"github.com/oshokin/drowsiness-alarm/internal/actuator/sound"
	"github.com/oshokin/drowsiness-alarm/internal/config"
	"github.com/oshokin/drowsiness-alarm/internal/domain/drowsiness"
	"github.com/oshokin/drowsiness-alarm/internal/logger"
	pb "github.com/oshokin/drowsiness-alarm/internal/pb/v1"
	"github.com/oshokin/drowsiness-alarm/internal/service/common"
	"github.com/oshokin/drowsiness-alarm/internal/version"
)

// Options controls the watcher polling behavior and configuration.
type Options struct {
	// ConfigPath specifies the path to the settings YAML file.
	ConfigPath string
	// ServerAddress provides an optional gRPC server address override.
	ServerAddress string
	// PollInterval overrides the configured polling interval.
	PollInterval time.Duration
	// Verbose enables debug logging regardless of the configured level.
	Verbose bool
}

// cueSubject names the single local cue driven by the watcher.
const cueSubject = "relay"

// Lister fetches the relayed alerts.
type Lister interface {
	ListAlerts(ctx context.Context) ([]*pb.AlertState, error)
}

// Run polls the relay and drives the local cue until the context is canceled.
func Run(ctx context.Context, opts *Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	if err = logger.Init(cfg.Log.LoggerOptions()); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	if opts.Verbose {
		logger.Verbose()
	}

	ctx = logger.WithName(ctx, "alert-watcher")

	logger.InfoKV(ctx, "Starting", version.KV()...)

	defer logger.Sync()

	pollInterval := cfg.Relay.PollInterval
	if opts.PollInterval > 0 {
		pollInterval = opts.PollInterval
	}

	// Command line argument overrides config.
	serverAddress := cfg.Relay.ServerAddress
	if opts.ServerAddress != "" {
		serverAddress = opts.ServerAddress
	}

	cue := actuator.NewFanout()
	cue.Add("log", logcue.New())

	if cfg.Sound.File != "" {
		player, err := sound.New(&sound.Options{File: cfg.Sound.File, Command: cfg.Sound.Command})
		if err != nil {
			return fmt.Errorf("sound actuator: %w", err)
		}

		defer func() {
			if closeErr := player.Close(context.WithoutCancel(ctx)); closeErr != nil {
				logger.ErrorKV(ctx, "Failed to close sound player", "error", closeErr)
			}
		}()

		cue.Add("sound", player)
	}

	client, err := common.Dial(ctx, serverAddress, common.WithCallTimeout(cfg.Relay.Timeout))
	if err != nil {
		return fmt.Errorf("dial server: %w", err)
	}

	defer func() {
		_ = client.Close()
	}()

	logger.InfoKV(ctx, "Polling alert relay", "server_address", serverAddress, "interval", pollInterval.String())

	return newWatcher(client, cue).poll(ctx, pollInterval)
}

// watcher mirrors the relay's alerts onto a local actuator.
type watcher struct {
	client   Lister
	actuator actuator.Actuator
	// active is set while the local cue is on.
	active bool
}

func newWatcher(client Lister, act actuator.Actuator) *watcher {
	return &watcher{
		client:   client,
		actuator: act,
	}
}

// poll checks the relay on every tick until ctx is done.
func (w *watcher) poll(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info(ctx, "Context canceled, exiting")
			w.release(context.WithoutCancel(ctx))

			return nil
		case <-ticker.C:
			if err := w.check(ctx); err != nil {
				logger.ErrorKV(ctx, "Check alerts failed", "error", err)
			}
		}
	}
}

// check lists alerts and starts or stops the local cue accordingly.
func (w *watcher) check(ctx context.Context) error {
	alerts, err := w.client.ListAlerts(ctx)
	if err != nil {
		return err
	}

	var alarming []string

	for _, state := range alerts {
		if state.Active {
			alarming = append(alarming, state.SubjectID)
		}
	}

	logger.DebugKV(ctx, "Alerts polled", "subjects", len(alerts), "alarming", len(alarming))

	cue := drowsiness.Cue{
		SubjectID: cueSubject,
		At:        time.Now(),
	}

	switch {
	case len(alarming) > 0 && !w.active:
		logger.WarnKV(ctx, "Relayed drowsiness alert", "subjects", strings.Join(alarming, ","))

		w.active = true

		return w.actuator.StartCue(ctx, cue)
	case len(alarming) == 0 && w.active:
		logger.Info(ctx, "Relayed alerts cleared")

		w.active = false

		return w.actuator.StopCue(ctx, cue)
	default:
		return nil
	}
}

// release stops the local cue if it is on.
func (w *watcher) release(ctx context.Context) {
	if !w.active {
		return
	}

	w.active = false

	if err := w.actuator.StopCue(ctx, drowsiness.Cue{SubjectID: cueSubject, At: time.Now()}); err != nil {
		logger.ErrorKV(ctx, "Failed to stop cue", "error", err)
	}
}
