package relay

import (
	"context"
	"errors"
	"fmt"
	"net"

	"google.golang.org/grpc"

	api "github.com/oshokin/drowsiness-alarm/internal/api/grpc/alert"
	"github.com/oshokin/drowsiness-alarm/internal/config"
	"github.com/oshokin/drowsiness-alarm/internal/logger"
	pb "github.com/oshokin/drowsiness-alarm/internal/pb/v1"
	repository "github.com/oshokin/drowsiness-alarm/internal/repository/state"
	"github.com/oshokin/drowsiness-alarm/internal/version"
)

// Options controls the alert-relay process and configuration.
type Options struct {
	// ConfigPath specifies the path to settings YAML file.
	ConfigPath string
	// ListenAddress provides an optional listen address override for the gRPC server.
	ListenAddress string
	// StateFile specifies the path to persist alert state JSON.
	StateFile string
	// Verbose enables debug logging regardless of the configured level.
	Verbose bool
}

// ErrNoServerAddress indicates missing server configuration.
var ErrNoServerAddress = errors.New("no server address configured")

// Run starts the gRPC server and blocks until context is canceled or server stops.
// Loads configuration first, then determines listen address from config or override.
func Run(ctx context.Context, opts *Options) error {
	settings, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	if err = logger.Init(settings.Log.LoggerOptions()); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	defer logger.Sync()

	if opts.Verbose {
		logger.Verbose()
	}

	ctx = logger.WithName(ctx, "alert-relay")

	logger.InfoKV(ctx, "Starting", version.KV()...)

	// Use StateFile from config unless overridden by command line option.
	if opts.StateFile != "" {
		settings.Relay.StateFile = opts.StateFile
	}

	// CLI argument overrides config port extraction.
	listenAddress, err := resolveListenAddress(settings.Relay.ServerAddress, opts.ListenAddress)
	if err != nil {
		return fmt.Errorf("resolve listen address: %w", err)
	}

	repo, closeRepo, err := openRepository(ctx, &settings.Relay)
	if err != nil {
		return err
	}

	defer func() {
		if closeErr := closeRepo(); closeErr != nil {
			logger.Errorf(ctx, "Failed to close repository: %v", closeErr)
		}
	}()

	svc, err := newService(ctx, repo)
	if err != nil {
		return fmt.Errorf("initialise service: %w", err)
	}

	lc := net.ListenConfig{}

	lis, err := lc.Listen(ctx, "tcp", listenAddress)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", listenAddress, err)
	}

	grpcServer := grpc.NewServer()
	pb.RegisterAlertRelayServer(grpcServer, api.NewServer(svc))

	logger.InfoKV(ctx, "Alert relay listening", "listen_address", listenAddress)

	// Done channel is closed after GracefulStop finishes to ensure we block
	// until the server fully stops before returning.
	done := make(chan struct{})

	go func() {
		<-ctx.Done()
		logger.Info(ctx, "Shutting down gRPC server")
		grpcServer.GracefulStop()
		close(done)
	}()

	if err := grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return fmt.Errorf("serve gRPC: %w", err)
	}

	<-done
	logger.Info(ctx, "GRPC server stopped")

	return nil
}

// openRepository selects Redis when an address is configured, the JSON file otherwise.
func openRepository(ctx context.Context, settings *config.Relay) (repository.Repository, func() error, error) {
	if settings.RedisAddress == "" {
		logger.InfoKV(ctx, "Using file persistence", "state_file", settings.StateFile)

		return repository.NewFileRepository(settings.StateFile), func() error { return nil }, nil
	}

	connectCtx, cancel := context.WithTimeout(ctx, settings.Timeout)
	defer cancel()

	repo, err := repository.NewRedisRepository(connectCtx, &repository.RedisOptions{
		Address:  settings.RedisAddress,
		Password: settings.RedisPassword,
		DB:       settings.RedisDB,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("open redis repository: %w", err)
	}

	logger.InfoKV(ctx, "Using redis persistence", "redis_address", settings.RedisAddress, "redis_db", settings.RedisDB)

	return repo, repo.Close, nil
}

// resolveListenAddress determines the listen address for the gRPC server.
// If override is provided, uses it directly. Otherwise extracts port from configAddr.
func resolveListenAddress(configAddr, override string) (string, error) {
	if override != "" {
		return override, nil
	}

	if configAddr == "" {
		return "", ErrNoServerAddress
	}

	_, port, err := net.SplitHostPort(configAddr)
	if err != nil {
		return "", fmt.Errorf("invalid server address format %q: %w", configAddr, err)
	}

	// Bind on all interfaces.
	return ":" + port, nil
}
