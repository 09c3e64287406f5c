package integration

import (
	"context"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/drowsiness-alarm/internal/config"
	"github.com/oshokin/drowsiness-alarm/internal/service/relay"
)

// startRelay starts the alert relay with a temporary config and state file.
// Returns a stop function to gracefully shutdown the server.
func startRelay(t *testing.T, addr string, statePath string) (stop func()) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	cfgPath := filepath.Join(t.TempDir(), "settings.yaml")

	require.NoError(
		t,
		config.Save(cfgPath, &config.Config{
			Relay: config.Relay{
				ServerAddress: addr,
				Timeout:       5 * time.Second,
			},
		}),
	)

	done := make(chan struct{})

	go func() {
		defer close(done)

		options := &relay.Options{
			ConfigPath:    cfgPath,
			ListenAddress: addr,
			StateFile:     statePath,
		}

		_ = relay.Run(ctx, options) //nolint:errcheck // Startup failures surface as client errors.
	}()

	// Wait briefly for server to start listening.
	time.Sleep(150 * time.Millisecond)

	return func() {
		cancel()
		<-done
	}
}

// reservePort returns address on a free TCP port and closes it.
func reservePort(t *testing.T) string {
	t.Helper()

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	addr := l.Addr().String()
	_ = l.Close()

	return addr
}
