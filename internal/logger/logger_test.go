package logger

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// TestParseLogLevel verifies mapping from strings to zapcore.Level and handling of unknown values.
func TestParseLogLevel(t *testing.T) {
	t.Parallel()

	cases := map[string]zapcore.Level{
		"debug":  zapcore.DebugLevel,
		" INFO ": zapcore.InfoLevel,
		"warn":   zapcore.WarnLevel,
		"error":  zapcore.ErrorLevel,
		"panic":  zapcore.PanicLevel,
		"fatal":  zapcore.FatalLevel,
		"dpanic": zapcore.DPanicLevel,
	}
	for s, lvl := range cases {
		got, ok := ParseLogLevel(s)
		require.True(t, ok)
		require.Equal(t, lvl, got)
	}

	_, ok := ParseLogLevel("unknown")
	require.False(t, ok)
}

// TestContextHelpers checks that scoped loggers travel through the context.
func TestContextHelpers(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.DebugLevel)
	ctx := ToContext(context.Background(), zap.New(core).Sugar())

	ctx = WithName(ctx, "monitor")
	ctx = WithKV(ctx, "subject_id", "driver")

	InfoKV(ctx, "Phase changed", "to", "alarming")
	DebugKV(ctx, "Eyes closing")

	entries := logs.All()
	require.Len(t, entries, 2)
	require.Equal(t, "monitor", entries[0].LoggerName)
	require.Equal(t, "Phase changed", entries[0].Message)

	fields := entries[0].ContextMap()
	require.Equal(t, "driver", fields["subject_id"])
	require.Equal(t, "alarming", fields["to"])
}

// TestFromContext_FallsBackToGlobal returns the global logger for bare contexts.
func TestFromContext_FallsBackToGlobal(t *testing.T) {
	t.Parallel()

	require.Same(t, Logger(), FromContext(context.Background()))
}

// TestInit_WritesRotatingFile enables the file sink and checks output lands on disk.
//
//nolint:paralleltest // Init replaces the global logger.
func TestInit_WritesRotatingFile(t *testing.T) {
	previous := Logger()
	previousLevel := Level()

	t.Cleanup(func() {
		SetLogger(previous)
		SetLevel(previousLevel)
	})

	path := filepath.Join(t.TempDir(), "drowsiness.log")

	require.NoError(t, Init(Options{Level: "debug", File: path, MaxSizeMB: 1}))
	require.Equal(t, zapcore.DebugLevel, Level())

	Info(context.Background(), "file sink enabled")
	Sync()

	contents, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(contents), "file sink enabled")

	require.Error(t, Init(Options{Level: "loud"}))
}
