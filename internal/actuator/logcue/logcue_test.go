package logcue

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/oshokin/drowsiness-alarm/internal/domain/drowsiness"
	"github.com/oshokin/drowsiness-alarm/internal/logger"
)

// TestActuator_LogsCues verifies start and stop are logged with the subject.
func TestActuator_LogsCues(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.InfoLevel)
	ctx := logger.ToContext(context.Background(), zap.New(core).Sugar())

	a := New()
	cue := drowsiness.Cue{SubjectID: "driver", SmoothedEAR: 0.1}

	require.NoError(t, a.StartCue(ctx, cue))
	require.NoError(t, a.StopCue(ctx, cue))

	entries := logs.All()
	require.Len(t, entries, 2)
	require.Equal(t, zapcore.WarnLevel, entries[0].Level)
	require.Equal(t, "driver", entries[0].ContextMap()["subject_id"])
	require.Equal(t, "Drowsiness alert cleared", entries[1].Message)
}
