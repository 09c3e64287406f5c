// Package logcue implements an actuator that writes alert cues to the log.
package logcue

import (
	"context"

	"github.com/oshokin/drowsiness-alarm/internal/domain/drowsiness"
	"github.com/oshokin/drowsiness-alarm/internal/logger"
)

// Actuator logs every cue command at warn level.
type Actuator struct{}

// New creates a log actuator.
func New() *Actuator {
	return new(Actuator)
}

// StartCue logs the start of a cue.
func (*Actuator) StartCue(ctx context.Context, cue drowsiness.Cue) error {
	logger.WarnKV(ctx, "DROWSINESS ALERT",
		"subject_id", cue.SubjectID,
		"ear", cue.SmoothedEAR,
		"at", cue.At)

	return nil
}

// StopCue logs the end of a cue.
func (*Actuator) StopCue(ctx context.Context, cue drowsiness.Cue) error {
	logger.InfoKV(ctx, "Drowsiness alert cleared",
		"subject_id", cue.SubjectID,
		"ear", cue.SmoothedEAR,
		"at", cue.At)

	return nil
}
