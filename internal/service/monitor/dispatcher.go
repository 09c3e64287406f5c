package monitor

import (
	"context"

	"github.com/oshokin/drowsiness-alarm/internal/domain/drowsiness"
	"github.com/oshokin/drowsiness-alarm/internal/logger"
)

// Actuator produces the physical alert cue.
type Actuator interface {
	StartCue(ctx context.Context, cue drowsiness.Cue) error
	StopCue(ctx context.Context, cue drowsiness.Cue) error
}

// Dispatcher turns state machine transitions into actuator commands and frame marks.
type Dispatcher struct {
	// actuator receives start and stop commands.
	actuator Actuator
	// label is the text of the warning mark.
	label string
}

// NewDispatcher creates a dispatcher. A nil actuator only annotates frames.
func NewDispatcher(actuator Actuator, label string) *Dispatcher {
	return &Dispatcher{
		actuator: actuator,
		label:    label,
	}
}

// Dispatch applies one subject's transition to the actuator and the frame.
// Actuator failures are logged and never alter the transition.
func (d *Dispatcher) Dispatch(
	ctx context.Context,
	frame *Frame,
	subjectID string,
	anchor drowsiness.Point,
	transition *drowsiness.Transition,
) {
	cue := drowsiness.Cue{
		SubjectID:   subjectID,
		At:          transition.At,
		SmoothedEAR: transition.SmoothedEAR,
	}

	if transition.Activated {
		logger.InfoKV(ctx, "Drowsiness alert started", "subject_id", subjectID, "ear", transition.SmoothedEAR)
		d.start(ctx, cue)
	}

	if transition.To == drowsiness.PhaseAlarming {
		frame.Annotate(Mark{
			SubjectID: subjectID,
			Label:     d.label,
			At:        anchor,
		})
	}

	if transition.Deactivated {
		logger.InfoKV(ctx, "Drowsiness alert stopped", "subject_id", subjectID, "ear", transition.SmoothedEAR)
		d.Release(ctx, cue)
	}
}

// Release stops the cue of one subject.
func (d *Dispatcher) Release(ctx context.Context, cue drowsiness.Cue) {
	if d.actuator == nil {
		return
	}

	if err := d.actuator.StopCue(ctx, cue); err != nil {
		logger.ErrorKV(ctx, "Failed to stop alert cue", "subject_id", cue.SubjectID, "error", err)
	}
}

func (d *Dispatcher) start(ctx context.Context, cue drowsiness.Cue) {
	if d.actuator == nil {
		return
	}

	if err := d.actuator.StartCue(ctx, cue); err != nil {
		logger.ErrorKV(ctx, "Failed to start alert cue", "subject_id", cue.SubjectID, "error", err)
	}
}
