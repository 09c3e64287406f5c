package actuator

import (
	"context"
	"errors"
	"fmt"

	"github.com/oshokin/drowsiness-alarm/internal/domain/drowsiness"
)

// Actuator produces an alert cue.
type Actuator interface {
	StartCue(ctx context.Context, cue drowsiness.Cue) error
	StopCue(ctx context.Context, cue drowsiness.Cue) error
}

// Named is an actuator with a name used in error messages.
type Named struct {
	Name     string
	Actuator Actuator
}

// Fanout forwards every command to all of its actuators.
// A failing actuator never prevents the others from receiving the command.
type Fanout struct {
	targets []Named
}

// NewFanout creates a fanout over the given actuators.
func NewFanout(targets ...Named) *Fanout {
	return &Fanout{
		targets: targets,
	}
}

// Add appends an actuator.
func (f *Fanout) Add(name string, actuator Actuator) {
	f.targets = append(f.targets, Named{Name: name, Actuator: actuator})
}

// Len returns the number of actuators.
func (f *Fanout) Len() int {
	return len(f.targets)
}

// StartCue starts the cue on every actuator and joins their errors.
func (f *Fanout) StartCue(ctx context.Context, cue drowsiness.Cue) error {
	return f.each(func(target Named) error {
		return target.Actuator.StartCue(ctx, cue)
	})
}

// StopCue stops the cue on every actuator and joins their errors.
func (f *Fanout) StopCue(ctx context.Context, cue drowsiness.Cue) error {
	return f.each(func(target Named) error {
		return target.Actuator.StopCue(ctx, cue)
	})
}

func (f *Fanout) each(fn func(target Named) error) error {
	var errs []error

	for _, target := range f.targets {
		if err := fn(target); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", target.Name, err))
		}
	}

	return errors.Join(errs...)
}
