// Package relay forwards alert cues to the alert relay server.
package relay

import (
	"context"
	"fmt"

	"github.com/oshokin/drowsiness-alarm/internal/domain/drowsiness"
	"github.com/oshokin/drowsiness-alarm/internal/logger"
	pb "github.com/oshokin/drowsiness-alarm/internal/pb/v1"
)

// Pusher sends cue requests to the relay.
type Pusher interface {
	PushCue(ctx context.Context, cue *pb.CueRequest) (*pb.AlertState, error)
}

// Actuator reports every cue command to the relay.
type Actuator struct {
	// client talks to the relay.
	client Pusher
	// source identifies this monitor.
	source *pb.Source
}

// New creates a relay actuator.
func New(client Pusher, source *pb.Source) *Actuator {
	return &Actuator{
		client: client,
		source: source,
	}
}

// StartCue marks the subject active on the relay.
func (a *Actuator) StartCue(ctx context.Context, cue drowsiness.Cue) error {
	return a.push(ctx, cue, true)
}

// StopCue marks the subject inactive on the relay.
func (a *Actuator) StopCue(ctx context.Context, cue drowsiness.Cue) error {
	return a.push(ctx, cue, false)
}

func (a *Actuator) push(ctx context.Context, cue drowsiness.Cue, active bool) error {
	state, err := a.client.PushCue(ctx, &pb.CueRequest{
		SubjectID: cue.SubjectID,
		Active:    active,
		EAR:       cue.SmoothedEAR,
		Source:    a.source,
	})
	if err != nil {
		return fmt.Errorf("relay cue for %s: %w", cue.SubjectID, err)
	}

	logger.DebugKV(ctx, "Cue relayed", "subject_id", state.SubjectID, "active", state.Active)

	return nil
}
