package state

import (
	"context"
	"errors"

	"github.com/oshokin/drowsiness-alarm/internal/domain/alert"
	pb "github.com/oshokin/drowsiness-alarm/internal/pb/v1"
)

// Repository defines persistence operations for alert states.
type Repository interface {
	// Load returns every stored state, or ErrNotFound if nothing was stored yet.
	Load(ctx context.Context) ([]*alert.State, error)
	// Save inserts or replaces the state of one subject.
	Save(ctx context.Context, state *alert.State) error
}

var (
	// ErrNotFound is returned when no state has been stored yet.
	ErrNotFound = errors.New("state not found")
	// errSubjectRequired is returned when a state without subject is saved.
	errSubjectRequired = errors.New("subject id is required")
)

// fromProto converts a relayed alert into the domain State model.
func fromProto(in *pb.AlertState) *alert.State {
	var source *alert.Source
	if in.Source != nil {
		source = &alert.Source{
			Hostname: in.Source.GetHostname(),
			Username: in.Source.GetUsername(),
		}
	}

	return &alert.State{
		SubjectID:   in.SubjectID,
		Timestamp:   in.Timestamp,
		LastSource:  source,
		SmoothedEAR: in.EAR,
		IsActive:    in.Active,
	}
}

// toProto converts the domain State model into a relayed alert.
func toProto(state *alert.State) *pb.AlertState {
	var source *pb.Source
	if state.LastSource != nil {
		source = &pb.Source{
			Hostname: state.LastSource.Hostname,
			Username: state.LastSource.Username,
		}
	}

	return &pb.AlertState{
		SubjectID: state.SubjectID,
		Active:    state.IsActive,
		EAR:       state.SmoothedEAR,
		Timestamp: state.Timestamp,
		Source:    source,
	}
}
