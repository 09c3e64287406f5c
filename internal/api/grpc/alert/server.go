package alert

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	domain "github.com/oshokin/drowsiness-alarm/internal/domain/alert"
	pb "github.com/oshokin/drowsiness-alarm/internal/pb/v1"
)

// Service abstracts the business operations the transport layer depends on.
type Service interface {
	PushCue(ctx context.Context, subjectID string, source *domain.Source, active bool, ear float64) (*domain.State, error)
	ListAlerts(ctx context.Context) []*domain.State
}

// Server implements the AlertRelay gRPC API.
type Server struct {
	pb.UnimplementedAlertRelayServer

	// service provides the business logic for relay operations.
	service Service
}

// NewServer wires the provided service implementation into a gRPC handler.
func NewServer(service Service) *Server {
	return &Server{
		service: service,
	}
}

// PushCue records the cue state of one subject.
func (s *Server) PushCue(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	cue, err := pb.CueRequestFromStruct(req)
	if err != nil {
		if errors.Is(err, pb.ErrMissingField) {
			return nil, status.Errorf(codes.InvalidArgument, "invalid cue: %v", err)
		}

		return nil, status.Errorf(codes.InvalidArgument, "malformed cue: %v", err)
	}

	if cue.EAR < 0 {
		return nil, status.Error(codes.InvalidArgument, "ear must not be negative")
	}

	state, err := s.service.PushCue(ctx, cue.SubjectID, toDomainSource(cue.Source), cue.Active, cue.EAR)
	if err != nil {
		return nil, status.Error(codes.Internal, "unable to persist state")
	}

	return toProtoState(state).ToStruct(), nil
}

// ListAlerts returns the alert state of every known subject.
func (s *Server) ListAlerts(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	states := s.service.ListAlerts(ctx)

	list := make([]*pb.AlertState, 0, len(states))
	for _, state := range states {
		list = append(list, toProtoState(state))
	}

	return pb.AlertListToStruct(list), nil
}

// toDomainSource converts a protobuf Source to a domain Source.
func toDomainSource(source *pb.Source) *domain.Source {
	if source == nil {
		return nil
	}

	return &domain.Source{
		Hostname: source.GetHostname(),
		Username: source.GetUsername(),
	}
}

// toProtoState converts a domain.State object to a pb.AlertState message.
func toProtoState(state *domain.State) *pb.AlertState {
	if state == nil {
		return new(pb.AlertState)
	}

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
