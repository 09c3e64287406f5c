package relay

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	domain "github.com/oshokin/drowsiness-alarm/internal/domain/alert"
	"github.com/oshokin/drowsiness-alarm/internal/logger"
	repo "github.com/oshokin/drowsiness-alarm/internal/repository/state"
)

// service encapsulates the relay business logic and persistence orchestration.
// It is unexported to keep the transport decoupled from the implementation.
type service struct {
	// repo handles persistent storage of alert states.
	repo repo.Repository
	// states holds the current alert state of every subject.
	states map[string]*domain.State
	// now returns the current time.
	now func() time.Time
	// mu protects concurrent access to states.
	mu sync.RWMutex
}

// newService creates a service backed by the provided repository.
func newService(ctx context.Context, repository repo.Repository) (*service, error) {
	s := &service{
		repo:   repository,
		states: make(map[string]*domain.State),
		now:    time.Now,
	}

	if repository == nil {
		return s, nil
	}

	states, err := repository.Load(ctx)
	switch {
	case err == nil:
		for _, state := range states {
			s.states[state.SubjectID] = state
		}

		logger.InfoKV(ctx, "Alert states restored", "subjects", len(s.states), "any_active", domain.AnyActive(states))
	case errors.Is(err, repo.ErrNotFound):
		// Start empty.
	default:
		return nil, fmt.Errorf("load states: %w", err)
	}

	return s, nil
}

// PushCue stores the cue state of one subject and persists it.
func (s *service) PushCue(
	ctx context.Context,
	subjectID string,
	source *domain.Source,
	active bool,
	ear float64,
) (*domain.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := &domain.State{
		SubjectID:   subjectID,
		Timestamp:   s.now(),
		LastSource:  source.Clone(),
		SmoothedEAR: ear,
		IsActive:    active,
	}

	if s.repo != nil {
		if err := s.repo.Save(ctx, state); err != nil {
			logger.Errorf(ctx, "Failed to persist alert state: %v", err)

			return nil, fmt.Errorf("persist state: %w", err)
		}
	}

	previous, known := s.states[subjectID]
	s.states[subjectID] = state

	if !known || previous.IsActive != state.IsActive {
		logger.InfoKV(ctx, "Alert state changed",
			"subject_id", subjectID,
			"is_active", state.IsActive,
			"source", state.LastSource.String())
	} else {
		logger.DebugKV(ctx, "Alert state refreshed", "subject_id", subjectID, "is_active", state.IsActive)
	}

	return state.Clone(), nil
}

// ListAlerts returns the alert state of every subject ordered by subject.
func (s *service) ListAlerts(ctx context.Context) []*domain.State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.State, 0, len(s.states))
	for _, state := range s.states {
		result = append(result, state.Clone())
	}

	domain.SortBySubject(result)

	logger.DebugKV(ctx, "Alert states requested", "subjects", len(result))

	return result
}
