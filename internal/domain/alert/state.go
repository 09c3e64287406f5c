package alert

import (
	"slices"
	"strings"
	"time"
)

// Source identifies the monitor that pushed an alert cue.
type Source struct {
	// Hostname is the machine name where the monitor runs.
	Hostname string
	// Username is the system user running the monitor.
	Username string
}

// Clone returns a deep copy of the source.
func (s *Source) Clone() *Source {
	if s == nil {
		return nil
	}

	cloned := *s

	return &cloned
}

// String renders the source as username@hostname.
func (s *Source) String() string {
	if s == nil {
		return "<unknown>"
	}

	return s.Username + "@" + s.Hostname
}

// State represents the relayed alert of one subject at a specific point in time.
type State struct {
	// SubjectID is the tracked subject identifier reported by the monitor.
	SubjectID string
	// Timestamp is when the alert state was last changed.
	Timestamp time.Time
	// LastSource is the monitor that last modified the state.
	LastSource *Source
	// SmoothedEAR is the eye aspect ratio carried by the last cue.
	SmoothedEAR float64
	// IsActive indicates whether the alert cue is currently on.
	IsActive bool
}

// Clone returns a copy of the state to avoid leaking internal references.
func (s *State) Clone() *State {
	return &State{
		SubjectID:   s.SubjectID,
		Timestamp:   s.Timestamp,
		LastSource:  s.LastSource.Clone(),
		SmoothedEAR: s.SmoothedEAR,
		IsActive:    s.IsActive,
	}
}

// SortBySubject orders states by subject identifier in place.
func SortBySubject(states []*State) {
	slices.SortFunc(states, func(a, b *State) int {
		return strings.Compare(a.SubjectID, b.SubjectID)
	})
}

// AnyActive reports whether at least one state has an active alert.
func AnyActive(states []*State) bool {
	return slices.ContainsFunc(states, func(s *State) bool {
		return s.IsActive
	})
}
