package drowsiness

import (
	"math"
	"time"
)

// Phase is the alert phase of one monitored subject.
type Phase uint8

const (
	// PhaseAwake means the smoothed EAR is at or above the threshold.
	PhaseAwake Phase = iota
	// PhaseEyesClosing means the EAR is below the threshold but no alert fired yet.
	PhaseEyesClosing
	// PhaseAlarming means the alert is active.
	PhaseAlarming
)

// String returns a lower-case name for logs.
func (p Phase) String() string {
	switch p {
	case PhaseAwake:
		return "awake"
	case PhaseEyesClosing:
		return "eyes_closing"
	case PhaseAlarming:
		return "alarming"
	default:
		return "unknown"
	}
}

const (
	// DefaultEARThreshold is the smoothed EAR below which eyes count as closed.
	DefaultEARThreshold = 0.25
	// DefaultConsecFrames is the number of consecutive closed frames required.
	DefaultConsecFrames = 10
	// DefaultAlarmDelay is the wall-clock time the eyes must stay closed after
	// the frame gate is passed.
	DefaultAlarmDelay = time.Second
	// ReferenceCoolOff is the suggested post-alarm mute period when one is enabled.
	ReferenceCoolOff = 5 * time.Second
)

// Params configures a Machine.
type Params struct {
	// EARThreshold is the smoothed EAR boundary between open and closed.
	EARThreshold float64
	// ConsecFrames is the consecutive closed-frame gate.
	ConsecFrames int
	// AlarmDelay is the wall-clock gate measured from the first frame past ConsecFrames.
	AlarmDelay time.Duration
	// CoolOff mutes new activations for this long after an alarm ends. Zero disables it.
	CoolOff time.Duration
}

// DefaultParams returns the reference parameters with the cool-off disabled.
func DefaultParams() Params {
	return Params{
		EARThreshold: DefaultEARThreshold,
		ConsecFrames: DefaultConsecFrames,
		AlarmDelay:   DefaultAlarmDelay,
	}
}

// FramesFor converts a duration into a frame count at the given frame rate,
// rounding up and never returning less than 1.
func FramesFor(d time.Duration, fps float64) int {
	if d <= 0 || fps <= 0 {
		return 1
	}

	return max(1, int(math.Ceil(d.Seconds()*fps)))
}

// Snapshot is a copy of a subject's detection state.
type Snapshot struct {
	// Phase is the current alert phase.
	Phase Phase
	// ConsecFrames counts consecutive frames below the threshold.
	ConsecFrames int
	// Closing is set once the frame gate is passed.
	Closing bool
	// ClosingSince is when the frame gate was first passed; valid while Closing.
	ClosingSince time.Time
	// AlertActive is set while the alert cue is on.
	AlertActive bool
	// MutedUntil blocks new activations until this instant; zero when not muted.
	MutedUntil time.Time
	// SmoothedEAR is the last value fed to the machine.
	SmoothedEAR float64
	// UpdatedAt is the timestamp of the last step.
	UpdatedAt time.Time
}

// Clone returns a copy of the snapshot.
func (s *Snapshot) Clone() *Snapshot {
	if s == nil {
		return nil
	}

	cloned := *s

	return &cloned
}

// Transition describes what one Step changed.
type Transition struct {
	// From is the phase before the step.
	From Phase
	// To is the phase after the step.
	To Phase
	// Activated is set on the single step that switches the alert on.
	Activated bool
	// Deactivated is set on the single step that switches the alert off.
	Deactivated bool
	// Muted is set when both gates held but the cool-off withheld activation.
	Muted bool
	// SmoothedEAR is the value the step evaluated.
	SmoothedEAR float64
	// At is the step timestamp.
	At time.Time
}

// Changed reports whether the phase changed.
func (t *Transition) Changed() bool {
	return t.From != t.To
}

// Machine debounces a smoothed EAR signal into alert phases for one subject.
type Machine struct {
	params Params
	state  Snapshot
}

// NewMachine creates a machine in the Awake phase.
func NewMachine(params Params) *Machine {
	return &Machine{
		params: params,
	}
}

// Step evaluates one smoothed EAR value observed at now.
func (m *Machine) Step(smoothed float64, now time.Time) Transition {
	transition := Transition{
		From:        m.state.Phase,
		SmoothedEAR: smoothed,
		At:          now,
	}

	m.state.SmoothedEAR = smoothed
	m.state.UpdatedAt = now

	if smoothed >= m.params.EARThreshold {
		transition.Deactivated = m.state.AlertActive
		if transition.Deactivated && m.params.CoolOff > 0 {
			m.state.MutedUntil = now.Add(m.params.CoolOff)
		}

		m.state.ConsecFrames = 0
		m.state.Closing = false
		m.state.ClosingSince = time.Time{}
		m.state.AlertActive = false
		m.state.Phase = PhaseAwake
		transition.To = PhaseAwake

		return transition
	}

	m.state.ConsecFrames++
	m.state.Phase = m.closedPhase(now, &transition)
	transition.To = m.state.Phase

	return transition
}

// closedPhase applies the frame, delay and cool-off gates for a closed-eye frame.
func (m *Machine) closedPhase(now time.Time, transition *Transition) Phase {
	if m.state.ConsecFrames < m.params.ConsecFrames {
		return PhaseEyesClosing
	}

	if !m.state.Closing {
		m.state.Closing = true
		m.state.ClosingSince = now

		return PhaseEyesClosing
	}

	if now.Sub(m.state.ClosingSince) < m.params.AlarmDelay {
		return PhaseEyesClosing
	}

	if m.state.AlertActive {
		return PhaseAlarming
	}

	if now.Before(m.state.MutedUntil) {
		transition.Muted = true

		return PhaseEyesClosing
	}

	m.state.AlertActive = true
	transition.Activated = true

	return PhaseAlarming
}

// Snapshot returns a copy of the current state.
func (m *Machine) Snapshot() *Snapshot {
	return m.state.Clone()
}

// Params returns the machine configuration.
func (m *Machine) Params() Params {
	return m.params
}
