package drowsiness

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// baseTime is a fixed origin for simulated clocks.
var baseTime = time.Date(2026, time.January, 2, 15, 4, 5, 0, time.UTC)

// countTransitions tallies activation and deactivation flags.
func countTransitions(transitions []Transition) (activated, deactivated int) {
	for _, tr := range transitions {
		if tr.Activated {
			activated++
		}

		if tr.Deactivated {
			deactivated++
		}
	}

	return activated, deactivated
}

// TestMachine_HoldBelowThreshold reaches Alarming once with frames spaced by the delay.
func TestMachine_HoldBelowThreshold(t *testing.T) {
	t.Parallel()

	params := DefaultParams()
	m := NewMachine(params)

	var transitions []Transition

	for i := range params.ConsecFrames + 1 {
		now := baseTime.Add(time.Duration(i) * params.AlarmDelay)
		transitions = append(transitions, m.Step(0.1, now))
	}

	activated, deactivated := countTransitions(transitions)
	require.Equal(t, 1, activated)
	require.Zero(t, deactivated)

	last := transitions[len(transitions)-1]
	require.True(t, last.Activated)
	require.Equal(t, PhaseAlarming, last.To)

	for _, tr := range transitions[:len(transitions)-1] {
		require.Equal(t, PhaseEyesClosing, tr.To)
	}

	// Staying closed keeps alarming without re-activating.
	for i := range 5 {
		tr := m.Step(0.1, baseTime.Add(time.Duration(20+i)*time.Second))
		require.Equal(t, PhaseAlarming, tr.To)
		require.False(t, tr.Activated)
	}

	snapshot := m.Snapshot()
	require.True(t, snapshot.AlertActive)
	require.Equal(t, params.ConsecFrames+6, snapshot.ConsecFrames)
	require.Equal(t, baseTime.Add(time.Duration(params.ConsecFrames-1)*params.AlarmDelay), snapshot.ClosingSince)
}

// TestMachine_DelayGate keeps EyesClosing until the wall-clock delay elapses.
func TestMachine_DelayGate(t *testing.T) {
	t.Parallel()

	params := DefaultParams()
	m := NewMachine(params)

	const frameInterval = 100 * time.Millisecond

	var (
		now         = baseTime
		activatedAt time.Time
	)

	for range 40 {
		tr := m.Step(0.1, now)
		if tr.Activated {
			activatedAt = now

			break
		}

		require.Equal(t, PhaseEyesClosing, tr.To)

		now = now.Add(frameInterval)
	}

	// Gate set at frame 10 (0.9s), alarm one delay later.
	require.Equal(t, baseTime.Add(900*time.Millisecond+params.AlarmDelay), activatedAt)
}

// TestMachine_Recovery clears state and deactivates exactly once.
func TestMachine_Recovery(t *testing.T) {
	t.Parallel()

	params := DefaultParams()
	m := NewMachine(params)

	for i := range params.ConsecFrames + 1 {
		m.Step(0.1, baseTime.Add(time.Duration(i)*time.Second))
	}

	require.Equal(t, PhaseAlarming, m.Snapshot().Phase)

	tr := m.Step(0.25, baseTime.Add(time.Minute))
	require.True(t, tr.Deactivated)
	require.Equal(t, PhaseAlarming, tr.From)
	require.Equal(t, PhaseAwake, tr.To)
	require.True(t, tr.Changed())

	snapshot := m.Snapshot()
	require.Zero(t, snapshot.ConsecFrames)
	require.True(t, snapshot.ClosingSince.IsZero())
	require.False(t, snapshot.AlertActive)
	require.True(t, snapshot.MutedUntil.IsZero())

	// A second open frame does not deactivate again.
	tr = m.Step(0.3, baseTime.Add(time.Minute+time.Second))
	require.False(t, tr.Deactivated)
	require.False(t, tr.Changed())
}

// TestMachine_SubConsecutiveDips never alarms when closed runs stay short.
func TestMachine_SubConsecutiveDips(t *testing.T) {
	t.Parallel()

	params := DefaultParams()
	m := NewMachine(params)

	now := baseTime

	for cycle := range 20 {
		for range params.ConsecFrames - 1 {
			tr := m.Step(0.1, now)
			require.NotEqual(t, PhaseAlarming, tr.To, "cycle %d", cycle)
			require.False(t, tr.Activated)

			now = now.Add(time.Second)
		}

		tr := m.Step(0.3, now)
		require.Equal(t, PhaseAwake, tr.To)

		now = now.Add(time.Second)
	}

	require.True(t, m.Snapshot().ClosingSince.IsZero())
}

// TestMachine_CoolOff withholds re-activation during the mute window.
func TestMachine_CoolOff(t *testing.T) {
	t.Parallel()

	params := DefaultParams()
	params.ConsecFrames = 1
	params.CoolOff = ReferenceCoolOff

	m := NewMachine(params)

	// Gate at t0, alarm at t0+1s.
	m.Step(0.1, baseTime)
	require.True(t, m.Step(0.1, baseTime.Add(time.Second)).Activated)

	// Wake up at t0+2s: muted until t0+7s.
	tr := m.Step(0.3, baseTime.Add(2*time.Second))
	require.True(t, tr.Deactivated)
	require.Equal(t, baseTime.Add(7*time.Second), m.Snapshot().MutedUntil)

	// Close again: gate at t0+3s, delay passed at t0+4s but still muted.
	m.Step(0.1, baseTime.Add(3*time.Second))

	tr = m.Step(0.1, baseTime.Add(4*time.Second))
	require.True(t, tr.Muted)
	require.False(t, tr.Activated)
	require.Equal(t, PhaseEyesClosing, tr.To)

	// Mute over.
	tr = m.Step(0.1, baseTime.Add(7*time.Second))
	require.True(t, tr.Activated)
	require.Equal(t, PhaseAlarming, tr.To)
}

// TestMachine_NoCoolOffRetriggers matches legacy behavior with the mute disabled.
func TestMachine_NoCoolOffRetriggers(t *testing.T) {
	t.Parallel()

	params := DefaultParams()
	params.ConsecFrames = 1

	m := NewMachine(params)

	m.Step(0.1, baseTime)
	require.True(t, m.Step(0.1, baseTime.Add(time.Second)).Activated)
	require.True(t, m.Step(0.3, baseTime.Add(2*time.Second)).Deactivated)

	m.Step(0.1, baseTime.Add(3*time.Second))
	require.True(t, m.Step(0.1, baseTime.Add(4*time.Second)).Activated)
}

// TestMachine_ZeroTimestamps arms the delay gate on a frame captured at the zero time.
func TestMachine_ZeroTimestamps(t *testing.T) {
	t.Parallel()

	params := DefaultParams()
	params.ConsecFrames = 1
	params.AlarmDelay = 200 * time.Millisecond

	m := NewMachine(params)

	var origin time.Time

	tr := m.Step(0.1, origin)
	require.Equal(t, PhaseEyesClosing, tr.To)
	require.True(t, m.Snapshot().Closing)

	require.False(t, m.Step(0.1, origin.Add(100*time.Millisecond)).Activated)
	require.True(t, m.Step(0.1, origin.Add(200*time.Millisecond)).Activated)

	m.Step(0.3, origin.Add(300*time.Millisecond))
	require.False(t, m.Snapshot().Closing)
}

// TestFramesFor converts durations to frame counts.
func TestFramesFor(t *testing.T) {
	t.Parallel()

	require.Equal(t, 10, FramesFor(time.Second/3, 30))
	require.Equal(t, 4, FramesFor(time.Second/3, 10))
	require.Equal(t, 1, FramesFor(0, 30))
	require.Equal(t, 1, FramesFor(time.Second, 0))
}

// TestPhaseString covers log names.
func TestPhaseString(t *testing.T) {
	t.Parallel()

	require.Equal(t, "awake", PhaseAwake.String())
	require.Equal(t, "eyes_closing", PhaseEyesClosing.String())
	require.Equal(t, "alarming", PhaseAlarming.String())
	require.Equal(t, "unknown", Phase(42).String())
}
