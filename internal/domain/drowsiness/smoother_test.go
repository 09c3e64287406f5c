package drowsiness

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestSmoother_ConvergesMonotonically feeds a constant and checks monotonic convergence.
func TestSmoother_ConvergesMonotonically(t *testing.T) {
	t.Parallel()

	const (
		target  = 0.3
		epsilon = 1e-3
	)

	s := NewSmoother(DefaultAlpha, SeedZero)

	previous := s.Value()
	for range 100 {
		current := s.Update(target)
		require.Greater(t, current, previous)
		require.LessOrEqual(t, current, target)

		previous = current
	}

	// (1-alpha)^n * target < epsilon after n = 100 with alpha 0.1.
	require.InDelta(t, target, s.Value(), epsilon)
	require.Equal(t, uint64(100), s.Samples())
}

// TestSmoother_ZeroSeedWarmUp keeps the legacy transient: first value is alpha * x.
func TestSmoother_ZeroSeedWarmUp(t *testing.T) {
	t.Parallel()

	s := NewSmoother(0.1, SeedZero)

	require.InDelta(t, 0.03, s.Update(0.3), 1e-12)
	require.InDelta(t, 0.057, s.Update(0.3), 1e-12)
}

// TestSmoother_FirstSampleSeed starts from the first observation.
func TestSmoother_FirstSampleSeed(t *testing.T) {
	t.Parallel()

	s := NewSmoother(0.1, SeedFirstSample)

	require.InDelta(t, 0.3, s.Update(0.3), 1e-12)
	require.InDelta(t, 0.28, s.Update(0.1), 1e-12)
}

// TestNewSmoother_Fallbacks replaces invalid arguments with defaults.
func TestNewSmoother_Fallbacks(t *testing.T) {
	t.Parallel()

	for _, alpha := range []float64{0, -1, 1.5} {
		s := NewSmoother(alpha, "bogus")
		require.InDelta(t, DefaultAlpha*0.5, s.Update(0.5), 1e-12)
	}

	// Alpha of one disables smoothing.
	s := NewSmoother(1, SeedZero)
	require.InDelta(t, 0.2, s.Update(0.2), 1e-12)
}
