package drowsiness

// SeedPolicy selects the value a Smoother starts from.
type SeedPolicy string

const (
	// SeedZero starts the average at 0, so the first frames read low until the
	// filter converges.
	SeedZero SeedPolicy = "zero"
	// SeedFirstSample starts the average at the first observed sample.
	SeedFirstSample SeedPolicy = "first_sample"

	// DefaultAlpha is the weight of the newest sample.
	DefaultAlpha = 0.1
)

// Valid reports whether the policy is known.
func (p SeedPolicy) Valid() bool {
	return p == SeedZero || p == SeedFirstSample
}

// Smoother is an exponential moving average over EAR samples.
type Smoother struct {
	// alpha is the weight of the newest sample, in (0, 1].
	alpha float64
	// seed controls the value used before the first sample.
	seed SeedPolicy
	// value is the running smoothed EAR.
	value float64
	// samples counts updates since creation.
	samples uint64
}

// NewSmoother returns a smoother with the given weight and seed policy.
// Out-of-range alpha falls back to DefaultAlpha, unknown policies to SeedZero.
func NewSmoother(alpha float64, seed SeedPolicy) *Smoother {
	if alpha <= 0 || alpha > 1 {
		alpha = DefaultAlpha
	}

	if !seed.Valid() {
		seed = SeedZero
	}

	return &Smoother{
		alpha: alpha,
		seed:  seed,
	}
}

// Update folds x into the average and returns the new smoothed value.
func (s *Smoother) Update(x float64) float64 {
	if s.samples == 0 && s.seed == SeedFirstSample {
		s.value = x
	}

	s.value = s.alpha*x + (1-s.alpha)*s.value
	s.samples++

	return s.value
}

// Value returns the current smoothed value.
func (s *Smoother) Value() float64 {
	return s.value
}

// Samples returns how many samples have been folded in.
func (s *Smoother) Samples() uint64 {
	return s.samples
}
