// Package space defines the configuration-space capabilities consumed by the
// planner: dimensionality and bounds, state validity, motion validity between
// two configurations, and random sampling. It also provides a ready-to-use
// bounded real-vector space so the planner can be exercised without writing a
// custom space.
package space

// State is a single configuration: one value per dimension.
type State []float64

// Clone returns an independent copy of the state.
func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

// Copy copies src into dst. Both states must have the same dimension.
func Copy(dst, src State) {
	copy(dst, src)
}

// Space describes a bounded continuous configuration space and its validity
// semantics. Implementations must be safe for concurrent use: the planner
// calls IsValid and CheckMotion from every worker goroutine without locking.
type Space interface {
	// Dimension returns the number of values in a configuration.
	Dimension() int

	// Bounds returns the lower and upper bound of dimension i.
	Bounds(i int) (min, max float64)

	// SatisfiesBounds reports whether every component of s lies within its bounds.
	SatisfiesBounds(s State) bool

	// IsValid reports whether s is a collision-free configuration.
	IsValid(s State) bool

	// CheckMotion reports whether the straight-line motion from a to b is valid.
	CheckMotion(a, b State) bool
}

// Sampler produces random configurations. Samplers are not required to be
// safe for concurrent use; the planner allocates one per worker thread.
type Sampler interface {
	// Sample writes a uniformly random in-bounds configuration into s.
	Sample(s State)

	// Uniform01 returns a uniformly distributed value in [0, 1).
	Uniform01() float64
}

// SamplerSpace is implemented by spaces that can allocate their own samplers.
// The planner uses it to build the per-thread sampler array.
type SamplerSpace interface {
	Space

	// NewSampler returns a fresh independent sampler seeded with seed.
	NewSampler(seed int64) Sampler
}

// DistanceSquared returns the squared Euclidean distance between two
// configurations of the same dimension. It is the metric used by the
// planner's nearest-neighbor index.
func DistanceSquared(a, b State) float64 {
	var d float64
	for i := range a {
		diff := a[i] - b[i]
		d += diff * diff
	}
	return d
}
