package goal

import (
	"fmt"
	"math"
	"math/rand"
	"sync"

	"github.com/wehubfusion/Daedalus/pkg/errors"
	"github.com/wehubfusion/Daedalus/pkg/space"
)

// Region is a ball-shaped goal: every configuration within Threshold
// (Euclidean distance) of the target satisfies the goal. It supports goal
// sampling by perturbing the target, so it enables goal-biased planning.
type Region struct {
	target    space.State
	threshold float64

	mu  sync.Mutex
	rng *rand.Rand
}

// NewRegion creates a goal region centered on target. A threshold of zero
// requires an exact match up to floating-point distance zero; negative
// thresholds are rejected.
func NewRegion(target space.State, threshold float64) (*Region, error) {
	if len(target) == 0 {
		return nil, fmt.Errorf("goal target must not be empty")
	}
	if threshold < 0 {
		return nil, fmt.Errorf("goal threshold must not be negative, got %g", threshold)
	}
	return &Region{
		target:    target.Clone(),
		threshold: threshold,
		rng:       rand.New(rand.NewSource(rand.Int63())),
	}, nil
}

// Target returns a copy of the region's center configuration.
func (r *Region) Target() space.State {
	return r.target.Clone()
}

// Threshold returns the satisfaction radius.
func (r *Region) Threshold() float64 {
	return r.threshold
}

// IsSatisfied reports whether s lies within the region and the distance from
// s to the region boundary (zero when inside).
func (r *Region) IsSatisfied(s space.State) (bool, float64) {
	if len(s) != len(r.target) {
		return false, math.Inf(1)
	}
	dist := math.Sqrt(space.DistanceSquared(s, r.target))
	if dist <= r.threshold {
		return true, 0
	}
	return false, dist - r.threshold
}

// SampleGoal writes a configuration from within the region into s. The
// internal RNG is shared across planner threads, so access is serialized;
// goal sampling happens on a small fraction of iterations (the goal bias)
// and stays off the hot path.
func (r *Region) SampleGoal(s space.State) {
	if len(s) != len(r.target) {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	copy(s, r.target)
	if r.threshold == 0 {
		return
	}
	// Uniform direction scaled to a random radius inside the ball.
	var norm float64
	dir := make([]float64, len(s))
	for i := range dir {
		dir[i] = r.rng.NormFloat64()
		norm += dir[i] * dir[i]
	}
	if norm == 0 {
		return
	}
	norm = math.Sqrt(norm)
	radius := r.threshold * math.Pow(r.rng.Float64(), 1/float64(len(s)))
	for i := range s {
		s[i] += dir[i] / norm * radius
	}
}

// Validate checks that the region's target has the space's dimension.
func (r *Region) Validate(sp space.Space) error {
	if sp != nil && sp.Dimension() != len(r.target) {
		return fmt.Errorf("%w: goal has %d values, space has %d dimensions",
			errors.ErrDimensionMismatch, len(r.target), sp.Dimension())
	}
	return nil
}
