package space

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/wehubfusion/Daedalus/pkg/errors"
)

// ValidityFunc decides whether a single configuration is collision free.
type ValidityFunc func(s State) bool

// RealVectorSpace is a bounded axis-aligned box in R^n with a pluggable
// validity predicate. Motion validity is checked by interpolating the
// straight-line segment at a fixed resolution and validating every
// intermediate configuration.
type RealVectorSpace struct {
	low        []float64
	high       []float64
	validity   ValidityFunc
	resolution float64
}

// NewRealVectorSpace creates a space bounded by [low[i], high[i]] per
// dimension. The default validity predicate accepts every in-bounds
// configuration; use SetValidityChecker to install obstacle checking.
func NewRealVectorSpace(low, high []float64) (*RealVectorSpace, error) {
	if len(low) == 0 {
		return nil, fmt.Errorf("space must have at least one dimension")
	}
	if len(low) != len(high) {
		return nil, fmt.Errorf("%w: %d lower bounds, %d upper bounds", errors.ErrDimensionMismatch, len(low), len(high))
	}
	for i := range low {
		if low[i] > high[i] {
			return nil, fmt.Errorf("%w: dimension %d has min %g > max %g", errors.ErrInvalidBounds, i, low[i], high[i])
		}
	}

	s := &RealVectorSpace{
		low:        append([]float64(nil), low...),
		high:       append([]float64(nil), high...),
		resolution: 0.01,
	}
	s.validity = func(State) bool { return true }
	return s, nil
}

// SetValidityChecker installs the collision predicate. A nil checker restores
// the accept-everything default.
func (r *RealVectorSpace) SetValidityChecker(fn ValidityFunc) {
	if fn == nil {
		fn = func(State) bool { return true }
	}
	r.validity = fn
}

// SetMotionResolution sets the interpolation step used by CheckMotion, as a
// fraction of the segment length. Values outside (0, 1] are ignored.
func (r *RealVectorSpace) SetMotionResolution(resolution float64) {
	if resolution > 0 && resolution <= 1 {
		r.resolution = resolution
	}
}

// Dimension returns the number of values in a configuration.
func (r *RealVectorSpace) Dimension() int { return len(r.low) }

// Bounds returns the lower and upper bound of dimension i.
func (r *RealVectorSpace) Bounds(i int) (min, max float64) {
	return r.low[i], r.high[i]
}

// SatisfiesBounds reports whether every component of s lies within its bounds.
func (r *RealVectorSpace) SatisfiesBounds(s State) bool {
	if len(s) != len(r.low) {
		return false
	}
	for i, v := range s {
		if v < r.low[i] || v > r.high[i] {
			return false
		}
	}
	return true
}

// IsValid reports whether s is in bounds and collision free.
func (r *RealVectorSpace) IsValid(s State) bool {
	return r.SatisfiesBounds(s) && r.validity(s)
}

// CheckMotion validates the straight segment from a to b by checking each
// interpolated configuration, endpoints included.
func (r *RealVectorSpace) CheckMotion(a, b State) bool {
	if !r.IsValid(a) || !r.IsValid(b) {
		return false
	}

	steps := int(math.Ceil(1.0 / r.resolution))
	if steps < 2 {
		return true
	}

	x := make(State, len(a))
	for k := 1; k < steps; k++ {
		t := float64(k) / float64(steps)
		for i := range a {
			x[i] = a[i] + t*(b[i]-a[i])
		}
		if !r.IsValid(x) {
			return false
		}
	}
	return true
}

// NewSampler returns an independent uniform sampler over the space's bounds.
// Each planner thread gets its own so random-number generation is contention
// free.
func (r *RealVectorSpace) NewSampler(seed int64) Sampler {
	return &uniformSampler{
		rng:  rand.New(rand.NewSource(seed)),
		low:  r.low,
		high: r.high,
	}
}

type uniformSampler struct {
	rng  *rand.Rand
	low  []float64
	high []float64
}

func (u *uniformSampler) Sample(s State) {
	for i := range s {
		s[i] = u.low[i] + u.rng.Float64()*(u.high[i]-u.low[i])
	}
}

func (u *uniformSampler) Uniform01() float64 {
	return u.rng.Float64()
}
