// Package goal defines the goal-region capabilities consumed by the planner.
// The base capability is satisfaction testing with a distance measure; goal
// sampling is an optional capability that the planner resolves explicitly
// once, before starting its worker pool.
package goal

import (
	"github.com/wehubfusion/Daedalus/pkg/space"
)

// Goal is the minimal goal capability: a satisfaction test that also reports
// how far a configuration is from satisfying the goal. Implementations must
// be safe for concurrent use by every planner worker.
type Goal interface {
	// IsSatisfied reports whether s satisfies the goal and the distance from
	// s to goal satisfaction. A satisfied state may still report a non-zero
	// distance if the goal region has interior structure.
	IsSatisfied(s space.State) (bool, float64)
}

// Sampleable is the optional capability of goals that can produce
// configurations from within the goal region, enabling goal-biased sampling.
type Sampleable interface {
	Goal

	// SampleGoal writes a configuration from the goal region into s.
	// It must be safe for concurrent use.
	SampleGoal(s space.State)
}

// AsSampleable resolves the optional sampling capability of g. It returns
// (nil, false) for goals that only support satisfaction testing. The planner
// calls this once per Solve, never per iteration.
func AsSampleable(g Goal) (Sampleable, bool) {
	s, ok := g.(Sampleable)
	return s, ok
}
