// Package problem holds the planning query: the configuration space, the
// goal, the start configurations, and the solution reported back by the
// planner.
package problem

import (
	"fmt"
	"math"
	"sync"

	daederrors "github.com/wehubfusion/Daedalus/pkg/errors"
	"github.com/wehubfusion/Daedalus/pkg/goal"
	"github.com/wehubfusion/Daedalus/pkg/space"
)

// Path is an ordered sequence of configurations from a start state to the
// solution state.
type Path struct {
	States []space.State
}

// Len returns the number of configurations in the path.
func (p *Path) Len() int {
	if p == nil {
		return 0
	}
	return len(p.States)
}

// First returns the first configuration, or nil for an empty path.
func (p *Path) First() space.State {
	if p.Len() == 0 {
		return nil
	}
	return p.States[0]
}

// Last returns the final configuration, or nil for an empty path.
func (p *Path) Last() space.State {
	if p.Len() == 0 {
		return nil
	}
	return p.States[len(p.States)-1]
}

// Definition is a single planning query. Start states and the goal are set
// before solving; the planner reports the outcome through SetSolutionPath
// and SetDifference. The accessors are safe to call while a solve is in
// flight, though the solution only settles once Solve returns.
type Definition struct {
	space space.Space
	goal  goal.Goal

	mu          sync.Mutex
	starts      []space.State
	solution    *Path
	approximate bool
	difference  float64
}

// NewDefinition creates a problem over the given space and goal. The goal
// may be nil, in which case Solve fails its precondition check.
func NewDefinition(sp space.Space, g goal.Goal) *Definition {
	return &Definition{
		space:      sp,
		goal:       g,
		difference: math.Inf(1),
	}
}

// Space returns the configuration space of the query.
func (d *Definition) Space() space.Space { return d.space }

// Goal returns the goal of the query, possibly nil.
func (d *Definition) Goal() goal.Goal { return d.goal }

// AddStartState appends a start configuration. The state is copied.
func (d *Definition) AddStartState(s space.State) error {
	if d.space != nil && len(s) != d.space.Dimension() {
		return fmt.Errorf("%w: start state has %d values, space has %d dimensions",
			daederrors.ErrInvalidStartState, len(s), d.space.Dimension())
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.starts = append(d.starts, s.Clone())
	return nil
}

// StartStateCount returns the number of start configurations.
func (d *Definition) StartStateCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.starts)
}

// StartState returns the i-th start configuration.
func (d *Definition) StartState(i int) space.State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.starts[i]
}

// SetSolutionPath installs the solution found by the planner. approximate
// marks paths that end at the closest reachable configuration rather than
// inside the goal region.
func (d *Definition) SetSolutionPath(p *Path, approximate bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.solution = p
	d.approximate = approximate
}

// SetDifference records the distance between the solution endpoint and goal
// satisfaction.
func (d *Definition) SetDifference(diff float64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.difference = diff
}

// SolutionPath returns the installed solution path, if any, and whether it
// is approximate.
func (d *Definition) SolutionPath() (*Path, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.solution, d.approximate
}

// Difference returns the recorded distance to goal satisfaction. It is +Inf
// until the planner reports a solution.
func (d *Definition) Difference() float64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.difference
}

// IsAchieved reports whether an exact, goal-satisfying solution has been
// installed.
func (d *Definition) IsAchieved() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.solution != nil && !d.approximate
}
