package planner

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/wehubfusion/Daedalus/pkg/errors"
	"github.com/wehubfusion/Daedalus/pkg/goal"
	"github.com/wehubfusion/Daedalus/pkg/problem"
	"github.com/wehubfusion/Daedalus/pkg/space"
)

func newTestSpace(t *testing.T, low, high []float64) *space.RealVectorSpace {
	t.Helper()
	sp, err := space.NewRealVectorSpace(low, high)
	if err != nil {
		t.Fatalf("NewRealVectorSpace failed: %v", err)
	}
	return sp
}

func newTestRegion(t *testing.T, target space.State, threshold float64) *goal.Region {
	t.Helper()
	region, err := goal.NewRegion(target, threshold)
	if err != nil {
		t.Fatalf("NewRegion failed: %v", err)
	}
	return region
}

func TestSolveReachableGoalSingleThread(t *testing.T) {
	sp := newTestSpace(t, []float64{0, 0}, []float64{10, 10})
	region := newTestRegion(t, space.State{2, 2}, 0.5)
	def := problem.NewDefinition(sp, region)
	if err := def.AddStartState(space.State{1, 1}); err != nil {
		t.Fatalf("AddStartState failed: %v", err)
	}

	p, err := NewPlanner(def, nil, nil)
	if err != nil {
		t.Fatalf("NewPlanner failed: %v", err)
	}
	p.SetThreadCount(1)
	if err := p.SetRho(1.0); err != nil {
		t.Fatalf("SetRho failed: %v", err)
	}
	// Always sample the goal so the first extension reaches it.
	if err := p.SetGoalBias(1.0); err != nil {
		t.Fatalf("SetGoalBias failed: %v", err)
	}

	solved, err := p.Solve(context.Background(), 5*time.Second)
	if err != nil {
		t.Fatalf("Solve failed: %v", err)
	}
	if !solved {
		t.Fatal("expected an exact solution")
	}

	path, approximate := def.SolutionPath()
	if path == nil {
		t.Fatal("expected a solution path")
	}
	if approximate {
		t.Fatal("expected exact solution, got approximate")
	}
	if path.Len() != 2 {
		t.Fatalf("expected path of length 2 (start, goal state), got %d", path.Len())
	}
	if first := path.First(); first[0] != 1 || first[1] != 1 {
		t.Fatalf("path must begin at the start state, got %v", first)
	}
	if sat, _ := region.IsSatisfied(path.Last()); !sat {
		t.Fatalf("path must end inside the goal region, got %v", path.Last())
	}
	if diff := def.Difference(); diff != 0 {
		t.Fatalf("expected difference 0 for exact solution, got %g", diff)
	}
	if !def.IsAchieved() {
		t.Fatal("definition must report the goal as achieved")
	}
}

func TestSolveNoValidStartStates(t *testing.T) {
	sp := newTestSpace(t, []float64{0, 0}, []float64{10, 10})
	region := newTestRegion(t, space.State{5, 5}, 0.5)
	def := problem.NewDefinition(sp, region)
	// Both starts are out of bounds.
	if err := def.AddStartState(space.State{-1, 5}); err != nil {
		t.Fatalf("AddStartState failed: %v", err)
	}
	if err := def.AddStartState(space.State{11, 5}); err != nil {
		t.Fatalf("AddStartState failed: %v", err)
	}

	p, err := NewPlanner(def, nil, nil)
	if err != nil {
		t.Fatalf("NewPlanner failed: %v", err)
	}

	solved, err := p.Solve(context.Background(), 100*time.Millisecond)
	if solved {
		t.Fatal("expected Solve to fail with no valid starts")
	}
	if !errors.IsPrecondition(err) {
		t.Fatalf("expected a precondition error, got %v", err)
	}
	if states := p.GetStates(); len(states) != 0 {
		t.Fatalf("tree must stay empty, got %d states", len(states))
	}
}

func TestSolveGoalUndefined(t *testing.T) {
	sp := newTestSpace(t, []float64{0}, []float64{1})
	def := problem.NewDefinition(sp, nil)
	if err := def.AddStartState(space.State{0.5}); err != nil {
		t.Fatalf("AddStartState failed: %v", err)
	}

	p, err := NewPlanner(def, nil, nil)
	if err != nil {
		t.Fatalf("NewPlanner failed: %v", err)
	}

	solved, err := p.Solve(context.Background(), 100*time.Millisecond)
	if solved || err == nil {
		t.Fatal("expected Solve to fail without a goal")
	}
	if !errors.IsPrecondition(err) {
		t.Fatalf("expected a precondition error, got %v", err)
	}
}

func TestSolveUnreachableGoalReportsApproximate(t *testing.T) {
	sp := newTestSpace(t, []float64{0, 0}, []float64{10, 10})
	// The goal region lies far outside the bounds, so no in-bounds state can
	// ever satisfy it.
	region := newTestRegion(t, space.State{100, 100}, 0.5)
	def := problem.NewDefinition(sp, region)
	if err := def.AddStartState(space.State{5, 5}); err != nil {
		t.Fatalf("AddStartState failed: %v", err)
	}

	p, err := NewPlanner(def, nil, nil)
	if err != nil {
		t.Fatalf("NewPlanner failed: %v", err)
	}
	p.SetThreadCount(4)

	solved, err := p.Solve(context.Background(), 200*time.Millisecond)
	if err != nil {
		t.Fatalf("Solve failed: %v", err)
	}
	if solved {
		t.Fatal("unreachable goal must not be solved exactly")
	}

	states := p.GetStates()
	if len(states) <= 1 {
		t.Fatalf("tree must have grown beyond the seeded start, got %d states", len(states))
	}

	path, approximate := def.SolutionPath()
	if path == nil {
		t.Fatal("expected an approximate solution path")
	}
	if !approximate {
		t.Fatal("solution must be flagged approximate")
	}
	if diff := def.Difference(); math.IsInf(diff, 1) {
		t.Fatal("difference must be finite once any extension succeeded")
	}
	if def.IsAchieved() {
		t.Fatal("approximate solution must not count as achieved")
	}
}

func TestSolveRespectsDeadline(t *testing.T) {
	sp := newTestSpace(t, []float64{0, 0, 0}, []float64{1, 1, 1})
	region := newTestRegion(t, space.State{50, 50, 50}, 0.1)
	def := problem.NewDefinition(sp, region)
	if err := def.AddStartState(space.State{0.5, 0.5, 0.5}); err != nil {
		t.Fatalf("AddStartState failed: %v", err)
	}

	p, err := NewPlanner(def, nil, nil)
	if err != nil {
		t.Fatalf("NewPlanner failed: %v", err)
	}
	p.SetThreadCount(4)

	budget := 150 * time.Millisecond
	start := time.Now()
	if _, err := p.Solve(context.Background(), budget); err != nil {
		t.Fatalf("Solve failed: %v", err)
	}
	elapsed := time.Since(start)

	// Workers observe the deadline between iterations, so the overrun is
	// bounded by one iteration plus scheduling noise.
	if elapsed > budget+2*time.Second {
		t.Fatalf("Solve overran its budget: took %v for a %v budget", elapsed, budget)
	}
}

func TestTreeIntegrityAndSteeringBound(t *testing.T) {
	low := []float64{0, 0}
	high := []float64{10, 10}
	sp := newTestSpace(t, low, high)
	region := newTestRegion(t, space.State{100, 100}, 0.5)
	def := problem.NewDefinition(sp, region)
	if err := def.AddStartState(space.State{5, 5}); err != nil {
		t.Fatalf("AddStartState failed: %v", err)
	}

	p, err := NewPlanner(def, nil, nil)
	if err != nil {
		t.Fatalf("NewPlanner failed: %v", err)
	}
	p.SetThreadCount(2)
	rho := 0.1
	if err := p.SetRho(rho); err != nil {
		t.Fatalf("SetRho failed: %v", err)
	}

	if _, err := p.Solve(context.Background(), 150*time.Millisecond); err != nil {
		t.Fatalf("Solve failed: %v", err)
	}

	p.treeMu.Lock()
	motions := p.tree.List()
	p.treeMu.Unlock()

	const eps = 1e-9
	for _, m := range motions {
		// Every parent chain terminates at a root within tree-size steps.
		steps := 0
		for cur := m; cur != nil; cur = cur.Parent {
			steps++
			if steps > len(motions) {
				t.Fatal("parent chain longer than tree size, cycle suspected")
			}
		}

		// Each extension stays within the per-dimension steering budget.
		if m.Parent != nil {
			for i := range m.State {
				bound := rho * (high[i] - low[i])
				if d := math.Abs(m.State[i] - m.Parent.State[i]); d > bound+eps {
					t.Fatalf("dimension %d moved %g, budget is %g", i, d, bound)
				}
			}
		}
	}
}

func TestRepeatedSolveKeepsTreeAndSeedsNewStarts(t *testing.T) {
	sp := newTestSpace(t, []float64{0, 0}, []float64{10, 10})
	region := newTestRegion(t, space.State{100, 100}, 0.5)
	def := problem.NewDefinition(sp, region)
	if err := def.AddStartState(space.State{1, 1}); err != nil {
		t.Fatalf("AddStartState failed: %v", err)
	}

	p, err := NewPlanner(def, nil, nil)
	if err != nil {
		t.Fatalf("NewPlanner failed: %v", err)
	}
	p.SetThreadCount(1)

	if _, err := p.Solve(context.Background(), 50*time.Millisecond); err != nil {
		t.Fatalf("first Solve failed: %v", err)
	}
	grown := len(p.GetStates())
	if grown < 1 {
		t.Fatal("first Solve must seed the tree")
	}

	if err := def.AddStartState(space.State{9, 9}); err != nil {
		t.Fatalf("AddStartState failed: %v", err)
	}
	if _, err := p.Solve(context.Background(), 50*time.Millisecond); err != nil {
		t.Fatalf("second Solve failed: %v", err)
	}
	if got := len(p.GetStates()); got <= grown {
		t.Fatalf("second Solve must keep the old tree and grow it, had %d now %d", grown, got)
	}
}

func TestSetThreadCountValidation(t *testing.T) {
	sp := newTestSpace(t, []float64{0}, []float64{1})
	region := newTestRegion(t, space.State{0.5}, 0.1)
	def := problem.NewDefinition(sp, region)

	p, err := NewPlanner(def, nil, nil)
	if err != nil {
		t.Fatalf("NewPlanner failed: %v", err)
	}

	defer func() {
		if recover() == nil {
			t.Fatal("SetThreadCount(0) must panic")
		}
	}()
	p.SetThreadCount(0)
}

func TestConfigurationValidation(t *testing.T) {
	sp := newTestSpace(t, []float64{0}, []float64{1})
	region := newTestRegion(t, space.State{0.5}, 0.1)
	def := problem.NewDefinition(sp, region)

	p, err := NewPlanner(def, nil, nil)
	if err != nil {
		t.Fatalf("NewPlanner failed: %v", err)
	}

	if err := p.SetGoalBias(-0.1); err == nil {
		t.Fatal("negative goal bias must be rejected")
	}
	if err := p.SetGoalBias(1.5); err == nil {
		t.Fatal("goal bias above 1 must be rejected")
	}
	if err := p.SetRho(0); err == nil {
		t.Fatal("zero rho must be rejected")
	}
	if err := p.SetRho(1.2); err == nil {
		t.Fatal("rho above 1 must be rejected")
	}

	p.SetThreadCount(3)
	if p.ThreadCount() != 3 {
		t.Fatalf("expected thread count 3, got %d", p.ThreadCount())
	}
	if len(p.samplers) != 3 {
		t.Fatalf("sampler slots must track the thread count, got %d", len(p.samplers))
	}
}

func TestNewPlannerRejectsNilDefinition(t *testing.T) {
	if _, err := NewPlanner(nil, nil, nil); err == nil {
		t.Fatal("expected an error for a nil definition")
	}
}
