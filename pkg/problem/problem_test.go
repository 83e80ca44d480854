package problem

import (
	"math"
	"testing"

	"github.com/wehubfusion/Daedalus/pkg/space"
)

func testSpace(t *testing.T) space.Space {
	t.Helper()
	sp, err := space.NewRealVectorSpace([]float64{0, 0}, []float64{1, 1})
	if err != nil {
		t.Fatalf("NewRealVectorSpace failed: %v", err)
	}
	return sp
}

func TestDefinitionStartStates(t *testing.T) {
	def := NewDefinition(testSpace(t), nil)

	if err := def.AddStartState(space.State{0.1, 0.2}); err != nil {
		t.Fatalf("AddStartState failed: %v", err)
	}
	if err := def.AddStartState(space.State{0.1}); err == nil {
		t.Fatal("wrong-dimension start must be rejected")
	}
	if def.StartStateCount() != 1 {
		t.Fatalf("expected 1 start state, got %d", def.StartStateCount())
	}

	// Stored starts are copies.
	original := space.State{0.5, 0.5}
	if err := def.AddStartState(original); err != nil {
		t.Fatalf("AddStartState failed: %v", err)
	}
	original[0] = 0.9
	if got := def.StartState(1); got[0] != 0.5 {
		t.Fatalf("start state aliased caller memory, got %v", got)
	}
}

func TestDefinitionSolutionLifecycle(t *testing.T) {
	def := NewDefinition(testSpace(t), nil)

	if !math.IsInf(def.Difference(), 1) {
		t.Fatalf("difference must start at +Inf, got %g", def.Difference())
	}
	if path, _ := def.SolutionPath(); path != nil {
		t.Fatal("fresh definition must have no solution path")
	}
	if def.IsAchieved() {
		t.Fatal("fresh definition must not report achievement")
	}

	approx := &Path{States: []space.State{{0, 0}, {0.5, 0.5}}}
	def.SetSolutionPath(approx, true)
	def.SetDifference(0.25)
	if def.IsAchieved() {
		t.Fatal("approximate solution must not count as achieved")
	}

	exact := &Path{States: []space.State{{0, 0}, {1, 1}}}
	def.SetSolutionPath(exact, false)
	def.SetDifference(0)
	if !def.IsAchieved() {
		t.Fatal("exact solution must count as achieved")
	}

	path, approximate := def.SolutionPath()
	if approximate || path.Len() != 2 {
		t.Fatalf("expected exact path of length 2, got (approximate=%t, len=%d)", approximate, path.Len())
	}
	if first, last := path.First(), path.Last(); first[0] != 0 || last[0] != 1 {
		t.Fatalf("path order wrong: first %v, last %v", first, last)
	}
}

func TestPathEmpty(t *testing.T) {
	var p *Path
	if p.Len() != 0 {
		t.Fatal("nil path must have length 0")
	}
	empty := &Path{}
	if empty.First() != nil || empty.Last() != nil {
		t.Fatal("empty path must have nil endpoints")
	}
}
