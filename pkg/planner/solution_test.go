package planner

import (
	"math"
	"sync"
	"testing"
)

func TestSolutionInfoStartsEmpty(t *testing.T) {
	sol := newSolutionInfo()
	if sol.solved() != nil {
		t.Fatal("fresh record must have no exact solution")
	}
	if !math.IsInf(sol.bestDifference(), 1) {
		t.Fatalf("fresh record must report +Inf difference, got %g", sol.bestDifference())
	}
}

func TestSolutionInfoApproximateIsMonotonic(t *testing.T) {
	sol := newSolutionInfo()
	m1 := &Motion{}
	m2 := &Motion{}

	if !sol.recordApproximate(m1, 5.0) {
		t.Fatal("first approximate record must be accepted")
	}
	if sol.bestDifference() != 5.0 {
		t.Fatalf("expected difference 5.0, got %g", sol.bestDifference())
	}

	// A worse candidate is rejected even though the caller's racy pre-check
	// let it through.
	if sol.recordApproximate(m2, 7.0) {
		t.Fatal("worse approximate record must be rejected")
	}
	if sol.bestDifference() != 5.0 {
		t.Fatalf("difference regressed to %g", sol.bestDifference())
	}

	if !sol.recordApproximate(m2, 2.0) {
		t.Fatal("better approximate record must be accepted")
	}
	if sol.bestDifference() != 2.0 {
		t.Fatalf("expected difference 2.0, got %g", sol.bestDifference())
	}
}

func TestSolutionInfoExactSetsOnce(t *testing.T) {
	sol := newSolutionInfo()
	first := &Motion{}
	second := &Motion{}

	sol.recordExact(first, 0)
	if sol.solved() != first {
		t.Fatal("exact solution not installed")
	}

	sol.recordExact(second, 0)
	if sol.solved() != first {
		t.Fatal("a second exact find must not replace the first")
	}

	// Approximate updates after an exact find never clear it.
	sol.recordApproximate(second, -1)
	if sol.solved() != first {
		t.Fatal("approximate record cleared the exact solution")
	}
}

func TestSolutionInfoOutcomePrefersExact(t *testing.T) {
	sol := newSolutionInfo()
	approx := &Motion{}
	exact := &Motion{}

	sol.recordApproximate(approx, 3.0)
	m, approximate, diff := sol.outcome()
	if m != approx || !approximate || diff != 3.0 {
		t.Fatalf("expected approximate outcome (%p, true, 3.0), got (%p, %t, %g)", approx, m, approximate, diff)
	}

	sol.recordExact(exact, 0)
	m, approximate, diff = sol.outcome()
	if m != exact || approximate || diff != 0 {
		t.Fatalf("expected exact outcome, got (%p, %t, %g)", m, approximate, diff)
	}
}

func TestSolutionInfoConcurrentUpdates(t *testing.T) {
	sol := newSolutionInfo()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			m := &Motion{}
			for d := 100.0; d > float64(i); d-- {
				if d < sol.bestDifference() {
					sol.recordApproximate(m, d)
				}
			}
		}(i)
	}
	wg.Wait()

	// The smallest offered distance is just above 0 (goroutine i=0 stops at
	// d=1), and monotonicity means nothing larger survived.
	if got := sol.bestDifference(); got != 1.0 {
		t.Fatalf("expected final difference 1.0, got %g", got)
	}
}
