package planner

import (
	"math"
	"sync"
	"sync/atomic"
)

// solutionInfo is the shared best-solution record for one Solve call. It is
// guarded by its own mutex, independent of the tree mutex, so solution
// bookkeeping never contends with tree growth.
//
// Workers read the exact-solution pointer and the best approximate distance
// on every iteration without taking the lock. Those reads use atomics so
// they stay cheap and lock free; a stale value costs at most one extra
// iteration, because the authoritative outcome is always read under the
// lock after all workers have joined. All writes happen under the mutex.
type solutionInfo struct {
	mu sync.Mutex

	// solution is set at most once and never cleared.
	solution atomic.Pointer[Motion]

	// approxDiff holds the float64 bits of the smallest distance-to-goal
	// seen so far. Monotonically non-increasing.
	approxDiff atomic.Uint64

	// approxSol is the motion that produced approxDiff. Only touched under mu.
	approxSol *Motion
}

func newSolutionInfo() *solutionInfo {
	s := &solutionInfo{}
	s.approxDiff.Store(math.Float64bits(math.Inf(1)))
	return s
}

// solved returns the exact solution motion, or nil. Lock-free fast path for
// the worker loop condition.
func (s *solutionInfo) solved() *Motion {
	return s.solution.Load()
}

// bestDifference returns the smallest distance-to-goal recorded so far.
// Lock-free fast path for the improvement pre-check.
func (s *solutionInfo) bestDifference() float64 {
	return math.Float64frombits(s.approxDiff.Load())
}

// recordExact installs m as the exact solution. The first satisfying motion
// wins: a concurrent second exact find never overwrites it. Its distance
// replaces any earlier approximate record, since a satisfying motion defines
// the session's final difference.
func (s *solutionInfo) recordExact(m *Motion, dist float64) {
	s.mu.Lock()
	if s.solution.Load() == nil {
		s.approxDiff.Store(math.Float64bits(dist))
		s.solution.Store(m)
	}
	s.mu.Unlock()
}

// recordApproximate offers m as an approximate solution. The caller is
// expected to have done the racy dist < bestDifference() pre-check; the
// condition is re-checked under the lock so a better concurrent update is
// never clobbered.
func (s *solutionInfo) recordApproximate(m *Motion, dist float64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if dist >= math.Float64frombits(s.approxDiff.Load()) {
		return false
	}
	s.approxDiff.Store(math.Float64bits(dist))
	s.approxSol = m
	return true
}

// outcome returns the final state of the record: the exact solution if one
// was found, otherwise the best approximate motion, plus the recorded
// difference. Called after every worker has joined.
func (s *solutionInfo) outcome() (m *Motion, approximate bool, diff float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	diff = math.Float64frombits(s.approxDiff.Load())
	if exact := s.solution.Load(); exact != nil {
		return exact, false, diff
	}
	return s.approxSol, true, diff
}
