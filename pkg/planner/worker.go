package planner

import (
	"math"
	"time"

	"github.com/wehubfusion/Daedalus/pkg/goal"
	"github.com/wehubfusion/Daedalus/pkg/space"
)

// solveThread is the per-worker extension loop. Every worker runs the same
// loop against the shared tree and solution record until an exact solution
// exists or the shared deadline passes.
//
// Locking discipline: the tree mutex is held for exactly one Nearest query
// or one Add, never across sampling, steering, or motion checking. Those
// dominate iteration cost and run fully in parallel.
func (p *Planner) solveThread(tid int, deadline time.Time, sol *solutionInfo, goalSampler goal.Sampleable) {
	dim := p.space.Dimension()

	// Per-dimension steering budget: a rho fraction of each bound extent.
	steerRange := make([]float64, dim)
	for i := 0; i < dim; i++ {
		min, max := p.space.Bounds(i)
		steerRange[i] = p.rho * (max - min)
	}

	sampler := p.samplers[tid]

	// Thread-private scratch: the random candidate motion and the steered
	// target buffer are reused across iterations and never shared.
	rmotion := newMotion(dim)
	rstate := rmotion.State
	xstate := make(space.State, dim)

	for sol.solved() == nil && time.Now().Before(deadline) {
		// Sample, with goal biasing when the goal supports it.
		if goalSampler != nil && sampler.Uniform01() < p.goalBias {
			goalSampler.SampleGoal(rstate)
		} else {
			sampler.Sample(rstate)
		}

		// Closest existing node to the candidate.
		p.treeMu.Lock()
		nmotion, ok := p.tree.Nearest(rmotion)
		p.treeMu.Unlock()
		if !ok {
			return
		}

		// Steer: per dimension, take the candidate value when it is within
		// the step budget, otherwise move a rho fraction toward it.
		for i := 0; i < dim; i++ {
			diff := rstate[i] - nmotion.State[i]
			if math.Abs(diff) < steerRange[i] {
				xstate[i] = rstate[i]
			} else {
				xstate[i] = nmotion.State[i] + diff*p.rho
			}
		}

		if !p.space.CheckMotion(nmotion.State, xstate) {
			continue
		}

		motion := newMotion(dim)
		space.Copy(motion.State, xstate)
		motion.Parent = nmotion

		p.treeMu.Lock()
		p.tree.Add(motion)
		p.treeMu.Unlock()

		solved, dist := p.goal.IsSatisfied(motion.State)
		if solved {
			sol.recordExact(motion, dist)
			break
		}
		if dist < sol.bestDifference() {
			sol.recordApproximate(motion, dist)
		}
	}
}
