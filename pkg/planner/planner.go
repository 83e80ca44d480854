// Package planner implements a parallel rapidly-exploring random tree
// planner. A fixed pool of worker goroutines cooperatively grows one shared
// search tree over a continuous configuration space, racing a wall-clock
// deadline to connect a start configuration to a goal region. Two
// independent mutexes guard the shared state: one for the spatial index,
// one for the best-solution record, so tree growth and solution bookkeeping
// never contend with each other.
package planner

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/wehubfusion/Daedalus/pkg/concurrency"
	daederrors "github.com/wehubfusion/Daedalus/pkg/errors"
	"github.com/wehubfusion/Daedalus/pkg/goal"
	"github.com/wehubfusion/Daedalus/pkg/nearest"
	"github.com/wehubfusion/Daedalus/pkg/problem"
	"github.com/wehubfusion/Daedalus/pkg/space"
)

const (
	// DefaultGoalBias is the probability of sampling from the goal region
	// instead of uniformly.
	DefaultGoalBias = 0.05

	// DefaultRho is the fraction of each dimension's extent used as the
	// per-step steering budget.
	DefaultRho = 0.5
)

// SamplerAllocator builds one independent sampler per worker thread.
type SamplerAllocator func(seed int64) space.Sampler

// Planner is a parallel RRT planner over a problem definition. The tree
// persists across Solve calls: repeated calls with a larger time budget
// keep growing the same tree, and start states are only seeded once.
//
// Configuration methods must not be called while Solve is running.
type Planner struct {
	def    *problem.Definition
	space  space.Space
	goal   goal.Goal
	logger *zap.Logger
	tracer trace.Tracer

	goalBias     float64
	rho          float64
	threadCount  int
	samplers     []space.Sampler
	samplerAlloc SamplerAllocator

	// treeMu guards tree for exactly one Nearest or one Add at a time.
	treeMu sync.Mutex
	tree   nearest.Index[*Motion]

	addedStartStates int

	tracingShutdown func(context.Context) error
}

// NewPlanner creates a planner for the given problem definition. The logger
// may be nil, in which case logging is disabled. The definition's space must
// either implement space.SamplerSpace or a SamplerAllocator must be
// installed with SetSamplerAllocator before solving.
func NewPlanner(def *problem.Definition, logger *zap.Logger, tracingConfig *TracingConfig) (*Planner, error) {
	if def == nil {
		return nil, errors.New("problem definition cannot be nil")
	}
	if def.Space() == nil {
		return nil, errors.New("problem definition has no configuration space")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	p := &Planner{
		def:         def,
		space:       def.Space(),
		goal:        def.Goal(),
		logger:      logger,
		tracer:      otel.Tracer("daedalus/planner"),
		goalBias:    DefaultGoalBias,
		rho:         DefaultRho,
		threadCount: concurrency.LoadConfig().PlannerThreads,
		tree: nearest.NewLinear(func(a, b *Motion) float64 {
			return space.DistanceSquared(a.State, b.State)
		}),
	}
	p.samplers = make([]space.Sampler, p.threadCount)

	if ss, ok := p.space.(space.SamplerSpace); ok {
		p.samplerAlloc = func(seed int64) space.Sampler { return ss.NewSampler(seed) }
	}

	if tracingConfig != nil {
		ctx := context.Background()
		shutdown, err := setupTracing(ctx, *tracingConfig, logger)
		if err != nil {
			logger.Warn("Failed to setup tracing, continuing without tracing", zap.Error(err))
		} else {
			p.tracingShutdown = shutdown
		}
	}

	return p, nil
}

// SetGoalBias sets the probability of drawing a sample from the goal region.
// Values outside [0, 1] are rejected.
func (p *Planner) SetGoalBias(bias float64) error {
	if bias < 0 || bias > 1 {
		return fmt.Errorf("goal bias must be in [0, 1], got %g", bias)
	}
	p.goalBias = bias
	return nil
}

// GoalBias returns the configured goal bias.
func (p *Planner) GoalBias() float64 { return p.goalBias }

// SetRho sets the steering fraction: the per-dimension step budget is
// rho * (max - min). Values outside (0, 1] are rejected.
func (p *Planner) SetRho(rho float64) error {
	if rho <= 0 || rho > 1 {
		return fmt.Errorf("rho must be in (0, 1], got %g", rho)
	}
	p.rho = rho
	return nil
}

// Rho returns the configured steering fraction.
func (p *Planner) Rho() float64 { return p.rho }

// SetThreadCount sets the number of worker goroutines used by the next
// Solve call and resizes the per-thread sampler array. A non-positive count
// is a programming error and panics.
func (p *Planner) SetThreadCount(n int) {
	if n < 1 {
		panic(fmt.Sprintf("planner thread count must be positive, got %d", n))
	}
	p.threadCount = n
	p.samplers = make([]space.Sampler, n)
}

// ThreadCount returns the configured number of worker goroutines.
func (p *Planner) ThreadCount() int { return p.threadCount }

// SetSamplerAllocator overrides how per-thread samplers are built.
func (p *Planner) SetSamplerAllocator(alloc SamplerAllocator) {
	p.samplerAlloc = alloc
	for i := range p.samplers {
		p.samplers[i] = nil
	}
}

// Solve runs the parallel search for at most the given duration and reports
// whether an exact, goal-achieving solution was installed on the problem
// definition. The context is used for trace propagation only; termination
// is cooperative through the shared deadline, so Solve blocks for up to the
// full budget plus one iteration.
//
// A deadline miss with an approximate solution is not an error: Solve
// installs the approximate path and returns (false, nil). Precondition
// failures (no goal, no valid start states) return an error with no workers
// spawned.
func (p *Planner) Solve(ctx context.Context, duration time.Duration) (bool, error) {
	if p.goal == nil {
		p.logger.Error("Goal undefined")
		return false, daederrors.ErrGoalUndefined
	}
	if v, ok := p.goal.(interface{ Validate(space.Space) error }); ok {
		if err := v.Validate(p.space); err != nil {
			p.logger.Error("Goal cannot be evaluated against the space", zap.Error(err))
			return false, fmt.Errorf("%w: %v", daederrors.ErrGoalNotEvaluable, err)
		}
	}
	if err := p.ensureSamplers(); err != nil {
		return false, err
	}

	sessionID := uuid.New().String()
	logger := p.logger.With(zap.String("session_id", sessionID))

	ctx, span := p.tracer.Start(ctx, "planner.solve",
		trace.WithAttributes(
			attribute.String("session_id", sessionID),
			attribute.Int("thread_count", p.threadCount),
			attribute.Float64("duration_seconds", duration.Seconds()),
		))
	defer span.End()

	// Seed any start states added since the last Solve call.
	for ; p.addedStartStates < p.def.StartStateCount(); p.addedStartStates++ {
		st := p.def.StartState(p.addedStartStates)
		if p.space.SatisfiesBounds(st) && p.space.IsValid(st) {
			motion := newMotion(p.space.Dimension())
			space.Copy(motion.State, st)
			p.treeMu.Lock()
			p.tree.Add(motion)
			p.treeMu.Unlock()
		} else {
			logger.Error("Initial state is invalid", zap.Int("start_index", p.addedStartStates))
		}
	}

	if p.treeSize() == 0 {
		logger.Error("There are no valid initial states")
		return false, daederrors.ErrNoValidStartStates
	}

	logger.Info("Starting planning",
		zap.Int("states", p.treeSize()),
		zap.Int("threads", p.threadCount),
		zap.Duration("budget", duration))

	// The sampleable capability is resolved once, before the pool starts.
	goalSampler, _ := goal.AsSampleable(p.goal)

	deadline := time.Now().Add(duration)
	sol := newSolutionInfo()

	var wg sync.WaitGroup
	for tid := 0; tid < p.threadCount; tid++ {
		wg.Add(1)
		go func(tid int) {
			defer wg.Done()
			p.solveThread(tid, deadline, sol, goalSampler)
		}(tid)
	}
	wg.Wait()

	solution, approximate, diff := sol.outcome()
	if solution != nil {
		path := &problem.Path{}
		chain := chainToRoot(solution)
		for i := len(chain) - 1; i >= 0; i-- {
			path.States = append(path.States, chain[i].State.Clone())
		}
		p.def.SetDifference(diff)
		p.def.SetSolutionPath(path, approximate)

		if approximate {
			logger.Warn("Found approximate solution", zap.Float64("difference", diff))
		}
		span.SetAttributes(
			attribute.Bool("approximate", approximate),
			attribute.Int("path_length", path.Len()),
			attribute.Float64("difference", diff),
		)
	}

	logger.Info("Planning finished",
		zap.Int("states", p.treeSize()),
		zap.Bool("solved", solution != nil && !approximate))
	span.SetAttributes(attribute.Int("states_created", p.treeSize()))

	return p.def.IsAchieved(), nil
}

// GetStates returns a snapshot of every configuration stored in the tree.
// Intended for introspection after Solve has returned.
func (p *Planner) GetStates() []space.State {
	p.treeMu.Lock()
	motions := p.tree.List()
	p.treeMu.Unlock()

	states := make([]space.State, len(motions))
	for i, m := range motions {
		states[i] = m.State.Clone()
	}
	return states
}

// Close releases planner resources, shutting down tracing if it was set up.
func (p *Planner) Close() error {
	if p.tracingShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return p.tracingShutdown(ctx)
	}
	return nil
}

func (p *Planner) treeSize() int {
	p.treeMu.Lock()
	defer p.treeMu.Unlock()
	return p.tree.Size()
}

func (p *Planner) ensureSamplers() error {
	if p.samplerAlloc == nil {
		return errors.New("space cannot allocate samplers; install one with SetSamplerAllocator")
	}
	for i := range p.samplers {
		if p.samplers[i] == nil {
			p.samplers[i] = p.samplerAlloc(time.Now().UnixNano() + int64(i))
		}
	}
	return nil
}
