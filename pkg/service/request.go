package service

import (
	"fmt"
	"time"

	"github.com/wehubfusion/Daedalus/pkg/goal"
	"github.com/wehubfusion/Daedalus/pkg/problem"
	"github.com/wehubfusion/Daedalus/pkg/scripting"
	"github.com/wehubfusion/Daedalus/pkg/space"
)

// PlanRequest is the wire format of one planning query
type PlanRequest struct {
	// Low and High bound the configuration space per dimension.
	Low  []float64 `json:"low"`
	High []float64 `json:"high"`

	// Starts are the start configurations; at least one is required.
	Starts [][]float64 `json:"starts"`

	// Goal is the goal-region center, Threshold its satisfaction radius.
	Goal      []float64 `json:"goal"`
	Threshold float64   `json:"threshold"`

	// DurationMs is the solve budget in milliseconds.
	DurationMs int64 `json:"duration_ms"`

	// Threads overrides the planner thread count when positive.
	Threads int `json:"threads,omitempty"`

	// GoalBias and Rho override planner defaults when set.
	GoalBias *float64 `json:"goal_bias,omitempty"`
	Rho      *float64 `json:"rho,omitempty"`

	// Script optionally defines collision checking in JavaScript: a
	// function isValid(state) over the configuration array.
	Script string `json:"script,omitempty"`

	// IncludeStates asks for the full grown tree in the result.
	IncludeStates bool `json:"include_states,omitempty"`

	// Persist asks the service to save the solved path to blob storage.
	Persist bool `json:"persist,omitempty"`
}

// PlanResult is the wire format of a planning outcome. Difference is omitted
// when the planner recorded no finite distance to the goal, which happens
// when no extension ever succeeded; +Inf has no JSON encoding, so the field
// is only set once a solution, exact or approximate, exists.
type PlanResult struct {
	SessionID   string      `json:"session_id"`
	Found       bool        `json:"found"`
	Approximate bool        `json:"approximate"`
	Difference  *float64    `json:"difference,omitempty"`
	Path        [][]float64 `json:"path,omitempty"`
	StateCount  int         `json:"state_count"`
	States      [][]float64 `json:"states,omitempty"`
	BlobURL     string      `json:"blob_url,omitempty"`
	Error       string      `json:"error,omitempty"`
}

// Validate checks the structural integrity of a request.
func (r *PlanRequest) Validate() error {
	if len(r.Low) == 0 || len(r.Low) != len(r.High) {
		return fmt.Errorf("bounds must be non-empty and of equal length")
	}
	if len(r.Starts) == 0 {
		return fmt.Errorf("at least one start configuration is required")
	}
	dim := len(r.Low)
	for i, s := range r.Starts {
		if len(s) != dim {
			return fmt.Errorf("start %d has %d values, expected %d", i, len(s), dim)
		}
	}
	if len(r.Goal) != dim {
		return fmt.Errorf("goal has %d values, expected %d", len(r.Goal), dim)
	}
	if r.Threshold < 0 {
		return fmt.Errorf("threshold must not be negative")
	}
	if r.DurationMs <= 0 {
		return fmt.Errorf("duration_ms must be positive")
	}
	return nil
}

// Duration returns the solve budget.
func (r *PlanRequest) Duration() time.Duration {
	return time.Duration(r.DurationMs) * time.Millisecond
}

// buildProblem constructs the space, goal, and problem definition described
// by the request.
func (r *PlanRequest) buildProblem() (*problem.Definition, error) {
	sp, err := space.NewRealVectorSpace(r.Low, r.High)
	if err != nil {
		return nil, fmt.Errorf("invalid bounds: %w", err)
	}

	if r.Script != "" {
		checker, err := scripting.NewChecker(r.Script)
		if err != nil {
			return nil, err
		}
		sp.SetValidityChecker(checker.Func())
	}

	region, err := goal.NewRegion(space.State(r.Goal), r.Threshold)
	if err != nil {
		return nil, fmt.Errorf("invalid goal: %w", err)
	}

	def := problem.NewDefinition(sp, region)
	for i, s := range r.Starts {
		if err := def.AddStartState(space.State(s)); err != nil {
			return nil, fmt.Errorf("invalid start %d: %w", i, err)
		}
	}
	return def, nil
}
