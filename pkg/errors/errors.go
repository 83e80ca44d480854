package errors

import (
	"errors"
	"fmt"
)

var (
	// ErrGoalUndefined indicates that the problem definition has no goal
	ErrGoalUndefined = errors.New("goal undefined")

	// ErrGoalNotEvaluable indicates that the goal cannot report a distance to satisfaction
	ErrGoalNotEvaluable = errors.New("goal does not support satisfaction evaluation")

	// ErrNoValidStartStates indicates that no start configuration passed validation
	ErrNoValidStartStates = errors.New("there are no valid initial states")

	// ErrInvalidStartState indicates that a single start configuration is invalid
	ErrInvalidStartState = errors.New("initial state is invalid")

	// ErrDimensionMismatch indicates that a configuration has the wrong number of values
	ErrDimensionMismatch = errors.New("configuration dimension mismatch")

	// ErrInvalidBounds indicates that a state-space bound has min > max
	ErrInvalidBounds = errors.New("invalid bounds")

	// ErrScriptInvalid indicates that a validity script could not be compiled or evaluated
	ErrScriptInvalid = errors.New("validity script is invalid")
)

// Error represents a structured planner error
type Error struct {
	// Code is a machine-readable error code
	Code string

	// Message is a human-readable error message
	Message string

	// Err is the underlying error, if any
	Err error
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates a new planner error
func NewError(code, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// IsPrecondition checks if an error reports a configuration problem that
// prevented planning from starting at all
func IsPrecondition(err error) bool {
	return errors.Is(err, ErrGoalUndefined) ||
		errors.Is(err, ErrGoalNotEvaluable) ||
		errors.Is(err, ErrNoValidStartStates)
}
