// Package scripting lets planning problems define collision checking in
// JavaScript. A script declares a function isValid(state) receiving the
// configuration as an array of numbers and returning a boolean. Scripts are
// compiled once; because goja runtimes are not safe for concurrent use, each
// evaluation borrows a runtime from an internal pool, so the checker can be
// shared by every planner worker thread.
package scripting

import (
	"fmt"
	"sync"

	"github.com/dop251/goja"

	daederrors "github.com/wehubfusion/Daedalus/pkg/errors"
	"github.com/wehubfusion/Daedalus/pkg/space"
)

// entryPoint is the function name a validity script must declare.
const entryPoint = "isValid"

// Checker evaluates a compiled JavaScript validity predicate.
type Checker struct {
	program *goja.Program
	pool    sync.Pool
}

type vmSlot struct {
	vm *goja.Runtime
	fn goja.Callable
}

// NewChecker compiles source and verifies that it declares an isValid
// function. Compilation or a missing entry point yields ErrScriptInvalid.
func NewChecker(source string) (*Checker, error) {
	program, err := goja.Compile("validity", source, true)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", daederrors.ErrScriptInvalid, err)
	}

	c := &Checker{program: program}
	c.pool.New = func() any {
		slot, err := c.newSlot()
		if err != nil {
			return err
		}
		return slot
	}

	// Fail fast on scripts whose entry point is missing or not callable.
	probe := c.pool.Get()
	if err, ok := probe.(error); ok {
		return nil, err
	}
	c.pool.Put(probe)

	return c, nil
}

func (c *Checker) newSlot() (*vmSlot, error) {
	vm := goja.New()
	if _, err := vm.RunProgram(c.program); err != nil {
		return nil, fmt.Errorf("%w: %v", daederrors.ErrScriptInvalid, err)
	}
	fn, ok := goja.AssertFunction(vm.Get(entryPoint))
	if !ok {
		return nil, fmt.Errorf("%w: script does not declare a %s function", daederrors.ErrScriptInvalid, entryPoint)
	}
	return &vmSlot{vm: vm, fn: fn}, nil
}

// IsValid evaluates the predicate for one configuration. A script that
// throws is treated as rejecting the configuration.
func (c *Checker) IsValid(s space.State) bool {
	got := c.pool.Get()
	slot, ok := got.(*vmSlot)
	if !ok {
		return false
	}
	defer c.pool.Put(slot)

	v, err := slot.fn(goja.Undefined(), slot.vm.ToValue([]float64(s)))
	if err != nil {
		return false
	}
	return v.ToBoolean()
}

// Func adapts the checker to the space.ValidityFunc shape expected by
// RealVectorSpace.SetValidityChecker.
func (c *Checker) Func() space.ValidityFunc {
	return c.IsValid
}
