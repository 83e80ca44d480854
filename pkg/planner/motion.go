package planner

import (
	"github.com/wehubfusion/Daedalus/pkg/space"
)

// Motion is one node of the shared search tree: an accepted configuration
// plus a back-reference to the node it was extended from. Root motions have
// a nil Parent. Motions are append-only: once inserted into the tree they
// are never mutated, which is what lets concurrent workers follow parent
// chains without holding the tree lock.
type Motion struct {
	State  space.State
	Parent *Motion
}

// newMotion allocates a motion with an uninitialized state buffer of the
// given dimension.
func newMotion(dim int) *Motion {
	return &Motion{State: make(space.State, dim)}
}

// chainToRoot walks parent links from m to its root, returning the motions
// in leaf-to-root order.
func chainToRoot(m *Motion) []*Motion {
	var chain []*Motion
	for m != nil {
		chain = append(chain, m)
		m = m.Parent
	}
	return chain
}
