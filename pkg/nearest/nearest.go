// Package nearest provides the spatial index used by the planner's shared
// tree: insertion, nearest-neighbor query, and full enumeration over a
// caller-supplied distance function.
package nearest

// DistanceFunc measures the distance between two items. It only needs to
// preserve ordering, so squared metrics are fine.
type DistanceFunc[T any] func(a, b T) float64

// Index stores items and answers nearest-neighbor queries. Implementations
// are not required to be safe for concurrent use: the planner serializes
// every Add and Nearest call behind its own tree mutex.
type Index[T any] interface {
	// Add inserts an item. Items are never removed.
	Add(item T)

	// Nearest returns the stored item closest to query. The boolean is
	// false only when the index is empty.
	Nearest(query T) (T, bool)

	// List returns all stored items in insertion order.
	List() []T

	// Size returns the number of stored items.
	Size() int
}
