package nearest

// Linear is a brute-force index: Nearest scans every stored item. For the
// tree sizes a deadline-bounded planner builds, the scan stays cheap enough
// that the surrounding mutex hold time remains short, which is what the
// planner's locking discipline cares about.
type Linear[T any] struct {
	dist  DistanceFunc[T]
	items []T
}

// NewLinear creates a linear index over the given distance function.
func NewLinear[T any](dist DistanceFunc[T]) *Linear[T] {
	return &Linear[T]{dist: dist}
}

// Add inserts an item.
func (l *Linear[T]) Add(item T) {
	l.items = append(l.items, item)
}

// Nearest returns the stored item closest to query.
func (l *Linear[T]) Nearest(query T) (T, bool) {
	var best T
	if len(l.items) == 0 {
		return best, false
	}
	best = l.items[0]
	bestDist := l.dist(query, best)
	for _, item := range l.items[1:] {
		if d := l.dist(query, item); d < bestDist {
			best = item
			bestDist = d
		}
	}
	return best, true
}

// List returns all stored items in insertion order. The returned slice is a
// copy; callers may retain it across further insertions.
func (l *Linear[T]) List() []T {
	out := make([]T, len(l.items))
	copy(out, l.items)
	return out
}

// Size returns the number of stored items.
func (l *Linear[T]) Size() int {
	return len(l.items)
}
