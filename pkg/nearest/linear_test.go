package nearest

import (
	"math"
	"testing"
)

func absDist(a, b float64) float64 {
	return math.Abs(a - b)
}

func TestLinearEmptyIndex(t *testing.T) {
	idx := NewLinear(absDist)
	if _, ok := idx.Nearest(1.0); ok {
		t.Fatal("empty index must report no nearest item")
	}
	if idx.Size() != 0 {
		t.Fatalf("empty index has size %d", idx.Size())
	}
	if got := idx.List(); len(got) != 0 {
		t.Fatalf("empty index listed %d items", len(got))
	}
}

func TestLinearNearest(t *testing.T) {
	idx := NewLinear(absDist)
	for _, v := range []float64{0, 10, 4, 7} {
		idx.Add(v)
	}

	cases := []struct {
		query float64
		want  float64
	}{
		{query: 0.4, want: 0},
		{query: 3, want: 4},
		{query: 5.4, want: 4},
		{query: 6, want: 7},
		{query: 100, want: 10},
	}
	for _, tc := range cases {
		got, ok := idx.Nearest(tc.query)
		if !ok {
			t.Fatalf("Nearest(%g) found nothing", tc.query)
		}
		if got != tc.want {
			t.Fatalf("Nearest(%g) = %g, want %g", tc.query, got, tc.want)
		}
	}
}

func TestLinearListPreservesInsertionOrder(t *testing.T) {
	idx := NewLinear(absDist)
	values := []float64{3, 1, 2}
	for _, v := range values {
		idx.Add(v)
	}

	got := idx.List()
	if len(got) != len(values) {
		t.Fatalf("expected %d items, got %d", len(values), len(got))
	}
	for i, v := range values {
		if got[i] != v {
			t.Fatalf("item %d = %g, want %g", i, got[i], v)
		}
	}

	// The returned slice is a snapshot, detached from later insertions.
	idx.Add(9)
	if len(got) != len(values) {
		t.Fatal("List result must not alias the index's storage")
	}
	if idx.Size() != 4 {
		t.Fatalf("expected size 4, got %d", idx.Size())
	}
}
