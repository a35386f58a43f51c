package heap

import (
	"math/rand"
	"slices"
	"testing"
)

func TestHeap_ElementsArePoppedInPriorityOrder(t *testing.T) {
	const N = 100
	entries := rand.Perm(N)
	queue := New(func(a, b int) int {
		return b - a
	})
	for _, e := range entries {
		queue.Add(e)
	}
	if want, got := N, queue.Len(); want != got {
		t.Fatalf("unexpected size, wanted %d, got %d", want, got)
	}

	for i := 0; i < N; i++ {
		if got, ok := queue.Peek(); !ok || got != i {
			t.Errorf("expected to peek %d, got %d, %t", i, got, ok)
		}
		if got, ok := queue.Pop(); !ok || got != i {
			t.Errorf("expected to pop %d, got %d, %t", i, got, ok)
		}
	}
	if _, ok := queue.Peek(); ok {
		t.Errorf("expected empty heap")
	}
	if _, ok := queue.Pop(); ok {
		t.Errorf("expected empty heap")
	}
}

func TestHeap_TiesAreResolvedByComparison(t *testing.T) {
	type entry struct {
		dist float64
		id   int
	}
	queue := New(func(a, b entry) int {
		if a.dist != b.dist {
			if a.dist < b.dist {
				return 1
			}
			return -1
		}
		return b.id - a.id
	})
	for _, e := range []entry{{2, 1}, {1, 7}, {1, 3}, {0.5, 9}, {2, 0}} {
		queue.Add(e)
	}
	want := []entry{{0.5, 9}, {1, 3}, {1, 7}, {2, 0}, {2, 1}}
	for _, w := range want {
		if got, _ := queue.Pop(); got != w {
			t.Errorf("unexpected element, wanted %v, got %v", w, got)
		}
	}
}

func TestHeap_ZeroHeapStoresElements(t *testing.T) {
	queue := Heap[int]{}
	for i := 0; i < 10; i++ {
		queue.Add(i)
	}
	for i := 0; i < 10; i++ {
		if !queue.ContainsFunc(func(cur int) bool { return cur == i }) {
			t.Errorf("expected to find element %d", i)
		}
	}
	if queue.ContainsFunc(func(cur int) bool { return cur > 9 }) {
		t.Errorf("found element that was never added")
	}

	retrieved := []int{}
	for cur, ok := queue.Pop(); ok; cur, ok = queue.Pop() {
		retrieved = append(retrieved, cur)
	}
	slices.Sort(retrieved)
	if want := []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}; !slices.Equal(want, retrieved) {
		t.Errorf("unexpected elements, wanted %v, got %v", want, retrieved)
	}
}
