// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package heap

// Heap is a priority queue of elements ordered by a comparison function.
// An element a is retrieved before b if cmp(a, b) > 0. The zero value is an
// empty heap treating all elements as equal.
type Heap[T any] struct {
	elements []T
	cmp      func(a, b T) int
}

// New creates an empty heap using the given comparison function.
func New[T any](cmp func(a, b T) int) *Heap[T] {
	return &Heap[T]{cmp: cmp}
}

func (h *Heap[T]) Len() int {
	return len(h.elements)
}

func (h *Heap[T]) Add(element T) {
	h.elements = append(h.elements, element)
	h.up(len(h.elements) - 1)
}

// Peek returns the element with the highest priority without removing it.
func (h *Heap[T]) Peek() (T, bool) {
	if len(h.elements) == 0 {
		var zero T
		return zero, false
	}
	return h.elements[0], true
}

// Pop removes and returns the element with the highest priority.
func (h *Heap[T]) Pop() (T, bool) {
	if len(h.elements) == 0 {
		var zero T
		return zero, false
	}
	res := h.elements[0]
	last := len(h.elements) - 1
	h.elements[0] = h.elements[last]
	var zero T
	h.elements[last] = zero
	h.elements = h.elements[:last]
	h.down(0)
	return res, true
}

// ContainsFunc reports whether any element satisfies the predicate.
func (h *Heap[T]) ContainsFunc(predicate func(T) bool) bool {
	for _, cur := range h.elements {
		if predicate(cur) {
			return true
		}
	}
	return false
}

func (h *Heap[T]) before(i, j int) bool {
	return h.cmp != nil && h.cmp(h.elements[i], h.elements[j]) > 0
}

func (h *Heap[T]) up(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if !h.before(i, parent) {
			return
		}
		h.elements[i], h.elements[parent] = h.elements[parent], h.elements[i]
		i = parent
	}
}

func (h *Heap[T]) down(i int) {
	for {
		next := i
		for _, child := range []int{2*i + 1, 2*i + 2} {
			if child < len(h.elements) && h.before(child, next) {
				next = child
			}
		}
		if next == i {
			return
		}
		h.elements[i], h.elements[next] = h.elements[next], h.elements[i]
		i = next
	}
}
