// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package commit

import (
	"github.com/Fantom-foundation/Arbor/go/common"
)

// Graph describes the node structure a garbage collection is operating on.
// R is the type used to reference nodes; references may carry more than a
// hash if the decoding of a node depends on its position.
type Graph[R any] struct {
	// ID returns the hash under which the referenced node is stored.
	ID func(R) common.Hash
	// Children lists the nodes referenced by the given node.
	Children func(R) ([]R, error)
	// Delete removes the referenced node from the store.
	Delete func(R) error
}

// CollectGarbage removes all nodes reachable from the released roots which
// are not reachable from any retained root. Retained roots should include
// the root of any uncommitted working state still backed by the store. It
// returns the number of deleted nodes.
func CollectGarbage[R any](graph Graph[R], released, retained []R) (int, error) {
	marked := map[common.Hash]struct{}{}
	if err := walk(graph, retained, func(common.Hash) bool { return false }, marked, nil); err != nil {
		return 0, err
	}

	deleted := 0
	visited := map[common.Hash]struct{}{}
	err := walk(graph, released, func(id common.Hash) bool {
		_, live := marked[id]
		return live
	}, visited, func(ref R) error {
		deleted++
		return graph.Delete(ref)
	})
	return deleted, err
}

// walk traverses all nodes reachable from the given roots, skipping
// already visited nodes and nodes for which skip returns true. After the
// children of a node have been enumerated, visit is called on it.
func walk[R any](
	graph Graph[R],
	roots []R,
	skip func(common.Hash) bool,
	visited map[common.Hash]struct{},
	visit func(R) error,
) error {
	stack := append([]R{}, roots...)
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		id := graph.ID(cur)
		if _, seen := visited[id]; seen || skip(id) {
			continue
		}
		visited[id] = struct{}{}
		children, err := graph.Children(cur)
		if err != nil {
			return err
		}
		stack = append(stack, children...)
		if visit != nil {
			if err := visit(cur); err != nil {
				return err
			}
		}
	}
	return nil
}
