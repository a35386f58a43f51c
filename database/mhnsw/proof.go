// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package mhnsw

import (
	"fmt"

	"github.com/Fantom-foundation/Arbor/go/common"
	"github.com/Fantom-foundation/Arbor/go/database/commit"
	"golang.org/x/exp/slices"
)

// VisitedNode records the expansion of one node at one layer during a
// search. It discloses the node's vector and the neighbour list of the
// expanded layer, the hashes of all its layers, and its position in the
// node set.
type VisitedNode struct {
	ID          NodeId
	Hash        common.Hash
	Vector      Vector
	Layer       uint8
	Neighbors   []NodeId
	LayerHashes []common.Hash
	Membership  Membership
}

// NodeWitness discloses a node whose distance to the query was evaluated
// but which was never expanded.
type NodeWitness struct {
	ID          NodeId
	Hash        common.Hash
	Vector      Vector
	LayerHashes []common.Hash
	Membership  Membership
}

// TraversalProof shows that a set of results is what a greedy descent
// through a committed index yields for a query. The header fields
// recompute the root commitment of the index.
type TraversalProof struct {
	Metric      MetricKind
	Count       uint32
	MaxLayer    uint8
	EntryID     NodeId
	EntryHash   common.Hash
	NodeSetRoot common.Hash
	Trace       []VisitedNode
	Candidates  []NodeWitness
	Results     []NodeId
}

func (p *TraversalProof) Kind() commit.ProofKind {
	return commit.TraversalProof
}

func (p *TraversalProof) Encode() ([]byte, error) {
	return commit.EncodeProof(commit.TraversalProof, p)
}

// DecodeTraversalProof restores a proof produced by TraversalProof.Encode.
func DecodeTraversalProof(data []byte) (*TraversalProof, error) {
	res := &TraversalProof{}
	if err := commit.DecodeProof(commit.TraversalProof, data, res); err != nil {
		return nil, err
	}
	return res, nil
}

func (p *TraversalProof) root() common.Hash {
	h := header{
		Metric:    p.Metric,
		Count:     p.Count,
		MaxLayer:  p.MaxLayer,
		Entry:     p.EntryID,
		EntryHash: p.EntryHash,
		NodeSet:   p.NodeSetRoot,
	}
	return h.hash()
}

type disclosed struct {
	hash   common.Hash
	vector Vector
}

// VerifyProof checks a proof produced by Search against the given root.
func (x *Index) VerifyProof(root common.Hash, proof commit.Proof, query Vector, k int) error {
	p, ok := proof.(*TraversalProof)
	if !ok {
		return fmt.Errorf("%w: expected traversal proof, got %T", commit.ErrProofMalformed, proof)
	}
	return Verify(root, p, query, k)
}

// Verify checks that the proof describes a greedy search for the given
// query through the index committed to by root and that its results are
// the k closest nodes evaluated during that search.
func Verify(root common.Hash, proof *TraversalProof, query Vector, k int) error {
	if proof == nil {
		return fmt.Errorf("%w: missing proof", commit.ErrProofMalformed)
	}
	if !query.finite() {
		return fmt.Errorf("%w: %w", commit.ErrProofMalformed, ErrInvalidVector)
	}
	if got := proof.root(); got != root {
		return fmt.Errorf("%w: proof is for root %v, expected %v", commit.ErrRootMismatch, got, root)
	}
	if proof.Count == 0 {
		if len(proof.Trace) != 0 || len(proof.Candidates) != 0 || len(proof.Results) != 0 {
			return fmt.Errorf("%w: search in empty index must not visit nodes", commit.ErrProofMalformed)
		}
		return nil
	}
	metric, err := MetricByKind(proof.Metric)
	if err != nil {
		return fmt.Errorf("%w: %v", commit.ErrProofMalformed, err)
	}

	nodes := map[NodeId]disclosed{}
	disclose := func(id NodeId, hash common.Hash, vector Vector, layerHashes []common.Hash, membership *Membership) error {
		if uint32(id) >= proof.Count {
			return fmt.Errorf("%w: node %d out of range", commit.ErrProofMalformed, id)
		}
		if got := nodeHash(id, vector.digest(), layerHashes); got != hash {
			return fmt.Errorf("%w: content of node %d hashes to %v, claimed %v", commit.ErrHashMismatch, id, got, hash)
		}
		if known, found := nodes[id]; found {
			if known.hash != hash {
				return fmt.Errorf("%w: conflicting disclosures of node %d", commit.ErrHashMismatch, id)
			}
			return nil
		}
		setRoot, err := membership.root(id, hash)
		if err != nil {
			return err
		}
		if setRoot != proof.NodeSetRoot {
			return fmt.Errorf("%w: node %d is not part of the committed node set", commit.ErrHashMismatch, id)
		}
		nodes[id] = disclosed{hash: hash, vector: vector}
		return nil
	}
	for i := range proof.Trace {
		r := &proof.Trace[i]
		if int(r.Layer) >= len(r.LayerHashes) || r.Layer > proof.MaxLayer {
			return fmt.Errorf("%w: node %d has no layer %d", commit.ErrProofMalformed, r.ID, r.Layer)
		}
		if got := layerHash(int(r.Layer), r.Neighbors); got != r.LayerHashes[r.Layer] {
			return fmt.Errorf("%w: neighbours of node %d at layer %d do not match", commit.ErrHashMismatch, r.ID, r.Layer)
		}
		if err := disclose(r.ID, r.Hash, r.Vector, r.LayerHashes, &r.Membership); err != nil {
			return err
		}
	}
	for i := range proof.Candidates {
		c := &proof.Candidates[i]
		if err := disclose(c.ID, c.Hash, c.Vector, c.LayerHashes, &c.Membership); err != nil {
			return err
		}
	}

	if len(proof.Trace) == 0 {
		return fmt.Errorf("%w: empty trace", commit.ErrProofMalformed)
	}
	if first := proof.Trace[0]; first.ID != proof.EntryID || first.Layer != proof.MaxLayer {
		return fmt.Errorf("%w: trace does not start at the entry point", commit.ErrProofMalformed)
	} else if first.Hash != proof.EntryHash {
		return fmt.Errorf("%w: entry point hash does not match", commit.ErrHashMismatch)
	}

	cur := candidate{id: proof.EntryID, dist: metric.Distance(query, nodes[proof.EntryID].vector)}
	distances := map[NodeId]float64{cur.id: cur.dist}
	layer := int(proof.MaxLayer)
	moved := false
	for i := 0; ; i++ {
		if i >= len(proof.Trace) {
			return fmt.Errorf("%w: trace ends before reaching layer 0", commit.ErrProofMalformed)
		}
		r := &proof.Trace[i]
		if r.ID != cur.id {
			if moved && r.ID == proof.Trace[i-1].ID {
				return fmt.Errorf("%w: step %d stays at node %d although a closer neighbour exists", commit.ErrNotGreedy, i, r.ID)
			}
			if i > 0 && slices.Contains(proof.Trace[i-1].Neighbors, r.ID) {
				return fmt.Errorf("%w: step %d moves to node %d instead of %d", commit.ErrNotGreedy, i, r.ID, cur.id)
			}
			return fmt.Errorf("%w: step %d moves to node %d which is not a neighbour", commit.ErrGraphEdgeInvalid, i, r.ID)
		}
		if int(r.Layer) != layer {
			if moved {
				return fmt.Errorf("%w: step %d descends although a closer neighbour exists", commit.ErrNotGreedy, i)
			}
			return fmt.Errorf("%w: step %d is at layer %d, expected %d", commit.ErrProofMalformed, i, r.Layer, layer)
		}

		best, found := candidate{}, false
		for _, id := range r.Neighbors {
			n, ok := nodes[id]
			if !ok {
				return fmt.Errorf("%w: neighbour %d of node %d is not disclosed", commit.ErrProofMalformed, id, r.ID)
			}
			c := candidate{id: id, dist: metric.Distance(query, n.vector)}
			distances[id] = c.dist
			if !found || closer(c, best) {
				best, found = c, true
			}
		}
		if found && best.dist < cur.dist {
			cur, moved = best, true
			continue
		}
		moved = false
		if layer == 0 {
			if i+1 != len(proof.Trace) {
				return fmt.Errorf("%w: trace continues after the search ended", commit.ErrProofMalformed)
			}
			break
		}
		layer--
	}

	for _, c := range proof.Candidates {
		if _, found := distances[c.ID]; !found {
			return fmt.Errorf("%w: node %d was not evaluated by the search", commit.ErrProofMalformed, c.ID)
		}
	}

	want := rank(distances, k)
	if len(want) != len(proof.Results) {
		return fmt.Errorf("%w: expected %d results, got %d", commit.ErrProofMalformed, len(want), len(proof.Results))
	}
	for i, c := range want {
		if proof.Results[i] != c.id {
			return fmt.Errorf("%w: result %d is node %d, expected %d", commit.ErrProofMalformed, i, proof.Results[i], c.id)
		}
	}
	return nil
}
