package mhnsw

import (
	"fmt"
	"sort"

	"github.com/Fantom-foundation/Arbor/go/common/heap"
	"github.com/Fantom-foundation/Arbor/go/database/commit"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Result is a node found by a search together with its distance to the
// query.
type Result struct {
	ID       NodeId
	Distance float64
}

type candidate struct {
	id   NodeId
	dist float64
}

// closer orders candidates by distance, breaking ties by the lower id.
func closer(a, b candidate) bool {
	if a.dist != b.dist {
		return a.dist < b.dist
	}
	return a.id < b.id
}

func sortCandidates(list []candidate) {
	sort.Slice(list, func(i, j int) bool { return closer(list[i], list[j]) })
}

// greedyClosest walks from ep towards the query on the given layer as long
// as a neighbour is strictly closer than the current node.
func (x *Index) greedyClosest(query Vector, ep candidate, layer int) (candidate, error) {
	for {
		n, err := x.node(ep.id)
		if err != nil {
			return ep, err
		}
		if layer >= len(n.neighbors) {
			return ep, nil
		}
		best, found := candidate{}, false
		for _, id := range n.neighbors[layer] {
			other, err := x.node(id)
			if err != nil {
				return ep, err
			}
			c := candidate{id: id, dist: x.metric.Distance(query, other.vector)}
			if !found || closer(c, best) {
				best, found = c, true
			}
		}
		if !found || !(best.dist < ep.dist) {
			return ep, nil
		}
		ep = best
	}
}

// searchLayer runs a beam search of the given width on one layer and
// returns the closest nodes found, ordered by distance.
func (x *Index) searchLayer(query Vector, ep candidate, ef int, layer int) ([]candidate, error) {
	visited := map[NodeId]struct{}{ep.id: {}}
	pending := heap.New(func(a, b candidate) int {
		if closer(a, b) {
			return 1
		}
		if closer(b, a) {
			return -1
		}
		return 0
	})
	pending.Add(ep)
	results := []candidate{ep}
	for cur, ok := pending.Pop(); ok; cur, ok = pending.Pop() {
		if len(results) >= ef && closer(results[len(results)-1], cur) {
			break
		}

		n, err := x.node(cur.id)
		if err != nil {
			return nil, err
		}
		if layer >= len(n.neighbors) {
			continue
		}
		for _, id := range n.neighbors[layer] {
			if _, seen := visited[id]; seen {
				continue
			}
			visited[id] = struct{}{}
			other, err := x.node(id)
			if err != nil {
				return nil, err
			}
			c := candidate{id: id, dist: x.metric.Distance(query, other.vector)}
			if len(results) >= ef && !closer(c, results[len(results)-1]) {
				continue
			}
			pending.Add(c)
			pos := sort.Search(len(results), func(i int) bool { return closer(c, results[i]) })
			results = slices.Insert(results, pos, c)
			if len(results) > ef {
				results = results[:ef]
			}
		}
	}
	return results, nil
}

// view provides read access to one state of the index, either the working
// state or a committed version.
type view struct {
	header  header
	node    func(NodeId) (*node, error)
	witness func(NodeId) (Membership, error)
}

func (x *Index) workingView() (*view, error) {
	if err := x.flush(); err != nil {
		return nil, err
	}
	root := x.header.NodeSet
	return &view{
		header: x.header,
		node:   x.node,
		witness: func(id NodeId) (Membership, error) {
			_, witness, err := x.setLookup(root, id)
			return witness, err
		},
	}, nil
}

func (x *Index) viewAt(height uint64) (*view, error) {
	root, err := x.RootAt(height)
	if err != nil {
		return nil, err
	}
	h, err := x.getHeader(root)
	if err != nil {
		return nil, err
	}
	return &view{
		header: *h,
		node: func(id NodeId) (*node, error) {
			leaf, _, err := x.setLookup(h.NodeSet, id)
			if err != nil {
				return nil, err
			}
			return x.getGraphNode(leaf)
		},
		witness: func(id NodeId) (Membership, error) {
			_, witness, err := x.setLookup(h.NodeSet, id)
			return witness, err
		},
	}, nil
}

// Search returns the k nearest nodes to the query found by a greedy descent
// through the working state, together with a proof of the traversal.
func (x *Index) Search(query Vector, k int) ([]Result, *TraversalProof, error) {
	v, err := x.workingView()
	if err != nil {
		return nil, nil, err
	}
	return x.search(v, query, k)
}

// SearchAt is like Search but operates on the version committed at the
// given height.
func (x *Index) SearchAt(height uint64, query Vector, k int) ([]Result, *TraversalProof, error) {
	v, err := x.viewAt(height)
	if err != nil {
		return nil, nil, err
	}
	return x.search(v, query, k)
}

func (x *Index) search(v *view, query Vector, k int) ([]Result, *TraversalProof, error) {
	if !query.finite() {
		return nil, nil, ErrInvalidVector
	}
	h := v.header
	proof := &TraversalProof{
		Metric:      h.Metric,
		Count:       h.Count,
		MaxLayer:    h.MaxLayer,
		EntryID:     h.Entry,
		EntryHash:   h.EntryHash,
		NodeSetRoot: h.NodeSet,
		Trace:       []VisitedNode{},
		Candidates:  []NodeWitness{},
		Results:     []NodeId{},
	}
	if h.Count == 0 {
		return []Result{}, proof, nil
	}
	if len(query) != x.dims && x.dims != 0 {
		return nil, nil, fmt.Errorf("%w: got %d components, expected %d", ErrDimensionMismatch, len(query), x.dims)
	}

	witnesses := map[NodeId]Membership{}
	witness := func(id NodeId) (Membership, error) {
		if w, found := witnesses[id]; found {
			return w, nil
		}
		w, err := v.witness(id)
		if err != nil {
			return Membership{}, err
		}
		witnesses[id] = w
		return w, nil
	}

	cur, err := v.node(h.Entry)
	if err != nil {
		return nil, nil, err
	}
	curDist := x.metric.Distance(query, cur.vector)
	evaluated := map[NodeId]*node{cur.id: cur}
	distances := map[NodeId]float64{cur.id: curDist}
	traced := map[NodeId]struct{}{}

	for layer := int(h.MaxLayer); layer >= 0; layer-- {
		for {
			if layer >= len(cur.neighbors) {
				return nil, nil, fmt.Errorf("%w: node %d has no layer %d", commit.ErrStorageFailure, cur.id, layer)
			}
			w, err := witness(cur.id)
			if err != nil {
				return nil, nil, err
			}
			proof.Trace = append(proof.Trace, VisitedNode{
				ID:          cur.id,
				Hash:        cur.hash,
				Vector:      slices.Clone(cur.vector),
				Layer:       uint8(layer),
				Neighbors:   slices.Clone(cur.neighbors[layer]),
				LayerHashes: slices.Clone(cur.layerHashes),
				Membership:  w,
			})
			traced[cur.id] = struct{}{}

			var best *node
			bestDist := 0.0
			for _, id := range cur.neighbors[layer] {
				n, err := v.node(id)
				if err != nil {
					return nil, nil, err
				}
				d := x.metric.Distance(query, n.vector)
				evaluated[id] = n
				distances[id] = d
				if best == nil || closer(candidate{id, d}, candidate{best.id, bestDist}) {
					best, bestDist = n, d
				}
			}
			if best == nil || !(bestDist < curDist) {
				break
			}
			cur, curDist = best, bestDist
		}
	}

	ids := maps.Keys(evaluated)
	slices.Sort(ids)
	for _, id := range ids {
		if _, found := traced[id]; found {
			continue
		}
		n := evaluated[id]
		w, err := witness(id)
		if err != nil {
			return nil, nil, err
		}
		proof.Candidates = append(proof.Candidates, NodeWitness{
			ID:          id,
			Hash:        n.hash,
			Vector:      slices.Clone(n.vector),
			LayerHashes: slices.Clone(n.layerHashes),
			Membership:  w,
		})
	}

	ranked := rank(distances, k)
	results := make([]Result, 0, len(ranked))
	for _, c := range ranked {
		results = append(results, Result{ID: c.id, Distance: c.dist})
		proof.Results = append(proof.Results, c.id)
	}
	return results, proof, nil
}

// rank returns the k closest of the evaluated nodes.
func rank(distances map[NodeId]float64, k int) []candidate {
	list := make([]candidate, 0, len(distances))
	for id, d := range distances {
		list = append(list, candidate{id: id, dist: d})
	}
	sortCandidates(list)
	return list[:max(0, min(k, len(list)))]
}
