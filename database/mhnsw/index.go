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
	"math"
	"math/rand"

	"github.com/Fantom-foundation/Arbor/go/backend/nodestore"
	"github.com/Fantom-foundation/Arbor/go/common"
	"github.com/Fantom-foundation/Arbor/go/database/commit"
	"github.com/ethereum/go-ethereum/log"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

const (
	ErrDimensionMismatch = common.ConstError("vector dimension does not match index")
	ErrIndexFull         = common.ConstError("index is full")
	ErrInvalidVector     = common.ConstError("vector has non-finite components")
)

// Index is a layered navigable small-world graph over vectors whose
// content is committed to by a single root hash. Searches produce
// traversal proofs which can be checked against that root. Like the trees
// of this module, an index has a single writer and retains committed
// versions until they are pruned.
type Index struct {
	store   nodestore.NodeStore
	config  Config
	metric  DistanceMetric
	log     log.Logger
	rng     *rand.Rand
	header  header // EntryHash and NodeSet are current after a flush
	dims    int
	ids     []common.Hash // hash of each node as of the last flush
	nodes   map[NodeId]*node
	stale   map[NodeId]struct{}
	cache   *lru.Cache[common.Hash, any]
	indices *commit.Indices[*header]

	setPending map[common.Hash]*setNode
}

// NewIndex creates an empty index storing its nodes in the given store.
func NewIndex(store nodestore.NodeStore, config Config) (*Index, error) {
	config = config.withDefaults()
	metric, err := MetricByKind(config.Metric)
	if err != nil {
		return nil, err
	}
	cache, err := lru.New[common.Hash, any](config.NodeCacheSize)
	if err != nil {
		return nil, err
	}
	return &Index{
		store:      store,
		config:     config,
		metric:     metric,
		log:        config.Logger,
		rng:        rand.New(rand.NewSource(config.Seed)),
		header:     header{Metric: metric.Kind()},
		nodes:      map[NodeId]*node{},
		stale:      map[NodeId]struct{}{},
		cache:      cache,
		indices:    commit.NewIndices[*header](),
		setPending: map[common.Hash]*setNode{},
	}, nil
}

// Metric returns the distance metric of the index.
func (x *Index) Metric() DistanceMetric {
	return x.metric
}

func (x *Index) AsAny() any {
	return x
}

// Size returns the number of vectors in the working state.
func (x *Index) Size() int {
	return int(x.header.Count)
}

func (x *Index) load(hash common.Hash) (any, error) {
	if obj, found := x.cache.Get(hash); found {
		return obj, nil
	}
	data, found, err := x.store.Load(hash)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to load %v; %w", commit.ErrStorageFailure, hash, err)
	}
	if !found {
		return nil, fmt.Errorf("%w: missing entry %v", commit.ErrStorageFailure, hash)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty entry %v", commit.ErrStorageFailure, hash)
	}
	var obj any
	switch data[0] {
	case nodeTag:
		obj, err = decodeGraphNode(hash, data[1:])
	case setTag:
		obj, err = decodeSetNode(hash, data[1:])
	case headerTag:
		obj, err = decodeHeader(hash, data[1:])
	default:
		err = fmt.Errorf("%w: unknown tag %d of entry %v", commit.ErrStorageFailure, data[0], hash)
	}
	if err != nil {
		return nil, err
	}
	x.cache.Add(hash, obj)
	return obj, nil
}

func (x *Index) getGraphNode(hash common.Hash) (*node, error) {
	obj, err := x.load(hash)
	if err != nil {
		return nil, err
	}
	n, ok := obj.(*node)
	if !ok {
		return nil, fmt.Errorf("%w: %v is not a graph node", commit.ErrStorageFailure, hash)
	}
	return n, nil
}

func (x *Index) getHeader(hash common.Hash) (*header, error) {
	if h, found := x.indices.RootNode(hash); found {
		return h, nil
	}
	obj, err := x.load(hash)
	if err != nil {
		return nil, err
	}
	h, ok := obj.(*header)
	if !ok {
		return nil, fmt.Errorf("%w: %v is not an index header", commit.ErrStorageFailure, hash)
	}
	return h, nil
}

// node returns the working version of the node with the given id.
func (x *Index) node(id NodeId) (*node, error) {
	if n, found := x.nodes[id]; found {
		return n, nil
	}
	if int(id) >= len(x.ids) {
		return nil, fmt.Errorf("unknown node %d", id)
	}
	return x.getGraphNode(x.ids[id])
}

// mutable returns a working copy of the node which may be modified until
// the next commit.
func (x *Index) mutable(id NodeId) (*node, error) {
	n, found := x.nodes[id]
	if !found {
		committed, err := x.node(id)
		if err != nil {
			return nil, err
		}
		n = committed.clone()
		x.nodes[id] = n
	}
	x.stale[id] = struct{}{}
	return n, nil
}

// Get returns the vector of the given node in the working state.
func (x *Index) Get(id NodeId) (Vector, error) {
	n, err := x.node(id)
	if err != nil {
		return nil, err
	}
	return slices.Clone(n.vector), nil
}

func (x *Index) randomLevel() int {
	u := 1 - x.rng.Float64()
	level := int(-math.Log(u) * x.config.LevelMultiplier)
	return min(level, x.config.MaxLayer)
}

func (x *Index) maxNeighbors(layer int) int {
	if layer == 0 {
		return x.config.M0
	}
	return x.config.M
}

// Insert adds a vector to the index and returns its id.
func (x *Index) Insert(vector Vector) (NodeId, error) {
	if len(vector) == 0 || (x.header.Count > 0 && len(vector) != x.dims) {
		return 0, fmt.Errorf("%w: got %d components, expected %d", ErrDimensionMismatch, len(vector), x.dims)
	}
	if !vector.finite() {
		return 0, ErrInvalidVector
	}
	if x.header.Count == math.MaxUint32 {
		return 0, ErrIndexFull
	}
	vector = slices.Clone(vector)
	id := NodeId(x.header.Count)
	level := x.randomLevel()
	n := newNode(id, vector, level+1)
	x.nodes[id] = n
	x.stale[id] = struct{}{}
	x.ids = append(x.ids, common.Hash{})

	if x.header.Count == 0 {
		x.dims = len(vector)
		x.header.Entry = id
		x.header.MaxLayer = uint8(level)
		x.header.Count = 1
		return id, nil
	}

	undo := newInsertUndo(x, id)
	if err := x.connect(n, level, undo); err != nil {
		undo.rollback()
		return 0, err
	}

	if level > int(x.header.MaxLayer) {
		x.header.Entry = id
		x.header.MaxLayer = uint8(level)
	}
	x.header.Count++
	return id, nil
}

// connect wires the new node into all layers up to its level.
func (x *Index) connect(n *node, level int, undo *insertUndo) error {
	entry, err := x.node(x.header.Entry)
	if err != nil {
		return err
	}
	ep := candidate{id: entry.id, dist: x.metric.Distance(n.vector, entry.vector)}
	for layer := int(x.header.MaxLayer); layer > level; layer-- {
		if ep, err = x.greedyClosest(n.vector, ep, layer); err != nil {
			return err
		}
	}
	for layer := min(level, int(x.header.MaxLayer)); layer >= 0; layer-- {
		candidates, err := x.searchLayer(n.vector, ep, x.config.EfConstruction, layer)
		if err != nil {
			return err
		}
		selected := candidates[:min(x.config.M, len(candidates))]
		n.neighbors[layer] = make([]NodeId, 0, len(selected))
		for _, c := range selected {
			n.neighbors[layer] = append(n.neighbors[layer], c.id)
			undo.record(c.id)
			if err := x.link(c.id, layer, n.id); err != nil {
				return err
			}
		}
		if len(candidates) > 0 {
			ep = candidates[0]
		}
	}
	return nil
}

// insertUndo remembers the working state of nodes touched by an insertion
// so that a failed insertion leaves the index unchanged.
type insertUndo struct {
	index *Index
	added NodeId
	prior map[NodeId]*node // nil if the node had no working copy
	stale map[NodeId]bool
}

func newInsertUndo(x *Index, added NodeId) *insertUndo {
	return &insertUndo{
		index: x,
		added: added,
		prior: map[NodeId]*node{},
		stale: map[NodeId]bool{},
	}
}

func (u *insertUndo) record(id NodeId) {
	if _, done := u.prior[id]; done {
		return
	}
	x := u.index
	if n, found := x.nodes[id]; found {
		u.prior[id] = n.clone()
	} else {
		u.prior[id] = nil
	}
	_, u.stale[id] = x.stale[id]
}

func (u *insertUndo) rollback() {
	x := u.index
	for id, n := range u.prior {
		if n == nil {
			delete(x.nodes, id)
		} else {
			x.nodes[id] = n
		}
		if !u.stale[id] {
			delete(x.stale, id)
		}
	}
	delete(x.nodes, u.added)
	delete(x.stale, u.added)
	x.ids = x.ids[:u.added]
}

// link adds an edge from target to the new node, keeping only the closest
// neighbours if the list exceeds its capacity.
func (x *Index) link(target NodeId, layer int, added NodeId) error {
	n, err := x.mutable(target)
	if err != nil {
		return err
	}
	if layer >= len(n.neighbors) {
		return fmt.Errorf("%w: node %d has no layer %d", commit.ErrStorageFailure, target, layer)
	}
	list := append(n.neighbors[layer], added)
	if len(list) <= x.maxNeighbors(layer) {
		n.neighbors[layer] = list
		return nil
	}
	candidates := make([]candidate, 0, len(list))
	for _, id := range list {
		other, err := x.node(id)
		if err != nil {
			return err
		}
		candidates = append(candidates, candidate{id: id, dist: x.metric.Distance(n.vector, other.vector)})
	}
	sortCandidates(candidates)
	n.neighbors[layer] = n.neighbors[layer][:0]
	for _, c := range candidates[:x.maxNeighbors(layer)] {
		n.neighbors[layer] = append(n.neighbors[layer], c.id)
	}
	return nil
}

// flush recomputes the hashes of all modified nodes and updates the node
// set and the header accordingly.
func (x *Index) flush() error {
	ids := maps.Keys(x.stale)
	slices.Sort(ids)
	for _, id := range ids {
		n := x.nodes[id]
		n.rehash()
		root, err := x.setUpdate(x.header.NodeSet, setDepth, id, n.hash)
		if err != nil {
			return err
		}
		x.ids[id] = n.hash
		x.header.NodeSet = root
		delete(x.stale, id)
	}
	if x.header.Count > 0 {
		x.header.EntryHash = x.ids[x.header.Entry]
	}
	return nil
}

// RootCommitment returns the commitment to the working state.
func (x *Index) RootCommitment() (common.Hash, error) {
	if err := x.flush(); err != nil {
		return common.Hash{}, err
	}
	return x.header.hash(), nil
}

// Commit persists the working state as the version of the given height.
func (x *Index) Commit(height uint64) (common.Hash, error) {
	if latest, found := x.indices.Latest(); found && height <= latest.Height {
		return common.Hash{}, fmt.Errorf("cannot commit height %d, latest committed height is %d", height, latest.Height)
	}
	if err := x.flush(); err != nil {
		return common.Hash{}, err
	}

	entries := make([]nodestore.Entry, 0, len(x.nodes)+len(x.setPending)+1)
	written := map[common.Hash]any{}
	for _, id := range sortedIds(x.nodes) {
		n := x.nodes[id]
		data, err := n.encode()
		if err != nil {
			return common.Hash{}, err
		}
		entries = append(entries, nodestore.Entry{Hash: n.hash, Data: data})
		written[n.hash] = n
	}
	stack := []common.Hash{x.header.NodeSet}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n, found := x.setPending[cur]
		if _, done := written[cur]; !found || done {
			continue
		}
		data, err := n.encode()
		if err != nil {
			return common.Hash{}, err
		}
		entries = append(entries, nodestore.Entry{Hash: cur, Data: data})
		written[cur] = n
		if n.height > 1 {
			stack = append(stack, n.children()...)
		}
	}
	h := x.header
	root := h.hash()
	data, err := h.encode()
	if err != nil {
		return common.Hash{}, err
	}
	entries = append(entries, nodestore.Entry{Hash: root, Data: data})

	if err := nodestore.SaveAll(x.store, entries); err != nil {
		return common.Hash{}, fmt.Errorf("%w: failed to write %d entries; %w", commit.ErrStorageFailure, len(entries), err)
	}
	if err := x.indices.Record(height, root, &h); err != nil {
		return common.Hash{}, err
	}
	for hash, obj := range written {
		x.cache.Add(hash, obj)
	}
	x.nodes = map[NodeId]*node{}
	x.setPending = map[common.Hash]*setNode{}
	x.log.Debug("Committed index", "height", height, "root", root, "vectors", h.Count, "entries", len(entries))

	if retain := x.config.RetainVersions; retain > 0 && x.indices.Len() > retain {
		versions := x.indices.Range(0, height)
		if err := x.Prune(versions[len(versions)-retain].Height); err != nil {
			return root, err
		}
	}
	return root, nil
}

func sortedIds(nodes map[NodeId]*node) []NodeId {
	ids := maps.Keys(nodes)
	slices.Sort(ids)
	return ids
}

func (x *Index) RootAt(height uint64) (common.Hash, error) {
	root, found := x.indices.RootAt(height)
	if !found {
		return common.Hash{}, fmt.Errorf("%w: no version at height %d", commit.ErrUnknownVersion, height)
	}
	return root, nil
}

func (x *Index) Versions(from, to uint64) []commit.Version {
	return x.indices.Range(from, to)
}

// Prune releases all versions below the given height and removes entries
// only reachable from released versions.
func (x *Index) Prune(height uint64) error {
	released := x.indices.ReleaseBefore(height)
	if len(released) == 0 || !nodestore.CanDelete(x.store) {
		return nil
	}
	deleter := x.store.(nodestore.Deleter)

	// Uncommitted nodes are referenced by the working node set only.
	working := map[common.Hash]struct{}{}
	for _, n := range x.nodes {
		working[n.hash] = struct{}{}
	}
	graph := commit.Graph[common.Hash]{
		ID: func(hash common.Hash) common.Hash { return hash },
		Children: func(hash common.Hash) ([]common.Hash, error) {
			if n, found := x.setPending[hash]; found {
				return n.children(), nil
			}
			if _, found := working[hash]; found {
				return nil, nil
			}
			obj, err := x.load(hash)
			if err != nil {
				return nil, err
			}
			switch obj := obj.(type) {
			case *header:
				if obj.NodeSet == (common.Hash{}) {
					return nil, nil
				}
				return []common.Hash{obj.NodeSet}, nil
			case *setNode:
				return obj.children(), nil
			}
			return nil, nil
		},
		Delete: func(hash common.Hash) error {
			x.cache.Remove(hash)
			if err := deleter.Delete(hash); err != nil {
				return fmt.Errorf("%w: failed to delete %v; %w", commit.ErrStorageFailure, hash, err)
			}
			return nil
		},
	}
	retained := x.indices.RetainedRoots()
	if x.header.NodeSet != (common.Hash{}) {
		retained = append(retained, x.header.NodeSet)
	}
	deleted, err := commit.CollectGarbage(graph, released, retained)
	if err != nil {
		return err
	}
	x.log.Info("Pruned index versions", "below", height, "released", len(released), "deleted", deleted)
	return nil
}
