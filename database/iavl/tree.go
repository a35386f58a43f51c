// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package iavl

import (
	"bytes"
	"fmt"

	"github.com/Fantom-foundation/Arbor/go/backend/nodestore"
	"github.com/Fantom-foundation/Arbor/go/common"
	"github.com/Fantom-foundation/Arbor/go/database/commit"
	"github.com/ethereum/go-ethereum/log"
	lru "github.com/hashicorp/golang-lru/v2"
)

// Tree is a versioned, self-balancing authenticated binary search tree.
// Every committed version is immutable and shares unchanged subtrees with
// other versions through content addressing. A tree must only be modified
// by a single goroutine; committed versions may be read concurrently.
type Tree struct {
	store   nodestore.NodeStore
	config  Config
	log     log.Logger
	root    common.Hash           // working root, EmptyRoot if empty
	pending map[common.Hash]*node // nodes created since the last commit
	cache   *lru.Cache[common.Hash, *node]
	indices *commit.Indices[*node]
}

var _ commit.VersionedTree = (*Tree)(nil)

// NewTree creates an empty tree storing its nodes in the given store.
func NewTree(store nodestore.NodeStore, config Config) (*Tree, error) {
	config = config.withDefaults()
	cache, err := lru.New[common.Hash, *node](config.NodeCacheSize)
	if err != nil {
		return nil, err
	}
	return &Tree{
		store:   store,
		config:  config,
		log:     config.Logger,
		root:    EmptyRoot,
		pending: map[common.Hash]*node{},
		cache:   cache,
		indices: commit.NewIndices[*node](),
	}, nil
}

func (t *Tree) getNode(hash common.Hash) (*node, error) {
	if n, found := t.pending[hash]; found {
		return n, nil
	}
	if n, found := t.cache.Get(hash); found {
		return n, nil
	}
	if n, found := t.indices.RootNode(hash); found && n != nil {
		return n, nil
	}
	data, found, err := t.store.Load(hash)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to load node %v; %w", commit.ErrStorageFailure, hash, err)
	}
	if !found {
		return nil, fmt.Errorf("%w: missing node %v", commit.ErrStorageFailure, hash)
	}
	n, err := decodeNode(hash, data)
	if err != nil {
		return nil, err
	}
	t.cache.Add(hash, n)
	return n, nil
}

func (t *Tree) children(n *node) (*node, *node, error) {
	left, err := t.getNode(n.left)
	if err != nil {
		return nil, nil, err
	}
	right, err := t.getNode(n.right)
	if err != nil {
		return nil, nil, err
	}
	return left, right, nil
}

func (t *Tree) register(n *node) *node {
	t.pending[n.hash] = n
	return n
}

func (t *Tree) Get(key []byte) ([]byte, bool, error) {
	return t.get(t.root, key)
}

func (t *Tree) get(root common.Hash, key []byte) ([]byte, bool, error) {
	if root == EmptyRoot {
		return nil, false, nil
	}
	n, err := t.getNode(root)
	if err != nil {
		return nil, false, err
	}
	for !n.isLeaf() {
		next := n.right
		if bytes.Compare(key, n.key) < 0 {
			next = n.left
		}
		if n, err = t.getNode(next); err != nil {
			return nil, false, err
		}
	}
	if !bytes.Equal(n.key, key) {
		return nil, false, nil
	}
	return n.value, true, nil
}

func (t *Tree) Insert(key, value []byte) error {
	if value == nil {
		value = []byte{}
	}
	key = bytes.Clone(key)
	value = bytes.Clone(value)
	if t.root == EmptyRoot {
		t.root = t.register(newLeaf(key, value)).hash
		return nil
	}
	root, err := t.getNode(t.root)
	if err != nil {
		return err
	}
	newRoot, err := t.insert(root, key, value)
	if err != nil {
		return err
	}
	t.root = newRoot.hash
	return nil
}

func (t *Tree) insert(n *node, key, value []byte) (*node, error) {
	if n.isLeaf() {
		switch bytes.Compare(key, n.key) {
		case -1:
			return t.register(newInner(n.key, t.register(newLeaf(key, value)), n)), nil
		case 1:
			return t.register(newInner(key, n, t.register(newLeaf(key, value)))), nil
		}
		if bytes.Equal(n.value, value) {
			return n, nil
		}
		return t.register(newLeaf(key, value)), nil
	}

	left, right, err := t.children(n)
	if err != nil {
		return nil, err
	}
	if bytes.Compare(key, n.key) < 0 {
		if left, err = t.insert(left, key, value); err != nil {
			return nil, err
		}
	} else {
		if right, err = t.insert(right, key, value); err != nil {
			return nil, err
		}
	}
	if left.hash == n.left && right.hash == n.right {
		return n, nil
	}
	return t.balance(n.key, left, right)
}

func (t *Tree) Delete(key []byte) error {
	if t.root == EmptyRoot {
		return nil
	}
	root, err := t.getNode(t.root)
	if err != nil {
		return err
	}
	newRoot, _, removed, err := t.remove(root, key)
	if err != nil || !removed {
		return err
	}
	if newRoot == nil {
		t.root = EmptyRoot
	} else {
		t.root = newRoot.hash
	}
	return nil
}

// remove deletes the key from the subtree rooted by n. It returns the new
// subtree, nil if it became empty, and the new smallest key of the subtree
// if it changed and has to be propagated to the parent.
func (t *Tree) remove(n *node, key []byte) (*node, []byte, bool, error) {
	if n.isLeaf() {
		if bytes.Equal(n.key, key) {
			return nil, nil, true, nil
		}
		return n, nil, false, nil
	}

	left, right, err := t.children(n)
	if err != nil {
		return nil, nil, false, err
	}
	if bytes.Compare(key, n.key) < 0 {
		newLeft, newKey, removed, err := t.remove(left, key)
		if err != nil || !removed {
			return n, nil, false, err
		}
		if newLeft == nil {
			return right, n.key, true, nil
		}
		res, err := t.balance(n.key, newLeft, right)
		return res, newKey, true, err
	}

	newRight, newKey, removed, err := t.remove(right, key)
	if err != nil || !removed {
		return n, nil, false, err
	}
	if newRight == nil {
		return left, nil, true, nil
	}
	nodeKey := n.key
	if newKey != nil {
		nodeKey = newKey
	}
	res, err := t.balance(nodeKey, left, newRight)
	return res, nil, true, err
}

// balance creates an inner node with the given children, rotating it if
// the height difference of the children exceeds one.
func (t *Tree) balance(key []byte, left, right *node) (*node, error) {
	diff := int(left.height) - int(right.height)
	switch {
	case diff > 1:
		ll, lr, err := t.children(left)
		if err != nil {
			return nil, err
		}
		if ll.height >= lr.height {
			newRight := t.register(newInner(key, lr, right))
			return t.register(newInner(left.key, ll, newRight)), nil
		}
		lrl, lrr, err := t.children(lr)
		if err != nil {
			return nil, err
		}
		newLeft := t.register(newInner(left.key, ll, lrl))
		newRight := t.register(newInner(key, lrr, right))
		return t.register(newInner(lr.key, newLeft, newRight)), nil
	case diff < -1:
		rl, rr, err := t.children(right)
		if err != nil {
			return nil, err
		}
		if rr.height >= rl.height {
			newLeft := t.register(newInner(key, left, rl))
			return t.register(newInner(right.key, newLeft, rr)), nil
		}
		rll, rlr, err := t.children(rl)
		if err != nil {
			return nil, err
		}
		newLeft := t.register(newInner(key, left, rll))
		newRight := t.register(newInner(right.key, rlr, rr))
		return t.register(newInner(rl.key, newLeft, newRight)), nil
	}
	return t.register(newInner(key, left, right)), nil
}

func (t *Tree) RootCommitment() (common.Hash, error) {
	return t.root, nil
}

func (t *Tree) AsAny() any {
	return t
}

// Size returns the number of keys in the working state.
func (t *Tree) Size() (uint64, error) {
	if t.root == EmptyRoot {
		return 0, nil
	}
	root, err := t.getNode(t.root)
	if err != nil {
		return 0, err
	}
	return root.size, nil
}

// Commit writes all nodes created since the last commit and reachable from
// the working root to the node store and records the working root as the
// version of the given height. On failure, neither the indices nor the
// working state are modified.
func (t *Tree) Commit(height uint64) (common.Hash, error) {
	if latest, found := t.indices.Latest(); found && height <= latest.Height {
		return common.Hash{}, fmt.Errorf("cannot commit height %d, latest committed height is %d", height, latest.Height)
	}

	var entries []nodestore.Entry
	var nodes []*node
	if t.root != EmptyRoot {
		stack := []common.Hash{t.root}
		seen := map[common.Hash]struct{}{}
		for len(stack) > 0 {
			cur := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			n, found := t.pending[cur]
			if !found {
				continue
			}
			if _, done := seen[cur]; done {
				continue
			}
			seen[cur] = struct{}{}
			data, err := n.encode()
			if err != nil {
				return common.Hash{}, err
			}
			entries = append(entries, nodestore.Entry{Hash: cur, Data: data})
			nodes = append(nodes, n)
			if !n.isLeaf() {
				stack = append(stack, n.left, n.right)
			}
		}
	}
	if err := nodestore.SaveAll(t.store, entries); err != nil {
		return common.Hash{}, fmt.Errorf("%w: failed to write %d nodes; %w", commit.ErrStorageFailure, len(entries), err)
	}

	var rootNode *node
	if t.root != EmptyRoot {
		n, err := t.getNode(t.root)
		if err != nil {
			return common.Hash{}, err
		}
		rootNode = n
	}
	if err := t.indices.Record(height, t.root, rootNode); err != nil {
		return common.Hash{}, err
	}
	for _, n := range nodes {
		t.cache.Add(n.hash, n)
	}
	t.pending = map[common.Hash]*node{}
	t.log.Debug("Committed version", "height", height, "root", t.root, "nodes", len(entries))

	if retain := t.config.RetainVersions; retain > 0 && t.indices.Len() > retain {
		versions := t.indices.Range(0, height)
		if err := t.Prune(versions[len(versions)-retain].Height); err != nil {
			return t.root, err
		}
	}
	return t.root, nil
}

func (t *Tree) RootAt(height uint64) (common.Hash, error) {
	root, found := t.indices.RootAt(height)
	if !found {
		return common.Hash{}, fmt.Errorf("%w: no version at height %d", commit.ErrUnknownVersion, height)
	}
	return root, nil
}

func (t *Tree) GetAt(height uint64, key []byte) ([]byte, bool, error) {
	root, err := t.RootAt(height)
	if err != nil {
		return nil, false, err
	}
	return t.get(root, key)
}

func (t *Tree) Versions(from, to uint64) []commit.Version {
	return t.indices.Range(from, to)
}

// Prune releases all versions below the given height. Nodes exclusively
// owned by released versions are removed if the node store supports
// deletions.
func (t *Tree) Prune(height uint64) error {
	released := t.indices.ReleaseBefore(height)
	if len(released) == 0 || !nodestore.CanDelete(t.store) {
		return nil
	}
	deleter := t.store.(nodestore.Deleter)

	retained := append(t.indices.RetainedRoots(), t.root)
	graph := commit.Graph[common.Hash]{
		ID: func(hash common.Hash) common.Hash { return hash },
		Children: func(hash common.Hash) ([]common.Hash, error) {
			n, err := t.getNode(hash)
			if err != nil || n.isLeaf() {
				return nil, err
			}
			return []common.Hash{n.left, n.right}, nil
		},
		Delete: func(hash common.Hash) error {
			t.cache.Remove(hash)
			if err := deleter.Delete(hash); err != nil {
				return fmt.Errorf("%w: failed to delete node %v; %w", commit.ErrStorageFailure, hash, err)
			}
			return nil
		},
	}
	deleted, err := commit.CollectGarbage(graph, withoutEmpty(released), withoutEmpty(retained))
	if err != nil {
		return err
	}
	t.log.Info("Pruned versions", "below", height, "released", len(released), "deleted", deleted)
	return nil
}

func withoutEmpty(roots []common.Hash) []common.Hash {
	res := make([]common.Hash, 0, len(roots))
	for _, root := range roots {
		if root != EmptyRoot {
			res = append(res, root)
		}
	}
	return res
}
