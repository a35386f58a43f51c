// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package jmt

import (
	"bytes"
	"fmt"

	"github.com/Fantom-foundation/Arbor/go/backend/nodestore"
	"github.com/Fantom-foundation/Arbor/go/common"
	"github.com/Fantom-foundation/Arbor/go/database/commit"
	"github.com/ethereum/go-ethereum/log"
	lru "github.com/hashicorp/golang-lru/v2"
)

// Tree is a versioned sparse Merkle trie with a branching factor of 16.
// Keys are addressed by the nibbles of their SHA3-256 hash, which makes the
// shape of the trie independent of the order of updates.
type Tree struct {
	store   nodestore.NodeStore
	config  Config
	log     log.Logger
	root    common.Hash // Placeholder if empty
	pending map[common.Hash]node
	cache   *lru.Cache[common.Hash, node]
	indices *commit.Indices[node]
}

var _ commit.VersionedTree = (*Tree)(nil)

func NewTree(store nodestore.NodeStore, config Config) (*Tree, error) {
	config = config.withDefaults()
	cache, err := lru.New[common.Hash, node](config.NodeCacheSize)
	if err != nil {
		return nil, err
	}
	return &Tree{
		store:   store,
		config:  config,
		log:     config.Logger,
		root:    Placeholder,
		pending: map[common.Hash]node{},
		cache:   cache,
		indices: commit.NewIndices[node](),
	}, nil
}

func (t *Tree) getNode(hash common.Hash) (node, error) {
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

func (t *Tree) register(n node) node {
	t.pending[n.getHash()] = n
	return n
}

func (t *Tree) Get(key []byte) ([]byte, bool, error) {
	return t.get(t.root, key)
}

func (t *Tree) get(root common.Hash, key []byte) ([]byte, bool, error) {
	keyHash := common.Sha3(key)
	path := NibblePathOf(keyHash)
	cur := root
	for depth := 0; cur != Placeholder && cur != (common.Hash{}); depth++ {
		n, err := t.getNode(cur)
		if err != nil {
			return nil, false, err
		}
		switch n := n.(type) {
		case *leafNode:
			if n.keyHash != keyHash {
				return nil, false, nil
			}
			return n.value, true, nil
		case *internalNode:
			cur = n.children[path.GetNibble(depth)]
		}
	}
	return nil, false, nil
}

func (t *Tree) Insert(key, value []byte) error {
	if value == nil {
		value = []byte{}
	}
	leaf := newLeaf(bytes.Clone(key), bytes.Clone(value))
	root, err := t.insert(t.root, 0, leaf)
	if err != nil {
		return err
	}
	t.root = root.getHash()
	return nil
}

func (t *Tree) insert(ref common.Hash, depth int, leaf *leafNode) (node, error) {
	if ref == Placeholder || ref == (common.Hash{}) {
		return t.register(leaf), nil
	}
	n, err := t.getNode(ref)
	if err != nil {
		return nil, err
	}
	switch n := n.(type) {
	case *leafNode:
		if n.keyHash == leaf.keyHash {
			if bytes.Equal(n.value, leaf.value) {
				return n, nil
			}
			return t.register(leaf), nil
		}
		return t.split(depth, n, leaf), nil
	case *internalNode:
		nibble := leaf.path().GetNibble(depth)
		child, err := t.insert(n.children[nibble], depth+1, leaf)
		if err != nil {
			return nil, err
		}
		if child.getHash() == n.children[nibble] {
			return n, nil
		}
		children := n.children
		children[nibble] = child.getHash()
		return t.register(newInternal(children)), nil
	}
	return nil, fmt.Errorf("unexpected node type %T", n)
}

// split replaces a leaf at the given depth by a chain of internal nodes
// covering the common prefix of both leaves, ending in a node holding both.
func (t *Tree) split(depth int, existing, added *leafNode) node {
	a, b := existing.path(), added.path()
	shared := a.CommonPrefix(b)
	var children [16]common.Hash
	children[a.GetNibble(shared)] = existing.hash
	children[b.GetNibble(shared)] = t.register(added).getHash()
	res := t.register(newInternal(children))
	for d := shared - 1; d >= depth; d-- {
		var chain [16]common.Hash
		chain[a.GetNibble(d)] = res.getHash()
		res = t.register(newInternal(chain))
	}
	return res
}

func (t *Tree) Delete(key []byte) error {
	keyHash := common.Sha3(key)
	root, changed, err := t.remove(t.root, 0, keyHash)
	if err != nil || !changed {
		return err
	}
	if root == nil {
		t.root = Placeholder
	} else {
		t.root = root.getHash()
	}
	return nil
}

// remove deletes the key from the subtree and returns the new subtree, nil
// if it became empty. Internal nodes left with a single leaf child are
// replaced by that leaf.
func (t *Tree) remove(ref common.Hash, depth int, keyHash common.Hash) (node, bool, error) {
	if ref == Placeholder || ref == (common.Hash{}) {
		return nil, false, nil
	}
	n, err := t.getNode(ref)
	if err != nil {
		return nil, false, err
	}
	switch n := n.(type) {
	case *leafNode:
		if n.keyHash == keyHash {
			return nil, true, nil
		}
		return n, false, nil
	case *internalNode:
		nibble := NibblePathOf(keyHash).GetNibble(depth)
		child, changed, err := t.remove(n.children[nibble], depth+1, keyHash)
		if err != nil || !changed {
			return n, false, err
		}
		children := n.children
		if child == nil {
			children[nibble] = common.Hash{}
		} else {
			children[nibble] = child.getHash()
		}
		remaining := nonEmpty(&children)
		switch len(remaining) {
		case 0:
			return nil, true, nil
		case 1:
			only, err := t.getNode(remaining[0])
			if err != nil {
				return nil, false, err
			}
			if leaf, ok := only.(*leafNode); ok {
				return leaf, true, nil
			}
		}
		return t.register(newInternal(children)), true, nil
	}
	return nil, false, fmt.Errorf("unexpected node type %T", n)
}

func (t *Tree) RootCommitment() (common.Hash, error) {
	return t.root, nil
}

func (t *Tree) AsAny() any {
	return t
}
