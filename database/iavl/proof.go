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

	"github.com/Fantom-foundation/Arbor/go/common"
	"github.com/Fantom-foundation/Arbor/go/database/commit"
)

// Side names the child of an inner node a proof path descends into.
type Side uint8

const (
	Left Side = iota
	Right
)

func (s Side) String() string {
	if s == Left {
		return "left"
	}
	return "right"
}

// LeafOp describes how the leaf hash is derived from a key and value.
type LeafOp struct {
	Prefix []byte
}

// InnerOp describes how the hash of an inner node is derived from the hash
// of the child on the proof path: H(Prefix ‖ child ‖ Suffix).
type InnerOp struct {
	Side   Side
	Prefix []byte
	Suffix []byte
}

// ExistenceProof proves that a key is mapped to a value. The path lists
// the inner nodes from the leaf up to the root.
type ExistenceProof struct {
	Key   []byte
	Value []byte
	Leaf  LeafOp
	Path  []InnerOp
}

// NonExistenceProof proves the absence of a key by the existence of its
// in-order neighbours. Either neighbour is missing if the key is beyond the
// range of the tree; both are missing in an empty tree.
type NonExistenceProof struct {
	Key   []byte
	Left  *ExistenceProof `rlp:"nil"`
	Right *ExistenceProof `rlp:"nil"`
}

// Proof is either an existence or a non-existence proof.
type Proof struct {
	Exist    *ExistenceProof    `rlp:"nil"`
	NonExist *NonExistenceProof `rlp:"nil"`
}

func (p *Proof) Kind() commit.ProofKind {
	return commit.IavlProof
}

func (p *Proof) Encode() ([]byte, error) {
	return commit.EncodeProof(commit.IavlProof, p)
}

// DecodeProof restores a proof produced by Proof.Encode.
func DecodeProof(data []byte) (*Proof, error) {
	res := &Proof{}
	if err := commit.DecodeProof(commit.IavlProof, data, res); err != nil {
		return nil, err
	}
	return res, nil
}

func (t *Tree) CreateProof(key []byte) (commit.Proof, error) {
	return t.createProof(t.root, key)
}

func (t *Tree) CreateProofAt(height uint64, key []byte) (commit.Proof, error) {
	root, err := t.RootAt(height)
	if err != nil {
		return nil, err
	}
	return t.createProof(root, key)
}

func (t *Tree) createProof(root common.Hash, key []byte) (*Proof, error) {
	if root == EmptyRoot {
		return &Proof{NonExist: &NonExistenceProof{Key: bytes.Clone(key)}}, nil
	}
	rootNode, err := t.getNode(root)
	if err != nil {
		return nil, err
	}
	index, exists, err := t.rank(rootNode, key)
	if err != nil {
		return nil, err
	}
	if exists {
		proof, err := t.proveIndex(rootNode, index)
		if err != nil {
			return nil, err
		}
		return &Proof{Exist: proof}, nil
	}

	res := &NonExistenceProof{Key: bytes.Clone(key)}
	if index > 0 {
		if res.Left, err = t.proveIndex(rootNode, index-1); err != nil {
			return nil, err
		}
	}
	if index < rootNode.size {
		if res.Right, err = t.proveIndex(rootNode, index); err != nil {
			return nil, err
		}
	}
	return &Proof{NonExist: res}, nil
}

// rank returns the number of keys smaller than the given key and whether
// the key itself is present.
func (t *Tree) rank(n *node, key []byte) (uint64, bool, error) {
	rank := uint64(0)
	for !n.isLeaf() {
		left, right, err := t.children(n)
		if err != nil {
			return 0, false, err
		}
		if bytes.Compare(key, n.key) < 0 {
			n = left
		} else {
			rank += left.size
			n = right
		}
	}
	switch bytes.Compare(n.key, key) {
	case 0:
		return rank, true, nil
	case -1:
		return rank + 1, false, nil
	}
	return rank, false, nil
}

// proveIndex creates an existence proof for the leaf at the given in-order
// position of the subtree.
func (t *Tree) proveIndex(n *node, index uint64) (*ExistenceProof, error) {
	var path []InnerOp
	for !n.isLeaf() {
		left, right, err := t.children(n)
		if err != nil {
			return nil, err
		}
		header := innerHeader(n.height, n.size)
		if index < left.size {
			path = append(path, InnerOp{
				Side:   Left,
				Prefix: append(header, hashLength),
				Suffix: append([]byte{hashLength}, n.right[:]...),
			})
			n = left
		} else {
			prefix := append(header, hashLength)
			prefix = append(prefix, n.left[:]...)
			path = append(path, InnerOp{
				Side:   Right,
				Prefix: append(prefix, hashLength),
				Suffix: []byte{},
			})
			index -= left.size
			n = right
		}
	}
	if index != 0 {
		return nil, fmt.Errorf("%w: inconsistent subtree sizes", commit.ErrStorageFailure)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return &ExistenceProof{
		Key:   bytes.Clone(n.key),
		Value: bytes.Clone(n.value),
		Leaf:  LeafOp{Prefix: []byte{leafPrefix}},
		Path:  path,
	}, nil
}
