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
	"github.com/ethereum/go-ethereum/rlp"
)

// The node set is a sparse binary Merkle tree of fixed depth mapping every
// NodeId to the hash of its node. Empty subtrees hash to the zero hash.
const setDepth = 32

type setNode struct {
	height uint8
	left   common.Hash
	right  common.Hash
	hash   common.Hash
}

func newSetNode(height uint8, left, right common.Hash) *setNode {
	return &setNode{height: height, left: left, right: right, hash: setHash(height, left, right)}
}

func setHash(height uint8, left, right common.Hash) common.Hash {
	if left == (common.Hash{}) && right == (common.Hash{}) {
		return common.Hash{}
	}
	return common.Sha256([]byte{setTag, height}, left[:], right[:])
}

type setRecord struct {
	Height uint8
	Left   common.Hash
	Right  common.Hash
}

func (n *setNode) encode() ([]byte, error) {
	data, err := rlp.EncodeToBytes(&setRecord{Height: n.height, Left: n.left, Right: n.right})
	if err != nil {
		return nil, err
	}
	return append([]byte{setTag}, data...), nil
}

func (n *setNode) children() []common.Hash {
	res := make([]common.Hash, 0, 2)
	for _, child := range []common.Hash{n.left, n.right} {
		if child != (common.Hash{}) {
			res = append(res, child)
		}
	}
	return res
}

func decodeSetNode(hash common.Hash, data []byte) (*setNode, error) {
	var record setRecord
	if err := rlp.DecodeBytes(data, &record); err != nil {
		return nil, fmt.Errorf("%w: invalid encoding of set node %v; %v", commit.ErrStorageFailure, hash, err)
	}
	if record.Height == 0 || record.Height > setDepth {
		return nil, fmt.Errorf("%w: invalid height %d of set node %v", commit.ErrStorageFailure, record.Height, hash)
	}
	res := newSetNode(record.Height, record.Left, record.Right)
	if res.hash != hash {
		return nil, fmt.Errorf("%w: content of set node %v hashes to %v", commit.ErrStorageFailure, hash, res.hash)
	}
	return res, nil
}

// Membership witnesses the position of a node hash in the node set. The
// bitmap marks the levels, counted from the leaves, with a non-empty
// sibling; the siblings are listed bottom-up.
type Membership struct {
	Bitmap   uint32
	Siblings []common.Hash
}

// root computes the node set root implied by the witness for the given
// leaf.
func (m *Membership) root(id NodeId, leaf common.Hash) (common.Hash, error) {
	cur := leaf
	next := 0
	for level := 0; level < setDepth; level++ {
		var sibling common.Hash
		if m.Bitmap&(1<<level) != 0 {
			if next >= len(m.Siblings) {
				return common.Hash{}, fmt.Errorf("%w: membership witness lacks siblings", commit.ErrProofMalformed)
			}
			sibling = m.Siblings[next]
			next++
		}
		if (id>>level)&1 == 0 {
			cur = setHash(uint8(level+1), cur, sibling)
		} else {
			cur = setHash(uint8(level+1), sibling, cur)
		}
	}
	if next != len(m.Siblings) {
		return common.Hash{}, fmt.Errorf("%w: membership witness has surplus siblings", commit.ErrProofMalformed)
	}
	return cur, nil
}

func (x *Index) getSetNode(hash common.Hash) (*setNode, error) {
	if n, found := x.setPending[hash]; found {
		return n, nil
	}
	obj, err := x.load(hash)
	if err != nil {
		return nil, err
	}
	n, ok := obj.(*setNode)
	if !ok {
		return nil, fmt.Errorf("%w: %v is not a set node", commit.ErrStorageFailure, hash)
	}
	return n, nil
}

// setUpdate assigns the leaf of the given id in the subtree of the given
// height and returns the new subtree root.
func (x *Index) setUpdate(root common.Hash, height uint8, id NodeId, leaf common.Hash) (common.Hash, error) {
	if height == 0 {
		return leaf, nil
	}
	var left, right common.Hash
	if root != (common.Hash{}) {
		n, err := x.getSetNode(root)
		if err != nil {
			return common.Hash{}, err
		}
		left, right = n.left, n.right
	}
	var err error
	if (id>>(height-1))&1 == 0 {
		left, err = x.setUpdate(left, height-1, id, leaf)
	} else {
		right, err = x.setUpdate(right, height-1, id, leaf)
	}
	if err != nil {
		return common.Hash{}, err
	}
	n := newSetNode(height, left, right)
	if n.hash != (common.Hash{}) {
		x.setPending[n.hash] = n
	}
	return n.hash, nil
}

// setLookup returns the leaf of the given id and its membership witness.
func (x *Index) setLookup(root common.Hash, id NodeId) (common.Hash, Membership, error) {
	siblings := make([]common.Hash, setDepth)
	cur := root
	for height := uint8(setDepth); height > 0; height-- {
		if cur == (common.Hash{}) {
			return common.Hash{}, Membership{}, fmt.Errorf("%w: node %d not in node set", commit.ErrStorageFailure, id)
		}
		n, err := x.getSetNode(cur)
		if err != nil {
			return common.Hash{}, Membership{}, err
		}
		if (id>>(height-1))&1 == 0 {
			cur, siblings[height-1] = n.left, n.right
		} else {
			cur, siblings[height-1] = n.right, n.left
		}
	}
	if cur == (common.Hash{}) {
		return common.Hash{}, Membership{}, fmt.Errorf("%w: node %d not in node set", commit.ErrStorageFailure, id)
	}
	witness := Membership{Siblings: []common.Hash{}}
	for level, sibling := range siblings {
		if sibling != (common.Hash{}) {
			witness.Bitmap |= 1 << level
			witness.Siblings = append(witness.Siblings, sibling)
		}
	}
	return cur, witness, nil
}
