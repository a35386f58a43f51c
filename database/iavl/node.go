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
	"encoding/binary"
	"fmt"

	"github.com/Fantom-foundation/Arbor/go/common"
	"github.com/Fantom-foundation/Arbor/go/database/commit"
	"github.com/ethereum/go-ethereum/rlp"
)

const (
	leafPrefix  = 0x00
	innerPrefix = 0x01
	hashLength  = byte(len(common.Hash{}))
)

// EmptyRoot is the commitment of a tree without any keys.
var EmptyRoot = common.Sha256()

// node is an immutable element of the tree. Leaves (height 0) carry a key
// and value, inner nodes reference exactly two children and carry the
// smallest key of their right subtree.
type node struct {
	height uint8
	size   uint64
	key    []byte
	value  []byte
	left   common.Hash
	right  common.Hash
	hash   common.Hash
}

func (n *node) isLeaf() bool {
	return n.height == 0
}

func newLeaf(key, value []byte) *node {
	n := &node{size: 1, key: key, value: value}
	n.hash = leafHash(key, value)
	return n
}

func newInner(key []byte, left, right *node) *node {
	n := &node{
		height: max(left.height, right.height) + 1,
		size:   left.size + right.size,
		key:    key,
		left:   left.hash,
		right:  right.hash,
	}
	n.hash = common.Sha256(innerHeader(n.height, n.size), []byte{hashLength}, n.left[:], []byte{hashLength}, n.right[:])
	return n
}

func leafHash(key, value []byte) common.Hash {
	valueHash := common.Sha256(value)
	return common.Sha256(leafPreimage(key, valueHash))
}

func leafPreimage(key []byte, valueHash common.Hash) []byte {
	res := make([]byte, 0, 1+2*binary.MaxVarintLen64+len(key)+len(valueHash))
	res = append(res, leafPrefix)
	res = binary.AppendUvarint(res, uint64(len(key)))
	res = append(res, key...)
	res = binary.AppendUvarint(res, uint64(len(valueHash)))
	return append(res, valueHash[:]...)
}

func innerHeader(height uint8, size uint64) []byte {
	res := make([]byte, 0, 1+2*binary.MaxVarintLen64)
	res = append(res, innerPrefix)
	res = binary.AppendUvarint(res, uint64(height))
	return binary.AppendUvarint(res, size)
}

type nodeRecord struct {
	Height uint8
	Size   uint64
	Key    []byte
	Value  []byte
	Left   common.Hash
	Right  common.Hash
}

func (n *node) encode() ([]byte, error) {
	return rlp.EncodeToBytes(&nodeRecord{
		Height: n.height,
		Size:   n.size,
		Key:    n.key,
		Value:  n.value,
		Left:   n.left,
		Right:  n.right,
	})
}

// decodeNode restores a node and checks that it matches the hash it was
// stored under.
func decodeNode(hash common.Hash, data []byte) (*node, error) {
	var record nodeRecord
	if err := rlp.DecodeBytes(data, &record); err != nil {
		return nil, fmt.Errorf("%w: invalid encoding of node %v; %v", commit.ErrStorageFailure, hash, err)
	}
	n := &node{
		height: record.Height,
		size:   record.Size,
		key:    record.Key,
		value:  record.Value,
		left:   record.Left,
		right:  record.Right,
	}
	if n.isLeaf() {
		if n.value == nil {
			n.value = []byte{}
		}
		n.hash = leafHash(n.key, n.value)
	} else {
		n.hash = common.Sha256(innerHeader(n.height, n.size), []byte{hashLength}, n.left[:], []byte{hashLength}, n.right[:])
	}
	if n.hash != hash {
		return nil, fmt.Errorf("%w: content of node %v hashes to %v", commit.ErrStorageFailure, hash, n.hash)
	}
	return n, nil
}
