package jmt

import (
	"encoding/binary"
	"fmt"
	"math/bits"

	"github.com/Fantom-foundation/Arbor/go/common"
	"github.com/Fantom-foundation/Arbor/go/database/commit"
	"github.com/ethereum/go-ethereum/rlp"
)

const (
	leafTag     = 0x00
	internalTag = 0x01
)

// Placeholder is the hash of an empty subtree and the root of an empty trie.
var Placeholder = common.Sha3([]byte("SPARSE_MERKLE_PLACEHOLDER_HASH"))

type node interface {
	getHash() common.Hash
	encode() ([]byte, error)
}

// leafNode holds a single key. It is placed at the shallowest depth at
// which the path of its hashed key is unique within the trie.
type leafNode struct {
	key     []byte
	keyHash common.Hash
	value   []byte
	hash    common.Hash
}

func newLeaf(key, value []byte) *leafNode {
	keyHash := common.Sha3(key)
	return &leafNode{
		key:     key,
		keyHash: keyHash,
		value:   value,
		hash:    hashLeaf(keyHash, common.Sha3(value)),
	}
}

func hashLeaf(keyHash, valueHash common.Hash) common.Hash {
	return common.Sha3([]byte{leafTag}, keyHash[:], valueHash[:])
}

func (n *leafNode) getHash() common.Hash {
	return n.hash
}

func (n *leafNode) path() NibblePath {
	return NibblePathOf(n.keyHash)
}

// internalNode has up to 16 children, one per nibble. Empty children are
// represented by the zero hash.
type internalNode struct {
	children [16]common.Hash
	hash     common.Hash
}

func newInternal(children [16]common.Hash) *internalNode {
	return &internalNode{
		children: children,
		hash:     hashInternal(bitmapOf(&children), nonEmpty(&children)),
	}
}

func bitmapOf(children *[16]common.Hash) uint16 {
	var bitmap uint16
	for i, child := range children {
		if child != (common.Hash{}) {
			bitmap |= 1 << i
		}
	}
	return bitmap
}

func nonEmpty(children *[16]common.Hash) []common.Hash {
	res := make([]common.Hash, 0, len(children))
	for _, child := range children {
		if child != (common.Hash{}) {
			res = append(res, child)
		}
	}
	return res
}

func hashInternal(bitmap uint16, children []common.Hash) common.Hash {
	parts := make([][]byte, 0, len(children)+2)
	parts = append(parts, []byte{internalTag}, binary.BigEndian.AppendUint16(nil, bitmap))
	for i := range children {
		parts = append(parts, children[i][:])
	}
	return common.Sha3(parts...)
}

func (n *internalNode) getHash() common.Hash {
	return n.hash
}

func (n *internalNode) numChildren() int {
	return bits.OnesCount16(bitmapOf(&n.children))
}

type leafRecord struct {
	Key   []byte
	Value []byte
}

type internalRecord struct {
	Bitmap   uint16
	Children []common.Hash
}

func (n *leafNode) encode() ([]byte, error) {
	data, err := rlp.EncodeToBytes(&leafRecord{Key: n.key, Value: n.value})
	if err != nil {
		return nil, err
	}
	return append([]byte{leafTag}, data...), nil
}

func (n *internalNode) encode() ([]byte, error) {
	data, err := rlp.EncodeToBytes(&internalRecord{
		Bitmap:   bitmapOf(&n.children),
		Children: nonEmpty(&n.children),
	})
	if err != nil {
		return nil, err
	}
	return append([]byte{internalTag}, data...), nil
}

func decodeNode(hash common.Hash, data []byte) (node, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty encoding of node %v", commit.ErrStorageFailure, hash)
	}
	var res node
	switch data[0] {
	case leafTag:
		var record leafRecord
		if err := rlp.DecodeBytes(data[1:], &record); err != nil {
			return nil, fmt.Errorf("%w: invalid encoding of node %v; %v", commit.ErrStorageFailure, hash, err)
		}
		if record.Value == nil {
			record.Value = []byte{}
		}
		res = newLeaf(record.Key, record.Value)
	case internalTag:
		var record internalRecord
		if err := rlp.DecodeBytes(data[1:], &record); err != nil {
			return nil, fmt.Errorf("%w: invalid encoding of node %v; %v", commit.ErrStorageFailure, hash, err)
		}
		if bits.OnesCount16(record.Bitmap) != len(record.Children) {
			return nil, fmt.Errorf("%w: inconsistent bitmap of node %v", commit.ErrStorageFailure, hash)
		}
		var children [16]common.Hash
		next := 0
		for i := range children {
			if record.Bitmap&(1<<i) != 0 {
				children[i] = record.Children[next]
				next++
			}
		}
		res = newInternal(children)
	default:
		return nil, fmt.Errorf("%w: unknown node tag %d of node %v", commit.ErrStorageFailure, data[0], hash)
	}
	if res.getHash() != hash {
		return nil, fmt.Errorf("%w: content of node %v hashes to %v", commit.ErrStorageFailure, hash, res.getHash())
	}
	return res, nil
}
