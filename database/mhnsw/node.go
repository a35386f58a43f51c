package mhnsw

import (
	"encoding/binary"
	"fmt"

	"github.com/Fantom-foundation/Arbor/go/common"
	"github.com/Fantom-foundation/Arbor/go/database/commit"
	"github.com/ethereum/go-ethereum/rlp"
	"golang.org/x/exp/slices"
)

// NodeId identifies a vector in an index. Ids are assigned densely in
// insertion order, starting at 0.
type NodeId uint32

const (
	nodeTag   = 0x02
	layerTag  = 0x03
	headerTag = 0x06
	setTag    = 0x07
)

// node is a vector of the graph together with its neighbour lists, one
// per layer the node is part of. Committed nodes are immutable; updates are
// applied to copies.
type node struct {
	id          NodeId
	vector      Vector
	neighbors   [][]NodeId
	layerHashes []common.Hash
	hash        common.Hash
}

func newNode(id NodeId, vector Vector, layers int) *node {
	n := &node{
		id:        id,
		vector:    vector,
		neighbors: make([][]NodeId, layers),
	}
	for i := range n.neighbors {
		n.neighbors[i] = []NodeId{}
	}
	n.rehash()
	return n
}

func (n *node) clone() *node {
	res := &node{
		id:          n.id,
		vector:      n.vector,
		neighbors:   make([][]NodeId, len(n.neighbors)),
		layerHashes: slices.Clone(n.layerHashes),
		hash:        n.hash,
	}
	for i, list := range n.neighbors {
		res.neighbors[i] = slices.Clone(list)
	}
	return res
}

func (n *node) rehash() {
	n.layerHashes = make([]common.Hash, len(n.neighbors))
	for i, list := range n.neighbors {
		n.layerHashes[i] = layerHash(i, list)
	}
	n.hash = nodeHash(n.id, n.vector.digest(), n.layerHashes)
}

// layerHash commits to the ordered neighbour list of a node at one layer.
func layerHash(layer int, neighbors []NodeId) common.Hash {
	data := make([]byte, 0, 1+2*binary.MaxVarintLen64+4*len(neighbors))
	data = append(data, layerTag)
	data = binary.AppendUvarint(data, uint64(layer))
	data = binary.AppendUvarint(data, uint64(len(neighbors)))
	for _, id := range neighbors {
		data = binary.BigEndian.AppendUint32(data, uint32(id))
	}
	return common.Sha256(data)
}

// nodeHash commits to the id, the vector and all neighbour lists of a node.
func nodeHash(id NodeId, vectorDigest common.Hash, layerHashes []common.Hash) common.Hash {
	data := make([]byte, 0, 1+4+32+binary.MaxVarintLen64+32*len(layerHashes))
	data = append(data, nodeTag)
	data = binary.BigEndian.AppendUint32(data, uint32(id))
	data = append(data, vectorDigest[:]...)
	data = binary.AppendUvarint(data, uint64(len(layerHashes)))
	for _, hash := range layerHashes {
		data = append(data, hash[:]...)
	}
	return common.Sha256(data)
}

type nodeRecord struct {
	ID        NodeId
	Vector    Vector
	Neighbors [][]NodeId
}

func (n *node) encode() ([]byte, error) {
	data, err := rlp.EncodeToBytes(&nodeRecord{ID: n.id, Vector: n.vector, Neighbors: n.neighbors})
	if err != nil {
		return nil, err
	}
	return append([]byte{nodeTag}, data...), nil
}

func decodeGraphNode(hash common.Hash, data []byte) (*node, error) {
	var record nodeRecord
	if err := rlp.DecodeBytes(data, &record); err != nil {
		return nil, fmt.Errorf("%w: invalid encoding of node %v; %v", commit.ErrStorageFailure, hash, err)
	}
	n := &node{id: record.ID, vector: record.Vector, neighbors: record.Neighbors}
	for i := range n.neighbors {
		if n.neighbors[i] == nil {
			n.neighbors[i] = []NodeId{}
		}
	}
	n.rehash()
	if n.hash != hash {
		return nil, fmt.Errorf("%w: content of node %v hashes to %v", commit.ErrStorageFailure, hash, n.hash)
	}
	return n, nil
}

// header summarizes an index version. Its hash is the root commitment of
// the index.
type header struct {
	Metric    MetricKind
	Count     uint32
	MaxLayer  uint8
	Entry     NodeId
	EntryHash common.Hash
	NodeSet   common.Hash
}

func (h *header) hash() common.Hash {
	data := make([]byte, 0, 1+1+4+1+4+32+32)
	data = append(data, headerTag, byte(h.Metric))
	data = binary.BigEndian.AppendUint32(data, h.Count)
	data = append(data, h.MaxLayer)
	data = binary.BigEndian.AppendUint32(data, uint32(h.Entry))
	data = append(data, h.EntryHash[:]...)
	data = append(data, h.NodeSet[:]...)
	return common.Sha256(data)
}

func (h *header) encode() ([]byte, error) {
	data, err := rlp.EncodeToBytes(h)
	if err != nil {
		return nil, err
	}
	return append([]byte{headerTag}, data...), nil
}

func decodeHeader(hash common.Hash, data []byte) (*header, error) {
	res := &header{}
	if err := rlp.DecodeBytes(data, res); err != nil {
		return nil, fmt.Errorf("%w: invalid encoding of header %v; %v", commit.ErrStorageFailure, hash, err)
	}
	if got := res.hash(); got != hash {
		return nil, fmt.Errorf("%w: content of header %v hashes to %v", commit.ErrStorageFailure, hash, got)
	}
	return res, nil
}
