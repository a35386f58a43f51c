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
	"math/bits"

	"github.com/Fantom-foundation/Arbor/go/common"
	"github.com/Fantom-foundation/Arbor/go/database/commit"
)

// Step describes an internal node on the path from the root to a key. The
// bitmap lists the non-empty children of the node, the siblings the hashes
// of all non-empty children except the one on the path, in nibble order.
type Step struct {
	Bitmap   uint16
	Siblings []common.Hash
}

// LeafRecord discloses the leaf found at the end of a proof path.
type LeafRecord struct {
	KeyHash   common.Hash
	ValueHash common.Hash
}

// Proof shows the presence or absence of a key. Steps are ordered from the
// root towards the key. The path ends either in a leaf, which is the key's
// own leaf or a different leaf occupying its position, or in an empty child
// slot of the last step.
type Proof struct {
	Key   []byte
	Steps []Step
	Leaf  *LeafRecord `rlp:"nil"`
}

func (p *Proof) Kind() commit.ProofKind {
	return commit.JellyfishProof
}

func (p *Proof) Encode() ([]byte, error) {
	return commit.EncodeProof(commit.JellyfishProof, p)
}

// DecodeProof restores a proof produced by Proof.Encode.
func DecodeProof(data []byte) (*Proof, error) {
	res := &Proof{}
	if err := commit.DecodeProof(commit.JellyfishProof, data, res); err != nil {
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
	proof := &Proof{Key: bytes.Clone(key)}
	path := NibblePathOf(common.Sha3(key))
	cur := root
	for depth := 0; cur != Placeholder; depth++ {
		n, err := t.getNode(cur)
		if err != nil {
			return nil, err
		}
		switch n := n.(type) {
		case *leafNode:
			proof.Leaf = &LeafRecord{KeyHash: n.keyHash, ValueHash: common.Sha3(n.value)}
			return proof, nil
		case *internalNode:
			nibble := path.GetNibble(depth)
			step := Step{Bitmap: bitmapOf(&n.children)}
			for i, child := range n.children {
				if i != int(nibble) && child != (common.Hash{}) {
					step.Siblings = append(step.Siblings, child)
				}
			}
			proof.Steps = append(proof.Steps, step)
			cur = n.children[nibble]
			if cur == (common.Hash{}) {
				return proof, nil
			}
		}
	}
	return proof, nil
}

func (t *Tree) VerifyProof(root common.Hash, proof commit.Proof, key, value []byte) error {
	p, ok := proof.(*Proof)
	if !ok {
		return fmt.Errorf("%w: expected Jellyfish proof, got %T", commit.ErrProofMalformed, proof)
	}
	return Verify(root, p, key, value)
}

// Verify checks the proof against the given root. A nil value requests a
// proof of absence.
func Verify(root common.Hash, proof *Proof, key, value []byte) error {
	if proof == nil {
		return fmt.Errorf("%w: missing proof", commit.ErrProofMalformed)
	}
	if !bytes.Equal(proof.Key, key) {
		return fmt.Errorf("%w: proof is for key %x, not %x", commit.ErrProofMalformed, proof.Key, key)
	}
	depth := len(proof.Steps)
	if depth > MaxNibbles {
		return fmt.Errorf("%w: path of %d steps exceeds key length", commit.ErrProofMalformed, depth)
	}
	keyHash := common.Sha3(key)
	path := NibblePathOf(keyHash)

	var cur common.Hash
	terminal := true
	switch {
	case value != nil:
		if proof.Leaf == nil {
			return fmt.Errorf("%w: membership proof without leaf", commit.ErrProofMalformed)
		}
		cur = hashLeaf(keyHash, common.Sha3(value))
	case proof.Leaf != nil:
		if proof.Leaf.KeyHash == keyHash {
			return fmt.Errorf("%w: absence proof ends in the key's own leaf", commit.ErrProofMalformed)
		}
		if NibblePathOf(proof.Leaf.KeyHash).CommonPrefix(path) < depth {
			return fmt.Errorf("%w: leaf does not occupy the key's position", commit.ErrProofMalformed)
		}
		cur = hashLeaf(proof.Leaf.KeyHash, proof.Leaf.ValueHash)
	case depth == 0:
		if root != Placeholder {
			return fmt.Errorf("%w: empty proof requires the empty root", commit.ErrRootMismatch)
		}
		return nil
	default:
		terminal = false
	}

	for i := depth - 1; i >= 0; i-- {
		step := proof.Steps[i]
		nibble := path.GetNibble(i)
		onPath := step.Bitmap&(1<<nibble) != 0
		if onPath != (terminal || i < depth-1) {
			return fmt.Errorf("%w: step %d has unexpected slot for nibble %d", commit.ErrProofMalformed, i, nibble)
		}
		want := bits.OnesCount16(step.Bitmap)
		if onPath {
			want--
		}
		if len(step.Siblings) != want || bits.OnesCount16(step.Bitmap) == 0 {
			return fmt.Errorf("%w: step %d discloses %d siblings for bitmap %016b", commit.ErrProofMalformed, i, len(step.Siblings), step.Bitmap)
		}
		children := make([]common.Hash, 0, 16)
		next := 0
		for j := 0; j < 16; j++ {
			if step.Bitmap&(1<<j) == 0 {
				continue
			}
			if j == int(nibble) {
				children = append(children, cur)
			} else {
				children = append(children, step.Siblings[next])
				next++
			}
		}
		cur = hashInternal(step.Bitmap, children)
	}
	if cur != root {
		return fmt.Errorf("%w: proof yields %v, expected %v", commit.ErrRootMismatch, cur, root)
	}
	return nil
}
