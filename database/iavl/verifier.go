package iavl

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/Fantom-foundation/Arbor/go/common"
	"github.com/Fantom-foundation/Arbor/go/database/commit"
)

func (t *Tree) VerifyProof(root common.Hash, proof commit.Proof, key, value []byte) error {
	p, ok := proof.(*Proof)
	if !ok {
		return fmt.Errorf("%w: expected IAVL proof, got %T", commit.ErrProofMalformed, proof)
	}
	return Verify(root, p, key, value)
}

// Verify checks the proof against the given root. If value is nil, the
// proof must show that the key is absent, otherwise that the key is mapped
// to exactly the given value.
func Verify(root common.Hash, proof *Proof, key, value []byte) error {
	if proof == nil {
		return fmt.Errorf("%w: missing proof", commit.ErrProofMalformed)
	}
	if value != nil {
		if proof.Exist == nil || proof.NonExist != nil {
			return fmt.Errorf("%w: expected existence proof", commit.ErrProofMalformed)
		}
		_, err := proof.Exist.verify(root, key, value)
		return err
	}
	if proof.NonExist == nil || proof.Exist != nil {
		return fmt.Errorf("%w: expected non-existence proof", commit.ErrProofMalformed)
	}
	return proof.NonExist.verify(root, key)
}

// verify replays the proof for the given key and value and returns the
// hashes of all nodes on the path, starting with the leaf.
func (p *ExistenceProof) verify(root common.Hash, key, value []byte) ([]common.Hash, error) {
	if !bytes.Equal(p.Leaf.Prefix, []byte{leafPrefix}) {
		return nil, fmt.Errorf("%w: invalid leaf prefix %x", commit.ErrProofMalformed, p.Leaf.Prefix)
	}
	hashes := make([]common.Hash, 0, len(p.Path)+1)
	hash := common.Sha256(leafPreimage(key, common.Sha256(value)))
	hashes = append(hashes, hash)

	lastHeight, lastSize := uint64(0), uint64(1)
	for i, op := range p.Path {
		height, size, err := op.check()
		if err != nil {
			return nil, fmt.Errorf("%w: step %d: %v", commit.ErrProofMalformed, i, err)
		}
		if height <= lastHeight || size <= lastSize {
			return nil, fmt.Errorf("%w: step %d: height and size must increase towards the root", commit.ErrProofMalformed, i)
		}
		lastHeight, lastSize = height, size
		hash = common.Sha256(op.Prefix, hash[:], op.Suffix)
		hashes = append(hashes, hash)
	}
	if hash != root {
		return nil, fmt.Errorf("%w: proof yields %v, expected %v", commit.ErrRootMismatch, hash, root)
	}
	return hashes, nil
}

// check validates the layout of the operation against its side and returns
// the height and size of the described node.
func (op *InnerOp) check() (uint64, uint64, error) {
	if len(op.Prefix) == 0 || op.Prefix[0] != innerPrefix {
		return 0, 0, fmt.Errorf("invalid inner prefix")
	}
	height, n := binary.Uvarint(op.Prefix[1:])
	if n <= 0 || height > 255 {
		return 0, 0, fmt.Errorf("invalid height encoding")
	}
	rest := op.Prefix[1+n:]
	size, n := binary.Uvarint(rest)
	if n <= 0 {
		return 0, 0, fmt.Errorf("invalid size encoding")
	}
	rest = rest[n:]

	switch op.Side {
	case Left:
		if !bytes.Equal(rest, []byte{hashLength}) {
			return 0, 0, fmt.Errorf("invalid prefix for left step")
		}
		if len(op.Suffix) != 1+int(hashLength) || op.Suffix[0] != hashLength {
			return 0, 0, fmt.Errorf("invalid suffix for left step")
		}
	case Right:
		if len(rest) != 2+int(hashLength) || rest[0] != hashLength || rest[len(rest)-1] != hashLength {
			return 0, 0, fmt.Errorf("invalid prefix for right step")
		}
		if len(op.Suffix) != 0 {
			return 0, 0, fmt.Errorf("invalid suffix for right step")
		}
	default:
		return 0, 0, fmt.Errorf("invalid side %d", op.Side)
	}
	return height, size, nil
}

func (p *NonExistenceProof) verify(root common.Hash, key []byte) error {
	if !bytes.Equal(p.Key, key) {
		return fmt.Errorf("%w: proof is for key %x, not %x", commit.ErrProofMalformed, p.Key, key)
	}
	if p.Left == nil && p.Right == nil {
		if root != EmptyRoot {
			return fmt.Errorf("%w: absence without neighbours requires the empty root", commit.ErrRootMismatch)
		}
		return nil
	}

	var leftHashes, rightHashes []common.Hash
	if p.Left != nil {
		if bytes.Compare(p.Left.Key, key) >= 0 {
			return fmt.Errorf("%w: left neighbour %x is not below %x", commit.ErrProofMalformed, p.Left.Key, key)
		}
		hashes, err := p.Left.verify(root, p.Left.Key, p.Left.Value)
		if err != nil {
			return err
		}
		leftHashes = hashes
	}
	if p.Right != nil {
		if bytes.Compare(key, p.Right.Key) >= 0 {
			return fmt.Errorf("%w: right neighbour %x is not above %x", commit.ErrProofMalformed, p.Right.Key, key)
		}
		hashes, err := p.Right.verify(root, p.Right.Key, p.Right.Value)
		if err != nil {
			return err
		}
		rightHashes = hashes
	}

	switch {
	case p.Right == nil:
		if !allSteps(p.Left.Path, Right) {
			return fmt.Errorf("%w: left neighbour is not the rightmost leaf", commit.ErrProofMalformed)
		}
	case p.Left == nil:
		if !allSteps(p.Right.Path, Left) {
			return fmt.Errorf("%w: right neighbour is not the leftmost leaf", commit.ErrProofMalformed)
		}
	default:
		return checkAdjacent(p.Left.Path, leftHashes, p.Right.Path, rightHashes)
	}
	return nil
}

// checkAdjacent verifies that two verified paths lead to neighbouring
// leaves: they share all nodes down to a split node, where the left path
// turns left and the right path turns right, and then follow the inner
// edges of the split node's subtrees.
func checkAdjacent(left []InnerOp, leftHashes []common.Hash, right []InnerOp, rightHashes []common.Hash) error {
	for depth := 0; ; depth++ {
		l, r := len(left)-1-depth, len(right)-1-depth
		if l < 0 || r < 0 {
			return fmt.Errorf("%w: neighbour paths do not split", commit.ErrProofMalformed)
		}
		if leftHashes[l+1] != rightHashes[r+1] {
			return fmt.Errorf("%w: neighbour paths disagree at depth %d", commit.ErrHashMismatch, depth)
		}
		if left[l].Side == right[r].Side {
			continue
		}
		if left[l].Side != Left || right[r].Side != Right {
			return fmt.Errorf("%w: neighbour paths split in wrong order", commit.ErrProofMalformed)
		}
		if !allSteps(left[:l], Right) || !allSteps(right[:r], Left) {
			return fmt.Errorf("%w: neighbours are not adjacent", commit.ErrProofMalformed)
		}
		return nil
	}
}

func allSteps(path []InnerOp, side Side) bool {
	for _, op := range path {
		if op.Side != side {
			return false
		}
	}
	return true
}
