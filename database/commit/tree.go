// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package commit

//go:generate mockgen -source tree.go -destination tree_mocks.go -package commit

import (
	"fmt"

	"github.com/Fantom-foundation/Arbor/go/common"
	"github.com/ethereum/go-ethereum/rlp"
)

// ProofKind identifies the tree variant a proof was produced by.
type ProofKind byte

const (
	IavlProof ProofKind = iota + 1
	JellyfishProof
	TraversalProof
)

func (k ProofKind) String() string {
	switch k {
	case IavlProof:
		return "iavl"
	case JellyfishProof:
		return "jellyfish"
	case TraversalProof:
		return "traversal"
	}
	return fmt.Sprintf("unknown(%d)", byte(k))
}

// Proof is a witness produced by one of the tree variants.
type Proof interface {
	// Kind returns the variant that produced this proof.
	Kind() ProofKind
	// Encode produces the canonical binary form of the proof.
	Encode() ([]byte, error)
}

// Tree is the contract shared by all authenticated key/value structures.
// Any instance is used by a single writer at a time.
type Tree interface {
	// Get returns the value stored for the given key. Absence is reported
	// by the second result, errors only indicate storage failures.
	Get(key []byte) ([]byte, bool, error)

	// Insert sets the value of the given key. A nil value is stored as an
	// empty value.
	Insert(key, value []byte) error

	// Delete removes the given key. Deleting an absent key is a no-op.
	Delete(key []byte) error

	// RootCommitment returns the commitment to the current working state.
	RootCommitment() (common.Hash, error)

	// CreateProof produces an existence proof if the key is present in the
	// working state and a non-existence proof otherwise.
	CreateProof(key []byte) (Proof, error)

	// VerifyProof checks the given proof against the root. A nil value
	// requests a proof of absence, any other value a proof that the key is
	// mapped to exactly this value. It never panics on malformed proofs.
	VerifyProof(root common.Hash, proof Proof, key, value []byte) error

	// AsAny provides access to the concrete variant.
	AsAny() any
}

// VersionedTree is a Tree retaining committed versions by block height.
type VersionedTree interface {
	Tree

	// Commit persists the working state as the version of the given height.
	// Heights must be strictly increasing.
	Commit(height uint64) (common.Hash, error)

	// RootAt returns the root committed at exactly the given height.
	RootAt(height uint64) (common.Hash, error)

	// GetAt looks up a key in the version of the given height.
	GetAt(height uint64, key []byte) ([]byte, bool, error)

	// CreateProofAt produces a proof against the version of the given height.
	CreateProofAt(height uint64, key []byte) (Proof, error)

	// Versions lists the retained versions within [from, to].
	Versions(from, to uint64) []Version

	// Prune releases all versions below the given height.
	Prune(height uint64) error
}

// EncodeProof produces a kind tag followed by the RLP encoding of payload.
func EncodeProof(kind ProofKind, payload any) ([]byte, error) {
	data, err := rlp.EncodeToBytes(payload)
	if err != nil {
		return nil, err
	}
	return append([]byte{byte(kind)}, data...), nil
}

// DecodeProof checks the kind tag of an encoded proof and decodes the
// remaining bytes into payload.
func DecodeProof(kind ProofKind, data []byte, payload any) error {
	if len(data) == 0 {
		return fmt.Errorf("%w: empty proof encoding", ErrProofMalformed)
	}
	if got := ProofKind(data[0]); got != kind {
		return fmt.Errorf("%w: expected %v proof, got %v", ErrProofMalformed, kind, got)
	}
	if err := rlp.DecodeBytes(data[1:], payload); err != nil {
		return fmt.Errorf("%w: %v", ErrProofMalformed, err)
	}
	return nil
}
