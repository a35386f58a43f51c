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

import "github.com/Fantom-foundation/Arbor/go/common"

const (
	// ErrStorageFailure is reported if the node store failed or returned
	// inconsistent data.
	ErrStorageFailure = common.ConstError("storage failure")
	// ErrProofMalformed is reported if a proof is structurally invalid.
	ErrProofMalformed = common.ConstError("malformed proof")
	// ErrHashMismatch is reported if a disclosed record does not match its
	// commitment, or two proofs disagree on a shared node.
	ErrHashMismatch = common.ConstError("hash mismatch")
	// ErrRootMismatch is reported if a proof folds to a root different from
	// the trusted one.
	ErrRootMismatch = common.ConstError("root mismatch")
	// ErrGraphEdgeInvalid is reported if a traversal proof follows an edge
	// not present in the committed graph.
	ErrGraphEdgeInvalid = common.ConstError("invalid graph edge")
	// ErrNotGreedy is reported if a traversal proof skips a strictly better
	// neighbour.
	ErrNotGreedy = common.ConstError("traversal is not greedy")
	// ErrUnknownVersion is reported on accesses to versions that were never
	// committed or have been pruned.
	ErrUnknownVersion = common.ConstError("unknown version")
)
