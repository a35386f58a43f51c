// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package nodestore

//go:generate mockgen -source nodestore.go -destination nodestore_mocks.go -package nodestore

import (
	"github.com/Fantom-foundation/Arbor/go/common"
)

// NodeStore is the durable, content-addressed storage beneath the trees of
// this module. Nodes are identified by the hash of their own content, thus a
// hash is only ever associated to a single byte sequence. Implementations are
// considered authoritative: data saved successfully must be retrievable until
// it is explicitly deleted.
//
// Implementations must be safe for concurrent use, since committed tree
// versions may be read concurrently.
type NodeStore interface {
	// Load retrieves the encoded node for the given hash. If no such node is
	// present, the second return value is false. An error is only reported
	// if the underlying storage could not be read.
	Load(hash common.Hash) ([]byte, bool, error)

	// Save stores the encoded node under the given hash. Callers must not
	// modify the data after it was handed to the store.
	Save(hash common.Hash, data []byte) error
}

// Deleter is an optional capability of a NodeStore supporting the removal of
// nodes. Trees use it to sweep nodes no longer reachable from any retained
// version.
type Deleter interface {
	// Delete removes the node with the given hash. Deleting a missing node
	// is not an error.
	Delete(hash common.Hash) error
}

// Entry is a single encoded node to be written into a store.
type Entry struct {
	Hash common.Hash
	Data []byte
}

// BatchSaver is an optional capability of a NodeStore for writing multiple
// nodes in a single, atomic operation.
type BatchSaver interface {
	// SaveBatch stores all given entries. Either all or none of the entries
	// become visible.
	SaveBatch(entries []Entry) error
}

// deleteCapability is implemented by store wrappers whose support for
// deletions depends on the wrapped store.
type deleteCapability interface {
	CanDelete() bool
}

// CanDelete determines whether nodes can be removed from the given store.
func CanDelete(store NodeStore) bool {
	if capability, ok := store.(deleteCapability); ok {
		return capability.CanDelete()
	}
	_, ok := store.(Deleter)
	return ok
}

// SaveAll writes the given entries into the store, using a single batch if
// the store supports it.
func SaveAll(store NodeStore, entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}
	if batcher, ok := store.(BatchSaver); ok {
		return batcher.SaveBatch(entries)
	}
	for _, entry := range entries {
		if err := store.Save(entry.Hash, entry.Data); err != nil {
			return err
		}
	}
	return nil
}
