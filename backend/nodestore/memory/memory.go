package memory

import (
	"sync"

	"github.com/Fantom-foundation/Arbor/go/backend/nodestore"
	"github.com/Fantom-foundation/Arbor/go/common"
)

// Store is an in-memory nodestore.NodeStore implementation, mainly intended
// for tests and for short-lived trees not requiring durability.
type Store struct {
	mu    sync.RWMutex
	nodes map[common.Hash][]byte
}

// New creates an empty in-memory node store.
func New() *Store {
	return &Store{nodes: map[common.Hash][]byte{}}
}

func (s *Store) Load(hash common.Hash) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, found := s.nodes[hash]
	if !found {
		return nil, false, nil
	}
	return cloneBytes(data), true, nil
}

func (s *Store) Save(hash common.Hash, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nodes[hash] = cloneBytes(data)
	return nil
}

// SaveBatch stores all entries while holding the lock, making them visible
// to readers at once.
func (s *Store) SaveBatch(entries []nodestore.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, entry := range entries {
		s.nodes[entry.Hash] = cloneBytes(entry.Data)
	}
	return nil
}

func (s *Store) Delete(hash common.Hash) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.nodes, hash)
	return nil
}

// Contains is true if a node with the given hash is present.
func (s *Store) Contains(hash common.Hash) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, found := s.nodes[hash]
	return found
}

// Len returns the number of stored nodes.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.nodes)
}

func (s *Store) Close() error {
	return nil // no-op for in-memory stores
}

func cloneBytes(data []byte) []byte {
	res := make([]byte, len(data))
	copy(res, data)
	return res
}
