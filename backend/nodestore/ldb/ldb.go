// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package ldb

import (
	"errors"
	"fmt"

	"github.com/Fantom-foundation/Arbor/go/backend/nodestore"
	"github.com/Fantom-foundation/Arbor/go/common"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/iterator"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/util"
)

// TableSpace divides a LevelDB instance into spaces by adding a prefix to
// the keys. Each tree variant sharing a database uses its own space.
type TableSpace byte

const (
	// IavlNodeSpace is the table space for IAVL tree nodes.
	IavlNodeSpace TableSpace = 'I'
	// JellyfishNodeSpace is the table space for Jellyfish trie nodes.
	JellyfishNodeSpace TableSpace = 'J'
	// GraphNodeSpace is the table space for MHNSW graph nodes, node-set
	// tree nodes and index headers.
	GraphNodeSpace TableSpace = 'G'
)

// dbKey is a table space prefix followed by a node hash.
type dbKey [1 + len(common.Hash{})]byte

func (t TableSpace) toDBKey(hash common.Hash) dbKey {
	var key dbKey
	key[0] = byte(t)
	copy(key[1:], hash[:])
	return key
}

// LevelDB is the subset of operations of a LevelDB instance required by the
// node store. It is satisfied by *leveldb.DB and *leveldb.Transaction.
type LevelDB interface {
	Get(key []byte, ro *opt.ReadOptions) (value []byte, err error)
	Put(key, value []byte, wo *opt.WriteOptions) error
	Delete(key []byte, wo *opt.WriteOptions) error
	Write(batch *leveldb.Batch, wo *opt.WriteOptions) error
	NewIterator(slice *util.Range, ro *opt.ReadOptions) iterator.Iterator
}

// Store is a LevelDB backed nodestore.NodeStore implementation.
type Store struct {
	db    LevelDB
	table TableSpace
	close func() error
}

// OpenDB opens a LevelDB instance in the given directory, to be shared
// among multiple stores using different table spaces.
func OpenDB(path string, options *opt.Options) (*leveldb.DB, error) {
	db, err := leveldb.OpenFile(path, options)
	if err != nil {
		return nil, fmt.Errorf("failed to open LevelDB in %s; %w", path, err)
	}
	return db, nil
}

// Open opens a LevelDB instance owned exclusively by the resulting store.
// The database is closed when the store is closed.
func Open(path string, table TableSpace, options *opt.Options) (*Store, error) {
	db, err := OpenDB(path, options)
	if err != nil {
		return nil, err
	}
	return &Store{db: db, table: table, close: db.Close}, nil
}

// New creates a store on top of a shared database. Closing the store does
// not close the database.
func New(db LevelDB, table TableSpace) *Store {
	return &Store{db: db, table: table}
}

func (s *Store) Load(hash common.Hash) ([]byte, bool, error) {
	key := s.table.toDBKey(hash)
	data, err := s.db.Get(key[:], nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

func (s *Store) Save(hash common.Hash, data []byte) error {
	key := s.table.toDBKey(hash)
	return s.db.Put(key[:], data, nil)
}

// SaveBatch writes all entries within a single LevelDB batch.
func (s *Store) SaveBatch(entries []nodestore.Entry) error {
	batch := new(leveldb.Batch)
	for _, entry := range entries {
		key := s.table.toDBKey(entry.Hash)
		batch.Put(key[:], entry.Data)
	}
	return s.db.Write(batch, nil)
}

func (s *Store) Delete(hash common.Hash) error {
	key := s.table.toDBKey(hash)
	return s.db.Delete(key[:], nil)
}

// Count returns the number of nodes stored in this store's table space.
func (s *Store) Count() (int, error) {
	iter := s.db.NewIterator(util.BytesPrefix([]byte{byte(s.table)}), nil)
	defer iter.Release()
	count := 0
	for iter.Next() {
		count++
	}
	return count, iter.Error()
}

func (s *Store) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}
