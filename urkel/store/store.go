// Copyright (c) 2025 The dmcd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package store provides the durable backing for the urkel trie: nodes and
// leaf values are both goleveldb records, keyed by content hash, the same
// choice the rest of this codebase's indexers make for on-disk key/value
// state. See DESIGN.md's urkel entry for why a plain mmap node file (as
// the upstream project this spec is drawn from uses) was not pursued.
package store

import (
	"errors"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
)

var (
	nodePrefix  = []byte{'n'}
	valuePrefix = []byte{'v'}
	metaPrefix  = []byte{'m'}

	rootMetaKey = append(append([]byte{}, metaPrefix...), []byte("root")...)
)

// ErrNotFound is returned when a requested node or value hash has no
// record in the store.
var ErrNotFound = errors.New("store: not found")

// Store is a goleveldb-backed key/value store for urkel trie nodes and the
// raw values their leaves commit to.
type Store struct {
	db *leveldb.DB
}

// Open opens (creating if necessary) a Store at path.
func Open(path string) (*Store, error) {
	db, err := leveldb.OpenFile(path, &opt.Options{})
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

func prefixed(prefix, key []byte) []byte {
	buf := make([]byte, len(prefix)+len(key))
	copy(buf, prefix)
	copy(buf[len(prefix):], key)
	return buf
}

// GetNode returns the raw encoded node stored under hash.
func (s *Store) GetNode(hash []byte) ([]byte, error) {
	v, err := s.db.Get(prefixed(nodePrefix, hash), nil)
	if err == leveldb.ErrNotFound {
		return nil, ErrNotFound
	}
	return v, err
}

// PutNode persists the raw encoded node under hash.
func (s *Store) PutNode(hash, encoded []byte) error {
	return s.db.Put(prefixed(nodePrefix, hash), encoded, nil)
}

// GetValue returns the raw leaf value committed to by valueHash.
func (s *Store) GetValue(valueHash []byte) ([]byte, error) {
	v, err := s.db.Get(prefixed(valuePrefix, valueHash), nil)
	if err == leveldb.ErrNotFound {
		return nil, ErrNotFound
	}
	return v, err
}

// PutValue persists a leaf's raw value under its content hash.
func (s *Store) PutValue(valueHash, value []byte) error {
	return s.db.Put(prefixed(valuePrefix, valueHash), value, nil)
}

// Batch accumulates node and value writes for an atomic commit, mirroring
// the single-writer commit-once-per-interval flush pattern the tree
// package uses.
type Batch struct {
	b *leveldb.Batch
}

// NewBatch returns an empty Batch.
func (s *Store) NewBatch() *Batch {
	return &Batch{b: new(leveldb.Batch)}
}

// PutNode stages a node write in the batch.
func (batch *Batch) PutNode(hash, encoded []byte) {
	batch.b.Put(prefixed(nodePrefix, hash), encoded)
}

// PutValue stages a leaf-value write in the batch.
func (batch *Batch) PutValue(valueHash, value []byte) {
	batch.b.Put(prefixed(valuePrefix, valueHash), value)
}

// SetRoot stages the committed root hash, the single piece of metadata the
// store tracks outside the content-addressed node/value space.
func (batch *Batch) SetRoot(root []byte) {
	batch.b.Put(rootMetaKey, root)
}

// Commit flushes a batch atomically.
func (s *Store) Commit(batch *Batch) error {
	return s.db.Write(batch.b, nil)
}

// Root returns the last committed root hash, or ErrNotFound before the
// first commit.
func (s *Store) Root() ([]byte, error) {
	v, err := s.db.Get(rootMetaKey, nil)
	if err == leveldb.ErrNotFound {
		return nil, ErrNotFound
	}
	return v, err
}
