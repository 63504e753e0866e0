// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package store gives a host an optional on-disk persistence layer for
// Profile and Cache snapshots: a named-store idiom backed directly by
// goleveldb, with no trie-aware multi-store engine since this package
// has no on-chain state or tries to manage.
package store

import (
	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
)

// Store is a single named key-value namespace over a shared on-disk
// database.
type Store struct {
	db     *leveldb.DB
	prefix []byte
}

// DB owns the on-disk database every named Store is carved out of.
type DB struct {
	db *leveldb.DB
}

// Open opens (or creates) a goleveldb database at path.
func Open(path string) (*DB, error) {
	db, err := leveldb.OpenFile(path, &opt.Options{})
	if err != nil {
		return nil, errors.Wrapf(err, "open store at %s", path)
	}
	return &DB{db: db}, nil
}

// Close releases the underlying database handle.
func (d *DB) Close() error {
	return d.db.Close()
}

// NewStore carves out a namespaced Store over the shared database.
func (d *DB) NewStore(name string) *Store {
	return &Store{db: d.db, prefix: append([]byte(name), ':')}
}

func (s *Store) key(k []byte) []byte {
	return append(append([]byte(nil), s.prefix...), k...)
}

// Get reads a value, returning IsNotFound(err) == true when absent.
func (s *Store) Get(k []byte) ([]byte, error) {
	return s.db.Get(s.key(k), nil)
}

// Put writes a value.
func (s *Store) Put(k, v []byte) error {
	return s.db.Put(s.key(k), v, nil)
}

// Delete removes a value.
func (s *Store) Delete(k []byte) error {
	return s.db.Delete(s.key(k), nil)
}

// IsNotFound reports whether err denotes a missing key.
func (s *Store) IsNotFound(err error) bool {
	return err == leveldb.ErrNotFound
}
