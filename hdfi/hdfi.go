// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package hdfi defines the HierarchicalDeterministicFactorInstance, the
// unit of derived key material the rest of the engine passes around.
package hdfi

import (
	"fmt"

	"github.com/hdcore/keyengine/factorsource"
	"github.com/hdcore/keyengine/keyspace"
)

// HDFI uniquely identifies one piece of derived key material.
type HDFI struct {
	FactorSourceId factorsource.Id
	Path           keyspace.DerivationPath
	PublicKey      factorsource.PublicKey
}

// New constructs an HDFI from its parts; it performs no validation.
func New(fsid factorsource.Id, path keyspace.DerivationPath, pub factorsource.PublicKey) HDFI {
	return HDFI{FactorSourceId: fsid, Path: path, PublicKey: pub}
}

func (i HDFI) String() string {
	return fmt.Sprintf("%s@%s=%s", i.FactorSourceId, i.Path, i.PublicKey)
}

// Equal compares instances by identity (factor source + path + public key).
func (i HDFI) Equal(other HDFI) bool {
	return i.FactorSourceId.Equal(other.FactorSourceId) &&
		i.Path == other.Path &&
		i.PublicKey.Equal(other.PublicKey)
}

// IndexAgnosticPath is the cache key projection of this instance's path.
func (i HDFI) IndexAgnosticPath() keyspace.IndexAgnosticPath {
	return i.Path.IndexAgnosticPath()
}

// Set is an unordered collection of instances keyed by public key;
// every downstream consumer treats a keyring this way rather than
// relying on derivation-response order.
type Set map[factorsource.PublicKey]HDFI

// NewSet builds a Set from a slice, silently deduplicating by public key.
func NewSet(instances ...HDFI) Set {
	s := make(Set, len(instances))
	for _, i := range instances {
		s[i.PublicKey] = i
	}
	return s
}

// Add inserts an instance into the set.
func (s Set) Add(i HDFI) { s[i.PublicKey] = i }

// Slice returns the set's elements in no particular order.
func (s Set) Slice() []HDFI {
	out := make([]HDFI, 0, len(s))
	for _, i := range s {
		out = append(out, i)
	}
	return out
}

// Contains reports whether an instance with this public key is present.
func (s Set) Contains(pub factorsource.PublicKey) bool {
	_, ok := s[pub]
	return ok
}

// Len reports the number of instances in the set.
func (s Set) Len() int { return len(s) }
