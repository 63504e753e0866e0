// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package testing holds in-memory key-derivation interactor fakes used
// by the engine's own test suite: a host stand-in that derives real
// child public keys from a known root without any HSM or mnemonic
// present.
package testing

import (
	"context"

	"github.com/hdcore/keyengine/factorsource"
	"github.com/hdcore/keyengine/hdfi"
	"github.com/hdcore/keyengine/keyspace"
)

// RootKeys resolves a factor source id to the root public key its fake
// derivation is computed from.
type RootKeys map[factorsource.Id][]byte

// deriveAll turns (fsid, paths) into concrete HDFI instances via
// factorsource.Derive, skipping ids this fixture has no root key for.
func (r RootKeys) deriveAll(fsid factorsource.Id, paths []keyspace.DerivationPath) ([]hdfi.HDFI, error) {
	root, ok := r[fsid]
	if !ok {
		return nil, nil
	}
	out := make([]hdfi.HDFI, 0, len(paths))
	for _, path := range paths {
		pub, err := factorsource.Derive(root, path)
		if err != nil {
			return nil, err
		}
		out = append(out, hdfi.New(fsid, path, pub))
	}
	return out, nil
}

// PolyInteractor derives for every requested factor source id in a
// single call, the shape used by non-interactive sources like Device.
type PolyInteractor struct {
	Roots RootKeys
}

func (p PolyInteractor) DerivePoly(ctx context.Context, requests map[factorsource.Id][]keyspace.DerivationPath) (map[factorsource.Id][]hdfi.HDFI, error) {
	out := make(map[factorsource.Id][]hdfi.HDFI, len(requests))
	for fsid, paths := range requests {
		instances, err := p.Roots.deriveAll(fsid, paths)
		if err != nil {
			return nil, err
		}
		out[fsid] = instances
	}
	return out, nil
}

// MonoInteractor derives for exactly one factor source id per call, the
// shape used by interactive sources like Ledger that need a fresh user
// confirmation each time. Skip, when set,
// names ids the fixture wants to simulate the user declining.
type MonoInteractor struct {
	Roots RootKeys
	Skip  map[factorsource.Id]bool
}

func (m MonoInteractor) DeriveMono(ctx context.Context, fsid factorsource.Id, paths []keyspace.DerivationPath) ([]hdfi.HDFI, error) {
	if m.Skip[fsid] {
		return nil, nil
	}
	return m.Roots.deriveAll(fsid, paths)
}
