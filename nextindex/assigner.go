// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package nextindex picks the next free derivation index for a
// (factor source, preset) pair by combining profile state, cache state,
// and an in-call ephemeral offset.
package nextindex

import (
	"sync"

	"github.com/hdcore/keyengine/factorsource"
	"github.com/hdcore/keyengine/keycache"
	"github.com/hdcore/keyengine/keyspace"
)

// ProfileAnalyzer scans Profile entities of the relevant kind/space for
// fsid and returns the next free candidate index (max seen + 1), or
// ok=false if none exist yet.
type ProfileAnalyzer func(preset keyspace.DerivationPreset, network keyspace.NetworkId, fsid factorsource.Id) (idx keyspace.HDPathComponent, ok bool)

// EphemeralOffsets is a per-(factor source, path) monotonic counter,
// reserved with post-increment; Reserve returns the pre-increment value
// so that N consecutive reservations for the same key yield N distinct
// offsets. It is scoped to the lifetime of
// one provider call.
type EphemeralOffsets struct {
	mu     sync.Mutex
	counts map[ephemeralKey]uint32
}

type ephemeralKey struct {
	fsid factorsource.Id
	iap  keyspace.IndexAgnosticPath
}

// NewEphemeralOffsets creates an empty offset table, to be used for the
// duration of exactly one provider call.
func NewEphemeralOffsets() *EphemeralOffsets {
	return &EphemeralOffsets{counts: make(map[ephemeralKey]uint32)}
}

// Reserve returns the next unused offset for (fsid, iap) and advances the
// counter, so that calling Reserve N times in a row for the same key
// yields 0, 1, ..., N-1.
func (e *EphemeralOffsets) Reserve(fsid factorsource.Id, iap keyspace.IndexAgnosticPath) uint32 {
	e.mu.Lock()
	defer e.mu.Unlock()

	key := ephemeralKey{fsid, iap}
	n := e.counts[key]
	e.counts[key] = n + 1
	return n
}

// Assigner combines the three layers into a single next-index pick.
type Assigner struct {
	Profile   ProfileAnalyzer
	Cache     *keycache.Cache
	Ephemeral *EphemeralOffsets
}

// NewAssigner constructs an assigner. profile may be nil when no Profile
// is being tracked (recovery-scan style calls, OARS/MARS).
func NewAssigner(profile ProfileAnalyzer, cache *keycache.Cache, ephemeral *EphemeralOffsets) *Assigner {
	return &Assigner{Profile: profile, Cache: cache, Ephemeral: ephemeral}
}

// NextIndex picks the next free index for (preset, network, fsid).
// drainedCacheMax, when non-nil, is the highest index already drained
// from the cache earlier in the same provider call; it is folded into
// the cache candidate so consumption in flight is not double-derived.
func (a *Assigner) NextIndex(preset keyspace.DerivationPreset, network keyspace.NetworkId, fsid factorsource.Id, drainedCacheMax *keyspace.HDPathComponent) (keyspace.HDPathComponent, error) {
	iap := preset.IndexAgnosticPath(network)
	space := preset.KeySpace()

	chosen := keyspace.BaseIndex(space)

	if a.Profile != nil {
		if idx, ok := a.Profile(preset, network, fsid); ok && chosen.Less(idx) {
			chosen = idx
		}
	}

	cacheCandidate, ok := a.cacheCandidate(iap, fsid, drainedCacheMax)
	if ok && chosen.Less(cacheCandidate) {
		chosen = cacheCandidate
	}

	offset := a.Ephemeral.Reserve(fsid, iap)
	return chosen.AddN(offset)
}

// cacheCandidate is max(still-cached max, drained-in-flight max) + 1.
// A partial drain leaves higher indices in the cache, so the drained max
// alone would hand out an index the cache still holds.
func (a *Assigner) cacheCandidate(iap keyspace.IndexAgnosticPath, fsid factorsource.Id, drainedCacheMax *keyspace.HDPathComponent) (keyspace.HDPathComponent, bool) {
	var best keyspace.HDPathComponent
	found := false

	if drainedCacheMax != nil {
		if next, err := drainedCacheMax.AddOne(); err == nil {
			best, found = next, true
		}
	}
	if a.Cache != nil {
		if maxIdx, ok := a.Cache.MaxIndexFor(iap, fsid); ok {
			if next, err := maxIdx.AddOne(); err == nil && (!found || best.Less(next)) {
				best, found = next, true
			}
		}
	}
	return best, found
}
