// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package keycache implements the Factor-Instances Cache: a keyed map
// from (factor source, index-agnostic path) to an ordered list of derived
// instances, eagerly filled and drained by the provider.
package keycache

import (
	"sync"

	lru "github.com/hashicorp/golang-lru"
	"github.com/inconshreveable/log15"

	"github.com/hdcore/keyengine/errs"
	"github.com/hdcore/keyengine/factorsource"
	"github.com/hdcore/keyengine/hdfi"
	"github.com/hdcore/keyengine/keyspace"
	"github.com/hdcore/keyengine/metrics"
)

var log = log15.New("pkg", "keycache")

var recentlyTouchedGauge = metrics.LazyLoad(func() metrics.GaugeVecMeter {
	return metrics.GaugeVec("keycache_recently_touched_paths", nil)
})

// recentlyTouchedCapacity bounds the secondary recency index below, so a
// long-running host process doesn't grow it unboundedly across many
// factor sources over its lifetime.
const recentlyTouchedCapacity = 1024

// Cache is the Factor-Instances Cache. The host owns its
// lifetime: created empty, mutated by the provider, persisted externally.
type Cache struct {
	mu   sync.RWMutex
	byFS map[factorsource.Id]map[keyspace.IndexAgnosticPath][]hdfi.HDFI

	caches struct {
		// recentlyTouched tracks the most recently inserted-into or
		// drained-from (factor source, path) pairs, bounded
		// independently of the unbounded primary map, grounded on
		// bft.BFTEngine's caches struct of named *lru.Cache fields.
		recentlyTouched *lru.Cache
	}
}

// New creates an empty cache.
func New() *Cache {
	c := &Cache{byFS: make(map[factorsource.Id]map[keyspace.IndexAgnosticPath][]hdfi.HDFI)}
	c.caches.recentlyTouched, _ = lru.New(recentlyTouchedCapacity)
	return c
}

type touchKey struct {
	fsid factorsource.Id
	iap  keyspace.IndexAgnosticPath
}

// touch records a (factor source, path) pair as recently active and
// publishes the recency window's current size as a gauge (see
// metrics.GaugeVec) — this is the one place RecentlyTouchedLen is
// actually read, rather than a write-only bookkeeping field.
func (c *Cache) touch(fsid factorsource.Id, iap keyspace.IndexAgnosticPath) {
	c.caches.recentlyTouched.Add(touchKey{fsid, iap}, struct{}{})
	recentlyTouchedGauge().SetWithLabel(float64(c.RecentlyTouchedLen()), nil)
}

// RecentlyTouchedLen reports how many distinct (factor source, path) pairs
// are in the bounded recency window, for metrics consumption.
func (c *Cache) RecentlyTouchedLen() int {
	return c.caches.recentlyTouched.Len()
}

// InsertForFactor groups instances by their index-agnostic path and
// appends them to the per-(fs, iap) list, failing with
// FactorSourceDiscrepancy if any instance belongs to a different factor
// source, or CacheAlreadyContainsFactorInstance on a public-key overlap
// . The returned bool reports whether a non-contiguous gap was
// introduced — never fatal, logged for telemetry only.
func (c *Cache) InsertForFactor(fsid factorsource.Id, instances []hdfi.HDFI) (gapDetected bool, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, inst := range instances {
		if !inst.FactorSourceId.Equal(fsid) {
			return false, errs.NewFatal(errs.FactorSourceDiscrepancy, "instance %s does not belong to factor source %s", inst, fsid)
		}
	}

	byIAP, ok := c.byFS[fsid]
	if !ok {
		byIAP = make(map[keyspace.IndexAgnosticPath][]hdfi.HDFI)
		c.byFS[fsid] = byIAP
	}

	grouped := make(map[keyspace.IndexAgnosticPath][]hdfi.HDFI)
	for _, inst := range instances {
		iap := inst.IndexAgnosticPath()
		grouped[iap] = append(grouped[iap], inst)
	}

	for iap, toAdd := range grouped {
		existing := byIAP[iap]
		for _, inst := range toAdd {
			for _, have := range existing {
				if have.PublicKey.Equal(inst.PublicKey) {
					return false, errs.NewSurface(errs.CacheAlreadyContainsFactorInstance, "path %s already present for factor source %s", inst.Path, fsid)
				}
			}
		}

		sortByIndex(toAdd)
		merged := append(existing, toAdd...)
		sortByIndex(merged)
		if hasGap(merged) {
			gapDetected = true
			log.Warn("non-contiguous index range in cache", "factorSource", fsid, "path", iap)
		}
		byIAP[iap] = merged
		c.touch(fsid, iap)
	}

	return gapDetected, nil
}

func sortByIndex(instances []hdfi.HDFI) {
	for i := 1; i < len(instances); i++ {
		for j := i; j > 0 && instances[j].Path.Index.Less(instances[j-1].Path.Index); j-- {
			instances[j], instances[j-1] = instances[j-1], instances[j]
		}
	}
}

func hasGap(instances []hdfi.HDFI) bool {
	for i := 1; i < len(instances); i++ {
		prev := instances[i-1].Path.Index
		next, err := prev.AddOne()
		if err != nil || !next.Equal(instances[i].Path.Index) {
			return true
		}
	}
	return false
}

// MaxIndexFor returns the last (highest-index) element cached for
// (fsid, iap), or ok=false if nothing is cached there.
func (c *Cache) MaxIndexFor(iap keyspace.IndexAgnosticPath, fsid factorsource.Id) (idx keyspace.HDPathComponent, ok bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	list := c.byFS[fsid][iap]
	if len(list) == 0 {
		return keyspace.HDPathComponent{}, false
	}
	return list[len(list)-1].Path.Index, true
}

// PeekAllInstancesOfFactorSource returns a defensive copy of the per-path
// map for fsid.
func (c *Cache) PeekAllInstancesOfFactorSource(fsid factorsource.Id) map[keyspace.IndexAgnosticPath][]hdfi.HDFI {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make(map[keyspace.IndexAgnosticPath][]hdfi.HDFI, len(c.byFS[fsid]))
	for iap, list := range c.byFS[fsid] {
		out[iap] = append([]hdfi.HDFI(nil), list...)
	}
	return out
}

// OutcomeKind tags the shape of a Remove result.
type OutcomeKind uint8

const (
	OutcomeEmpty OutcomeKind = iota
	OutcomePartial
	OutcomeFull
)

// QuantityOutcome is the result of draining up to `quantity` instances
// from one (fsid, iap) bucket.
type QuantityOutcome struct {
	Kind      OutcomeKind
	Instances []hdfi.HDFI
	// Remaining is the shortfall when Kind == OutcomePartial: how many
	// more instances the caller still needs to derive.
	Remaining int
}

// Remove drains up to quantity instances from the front of the
// (fsid, iap) bucket — this is the sole path that hands cache contents
// to consumers. On OutcomeFull with more cached than
// requested, the remainder is put back at the head.
func (c *Cache) Remove(fsid factorsource.Id, iap keyspace.IndexAgnosticPath, quantity int) QuantityOutcome {
	c.mu.Lock()
	defer c.mu.Unlock()

	byIAP := c.byFS[fsid]
	list := byIAP[iap]

	if len(list) == 0 {
		return QuantityOutcome{Kind: OutcomeEmpty, Remaining: quantity}
	}

	if len(list) < quantity {
		taken := append([]hdfi.HDFI(nil), list...)
		delete(byIAP, iap)
		c.touch(fsid, iap)
		return QuantityOutcome{Kind: OutcomePartial, Instances: taken, Remaining: quantity - len(taken)}
	}

	taken := append([]hdfi.HDFI(nil), list[:quantity]...)
	remainder := append([]hdfi.HDFI(nil), list[quantity:]...)
	if len(remainder) == 0 {
		delete(byIAP, iap)
	} else {
		byIAP[iap] = remainder
	}
	c.touch(fsid, iap)
	return QuantityOutcome{Kind: OutcomeFull, Instances: taken}
}

// Consume is the strict variant of Remove for hosts that treat a miss as
// an error rather than a shortfall to derive: it fails with
// KeysCacheUnknownKey when nothing has ever been cached for fsid, and
// with KeysCacheEmptyForKey when fsid is known but holds nothing under
// iap.
func (c *Cache) Consume(fsid factorsource.Id, iap keyspace.IndexAgnosticPath, quantity int) ([]hdfi.HDFI, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	byIAP, known := c.byFS[fsid]
	if !known {
		return nil, errs.NewSurface(errs.KeysCacheUnknownKey, "factor source %s has never been cached", fsid)
	}
	list := byIAP[iap]
	if len(list) < quantity || len(list) == 0 {
		return nil, errs.NewSurface(errs.KeysCacheEmptyForKey, "factor source %s holds %d of %d requested under %v", fsid, len(list), quantity, iap)
	}

	taken := append([]hdfi.HDFI(nil), list[:quantity]...)
	remainder := append([]hdfi.HDFI(nil), list[quantity:]...)
	if len(remainder) == 0 {
		delete(byIAP, iap)
	} else {
		byIAP[iap] = remainder
	}
	c.touch(fsid, iap)
	return taken, nil
}

// IsFull reports whether, for the given factor source, every derivation
// preset on network has exactly target instances cached.
func (c *Cache) IsFull(network keyspace.NetworkId, fsid factorsource.Id, target int) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	byIAP := c.byFS[fsid]
	for _, preset := range keyspace.AllDerivationPresets {
		iap := preset.IndexAgnosticPath(network)
		if len(byIAP[iap]) != target {
			return false
		}
	}
	return true
}
