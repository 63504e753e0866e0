// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package fiprovider

import (
	"context"

	"github.com/inconshreveable/log15"

	"github.com/hdcore/keyengine/errs"
	"github.com/hdcore/keyengine/factorsource"
	"github.com/hdcore/keyengine/hdfi"
	"github.com/hdcore/keyengine/keycache"
	"github.com/hdcore/keyengine/keyscollector"
	"github.com/hdcore/keyengine/keyspace"
	"github.com/hdcore/keyengine/metrics"
	"github.com/hdcore/keyengine/nextindex"
)

var log = log15.New("pkg", "fiprovider")

var instancesTotal = metrics.LazyLoad(func() metrics.CounterVecMeter {
	return metrics.CounterVec("fiprovider_instances_total", []string{"preset", "source"})
})

// Provider is the Factor-Instances Provider. It is stateless
// across calls beyond the Cache it was constructed with; Profile, if any,
// is supplied per call since different purposes track it differently
// (OARS/MARS never do, for_account_veci usually does).
type Provider struct {
	Cache                *keycache.Cache
	Collector            *keyscollector.Collector
	CacheFillingQuantity int
}

// New constructs a provider over a shared cache.
func New(cache *keycache.Cache, cacheFillingQuantity int) *Provider {
	return &Provider{
		Cache:                cache,
		Collector:            keyscollector.New(),
		CacheFillingQuantity: cacheFillingQuantity,
	}
}

// Provide is the provider's single entry point. kindOf and
// interactorFor are threaded through to the KeysCollector; profileAnalyzer
// may be nil for recovery-scan-style calls (OARS/MARS) where no
// Profile is tracked.
func (p *Provider) Provide(
	ctx context.Context,
	quantified QuantifiedDerivationPreset,
	factorSources []factorsource.Source,
	kindOf func(factorsource.Id) (factorsource.Kind, bool),
	interactorFor keyscollector.InteractorProvider,
	profileAnalyzer nextindex.ProfileAnalyzer,
) (OutcomePerFactor, error) {
	out := make(OutcomePerFactor, len(factorSources))
	ephemeral := nextindex.NewEphemeralOffsets()

	for _, source := range factorSources {
		result, err := p.provideForFactor(ctx, quantified, source, kindOf, interactorFor, profileAnalyzer, ephemeral)
		if err != nil {
			return nil, err
		}
		out[source.Id] = result
	}
	return out, nil
}

func (p *Provider) provideForFactor(
	ctx context.Context,
	quantified QuantifiedDerivationPreset,
	source factorsource.Source,
	kindOf func(factorsource.Id) (factorsource.Kind, bool),
	interactorFor keyscollector.InteractorProvider,
	profileAnalyzer nextindex.ProfileAnalyzer,
	ephemeral *nextindex.EphemeralOffsets,
) (FactorInstancesProviderOutcomeForFactor, error) {
	fsid := source.Id
	iap := quantified.Preset.IndexAgnosticPath(quantified.Network)

	beforeCount := len(p.Cache.PeekAllInstancesOfFactorSource(fsid)[iap])
	drained := p.Cache.Remove(fsid, iap, quantified.Quantity)

	var drainedMax *keyspace.HDPathComponent
	if len(drained.Instances) > 0 {
		idx := drained.Instances[len(drained.Instances)-1].Path.Index
		drainedMax = &idx
	}

	afterCount := beforeCount - len(drained.Instances)
	if afterCount < 0 {
		afterCount = 0
	}

	directNeeded := quantified.Quantity - len(drained.Instances)
	cacheFillNeeded := p.CacheFillingQuantity - afterCount
	if cacheFillNeeded < 0 {
		cacheFillNeeded = 0
	}
	totalForPreset := directNeeded + cacheFillNeeded

	assigner := nextindex.NewAssigner(profileAnalyzer, p.Cache, ephemeral)

	requested := make(map[factorsource.Id][]keyspace.DerivationPath)
	if totalForPreset > 0 {
		paths, err := assignPaths(assigner, quantified.Preset, quantified.Network, fsid, totalForPreset, drainedMax)
		if err != nil {
			return FactorInstancesProviderOutcomeForFactor{}, err
		}
		requested[fsid] = append(requested[fsid], paths...)
	}

	otherFillCounts := make(map[keyspace.DerivationPreset]int)
	for _, preset := range keyspace.AllDerivationPresets {
		if preset == quantified.Preset {
			continue
		}
		otherIAP := preset.IndexAgnosticPath(quantified.Network)
		have := len(p.Cache.PeekAllInstancesOfFactorSource(fsid)[otherIAP])
		need := p.CacheFillingQuantity - have
		if need <= 0 {
			continue
		}
		otherFillCounts[preset] = need
		paths, err := assignPaths(assigner, preset, quantified.Network, fsid, need, nil)
		if err != nil {
			return FactorInstancesProviderOutcomeForFactor{}, err
		}
		requested[fsid] = append(requested[fsid], paths...)
	}

	if len(requested[fsid]) == 0 {
		if len(drained.Instances) > 0 {
			instancesTotal().AddWithLabel(float64(len(drained.Instances)), map[string]string{"preset": quantified.Preset.String(), "source": "cache"})
		}
		return FactorInstancesProviderOutcomeForFactor{
			FactorSourceId: fsid,
			ToUseDirectly:  drained.Instances,
			WasCached:      0,
			FoundInCache:   len(drained.Instances),
			WasDerived:     0,
		}, nil
	}

	derived, err := p.Collector.Collect(ctx, kindOf, requested, interactorFor)
	if err != nil {
		p.rollback(fsid, drained)
		return FactorInstancesProviderOutcomeForFactor{}, err
	}

	ring := derived[fsid]
	for _, inst := range ring.Slice() {
		if inst.Path.Network != quantified.Network {
			p.rollback(fsid, drained)
			return FactorInstancesProviderOutcomeForFactor{}, errs.NewSurface(errs.NetworkDiscrepancy, "factor source %s: derived instance %s is on network %s, expected %s", fsid, inst, inst.Path.Network, quantified.Network)
		}
	}
	derivedForPreset, derivedForOthers := splitByPreset(ring, quantified.Preset)

	if len(derivedForPreset) < directNeeded {
		p.rollback(fsid, drained)
		return FactorInstancesProviderOutcomeForFactor{}, errs.NewSurface(errs.FactorInstancesDoesNotSatisfy, "factor source %s: derived %d instances but %d were needed for direct use", fsid, len(derivedForPreset), directNeeded)
	}

	useDirectlyFromDerivation := derivedForPreset[:directNeeded]
	toCacheForPreset := derivedForPreset[directNeeded:]

	toCache := append([]hdfi.HDFI(nil), toCacheForPreset...)
	toCache = append(toCache, derivedForOthers...)

	if len(toCache) > 0 {
		if _, err := p.Cache.InsertForFactor(fsid, toCache); err != nil {
			p.rollback(fsid, drained)
			return FactorInstancesProviderOutcomeForFactor{}, err
		}
	}

	toUseDirectly := append([]hdfi.HDFI(nil), drained.Instances...)
	toUseDirectly = append(toUseDirectly, useDirectlyFromDerivation...)

	presetLabel := quantified.Preset.String()
	if len(drained.Instances) > 0 {
		instancesTotal().AddWithLabel(float64(len(drained.Instances)), map[string]string{"preset": presetLabel, "source": "cache"})
	}
	if derivedCount := len(derivedForPreset) + len(derivedForOthers); derivedCount > 0 {
		instancesTotal().AddWithLabel(float64(derivedCount), map[string]string{"preset": presetLabel, "source": "derived"})
	}

	log.Debug("provided instances for factor source", "factorSource", fsid, "preset", quantified.Preset, "fromCache", len(drained.Instances), "derived", len(derivedForPreset))

	return FactorInstancesProviderOutcomeForFactor{
		FactorSourceId: fsid,
		ToUseDirectly:  toUseDirectly,
		WasCached:      len(toCache),
		FoundInCache:   len(drained.Instances),
		WasDerived:     len(derivedForPreset) + len(derivedForOthers),
	}, nil
}

// rollback re-inserts instances this call drained from the cache,
// approximating the "on error, the cache is left unchanged for F"
// guarantee.
func (p *Provider) rollback(fsid factorsource.Id, drained keycache.QuantityOutcome) {
	if len(drained.Instances) == 0 {
		return
	}
	if _, err := p.Cache.InsertForFactor(fsid, drained.Instances); err != nil {
		log.Warn("rollback after provide() failure could not restore cache state", "factorSource", fsid, "error", err)
	}
}

func assignPaths(assigner *nextindex.Assigner, preset keyspace.DerivationPreset, network keyspace.NetworkId, fsid factorsource.Id, count int, drainedMax *keyspace.HDPathComponent) ([]keyspace.DerivationPath, error) {
	iap := preset.IndexAgnosticPath(network)
	paths := make([]keyspace.DerivationPath, 0, count)
	for i := 0; i < count; i++ {
		idx, err := assigner.NextIndex(preset, network, fsid, drainedMax)
		if err != nil {
			return nil, err
		}
		path, err := iap.WithIndex(idx)
		if err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func splitByPreset(ring hdfi.Set, preset keyspace.DerivationPreset) (forPreset, forOthers []hdfi.HDFI) {
	for _, inst := range ring.Slice() {
		p, err := inst.IndexAgnosticPath().DerivationPreset()
		if err == nil && p == preset {
			forPreset = append(forPreset, inst)
		} else {
			forOthers = append(forOthers, inst)
		}
	}
	sortByIndex(forPreset)
	return forPreset, forOthers
}

func sortByIndex(instances []hdfi.HDFI) {
	for i := 1; i < len(instances); i++ {
		for j := i; j > 0 && instances[j].Path.Index.Less(instances[j-1].Path.Index); j-- {
			instances[j], instances[j-1] = instances[j-1], instances[j]
		}
	}
}
