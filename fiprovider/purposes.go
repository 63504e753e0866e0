// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package fiprovider

import (
	"context"

	"github.com/hdcore/keyengine/errs"
	"github.com/hdcore/keyengine/factorsource"
	"github.com/hdcore/keyengine/hdfi"
	"github.com/hdcore/keyengine/keyscollector"
	"github.com/hdcore/keyengine/keyspace"
	"github.com/hdcore/keyengine/nextindex"
	"github.com/hdcore/keyengine/profile"
	"github.com/hdcore/keyengine/rules"
)

// ForAccountVeci is sugar over Provide for the single most common call:
// one Account-VECI instance for one factor source.
func (p *Provider) ForAccountVeci(
	ctx context.Context,
	network keyspace.NetworkId,
	source factorsource.Source,
	kindOf func(factorsource.Id) (factorsource.Kind, bool),
	interactorFor keyscollector.InteractorProvider,
	profileAnalyzer nextindex.ProfileAnalyzer,
) (FactorInstancesProviderOutcomeForFactor, error) {
	out, err := p.Provide(ctx, QuantifiedDerivationPreset{
		Preset:   keyspace.PresetAccountVeci,
		Network:  network,
		Quantity: 1,
	}, []factorsource.Source{source}, kindOf, interactorFor, profileAnalyzer)
	if err != nil {
		return FactorInstancesProviderOutcomeForFactor{}, err
	}
	return out[source.Id], nil
}

// ForPersonaVeci mirrors ForAccountVeci for the Identity entity kind.
func (p *Provider) ForPersonaVeci(
	ctx context.Context,
	network keyspace.NetworkId,
	source factorsource.Source,
	kindOf func(factorsource.Id) (factorsource.Kind, bool),
	interactorFor keyscollector.InteractorProvider,
	profileAnalyzer nextindex.ProfileAnalyzer,
) (FactorInstancesProviderOutcomeForFactor, error) {
	out, err := p.Provide(ctx, QuantifiedDerivationPreset{
		Preset:   keyspace.PresetIdentityVeci,
		Network:  network,
		Quantity: 1,
	}, []factorsource.Source{source}, kindOf, interactorFor, profileAnalyzer)
	if err != nil {
		return FactorInstancesProviderOutcomeForFactor{}, err
	}
	return out[source.Id], nil
}

// ForAccountMfa requests enough Account-MFA instances to securify
// quantity accounts at once.
func (p *Provider) ForAccountMfa(
	ctx context.Context,
	network keyspace.NetworkId,
	quantity int,
	sources []factorsource.Source,
	kindOf func(factorsource.Id) (factorsource.Kind, bool),
	interactorFor keyscollector.InteractorProvider,
	profileAnalyzer nextindex.ProfileAnalyzer,
) (OutcomePerFactor, error) {
	return p.Provide(ctx, QuantifiedDerivationPreset{
		Preset:   keyspace.PresetAccountMfa,
		Network:  network,
		Quantity: quantity,
	}, sources, kindOf, interactorFor, profileAnalyzer)
}

// ForNewFactorSource fills the cache for a freshly added factor source
// without handing back anything to use directly. It walks every preset so
// the new source ends up with a full CACHE_FILLING_QUANTITY under each,
// matching the steady-state invariant every other factor source already
// has.
func (p *Provider) ForNewFactorSource(
	ctx context.Context,
	network keyspace.NetworkId,
	source factorsource.Source,
	kindOf func(factorsource.Id) (factorsource.Kind, bool),
	interactorFor keyscollector.InteractorProvider,
) error {
	for _, preset := range keyspace.AllDerivationPresets {
		if _, err := p.Provide(ctx, QuantifiedDerivationPreset{
			Preset:   preset,
			Network:  network,
			Quantity: 0,
		}, []factorsource.Source{source}, kindOf, interactorFor, nil); err != nil {
			return err
		}
	}
	return nil
}

// UnfulfillableReason tags why a factor source produced nothing for a
// request.
type UnfulfillableReason uint8

const (
	// Untenable: the factor source simply has no path under the
	// requested preset (e.g. a kind that never participates in MFA).
	Untenable UnfulfillableReason = iota
	// Irrelevant: the factor source is already excluded by a Profile
	// constraint (e.g. it is not listed among the entity's factor
	// sources at all).
	Irrelevant
)

func (r UnfulfillableReason) String() string {
	if r == Untenable {
		return "untenable"
	}
	return "irrelevant"
}

// UnfulfillableRequest is surfaced instead of silently dropping a factor
// source that cannot serve a request.
type UnfulfillableRequest struct {
	FactorSourceId factorsource.Id
	Reason         UnfulfillableReason
}

// SecurifyEntityRequest names which factor source id goes into which
// role/list of the access-control matrix being built for one entity
// being upgraded from Unsecured to Securified.
type SecurifyEntityRequest struct {
	Entity profile.Entity
	Recipe rules.Matrix[factorsource.Id]
}

// SecurifiedEntityResult is ForSecurifyEntities' per-entity outcome.
type SecurifiedEntityResult struct {
	Entity         profile.Entity
	Control        rules.Matrix[hdfi.HDFI]
	VeciRemembered *hdfi.HDFI
}

// presetFsid keys a batch-wide derivation request: one distinct instance
// is derived per entity that needs fsid under preset, never one instance
// shared across entities.
type presetFsid struct {
	preset keyspace.DerivationPreset
	fsid   factorsource.Id
}

// dedupeFactors collapses a recipe's AllFactors() occurrences down to one
// entry per distinct id, preserving first-seen order. A recipe may
// reference the same factor source from more than one role; that must
// consume a single shared instance, not one per occurrence.
func dedupeFactors(ids []factorsource.Id) []factorsource.Id {
	seen := make(map[factorsource.Id]bool, len(ids))
	out := make([]factorsource.Id, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// ForSecurifyEntities derives one fresh Account/Identity-MFA instance per
// distinct (entity, factor source id) pair referenced by the batch's
// recipes, then maps each entity's id-keyed recipe into an
// instance-keyed matrix, and remembers the entity's prior VECI the way
// SecurifiedEntityControl.RememberedVeci expects. Two entities that both reference the same factor source in
// one call each get their own distinct derived instance; within a single
// entity's own recipe, repeated occurrences of the same factor source
// (e.g. one id used in both Primary and Recovery) share one instance.
func (p *Provider) ForSecurifyEntities(
	ctx context.Context,
	network keyspace.NetworkId,
	requests []SecurifyEntityRequest,
	allSources map[factorsource.Id]factorsource.Source,
	kindOf func(factorsource.Id) (factorsource.Kind, bool),
	interactorFor keyscollector.InteractorProvider,
	profileAnalyzer nextindex.ProfileAnalyzer,
) ([]SecurifiedEntityResult, []UnfulfillableRequest, error) {
	preset := func(e profile.Entity) keyspace.DerivationPreset {
		if e.SecurityState.Kind == profile.SecurityStateUnsecured && e.SecurityState.Veci.Path.EntityKind == keyspace.EntityKindIdentity {
			return keyspace.PresetIdentityMfa
		}
		return keyspace.PresetAccountMfa
	}

	var unfulfillable []UnfulfillableRequest
	entityUsableFsids := make([][]factorsource.Id, len(requests))
	neededCount := make(map[presetFsid]int)
	var order []presetFsid

	for i, req := range requests {
		presetForEntity := preset(req.Entity)
		var usable []factorsource.Id
		for _, fsid := range dedupeFactors(req.Recipe.AllFactors()) {
			if _, ok := allSources[fsid]; !ok {
				unfulfillable = append(unfulfillable, UnfulfillableRequest{FactorSourceId: fsid, Reason: Irrelevant})
				continue
			}
			key := presetFsid{preset: presetForEntity, fsid: fsid}
			if neededCount[key] == 0 {
				order = append(order, key)
			}
			neededCount[key]++
			usable = append(usable, fsid)
		}
		entityUsableFsids[i] = usable
	}

	queues := make(map[presetFsid][]hdfi.HDFI, len(order))
	for _, key := range order {
		out, err := p.Provide(ctx, QuantifiedDerivationPreset{
			Preset:   key.preset,
			Network:  network,
			Quantity: neededCount[key],
		}, []factorsource.Source{allSources[key.fsid]}, kindOf, interactorFor, profileAnalyzer)
		if err != nil {
			return nil, nil, err
		}
		result := out[key.fsid]
		if len(result.ToUseDirectly) == 0 {
			unfulfillable = append(unfulfillable, UnfulfillableRequest{FactorSourceId: key.fsid, Reason: Untenable})
			continue
		}
		queues[key] = result.ToUseDirectly
	}

	results := make([]SecurifiedEntityResult, 0, len(requests))
	for i, req := range requests {
		presetForEntity := preset(req.Entity)
		perEntityInstance := make(map[factorsource.Id]hdfi.HDFI, len(entityUsableFsids[i]))
		for _, fsid := range entityUsableFsids[i] {
			key := presetFsid{preset: presetForEntity, fsid: fsid}
			q := queues[key]
			if len(q) == 0 {
				continue
			}
			perEntityInstance[fsid] = q[0]
			queues[key] = q[1:]
		}

		control, err := rules.MapMatrix(req.Recipe, func(fsid factorsource.Id) (hdfi.HDFI, error) {
			inst, ok := perEntityInstance[fsid]
			if !ok {
				return hdfi.HDFI{}, errs.NewSurface(errs.MissingFactorMappingIntoRole, "no instance derived for factor source %s", fsid)
			}
			return inst, nil
		})
		if err != nil {
			return nil, unfulfillable, err
		}

		result := SecurifiedEntityResult{Entity: req.Entity, Control: control}
		if req.Entity.SecurityState.Kind == profile.SecurityStateUnsecured {
			veci := req.Entity.SecurityState.Veci
			result.VeciRemembered = &veci
		}
		results = append(results, result)
	}

	return results, unfulfillable, nil
}
