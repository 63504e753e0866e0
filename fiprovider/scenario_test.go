// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package fiprovider_test

import (
	"context"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hdcore/keyengine/config"
	"github.com/hdcore/keyengine/factorsource"
	"github.com/hdcore/keyengine/fiprovider"
	"github.com/hdcore/keyengine/keycache"
	"github.com/hdcore/keyengine/keyscollector"
	kctesting "github.com/hdcore/keyengine/keyscollector/testing"
	"github.com/hdcore/keyengine/keyspace"
	"github.com/hdcore/keyengine/profile"
	"github.com/hdcore/keyengine/rules"
)

// secp256k1 generator point G, compressed — a root key factorsource.Derive
// can actually parse, unlike arbitrary bytes.
const generatorPointHex = "0279be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798"

// Shared fixture: one Provider over an empty cache, one Device factor
// source, fake poly derivation computing real child keys from a known
// secp256k1 root public key.
func newFixture(t *testing.T) (*fiprovider.Provider, factorsource.Source, keyscollector.InteractorProvider, func(factorsource.Id) (factorsource.Kind, bool)) {
	t.Helper()

	root, err := hex.DecodeString(generatorPointHex)
	require.NoError(t, err)
	bdfs := factorsource.Source{
		Id:            factorsource.NewIdFromPublicKeyBytes(factorsource.KindDevice, root),
		Kind:          factorsource.KindDevice,
		RootPublicKey: root,
	}

	poly := kctesting.PolyInteractor{Roots: kctesting.RootKeys{bdfs.Id: root}}
	interactorFor := func(kind factorsource.Kind) (keyscollector.Interactor, bool) {
		if kind == factorsource.KindDevice {
			return keyscollector.Interactor{Poly: poly}, true
		}
		return keyscollector.Interactor{}, false
	}
	kindOf := func(fsid factorsource.Id) (factorsource.Kind, bool) {
		if fsid.Equal(bdfs.Id) {
			return factorsource.KindDevice, true
		}
		return 0, false
	}

	cache := keycache.New()
	provider := fiprovider.New(cache, config.CacheFillingQuantityDefault)
	return provider, bdfs, interactorFor, kindOf
}

// Cold start for a single account VECI: an empty cache forces one big
// derivation that both serves the request and fills every preset.
func TestColdStartAccountVeciFillsCacheForAllPresets(t *testing.T) {
	provider, bdfs, interactorFor, kindOf := newFixture(t)

	out, err := provider.ForAccountVeci(context.Background(), keyspace.NetworkMainnet, bdfs, kindOf, interactorFor, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, len(out.ToUseDirectly))
	assert.Equal(t, 0, out.FoundInCache, "cold start: nothing was already in the cache to pull from")
	assert.Equal(t, 120, out.WasCached, "everything derived beyond the one requested instance is written to the cache")
	assert.Equal(t, 121, out.WasDerived)
	assert.Equal(t, uint32(0), out.ToUseDirectly[0].Path.Index.Value())

	for _, preset := range keyspace.AllDerivationPresets {
		iap := preset.IndexAgnosticPath(keyspace.NetworkMainnet)
		assert.Equal(t, 30, len(provider.Cache.PeekAllInstancesOfFactorSource(bdfs.Id)[iap]), "preset %s", preset)
	}
}

// Next-account reuse from cache. The provider tops the cache back up to
// its target depth on every call rather than only once the cache runs
// dry, so one instance is derived here — the immediate steady-state
// top-up — while the requested instance itself comes from the cache.
func TestNextAccountVeciReusesCache(t *testing.T) {
	provider, bdfs, interactorFor, kindOf := newFixture(t)

	_, err := provider.ForAccountVeci(context.Background(), keyspace.NetworkMainnet, bdfs, kindOf, interactorFor, nil)
	require.NoError(t, err)

	out, err := provider.ForAccountVeci(context.Background(), keyspace.NetworkMainnet, bdfs, kindOf, interactorFor, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, out.FoundInCache)
	require.Len(t, out.ToUseDirectly, 1)
	assert.Equal(t, uint32(1), out.ToUseDirectly[0].Path.Index.Value())

	iap := keyspace.PresetAccountVeci.IndexAgnosticPath(keyspace.NetworkMainnet)
	assert.Equal(t, config.CacheFillingQuantityDefault, len(provider.Cache.PeekAllInstancesOfFactorSource(bdfs.Id)[iap]))
}

// Drain-and-refill, repeated thirty times past the cold start.
// Per-call indices advance by one every time, the cache never dips
// below target for the requested preset, and the other three presets
// are left untouched throughout.
func TestRepeatedVeciCallsDrainAndRefillCache(t *testing.T) {
	provider, bdfs, interactorFor, kindOf := newFixture(t)
	ctx := context.Background()

	_, err := provider.ForAccountVeci(ctx, keyspace.NetworkMainnet, bdfs, kindOf, interactorFor, nil)
	require.NoError(t, err)

	var last fiprovider.FactorInstancesProviderOutcomeForFactor
	for i := 0; i < 30; i++ {
		last, err = provider.ForAccountVeci(ctx, keyspace.NetworkMainnet, bdfs, kindOf, interactorFor, nil)
		require.NoError(t, err)
	}

	require.Len(t, last.ToUseDirectly, 1)
	assert.Equal(t, uint32(30), last.ToUseDirectly[0].Path.Index.Value())

	for _, preset := range keyspace.AllDerivationPresets {
		iap := preset.IndexAgnosticPath(keyspace.NetworkMainnet)
		assert.Equal(t, config.CacheFillingQuantityDefault, len(provider.Cache.PeekAllInstancesOfFactorSource(bdfs.Id)[iap]), "preset %s", preset)
	}
}

// ForSecurifyEntities, given two entities whose recipes both reference
// the same factor source in Primary, must hand each entity its own
// freshly derived instance rather than the same one twice: no instance
// may be shared across the roles of two different built matrices.
func TestForSecurifyEntitiesGivesDistinctInstancesPerEntity(t *testing.T) {
	provider, bdfs, interactorFor, kindOf := newFixture(t)
	ctx := context.Background()

	vOne, err := provider.ForAccountVeci(ctx, keyspace.NetworkMainnet, bdfs, kindOf, interactorFor, nil)
	require.NoError(t, err)
	vTwo, err := provider.ForAccountVeci(ctx, keyspace.NetworkMainnet, bdfs, kindOf, interactorFor, nil)
	require.NoError(t, err)

	entityOne, err := profile.NewUnsecuredEntity("one", keyspace.NetworkMainnet, vOne.ToUseDirectly[0])
	require.NoError(t, err)
	entityTwo, err := profile.NewUnsecuredEntity("two", keyspace.NetworkMainnet, vTwo.ToUseDirectly[0])
	require.NoError(t, err)

	recipe := rules.Matrix[factorsource.Id]{
		Primary: rules.Role[factorsource.Id]{
			Kind:             rules.RoleKindPrimary,
			ThresholdFactors: []factorsource.Id{bdfs.Id},
			Threshold:        1,
		},
	}
	allSources := map[factorsource.Id]factorsource.Source{bdfs.Id: bdfs}

	results, unfulfillable, err := provider.ForSecurifyEntities(
		ctx, keyspace.NetworkMainnet,
		[]fiprovider.SecurifyEntityRequest{
			{Entity: entityOne, Recipe: recipe},
			{Entity: entityTwo, Recipe: recipe},
		},
		allSources, kindOf, interactorFor, nil,
	)
	require.NoError(t, err)
	assert.Empty(t, unfulfillable)
	require.Len(t, results, 2)
	require.Len(t, results[0].Control.Primary.ThresholdFactors, 1)
	require.Len(t, results[1].Control.Primary.ThresholdFactors, 1)

	instOne := results[0].Control.Primary.ThresholdFactors[0]
	instTwo := results[1].Control.Primary.ThresholdFactors[0]
	assert.False(t, instOne.Equal(instTwo), "two entities securified in one call must not share the same derived factor instance")
	assert.NotEqual(t, instOne.Path.Index.Value(), instTwo.Path.Index.Value())
}

// Within one entity's own recipe, the same factor source referenced from
// two different roles shares a single derived instance: the same
// instance may legitimately appear in more than one role of one matrix.
func TestForSecurifyEntitiesSharesInstanceAcrossRolesOfSameEntity(t *testing.T) {
	provider, bdfs, interactorFor, kindOf := newFixture(t)
	ctx := context.Background()

	veci, err := provider.ForAccountVeci(ctx, keyspace.NetworkMainnet, bdfs, kindOf, interactorFor, nil)
	require.NoError(t, err)

	entity, err := profile.NewUnsecuredEntity("solo", keyspace.NetworkMainnet, veci.ToUseDirectly[0])
	require.NoError(t, err)

	recipe := rules.Matrix[factorsource.Id]{
		Primary: rules.Role[factorsource.Id]{
			Kind:             rules.RoleKindPrimary,
			ThresholdFactors: []factorsource.Id{bdfs.Id},
			Threshold:        1,
		},
		Recovery: rules.Role[factorsource.Id]{
			Kind:            rules.RoleKindRecovery,
			OverrideFactors: []factorsource.Id{bdfs.Id},
		},
	}
	allSources := map[factorsource.Id]factorsource.Source{bdfs.Id: bdfs}

	results, unfulfillable, err := provider.ForSecurifyEntities(
		ctx, keyspace.NetworkMainnet,
		[]fiprovider.SecurifyEntityRequest{{Entity: entity, Recipe: recipe}},
		allSources, kindOf, interactorFor, nil,
	)
	require.NoError(t, err)
	assert.Empty(t, unfulfillable)
	require.Len(t, results, 1)

	primaryInst := results[0].Control.Primary.ThresholdFactors[0]
	recoveryInst := results[0].Control.Recovery.OverrideFactors[0]
	assert.True(t, primaryInst.Equal(recoveryInst), "one entity's own recipe must reuse a single instance across its roles")
}
