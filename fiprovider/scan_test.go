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

	"github.com/hdcore/keyengine/factorsource"
	"github.com/hdcore/keyengine/fiprovider"
	"github.com/hdcore/keyengine/gateway"
	"github.com/hdcore/keyengine/keyspace"
	"github.com/hdcore/keyengine/profile"
)

// pubKeyAtIndex derives the same public key scanWindow would see at
// candidate index idx of PresetAccountVeci, so a test can seed a
// gateway.InMemory backend with exactly the entry the scan is expected
// to recover.
func pubKeyAtIndex(t *testing.T, root []byte, network keyspace.NetworkId, idx uint32) factorsource.PublicKey {
	t.Helper()
	component, err := keyspace.NewHDPathComponent(idx, keyspace.KeySpaceUnsecurified)
	require.NoError(t, err)
	iap := keyspace.PresetAccountVeci.IndexAgnosticPath(network)
	path, err := iap.WithIndex(component)
	require.NoError(t, err)
	pub, err := factorsource.Derive(root, path)
	require.NoError(t, err)
	return pub
}

func seedRecovered(g *gateway.InMemory, network keyspace.NetworkId, pub factorsource.PublicKey) {
	addr := profile.NewAddress(network, pub)
	g.Seed(gateway.OnChainEntityState{Address: addr, OwnerKeys: []factorsource.PublicKey{pub}})
}

// A cold window — nothing the Gateway has ever seen — scans every
// candidate as Unrecovered, not ProbablyFree: with no recovered index,
// scanWindow's trailing loop starts at i=0 and overwrites every initial
// classification.
func TestMARSColdWindowIsAllUnrecovered(t *testing.T) {
	_, bdfs, interactorFor, kindOf := newFixture(t)
	g := gateway.NewInMemory()

	outcomes, err := fiprovider.MARS(context.Background(), keyspace.NetworkMainnet, bdfs, 5, kindOf, interactorFor, g)
	require.NoError(t, err)
	require.Len(t, outcomes, 5)
	for i, o := range outcomes {
		assert.Equal(t, fiprovider.Unrecovered, o.Kind, "index %d", i)
	}
}

// A recovered entry at the base index leaves every later candidate in
// the window Unrecovered once the gap limit is exhausted without
// finding anything further.
func TestMARSRecoveredThenUnrecoveredPastGapLimit(t *testing.T) {
	_, bdfs, interactorFor, kindOf := newFixture(t)
	g := gateway.NewInMemory()
	seedRecovered(g, keyspace.NetworkMainnet, pubKeyAtIndex(t, mustRootBytes(t), keyspace.NetworkMainnet, 0))

	outcomes, err := fiprovider.MARS(context.Background(), keyspace.NetworkMainnet, bdfs, 5, kindOf, interactorFor, g)
	require.NoError(t, err)
	require.Len(t, outcomes, 5)

	assert.Equal(t, fiprovider.Recovered, outcomes[0].Kind)
	for i := 1; i < len(outcomes); i++ {
		assert.Equal(t, fiprovider.Unrecovered, outcomes[i].Kind, "index %d", i)
	}
}

// A later recovered index leaves the candidates before it ProbablyFree
// rather than Unrecovered — the scan hasn't walked far enough past them
// yet to rule out something still being found ahead.
func TestMARSProbablyFreeBeforeLaterRecovery(t *testing.T) {
	_, bdfs, interactorFor, kindOf := newFixture(t)
	g := gateway.NewInMemory()
	seedRecovered(g, keyspace.NetworkMainnet, pubKeyAtIndex(t, mustRootBytes(t), keyspace.NetworkMainnet, 3))

	outcomes, err := fiprovider.MARS(context.Background(), keyspace.NetworkMainnet, bdfs, 5, kindOf, interactorFor, g)
	require.NoError(t, err)
	require.Len(t, outcomes, 5)

	for i := 0; i < 3; i++ {
		assert.Equal(t, fiprovider.ProbablyFree, outcomes[i].Kind, "index %d", i)
	}
	assert.Equal(t, fiprovider.Recovered, outcomes[3].Kind)
	assert.Equal(t, fiprovider.Unrecovered, outcomes[4].Kind)
}

// OARS runs the same scan across every source in a batch; two sources
// with nothing recovered both come back all-Unrecovered independently.
func TestOARSScansEverySourceIndependently(t *testing.T) {
	_, bdfs, interactorFor, kindOf := newFixture(t)
	g := gateway.NewInMemory()

	out, err := fiprovider.OARS(context.Background(), keyspace.NetworkMainnet, []factorsource.Source{bdfs}, 3, kindOf, interactorFor, g)
	require.NoError(t, err)
	require.Len(t, out[bdfs.Id], 3)
	for _, o := range out[bdfs.Id] {
		assert.Equal(t, fiprovider.Unrecovered, o.Kind)
	}
}

func mustRootBytes(t *testing.T) []byte {
	t.Helper()
	root, err := hex.DecodeString(generatorPointHex)
	require.NoError(t, err)
	return root
}
