// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package profile_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hdcore/keyengine/errs"
	"github.com/hdcore/keyengine/factorsource"
	"github.com/hdcore/keyengine/hdfi"
	"github.com/hdcore/keyengine/keyspace"
	"github.com/hdcore/keyengine/profile"
	"github.com/hdcore/keyengine/rules"
)

func veciAt(t *testing.T, fsid factorsource.Id, value uint32, seed byte) hdfi.HDFI {
	t.Helper()
	idx, err := keyspace.NewHDPathComponent(value, keyspace.KeySpaceUnsecurified)
	require.NoError(t, err)
	path, err := keyspace.NewDerivationPath(keyspace.NetworkMainnet, keyspace.EntityKindAccount, keyspace.KeyKindTransactionSigning, idx)
	require.NoError(t, err)
	var pub factorsource.PublicKey
	pub[0] = seed
	return hdfi.New(fsid, path, pub)
}

func TestVeciAddressBinding(t *testing.T) {
	fsid := factorsource.NewIdFromPublicKeyBytes(factorsource.KindDevice, []byte("root"))
	veci := veciAt(t, fsid, 0, 1)

	e, err := profile.NewUnsecuredEntity("main", keyspace.NetworkMainnet, veci)
	require.NoError(t, err)
	assert.Equal(t, profile.HashPublicKey(veci.PublicKey), e.Address.PublicKeyHash)
}

func TestAddEntityRejectsWrongNetwork(t *testing.T) {
	p := profile.New(keyspace.NetworkMainnet)
	fsid := factorsource.NewIdFromPublicKeyBytes(factorsource.KindDevice, []byte("root"))
	veci := veciAt(t, fsid, 0, 1)
	e, err := profile.NewUnsecuredEntity("main", keyspace.NetworkStokenet, veci)
	require.NoError(t, err)

	err = p.AddEntity(profile.EntityKindAccount, e)
	require.Error(t, err)
}

func TestNextIndexForScansExistingEntities(t *testing.T) {
	p := profile.New(keyspace.NetworkMainnet)
	fsid := factorsource.NewIdFromPublicKeyBytes(factorsource.KindDevice, []byte("root"))
	veci := veciAt(t, fsid, 3, 1)
	e, err := profile.NewUnsecuredEntity("main", keyspace.NetworkMainnet, veci)
	require.NoError(t, err)
	require.NoError(t, p.AddEntity(profile.EntityKindAccount, e))

	idx, ok := p.NextIndexFor(keyspace.PresetAccountVeci, keyspace.NetworkMainnet, fsid)
	require.True(t, ok)
	assert.Equal(t, uint32(4), idx.Value())
}

func TestNextIndexForUnknownFactorSource(t *testing.T) {
	p := profile.New(keyspace.NetworkMainnet)
	fsid := factorsource.NewIdFromPublicKeyBytes(factorsource.KindDevice, []byte("root"))

	_, ok := p.NextIndexFor(keyspace.PresetAccountVeci, keyspace.NetworkMainnet, fsid)
	assert.False(t, ok)
}

func TestSecurifyRequiresSecurifiedKeySpace(t *testing.T) {
	fsid := factorsource.NewIdFromPublicKeyBytes(factorsource.KindDevice, []byte("root"))
	veci := veciAt(t, fsid, 0, 1)
	e, err := profile.NewUnsecuredEntity("main", keyspace.NetworkMainnet, veci)
	require.NoError(t, err)

	unsecurifiedControl := profile.SecurifiedEntityControl{
		Matrix: rules.Matrix[hdfi.HDFI]{
			Primary: rules.Role[hdfi.HDFI]{
				Kind:             rules.RoleKindPrimary,
				ThresholdFactors: []hdfi.HDFI{veci},
				Threshold:        1,
			},
		},
	}
	_, err = e.Securify(unsecurifiedControl)
	require.Error(t, err)
	assert.True(t, errs.IsKind(err, errs.IndexUnsecurifiedExpectedSecurified))

	idx, err := keyspace.NewHDPathComponent(0, keyspace.KeySpaceSecurified)
	require.NoError(t, err)
	path, err := keyspace.NewDerivationPath(keyspace.NetworkMainnet, keyspace.EntityKindAccount, keyspace.KeyKindTransactionSigning, idx)
	require.NoError(t, err)
	var pub factorsource.PublicKey
	pub[0] = 7
	mfa := hdfi.New(fsid, path, pub)

	securifiedControl := profile.SecurifiedEntityControl{
		Matrix: rules.Matrix[hdfi.HDFI]{
			Primary: rules.Role[hdfi.HDFI]{
				Kind:             rules.RoleKindPrimary,
				ThresholdFactors: []hdfi.HDFI{mfa},
				Threshold:        1,
			},
		},
	}
	secured, err := e.Securify(securifiedControl)
	require.NoError(t, err)
	assert.Equal(t, profile.SecurityStateSecurified, secured.SecurityState.Kind)
}

func TestNewUnsecuredEntityRejectsSecurifiedVeci(t *testing.T) {
	fsid := factorsource.NewIdFromPublicKeyBytes(factorsource.KindDevice, []byte("root"))
	idx, err := keyspace.NewHDPathComponent(0, keyspace.KeySpaceSecurified)
	require.NoError(t, err)
	path, err := keyspace.NewDerivationPath(keyspace.NetworkMainnet, keyspace.EntityKindAccount, keyspace.KeyKindTransactionSigning, idx)
	require.NoError(t, err)
	var pub factorsource.PublicKey
	pub[0] = 8

	_, err = profile.NewUnsecuredEntity("bad", keyspace.NetworkMainnet, hdfi.New(fsid, path, pub))
	require.Error(t, err)
	assert.True(t, errs.IsKind(err, errs.IndexSecurifiedExpectedUnsecurified))
}

func TestKindOfLooksUpRegisteredFactorSources(t *testing.T) {
	p := profile.New(keyspace.NetworkMainnet)
	fsid := factorsource.NewIdFromPublicKeyBytes(factorsource.KindLedger, []byte("root"))
	p.AddFactorSource(factorsource.Source{Id: fsid, Kind: factorsource.KindLedger, RootPublicKey: []byte("root")})

	kind, ok := p.KindOf(fsid)
	require.True(t, ok)
	assert.Equal(t, factorsource.KindLedger, kind)
}
