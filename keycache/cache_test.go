// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package keycache_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hdcore/keyengine/errs"
	"github.com/hdcore/keyengine/factorsource"
	"github.com/hdcore/keyengine/hdfi"
	"github.com/hdcore/keyengine/keycache"
	"github.com/hdcore/keyengine/keyspace"
)

func deviceId(t *testing.T) factorsource.Id {
	t.Helper()
	return factorsource.NewIdFromPublicKeyBytes(factorsource.KindDevice, []byte("root-public-key"))
}

func instanceAt(t *testing.T, fsid factorsource.Id, value uint32, space keyspace.KeySpace, b byte) hdfi.HDFI {
	t.Helper()
	idx, err := keyspace.NewHDPathComponent(value, space)
	require.NoError(t, err)
	path, err := keyspace.NewDerivationPath(keyspace.NetworkMainnet, keyspace.EntityKindAccount, keyspace.KeyKindTransactionSigning, idx)
	require.NoError(t, err)
	var pub factorsource.PublicKey
	pub[0] = b
	return hdfi.New(fsid, path, pub)
}

func TestInsertAndMaxIndexFor(t *testing.T) {
	c := keycache.New()
	fsid := deviceId(t)

	i0 := instanceAt(t, fsid, 0, keyspace.KeySpaceUnsecurified, 1)
	i1 := instanceAt(t, fsid, 1, keyspace.KeySpaceUnsecurified, 2)

	gap, err := c.InsertForFactor(fsid, []hdfi.HDFI{i1, i0})
	require.NoError(t, err)
	assert.False(t, gap)

	iap := i0.IndexAgnosticPath()
	maxIdx, ok := c.MaxIndexFor(iap, fsid)
	require.True(t, ok)
	assert.Equal(t, uint32(1), maxIdx.Value())
}

func TestInsertDetectsGap(t *testing.T) {
	c := keycache.New()
	fsid := deviceId(t)

	i0 := instanceAt(t, fsid, 0, keyspace.KeySpaceUnsecurified, 1)
	i2 := instanceAt(t, fsid, 2, keyspace.KeySpaceUnsecurified, 2)

	gap, err := c.InsertForFactor(fsid, []hdfi.HDFI{i0, i2})
	require.NoError(t, err)
	assert.True(t, gap)
}

func TestInsertRejectsWrongFactorSource(t *testing.T) {
	c := keycache.New()
	fsid := deviceId(t)
	other := factorsource.NewIdFromPublicKeyBytes(factorsource.KindLedger, []byte("other-key"))

	wrong := instanceAt(t, other, 0, keyspace.KeySpaceUnsecurified, 1)
	_, err := c.InsertForFactor(fsid, []hdfi.HDFI{wrong})
	require.Error(t, err)
}

func TestInsertRejectsDuplicatePublicKey(t *testing.T) {
	c := keycache.New()
	fsid := deviceId(t)

	i0 := instanceAt(t, fsid, 0, keyspace.KeySpaceUnsecurified, 1)
	_, err := c.InsertForFactor(fsid, []hdfi.HDFI{i0})
	require.NoError(t, err)

	dup := instanceAt(t, fsid, 1, keyspace.KeySpaceUnsecurified, 1) // same pubkey byte
	_, err = c.InsertForFactor(fsid, []hdfi.HDFI{dup})
	require.Error(t, err)
}

func TestRemoveOutcomes(t *testing.T) {
	c := keycache.New()
	fsid := deviceId(t)

	i0 := instanceAt(t, fsid, 0, keyspace.KeySpaceUnsecurified, 1)
	i1 := instanceAt(t, fsid, 1, keyspace.KeySpaceUnsecurified, 2)
	i2 := instanceAt(t, fsid, 2, keyspace.KeySpaceUnsecurified, 3)
	iap := i0.IndexAgnosticPath()

	_, err := c.InsertForFactor(fsid, []hdfi.HDFI{i0, i1, i2})
	require.NoError(t, err)

	empty := c.Remove(fsid, keyspace.IndexAgnosticPath{Network: keyspace.NetworkStokenet, EntityKind: keyspace.EntityKindAccount, KeyKind: keyspace.KeyKindTransactionSigning, Space: keyspace.KeySpaceUnsecurified}, 5)
	assert.Equal(t, keycache.OutcomeEmpty, empty.Kind)

	full := c.Remove(fsid, iap, 2)
	assert.Equal(t, keycache.OutcomeFull, full.Kind)
	require.Len(t, full.Instances, 2)
	assert.True(t, full.Instances[0].Equal(i0))
	assert.True(t, full.Instances[1].Equal(i1))

	partial := c.Remove(fsid, iap, 5)
	assert.Equal(t, keycache.OutcomePartial, partial.Kind)
	require.Len(t, partial.Instances, 1)
	assert.Equal(t, 4, partial.Remaining)
}

func TestConsumeStrictErrors(t *testing.T) {
	c := keycache.New()
	fsid := deviceId(t)
	other := factorsource.NewIdFromPublicKeyBytes(factorsource.KindLedger, []byte("never-cached"))

	i0 := instanceAt(t, fsid, 0, keyspace.KeySpaceUnsecurified, 1)
	i1 := instanceAt(t, fsid, 1, keyspace.KeySpaceUnsecurified, 2)
	iap := i0.IndexAgnosticPath()

	_, err := c.InsertForFactor(fsid, []hdfi.HDFI{i0, i1})
	require.NoError(t, err)

	_, err = c.Consume(other, iap, 1)
	require.Error(t, err)
	assert.True(t, errs.IsKind(err, errs.KeysCacheUnknownKey))

	_, err = c.Consume(fsid, iap, 3)
	require.Error(t, err)
	assert.True(t, errs.IsKind(err, errs.KeysCacheEmptyForKey))

	taken, err := c.Consume(fsid, iap, 2)
	require.NoError(t, err)
	require.Len(t, taken, 2)

	_, err = c.Consume(fsid, iap, 1)
	require.Error(t, err)
	assert.True(t, errs.IsKind(err, errs.KeysCacheEmptyForKey))
}

func TestIsFull(t *testing.T) {
	c := keycache.New()
	fsid := deviceId(t)

	assert.False(t, c.IsFull(keyspace.NetworkMainnet, fsid, 1))

	for _, preset := range keyspace.AllDerivationPresets {
		iap := preset.IndexAgnosticPath(keyspace.NetworkMainnet)
		idx, err := keyspace.NewHDPathComponent(0, preset.KeySpace())
		require.NoError(t, err)
		path, err := iap.WithIndex(idx)
		require.NoError(t, err)
		var pub factorsource.PublicKey
		pub[0] = byte(preset) + 1
		inst := hdfi.New(fsid, path, pub)
		_, err = c.InsertForFactor(fsid, []hdfi.HDFI{inst})
		require.NoError(t, err)
	}

	assert.True(t, c.IsFull(keyspace.NetworkMainnet, fsid, 1))
}
