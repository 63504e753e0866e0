// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package petition_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hdcore/keyengine/factorsource"
	"github.com/hdcore/keyengine/hdfi"
	"github.com/hdcore/keyengine/keyspace"
	"github.com/hdcore/keyengine/petition"
	"github.com/hdcore/keyengine/profile"
	"github.com/hdcore/keyengine/rules"
)

func securifiedPath(t *testing.T, value uint32) keyspace.DerivationPath {
	t.Helper()
	idx, err := keyspace.NewHDPathComponent(value, keyspace.KeySpaceSecurified)
	require.NoError(t, err)
	path, err := keyspace.NewDerivationPath(keyspace.NetworkMainnet, keyspace.EntityKindAccount, keyspace.KeyKindTransactionSigning, idx)
	require.NoError(t, err)
	return path
}

func instanceFor(t *testing.T, kind factorsource.Kind, seed byte) hdfi.HDFI {
	t.Helper()
	fsid := factorsource.NewIdFromPublicKeyBytes(kind, []byte{seed})
	var pub factorsource.PublicKey
	pub[0] = seed
	return hdfi.New(fsid, securifiedPath(t, 0), pub)
}

func TestForFactorsThresholdMetSucceeds(t *testing.T) {
	l := instanceFor(t, factorsource.KindLedger, 1)
	d1 := instanceFor(t, factorsource.KindDevice, 2)
	d2 := instanceFor(t, factorsource.KindArculusCard, 3)

	pff := petition.NewForFactors(petition.IntentHash{}, []hdfi.HDFI{l, d1, d2}, 2)
	assert.Equal(t, petition.StatusInProgress, pff.Status())

	require.NoError(t, pff.AddSignature(petition.HDSignature{Input: petition.HDSignatureInput{FactorSourceId: d1.FactorSourceId}}))
	assert.Equal(t, petition.StatusInProgress, pff.Status())

	require.NoError(t, pff.AddSignature(petition.HDSignature{Input: petition.HDSignatureInput{FactorSourceId: d2.FactorSourceId}}))
	assert.Equal(t, petition.StatusFinishedSuccess, pff.Status())
}

func TestForFactorsFailsWhenThresholdUnreachable(t *testing.T) {
	l := instanceFor(t, factorsource.KindLedger, 1)
	d1 := instanceFor(t, factorsource.KindDevice, 2)

	pff := petition.NewForFactors(petition.IntentHash{}, []hdfi.HDFI{l, d1}, 2)
	require.NoError(t, pff.AddNeglected(l.FactorSourceId, petition.ReasonUserExplicitlySkipped))
	assert.Equal(t, petition.StatusFinishedFail, pff.Status())

	require.NoError(t, pff.AddNeglected(d1.FactorSourceId, petition.ReasonFailure))
	assert.Equal(t, petition.StatusFinishedFail, pff.Status())
}

func TestForEntityUnsecuredSucceedsOnVeciSignature(t *testing.T) {
	veci := instanceFor(t, factorsource.KindDevice, 9)
	addr := profile.NewAddress(keyspace.NetworkMainnet, veci.PublicKey)

	e := petition.NewForEntityUnsecured(petition.IntentHash{}, addr, veci)
	assert.Equal(t, petition.StatusInProgress, e.Status(false))

	require.NoError(t, e.Primary.Override.AddSignature(petition.HDSignature{Input: petition.HDSignatureInput{FactorSourceId: veci.FactorSourceId}}))
	assert.Equal(t, petition.StatusFinishedSuccess, e.Status(false))
}

func TestForEntitySecurifiedPrimarySucceedsViaOverrideWhenThresholdSkipped(t *testing.T) {
	l := instanceFor(t, factorsource.KindLedger, 1)
	d1 := instanceFor(t, factorsource.KindDevice, 2)
	d2 := instanceFor(t, factorsource.KindArculusCard, 3)

	matrix := rules.Matrix[hdfi.HDFI]{
		Primary: rules.Role[hdfi.HDFI]{
			Kind:             rules.RoleKindPrimary,
			ThresholdFactors: []hdfi.HDFI{l, d1, d2},
			Threshold:        2,
			OverrideFactors:  []hdfi.HDFI{d1},
		},
	}
	addr := profile.NewAddress(keyspace.NetworkMainnet, l.PublicKey)
	e := petition.NewForEntitySecurified(petition.IntentHash{}, addr, matrix)

	require.NoError(t, e.Primary.Override.AddSignature(petition.HDSignature{Input: petition.HDSignatureInput{FactorSourceId: d1.FactorSourceId}}))
	assert.Equal(t, petition.StatusFinishedSuccess, e.Status(false))
}

func TestForTransactionAggregatesAnyFailToFail(t *testing.T) {
	veciOK := instanceFor(t, factorsource.KindDevice, 4)
	addrOK := profile.NewAddress(keyspace.NetworkMainnet, veciOK.PublicKey)
	eOK := petition.NewForEntityUnsecured(petition.IntentHash{}, addrOK, veciOK)
	require.NoError(t, eOK.Primary.Override.AddSignature(petition.HDSignature{Input: petition.HDSignatureInput{FactorSourceId: veciOK.FactorSourceId}}))

	veciFail := instanceFor(t, factorsource.KindDevice, 5)
	addrFail := profile.NewAddress(keyspace.NetworkMainnet, veciFail.PublicKey)
	eFail := petition.NewForEntityUnsecured(petition.IntentHash{}, addrFail, veciFail)
	require.NoError(t, eFail.Primary.Override.AddNeglected(veciFail.FactorSourceId, petition.ReasonFailure))

	tx := petition.NewForTransaction(petition.IntentHash{})
	tx.AddEntity(eOK)
	tx.AddEntity(eFail)

	assert.Equal(t, petition.StatusFinishedFail, tx.Status(false))
}
