// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hdcore/keyengine/config"
	"github.com/hdcore/keyengine/factorsource"
)

func TestDefaultMatchesStatedDefaults(t *testing.T) {
	cfg := config.Default()
	assert.Equal(t, 30, cfg.CacheFillingQuantity)
	assert.False(t, cfg.GateRecoveryConfirmationMFARules)
	assert.True(t, cfg.SigningFinishEarlyOnAllValid)
	assert.False(t, cfg.SigningFinishEarlyOnAnyInvalid)
}

func TestLoadFillsDefaultsForUnsetFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "engine.yaml")
	contents := "gateRecoveryConfirmationMFARules: true\n"
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 30, cfg.CacheFillingQuantity)
	assert.True(t, cfg.GateRecoveryConfirmationMFARules)
}

func TestResolveFrictionOrderDefaultsToBuiltIn(t *testing.T) {
	order, err := config.Default().ResolveFrictionOrder()
	require.NoError(t, err)
	assert.Equal(t, factorsource.FrictionOrder, order)
}

func TestResolveFrictionOrderRejectsPartialOrUnknownOverrides(t *testing.T) {
	partial := config.Default()
	partial.FrictionOrder = []string{"device"}
	_, err := partial.ResolveFrictionOrder()
	require.Error(t, err)

	unknown := config.Default()
	unknown.FrictionOrder = []string{
		"securityQuestions", "trustedContact", "offDeviceMnemonic",
		"passphrase", "arculusCard", "ledgerHQHardwareWallet", "tamagotchi",
	}
	_, err = unknown.ResolveFrictionOrder()
	require.Error(t, err)
}

func TestResolveFrictionOrderAcceptsFullOverride(t *testing.T) {
	cfg := config.Default()
	cfg.FrictionOrder = []string{
		"trustedContact", "securityQuestions", "offDeviceMnemonic",
		"passphrase", "arculusCard", "ledgerHQHardwareWallet", "device",
	}
	order, err := cfg.ResolveFrictionOrder()
	require.NoError(t, err)
	require.Len(t, order, 7)
	assert.Equal(t, factorsource.KindTrustedContact, order[0])
	assert.Equal(t, factorsource.KindDevice, order[6])
}
