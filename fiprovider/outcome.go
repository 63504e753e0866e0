// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package fiprovider implements the Factor-Instances Provider: the
// top-level façade that answers "give me N instances for purpose P",
// filling the cache by derivation when short.
package fiprovider

import (
	"github.com/hdcore/keyengine/factorsource"
	"github.com/hdcore/keyengine/hdfi"
	"github.com/hdcore/keyengine/keyspace"
)

// QuantifiedDerivationPreset is the provider's single input shape: "I
// need `quantity` instances at `preset` on `network`".
type QuantifiedDerivationPreset struct {
	Preset   keyspace.DerivationPreset
	Network  keyspace.NetworkId
	Quantity int
}

// FactorInstancesProviderOutcomeForFactor is one factor source's result
// from a provide() call. The debug fields are test-only.
type FactorInstancesProviderOutcomeForFactor struct {
	FactorSourceId factorsource.Id
	ToUseDirectly  []hdfi.HDFI

	// Debug fields, test-only. WasCached counts instances this call
	// wrote into the cache, FoundInCache counts instances served out of
	// the cache, WasDerived counts everything the interactor derived.
	WasCached    int
	FoundInCache int
	WasDerived   int
}

// OutcomePerFactor is the full result of one provide() call.
type OutcomePerFactor map[factorsource.Id]FactorInstancesProviderOutcomeForFactor
