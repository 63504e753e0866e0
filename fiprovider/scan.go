// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package fiprovider

import (
	"context"

	"github.com/hdcore/keyengine/factorsource"
	"github.com/hdcore/keyengine/gateway"
	"github.com/hdcore/keyengine/hdfi"
	"github.com/hdcore/keyengine/keyscollector"
	"github.com/hdcore/keyengine/keyspace"
	"github.com/hdcore/keyengine/profile"
)

// AccountRecoveryScanOutcomeKind classifies one scanned candidate index
// against the Gateway.
type AccountRecoveryScanOutcomeKind uint8

const (
	// Recovered: the Gateway already knows an on-chain entity at this
	// candidate's address.
	Recovered AccountRecoveryScanOutcomeKind = iota
	// ProbablyFree: no on-chain entity at this candidate, but a later
	// candidate in the same scan window was recovered.
	ProbablyFree
	// Unrecovered: the scan's gap limit was exhausted past the last
	// recovered index without finding another entity.
	Unrecovered
)

func (k AccountRecoveryScanOutcomeKind) String() string {
	switch k {
	case Recovered:
		return "recovered"
	case ProbablyFree:
		return "probablyFree"
	default:
		return "unrecovered"
	}
}

// AccountRecoveryScanOutcome is one scanned candidate's classification.
type AccountRecoveryScanOutcome struct {
	FactorSourceId factorsource.Id
	Instance       hdfi.HDFI
	Kind           AccountRecoveryScanOutcomeKind
}

// scanWindow bypasses the Cache entirely: OARS/MARS derive a contiguous
// run of candidate indices starting at the space's base index and ask
// the Gateway about each one directly.
func scanWindow(
	ctx context.Context,
	preset keyspace.DerivationPreset,
	network keyspace.NetworkId,
	source factorsource.Source,
	gapLimit int,
	kindOf func(factorsource.Id) (factorsource.Kind, bool),
	interactorFor keyscollector.InteractorProvider,
	g gateway.ReadOnly,
) ([]AccountRecoveryScanOutcome, error) {
	collector := keyscollector.New()
	iap := preset.IndexAgnosticPath(network)

	idx := keyspace.BaseIndex(preset.KeySpace())
	var paths []keyspace.DerivationPath
	for i := 0; i < gapLimit; i++ {
		path, err := iap.WithIndex(idx)
		if err != nil {
			return nil, err
		}
		paths = append(paths, path)
		if i == gapLimit-1 {
			break
		}
		idx, err = idx.AddOne()
		if err != nil {
			return nil, err
		}
	}

	rings, err := collector.Collect(ctx, kindOf, map[factorsource.Id][]keyspace.DerivationPath{source.Id: paths}, interactorFor)
	if err != nil {
		return nil, err
	}

	ring := rings[source.Id]
	byIndex := make(map[uint32]hdfi.HDFI, len(ring.Slice()))
	for _, inst := range ring.Slice() {
		byIndex[inst.Path.Index.Value()] = inst
	}

	outcomes := make([]AccountRecoveryScanOutcome, 0, len(paths))
	lastRecovered := -1
	for i, path := range paths {
		inst, ok := byIndex[path.Index.Value()]
		if !ok {
			continue
		}
		classification, err := gateway.Classify(g, profile.HashPublicKey(inst.PublicKey))
		if err != nil {
			return nil, err
		}
		kind := ProbablyFree
		if classification != gateway.ClassificationFree {
			kind = Recovered
			lastRecovered = i
		}
		outcomes = append(outcomes, AccountRecoveryScanOutcome{FactorSourceId: source.Id, Instance: inst, Kind: kind})
	}

	for i := lastRecovered + 1; i < len(outcomes); i++ {
		outcomes[i].Kind = Unrecovered
	}

	return outcomes, nil
}

// OARS is the onboarding account recovery scan: many factor sources, no
// cache, no profile. gapLimit is typically
// CacheFillingQuantity.
func OARS(
	ctx context.Context,
	network keyspace.NetworkId,
	sources []factorsource.Source,
	gapLimit int,
	kindOf func(factorsource.Id) (factorsource.Kind, bool),
	interactorFor keyscollector.InteractorProvider,
	g gateway.ReadOnly,
) (map[factorsource.Id][]AccountRecoveryScanOutcome, error) {
	out := make(map[factorsource.Id][]AccountRecoveryScanOutcome, len(sources))
	for _, source := range sources {
		scanned, err := scanWindow(ctx, keyspace.PresetAccountVeci, network, source, gapLimit, kindOf, interactorFor, g)
		if err != nil {
			return nil, err
		}
		out[source.Id] = scanned
	}
	return out, nil
}

// MARS is a manual recovery scan over a single, user-chosen factor
// source.
func MARS(
	ctx context.Context,
	network keyspace.NetworkId,
	source factorsource.Source,
	gapLimit int,
	kindOf func(factorsource.Id) (factorsource.Kind, bool),
	interactorFor keyscollector.InteractorProvider,
	g gateway.ReadOnly,
) ([]AccountRecoveryScanOutcome, error) {
	return scanWindow(ctx, keyspace.PresetAccountVeci, network, source, gapLimit, kindOf, interactorFor, g)
}
