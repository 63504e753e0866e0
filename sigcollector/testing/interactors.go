// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package testing holds in-memory signing interactor fakes used by the
// engine's own test suite.
package testing

import (
	"context"

	"github.com/hdcore/keyengine/factorsource"
	"github.com/hdcore/keyengine/petition"
	"github.com/hdcore/keyengine/sigcollector"
)

func fakeSignature(item sigcollector.SignRequestItem, fsid factorsource.Id) petition.HDSignature {
	return petition.HDSignature{
		Input: petition.HDSignatureInput{
			IntentHash:     item.IntentHash,
			FactorSourceId: fsid,
			Instance:       item.Instance,
		},
		Signature: append([]byte("sig:"), item.Instance.PublicKey[:]...),
	}
}

// PolySigner signs on behalf of every requested factor source id in a
// single call, the shape used by non-interactive sources like Device.
type PolySigner struct {
	// Skip names ids the fixture wants to simulate the user declining.
	Skip map[factorsource.Id]bool
}

func (p PolySigner) SignPoly(
	ctx context.Context,
	requests map[factorsource.Id][]sigcollector.SignRequestItem,
	invalidTransactionsIfNeglected map[factorsource.Id][]petition.IntentHash,
) (map[factorsource.Id]sigcollector.SignWithFactorsOutcome, error) {
	out := make(map[factorsource.Id]sigcollector.SignWithFactorsOutcome, len(requests))
	for fsid, items := range requests {
		if p.Skip[fsid] {
			out[fsid] = sigcollector.Neglected(petition.ReasonUserExplicitlySkipped)
			continue
		}
		sigs := make([]petition.HDSignature, 0, len(items))
		for _, item := range items {
			sigs = append(sigs, fakeSignature(item, fsid))
		}
		out[fsid] = sigcollector.Signed(sigs)
	}
	return out, nil
}

// MonoSigner signs on behalf of exactly one factor source id per call,
// the shape used by interactive sources like Ledger. Skip, when set, names ids the fixture wants to
// simulate the user declining.
type MonoSigner struct {
	Skip map[factorsource.Id]bool
}

func (m MonoSigner) SignMono(
	ctx context.Context,
	fsid factorsource.Id,
	items []sigcollector.SignRequestItem,
	invalidTransactionsIfNeglected []petition.IntentHash,
) (sigcollector.SignWithFactorsOutcome, error) {
	if m.Skip[fsid] {
		return sigcollector.Neglected(petition.ReasonUserExplicitlySkipped), nil
	}
	sigs := make([]petition.HDSignature, 0, len(items))
	for _, item := range items {
		sigs = append(sigs, fakeSignature(item, fsid))
	}
	return sigcollector.Signed(sigs), nil
}
