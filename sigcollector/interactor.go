// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package sigcollector

import (
	"context"

	"github.com/hdcore/keyengine/factorsource"
	"github.com/hdcore/keyengine/hdfi"
	"github.com/hdcore/keyengine/petition"
)

// SignRequestItem names one (transaction, candidate instance) pair a
// factor source is being asked to sign.
type SignRequestItem struct {
	IntentHash petition.IntentHash
	Instance   hdfi.HDFI
}

// OutcomeKind tags which arm of SignWithFactorsOutcome is populated.
type OutcomeKind uint8

const (
	OutcomeSigned OutcomeKind = iota
	OutcomeNeglected
)

// SignWithFactorsOutcome is one factor source's response to a sign call.
type SignWithFactorsOutcome struct {
	Kind      OutcomeKind
	Signed    []petition.HDSignature
	Neglected petition.NeglectReason
}

// Signed builds a Signed outcome.
func Signed(sigs []petition.HDSignature) SignWithFactorsOutcome {
	return SignWithFactorsOutcome{Kind: OutcomeSigned, Signed: sigs}
}

// Neglected builds a Neglected outcome.
func Neglected(reason petition.NeglectReason) SignWithFactorsOutcome {
	return SignWithFactorsOutcome{Kind: OutcomeNeglected, Neglected: reason}
}

// PolyFactorInteractor signs on behalf of many factor sources in one host
// call.
type PolyFactorInteractor interface {
	SignPoly(
		ctx context.Context,
		requests map[factorsource.Id][]SignRequestItem,
		invalidTransactionsIfNeglected map[factorsource.Id][]petition.IntentHash,
	) (map[factorsource.Id]SignWithFactorsOutcome, error)
}

// MonoFactorInteractor signs on behalf of exactly one factor source per
// call.
type MonoFactorInteractor interface {
	SignMono(
		ctx context.Context,
		fsid factorsource.Id,
		items []SignRequestItem,
		invalidTransactionsIfNeglected []petition.IntentHash,
	) (SignWithFactorsOutcome, error)
}

// Interactor is exactly one of Poly or Mono, same split as
// keyscollector.Interactor.
type Interactor struct {
	Poly PolyFactorInteractor
	Mono MonoFactorInteractor
}

// InteractorProvider resolves the host signing interactor for a kind.
type InteractorProvider func(kind factorsource.Kind) (Interactor, bool)
