// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package petition implements the three-level petition hierarchy the
// Signatures Collector drives: PetitionForFactors (one role/list within
// one entity/transaction), PetitionForEntity (composes a securified
// entity's up-to-six lists, or one list for an unsecured entity), and
// PetitionsForTransaction (aggregates every signer entity on one
// transaction).
package petition

import (
	"encoding/hex"

	"github.com/hdcore/keyengine/factorsource"
	"github.com/hdcore/keyengine/hdfi"
	"github.com/hdcore/keyengine/profile"
)

// IntentHash identifies one TransactionIntent.
type IntentHash [32]byte

func (h IntentHash) String() string { return hex.EncodeToString(h[:]) }

// TransactionIntent is the out-of-scope transaction payload reduced to
// what the petition engine needs: its hash and the entities that must
// sign it.
type TransactionIntent struct {
	Hash            IntentHash
	SignerAddresses []profile.Address
}

// HDSignatureInput names exactly which instance signed which intent.
type HDSignatureInput struct {
	IntentHash     IntentHash
	FactorSourceId factorsource.Id
	Instance       hdfi.HDFI
}

// HDSignature is one produced signature.
type HDSignature struct {
	Input     HDSignatureInput
	Signature []byte
}

// NeglectReason explains why a factor source contributed nothing to a
// signing run.
type NeglectReason uint8

const (
	ReasonUserExplicitlySkipped NeglectReason = iota
	ReasonFailure
)

func (r NeglectReason) String() string {
	if r == ReasonUserExplicitlySkipped {
		return "userExplicitlySkipped"
	}
	return "failure"
}

// NeglectedFactor records one factor source's absence from a signing run.
type NeglectedFactor struct {
	FactorSourceId factorsource.Id
	Reason         NeglectReason
}

// Status is the three-valued outcome of a petition at any level of the
// hierarchy.
type Status uint8

const (
	StatusInProgress Status = iota
	StatusFinishedSuccess
	StatusFinishedFail
)

func (s Status) String() string {
	switch s {
	case StatusInProgress:
		return "inProgress"
	case StatusFinishedSuccess:
		return "finishedSuccess"
	default:
		return "finishedFail"
	}
}

func (s Status) IsFinished() bool { return s != StatusInProgress }
