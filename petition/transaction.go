// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package petition

import (
	"github.com/hdcore/keyengine/factorsource"
	"github.com/hdcore/keyengine/profile"
)

// ForTransaction is one petition per entity per transaction, aggregated
// into a single transaction status.
type ForTransaction struct {
	IntentHash   IntentHash
	ByEntityAddr map[profile.Address]*ForEntity
}

// NewForTransaction builds an empty petition set for one transaction.
func NewForTransaction(intentHash IntentHash) *ForTransaction {
	return &ForTransaction{IntentHash: intentHash, ByEntityAddr: make(map[profile.Address]*ForEntity)}
}

// AddEntity registers one signer entity's petition on this transaction.
func (t *ForTransaction) AddEntity(entity *ForEntity) {
	t.ByEntityAddr[entity.EntityAddress] = entity
}

// Status aggregates every entity's status into the transaction's status:
// all valid → valid, any invalid → invalid, else pending.
func (t *ForTransaction) Status(gateMFA bool) Status {
	anyInProgress := false
	for _, e := range t.ByEntityAddr {
		switch e.Status(gateMFA) {
		case StatusFinishedFail:
			return StatusFinishedFail
		case StatusInProgress:
			anyInProgress = true
		}
	}
	if anyInProgress {
		return StatusInProgress
	}
	return StatusFinishedSuccess
}

// PendingPetitions lists every ForFactors petition, across every signer
// entity on this transaction, that is still awaiting signatures.
func (t *ForTransaction) PendingPetitions() []*ForFactors {
	var out []*ForFactors
	for _, e := range t.ByEntityAddr {
		out = append(out, e.PendingPetitions()...)
	}
	return out
}

// AllSignatures collects every signature gathered for this transaction
// across every signer entity.
func (t *ForTransaction) AllSignatures() []HDSignature {
	var out []HDSignature
	for _, e := range t.ByEntityAddr {
		out = append(out, e.AllSignatures()...)
	}
	return out
}

// AllNeglected collects every neglected factor recorded for this
// transaction across every signer entity.
func (t *ForTransaction) AllNeglected() []NeglectedFactor {
	var out []NeglectedFactor
	for _, e := range t.ByEntityAddr {
		out = append(out, e.AllNeglected()...)
	}
	return out
}

// Clone makes an independent deep copy of every entity petition on this
// transaction.
func (t *ForTransaction) Clone() *ForTransaction {
	clone := NewForTransaction(t.IntentHash)
	for addr, e := range t.ByEntityAddr {
		clone.ByEntityAddr[addr] = e.Clone()
	}
	return clone
}

// WouldBeInvalidIfNeglected reports whether neglecting fsid across every
// entity that has it as a candidate would flip this transaction's status
// from "could still succeed" to Finished(Fail).
func (t *ForTransaction) WouldBeInvalidIfNeglected(fsid factorsource.Id, gateMFA bool) bool {
	before := t.Status(gateMFA)
	if before == StatusFinishedFail {
		return false
	}
	clone := t.Clone()
	for _, e := range clone.ByEntityAddr {
		e.NeglectFactorSource(fsid, ReasonFailure)
	}
	return clone.Status(gateMFA) == StatusFinishedFail
}
