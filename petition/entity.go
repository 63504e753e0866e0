// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package petition

import (
	"github.com/hdcore/keyengine/factorsource"
	"github.com/hdcore/keyengine/hdfi"
	"github.com/hdcore/keyengine/profile"
	"github.com/hdcore/keyengine/rules"
)

// RoleEntry holds up to two ForFactors petitions for one role of one
// entity: a threshold-list petition and an override-list petition,
// either of which may be absent if that list is empty.
type RoleEntry struct {
	Kind      rules.RoleKind
	Threshold *ForFactors
	Override  *ForFactors
}

// Status applies the role-completion rule: Primary succeeds iff its
// threshold list meets its threshold OR its override list has ≥1
// signature; Recovery and Confirmation succeed iff their override
// list has ≥1 signature.
func (r RoleEntry) Status() Status {
	if r.Kind != rules.RoleKindPrimary {
		if r.Override == nil {
			return StatusFinishedFail
		}
		return r.Override.Status()
	}

	thresholdStatus := StatusFinishedFail
	if r.Threshold != nil {
		thresholdStatus = r.Threshold.Status()
	}
	overrideStatus := StatusFinishedFail
	if r.Override != nil {
		overrideStatus = r.Override.Status()
	}

	if thresholdStatus == StatusFinishedSuccess || overrideStatus == StatusFinishedSuccess {
		return StatusFinishedSuccess
	}
	if thresholdStatus == StatusFinishedFail && overrideStatus == StatusFinishedFail {
		return StatusFinishedFail
	}
	return StatusInProgress
}

// forEachPFF calls f with each of the role's present petitions.
func (r RoleEntry) forEachPFF(f func(*ForFactors)) {
	if r.Threshold != nil {
		f(r.Threshold)
	}
	if r.Override != nil {
		f(r.Override)
	}
}

// Clone makes an independent copy of the role entry's petitions.
func (r RoleEntry) Clone() RoleEntry {
	clone := RoleEntry{Kind: r.Kind}
	if r.Threshold != nil {
		clone.Threshold = r.Threshold.Clone()
	}
	if r.Override != nil {
		clone.Override = r.Override.Clone()
	}
	return clone
}

// ForEntity composes an entity's role petitions for one transaction.
type ForEntity struct {
	IntentHash    IntentHash
	EntityAddress profile.Address

	Primary      RoleEntry
	Recovery     RoleEntry
	Confirmation RoleEntry
}

// NewForEntityUnsecured builds the single-petition shape for an
// unsecured entity: its VECI stands in for the primary override list
// with a threshold of exactly 1.
func NewForEntityUnsecured(intentHash IntentHash, addr profile.Address, veci hdfi.HDFI) *ForEntity {
	return &ForEntity{
		IntentHash:    intentHash,
		EntityAddress: addr,
		Primary: RoleEntry{
			Kind:     rules.RoleKindPrimary,
			Override: NewForFactors(intentHash, []hdfi.HDFI{veci}, 1),
		},
	}
}

// NewForEntitySecurified builds the up-to-six-petition shape for a
// securified entity from its access-control matrix of instances.
func NewForEntitySecurified(intentHash IntentHash, addr profile.Address, matrix rules.Matrix[hdfi.HDFI]) *ForEntity {
	return &ForEntity{
		IntentHash:    intentHash,
		EntityAddress: addr,
		Primary:       roleEntryOf(intentHash, matrix.Primary),
		Recovery:      roleEntryOf(intentHash, matrix.Recovery),
		Confirmation:  roleEntryOf(intentHash, matrix.Confirmation),
	}
}

func roleEntryOf(intentHash IntentHash, role rules.Role[hdfi.HDFI]) RoleEntry {
	entry := RoleEntry{Kind: role.Kind}
	if len(role.ThresholdFactors) > 0 {
		entry.Threshold = NewForFactors(intentHash, role.ThresholdFactors, role.Threshold)
	}
	if len(role.OverrideFactors) > 0 {
		entry.Override = NewForFactors(intentHash, role.OverrideFactors, 1)
	}
	return entry
}

// Status is the entity's overall signing status for this transaction.
// Primary alone determines success by default; when gateMFA is true
// (config.Engine.GateRecoveryConfirmationMFARules), a Finished(Fail)
// Recovery or Confirmation also fails the entity even when Primary
// succeeds.
func (e *ForEntity) Status(gateMFA bool) Status {
	primary := e.Primary.Status()
	if !gateMFA {
		return primary
	}
	if primary != StatusFinishedSuccess {
		return primary
	}
	if e.Recovery.Status() == StatusFinishedFail || e.Confirmation.Status() == StatusFinishedFail {
		return StatusFinishedFail
	}
	return StatusFinishedSuccess
}

// forEachRole applies f to every role entry this entity carries.
func (e *ForEntity) forEachRole(f func(RoleEntry)) {
	f(e.Primary)
	f(e.Recovery)
	f(e.Confirmation)
}

// PendingPetitions lists every role petition of this entity that is
// still awaiting signatures or neglect decisions.
func (e *ForEntity) PendingPetitions() []*ForFactors {
	var out []*ForFactors
	e.forEachRole(func(r RoleEntry) {
		r.forEachPFF(func(pff *ForFactors) {
			if pff.Status() == StatusInProgress {
				out = append(out, pff)
			}
		})
	})
	return out
}

// AllSignatures collects every signature gathered across all of this
// entity's role petitions.
func (e *ForEntity) AllSignatures() []HDSignature {
	var out []HDSignature
	e.forEachRole(func(r RoleEntry) {
		r.forEachPFF(func(pff *ForFactors) {
			out = append(out, pff.Signatures()...)
		})
	})
	return out
}

// AllNeglected collects every neglected factor recorded across this
// entity's role petitions.
func (e *ForEntity) AllNeglected() []NeglectedFactor {
	var out []NeglectedFactor
	e.forEachRole(func(r RoleEntry) {
		r.forEachPFF(func(pff *ForFactors) {
			out = append(out, pff.Neglected()...)
		})
	})
	return out
}

// Clone makes an independent deep copy of the entity's petitions.
func (e *ForEntity) Clone() *ForEntity {
	return &ForEntity{
		IntentHash:    e.IntentHash,
		EntityAddress: e.EntityAddress,
		Primary:       e.Primary.Clone(),
		Recovery:      e.Recovery.Clone(),
		Confirmation:  e.Confirmation.Clone(),
	}
}

// NeglectFactorSource marks fsid as neglected in every pending petition
// of this entity that has it as a candidate (used both by the live run
// and by the collector's what-if simulation).
func (e *ForEntity) NeglectFactorSource(fsid factorsource.Id, reason NeglectReason) {
	e.forEachRole(func(r RoleEntry) {
		r.forEachPFF(func(pff *ForFactors) {
			if pff.HasCandidate(fsid) && pff.Status() == StatusInProgress {
				_ = pff.AddNeglected(fsid, reason)
			}
		})
	})
}
