// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package petition

import (
	"github.com/hdcore/keyengine/errs"
	"github.com/hdcore/keyengine/factorsource"
	"github.com/hdcore/keyengine/hdfi"
)

// ForFactors is one role×list within one entity×transaction. Threshold is the role's threshold for a
// threshold list, or 1 for an override list.
type ForFactors struct {
	IntentHash IntentHash
	Candidates []hdfi.HDFI
	Threshold  uint8

	signed    map[factorsource.Id]HDSignature
	neglected map[factorsource.Id]NeglectedFactor
}

// NewForFactors builds a petition over candidates with the given
// threshold.
func NewForFactors(intentHash IntentHash, candidates []hdfi.HDFI, threshold uint8) *ForFactors {
	return &ForFactors{
		IntentHash: intentHash,
		Candidates: append([]hdfi.HDFI(nil), candidates...),
		Threshold:  threshold,
		signed:     make(map[factorsource.Id]HDSignature),
		neglected:  make(map[factorsource.Id]NeglectedFactor),
	}
}

// candidateFor finds the candidate instance belonging to fsid, if any.
func (p *ForFactors) candidateFor(fsid factorsource.Id) (hdfi.HDFI, bool) {
	for _, c := range p.Candidates {
		if c.FactorSourceId.Equal(fsid) {
			return c, true
		}
	}
	return hdfi.HDFI{}, false
}

// PendingFactorSourceIds lists candidates that are neither signed nor
// neglected yet — the set the collector still needs to ask about.
func (p *ForFactors) PendingFactorSourceIds() []factorsource.Id {
	var out []factorsource.Id
	for _, inst := range p.PendingCandidates() {
		out = append(out, inst.FactorSourceId)
	}
	return out
}

// PendingCandidates lists the candidate instances that are neither
// signed nor neglected yet.
func (p *ForFactors) PendingCandidates() []hdfi.HDFI {
	var out []hdfi.HDFI
	for _, c := range p.Candidates {
		if _, signed := p.signed[c.FactorSourceId]; signed {
			continue
		}
		if _, neglected := p.neglected[c.FactorSourceId]; neglected {
			continue
		}
		out = append(out, c)
	}
	return out
}

// AddSignature records a signature from one of this petition's
// candidates.
func (p *ForFactors) AddSignature(sig HDSignature) error {
	if _, ok := p.candidateFor(sig.Input.FactorSourceId); !ok {
		return errs.NewFatal(errs.FactorSourceDiscrepancy, "signature from factor source %s is not a candidate of this petition", sig.Input.FactorSourceId)
	}
	p.signed[sig.Input.FactorSourceId] = sig
	return nil
}

// AddNeglected records that fsid produced no signature, permanently for
// the remainder of the run.
func (p *ForFactors) AddNeglected(fsid factorsource.Id, reason NeglectReason) error {
	if _, ok := p.candidateFor(fsid); !ok {
		return errs.NewFatal(errs.FactorSourceDiscrepancy, "neglect from factor source %s is not a candidate of this petition", fsid)
	}
	p.neglected[fsid] = NeglectedFactor{FactorSourceId: fsid, Reason: reason}
	return nil
}

// Signatures returns every signature collected so far.
func (p *ForFactors) Signatures() []HDSignature {
	out := make([]HDSignature, 0, len(p.signed))
	for _, s := range p.signed {
		out = append(out, s)
	}
	return out
}

// Neglected returns every neglected factor recorded so far.
func (p *ForFactors) Neglected() []NeglectedFactor {
	out := make([]NeglectedFactor, 0, len(p.neglected))
	for _, n := range p.neglected {
		out = append(out, n)
	}
	return out
}

// Clone makes an independent copy, used by the collector to simulate
// "what if this factor source were neglected" without mutating the live
// petition.
func (p *ForFactors) Clone() *ForFactors {
	clone := &ForFactors{
		IntentHash: p.IntentHash,
		Candidates: append([]hdfi.HDFI(nil), p.Candidates...),
		Threshold:  p.Threshold,
		signed:     make(map[factorsource.Id]HDSignature, len(p.signed)),
		neglected:  make(map[factorsource.Id]NeglectedFactor, len(p.neglected)),
	}
	for k, v := range p.signed {
		clone.signed[k] = v
	}
	for k, v := range p.neglected {
		clone.neglected[k] = v
	}
	return clone
}

// HasCandidate reports whether fsid is among this petition's candidates.
func (p *ForFactors) HasCandidate(fsid factorsource.Id) bool {
	_, ok := p.candidateFor(fsid)
	return ok
}

// HasCandidateInstance reports whether this exact instance (by public
// key) is among this petition's candidates. One factor source may
// control several entities on the same transaction; matching by
// instance keeps each entity's signature out of the others' petitions.
func (p *ForFactors) HasCandidateInstance(inst hdfi.HDFI) bool {
	for _, c := range p.Candidates {
		if c.PublicKey.Equal(inst.PublicKey) {
			return true
		}
	}
	return false
}

// Status reports whether this petition has already met its threshold,
// can no longer possibly meet it, or is still undecided.
func (p *ForFactors) Status() Status {
	signedCount := len(p.signed)
	if signedCount >= int(p.Threshold) {
		return StatusFinishedSuccess
	}
	remaining := len(p.Candidates) - len(p.signed) - len(p.neglected)
	if signedCount+remaining < int(p.Threshold) {
		return StatusFinishedFail
	}
	return StatusInProgress
}
