// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package rules

import "github.com/hdcore/keyengine/factorsource"

// FactorSourceKindLookup resolves a factor source id's kind, needed to
// evaluate kind-admissibility. The builder never needs anything else
// about a factor source.
type FactorSourceKindLookup func(factorsource.Id) (factorsource.Kind, bool)

// RoleBuilder incrementally assembles one role's threshold and override
// lists.
type RoleBuilder struct {
	kind             RoleKind
	thresholdFactors []factorsource.Id
	overrideFactors  []factorsource.Id
	threshold        uint8
	lookup           FactorSourceKindLookup
}

func newRoleBuilder(kind RoleKind, lookup FactorSourceKindLookup) *RoleBuilder {
	return &RoleBuilder{kind: kind, lookup: lookup}
}

// ThresholdFactors returns the role's threshold list in insertion order.
func (r *RoleBuilder) ThresholdFactors() []factorsource.Id {
	return append([]factorsource.Id(nil), r.thresholdFactors...)
}

// OverrideFactors returns the role's override list in insertion order.
func (r *RoleBuilder) OverrideFactors() []factorsource.Id {
	return append([]factorsource.Id(nil), r.overrideFactors...)
}

// Threshold returns the number of threshold-list signatures required.
func (r *RoleBuilder) Threshold() uint8 { return r.threshold }

func (r *RoleBuilder) containsAnywhere(id factorsource.Id) bool {
	for _, x := range r.thresholdFactors {
		if x.Equal(id) {
			return true
		}
	}
	for _, x := range r.overrideFactors {
		if x.Equal(id) {
			return true
		}
	}
	return false
}

func (r *RoleBuilder) countDeviceInThreshold() int {
	n := 0
	for _, x := range r.thresholdFactors {
		if kind, ok := r.lookup(x); ok && kind == factorsource.KindDevice {
			n++
		}
	}
	return n
}

// validationFor is the pure predicate behind
// validation_for_addition_of_factor_source_of_kind_to_{role_list}.
// It does not know about duplicates against other roles' lists of the
// same matrix; the MatrixBuilder layers that on top.
func (r *RoleBuilder) validationFor(list RoleListKind, kind factorsource.Kind) []DisallowedReason {
	var reasons []DisallowedReason
	if !IsKindAdmissible(list, kind) {
		reasons = append(reasons, ReasonKindNotAdmissible)
	}
	if list == PrimaryThreshold && kind == factorsource.KindDevice && r.countDeviceInThreshold() >= 1 {
		reasons = append(reasons, ReasonDeviceLimitExceeded)
	}
	return reasons
}

func (r *RoleBuilder) add(list RoleListKind, id factorsource.Id) error {
	kind, known := r.lookup(id)
	if !known {
		return errEmptyCollection("unknown factor source id")
	}
	if r.containsAnywhere(id) {
		return errNotAdmissible(list, ReasonDuplicateFactorSource)
	}
	if reasons := r.validationFor(list, kind); len(reasons) > 0 {
		return errNotAdmissible(list, reasons[0])
	}

	if list == PrimaryThreshold {
		r.thresholdFactors = append(r.thresholdFactors, id)
	} else {
		r.overrideFactors = append(r.overrideFactors, id)
	}
	return nil
}

// remove deletes every occurrence of id from both lists, reporting
// whether anything was removed.
func (r *RoleBuilder) remove(id factorsource.Id) bool {
	removed := false
	r.thresholdFactors, removed = removeAll(r.thresholdFactors, id, removed)
	r.overrideFactors, removed = removeAll(r.overrideFactors, id, removed)
	return removed
}

func removeAll(list []factorsource.Id, id factorsource.Id, removedSoFar bool) ([]factorsource.Id, bool) {
	out := list[:0:0]
	for _, x := range list {
		if x.Equal(id) {
			removedSoFar = true
			continue
		}
		out = append(out, x)
	}
	return out, removedSoFar
}

func (r *RoleBuilder) setThreshold(n uint8) error {
	if int(n) > len(r.thresholdFactors) {
		return errThresholdExceedsFactors(int(n), len(r.thresholdFactors))
	}
	r.threshold = n
	return nil
}

// validateForBuild checks invariants only enforceable once the role is
// considered complete.
func (r *RoleBuilder) validateForBuild() error {
	hasPassphrase := false
	for _, x := range r.thresholdFactors {
		if kind, ok := r.lookup(x); ok && kind == factorsource.KindPassphrase {
			hasPassphrase = true
			break
		}
	}
	if hasPassphrase && len(r.thresholdFactors) < 2 {
		return errNotAdmissible(PrimaryThreshold, ReasonPassphraseNeedsCompanion)
	}
	if int(r.threshold) > len(r.thresholdFactors) {
		return errThresholdExceedsFactors(int(r.threshold), len(r.thresholdFactors))
	}

	if r.kind == RoleKindPrimary {
		hasOverride := len(r.overrideFactors) > 0
		hasThreshold := r.threshold >= 1 && int(r.threshold) <= len(r.thresholdFactors)
		if !hasOverride && !hasThreshold {
			return errEmptyCollection("primary role needs a non-empty override list or threshold>=1")
		}
	}
	return nil
}
