// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package rules

import (
	"sync"
	"time"

	"github.com/pborman/uuid"

	"github.com/hdcore/keyengine/factorsource"
)

// DefaultNumberOfDaysUntilAutoConfirm is the built-in default for a newly
// created MatrixBuilder.
const DefaultNumberOfDaysUntilAutoConfirm uint16 = 14

// FactorSourceValidationStatus is one candidate's admissibility verdict.
type FactorSourceValidationStatus struct {
	FactorSourceId      factorsource.Id
	ReasonsIfDisallowed []DisallowedReason
}

func (s FactorSourceValidationStatus) Allowed() bool {
	return len(s.ReasonsIfDisallowed) == 0
}

// MatrixBuilder incrementally assembles a three-role Matrix of factor
// source ids. It is linear-use: build() consumes it exclusively.
type MatrixBuilder struct {
	mu       sync.Mutex
	consumed bool
	poisoned bool

	lookup FactorSourceKindLookup

	primary      *RoleBuilder
	recovery     *RoleBuilder
	confirmation *RoleBuilder

	numberOfDaysUntilAutoConfirm uint16
}

// NewMatrixBuilder creates an empty builder. lookup resolves a candidate
// factor source id's kind; it is typically backed by the host Profile's
// known factor sources.
func NewMatrixBuilder(lookup FactorSourceKindLookup) *MatrixBuilder {
	return &MatrixBuilder{
		lookup:                       lookup,
		primary:                      newRoleBuilder(RoleKindPrimary, lookup),
		recovery:                     newRoleBuilder(RoleKindRecovery, lookup),
		confirmation:                 newRoleBuilder(RoleKindConfirmation, lookup),
		numberOfDaysUntilAutoConfirm: DefaultNumberOfDaysUntilAutoConfirm,
	}
}

func (b *MatrixBuilder) guard() error {
	if b.poisoned {
		return errLockPoisoned()
	}
	if b.consumed {
		return errAlreadyBuilt()
	}
	return nil
}

// crossRoleDuplicate reports whether id already appears in any role's
// lists other than the one being added to.
func (b *MatrixBuilder) crossRoleDuplicate(id factorsource.Id, except *RoleBuilder) bool {
	for _, rb := range []*RoleBuilder{b.primary, b.recovery, b.confirmation} {
		if rb == except {
			continue
		}
		if rb.containsAnywhere(id) {
			return true
		}
	}
	return false
}

func (b *MatrixBuilder) addLocked(list RoleListKind, id factorsource.Id) error {
	if err := b.guard(); err != nil {
		return err
	}
	rb := b.roleBuilderFor(list)
	if b.crossRoleDuplicate(id, rb) {
		return errNotAdmissible(list, ReasonDuplicateFactorSource)
	}
	return rb.add(list, id)
}

func (b *MatrixBuilder) roleBuilderFor(list RoleListKind) *RoleBuilder {
	switch list.Role() {
	case RoleKindPrimary:
		return b.primary
	case RoleKindRecovery:
		return b.recovery
	default:
		return b.confirmation
	}
}

// AddFactorSourceToPrimaryThreshold appends fsid to the primary threshold list.
func (b *MatrixBuilder) AddFactorSourceToPrimaryThreshold(fsid factorsource.Id) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.addLocked(PrimaryThreshold, fsid)
}

// AddFactorSourceToPrimaryOverride appends fsid to the primary override list.
func (b *MatrixBuilder) AddFactorSourceToPrimaryOverride(fsid factorsource.Id) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.addLocked(PrimaryOverride, fsid)
}

// AddFactorSourceToRecoveryOverride appends fsid to the recovery override list.
func (b *MatrixBuilder) AddFactorSourceToRecoveryOverride(fsid factorsource.Id) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.addLocked(RecoveryOverride, fsid)
}

// AddFactorSourceToConfirmationOverride appends fsid to the confirmation override list.
func (b *MatrixBuilder) AddFactorSourceToConfirmationOverride(fsid factorsource.Id) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.addLocked(ConfirmationOverride, fsid)
}

// RemoveFactor removes every occurrence of fsid from every role/list.
func (b *MatrixBuilder) RemoveFactor(fsid factorsource.Id) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.guard(); err != nil {
		return err
	}
	b.primary.remove(fsid)
	b.recovery.remove(fsid)
	b.confirmation.remove(fsid)
	return nil
}

// SetThreshold sets the primary role's threshold count.
func (b *MatrixBuilder) SetThreshold(n uint8) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.guard(); err != nil {
		return err
	}
	return b.primary.setThreshold(n)
}

// SetNumberOfDaysUntilAutoConfirm sets the recovery auto-confirm delay.
func (b *MatrixBuilder) SetNumberOfDaysUntilAutoConfirm(days uint16) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.guard(); err != nil {
		return err
	}
	b.numberOfDaysUntilAutoConfirm = days
	return nil
}

// ValidationForAdditionOfFactorSourceOfKind is a pure predicate: would
// adding a factor source of this kind to this role list be admissible,
// without mutating any state.
func (b *MatrixBuilder) ValidationForAdditionOfFactorSourceOfKind(list RoleListKind, kind factorsource.Kind) []DisallowedReason {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.roleBuilderFor(list).validationFor(list, kind)
}

// ValidationForAdditionOfFactorSourceToRoleListForEach evaluates every
// candidate independently without mutating the builder.
func (b *MatrixBuilder) ValidationForAdditionOfFactorSourceToRoleListForEach(list RoleListKind, fsids []factorsource.Id) []FactorSourceValidationStatus {
	b.mu.Lock()
	defer b.mu.Unlock()

	rb := b.roleBuilderFor(list)
	out := make([]FactorSourceValidationStatus, 0, len(fsids))
	for _, fsid := range fsids {
		kind, known := b.lookup(fsid)
		var reasons []DisallowedReason
		if !known {
			reasons = []DisallowedReason{ReasonKindNotAdmissible}
		} else {
			reasons = rb.validationFor(list, kind)
			if rb.containsAnywhere(fsid) || b.crossRoleDuplicate(fsid, rb) {
				reasons = append(reasons, ReasonDuplicateFactorSource)
			}
		}
		out = append(out, FactorSourceValidationStatus{FactorSourceId: fsid, ReasonsIfDisallowed: reasons})
	}
	return out
}

// Build is the one-shot consuming operation: it validates every role and
// produces a SecurityStructureOfFactorSourceIds, or poisons the builder on
// failure so the caller cannot retry with a half-valid state.
func (b *MatrixBuilder) Build(name string) (SecurityStructureOfFactorSourceIds, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.guard(); err != nil {
		return SecurityStructureOfFactorSourceIds{}, err
	}

	for _, rb := range []*RoleBuilder{b.primary, b.recovery, b.confirmation} {
		if err := rb.validateForBuild(); err != nil {
			b.poisoned = true
			return SecurityStructureOfFactorSourceIds{}, err
		}
	}

	matrix := Matrix[factorsource.Id]{
		Primary:                      roleOf(b.primary),
		Recovery:                     roleOf(b.recovery),
		Confirmation:                 roleOf(b.confirmation),
		NumberOfDaysUntilAutoConfirm: b.numberOfDaysUntilAutoConfirm,
	}

	now := time.Now().UTC()
	out := SecurityStructureOfFactorSourceIds{
		Metadata: SecurityStructureMetadata{
			Id:            uuid.NewUUID().String(),
			DisplayName:   name,
			CreatedOn:     now,
			LastUpdatedOn: now,
		},
		Matrix: matrix,
	}

	b.consumed = true
	return out, nil
}

func roleOf(rb *RoleBuilder) Role[factorsource.Id] {
	return Role[factorsource.Id]{
		Kind:             rb.kind,
		ThresholdFactors: rb.ThresholdFactors(),
		Threshold:        rb.threshold,
		OverrideFactors:  rb.OverrideFactors(),
	}
}
