// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package rules

import (
	"encoding/json"
	"time"

	"github.com/hdcore/keyengine/factorsource"
)

// SecurityStructureMetadata carries the builder-assigned identity of a
// built structure.
type SecurityStructureMetadata struct {
	Id            string    `json:"id"`
	DisplayName   string    `json:"displayName"`
	CreatedOn     time.Time `json:"createdOn"`
	LastUpdatedOn time.Time `json:"lastUpdatedOn"`
}

// SecurityStructureOfFactorSourceIds is the one-shot output of
// MatrixBuilder.Build.
type SecurityStructureOfFactorSourceIds struct {
	Metadata SecurityStructureMetadata `json:"metadata"`
	Matrix   Matrix[factorsource.Id]   `json:"matrix"`
}

// securityStructureWire is the JSON-on-wire shape: camelCase metadata
// over a snake_case matrix_of_factors whose roles each carry their own
// "role" tag, as the stable wire format has it.
type securityStructureWire struct {
	Metadata SecurityStructureMetadata `json:"metadata"`
	Matrix   matrixWire                `json:"matrix_of_factors"`
}

type roleWire struct {
	Role             string            `json:"role"`
	Threshold        uint8             `json:"threshold"`
	ThresholdFactors []factorsource.Id `json:"threshold_factors"`
	OverrideFactors  []factorsource.Id `json:"override_factors"`
}

type matrixWire struct {
	Primary                      roleWire `json:"primary_role"`
	Recovery                     roleWire `json:"recovery_role"`
	Confirmation                 roleWire `json:"confirmation_role"`
	NumberOfDaysUntilAutoConfirm uint16   `json:"number_of_days_until_auto_confirm"`
}

// MarshalJSON renders the stable on-wire JSON shape.
func (s SecurityStructureOfFactorSourceIds) MarshalJSON() ([]byte, error) {
	return marshalWire(s)
}

func marshalWire(s SecurityStructureOfFactorSourceIds) ([]byte, error) {
	wire := securityStructureWire{
		Metadata: s.Metadata,
		Matrix: matrixWire{
			Primary:                      roleWireOf(s.Matrix.Primary),
			Recovery:                     roleWireOf(s.Matrix.Recovery),
			Confirmation:                 roleWireOf(s.Matrix.Confirmation),
			NumberOfDaysUntilAutoConfirm: s.Matrix.NumberOfDaysUntilAutoConfirm,
		},
	}
	return json.Marshal(wire)
}

// roleWireOf keeps empty lists non-nil so they serialize as [] rather
// than null, matching the wire fixture.
func roleWireOf(r Role[factorsource.Id]) roleWire {
	return roleWire{
		Role:             r.Kind.String(),
		Threshold:        r.Threshold,
		ThresholdFactors: append(make([]factorsource.Id, 0, len(r.ThresholdFactors)), r.ThresholdFactors...),
		OverrideFactors:  append(make([]factorsource.Id, 0, len(r.OverrideFactors)), r.OverrideFactors...),
	}
}

// UnmarshalJSON parses the wire shape back into a SecurityStructureOfFactorSourceIds.
func (s *SecurityStructureOfFactorSourceIds) UnmarshalJSON(data []byte) error {
	var wire securityStructureWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	s.Metadata = wire.Metadata
	s.Matrix = Matrix[factorsource.Id]{
		Primary:                      roleOfWire(RoleKindPrimary, wire.Matrix.Primary),
		Recovery:                     roleOfWire(RoleKindRecovery, wire.Matrix.Recovery),
		Confirmation:                 roleOfWire(RoleKindConfirmation, wire.Matrix.Confirmation),
		NumberOfDaysUntilAutoConfirm: wire.Matrix.NumberOfDaysUntilAutoConfirm,
	}
	return nil
}

func roleOfWire(kind RoleKind, w roleWire) Role[factorsource.Id] {
	return Role[factorsource.Id]{
		Kind:             kind,
		ThresholdFactors: w.ThresholdFactors,
		Threshold:        w.Threshold,
		OverrideFactors:  w.OverrideFactors,
	}
}

// Equal compares two structures ignoring metadata timestamps.
func (s SecurityStructureOfFactorSourceIds) Equal(other SecurityStructureOfFactorSourceIds) bool {
	if s.Metadata.Id != other.Metadata.Id || s.Metadata.DisplayName != other.Metadata.DisplayName {
		return false
	}
	return roleEqual(s.Matrix.Primary, other.Matrix.Primary) &&
		roleEqual(s.Matrix.Recovery, other.Matrix.Recovery) &&
		roleEqual(s.Matrix.Confirmation, other.Matrix.Confirmation) &&
		s.Matrix.NumberOfDaysUntilAutoConfirm == other.Matrix.NumberOfDaysUntilAutoConfirm
}

func roleEqual(a, b Role[factorsource.Id]) bool {
	if a.Threshold != b.Threshold || len(a.ThresholdFactors) != len(b.ThresholdFactors) || len(a.OverrideFactors) != len(b.OverrideFactors) {
		return false
	}
	for i := range a.ThresholdFactors {
		if !a.ThresholdFactors[i].Equal(b.ThresholdFactors[i]) {
			return false
		}
	}
	for i := range a.OverrideFactors {
		if !a.OverrideFactors[i].Equal(b.OverrideFactors[i]) {
			return false
		}
	}
	return true
}
