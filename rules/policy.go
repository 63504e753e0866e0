// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package rules implements the security-structure builder: an
// incremental, validated builder that assembles the three-role
// (Primary / Recovery / Confirmation) access-control matrix from factor
// sources, enforcing which factor-source kinds may appear in which role
// list.
package rules

import "github.com/hdcore/keyengine/factorsource"

// RoleKind is one of the three roles of a security structure.
type RoleKind uint8

const (
	RoleKindPrimary RoleKind = iota
	RoleKindRecovery
	RoleKindConfirmation
)

func (k RoleKind) String() string {
	switch k {
	case RoleKindPrimary:
		return "primary"
	case RoleKindRecovery:
		return "recovery"
	default:
		return "confirmation"
	}
}

// RoleListKind names one of the four lists the builder accepts factor
// sources into.
type RoleListKind uint8

const (
	PrimaryThreshold RoleListKind = iota
	PrimaryOverride
	RecoveryOverride
	ConfirmationOverride
)

func (l RoleListKind) Role() RoleKind {
	switch l {
	case PrimaryThreshold, PrimaryOverride:
		return RoleKindPrimary
	case RecoveryOverride:
		return RoleKindRecovery
	default:
		return RoleKindConfirmation
	}
}

// DisallowedReason explains why a candidate factor source kind cannot be
// added to a role list.
type DisallowedReason uint8

const (
	ReasonKindNotAdmissible DisallowedReason = iota
	ReasonDuplicateFactorSource
	ReasonDeviceLimitExceeded
	ReasonPassphraseNeedsCompanion
)

func (r DisallowedReason) String() string {
	switch r {
	case ReasonKindNotAdmissible:
		return "kind not admissible for this role list"
	case ReasonDuplicateFactorSource:
		return "factor source already present in this structure"
	case ReasonDeviceLimitExceeded:
		return "at most one device factor source is allowed in the primary threshold list"
	case ReasonPassphraseNeedsCompanion:
		return "a passphrase factor source must be paired with another threshold factor"
	default:
		return "disallowed"
	}
}

// admissibility is the kind-admissibility table: which factor-source
// kinds may appear in which role list.
var admissibility = map[RoleListKind]map[factorsource.Kind]bool{
	PrimaryThreshold: {
		factorsource.KindDevice:            true,
		factorsource.KindLedger:            true,
		factorsource.KindArculusCard:       true,
		factorsource.KindPassphrase:        true,
		factorsource.KindOffDeviceMnemonic: true,
		factorsource.KindTrustedContact:    false,
		factorsource.KindSecurityQuestions: false,
	},
	PrimaryOverride: {
		factorsource.KindDevice:            false,
		factorsource.KindLedger:            true,
		factorsource.KindArculusCard:       true,
		factorsource.KindPassphrase:        false,
		factorsource.KindOffDeviceMnemonic: true,
		factorsource.KindTrustedContact:    false,
		factorsource.KindSecurityQuestions: false,
	},
	RecoveryOverride: {
		factorsource.KindDevice:            true,
		factorsource.KindLedger:            true,
		factorsource.KindArculusCard:       true,
		factorsource.KindPassphrase:        false,
		factorsource.KindOffDeviceMnemonic: true,
		factorsource.KindTrustedContact:    true,
		factorsource.KindSecurityQuestions: false,
	},
	ConfirmationOverride: {
		factorsource.KindDevice:            true,
		factorsource.KindLedger:            true,
		factorsource.KindArculusCard:       true,
		factorsource.KindPassphrase:        true,
		factorsource.KindOffDeviceMnemonic: true,
		factorsource.KindTrustedContact:    false,
		factorsource.KindSecurityQuestions: true,
	},
}

// IsKindAdmissible is the pure predicate backing
// validation_for_addition_of_factor_source_of_kind_to_{role_list}.
func IsKindAdmissible(list RoleListKind, kind factorsource.Kind) bool {
	return admissibility[list][kind]
}
