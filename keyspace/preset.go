// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package keyspace

// DerivationPreset is one of the four (EntityKind, KeySpace) combinations
// that the provider and cache operate over; KeyKind is always
// TransactionSigning.
type DerivationPreset uint8

const (
	PresetAccountVeci DerivationPreset = iota
	PresetAccountMfa
	PresetIdentityVeci
	PresetIdentityMfa
)

// AllDerivationPresets lists every preset in a stable order, used whenever
// the engine needs to top up the other presets on the same network.
var AllDerivationPresets = []DerivationPreset{
	PresetAccountVeci,
	PresetAccountMfa,
	PresetIdentityVeci,
	PresetIdentityMfa,
}

func (p DerivationPreset) String() string {
	switch p {
	case PresetAccountVeci:
		return "accountVeci"
	case PresetAccountMfa:
		return "accountMfa"
	case PresetIdentityVeci:
		return "identityVeci"
	default:
		return "identityMfa"
	}
}

// EntityKind is the entity kind this preset derives keys for.
func (p DerivationPreset) EntityKind() EntityKind {
	if p == PresetAccountVeci || p == PresetAccountMfa {
		return EntityKindAccount
	}
	return EntityKindIdentity
}

// KeySpace is the key space this preset derives keys into.
func (p DerivationPreset) KeySpace() KeySpace {
	if p == PresetAccountVeci || p == PresetIdentityVeci {
		return KeySpaceUnsecurified
	}
	return KeySpaceSecurified
}

// KeyKind is always TransactionSigning for every preset.
func (p DerivationPreset) KeyKind() KeyKind {
	return KeyKindTransactionSigning
}

// IndexAgnosticPath re-attaches a network to this preset.
func (p DerivationPreset) IndexAgnosticPath(network NetworkId) IndexAgnosticPath {
	return IndexAgnosticPath{
		Network:    network,
		EntityKind: p.EntityKind(),
		KeyKind:    p.KeyKind(),
		Space:      p.KeySpace(),
	}
}

// IsVeci reports whether this preset derives the unsecurified,
// entity-creating key space (vs. the securified MFA space).
func (p DerivationPreset) IsVeci() bool {
	return p.KeySpace() == KeySpaceUnsecurified
}
