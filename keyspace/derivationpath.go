// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package keyspace

import "fmt"

// DerivationPath is the full (network, entity kind, key kind, index) tuple
// that addresses one derived key.
type DerivationPath struct {
	Network    NetworkId
	EntityKind EntityKind
	KeyKind    KeyKind
	Index      HDPathComponent
}

// NewDerivationPath constructs a path. AuthenticationSigning keys are
// never derived in the Unsecurified space.
func NewDerivationPath(network NetworkId, entityKind EntityKind, keyKind KeyKind, index HDPathComponent) (DerivationPath, error) {
	if keyKind == KeyKindAuthenticationSigning && index.Space() == KeySpaceUnsecurified {
		return DerivationPath{}, fatalKeyKindDiscrepancy(keyKind, index.Space())
	}
	return DerivationPath{Network: network, EntityKind: entityKind, KeyKind: keyKind, Index: index}, nil
}

// IndexAgnosticPath projects away the index, keeping the key space tag.
func (p DerivationPath) IndexAgnosticPath() IndexAgnosticPath {
	return IndexAgnosticPath{
		Network:    p.Network,
		EntityKind: p.EntityKind,
		KeyKind:    p.KeyKind,
		Space:      p.Index.Space(),
	}
}

// String renders "m/44H/1022H/<networkH>/<525|618>H/1460H/<index>{H|S}".
func (p DerivationPath) String() string {
	network, _ := NewHDPathComponent(uint32(p.Network), KeySpaceUnsecurified)
	return fmt.Sprintf("m/44H/1022H/%sH/%dH/%dH/%s",
		trimSuffix(network.String()),
		p.EntityKind.cap26CoinType(),
		p.KeyKind.cap26Discriminant(),
		p.Index.String(),
	)
}

func trimSuffix(s string) string {
	return s[:len(s)-1]
}

// IndexAgnosticPath is a DerivationPath minus its index.
type IndexAgnosticPath struct {
	Network    NetworkId
	EntityKind EntityKind
	KeyKind    KeyKind
	Space      KeySpace
}

// DerivationPreset projects away the network too, leaving one of the four
// fixed (EntityKind, KeySpace) presets (KeyKind is always TransactionSigning).
func (p IndexAgnosticPath) DerivationPreset() (DerivationPreset, error) {
	if p.KeyKind != KeyKindTransactionSigning {
		return 0, fatalKeyKindDiscrepancy(p.KeyKind, p.Space)
	}
	switch {
	case p.EntityKind == EntityKindAccount && p.Space == KeySpaceUnsecurified:
		return PresetAccountVeci, nil
	case p.EntityKind == EntityKindAccount && p.Space == KeySpaceSecurified:
		return PresetAccountMfa, nil
	case p.EntityKind == EntityKindIdentity && p.Space == KeySpaceUnsecurified:
		return PresetIdentityVeci, nil
	default:
		return PresetIdentityMfa, nil
	}
}

// WithIndex re-attaches an index, recovering a full DerivationPath. The
// index must live in this path's key space.
func (p IndexAgnosticPath) WithIndex(index HDPathComponent) (DerivationPath, error) {
	if index.Space() != p.Space {
		return DerivationPath{}, fatalKeySpaceDiscrepancy(p.Space, index.Space())
	}
	return NewDerivationPath(p.Network, p.EntityKind, p.KeyKind, index)
}
