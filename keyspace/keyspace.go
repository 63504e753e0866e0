// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package keyspace models the typed hierarchical-deterministic path
// components used throughout the engine: networks, entity/key kinds, the
// split hardened index space, and the derivation-path/preset hierarchy
// built on top of them.
package keyspace

import "fmt"

// NetworkId identifies a ledger network. Values are the same small
// integers used on the wire by the reference implementation.
type NetworkId uint8

const (
	NetworkMainnet   NetworkId = 1
	NetworkStokenet  NetworkId = 2
	NetworkAdapanet  NetworkId = 10
	NetworkNebunet   NetworkId = 11
	NetworkKisharnet NetworkId = 12
	NetworkSimulator NetworkId = 242
)

func (n NetworkId) String() string {
	switch n {
	case NetworkMainnet:
		return "mainnet"
	case NetworkStokenet:
		return "stokenet"
	case NetworkAdapanet:
		return "adapanet"
	case NetworkNebunet:
		return "nebunet"
	case NetworkKisharnet:
		return "kisharnet"
	case NetworkSimulator:
		return "simulator"
	default:
		return fmt.Sprintf("network(%d)", uint8(n))
	}
}

// EntityKind is the kind of ledger entity a derived key controls.
type EntityKind uint8

const (
	EntityKindAccount EntityKind = iota
	EntityKindIdentity
)

func (k EntityKind) String() string {
	if k == EntityKindAccount {
		return "account"
	}
	return "identity"
}

// cap26CoinType is the BIP44-style "coin type" path segment for an entity kind.
func (k EntityKind) cap26CoinType() uint32 {
	if k == EntityKindAccount {
		return 525
	}
	return 618
}

// KeyKind is the purpose a derived key serves.
type KeyKind uint8

const (
	KeyKindTransactionSigning KeyKind = iota
	KeyKindAuthenticationSigning
)

func (k KeyKind) String() string {
	if k == KeyKindTransactionSigning {
		return "transactionSigning"
	}
	return "authenticationSigning"
}

func (k KeyKind) cap26Discriminant() uint32 {
	if k == KeyKindTransactionSigning {
		return 1460
	}
	return 1678
}

// KeySpace partitions the hardened index range in half: the low half is
// used for classic, single-factor ("unsecurified") entities; the high
// half is reserved for factor instances that back a securified entity's
// access-control matrix.
type KeySpace uint8

const (
	KeySpaceUnsecurified KeySpace = iota
	KeySpaceSecurified
)

func (s KeySpace) String() string {
	if s == KeySpaceUnsecurified {
		return "unsecurified"
	}
	return "securified"
}
