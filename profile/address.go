// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package profile models the host wallet's Profile: its factor sources,
// accounts, and personas, plus the entity/address/security-state types
// those collections are built from.
package profile

import (
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/blake2b"

	"github.com/hdcore/keyengine/factorsource"
	"github.com/hdcore/keyengine/keyspace"
)

// PublicKeyHashLen is the length, in bytes, of a public-key hash used to
// derive an on-chain address.
const PublicKeyHashLen = 29

// PublicKeyHash identifies an entity's controlling public key by hash,
// the same quantity the Gateway analyzer classifies on-chain state by.
type PublicKeyHash [PublicKeyHashLen]byte

// HashPublicKey derives a PublicKeyHash from a compressed public key.
func HashPublicKey(pub factorsource.PublicKey) PublicKeyHash {
	h := blake2b.Sum256(pub[:])
	var out PublicKeyHash
	copy(out[:], h[:PublicKeyHashLen])
	return out
}

func (h PublicKeyHash) String() string {
	return hex.EncodeToString(h[:])
}

// Address is a ledger entity's on-chain address, derived from a public
// key hash and the network it lives on.
type Address struct {
	Network       keyspace.NetworkId
	PublicKeyHash PublicKeyHash
}

// NewAddress derives an address from a network and public key.
func NewAddress(network keyspace.NetworkId, pub factorsource.PublicKey) Address {
	return Address{Network: network, PublicKeyHash: HashPublicKey(pub)}
}

func (a Address) String() string {
	return fmt.Sprintf("%s_%s", a.Network, a.PublicKeyHash)
}

// Equal reports whether two addresses denote the same entity.
func (a Address) Equal(other Address) bool {
	return a.Network == other.Network && a.PublicKeyHash == other.PublicKeyHash
}
