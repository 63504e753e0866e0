// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package gateway models the Gateway analyzer: the external, read-mostly
// collaborator the engine queries by public-key hash to classify factor
// instances as taken, free, or already securified.
package gateway

import (
	"github.com/hdcore/keyengine/factorsource"
	"github.com/hdcore/keyengine/profile"
	"github.com/hdcore/keyengine/rules"
)

// ThirdPartyDepositPreferenceOnChain names profile.ThirdPartyDepositPreference
// as reported by on-chain state. It is a type alias, so the two names denote
// the same type and the compiler does not distinguish them.
type ThirdPartyDepositPreferenceOnChain = profile.ThirdPartyDepositPreference

// OnChainEntityState is what the ledger currently knows about an entity
// at an address.
type OnChainEntityState struct {
	Address                     profile.Address
	AccessControllerAddress     *profile.Address
	OwnerKeys                   []factorsource.PublicKey
	ThirdPartyDepositPreference ThirdPartyDepositPreferenceOnChain
}

// IsSecurified reports whether the on-chain state already has an access
// controller installed, i.e. the entity is Securified rather than Unsecured.
func (s OnChainEntityState) IsSecurified() bool {
	return s.AccessControllerAddress != nil
}

// ReadOnly is the query-only surface of the Gateway.
type ReadOnly interface {
	// IsKeyHashKnown reports whether hash is already associated with any
	// on-chain entity, used to classify a candidate instance as "taken".
	IsKeyHashKnown(hash profile.PublicKeyHash) (bool, error)

	// GetEntityAddressesOfByPublicKeyHashes resolves each hash to the set
	// of entity addresses it controls (an address may be controlled by
	// more than one key in a securified matrix).
	GetEntityAddressesOfByPublicKeyHashes(hashes []profile.PublicKeyHash) (map[profile.PublicKeyHash][]profile.Address, error)

	// GetOnChainEntity fetches the current on-chain state of address, or
	// ok=false if the address has never transacted.
	GetOnChainEntity(address profile.Address) (state OnChainEntityState, ok bool, err error)
}

// Writer is the write surface used by the securify flow.
type Writer interface {
	// SetSecurifiedEntity installs control as the access controller for
	// ownerAddress, the terminal step of upgrading an entity from
	// Unsecured to Securified.
	SetSecurifiedEntity(control rules.Matrix[factorsource.PublicKey], ownerAddress profile.Address) error
}

// Gateway is the full external collaborator surface.
type Gateway interface {
	ReadOnly
	Writer
}

// InstanceClassification is the Gateway analyzer's verdict for one
// candidate public-key hash.
type InstanceClassification uint8

const (
	ClassificationFree InstanceClassification = iota
	ClassificationTaken
	ClassificationSecurified
)

func (c InstanceClassification) String() string {
	switch c {
	case ClassificationFree:
		return "free"
	case ClassificationTaken:
		return "taken"
	default:
		return "securified"
	}
}

// Classify queries g for hash and reports which of the three states a
// candidate instance at that hash is in.
func Classify(g ReadOnly, hash profile.PublicKeyHash) (InstanceClassification, error) {
	known, err := g.IsKeyHashKnown(hash)
	if err != nil {
		return 0, err
	}
	if !known {
		return ClassificationFree, nil
	}
	addrs, err := g.GetEntityAddressesOfByPublicKeyHashes([]profile.PublicKeyHash{hash})
	if err != nil {
		return 0, err
	}
	for _, addr := range addrs[hash] {
		state, ok, err := g.GetOnChainEntity(addr)
		if err != nil {
			return 0, err
		}
		if ok && state.IsSecurified() {
			return ClassificationSecurified, nil
		}
	}
	return ClassificationTaken, nil
}
