// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package gateway

import (
	"sync"

	"github.com/hdcore/keyengine/factorsource"
	"github.com/hdcore/keyengine/profile"
	"github.com/hdcore/keyengine/rules"
)

// InMemory is a test Gateway backed by a plain map: enough on-chain
// bookkeeping for scenario tests to exercise recovery-scan
// classification and the securify write path without a real ledger node.
type InMemory struct {
	mu       sync.RWMutex
	entities map[profile.Address]OnChainEntityState
	byHash   map[profile.PublicKeyHash][]profile.Address
}

// NewInMemory creates an empty test gateway.
func NewInMemory() *InMemory {
	return &InMemory{
		entities: make(map[profile.Address]OnChainEntityState),
		byHash:   make(map[profile.PublicKeyHash][]profile.Address),
	}
}

// Seed registers an entity as already known on-chain, for test setup.
func (g *InMemory) Seed(state OnChainEntityState) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.entities[state.Address] = state
	for _, pub := range state.OwnerKeys {
		hash := profile.HashPublicKey(pub)
		g.byHash[hash] = appendAddressIfMissing(g.byHash[hash], state.Address)
	}
}

func appendAddressIfMissing(addrs []profile.Address, addr profile.Address) []profile.Address {
	for _, a := range addrs {
		if a.Equal(addr) {
			return addrs
		}
	}
	return append(addrs, addr)
}

func (g *InMemory) IsKeyHashKnown(hash profile.PublicKeyHash) (bool, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.byHash[hash]
	return ok, nil
}

func (g *InMemory) GetEntityAddressesOfByPublicKeyHashes(hashes []profile.PublicKeyHash) (map[profile.PublicKeyHash][]profile.Address, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make(map[profile.PublicKeyHash][]profile.Address, len(hashes))
	for _, h := range hashes {
		if addrs, ok := g.byHash[h]; ok {
			out[h] = append([]profile.Address(nil), addrs...)
		}
	}
	return out, nil
}

func (g *InMemory) GetOnChainEntity(address profile.Address) (OnChainEntityState, bool, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	state, ok := g.entities[address]
	return state, ok, nil
}

func (g *InMemory) SetSecurifiedEntity(control rules.Matrix[factorsource.PublicKey], ownerAddress profile.Address) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	state := g.entities[ownerAddress]
	state.Address = ownerAddress
	state.AccessControllerAddress = &ownerAddress
	state.OwnerKeys = control.AllFactors()
	g.entities[ownerAddress] = state

	for _, pub := range state.OwnerKeys {
		hash := profile.HashPublicKey(pub)
		g.byHash[hash] = appendAddressIfMissing(g.byHash[hash], ownerAddress)
	}
	return nil
}
