// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package profile

import (
	"sync"

	"github.com/hdcore/keyengine/errs"
	"github.com/hdcore/keyengine/factorsource"
	"github.com/hdcore/keyengine/keyspace"
)

// EntityKind distinguishes which of Profile's two collections an entity
// belongs to.
type EntityKind uint8

const (
	EntityKindAccount EntityKind = iota
	EntityKindPersona
)

func (k EntityKind) String() string {
	if k == EntityKindAccount {
		return "account"
	}
	return "persona"
}

// Profile is the host wallet's collection of known factor sources,
// accounts, and personas, plus the network currently in use. Lifetime: created at onboarding, mutated by add/update/
// delete operations, persisted by the host (outside this package).
type Profile struct {
	mu sync.RWMutex

	currentNetwork keyspace.NetworkId
	factorSources  []factorsource.Source
	accounts       map[Address]Entity
	personas       map[Address]Entity
}

// New creates an empty Profile for the given network.
func New(network keyspace.NetworkId) *Profile {
	return &Profile{
		currentNetwork: network,
		accounts:       make(map[Address]Entity),
		personas:       make(map[Address]Entity),
	}
}

// CurrentNetwork returns the network this profile currently operates on.
func (p *Profile) CurrentNetwork() keyspace.NetworkId {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.currentNetwork
}

// AddFactorSource registers a new factor source known to the host.
func (p *Profile) AddFactorSource(source factorsource.Source) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.factorSources = append(p.factorSources, source)
}

// FactorSources returns a defensive copy of the known factor sources.
func (p *Profile) FactorSources() []factorsource.Source {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]factorsource.Source(nil), p.factorSources...)
}

// KindOf resolves a factor source id's kind, satisfying
// rules.FactorSourceKindLookup.
func (p *Profile) KindOf(id factorsource.Id) (factorsource.Kind, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	for _, s := range p.factorSources {
		if s.Id.Equal(id) {
			return s.Kind, true
		}
	}
	return 0, false
}

// AddEntity inserts a new Account or Persona, failing with WrongNetwork if
// the entity's address belongs to a different network than the profile
// currently tracks.
func (p *Profile) AddEntity(kind EntityKind, e Entity) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if e.Address.Network != p.currentNetwork {
		return errs.NewSurface(errs.WrongNetwork, "entity network %s does not match profile network %s", e.Address.Network, p.currentNetwork)
	}
	if e.SecurityState.Kind == SecurityStateUnsecured {
		pathKind := e.SecurityState.Veci.Path.EntityKind
		if (kind == EntityKindAccount) != (pathKind == keyspace.EntityKindAccount) {
			return errs.NewFatal(errs.EntityKindDiscrepancy, "entity's veci was derived for %s but is being added as %s", pathKind, kind)
		}
	}
	if kind == EntityKindAccount {
		p.accounts[e.Address] = e
	} else {
		p.personas[e.Address] = e
	}
	return nil
}

// Entity looks up an account or persona by address.
func (p *Profile) Entity(addr Address) (Entity, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if e, ok := p.accounts[addr]; ok {
		return e, true
	}
	e, ok := p.personas[addr]
	return e, ok
}

// Accounts returns a defensive copy of every known account.
func (p *Profile) Accounts() []Entity {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return entityValues(p.accounts)
}

// Personas returns a defensive copy of every known persona.
func (p *Profile) Personas() []Entity {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return entityValues(p.personas)
}

func entityValues(m map[Address]Entity) []Entity {
	out := make([]Entity, 0, len(m))
	for _, e := range m {
		out = append(out, e)
	}
	return out
}

// RemoveEntity deletes an account or persona by address, reporting
// whether anything was removed.
func (p *Profile) RemoveEntity(addr Address) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.accounts[addr]; ok {
		delete(p.accounts, addr)
		return true
	}
	if _, ok := p.personas[addr]; ok {
		delete(p.personas, addr)
		return true
	}
	return false
}

// NextIndexFor implements nextindex.ProfileAnalyzer: it scans every
// entity of the preset's EntityKind/KeySpace and returns the highest
// index any of its factor instances uses for fsid, plus one.
func (p *Profile) NextIndexFor(preset keyspace.DerivationPreset, network keyspace.NetworkId, fsid factorsource.Id) (keyspace.HDPathComponent, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	entities := p.accounts
	if preset.EntityKind() == keyspace.EntityKindIdentity {
		entities = p.personas
	}

	var maxIdx keyspace.HDPathComponent
	found := false
	for _, e := range entities {
		if e.Address.Network != network {
			continue
		}
		for _, idx := range instanceIndicesFor(e, preset, fsid) {
			if !found || maxIdx.Less(idx) {
				maxIdx, found = idx, true
			}
		}
	}
	if !found {
		return keyspace.HDPathComponent{}, false
	}
	next, err := maxIdx.AddOne()
	if err != nil {
		return keyspace.HDPathComponent{}, false
	}
	return next, true
}

func instanceIndicesFor(e Entity, preset keyspace.DerivationPreset, fsid factorsource.Id) []keyspace.HDPathComponent {
	var out []keyspace.HDPathComponent
	switch e.SecurityState.Kind {
	case SecurityStateUnsecured:
		inst := e.SecurityState.Veci
		if inst.FactorSourceId.Equal(fsid) {
			if p, err := inst.IndexAgnosticPath().DerivationPreset(); err == nil && p == preset {
				out = append(out, inst.Path.Index)
			}
		}
	case SecurityStateSecurified:
		for _, inst := range e.SecurityState.Securified.Matrix.AllFactors() {
			if !inst.FactorSourceId.Equal(fsid) {
				continue
			}
			if p, err := inst.IndexAgnosticPath().DerivationPreset(); err == nil && p == preset {
				out = append(out, inst.Path.Index)
			}
		}
	}
	return out
}
