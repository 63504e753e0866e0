// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package profile

import (
	"github.com/hdcore/keyengine/errs"
	"github.com/hdcore/keyengine/hdfi"
	"github.com/hdcore/keyengine/keyspace"
	"github.com/hdcore/keyengine/rules"
)

// SecurityStateKind tags which variant of EntitySecurityState an entity
// is in.
type SecurityStateKind uint8

const (
	SecurityStateUnsecured SecurityStateKind = iota
	SecurityStateSecurified
)

// SecurifiedEntityControl bundles a securified entity's access-control
// matrix, its on-chain access-controller address, and an optional
// remembered VECI kept around for potential un-securify flows.
type SecurifiedEntityControl struct {
	Matrix                  rules.Matrix[hdfi.HDFI]
	AccessControllerAddress Address
	RememberedVeci          *hdfi.HDFI
}

// SecurityState is an entity's current control state: either an
// Unsecured VECI, or a Securified matrix.
type SecurityState struct {
	Kind       SecurityStateKind
	Veci       hdfi.HDFI
	Securified SecurifiedEntityControl
}

// Unsecured wraps a VECI into an Unsecured security state.
func Unsecured(veci hdfi.HDFI) SecurityState {
	return SecurityState{Kind: SecurityStateUnsecured, Veci: veci}
}

// Securified wraps a matrix-of-instances into a Securified security state.
func Securified(control SecurifiedEntityControl) SecurityState {
	return SecurityState{Kind: SecurityStateSecurified, Securified: control}
}

// ThirdPartyDepositPreference controls whether an entity accepts deposits
// it did not explicitly request.
type ThirdPartyDepositPreference uint8

const (
	DepositsAcceptAll ThirdPartyDepositPreference = iota
	DepositsAcceptKnown
	DepositsDenyAll
)

// Entity is an Account or a Persona.
type Entity struct {
	DisplayName                 string
	Address                     Address
	SecurityState               SecurityState
	ThirdPartyDepositPreference *ThirdPartyDepositPreference
}

// NewUnsecuredEntity constructs an entity whose address is bound to its
// VECI's public key hash. A VECI lives in the unsecurified key space by
// definition.
func NewUnsecuredEntity(name string, network keyspace.NetworkId, veci hdfi.HDFI) (Entity, error) {
	if veci.Path.Index.Space() != keyspace.KeySpaceUnsecurified {
		return Entity{}, errs.NewSurface(errs.IndexSecurifiedExpectedUnsecurified, "veci %s is not in the unsecurified key space", veci)
	}
	addr := NewAddress(network, veci.PublicKey)
	return Entity{
		DisplayName:   name,
		Address:       addr,
		SecurityState: Unsecured(veci),
	}, nil
}

// Securify transitions an entity from Unsecured to Securified, checking
// that every instance in the matrix lives in the Securified key space.
func (e Entity) Securify(control SecurifiedEntityControl) (Entity, error) {
	for _, inst := range control.Matrix.AllFactors() {
		if inst.Path.Index.Space() != keyspace.KeySpaceSecurified {
			return Entity{}, errs.NewSurface(errs.IndexUnsecurifiedExpectedSecurified, "securify: instance %s is not in the securified key space", inst)
		}
	}
	e.SecurityState = Securified(control)
	return e, nil
}
