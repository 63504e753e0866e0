// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package fiprovider

import (
	"github.com/hdcore/keyengine/factorsource"
	"github.com/hdcore/keyengine/gateway"
	"github.com/hdcore/keyengine/hdfi"
	"github.com/hdcore/keyengine/rules"
)

// CommitSecurifyResults is the terminal step of the securify flow
// ForSecurifyEntities feeds into: each entity's instance matrix is
// reduced to the public keys the Gateway's write surface actually wants
// and installed as that entity's access controller.
func CommitSecurifyResults(g gateway.Writer, results []SecurifiedEntityResult) error {
	for _, result := range results {
		publicKeys, err := rules.MapMatrix(result.Control, func(inst hdfi.HDFI) (factorsource.PublicKey, error) {
			return inst.PublicKey, nil
		})
		if err != nil {
			return err
		}
		if err := g.SetSecurifiedEntity(publicKeys, result.Entity.Address); err != nil {
			return err
		}
	}
	return nil
}
