// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package keyspace

import "github.com/hdcore/keyengine/errs"

func fatalKeyKindDiscrepancy(keyKind KeyKind, space KeySpace) *errs.Fatal {
	return errs.NewFatal(errs.KeyKindDiscrepancy,
		"authentication-signing keys are never derived in the unsecurified space (got keyKind=%s space=%s)",
		keyKind, space)
}

func fatalKeySpaceDiscrepancy(want, got KeySpace) *errs.Fatal {
	return errs.NewFatal(errs.KeySpaceDiscrepancy, "expected key space %s, got %s", want, got)
}
