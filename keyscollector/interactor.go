// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package keyscollector

import (
	"context"

	"github.com/hdcore/keyengine/factorsource"
	"github.com/hdcore/keyengine/hdfi"
	"github.com/hdcore/keyengine/keyspace"
)

// PolyFactorInteractor derives keys for many factor sources in a single
// host call, e.g. several device-backed mnemonics loaded together.
type PolyFactorInteractor interface {
	DerivePoly(ctx context.Context, requests map[factorsource.Id][]keyspace.DerivationPath) (map[factorsource.Id][]hdfi.HDFI, error)
}

// MonoFactorInteractor derives keys for exactly one factor source per
// call.
type MonoFactorInteractor interface {
	DeriveMono(ctx context.Context, fsid factorsource.Id, paths []keyspace.DerivationPath) ([]hdfi.HDFI, error)
}

// Interactor is exactly one of Poly or Mono; the kind of the factor
// sources it was handed determines which variant the host provides.
type Interactor struct {
	Poly PolyFactorInteractor
	Mono MonoFactorInteractor
}

// InteractorProvider resolves the host interactor responsible for a given
// factor-source kind.
type InteractorProvider func(kind factorsource.Kind) (Interactor, bool)
