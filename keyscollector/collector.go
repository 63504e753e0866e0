// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package keyscollector implements the KeysCollector: it orchestrates
// derivation across many factor sources via a host-provided interactor,
// grouping by kind in friction order.
package keyscollector

import (
	"context"

	"github.com/inconshreveable/log15"

	"github.com/hdcore/keyengine/errs"
	"github.com/hdcore/keyengine/factorsource"
	"github.com/hdcore/keyengine/hdfi"
	"github.com/hdcore/keyengine/keyspace"
)

var log = log15.New("pkg", "keyscollector")

// Collector is the KeysCollector. It holds no state between
// calls; every Collect invocation is independent.
type Collector struct{}

// New creates a KeysCollector.
func New() *Collector {
	return &Collector{}
}

// Collect derives instances at the requested paths, grouping factor
// sources by kind and iterating kinds in decreasing friction order.
// kindOf resolves a requested factor source's
// kind; interactorFor resolves the host interactor for a kind. The
// returned keyring for each source contains whatever that source's
// interactor call produced before ctx was cancelled or before the call
// failed — a failed or cancelled source is simply absent, never fatal.
func (c *Collector) Collect(
	ctx context.Context,
	kindOf func(factorsource.Id) (factorsource.Kind, bool),
	requested map[factorsource.Id][]keyspace.DerivationPath,
	interactorFor InteractorProvider,
) (map[factorsource.Id]hdfi.Set, error) {
	groups := make(map[factorsource.Kind][]factorsource.Id)
	for fsid := range requested {
		kind, ok := kindOf(fsid)
		if !ok {
			return nil, errs.NewFatal(errs.FactorSourceDiscrepancy, "requested factor source %s has no known kind", fsid)
		}
		groups[kind] = append(groups[kind], fsid)
	}

	kinds := make([]factorsource.Kind, 0, len(groups))
	for kind := range groups {
		kinds = append(kinds, kind)
	}
	factorsource.SortByDecreasingFriction(kinds)

	out := make(map[factorsource.Id]hdfi.Set, len(requested))

	for _, kind := range kinds {
		if ctx.Err() != nil {
			log.Warn("derivation cancelled before kind group", "kind", kind)
			break
		}

		interactor, ok := interactorFor(kind)
		if !ok {
			log.Warn("no interactor for kind, sources neglected", "kind", kind)
			continue
		}

		fsids := groups[kind]
		if err := c.collectKindGroup(ctx, interactor, fsids, requested, out); err != nil {
			return nil, err
		}
	}

	return out, nil
}

func (c *Collector) collectKindGroup(
	ctx context.Context,
	interactor Interactor,
	fsids []factorsource.Id,
	requested map[factorsource.Id][]keyspace.DerivationPath,
	out map[factorsource.Id]hdfi.Set,
) error {
	if interactor.Poly != nil {
		polyRequests := make(map[factorsource.Id][]keyspace.DerivationPath, len(fsids))
		for _, fsid := range fsids {
			polyRequests[fsid] = requested[fsid]
		}
		results, err := interactor.Poly.DerivePoly(ctx, polyRequests)
		if err != nil {
			log.Warn("poly-factor derivation call failed, sources neglected", "error", err)
			return nil
		}
		for fsid, instances := range results {
			if err := addToKeyring(out, fsid, instances); err != nil {
				return err
			}
		}
		return nil
	}

	for _, fsid := range fsids {
		if ctx.Err() != nil {
			log.Warn("derivation cancelled mid kind-group", "factorSource", fsid)
			return nil
		}
		instances, err := interactor.Mono.DeriveMono(ctx, fsid, requested[fsid])
		if err != nil {
			log.Warn("mono-factor derivation call failed, source neglected", "factorSource", fsid, "error", err)
			continue
		}
		if err := addToKeyring(out, fsid, instances); err != nil {
			return err
		}
	}
	return nil
}

// addToKeyring stores instances into fsid's keyring, enforcing that every
// instance carries the expected factor source id.
// The keyring is an hdfi.Set keyed by public key: an instance whose public
// key is already present replaces the earlier entry, and no error is
// returned for the duplicate.
func addToKeyring(out map[factorsource.Id]hdfi.Set, fsid factorsource.Id, instances []hdfi.HDFI) error {
	ring, ok := out[fsid]
	if !ok {
		ring = hdfi.NewSet()
		out[fsid] = ring
	}
	for _, inst := range instances {
		if !inst.FactorSourceId.Equal(fsid) {
			return errs.NewFatal(errs.FactorSourceDiscrepancy, "interactor returned instance %s for factor source %s", inst, fsid)
		}
		ring.Add(inst)
	}
	return nil
}
