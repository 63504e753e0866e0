// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package sigcollector implements the Signatures Collector: it drives the
// petition hierarchy across a pool of transactions using a host-provided
// signing interactor, friction-ordered like KeysCollector.
package sigcollector

import (
	"context"
	"time"

	"github.com/inconshreveable/log15"

	"github.com/hdcore/keyengine/factorsource"
	"github.com/hdcore/keyengine/metrics"
	"github.com/hdcore/keyengine/petition"
)

var log = log15.New("pkg", "sigcollector")

var (
	kindGroupsTotal = metrics.LazyLoad(func() metrics.CounterVecMeter {
		return metrics.CounterVec("sigcollector_kind_groups_total", []string{"kind"})
	})
	transactionOutcomesTotal = metrics.LazyLoad(func() metrics.CounterVecMeter {
		return metrics.CounterVec("sigcollector_transaction_outcomes_total", []string{"result"})
	})
	neglectedFactorSourcesTotal = metrics.LazyLoad(func() metrics.CounterVecMeter {
		return metrics.CounterVec("sigcollector_neglected_factor_sources_total", []string{"reason"})
	})
	runDurationMs = metrics.LazyLoad(func() metrics.HistogramVecMeter {
		return metrics.HistogramVec("sigcollector_run_duration_ms", []string{"result"}, metrics.BucketHTTPReqs)
	})
)

// Collector drives signing across a pool of per-transaction petitions.
type Collector struct {
	Strategy                         FinishEarlyStrategy
	GateRecoveryConfirmationMFARules bool
}

// New constructs a collector with the default early-finish strategy.
func New() *Collector {
	return &Collector{Strategy: Default()}
}

// Run drives the petition hierarchy to completion or exhaustion of every
// friction-ordered kind group.
func (c *Collector) Run(
	ctx context.Context,
	transactions []*petition.ForTransaction,
	kindOf func(factorsource.Id) (factorsource.Kind, bool),
	interactorFor InteractorProvider,
) (SignaturesOutcome, error) {
	start := time.Now()
	for {
		if c.shouldStop(transactions) {
			break
		}
		if ctx.Err() != nil {
			log.Warn("signing cancelled before next kind group")
			break
		}

		kind, fsids, ok := c.nextKindGroup(transactions, kindOf)
		if !ok {
			break
		}
		kindGroupsTotal().AddWithLabel(1, map[string]string{"kind": kind.String()})

		interactor, ok := interactorFor(kind)
		if !ok {
			log.Warn("no signing interactor for kind, sources neglected", "kind", kind)
			c.neglectAll(transactions, fsids, petition.ReasonFailure)
			continue
		}

		if err := c.runKindGroup(ctx, transactions, interactor, fsids); err != nil {
			return SignaturesOutcome{}, err
		}
	}

	out := c.outcome(transactions)
	result := "success"
	if !out.Successful() {
		result = "failed"
	}
	runDurationMs().ObserveWithLabels(float64(time.Since(start).Milliseconds()), map[string]string{"result": result})
	return out, nil
}

func (c *Collector) shouldStop(transactions []*petition.ForTransaction) bool {
	allValid := true
	anyInvalid := false
	for _, tx := range transactions {
		switch tx.Status(c.GateRecoveryConfirmationMFARules) {
		case petition.StatusFinishedSuccess:
		case petition.StatusFinishedFail:
			anyInvalid = true
			allValid = false
		default:
			allValid = false
		}
	}
	if allValid && c.Strategy.WhenAllTransactionsValid == FinishEarly {
		return true
	}
	if anyInvalid && c.Strategy.WhenSomeTransactionInvalid == FinishEarly {
		return true
	}
	return false
}

// nextKindGroup finds the hardest-friction kind among every still-pending
// candidate factor source across every transaction.
func (c *Collector) nextKindGroup(transactions []*petition.ForTransaction, kindOf func(factorsource.Id) (factorsource.Kind, bool)) (factorsource.Kind, []factorsource.Id, bool) {
	seen := make(map[factorsource.Id]bool)
	byKind := make(map[factorsource.Kind][]factorsource.Id)

	for _, tx := range transactions {
		if tx.Status(c.GateRecoveryConfirmationMFARules) != petition.StatusInProgress {
			continue
		}
		for _, pff := range tx.PendingPetitions() {
			for _, fsid := range pff.PendingFactorSourceIds() {
				if seen[fsid] {
					continue
				}
				seen[fsid] = true
				kind, ok := kindOf(fsid)
				if !ok {
					continue
				}
				byKind[kind] = append(byKind[kind], fsid)
			}
		}
	}

	if len(byKind) == 0 {
		return 0, nil, false
	}

	kinds := make([]factorsource.Kind, 0, len(byKind))
	for k := range byKind {
		kinds = append(kinds, k)
	}
	factorsource.SortByDecreasingFriction(kinds)
	best := kinds[0]
	return best, byKind[best], true
}

func (c *Collector) runKindGroup(ctx context.Context, transactions []*petition.ForTransaction, interactor Interactor, fsids []factorsource.Id) error {
	requests := make(map[factorsource.Id][]SignRequestItem, len(fsids))
	invalidIfNeglected := make(map[factorsource.Id][]petition.IntentHash, len(fsids))

	for _, fsid := range fsids {
		requests[fsid] = c.requestItemsFor(transactions, fsid)
		invalidIfNeglected[fsid] = c.invalidTransactionsIfNeglected(transactions, fsid)
	}

	if interactor.Poly != nil {
		outcomes, err := interactor.Poly.SignPoly(ctx, requests, invalidIfNeglected)
		if err != nil {
			log.Warn("poly-factor signing call failed, sources neglected", "error", err)
			c.neglectAll(transactions, fsids, petition.ReasonFailure)
			return nil
		}
		for _, fsid := range fsids {
			outcome, ok := outcomes[fsid]
			if !ok {
				log.Warn("poly-factor signing response omitted source, neglected", "factorSource", fsid)
				c.neglectOne(transactions, fsid, petition.ReasonFailure)
				continue
			}
			c.apply(transactions, fsid, outcome)
		}
		return nil
	}

	for _, fsid := range fsids {
		if ctx.Err() != nil {
			log.Warn("signing cancelled mid kind-group", "factorSource", fsid)
			c.neglectOne(transactions, fsid, petition.ReasonFailure)
			continue
		}
		outcome, err := interactor.Mono.SignMono(ctx, fsid, requests[fsid], invalidIfNeglected[fsid])
		if err != nil {
			log.Warn("mono-factor signing call failed, source neglected", "factorSource", fsid, "error", err)
			c.neglectOne(transactions, fsid, petition.ReasonFailure)
			continue
		}
		c.apply(transactions, fsid, outcome)
	}
	return nil
}

func (c *Collector) requestItemsFor(transactions []*petition.ForTransaction, fsid factorsource.Id) []SignRequestItem {
	var out []SignRequestItem
	for _, tx := range transactions {
		if tx.Status(c.GateRecoveryConfirmationMFARules) != petition.StatusInProgress {
			continue
		}
		for _, pff := range tx.PendingPetitions() {
			for _, inst := range pff.PendingCandidates() {
				if inst.FactorSourceId.Equal(fsid) {
					out = append(out, SignRequestItem{IntentHash: tx.IntentHash, Instance: inst})
				}
			}
		}
	}
	return out
}

// invalidTransactionsIfNeglected computes, for fsid, the set of
// transaction hashes that would flip to Finished(Fail) if fsid produced
// no signatures.
func (c *Collector) invalidTransactionsIfNeglected(transactions []*petition.ForTransaction, fsid factorsource.Id) []petition.IntentHash {
	var out []petition.IntentHash
	for _, tx := range transactions {
		if tx.WouldBeInvalidIfNeglected(fsid, c.GateRecoveryConfirmationMFARules) {
			out = append(out, tx.IntentHash)
		}
	}
	return out
}

func (c *Collector) apply(transactions []*petition.ForTransaction, fsid factorsource.Id, outcome SignWithFactorsOutcome) {
	switch outcome.Kind {
	case OutcomeSigned:
		bySig := make(map[petition.IntentHash][]petition.HDSignature)
		for _, sig := range outcome.Signed {
			bySig[sig.Input.IntentHash] = append(bySig[sig.Input.IntentHash], sig)
		}
		for _, tx := range transactions {
			sigs, ok := bySig[tx.IntentHash]
			if !ok {
				continue
			}
			for _, pff := range tx.PendingPetitions() {
				for _, sig := range sigs {
					if pff.HasCandidateInstance(sig.Input.Instance) {
						if err := pff.AddSignature(sig); err != nil {
							log.Warn("dropping signature that does not match any pending petition", "error", err)
						}
					}
				}
			}
		}
	default:
		c.neglectOne(transactions, fsid, outcome.Neglected)
	}
}

func (c *Collector) neglectAll(transactions []*petition.ForTransaction, fsids []factorsource.Id, reason petition.NeglectReason) {
	for _, fsid := range fsids {
		c.neglectOne(transactions, fsid, reason)
	}
}

func (c *Collector) neglectOne(transactions []*petition.ForTransaction, fsid factorsource.Id, reason petition.NeglectReason) {
	for _, tx := range transactions {
		for _, e := range tx.ByEntityAddr {
			e.NeglectFactorSource(fsid, reason)
		}
	}
}

func (c *Collector) outcome(transactions []*petition.ForTransaction) SignaturesOutcome {
	out := SignaturesOutcome{
		SuccessfulTransactions: make(map[petition.IntentHash][]petition.HDSignature),
		FailedTransactions:     make(map[petition.IntentHash]struct{}),
		NeglectedFactorSources: make(map[petition.NeglectedFactor]struct{}),
	}
	for _, tx := range transactions {
		switch tx.Status(c.GateRecoveryConfirmationMFARules) {
		case petition.StatusFinishedSuccess:
			out.SuccessfulTransactions[tx.IntentHash] = tx.AllSignatures()
			transactionOutcomesTotal().AddWithLabel(1, map[string]string{"result": "success"})
		default:
			out.FailedTransactions[tx.IntentHash] = struct{}{}
			transactionOutcomesTotal().AddWithLabel(1, map[string]string{"result": "failed"})
		}
		for _, n := range tx.AllNeglected() {
			out.NeglectedFactorSources[n] = struct{}{}
			neglectedFactorSourcesTotal().AddWithLabel(1, map[string]string{"reason": n.Reason.String()})
		}
	}
	return out
}
