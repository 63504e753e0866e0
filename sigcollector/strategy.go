// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package sigcollector

import "github.com/hdcore/keyengine/config"

// EarlyFinishMode is one of the two independent knobs of
// SigningFinishEarlyStrategy.
type EarlyFinishMode uint8

const (
	Continue EarlyFinishMode = iota
	FinishEarly
)

// FinishEarlyStrategy controls whether the driving loop stops before
// exhausting every friction-ordered kind group.
type FinishEarlyStrategy struct {
	// WhenAllTransactionsValid: stop once every transaction is already
	// Finished(Success).
	WhenAllTransactionsValid EarlyFinishMode
	// WhenSomeTransactionInvalid: stop as soon as any transaction is
	// already Finished(Fail).
	WhenSomeTransactionInvalid EarlyFinishMode
}

// Default matches config.Engine's defaults: stop as soon as every
// transaction is valid, keep going after an individual failure so other
// transactions in the batch still get a chance to complete.
func Default() FinishEarlyStrategy {
	return FinishEarlyStrategy{
		WhenAllTransactionsValid:   FinishEarly,
		WhenSomeTransactionInvalid: Continue,
	}
}

func mode(finishEarly bool) EarlyFinishMode {
	if finishEarly {
		return FinishEarly
	}
	return Continue
}

// NewFromConfig builds a collector wired to the engine tunables: the two
// early-finish knobs and the recovery/confirmation MFA gate.
func NewFromConfig(cfg config.Engine) *Collector {
	return &Collector{
		Strategy: FinishEarlyStrategy{
			WhenAllTransactionsValid:   mode(cfg.SigningFinishEarlyOnAllValid),
			WhenSomeTransactionInvalid: mode(cfg.SigningFinishEarlyOnAnyInvalid),
		},
		GateRecoveryConfirmationMFARules: cfg.GateRecoveryConfirmationMFARules,
	}
}
