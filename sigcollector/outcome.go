// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package sigcollector

import "github.com/hdcore/keyengine/petition"

// SignaturesOutcome is the Signatures Collector's final result.
type SignaturesOutcome struct {
	SuccessfulTransactions map[petition.IntentHash][]petition.HDSignature
	FailedTransactions     map[petition.IntentHash]struct{}
	NeglectedFactorSources map[petition.NeglectedFactor]struct{}
}

// Successful reports whether every transaction in the pool succeeded.
func (o SignaturesOutcome) Successful() bool {
	return len(o.FailedTransactions) == 0
}
