// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package factorsource models factor sources: the external secret-bearing
// devices or schemes that back derived key material.
package factorsource

import (
	"encoding/json"
	"fmt"
)

// Kind enumerates the seven factor-source kinds.
type Kind uint8

const (
	KindDevice Kind = iota
	KindLedger
	KindArculusCard
	KindOffDeviceMnemonic
	KindPassphrase
	KindTrustedContact
	KindSecurityQuestions
)

func (k Kind) String() string {
	switch k {
	case KindDevice:
		return "device"
	case KindLedger:
		return "ledgerHQHardwareWallet"
	case KindArculusCard:
		return "arculusCard"
	case KindOffDeviceMnemonic:
		return "offDeviceMnemonic"
	case KindPassphrase:
		return "passphrase"
	case KindTrustedContact:
		return "trustedContact"
	case KindSecurityQuestions:
		return "securityQuestions"
	default:
		return "unknown"
	}
}

// MarshalJSON renders the kind as its wire string name.
func (k Kind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// UnmarshalJSON parses the kind from its wire string name.
func (k *Kind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	for candidate := KindDevice; candidate <= KindSecurityQuestions; candidate++ {
		if candidate.String() == s {
			*k = candidate
			return nil
		}
	}
	return fmt.Errorf("factorsource: unknown kind %q", s)
}

// FrictionOrder is the fixed total order of factor-source kinds from
// hardest/most-tedious to easiest. KeysCollector and the Signatures Collector both iterate
// kinds in this decreasing-friction order.
var FrictionOrder = []Kind{
	KindSecurityQuestions,
	KindTrustedContact,
	KindOffDeviceMnemonic,
	KindPassphrase,
	KindArculusCard,
	KindLedger,
	KindDevice,
}

var frictionRank = func() map[Kind]int {
	m := make(map[Kind]int, len(FrictionOrder))
	for i, k := range FrictionOrder {
		m[k] = i
	}
	return m
}()

// FrictionRank returns this kind's position in FrictionOrder (0 = hardest).
func (k Kind) FrictionRank() int {
	return frictionRank[k]
}

// MoreTediousThan reports whether k has a higher friction rank than other,
// i.e. should be invoked before other in a friction-ordered run.
func (k Kind) MoreTediousThan(other Kind) bool {
	return k.FrictionRank() < other.FrictionRank()
}

// SortByDecreasingFriction sorts kinds hardest-first, in place.
func SortByDecreasingFriction(kinds []Kind) {
	for i := 1; i < len(kinds); i++ {
		for j := i; j > 0 && kinds[j].MoreTediousThan(kinds[j-1]); j-- {
			kinds[j], kinds[j-1] = kinds[j-1], kinds[j]
		}
	}
}
