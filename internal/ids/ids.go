// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package ids gives test fixtures a reproducible, process-wide monotonic
// id stepper.
package ids

import "sync/atomic"

// Stepper hands out strictly increasing uint64 ids starting from 0.
// Production code has no business holding one of these directly; it
// exists so deterministic test fixtures (factor source ids, entity
// addresses) don't need a cryptographic RNG to stay reproducible.
type Stepper struct {
	next uint64
}

// NewStepper returns a stepper whose first Next() call yields 0.
func NewStepper() *Stepper {
	return &Stepper{}
}

// Next returns the next id in the sequence.
func (s *Stepper) Next() uint64 {
	return atomic.AddUint64(&s.next, 1) - 1
}

// Reset rewinds the stepper to 0, for test setup between independent
// scenarios that each expect a fresh, reproducible sequence.
func (s *Stepper) Reset() {
	atomic.StoreUint64(&s.next, 0)
}
