// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package keyspace

import (
	"fmt"

	"github.com/hdcore/keyengine/errs"
)

// U30Max is the largest value a u30 can hold: 2^30 - 1.
const U30Max uint32 = (1 << 30) - 1

// hardenedBase is the BIP32 offset that marks an index as hardened.
const hardenedBase uint32 = 1 << 31

// HDPathComponent is a u30 index tagged with the key space it belongs to.
// The source splits a 31-bit hardened range at 2^30; rather than re-deriving the tag from the raw
// value, the tag is carried alongside it so operations that would cross
// the boundary fail loudly instead of silently wrapping.
type HDPathComponent struct {
	space KeySpace
	value uint32
}

// NewHDPathComponent constructs a component, failing if value overflows u30.
func NewHDPathComponent(value uint32, space KeySpace) (HDPathComponent, error) {
	if value > U30Max {
		return HDPathComponent{}, errs.NewSurface(errs.Invalid30, "value %d exceeds 2^30-1", value)
	}
	return HDPathComponent{space: space, value: value}, nil
}

// BaseIndex returns the first (0) index of the given key space.
func BaseIndex(space KeySpace) HDPathComponent {
	return HDPathComponent{space: space, value: 0}
}

// Space reports which half of the hardened range this component lives in.
func (c HDPathComponent) Space() KeySpace { return c.space }

// Value is the local (space-relative) u30 index.
func (c HDPathComponent) Value() uint32 { return c.value }

// GlobalHardenedIndex returns the raw BIP32 hardened index on the wire:
// unsecurified values occupy [2^31, 2^31+2^30), securified values occupy
// [2^31+2^30, 2^32).
func (c HDPathComponent) GlobalHardenedIndex() uint32 {
	base := hardenedBase
	if c.space == KeySpaceSecurified {
		base += 1 << 30
	}
	return base + c.value
}

// AddOne returns the successor component, failing at the space boundary.
func (c HDPathComponent) AddOne() (HDPathComponent, error) {
	return c.AddN(1)
}

// AddN returns the component n steps ahead, failing if it would leave the u30 range.
func (c HDPathComponent) AddN(n uint32) (HDPathComponent, error) {
	sum := uint64(c.value) + uint64(n)
	if sum > uint64(U30Max) {
		return HDPathComponent{}, errs.NewSurface(errs.Invalid30, "%d + %d exceeds 2^30-1", c.value, n)
	}
	return HDPathComponent{space: c.space, value: uint32(sum)}, nil
}

// Less implements a total order: same-space components compare by value;
// Unsecurified sorts before Securified when spaces differ.
func (c HDPathComponent) Less(other HDPathComponent) bool {
	if c.space != other.space {
		return c.space < other.space
	}
	return c.value < other.value
}

// Equal reports whether two components denote the same space and value.
func (c HDPathComponent) Equal(other HDPathComponent) bool {
	return c.space == other.space && c.value == other.value
}

// String renders "<value>H" for Unsecurified or "<value>S" for Securified,
// the suffix used in the derivation path's wire form.
func (c HDPathComponent) String() string {
	suffix := "H"
	if c.space == KeySpaceSecurified {
		suffix = "S"
	}
	return fmt.Sprintf("%d%s", c.value, suffix)
}
