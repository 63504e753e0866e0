// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package rules

// Role is the built, immutable counterpart of RoleBuilder, generic over
// the factor element type (ids, full sources, or instances). T must
// support equality via ==, which
// holds for factorsource.Id, and for hdfi.HDFI when its PublicKey field
// is compared by value.
type Role[T comparable] struct {
	Kind             RoleKind
	ThresholdFactors []T
	Threshold        uint8
	OverrideFactors  []T
}

// Matrix is the built three-role access-control structure.
type Matrix[T comparable] struct {
	Primary                      Role[T]
	Recovery                     Role[T]
	Confirmation                 Role[T]
	NumberOfDaysUntilAutoConfirm uint16
}

// AllFactors returns every factor element appearing anywhere in the
// matrix, with duplicates (the same element may appear in more than one
// role of the same matrix).
func (m Matrix[T]) AllFactors() []T {
	var out []T
	for _, role := range []Role[T]{m.Primary, m.Recovery, m.Confirmation} {
		out = append(out, role.ThresholdFactors...)
		out = append(out, role.OverrideFactors...)
	}
	return out
}

// MapMatrix applies f to every factor element of the matrix, returning a
// matrix of the mapped type. Used to turn a Matrix[factorsource.Id] into a
// Matrix[hdfi.HDFI] once instances have been derived.
func MapMatrix[T comparable, U comparable](m Matrix[T], f func(T) (U, error)) (Matrix[U], error) {
	mapRole := func(r Role[T]) (Role[U], error) {
		out := Role[U]{Kind: r.Kind, Threshold: r.Threshold}
		for _, x := range r.ThresholdFactors {
			mapped, err := f(x)
			if err != nil {
				return Role[U]{}, err
			}
			out.ThresholdFactors = append(out.ThresholdFactors, mapped)
		}
		for _, x := range r.OverrideFactors {
			mapped, err := f(x)
			if err != nil {
				return Role[U]{}, err
			}
			out.OverrideFactors = append(out.OverrideFactors, mapped)
		}
		return out, nil
	}

	primary, err := mapRole(m.Primary)
	if err != nil {
		return Matrix[U]{}, err
	}
	recovery, err := mapRole(m.Recovery)
	if err != nil {
		return Matrix[U]{}, err
	}
	confirmation, err := mapRole(m.Confirmation)
	if err != nil {
		return Matrix[U]{}, err
	}
	return Matrix[U]{
		Primary:                      primary,
		Recovery:                     recovery,
		Confirmation:                 confirmation,
		NumberOfDaysUntilAutoConfirm: m.NumberOfDaysUntilAutoConfirm,
	}, nil
}
