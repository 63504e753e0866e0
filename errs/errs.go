// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package errs classifies the error taxonomy of the key-management engine
// into two shapes: Surface errors, which every caller is
// expected to handle or display, and Fatal errors, which indicate a
// programmer mistake (a derived instance with the wrong factor source id,
// a path built for the wrong key space) rather than a recoverable runtime
// condition.
package errs

import "fmt"

// Kind names one row of the error taxonomy table.
type Kind string

const (
	AlreadyBuilt                        Kind = "AlreadyBuilt"
	MatrixBuilderRwLockPoisoned         Kind = "MatrixBuilderRwLockPoisoned"
	IndexUnsecurifiedExpectedSecurified Kind = "IndexUnsecurifiedExpectedSecurified"
	IndexSecurifiedExpectedUnsecurified Kind = "IndexSecurifiedExpectedUnsecurified"
	FactorSourceDiscrepancy             Kind = "FactorSourceDiscrepancy"
	EntityKindDiscrepancy               Kind = "EntityKindDiscrepancy"
	KeySpaceDiscrepancy                 Kind = "KeySpaceDiscrepancy"
	KeyKindDiscrepancy                  Kind = "KeyKindDiscrepancy"
	NetworkDiscrepancy                  Kind = "NetworkDiscrepancy"
	CacheAlreadyContainsFactorInstance  Kind = "CacheAlreadyContainsFactorInstance"
	KeysCacheUnknownKey                 Kind = "KeysCacheUnknownKey"
	KeysCacheEmptyForKey                Kind = "KeysCacheEmptyForKey"
	FactorInstancesDoesNotSatisfy       Kind = "FactorInstancesDoesNotSatisfyDerivationRequests"
	MissingFactorMappingIntoRole        Kind = "MissingFactorMappingInstancesIntoRole"
	EmptyCollection                     Kind = "EmptyCollection"
	WrongNetwork                        Kind = "WrongNetwork"
	Invalid30                           Kind = "Invalid30"
	MalformedFactorSourceId             Kind = "MalformedFactorSourceId"
	BuildError                          Kind = "BuildError"
)

// Surface is an error the caller is expected to see and typically
// translate to a host-facing message. None of these are recovered
// internally by the provider or collector.
type Surface struct {
	Kind  Kind
	Cause error
	Msg   string
}

func (e *Surface) Error() string {
	if e.Msg != "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Kind, e.Cause)
	}
	return string(e.Kind)
}

func (e *Surface) Unwrap() error { return e.Cause }

// NewSurface constructs a Surface error with a formatted message.
func NewSurface(kind Kind, format string, args ...interface{}) *Surface {
	return &Surface{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// WrapSurface constructs a Surface error around a lower-level cause.
func WrapSurface(kind Kind, cause error) *Surface {
	return &Surface{Kind: kind, Cause: cause}
}

// Fatal marks a programmer-error condition.
// Library entry points return it like any other error; callers that want
// fail-fast behavior (tests, debug builds) can type-assert and panic.
type Fatal struct {
	Kind Kind
	Msg  string
}

func (e *Fatal) Error() string {
	return fmt.Sprintf("programmer error [%s]: %s", e.Kind, e.Msg)
}

// NewFatal constructs a Fatal programmer-error.
func NewFatal(kind Kind, format string, args ...interface{}) *Fatal {
	return &Fatal{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// IsKind reports whether err is a Surface or Fatal error of the given kind.
func IsKind(err error, kind Kind) bool {
	switch e := err.(type) {
	case *Surface:
		return e.Kind == kind
	case *Fatal:
		return e.Kind == kind
	default:
		return false
	}
}
