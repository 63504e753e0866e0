// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package rules

import "github.com/hdcore/keyengine/errs"

func errAlreadyBuilt() error {
	return errs.NewSurface(errs.AlreadyBuilt, "security structure builder was already consumed by build()")
}

func errLockPoisoned() error {
	return errs.NewSurface(errs.MatrixBuilderRwLockPoisoned, "matrix builder mutation attempted on a poisoned builder")
}

func errNotAdmissible(list RoleListKind, reason DisallowedReason) error {
	return errs.NewSurface(errs.BuildError, "%s: %s", list, reason)
}

func errThresholdExceedsFactors(threshold, available int) error {
	return errs.NewSurface(errs.BuildError, "threshold %d exceeds %d available threshold factors", threshold, available)
}

func errEmptyCollection(msg string) error {
	return errs.NewSurface(errs.EmptyCollection, "%s", msg)
}

func (l RoleListKind) String() string {
	switch l {
	case PrimaryThreshold:
		return "primaryThreshold"
	case PrimaryOverride:
		return "primaryOverride"
	case RecoveryOverride:
		return "recoveryOverride"
	default:
		return "confirmationOverride"
	}
}
