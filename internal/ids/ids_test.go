// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ids_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hdcore/keyengine/internal/ids"
)

func TestStepperIsMonotonicFromZero(t *testing.T) {
	s := ids.NewStepper()
	assert.Equal(t, uint64(0), s.Next())
	assert.Equal(t, uint64(1), s.Next())
	assert.Equal(t, uint64(2), s.Next())
}

func TestStepperResetRewindsToZero(t *testing.T) {
	s := ids.NewStepper()
	s.Next()
	s.Next()
	s.Reset()
	assert.Equal(t, uint64(0), s.Next())
}
