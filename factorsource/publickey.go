// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package factorsource

import "encoding/hex"

// PublicKey is a compressed secp256k1 public key, the output of
// deriving key material at one DerivationPath.
type PublicKey [33]byte

func (k PublicKey) String() string {
	return hex.EncodeToString(k[:])
}

// Equal reports byte-for-byte equality.
func (k PublicKey) Equal(other PublicKey) bool {
	return k == other
}
