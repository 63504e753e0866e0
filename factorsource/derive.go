// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package factorsource

import (
	"crypto/sha256"
	"encoding/binary"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/pkg/errors"

	"github.com/hdcore/keyengine/keyspace"
)

// Derive computes the public key that a factor source's root key would
// produce at the given derivation path. Real factor sources (a hardware
// wallet, a mnemonic) use BIP32 tweak derivation over secp256k1 or
// curve25519; this engine does not own a mnemonic/HSM implementation, so
// it reproduces the same "tweak the parent point by a deterministic
// scalar" shape directly on top of the already-imported
// decred/dcrec/secp256k1 point arithmetic, grounding HDFI derivation
// without pulling in a standalone BIP32 library the example pack never
// imports.
func Derive(rootPublicKey []byte, path keyspace.DerivationPath) (PublicKey, error) {
	parent, err := secp256k1.ParsePubKey(rootPublicKey)
	if err != nil {
		return PublicKey{}, errors.Wrap(err, "parse root public key")
	}

	tweak := tweakScalar(rootPublicKey, path)

	var tweakPoint secp256k1.JacobianPoint
	secp256k1.ScalarBaseMultNonConst(tweak, &tweakPoint)

	var parentJ secp256k1.JacobianPoint
	parent.AsJacobian(&parentJ)

	var childJ secp256k1.JacobianPoint
	secp256k1.AddNonConst(&parentJ, &tweakPoint, &childJ)
	childJ.ToAffine()

	child := secp256k1.NewPublicKey(&childJ.X, &childJ.Y)

	var out PublicKey
	copy(out[:], child.SerializeCompressed())
	return out, nil
}

func tweakScalar(rootPublicKey []byte, path keyspace.DerivationPath) *secp256k1.ModNScalar {
	h := sha256.New()
	h.Write(rootPublicKey)
	h.Write([]byte{byte(path.Network)})
	h.Write([]byte{byte(path.EntityKind)})
	h.Write([]byte{byte(path.KeyKind)})
	var idxBuf [4]byte
	binary.BigEndian.PutUint32(idxBuf[:], path.Index.GlobalHardenedIndex())
	h.Write(idxBuf[:])
	var s secp256k1.ModNScalar
	s.SetByteSlice(h.Sum(nil))
	return &s
}
