// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package factorsource

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/crypto"
	"golang.org/x/crypto/blake2b"

	"github.com/hdcore/keyengine/errs"
)

// IdBodyLen is the length, in bytes, of a factor source id's hash body.
const IdBodyLen = 32

// Id stably identifies a factor source. On the wire it serializes with
// discriminator "fromHash" and a {kind, body} pair.
type Id struct {
	Kind Kind
	Body [IdBodyLen]byte
}

// NewIdFromPublicKeyBytes derives an Id for a key-bearing factor source
// (Device, Ledger, ArculusCard, OffDeviceMnemonic, Passphrase) by hashing
// the source's root public key with Keccak256, matching the hash-based
// discriminator used throughout the reference wire format.
func NewIdFromPublicKeyBytes(kind Kind, rootPublicKey []byte) Id {
	h := crypto.Keccak256(rootPublicKey)
	var body [IdBodyLen]byte
	copy(body[:], h)
	return Id{Kind: kind, Body: body}
}

// NewIdFromSecret derives an Id for a factor source that has no
// secp256k1 keypair backing it (TrustedContact, SecurityQuestions),
// hashing the defining secret with blake2b-256 instead.
func NewIdFromSecret(kind Kind, secret []byte) (Id, error) {
	h, err := blake2b.New256(nil)
	if err != nil {
		return Id{}, err
	}
	h.Write(secret)
	var body [IdBodyLen]byte
	copy(body[:], h.Sum(nil))
	return Id{Kind: kind, Body: body}, nil
}

func (id Id) String() string {
	return fmt.Sprintf("%s:%s", id.Kind, hex.EncodeToString(id.Body[:]))
}

// Equal reports whether two ids denote the same factor source.
func (id Id) Equal(other Id) bool {
	return id.Kind == other.Kind && id.Body == other.Body
}

// idWire is the on-wire shape: a discriminated union whose "fromHash"
// arm nests the kind label and hex-32 body under its own key.
type idWire struct {
	Discriminator string     `json:"discriminator"`
	FromHash      idWireBody `json:"fromHash"`
}

type idWireBody struct {
	Kind Kind   `json:"kind"`
	Body string `json:"body"`
}

// MarshalJSON renders the "fromHash" discriminated shape.
func (id Id) MarshalJSON() ([]byte, error) {
	return json.Marshal(idWire{
		Discriminator: "fromHash",
		FromHash: idWireBody{
			Kind: id.Kind,
			Body: hex.EncodeToString(id.Body[:]),
		},
	})
}

// UnmarshalJSON parses the "fromHash" discriminated shape.
func (id *Id) UnmarshalJSON(data []byte) error {
	var wire idWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	if wire.Discriminator != "fromHash" {
		return errs.NewSurface(errs.MalformedFactorSourceId, "unsupported discriminator %q", wire.Discriminator)
	}
	raw, err := hex.DecodeString(wire.FromHash.Body)
	if err != nil || len(raw) != IdBodyLen {
		return errs.NewSurface(errs.MalformedFactorSourceId, "body must be %d hex bytes", IdBodyLen)
	}
	id.Kind = wire.FromHash.Kind
	copy(id.Body[:], raw)
	return nil
}
