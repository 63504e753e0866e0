// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package factorsource

// Source is a named factor source known to the host's Profile. The engine
// only ever needs a source's stable Id to build a security structure;
// RootPublicKey is carried so the derivation layer (factorsource.Derive)
// can compute child keys for it without a real HSM/mnemonic present, a
// stand-in for the host's mnemonic- or hardware-backed keypair.
type Source struct {
	Id            Id
	Kind          Kind
	RootPublicKey []byte
	DisplayName   string
}
