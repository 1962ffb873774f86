// Copyright (C) 2018-2025 Qora Developers.
// This file is part of go-qora
//
// go-qora is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// go-qora is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with go-qora.  If not, see <https://www.gnu.org/licenses/>.

package basics

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/qoranode/go-qora/crypto"
)

func TestAddressDerivation(t *testing.T) {
	sec := crypto.GenerateSignatureSecrets(crypto.Seed{1})
	addr := AddressFromPublicKey(sec.SignatureVerifier)

	// Deterministic: the same key always derives the same address.
	require.Equal(t, addr, AddressFromPublicKey(sec.SignatureVerifier))
	require.True(t, addr.Valid())
	require.False(t, addr.IsZero())

	// A different key derives a different address.
	other := crypto.GenerateSignatureSecrets(crypto.Seed{2})
	require.NotEqual(t, addr, AddressFromPublicKey(other.SignatureVerifier))
}

func TestAddressStringRoundTrip(t *testing.T) {
	sec := crypto.GenerateSignatureSecrets(crypto.Seed{3})
	addr := AddressFromPublicKey(sec.SignatureVerifier)

	parsed, err := UnmarshalAddress(addr.String())
	require.NoError(t, err)
	require.Equal(t, addr, parsed)
}

func TestAddressChecksum(t *testing.T) {
	sec := crypto.GenerateSignatureSecrets(crypto.Seed{4})
	addr := AddressFromPublicKey(sec.SignatureVerifier)

	// Flip one payload bit: the checksum no longer matches.
	corrupt := addr
	corrupt[5] ^= 0x01
	require.False(t, corrupt.Valid())
	_, err := UnmarshalAddress(corrupt.String())
	require.Error(t, err)

	// An unknown version byte is invalid even with a recomputed checksum.
	require.False(t, Address{}.Valid())
}

func TestATAddress(t *testing.T) {
	var sig crypto.Signature
	sig[0] = 0xab
	addr := ATAddressFromSignature(sig)
	require.True(t, addr.Valid())
	require.Equal(t, addr, ATAddressFromSignature(sig))

	// AT addresses and account addresses never collide: the version byte
	// differs even for identical hash payloads.
	sec := crypto.GenerateSignatureSecrets(crypto.Seed{5})
	require.NotEqual(t, addr[0], AddressFromPublicKey(sec.SignatureVerifier)[0])
}

func TestAddressTextMarshaling(t *testing.T) {
	sec := crypto.GenerateSignatureSecrets(crypto.Seed{6})
	addr := AddressFromPublicKey(sec.SignatureVerifier)

	text, err := addr.MarshalText()
	require.NoError(t, err)
	var back Address
	require.NoError(t, back.UnmarshalText(text))
	require.Equal(t, addr, back)
}
