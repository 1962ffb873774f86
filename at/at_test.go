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

package at

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/qoranode/go-qora/crypto"
	"github.com/qoranode/go-qora/data/basics"
)

func testInstance(t *testing.T, code, data []byte) *AT {
	t.Helper()
	c := CreationBytes{
		Version:  1,
		CodeSize: int32(len(code)),
		DataSize: int32(len(data)),
		Code:     code,
		Data:     data,
	}
	parsed, err := ParseCreationBytes(c.Encode())
	require.NoError(t, err)

	var sig crypto.Signature
	sig[0] = 0x42
	id := basics.ATAddressFromSignature(sig)
	sec := crypto.GenerateSignatureSecrets(crypto.Seed{7})
	creator := basics.AddressFromPublicKey(sec.SignatureVerifier)
	return NewFromCreation(id, creator, "escrow", "test contract", "payout", "test", parsed, 1)
}

func TestContainerRoundTrip(t *testing.T) {
	a := testInstance(t, []byte{opFin}, make([]byte, 64))

	raw := a.ToBytes()
	back, err := Parse(raw)
	require.NoError(t, err)
	require.Equal(t, raw, back.ToBytes())
	require.True(t, a.Equal(back))
	require.Equal(t, a.ID, back.ID)
	require.Equal(t, a.Creator, back.Creator)
	require.Equal(t, a.Name, back.Name)
	require.Equal(t, a.CreationHeight, back.CreationHeight)
	require.Equal(t, a.Code, back.Code)
	require.Equal(t, a.State, back.State)
}

func TestContainerParseTruncated(t *testing.T) {
	a := testInstance(t, []byte{opFin}, make([]byte, 32))
	raw := a.ToBytes()
	headerLen := len(raw) - len(a.State)
	for _, n := range []int{0, 3, 10, headerLen - 1} {
		_, err := Parse(raw[:n])
		require.Error(t, err, "prefix of %d bytes", n)
	}
}

func TestCreationBytesValidation(t *testing.T) {
	good := CreationBytes{Version: 1, CodeSize: 1, Code: []byte{opFin}}
	_, err := ParseCreationBytes(good.Encode())
	require.NoError(t, err)

	// Oversized code budget.
	bad := CreationBytes{Version: 1, CodeSize: MaxCodeSize + 1, Code: make([]byte, MaxCodeSize+1)}
	_, err = ParseCreationBytes(bad.Encode())
	require.Error(t, err)

	// Empty code.
	bad = CreationBytes{Version: 1}
	_, err = ParseCreationBytes(bad.Encode())
	require.Error(t, err)

	// Trailing bytes.
	_, err = ParseCreationBytes(append(good.Encode(), 0x00))
	require.Error(t, err)
}
