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

package bookkeeping

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/qoranode/go-qora/crypto"
	"github.com/qoranode/go-qora/data/basics"
	"github.com/qoranode/go-qora/data/transactions"
	"github.com/qoranode/go-qora/protocol"
)

func testPayment(t *testing.T, sec *crypto.SignatureSecrets, recipient basics.Address, amount, fee string) *transactions.Transaction {
	t.Helper()
	tx := &transactions.Transaction{
		Type:      protocol.PaymentTx,
		Timestamp: 1500000000000,
		CreatorPK: sec.SignatureVerifier,
		Fee:       basics.MustAmount(fee),
		Payments:  []transactions.Payment{{Recipient: recipient, Amount: basics.MustAmount(amount)}},
	}
	tx.Sign(sec)
	return tx
}

func TestBlockWireRoundTrip(t *testing.T) {
	gen := crypto.GenerateSignatureSecrets(crypto.Seed{40})
	sender := crypto.GenerateSignatureSecrets(crypto.Seed{41})
	recipient := basics.AddressFromPublicKey(crypto.GenerateSignatureSecrets(crypto.Seed{42}).SignatureVerifier)

	b := &Block{
		Version:     1,
		Reference:   crypto.Signature{1, 2, 3},
		Timestamp:   1500000000000,
		GeneratorPK: gen.SignatureVerifier,
		Transactions: []*transactions.Transaction{
			testPayment(t, sender, recipient, "5", "0.001"),
			testPayment(t, sender, recipient, "7", "0.002"),
		},
	}
	b.Sign(gen)
	require.True(t, b.IsSignatureValid())
	require.Equal(t, basics.MustAmount("0.003"), b.TotalFee())

	back, err := ParseBlock(b.Bytes())
	require.NoError(t, err)
	require.Equal(t, b, back)
	require.Equal(t, b.Bytes(), back.Bytes())
	require.Equal(t, b.Signature(), back.Signature())
}

func TestBlockSignatureCoversContent(t *testing.T) {
	gen := crypto.GenerateSignatureSecrets(crypto.Seed{43})
	b := &Block{Version: 1, Timestamp: 1500000000000, GeneratorPK: gen.SignatureVerifier}
	b.Sign(gen)
	require.True(t, b.IsSignatureValid())

	tampered := *b
	tampered.Timestamp++
	require.False(t, tampered.IsSignatureValid())
}

func TestBlockParseRejectsMalformed(t *testing.T) {
	gen := crypto.GenerateSignatureSecrets(crypto.Seed{44})
	b := &Block{Version: 1, Timestamp: 1500000000000, GeneratorPK: gen.SignatureVerifier}
	b.Sign(gen)
	raw := b.Bytes()

	for _, n := range []int{0, 4, 40, len(raw) - 1} {
		_, err := ParseBlock(raw[:n])
		require.Error(t, err, "prefix of %d bytes", n)
	}
	_, err := ParseBlock(append(raw, 0x00))
	require.Error(t, err)

	// A hostile transaction count fails outright.
	enc := protocol.NewEncoder(64)
	enc.Int32(1)
	enc.Fixed(make([]byte, crypto.SignatureSize))
	enc.Int64(0)
	enc.Fixed(make([]byte, crypto.PublicKeySize))
	enc.Int32(MaxTransactionsPerBlock + 1)
	_, err = ParseBlock(enc.Bytes())
	require.Error(t, err)
}

func TestGenesisBlockDerivedSignature(t *testing.T) {
	recipient := basics.AddressFromPublicKey(crypto.GenerateSignatureSecrets(crypto.Seed{45}).SignatureVerifier)
	allocs := []Allocation{{Recipient: recipient, Amount: basics.MustAmount("1000")}}

	g1 := MakeGenesisBlock(1400247274336, allocs)
	g2 := MakeGenesisBlock(1400247274336, allocs)

	// Two nodes with the same parameters agree on the genesis signature.
	require.Equal(t, g1.Signature(), g2.Signature())
	require.True(t, g1.IsSignatureValid())
	require.True(t, g1.GeneratorPK.IsZero())
	require.Len(t, g1.Transactions, 1)
	require.True(t, g1.Transactions[0].IsSignatureValid())

	// Different parameters, different signature.
	g3 := MakeGenesisBlock(1400247274337, allocs)
	require.NotEqual(t, g1.Signature(), g3.Signature())

	// A genesis block survives the wire.
	back, err := ParseBlock(g1.Bytes())
	require.NoError(t, err)
	require.True(t, back.IsSignatureValid())
	require.Equal(t, g1.Signature(), back.Signature())
}
