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

package transactions

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/qoranode/go-qora/at"
	"github.com/qoranode/go-qora/config"
	"github.com/qoranode/go-qora/crypto"
	"github.com/qoranode/go-qora/data/basics"
	"github.com/qoranode/go-qora/protocol"
)

func addrFromSeed(b byte) basics.Address {
	sec := crypto.GenerateSignatureSecrets(crypto.Seed{b})
	return basics.AddressFromPublicKey(sec.SignatureVerifier)
}

// sampleTransactions covers every kind's field group.
func sampleTransactions(t *testing.T) []*Transaction {
	t.Helper()
	recipient := addrFromSeed(10)
	other := addrFromSeed(11)

	creation := at.CreationBytes{Version: 1, CodeSize: 1, Code: []byte{0x00}}

	return []*Transaction{
		NewGenesis(1400247274336, recipient, basics.MustAmount("1000")),
		{Type: protocol.PaymentTx, Payments: []Payment{{Recipient: recipient, Amount: basics.MustAmount("5")}}},
		{Type: protocol.MultiPaymentTx, Payments: []Payment{
			{Recipient: recipient, Amount: basics.MustAmount("1")},
			{Recipient: other, Asset: 3, Amount: basics.MustAmount("2.5")},
		}},
		{Type: protocol.TransferAssetTx, Payments: []Payment{{Recipient: recipient, Asset: 7, Amount: basics.MustAmount("4")}}},
		{Type: protocol.MessageTx, Payments: []Payment{{Recipient: recipient, Amount: basics.MustAmount("0")}},
			Data: []byte("hello"), IsText: true},
		{Type: protocol.ArbitraryTx, Service: 130, Data: []byte{1, 2, 3}},
		{Type: protocol.RegisterNameTx, Name: "alice", NameValue: "contact data"},
		{Type: protocol.UpdateNameTx, Name: "alice", NewOwner: other, NameValue: "updated"},
		{Type: protocol.SellNameTx, Name: "alice", Price: basics.MustAmount("12")},
		{Type: protocol.CancelSellNameTx, Name: "alice"},
		{Type: protocol.BuyNameTx, Name: "alice", Price: basics.MustAmount("12"), Seller: other},
		{Type: protocol.CreatePollTx, Name: "poll", PollDescription: "a poll", PollOptions: []string{"yes", "no"}},
		{Type: protocol.VoteOnPollTx, Name: "poll", PollOption: 1},
		{Type: protocol.IssueAssetTx, AssetName: "gold", AssetDescription: "shiny",
			AssetQuantity: basics.MustAmount("1000"), AssetDivisible: true},
		{Type: protocol.CreateOrderTx, HaveAsset: 0, WantAsset: 1,
			OrderAmount: basics.MustAmount("10"), OrderPrice: basics.MustAmount("2")},
		{Type: protocol.CancelOrderTx, OrderID: crypto.Signature{9, 9}},
		{Type: protocol.DeployATTx, ATName: "escrow", ATDescription: "d", ATType: "t", ATTags: "tags",
			CreationBytes: creation.Encode(), ATAmount: basics.MustAmount("3")},
	}
}

func TestTransactionWireRoundTrip(t *testing.T) {
	sec := crypto.GenerateSignatureSecrets(crypto.Seed{20})
	for _, tx := range sampleTransactions(t) {
		if tx.Type != protocol.GenesisTx {
			tx.Timestamp = 1500000000000
			tx.CreatorPK = sec.SignatureVerifier
			tx.Fee = basics.MustAmount("0.001")
			tx.Sign(sec)
		}
		back, err := Parse(tx.Bytes())
		require.NoError(t, err, "%v", tx.Type)
		require.Equal(t, tx, back, "%v", tx.Type)
		require.Equal(t, tx.Bytes(), back.Bytes(), "%v", tx.Type)
	}
}

func TestTransactionSignature(t *testing.T) {
	sec := crypto.GenerateSignatureSecrets(crypto.Seed{21})
	tx := &Transaction{
		Type:      protocol.PaymentTx,
		Timestamp: 1500000000000,
		CreatorPK: sec.SignatureVerifier,
		Fee:       basics.MustAmount("0.001"),
		Payments:  []Payment{{Recipient: addrFromSeed(22), Amount: basics.MustAmount("1")}},
	}
	tx.Sign(sec)
	require.True(t, tx.IsSignatureValid())

	// Any field change invalidates the signature.
	tampered := *tx
	tampered.Fee = basics.MustAmount("0.002")
	require.False(t, tampered.IsSignatureValid())

	tampered = *tx
	tampered.Payments = []Payment{{Recipient: addrFromSeed(23), Amount: basics.MustAmount("1")}}
	require.False(t, tampered.IsSignatureValid())

	// A foreign key does not verify.
	tampered = *tx
	tampered.CreatorPK = crypto.GenerateSignatureSecrets(crypto.Seed{24}).SignatureVerifier
	require.False(t, tampered.IsSignatureValid())
}

func TestGenesisSignatureDerived(t *testing.T) {
	tx := NewGenesis(1400247274336, addrFromSeed(25), basics.MustAmount("1000"))
	require.True(t, tx.IsSignatureValid())
	require.True(t, tx.CreatorPK.IsZero())

	// Content-bound: changing the amount changes the derived signature.
	other := NewGenesis(1400247274336, addrFromSeed(25), basics.MustAmount("1001"))
	require.NotEqual(t, tx.Signature, other.Signature)

	tampered := *tx
	tampered.Payments = []Payment{{Recipient: addrFromSeed(26), Amount: basics.MustAmount("1000")}}
	require.False(t, tampered.IsSignatureValid())
}

func TestParseRejectsMalformed(t *testing.T) {
	sec := crypto.GenerateSignatureSecrets(crypto.Seed{27})
	tx := &Transaction{
		Type:      protocol.PaymentTx,
		Timestamp: 1500000000000,
		CreatorPK: sec.SignatureVerifier,
		Fee:       basics.MustAmount("0.001"),
		Payments:  []Payment{{Recipient: addrFromSeed(28), Amount: basics.MustAmount("1")}},
	}
	tx.Sign(sec)
	raw := tx.Bytes()

	// Truncation at any point fails.
	for _, n := range []int{0, 3, 12, len(raw) / 2, len(raw) - 1} {
		_, err := Parse(raw[:n])
		require.Error(t, err, "prefix of %d bytes", n)
	}

	// Trailing bytes fail.
	_, err := Parse(append(raw, 0x00))
	require.Error(t, err)

	// An unknown type tag fails.
	bad := make([]byte, len(raw))
	copy(bad, raw)
	bad[3] = 0x63
	_, err = Parse(bad)
	require.Error(t, err)
}

func TestMultiPaymentHostileCount(t *testing.T) {
	// A huge declared payment count over a short body must fail without
	// allocating.
	enc := protocol.NewEncoder(64)
	enc.Int32(int32(protocol.MultiPaymentTx))
	enc.Int64(1500000000000)
	enc.Fixed(make([]byte, crypto.SignatureSize))
	enc.Fixed(make([]byte, crypto.PublicKeySize))
	enc.Int32(1 << 28)
	_, err := Parse(enc.Bytes())
	require.Error(t, err)
}

func TestAssetAmounts(t *testing.T) {
	sec := crypto.GenerateSignatureSecrets(crypto.Seed{30})
	creator := basics.AddressFromPublicKey(sec.SignatureVerifier)
	recipient := addrFromSeed(31)

	tx := &Transaction{
		Type:      protocol.PaymentTx,
		Timestamp: 1500000000000,
		CreatorPK: sec.SignatureVerifier,
		Fee:       basics.MustAmount("0.001"),
		Payments:  []Payment{{Recipient: recipient, Amount: basics.MustAmount("100")}},
	}
	tx.Sign(sec)

	require.Equal(t, basics.MustAmount("-100.001"), tx.Amount(creator))
	require.Equal(t, basics.MustAmount("100"), tx.Amount(recipient))
	require.True(t, tx.Involved(creator))
	require.True(t, tx.Involved(recipient))
	require.False(t, tx.Involved(addrFromSeed(32)))

	// Deltas across all parties sum to minus the fee.
	total := basics.Amount{}
	for _, assets := range tx.AssetAmounts() {
		total = total.Add(assets[basics.NativeAsset])
	}
	require.Equal(t, tx.Fee.Neg(), total)
}

func TestBuyNameDeltas(t *testing.T) {
	sec := crypto.GenerateSignatureSecrets(crypto.Seed{33})
	buyer := basics.AddressFromPublicKey(sec.SignatureVerifier)
	seller := addrFromSeed(34)

	tx := &Transaction{
		Type:      protocol.BuyNameTx,
		Timestamp: 1500000000000,
		CreatorPK: sec.SignatureVerifier,
		Fee:       basics.MustAmount("0.001"),
		Name:      "alice",
		Price:     basics.MustAmount("12"),
		Seller:    seller,
	}
	tx.Sign(sec)

	require.Equal(t, basics.MustAmount("-12.001"), tx.Amount(buyer))
	require.Equal(t, basics.MustAmount("12"), tx.Amount(seller))
	require.Equal(t, []basics.Address{seller}, tx.Recipients())
}

func TestDeployATDeltas(t *testing.T) {
	sec := crypto.GenerateSignatureSecrets(crypto.Seed{35})
	creator := basics.AddressFromPublicKey(sec.SignatureVerifier)

	creation := at.CreationBytes{Version: 1, CodeSize: 1, Code: []byte{0x00}}
	tx := &Transaction{
		Type:          protocol.DeployATTx,
		Timestamp:     1500000000000,
		CreatorPK:     sec.SignatureVerifier,
		Fee:           basics.MustAmount("0.001"),
		ATName:        "escrow",
		CreationBytes: creation.Encode(),
		ATAmount:      basics.MustAmount("3"),
	}
	tx.Sign(sec)

	atAddr := basics.ATAddressFromSignature(tx.Signature)
	require.Equal(t, basics.MustAmount("-3.001"), tx.Amount(creator))
	require.Equal(t, basics.MustAmount("3"), tx.Amount(atAddr))
}

func TestDeadline(t *testing.T) {
	proto := config.Mainnet
	tx := &Transaction{Type: protocol.PaymentTx, Timestamp: 1000}
	require.Equal(t, int64(1000)+proto.DeadlineMillis, tx.Deadline(proto))
}
