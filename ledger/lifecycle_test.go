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

package ledger

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/qoranode/go-qora/data/basics"
	"github.com/qoranode/go-qora/data/transactions"
	"github.com/qoranode/go-qora/protocol"
)

// TestStateLifecycleRoundTrip drives every stateful transaction kind
// through a chain of blocks, then orphans the chain block by block and
// checks the store returns to the exact bytes it held at each earlier
// height.
func TestStateLifecycleRoundTrip(t *testing.T) {
	f := newChainFixture(t)
	snaps := []map[string]string{f.snapshot(t)}
	apply := func(txs ...*transactions.Transaction) {
		f.addBlock(t, txs...)
		snaps = append(snaps, f.snapshot(t))
	}

	// Fund bob.
	apply(f.buildTx(t, f.alice, func(tx *transactions.Transaction) {
		tx.Type = protocol.PaymentTx
		tx.Payments = []transactions.Payment{{Recipient: f.bobAddr, Amount: basics.MustAmount("100")}}
	}))

	// Register a name, then update its value.
	apply(f.buildTx(t, f.alice, func(tx *transactions.Transaction) {
		tx.Type = protocol.RegisterNameTx
		tx.Name = "web"
		tx.NameValue = "v1"
	}))
	apply(f.buildTx(t, f.alice, func(tx *transactions.Transaction) {
		tx.Type = protocol.UpdateNameTx
		tx.Name = "web"
		tx.NewOwner = f.aliceAddr
		tx.NameValue = "v2"
	}))

	rec, ok, err := f.l.Name("web")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, f.aliceAddr, rec.Owner)
	require.Equal(t, "v2", rec.Value)

	// Bob issues an asset.
	issue := f.buildTx(t, f.bob, func(tx *transactions.Transaction) {
		tx.Type = protocol.IssueAssetTx
		tx.AssetName = "gold"
		tx.AssetDescription = "shiny"
		tx.AssetQuantity = basics.MustAmount("1000")
		tx.AssetDivisible = true
	})
	apply(issue)

	gold, ok, err := f.l.Asset(1)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, f.bobAddr, gold.Owner)
	require.Equal(t, "gold", gold.Name)
	next, err := f.l.NextAssetID()
	require.NoError(t, err)
	require.Equal(t, basics.AssetID(2), next)
	issued, ok, err := f.l.IssuedAsset(issue.Signature)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, basics.AssetID(1), issued)
	require.Equal(t, basics.MustAmount("1000"), f.balance(t, f.bobAddr, 1))

	// Alice lists the name for sale while bob sends her some gold.
	apply(
		f.buildTx(t, f.alice, func(tx *transactions.Transaction) {
			tx.Type = protocol.SellNameTx
			tx.Name = "web"
			tx.Price = basics.MustAmount("12")
		}),
		f.buildTx(t, f.bob, func(tx *transactions.Transaction) {
			tx.Type = protocol.TransferAssetTx
			tx.Payments = []transactions.Payment{{Recipient: f.aliceAddr, Asset: 1, Amount: basics.MustAmount("250")}}
		}),
	)

	asking, ok, err := f.l.NameSale("web")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, basics.MustAmount("12"), asking)
	require.Equal(t, basics.MustAmount("250"), f.balance(t, f.aliceAddr, 1))
	require.Equal(t, basics.MustAmount("750"), f.balance(t, f.bobAddr, 1))

	// Bob buys the name.
	aliceBefore := f.balance(t, f.aliceAddr, basics.NativeAsset)
	apply(f.buildTx(t, f.bob, func(tx *transactions.Transaction) {
		tx.Type = protocol.BuyNameTx
		tx.Name = "web"
		tx.Price = basics.MustAmount("12")
		tx.Seller = f.aliceAddr
	}))

	rec, ok, err = f.l.Name("web")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, f.bobAddr, rec.Owner)
	_, forSale, err := f.l.NameSale("web")
	require.NoError(t, err)
	require.False(t, forSale)
	require.Equal(t, aliceBefore.Add(basics.MustAmount("12")), f.balance(t, f.aliceAddr, basics.NativeAsset))

	// A poll, a vote, and a changed vote.
	apply(f.buildTx(t, f.alice, func(tx *transactions.Transaction) {
		tx.Type = protocol.CreatePollTx
		tx.Name = "colors"
		tx.PollDescription = "pick one"
		tx.PollOptions = []string{"red", "blue"}
	}))
	apply(f.buildTx(t, f.bob, func(tx *transactions.Transaction) {
		tx.Type = protocol.VoteOnPollTx
		tx.Name = "colors"
		tx.PollOption = 1
	}))
	apply(f.buildTx(t, f.bob, func(tx *transactions.Transaction) {
		tx.Type = protocol.VoteOnPollTx
		tx.Name = "colors"
		tx.PollOption = 0
	}))

	poll, ok, err := f.l.Poll("colors")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 0, poll.OptionIndex(f.bobAddr))
	require.Empty(t, poll.Options[1].Voters)

	// An order escrows gold out of alice's balance until cancelled.
	order := f.buildTx(t, f.alice, func(tx *transactions.Transaction) {
		tx.Type = protocol.CreateOrderTx
		tx.HaveAsset = 1
		tx.WantAsset = basics.NativeAsset
		tx.OrderAmount = basics.MustAmount("100")
		tx.OrderPrice = basics.MustAmount("2")
	})
	apply(order)

	stored, ok, err := f.l.Order(order.Signature)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, f.aliceAddr, stored.Creator)
	require.Equal(t, basics.MustAmount("100"), stored.Amount)
	require.Equal(t, basics.MustAmount("150"), f.balance(t, f.aliceAddr, 1))

	apply(f.buildTx(t, f.alice, func(tx *transactions.Transaction) {
		tx.Type = protocol.CancelOrderTx
		tx.OrderID = order.Signature
	}))

	_, ok, err = f.l.Order(order.Signature)
	require.NoError(t, err)
	require.False(t, ok)
	require.Equal(t, basics.MustAmount("250"), f.balance(t, f.aliceAddr, 1))

	// Unwind the whole chain. After each orphan the store must match the
	// snapshot taken at that height exactly.
	for i := len(snaps) - 2; i >= 0; i-- {
		_, err := f.l.OrphanLastBlock()
		require.NoError(t, err)
		require.Equal(t, snaps[i], f.snapshot(t), "store differs at snapshot %d", i)
	}

	_, h := f.tip(t)
	require.Equal(t, basics.Height(1), h)
	_, ok, err = f.l.Name("web")
	require.NoError(t, err)
	require.False(t, ok)
	_, ok, err = f.l.Poll("colors")
	require.NoError(t, err)
	require.False(t, ok)
	_, ok, err = f.l.Asset(1)
	require.NoError(t, err)
	require.False(t, ok)
	next, err = f.l.NextAssetID()
	require.NoError(t, err)
	require.Equal(t, basics.AssetID(1), next)
}
