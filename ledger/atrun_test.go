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

	"github.com/qoranode/go-qora/at"
	"github.com/qoranode/go-qora/data/basics"
	"github.com/qoranode/go-qora/data/transactions"
	"github.com/qoranode/go-qora/protocol"
)

// payoutCreation builds creation bytes for a contract that sends 500 raw
// units to the address stored at data offset 0 and then halts for good.
func payoutCreation(recipient basics.Address) at.CreationBytes {
	data := make([]byte, 64)
	copy(data, recipient[:])

	enc := protocol.NewLittleEncoder(32)
	enc.Fixed([]byte{0x01, 0x00}) // SET r0, 500
	enc.Int64(500)
	enc.Fixed([]byte{0x31, 0x00}) // SND r0, data[0]
	enc.Int32(0)
	enc.Fixed([]byte{0x00}) // FIN
	code := enc.Bytes()

	return at.CreationBytes{
		Version:  1,
		CodeSize: int32(len(code)),
		DataSize: int32(len(data)),
		Code:     code,
		Data:     data,
	}
}

func TestATDeployRunOrphan(t *testing.T) {
	f := newChainFixture(t)
	genesisSnap := f.snapshot(t)

	deploy := f.buildTx(t, f.alice, func(tx *transactions.Transaction) {
		tx.Type = protocol.DeployATTx
		tx.ATName = "payout"
		tx.ATDescription = "sends a fixed amount once"
		tx.CreationBytes = payoutCreation(f.bobAddr).Encode()
		tx.ATAmount = basics.MustAmount("10")
	})
	f.addBlock(t, deploy)
	atID := basics.ATAddressFromSignature(deploy.Signature)

	// The deployment block itself never runs the new contract.
	require.Equal(t, basics.MustAmount("10"), f.balance(t, atID, basics.NativeAsset))
	require.Equal(t, basics.MustAmount("989.999"), f.balance(t, f.aliceAddr, basics.NativeAsset))
	records, err := f.l.ATTransactionsAtHeight(2)
	require.NoError(t, err)
	require.Empty(t, records)

	instance, ok, err := f.l.AT(atID)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, f.aliceAddr, instance.Creator)
	require.Equal(t, basics.Height(2), instance.CreationHeight)

	deploySnap := f.snapshot(t)

	// The next block triggers the run: one transfer, one execution record.
	f.addBlock(t)
	require.Equal(t, basics.AmountFromRaw(500), f.balance(t, f.bobAddr, basics.NativeAsset))
	require.Equal(t, basics.AmountFromRaw(10*100000000-500), f.balance(t, atID, basics.NativeAsset))

	records, err = f.l.ATTransactionsAtHeight(3)
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, atID, records[0].AT)
	require.Equal(t, f.bobAddr, records[0].Recipient)
	require.Equal(t, basics.AmountFromRaw(500), records[0].Amount)

	// The contract halted itself; it never runs again.
	instance, _, err = f.l.AT(atID)
	require.NoError(t, err)
	require.False(t, instance.Eligible(4, basics.MustAmount("10")))
	f.addBlock(t)
	records, err = f.l.ATTransactionsAtHeight(4)
	require.NoError(t, err)
	require.Empty(t, records)

	// Depth queries back out contract transfers like any other delta.
	amt, err := f.l.GetBalance(f.bobAddr, 3, nil)
	require.NoError(t, err)
	require.True(t, amt.IsZero())

	// Orphaning the run block restores the pre-run container and balances.
	_, err = f.l.OrphanLastBlock()
	require.NoError(t, err)
	_, err = f.l.OrphanLastBlock()
	require.NoError(t, err)
	require.Equal(t, deploySnap, f.snapshot(t))

	require.True(t, f.balance(t, f.bobAddr, basics.NativeAsset).IsZero())
	records, err = f.l.ATTransactionsAtHeight(3)
	require.NoError(t, err)
	require.Empty(t, records)
	instance, _, err = f.l.AT(atID)
	require.NoError(t, err)
	require.True(t, instance.Eligible(3, basics.MustAmount("10")))

	// Orphaning the deployment removes the contract entirely.
	_, err = f.l.OrphanLastBlock()
	require.NoError(t, err)
	_, ok, err = f.l.AT(atID)
	require.NoError(t, err)
	require.False(t, ok)
	require.Equal(t, basics.MustAmount("1000"), f.balance(t, f.aliceAddr, basics.NativeAsset))
	require.Equal(t, genesisSnap, f.snapshot(t))
}
