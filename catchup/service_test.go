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

package catchup

import (
	"context"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/qoranode/go-qora/config"
	"github.com/qoranode/go-qora/crypto"
	"github.com/qoranode/go-qora/data/basics"
	"github.com/qoranode/go-qora/data/bookkeeping"
	"github.com/qoranode/go-qora/data/pools"
	"github.com/qoranode/go-qora/data/transactions"
	"github.com/qoranode/go-qora/ledger"
	"github.com/qoranode/go-qora/logging"
	"github.com/qoranode/go-qora/protocol"
)

// ledgerSource drives the synchronizer from a second in-memory ledger, the
// way a remote peer would from its own chain.
type ledgerSource struct {
	l *ledger.Ledger
}

func (s ledgerSource) Height() basics.Height {
	_, h, _, _ := s.l.LastBlock()
	return h
}

func (s ledgerSource) Signatures(ctx context.Context, from crypto.Signature) ([]crypto.Signature, error) {
	sigs, ok, err := s.l.GetSignatures(from)
	if err != nil || !ok {
		return nil, err
	}
	return sigs, nil
}

func (s ledgerSource) Block(ctx context.Context, sig crypto.Signature) (*bookkeeping.Block, error) {
	b, ok, err := s.l.BlockBySignature(sig)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("no such block")
	}
	return b, nil
}

// testChain wraps a ledger with just enough machinery to produce valid
// blocks on it.
type testChain struct {
	l     *ledger.Ledger
	proto config.ConsensusParams
	gen   *crypto.SignatureSecrets
}

const blockInterval = 60000

func newTestChain(t *testing.T, aliceAddr basics.Address) *testChain {
	t.Helper()
	proto := config.Mainnet
	c := &testChain{
		l:     ledger.NewInMemory(proto, logging.TestingLog(io.Discard)),
		proto: proto,
		gen:   crypto.GenerateSignatureSecrets(crypto.Seed{9}),
	}
	genesis := bookkeeping.MakeGenesisBlock(proto.GenesisTimestamp, []bookkeeping.Allocation{
		{Recipient: aliceAddr, Amount: basics.MustAmount("1000")},
	})
	require.NoError(t, c.l.Initialize(genesis))
	return c
}

func (c *testChain) tip(t *testing.T) (*bookkeeping.Block, basics.Height) {
	t.Helper()
	b, h, ok, err := c.l.LastBlock()
	require.NoError(t, err)
	require.True(t, ok)
	return b, h
}

func (c *testChain) payment(t *testing.T, sec *crypto.SignatureSecrets, recipient basics.Address, amount string) *transactions.Transaction {
	t.Helper()
	tipBlock, _ := c.tip(t)
	addr := basics.AddressFromPublicKey(sec.SignatureVerifier)
	ref, _, err := c.l.Reference(addr)
	require.NoError(t, err)
	tx := &transactions.Transaction{
		Type:      protocol.PaymentTx,
		Timestamp: tipBlock.Timestamp + blockInterval,
		Reference: ref,
		CreatorPK: sec.SignatureVerifier,
		Fee:       basics.MustAmount("0.001"),
		Payments:  []transactions.Payment{{Recipient: recipient, Amount: basics.MustAmount(amount)}},
	}
	tx.Sign(sec)
	return tx
}

func (c *testChain) addBlock(t *testing.T, txs ...*transactions.Transaction) *bookkeeping.Block {
	t.Helper()
	tipBlock, _ := c.tip(t)
	b := &bookkeeping.Block{
		Version:      1,
		Reference:    tipBlock.Signature(),
		Timestamp:    tipBlock.Timestamp + blockInterval,
		GeneratorPK:  c.gen.SignatureVerifier,
		Transactions: txs,
	}
	b.Sign(c.gen)
	require.NoError(t, c.l.AddBlock(b))
	return b
}

func newSyncFixture(t *testing.T) (local, remote *testChain, svc *Service, pool *pools.TransactionPool, alice *crypto.SignatureSecrets, bobAddr basics.Address) {
	t.Helper()
	alice = crypto.GenerateSignatureSecrets(crypto.Seed{1})
	aliceAddr := basics.AddressFromPublicKey(alice.SignatureVerifier)
	bobAddr = basics.AddressFromPublicKey(crypto.GenerateSignatureSecrets(crypto.Seed{2}).SignatureVerifier)

	local = newTestChain(t, aliceAddr)
	remote = newTestChain(t, aliceAddr)

	log := logging.TestingLog(io.Discard)
	pool = pools.MakeTransactionPool(local.l, local.proto, log)
	svc = MakeService(local.l, pool, nil, local.proto, log)
	return local, remote, svc, pool, alice, bobAddr
}

func TestSyncExtendsSameBranch(t *testing.T) {
	local, remote, svc, pool, alice, bobAddr := newSyncFixture(t)

	tx := remote.payment(t, alice, bobAddr, "100")
	remote.addBlock(t, tx)
	remote.addBlock(t)
	remote.addBlock(t)

	// The confirmed payment sits in our pool; syncing must clear it.
	require.NoError(t, pool.Add(tx, tx.Timestamp))

	require.NoError(t, svc.SyncFrom(context.Background(), ledgerSource{remote.l}))

	localTip, h := local.tip(t)
	remoteTip, _ := remote.tip(t)
	require.Equal(t, basics.Height(4), h)
	require.Equal(t, remoteTip.Signature(), localTip.Signature())

	bal, err := local.l.ConfirmedBalance(bobAddr, basics.NativeAsset)
	require.NoError(t, err)
	require.Equal(t, basics.MustAmount("100"), bal)
	require.False(t, pool.Contains(tx.Signature))

	// Already in sync: another pass changes nothing.
	require.NoError(t, svc.SyncFrom(context.Background(), ledgerSource{remote.l}))
	_, h = local.tip(t)
	require.Equal(t, basics.Height(4), h)
}

func TestSyncReorganizesToTallerBranch(t *testing.T) {
	local, remote, svc, pool, alice, bobAddr := newSyncFixture(t)

	// The branches diverge at height 2; the remote one is taller.
	displaced := local.payment(t, alice, bobAddr, "100")
	local.addBlock(t, displaced)
	remote.addBlock(t)
	remote.addBlock(t)

	require.NoError(t, svc.SyncFrom(context.Background(), ledgerSource{remote.l}))

	localTip, h := local.tip(t)
	remoteTip, _ := remote.tip(t)
	require.Equal(t, basics.Height(3), h)
	require.Equal(t, remoteTip.Signature(), localTip.Signature())

	// The displaced payment was rolled back and repooled.
	bal, err := local.l.ConfirmedBalance(bobAddr, basics.NativeAsset)
	require.NoError(t, err)
	require.True(t, bal.IsZero())
	require.True(t, pool.Contains(displaced.Signature))
}

func TestSyncRefusesForeignChain(t *testing.T) {
	local, _, svc, _, _, _ := newSyncFixture(t)

	// A remote chain grown from a different genesis shares no block with
	// ours at all.
	foreignAddr := basics.AddressFromPublicKey(crypto.GenerateSignatureSecrets(crypto.Seed{7}).SignatureVerifier)
	foreign := newTestChain(t, foreignAddr)
	foreign.addBlock(t)
	foreign.addBlock(t)

	err := svc.SyncFrom(context.Background(), ledgerSource{foreign.l})
	require.ErrorIs(t, err, ErrNoCommonBlock)

	_, h := local.tip(t)
	require.Equal(t, basics.Height(1), h)
}

func TestSyncRejectsInvalidBranch(t *testing.T) {
	local, remote, svc, _, alice, bobAddr := newSyncFixture(t)

	local.addBlock(t, local.payment(t, alice, bobAddr, "1"))

	// The remote branch is taller but one of its blocks arrives tampered;
	// the fork rejects it and the real ledger stays put.
	remote.addBlock(t)
	bad := remote.addBlock(t)

	localTipBefore, _ := local.tip(t)
	err := svc.SyncFrom(context.Background(), corruptingSource{remote.l, bad.Signature()})
	require.Error(t, err)

	localTip, h := local.tip(t)
	require.Equal(t, basics.Height(2), h)
	require.Equal(t, localTipBefore.Signature(), localTip.Signature())
}

// corruptingSource serves one block whose content no longer matches its
// generator signature.
type corruptingSource struct {
	l      *ledger.Ledger
	target crypto.Signature
}

func (s corruptingSource) Height() basics.Height {
	return ledgerSource{s.l}.Height()
}

func (s corruptingSource) Signatures(ctx context.Context, from crypto.Signature) ([]crypto.Signature, error) {
	return ledgerSource{s.l}.Signatures(ctx, from)
}

func (s corruptingSource) Block(ctx context.Context, sig crypto.Signature) (*bookkeeping.Block, error) {
	b, err := ledgerSource{s.l}.Block(ctx, sig)
	if err != nil {
		return nil, err
	}
	if sig == s.target {
		b.Timestamp++
	}
	return b, nil
}
