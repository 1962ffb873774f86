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
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcutil/base58"
	"github.com/golang/snappy"

	"github.com/qoranode/go-qora/at"
	"github.com/qoranode/go-qora/crypto"
	"github.com/qoranode/go-qora/data/basics"
	"github.com/qoranode/go-qora/data/bookkeeping"
	"github.com/qoranode/go-qora/data/transactions"
	"github.com/qoranode/go-qora/logging"
	"github.com/qoranode/go-qora/protocol"
)

// ErrInvalidBlock reports a block rejected by validation. It wraps the
// specific reason.
var ErrInvalidBlock = errors.New("ledger: invalid block")

// SetServiceProcessor installs the collaborator that interprets
// arbitrary-service payloads. Forks created afterwards inherit it.
func (l *Ledger) SetServiceProcessor(svc transactions.ServiceProcessor) {
	l.services = svc
}

func (l *Ledger) env() transactions.Env {
	return transactions.Env{Services: l.services, Log: l.log}
}

func (l *Ledger) lastBlockSignature() (crypto.Signature, bool, error) {
	v, ok, err := l.kv.Get([]byte{lastBlockKey})
	if err != nil || !ok {
		return crypto.Signature{}, false, err
	}
	var sig crypto.Signature
	copy(sig[:], v)
	return sig, true, nil
}

// HeightOf looks up the height of a block by signature.
func (l *Ledger) HeightOf(sig crypto.Signature) (basics.Height, bool, error) {
	v, ok, err := l.kv.Get(key(prefixHeightBySig, sig[:]))
	if err != nil || !ok {
		return 0, false, err
	}
	return basics.Height(binary.BigEndian.Uint32(v)), true, nil
}

// SignatureByHeight looks up the signature of the active-chain block at a
// height.
func (l *Ledger) SignatureByHeight(h basics.Height) (crypto.Signature, bool, error) {
	v, ok, err := l.kv.Get(key(prefixSigByHeight, heightKey(h)))
	if err != nil || !ok {
		return crypto.Signature{}, false, err
	}
	var sig crypto.Signature
	copy(sig[:], v)
	return sig, true, nil
}

// BlockBySignature retrieves a stored block. Orphaned blocks remain
// retrievable; only the height indexes forget them.
func (l *Ledger) BlockBySignature(sig crypto.Signature) (*bookkeeping.Block, bool, error) {
	v, ok, err := l.kv.Get(key(prefixBlock, sig[:]))
	if err != nil || !ok {
		return nil, false, err
	}
	raw, err := snappy.Decode(nil, v)
	if err != nil {
		return nil, false, fmt.Errorf("%w: block %s: %v", ErrCorruptStore, base58.Encode(sig[:]), err)
	}
	b, err := bookkeeping.ParseBlock(raw)
	if err != nil {
		return nil, false, fmt.Errorf("%w: block %s: %v", ErrCorruptStore, base58.Encode(sig[:]), err)
	}
	return b, true, nil
}

// BlockByHeight retrieves the active-chain block at a height.
func (l *Ledger) BlockByHeight(h basics.Height) (*bookkeeping.Block, bool, error) {
	sig, ok, err := l.SignatureByHeight(h)
	if err != nil || !ok {
		return nil, false, err
	}
	return l.BlockBySignature(sig)
}

// LastBlock returns the chain tip and its height. ok is false on a virgin
// store.
func (l *Ledger) LastBlock() (*bookkeeping.Block, basics.Height, bool, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.lastBlockLocked()
}

func (l *Ledger) lastBlockLocked() (*bookkeeping.Block, basics.Height, bool, error) {
	sig, ok, err := l.lastBlockSignature()
	if err != nil || !ok {
		return nil, 0, false, err
	}
	h, ok, err := l.HeightOf(sig)
	if err != nil {
		return nil, 0, false, err
	}
	if !ok {
		return nil, 0, false, fmt.Errorf("%w: tip %s has no height", ErrCorruptStore, base58.Encode(sig[:]))
	}
	b, ok, err := l.BlockBySignature(sig)
	if err != nil {
		return nil, 0, false, err
	}
	if !ok {
		return nil, 0, false, fmt.Errorf("%w: tip %s not stored", ErrCorruptStore, base58.Encode(sig[:]))
	}
	return b, h, true, nil
}

// TransactionBySignature finds a transaction on the active chain together
// with the height of its block.
func (l *Ledger) TransactionBySignature(sig crypto.Signature) (*transactions.Transaction, basics.Height, bool, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	v, ok, err := l.kv.Get(key(prefixTxParent, sig[:]))
	if err != nil || !ok {
		return nil, 0, false, err
	}
	var blockSig crypto.Signature
	copy(blockSig[:], v)
	b, ok, err := l.BlockBySignature(blockSig)
	if err != nil || !ok {
		return nil, 0, false, err
	}
	h, _, err := l.HeightOf(blockSig)
	if err != nil {
		return nil, 0, false, err
	}
	for _, tx := range b.Transactions {
		if tx.Signature == sig {
			return tx, h, true, nil
		}
	}
	return nil, 0, false, fmt.Errorf("%w: transaction %s indexed to block %s but absent from it",
		ErrCorruptStore, base58.Encode(sig[:]), base58.Encode(blockSig[:]))
}

// GetSignatures returns the signatures of the active-chain blocks above the
// given one, ascending, capped at the consensus response limit. ok is false
// when the starting signature is not on the active chain.
func (l *Ledger) GetSignatures(from crypto.Signature) ([]crypto.Signature, bool, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	h, ok, err := l.HeightOf(from)
	if err != nil || !ok {
		return nil, false, err
	}
	var out []crypto.Signature
	for next := h + 1; len(out) < l.proto.MaxSignaturesPerResponse; next++ {
		sig, ok, err := l.SignatureByHeight(next)
		if err != nil {
			return nil, false, err
		}
		if !ok {
			break
		}
		out = append(out, sig)
	}
	return out, true, nil
}

// Initialize seeds a virgin store: it registers the native asset under key
// 0 and applies the genesis block. On an already-seeded store it only
// checks that the stored chain starts from the same genesis block.
func (l *Ledger) Initialize(genesis *bookkeeping.Block) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok, err := l.lastBlockSignature(); err != nil {
		return err
	} else if ok {
		stored, ok, err := l.SignatureByHeight(1)
		if err != nil {
			return err
		}
		if !ok || stored != genesis.Signature() {
			return fmt.Errorf("ledger: store was initialized from a different genesis block")
		}
		return nil
	}

	native := basics.Asset{
		Name:        "Qora",
		Description: "the native coin",
		Quantity:    basics.AmountFromRaw(10000000000 * 100000000),
		Divisible:   true,
	}
	if err := l.kv.Put(key(prefixAsset, assetKey(basics.NativeAsset)), native.Encode()); err != nil {
		return err
	}
	if err := l.setNextAssetID(1); err != nil {
		return err
	}
	return l.addBlockLocked(genesis)
}

// AddBlock validates the block against the current tip and applies it.
func (l *Ledger) AddBlock(b *bookkeeping.Block) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.addBlockLocked(b)
}

func (l *Ledger) addBlockLocked(b *bookkeeping.Block) error {
	if err := l.validateBlockLocked(b); err != nil {
		return err
	}
	return l.applyBlockLocked(b)
}

// ValidateBlock checks a block against the current tip without applying
// it. Failures wrap ErrInvalidBlock.
func (l *Ledger) ValidateBlock(b *bookkeeping.Block) error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.validateBlockLocked(b)
}

func (l *Ledger) validateBlockLocked(b *bookkeeping.Block) error {
	sig := b.Signature()

	tipSig, haveTip, err := l.lastBlockSignature()
	if err != nil {
		return err
	}
	height := basics.Height(1)
	if haveTip {
		if b.Reference != tipSig {
			return fmt.Errorf("%w: reference does not match the chain tip", ErrInvalidBlock)
		}
		h, ok, err := l.HeightOf(tipSig)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: tip has no height", ErrCorruptStore)
		}
		height = h + 1
		tip, ok, err := l.BlockBySignature(tipSig)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: tip not stored", ErrCorruptStore)
		}
		if b.Timestamp < tip.Timestamp {
			return fmt.Errorf("%w: timestamp before parent", ErrInvalidBlock)
		}
	} else if !b.Reference.IsZero() {
		return fmt.Errorf("%w: first block must reference nothing", ErrInvalidBlock)
	}

	if !b.IsSignatureValid() {
		return fmt.Errorf("%w: bad generator signature", ErrInvalidBlock)
	}
	if want, pinned := l.proto.Checkpoints[int32(height)]; pinned && base58.Encode(sig[:]) != want {
		return fmt.Errorf("%w: contradicts checkpoint at height %d", ErrInvalidBlock, height)
	}
	if len(b.Transactions) > bookkeeping.MaxTransactionsPerBlock {
		return fmt.Errorf("%w: too many transactions", ErrInvalidBlock)
	}

	for i, tx := range b.Transactions {
		if tx.Type == protocol.GenesisTx && height != 1 {
			return fmt.Errorf("%w: genesis transaction outside the genesis block", ErrInvalidBlock)
		}
		if tx.Timestamp > b.Timestamp {
			return fmt.Errorf("%w: transaction %d from the future", ErrInvalidBlock, i)
		}
		if !tx.IsSignatureValid() {
			return fmt.Errorf("%w: transaction %d has a bad signature", ErrInvalidBlock, i)
		}
		code, err := tx.IsValid(l, l.proto, b.Timestamp)
		if err != nil {
			return err
		}
		if code != transactions.ValidateOK {
			return fmt.Errorf("%w: transaction %d: %v", ErrInvalidBlock, i, code)
		}
	}
	return nil
}

func (l *Ledger) applyBlockLocked(b *bookkeeping.Block) error {
	sig := b.Signature()
	height, err := l.Height()
	if err != nil {
		return err
	}

	env := l.env()
	for _, tx := range b.Transactions {
		if err := tx.Process(l, env); err != nil {
			return err
		}
		if err := l.kv.Put(key(prefixTxParent, tx.Signature[:]), sig[:]); err != nil {
			return err
		}
	}

	if err := l.runATs(b, height); err != nil {
		return err
	}

	compressed := snappy.Encode(nil, b.Bytes())
	if err := l.kv.Put(key(prefixBlock, sig[:]), compressed); err != nil {
		return err
	}
	if err := l.kv.Put(key(prefixHeightBySig, sig[:]), heightKey(height)); err != nil {
		return err
	}
	if err := l.kv.Put(key(prefixSigByHeight, heightKey(height)), sig[:]); err != nil {
		return err
	}
	if err := l.kv.Put([]byte{lastBlockKey}, sig[:]); err != nil {
		return err
	}

	l.log.WithFields(logging.Fields{
		"height": height,
		"block":  base58.Encode(sig[:]),
		"txs":    len(b.Transactions),
	}).Debug("block applied")
	return nil
}

// runATs executes every eligible AT at the new height, in ascending id
// order, committing state blobs and transfers with history keyed by the
// block signature.
func (l *Ledger) runATs(b *bookkeeping.Block, height basics.Height) error {
	ats, err := l.ATs()
	if err != nil {
		return err
	}
	var ran []byte
	seq := int32(0)
	for _, a := range ats {
		bal, err := l.Balance(a.ID, basics.NativeAsset)
		if err != nil {
			return err
		}
		if !a.Eligible(height, bal) {
			continue
		}
		transfer, err := a.Run(height, bal)
		if err != nil {
			return err
		}
		// PutAT records the pre-run container as history for the orphan
		// path.
		if err := l.PutAT(a, b.Signature()); err != nil {
			return err
		}
		ran = append(ran, a.ID[:]...)

		if transfer != nil {
			if err := subFromBalanceKV(l, a.ID, transfer.Amount); err != nil {
				return err
			}
			if err := addToBalanceKV(l, transfer.Recipient, transfer.Amount); err != nil {
				return err
			}
			record := at.ATTransaction{
				AT:        a.ID,
				Recipient: transfer.Recipient,
				Amount:    transfer.Amount,
				Message:   transfer.Message,
			}
			if err := l.kv.Put(atTxKey(height, seq), record.Encode()); err != nil {
				return err
			}
			seq++
		}
	}
	if len(ran) > 0 {
		blockSig := b.Signature()
		return l.kv.Put(key(prefixATRun, blockSig[:]), ran)
	}
	return nil
}

func atTxKey(height basics.Height, seq int32) []byte {
	var tail [8]byte
	binary.BigEndian.PutUint32(tail[:4], uint32(height))
	binary.BigEndian.PutUint32(tail[4:], uint32(seq))
	return key(prefixATTx, tail[:])
}

// ATTransactionsAtHeight returns the AT execution records of the block at a
// height, in sequence order.
func (l *Ledger) ATTransactionsAtHeight(height basics.Height) ([]at.ATTransaction, error) {
	keys, err := l.kv.Keys(key(prefixATTx, heightKey(height)))
	if err != nil {
		return nil, err
	}
	out := make([]at.ATTransaction, 0, len(keys))
	for _, k := range keys {
		v, ok, err := l.kv.Get(k)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		record, err := at.DecodeATTransaction(v)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorruptStore, err)
		}
		out = append(out, record)
	}
	return out, nil
}

// OrphanLastBlock reverses the tip block and returns it, so its
// transactions can be re-announced or re-pooled. Every sub-step reverses in
// the exact opposite order of application.
func (l *Ledger) OrphanLastBlock() (*bookkeeping.Block, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.orphanLastBlockLocked()
}

func (l *Ledger) orphanLastBlockLocked() (*bookkeeping.Block, error) {
	b, height, ok, err := l.lastBlockLocked()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("ledger: no block to orphan")
	}
	sig := b.Signature()

	if err := l.unwindATs(sig, height); err != nil {
		return nil, err
	}

	env := l.env()
	for i := len(b.Transactions) - 1; i >= 0; i-- {
		tx := b.Transactions[i]
		if err := tx.Orphan(l, env); err != nil {
			return nil, err
		}
		if err := l.kv.Delete(key(prefixTxParent, tx.Signature[:])); err != nil {
			return nil, err
		}
	}

	// The block bytes stay stored; only the active-chain indexes forget it.
	if err := l.kv.Delete(key(prefixHeightBySig, sig[:])); err != nil {
		return nil, err
	}
	if err := l.kv.Delete(key(prefixSigByHeight, heightKey(height))); err != nil {
		return nil, err
	}
	if height == 1 {
		if err := l.kv.Delete([]byte{lastBlockKey}); err != nil {
			return nil, err
		}
	} else {
		if err := l.kv.Put([]byte{lastBlockKey}, b.Reference[:]); err != nil {
			return nil, err
		}
	}

	l.log.WithFields(logging.Fields{
		"height": height,
		"block":  base58.Encode(sig[:]),
	}).Debug("block orphaned")
	return b, nil
}

// unwindATs reverses the AT executions of a block: transfers in descending
// sequence, then state blobs in reverse run order.
func (l *Ledger) unwindATs(blockSig crypto.Signature, height basics.Height) error {
	records, err := l.ATTransactionsAtHeight(height)
	if err != nil {
		return err
	}
	for i := len(records) - 1; i >= 0; i-- {
		record := records[i]
		if err := subFromBalanceKV(l, record.Recipient, record.Amount); err != nil {
			return err
		}
		if err := addToBalanceKV(l, record.AT, record.Amount); err != nil {
			return err
		}
		if err := l.kv.Delete(atTxKey(height, int32(i))); err != nil {
			return err
		}
	}

	runKey := key(prefixATRun, blockSig[:])
	ran, ok, err := l.kv.Get(runKey)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	if len(ran)%at.IDSize != 0 {
		return fmt.Errorf("%w: malformed AT run list for block %s", ErrCorruptStore, base58.Encode(blockSig[:]))
	}
	for off := len(ran) - at.IDSize; off >= 0; off -= at.IDSize {
		var id basics.Address
		copy(id[:], ran[off:off+at.IDSize])
		if err := l.RestoreAT(id, blockSig); err != nil {
			return err
		}
	}
	return l.kv.Delete(runKey)
}

func addToBalanceKV(l *Ledger, addr basics.Address, amt basics.Amount) error {
	cur, err := l.Balance(addr, basics.NativeAsset)
	if err != nil {
		return err
	}
	return l.SetBalance(addr, basics.NativeAsset, cur.Add(amt))
}

func subFromBalanceKV(l *Ledger, addr basics.Address, amt basics.Amount) error {
	cur, err := l.Balance(addr, basics.NativeAsset)
	if err != nil {
		return err
	}
	return l.SetBalance(addr, basics.NativeAsset, cur.Sub(amt))
}
