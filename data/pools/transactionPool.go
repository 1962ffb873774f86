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

// Package pools holds the unconfirmed transaction pool.
package pools

import (
	"fmt"
	"sort"

	"github.com/algorand/go-deadlock"

	"github.com/qoranode/go-qora/config"
	"github.com/qoranode/go-qora/crypto"
	"github.com/qoranode/go-qora/data/basics"
	"github.com/qoranode/go-qora/data/transactions"
	"github.com/qoranode/go-qora/ledger"
	"github.com/qoranode/go-qora/logging"
)

// TransactionPool holds transactions that are valid but not yet in a
// block. It also projects pending effects onto balances for the
// unconfirmed-balance query.
type TransactionPool struct {
	mu     deadlock.RWMutex
	proto  config.ConsensusParams
	ledger *ledger.Ledger
	log    logging.Logger
	txs    map[crypto.Signature]*transactions.Transaction
}

// MakeTransactionPool builds an empty pool over the given ledger.
func MakeTransactionPool(l *ledger.Ledger, proto config.ConsensusParams, log logging.Logger) *TransactionPool {
	return &TransactionPool{
		proto:  proto,
		ledger: l,
		log:    log,
		txs:    make(map[crypto.Signature]*transactions.Transaction),
	}
}

// Add validates the transaction against the current state and pools it.
func (p *TransactionPool) Add(tx *transactions.Transaction, now int64) error {
	if !tx.IsSignatureValid() {
		return fmt.Errorf("pools: transaction has an invalid signature")
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.txs[tx.Signature]; ok {
		return nil
	}
	code, err := tx.IsValid(p.ledger, p.proto, now)
	if err != nil {
		return err
	}
	if code != transactions.ValidateOK {
		return fmt.Errorf("pools: transaction rejected: %v", code)
	}
	p.txs[tx.Signature] = tx
	return nil
}

// Readd pools orphaned transactions without revalidation; they were valid
// on the branch they came from and get revalidated at block assembly.
func (p *TransactionPool) Readd(txs []*transactions.Transaction) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, tx := range txs {
		p.txs[tx.Signature] = tx
	}
}

// Contains reports whether a transaction is pooled.
func (p *TransactionPool) Contains(sig crypto.Signature) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.txs[sig]
	return ok
}

// Remove drops the given transactions, typically after a block carrying
// them was applied.
func (p *TransactionPool) Remove(txs []*transactions.Transaction) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, tx := range txs {
		delete(p.txs, tx.Signature)
	}
}

// Pending returns the pooled transactions, oldest first.
func (p *TransactionPool) Pending() []*transactions.Transaction {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]*transactions.Transaction, 0, len(p.txs))
	for _, tx := range p.txs {
		out = append(out, tx)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Timestamp != out[j].Timestamp {
			return out[i].Timestamp < out[j].Timestamp
		}
		return string(out[i].Signature[:]) < string(out[j].Signature[:])
	})
	return out
}

// Expire drops transactions whose inclusion deadline has passed and
// returns how many went.
func (p *TransactionPool) Expire(now int64) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	expired := 0
	for sig, tx := range p.txs {
		if now > tx.Deadline(p.proto) {
			delete(p.txs, sig)
			expired++
		}
	}
	if expired > 0 {
		p.log.Debugf("expired %d unconfirmed transactions", expired)
	}
	return expired
}

// UnconfirmedBalance is the confirmed native balance plus the pending
// deltas of every pooled transaction involving the account. Implements
// ledger.UnconfirmedBalanceProvider.
func (p *TransactionPool) UnconfirmedBalance(addr basics.Address) (basics.Amount, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	bal, err := p.ledger.ConfirmedBalance(addr, basics.NativeAsset)
	if err != nil {
		return basics.Amount{}, err
	}
	for _, tx := range p.txs {
		bal = bal.Add(tx.Amount(addr))
	}
	return bal, nil
}

var _ ledger.UnconfirmedBalanceProvider = (*TransactionPool)(nil)
