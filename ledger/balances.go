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
	"github.com/algorand/go-deadlock"

	"github.com/qoranode/go-qora/crypto"
	"github.com/qoranode/go-qora/data/basics"
)

// UnconfirmedBalanceProvider projects the mempool onto an account balance.
// The transaction pool implements it.
type UnconfirmedBalanceProvider interface {
	UnconfirmedBalance(addr basics.Address) (basics.Amount, error)
}

// generatingCache memoizes generating balances for the current chain tip.
// The cache key is the tip signature: the moment the tip changes, every
// cached value is stale at once.
type generatingCache struct {
	mu  deadlock.Mutex
	tip crypto.Signature
	m   map[basics.Address]basics.Amount
}

func (c *generatingCache) get(tip crypto.Signature, addr basics.Address) (basics.Amount, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.tip != tip || c.m == nil {
		return basics.Amount{}, false
	}
	v, ok := c.m[addr]
	return v, ok
}

func (c *generatingCache) put(tip crypto.Signature, addr basics.Address, v basics.Amount) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.tip != tip || c.m == nil {
		c.tip = tip
		c.m = make(map[basics.Address]basics.Amount)
	}
	c.m[addr] = v
}

// ConfirmedBalance is the stored balance of (addr, asset).
func (l *Ledger) ConfirmedBalance(addr basics.Address, asset basics.AssetID) (basics.Amount, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.Balance(addr, asset)
}

// GetBalance answers the native balance at a confirmation depth.
// Non-positive depth means the mempool-inclusive unconfirmed balance; depth
// 1 is the confirmed balance; deeper depths reconstruct the balance as of
// that many blocks ago by walking the chain backward and subtracting the
// effects of the blocks in between.
func (l *Ledger) GetBalance(addr basics.Address, confirmations int, unconfirmed UnconfirmedBalanceProvider) (basics.Amount, error) {
	if confirmations <= 0 {
		if unconfirmed != nil {
			return unconfirmed.UnconfirmedBalance(addr)
		}
		confirmations = 1
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	if confirmations == 1 {
		return l.Balance(addr, basics.NativeAsset)
	}
	return l.balanceAtDepth(addr, confirmations-1, false)
}

// GeneratingBalance is the windowed balance weighting block-generation
// eligibility. Funds received within the window do not count, so weight
// cannot be inflated by shuffling coins between fresh accounts; outgoing
// amounts are deliberately not added back. Never negative.
func (l *Ledger) GeneratingBalance(addr basics.Address) (basics.Amount, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	tip, ok, err := l.lastBlockSignature()
	if err != nil {
		return basics.Amount{}, err
	}
	if !ok {
		return basics.Amount{}, nil
	}
	if cached, hit := l.genCache.get(tip, addr); hit {
		return cached, nil
	}

	bal, err := l.balanceAtDepth(addr, int(l.proto.Retarget), true)
	if err != nil {
		return basics.Amount{}, err
	}
	if bal.IsNegative() {
		bal = basics.Amount{}
	}
	l.genCache.put(tip, addr, bal)
	return bal, nil
}

// balanceAtDepth walks depth blocks back from the tip, subtracting the
// account's native deltas along the way. With onlyPositive set, only funds
// the account received are subtracted. The walk stops early at the genesis
// block or when the chain runs out.
func (l *Ledger) balanceAtDepth(addr basics.Address, depth int, onlyPositive bool) (basics.Amount, error) {
	bal, err := l.Balance(addr, basics.NativeAsset)
	if err != nil {
		return basics.Amount{}, err
	}
	_, tipHeight, ok, err := l.lastBlockLocked()
	if err != nil || !ok {
		return bal, err
	}

	h := tipHeight
	for i := 0; i < depth && h > 1; i++ {
		b, ok, err := l.BlockByHeight(h)
		if err != nil {
			return basics.Amount{}, err
		}
		if !ok {
			break
		}
		for _, tx := range b.Transactions {
			if !tx.Involved(addr) {
				continue
			}
			amt := tx.Amount(addr)
			if onlyPositive && !amt.IsPositive() {
				continue
			}
			bal = bal.Sub(amt)
		}
		records, err := l.ATTransactionsAtHeight(h)
		if err != nil {
			return basics.Amount{}, err
		}
		for _, record := range records {
			if record.Recipient == addr {
				bal = bal.Sub(record.Amount)
			}
		}
		h--
	}
	return bal, nil
}
