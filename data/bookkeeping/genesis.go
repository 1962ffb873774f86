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
	"github.com/qoranode/go-qora/crypto"
	"github.com/qoranode/go-qora/data/basics"
	"github.com/qoranode/go-qora/data/transactions"
)

// Allocation is one initial balance grant in the genesis block.
type Allocation struct {
	Recipient basics.Address
	Amount    basics.Amount
}

// MakeGenesisBlock builds the height-1 block for a chain starting at
// timestamp with the given allocations. The block has no generator; its
// signature derives from its content, so two nodes configured with the same
// genesis parameters agree on the genesis signature without exchanging it.
func MakeGenesisBlock(timestamp int64, allocations []Allocation) *Block {
	b := &Block{
		Version:   1,
		Timestamp: timestamp,
	}
	for _, a := range allocations {
		b.Transactions = append(b.Transactions, transactions.NewGenesis(timestamp, a.Recipient, a.Amount))
	}
	b.GeneratorSignature = deriveGenesisSignature(b.SignedBytes())
	return b
}

// deriveGenesisSignature produces the content-bound pseudo-signature used
// by generator-less blocks.
func deriveGenesisSignature(signed []byte) crypto.Signature {
	first := crypto.Hash(signed)
	second := crypto.DoubleHash(signed)
	var sig crypto.Signature
	copy(sig[:crypto.DigestSize], first[:])
	copy(sig[crypto.DigestSize:], second[:])
	return sig
}
