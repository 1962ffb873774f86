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

// Package bookkeeping defines blocks: ordered transaction batches linked to
// their parent by the parent's signature. Block height is not part of the
// encoding; it is derivable only by walking from genesis or from a stored
// height index.
package bookkeeping

import (
	"fmt"

	"github.com/qoranode/go-qora/crypto"
	"github.com/qoranode/go-qora/data/basics"
	"github.com/qoranode/go-qora/data/transactions"
	"github.com/qoranode/go-qora/protocol"
)

// MaxTransactionsPerBlock bounds a block's transaction count.
const MaxTransactionsPerBlock = 100

// Block is one block of the chain. Its signature doubles as its identity
// and as the reference of its child.
type Block struct {
	Version   int32
	Reference crypto.Signature
	Timestamp int64

	GeneratorPK  crypto.PublicKey
	Transactions []*transactions.Transaction

	GeneratorSignature crypto.Signature
}

// Signature returns the block's self-identifying signature.
func (b *Block) Signature() crypto.Signature {
	return b.GeneratorSignature
}

func (b *Block) encode(withSignature bool) []byte {
	enc := protocol.NewEncoder(512)
	enc.Int32(b.Version)
	enc.Fixed(b.Reference[:])
	enc.Int64(b.Timestamp)
	enc.Fixed(b.GeneratorPK[:])
	enc.Int32(int32(len(b.Transactions)))
	for _, tx := range b.Transactions {
		enc.Bytes32(tx.Bytes())
	}
	if withSignature {
		enc.Fixed(b.GeneratorSignature[:])
	}
	return enc.Bytes()
}

// SignedBytes is the encoding the generator signature covers.
func (b *Block) SignedBytes() []byte {
	return b.encode(false)
}

// Bytes is the full wire encoding. ParseBlock is its exact inverse.
func (b *Block) Bytes() []byte {
	return b.encode(true)
}

// Sign computes and attaches the generator signature.
func (b *Block) Sign(secrets *crypto.SignatureSecrets) {
	b.GeneratorSignature = secrets.Sign(b.SignedBytes())
}

// IsSignatureValid verifies the generator signature. Genesis blocks carry a
// derived signature instead of an ed25519 one.
func (b *Block) IsSignatureValid() bool {
	if b.GeneratorPK.IsZero() {
		return b.GeneratorSignature == deriveGenesisSignature(b.SignedBytes())
	}
	return b.GeneratorPK.Verify(b.SignedBytes(), b.GeneratorSignature)
}

// TotalFee sums the fees of every transaction in the block.
func (b *Block) TotalFee() basics.Amount {
	var total basics.Amount
	for _, tx := range b.Transactions {
		total = total.Add(tx.Fee)
	}
	return total
}

// ParseBlock decodes the full wire encoding of a block. Trailing bytes and
// truncation are format errors.
func ParseBlock(raw []byte) (*Block, error) {
	dec := protocol.NewDecoder(raw)
	b := &Block{}
	var err error
	if b.Version, err = dec.Int32(); err != nil {
		return nil, fmt.Errorf("bookkeeping: parsing version: %w", err)
	}
	ref, err := dec.Fixed(crypto.SignatureSize)
	if err != nil {
		return nil, fmt.Errorf("bookkeeping: parsing reference: %w", err)
	}
	copy(b.Reference[:], ref)
	if b.Timestamp, err = dec.Int64(); err != nil {
		return nil, fmt.Errorf("bookkeeping: parsing timestamp: %w", err)
	}
	pk, err := dec.Fixed(crypto.PublicKeySize)
	if err != nil {
		return nil, fmt.Errorf("bookkeeping: parsing generator key: %w", err)
	}
	copy(b.GeneratorPK[:], pk)

	count, err := dec.Int32()
	if err != nil {
		return nil, fmt.Errorf("bookkeeping: parsing transaction count: %w", err)
	}
	if count < 0 || count > MaxTransactionsPerBlock {
		return nil, fmt.Errorf("bookkeeping: transaction count %d out of range", count)
	}
	if count > 0 {
		b.Transactions = make([]*transactions.Transaction, count)
	}
	for i := range b.Transactions {
		txBytes, err := dec.Bytes32()
		if err != nil {
			return nil, fmt.Errorf("bookkeeping: parsing transaction %d: %w", i, err)
		}
		if b.Transactions[i], err = transactions.Parse(txBytes); err != nil {
			return nil, fmt.Errorf("bookkeeping: parsing transaction %d: %w", i, err)
		}
	}

	sig, err := dec.Fixed(crypto.SignatureSize)
	if err != nil {
		return nil, fmt.Errorf("bookkeeping: parsing signature: %w", err)
	}
	copy(b.GeneratorSignature[:], sig)
	if !dec.Finished() {
		return nil, fmt.Errorf("bookkeeping: %w: %d trailing bytes", protocol.ErrTruncated, dec.Remaining())
	}
	return b, nil
}
