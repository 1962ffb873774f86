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
	"github.com/qoranode/go-qora/crypto"
	"github.com/qoranode/go-qora/data/basics"
	"github.com/qoranode/go-qora/protocol"
)

// Genesis transactions seed the initial balance allocations in the genesis
// block. They have no creator: the reference and public key are zero, the
// fee is zero, and the signature is derived from the content rather than
// produced by a key.

// NewGenesis builds the allocation transaction crediting recipient with
// amount of the native coin.
func NewGenesis(timestamp int64, recipient basics.Address, amount basics.Amount) *Transaction {
	tx := &Transaction{
		Type:      protocol.GenesisTx,
		Timestamp: timestamp,
		Payments:  []Payment{{Recipient: recipient, Asset: basics.NativeAsset, Amount: amount}},
	}
	tx.Signature = tx.genesisSignature()
	return tx
}

func (tx *Transaction) encodeGenesisFields(enc *protocol.Encoder) {
	tx.Payments[0].encode(enc)
}

func (tx *Transaction) decodeGenesisFields(dec *protocol.Decoder) error {
	p, err := decodePayment(dec)
	if err != nil {
		return err
	}
	tx.Payments = []Payment{p}
	return nil
}

// genesisSignature derives the content-bound pseudo-signature of a genesis
// transaction.
func (tx *Transaction) genesisSignature() crypto.Signature {
	signed := tx.SignedBytes()
	first := crypto.Hash(signed)
	second := crypto.DoubleHash(signed)
	var sig crypto.Signature
	copy(sig[:crypto.DigestSize], first[:])
	copy(sig[crypto.DigestSize:], second[:])
	return sig
}

func (tx *Transaction) isValidGenesis(b Balances) (ValidationCode, error) {
	p := tx.Payments[0]
	if !p.Recipient.Valid() {
		return InvalidAddress, nil
	}
	if p.Amount.IsNegative() {
		return NegativeAmount, nil
	}
	return ValidateOK, nil
}

func (tx *Transaction) processGenesis(b Balances) error {
	p := tx.Payments[0]
	if err := addToBalance(b, p.Recipient, basics.NativeAsset, p.Amount); err != nil {
		return err
	}
	return b.SetReference(p.Recipient, tx.Signature)
}

func (tx *Transaction) orphanGenesis(b Balances) error {
	p := tx.Payments[0]
	if err := subFromBalance(b, p.Recipient, basics.NativeAsset, p.Amount); err != nil {
		return err
	}
	return b.ClearReference(p.Recipient)
}
