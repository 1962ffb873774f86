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

// Exchange order lifecycle: creating an order escrows the offered amount
// out of the creator's balance; cancelling refunds it. Orders are keyed by
// the signature of the creating transaction.

func (tx *Transaction) encodeOrderFields(enc *protocol.Encoder) {
	switch tx.Type {
	case protocol.CreateOrderTx:
		enc.Uint64(uint64(tx.HaveAsset))
		enc.Uint64(uint64(tx.WantAsset))
		enc.Int64(tx.OrderAmount.Raw)
		enc.Int64(tx.OrderPrice.Raw)
	case protocol.CancelOrderTx:
		enc.Fixed(tx.OrderID[:])
	}
}

func (tx *Transaction) decodeOrderFields(dec *protocol.Decoder) error {
	switch tx.Type {
	case protocol.CreateOrderTx:
		have, err := dec.Uint64()
		if err != nil {
			return err
		}
		tx.HaveAsset = basics.AssetID(have)
		want, err := dec.Uint64()
		if err != nil {
			return err
		}
		tx.WantAsset = basics.AssetID(want)
		amt, err := dec.Int64()
		if err != nil {
			return err
		}
		tx.OrderAmount = basics.AmountFromRaw(amt)
		price, err := dec.Int64()
		if err != nil {
			return err
		}
		tx.OrderPrice = basics.AmountFromRaw(price)
		return nil
	case protocol.CancelOrderTx:
		id, err := dec.Fixed(crypto.SignatureSize)
		if err != nil {
			return err
		}
		copy(tx.OrderID[:], id)
		return nil
	}
	return nil
}

func (tx *Transaction) assetExists(b Balances, id basics.AssetID) (bool, error) {
	if id == basics.NativeAsset {
		return true, nil
	}
	_, ok, err := b.Asset(id)
	return ok, err
}

func (tx *Transaction) isValidCreateOrder(b Balances) (ValidationCode, error) {
	if tx.HaveAsset == tx.WantAsset {
		return HaveEqualsWant, nil
	}
	for _, id := range []basics.AssetID{tx.HaveAsset, tx.WantAsset} {
		ok, err := tx.assetExists(b, id)
		if err != nil {
			return ValidateOK, err
		}
		if !ok {
			return AssetDoesNotExist, nil
		}
	}
	if !tx.OrderAmount.IsPositive() {
		return NegativeAmount, nil
	}
	if !tx.OrderPrice.IsPositive() {
		return NegativePrice, nil
	}

	// The offered amount is escrowed on top of the fee.
	creator := tx.CreatorAddress()
	needed := tx.OrderAmount
	if tx.HaveAsset == basics.NativeAsset {
		needed = needed.Add(tx.Fee)
	}
	bal, err := b.Balance(creator, tx.HaveAsset)
	if err != nil {
		return ValidateOK, err
	}
	if bal.LessThan(needed) {
		return NoBalance, nil
	}
	return ValidateOK, nil
}

func (tx *Transaction) isValidCancelOrder(b Balances) (ValidationCode, error) {
	order, exists, err := b.Order(tx.OrderID)
	if err != nil {
		return ValidateOK, err
	}
	if !exists {
		return OrderDoesNotExist, nil
	}
	if order.Creator != tx.CreatorAddress() {
		return InvalidOrderCreator, nil
	}
	return ValidateOK, nil
}

func (tx *Transaction) processCreateOrder(b Balances) error {
	creator := tx.CreatorAddress()
	if err := subFromBalance(b, creator, tx.HaveAsset, tx.OrderAmount); err != nil {
		return err
	}
	order := basics.Order{
		Creator: creator,
		Have:    tx.HaveAsset,
		Want:    tx.WantAsset,
		Amount:  tx.OrderAmount,
		Price:   tx.OrderPrice,
	}
	return b.PutOrder(tx.Signature, order, tx.Signature)
}

func (tx *Transaction) orphanCreateOrder(b Balances) error {
	if err := b.RestoreOrder(tx.Signature, tx.Signature); err != nil {
		return err
	}
	return addToBalance(b, tx.CreatorAddress(), tx.HaveAsset, tx.OrderAmount)
}

func (tx *Transaction) processCancelOrder(b Balances) error {
	order, _, err := b.Order(tx.OrderID)
	if err != nil {
		return err
	}
	if err := b.DeleteOrder(tx.OrderID, tx.Signature); err != nil {
		return err
	}
	return addToBalance(b, order.Creator, order.Have, order.Amount)
}

func (tx *Transaction) orphanCancelOrder(b Balances) error {
	if err := b.RestoreOrder(tx.OrderID, tx.Signature); err != nil {
		return err
	}
	order, _, err := b.Order(tx.OrderID)
	if err != nil {
		return err
	}
	return subFromBalance(b, order.Creator, order.Have, order.Amount)
}
