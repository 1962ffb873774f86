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
	"strings"

	"github.com/qoranode/go-qora/config"
	"github.com/qoranode/go-qora/data/basics"
	"github.com/qoranode/go-qora/protocol"
)

// The five name kinds: register, update, sell, cancel sale, buy. Name
// records and sale listings are history-backed maps, so orphaning restores
// the exact previous record rather than recomputing it.

func (tx *Transaction) encodeNameFields(enc *protocol.Encoder) {
	enc.String32(tx.Name)
	switch tx.Type {
	case protocol.RegisterNameTx:
		enc.String32(tx.NameValue)
	case protocol.UpdateNameTx:
		enc.Fixed(tx.NewOwner[:])
		enc.String32(tx.NameValue)
	case protocol.SellNameTx:
		enc.Int64(tx.Price.Raw)
	case protocol.CancelSellNameTx:
	case protocol.BuyNameTx:
		enc.Int64(tx.Price.Raw)
		enc.Fixed(tx.Seller[:])
	}
}

func (tx *Transaction) decodeNameFields(dec *protocol.Decoder) error {
	var err error
	if tx.Name, err = dec.String32(); err != nil {
		return err
	}
	switch tx.Type {
	case protocol.RegisterNameTx:
		tx.NameValue, err = dec.String32()
		return err
	case protocol.UpdateNameTx:
		owner, err := dec.Fixed(basics.AddressLength)
		if err != nil {
			return err
		}
		copy(tx.NewOwner[:], owner)
		tx.NameValue, err = dec.String32()
		return err
	case protocol.SellNameTx:
		raw, err := dec.Int64()
		if err != nil {
			return err
		}
		tx.Price = basics.AmountFromRaw(raw)
		return nil
	case protocol.CancelSellNameTx:
		return nil
	case protocol.BuyNameTx:
		raw, err := dec.Int64()
		if err != nil {
			return err
		}
		tx.Price = basics.AmountFromRaw(raw)
		seller, err := dec.Fixed(basics.AddressLength)
		if err != nil {
			return err
		}
		copy(tx.Seller[:], seller)
		return nil
	}
	return nil
}

func (tx *Transaction) isValidRegisterName(b Balances, proto config.ConsensusParams) (ValidationCode, error) {
	if len(tx.Name) == 0 || len(tx.Name) > proto.MaxNameLength {
		return InvalidNameLength, nil
	}
	if tx.Name != strings.ToLower(tx.Name) {
		return NameNotLowerCase, nil
	}
	if len(tx.NameValue) == 0 || len(tx.NameValue) > proto.MaxValueLength {
		return InvalidValueLength, nil
	}
	_, exists, err := b.Name(tx.Name)
	if err != nil {
		return ValidateOK, err
	}
	if exists {
		return NameAlreadyRegistered, nil
	}
	return ValidateOK, nil
}

// ownedName loads the name and checks the transaction creator owns it.
func (tx *Transaction) ownedName(b Balances) (basics.Name, ValidationCode, error) {
	rec, exists, err := b.Name(tx.Name)
	if err != nil {
		return rec, ValidateOK, err
	}
	if !exists {
		return rec, NameDoesNotExist, nil
	}
	if rec.Owner != tx.CreatorAddress() {
		return rec, InvalidNameOwner, nil
	}
	return rec, ValidateOK, nil
}

func (tx *Transaction) isValidUpdateName(b Balances, proto config.ConsensusParams) (ValidationCode, error) {
	if len(tx.NameValue) == 0 || len(tx.NameValue) > proto.MaxValueLength {
		return InvalidValueLength, nil
	}
	if !tx.NewOwner.Valid() {
		return InvalidAddress, nil
	}
	if _, code, err := tx.ownedName(b); code != ValidateOK || err != nil {
		return code, err
	}
	// A listed name cannot change hands underneath its sale.
	_, forSale, err := b.NameSale(tx.Name)
	if err != nil {
		return ValidateOK, err
	}
	if forSale {
		return NameAlreadyForSale, nil
	}
	return ValidateOK, nil
}

func (tx *Transaction) isValidSellName(b Balances) (ValidationCode, error) {
	if !tx.Price.IsPositive() {
		return NegativePrice, nil
	}
	if _, code, err := tx.ownedName(b); code != ValidateOK || err != nil {
		return code, err
	}
	_, forSale, err := b.NameSale(tx.Name)
	if err != nil {
		return ValidateOK, err
	}
	if forSale {
		return NameAlreadyForSale, nil
	}
	return ValidateOK, nil
}

func (tx *Transaction) isValidCancelSellName(b Balances) (ValidationCode, error) {
	if _, code, err := tx.ownedName(b); code != ValidateOK || err != nil {
		return code, err
	}
	_, forSale, err := b.NameSale(tx.Name)
	if err != nil {
		return ValidateOK, err
	}
	if !forSale {
		return NameNotForSale, nil
	}
	return ValidateOK, nil
}

func (tx *Transaction) isValidBuyName(b Balances) (ValidationCode, error) {
	rec, exists, err := b.Name(tx.Name)
	if err != nil {
		return ValidateOK, err
	}
	if !exists {
		return NameDoesNotExist, nil
	}
	if rec.Owner == tx.CreatorAddress() {
		return BuyerAlreadyOwner, nil
	}
	if rec.Owner != tx.Seller {
		return InvalidNameOwner, nil
	}
	asking, forSale, err := b.NameSale(tx.Name)
	if err != nil {
		return ValidateOK, err
	}
	if !forSale {
		return NameNotForSale, nil
	}
	if tx.Price != asking {
		return InvalidAmount, nil
	}
	bal, err := b.Balance(tx.CreatorAddress(), basics.NativeAsset)
	if err != nil {
		return ValidateOK, err
	}
	if bal.LessThan(tx.Fee.Add(tx.Price)) {
		return NoBalance, nil
	}
	return ValidateOK, nil
}

func (tx *Transaction) processRegisterName(b Balances) error {
	rec := basics.Name{Owner: tx.CreatorAddress(), Value: tx.NameValue}
	return b.PutName(tx.Name, rec, tx.Signature)
}

func (tx *Transaction) orphanRegisterName(b Balances) error {
	return b.RestoreName(tx.Name, tx.Signature)
}

func (tx *Transaction) processUpdateName(b Balances) error {
	rec := basics.Name{Owner: tx.NewOwner, Value: tx.NameValue}
	return b.PutName(tx.Name, rec, tx.Signature)
}

func (tx *Transaction) orphanUpdateName(b Balances) error {
	return b.RestoreName(tx.Name, tx.Signature)
}

func (tx *Transaction) processSellName(b Balances) error {
	return b.PutNameSale(tx.Name, tx.Price, tx.Signature)
}

func (tx *Transaction) orphanSellName(b Balances) error {
	return b.RestoreNameSale(tx.Name, tx.Signature)
}

func (tx *Transaction) processCancelSellName(b Balances) error {
	return b.DeleteNameSale(tx.Name, tx.Signature)
}

func (tx *Transaction) orphanCancelSellName(b Balances) error {
	return b.RestoreNameSale(tx.Name, tx.Signature)
}

func (tx *Transaction) processBuyName(b Balances) error {
	buyer := tx.CreatorAddress()
	if err := subFromBalance(b, buyer, basics.NativeAsset, tx.Price); err != nil {
		return err
	}
	if err := addToBalance(b, tx.Seller, basics.NativeAsset, tx.Price); err != nil {
		return err
	}
	rec, _, err := b.Name(tx.Name)
	if err != nil {
		return err
	}
	rec.Owner = buyer
	if err := b.PutName(tx.Name, rec, tx.Signature); err != nil {
		return err
	}
	return b.DeleteNameSale(tx.Name, tx.Signature)
}

func (tx *Transaction) orphanBuyName(b Balances) error {
	if err := b.RestoreNameSale(tx.Name, tx.Signature); err != nil {
		return err
	}
	if err := b.RestoreName(tx.Name, tx.Signature); err != nil {
		return err
	}
	buyer := tx.CreatorAddress()
	if err := subFromBalance(b, tx.Seller, basics.NativeAsset, tx.Price); err != nil {
		return err
	}
	return addToBalance(b, buyer, basics.NativeAsset, tx.Price)
}
