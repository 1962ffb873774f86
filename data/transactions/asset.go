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
	"fmt"

	"github.com/btcsuite/btcd/btcutil/base58"

	"github.com/qoranode/go-qora/config"
	"github.com/qoranode/go-qora/data/basics"
	"github.com/qoranode/go-qora/protocol"
)

// Asset issuance. Transfers are plain payments in a foreign asset and need
// no code of their own beyond validation.
//
// The issued asset receives the next free key; the issuing transaction's
// signature is indexed so orphaning can find and retract exactly the asset
// it created, even after later issuances.

const amountUnit = 100000000

func (tx *Transaction) encodeIssueAssetFields(enc *protocol.Encoder) {
	enc.String32(tx.AssetName)
	enc.String32(tx.AssetDescription)
	enc.Int64(tx.AssetQuantity.Raw)
	if tx.AssetDivisible {
		enc.Byte(1)
	} else {
		enc.Byte(0)
	}
}

func (tx *Transaction) decodeIssueAssetFields(dec *protocol.Decoder) error {
	var err error
	if tx.AssetName, err = dec.String32(); err != nil {
		return err
	}
	if tx.AssetDescription, err = dec.String32(); err != nil {
		return err
	}
	raw, err := dec.Int64()
	if err != nil {
		return err
	}
	tx.AssetQuantity = basics.AmountFromRaw(raw)
	divisible, err := dec.Byte()
	if err != nil {
		return err
	}
	tx.AssetDivisible = divisible == 1
	return nil
}

func (tx *Transaction) isValidIssueAsset(b Balances, proto config.ConsensusParams) (ValidationCode, error) {
	if len(tx.AssetName) == 0 || len(tx.AssetName) > proto.MaxNameLength {
		return InvalidNameLength, nil
	}
	if len(tx.AssetDescription) > proto.MaxDescriptionLength {
		return InvalidDescription, nil
	}
	if !tx.AssetQuantity.IsPositive() {
		return InvalidQuantity, nil
	}
	// An indivisible asset exists only in whole units.
	if !tx.AssetDivisible && tx.AssetQuantity.Raw%amountUnit != 0 {
		return InvalidQuantity, nil
	}
	return ValidateOK, nil
}

func (tx *Transaction) processIssueAsset(b Balances) error {
	id, err := b.NextAssetID()
	if err != nil {
		return err
	}
	asset := basics.Asset{
		Owner:       tx.CreatorAddress(),
		Name:        tx.AssetName,
		Description: tx.AssetDescription,
		Quantity:    tx.AssetQuantity,
		Divisible:   tx.AssetDivisible,
		Reference:   tx.Signature,
	}
	if err := b.PutAsset(id, asset, tx.Signature); err != nil {
		return err
	}
	if err := b.SetIssuedAsset(tx.Signature, id); err != nil {
		return err
	}
	return addToBalance(b, tx.CreatorAddress(), id, tx.AssetQuantity)
}

func (tx *Transaction) orphanIssueAsset(b Balances) error {
	id, ok, err := b.IssuedAsset(tx.Signature)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("transactions: issued-asset index missing entry for %s", base58.Encode(tx.Signature[:]))
	}
	if err := subFromBalance(b, tx.CreatorAddress(), id, tx.AssetQuantity); err != nil {
		return err
	}
	if err := b.DeleteIssuedAsset(tx.Signature); err != nil {
		return err
	}
	return b.RestoreAsset(id, tx.Signature)
}
