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
	"github.com/qoranode/go-qora/at"
	"github.com/qoranode/go-qora/config"
	"github.com/qoranode/go-qora/data/basics"
	"github.com/qoranode/go-qora/protocol"
)

// AT deployment. The new AT's id (and account address) derives from the
// deploying transaction's signature; the initial funding moves from the
// deployer to that account in the same step.

func (tx *Transaction) encodeDeployATFields(enc *protocol.Encoder) {
	enc.String32(tx.ATName)
	enc.String32(tx.ATDescription)
	enc.String32(tx.ATType)
	enc.String32(tx.ATTags)
	enc.Bytes32(tx.CreationBytes)
	enc.Int64(tx.ATAmount.Raw)
}

func (tx *Transaction) decodeDeployATFields(dec *protocol.Decoder) error {
	var err error
	if tx.ATName, err = dec.String32(); err != nil {
		return err
	}
	if tx.ATDescription, err = dec.String32(); err != nil {
		return err
	}
	if tx.ATType, err = dec.String32(); err != nil {
		return err
	}
	if tx.ATTags, err = dec.String32(); err != nil {
		return err
	}
	if tx.CreationBytes, err = dec.Bytes32(); err != nil {
		return err
	}
	raw, err := dec.Int64()
	if err != nil {
		return err
	}
	tx.ATAmount = basics.AmountFromRaw(raw)
	return nil
}

func (tx *Transaction) isValidDeployAT(b Balances, proto config.ConsensusParams) (ValidationCode, error) {
	if len(tx.ATName) == 0 || len(tx.ATName) > proto.MaxNameLength {
		return InvalidNameLength, nil
	}
	if len(tx.ATDescription) > proto.MaxDescriptionLength {
		return InvalidDescription, nil
	}
	if len(tx.ATType) > at.MaxMetadataLength {
		return InvalidTypeLength, nil
	}
	if len(tx.ATTags) > at.MaxMetadataLength {
		return InvalidTagsLength, nil
	}
	if _, err := at.ParseCreationBytes(tx.CreationBytes); err != nil {
		return InvalidCreationBytes, nil
	}
	if tx.ATAmount.IsNegative() {
		return NegativeAmount, nil
	}
	bal, err := b.Balance(tx.CreatorAddress(), basics.NativeAsset)
	if err != nil {
		return ValidateOK, err
	}
	if bal.LessThan(tx.Fee.Add(tx.ATAmount)) {
		return NoBalance, nil
	}
	return ValidateOK, nil
}

func (tx *Transaction) processDeployAT(b Balances) error {
	creation, err := at.ParseCreationBytes(tx.CreationBytes)
	if err != nil {
		return err
	}
	height, err := b.Height()
	if err != nil {
		return err
	}
	id := basics.ATAddressFromSignature(tx.Signature)
	instance := at.NewFromCreation(id, tx.CreatorAddress(), tx.ATName, tx.ATDescription, tx.ATType, tx.ATTags, creation, height)
	if err := b.PutAT(instance, tx.Signature); err != nil {
		return err
	}
	if err := subFromBalance(b, tx.CreatorAddress(), basics.NativeAsset, tx.ATAmount); err != nil {
		return err
	}
	return addToBalance(b, id, basics.NativeAsset, tx.ATAmount)
}

func (tx *Transaction) orphanDeployAT(b Balances) error {
	id := basics.ATAddressFromSignature(tx.Signature)
	if err := subFromBalance(b, id, basics.NativeAsset, tx.ATAmount); err != nil {
		return err
	}
	if err := addToBalance(b, tx.CreatorAddress(), basics.NativeAsset, tx.ATAmount); err != nil {
		return err
	}
	return b.RestoreAT(id, tx.Signature)
}
