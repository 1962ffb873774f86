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
	"github.com/qoranode/go-qora/config"
	"github.com/qoranode/go-qora/protocol"
)

// Message transactions attach opaque bytes to an optional payment. The
// payload never touches consensus state; only the payment half does. A zero
// payment amount is allowed, unlike plain payments.

func (tx *Transaction) encodeMessageFields(enc *protocol.Encoder) {
	tx.Payments[0].encode(enc)
	enc.Bytes32(tx.Data)
	if tx.IsText {
		enc.Byte(1)
	} else {
		enc.Byte(0)
	}
	if tx.IsEncrypted {
		enc.Byte(1)
	} else {
		enc.Byte(0)
	}
}

func (tx *Transaction) decodeMessageFields(dec *protocol.Decoder) error {
	p, err := decodePayment(dec)
	if err != nil {
		return err
	}
	tx.Payments = []Payment{p}
	if tx.Data, err = dec.Bytes32(); err != nil {
		return err
	}
	isText, err := dec.Byte()
	if err != nil {
		return err
	}
	tx.IsText = isText == 1
	isEncrypted, err := dec.Byte()
	if err != nil {
		return err
	}
	tx.IsEncrypted = isEncrypted == 1
	return nil
}

func (tx *Transaction) isValidMessage(b Balances, proto config.ConsensusParams) (ValidationCode, error) {
	if len(tx.Data) == 0 || len(tx.Data) > proto.MaxDataLength {
		return InvalidDataLength, nil
	}
	return tx.validatePayments(b, true)
}
