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

package at

import (
	"fmt"

	"github.com/qoranode/go-qora/data/basics"
	"github.com/qoranode/go-qora/protocol"
)

// ATTransaction is the observable effect of one AT's execution at one
// block height: coins moved from the AT's account plus opaque message
// bytes. At most one record exists per AT per height; records are keyed by
// (height, sequence-in-block).
type ATTransaction struct {
	AT        basics.Address
	Recipient basics.Address
	Amount    basics.Amount
	Message   []byte
}

// Encode returns the storage encoding of the record (little-endian, like
// all AT data).
func (t ATTransaction) Encode() []byte {
	enc := protocol.NewLittleEncoder(2*IDSize + 8 + 4 + len(t.Message))
	enc.Fixed(t.AT[:])
	enc.Fixed(t.Recipient[:])
	enc.Int64(t.Amount.Raw)
	enc.Bytes32(t.Message)
	return enc.Bytes()
}

// DecodeATTransaction parses the storage encoding of an execution record.
func DecodeATTransaction(b []byte) (ATTransaction, error) {
	dec := protocol.NewLittleDecoder(b)
	var t ATTransaction
	atID, err := dec.Fixed(IDSize)
	if err != nil {
		return t, fmt.Errorf("at: parsing record at id: %w", err)
	}
	copy(t.AT[:], atID)
	recipient, err := dec.Fixed(IDSize)
	if err != nil {
		return t, fmt.Errorf("at: parsing record recipient: %w", err)
	}
	copy(t.Recipient[:], recipient)
	amt, err := dec.Int64()
	if err != nil {
		return t, fmt.Errorf("at: parsing record amount: %w", err)
	}
	t.Amount = basics.AmountFromRaw(amt)
	if t.Message, err = dec.Bytes32(); err != nil {
		return t, fmt.Errorf("at: parsing record message: %w", err)
	}
	if len(t.Message) == 0 {
		t.Message = nil
	}
	if !dec.Finished() {
		return t, fmt.Errorf("at: %w: %d trailing bytes in record", protocol.ErrTruncated, dec.Remaining())
	}
	return t, nil
}
