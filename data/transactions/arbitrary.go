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
	"github.com/qoranode/go-qora/crypto"
	"github.com/qoranode/go-qora/data/basics"
	"github.com/qoranode/go-qora/logging"
	"github.com/qoranode/go-qora/protocol"
)

// Arbitrary-service transactions carry a service tag plus an opaque payload
// interpreted by an external collaborator (name storage, posts, comments),
// along with optional payments.
//
// A failure inside the service payload is not a consensus failure: the
// financial half (fee, references, payments) always commits, and the
// service error is only logged. Every node carries the same financial state
// whether or not its service layer can make sense of the payload.

// ServiceProcessor interprets arbitrary-service payloads.
type ServiceProcessor interface {
	ProcessUpdate(service int32, data []byte, txSig crypto.Signature, creator basics.Address) error
	OrphanUpdate(service int32, data []byte, txSig crypto.Signature, creator basics.Address) error
}

func (tx *Transaction) encodeArbitraryFields(enc *protocol.Encoder) {
	enc.Int32(tx.Service)
	enc.Bytes32(tx.Data)
	enc.Int32(int32(len(tx.Payments)))
	for _, p := range tx.Payments {
		p.encode(enc)
	}
}

func (tx *Transaction) decodeArbitraryFields(dec *protocol.Decoder) error {
	var err error
	if tx.Service, err = dec.Int32(); err != nil {
		return err
	}
	if tx.Data, err = dec.Bytes32(); err != nil {
		return err
	}
	count, err := dec.Int32()
	if err != nil {
		return err
	}
	if count < 0 || int(count) > dec.Remaining()/paymentEncodedLength {
		return fmt.Errorf("%w: payment count %d", protocol.ErrTruncated, count)
	}
	if count > 0 {
		tx.Payments = make([]Payment, count)
	}
	for i := range tx.Payments {
		if tx.Payments[i], err = decodePayment(dec); err != nil {
			return err
		}
	}
	return nil
}

func (tx *Transaction) isValidArbitrary(b Balances, proto config.ConsensusParams) (ValidationCode, error) {
	if len(tx.Data) == 0 || len(tx.Data) > proto.MaxDataLength {
		return InvalidDataLength, nil
	}
	if len(tx.Payments) > proto.MaxPayments {
		return InvalidPaymentsLength, nil
	}
	return tx.validatePayments(b, false)
}

func (tx *Transaction) processArbitrary(b Balances, env Env) error {
	if env.Services == nil {
		return nil
	}
	err := env.Services.ProcessUpdate(tx.Service, tx.Data, tx.Signature, tx.CreatorAddress())
	if err != nil {
		env.logger().WithFields(logging.Fields{
			"service": tx.Service,
			"tx":      base58.Encode(tx.Signature[:]),
		}).Warnf("service payload failed to process: %v", err)
	}
	return nil
}

func (tx *Transaction) orphanArbitrary(b Balances, env Env) error {
	if env.Services == nil {
		return nil
	}
	err := env.Services.OrphanUpdate(tx.Service, tx.Data, tx.Signature, tx.CreatorAddress())
	if err != nil {
		env.logger().WithFields(logging.Fields{
			"service": tx.Service,
			"tx":      base58.Encode(tx.Signature[:]),
		}).Warnf("service payload failed to orphan: %v", err)
	}
	return nil
}
