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

package basics

import (
	"fmt"

	"github.com/qoranode/go-qora/crypto"
	"github.com/qoranode/go-qora/protocol"
)

// Asset describes one issued asset. The native coin occupies key 0 and is
// registered at genesis.
type Asset struct {
	Owner       Address
	Name        string
	Description string
	Quantity    Amount
	Divisible   bool
	// Reference is the signature of the issuing transaction.
	Reference crypto.Signature
}

// Encode returns the storage encoding of the asset.
func (a Asset) Encode() []byte {
	enc := protocol.NewEncoder(128 + len(a.Name) + len(a.Description))
	enc.Fixed(a.Owner[:])
	enc.String32(a.Name)
	enc.String32(a.Description)
	enc.Int64(a.Quantity.Raw)
	if a.Divisible {
		enc.Byte(1)
	} else {
		enc.Byte(0)
	}
	enc.Fixed(a.Reference[:])
	return enc.Bytes()
}

// DecodeAsset parses the storage encoding of an asset.
func DecodeAsset(b []byte) (Asset, error) {
	dec := protocol.NewDecoder(b)
	var a Asset
	owner, err := dec.Fixed(AddressLength)
	if err != nil {
		return a, err
	}
	copy(a.Owner[:], owner)
	if a.Name, err = dec.String32(); err != nil {
		return a, err
	}
	if a.Description, err = dec.String32(); err != nil {
		return a, err
	}
	raw, err := dec.Int64()
	if err != nil {
		return a, err
	}
	a.Quantity = AmountFromRaw(raw)
	div, err := dec.Byte()
	if err != nil {
		return a, err
	}
	a.Divisible = div == 1
	ref, err := dec.Fixed(crypto.SignatureSize)
	if err != nil {
		return a, err
	}
	copy(a.Reference[:], ref)
	if !dec.Finished() {
		return a, fmt.Errorf("asset: %w: %d trailing bytes", protocol.ErrTruncated, dec.Remaining())
	}
	return a, nil
}

// Name is a registered name: an owner plus an arbitrary value string.
type Name struct {
	Owner Address
	Value string
}

// Encode returns the storage encoding of the name record.
func (n Name) Encode() []byte {
	enc := protocol.NewEncoder(AddressLength + 4 + len(n.Value))
	enc.Fixed(n.Owner[:])
	enc.String32(n.Value)
	return enc.Bytes()
}

// DecodeName parses the storage encoding of a name record.
func DecodeName(b []byte) (Name, error) {
	dec := protocol.NewDecoder(b)
	var n Name
	owner, err := dec.Fixed(AddressLength)
	if err != nil {
		return n, err
	}
	copy(n.Owner[:], owner)
	if n.Value, err = dec.String32(); err != nil {
		return n, err
	}
	return n, nil
}

// PollOption is one poll option together with the voters that picked it.
type PollOption struct {
	Name   string
	Voters []Address
}

// Poll is a created poll: creator, description, and its options.
type Poll struct {
	Creator     Address
	Description string
	Options     []PollOption
}

// OptionIndex returns the index of the option a voter has currently voted
// for, or -1.
func (p Poll) OptionIndex(voter Address) int {
	for i, opt := range p.Options {
		for _, v := range opt.Voters {
			if v == voter {
				return i
			}
		}
	}
	return -1
}

// Encode returns the storage encoding of the poll.
func (p Poll) Encode() []byte {
	enc := protocol.NewEncoder(256)
	enc.Fixed(p.Creator[:])
	enc.String32(p.Description)
	enc.Int32(int32(len(p.Options)))
	for _, opt := range p.Options {
		enc.String32(opt.Name)
		enc.Int32(int32(len(opt.Voters)))
		for _, v := range opt.Voters {
			enc.Fixed(v[:])
		}
	}
	return enc.Bytes()
}

// DecodePoll parses the storage encoding of a poll.
func DecodePoll(b []byte) (Poll, error) {
	dec := protocol.NewDecoder(b)
	var p Poll
	creator, err := dec.Fixed(AddressLength)
	if err != nil {
		return p, err
	}
	copy(p.Creator[:], creator)
	if p.Description, err = dec.String32(); err != nil {
		return p, err
	}
	optCount, err := dec.Int32()
	if err != nil {
		return p, err
	}
	for i := int32(0); i < optCount; i++ {
		var opt PollOption
		if opt.Name, err = dec.String32(); err != nil {
			return p, err
		}
		voterCount, err := dec.Int32()
		if err != nil {
			return p, err
		}
		for j := int32(0); j < voterCount; j++ {
			raw, err := dec.Fixed(AddressLength)
			if err != nil {
				return p, err
			}
			var v Address
			copy(v[:], raw)
			opt.Voters = append(opt.Voters, v)
		}
		p.Options = append(p.Options, opt)
	}
	return p, nil
}

// Order is an open exchange order. The offered amount is escrowed from the
// creator's balance while the order stands. Orders are identified by the
// signature of the creating transaction.
type Order struct {
	Creator Address
	Have    AssetID
	Want    AssetID
	// Amount is the quantity of Have offered.
	Amount Amount
	// Price is the quantity of Want asked per unit of Have.
	Price Amount
}

// Encode returns the storage encoding of the order.
func (o Order) Encode() []byte {
	enc := protocol.NewEncoder(AddressLength + 32)
	enc.Fixed(o.Creator[:])
	enc.Uint64(uint64(o.Have))
	enc.Uint64(uint64(o.Want))
	enc.Int64(o.Amount.Raw)
	enc.Int64(o.Price.Raw)
	return enc.Bytes()
}

// DecodeOrder parses the storage encoding of an order.
func DecodeOrder(b []byte) (Order, error) {
	dec := protocol.NewDecoder(b)
	var o Order
	creator, err := dec.Fixed(AddressLength)
	if err != nil {
		return o, err
	}
	copy(o.Creator[:], creator)
	have, err := dec.Uint64()
	if err != nil {
		return o, err
	}
	o.Have = AssetID(have)
	want, err := dec.Uint64()
	if err != nil {
		return o, err
	}
	o.Want = AssetID(want)
	amt, err := dec.Int64()
	if err != nil {
		return o, err
	}
	o.Amount = AmountFromRaw(amt)
	price, err := dec.Int64()
	if err != nil {
		return o, err
	}
	o.Price = AmountFromRaw(price)
	return o, nil
}
