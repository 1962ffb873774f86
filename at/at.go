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

// Package at implements Automated Transactions: deployed, deterministic
// byte-code contract instances with persistent state, executed on a
// schedule tied to block height.
//
// The serialized container is consensus data. Its layout is little-endian:
// four length-prefixed UTF-8 strings (name, description, type, tags)
// followed by the machine state: id(25) creator(25) version(int16)
// codeSize(int32) dataSize(int32) callStackBytes(int32)
// userStackBytes(int32) minActivationAmount(int64)
// creationBlockHeight(int32) sleepBetween(int32) code[codeSize] and the
// remaining bytes as the current state blob.
package at

import (
	"bytes"
	"fmt"

	"github.com/qoranode/go-qora/data/basics"
	"github.com/qoranode/go-qora/protocol"
)

// IDSize is the byte length of an AT id. AT ids share the address format,
// so an AT's id is also the address of its account.
const IDSize = basics.AddressLength

// Limits on the creation container, enforced at deployment.
const (
	MaxCodeSize       = 8192
	MaxDataSize       = 8192
	MaxStackBytes     = 4096
	MaxMetadataLength = 1000
)

// AT is one deployed contract instance. Metadata (Name, Description,
// TypeTag, Tags) is outside consensus-critical state but travels in the
// serialized container, which is itself consensus data.
type AT struct {
	ID      basics.Address
	Creator basics.Address

	Name        string
	Description string
	TypeTag     string
	Tags        string

	Version        int16
	CodeSize       int32
	DataSize       int32
	CallStackBytes int32
	UserStackBytes int32
	MinActivation  basics.Amount
	CreationHeight basics.Height
	SleepBetween   int32

	Code  []byte
	State []byte
}

// machineSize is the fixed-width portion of the machine state encoding.
func (a *AT) machineSize() int {
	return IDSize + IDSize + 2 + 4*4 + 8 + 4 + 4 + len(a.Code) + len(a.State)
}

// ToBytes serializes the AT container. Parse is its exact structural
// inverse; round-tripping is byte-identical.
func (a *AT) ToBytes() []byte {
	enc := protocol.NewLittleEncoder(16 + len(a.Name) + len(a.Description) + len(a.TypeTag) + len(a.Tags) + a.machineSize())
	enc.String32(a.Name)
	enc.String32(a.Description)
	enc.String32(a.TypeTag)
	enc.String32(a.Tags)

	enc.Fixed(a.ID[:])
	enc.Fixed(a.Creator[:])
	enc.Int16(a.Version)
	enc.Int32(a.CodeSize)
	enc.Int32(a.DataSize)
	enc.Int32(a.CallStackBytes)
	enc.Int32(a.UserStackBytes)
	enc.Int64(a.MinActivation.Raw)
	enc.Int32(int32(a.CreationHeight))
	enc.Int32(a.SleepBetween)
	enc.Fixed(a.Code)
	enc.Fixed(a.State)
	return enc.Bytes()
}

// Parse deserializes an AT container. Any length mismatch or truncation is
// a format error: it signals corrupt storage or a malicious peer payload
// and the containing message must be rejected.
func Parse(b []byte) (*AT, error) {
	dec := protocol.NewLittleDecoder(b)
	a := &AT{}
	var err error
	if a.Name, err = dec.String32(); err != nil {
		return nil, fmt.Errorf("at: parsing name: %w", err)
	}
	if a.Description, err = dec.String32(); err != nil {
		return nil, fmt.Errorf("at: parsing description: %w", err)
	}
	if a.TypeTag, err = dec.String32(); err != nil {
		return nil, fmt.Errorf("at: parsing type: %w", err)
	}
	if a.Tags, err = dec.String32(); err != nil {
		return nil, fmt.Errorf("at: parsing tags: %w", err)
	}

	id, err := dec.Fixed(IDSize)
	if err != nil {
		return nil, fmt.Errorf("at: parsing id: %w", err)
	}
	copy(a.ID[:], id)
	creator, err := dec.Fixed(IDSize)
	if err != nil {
		return nil, fmt.Errorf("at: parsing creator: %w", err)
	}
	copy(a.Creator[:], creator)

	if a.Version, err = dec.Int16(); err != nil {
		return nil, fmt.Errorf("at: parsing version: %w", err)
	}
	if a.CodeSize, err = dec.Int32(); err != nil {
		return nil, fmt.Errorf("at: parsing code size: %w", err)
	}
	if a.DataSize, err = dec.Int32(); err != nil {
		return nil, fmt.Errorf("at: parsing data size: %w", err)
	}
	if a.CallStackBytes, err = dec.Int32(); err != nil {
		return nil, fmt.Errorf("at: parsing call stack bytes: %w", err)
	}
	if a.UserStackBytes, err = dec.Int32(); err != nil {
		return nil, fmt.Errorf("at: parsing user stack bytes: %w", err)
	}
	minAct, err := dec.Int64()
	if err != nil {
		return nil, fmt.Errorf("at: parsing min activation: %w", err)
	}
	a.MinActivation = basics.AmountFromRaw(minAct)
	creation, err := dec.Int32()
	if err != nil {
		return nil, fmt.Errorf("at: parsing creation height: %w", err)
	}
	a.CreationHeight = basics.Height(creation)
	if a.SleepBetween, err = dec.Int32(); err != nil {
		return nil, fmt.Errorf("at: parsing sleep between: %w", err)
	}

	if a.CodeSize < 0 || a.CodeSize > MaxCodeSize {
		return nil, fmt.Errorf("at: code size %d out of range", a.CodeSize)
	}
	if a.Code, err = dec.Fixed(int(a.CodeSize)); err != nil {
		return nil, fmt.Errorf("at: parsing code: %w", err)
	}
	a.State = dec.Rest()
	return a, nil
}

// Equal reports whether two ATs serialize identically.
func (a *AT) Equal(other *AT) bool {
	return bytes.Equal(a.ToBytes(), other.ToBytes())
}

// CreationBytes is the machine half of the container as it appears inside
// a deployment transaction: everything the deployer chooses. The id,
// creator and creation height are assigned at deployment, so creation
// bytes carry only version, sizes, budgets, gating, code and the initial
// data segment.
type CreationBytes struct {
	Version        int16
	CodeSize       int32
	DataSize       int32
	CallStackBytes int32
	UserStackBytes int32
	MinActivation  basics.Amount
	SleepBetween   int32
	Code           []byte
	Data           []byte
}

// Encode serializes creation bytes (little-endian).
func (c CreationBytes) Encode() []byte {
	enc := protocol.NewLittleEncoder(2 + 4*4 + 8 + 4 + len(c.Code) + len(c.Data))
	enc.Int16(c.Version)
	enc.Int32(c.CodeSize)
	enc.Int32(c.DataSize)
	enc.Int32(c.CallStackBytes)
	enc.Int32(c.UserStackBytes)
	enc.Int64(c.MinActivation.Raw)
	enc.Int32(c.SleepBetween)
	enc.Fixed(c.Code)
	enc.Fixed(c.Data)
	return enc.Bytes()
}

// ParseCreationBytes validates and parses the deployer-supplied half of an
// AT container.
func ParseCreationBytes(b []byte) (CreationBytes, error) {
	dec := protocol.NewLittleDecoder(b)
	var c CreationBytes
	var err error
	if c.Version, err = dec.Int16(); err != nil {
		return c, err
	}
	if c.CodeSize, err = dec.Int32(); err != nil {
		return c, err
	}
	if c.DataSize, err = dec.Int32(); err != nil {
		return c, err
	}
	if c.CallStackBytes, err = dec.Int32(); err != nil {
		return c, err
	}
	if c.UserStackBytes, err = dec.Int32(); err != nil {
		return c, err
	}
	minAct, err := dec.Int64()
	if err != nil {
		return c, err
	}
	c.MinActivation = basics.AmountFromRaw(minAct)
	if c.SleepBetween, err = dec.Int32(); err != nil {
		return c, err
	}
	if c.CodeSize < 1 || c.CodeSize > MaxCodeSize {
		return c, fmt.Errorf("at: code size %d out of range", c.CodeSize)
	}
	if c.DataSize < 0 || c.DataSize > MaxDataSize {
		return c, fmt.Errorf("at: data size %d out of range", c.DataSize)
	}
	if c.CallStackBytes < 0 || c.CallStackBytes > MaxStackBytes || c.UserStackBytes < 0 || c.UserStackBytes > MaxStackBytes {
		return c, fmt.Errorf("at: stack budget out of range")
	}
	if c.Code, err = dec.Fixed(int(c.CodeSize)); err != nil {
		return c, err
	}
	if c.Data, err = dec.Fixed(int(c.DataSize)); err != nil {
		return c, err
	}
	if !dec.Finished() {
		return c, fmt.Errorf("at: %w: %d trailing bytes in creation bytes", protocol.ErrTruncated, dec.Remaining())
	}
	return c, nil
}

// NewFromCreation instantiates an AT at deployment time.
func NewFromCreation(id, creator basics.Address, name, description, typeTag, tags string, c CreationBytes, height basics.Height) *AT {
	a := &AT{
		ID:             id,
		Creator:        creator,
		Name:           name,
		Description:    description,
		TypeTag:        typeTag,
		Tags:           tags,
		Version:        c.Version,
		CodeSize:       c.CodeSize,
		DataSize:       c.DataSize,
		CallStackBytes: c.CallStackBytes,
		UserStackBytes: c.UserStackBytes,
		MinActivation:  c.MinActivation,
		CreationHeight: height,
		SleepBetween:   c.SleepBetween,
		Code:           c.Code,
	}
	a.State = initialState(c.Data)
	return a
}
