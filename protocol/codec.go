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

// Package protocol defines the message and transaction type tags together
// with the deterministic binary codec every consensus object is encoded
// with. Transactions, blocks and peer messages are big-endian; the AT
// creation container is little-endian for historical compatibility.
package protocol

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrTruncated signals that a decoder ran out of input. It is a format
// error: the containing object or message must be rejected outright.
var ErrTruncated = errors.New("protocol: truncated input")

// Encoder accumulates the canonical big-endian encoding of an object.
type Encoder struct {
	buf []byte
}

// NewEncoder returns an Encoder with capacity preallocated for size bytes.
func NewEncoder(size int) *Encoder {
	return &Encoder{buf: make([]byte, 0, size)}
}

// Bytes returns the accumulated encoding.
func (e *Encoder) Bytes() []byte {
	return e.buf
}

// Uint32 appends v as 4 big-endian bytes.
func (e *Encoder) Uint32(v uint32) {
	e.buf = binary.BigEndian.AppendUint32(e.buf, v)
}

// Int32 appends v as 4 big-endian bytes.
func (e *Encoder) Int32(v int32) {
	e.Uint32(uint32(v))
}

// Uint64 appends v as 8 big-endian bytes.
func (e *Encoder) Uint64(v uint64) {
	e.buf = binary.BigEndian.AppendUint64(e.buf, v)
}

// Int64 appends v as 8 big-endian bytes.
func (e *Encoder) Int64(v int64) {
	e.Uint64(uint64(v))
}

// Byte appends a single byte.
func (e *Encoder) Byte(v byte) {
	e.buf = append(e.buf, v)
}

// Fixed appends b verbatim, without a length prefix. Used for fields whose
// width is fixed by the format (signatures, public keys, addresses).
func (e *Encoder) Fixed(b []byte) {
	e.buf = append(e.buf, b...)
}

// Bytes32 appends an int32 length prefix followed by b.
func (e *Encoder) Bytes32(b []byte) {
	e.Int32(int32(len(b)))
	e.Fixed(b)
}

// String32 appends an int32 length prefix followed by the UTF-8 bytes of s.
func (e *Encoder) String32(s string) {
	e.Bytes32([]byte(s))
}

// Decoder consumes a canonical big-endian encoding. All methods return
// ErrTruncated when the input is exhausted; decoders never panic on
// malformed peer data.
type Decoder struct {
	buf []byte
	off int
}

// NewDecoder returns a Decoder over b. The Decoder does not copy b.
func NewDecoder(b []byte) *Decoder {
	return &Decoder{buf: b}
}

// Remaining returns the number of unread bytes.
func (d *Decoder) Remaining() int {
	return len(d.buf) - d.off
}

// Finished reports whether every byte has been consumed. Trailing garbage
// after a parsed object is itself a format error.
func (d *Decoder) Finished() bool {
	return d.off == len(d.buf)
}

func (d *Decoder) take(n int) ([]byte, error) {
	if n < 0 || d.Remaining() < n {
		return nil, fmt.Errorf("%w: need %d bytes at offset %d of %d", ErrTruncated, n, d.off, len(d.buf))
	}
	b := d.buf[d.off : d.off+n]
	d.off += n
	return b, nil
}

// Uint32 reads 4 big-endian bytes.
func (d *Decoder) Uint32() (uint32, error) {
	b, err := d.take(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

// Int32 reads 4 big-endian bytes.
func (d *Decoder) Int32() (int32, error) {
	v, err := d.Uint32()
	return int32(v), err
}

// Uint64 reads 8 big-endian bytes.
func (d *Decoder) Uint64() (uint64, error) {
	b, err := d.take(8)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(b), nil
}

// Int64 reads 8 big-endian bytes.
func (d *Decoder) Int64() (int64, error) {
	v, err := d.Uint64()
	return int64(v), err
}

// Byte reads a single byte.
func (d *Decoder) Byte() (byte, error) {
	b, err := d.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// Fixed reads exactly n bytes into a fresh slice.
func (d *Decoder) Fixed(n int) ([]byte, error) {
	b, err := d.take(n)
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, b)
	return out, nil
}

// Bytes32 reads an int32 length prefix followed by that many bytes. The
// length is bounded by the remaining input, so a hostile prefix cannot
// force a large allocation.
func (d *Decoder) Bytes32() ([]byte, error) {
	n, err := d.Int32()
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, fmt.Errorf("%w: negative length %d", ErrTruncated, n)
	}
	return d.Fixed(int(n))
}

// String32 reads an int32 length prefix followed by UTF-8 bytes.
func (d *Decoder) String32() (string, error) {
	b, err := d.Bytes32()
	if err != nil {
		return "", err
	}
	return string(b), nil
}
