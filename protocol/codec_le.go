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

package protocol

import (
	"encoding/binary"
	"fmt"
)

// LittleEncoder is the little-endian counterpart of Encoder. Only the AT
// creation container uses it.
type LittleEncoder struct {
	buf []byte
}

// NewLittleEncoder returns a LittleEncoder with capacity preallocated for
// size bytes.
func NewLittleEncoder(size int) *LittleEncoder {
	return &LittleEncoder{buf: make([]byte, 0, size)}
}

// Bytes returns the accumulated encoding.
func (e *LittleEncoder) Bytes() []byte {
	return e.buf
}

// Int16 appends v as 2 little-endian bytes.
func (e *LittleEncoder) Int16(v int16) {
	e.buf = binary.LittleEndian.AppendUint16(e.buf, uint16(v))
}

// Int32 appends v as 4 little-endian bytes.
func (e *LittleEncoder) Int32(v int32) {
	e.buf = binary.LittleEndian.AppendUint32(e.buf, uint32(v))
}

// Int64 appends v as 8 little-endian bytes.
func (e *LittleEncoder) Int64(v int64) {
	e.buf = binary.LittleEndian.AppendUint64(e.buf, uint64(v))
}

// Fixed appends b verbatim.
func (e *LittleEncoder) Fixed(b []byte) {
	e.buf = append(e.buf, b...)
}

// Bytes32 appends an int32 length prefix followed by b.
func (e *LittleEncoder) Bytes32(b []byte) {
	e.Int32(int32(len(b)))
	e.Fixed(b)
}

// String32 appends an int32 length prefix followed by the UTF-8 bytes of s.
func (e *LittleEncoder) String32(s string) {
	e.Bytes32([]byte(s))
}

// LittleDecoder is the little-endian counterpart of Decoder.
type LittleDecoder struct {
	buf []byte
	off int
}

// NewLittleDecoder returns a LittleDecoder over b.
func NewLittleDecoder(b []byte) *LittleDecoder {
	return &LittleDecoder{buf: b}
}

// Remaining returns the number of unread bytes.
func (d *LittleDecoder) Remaining() int {
	return len(d.buf) - d.off
}

// Finished reports whether every byte has been consumed.
func (d *LittleDecoder) Finished() bool {
	return d.off == len(d.buf)
}

func (d *LittleDecoder) take(n int) ([]byte, error) {
	if n < 0 || d.Remaining() < n {
		return nil, fmt.Errorf("%w: need %d bytes at offset %d of %d", ErrTruncated, n, d.off, len(d.buf))
	}
	b := d.buf[d.off : d.off+n]
	d.off += n
	return b, nil
}

// Int16 reads 2 little-endian bytes.
func (d *LittleDecoder) Int16() (int16, error) {
	b, err := d.take(2)
	if err != nil {
		return 0, err
	}
	return int16(binary.LittleEndian.Uint16(b)), nil
}

// Int32 reads 4 little-endian bytes.
func (d *LittleDecoder) Int32() (int32, error) {
	b, err := d.take(4)
	if err != nil {
		return 0, err
	}
	return int32(binary.LittleEndian.Uint32(b)), nil
}

// Int64 reads 8 little-endian bytes.
func (d *LittleDecoder) Int64() (int64, error) {
	b, err := d.take(8)
	if err != nil {
		return 0, err
	}
	return int64(binary.LittleEndian.Uint64(b)), nil
}

// Fixed reads exactly n bytes into a fresh slice.
func (d *LittleDecoder) Fixed(n int) ([]byte, error) {
	b, err := d.take(n)
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, b)
	return out, nil
}

// Rest consumes and returns all remaining bytes.
func (d *LittleDecoder) Rest() []byte {
	b, _ := d.take(d.Remaining())
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

// Bytes32 reads an int32 length prefix followed by that many bytes.
func (d *LittleDecoder) Bytes32() ([]byte, error) {
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
func (d *LittleDecoder) String32() (string, error) {
	b, err := d.Bytes32()
	if err != nil {
		return "", err
	}
	return string(b), nil
}
