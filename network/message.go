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

// Package network implements the peer wire protocol: message framing over
// TCP, per-peer read loops with request/response matching, and broadcast.
//
// Frame layout: magic[4] | type int32 | hasId byte | id int32 (only if
// hasId) | length int32 | checksum[4] (only if length > 0) | payload. The
// checksum is the first 4 bytes of the payload's SHA-256; a mismatch or a
// foreign magic is a protocol violation that aborts the connection.
package network

import (
	"errors"
	"fmt"
	"io"

	"github.com/qoranode/go-qora/crypto"
	"github.com/qoranode/go-qora/protocol"
)

// MaxPayloadLength bounds one message payload. Blocks are the largest
// legitimate payload by far; anything above this is hostile or corrupt.
const MaxPayloadLength = 4 << 20

// ChecksumLength is the truncated-digest width in the frame.
const ChecksumLength = 4

// ErrChecksumMismatch reports a payload that does not match its checksum.
// The connection carrying it must be dropped, not retried.
var ErrChecksumMismatch = errors.New("network: payload checksum mismatch")

// ErrBadMagic reports a frame for a different network.
var ErrBadMagic = errors.New("network: bad magic")

// Message is one framed peer message.
type Message struct {
	Type    protocol.MessageType
	HasID   bool
	ID      int32
	Payload []byte
}

// Response builds a reply carrying this message's request id.
func (m Message) Response(payload []byte, mtype protocol.MessageType) Message {
	return Message{Type: mtype, HasID: m.HasID, ID: m.ID, Payload: payload}
}

func checksum(payload []byte) [ChecksumLength]byte {
	digest := crypto.Hash(payload)
	var c [ChecksumLength]byte
	copy(c[:], digest[:ChecksumLength])
	return c
}

// WriteMessage frames and writes one message.
func WriteMessage(w io.Writer, magic [4]byte, m Message) error {
	enc := protocol.NewEncoder(17 + len(m.Payload))
	enc.Fixed(magic[:])
	enc.Int32(int32(m.Type))
	if m.HasID {
		enc.Byte(1)
		enc.Int32(m.ID)
	} else {
		enc.Byte(0)
	}
	enc.Int32(int32(len(m.Payload)))
	if len(m.Payload) > 0 {
		c := checksum(m.Payload)
		enc.Fixed(c[:])
		enc.Fixed(m.Payload)
	}
	_, err := w.Write(enc.Bytes())
	return err
}

// ReadMessage reads and verifies one framed message. Any framing fault is
// fatal to the connection.
func ReadMessage(r io.Reader, magic [4]byte) (Message, error) {
	var m Message

	var head [9]byte // magic + type + hasId
	if _, err := io.ReadFull(r, head[:]); err != nil {
		return m, err
	}
	dec := protocol.NewDecoder(head[:])
	gotMagic, _ := dec.Fixed(4)
	if [4]byte{gotMagic[0], gotMagic[1], gotMagic[2], gotMagic[3]} != magic {
		return m, ErrBadMagic
	}
	mtype, _ := dec.Int32()
	m.Type = protocol.MessageType(mtype)
	hasID, _ := dec.Byte()
	if hasID > 1 {
		return m, fmt.Errorf("network: malformed hasId byte %d", hasID)
	}
	m.HasID = hasID == 1

	if m.HasID {
		var idBuf [4]byte
		if _, err := io.ReadFull(r, idBuf[:]); err != nil {
			return m, err
		}
		id, _ := protocol.NewDecoder(idBuf[:]).Int32()
		m.ID = id
	}

	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return m, err
	}
	length, _ := protocol.NewDecoder(lenBuf[:]).Int32()
	if length < 0 || length > MaxPayloadLength {
		return m, fmt.Errorf("network: payload length %d out of range", length)
	}
	if length == 0 {
		return m, nil
	}

	var want [ChecksumLength]byte
	if _, err := io.ReadFull(r, want[:]); err != nil {
		return m, err
	}
	m.Payload = make([]byte, length)
	if _, err := io.ReadFull(r, m.Payload); err != nil {
		return m, err
	}
	if checksum(m.Payload) != want {
		return m, ErrChecksumMismatch
	}
	return m, nil
}
