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

package network

import (
	"fmt"

	"github.com/qoranode/go-qora/crypto"
	"github.com/qoranode/go-qora/data/basics"
	"github.com/qoranode/go-qora/protocol"
)

// Payload codecs for the message types whose payload is not already a
// self-contained object encoding.

// NodeIDLength is the width of the random node id exchanged in findMyself
// messages to detect self-connections.
const NodeIDLength = 16

// EncodeHeight encodes a height payload.
func EncodeHeight(h basics.Height) []byte {
	enc := protocol.NewEncoder(4)
	enc.Int32(int32(h))
	return enc.Bytes()
}

// DecodeHeight decodes a height payload.
func DecodeHeight(b []byte) (basics.Height, error) {
	dec := protocol.NewDecoder(b)
	h, err := dec.Int32()
	if err != nil {
		return 0, err
	}
	if !dec.Finished() {
		return 0, fmt.Errorf("network: %w: trailing bytes in height", protocol.ErrTruncated)
	}
	return basics.Height(h), nil
}

// EncodeSignature encodes a single block-signature payload (getSignatures,
// getBlock).
func EncodeSignature(sig crypto.Signature) []byte {
	out := make([]byte, crypto.SignatureSize)
	copy(out, sig[:])
	return out
}

// DecodeSignature decodes a single block-signature payload.
func DecodeSignature(b []byte) (crypto.Signature, error) {
	var sig crypto.Signature
	if len(b) != crypto.SignatureSize {
		return sig, fmt.Errorf("network: %w: signature payload is %d bytes", protocol.ErrTruncated, len(b))
	}
	copy(sig[:], b)
	return sig, nil
}

// EncodeSignatures encodes an ordered signature list payload.
func EncodeSignatures(sigs []crypto.Signature) []byte {
	enc := protocol.NewEncoder(4 + len(sigs)*crypto.SignatureSize)
	enc.Int32(int32(len(sigs)))
	for _, sig := range sigs {
		enc.Fixed(sig[:])
	}
	return enc.Bytes()
}

// DecodeSignatures decodes an ordered signature list payload.
func DecodeSignatures(b []byte) ([]crypto.Signature, error) {
	dec := protocol.NewDecoder(b)
	count, err := dec.Int32()
	if err != nil {
		return nil, err
	}
	if count < 0 || int(count) > dec.Remaining()/crypto.SignatureSize {
		return nil, fmt.Errorf("network: %w: signature count %d", protocol.ErrTruncated, count)
	}
	out := make([]crypto.Signature, count)
	for i := range out {
		raw, err := dec.Fixed(crypto.SignatureSize)
		if err != nil {
			return nil, err
		}
		copy(out[i][:], raw)
	}
	if !dec.Finished() {
		return nil, fmt.Errorf("network: %w: trailing bytes in signatures", protocol.ErrTruncated)
	}
	return out, nil
}

// EncodePeers encodes a peer address list payload.
func EncodePeers(addrs []string) []byte {
	enc := protocol.NewEncoder(64)
	enc.Int32(int32(len(addrs)))
	for _, a := range addrs {
		enc.String32(a)
	}
	return enc.Bytes()
}

// DecodePeers decodes a peer address list payload.
func DecodePeers(b []byte) ([]string, error) {
	dec := protocol.NewDecoder(b)
	count, err := dec.Int32()
	if err != nil {
		return nil, err
	}
	if count < 0 || int(count) > dec.Remaining()/4 {
		return nil, fmt.Errorf("network: %w: peer count %d", protocol.ErrTruncated, count)
	}
	out := make([]string, count)
	for i := range out {
		if out[i], err = dec.String32(); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Version describes a peer: its software version string and chain height.
type Version struct {
	Version string
	Height  basics.Height
}

// EncodeVersion encodes a version payload.
func EncodeVersion(v Version) []byte {
	enc := protocol.NewEncoder(16 + len(v.Version))
	enc.String32(v.Version)
	enc.Int32(int32(v.Height))
	return enc.Bytes()
}

// DecodeVersion decodes a version payload.
func DecodeVersion(b []byte) (Version, error) {
	dec := protocol.NewDecoder(b)
	var v Version
	var err error
	if v.Version, err = dec.String32(); err != nil {
		return v, err
	}
	h, err := dec.Int32()
	if err != nil {
		return v, err
	}
	v.Height = basics.Height(h)
	return v, nil
}

// EncodeNodeID encodes a findMyself payload.
func EncodeNodeID(id [NodeIDLength]byte) []byte {
	out := make([]byte, NodeIDLength)
	copy(out, id[:])
	return out
}

// DecodeNodeID decodes a findMyself payload.
func DecodeNodeID(b []byte) ([NodeIDLength]byte, error) {
	var id [NodeIDLength]byte
	if len(b) != NodeIDLength {
		return id, fmt.Errorf("network: %w: node id payload is %d bytes", protocol.ErrTruncated, len(b))
	}
	copy(id[:], b)
	return id, nil
}
