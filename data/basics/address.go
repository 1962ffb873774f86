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
	"bytes"
	"fmt"

	"github.com/btcsuite/btcd/btcutil/base58"

	"github.com/qoranode/go-qora/crypto"
)

// AddressLength is the raw byte length of an address:
// version(1) | RIPEMD160(SHA256(pubkey))(20) | checksum(4).
const AddressLength = 25

// addressVersion distinguishes account addresses from AT addresses.
const (
	addressVersion   = 0x3a
	atAddressVersion = 0x17
)

const addressChecksumLength = 4

// Address is a unique identifier corresponding to ownership of money.
// Equality and hashing are by value; the zero Address is "no address".
type Address [AddressLength]byte

// AddressFromPublicKey derives the account address owned by pk.
func AddressFromPublicKey(pk crypto.PublicKey) Address {
	return composeAddress(addressVersion, crypto.HashRipemd160(pk[:]))
}

// ATAddressFromSignature derives the address of an AT deployed by the
// transaction carrying the given signature. The AT's account lives at this
// address; the same bytes double as the AT id.
func ATAddressFromSignature(sig crypto.Signature) Address {
	return composeAddress(atAddressVersion, crypto.HashRipemd160(sig[:]))
}

func composeAddress(version byte, hash [crypto.Ripemd160Size]byte) Address {
	var addr Address
	addr[0] = version
	copy(addr[1:1+crypto.Ripemd160Size], hash[:])
	check := crypto.DoubleHash(addr[:1+crypto.Ripemd160Size])
	copy(addr[1+crypto.Ripemd160Size:], check[:addressChecksumLength])
	return addr
}

// UnmarshalAddress parses and checksum-verifies the base58 rendering of an
// address.
func UnmarshalAddress(s string) (Address, error) {
	decoded := base58.Decode(s)
	if len(decoded) != AddressLength {
		return Address{}, fmt.Errorf("address %q decodes to %d bytes, want %d", s, len(decoded), AddressLength)
	}
	var addr Address
	copy(addr[:], decoded)
	check := crypto.DoubleHash(addr[:1+crypto.Ripemd160Size])
	if !bytes.Equal(addr[1+crypto.Ripemd160Size:], check[:addressChecksumLength]) {
		return Address{}, fmt.Errorf("address %q failed checksum verification", s)
	}
	return addr, nil
}

// String returns the base58 rendering of the address.
func (addr Address) String() string {
	return base58.Encode(addr[:])
}

// Valid reports whether the raw bytes form a well-formed address: a known
// version byte and a matching checksum.
func (addr Address) Valid() bool {
	if addr[0] != addressVersion && addr[0] != atAddressVersion {
		return false
	}
	check := crypto.DoubleHash(addr[:1+crypto.Ripemd160Size])
	return bytes.Equal(addr[1+crypto.Ripemd160Size:], check[:addressChecksumLength])
}

// IsZero returns true for the zero-value address.
func (addr Address) IsZero() bool {
	return addr == Address{}
}

// MarshalText implements encoding.TextMarshaler.
func (addr Address) MarshalText() ([]byte, error) {
	return []byte(addr.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (addr *Address) UnmarshalText(text []byte) error {
	parsed, err := UnmarshalAddress(string(text))
	if err != nil {
		return err
	}
	*addr = parsed
	return nil
}
