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

package crypto

import (
	"crypto/sha256"

	//nolint:staticcheck // the address format predates the deprecation
	"golang.org/x/crypto/ripemd160"
)

// DigestSize is the number of bytes in the preferred hash Digest used here.
const DigestSize = sha256.Size

// Digest represents a SHA-256 hash.
type Digest [DigestSize]byte

// IsZero returns true if the digest contains only zeros.
func (d Digest) IsZero() bool {
	return d == Digest{}
}

// Hash computes the SHA-256 digest of data.
func Hash(data []byte) Digest {
	return sha256.Sum256(data)
}

// DoubleHash computes SHA-256 applied twice, as used for address checksums.
func DoubleHash(data []byte) Digest {
	first := sha256.Sum256(data)
	return sha256.Sum256(first[:])
}

// Ripemd160Size is the number of bytes in a RIPEMD-160 digest.
const Ripemd160Size = ripemd160.Size

// HashRipemd160 computes RIPEMD-160 over the SHA-256 of data. This is the
// inner hash of the address derivation chain.
func HashRipemd160(data []byte) [Ripemd160Size]byte {
	inner := sha256.Sum256(data)
	h := ripemd160.New()
	h.Write(inner[:])
	var out [Ripemd160Size]byte
	copy(out[:], h.Sum(nil))
	return out
}
