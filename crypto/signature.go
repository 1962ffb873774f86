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
	"crypto/ed25519"
	"crypto/rand"
	"fmt"

	"github.com/hdevalence/ed25519consensus"
)

// Sizes of the ed25519 primitives as they appear on the wire.
const (
	PublicKeySize = ed25519.PublicKeySize
	SignatureSize = ed25519.SignatureSize
	SeedSize      = ed25519.SeedSize
)

type (
	// PublicKey is an ed25519 public key identifying a transaction creator
	// or block generator.
	PublicKey [PublicKeySize]byte

	// Signature is an ed25519 signature. Block and transaction signatures
	// are self-identifying: they double as database keys.
	Signature [SignatureSize]byte

	// Seed is the secret from which a signing keypair is derived.
	Seed [SeedSize]byte
)

// IsZero returns true if the public key is the zero value.
func (pk PublicKey) IsZero() bool {
	return pk == PublicKey{}
}

// IsZero returns true if the signature is the zero value.
func (s Signature) IsZero() bool {
	return s == Signature{}
}

// SignatureVerifier verifies signatures over arbitrary messages for one
// public key.
type SignatureVerifier = PublicKey

// Verify reports whether sig is a valid signature of message by the key.
// Verification goes through ed25519consensus so that every node accepts
// exactly the same signature set.
func (pk PublicKey) Verify(message []byte, sig Signature) bool {
	return ed25519consensus.Verify(pk[:], message, sig[:])
}

// SignatureSecrets holds a keypair capable of producing signatures.
type SignatureSecrets struct {
	SignatureVerifier
	key ed25519.PrivateKey
}

// GenerateSignatureSecrets derives a keypair from seed.
func GenerateSignatureSecrets(seed Seed) *SignatureSecrets {
	key := ed25519.NewKeyFromSeed(seed[:])
	var pk PublicKey
	copy(pk[:], key.Public().(ed25519.PublicKey))
	return &SignatureSecrets{SignatureVerifier: pk, key: key}
}

// RandomSignatureSecrets creates a keypair from the OS entropy source.
// Intended for tests and key generation tooling.
func RandomSignatureSecrets() *SignatureSecrets {
	var seed Seed
	if _, err := rand.Read(seed[:]); err != nil {
		panic(fmt.Errorf("crypto: reading entropy: %w", err))
	}
	return GenerateSignatureSecrets(seed)
}

// Sign produces a signature over message.
func (s *SignatureSecrets) Sign(message []byte) Signature {
	var sig Signature
	copy(sig[:], ed25519.Sign(s.key, message))
	return sig
}
