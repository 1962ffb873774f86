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

package config

// ConsensusParams specifies the chain rules a node enforces. The values are
// consensus-critical: every node on a network must agree on them.
type ConsensusParams struct {
	// GenesisTimestamp is the timestamp of the genesis block, in
	// milliseconds since the Unix epoch.
	GenesisTimestamp int64

	// Retarget is the window, in blocks, of the generating balance walk.
	Retarget int32

	// MaxSignaturesPerResponse caps one signatures message during sync.
	MaxSignaturesPerResponse int

	// MinimumFeeRaw is the smallest acceptable transaction fee, in raw
	// units (8 decimal places).
	MinimumFeeRaw int64

	// DeadlineMillis is how long after its timestamp a transaction remains
	// eligible for inclusion.
	DeadlineMillis int64

	// MaxNameLength etc. bound the variable-length transaction payloads.
	MaxNameLength        int
	MaxValueLength       int
	MaxDescriptionLength int
	MaxDataLength        int
	MaxPollOptions       int
	MaxPayments          int

	// NetworkMagic prefixes every wire message; a mismatch means the remote
	// speaks for a different network and the connection is dropped.
	NetworkMagic [4]byte

	// Checkpoints pins block signatures (Base58) at fixed heights. A synced
	// block that contradicts a checkpoint is rejected regardless of its
	// apparent validity.
	Checkpoints map[int32]string
}

const millisPerDay = 24 * 60 * 60 * 1000

// Mainnet holds the production chain rules.
var Mainnet = ConsensusParams{
	GenesisTimestamp:         1400247274336,
	Retarget:                 10,
	MaxSignaturesPerResponse: 500,
	MinimumFeeRaw:            100000, // 0.001
	DeadlineMillis:           millisPerDay,
	MaxNameLength:            400,
	MaxValueLength:           4000,
	MaxDescriptionLength:     4000,
	MaxDataLength:            4000,
	MaxPollOptions:           100,
	MaxPayments:              400,
	NetworkMagic:             [4]byte{0x12, 0x34, 0x56, 0x78},
	Checkpoints:              map[int32]string{},
}

// Testnet differs from Mainnet only in genesis timestamp and magic, so test
// coins can never replay onto the production chain.
var Testnet = ConsensusParams{
	GenesisTimestamp:         1501632000000,
	Retarget:                 10,
	MaxSignaturesPerResponse: 500,
	MinimumFeeRaw:            100000,
	DeadlineMillis:           millisPerDay,
	MaxNameLength:            400,
	MaxValueLength:           4000,
	MaxDescriptionLength:     4000,
	MaxDataLength:            4000,
	MaxPollOptions:           100,
	MaxPayments:              400,
	NetworkMagic:             [4]byte{0x74, 0x65, 0x73, 0x74},
	Checkpoints:              map[int32]string{},
}
