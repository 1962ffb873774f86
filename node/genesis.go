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

package node

import (
	"encoding/hex"
	"fmt"

	"github.com/qoranode/go-qora/config"
	"github.com/qoranode/go-qora/crypto"
	"github.com/qoranode/go-qora/data/basics"
	"github.com/qoranode/go-qora/data/bookkeeping"
)

// genesisGrants lists the initial coin distribution by recipient public
// key. The amounts sum to the full native supply of ten billion coins.
var genesisGrants = []struct {
	pk     string
	amount string
}{
	{"4e66726e2c57c316cd0dab0a0d0cf9c0b035343cf0bbf1c9b5e63f1c89d90e4a", "4000000000"},
	{"9b3a1f64d7a8c0ef5210b4bc6d2c4ad1337ac8e0928f5d1b0a6e3c7412d88f03", "2000000000"},
	{"d12c7bb54f0e8a96013fc5de1a9b04c87e65a3f2d90814c6b72e00d5a8c3f671", "1500000000"},
	{"37e90c1ad45f68b2c09d17ae53b6f480215d3ce89a04fb76de12c05b94a7e8d0", "1000000000"},
	{"82f4d30a6b19ce57d048e2fa91c73b05684acd1e2f90573ba160ed48c2b5f796", "800000000"},
	{"6c05af78e13d92b4f067a1ce80d54b392761ef035c48da90b12fe67a03c9d815", "400000000"},
	{"f180b2c49e56ad03721c86fb405d9ea81c32d7054a96e1f0bd83c72e6015a94d", "200000000"},
	{"05d7eca8913f40b6a2c1785de0f36b94ae02c17df8654309be1a2c0d76e8f432", "100000000"},
}

// genesisBlock builds the height-1 block the node is configured for. Every
// node on a network derives the same block, and so the same genesis
// signature, from its consensus parameters alone.
func genesisBlock(proto config.ConsensusParams) (*bookkeeping.Block, error) {
	allocs := make([]bookkeeping.Allocation, 0, len(genesisGrants))
	for _, g := range genesisGrants {
		raw, err := hex.DecodeString(g.pk)
		if err != nil || len(raw) != crypto.PublicKeySize {
			return nil, fmt.Errorf("node: bad genesis grant key %q", g.pk)
		}
		var pk crypto.PublicKey
		copy(pk[:], raw)
		allocs = append(allocs, bookkeeping.Allocation{
			Recipient: basics.AddressFromPublicKey(pk),
			Amount:    basics.MustAmount(g.amount),
		})
	}
	return bookkeeping.MakeGenesisBlock(proto.GenesisTimestamp, allocs), nil
}
