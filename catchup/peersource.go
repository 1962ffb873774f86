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

package catchup

import (
	"context"
	"fmt"

	"github.com/qoranode/go-qora/crypto"
	"github.com/qoranode/go-qora/data/basics"
	"github.com/qoranode/go-qora/data/bookkeeping"
	"github.com/qoranode/go-qora/network"
	"github.com/qoranode/go-qora/protocol"
)

// PeerSource adapts a network peer to the BlockSource interface.
type PeerSource struct {
	peer *network.Peer
}

// NewPeerSource wraps a connected peer.
func NewPeerSource(p *network.Peer) *PeerSource {
	return &PeerSource{peer: p}
}

// Height is the peer's last reported chain height.
func (ps *PeerSource) Height() basics.Height {
	return ps.peer.Height()
}

// Signatures asks the peer for block signatures above the given one.
func (ps *PeerSource) Signatures(ctx context.Context, from crypto.Signature) ([]crypto.Signature, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	resp, err := ps.peer.Request(ctx, network.Message{
		Type:    protocol.GetSignaturesMsg,
		Payload: network.EncodeSignature(from),
	})
	if err != nil {
		return nil, err
	}
	if resp.Type != protocol.SignaturesMsg {
		return nil, fmt.Errorf("catchup: peer answered getSignatures with %v", resp.Type)
	}
	return network.DecodeSignatures(resp.Payload)
}

// Block fetches one block by signature.
func (ps *PeerSource) Block(ctx context.Context, sig crypto.Signature) (*bookkeeping.Block, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	resp, err := ps.peer.Request(ctx, network.Message{
		Type:    protocol.GetBlockMsg,
		Payload: network.EncodeSignature(sig),
	})
	if err != nil {
		return nil, err
	}
	if resp.Type != protocol.BlockMsg {
		return nil, fmt.Errorf("catchup: peer answered getBlock with %v", resp.Type)
	}
	return bookkeeping.ParseBlock(resp.Payload)
}
