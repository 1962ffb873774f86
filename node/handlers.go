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
	"time"

	"github.com/qoranode/go-qora/data/bookkeeping"
	"github.com/qoranode/go-qora/data/transactions"
	"github.com/qoranode/go-qora/network"
	"github.com/qoranode/go-qora/protocol"
)

// registerHandlers installs the chain-level message handlers. The
// connection-level types (ping, getPeers, findMyself) are handled inside
// the network package.
func (n *Node) registerHandlers() {
	n.net.RegisterHandler(protocol.HeightMsg, n.handleHeight)
	n.net.RegisterHandler(protocol.VersionMsg, n.handleVersion)
	n.net.RegisterHandler(protocol.PeersMsg, n.handlePeers)
	n.net.RegisterHandler(protocol.GetSignaturesMsg, n.handleGetSignatures)
	n.net.RegisterHandler(protocol.GetBlockMsg, n.handleGetBlock)
	n.net.RegisterHandler(protocol.BlockMsg, n.handleBlock)
	n.net.RegisterHandler(protocol.TransactionMsg, n.handleTransaction)
}

func (n *Node) handleHeight(p *network.Peer, m network.Message) {
	h, err := network.DecodeHeight(m.Payload)
	if err != nil {
		n.log.Debugf("malformed height from %s: %v", p.Addr(), err)
		p.Close()
		return
	}
	p.SetHeight(h)
}

func (n *Node) handleVersion(p *network.Peer, m network.Message) {
	v, err := network.DecodeVersion(m.Payload)
	if err != nil {
		n.log.Debugf("malformed version from %s: %v", p.Addr(), err)
		p.Close()
		return
	}
	p.SetHeight(v.Height)
	if m.HasID {
		_, height, _, err := n.ledger.LastBlock()
		if err != nil {
			return
		}
		p.Send(m.Response(network.EncodeVersion(network.Version{
			Version: versionString,
			Height:  height,
		}), protocol.VersionMsg))
	}
}

// handlePeers learns addresses from a peer's address gossip and tries to
// connect to them. The network enforces the connection cap.
func (n *Node) handlePeers(p *network.Peer, m network.Message) {
	addrs, err := network.DecodePeers(m.Payload)
	if err != nil {
		n.log.Debugf("malformed peers from %s: %v", p.Addr(), err)
		return
	}
	for _, addr := range addrs {
		addr := addr
		go func() {
			if err := n.net.Connect(addr); err != nil {
				n.log.Debugf("dialing gossiped peer %s: %v", addr, err)
			}
		}()
	}
}

func (n *Node) handleGetSignatures(p *network.Peer, m network.Message) {
	sig, err := network.DecodeSignature(m.Payload)
	if err != nil {
		n.log.Debugf("malformed getSignatures from %s: %v", p.Addr(), err)
		p.Close()
		return
	}
	sigs, ok, err := n.ledger.GetSignatures(sig)
	if err != nil {
		n.log.Warnf("getSignatures lookup failed: %v", err)
		return
	}
	if !ok {
		sigs = nil
	}
	p.Send(m.Response(network.EncodeSignatures(sigs), protocol.SignaturesMsg))
}

func (n *Node) handleGetBlock(p *network.Peer, m network.Message) {
	sig, err := network.DecodeSignature(m.Payload)
	if err != nil {
		n.log.Debugf("malformed getBlock from %s: %v", p.Addr(), err)
		p.Close()
		return
	}
	b, found, err := n.ledger.BlockBySignature(sig)
	if err != nil {
		n.log.Warnf("getBlock lookup failed: %v", err)
		return
	}
	if !found {
		return
	}
	p.Send(m.Response(b.Bytes(), protocol.BlockMsg))
}

// handleBlock applies a freshly announced block if it extends our tip and
// relays it. A block whose parent is not our tip is left to the catchup
// service; it may be the head of a longer branch.
func (n *Node) handleBlock(p *network.Peer, m network.Message) {
	b, err := bookkeeping.ParseBlock(m.Payload)
	if err != nil {
		n.log.Debugf("malformed block from %s: %v", p.Addr(), err)
		p.Close()
		return
	}
	tip, height, ok, err := n.ledger.LastBlock()
	if err != nil || !ok {
		return
	}
	if b.Reference != tip.Signature() {
		n.log.Debugf("announced block does not extend the tip, leaving it to catchup")
		if ph := height + 1; ph > p.Height() {
			p.SetHeight(ph)
		}
		return
	}
	if err := n.ledger.AddBlock(b); err != nil {
		n.log.Warnf("announced block rejected: %v", err)
		return
	}
	n.pool.Remove(b.Transactions)
	p.SetHeight(height + 1)
	n.net.Broadcast(network.Message{Type: protocol.BlockMsg, Payload: m.Payload}, p)
	n.announceHeight()
}

// handleTransaction pools a gossiped transaction and relays it if it was
// new and valid.
func (n *Node) handleTransaction(p *network.Peer, m network.Message) {
	tx, err := transactions.Parse(m.Payload)
	if err != nil {
		n.log.Debugf("malformed transaction from %s: %v", p.Addr(), err)
		p.Close()
		return
	}
	if n.pool.Contains(tx.Signature) {
		return
	}
	if err := n.pool.Add(tx, time.Now().UnixMilli()); err != nil {
		n.log.Debugf("gossiped transaction rejected: %v", err)
		return
	}
	n.net.Broadcast(network.Message{Type: protocol.TransactionMsg, Payload: m.Payload}, p)
}
