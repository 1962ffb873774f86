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
	cryptorand "crypto/rand"
	"fmt"
	"net"
	"sync"

	"github.com/algorand/go-deadlock"

	"github.com/qoranode/go-qora/config"
	"github.com/qoranode/go-qora/logging"
	"github.com/qoranode/go-qora/protocol"
)

// Handler consumes one unsolicited message from a peer. Handlers run on
// the peer's read goroutine and must not block on it.
type Handler func(p *Peer, m Message)

// Network owns the listener, the peer set and message dispatch.
type Network struct {
	cfg   config.Local
	proto config.ConsensusParams
	log   logging.Logger

	// nodeID is random per process; receiving it back in a findMyself
	// means the connection loops back to ourselves.
	nodeID [NodeIDLength]byte

	mu       deadlock.Mutex
	peers    map[string]*Peer
	handlers map[protocol.MessageType]Handler

	listener net.Listener
	quit     chan struct{}
	wg       sync.WaitGroup
}

// NewNetwork builds an unstarted network service.
func NewNetwork(cfg config.Local, proto config.ConsensusParams, log logging.Logger) *Network {
	n := &Network{
		cfg:      cfg,
		proto:    proto,
		log:      log.With("Context", "network"),
		peers:    make(map[string]*Peer),
		handlers: make(map[protocol.MessageType]Handler),
		quit:     make(chan struct{}),
	}
	if _, err := cryptorand.Read(n.nodeID[:]); err != nil {
		panic(fmt.Errorf("network: reading entropy: %w", err))
	}
	return n
}

// RegisterHandler installs the consumer for one message type. Must be
// called before Start.
func (n *Network) RegisterHandler(t protocol.MessageType, h Handler) {
	n.handlers[t] = h
}

// Start begins listening and dials the configured seed peers.
func (n *Network) Start() error {
	listener, err := net.Listen("tcp", n.cfg.ListenAddress)
	if err != nil {
		return fmt.Errorf("network: listening on %s: %w", n.cfg.ListenAddress, err)
	}
	n.listener = listener
	n.log.Infof("listening on %s", n.cfg.ListenAddress)

	n.wg.Add(1)
	go n.acceptLoop()

	for _, seed := range n.cfg.Seeds {
		seed := seed
		n.wg.Add(1)
		go func() {
			defer n.wg.Done()
			if err := n.Connect(seed); err != nil {
				n.log.Warnf("dialing seed %s: %v", seed, err)
			}
		}()
	}
	return nil
}

// Stop closes the listener and every peer and waits for the loops to
// drain.
func (n *Network) Stop() {
	close(n.quit)
	if n.listener != nil {
		n.listener.Close()
	}
	for _, p := range n.Peers() {
		p.Close()
	}
	n.wg.Wait()
}

func (n *Network) acceptLoop() {
	defer n.wg.Done()
	for {
		conn, err := n.listener.Accept()
		if err != nil {
			select {
			case <-n.quit:
				return
			default:
				n.log.Warnf("accept failed: %v", err)
				return
			}
		}
		n.startPeer(conn, conn.RemoteAddr().String())
	}
}

// Connect dials a remote address and starts a peer on the connection.
func (n *Network) Connect(addr string) error {
	n.mu.Lock()
	if _, dup := n.peers[addr]; dup || len(n.peers) >= n.cfg.MaxPeers {
		n.mu.Unlock()
		return nil
	}
	n.mu.Unlock()

	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return err
	}
	n.startPeer(conn, addr)
	return nil
}

func (n *Network) startPeer(conn net.Conn, addr string) {
	p := newPeer(n, conn, addr)

	n.mu.Lock()
	if len(n.peers) >= n.cfg.MaxPeers {
		n.mu.Unlock()
		conn.Close()
		return
	}
	n.peers[addr] = p
	n.mu.Unlock()

	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		p.readLoop()
	}()

	// Lead with our node id so a looped-back connection is caught before
	// any chain traffic.
	if err := p.Send(Message{Type: protocol.FindMyselfMsg, Payload: EncodeNodeID(n.nodeID)}); err != nil {
		return
	}
	n.log.Infof("connected to %s", addr)
}

func (n *Network) removePeer(p *Peer) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.peers[p.addr] == p {
		delete(n.peers, p.addr)
	}
}

// Peers snapshots the connected peer set.
func (n *Network) Peers() []*Peer {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]*Peer, 0, len(n.peers))
	for _, p := range n.peers {
		out = append(out, p)
	}
	return out
}

// PeerAddrs lists the addresses of the connected peers, for the peers
// message.
func (n *Network) PeerAddrs() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, 0, len(n.peers))
	for addr := range n.peers {
		out = append(out, addr)
	}
	return out
}

// Broadcast sends a message to every connected peer except the one it came
// from.
func (n *Network) Broadcast(m Message, except *Peer) {
	for _, p := range n.Peers() {
		if p == except {
			continue
		}
		if err := p.Send(m); err != nil {
			n.log.Debugf("broadcast to %s failed: %v", p.addr, err)
		}
	}
}

// dispatch routes an unsolicited message. The findMyself and ping types
// are protocol-internal; unknown types are tolerated for forward
// compatibility.
func (n *Network) dispatch(p *Peer, m Message) {
	switch m.Type {
	case protocol.FindMyselfMsg:
		id, err := DecodeNodeID(m.Payload)
		if err != nil {
			p.log.Debugf("malformed findMyself: %v", err)
			p.Close()
			return
		}
		if id == n.nodeID {
			p.log.Info("detected connection to self, dropping")
			p.Close()
		}
		return
	case protocol.PingMsg:
		if m.HasID {
			p.Send(m.Response(nil, protocol.PingMsg))
		}
		return
	case protocol.GetPeersMsg:
		if m.HasID {
			p.Send(m.Response(EncodePeers(n.PeerAddrs()), protocol.PeersMsg))
		}
		return
	}

	if h, ok := n.handlers[m.Type]; ok {
		h(p, m)
		return
	}
	p.log.Debugf("ignoring message of unknown type %d", int32(m.Type))
}
