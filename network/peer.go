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
	"context"
	"fmt"
	"math/rand"
	"net"
	"sync"

	"github.com/algorand/go-deadlock"

	"github.com/qoranode/go-qora/data/basics"
	"github.com/qoranode/go-qora/logging"
)

// Peer is one connected remote node. Each peer runs its own read loop;
// responses carrying a known request id are routed back to the waiting
// Request call, everything else goes to the network's dispatcher.
type Peer struct {
	net  *Network
	conn net.Conn
	addr string
	log  logging.Logger

	writeMu deadlock.Mutex

	pendingMu deadlock.Mutex
	pending   map[int32]chan Message

	stateMu deadlock.Mutex
	height  basics.Height

	closeOnce sync.Once
	closed    chan struct{}
}

func newPeer(n *Network, conn net.Conn, addr string) *Peer {
	return &Peer{
		net:     n,
		conn:    conn,
		addr:    addr,
		log:     n.log.With("peer", addr),
		pending: make(map[int32]chan Message),
		closed:  make(chan struct{}),
	}
}

// Addr is the remote address the peer was connected on.
func (p *Peer) Addr() string {
	return p.addr
}

// Height is the peer's last reported chain height.
func (p *Peer) Height() basics.Height {
	p.stateMu.Lock()
	defer p.stateMu.Unlock()
	return p.height
}

// SetHeight records a height the peer just reported.
func (p *Peer) SetHeight(h basics.Height) {
	p.stateMu.Lock()
	defer p.stateMu.Unlock()
	p.height = h
}

// Send writes one message to the peer.
func (p *Peer) Send(m Message) error {
	p.writeMu.Lock()
	defer p.writeMu.Unlock()
	if err := WriteMessage(p.conn, p.net.proto.NetworkMagic, m); err != nil {
		p.Close()
		return err
	}
	return nil
}

// Request sends a message carrying a fresh random id and waits for the
// response echoing it.
func (p *Peer) Request(ctx context.Context, m Message) (Message, error) {
	id := rand.Int31()
	m.HasID = true
	m.ID = id

	ch := make(chan Message, 1)
	p.pendingMu.Lock()
	p.pending[id] = ch
	p.pendingMu.Unlock()
	defer func() {
		p.pendingMu.Lock()
		delete(p.pending, id)
		p.pendingMu.Unlock()
	}()

	if err := p.Send(m); err != nil {
		return Message{}, err
	}
	select {
	case resp := <-ch:
		return resp, nil
	case <-p.closed:
		return Message{}, fmt.Errorf("network: peer %s disconnected", p.addr)
	case <-ctx.Done():
		return Message{}, ctx.Err()
	}
}

// Close tears the connection down. Safe to call more than once.
func (p *Peer) Close() {
	p.closeOnce.Do(func() {
		close(p.closed)
		p.conn.Close()
		p.net.removePeer(p)
	})
}

// readLoop pulls frames off the connection until it dies. Any framing
// fault aborts the connection; a correct peer never produces one.
func (p *Peer) readLoop() {
	defer p.Close()
	for {
		m, err := ReadMessage(p.conn, p.net.proto.NetworkMagic)
		if err != nil {
			select {
			case <-p.closed:
			default:
				p.log.Debugf("read failed: %v", err)
			}
			return
		}

		if m.HasID {
			p.pendingMu.Lock()
			ch, waiting := p.pending[m.ID]
			p.pendingMu.Unlock()
			if waiting {
				ch <- m
				continue
			}
		}
		p.net.dispatch(p, m)
	}
}
