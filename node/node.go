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

// Package node assembles a full node: ledger, transaction pool, peer
// network and chain synchronization, wired together by the peer message
// handlers.
package node

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/qoranode/go-qora/catchup"
	"github.com/qoranode/go-qora/config"
	"github.com/qoranode/go-qora/data/pools"
	"github.com/qoranode/go-qora/ledger"
	"github.com/qoranode/go-qora/logging"
	"github.com/qoranode/go-qora/network"
	"github.com/qoranode/go-qora/protocol"
)

const expireInterval = time.Minute

// versionString is what we report in version handshakes.
const versionString = "go-qora/1.0"

// Node is a running full node.
type Node struct {
	cfg   config.Local
	proto config.ConsensusParams
	log   logging.Logger

	ledger  *ledger.Ledger
	pool    *pools.TransactionPool
	net     *network.Network
	catchup *catchup.Service

	quit chan struct{}
	wg   sync.WaitGroup
}

// MakeNode opens the ledger under rootDir, seeds it with the genesis block
// if virgin, and wires up the services. The node is not started.
func MakeNode(rootDir string, cfg config.Local, log logging.Logger) (*Node, error) {
	proto := cfg.Consensus()

	l, err := ledger.Open(filepath.Join(rootDir, "ledger"), proto, log)
	if err != nil {
		return nil, fmt.Errorf("node: opening ledger: %w", err)
	}
	genesis, err := genesisBlock(proto)
	if err != nil {
		l.Close()
		return nil, err
	}
	if err := l.Initialize(genesis); err != nil {
		l.Close()
		return nil, err
	}

	n := &Node{
		cfg:    cfg,
		proto:  proto,
		log:    log,
		ledger: l,
		pool:   pools.MakeTransactionPool(l, proto, log),
		net:    network.NewNetwork(cfg, proto, log),
		quit:   make(chan struct{}),
	}
	n.catchup = catchup.MakeService(l, n.pool, n.net, proto, log)
	n.registerHandlers()
	return n, nil
}

// Start brings the node online.
func (n *Node) Start() error {
	if err := n.net.Start(); err != nil {
		return err
	}
	n.catchup.Start()

	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		ticker := time.NewTicker(expireInterval)
		defer ticker.Stop()
		for {
			select {
			case <-n.quit:
				return
			case <-ticker.C:
				n.pool.Expire(time.Now().UnixMilli())
			}
		}
	}()

	_, height, _, err := n.ledger.LastBlock()
	if err != nil {
		return err
	}
	n.log.Infof("node started at height %d", height)
	return nil
}

// Stop shuts the node down and closes the ledger.
func (n *Node) Stop() {
	close(n.quit)
	n.catchup.Stop()
	n.net.Stop()
	n.wg.Wait()
	if err := n.ledger.Close(); err != nil {
		n.log.Warnf("closing ledger: %v", err)
	}
	n.log.Info("node stopped")
}

// Ledger exposes the node's chain state, for the CLI surfaces.
func (n *Node) Ledger() *ledger.Ledger {
	return n.ledger
}

// Pool exposes the node's unconfirmed transaction pool.
func (n *Node) Pool() *pools.TransactionPool {
	return n.pool
}

// announceHeight tells every peer where our chain stands now.
func (n *Node) announceHeight() {
	_, height, ok, err := n.ledger.LastBlock()
	if err != nil || !ok {
		return
	}
	n.net.Broadcast(network.Message{
		Type:    protocol.HeightMsg,
		Payload: network.EncodeHeight(height),
	}, nil)
}
