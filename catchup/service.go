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

// Package catchup brings the local chain up to the best branch its peers
// carry. A round picks the tallest peer, finds the last block both chains
// share, validates the peer's branch on a throwaway fork of the state, and
// only then reorganizes the real ledger. Transactions knocked out of
// orphaned blocks go back to the unconfirmed pool.
package catchup

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/qoranode/go-qora/config"
	"github.com/qoranode/go-qora/crypto"
	"github.com/qoranode/go-qora/data/basics"
	"github.com/qoranode/go-qora/data/bookkeeping"
	"github.com/qoranode/go-qora/data/pools"
	"github.com/qoranode/go-qora/data/transactions"
	"github.com/qoranode/go-qora/ledger"
	"github.com/qoranode/go-qora/logging"
	"github.com/qoranode/go-qora/network"
	"github.com/qoranode/go-qora/protocol"
)

// BlockSource is one remote chain we can sync from. The network peer is the
// production implementation; tests drive the synchronizer with a source
// backed by a second in-memory ledger.
type BlockSource interface {
	// Height is the source's last reported chain height.
	Height() basics.Height

	// Signatures returns the source's block signatures above the given
	// one, ascending. An empty result means the source does not know the
	// signature, or has nothing above it.
	Signatures(ctx context.Context, from crypto.Signature) ([]crypto.Signature, error)

	// Block fetches one block by signature.
	Block(ctx context.Context, sig crypto.Signature) (*bookkeeping.Block, error)
}

// ErrNoCommonBlock reports a peer whose chain shares no recent block with
// ours. Syncing from it would require unwinding past a checkpoint or past
// the unwind horizon, so the peer is skipped.
var ErrNoCommonBlock = errors.New("catchup: no common block within unwind horizon")

const syncInterval = 5 * time.Second

// requestTimeout bounds one round trip to a peer.
const requestTimeout = 30 * time.Second

// Service periodically syncs the ledger from the tallest connected peer.
type Service struct {
	ledger *ledger.Ledger
	pool   *pools.TransactionPool
	net    *network.Network
	proto  config.ConsensusParams
	log    logging.Logger

	quit chan struct{}
	wg   sync.WaitGroup
}

// MakeService builds an unstarted catchup service.
func MakeService(l *ledger.Ledger, pool *pools.TransactionPool, net *network.Network, proto config.ConsensusParams, log logging.Logger) *Service {
	return &Service{
		ledger: l,
		pool:   pool,
		net:    net,
		proto:  proto,
		log:    log.With("Context", "catchup"),
		quit:   make(chan struct{}),
	}
}

// Start launches the periodic sync loop.
func (s *Service) Start() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(syncInterval)
		defer ticker.Stop()
		for {
			select {
			case <-s.quit:
				return
			case <-ticker.C:
				if err := s.syncRound(); err != nil {
					s.log.Debugf("sync round failed: %v", err)
				}
			}
		}
	}()
}

// Stop halts the sync loop and waits for an in-flight round to finish.
func (s *Service) Stop() {
	close(s.quit)
	s.wg.Wait()
}

// syncRound syncs once from the tallest peer that is ahead of us.
func (s *Service) syncRound() error {
	_, ourHeight, ok, err := s.ledger.LastBlock()
	if err != nil || !ok {
		return err
	}

	var best *network.Peer
	for _, p := range s.net.Peers() {
		if p.Height() <= ourHeight {
			continue
		}
		if best == nil || p.Height() > best.Height() {
			best = p
		}
	}
	if best == nil {
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		select {
		case <-s.quit:
			cancel()
		case <-ctx.Done():
		}
	}()

	return s.SyncFrom(ctx, NewPeerSource(best))
}

// SyncFrom performs one full synchronization pass against a source: find
// the last common block, validate the source's branch on a fork, then
// reorganize the ledger onto it.
func (s *Service) SyncFrom(ctx context.Context, src BlockSource) error {
	tip, tipHeight, ok, err := s.ledger.LastBlock()
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("catchup: ledger has no blocks")
	}

	commonSig, commonHeight, err := s.findCommonBlock(ctx, src, tip.Signature(), tipHeight)
	if err != nil {
		return err
	}

	sigs, err := s.collectSignatures(ctx, src, commonSig)
	if err != nil {
		return err
	}
	if len(sigs) == 0 {
		return nil
	}

	blocks := make([]*bookkeeping.Block, 0, len(sigs))
	for _, sig := range sigs {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		b, err := src.Block(ctx, sig)
		if err != nil {
			return err
		}
		if b.Signature() != sig {
			return fmt.Errorf("catchup: peer sent block with unexpected signature")
		}
		blocks = append(blocks, b)
	}

	if commonHeight < tipHeight {
		return s.reorganize(commonHeight, blocks)
	}
	return s.extend(blocks)
}

// findCommonBlock walks our chain back from the tip until the source
// recognizes one of our block signatures. The walk never crosses a
// checkpointed block and never exceeds one signatures-response worth of
// depth.
func (s *Service) findCommonBlock(ctx context.Context, src BlockSource, tipSig crypto.Signature, tipHeight basics.Height) (crypto.Signature, basics.Height, error) {
	floor := basics.Height(1)
	for h := range s.proto.Checkpoints {
		if basics.Height(h) <= tipHeight && basics.Height(h) > floor {
			floor = basics.Height(h)
		}
	}
	if horizon := tipHeight - basics.Height(s.proto.MaxSignaturesPerResponse); horizon > floor {
		floor = horizon
	}

	sig := tipSig
	for h := tipHeight; h >= floor; h-- {
		select {
		case <-ctx.Done():
			return crypto.Signature{}, 0, ctx.Err()
		default:
		}
		if h != tipHeight {
			var ok bool
			var err error
			sig, ok, err = s.ledger.SignatureByHeight(h)
			if err != nil {
				return crypto.Signature{}, 0, err
			}
			if !ok {
				return crypto.Signature{}, 0, fmt.Errorf("catchup: no block at height %d", h)
			}
		}
		above, err := src.Signatures(ctx, sig)
		if err != nil {
			return crypto.Signature{}, 0, err
		}
		if len(above) > 0 {
			return sig, h, nil
		}
	}
	return crypto.Signature{}, 0, ErrNoCommonBlock
}

// collectSignatures pulls the source's chain above the common block,
// ascending, extending the list while full responses keep coming.
func (s *Service) collectSignatures(ctx context.Context, src BlockSource, from crypto.Signature) ([]crypto.Signature, error) {
	var out []crypto.Signature
	last := from
	for {
		batch, err := src.Signatures(ctx, last)
		if err != nil {
			return nil, err
		}
		out = append(out, batch...)
		if len(batch) < s.proto.MaxSignaturesPerResponse {
			return out, nil
		}
		last = batch[len(batch)-1]
	}
}

// extend applies blocks on top of the current tip, strictly in order. A
// block is never applied unless its parent is the tip; AddBlock enforces
// that.
func (s *Service) extend(blocks []*bookkeeping.Block) error {
	for _, b := range blocks {
		if err := s.ledger.AddBlock(b); err != nil {
			return err
		}
		s.pool.Remove(b.Transactions)
	}
	return nil
}

// reorganize switches the ledger to the branch in blocks, which forks off
// at commonHeight. The branch is validated in full on a throwaway fork
// first; the real chain is only unwound once the branch is known good.
func (s *Service) reorganize(commonHeight basics.Height, blocks []*bookkeeping.Block) error {
	fork := s.ledger.Fork()
	_, forkHeight, _, err := fork.LastBlock()
	if err != nil {
		return err
	}
	for forkHeight > commonHeight {
		if _, err := fork.OrphanLastBlock(); err != nil {
			return fmt.Errorf("catchup: unwinding fork: %w", err)
		}
		forkHeight--
	}
	for _, b := range blocks {
		if err := fork.AddBlock(b); err != nil {
			return fmt.Errorf("catchup: peer branch rejected: %w", err)
		}
	}

	// The branch checked out; repeat the moves on the real ledger.
	var orphaned []*transactions.Transaction
	_, height, _, err := s.ledger.LastBlock()
	if err != nil {
		return err
	}
	for height > commonHeight {
		ob, err := s.ledger.OrphanLastBlock()
		if err != nil {
			return err
		}
		orphaned = append(orphaned, ob.Transactions...)
		height--
	}
	for _, b := range blocks {
		if err := s.ledger.AddBlock(b); err != nil {
			return err
		}
	}

	confirmed := make(map[crypto.Signature]bool)
	for _, b := range blocks {
		for _, tx := range b.Transactions {
			confirmed[tx.Signature] = true
		}
	}
	var back []*transactions.Transaction
	for _, tx := range orphaned {
		if tx.Type != protocol.GenesisTx && !confirmed[tx.Signature] {
			back = append(back, tx)
		}
	}
	s.pool.Readd(back)

	s.log.Infof("reorganized: unwound to height %d, applied %d blocks, repooled %d transactions",
		commonHeight, len(blocks), len(back))
	return nil
}
