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

// Package ledger is the versioned ledger state store: typed maps over an
// ordered key/value backend, each with an append-only history companion
// consumed during orphaning, plus block storage and the chain application
// path.
//
// Block application is single-writer: at most one block application or
// rollback runs at a time, guarded by the ledger mutex. Balance queries
// take the same lock shared, so they observe a consistent snapshot.
package ledger

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/algorand/go-deadlock"

	"github.com/qoranode/go-qora/config"
	"github.com/qoranode/go-qora/crypto"
	"github.com/qoranode/go-qora/data/basics"
	"github.com/qoranode/go-qora/data/transactions"
	"github.com/qoranode/go-qora/logging"
)

// ErrCorruptStore signals that a history entry required to roll back a
// mutation is missing. The store can no longer be trusted; chain processing
// must halt rather than continue on an under-rolled-back ledger.
var ErrCorruptStore = errors.New("ledger: store corrupt")

// Key space prefixes. Every map owns one byte; history companions own the
// uppercase sibling of their map.
const (
	prefixBalance      = 'b' // addr | asset(8) -> amount(8)
	prefixReference    = 'r' // addr -> signature
	prefixAsset        = 'a' // asset(8) -> Asset
	prefixAssetHist    = 'A' // asset(8) | txSig -> history
	prefixIssuedAsset  = 'i' // txSig -> asset(8)
	prefixAssetCounter = 'c' // -> next asset key(8)
	prefixName         = 'n' // name -> Name
	prefixNameHist     = 'N' // name | txSig -> history
	prefixNameSale     = 's' // name -> price(8)
	prefixNameSaleHist = 'S' // name | txSig -> history
	prefixPoll         = 'p' // name -> Poll
	prefixPollHist     = 'P' // name | txSig -> history
	prefixOrder        = 'o' // orderID(64) -> Order
	prefixOrderHist    = 'O' // orderID(64) | txSig -> history
	prefixAT           = 't' // atID(25) -> AT container
	prefixATHist       = 'T' // atID(25) | blockSig -> history
	prefixATRun        = 'R' // blockSig -> ran AT ids, 25 bytes each
	prefixATTx         = 'x' // height(4) | seq(4) -> ATTransaction
	prefixBlock        = 'B' // blockSig -> snappy(block bytes)
	prefixHeightBySig  = 'H' // blockSig -> height(4)
	prefixSigByHeight  = 'G' // height(4) -> blockSig
	prefixTxParent     = 'X' // txSig -> blockSig
	lastBlockKey       = 'L' // -> blockSig
)

// Ledger is the state store of one chain. The main instance persists; Fork
// yields throwaway overlays used to validate candidate branches.
type Ledger struct {
	mu       deadlock.RWMutex
	kv       KV
	proto    config.ConsensusParams
	log      logging.Logger
	services transactions.ServiceProcessor

	genCache generatingCache
}

// New wraps an open KV as a ledger.
func New(kv KV, proto config.ConsensusParams, log logging.Logger) *Ledger {
	return &Ledger{kv: kv, proto: proto, log: log}
}

// Open opens the persistent ledger at path.
func Open(path string, proto config.ConsensusParams, log logging.Logger) (*Ledger, error) {
	kv, err := OpenKV(path)
	if err != nil {
		return nil, err
	}
	return New(kv, proto, log), nil
}

// NewInMemory returns a ledger over a fresh in-memory store.
func NewInMemory(proto config.ConsensusParams, log logging.Logger) *Ledger {
	return New(NewMemoryKV(), proto, log)
}

// Fork returns a copy-on-write child ledger. Writes to the fork never reach
// the parent; a validated fork's blocks are re-applied to the parent.
func (l *Ledger) Fork() *Ledger {
	child := New(newForkKV(l.kv), l.proto, l.log)
	child.services = l.services
	return child
}

// Close releases the underlying store.
func (l *Ledger) Close() error {
	return l.kv.Close()
}

func key(prefix byte, parts ...[]byte) []byte {
	n := 1
	for _, p := range parts {
		n += len(p)
	}
	k := make([]byte, 1, n)
	k[0] = prefix
	for _, p := range parts {
		k = append(k, p...)
	}
	return k
}

func assetKey(id basics.AssetID) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(id))
	return b[:]
}

func heightKey(h basics.Height) []byte {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], uint32(h))
	return b[:]
}

// History values distinguish "previous value was v" from "key was absent".
const (
	histAbsent  = 0
	histPresent = 1
)

// putWithHistory writes value under mapPrefix|mapKey, first recording the
// key's previous state under histPrefix|mapKey|sig.
func (l *Ledger) putWithHistory(mapPrefix, histPrefix byte, mapKey []byte, value []byte, sig crypto.Signature) error {
	prev, ok, err := l.kv.Get(key(mapPrefix, mapKey))
	if err != nil {
		return err
	}
	hist := []byte{histAbsent}
	if ok {
		hist = append([]byte{histPresent}, prev...)
	}
	if err := l.kv.Put(key(histPrefix, mapKey, sig[:]), hist); err != nil {
		return err
	}
	return l.kv.Put(key(mapPrefix, mapKey), value)
}

// deleteWithHistory removes mapPrefix|mapKey, recording the previous value.
func (l *Ledger) deleteWithHistory(mapPrefix, histPrefix byte, mapKey []byte, sig crypto.Signature) error {
	prev, ok, err := l.kv.Get(key(mapPrefix, mapKey))
	if err != nil {
		return err
	}
	hist := []byte{histAbsent}
	if ok {
		hist = append([]byte{histPresent}, prev...)
	}
	if err := l.kv.Put(key(histPrefix, mapKey, sig[:]), hist); err != nil {
		return err
	}
	return l.kv.Delete(key(mapPrefix, mapKey))
}

// restoreFromHistory reinstates the state recorded for (mapKey, sig) and
// consumes the history entry. A missing entry is ErrCorruptStore.
func (l *Ledger) restoreFromHistory(mapPrefix, histPrefix byte, mapKey []byte, sig crypto.Signature) error {
	histKey := key(histPrefix, mapKey, sig[:])
	hist, ok, err := l.kv.Get(histKey)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: no history for map %q key %x", ErrCorruptStore, mapPrefix, mapKey)
	}
	if len(hist) == 0 {
		return fmt.Errorf("%w: empty history for map %q key %x", ErrCorruptStore, mapPrefix, mapKey)
	}
	if hist[0] == histAbsent {
		if err := l.kv.Delete(key(mapPrefix, mapKey)); err != nil {
			return err
		}
	} else {
		if err := l.kv.Put(key(mapPrefix, mapKey), hist[1:]); err != nil {
			return err
		}
	}
	return l.kv.Delete(histKey)
}
