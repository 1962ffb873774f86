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

package ledger

import (
	"sort"

	"github.com/algorand/go-deadlock"
)

// KV is the ordered key/value contract the ledger stores its maps in. The
// ledger specifies only what is stored and the rollback contract over it;
// anything that can honor this interface can back a node.
type KV interface {
	// Get returns the stored value and whether the key exists.
	Get(key []byte) ([]byte, bool, error)
	Put(key, value []byte) error
	Delete(key []byte) error

	// Keys returns every key beginning with prefix, in ascending byte
	// order.
	Keys(prefix []byte) ([][]byte, error)

	Close() error
}

// memoryKV is a KV held entirely in memory. Forks and tests run on it.
type memoryKV struct {
	mu deadlock.RWMutex
	m  map[string][]byte
}

// NewMemoryKV returns an empty in-memory KV.
func NewMemoryKV() KV {
	return &memoryKV{m: make(map[string][]byte)}
}

func (kv *memoryKV) Get(key []byte) ([]byte, bool, error) {
	kv.mu.RLock()
	defer kv.mu.RUnlock()
	v, ok := kv.m[string(key)]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, true, nil
}

func (kv *memoryKV) Put(key, value []byte) error {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	stored := make([]byte, len(value))
	copy(stored, value)
	kv.m[string(key)] = stored
	return nil
}

func (kv *memoryKV) Delete(key []byte) error {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	delete(kv.m, string(key))
	return nil
}

func (kv *memoryKV) Keys(prefix []byte) ([][]byte, error) {
	kv.mu.RLock()
	defer kv.mu.RUnlock()
	var keys []string
	for k := range kv.m {
		if len(k) >= len(prefix) && k[:len(prefix)] == string(prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	out := make([][]byte, len(keys))
	for i, k := range keys {
		out[i] = []byte(k)
	}
	return out, nil
}

func (kv *memoryKV) Close() error {
	return nil
}

// forkKV overlays pending writes and deletions on a parent KV. Nothing
// reaches the parent; discarding the fork discards its changes.
type forkKV struct {
	parent  KV
	writes  map[string][]byte
	deleted map[string]bool
}

func newForkKV(parent KV) *forkKV {
	return &forkKV{
		parent:  parent,
		writes:  make(map[string][]byte),
		deleted: make(map[string]bool),
	}
}

func (kv *forkKV) Get(key []byte) ([]byte, bool, error) {
	if v, ok := kv.writes[string(key)]; ok {
		out := make([]byte, len(v))
		copy(out, v)
		return out, true, nil
	}
	if kv.deleted[string(key)] {
		return nil, false, nil
	}
	return kv.parent.Get(key)
}

func (kv *forkKV) Put(key, value []byte) error {
	stored := make([]byte, len(value))
	copy(stored, value)
	kv.writes[string(key)] = stored
	delete(kv.deleted, string(key))
	return nil
}

func (kv *forkKV) Delete(key []byte) error {
	delete(kv.writes, string(key))
	kv.deleted[string(key)] = true
	return nil
}

func (kv *forkKV) Keys(prefix []byte) ([][]byte, error) {
	parentKeys, err := kv.parent.Keys(prefix)
	if err != nil {
		return nil, err
	}
	merged := make(map[string]bool)
	for _, k := range parentKeys {
		if !kv.deleted[string(k)] {
			merged[string(k)] = true
		}
	}
	for k := range kv.writes {
		if len(k) >= len(prefix) && k[:len(prefix)] == string(prefix) {
			merged[k] = true
		}
	}
	keys := make([]string, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([][]byte, len(keys))
	for i, k := range keys {
		out[i] = []byte(k)
	}
	return out, nil
}

func (kv *forkKV) Close() error {
	return nil
}
