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
	"fmt"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"
)

// levelKV backs the main chain state with goleveldb.
type levelKV struct {
	db *leveldb.DB
}

// OpenKV opens (or creates) the persistent store at path.
func OpenKV(path string) (KV, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("ledger: opening %s: %w", path, err)
	}
	return &levelKV{db: db}, nil
}

func (kv *levelKV) Get(key []byte) ([]byte, bool, error) {
	v, err := kv.db.Get(key, nil)
	if err == leveldb.ErrNotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

func (kv *levelKV) Put(key, value []byte) error {
	return kv.db.Put(key, value, nil)
}

func (kv *levelKV) Delete(key []byte) error {
	return kv.db.Delete(key, nil)
}

func (kv *levelKV) Keys(prefix []byte) ([][]byte, error) {
	it := kv.db.NewIterator(util.BytesPrefix(prefix), nil)
	defer it.Release()
	var out [][]byte
	for it.Next() {
		k := make([]byte, len(it.Key()))
		copy(k, it.Key())
		out = append(out, k)
	}
	return out, it.Error()
}

func (kv *levelKV) Close() error {
	return kv.db.Close()
}
