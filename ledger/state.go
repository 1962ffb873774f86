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
	"encoding/binary"
	"fmt"

	"github.com/qoranode/go-qora/at"
	"github.com/qoranode/go-qora/crypto"
	"github.com/qoranode/go-qora/data/basics"
	"github.com/qoranode/go-qora/data/transactions"
)

// The typed map accessors. Together they implement transactions.Balances;
// they are called with the ledger mutex already held by the application
// path.

var _ transactions.Balances = (*Ledger)(nil)

// Height is the height of the block currently being applied: one above the
// stored tip, since the tip only advances after its transactions are done.
func (l *Ledger) Height() (basics.Height, error) {
	tip, err := l.tipHeight()
	if err != nil {
		return 0, err
	}
	return tip + 1, nil
}

func (l *Ledger) tipHeight() (basics.Height, error) {
	sig, ok, err := l.lastBlockSignature()
	if err != nil || !ok {
		return 0, err
	}
	h, ok, err := l.HeightOf(sig)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, fmt.Errorf("%w: tip has no height entry", ErrCorruptStore)
	}
	return h, nil
}

// Balance returns the stored balance, zero for untouched accounts.
func (l *Ledger) Balance(addr basics.Address, asset basics.AssetID) (basics.Amount, error) {
	v, ok, err := l.kv.Get(key(prefixBalance, addr[:], assetKey(asset)))
	if err != nil || !ok {
		return basics.Amount{}, err
	}
	if len(v) != 8 {
		return basics.Amount{}, fmt.Errorf("%w: balance entry is %d bytes", ErrCorruptStore, len(v))
	}
	return basics.AmountFromRaw(int64(binary.BigEndian.Uint64(v))), nil
}

// SetBalance stores the balance. A zero balance deletes the entry so that
// process/orphan round-trips leave no residue.
func (l *Ledger) SetBalance(addr basics.Address, asset basics.AssetID, amt basics.Amount) error {
	k := key(prefixBalance, addr[:], assetKey(asset))
	if amt.IsZero() {
		return l.kv.Delete(k)
	}
	var v [8]byte
	binary.BigEndian.PutUint64(v[:], uint64(amt.Raw))
	return l.kv.Put(k, v[:])
}

func (l *Ledger) Reference(addr basics.Address) (crypto.Signature, bool, error) {
	v, ok, err := l.kv.Get(key(prefixReference, addr[:]))
	if err != nil || !ok {
		return crypto.Signature{}, false, err
	}
	if len(v) != crypto.SignatureSize {
		return crypto.Signature{}, false, fmt.Errorf("%w: reference entry is %d bytes", ErrCorruptStore, len(v))
	}
	var sig crypto.Signature
	copy(sig[:], v)
	return sig, true, nil
}

func (l *Ledger) SetReference(addr basics.Address, ref crypto.Signature) error {
	return l.kv.Put(key(prefixReference, addr[:]), ref[:])
}

func (l *Ledger) ClearReference(addr basics.Address) error {
	return l.kv.Delete(key(prefixReference, addr[:]))
}

func (l *Ledger) Asset(id basics.AssetID) (basics.Asset, bool, error) {
	v, ok, err := l.kv.Get(key(prefixAsset, assetKey(id)))
	if err != nil || !ok {
		return basics.Asset{}, false, err
	}
	a, err := basics.DecodeAsset(v)
	if err != nil {
		return basics.Asset{}, false, fmt.Errorf("%w: %v", ErrCorruptStore, err)
	}
	return a, true, nil
}

func (l *Ledger) PutAsset(id basics.AssetID, a basics.Asset, txSig crypto.Signature) error {
	if err := l.putWithHistory(prefixAsset, prefixAssetHist, assetKey(id), a.Encode(), txSig); err != nil {
		return err
	}
	next, err := l.NextAssetID()
	if err != nil {
		return err
	}
	if id >= next {
		return l.setNextAssetID(id + 1)
	}
	return nil
}

func (l *Ledger) RestoreAsset(id basics.AssetID, txSig crypto.Signature) error {
	if err := l.restoreFromHistory(prefixAsset, prefixAssetHist, assetKey(id), txSig); err != nil {
		return err
	}
	// Retracting the newest asset frees its key for reuse.
	_, stillThere, err := l.Asset(id)
	if err != nil {
		return err
	}
	next, err := l.NextAssetID()
	if err != nil {
		return err
	}
	if !stillThere && next == id+1 {
		return l.setNextAssetID(id)
	}
	return nil
}

func (l *Ledger) NextAssetID() (basics.AssetID, error) {
	v, ok, err := l.kv.Get([]byte{prefixAssetCounter})
	if err != nil || !ok {
		return 0, err
	}
	return basics.AssetID(binary.BigEndian.Uint64(v)), nil
}

func (l *Ledger) setNextAssetID(id basics.AssetID) error {
	var v [8]byte
	binary.BigEndian.PutUint64(v[:], uint64(id))
	return l.kv.Put([]byte{prefixAssetCounter}, v[:])
}

func (l *Ledger) IssuedAsset(txSig crypto.Signature) (basics.AssetID, bool, error) {
	v, ok, err := l.kv.Get(key(prefixIssuedAsset, txSig[:]))
	if err != nil || !ok {
		return 0, false, err
	}
	return basics.AssetID(binary.BigEndian.Uint64(v)), true, nil
}

func (l *Ledger) SetIssuedAsset(txSig crypto.Signature, id basics.AssetID) error {
	var v [8]byte
	binary.BigEndian.PutUint64(v[:], uint64(id))
	return l.kv.Put(key(prefixIssuedAsset, txSig[:]), v[:])
}

func (l *Ledger) DeleteIssuedAsset(txSig crypto.Signature) error {
	return l.kv.Delete(key(prefixIssuedAsset, txSig[:]))
}

func (l *Ledger) Name(name string) (basics.Name, bool, error) {
	v, ok, err := l.kv.Get(key(prefixName, []byte(name)))
	if err != nil || !ok {
		return basics.Name{}, false, err
	}
	rec, err := basics.DecodeName(v)
	if err != nil {
		return basics.Name{}, false, fmt.Errorf("%w: %v", ErrCorruptStore, err)
	}
	return rec, true, nil
}

func (l *Ledger) PutName(name string, rec basics.Name, txSig crypto.Signature) error {
	return l.putWithHistory(prefixName, prefixNameHist, []byte(name), rec.Encode(), txSig)
}

func (l *Ledger) DeleteName(name string, txSig crypto.Signature) error {
	return l.deleteWithHistory(prefixName, prefixNameHist, []byte(name), txSig)
}

func (l *Ledger) RestoreName(name string, txSig crypto.Signature) error {
	return l.restoreFromHistory(prefixName, prefixNameHist, []byte(name), txSig)
}

func (l *Ledger) NameSale(name string) (basics.Amount, bool, error) {
	v, ok, err := l.kv.Get(key(prefixNameSale, []byte(name)))
	if err != nil || !ok {
		return basics.Amount{}, false, err
	}
	return basics.AmountFromRaw(int64(binary.BigEndian.Uint64(v))), true, nil
}

func (l *Ledger) PutNameSale(name string, price basics.Amount, txSig crypto.Signature) error {
	var v [8]byte
	binary.BigEndian.PutUint64(v[:], uint64(price.Raw))
	return l.putWithHistory(prefixNameSale, prefixNameSaleHist, []byte(name), v[:], txSig)
}

func (l *Ledger) DeleteNameSale(name string, txSig crypto.Signature) error {
	return l.deleteWithHistory(prefixNameSale, prefixNameSaleHist, []byte(name), txSig)
}

func (l *Ledger) RestoreNameSale(name string, txSig crypto.Signature) error {
	return l.restoreFromHistory(prefixNameSale, prefixNameSaleHist, []byte(name), txSig)
}

func (l *Ledger) Poll(name string) (basics.Poll, bool, error) {
	v, ok, err := l.kv.Get(key(prefixPoll, []byte(name)))
	if err != nil || !ok {
		return basics.Poll{}, false, err
	}
	p, err := basics.DecodePoll(v)
	if err != nil {
		return basics.Poll{}, false, fmt.Errorf("%w: %v", ErrCorruptStore, err)
	}
	return p, true, nil
}

func (l *Ledger) PutPoll(name string, p basics.Poll, txSig crypto.Signature) error {
	return l.putWithHistory(prefixPoll, prefixPollHist, []byte(name), p.Encode(), txSig)
}

func (l *Ledger) RestorePoll(name string, txSig crypto.Signature) error {
	return l.restoreFromHistory(prefixPoll, prefixPollHist, []byte(name), txSig)
}

func (l *Ledger) Order(id crypto.Signature) (basics.Order, bool, error) {
	v, ok, err := l.kv.Get(key(prefixOrder, id[:]))
	if err != nil || !ok {
		return basics.Order{}, false, err
	}
	o, err := basics.DecodeOrder(v)
	if err != nil {
		return basics.Order{}, false, fmt.Errorf("%w: %v", ErrCorruptStore, err)
	}
	return o, true, nil
}

func (l *Ledger) PutOrder(id crypto.Signature, o basics.Order, txSig crypto.Signature) error {
	return l.putWithHistory(prefixOrder, prefixOrderHist, id[:], o.Encode(), txSig)
}

func (l *Ledger) DeleteOrder(id crypto.Signature, txSig crypto.Signature) error {
	return l.deleteWithHistory(prefixOrder, prefixOrderHist, id[:], txSig)
}

func (l *Ledger) RestoreOrder(id crypto.Signature, txSig crypto.Signature) error {
	return l.restoreFromHistory(prefixOrder, prefixOrderHist, id[:], txSig)
}

func (l *Ledger) AT(id basics.Address) (*at.AT, bool, error) {
	v, ok, err := l.kv.Get(key(prefixAT, id[:]))
	if err != nil || !ok {
		return nil, false, err
	}
	a, err := at.Parse(v)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrCorruptStore, err)
	}
	return a, true, nil
}

func (l *Ledger) PutAT(a *at.AT, txSig crypto.Signature) error {
	return l.putWithHistory(prefixAT, prefixATHist, a.ID[:], a.ToBytes(), txSig)
}

func (l *Ledger) RestoreAT(id basics.Address, txSig crypto.Signature) error {
	return l.restoreFromHistory(prefixAT, prefixATHist, id[:], txSig)
}

// ATs returns every deployed AT in ascending id order, the AT scheduler's
// execution order.
func (l *Ledger) ATs() ([]*at.AT, error) {
	keys, err := l.kv.Keys([]byte{prefixAT})
	if err != nil {
		return nil, err
	}
	out := make([]*at.AT, 0, len(keys))
	for _, k := range keys {
		v, ok, err := l.kv.Get(k)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		a, err := at.Parse(v)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorruptStore, err)
		}
		out = append(out, a)
	}
	return out, nil
}
