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

package transactions

import (
	"github.com/qoranode/go-qora/at"
	"github.com/qoranode/go-qora/crypto"
	"github.com/qoranode/go-qora/data/basics"
)

// Balances is the engine's view of the ledger state store. Process and
// Orphan mutate it; IsValid only reads it.
//
// Maps whose current value cannot be reconstructed arithmetically carry a
// history companion: Put and Delete record the previous value (or its
// absence) keyed by the mutating transaction's signature, and Restore
// reinstates it, consuming the entry. Restore finding no history entry means
// the store is corrupt; implementations must return an error wrapping their
// corruption sentinel and the caller must halt the reorganization. Balances
// and references are rolled back arithmetically and have no history.
type Balances interface {
	// Height is the height of the block currently being applied or
	// orphaned.
	Height() (basics.Height, error)

	Balance(addr basics.Address, asset basics.AssetID) (basics.Amount, error)
	SetBalance(addr basics.Address, asset basics.AssetID, amt basics.Amount) error

	// Reference reports an account's last-reference. The second result is
	// false exactly when the account has issued no transaction yet.
	Reference(addr basics.Address) (crypto.Signature, bool, error)
	SetReference(addr basics.Address, ref crypto.Signature) error
	ClearReference(addr basics.Address) error

	Asset(id basics.AssetID) (basics.Asset, bool, error)
	PutAsset(id basics.AssetID, a basics.Asset, txSig crypto.Signature) error
	RestoreAsset(id basics.AssetID, txSig crypto.Signature) error
	// NextAssetID is the key the next issued asset will receive.
	NextAssetID() (basics.AssetID, error)
	// IssuedAsset maps an issuing transaction's signature to the asset key
	// it created, so orphaning can find what to retract.
	IssuedAsset(txSig crypto.Signature) (basics.AssetID, bool, error)
	SetIssuedAsset(txSig crypto.Signature, id basics.AssetID) error
	DeleteIssuedAsset(txSig crypto.Signature) error

	Name(name string) (basics.Name, bool, error)
	PutName(name string, rec basics.Name, txSig crypto.Signature) error
	DeleteName(name string, txSig crypto.Signature) error
	RestoreName(name string, txSig crypto.Signature) error

	// Name sales map a name to its asking price while it is listed.
	NameSale(name string) (basics.Amount, bool, error)
	PutNameSale(name string, price basics.Amount, txSig crypto.Signature) error
	DeleteNameSale(name string, txSig crypto.Signature) error
	RestoreNameSale(name string, txSig crypto.Signature) error

	Poll(name string) (basics.Poll, bool, error)
	PutPoll(name string, p basics.Poll, txSig crypto.Signature) error
	RestorePoll(name string, txSig crypto.Signature) error

	// Orders are keyed by the signature of the creating transaction.
	Order(id crypto.Signature) (basics.Order, bool, error)
	PutOrder(id crypto.Signature, o basics.Order, txSig crypto.Signature) error
	DeleteOrder(id crypto.Signature, txSig crypto.Signature) error
	RestoreOrder(id crypto.Signature, txSig crypto.Signature) error

	AT(id basics.Address) (*at.AT, bool, error)
	PutAT(a *at.AT, txSig crypto.Signature) error
	RestoreAT(id basics.Address, txSig crypto.Signature) error
}
