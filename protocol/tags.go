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

package protocol

// MessageType identifies a peer message. It travels as an int32 at the head
// of every frame. Handlers register per type; unknown types are tolerated so
// newer peers can talk to older nodes.
type MessageType int32

// Message types, in wire order.
const (
	PingMsg          MessageType = 0
	GetPeersMsg      MessageType = 1
	PeersMsg         MessageType = 2
	HeightMsg        MessageType = 3
	GetSignaturesMsg MessageType = 4
	SignaturesMsg    MessageType = 5
	GetBlockMsg      MessageType = 6
	BlockMsg         MessageType = 7
	TransactionMsg   MessageType = 8
	VersionMsg       MessageType = 9
	FindMyselfMsg    MessageType = 10
)

func (t MessageType) String() string {
	switch t {
	case PingMsg:
		return "ping"
	case GetPeersMsg:
		return "getPeers"
	case PeersMsg:
		return "peers"
	case HeightMsg:
		return "height"
	case GetSignaturesMsg:
		return "getSignatures"
	case SignaturesMsg:
		return "signatures"
	case GetBlockMsg:
		return "getBlock"
	case BlockMsg:
		return "block"
	case TransactionMsg:
		return "transaction"
	case VersionMsg:
		return "version"
	case FindMyselfMsg:
		return "findMyself"
	default:
		return "unknown"
	}
}

// TxType tags a transaction kind. The tag is consensus data: it is the first
// field of the canonical signed encoding.
type TxType int32

// Transaction types. Values are fixed by the chain history and must never be
// renumbered.
const (
	GenesisTx        TxType = 1
	PaymentTx        TxType = 2
	RegisterNameTx   TxType = 3
	UpdateNameTx     TxType = 4
	SellNameTx       TxType = 5
	CancelSellNameTx TxType = 6
	BuyNameTx        TxType = 7
	CreatePollTx     TxType = 8
	VoteOnPollTx     TxType = 9
	ArbitraryTx      TxType = 10
	IssueAssetTx     TxType = 11
	TransferAssetTx  TxType = 12
	CreateOrderTx    TxType = 13
	CancelOrderTx    TxType = 14
	MultiPaymentTx   TxType = 15
	DeployATTx       TxType = 16
	MessageTx        TxType = 17
)

func (t TxType) String() string {
	switch t {
	case GenesisTx:
		return "genesis"
	case PaymentTx:
		return "payment"
	case RegisterNameTx:
		return "registerName"
	case UpdateNameTx:
		return "updateName"
	case SellNameTx:
		return "sellName"
	case CancelSellNameTx:
		return "cancelSellName"
	case BuyNameTx:
		return "buyName"
	case CreatePollTx:
		return "createPoll"
	case VoteOnPollTx:
		return "voteOnPoll"
	case ArbitraryTx:
		return "arbitrary"
	case IssueAssetTx:
		return "issueAsset"
	case TransferAssetTx:
		return "transferAsset"
	case CreateOrderTx:
		return "createOrder"
	case CancelOrderTx:
		return "cancelOrder"
	case MultiPaymentTx:
		return "multiPayment"
	case DeployATTx:
		return "deployAT"
	case MessageTx:
		return "message"
	default:
		return "unknown"
	}
}
