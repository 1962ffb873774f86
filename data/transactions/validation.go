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

// ValidationCode is the typed outcome of IsValid. Anything other than
// ValidateOK rejects the transaction before any Process call; the store is
// untouched. Values are fixed by the original chain's API.
type ValidationCode int

// Validation outcomes.
const (
	ValidateOK             ValidationCode = 1
	InvalidAddress         ValidationCode = 2
	NegativeAmount         ValidationCode = 3
	NegativeFee            ValidationCode = 4
	NoBalance              ValidationCode = 5
	InvalidReference       ValidationCode = 6
	InvalidNameLength      ValidationCode = 7
	InvalidValueLength     ValidationCode = 8
	NameAlreadyRegistered  ValidationCode = 9
	NameDoesNotExist       ValidationCode = 10
	InvalidNameOwner       ValidationCode = 11
	NameAlreadyForSale     ValidationCode = 12
	NameNotForSale         ValidationCode = 13
	BuyerAlreadyOwner      ValidationCode = 14
	InvalidAmount          ValidationCode = 15
	NameNotLowerCase       ValidationCode = 17
	InvalidDescription     ValidationCode = 18
	InvalidOptionsLength   ValidationCode = 19
	InvalidOptionLength    ValidationCode = 20
	DuplicateOption        ValidationCode = 21
	PollAlreadyCreated     ValidationCode = 22
	PollDoesNotExist       ValidationCode = 24
	OptionDoesNotExist     ValidationCode = 25
	AlreadyVotedForOption  ValidationCode = 26
	InvalidDataLength      ValidationCode = 27
	InvalidQuantity        ValidationCode = 28
	AssetDoesNotExist      ValidationCode = 29
	HaveEqualsWant         ValidationCode = 31
	OrderDoesNotExist      ValidationCode = 32
	InvalidOrderCreator    ValidationCode = 33
	InvalidPaymentsLength  ValidationCode = 34
	NegativePrice          ValidationCode = 35
	InvalidCreationBytes   ValidationCode = 36
	InvalidTagsLength      ValidationCode = 37
	InvalidTypeLength      ValidationCode = 38
	FeeLessThanRequired    ValidationCode = 40
	InvalidSignature       ValidationCode = 41
	TimestampAfterDeadline ValidationCode = 42
)

func (c ValidationCode) String() string {
	switch c {
	case ValidateOK:
		return "ok"
	case InvalidAddress:
		return "invalid address"
	case NegativeAmount:
		return "negative amount"
	case NegativeFee:
		return "negative fee"
	case NoBalance:
		return "insufficient balance"
	case InvalidReference:
		return "invalid reference"
	case InvalidNameLength:
		return "invalid name length"
	case InvalidValueLength:
		return "invalid value length"
	case NameAlreadyRegistered:
		return "name already registered"
	case NameDoesNotExist:
		return "name does not exist"
	case InvalidNameOwner:
		return "invalid name owner"
	case NameAlreadyForSale:
		return "name already for sale"
	case NameNotForSale:
		return "name not for sale"
	case BuyerAlreadyOwner:
		return "buyer already owner"
	case InvalidAmount:
		return "invalid amount"
	case NameNotLowerCase:
		return "name not lower case"
	case InvalidDescription:
		return "invalid description length"
	case InvalidOptionsLength:
		return "invalid options length"
	case InvalidOptionLength:
		return "invalid option length"
	case DuplicateOption:
		return "duplicate option"
	case PollAlreadyCreated:
		return "poll already created"
	case PollDoesNotExist:
		return "poll does not exist"
	case OptionDoesNotExist:
		return "option does not exist"
	case AlreadyVotedForOption:
		return "already voted for that option"
	case InvalidDataLength:
		return "invalid data length"
	case InvalidQuantity:
		return "invalid quantity"
	case AssetDoesNotExist:
		return "asset does not exist"
	case HaveEqualsWant:
		return "have equals want"
	case OrderDoesNotExist:
		return "order does not exist"
	case InvalidOrderCreator:
		return "invalid order creator"
	case InvalidPaymentsLength:
		return "invalid payments length"
	case NegativePrice:
		return "negative price"
	case InvalidCreationBytes:
		return "invalid creation bytes"
	case InvalidTagsLength:
		return "invalid tags length"
	case InvalidTypeLength:
		return "invalid type length"
	case FeeLessThanRequired:
		return "fee less than required"
	case InvalidSignature:
		return "invalid signature"
	case TimestampAfterDeadline:
		return "timestamp after deadline"
	default:
		return "unknown validation code"
	}
}
