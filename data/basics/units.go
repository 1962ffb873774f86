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

// Package basics holds the primitive ledger value types: fixed-point
// amounts, asset keys, and account addresses.
package basics

import (
	"fmt"
	"strings"
)

// AmountDecimals is the number of fractional digits carried by every
// amount on the ledger.
const AmountDecimals = 8

// amountUnit is 10^AmountDecimals.
const amountUnit = 100000000

// Amount is a fixed-point decimal with 8 fractional digits, stored as a
// signed raw integer. Balances are never negative; signed deltas produced
// by GetAmount/GetAssetAmounts may be.
type Amount struct {
	Raw int64
}

// AmountFromRaw wraps a raw 10^-8 unit count.
func AmountFromRaw(raw int64) Amount {
	return Amount{Raw: raw}
}

// AmountFromString parses a plain decimal like "1000.00000000" or "0.001".
func AmountFromString(s string) (Amount, error) {
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	whole, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		whole, frac = s[:i], s[i+1:]
	}
	if whole == "" {
		whole = "0"
	}
	if len(frac) > AmountDecimals {
		return Amount{}, fmt.Errorf("amount %q has more than %d fractional digits", s, AmountDecimals)
	}
	frac += strings.Repeat("0", AmountDecimals-len(frac))

	var raw int64
	for _, c := range whole + frac {
		if c < '0' || c > '9' {
			return Amount{}, fmt.Errorf("amount %q is not a decimal number", s)
		}
		raw = raw*10 + int64(c-'0')
	}
	if neg {
		raw = -raw
	}
	return Amount{Raw: raw}, nil
}

// MustAmount is AmountFromString for constants known to be well formed.
func MustAmount(s string) Amount {
	a, err := AmountFromString(s)
	if err != nil {
		panic(err)
	}
	return a
}

// String renders the amount with all 8 fractional digits, matching the
// canonical plain-string rendering of the original chain.
func (a Amount) String() string {
	raw := a.Raw
	sign := ""
	if raw < 0 {
		sign = "-"
		raw = -raw
	}
	return fmt.Sprintf("%s%d.%08d", sign, raw/amountUnit, raw%amountUnit)
}

// Add returns a + b.
func (a Amount) Add(b Amount) Amount {
	return Amount{Raw: a.Raw + b.Raw}
}

// Sub returns a - b.
func (a Amount) Sub(b Amount) Amount {
	return Amount{Raw: a.Raw - b.Raw}
}

// Neg returns -a.
func (a Amount) Neg() Amount {
	return Amount{Raw: -a.Raw}
}

// IsZero returns true when the amount is exactly zero.
func (a Amount) IsZero() bool {
	return a.Raw == 0
}

// IsNegative returns true when the amount is below zero.
func (a Amount) IsNegative() bool {
	return a.Raw < 0
}

// IsPositive returns true when the amount is above zero.
func (a Amount) IsPositive() bool {
	return a.Raw > 0
}

// LessThan returns a < b.
func (a Amount) LessThan(b Amount) bool {
	return a.Raw < b.Raw
}

// AssetID is a 64-bit asset key. NativeAsset (0) is the chain's own coin.
type AssetID uint64

// NativeAsset is the distinguished key of the native coin.
const NativeAsset AssetID = 0

// Height is a 1-based block height. The genesis block is at height 1.
type Height int32
