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

// Package transactions defines the transaction kinds of the chain and their
// symmetric Process/Orphan application against the ledger state store.
//
// A Transaction is a tagged union: the Type field selects which of the
// kind-specific field groups is meaningful, and every operation dispatches
// on it. Process applied then Orphan (or the reverse, from a consistent
// state) leaves every touched map byte-identical to before.
package transactions

import (
	"fmt"

	"github.com/qoranode/go-qora/config"
	"github.com/qoranode/go-qora/crypto"
	"github.com/qoranode/go-qora/data/basics"
	"github.com/qoranode/go-qora/logging"
	"github.com/qoranode/go-qora/protocol"
)

// Payment moves an amount of one asset to one recipient. Several
// transaction kinds carry one or more of them.
type Payment struct {
	Recipient basics.Address
	Asset     basics.AssetID
	Amount    basics.Amount
}

// paymentEncodedLength is the fixed wire width of a Payment.
const paymentEncodedLength = basics.AddressLength + 8 + 8

func (p Payment) encode(enc *protocol.Encoder) {
	enc.Fixed(p.Recipient[:])
	enc.Uint64(uint64(p.Asset))
	enc.Int64(p.Amount.Raw)
}

func decodePayment(dec *protocol.Decoder) (Payment, error) {
	var p Payment
	recipient, err := dec.Fixed(basics.AddressLength)
	if err != nil {
		return p, err
	}
	copy(p.Recipient[:], recipient)
	asset, err := dec.Uint64()
	if err != nil {
		return p, err
	}
	p.Asset = basics.AssetID(asset)
	raw, err := dec.Int64()
	if err != nil {
		return p, err
	}
	p.Amount = basics.AmountFromRaw(raw)
	return p, nil
}

// Env carries the collaborators Process and Orphan may call out to. The
// zero value is usable: a nil Services skips service dispatch and a nil Log
// falls back to the base logger.
type Env struct {
	// Services handles the payload of arbitrary-service transactions.
	Services ServiceProcessor
	Log      logging.Logger
}

func (env Env) logger() logging.Logger {
	if env.Log != nil {
		return env.Log
	}
	return logging.Base()
}

// Transaction is one transaction of any kind. Type selects the meaningful
// field group; fields outside that group stay at their zero values and
// contribute nothing to the encoding.
type Transaction struct {
	Type      protocol.TxType
	Timestamp int64
	Reference crypto.Signature
	CreatorPK crypto.PublicKey
	Fee       basics.Amount
	Signature crypto.Signature

	// Payment, multi-payment, asset transfer, message, arbitrary, genesis.
	Payments []Payment

	// Name kinds. Seller is recorded on a buy so the transaction's balance
	// deltas stay derivable after the name changes hands.
	Name      string
	NameValue string
	NewOwner  basics.Address
	Seller    basics.Address
	Price     basics.Amount

	// Poll kinds.
	PollDescription string
	PollOptions     []string
	PollOption      int32

	// Arbitrary service and message payloads.
	Service     int32
	Data        []byte
	IsText      bool
	IsEncrypted bool

	// Asset issuance.
	AssetName        string
	AssetDescription string
	AssetQuantity    basics.Amount
	AssetDivisible   bool

	// Exchange orders.
	HaveAsset   basics.AssetID
	WantAsset   basics.AssetID
	OrderAmount basics.Amount
	OrderPrice  basics.Amount
	OrderID     crypto.Signature

	// AT deployment.
	ATName        string
	ATDescription string
	ATType        string
	ATTags        string
	CreationBytes []byte
	ATAmount      basics.Amount
}

// CreatorAddress is the address derived from the creator's public key.
func (tx *Transaction) CreatorAddress() basics.Address {
	return basics.AddressFromPublicKey(tx.CreatorPK)
}

// Deadline is the timestamp after which the transaction can no longer be
// included in a block.
func (tx *Transaction) Deadline(proto config.ConsensusParams) int64 {
	return tx.Timestamp + proto.DeadlineMillis
}

// ID returns the transaction's self-identifying signature.
func (tx *Transaction) ID() crypto.Signature {
	return tx.Signature
}

func (tx *Transaction) encode(withSignature bool) []byte {
	enc := protocol.NewEncoder(256)
	enc.Int32(int32(tx.Type))
	enc.Int64(tx.Timestamp)
	enc.Fixed(tx.Reference[:])
	enc.Fixed(tx.CreatorPK[:])
	tx.encodeKindFields(enc)
	enc.Int64(tx.Fee.Raw)
	if withSignature {
		enc.Fixed(tx.Signature[:])
	}
	return enc.Bytes()
}

// SignedBytes is the canonical encoding the signature is computed over:
// everything up to but excluding the signature itself.
func (tx *Transaction) SignedBytes() []byte {
	return tx.encode(false)
}

// Bytes is the full wire encoding, signature included. Parse is its exact
// inverse.
func (tx *Transaction) Bytes() []byte {
	return tx.encode(true)
}

// Sign computes and attaches the signature. The creator public key must
// already be set and match the secrets.
func (tx *Transaction) Sign(secrets *crypto.SignatureSecrets) {
	tx.Signature = secrets.Sign(tx.SignedBytes())
}

// IsSignatureValid is a pure function of the signature, the creator public
// key and the canonical bytes. Genesis transactions carry a derived
// signature instead of an ed25519 one.
func (tx *Transaction) IsSignatureValid() bool {
	if tx.Type == protocol.GenesisTx {
		return tx.Signature == tx.genesisSignature()
	}
	return tx.CreatorPK.Verify(tx.SignedBytes(), tx.Signature)
}

// Parse decodes the full wire encoding of a transaction. Trailing bytes,
// truncation and unknown type tags are format errors.
func Parse(b []byte) (*Transaction, error) {
	dec := protocol.NewDecoder(b)
	tx := &Transaction{}

	typeTag, err := dec.Int32()
	if err != nil {
		return nil, fmt.Errorf("transactions: parsing type: %w", err)
	}
	tx.Type = protocol.TxType(typeTag)
	if tx.Type < protocol.GenesisTx || tx.Type > protocol.MessageTx {
		return nil, fmt.Errorf("transactions: unknown transaction type %d", typeTag)
	}
	if tx.Timestamp, err = dec.Int64(); err != nil {
		return nil, fmt.Errorf("transactions: parsing timestamp: %w", err)
	}
	ref, err := dec.Fixed(crypto.SignatureSize)
	if err != nil {
		return nil, fmt.Errorf("transactions: parsing reference: %w", err)
	}
	copy(tx.Reference[:], ref)
	pk, err := dec.Fixed(crypto.PublicKeySize)
	if err != nil {
		return nil, fmt.Errorf("transactions: parsing creator key: %w", err)
	}
	copy(tx.CreatorPK[:], pk)

	if err := tx.decodeKindFields(dec); err != nil {
		return nil, fmt.Errorf("transactions: parsing %v fields: %w", tx.Type, err)
	}

	feeRaw, err := dec.Int64()
	if err != nil {
		return nil, fmt.Errorf("transactions: parsing fee: %w", err)
	}
	tx.Fee = basics.AmountFromRaw(feeRaw)
	sig, err := dec.Fixed(crypto.SignatureSize)
	if err != nil {
		return nil, fmt.Errorf("transactions: parsing signature: %w", err)
	}
	copy(tx.Signature[:], sig)

	if !dec.Finished() {
		return nil, fmt.Errorf("transactions: %w: %d trailing bytes", protocol.ErrTruncated, dec.Remaining())
	}
	return tx, nil
}

func (tx *Transaction) encodeKindFields(enc *protocol.Encoder) {
	switch tx.Type {
	case protocol.GenesisTx:
		tx.encodeGenesisFields(enc)
	case protocol.PaymentTx, protocol.TransferAssetTx:
		tx.Payments[0].encode(enc)
	case protocol.MultiPaymentTx:
		enc.Int32(int32(len(tx.Payments)))
		for _, p := range tx.Payments {
			p.encode(enc)
		}
	case protocol.MessageTx:
		tx.encodeMessageFields(enc)
	case protocol.ArbitraryTx:
		tx.encodeArbitraryFields(enc)
	case protocol.RegisterNameTx, protocol.UpdateNameTx, protocol.SellNameTx,
		protocol.CancelSellNameTx, protocol.BuyNameTx:
		tx.encodeNameFields(enc)
	case protocol.CreatePollTx, protocol.VoteOnPollTx:
		tx.encodePollFields(enc)
	case protocol.IssueAssetTx:
		tx.encodeIssueAssetFields(enc)
	case protocol.CreateOrderTx, protocol.CancelOrderTx:
		tx.encodeOrderFields(enc)
	case protocol.DeployATTx:
		tx.encodeDeployATFields(enc)
	}
}

func (tx *Transaction) decodeKindFields(dec *protocol.Decoder) error {
	switch tx.Type {
	case protocol.GenesisTx:
		return tx.decodeGenesisFields(dec)
	case protocol.PaymentTx, protocol.TransferAssetTx:
		p, err := decodePayment(dec)
		if err != nil {
			return err
		}
		tx.Payments = []Payment{p}
		return nil
	case protocol.MultiPaymentTx:
		count, err := dec.Int32()
		if err != nil {
			return err
		}
		if count < 0 || int(count) > dec.Remaining()/paymentEncodedLength {
			return fmt.Errorf("%w: payment count %d", protocol.ErrTruncated, count)
		}
		if count > 0 {
			tx.Payments = make([]Payment, count)
		}
		for i := range tx.Payments {
			if tx.Payments[i], err = decodePayment(dec); err != nil {
				return err
			}
		}
		return nil
	case protocol.MessageTx:
		return tx.decodeMessageFields(dec)
	case protocol.ArbitraryTx:
		return tx.decodeArbitraryFields(dec)
	case protocol.RegisterNameTx, protocol.UpdateNameTx, protocol.SellNameTx,
		protocol.CancelSellNameTx, protocol.BuyNameTx:
		return tx.decodeNameFields(dec)
	case protocol.CreatePollTx, protocol.VoteOnPollTx:
		return tx.decodePollFields(dec)
	case protocol.IssueAssetTx:
		return tx.decodeIssueAssetFields(dec)
	case protocol.CreateOrderTx, protocol.CancelOrderTx:
		return tx.decodeOrderFields(dec)
	case protocol.DeployATTx:
		return tx.decodeDeployATFields(dec)
	}
	return fmt.Errorf("transactions: unknown transaction type %d", tx.Type)
}

// IsValid checks the transaction against the current store state without
// mutating it. The returned error reports store faults only; consensus
// verdicts come back as the ValidationCode.
func (tx *Transaction) IsValid(b Balances, proto config.ConsensusParams, now int64) (ValidationCode, error) {
	if tx.Type == protocol.GenesisTx {
		return tx.isValidGenesis(b)
	}
	if code, err := tx.isValidCommon(b, proto, now); code != ValidateOK || err != nil {
		return code, err
	}
	return tx.isValidKind(b, proto)
}

func (tx *Transaction) isValidCommon(b Balances, proto config.ConsensusParams, now int64) (ValidationCode, error) {
	if tx.Fee.IsNegative() {
		return NegativeFee, nil
	}
	if tx.Fee.Raw < proto.MinimumFeeRaw {
		return FeeLessThanRequired, nil
	}
	if now > tx.Deadline(proto) {
		return TimestampAfterDeadline, nil
	}

	creator := tx.CreatorAddress()
	ref, ok, err := b.Reference(creator)
	if err != nil {
		return ValidateOK, err
	}
	if !ok {
		ref = crypto.Signature{}
	}
	if tx.Reference != ref {
		return InvalidReference, nil
	}

	// The creator must cover the fee plus every outgoing payment, per
	// asset. Kind-specific outflows (escrow, purchase price, AT funding)
	// are checked by the kind validators.
	outgoing := map[basics.AssetID]basics.Amount{basics.NativeAsset: tx.Fee}
	for _, p := range tx.Payments {
		outgoing[p.Asset] = outgoing[p.Asset].Add(p.Amount)
	}
	for asset, total := range outgoing {
		bal, err := b.Balance(creator, asset)
		if err != nil {
			return ValidateOK, err
		}
		if bal.LessThan(total) {
			return NoBalance, nil
		}
	}
	return ValidateOK, nil
}

// validatePayments applies the shared per-payment checks. Message
// transactions may carry a zero amount; every other kind requires a
// positive one.
func (tx *Transaction) validatePayments(b Balances, allowZero bool) (ValidationCode, error) {
	for _, p := range tx.Payments {
		if !p.Recipient.Valid() {
			return InvalidAddress, nil
		}
		if p.Amount.IsNegative() || (!allowZero && p.Amount.IsZero()) {
			return NegativeAmount, nil
		}
		if p.Asset != basics.NativeAsset {
			_, ok, err := b.Asset(p.Asset)
			if err != nil {
				return ValidateOK, err
			}
			if !ok {
				return AssetDoesNotExist, nil
			}
		}
	}
	return ValidateOK, nil
}

func (tx *Transaction) isValidKind(b Balances, proto config.ConsensusParams) (ValidationCode, error) {
	switch tx.Type {
	case protocol.PaymentTx, protocol.TransferAssetTx:
		return tx.validatePayments(b, false)
	case protocol.MultiPaymentTx:
		if len(tx.Payments) == 0 || len(tx.Payments) > proto.MaxPayments {
			return InvalidPaymentsLength, nil
		}
		return tx.validatePayments(b, false)
	case protocol.MessageTx:
		return tx.isValidMessage(b, proto)
	case protocol.ArbitraryTx:
		return tx.isValidArbitrary(b, proto)
	case protocol.RegisterNameTx:
		return tx.isValidRegisterName(b, proto)
	case protocol.UpdateNameTx:
		return tx.isValidUpdateName(b, proto)
	case protocol.SellNameTx:
		return tx.isValidSellName(b)
	case protocol.CancelSellNameTx:
		return tx.isValidCancelSellName(b)
	case protocol.BuyNameTx:
		return tx.isValidBuyName(b)
	case protocol.CreatePollTx:
		return tx.isValidCreatePoll(b, proto)
	case protocol.VoteOnPollTx:
		return tx.isValidVote(b)
	case protocol.IssueAssetTx:
		return tx.isValidIssueAsset(b, proto)
	case protocol.CreateOrderTx:
		return tx.isValidCreateOrder(b)
	case protocol.CancelOrderTx:
		return tx.isValidCancelOrder(b)
	case protocol.DeployATTx:
		return tx.isValidDeployAT(b, proto)
	}
	return ValidateOK, fmt.Errorf("transactions: unknown transaction type %d", tx.Type)
}

// Process applies the transaction's effects. The caller has already
// established validity; Process does not re-check.
func (tx *Transaction) Process(b Balances, env Env) error {
	if tx.Type == protocol.GenesisTx {
		return tx.processGenesis(b)
	}
	if err := tx.processFeeAndReference(b); err != nil {
		return err
	}
	if err := tx.processPayments(b); err != nil {
		return err
	}
	return tx.processKind(b, env)
}

// Orphan reverses Process exactly, sub-step by sub-step in reverse order.
func (tx *Transaction) Orphan(b Balances, env Env) error {
	if tx.Type == protocol.GenesisTx {
		return tx.orphanGenesis(b)
	}
	if err := tx.orphanKind(b, env); err != nil {
		return err
	}
	if err := tx.orphanPayments(b); err != nil {
		return err
	}
	return tx.orphanFeeAndReference(b)
}

func (tx *Transaction) processKind(b Balances, env Env) error {
	switch tx.Type {
	case protocol.PaymentTx, protocol.MultiPaymentTx, protocol.TransferAssetTx, protocol.MessageTx:
		return nil
	case protocol.ArbitraryTx:
		return tx.processArbitrary(b, env)
	case protocol.RegisterNameTx:
		return tx.processRegisterName(b)
	case protocol.UpdateNameTx:
		return tx.processUpdateName(b)
	case protocol.SellNameTx:
		return tx.processSellName(b)
	case protocol.CancelSellNameTx:
		return tx.processCancelSellName(b)
	case protocol.BuyNameTx:
		return tx.processBuyName(b)
	case protocol.CreatePollTx:
		return tx.processCreatePoll(b)
	case protocol.VoteOnPollTx:
		return tx.processVote(b)
	case protocol.IssueAssetTx:
		return tx.processIssueAsset(b)
	case protocol.CreateOrderTx:
		return tx.processCreateOrder(b)
	case protocol.CancelOrderTx:
		return tx.processCancelOrder(b)
	case protocol.DeployATTx:
		return tx.processDeployAT(b)
	}
	return fmt.Errorf("transactions: unknown transaction type %d", tx.Type)
}

func (tx *Transaction) orphanKind(b Balances, env Env) error {
	switch tx.Type {
	case protocol.PaymentTx, protocol.MultiPaymentTx, protocol.TransferAssetTx, protocol.MessageTx:
		return nil
	case protocol.ArbitraryTx:
		return tx.orphanArbitrary(b, env)
	case protocol.RegisterNameTx:
		return tx.orphanRegisterName(b)
	case protocol.UpdateNameTx:
		return tx.orphanUpdateName(b)
	case protocol.SellNameTx:
		return tx.orphanSellName(b)
	case protocol.CancelSellNameTx:
		return tx.orphanCancelSellName(b)
	case protocol.BuyNameTx:
		return tx.orphanBuyName(b)
	case protocol.CreatePollTx:
		return tx.orphanCreatePoll(b)
	case protocol.VoteOnPollTx:
		return tx.orphanVote(b)
	case protocol.IssueAssetTx:
		return tx.orphanIssueAsset(b)
	case protocol.CreateOrderTx:
		return tx.orphanCreateOrder(b)
	case protocol.CancelOrderTx:
		return tx.orphanCancelOrder(b)
	case protocol.DeployATTx:
		return tx.orphanDeployAT(b)
	}
	return fmt.Errorf("transactions: unknown transaction type %d", tx.Type)
}

func addToBalance(b Balances, addr basics.Address, asset basics.AssetID, amt basics.Amount) error {
	cur, err := b.Balance(addr, asset)
	if err != nil {
		return err
	}
	return b.SetBalance(addr, asset, cur.Add(amt))
}

func subFromBalance(b Balances, addr basics.Address, asset basics.AssetID, amt basics.Amount) error {
	cur, err := b.Balance(addr, asset)
	if err != nil {
		return err
	}
	return b.SetBalance(addr, asset, cur.Sub(amt))
}

func (tx *Transaction) processFeeAndReference(b Balances) error {
	creator := tx.CreatorAddress()
	if err := subFromBalance(b, creator, basics.NativeAsset, tx.Fee); err != nil {
		return err
	}
	return b.SetReference(creator, tx.Signature)
}

func (tx *Transaction) orphanFeeAndReference(b Balances) error {
	creator := tx.CreatorAddress()
	if err := addToBalance(b, creator, basics.NativeAsset, tx.Fee); err != nil {
		return err
	}
	if tx.Reference.IsZero() {
		return b.ClearReference(creator)
	}
	return b.SetReference(creator, tx.Reference)
}

func (tx *Transaction) processPayments(b Balances) error {
	creator := tx.CreatorAddress()
	for _, p := range tx.Payments {
		if err := subFromBalance(b, creator, p.Asset, p.Amount); err != nil {
			return err
		}
		if err := addToBalance(b, p.Recipient, p.Asset, p.Amount); err != nil {
			return err
		}
		// A recipient with no history yet inherits this signature as its
		// first reference.
		_, ok, err := b.Reference(p.Recipient)
		if err != nil {
			return err
		}
		if !ok {
			if err := b.SetReference(p.Recipient, tx.Signature); err != nil {
				return err
			}
		}
	}
	return nil
}

func (tx *Transaction) orphanPayments(b Balances) error {
	creator := tx.CreatorAddress()
	for i := len(tx.Payments) - 1; i >= 0; i-- {
		p := tx.Payments[i]
		if err := addToBalance(b, creator, p.Asset, p.Amount); err != nil {
			return err
		}
		if err := subFromBalance(b, p.Recipient, p.Asset, p.Amount); err != nil {
			return err
		}
		ref, ok, err := b.Reference(p.Recipient)
		if err != nil {
			return err
		}
		if ok && ref == tx.Signature {
			if err := b.ClearReference(p.Recipient); err != nil {
				return err
			}
		}
	}
	return nil
}

// AssetDeltas maps address to per-asset signed balance change.
type AssetDeltas map[basics.Address]map[basics.AssetID]basics.Amount

func (d AssetDeltas) add(addr basics.Address, asset basics.AssetID, amt basics.Amount) {
	if amt.IsZero() {
		return
	}
	inner, ok := d[addr]
	if !ok {
		inner = make(map[basics.AssetID]basics.Amount)
		d[addr] = inner
	}
	inner[asset] = inner[asset].Add(amt)
}

// AssetAmounts returns the signed balance deltas the transaction causes,
// per involved address and asset, fee included.
func (tx *Transaction) AssetAmounts() AssetDeltas {
	d := make(AssetDeltas)
	creator := tx.CreatorAddress()

	if tx.Type != protocol.GenesisTx {
		d.add(creator, basics.NativeAsset, tx.Fee.Neg())
	}
	for _, p := range tx.Payments {
		if tx.Type != protocol.GenesisTx {
			d.add(creator, p.Asset, p.Amount.Neg())
		}
		d.add(p.Recipient, p.Asset, p.Amount)
	}

	switch tx.Type {
	case protocol.BuyNameTx:
		d.add(creator, basics.NativeAsset, tx.Price.Neg())
		d.add(tx.Seller, basics.NativeAsset, tx.Price)
	case protocol.CreateOrderTx:
		d.add(creator, tx.HaveAsset, tx.OrderAmount.Neg())
	case protocol.DeployATTx:
		d.add(creator, basics.NativeAsset, tx.ATAmount.Neg())
		d.add(basics.ATAddressFromSignature(tx.Signature), basics.NativeAsset, tx.ATAmount)
	}
	return d
}

// Amount returns the signed native-coin delta the transaction causes for
// one address. This is what the balance walks subtract.
func (tx *Transaction) Amount(addr basics.Address) basics.Amount {
	return tx.AssetAmounts()[addr][basics.NativeAsset]
}

// Involved reports whether the transaction changes any balance of addr or
// was created by it.
func (tx *Transaction) Involved(addr basics.Address) bool {
	if tx.Type != protocol.GenesisTx && tx.CreatorAddress() == addr {
		return true
	}
	_, ok := tx.AssetAmounts()[addr]
	return ok
}

// Recipients lists the addresses credited by the transaction.
func (tx *Transaction) Recipients() []basics.Address {
	var out []basics.Address
	for _, p := range tx.Payments {
		out = append(out, p.Recipient)
	}
	switch tx.Type {
	case protocol.BuyNameTx:
		out = append(out, tx.Seller)
	case protocol.DeployATTx:
		out = append(out, basics.ATAddressFromSignature(tx.Signature))
	}
	return out
}
