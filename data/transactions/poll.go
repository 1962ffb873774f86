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
	"fmt"
	"strings"

	"github.com/qoranode/go-qora/config"
	"github.com/qoranode/go-qora/data/basics"
	"github.com/qoranode/go-qora/protocol"
)

// Poll creation and voting. A vote replaces the voter's previous choice, if
// any; the whole poll record is history-backed, so orphaning a vote
// restores the previous voter sets wholesale.

func (tx *Transaction) encodePollFields(enc *protocol.Encoder) {
	enc.String32(tx.Name)
	switch tx.Type {
	case protocol.CreatePollTx:
		enc.String32(tx.PollDescription)
		enc.Int32(int32(len(tx.PollOptions)))
		for _, opt := range tx.PollOptions {
			enc.String32(opt)
		}
	case protocol.VoteOnPollTx:
		enc.Int32(tx.PollOption)
	}
}

func (tx *Transaction) decodePollFields(dec *protocol.Decoder) error {
	var err error
	if tx.Name, err = dec.String32(); err != nil {
		return err
	}
	switch tx.Type {
	case protocol.CreatePollTx:
		if tx.PollDescription, err = dec.String32(); err != nil {
			return err
		}
		count, err := dec.Int32()
		if err != nil {
			return err
		}
		if count < 0 || int(count) > dec.Remaining()/4 {
			return fmt.Errorf("%w: option count %d", protocol.ErrTruncated, count)
		}
		tx.PollOptions = make([]string, count)
		for i := range tx.PollOptions {
			if tx.PollOptions[i], err = dec.String32(); err != nil {
				return err
			}
		}
		return nil
	case protocol.VoteOnPollTx:
		tx.PollOption, err = dec.Int32()
		return err
	}
	return nil
}

func (tx *Transaction) isValidCreatePoll(b Balances, proto config.ConsensusParams) (ValidationCode, error) {
	if len(tx.Name) == 0 || len(tx.Name) > proto.MaxNameLength {
		return InvalidNameLength, nil
	}
	if tx.Name != strings.ToLower(tx.Name) {
		return NameNotLowerCase, nil
	}
	if len(tx.PollDescription) > proto.MaxDescriptionLength {
		return InvalidDescription, nil
	}
	if len(tx.PollOptions) == 0 || len(tx.PollOptions) > proto.MaxPollOptions {
		return InvalidOptionsLength, nil
	}
	seen := make(map[string]bool, len(tx.PollOptions))
	for _, opt := range tx.PollOptions {
		if len(opt) == 0 || len(opt) > proto.MaxNameLength {
			return InvalidOptionLength, nil
		}
		if seen[opt] {
			return DuplicateOption, nil
		}
		seen[opt] = true
	}
	_, exists, err := b.Poll(tx.Name)
	if err != nil {
		return ValidateOK, err
	}
	if exists {
		return PollAlreadyCreated, nil
	}
	return ValidateOK, nil
}

func (tx *Transaction) isValidVote(b Balances) (ValidationCode, error) {
	poll, exists, err := b.Poll(tx.Name)
	if err != nil {
		return ValidateOK, err
	}
	if !exists {
		return PollDoesNotExist, nil
	}
	if tx.PollOption < 0 || int(tx.PollOption) >= len(poll.Options) {
		return OptionDoesNotExist, nil
	}
	if poll.OptionIndex(tx.CreatorAddress()) == int(tx.PollOption) {
		return AlreadyVotedForOption, nil
	}
	return ValidateOK, nil
}

func (tx *Transaction) processCreatePoll(b Balances) error {
	poll := basics.Poll{
		Creator:     tx.CreatorAddress(),
		Description: tx.PollDescription,
		Options:     make([]basics.PollOption, len(tx.PollOptions)),
	}
	for i, opt := range tx.PollOptions {
		poll.Options[i] = basics.PollOption{Name: opt}
	}
	return b.PutPoll(tx.Name, poll, tx.Signature)
}

func (tx *Transaction) orphanCreatePoll(b Balances) error {
	return b.RestorePoll(tx.Name, tx.Signature)
}

func (tx *Transaction) processVote(b Balances) error {
	poll, _, err := b.Poll(tx.Name)
	if err != nil {
		return err
	}
	voter := tx.CreatorAddress()
	if prev := poll.OptionIndex(voter); prev >= 0 {
		voters := poll.Options[prev].Voters
		for i, v := range voters {
			if v == voter {
				poll.Options[prev].Voters = append(voters[:i:i], voters[i+1:]...)
				break
			}
		}
	}
	opt := &poll.Options[tx.PollOption]
	opt.Voters = append(opt.Voters, voter)
	return b.PutPoll(tx.Name, poll, tx.Signature)
}

func (tx *Transaction) orphanVote(b Balances) error {
	return b.RestorePoll(tx.Name, tx.Signature)
}
