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

package at

import (
	"encoding/binary"
	"fmt"

	"github.com/qoranode/go-qora/data/basics"
	"github.com/qoranode/go-qora/protocol"
)

// The machine is a small register machine. Its entire mutable state is the
// state blob: pc(int32) sleepUntil(int32) stopped(byte) four int64
// registers, then the data segment. The blob layout is little-endian like
// the rest of the container.
const (
	numRegisters    = 4
	stateHeaderSize = 4 + 4 + 1 + numRegisters*8
)

// MaxStepsPerRun bounds one execution. Exhausting the budget halts the run
// (not the machine); execution resumes at the same pc next eligible height.
const MaxStepsPerRun = 1000

// Opcodes. One byte each, operands little-endian.
const (
	opFin byte = 0x00 // halt permanently
	opSet byte = 0x01 // SET reg, imm64
	opAdd byte = 0x02 // ADD dst, src
	opSub byte = 0x03 // SUB dst, src
	opLd  byte = 0x10 // LD reg, dataOffset(int32): load int64 from data
	opSt  byte = 0x11 // ST reg, dataOffset(int32): store int64 to data
	opJmp byte = 0x20 // JMP codeOffset(int32)
	opBzr byte = 0x21 // BZR reg, codeOffset(int32): branch if reg == 0
	opSlp byte = 0x30 // SLP blocks(int32)
	opSnd byte = 0x31 // SND reg, dataOffset(int32): send reg coins to address at offset
	opMsg byte = 0x32 // MSG dataOffset(int32), len(int32): attach message bytes
	opStp byte = 0x40 // STP: stop this run, resume next eligible height
)

// machineState is the decoded state blob.
type machineState struct {
	pc         int32
	sleepUntil int32
	stopped    bool
	regs       [numRegisters]int64
	data       []byte
}

func initialState(data []byte) []byte {
	st := machineState{data: data}
	return st.encode()
}

func (m *machineState) encode() []byte {
	buf := make([]byte, stateHeaderSize+len(m.data))
	binary.LittleEndian.PutUint32(buf[0:], uint32(m.pc))
	binary.LittleEndian.PutUint32(buf[4:], uint32(m.sleepUntil))
	if m.stopped {
		buf[8] = 1
	}
	for i, r := range m.regs {
		binary.LittleEndian.PutUint64(buf[9+i*8:], uint64(r))
	}
	copy(buf[stateHeaderSize:], m.data)
	return buf
}

func decodeState(b []byte) (machineState, error) {
	if len(b) < stateHeaderSize {
		return machineState{}, fmt.Errorf("at: %w: state blob %d bytes, need at least %d", protocol.ErrTruncated, len(b), stateHeaderSize)
	}
	var m machineState
	m.pc = int32(binary.LittleEndian.Uint32(b[0:]))
	m.sleepUntil = int32(binary.LittleEndian.Uint32(b[4:]))
	m.stopped = b[8] == 1
	for i := range m.regs {
		m.regs[i] = int64(binary.LittleEndian.Uint64(b[9+i*8:]))
	}
	m.data = make([]byte, len(b)-stateHeaderSize)
	copy(m.data, b[stateHeaderSize:])
	return m, nil
}

// Transfer is the outward effect of one run: coins moved from the AT's
// account plus optional opaque message bytes.
type Transfer struct {
	Recipient basics.Address
	Amount    basics.Amount
	Message   []byte
}

// Eligible reports whether the AT should run at height given its gating
// parameters and the balance of its account.
func (a *AT) Eligible(height basics.Height, balance basics.Amount) bool {
	if height <= a.CreationHeight {
		return false
	}
	if balance.LessThan(a.MinActivation) {
		return false
	}
	st, err := decodeState(a.State)
	if err != nil || st.stopped {
		return false
	}
	if st.sleepUntil != 0 && int32(height) < st.sleepUntil {
		return false
	}
	return true
}

// Run interprets the code against the current state blob at the given
// height and replaces a.State with the successor state. It returns the
// transfer the run authorized, or nil. The machine is fully deterministic:
// identical state, code and block context produce identical results on
// every node. balance caps any transfer; the machine cannot overdraw its
// account.
func (a *AT) Run(height basics.Height, balance basics.Amount) (*Transfer, error) {
	st, err := decodeState(a.State)
	if err != nil {
		return nil, err
	}
	if st.stopped {
		return nil, nil
	}

	var transfer *Transfer
	code := a.Code

	fetch32 := func() (int32, bool) {
		if int(st.pc)+4 > len(code) {
			return 0, false
		}
		v := int32(binary.LittleEndian.Uint32(code[st.pc:]))
		st.pc += 4
		return v, true
	}
	fetch64 := func() (int64, bool) {
		if int(st.pc)+8 > len(code) {
			return 0, false
		}
		v := int64(binary.LittleEndian.Uint64(code[st.pc:]))
		st.pc += 8
		return v, true
	}
	fetchReg := func() (int, bool) {
		if int(st.pc) >= len(code) {
			return 0, false
		}
		r := int(code[st.pc])
		st.pc++
		if r >= numRegisters {
			return 0, false
		}
		return r, true
	}

	running := true
	for steps := 0; running && steps < MaxStepsPerRun; steps++ {
		if int(st.pc) < 0 || int(st.pc) >= len(code) {
			// Fell off the code segment: machine is done for good.
			st.stopped = true
			break
		}
		op := code[st.pc]
		st.pc++

		ok := true
		switch op {
		case opFin:
			st.stopped = true
			running = false

		case opSet:
			var r int
			var imm int64
			if r, ok = fetchReg(); !ok {
				break
			}
			if imm, ok = fetch64(); !ok {
				break
			}
			st.regs[r] = imm

		case opAdd, opSub:
			var dst, src int
			if dst, ok = fetchReg(); !ok {
				break
			}
			if src, ok = fetchReg(); !ok {
				break
			}
			if op == opAdd {
				st.regs[dst] += st.regs[src]
			} else {
				st.regs[dst] -= st.regs[src]
			}

		case opLd, opSt:
			var r int
			var off int32
			if r, ok = fetchReg(); !ok {
				break
			}
			if off, ok = fetch32(); !ok {
				break
			}
			if off < 0 || int(off)+8 > len(st.data) {
				ok = false
				break
			}
			if op == opLd {
				st.regs[r] = int64(binary.LittleEndian.Uint64(st.data[off:]))
			} else {
				binary.LittleEndian.PutUint64(st.data[off:], uint64(st.regs[r]))
			}

		case opJmp:
			var off int32
			if off, ok = fetch32(); !ok {
				break
			}
			if off < 0 || int(off) >= len(code) {
				ok = false
				break
			}
			st.pc = off

		case opBzr:
			var r int
			var off int32
			if r, ok = fetchReg(); !ok {
				break
			}
			if off, ok = fetch32(); !ok {
				break
			}
			if st.regs[r] == 0 {
				if off < 0 || int(off) >= len(code) {
					ok = false
					break
				}
				st.pc = off
			}

		case opSlp:
			var blocks int32
			if blocks, ok = fetch32(); !ok {
				break
			}
			if blocks < 0 {
				blocks = 0
			}
			st.sleepUntil = int32(height) + 1 + blocks
			running = false

		case opSnd:
			var r int
			var off int32
			if r, ok = fetchReg(); !ok {
				break
			}
			if off, ok = fetch32(); !ok {
				break
			}
			if off < 0 || int(off)+basics.AddressLength > len(st.data) {
				ok = false
				break
			}
			// Only the first send of a run takes effect.
			if transfer == nil && st.regs[r] > 0 {
				amount := basics.AmountFromRaw(st.regs[r])
				if balance.LessThan(amount) {
					amount = balance
				}
				var recipient basics.Address
				copy(recipient[:], st.data[off:off+basics.AddressLength])
				transfer = &Transfer{Recipient: recipient, Amount: amount}
			}

		case opMsg:
			var off, n int32
			if off, ok = fetch32(); !ok {
				break
			}
			if n, ok = fetch32(); !ok {
				break
			}
			if off < 0 || n < 0 || int(off)+int(n) > len(st.data) {
				ok = false
				break
			}
			if transfer != nil && transfer.Message == nil {
				msg := make([]byte, n)
				copy(msg, st.data[off:int(off)+int(n)])
				transfer.Message = msg
			}

		case opStp:
			running = false

		default:
			ok = false
		}

		if !ok {
			// Malformed instruction stream. The machine halts permanently;
			// halting is deterministic so consensus is unaffected.
			st.stopped = true
			running = false
		}
	}

	if st.sleepUntil != 0 && st.sleepUntil <= int32(height) {
		st.sleepUntil = 0
	}
	if a.SleepBetween > 0 && !st.stopped && st.sleepUntil == 0 {
		st.sleepUntil = int32(height) + a.SleepBetween
	}

	a.State = st.encode()
	return transfer, nil
}
