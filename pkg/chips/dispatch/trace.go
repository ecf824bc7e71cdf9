// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package dispatch

import (
	"github.com/consensys/go-zkvm/pkg/air/gadgets"
	"github.com/consensys/go-zkvm/pkg/chips"
	"github.com/consensys/go-zkvm/pkg/chips/access"
	"github.com/consensys/go-zkvm/pkg/rvm"
	"github.com/consensys/go-zkvm/pkg/trace"
	"github.com/consensys/go-zkvm/pkg/util/field"
)

// GenerateTrace implements chips.Chip.
func (p Chip[F]) GenerateTrace(record *rvm.ExecutionRecord) *trace.Module[F] {
	rows := uint(0)
	//
	for _, ev := range record.CpuEvents {
		if Dispatched(ev.Instruction.Opcode) {
			rows++
		}
	}
	//
	var (
		height = trace.PaddedHeight(rows)
		mod    = trace.NewModule[F](p.Name(), height, Columns())
		row    = 0
	)
	//
	for cpuRow, ev := range record.CpuEvents {
		instr := ev.Instruction
		//
		if !Dispatched(instr.Opcode) {
			continue
		}
		// Tuple section, mirroring the CPU row.
		mod.SetUint64(ColClk, row, uint64(ev.Clk))
		mod.SetUint64(ColShard, row, uint64(ev.Shard))
		mod.SetUint64(ColChannel, row, uint64(uint(cpuRow)%chips.NumChannels))
		mod.SetUint64(ColPc, row, uint64(ev.Pc))
		mod.SetUint64(ColNextPc, row, uint64(ev.NextPc))
		//
		for i, v := range chips.SelectorsOf(instr) {
			mod.SetUint64(ColSel+uint(i), row, uint64(v))
		}
		//
		access.SetWord(mod, ColOpAPrev, row, ev.APrev)
		access.SetWord(mod, ColOpA, row, ev.A)
		access.SetWord(mod, ColOpB, row, ev.B)
		access.SetWord(mod, ColOpC, row, ev.C)
		//
		if instr.OpA0 {
			mod.SetUint64(ColOpA0, row, 1)
		}
		//
		if ev.IsHalt {
			mod.SetUint64(ColIsHalt, row, 1)
		}
		//
		mod.SetUint64(ColIsReal, row, 1)
		// Class sections.
		switch op := instr.Opcode; {
		case op.IsMemory():
			p.fillMemory(mod, row, record, ev)
		case op.IsBranch():
			p.fillBranch(mod, row, record, ev)
		case op == rvm.JAL:
			fillRangedWord(mod, record, ColPcWord, ColPcBits, row, ev.Pc)
			fillRangedWord(mod, record, ColTargetWord, ColTargetBits, row, ev.NextPc)
			fillRangedWord(mod, record, ColOpA, ColLinkBits, row, ev.A)
			mod.SetUint64(ColTargetNonce, row, uint64(ev.JumpTargetNonce))
		case op == rvm.JALR:
			fillRangedWord(mod, record, ColTargetWord, ColTargetBits, row, ev.NextPc)
			fillRangedWord(mod, record, ColOpA, ColLinkBits, row, ev.A)
			mod.SetUint64(ColTargetNonce, row, uint64(ev.JumpTargetNonce))
		case op == rvm.AUIPC:
			fillRangedWord(mod, record, ColPcWord, ColPcBits, row, ev.Pc)
			mod.SetUint64(ColTargetNonce, row, uint64(ev.AuipcNonce))
		case op == rvm.ECALL:
			p.fillEcall(mod, row, ev)
		}
		//
		row++
	}
	//
	return mod
}

func (p Chip[F]) fillMemory(mod *trace.Module[F], row int, record *rvm.ExecutionRecord,
	ev rvm.CpuEvent) {
	//
	blk := access.NewBlock(ColMemAccess)
	offset := ev.MemAddrWord & 3
	//
	access.SetWord(mod, ColAddrWord, row, ev.MemAddrWord)
	mod.SetUint64(ColAddrAligned, row, uint64(ev.MemAddr))
	mod.SetUint64(ColOffsetBit0, row, uint64(offset&1))
	mod.SetUint64(ColOffsetBit1, row, uint64(offset>>1))
	mod.SetUint64(ColMemAddrNonce, row, uint64(ev.MemAddrNonce))
	//
	access.Fill(mod, row, blk, record, ev.Shard,
		ev.Clk+uint32(rvm.PositionMemory), ev.MemRecordPrev, ev.MemValue)
	// Sign-extension witnesses for the signed loads.
	var msb uint32
	//
	switch ev.Instruction.Opcode {
	case rvm.LB:
		msb = (ev.MemValue >> (8 * offset)) & 0xff
	case rvm.LH:
		msb = (ev.MemValue >> (8 * offset) >> 8) & 0xff
	default:
		return
	}
	//
	for i := range uint(8) {
		mod.SetUint64(ColMsbBits+i, row, uint64((msb>>i)&1))
	}
	//
	mod.SetUint64(ColMemIsNeg, row, uint64(msb>>7))
}

func (p Chip[F]) fillBranch(mod *trace.Module[F], row int, record *rvm.ExecutionRecord,
	ev rvm.CpuEvent) {
	//
	var (
		op     = ev.Instruction.Opcode
		signed = op == rvm.BLT || op == rvm.BGE
		lt, gt bool
	)
	//
	if signed {
		lt, gt = int32(ev.A) < int32(ev.B), int32(ev.A) > int32(ev.B)
	} else {
		lt, gt = ev.A < ev.B, ev.A > ev.B
	}
	//
	if ev.A == ev.B {
		mod.SetUint64(ColAEqB, row, 1)
	}
	//
	if lt {
		mod.SetUint64(ColALtB, row, 1)
	}
	//
	if gt {
		mod.SetUint64(ColAGtB, row, 1)
	}
	//
	fillRangedWord(mod, record, ColPcWord, ColPcBits, row, ev.Pc)
	fillRangedWord(mod, record, ColTargetWord, ColTargetBits, row, ev.Pc+ev.C)
	mod.SetUint64(ColLtNonce, row, uint64(ev.BranchLtNonce))
	mod.SetUint64(ColGtNonce, row, uint64(ev.BranchGtNonce))
	mod.SetUint64(ColTargetNonce, row, uint64(ev.BranchTargetNonce))
}

func (p Chip[F]) fillEcall(mod *trace.Module[F], row int, ev rvm.CpuEvent) {
	id := rvm.SyscallID(ev.APrev)
	//
	setIsZero[F](mod, ColHaltInv, ColHaltRes, row, id, rvm.SyscallHalt)
	setIsZero[F](mod, ColCommitInv, ColCommitRes, row, id, rvm.SyscallCommit)
	setIsZero[F](mod, ColDeferredInv, ColDeferredRes, row, id, rvm.SyscallCommitDeferred)
	//
	if id == rvm.SyscallCommit || id == rvm.SyscallCommitDeferred {
		mod.SetUint64(ColIndexBitmap+uint(ev.B), row, 1)
	}
}

// setIsZero lays out the witness pair of one IsZero gadget testing id
// against a syscall code.
func setIsZero[F field.Element[F]](mod *trace.Module[F], invCol uint, resCol uint,
	row int, id uint32, code uint32) {
	//
	x := field.Uint32[F](id).Sub(field.Uint32[F](code))
	inv, res := gadgets.IsZeroWitness(x)
	mod.Set(invCol, row, inv)
	mod.Set(resCol, row, res)
}

// fillRangedWord lays out a word-range-checked copy of a value: its byte
// limbs, the top limb's bit decomposition, and the byte lookups backing the
// check.
func fillRangedWord[F field.Element[F]](mod *trace.Module[F], record *rvm.ExecutionRecord,
	wordCol uint, bitsCol uint, row int, value uint32) {
	//
	access.SetWord(mod, wordCol, row, value)
	//
	top := (value >> 24) & 0xff
	//
	for i := range uint(8) {
		mod.SetUint64(bitsCol+i, row, uint64((top>>i)&1))
	}
	//
	record.LookupU8(value&0xff, (value>>8)&0xff)
	record.LookupU8((value>>16)&0xff, top)
}
