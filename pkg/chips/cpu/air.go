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
package cpu

import (
	"github.com/consensys/go-zkvm/pkg/air"
	"github.com/consensys/go-zkvm/pkg/air/gadgets"
	"github.com/consensys/go-zkvm/pkg/chips"
	"github.com/consensys/go-zkvm/pkg/chips/access"
	"github.com/consensys/go-zkvm/pkg/rvm"
	"github.com/consensys/go-zkvm/pkg/util/field"
)

// Chip is the CPU table.
type Chip[F field.Element[F]] struct{}

// NewChip constructs the CPU table.
func NewChip[F field.Element[F]]() Chip[F] {
	return Chip[F]{}
}

// Name implements chips.Chip.
func (p Chip[F]) Name() string {
	return "cpu"
}

// Columns implements chips.Chip.
func (p Chip[F]) Columns() []string {
	return Columns()
}

// Constraints implements chips.Chip.
func (p Chip[F]) Constraints() []air.Constraint[F] {
	return p.builder().Constraints()
}

// Interactions implements chips.Chip.
func (p Chip[F]) Interactions() []air.Interaction[F] {
	return p.builder().Interactions()
}

// Included implements chips.Chip.
func (p Chip[F]) Included(record *rvm.ExecutionRecord) bool {
	return len(record.CpuEvents) > 0
}

func (p Chip[F]) builder() *air.Builder[F] {
	builder := air.NewBuilder[F]("cpu")
	eval(builder)
	//
	return builder
}

// eval emits every constraint and interaction of the CPU table.
func eval[F field.Element[F]](builder *air.Builder[F]) {
	var (
		pc      = air.Local[F](ColPc)
		nextPc  = air.Local[F](ColNextPc)
		shard   = air.Local[F](ColShard)
		clk     = air.Local[F](ColClk)
		channel = air.Local[F](ColChannel)
		nonce   = air.Local[F](ColNonce)
		opcode  = air.Local[F](ColOpcode)
		opA     = air.Local[F](ColOpA)
		opA0    = air.Local[F](ColOpA0)
		opB     = air.LocalWord[F](ColOpB)
		opC     = air.LocalWord[F](ColOpC)
		isHalt  = air.Local[F](ColIsHalt)
		isReal  = air.Local[F](ColIsReal)
		whReal  = builder.When(isReal)
		//
		blkA = access.NewBlock(ColAAccess)
		blkB = access.NewBlock(ColBAccess)
		blkC = access.NewBlock(ColCAccess)
		aVal = access.ValueWord[F](blkA)
		bVal = access.ValueWord[F](blkB)
		cVal = access.ValueWord[F](blkC)
	)
	//
	sels := make([]air.Expr[F], chips.NumSelectors)
	//
	for i := range sels {
		sels[i] = air.Local[F](ColSel + uint(i))
	}
	//
	var (
		immB     = sels[chips.SelImmB]
		immC     = sels[chips.SelImmC]
		isAlu    = sels[chips.SelIsAlu]
		isEcall  = sels[chips.SelIsEcall]
		isUnimpl = sels[chips.SelIsUnimpl]
		isMem    = air.Sum(sels[chips.SelIsLb : chips.SelIsSw+1]...)
		isStore  = air.Sum(sels[chips.SelIsSb : chips.SelIsSw+1]...)
		isBranch = air.Sum(sels[chips.SelIsBeq : chips.SelIsBgeu+1]...)
		isJump   = sels[chips.SelIsJalr].Add(sels[chips.SelIsJal])
	)
	// ==================================================================
	// Selector block
	// ==================================================================
	builder.AssertBool("is_real", isReal)
	builder.AssertBool("is_halt", isHalt)
	builder.AssertBool("op_a_0", opA0)
	//
	for i, s := range sels {
		builder.AssertBool("sel_bool", s)
		// Padding rows keep the immediate flags high and every class
		// selector low, so they cannot forge a bus send.
		if uint(i) == chips.SelImmB || uint(i) == chips.SelImmC {
			builder.WhenNot(isReal).AssertOne("padding_imm", s)
		} else {
			builder.WhenNot(isReal).AssertZero("padding_sel", s)
		}
	}
	// Exactly one class selector on real rows.
	builder.AssertEq("sel_one_hot", air.Sum(sels[chips.SelIsAlu:]...), isReal)
	// Halting is an ECALL property.
	builder.AssertZero("halt_is_ecall", isHalt.Mul(air.Not(isEcall)))
	// ==================================================================
	// Boundary and chaining
	// ==================================================================
	builder.WhenFirstRow().AssertOne("first_real", isReal)
	builder.WhenFirstRow().AssertZero("first_clk", clk)
	builder.WhenFirstRow().AssertZero("first_channel", channel)
	builder.WhenFirstRow().AssertEq("start_pc", pc, air.NewPublicAccess[F](rvm.PvStartPc))
	// Once padding starts it never stops.
	builder.WhenTransition().AssertZero("real_monotone",
		air.Next[F](ColIsReal).Mul(air.Not(isReal)))
	// Sequential control flow: the next real row picks up where we left.
	builder.WhenTransition().When(air.Next[F](ColIsReal)).
		AssertEq("pc_chain", air.Next[F](ColPc), nextPc)
	// Halt (and the unimplemented catch-all) terminate the trace.
	builder.WhenTransition().When(isHalt.Add(isUnimpl)).
		AssertZero("halt_terminates", air.Next[F](ColIsReal))
	// ALU rows fall through sequentially; every other class either
	// dispatches (which computes next_pc) or terminates the trace.
	whReal.When(isAlu).AssertEq("alu_next_pc", nextPc, pc.Add(air.NewConst64[F](rvm.PcStep)))
	// ==================================================================
	// Shard and clock discipline
	// ==================================================================
	gadgets.RangeCheckU24(builder, "clk_range", clk,
		air.Local[F](ColClk16), air.Local[F](ColClk8), isReal)
	gadgets.SendByte(builder, rvm.ByteU16Range, shard, air.Zero[F](), isReal)
	//
	nextReal := builder.WhenTransition().When(air.Next[F](ColIsReal))
	nextReal.AssertEq("shard_constant", air.Next[F](ColShard), shard)
	// clk advances by 4, plus the extra cycles a syscall declares in byte 2
	// of the code word read from op_a.
	extra := isEcall.Mul(access.PrevValueWord[F](blkA)[2])
	nextReal.AssertEq("clk_step", air.Next[F](ColClk),
		clk.Add(air.NewConst64[F](4)).Add(extra))
	// ==================================================================
	// Channel round-robin
	// ==================================================================
	chanSels := make([]air.Expr[F], chips.NumChannels)
	chanExpr := air.Zero[F]()
	succExpr := air.Zero[F]()
	//
	for i := range chanSels {
		chanSels[i] = air.Local[F](ColChanSel + uint(i))
		builder.AssertBool("chan_sel_bool", chanSels[i])
		chanExpr = chanExpr.Add(chanSels[i].Mul(air.NewConst64[F](uint64(i))))
		succExpr = succExpr.Add(chanSels[i].Mul(air.NewConst64[F](uint64((i + 1) % chips.NumChannels))))
	}
	//
	builder.AssertEq("chan_sel_one_hot", air.Sum(chanSels...), isReal)
	builder.AssertEq("channel", channel, chanExpr)
	nextReal.AssertEq("channel_step", air.Next[F](ColChannel), succExpr)
	// ==================================================================
	// Program fetch
	// ==================================================================
	builder.Send(air.KindProgram, air.ScopeLocal,
		chips.ProgramTuple(pc, opcode, opA, opA0, opB, opC, sels, shard), isReal)
	// ==================================================================
	// Register accesses
	// ==================================================================
	doCheckB := air.Not(immB).Mul(isReal)
	doCheckC := air.Not(immC).Mul(isReal)
	// op_c is read at clk+1, op_b at clk+2, op_a is accessed at clk+3.
	access.Eval(builder, "reg_c", air.KindRegister, blkC, shard,
		clk.Add(air.NewConst64[F](uint64(rvm.PositionC))), opC[0], doCheckC)
	access.Eval(builder, "reg_b", air.KindRegister, blkB, shard,
		clk.Add(air.NewConst64[F](uint64(rvm.PositionB))), opB[0], doCheckB)
	access.Eval(builder, "reg_a", air.KindRegister, blkA, shard,
		clk.Add(air.NewConst64[F](uint64(rvm.PositionA))), opA, isReal)
	// Register operands: the descriptor is a bare register index, and the
	// read leaves the register untouched.
	regB := whReal.WhenNot(immB)
	regB.AssertZero("reg_b_index", opB[1].Add(opB[2]).Add(opB[3]))
	regB.AssertWordEq("reg_b_read_only", bVal, access.PrevValueWord[F](blkB))
	//
	regC := whReal.WhenNot(immC)
	regC.AssertZero("reg_c_index", opC[1].Add(opC[2]).Add(opC[3]))
	regC.AssertWordEq("reg_c_read_only", cVal, access.PrevValueWord[F](blkC))
	// Immediate operands short-circuit the register file: the operand value
	// is the instruction descriptor itself.
	whReal.When(immB).AssertWordEq("imm_b_value", bVal, opB)
	whReal.When(immC).AssertWordEq("imm_c_value", cVal, opC)
	// Branches and stores read op_a rather than writing it.
	whReal.When(isBranch.Add(isStore)).
		AssertWordEq("op_a_read_only", aVal, access.PrevValueWord[F](blkA))
	// ==================================================================
	// Bus sends
	// ==================================================================
	builder.Send(air.KindAlu, air.ScopeLocal,
		chips.AluTuple(opcode, aVal, bVal, cVal, shard, channel, nonce), isAlu)
	//
	dispatchGate := isMem.Add(isBranch).Add(isJump).
		Add(sels[chips.SelIsAuipc]).Add(isEcall)
	builder.Send(air.KindInstruction, air.ScopeLocal,
		chips.DispatchTuple(clk, shard, channel, pc, nextPc, sels,
			access.PrevValueWord[F](blkA), aVal, bVal, cVal, opA0, isHalt),
		dispatchGate)
	// ==================================================================
	// Public values
	// ==================================================================
	whReal.AssertEq("public_shard", shard, air.NewPublicAccess[F](rvm.PvExecutionShard))
	// On halt, the declared exit code is op_b's value.
	builder.When(isHalt).AssertEq("exit_code",
		bVal.Reduce(), air.NewPublicAccess[F](rvm.PvExitCode))
	// The public next_pc is the last real row's next_pc, whether padding
	// follows or the table ends flush.
	builder.WhenTransition().When(isReal).WhenNot(air.Next[F](ColIsReal)).
		AssertEq("public_next_pc", nextPc, air.NewPublicAccess[F](rvm.PvNextPc))
	builder.WhenLastRow().When(isReal).
		AssertEq("public_next_pc_flush", nextPc, air.NewPublicAccess[F](rvm.PvNextPc))
}
