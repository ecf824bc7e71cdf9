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
	"github.com/consensys/go-zkvm/pkg/air"
	"github.com/consensys/go-zkvm/pkg/air/gadgets"
	"github.com/consensys/go-zkvm/pkg/chips"
	"github.com/consensys/go-zkvm/pkg/chips/access"
	"github.com/consensys/go-zkvm/pkg/rvm"
	"github.com/consensys/go-zkvm/pkg/util/field"
)

// Chip is the opcode-specific dispatch table.
type Chip[F field.Element[F]] struct{}

// NewChip constructs the dispatch table.
func NewChip[F field.Element[F]]() Chip[F] {
	return Chip[F]{}
}

// Name implements chips.Chip.
func (p Chip[F]) Name() string {
	return "dispatch"
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
	for _, ev := range record.CpuEvents {
		if Dispatched(ev.Instruction.Opcode) {
			return true
		}
	}
	//
	return false
}

// Dispatched determines whether an opcode's row is taken over by this table.
func Dispatched(op rvm.Opcode) bool {
	return op.IsMemory() || op.IsBranch() || op.IsJump() ||
		op == rvm.AUIPC || op == rvm.ECALL
}

func (p Chip[F]) builder() *air.Builder[F] {
	builder := air.NewBuilder[F]("dispatch")
	eval(builder)
	//
	return builder
}

// eval emits every constraint and interaction of the dispatch table.
func eval[F field.Element[F]](builder *air.Builder[F]) {
	var (
		clk     = air.Local[F](ColClk)
		shard   = air.Local[F](ColShard)
		channel = air.Local[F](ColChannel)
		pc      = air.Local[F](ColPc)
		nextPc  = air.Local[F](ColNextPc)
		aPrev   = air.LocalWord[F](ColOpAPrev)
		aVal    = air.LocalWord[F](ColOpA)
		bVal    = air.LocalWord[F](ColOpB)
		cVal    = air.LocalWord[F](ColOpC)
		opA0    = air.Local[F](ColOpA0)
		isHalt  = air.Local[F](ColIsHalt)
		isReal  = air.Local[F](ColIsReal)
		pcPlus4 = air.Local[F](ColPc).Add(air.NewConst64[F](rvm.PcStep))
	)
	//
	sels := make([]air.Expr[F], chips.NumSelectors)
	//
	for i := range sels {
		sels[i] = air.Local[F](ColSel + uint(i))
	}
	//
	var (
		isEcall  = sels[chips.SelIsEcall]
		isJal    = sels[chips.SelIsJal]
		isJalr   = sels[chips.SelIsJalr]
		isAuipc  = sels[chips.SelIsAuipc]
		isMem    = air.Sum(sels[chips.SelIsLb : chips.SelIsSw+1]...)
		isBranch = air.Sum(sels[chips.SelIsBeq : chips.SelIsBgeu+1]...)
	)
	// ==================================================================
	// Tuple receive and row discipline
	// ==================================================================
	builder.Receive(air.KindInstruction, air.ScopeLocal,
		chips.DispatchTuple(clk, shard, channel, pc, nextPc, sels,
			aPrev, aVal, bVal, cVal, opA0, isHalt), isReal)
	//
	builder.AssertBool("is_real", isReal)
	builder.AssertBool("is_halt", isHalt)
	builder.AssertBool("op_a_0", opA0)
	//
	for _, s := range sels {
		builder.AssertBool("sel_bool", s)
	}
	// ALU and unimplemented rows never dispatch.
	builder.AssertZero("no_alu", sels[chips.SelIsAlu])
	builder.AssertZero("no_unimpl", sels[chips.SelIsUnimpl])
	builder.AssertEq("class_one_hot",
		isMem.Add(isBranch).Add(isJal).Add(isJalr).Add(isAuipc).Add(isEcall), isReal)
	// Halting is an ECALL property; everything else falls through or jumps.
	builder.WhenNot(isEcall).AssertZero("halt_only_ecall", isHalt)
	//
	evalMemory(builder, sels, clk, shard, channel, nextPc, pcPlus4, aVal, bVal, cVal)
	evalControlFlow(builder, sels, shard, channel, pc, nextPc, pcPlus4, aVal, bVal, cVal, opA0)
	evalEcall(builder, sels, nextPc, pcPlus4, aPrev, aVal, bVal, cVal, isHalt)
}

// evalMemory constrains load/store rows: effective-address computation and
// alignment, the memory-bus access, and byte/half/word extraction or
// injection with the per-width sign-extension policy.
func evalMemory[F field.Element[F]](builder *air.Builder[F], sels []air.Expr[F],
	clk air.Expr[F], shard air.Expr[F], channel air.Expr[F], nextPc air.Expr[F],
	pcPlus4 air.Expr[F], aVal air.Word[F], bVal air.Word[F], cVal air.Word[F]) {
	//
	var (
		isLb    = sels[chips.SelIsLb]
		isLbu   = sels[chips.SelIsLbu]
		isLh    = sels[chips.SelIsLh]
		isLhu   = sels[chips.SelIsLhu]
		isLw    = sels[chips.SelIsLw]
		isSb    = sels[chips.SelIsSb]
		isSh    = sels[chips.SelIsSh]
		isSw    = sels[chips.SelIsSw]
		isMem   = air.Sum(sels[chips.SelIsLb : chips.SelIsSw+1]...)
		isLoad  = air.Sum(sels[chips.SelIsLb : chips.SelIsLw+1]...)
		signed  = isLb.Add(isLh)
		aligned = air.Local[F](ColAddrAligned)
		bit0    = air.Local[F](ColOffsetBit0)
		bit1    = air.Local[F](ColOffsetBit1)
		whMem   = builder.When(isMem)
		blk     = access.NewBlock(ColMemAccess)
	)
	// Effective address is op_b + op_c, computed on the ALU bus.
	addrWord := air.LocalWord[F](ColAddrWord)
	builder.Send(air.KindAlu, air.ScopeLocal,
		chips.AluTuple(air.NewConst64[F](uint64(rvm.ADD)), addrWord, bVal, cVal,
			shard, channel, air.Local[F](ColMemAddrNonce)), isMem)
	// Alignment: the bus carries the word-aligned address, the offset picks
	// the byte within it.
	whMem.AssertBool("offset_bit", bit0)
	whMem.AssertBool("offset_bit", bit1)
	offset := bit0.Add(bit1.Mul(air.NewConst64[F](2)))
	whMem.AssertEq("addr_aligned", aligned, addrWord.Reduce().Sub(offset))
	builder.When(isLw.Add(isSw)).AssertZero("align_word", bit0.Add(bit1))
	builder.When(isLh.Add(isLhu).Add(isSh)).AssertZero("align_half", bit0)
	// The access itself, at the cycle's memory timestamp.
	access.Eval(builder, "mem", air.KindMemory, blk, shard,
		clk.Add(air.NewConst64[F](uint64(rvm.PositionMemory))), aligned, isMem)
	//
	memVal := access.ValueWord[F](blk)
	memPrev := access.PrevValueWord[F](blk)
	// Loads leave memory untouched.
	builder.When(isLoad).AssertWordEq("load_read_only", memVal, memPrev)
	// Offset selectors (one-hot by construction from the two bits).
	offSel := [4]air.Expr[F]{
		air.Not(bit0).Mul(air.Not(bit1)),
		bit0.Mul(air.Not(bit1)),
		air.Not(bit0).Mul(bit1),
		bit0.Mul(bit1),
	}
	//
	selByte := air.Zero[F]()
	//
	for i, s := range offSel {
		selByte = selByte.Add(s.Mul(memVal[i]))
	}
	//
	halfLow := air.Not(bit1).Mul(memVal[0]).Add(bit1.Mul(memVal[2]))
	halfHigh := air.Not(bit1).Mul(memVal[1]).Add(bit1.Mul(memVal[3]))
	// Sign extension: decompose the most significant loaded byte and
	// replicate its top bit.
	var msbBits [8]air.Expr[F]
	//
	msbRecomposed := air.Zero[F]()
	//
	for i := range msbBits {
		msbBits[i] = air.Local[F](ColMsbBits + uint(i))
		builder.When(signed).AssertBool("msb_bit", msbBits[i])
		msbRecomposed = msbRecomposed.Add(msbBits[i].Mul(air.NewConst64[F](1 << i)))
	}
	//
	builder.When(isLb).AssertEq("lb_msb", msbRecomposed, selByte)
	builder.When(isLh).AssertEq("lh_msb", msbRecomposed, halfHigh)
	//
	isNeg := air.Local[F](ColMemIsNeg)
	builder.AssertEq("mem_is_neg", isNeg, msbBits[7].Mul(signed))
	ext := isNeg.Mul(air.NewConst64[F](0xff))
	// Load extraction per width.
	whLb := builder.When(isLb)
	whLb.AssertEq("lb_value", aVal[0], selByte)
	whLb.AssertEq("lb_value", aVal[1], ext)
	whLb.AssertEq("lb_value", aVal[2], ext)
	whLb.AssertEq("lb_value", aVal[3], ext)
	//
	whLbu := builder.When(isLbu)
	whLbu.AssertEq("lbu_value", aVal[0], selByte)
	whLbu.AssertZero("lbu_value", aVal[1].Add(aVal[2]).Add(aVal[3]))
	//
	whLh := builder.When(isLh)
	whLh.AssertEq("lh_value", aVal[0], halfLow)
	whLh.AssertEq("lh_value", aVal[1], halfHigh)
	whLh.AssertEq("lh_value", aVal[2], ext)
	whLh.AssertEq("lh_value", aVal[3], ext)
	//
	whLhu := builder.When(isLhu)
	whLhu.AssertEq("lhu_value", aVal[0], halfLow)
	whLhu.AssertEq("lhu_value", aVal[1], halfHigh)
	whLhu.AssertZero("lhu_value", aVal[2].Add(aVal[3]))
	//
	builder.When(isLw).AssertWordEq("lw_value", aVal, memVal)
	// Store injection per width: the addressed bytes take op_a's low bytes,
	// the rest carry over.
	whSb := builder.When(isSb)
	//
	for i, s := range offSel {
		whSb.AssertEq("sb_value", memVal[i],
			s.Mul(aVal[0]).Add(air.Not(s).Mul(memPrev[i])))
	}
	//
	whSh := builder.When(isSh)
	whSh.AssertEq("sh_value", memVal[0],
		air.Not(bit1).Mul(aVal[0]).Add(bit1.Mul(memPrev[0])))
	whSh.AssertEq("sh_value", memVal[1],
		air.Not(bit1).Mul(aVal[1]).Add(bit1.Mul(memPrev[1])))
	whSh.AssertEq("sh_value", memVal[2],
		bit1.Mul(aVal[0]).Add(air.Not(bit1).Mul(memPrev[2])))
	whSh.AssertEq("sh_value", memVal[3],
		bit1.Mul(aVal[1]).Add(air.Not(bit1).Mul(memPrev[3])))
	//
	builder.When(isSw).AssertWordEq("sw_value", memVal, aVal)
	// Memory rows fall through sequentially.
	whMem.AssertEq("mem_next_pc", nextPc, pcPlus4)
}

// evalControlFlow constrains branch, jump and AUIPC rows: comparison flags
// backed by ALU sends, target computation, link values and next_pc.
func evalControlFlow[F field.Element[F]](builder *air.Builder[F], sels []air.Expr[F],
	shard air.Expr[F], channel air.Expr[F], pc air.Expr[F], nextPc air.Expr[F],
	pcPlus4 air.Expr[F], aVal air.Word[F], bVal air.Word[F], cVal air.Word[F],
	opA0 air.Expr[F]) {
	//
	var (
		isJal       = sels[chips.SelIsJal]
		isJalr      = sels[chips.SelIsJalr]
		isAuipc     = sels[chips.SelIsAuipc]
		isBranch    = air.Sum(sels[chips.SelIsBeq : chips.SelIsBgeu+1]...)
		eq          = air.Local[F](ColAEqB)
		lt          = air.Local[F](ColALtB)
		gt          = air.Local[F](ColAGtB)
		pcWord      = air.LocalWord[F](ColPcWord)
		targetWord  = air.LocalWord[F](ColTargetWord)
		targetNonce = air.Local[F](ColTargetNonce)
		whBranch    = builder.When(isBranch)
	)
	// pc and target ride the ALU bus as words; range checks make their
	// reduced forms canonical.
	var pcBits, targetBits, linkBits [8]air.Expr[F]
	//
	for i := range pcBits {
		pcBits[i] = air.Local[F](ColPcBits + uint(i))
		targetBits[i] = air.Local[F](ColTargetBits + uint(i))
		linkBits[i] = air.Local[F](ColLinkBits + uint(i))
	}
	//
	pcGate := isBranch.Add(isJal).Add(isAuipc)
	targetGate := isBranch.Add(isJal).Add(isJalr)
	gadgets.WordRangeCheck(builder, "pc_word_range", pcWord, pcBits, pcGate)
	gadgets.WordRangeCheck(builder, "target_word_range", targetWord, targetBits, targetGate)
	builder.When(pcGate).AssertEq("pc_word", pcWord.Reduce(), pc)
	// Branch: trichotomy flags, proven against the less-than tables in both
	// directions, signedness per opcode.
	whBranch.AssertBool("branch_flag", eq)
	whBranch.AssertBool("branch_flag", lt)
	whBranch.AssertBool("branch_flag", gt)
	whBranch.AssertOne("trichotomy", eq.Add(lt).Add(gt))
	whBranch.When(eq).AssertWordEq("a_eq_b", aVal, bVal)
	//
	signed := sels[chips.SelIsBlt].Add(sels[chips.SelIsBge])
	sltOp := signed.Mul(air.NewConst64[F](uint64(rvm.SLT))).
		Add(air.Not(signed).Mul(air.NewConst64[F](uint64(rvm.SLTU))))
	builder.Send(air.KindAlu, air.ScopeLocal,
		chips.AluTuple(sltOp, air.ZeroExtend(lt), aVal, bVal,
			shard, channel, air.Local[F](ColLtNonce)), isBranch)
	builder.Send(air.KindAlu, air.ScopeLocal,
		chips.AluTuple(sltOp, air.ZeroExtend(gt), bVal, aVal,
			shard, channel, air.Local[F](ColGtNonce)), isBranch)
	// Branch target pc + op_c, computed whether or not the branch is taken.
	builder.Send(air.KindAlu, air.ScopeLocal,
		chips.AluTuple(air.NewConst64[F](uint64(rvm.ADD)), targetWord, pcWord, cVal,
			shard, channel, targetNonce), isBranch)
	//
	taken := sels[chips.SelIsBeq].Mul(eq).
		Add(sels[chips.SelIsBne].Mul(lt.Add(gt))).
		Add(sels[chips.SelIsBlt].Mul(lt)).
		Add(sels[chips.SelIsBge].Mul(eq.Add(gt))).
		Add(sels[chips.SelIsBltu].Mul(lt)).
		Add(sels[chips.SelIsBgeu].Mul(eq.Add(gt)))
	whBranch.When(taken).AssertEq("branch_taken", nextPc, targetWord.Reduce())
	whBranch.WhenNot(taken).AssertEq("branch_not_taken", nextPc, pcPlus4)
	// Jumps: JAL is pc-relative, JALR register-relative; both link pc+4
	// into op_a unless it names x0.
	builder.Send(air.KindAlu, air.ScopeLocal,
		chips.AluTuple(air.NewConst64[F](uint64(rvm.ADD)), targetWord, pcWord, bVal,
			shard, channel, targetNonce), isJal)
	builder.Send(air.KindAlu, air.ScopeLocal,
		chips.AluTuple(air.NewConst64[F](uint64(rvm.ADD)), targetWord, bVal, cVal,
			shard, channel, targetNonce), isJalr)
	//
	whJump := builder.When(isJal.Add(isJalr))
	whJump.AssertEq("jump_target", nextPc, targetWord.Reduce())
	// The link word is range-checked, so equality of the reduced forms pins
	// the limbs written back to op_a.
	gadgets.WordRangeCheck(builder, "link_word_range", aVal, linkBits, isJal.Add(isJalr))
	whJump.WhenNot(opA0).AssertEq("jump_link", aVal.Reduce(), pcPlus4)
	// AUIPC: op_a = pc + op_b on the ALU bus, and sequential fall-through.
	builder.Send(air.KindAlu, air.ScopeLocal,
		chips.AluTuple(air.NewConst64[F](uint64(rvm.ADD)), aVal, pcWord, bVal,
			shard, channel, targetNonce), isAuipc)
	builder.When(isAuipc).AssertEq("auipc_next_pc", nextPc, pcPlus4)
}

// evalEcall constrains syscall rows: the syscall id is dispatched from op_a's
// previous value, recognizing HALT (terminates, binds the exit path) and the
// two COMMIT variants (bind the public digests); everything else is opaque
// and falls through.
func evalEcall[F field.Element[F]](builder *air.Builder[F], sels []air.Expr[F],
	nextPc air.Expr[F], pcPlus4 air.Expr[F], aPrev air.Word[F], aVal air.Word[F],
	bVal air.Word[F], cVal air.Word[F], isHalt air.Expr[F]) {
	//
	var (
		isEcall = sels[chips.SelIsEcall]
		haltRes = air.Local[F](ColHaltRes)
		commRes = air.Local[F](ColCommitRes)
		defRes  = air.Local[F](ColDeferredRes)
		syscall = aPrev[0]
		whEcall = builder.When(isEcall)
	)
	// A syscall reads its code from op_a and leaves the register untouched.
	whEcall.AssertWordEq("ecall_op_a", aVal, aPrev)
	//
	gadgets.IsZero(builder, "halt_check",
		syscall.Sub(air.NewConst64[F](uint64(rvm.SyscallHalt))),
		air.Local[F](ColHaltInv), haltRes, isEcall)
	gadgets.IsZero(builder, "commit_check",
		syscall.Sub(air.NewConst64[F](uint64(rvm.SyscallCommit))),
		air.Local[F](ColCommitInv), commRes, isEcall)
	gadgets.IsZero(builder, "deferred_check",
		syscall.Sub(air.NewConst64[F](uint64(rvm.SyscallCommitDeferred))),
		air.Local[F](ColDeferredInv), defRes, isEcall)
	// The halt flag carried back to the CPU is exactly the HALT test.
	whEcall.AssertEq("halt_flag", isHalt, haltRes)
	whEcall.When(haltRes).AssertZero("halt_next_pc", nextPc)
	whEcall.WhenNot(haltRes).AssertEq("ecall_next_pc", nextPc, pcPlus4)
	// COMMIT and COMMIT_DEFERRED_PROOFS bind one digest word each, selected
	// by a one-hot index bitmap over op_b.
	var bitmap [rvm.DigestWords]air.Expr[F]
	//
	bitmapSum := air.Zero[F]()
	indexSum := air.Zero[F]()
	//
	for i := range bitmap {
		bitmap[i] = air.Local[F](ColIndexBitmap + uint(i))
		whEcall.AssertBool("index_bit", bitmap[i])
		bitmapSum = bitmapSum.Add(bitmap[i])
		indexSum = indexSum.Add(bitmap[i].Mul(air.NewConst64[F](uint64(i))))
	}
	//
	whDigest := whEcall.When(commRes.Add(defRes))
	whDigest.AssertOne("digest_index_hot", bitmapSum)
	whDigest.AssertEq("digest_index", indexSum, bVal.Reduce())
	//
	for i := range bitmap {
		whCommit := whEcall.When(commRes).When(bitmap[i])
		//
		for j := range air.WordSize {
			whCommit.AssertEq("commit_digest", cVal[j],
				air.NewPublicAccess[F](rvm.PvCommittedDigest+uint(i*4+j)))
		}
		//
		whEcall.When(defRes).When(bitmap[i]).AssertEq("deferred_digest",
			cVal.Reduce(), air.NewPublicAccess[F](rvm.PvDeferredDigest+uint(i)))
	}
}
