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
package alu

import (
	"github.com/consensys/go-zkvm/pkg/air"
	"github.com/consensys/go-zkvm/pkg/air/gadgets"
	"github.com/consensys/go-zkvm/pkg/chips"
	"github.com/consensys/go-zkvm/pkg/rvm"
	"github.com/consensys/go-zkvm/pkg/trace"
	"github.com/consensys/go-zkvm/pkg/util/field"
)

// Column layout of the less-than table.  The unsigned comparison is the
// borrow of b - c, proven through the adder identity c + diff = b; the
// signed comparison corrects it with the operands' sign bits.
const (
	// ColIsSlt selects signed rows.
	ColIsSlt uint = iota
	// ColIsSltu selects unsigned rows.
	ColIsSltu
	// ColLtShard of the received tuple.
	ColLtShard
	// ColLtChannel of the received tuple.
	ColLtChannel
	// ColLtNonce of the received tuple.
	ColLtNonce
	// ColLtB is the first comparison operand.
	ColLtB
	// ColLtC is the second comparison operand.
	ColLtC = ColLtB + 4
	// ColDiff is b - c modulo 2^32.
	ColDiff = ColLtC + 4
	// ColLtCarry holds the adder's carry chain; the final carry is the
	// unsigned borrow.
	ColLtCarry = ColDiff + 4
	// ColSignB is b's sign bit.
	ColSignB = ColLtCarry + 4
	// ColSignC is c's sign bit.
	ColSignC = ColSignB + 1
	// ColBRest is b's top limb without the sign bit.
	ColBRest = ColSignC + 1
	// ColCRest is c's top limb without the sign bit.
	ColCRest = ColBRest + 1
	// ColLtResult is the comparison result bit.
	ColLtResult = ColCRest + 1
	// NumLtCols of the less-than table.
	NumLtCols = ColLtResult + 1
)

// LtChip is the less-than table.
type LtChip[F field.Element[F]] struct{}

// NewLtChip constructs the less-than table.
func NewLtChip[F field.Element[F]]() LtChip[F] {
	return LtChip[F]{}
}

// Name implements chips.Chip.
func (p LtChip[F]) Name() string {
	return "lt"
}

// Columns implements chips.Chip.
func (p LtChip[F]) Columns() []string {
	return []string{
		"is_slt", "is_sltu", "shard", "channel", "nonce",
		"b_0", "b_1", "b_2", "b_3",
		"c_0", "c_1", "c_2", "c_3",
		"diff_0", "diff_1", "diff_2", "diff_3",
		"carry_0", "carry_1", "carry_2", "carry_3",
		"sign_b", "sign_c", "b_rest", "c_rest", "result",
	}
}

// Constraints implements chips.Chip.
func (p LtChip[F]) Constraints() []air.Constraint[F] {
	return p.builder().Constraints()
}

// Interactions implements chips.Chip.
func (p LtChip[F]) Interactions() []air.Interaction[F] {
	return p.builder().Interactions()
}

func (p LtChip[F]) builder() *air.Builder[F] {
	var (
		builder = air.NewBuilder[F]("lt")
		isSlt   = air.Local[F](ColIsSlt)
		isSltu  = air.Local[F](ColIsSltu)
		isReal  = isSlt.Add(isSltu)
		shard   = air.Local[F](ColLtShard)
		channel = air.Local[F](ColLtChannel)
		nonce   = air.Local[F](ColLtNonce)
		b       = air.LocalWord[F](ColLtB)
		c       = air.LocalWord[F](ColLtC)
		diff    = air.LocalWord[F](ColDiff)
		signB   = air.Local[F](ColSignB)
		signC   = air.Local[F](ColSignC)
		bRest   = air.Local[F](ColBRest)
		cRest   = air.Local[F](ColCRest)
		result  = air.Local[F](ColLtResult)
		base    = air.NewConst64[F](256)
		two     = air.NewConst64[F](2)
	)
	//
	builder.AssertBool("is_slt", isSlt)
	builder.AssertBool("is_sltu", isSltu)
	builder.AssertBool("one_op", isReal)
	builder.AssertBool("result", result)
	// c + diff = b limb-wise; a set final carry means b - c wrapped, i.e.
	// b < c as unsigned words.
	gated := builder.When(isReal)
	carryIn := air.Zero[F]()
	//
	for i := range air.WordSize {
		carry := air.Local[F](ColLtCarry + uint(i))
		gated.AssertBool("carry_bool", carry)
		gated.AssertEq("sub_limb",
			c[i].Add(diff[i]).Add(carryIn),
			b[i].Add(carry.Mul(base)))
		carryIn = carry
	}
	//
	borrow := air.Local[F](ColLtCarry + 3)
	gadgets.SendByte(builder, rvm.ByteU8Range, diff[0], diff[1], isReal)
	gadgets.SendByte(builder, rvm.ByteU8Range, diff[2], diff[3], isReal)
	// Unsigned: the borrow is the answer.
	builder.When(isSltu).AssertEq("sltu_result", result, borrow)
	// Signed: split the top limbs into sign bit and remainder.  Doubling
	// the remainder must still fit a byte, which pins it below 128.
	whSlt := builder.When(isSlt)
	whSlt.AssertBool("sign_b", signB)
	whSlt.AssertBool("sign_c", signC)
	whSlt.AssertEq("sign_b_split", b[3], signB.Mul(air.NewConst64[F](128)).Add(bRest))
	whSlt.AssertEq("sign_c_split", c[3], signC.Mul(air.NewConst64[F](128)).Add(cRest))
	gadgets.SendByte(builder, rvm.ByteU8Range, bRest.Mul(two), cRest.Mul(two), isSlt)
	// Differing signs decide outright; equal signs defer to the unsigned
	// borrow.
	sameSign := signB.Mul(signC).Add(air.Not(signB).Mul(air.Not(signC)))
	whSlt.AssertEq("slt_result", result,
		signB.Mul(air.Not(signC)).Add(sameSign.Mul(borrow)))
	//
	resultWord := air.ZeroExtend(result)
	builder.Receive(air.KindAlu, air.ScopeLocal,
		chips.AluTuple(air.NewConst64[F](uint64(rvm.SLT)), resultWord, b, c,
			shard, channel, nonce), isSlt)
	builder.Receive(air.KindAlu, air.ScopeLocal,
		chips.AluTuple(air.NewConst64[F](uint64(rvm.SLTU)), resultWord, b, c,
			shard, channel, nonce), isSltu)
	//
	return builder
}

// Included implements chips.Chip.
func (p LtChip[F]) Included(record *rvm.ExecutionRecord) bool {
	for _, ev := range record.AluEvents {
		if ev.Opcode == rvm.SLT || ev.Opcode == rvm.SLTU {
			return true
		}
	}
	//
	return false
}

// GenerateTrace implements chips.Chip.
func (p LtChip[F]) GenerateTrace(record *rvm.ExecutionRecord) *trace.Module[F] {
	var events []rvm.AluEvent
	//
	for _, ev := range record.AluEvents {
		if ev.Opcode == rvm.SLT || ev.Opcode == rvm.SLTU {
			events = append(events, ev)
		}
	}
	//
	var (
		height = trace.PaddedHeight(uint(len(events)))
		mod    = trace.NewModule[F](p.Name(), height, p.Columns())
	)
	//
	for row, ev := range events {
		if ev.Opcode == rvm.SLT {
			mod.SetUint64(ColIsSlt, row, 1)
		} else {
			mod.SetUint64(ColIsSltu, row, 1)
		}
		//
		mod.SetUint64(ColLtShard, row, uint64(ev.Shard))
		mod.SetUint64(ColLtChannel, row, uint64(ev.Channel))
		mod.SetUint64(ColLtNonce, row, uint64(ev.Nonce))
		mod.SetUint64(ColLtResult, row, uint64(ev.A))
		//
		diff := ev.B - ev.C
		setWord(mod, ColLtB, row, ev.B)
		setWord(mod, ColLtC, row, ev.C)
		setWord(mod, ColDiff, row, diff)
		//
		carry := uint64(0)
		//
		for i := range uint(air.WordSize) {
			limbC := uint64((ev.C >> (8 * i)) & 0xff)
			limbD := uint64((diff >> (8 * i)) & 0xff)
			carry = (limbC + limbD + carry) >> 8
			mod.SetUint64(ColLtCarry+i, row, carry)
		}
		//
		record.LookupU8(diff&0xff, (diff>>8)&0xff)
		record.LookupU8((diff>>16)&0xff, diff>>24)
		//
		if ev.Opcode == rvm.SLT {
			signB, signC := ev.B>>31, ev.C>>31
			bRest, cRest := (ev.B>>24)&0x7f, (ev.C>>24)&0x7f
			mod.SetUint64(ColSignB, row, uint64(signB))
			mod.SetUint64(ColSignC, row, uint64(signC))
			mod.SetUint64(ColBRest, row, uint64(bRest))
			mod.SetUint64(ColCRest, row, uint64(cRest))
			record.LookupU8(bRest*2, cRest*2)
		}
	}
	//
	return mod
}
