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

// Package alu implements the receiver tables of the ALU bus.  Each table
// proves one family of 32-bit operations byte-wise over word limbs and
// receives the matching bus tuples, so that every ALU send of the CPU and
// dispatch tables has exactly one consumer.
package alu

import (
	"github.com/consensys/go-zkvm/pkg/air"
	"github.com/consensys/go-zkvm/pkg/air/gadgets"
	"github.com/consensys/go-zkvm/pkg/chips"
	"github.com/consensys/go-zkvm/pkg/rvm"
	"github.com/consensys/go-zkvm/pkg/trace"
	"github.com/consensys/go-zkvm/pkg/util/field"
)

// Column layout of the add/sub table.  A single byte-wise adder serves both
// operations: ADD proves a = b + c directly, SUB proves a = b - c as
// b = a + c.
const (
	// ColIsAdd selects ADD rows.
	ColIsAdd uint = iota
	// ColIsSub selects SUB rows.
	ColIsSub
	// ColShard of the received tuple.
	ColShard
	// ColChannel of the received tuple.
	ColChannel
	// ColNonce of the received tuple.
	ColNonce
	// ColSum is the adder output (four byte limbs).
	ColSum
	// ColCarry holds the adder's carry chain.
	ColCarry = ColSum + 4
	// ColOp1 is the first adder input.
	ColOp1 = ColCarry + 4
	// ColOp2 is the second adder input.
	ColOp2 = ColOp1 + 4
	// NumAddSubCols of the add/sub table.
	NumAddSubCols = ColOp2 + 4
)

// AddSubChip is the add/sub table.
type AddSubChip[F field.Element[F]] struct{}

// NewAddSubChip constructs the add/sub table.
func NewAddSubChip[F field.Element[F]]() AddSubChip[F] {
	return AddSubChip[F]{}
}

// Name implements chips.Chip.
func (p AddSubChip[F]) Name() string {
	return "add_sub"
}

// Columns implements chips.Chip.
func (p AddSubChip[F]) Columns() []string {
	return []string{
		"is_add", "is_sub", "shard", "channel", "nonce",
		"sum_0", "sum_1", "sum_2", "sum_3",
		"carry_0", "carry_1", "carry_2", "carry_3",
		"op1_0", "op1_1", "op1_2", "op1_3",
		"op2_0", "op2_1", "op2_2", "op2_3",
	}
}

// Constraints implements chips.Chip.
func (p AddSubChip[F]) Constraints() []air.Constraint[F] {
	return p.builder().Constraints()
}

// Interactions implements chips.Chip.
func (p AddSubChip[F]) Interactions() []air.Interaction[F] {
	return p.builder().Interactions()
}

func (p AddSubChip[F]) builder() *air.Builder[F] {
	var (
		builder = air.NewBuilder[F]("add_sub")
		isAdd   = air.Local[F](ColIsAdd)
		isSub   = air.Local[F](ColIsSub)
		isReal  = isAdd.Add(isSub)
		shard   = air.Local[F](ColShard)
		channel = air.Local[F](ColChannel)
		nonce   = air.Local[F](ColNonce)
		sum     = air.LocalWord[F](ColSum)
		op1     = air.LocalWord[F](ColOp1)
		op2     = air.LocalWord[F](ColOp2)
		base    = air.NewConst64[F](256)
	)
	//
	builder.AssertBool("is_add", isAdd)
	builder.AssertBool("is_sub", isSub)
	builder.AssertBool("one_op", isReal)
	// Byte-wise addition with carries; the final carry absorbs the 2^32
	// wrap.
	gated := builder.When(isReal)
	carryIn := air.Zero[F]()
	//
	for i := range air.WordSize {
		carry := air.Local[F](ColCarry + uint(i))
		gated.AssertBool("carry_bool", carry)
		gated.AssertEq("add_limb",
			op1[i].Add(op2[i]).Add(carryIn),
			sum[i].Add(carry.Mul(base)))
		carryIn = carry
	}
	// The adder output is made of bytes.
	gadgets.SendByte(builder, rvm.ByteU8Range, sum[0], sum[1], isReal)
	gadgets.SendByte(builder, rvm.ByteU8Range, sum[2], sum[3], isReal)
	// ADD proves a = b + c with a in the sum slot; SUB proves a = b - c by
	// putting b there instead.
	builder.Receive(air.KindAlu, air.ScopeLocal,
		chips.AluTuple(air.NewConst64[F](uint64(rvm.ADD)), sum, op1, op2,
			shard, channel, nonce), isAdd)
	builder.Receive(air.KindAlu, air.ScopeLocal,
		chips.AluTuple(air.NewConst64[F](uint64(rvm.SUB)), op1, sum, op2,
			shard, channel, nonce), isSub)
	//
	return builder
}

// Included implements chips.Chip.
func (p AddSubChip[F]) Included(record *rvm.ExecutionRecord) bool {
	for _, ev := range record.AluEvents {
		if ev.Opcode == rvm.ADD || ev.Opcode == rvm.SUB {
			return true
		}
	}
	//
	return false
}

// GenerateTrace implements chips.Chip.
func (p AddSubChip[F]) GenerateTrace(record *rvm.ExecutionRecord) *trace.Module[F] {
	var events []rvm.AluEvent
	//
	for _, ev := range record.AluEvents {
		if ev.Opcode == rvm.ADD || ev.Opcode == rvm.SUB {
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
		var sum, op1, op2 uint32
		//
		if ev.Opcode == rvm.ADD {
			mod.SetUint64(ColIsAdd, row, 1)
			sum, op1, op2 = ev.A, ev.B, ev.C
		} else {
			mod.SetUint64(ColIsSub, row, 1)
			sum, op1, op2 = ev.B, ev.A, ev.C
		}
		//
		mod.SetUint64(ColShard, row, uint64(ev.Shard))
		mod.SetUint64(ColChannel, row, uint64(ev.Channel))
		mod.SetUint64(ColNonce, row, uint64(ev.Nonce))
		//
		setWord(mod, ColSum, row, sum)
		setWord(mod, ColOp1, row, op1)
		setWord(mod, ColOp2, row, op2)
		//
		carry := uint64(0)
		//
		for i := range uint(air.WordSize) {
			limb1 := uint64((op1 >> (8 * i)) & 0xff)
			limb2 := uint64((op2 >> (8 * i)) & 0xff)
			carry = (limb1 + limb2 + carry) >> 8
			mod.SetUint64(ColCarry+i, row, carry)
		}
		//
		record.LookupU8(sum&0xff, (sum>>8)&0xff)
		record.LookupU8((sum>>16)&0xff, sum>>24)
	}
	//
	return mod
}

func setWord[F field.Element[F]](mod *trace.Module[F], base uint, row int, value uint32) {
	for i := range uint(air.WordSize) {
		mod.SetUint64(base+i, row, uint64((value>>(8*i))&0xff))
	}
}
