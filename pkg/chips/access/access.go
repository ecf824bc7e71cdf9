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

// Package access provides the shared column block through which chips touch
// the register and memory buses.  Every access contributes a matched pair of
// interactions: the previous record of the cell is sent (cancelling the
// receive of whoever produced it), and the current record is received (to be
// cancelled by the cell's next access, or by the finalization table).  The
// block also proves the access is causally ordered after the previous one.
package access

import (
	"github.com/consensys/go-zkvm/pkg/air"
	"github.com/consensys/go-zkvm/pkg/air/gadgets"
	"github.com/consensys/go-zkvm/pkg/chips"
	"github.com/consensys/go-zkvm/pkg/rvm"
	"github.com/consensys/go-zkvm/pkg/trace"
	"github.com/consensys/go-zkvm/pkg/util/field"
)

// NumCols is the number of columns one access block occupies.
const NumCols = 13

// Block names the columns of one access within its parent chip.  The parent
// allocates NumCols consecutive columns and hands the base index here.
type Block struct {
	// Value held by the cell after the access (four byte limbs).
	Value uint
	// PrevValue held by the cell before the access (four byte limbs).
	PrevValue uint
	// PrevShard of the previous access.
	PrevShard uint
	// PrevClk of the previous access.
	PrevClk uint
	// CompareClk is set when the previous access happened in this shard, in
	// which case ordering is decided on clk rather than shard.
	CompareClk uint
	// Diff16 is the low 16-bit limb of the ordering difference, minus one.
	Diff16 uint
	// Diff8 is the high 8-bit limb of the ordering difference, minus one.
	Diff8 uint
}

// NewBlock lays out an access block over NumCols columns starting at base.
func NewBlock(base uint) Block {
	return Block{
		Value:      base,
		PrevValue:  base + 4,
		PrevShard:  base + 8,
		PrevClk:    base + 9,
		CompareClk: base + 10,
		Diff16:     base + 11,
		Diff8:      base + 12,
	}
}

// Names returns the column names of this block, in layout order.
func Names(prefix string) []string {
	return []string{
		prefix + "_val_0", prefix + "_val_1", prefix + "_val_2", prefix + "_val_3",
		prefix + "_prev_val_0", prefix + "_prev_val_1", prefix + "_prev_val_2", prefix + "_prev_val_3",
		prefix + "_prev_shard", prefix + "_prev_clk",
		prefix + "_compare_clk", prefix + "_diff_16", prefix + "_diff_8",
	}
}

// ValueWord returns the post-access value as a word of local column accesses.
func ValueWord[F field.Element[F]](blk Block) air.Word[F] {
	return air.LocalWord[F](blk.Value)
}

// PrevValueWord returns the pre-access value as a word of local column
// accesses.
func PrevValueWord[F field.Element[F]](blk Block) air.Word[F] {
	return air.LocalWord[F](blk.PrevValue)
}

// Eval emits the constraints and interactions of one access.  The access is
// gated on doCheck: padding rows (and skipped operand slots) leave the block
// zero and contribute nothing to the bus.  Kind selects the register or
// memory bus.
func Eval[F field.Element[F]](builder *air.Builder[F], handle string, kind air.Kind,
	blk Block, shard air.Expr[F], clk air.Expr[F], addr air.Expr[F], doCheck air.Expr[F]) {
	//
	var (
		prevShard = air.Local[F](blk.PrevShard)
		prevClk   = air.Local[F](blk.PrevClk)
		compare   = air.Local[F](blk.CompareClk)
		gated     = builder.When(doCheck)
	)
	// Hand back the previous record, take ownership of the current one.
	builder.Send(kind, air.ScopeLocal,
		chips.MemoryTuple(prevShard, prevClk, addr, PrevValueWord[F](blk)), doCheck)
	builder.Receive(kind, air.ScopeLocal,
		chips.MemoryTuple(shard, clk, addr, ValueWord[F](blk)), doCheck)
	// Ordering: strictly after the previous access.  Same shard compares
	// clocks; otherwise the shard itself must have advanced.
	gated.AssertBool(handle, compare)
	gated.When(compare).AssertEq(handle, shard, prevShard)
	//
	diff := compare.Mul(clk.Sub(prevClk)).
		Add(air.Not(compare).Mul(shard.Sub(prevShard))).
		Sub(air.One[F]())
	gadgets.RangeCheckU24(builder, handle, diff, air.Local[F](blk.Diff16), air.Local[F](blk.Diff8), doCheck)
}

// Fill lays out one access row and accumulates its byte lookups.
func Fill[F field.Element[F]](mod *trace.Module[F], row int, blk Block,
	out *rvm.ExecutionRecord, shard uint32, clk uint32, prev rvm.MemoryRecord, value uint32) {
	//
	SetWord(mod, blk.Value, row, value)
	SetWord(mod, blk.PrevValue, row, prev.Value)
	mod.SetUint64(blk.PrevShard, row, uint64(prev.Shard))
	mod.SetUint64(blk.PrevClk, row, uint64(prev.Clk))
	//
	var diff uint32
	//
	if prev.Shard == shard {
		mod.SetUint64(blk.CompareClk, row, 1)
		diff = clk - prev.Clk - 1
	} else {
		diff = shard - prev.Shard - 1
	}
	//
	limb16, limb8 := diff&0xffff, (diff>>16)&0xff
	mod.SetUint64(blk.Diff16, row, uint64(limb16))
	mod.SetUint64(blk.Diff8, row, uint64(limb8))
	out.LookupU16(limb16)
	out.LookupU8(limb8, 0)
}

// SetWord writes the four byte limbs of a value into consecutive columns.
func SetWord[F field.Element[F]](mod *trace.Module[F], base uint, row int, value uint32) {
	for i := range uint(air.WordSize) {
		mod.SetUint64(base+i, row, uint64((value>>(8*i))&0xff))
	}
}
