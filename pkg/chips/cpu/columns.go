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

// Package cpu implements the central per-cycle table: one row per executed
// instruction, tying together program fetch, register access, instruction
// classification, bus sends and pc/clk/shard bookkeeping.
package cpu

import (
	"fmt"

	"github.com/consensys/go-zkvm/pkg/chips"
	"github.com/consensys/go-zkvm/pkg/chips/access"
)

// Column layout of the CPU table.  The ordering is part of the proof's
// public structure and must remain stable.
const (
	// ColPc of the executed instruction.
	ColPc uint = iota
	// ColNextPc after the instruction.
	ColNextPc
	// ColShard this row belongs to.
	ColShard
	// ColClk at the start of this cycle.
	ColClk
	// ColClk16 is the low 16-bit limb of clk.
	ColClk16
	// ColClk8 is the high 8-bit limb of clk.
	ColClk8
	// ColChannel routes this row's lookups.
	ColChannel
	// ColNonce of this row's ALU send.
	ColNonce
	// ColOpcode of the fetched instruction.
	ColOpcode
	// ColOpA is the destination register index.
	ColOpA
	// ColOpA0 flags op_a naming register x0.
	ColOpA0
	// ColOpB is the b operand descriptor (four byte limbs; an immediate
	// value, or a zero-extended register index).
	ColOpB
	// ColOpC is the c operand descriptor (four byte limbs).
	ColOpC = ColOpB + 4
	// ColSel is the base of the selector block.
	ColSel = ColOpC + 4
	// ColChanSel is the base of the one-hot channel selectors.
	ColChanSel = ColSel + chips.NumSelectors
	// ColAAccess is the base of op_a's register access block.
	ColAAccess = ColChanSel + chips.NumChannels
	// ColBAccess is the base of op_b's register access block.
	ColBAccess = ColAAccess + access.NumCols
	// ColCAccess is the base of op_c's register access block.
	ColCAccess = ColBAccess + access.NumCols
	// ColIsHalt flags the halting row.
	ColIsHalt = ColCAccess + access.NumCols
	// ColIsReal distinguishes genuine rows from padding.
	ColIsReal = ColIsHalt + 1
	// NumCols of the CPU table.
	NumCols = ColIsReal + 1
)

// Columns returns the CPU column names, in layout order.
func Columns() []string {
	names := []string{
		"pc", "next_pc", "shard", "clk", "clk_16", "clk_8", "channel", "nonce",
		"opcode", "op_a", "op_a_0",
		"op_b_0", "op_b_1", "op_b_2", "op_b_3",
		"op_c_0", "op_c_1", "op_c_2", "op_c_3",
	}
	names = append(names, chips.SelectorNames()...)
	//
	for i := range chips.NumChannels {
		names = append(names, fmt.Sprintf("chan_sel_%d", i))
	}
	//
	names = append(names, access.Names("a")...)
	names = append(names, access.Names("b")...)
	names = append(names, access.Names("c")...)
	//
	return append(names, "is_halt", "is_real")
}
