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

// Package dispatch implements the opcode-specific table.  It receives the
// tuple the CPU sends for branch, jump, memory, AUIPC and ECALL rows, and is
// the sole authority on next_pc for those classes: memory addressing and
// load/store extraction, branch predicates and targets, jump links, AUIPC
// addition and syscall dispatch all live here.
package dispatch

import (
	"fmt"

	"github.com/consensys/go-zkvm/pkg/chips"
	"github.com/consensys/go-zkvm/pkg/chips/access"
)

// Column layout of the dispatch table.  The leading section mirrors the
// instruction-dispatch tuple element for element; the trailing sections are
// per-class working columns, shared across classes where the classes are
// mutually exclusive.
const (
	// ColClk of the dispatched row.
	ColClk uint = iota
	// ColShard of the dispatched row.
	ColShard
	// ColChannel of the dispatched row.
	ColChannel
	// ColPc of the dispatched instruction.
	ColPc
	// ColNextPc this table authorizes.
	ColNextPc
	// ColSel is the base of the selector block.
	ColSel
	// ColOpAPrev is op_a's value before the cycle (four byte limbs).
	ColOpAPrev = ColSel + chips.NumSelectors
	// ColOpA is op_a's value after the cycle.
	ColOpA = ColOpAPrev + 4
	// ColOpB is op_b's operand value.
	ColOpB = ColOpA + 4
	// ColOpC is op_c's operand value.
	ColOpC = ColOpB + 4
	// ColOpA0 flags op_a naming register x0.
	ColOpA0 = ColOpC + 4
	// ColIsHalt flags the halting row.
	ColIsHalt = ColOpA0 + 1
	// ColIsReal distinguishes genuine rows from padding.
	ColIsReal = ColIsHalt + 1

	// ColAddrWord is the unaligned effective address op_b + op_c.
	ColAddrWord = ColIsReal + 1
	// ColAddrAligned is the word-aligned address on the memory bus.
	ColAddrAligned = ColAddrWord + 4
	// ColOffsetBit0 is the low bit of the address offset.
	ColOffsetBit0 = ColAddrAligned + 1
	// ColOffsetBit1 is the high bit of the address offset.
	ColOffsetBit1 = ColOffsetBit0 + 1
	// ColMemAccess is the base of the memory access block.
	ColMemAccess = ColOffsetBit1 + 1
	// ColMsbBits is the bit decomposition of the loaded value's most
	// significant byte, for sign extension.
	ColMsbBits = ColMemAccess + access.NumCols
	// ColMemIsNeg flags a negative signed load.
	ColMemIsNeg = ColMsbBits + 8
	// ColMemAddrNonce of the address-computation ALU send.
	ColMemAddrNonce = ColMemIsNeg + 1

	// ColAEqB flags op_a == op_b on branch rows.
	ColAEqB = ColMemAddrNonce + 1
	// ColALtB flags op_a < op_b (signedness per opcode).
	ColALtB = ColAEqB + 1
	// ColAGtB flags op_a > op_b.
	ColAGtB = ColALtB + 1
	// ColPcWord is a word-decomposed, range-checked copy of pc.
	ColPcWord = ColAGtB + 1
	// ColPcBits decomposes PcWord's top limb for the range check.
	ColPcBits = ColPcWord + 4
	// ColTargetWord is the computed control-flow target.
	ColTargetWord = ColPcBits + 8
	// ColTargetBits decomposes TargetWord's top limb for the range check.
	ColTargetBits = ColTargetWord + 4
	// ColLtNonce of the a<b comparison send.
	ColLtNonce = ColTargetBits + 8
	// ColGtNonce of the a>b comparison send.
	ColGtNonce = ColLtNonce + 1
	// ColTargetNonce of the target (or AUIPC) addition send.
	ColTargetNonce = ColGtNonce + 1
	// ColLinkBits decomposes the jump link value's top limb, range-checking
	// the word written back to op_a.
	ColLinkBits = ColTargetNonce + 1

	// ColHaltInv and ColHaltRes witness the HALT syscall-id test.
	ColHaltInv = ColLinkBits + 8
	ColHaltRes = ColHaltInv + 1
	// ColCommitInv and ColCommitRes witness the COMMIT syscall-id test.
	ColCommitInv = ColHaltRes + 1
	ColCommitRes = ColCommitInv + 1
	// ColDeferredInv and ColDeferredRes witness the COMMIT_DEFERRED test.
	ColDeferredInv = ColCommitRes + 1
	ColDeferredRes = ColDeferredInv + 1
	// ColIndexBitmap one-hot selects the digest word a COMMIT binds.
	ColIndexBitmap = ColDeferredRes + 1
	// NumCols of the dispatch table.
	NumCols = ColIndexBitmap + 8
)

// Columns returns the dispatch column names, in layout order.
func Columns() []string {
	names := []string{"clk", "shard", "channel", "pc", "next_pc"}
	names = append(names, chips.SelectorNames()...)
	//
	for _, word := range []string{"op_a_prev", "op_a", "op_b", "op_c"} {
		for i := range 4 {
			names = append(names, fmt.Sprintf("%s_%d", word, i))
		}
	}
	//
	names = append(names, "op_a_0", "is_halt", "is_real")
	names = append(names, "addr_word_0", "addr_word_1", "addr_word_2", "addr_word_3")
	names = append(names, "addr_aligned", "offset_bit_0", "offset_bit_1")
	names = append(names, access.Names("mem")...)
	//
	for i := range 8 {
		names = append(names, fmt.Sprintf("msb_bit_%d", i))
	}
	//
	names = append(names, "mem_is_neg", "mem_addr_nonce")
	names = append(names, "a_eq_b", "a_lt_b", "a_gt_b")
	names = append(names, "pc_word_0", "pc_word_1", "pc_word_2", "pc_word_3")
	//
	for i := range 8 {
		names = append(names, fmt.Sprintf("pc_bit_%d", i))
	}
	//
	names = append(names, "target_word_0", "target_word_1", "target_word_2", "target_word_3")
	//
	for i := range 8 {
		names = append(names, fmt.Sprintf("target_bit_%d", i))
	}
	//
	names = append(names, "lt_nonce", "gt_nonce", "target_nonce")
	//
	for i := range 8 {
		names = append(names, fmt.Sprintf("link_bit_%d", i))
	}
	//
	names = append(names, "halt_inv", "halt_res", "commit_inv", "commit_res",
		"deferred_inv", "deferred_res")
	//
	for i := range 8 {
		names = append(names, fmt.Sprintf("index_bit_%d", i))
	}
	//
	return names
}
