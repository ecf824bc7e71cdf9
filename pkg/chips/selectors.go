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
package chips

import (
	"fmt"

	"github.com/consensys/go-zkvm/pkg/rvm"
)

// Indices into the instruction-class selector block.  The two immediate
// flags come first; the remaining twenty selectors are mutually exclusive
// and classify the instruction.  The block order is part of the program and
// dispatch tuple layouts and must remain stable.
const (
	SelImmB uint = iota
	SelImmC
	SelIsAlu
	SelIsEcall
	SelIsLb
	SelIsLbu
	SelIsLh
	SelIsLhu
	SelIsLw
	SelIsSb
	SelIsSh
	SelIsSw
	SelIsBeq
	SelIsBne
	SelIsBlt
	SelIsBge
	SelIsBltu
	SelIsBgeu
	SelIsJalr
	SelIsJal
	SelIsAuipc
	SelIsUnimpl
	// NumSelectors is the size of the selector block.
	NumSelectors
)

// NumClassSelectors counts the mutually-exclusive class selectors (i.e.
// excluding the two immediate flags).
const NumClassSelectors = NumSelectors - 2

// SelectorNames returns the column names of the selector block, in order.
func SelectorNames() []string {
	return []string{
		"imm_b", "imm_c", "is_alu", "is_ecall",
		"is_lb", "is_lbu", "is_lh", "is_lhu", "is_lw",
		"is_sb", "is_sh", "is_sw",
		"is_beq", "is_bne", "is_blt", "is_bge", "is_bltu", "is_bgeu",
		"is_jalr", "is_jal", "is_auipc", "is_unimpl",
	}
}

// classOf maps an opcode to its class selector index.
func classOf(op rvm.Opcode) uint {
	switch {
	case op.IsAlu():
		return SelIsAlu
	case op == rvm.ECALL:
		return SelIsEcall
	case op == rvm.LB:
		return SelIsLb
	case op == rvm.LBU:
		return SelIsLbu
	case op == rvm.LH:
		return SelIsLh
	case op == rvm.LHU:
		return SelIsLhu
	case op == rvm.LW:
		return SelIsLw
	case op == rvm.SB:
		return SelIsSb
	case op == rvm.SH:
		return SelIsSh
	case op == rvm.SW:
		return SelIsSw
	case op == rvm.BEQ:
		return SelIsBeq
	case op == rvm.BNE:
		return SelIsBne
	case op == rvm.BLT:
		return SelIsBlt
	case op == rvm.BGE:
		return SelIsBge
	case op == rvm.BLTU:
		return SelIsBltu
	case op == rvm.BGEU:
		return SelIsBgeu
	case op == rvm.JALR:
		return SelIsJalr
	case op == rvm.JAL:
		return SelIsJal
	case op == rvm.AUIPC:
		return SelIsAuipc
	case op == rvm.UNIMP:
		return SelIsUnimpl
	}
	//
	panic(fmt.Sprintf("opcode %s has no class selector", op))
}

// SelectorsOf derives the selector block of an instruction.  The trace
// generators of the CPU and program tables both use this derivation, keeping
// their encodings of one instruction identical.
func SelectorsOf(instr rvm.Instruction) [NumSelectors]uint32 {
	var sel [NumSelectors]uint32
	//
	if instr.ImmB {
		sel[SelImmB] = 1
	}
	//
	if instr.ImmC {
		sel[SelImmC] = 1
	}
	//
	sel[classOf(instr.Opcode)] = 1
	//
	return sel
}
