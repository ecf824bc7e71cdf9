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
package rvm

import "fmt"

// Opcode identifies a RISC-V instruction class after decoding.  Immediate
// variants (e.g. ADDI) share the opcode of their register form, with the
// immediate flags of the enclosing instruction distinguishing them.  The
// numbering is stable: it appears in program-fetch and ALU tuples.
type Opcode uint32

const (
	// ADD performs op_a = op_b + op_c.
	ADD Opcode = iota
	// SUB performs op_a = op_b - op_c.
	SUB
	// XOR performs op_a = op_b ^ op_c.
	XOR
	// OR performs op_a = op_b | op_c.
	OR
	// AND performs op_a = op_b & op_c.
	AND
	// SLL performs op_a = op_b << op_c.
	SLL
	// SRL performs op_a = op_b >> op_c (logical).
	SRL
	// SRA performs op_a = op_b >> op_c (arithmetic).
	SRA
	// SLT performs op_a = (op_b <ₛ op_c) (signed).
	SLT
	// SLTU performs op_a = (op_b <ᵤ op_c) (unsigned).
	SLTU
	// LB loads a sign-extended byte.
	LB
	// LH loads a sign-extended half word.
	LH
	// LW loads a word.
	LW
	// LBU loads a zero-extended byte.
	LBU
	// LHU loads a zero-extended half word.
	LHU
	// SB stores a byte.
	SB
	// SH stores a half word.
	SH
	// SW stores a word.
	SW
	// BEQ branches when op_a == op_b.
	BEQ
	// BNE branches when op_a != op_b.
	BNE
	// BLT branches when op_a <ₛ op_b.
	BLT
	// BGE branches when op_a >=ₛ op_b.
	BGE
	// BLTU branches when op_a <ᵤ op_b.
	BLTU
	// BGEU branches when op_a >=ᵤ op_b.
	BGEU
	// JAL jumps to pc + op_b, linking pc + 4 into op_a.
	JAL
	// JALR jumps to op_b + op_c, linking pc + 4 into op_a.
	JALR
	// AUIPC computes op_a = pc + op_b.
	AUIPC
	// ECALL dispatches on the syscall code held in op_a's register.
	ECALL
	// UNIMP marks an unimplemented instruction; executing one halts the
	// trace.
	UNIMP
)

var opcodeNames = map[Opcode]string{
	ADD: "add", SUB: "sub", XOR: "xor", OR: "or", AND: "and",
	SLL: "sll", SRL: "srl", SRA: "sra", SLT: "slt", SLTU: "sltu",
	LB: "lb", LH: "lh", LW: "lw", LBU: "lbu", LHU: "lhu",
	SB: "sb", SH: "sh", SW: "sw",
	BEQ: "beq", BNE: "bne", BLT: "blt", BGE: "bge", BLTU: "bltu", BGEU: "bgeu",
	JAL: "jal", JALR: "jalr", AUIPC: "auipc", ECALL: "ecall", UNIMP: "unimp",
}

func (op Opcode) String() string {
	if name, ok := opcodeNames[op]; ok {
		return name
	}
	//
	return fmt.Sprintf("opcode(%d)", uint32(op))
}

// OpcodeOf returns the opcode with a given mnemonic.
func OpcodeOf(name string) (Opcode, bool) {
	for op, n := range opcodeNames {
		if n == name {
			return op, true
		}
	}
	//
	return UNIMP, false
}

// IsAlu determines whether this opcode is handled on the ALU bus.
func (op Opcode) IsAlu() bool {
	return op <= SLTU
}

// IsMemory determines whether this opcode is a load or store.
func (op Opcode) IsMemory() bool {
	return op >= LB && op <= SW
}

// IsLoad determines whether this opcode is a load.
func (op Opcode) IsLoad() bool {
	return op >= LB && op <= LHU
}

// IsStore determines whether this opcode is a store.
func (op Opcode) IsStore() bool {
	return op >= SB && op <= SW
}

// IsBranch determines whether this opcode is a conditional branch.
func (op Opcode) IsBranch() bool {
	return op >= BEQ && op <= BGEU
}

// IsJump determines whether this opcode is JAL or JALR.
func (op Opcode) IsJump() bool {
	return op == JAL || op == JALR
}
