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

import (
	"encoding/json"
	"fmt"
	"os"
)

// Instruction is a decoded instruction: an opcode together with three
// operand descriptors.  Each of op_b and op_c is either a register index or
// an immediate, discriminated by the corresponding immediate flag; op_a is
// always a register index, with OpA0 flagging the (unused) zero register as
// destination.
type Instruction struct {
	// Opcode of this instruction.
	Opcode Opcode `json:"opcode"`
	// OpA is the first operand's register index.
	OpA uint32 `json:"a"`
	// OpB is the second operand: register index, or immediate when ImmB.
	OpB uint32 `json:"b"`
	// OpC is the third operand: register index, or immediate when ImmC.
	OpC uint32 `json:"c"`
	// ImmB flags op_b as an immediate.
	ImmB bool `json:"imm_b,omitempty"`
	// ImmC flags op_c as an immediate.
	ImmC bool `json:"imm_c,omitempty"`
	// OpA0 flags op_a as the zero register (x0), whose written value is
	// architecturally unused.
	OpA0 bool `json:"a_is_x0,omitempty"`
}

func (p Instruction) String() string {
	return fmt.Sprintf("%s %d,%d,%d", p.Opcode, p.OpA, p.OpB, p.OpC)
}

// Program is an immutable sequence of instructions laid out from pc 0 in
// steps of 4, together with an (optionally empty) initial memory image.
type Program struct {
	// Instructions making up this program.
	Instructions []Instruction `json:"instructions"`
	// Image maps (word-aligned) addresses to their initial memory contents.
	Image map[uint32]uint32 `json:"image,omitempty"`
}

// PcStep is the byte distance between consecutive instructions.
const PcStep = 4

// FetchAt returns the instruction at a given pc, if one exists.
func (p *Program) FetchAt(pc uint32) (Instruction, bool) {
	index := pc / PcStep
	//
	if pc%PcStep != 0 || index >= uint32(len(p.Instructions)) {
		return Instruction{}, false
	}
	//
	return p.Instructions[index], true
}

// LoadProgram reads a program from a JSON file.
func LoadProgram(filename string) (*Program, error) {
	var program Program
	//
	bytes, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	//
	if err := json.Unmarshal(bytes, &program); err != nil {
		return nil, fmt.Errorf("malformed program %s: %w", filename, err)
	}
	//
	return &program, nil
}
