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

// Package program implements the immutable program table.  Each row is one
// instruction of the binary, with a multiplicity column counting how often
// the CPU fetched it; receiving the program-fetch tuple at that multiplicity
// proves every fetched instruction against the binary.
package program

import (
	"fmt"

	"github.com/consensys/go-zkvm/pkg/air"
	"github.com/consensys/go-zkvm/pkg/chips"
	"github.com/consensys/go-zkvm/pkg/chips/access"
	"github.com/consensys/go-zkvm/pkg/rvm"
	"github.com/consensys/go-zkvm/pkg/trace"
	"github.com/consensys/go-zkvm/pkg/util/field"
)

// Column layout of the program table.
const (
	// ColPc of the instruction.
	ColPc uint = iota
	// ColOpcode of the instruction.
	ColOpcode
	// ColOpA register index.
	ColOpA
	// ColOpA0 flags op_a naming register x0.
	ColOpA0
	// ColOpB operand descriptor (four byte limbs).
	ColOpB
	// ColOpC operand descriptor (four byte limbs).
	ColOpC = ColOpB + 4
	// ColSel is the base of the selector block.
	ColSel = ColOpC + 4
	// ColShard fetching from this table.
	ColShard = ColSel + chips.NumSelectors
	// ColMultiplicity counts fetches of this instruction.
	ColMultiplicity = ColShard + 1
	// NumCols of the program table.
	NumCols = ColMultiplicity + 1
)

// Chip is the program table.
type Chip[F field.Element[F]] struct{}

// NewChip constructs the program table.
func NewChip[F field.Element[F]]() Chip[F] {
	return Chip[F]{}
}

// Name implements chips.Chip.
func (p Chip[F]) Name() string {
	return "program"
}

// Columns implements chips.Chip.
func (p Chip[F]) Columns() []string {
	names := []string{"pc", "opcode", "op_a", "op_a_0"}
	//
	for _, word := range []string{"op_b", "op_c"} {
		for i := range 4 {
			names = append(names, fmt.Sprintf("%s_%d", word, i))
		}
	}
	//
	names = append(names, chips.SelectorNames()...)
	//
	return append(names, "shard", "multiplicity")
}

// Constraints implements chips.Chip.
func (p Chip[F]) Constraints() []air.Constraint[F] {
	return p.builder().Constraints()
}

// Interactions implements chips.Chip.
func (p Chip[F]) Interactions() []air.Interaction[F] {
	return p.builder().Interactions()
}

func (p Chip[F]) builder() *air.Builder[F] {
	builder := air.NewBuilder[F]("program")
	//
	sels := make([]air.Expr[F], chips.NumSelectors)
	//
	for i := range sels {
		sels[i] = air.Local[F](ColSel + uint(i))
	}
	//
	builder.Receive(air.KindProgram, air.ScopeLocal,
		chips.ProgramTuple(air.Local[F](ColPc), air.Local[F](ColOpcode),
			air.Local[F](ColOpA), air.Local[F](ColOpA0),
			air.LocalWord[F](ColOpB), air.LocalWord[F](ColOpC),
			sels, air.Local[F](ColShard)),
		air.Local[F](ColMultiplicity))
	//
	return builder
}

// Included implements chips.Chip.
func (p Chip[F]) Included(record *rvm.ExecutionRecord) bool {
	return len(record.CpuEvents) > 0 && len(record.Program.Instructions) > 0
}

// GenerateTrace implements chips.Chip.
func (p Chip[F]) GenerateTrace(record *rvm.ExecutionRecord) *trace.Module[F] {
	// Fetch counts per pc.
	counts := make(map[uint32]uint64)
	//
	for _, ev := range record.CpuEvents {
		counts[ev.Pc]++
	}
	//
	var (
		instructions = record.Program.Instructions
		height       = trace.PaddedHeight(uint(len(instructions)))
		mod          = trace.NewModule[F](p.Name(), height, p.Columns())
	)
	//
	for row, instr := range instructions {
		pc := uint32(row) * rvm.PcStep
		//
		mod.SetUint64(ColPc, row, uint64(pc))
		mod.SetUint64(ColOpcode, row, uint64(instr.Opcode))
		mod.SetUint64(ColOpA, row, uint64(instr.OpA))
		//
		if instr.OpA0 {
			mod.SetUint64(ColOpA0, row, 1)
		}
		//
		access.SetWord(mod, ColOpB, row, instr.OpB)
		access.SetWord(mod, ColOpC, row, instr.OpC)
		//
		for i, v := range chips.SelectorsOf(instr) {
			mod.SetUint64(ColSel+uint(i), row, uint64(v))
		}
		//
		mod.SetUint64(ColShard, row, uint64(record.Shard))
		mod.SetUint64(ColMultiplicity, row, counts[pc])
	}
	//
	return mod
}
