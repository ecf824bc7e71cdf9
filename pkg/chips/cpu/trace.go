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
package cpu

import (
	"github.com/consensys/go-zkvm/pkg/chips"
	"github.com/consensys/go-zkvm/pkg/chips/access"
	"github.com/consensys/go-zkvm/pkg/rvm"
	"github.com/consensys/go-zkvm/pkg/trace"
)

// GenerateTrace implements chips.Chip.
func (p Chip[F]) GenerateTrace(record *rvm.ExecutionRecord) *trace.Module[F] {
	var (
		rows   = uint(len(record.CpuEvents))
		height = trace.PaddedHeight(rows)
		mod    = trace.NewModule[F](p.Name(), height, Columns())
		blkA   = access.NewBlock(ColAAccess)
		blkB   = access.NewBlock(ColBAccess)
		blkC   = access.NewBlock(ColCAccess)
	)
	//
	for row, ev := range record.CpuEvents {
		mod.SetUint64(ColPc, row, uint64(ev.Pc))
		mod.SetUint64(ColNextPc, row, uint64(ev.NextPc))
		mod.SetUint64(ColShard, row, uint64(ev.Shard))
		mod.SetUint64(ColClk, row, uint64(ev.Clk))
		mod.SetUint64(ColNonce, row, uint64(ev.AluNonce))
		// 24-bit clk decomposition, 16-bit shard check.
		clk16, clk8 := ev.Clk&0xffff, (ev.Clk>>16)&0xff
		mod.SetUint64(ColClk16, row, uint64(clk16))
		mod.SetUint64(ColClk8, row, uint64(clk8))
		record.LookupU16(clk16)
		record.LookupU8(clk8, 0)
		record.LookupU16(ev.Shard)
		// Channel is a pure function of the row index.
		channel := uint(row) % chips.NumChannels
		mod.SetUint64(ColChannel, row, uint64(channel))
		mod.SetUint64(ColChanSel+channel, row, 1)
		// Instruction descriptors and selector block.
		instr := ev.Instruction
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
		// Operand accesses.  Immediate operands skip the register file and
		// carry their value directly.
		access.Fill(mod, row, blkA, record, ev.Shard,
			ev.Clk+uint32(rvm.PositionA), ev.ARecordPrev, ev.A)
		//
		if instr.ImmB {
			access.SetWord(mod, blkB.Value, row, ev.B)
		} else {
			access.Fill(mod, row, blkB, record, ev.Shard,
				ev.Clk+uint32(rvm.PositionB), ev.BRecordPrev, ev.B)
		}
		//
		if instr.ImmC {
			access.SetWord(mod, blkC.Value, row, ev.C)
		} else {
			access.Fill(mod, row, blkC, record, ev.Shard,
				ev.Clk+uint32(rvm.PositionC), ev.CRecordPrev, ev.C)
		}
		//
		if ev.IsHalt {
			mod.SetUint64(ColIsHalt, row, 1)
		}
		//
		mod.SetUint64(ColIsReal, row, 1)
	}
	// Padding rows keep the immediate flags high.
	for row := rows; row < height; row++ {
		mod.SetUint64(ColSel+chips.SelImmB, int(row), 1)
		mod.SetUint64(ColSel+chips.SelImmC, int(row), 1)
	}
	//
	return mod
}
