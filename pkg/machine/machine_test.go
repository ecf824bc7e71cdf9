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
package machine

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/consensys/go-zkvm/pkg/chips/cpu"
	"github.com/consensys/go-zkvm/pkg/chips/dispatch"
	"github.com/consensys/go-zkvm/pkg/chips/memory"
	"github.com/consensys/go-zkvm/pkg/rvm"
	"github.com/consensys/go-zkvm/pkg/rvm/emulator"
	"github.com/consensys/go-zkvm/pkg/trace"
	"github.com/consensys/go-zkvm/pkg/util/field"
	"github.com/consensys/go-zkvm/pkg/util/field/babybear"
)

type bb = babybear.Element

func reg(op rvm.Opcode, a uint32, b uint32, c uint32) rvm.Instruction {
	return rvm.Instruction{Opcode: op, OpA: a, OpB: b, OpC: c}
}

func immi(op rvm.Opcode, a uint32, b uint32, c uint32) rvm.Instruction {
	return rvm.Instruction{Opcode: op, OpA: a, OpB: b, OpC: c, ImmB: true, ImmC: true}
}

func regimm(op rvm.Opcode, a uint32, b uint32, c uint32) rvm.Instruction {
	return rvm.Instruction{Opcode: op, OpA: a, OpB: b, OpC: c, ImmC: true}
}

func halting(exitReg uint32, body ...rvm.Instruction) *rvm.Program {
	instructions := append(body,
		immi(rvm.ADD, 5, rvm.SyscallHalt, 0),
		reg(rvm.ECALL, 5, exitReg, 6),
	)
	//
	return &rvm.Program{Instructions: instructions}
}

// generate executes a program and lays out the trace of every shard.
func generate(t *testing.T, program *rvm.Program, shardSize uint) []*trace.Trace[bb] {
	t.Helper()
	//
	records, err := emulator.NewEmulator(program, shardSize).Run(1 << 16)
	require.NoError(t, err)
	//
	mach := NewMachine[bb]()
	traces := make([]*trace.Trace[bb], len(records))
	//
	for i, record := range records {
		traces[i] = mach.GenerateTraces(record)
	}
	//
	return traces
}

// accepted requires that every constraint and interaction holds.
func accepted(t *testing.T, traces []*trace.Trace[bb]) {
	t.Helper()
	//
	failures := NewMachine[bb]().Check(traces)
	//
	for _, failure := range failures {
		t.Log(failure.Message())
	}
	//
	require.Empty(t, failures)
}

// forgeRegisterValue overwrites the value limbs of a register's row in a
// consistency table.
func forgeRegisterValue(t *testing.T, mod *trace.Module[bb], reg uint32, limbs ...bb) {
	t.Helper()
	//
	addr := field.Uint32[bb](reg)
	//
	for row := 0; row < int(mod.Height()); row++ {
		if mod.Get(memory.ColIsReal, row).IsOne() && mod.Get(memory.ColAddr, row).Equals(addr) {
			for i, limb := range limbs {
				mod.Set(memory.ColValue+uint(i), row, limb)
			}
			//
			return
		}
	}
	//
	t.Fatalf("register %d not found", reg)
}

func TestMachine_Add(t *testing.T) {
	accepted(t, generate(t, halting(1, immi(rvm.ADD, 1, 3, 4)), 1024))
}

func TestMachine_AddChain(t *testing.T) {
	accepted(t, generate(t, halting(1,
		immi(rvm.ADD, 1, 3, 4),
		regimm(rvm.ADD, 1, 1, 10),
		reg(rvm.ADD, 1, 1, 1),
		immi(rvm.SUB, 2, 100, 1),
		reg(rvm.SUB, 1, 1, 2),
	), 1024))
}

func TestMachine_Comparisons(t *testing.T) {
	accepted(t, generate(t, halting(4,
		immi(rvm.SUB, 1, 0, 5),   // -5
		immi(rvm.ADD, 2, 3, 0),   // 3
		reg(rvm.SLT, 3, 1, 2),    // 1
		reg(rvm.SLTU, 4, 1, 2),   // 0 (huge unsigned)
		regimm(rvm.SLT, 6, 2, 3), // 0
	), 1024))
}

func TestMachine_Branches(t *testing.T) {
	// Sum 3 + 2 + 1 by counting down; exercises taken and not-taken rows of
	// both equality and ordering predicates.
	accepted(t, generate(t, halting(2,
		immi(rvm.ADD, 1, 3, 0),
		immi(rvm.ADD, 2, 0, 0),
		reg(rvm.ADD, 2, 2, 1),
		regimm(rvm.SUB, 1, 1, 1),
		regimm(rvm.BNE, 1, 0, -8&0xffffffff),
		regimm(rvm.BEQ, 1, 0, 8), // 0 == 0, taken
		immi(rvm.ADD, 2, 0, 0),   // skipped
		regimm(rvm.BGEU, 1, 0, 8), // 0 >= 0, taken
		immi(rvm.ADD, 2, 0, 0),    // skipped
		regimm(rvm.BLT, 1, 2, 8), // 0 < 6, taken
		immi(rvm.ADD, 2, 0, 0),   // skipped
		regimm(rvm.BGE, 1, 2, 8), // 0 >= 6, not taken
	), 1024))
}

func TestMachine_SignedBranches(t *testing.T) {
	accepted(t, generate(t, halting(3,
		immi(rvm.SUB, 1, 0, 5), // -5
		immi(rvm.ADD, 2, 3, 0),
		regimm(rvm.BLT, 1, 2, 8), // taken, signed
		immi(rvm.ADD, 3, 7, 0),   // skipped
		regimm(rvm.BLTU, 1, 2, 8),
		immi(rvm.ADD, 3, 1, 0), // not skipped (-5 unsigned is huge)
	), 1024))
}

func TestMachine_Jumps(t *testing.T) {
	accepted(t, generate(t, halting(4,
		rvm.Instruction{Opcode: rvm.JAL, OpA: 1, OpB: 8, ImmB: true, ImmC: true},
		immi(rvm.ADD, 9, 99, 0), // skipped
		rvm.Instruction{Opcode: rvm.AUIPC, OpA: 2, OpB: 12, ImmB: true, ImmC: true},
		regimm(rvm.JALR, 3, 2, 0),
		immi(rvm.ADD, 9, 98, 0), // skipped
		reg(rvm.ADD, 4, 1, 3),
	), 1024))
}

func TestMachine_Memory(t *testing.T) {
	program := halting(8,
		immi(rvm.ADD, 1, 100, 0),
		regimm(rvm.LB, 2, 1, 0),
		regimm(rvm.LBU, 3, 1, 3),
		regimm(rvm.LH, 4, 1, 0),
		regimm(rvm.LHU, 6, 1, 2),
		regimm(rvm.LB, 9, 1, 2), // sign extends
		regimm(rvm.SB, 3, 1, 4),
		regimm(rvm.SH, 4, 1, 8),
		regimm(rvm.SW, 6, 1, 12),
		regimm(rvm.LW, 7, 1, 4),
		regimm(rvm.ADD, 8, 9, 3),
		reg(rvm.ADD, 8, 8, 7),
	)
	program.Image = map[uint32]uint32{100: 0x80ff7f01}
	//
	accepted(t, generate(t, program, 1024))
}

func TestMachine_MultiShard(t *testing.T) {
	// Two cycles per shard; the store and the load land in different shards,
	// so the value travels through the global memory argument.
	program := halting(3,
		immi(rvm.ADD, 1, 100, 0),
		immi(rvm.ADD, 2, 7, 0),
		regimm(rvm.SW, 2, 1, 0),
		immi(rvm.ADD, 6, 0, 0),
		regimm(rvm.LW, 3, 1, 0),
	)
	//
	traces := generate(t, program, 2)
	require.Greater(t, len(traces), 2)
	accepted(t, traces)
}

func TestMachine_SingleCycleShards(t *testing.T) {
	accepted(t, generate(t, halting(1,
		immi(rvm.ADD, 1, 1, 0),
		regimm(rvm.ADD, 1, 1, 2),
		regimm(rvm.ADD, 1, 1, 3),
	), 1))
}

func TestMachine_Commit(t *testing.T) {
	accepted(t, generate(t, halting(6,
		immi(rvm.ADD, 5, rvm.SyscallCommit, 0),
		immi(rvm.ADD, 10, 2, 0),
		immi(rvm.ADD, 11, 42, 0),
		reg(rvm.ECALL, 5, 10, 11),
		immi(rvm.ADD, 5, rvm.SyscallCommitDeferred, 0),
		immi(rvm.ADD, 10, 1, 0),
		immi(rvm.ADD, 11, 17, 0),
		reg(rvm.ECALL, 5, 10, 11),
	), 1024))
}

func TestMachine_OpaqueSyscall(t *testing.T) {
	// An opaque syscall with three declared extra cycles; the clock
	// constraint must account for them.
	code := rvm.SyscallWrite | 3<<16
	accepted(t, generate(t, halting(1,
		immi(rvm.ADD, 1, 7, 0),
		immi(rvm.ADD, 5, code, 0),
		reg(rvm.ECALL, 5, 6, 6),
		regimm(rvm.ADD, 1, 1, 1),
	), 1024))
}

func TestMachine_RejectsTamperedOpcode(t *testing.T) {
	traces := generate(t, halting(1, immi(rvm.ADD, 1, 3, 4)), 1024)
	// Claim the first instruction was a SUB.
	traces[0].Module("cpu").Set(cpu.ColOpcode, 0, field.Uint32[bb](uint32(rvm.SUB)))
	//
	failures := NewMachine[bb]().Check(traces)
	require.NotEmpty(t, failures)
}

func TestMachine_RejectsTamperedExitCode(t *testing.T) {
	traces := generate(t, halting(1, immi(rvm.ADD, 1, 3, 4)), 1024)
	// Claim a different exit code than the halting instruction declared.
	traces[len(traces)-1].Public[rvm.PvExitCode] = field.Uint32[bb](99)
	//
	failures := NewMachine[bb]().Check(traces)
	require.NotEmpty(t, failures)
}

func TestMachine_RejectsTamperedRegister(t *testing.T) {
	traces := generate(t, halting(1, immi(rvm.ADD, 1, 3, 4)), 1024)
	// Claim the add wrote 8 rather than 7.  The ALU receive no longer
	// matches the CPU's send.
	mod := traces[0].Module("cpu")
	mod.Set(cpu.ColAAccess, 0, field.Uint32[bb](8))
	//
	failures := NewMachine[bb]().Check(traces)
	require.NotEmpty(t, failures)
}

func TestMachine_RejectsForgedSyscallWriteback(t *testing.T) {
	// A syscall reads its code from op_a and must leave the register
	// untouched.  Forge the written value consistently across the CPU access
	// block, the dispatch tuple and the finalize records, so that every bus
	// still nets and only a row constraint can reject the trace.
	traces := generate(t, halting(1, immi(rvm.ADD, 1, 3, 4)), 1024)
	forged := field.Uint32[bb](9)
	//
	traces[0].Module("cpu").Set(cpu.ColAAccess, 2, forged)
	traces[0].Module("dispatch").Set(dispatch.ColOpA, 0, forged)
	forgeRegisterValue(t, traces[0].Module("register_local_finalize"), 5, forged)
	forgeRegisterValue(t, traces[0].Module("register_global_finalize"), 5, forged)
	//
	failures := NewMachine[bb]().Check(traces)
	require.NotEmpty(t, failures)
}

func TestMachine_RejectsNonCanonicalLink(t *testing.T) {
	// The jump links x1 = pc + 4 = 4, canonically (4,0,0,0).  Substitute the
	// limbs (4-256, 1, 0, 0), whose weighted sum also reduces to 4, along the
	// whole chain: the jump's write-back, the syscall's op_b read and the
	// finalize records.  The link word range check must reject the limbs.
	traces := generate(t, halting(1,
		rvm.Instruction{Opcode: rvm.JAL, OpA: 1, OpB: 8, ImmB: true, ImmC: true},
		immi(rvm.ADD, 9, 99, 0), // skipped
	), 1024)
	//
	var (
		low         = field.Uint32[bb](4).Sub(field.Uint32[bb](256))
		high        = field.One[bb]()
		cpuMod      = traces[0].Module("cpu")
		dispatchMod = traces[0].Module("dispatch")
	)
	// Jump write-back (cpu row 0, dispatch row 0).
	cpuMod.Set(cpu.ColAAccess, 0, low)
	cpuMod.Set(cpu.ColAAccess+1, 0, high)
	dispatchMod.Set(dispatch.ColOpA, 0, low)
	dispatchMod.Set(dispatch.ColOpA+1, 0, high)
	// The syscall reads the link back as op_b (cpu row 2, dispatch row 1),
	// in both the previous and the current record of the access.
	cpuMod.Set(cpu.ColBAccess, 2, low)
	cpuMod.Set(cpu.ColBAccess+1, 2, high)
	cpuMod.Set(cpu.ColBAccess+4, 2, low)
	cpuMod.Set(cpu.ColBAccess+5, 2, high)
	dispatchMod.Set(dispatch.ColOpB, 1, low)
	dispatchMod.Set(dispatch.ColOpB+1, 1, high)
	//
	forgeRegisterValue(t, traces[0].Module("register_local_finalize"), 1, low, high)
	forgeRegisterValue(t, traces[0].Module("register_global_finalize"), 1, low, high)
	//
	failures := NewMachine[bb]().Check(traces)
	require.NotEmpty(t, failures)
}

func TestMachine_Unimplemented(t *testing.T) {
	// The catch-all selector terminates the trace without the halting
	// syscall path; the exit code keeps its zero default.
	program := &rvm.Program{Instructions: []rvm.Instruction{
		immi(rvm.ADD, 1, 3, 4),
		immi(rvm.UNIMP, 0, 0, 0),
	}}
	//
	accepted(t, generate(t, program, 1024))
}

func TestMachine_ChipsStable(t *testing.T) {
	// The chip order is part of the proof structure.
	var (
		mach  = NewMachine[bb]()
		names []string
	)
	//
	for _, chip := range mach.Chips() {
		names = append(names, chip.Name())
	}
	//
	require.Equal(t, []string{
		"cpu", "dispatch", "program", "add_sub", "lt",
		"register_local_init", "register_local_finalize",
		"memory_local_init", "memory_local_finalize",
		"register_global_init", "register_global_finalize",
		"memory_global_init", "memory_global_finalize",
		"bytes",
	}, names)
}
