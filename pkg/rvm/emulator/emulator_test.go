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
package emulator

import (
	"testing"

	"github.com/consensys/go-zkvm/pkg/rvm"
)

// reg constructs a register-register instruction.
func reg(op rvm.Opcode, a uint32, b uint32, c uint32) rvm.Instruction {
	return rvm.Instruction{Opcode: op, OpA: a, OpB: b, OpC: c}
}

// immi constructs an instruction whose op_b and op_c are both immediates.
func immi(op rvm.Opcode, a uint32, b uint32, c uint32) rvm.Instruction {
	return rvm.Instruction{Opcode: op, OpA: a, OpB: b, OpC: c, ImmB: true, ImmC: true}
}

// regimm constructs an instruction with a register op_b and immediate op_c.
func regimm(op rvm.Opcode, a uint32, b uint32, c uint32) rvm.Instruction {
	return rvm.Instruction{Opcode: op, OpA: a, OpB: b, OpC: c, ImmC: true}
}

// halting appends the canonical halt sequence: load the halt code into x5,
// then trap with the exit code read from a given register.
func halting(exitReg uint32, body ...rvm.Instruction) *rvm.Program {
	instructions := append(body,
		immi(rvm.ADD, 5, rvm.SyscallHalt, 0),
		reg(rvm.ECALL, 5, exitReg, 6),
	)
	//
	return &rvm.Program{Instructions: instructions}
}

func run(t *testing.T, program *rvm.Program, shardSize uint) []*rvm.ExecutionRecord {
	t.Helper()
	//
	records, err := NewEmulator(program, shardSize).Run(1 << 16)
	if err != nil {
		t.Fatal(err)
	}
	//
	return records
}

func exitCode(records []*rvm.ExecutionRecord) uint32 {
	return records[len(records)-1].Public.ExitCode
}

func TestEmulator_Add(t *testing.T) {
	records := run(t, halting(1, immi(rvm.ADD, 1, 3, 4)), 1024)
	//
	if n := len(records); n != 1 {
		t.Fatalf("expected one shard, got %d", n)
	}
	//
	if code := exitCode(records); code != 7 {
		t.Errorf("expected exit code 7, got %d", code)
	}
	//
	if n := len(records[0].CpuEvents); n != 3 {
		t.Errorf("expected 3 cycles, got %d", n)
	}
	// Two adds; the trap contributes nothing to the ALU bus.
	if n := len(records[0].AluEvents); n != 2 {
		t.Errorf("expected 2 alu events, got %d", n)
	}
}

func TestEmulator_ClkDiscipline(t *testing.T) {
	records := run(t, halting(1, immi(rvm.ADD, 1, 3, 4)), 1024)
	//
	for i, ev := range records[0].CpuEvents {
		if ev.Clk != uint32(i*4) {
			t.Errorf("cycle %d: expected clk %d, got %d", i, i*4, ev.Clk)
		}
	}
	// ALU sends are routed over four round-robin channels.
	for _, ev := range records[0].AluEvents {
		if ev.Channel >= 4 {
			t.Errorf("alu event on channel %d", ev.Channel)
		}
	}
}

func TestEmulator_ExtraCycles(t *testing.T) {
	// An opaque syscall declaring three extra cycles in byte 2 of its code.
	code := rvm.SyscallWrite | 3<<16
	records := run(t, halting(1,
		immi(rvm.ADD, 1, 7, 0),
		immi(rvm.ADD, 5, code, 0),
		reg(rvm.ECALL, 5, 6, 6),
	), 1024)
	//
	events := records[0].CpuEvents
	// The cycle following the syscall starts 4 + 3 later.
	syscall, next := events[2], events[3]
	//
	if next.Clk != syscall.Clk+7 {
		t.Errorf("expected clk %d after syscall, got %d", syscall.Clk+7, next.Clk)
	}
	//
	if code := exitCode(records); code != 7 {
		t.Errorf("expected exit code 7, got %d", code)
	}
}

func TestEmulator_SubWraps(t *testing.T) {
	// 0 - 5 wraps to 0xfffffffb; adding 6 brings it to 1.
	records := run(t, halting(1,
		immi(rvm.SUB, 1, 0, 5),
		regimm(rvm.ADD, 1, 1, 6),
	), 1024)
	//
	if code := exitCode(records); code != 1 {
		t.Errorf("expected exit code 1, got %d", code)
	}
}

func TestEmulator_BranchLoop(t *testing.T) {
	// Sum 3 + 2 + 1 by counting x1 down to zero.
	records := run(t, halting(2,
		immi(rvm.ADD, 1, 3, 0),
		immi(rvm.ADD, 2, 0, 0),
		reg(rvm.ADD, 2, 2, 1),
		regimm(rvm.SUB, 1, 1, 1),
		regimm(rvm.BNE, 1, 0, -8&0xffffffff),
	), 1024)
	//
	if code := exitCode(records); code != 6 {
		t.Errorf("expected exit code 6, got %d", code)
	}
	// Every branch cycle emits exactly three alu events (lt, gt, target).
	branches := 0
	//
	for _, shard := range records {
		for _, ev := range shard.CpuEvents {
			if ev.Instruction.Opcode.IsBranch() {
				branches++
			}
		}
	}
	//
	if branches != 3 {
		t.Errorf("expected 3 branch cycles, got %d", branches)
	}
}

func TestEmulator_SignedBranch(t *testing.T) {
	// -5 < 3 under signed comparison, so the branch is taken.
	records := run(t, halting(3,
		immi(rvm.SUB, 1, 0, 5),
		immi(rvm.ADD, 2, 3, 0),
		regimm(rvm.BLT, 1, 2, 12),
		immi(rvm.ADD, 3, 7, 0),
		immi(rvm.JAL, 6, 8, 0),
		immi(rvm.ADD, 3, 1, 0),
	), 1024)
	//
	if code := exitCode(records); code != 1 {
		t.Errorf("expected exit code 1, got %d", code)
	}
}

func TestEmulator_Jumps(t *testing.T) {
	records := run(t, halting(4,
		rvm.Instruction{Opcode: rvm.JAL, OpA: 1, OpB: 8, ImmB: true, ImmC: true},
		immi(rvm.ADD, 9, 99, 0),
		rvm.Instruction{Opcode: rvm.AUIPC, OpA: 2, OpB: 12, ImmB: true, ImmC: true},
		regimm(rvm.JALR, 3, 2, 0),
		immi(rvm.ADD, 9, 98, 0),
		reg(rvm.ADD, 4, 1, 3),
	), 1024)
	// x1 = 4 (link), x2 = 8 + 12 = 20, x3 = 16 (link), x4 = 20.
	if code := exitCode(records); code != 20 {
		t.Errorf("expected exit code 20, got %d", code)
	}
}

func TestEmulator_LoadsAndStores(t *testing.T) {
	program := halting(8,
		immi(rvm.ADD, 1, 100, 0),
		regimm(rvm.LB, 2, 1, 0),  // 0x01
		regimm(rvm.LBU, 3, 1, 3), // 0x80
		regimm(rvm.LH, 4, 1, 0),  // 0x7f01
		regimm(rvm.LHU, 6, 1, 2), // 0x80ff
		regimm(rvm.LB, 9, 1, 2),  // 0xff, sign extended
		regimm(rvm.SB, 3, 1, 4),  // mem[104] = 0x80
		regimm(rvm.LW, 7, 1, 4),
		regimm(rvm.ADD, 8, 9, 3), // -1 + 3 = 2
		reg(rvm.ADD, 8, 8, 7),    // 2 + 128 = 130
	)
	program.Image = map[uint32]uint32{100: 0x80ff7f01}
	//
	records := run(t, program, 1024)
	//
	if code := exitCode(records); code != 130 {
		t.Errorf("expected exit code 130, got %d", code)
	}
	// Address 100 is image-initialized, 104 is not.
	final := records[len(records)-1]
	//
	if n := len(final.MemoryInitEvents); n != 2 {
		t.Errorf("expected 2 memory init events, got %d", n)
	}
	//
	if final.MemoryInitEvents[0].Record.Value != 0x80ff7f01 {
		t.Errorf("unexpected init value %#x", final.MemoryInitEvents[0].Record.Value)
	}
}

func TestEmulator_Sharding(t *testing.T) {
	records := run(t, halting(1,
		immi(rvm.ADD, 1, 1, 0),
		regimm(rvm.ADD, 1, 1, 2),
		regimm(rvm.ADD, 1, 1, 3),
		regimm(rvm.ADD, 1, 1, 4),
	), 2)
	//
	if n := len(records); n != 3 {
		t.Fatalf("expected 3 shards, got %d", n)
	}
	//
	for i, record := range records {
		if record.Shard != uint32(i+1) {
			t.Errorf("shard %d: unexpected index %d", i, record.Shard)
		}
		// The clock restarts in every shard.
		if record.CpuEvents[0].Clk != 0 {
			t.Errorf("shard %d: clock did not restart", i)
		}
		// Each shard picks up where its predecessor left off.
		if i > 0 && record.Public.StartPc != records[i-1].Public.NextPc {
			t.Errorf("shard %d: start pc %d does not chain", i, record.Public.StartPc)
		}
	}
	//
	if code := exitCode(records); code != 10 {
		t.Errorf("expected exit code 10, got %d", code)
	}
	// Run-boundary events live on the final shard only.
	if len(records[0].RegisterInitEvents) != 0 {
		t.Errorf("boundary events attached to first shard")
	}
	//
	if len(records[2].RegisterInitEvents) == 0 {
		t.Errorf("no boundary events on final shard")
	}
}

func TestEmulator_LocalEventsChain(t *testing.T) {
	records := run(t, halting(1,
		immi(rvm.ADD, 1, 1, 0),
		regimm(rvm.ADD, 1, 1, 2),
		regimm(rvm.ADD, 1, 1, 3),
	), 1)
	// x1 is touched in shards 1, 2 and 3; each shard's initial record must
	// be its predecessor's final one.
	var last *rvm.MemoryRecord
	//
	for _, record := range records {
		for _, ev := range record.RegisterLocalEvents {
			if ev.Addr != 1 {
				continue
			}
			//
			if last != nil && ev.Initial != *last {
				t.Errorf("shard %d: initial record %v does not chain from %v",
					record.Shard, ev.Initial, *last)
			}
			//
			final := ev.Final
			last = &final
		}
	}
}

func TestEmulator_Commit(t *testing.T) {
	records := run(t, halting(6,
		immi(rvm.ADD, 5, rvm.SyscallCommit, 0),
		immi(rvm.ADD, 10, 0, 0),
		immi(rvm.ADD, 11, 42, 0),
		reg(rvm.ECALL, 5, 10, 11),
	), 1024)
	//
	public := records[len(records)-1].Public
	//
	if public.CommittedValueDigest[0] != 42 {
		t.Errorf("expected committed digest word 42, got %d", public.CommittedValueDigest[0])
	}
}

func TestEmulator_Errors(t *testing.T) {
	// Unsupported opcode.
	_, err := NewEmulator(halting(1, immi(rvm.XOR, 1, 1, 2)), 1024).Run(1 << 16)
	if err == nil {
		t.Errorf("expected error for unsupported opcode")
	}
	// Misaligned word access.
	_, err = NewEmulator(halting(1,
		immi(rvm.ADD, 1, 101, 0),
		regimm(rvm.LW, 2, 1, 0),
	), 1024).Run(1 << 16)
	if err == nil {
		t.Errorf("expected error for misaligned load")
	}
	// Runaway program.
	_, err = NewEmulator(&rvm.Program{Instructions: []rvm.Instruction{
		immi(rvm.JAL, 6, 0, 0),
	}}, 1024).Run(100)
	if err == nil {
		t.Errorf("expected error for exceeded cycle budget")
	}
	// Digest index out of range.
	_, err = NewEmulator(halting(1,
		immi(rvm.ADD, 5, rvm.SyscallCommit, 0),
		immi(rvm.ADD, 10, 8, 0),
		reg(rvm.ECALL, 5, 10, 11),
	), 1024).Run(1 << 16)
	if err == nil {
		t.Errorf("expected error for digest index out of range")
	}
}
