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

// MemoryRecord is the state of one address at one access: the shard and
// (sub-cycle) timestamp of the access, and the value the address holds after
// it.  Register and memory consistency both chain these records.
type MemoryRecord struct {
	// Shard of the access.
	Shard uint32
	// Clk of the access.  Within one cycle, operand and memory accesses are
	// spread over distinct sub-timestamps (see AccessPosition).
	Clk uint32
	// Value held after the access.
	Value uint32
}

// AccessPosition spreads the accesses of one cycle over distinct timestamps,
// so that records within a cycle remain totally ordered.  The CPU clock
// advances by at least 4 per cycle, leaving room for all three operand
// positions plus the memory position.
type AccessPosition uint32

const (
	// PositionC is the op_c read timestamp offset.
	PositionC AccessPosition = 1
	// PositionB is the op_b read timestamp offset.
	PositionB AccessPosition = 2
	// PositionA is the op_a access timestamp offset.
	PositionA AccessPosition = 3
	// PositionMemory is the load/store timestamp offset.
	PositionMemory AccessPosition = 4
)

// MemoryLocalEvent records the first (initial) and last (final) touch of one
// address within one shard.
type MemoryLocalEvent struct {
	// Addr of the touched cell.
	Addr uint32
	// Initial record: the state of the address as this shard first saw it,
	// i.e. the previous shard's final record (or the program-initialization
	// record for the first touch ever).
	Initial MemoryRecord
	// Final record: the state of the address as this shard left it.
	Final MemoryRecord
}

// GlobalMemoryEvent records one run-boundary fact about an address: its
// program-initialization record, or its state at the very end of the run.
type GlobalMemoryEvent struct {
	// Addr of the cell.
	Addr uint32
	// Record at the run boundary.
	Record MemoryRecord
}

// AluEvent is one operation on the ALU bus: an opcode, a result and two
// operands, plus the coordinates (shard, channel, nonce) which make the
// tuple unique on the bus.
type AluEvent struct {
	// Opcode of the operation.
	Opcode Opcode
	// A is the result value.
	A uint32
	// B is the first operand.
	B uint32
	// C is the second operand.
	C uint32
	// Shard sending the tuple.
	Shard uint32
	// Channel the send was routed over.
	Channel uint32
	// Nonce distinguishing otherwise-identical tuples.
	Nonce uint32
}

// CpuEvent is one executed cycle, as emitted by the execution runtime.  It
// carries everything the CPU and dispatch tables need to lay out their rows,
// including the previous access records of each operand register.
type CpuEvent struct {
	// Shard this cycle belongs to.
	Shard uint32
	// Clk at the start of this cycle.
	Clk uint32
	// Pc of the executed instruction.
	Pc uint32
	// NextPc after the instruction.
	NextPc uint32
	// Instruction executed.
	Instruction Instruction
	// A is op_a's value after the cycle.
	A uint32
	// APrev is op_a's value before the cycle (the syscall code, for ECALL).
	APrev uint32
	// B is op_b's value.
	B uint32
	// C is op_c's value.
	C uint32
	// ARecordPrev is the previous access record of op_a's register.
	ARecordPrev MemoryRecord
	// BRecordPrev is the previous access record of op_b's register (unused
	// when op_b is an immediate).
	BRecordPrev MemoryRecord
	// CRecordPrev is the previous access record of op_c's register (unused
	// when op_c is an immediate).
	CRecordPrev MemoryRecord
	// MemAddr is the aligned address accessed (memory instructions only).
	MemAddr uint32
	// MemAddrWord is the unaligned effective address, op_b + op_c.
	MemAddrWord uint32
	// MemValue is the word held at MemAddr after the access.
	MemValue uint32
	// MemRecordPrev is the previous access record of MemAddr.
	MemRecordPrev MemoryRecord
	// IsHalt flags the cycle which ended execution.
	IsHalt bool
	// Nonces of the ALU-bus tuples this cycle gave rise to.
	AluNonce          uint32
	MemAddrNonce      uint32
	BranchLtNonce     uint32
	BranchGtNonce     uint32
	BranchTargetNonce uint32
	JumpTargetNonce   uint32
	AuipcNonce        uint32
}

// ExecutionRecord is the output of the execution runtime for one shard: the
// cycle stream, the per-bus event streams, and the byte-lookup
// multiplicities accumulated during trace generation.  This core consumes
// records; it never produces them (beyond byte lookups added while laying
// out traces).
type ExecutionRecord struct {
	// Program executed.
	Program *Program
	// Shard index (1-based).
	Shard uint32
	// Public values of the run this shard belongs to.
	Public PublicValues
	// CpuEvents, one per executed cycle.
	CpuEvents []CpuEvent
	// AluEvents, one per ALU-bus tuple.
	AluEvents []AluEvent
	// RegisterLocalEvents are the per-register initial/final records of this
	// shard.
	RegisterLocalEvents []MemoryLocalEvent
	// MemoryLocalEvents are the per-address initial/final records of this
	// shard.
	MemoryLocalEvents []MemoryLocalEvent
	// Run-boundary events.  The runtime attaches these to the final shard.
	RegisterInitEvents     []GlobalMemoryEvent
	RegisterFinalizeEvents []GlobalMemoryEvent
	MemoryInitEvents       []GlobalMemoryEvent
	MemoryFinalizeEvents   []GlobalMemoryEvent
	// ByteLookups maps byte-range claims to their multiplicities.
	ByteLookups map[ByteLookupEvent]uint
}

// NewExecutionRecord constructs an empty record for a given shard.
func NewExecutionRecord(program *Program, shard uint32) *ExecutionRecord {
	return &ExecutionRecord{
		Program:     program,
		Shard:       shard,
		ByteLookups: make(map[ByteLookupEvent]uint),
	}
}

// AddByteLookup bumps the multiplicity of a byte-range claim.
func (p *ExecutionRecord) AddByteLookup(opcode ByteOpcode, a uint32, b uint32) {
	p.ByteLookups[ByteLookupEvent{opcode, a, b}]++
}

// LookupU8 claims that both operands fit one byte.
func (p *ExecutionRecord) LookupU8(a uint32, b uint32) {
	p.AddByteLookup(ByteU8Range, a, b)
}

// LookupU16 claims that the operand fits sixteen bits.
func (p *ExecutionRecord) LookupU16(a uint32) {
	p.AddByteLookup(ByteU16Range, a, 0)
}
