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

// Package emulator provides a small RV32 interpreter producing the execution
// records the constraint system consumes.  It exists for the CLI and for
// tests; malformed programs surface as ordinary errors here, before any
// constraint is ever evaluated.
package emulator

import (
	"fmt"
	"sort"

	log "github.com/sirupsen/logrus"

	"github.com/consensys/go-zkvm/pkg/rvm"
)

// NumRegisters of the RV32 register file.
const NumRegisters = 32

// Emulator interprets a program, splitting execution into shards of a
// configurable cycle budget and tracking the per-cell access records the
// memory argument is built from.
type Emulator struct {
	program   *rvm.Program
	shardSize uint
	// machine state
	registers [NumRegisters]uint32
	memory    map[uint32]uint32
	pc        uint32
	clk       uint32
	shard     uint32
	halted    bool
	// last access record per cell, carried across shards
	regRecords map[uint32]rvm.MemoryRecord
	memRecords map[uint32]rvm.MemoryRecord
	// first-touch records of the current shard
	regInitial map[uint32]rvm.MemoryRecord
	memInitial map[uint32]rvm.MemoryRecord
	// every cell touched over the whole run
	regTouched map[uint32]bool
	memTouched map[uint32]bool
	//
	records []*rvm.ExecutionRecord
	current *rvm.ExecutionRecord
	startPc uint32
	nonce   uint32
	public  rvm.PublicValues
}

// NewEmulator constructs an emulator for a given program and shard cycle
// budget.
func NewEmulator(program *rvm.Program, shardSize uint) *Emulator {
	emulator := &Emulator{
		program:    program,
		shardSize:  shardSize,
		memory:     make(map[uint32]uint32),
		shard:      1,
		regRecords: make(map[uint32]rvm.MemoryRecord),
		memRecords: make(map[uint32]rvm.MemoryRecord),
		regInitial: make(map[uint32]rvm.MemoryRecord),
		memInitial: make(map[uint32]rvm.MemoryRecord),
		regTouched: make(map[uint32]bool),
		memTouched: make(map[uint32]bool),
	}
	//
	for addr, value := range program.Image {
		emulator.memory[addr] = value
	}
	//
	emulator.current = rvm.NewExecutionRecord(program, 1)
	//
	return emulator
}

// Run interprets the program until it halts, returning one execution record
// per shard.  Exceeding the cycle budget, fetching outside the program or an
// unsupported/misaligned operation are structural errors: they are reported
// here and never reach constraint evaluation.
func (p *Emulator) Run(maxCycles uint64) ([]*rvm.ExecutionRecord, error) {
	var cycles uint64
	//
	for !p.halted {
		if cycles >= maxCycles {
			return nil, fmt.Errorf("cycle budget exceeded (%d cycles)", maxCycles)
		}
		//
		if err := p.step(); err != nil {
			return nil, err
		}
		//
		cycles++
		// Rotate once the shard's budget is consumed.
		if !p.halted && uint(len(p.current.CpuEvents)) >= p.shardSize {
			p.rotateShard()
		}
	}
	//
	p.closeShard()
	p.attachBoundaryEvents()
	p.bindPublicValues()
	log.Debugf("executed %d cycles over %d shard(s)", cycles, len(p.records))
	//
	return p.records, nil
}

// step executes one instruction, appending its events to the current shard.
func (p *Emulator) step() error {
	instr, ok := p.program.FetchAt(p.pc)
	//
	if !ok {
		return fmt.Errorf("no instruction at pc %#x", p.pc)
	}
	//
	var (
		row     = len(p.current.CpuEvents)
		channel = uint32(row % 4)
		ev      = rvm.CpuEvent{
			Shard:       p.shard,
			Clk:         p.clk,
			Pc:          p.pc,
			Instruction: instr,
		}
		extra uint32
	)
	// Operand reads, in timestamp order: op_c, then op_b.
	c, cPrev := p.operand(instr.OpC, instr.ImmC, rvm.PositionC)
	b, bPrev := p.operand(instr.OpB, instr.ImmB, rvm.PositionB)
	aPrev := p.registers[instr.OpA]
	ev.B, ev.C = b, c
	ev.BRecordPrev, ev.CRecordPrev = bPrev, cPrev
	ev.APrev = aPrev
	//
	var (
		a      = aPrev
		nextPc = p.pc + rvm.PcStep
		write  = true
		op     = instr.Opcode
	)
	//
	switch {
	case op == rvm.ADD:
		a = b + c
		ev.AluNonce = p.emitAlu(op, a, b, c, channel)
	case op == rvm.SUB:
		a = b - c
		ev.AluNonce = p.emitAlu(op, a, b, c, channel)
	case op == rvm.SLT:
		a = boolToWord(int32(b) < int32(c))
		ev.AluNonce = p.emitAlu(op, a, b, c, channel)
	case op == rvm.SLTU:
		a = boolToWord(b < c)
		ev.AluNonce = p.emitAlu(op, a, b, c, channel)
	case op.IsMemory():
		var err error
		//
		if a, write, err = p.stepMemory(&ev, b, c, aPrev, channel); err != nil {
			return err
		}
	case op.IsBranch():
		nextPc = p.stepBranch(&ev, b, c, aPrev, channel)
		write = false
	case op == rvm.JAL:
		nextPc = p.pc + b
		a = p.pc + rvm.PcStep
		ev.JumpTargetNonce = p.emitAlu(rvm.ADD, nextPc, p.pc, b, channel)
	case op == rvm.JALR:
		nextPc = b + c
		a = p.pc + rvm.PcStep
		ev.JumpTargetNonce = p.emitAlu(rvm.ADD, nextPc, b, c, channel)
	case op == rvm.AUIPC:
		a = p.pc + b
		ev.AuipcNonce = p.emitAlu(rvm.ADD, a, p.pc, b, channel)
	case op == rvm.ECALL:
		var err error
		//
		if nextPc, extra, err = p.stepEcall(&ev, aPrev, b, c); err != nil {
			return err
		}
	case op == rvm.UNIMP:
		p.halted = true
		nextPc = 0
	default:
		return fmt.Errorf("unsupported opcode %s at pc %#x", op, p.pc)
	}
	// op_a access at its own timestamp; branches and stores read, everyone
	// else writes back.
	if !write {
		a = aPrev
	}
	//
	ev.A = a
	ev.ARecordPrev = p.accessRegister(instr.OpA, rvm.PositionA, a)
	// Deferred memory access, at the cycle's final timestamp.
	if op.IsMemory() {
		ev.MemRecordPrev = p.accessMemory(ev.MemAddr, ev.MemValue)
	}
	//
	ev.NextPc = nextPc
	p.current.CpuEvents = append(p.current.CpuEvents, ev)
	//
	p.clk += 4 + extra
	p.pc = nextPc
	//
	return nil
}

// stepMemory resolves a load or store: effective address, alignment, and the
// extracted or injected value.  Returns op_a's new value and whether op_a is
// written back.
func (p *Emulator) stepMemory(ev *rvm.CpuEvent, b uint32, c uint32, aPrev uint32,
	channel uint32) (uint32, bool, error) {
	//
	var (
		op      = ev.Instruction.Opcode
		addrRaw = b + c
		aligned = addrRaw &^ 3
		offset  = addrRaw & 3
		prev    = p.memory[aligned]
	)
	//
	ev.MemAddrWord = addrRaw
	ev.MemAddr = aligned
	ev.MemAddrNonce = p.emitAlu(rvm.ADD, addrRaw, b, c, channel)
	//
	switch op {
	case rvm.LH, rvm.LHU, rvm.SH:
		if offset&1 != 0 {
			return 0, false, fmt.Errorf("misaligned halfword access at %#x", addrRaw)
		}
	case rvm.LW, rvm.SW:
		if offset != 0 {
			return 0, false, fmt.Errorf("misaligned word access at %#x", addrRaw)
		}
	}
	//
	if op.IsStore() {
		value := injectStore(op, prev, aPrev, offset)
		ev.MemValue = value
		p.memory[aligned] = value
		//
		return aPrev, false, nil
	}
	//
	ev.MemValue = prev
	//
	return extractLoad(op, prev, offset), true, nil
}

// stepBranch evaluates the predicate, emits the comparison and target sends,
// and returns the next pc.
func (p *Emulator) stepBranch(ev *rvm.CpuEvent, b uint32, c uint32, aPrev uint32,
	channel uint32) uint32 {
	//
	var (
		op         = ev.Instruction.Opcode
		signed     = op == rvm.BLT || op == rvm.BGE
		sltOp      = rvm.SLTU
		lt, gt     bool
		taken      bool
		target     = p.pc + c
	)
	//
	if signed {
		sltOp = rvm.SLT
		lt, gt = int32(aPrev) < int32(b), int32(aPrev) > int32(b)
	} else {
		lt, gt = aPrev < b, aPrev > b
	}
	//
	switch op {
	case rvm.BEQ:
		taken = aPrev == b
	case rvm.BNE:
		taken = aPrev != b
	case rvm.BLT, rvm.BLTU:
		taken = lt
	case rvm.BGE, rvm.BGEU:
		taken = !lt
	}
	//
	ev.BranchLtNonce = p.emitAlu(sltOp, boolToWord(lt), aPrev, b, channel)
	ev.BranchGtNonce = p.emitAlu(sltOp, boolToWord(gt), b, aPrev, channel)
	ev.BranchTargetNonce = p.emitAlu(rvm.ADD, target, p.pc, c, channel)
	//
	if taken {
		return target
	}
	//
	return p.pc + rvm.PcStep
}

// stepEcall dispatches a syscall on the code held in op_a, returning the
// next pc and the declared extra cycles.
func (p *Emulator) stepEcall(ev *rvm.CpuEvent, code uint32, b uint32, c uint32) (uint32, uint32, error) {
	extra := rvm.SyscallExtraCycles(code)
	//
	switch rvm.SyscallID(code) {
	case rvm.SyscallHalt:
		ev.IsHalt = true
		p.halted = true
		p.public.ExitCode = b
		//
		return 0, extra, nil
	case rvm.SyscallCommit, rvm.SyscallCommitDeferred:
		if b >= rvm.DigestWords {
			return 0, 0, fmt.Errorf("digest index %d out of range at pc %#x", b, p.pc)
		}
		//
		if rvm.SyscallID(code) == rvm.SyscallCommit {
			p.public.CommittedValueDigest[b] = c
		} else {
			p.public.DeferredProofsDigest[b] = c
		}
	}
	// Everything else is opaque beyond its cycle cost.
	return p.pc + rvm.PcStep, extra, nil
}

// operand resolves one of the op_b/op_c descriptors: an immediate passes
// through, a register index is read at its timestamp.
func (p *Emulator) operand(descriptor uint32, immediate bool,
	position rvm.AccessPosition) (uint32, rvm.MemoryRecord) {
	//
	if immediate {
		return descriptor, rvm.MemoryRecord{}
	}
	//
	value := p.registers[descriptor]
	//
	return value, p.accessRegister(descriptor, position, value)
}

// accessRegister records one register access, returning the previous record.
func (p *Emulator) accessRegister(reg uint32, position rvm.AccessPosition,
	value uint32) rvm.MemoryRecord {
	//
	prev, ok := p.regRecords[reg]
	//
	if !ok {
		prev = rvm.MemoryRecord{}
	}
	//
	record := rvm.MemoryRecord{Shard: p.shard, Clk: p.clk + uint32(position), Value: value}
	p.regRecords[reg] = record
	p.registers[reg] = value
	p.regTouched[reg] = true
	//
	if _, touched := p.regInitial[reg]; !touched {
		p.regInitial[reg] = prev
	}
	//
	return prev
}

// accessMemory records one memory access, returning the previous record.
func (p *Emulator) accessMemory(addr uint32, value uint32) rvm.MemoryRecord {
	prev, ok := p.memRecords[addr]
	//
	if !ok {
		prev = rvm.MemoryRecord{Value: p.program.Image[addr]}
	}
	//
	record := rvm.MemoryRecord{Shard: p.shard, Clk: p.clk + uint32(rvm.PositionMemory), Value: value}
	p.memRecords[addr] = record
	p.memTouched[addr] = true
	//
	if _, touched := p.memInitial[addr]; !touched {
		p.memInitial[addr] = prev
	}
	//
	return prev
}

// emitAlu appends one ALU event, returning its nonce.
func (p *Emulator) emitAlu(op rvm.Opcode, a uint32, b uint32, c uint32,
	channel uint32) uint32 {
	//
	nonce := p.nonce
	p.nonce++
	//
	p.current.AluEvents = append(p.current.AluEvents, rvm.AluEvent{
		Opcode:  op,
		A:       a,
		B:       b,
		C:       c,
		Shard:   p.shard,
		Channel: channel,
		Nonce:   nonce,
	})
	//
	return nonce
}

// closeShard flushes the current shard's local events and files the record.
func (p *Emulator) closeShard() {
	p.current.RegisterLocalEvents = localEvents(p.regInitial, p.regRecords)
	p.current.MemoryLocalEvents = localEvents(p.memInitial, p.memRecords)
	p.records = append(p.records, p.current)
	//
	p.current.Public = rvm.PublicValues{
		ExecutionShard: p.shard,
		StartPc:        p.startPc,
		NextPc:         p.pc,
	}
}

// rotateShard closes the current shard and opens the next one.  The clock
// restarts; cell records carry over, which is exactly what the global memory
// argument chains.
func (p *Emulator) rotateShard() {
	p.closeShard()
	//
	p.shard++
	p.clk = 0
	p.startPc = p.pc
	p.regInitial = make(map[uint32]rvm.MemoryRecord)
	p.memInitial = make(map[uint32]rvm.MemoryRecord)
	p.current = rvm.NewExecutionRecord(p.program, p.shard)
}

// attachBoundaryEvents files the run-boundary records on the final shard:
// program-initialization records for every cell ever touched, and the
// parting records of the whole run.
func (p *Emulator) attachBoundaryEvents() {
	final := p.records[len(p.records)-1]
	//
	for _, reg := range sortedKeys(p.regTouched) {
		final.RegisterInitEvents = append(final.RegisterInitEvents,
			rvm.GlobalMemoryEvent{Addr: reg, Record: rvm.MemoryRecord{}})
		final.RegisterFinalizeEvents = append(final.RegisterFinalizeEvents,
			rvm.GlobalMemoryEvent{Addr: reg, Record: p.regRecords[reg]})
	}
	//
	for _, addr := range sortedKeys(p.memTouched) {
		final.MemoryInitEvents = append(final.MemoryInitEvents,
			rvm.GlobalMemoryEvent{Addr: addr, Record: rvm.MemoryRecord{Value: p.program.Image[addr]}})
		final.MemoryFinalizeEvents = append(final.MemoryFinalizeEvents,
			rvm.GlobalMemoryEvent{Addr: addr, Record: p.memRecords[addr]})
	}
}

// bindPublicValues stamps the run-wide public values onto every shard.
func (p *Emulator) bindPublicValues() {
	for _, record := range p.records {
		record.Public.CommittedValueDigest = p.public.CommittedValueDigest
		record.Public.DeferredProofsDigest = p.public.DeferredProofsDigest
		record.Public.ExitCode = p.public.ExitCode
	}
}

// localEvents pairs each cell's first-touch record with its current state.
func localEvents(initial map[uint32]rvm.MemoryRecord,
	current map[uint32]rvm.MemoryRecord) []rvm.MemoryLocalEvent {
	//
	var events []rvm.MemoryLocalEvent
	//
	for _, addr := range sortedKeys(initial) {
		events = append(events, rvm.MemoryLocalEvent{
			Addr:    addr,
			Initial: initial[addr],
			Final:   current[addr],
		})
	}
	//
	return events
}

func sortedKeys[V any](m map[uint32]V) []uint32 {
	keys := make([]uint32, 0, len(m))
	//
	for key := range m {
		keys = append(keys, key)
	}
	//
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	//
	return keys
}

// extractLoad pulls the addressed byte/half/word out of a memory word, with
// the per-width sign-extension policy.
func extractLoad(op rvm.Opcode, word uint32, offset uint32) uint32 {
	switch op {
	case rvm.LB:
		return uint32(int32(int8(word >> (8 * offset))))
	case rvm.LBU:
		return (word >> (8 * offset)) & 0xff
	case rvm.LH:
		return uint32(int32(int16(word >> (8 * offset))))
	case rvm.LHU:
		return (word >> (8 * offset)) & 0xffff
	default:
		return word
	}
}

// injectStore writes the low byte/half/word of a value into a memory word at
// the addressed position.
func injectStore(op rvm.Opcode, word uint32, value uint32, offset uint32) uint32 {
	switch op {
	case rvm.SB:
		shift := 8 * offset
		//
		return (word &^ (0xff << shift)) | ((value & 0xff) << shift)
	case rvm.SH:
		shift := 8 * offset
		//
		return (word &^ (0xffff << shift)) | ((value & 0xffff) << shift)
	default:
		return value
	}
}

func boolToWord(b bool) uint32 {
	if b {
		return 1
	}
	//
	return 0
}
