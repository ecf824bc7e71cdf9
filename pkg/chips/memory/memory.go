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

// Package memory implements the consistency tables for the register and
// memory buses.  Within a shard, every access hands back the previous record
// of its cell and claims the current one; these tables terminate the
// resulting chains.  Initialize holds a shard's first-touch records: it
// receives them locally (closing the shard's chain head) and sends them
// globally (claiming them from the preceding shard).  Finalize is the dual:
// it sends locally (closing the chain tail) and receives globally (offering
// the shard's parting state to its successor).  Matching global sends and
// receives across shards proves the cross-shard chaining without ever
// aligning rows.  Two further boundary tables bracket the whole run: one
// receives the program-initialization records in the global scope, the other
// sends the end-of-run records into it.
package memory

import (
	"github.com/consensys/go-zkvm/pkg/air"
	"github.com/consensys/go-zkvm/pkg/chips"
	"github.com/consensys/go-zkvm/pkg/rvm"
	"github.com/consensys/go-zkvm/pkg/trace"
	"github.com/consensys/go-zkvm/pkg/util/field"
)

// Mode distinguishes the two dual roles of a consistency table.
type Mode uint8

const (
	// Initialize holds first-touch records.
	Initialize Mode = iota
	// Finalize holds last-touch records.
	Finalize
)

func (m Mode) String() string {
	if m == Initialize {
		return "init"
	}
	//
	return "finalize"
}

// Column layout of every consistency table.
const (
	// ColShard of the record.
	ColShard uint = iota
	// ColClk of the record.
	ColClk
	// ColAddr of the cell (a register index on the register bus).
	ColAddr
	// ColValue held by the cell (four byte limbs).
	ColValue
	// ColIsReal distinguishes genuine rows from padding.
	ColIsReal = ColValue + 4
	// NumCols of a consistency table.
	NumCols = ColIsReal + 1
)

// Chip is one consistency table: a (kind, mode, boundary) instance.
type Chip[F field.Element[F]] struct {
	kind air.Kind
	mode Mode
	// boundary tables bracket the whole run rather than one shard.
	boundary bool
}

// NewLocalChip constructs the per-shard consistency table of a bus.
func NewLocalChip[F field.Element[F]](kind air.Kind, mode Mode) Chip[F] {
	return Chip[F]{kind, mode, false}
}

// NewBoundaryChip constructs the run-boundary table of a bus.
func NewBoundaryChip[F field.Element[F]](kind air.Kind, mode Mode) Chip[F] {
	return Chip[F]{kind, mode, true}
}

// Name implements chips.Chip.
func (p Chip[F]) Name() string {
	scope := "local"
	//
	if p.boundary {
		scope = "global"
	}
	//
	return p.kind.String() + "_" + scope + "_" + p.mode.String()
}

// Columns implements chips.Chip.
func (p Chip[F]) Columns() []string {
	return []string{
		"shard", "clk", "addr",
		"value_0", "value_1", "value_2", "value_3",
		"is_real",
	}
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
	var (
		builder = air.NewBuilder[F](p.Name())
		isReal  = air.Local[F](ColIsReal)
		tuple   = chips.MemoryTuple(air.Local[F](ColShard), air.Local[F](ColClk),
			air.Local[F](ColAddr), air.LocalWord[F](ColValue))
	)
	// Padding rows carry zero multiplicity; their tuple trivially equals
	// itself and nets nothing.
	builder.AssertBool("is_real", isReal)
	//
	switch {
	case p.boundary && p.mode == Initialize:
		builder.Receive(p.kind, air.ScopeGlobal, tuple, isReal)
	case p.boundary:
		builder.Send(p.kind, air.ScopeGlobal, tuple, isReal)
	case p.mode == Initialize:
		builder.Send(p.kind, air.ScopeGlobal, tuple, isReal)
		builder.Receive(p.kind, air.ScopeLocal, tuple, isReal)
	default:
		builder.Receive(p.kind, air.ScopeGlobal, tuple, isReal)
		builder.Send(p.kind, air.ScopeLocal, tuple, isReal)
	}
	//
	return builder
}

// records selects the event stream this table lays out.
func (p Chip[F]) records(record *rvm.ExecutionRecord) []rvm.GlobalMemoryEvent {
	if p.boundary {
		switch {
		case p.kind == air.KindRegister && p.mode == Initialize:
			return record.RegisterInitEvents
		case p.kind == air.KindRegister:
			return record.RegisterFinalizeEvents
		case p.mode == Initialize:
			return record.MemoryInitEvents
		default:
			return record.MemoryFinalizeEvents
		}
	}
	//
	var (
		locals []rvm.MemoryLocalEvent
		events []rvm.GlobalMemoryEvent
	)
	//
	if p.kind == air.KindRegister {
		locals = record.RegisterLocalEvents
	} else {
		locals = record.MemoryLocalEvents
	}
	//
	for _, ev := range locals {
		rec := ev.Initial
		//
		if p.mode == Finalize {
			rec = ev.Final
		}
		//
		events = append(events, rvm.GlobalMemoryEvent{Addr: ev.Addr, Record: rec})
	}
	//
	return events
}

// Included implements chips.Chip.  An empty table is omitted entirely rather
// than padded from zero.
func (p Chip[F]) Included(record *rvm.ExecutionRecord) bool {
	return len(p.records(record)) > 0
}

// GenerateTrace implements chips.Chip.
func (p Chip[F]) GenerateTrace(record *rvm.ExecutionRecord) *trace.Module[F] {
	var (
		events = p.records(record)
		height = trace.PaddedHeight(uint(len(events)))
		mod    = trace.NewModule[F](p.Name(), height, p.Columns())
	)
	//
	for row, ev := range events {
		mod.SetUint64(ColShard, row, uint64(ev.Record.Shard))
		mod.SetUint64(ColClk, row, uint64(ev.Record.Clk))
		mod.SetUint64(ColAddr, row, uint64(ev.Addr))
		//
		for i := range uint(air.WordSize) {
			mod.SetUint64(ColValue+i, row, uint64((ev.Record.Value>>(8*i))&0xff))
		}
		//
		mod.SetUint64(ColIsReal, row, 1)
	}
	//
	return mod
}
