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

// Package bytes implements the byte table, the receiver of every byte-range
// claim.  The table is preprocessed structure, like the program table: its
// pair columns enumerate relations over fixed byte values, and the verifier
// checks the committed table against that enumeration directly, so no
// constraint here re-derives that a pair column holds a byte.  Only the
// multiplicity column is prover-supplied.  Rows are laid out from the
// multiplicities accumulated while the other tables generated their traces,
// so this table must be generated last.
package bytes

import (
	"sort"

	"github.com/consensys/go-zkvm/pkg/air"
	"github.com/consensys/go-zkvm/pkg/rvm"
	"github.com/consensys/go-zkvm/pkg/trace"
	"github.com/consensys/go-zkvm/pkg/util/field"
)

// Column layout of the byte table.
const (
	// ColOpcode of the byte-range relation.
	ColOpcode uint = iota
	// ColA operand.
	ColA
	// ColB operand.
	ColB
	// ColMultiplicity counts claims of this relation instance.
	ColMultiplicity
	// NumCols of the byte table.
	NumCols
)

// Chip is the byte table.
type Chip[F field.Element[F]] struct{}

// NewChip constructs the byte table.
func NewChip[F field.Element[F]]() Chip[F] {
	return Chip[F]{}
}

// Name implements chips.Chip.
func (p Chip[F]) Name() string {
	return "bytes"
}

// Columns implements chips.Chip.
func (p Chip[F]) Columns() []string {
	return []string{"opcode", "a", "b", "multiplicity"}
}

// Constraints implements chips.Chip.
func (p Chip[F]) Constraints() []air.Constraint[F] {
	return nil
}

// Interactions implements chips.Chip.
func (p Chip[F]) Interactions() []air.Interaction[F] {
	builder := air.NewBuilder[F]("bytes")
	builder.Receive(air.KindByte, air.ScopeLocal,
		[]air.Expr[F]{air.Local[F](ColOpcode), air.Local[F](ColA), air.Local[F](ColB)},
		air.Local[F](ColMultiplicity))
	//
	return builder.Interactions()
}

// Included implements chips.Chip.
func (p Chip[F]) Included(record *rvm.ExecutionRecord) bool {
	return len(record.ByteLookups) > 0
}

// GenerateTrace implements chips.Chip.
func (p Chip[F]) GenerateTrace(record *rvm.ExecutionRecord) *trace.Module[F] {
	// Deterministic row order.
	events := make([]rvm.ByteLookupEvent, 0, len(record.ByteLookups))
	//
	for ev := range record.ByteLookups {
		events = append(events, ev)
	}
	//
	sort.Slice(events, func(i, j int) bool {
		a, b := events[i], events[j]
		//
		if a.Opcode != b.Opcode {
			return a.Opcode < b.Opcode
		} else if a.A != b.A {
			return a.A < b.A
		}
		//
		return a.B < b.B
	})
	//
	var (
		height = trace.PaddedHeight(uint(len(events)))
		mod    = trace.NewModule[F](p.Name(), height, p.Columns())
	)
	//
	for row, ev := range events {
		mod.SetUint64(ColOpcode, row, uint64(ev.Opcode))
		mod.SetUint64(ColA, row, uint64(ev.A))
		mod.SetUint64(ColB, row, uint64(ev.B))
		mod.SetUint64(ColMultiplicity, row, uint64(record.ByteLookups[ev]))
	}
	//
	return mod
}
