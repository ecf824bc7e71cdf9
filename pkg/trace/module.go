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
package trace

import (
	"fmt"

	"github.com/consensys/go-zkvm/pkg/util/field"
)

// Column represents a single named column within a trace module.  Data is
// stored column-major since constraint evaluation walks rows of individual
// columns far more often than whole rows.
type Column[F field.Element[F]] struct {
	// Name of this column (for reporting).
	Name string
	// Data held in this column.
	Data []F
}

// Module is the trace of a single table (chip): a rectangular grid of field
// elements with a fixed column layout and a height padded to a power of two.
// The column count and ordering are part of the proof's public structure and
// must remain stable.
type Module[F field.Element[F]] struct {
	name    string
	height  uint
	columns []Column[F]
}

// NewModule constructs a zero-filled module with the given column names and
// height.  Height is not rounded here; use PaddedHeight to determine the
// required height up front.
func NewModule[F field.Element[F]](name string, height uint, columns []string) *Module[F] {
	cols := make([]Column[F], len(columns))
	//
	for i, n := range columns {
		cols[i] = Column[F]{Name: n, Data: make([]F, height)}
	}
	//
	return &Module[F]{name, height, cols}
}

// Name of the chip this module is a trace of.
func (p *Module[F]) Name() string {
	return p.name
}

// Height returns the number of rows in this module.
func (p *Module[F]) Height() uint {
	return p.height
}

// Width returns the number of columns in this module.
func (p *Module[F]) Width() uint {
	return uint(len(p.columns))
}

// Column returns the ith column of this module.
func (p *Module[F]) Column(index uint) *Column[F] {
	return &p.columns[index]
}

// Get returns the value held at a given column and row.  Out-of-bounds
// accesses indicate a broken constraint domain and hence panic.
func (p *Module[F]) Get(col uint, row int) F {
	if row < 0 || row >= int(p.height) {
		panic(fmt.Sprintf("module %s: row %d out of bounds (height %d)", p.name, row, p.height))
	}
	//
	return p.columns[col].Data[row]
}

// Set assigns the value held at a given column and row.
func (p *Module[F]) Set(col uint, row int, val F) {
	p.columns[col].Data[row] = val
}

// SetUint64 assigns the value held at a given column and row from a uint64.
func (p *Module[F]) SetUint64(col uint, row int, val uint64) {
	p.columns[col].Data[row] = field.Uint64[F](val)
}

// PaddedHeight returns the smallest power of two which is at least the given
// number of rows, and at least two (so that every module has a transition).
func PaddedHeight(rows uint) uint {
	height := uint(2)
	//
	for height < rows {
		height *= 2
	}
	//
	return height
}
