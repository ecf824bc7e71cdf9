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

// Package chips defines the interface every table of the machine implements,
// together with the shapes shared between tables: the instruction-class
// selector block and the canonical tuple layouts of each bus.  Tuple layouts
// live here because a send and its receive must agree element for element,
// and the two sides are different chips.
package chips

import (
	"github.com/consensys/go-zkvm/pkg/air"
	"github.com/consensys/go-zkvm/pkg/rvm"
	"github.com/consensys/go-zkvm/pkg/trace"
	"github.com/consensys/go-zkvm/pkg/util/field"
)

// Chip is one table of the machine: a fixed column layout, a set of
// vanishing constraints and interactions over those columns, and a trace
// generator turning an execution record into rows.  The column count and
// ordering exposed here are part of the proof's public structure.
type Chip[F field.Element[F]] interface {
	// Name of this chip, used as the module name and constraint prefix.
	Name() string
	// Columns returns the column names, in layout order.
	Columns() []string
	// Constraints returns the vanishing constraints of this chip.
	Constraints() []air.Constraint[F]
	// Interactions returns the bus interactions of this chip.
	Interactions() []air.Interaction[F]
	// GenerateTrace lays out this chip's rows for a given record.  Byte
	// lookups accumulated during layout are added to the record, hence the
	// byte table must be generated last.
	GenerateTrace(record *rvm.ExecutionRecord) *trace.Module[F]
	// Included determines whether this chip is instantiated at all for a
	// given record.
	Included(record *rvm.ExecutionRecord) bool
}

// NumChannels is the number of round-robin lookup channels.
const NumChannels = 4
