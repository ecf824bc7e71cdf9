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
package air

import (
	"github.com/consensys/go-zkvm/pkg/util/field"
)

// Kind tags an interaction with the relation it belongs to.  The proving
// backend groups tuples by kind before closing the lookup argument, so these
// identifiers are stable: adding a kind is backward-compatible, reordering
// existing ones is not.
type Kind uint8

const (
	// KindProgram relates instruction fetches to the (immutable) program table.
	KindProgram Kind = 1
	// KindRegister relates register-operand accesses to the register file
	// consistency argument.
	KindRegister Kind = 2
	// KindAlu relates operand tuples to the ALU chips.
	KindAlu Kind = 3
	// KindMemory relates load/store accesses to the memory consistency
	// argument.
	KindMemory Kind = 4
	// KindByte relates byte-range claims to the byte table.
	KindByte Kind = 5
	// KindInstruction relates CPU rows to the opcode-specific dispatch table.
	KindInstruction Kind = 6
)

func (k Kind) String() string {
	switch k {
	case KindProgram:
		return "program"
	case KindRegister:
		return "register"
	case KindAlu:
		return "alu"
	case KindMemory:
		return "memory"
	case KindByte:
		return "byte"
	case KindInstruction:
		return "instruction"
	default:
		return "unknown"
	}
}

// Kinds returns every interaction kind, in stable order.
func Kinds() []Kind {
	return []Kind{KindProgram, KindRegister, KindAlu, KindMemory, KindByte, KindInstruction}
}

// Scope determines where an interaction is matched: within a single shard,
// or across all shards of an execution.  Cross-shard facts (e.g. memory
// chaining) travel through the global scope precisely because shards are
// proved independently and possibly out of order.
type Scope uint8

const (
	// ScopeLocal interactions must cancel within one shard.
	ScopeLocal Scope = iota
	// ScopeGlobal interactions must cancel across all shards.
	ScopeGlobal
)

func (s Scope) String() string {
	if s == ScopeGlobal {
		return "global"
	}
	//
	return "local"
}

// Interaction is one side of a cross-table lookup: an ordered list of value
// expressions together with a multiplicity.  A send and a receive cancel
// when they carry identical evaluated values and kind; the running-sum
// argument closed by the backend is sound only if every legitimate fact is
// produced exactly once and consumed exactly once.
type Interaction[F field.Element[F]] struct {
	// Values making up the tuple.
	Values []Expr[F]
	// Multiplicity with which the tuple is sent (or received).  Usually a
	// boolean selector expression, so that padding rows contribute nothing.
	Multiplicity Expr[F]
	// Kind of relation this tuple belongs to.
	Kind Kind
	// Scope over which this tuple must be matched.
	Scope Scope
	// IsSend distinguishes the producing side from the consuming side.
	IsSend bool
}
