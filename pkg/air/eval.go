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
	"github.com/consensys/go-zkvm/pkg/trace"
	"github.com/consensys/go-zkvm/pkg/util/field"
)

// EvalAt evaluates the sum of the arguments at a given row.
func (p *Add[F]) EvalAt(row int, env trace.Environment[F]) F {
	val := field.Zero[F]()
	//
	for _, arg := range p.Args {
		val = val.Add(arg.EvalAt(row, env))
	}
	//
	return val
}

// EvalAt evaluates the subtraction of the arguments at a given row.
func (p *Sub[F]) EvalAt(row int, env trace.Environment[F]) F {
	var val F
	//
	for i, arg := range p.Args {
		if i == 0 {
			val = arg.EvalAt(row, env)
		} else {
			val = val.Sub(arg.EvalAt(row, env))
		}
	}
	//
	return val
}

// EvalAt evaluates the product of the arguments at a given row.
func (p *Mul[F]) EvalAt(row int, env trace.Environment[F]) F {
	val := field.One[F]()
	//
	for _, arg := range p.Args {
		// Shortcut when already zero.
		if val.IsZero() {
			return val
		}
		//
		val = val.Mul(arg.EvalAt(row, env))
	}
	//
	return val
}

// EvalAt returns the constant, ignoring the row.
func (p *Constant[F]) EvalAt(row int, env trace.Environment[F]) F {
	return p.Value
}

// EvalAt reads the (possibly shifted) column value at a given row.
func (p *ColumnAccess[F]) EvalAt(row int, env trace.Environment[F]) F {
	return env.Module.Get(p.Column, row+p.Shift)
}

// EvalAt reads the given public value, ignoring the row.
func (p *PublicAccess[F]) EvalAt(row int, env trace.Environment[F]) F {
	return env.Public[p.Index]
}
