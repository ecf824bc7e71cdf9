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
	"fmt"

	"github.com/consensys/go-zkvm/pkg/trace"
	"github.com/consensys/go-zkvm/pkg/util/field"
)

// Expr represents an expression in the Arithmetic Intermediate Representation
// (AIR).  Any expression in this form corresponds to a polynomial over the
// columns of a single module (and, via row shifts, its adjacent rows) and the
// public values vector.
type Expr[F field.Element[F]] interface {
	fmt.Stringer
	// EvalAt evaluates this expression on a given row of a module.
	EvalAt(row int, env trace.Environment[F]) F
	// MaxShift returns the largest (positive) row shift used anywhere within
	// this expression.  Constraints whose expressions shift forwards must be
	// confined to transition rows.
	MaxShift() int
	// Add two expressions together, producing a third.
	Add(Expr[F]) Expr[F]
	// Sub (subtract) one expression from another.
	Sub(Expr[F]) Expr[F]
	// Mul (multiply) two expressions together, producing a third.
	Mul(Expr[F]) Expr[F]
}

// ============================================================================
// Addition
// ============================================================================

// Add represents the sum over zero or more expressions.
type Add[F field.Element[F]] struct{ Args []Expr[F] }

// Sum constructs the sum of zero or more expressions.
func Sum[F field.Element[F]](exprs ...Expr[F]) Expr[F] {
	return &Add[F]{exprs}
}

// Add two expressions together, producing a third.
func (p *Add[F]) Add(other Expr[F]) Expr[F] { return &Add[F]{[]Expr[F]{p, other}} }

// Sub (subtract) one expression from another.
func (p *Add[F]) Sub(other Expr[F]) Expr[F] { return &Sub[F]{[]Expr[F]{p, other}} }

// Mul (multiply) two expressions together, producing a third.
func (p *Add[F]) Mul(other Expr[F]) Expr[F] { return &Mul[F]{[]Expr[F]{p, other}} }

// MaxShift returns the largest row shift used within this expression.
func (p *Add[F]) MaxShift() int { return maxShiftOfArray(p.Args) }

// ============================================================================
// Subtraction
// ============================================================================

// Sub represents the subtraction over one or more expressions.
type Sub[F field.Element[F]] struct{ Args []Expr[F] }

// Add two expressions together, producing a third.
func (p *Sub[F]) Add(other Expr[F]) Expr[F] { return &Add[F]{[]Expr[F]{p, other}} }

// Sub (subtract) one expression from another.
func (p *Sub[F]) Sub(other Expr[F]) Expr[F] { return &Sub[F]{[]Expr[F]{p, other}} }

// Mul (multiply) two expressions together, producing a third.
func (p *Sub[F]) Mul(other Expr[F]) Expr[F] { return &Mul[F]{[]Expr[F]{p, other}} }

// MaxShift returns the largest row shift used within this expression.
func (p *Sub[F]) MaxShift() int { return maxShiftOfArray(p.Args) }

// ============================================================================
// Multiplication
// ============================================================================

// Mul represents the product over zero or more expressions.
type Mul[F field.Element[F]] struct{ Args []Expr[F] }

// Product constructs the product of zero or more expressions.
func Product[F field.Element[F]](exprs ...Expr[F]) Expr[F] {
	return &Mul[F]{exprs}
}

// Add two expressions together, producing a third.
func (p *Mul[F]) Add(other Expr[F]) Expr[F] { return &Add[F]{[]Expr[F]{p, other}} }

// Sub (subtract) one expression from another.
func (p *Mul[F]) Sub(other Expr[F]) Expr[F] { return &Sub[F]{[]Expr[F]{p, other}} }

// Mul (multiply) two expressions together, producing a third.
func (p *Mul[F]) Mul(other Expr[F]) Expr[F] { return &Mul[F]{[]Expr[F]{p, other}} }

// MaxShift returns the largest row shift used within this expression.
func (p *Mul[F]) MaxShift() int { return maxShiftOfArray(p.Args) }

// ============================================================================
// Constant
// ============================================================================

// Constant represents a constant value within an expression.
type Constant[F field.Element[F]] struct{ Value F }

// NewConst constructs an AIR expression representing a given constant.
func NewConst[F field.Element[F]](val F) Expr[F] {
	return &Constant[F]{val}
}

// NewConst64 constructs an AIR expression representing a given constant from
// a uint64.
func NewConst64[F field.Element[F]](val uint64) Expr[F] {
	return &Constant[F]{field.Uint64[F](val)}
}

// Zero constructs the constant zero expression.
func Zero[F field.Element[F]]() Expr[F] {
	return &Constant[F]{field.Zero[F]()}
}

// One constructs the constant one expression.
func One[F field.Element[F]]() Expr[F] {
	return &Constant[F]{field.One[F]()}
}

// Not constructs the expression 1 - e, the boolean complement of e (assuming
// e is boolean).
func Not[F field.Element[F]](e Expr[F]) Expr[F] {
	return One[F]().Sub(e)
}

// Add two expressions together, producing a third.
func (p *Constant[F]) Add(other Expr[F]) Expr[F] { return &Add[F]{[]Expr[F]{p, other}} }

// Sub (subtract) one expression from another.
func (p *Constant[F]) Sub(other Expr[F]) Expr[F] { return &Sub[F]{[]Expr[F]{p, other}} }

// Mul (multiply) two expressions together, producing a third.
func (p *Constant[F]) Mul(other Expr[F]) Expr[F] { return &Mul[F]{[]Expr[F]{p, other}} }

// MaxShift returns the largest row shift used within this expression.  A
// constant has zero shift.
func (p *Constant[F]) MaxShift() int { return 0 }

// ============================================================================
// Column Access
// ============================================================================

// ColumnAccess represents reading the value held at a given column in the
// tabular context.  Furthermore, the current row may be shifted forwards by a
// given amount: a shift of one accesses the column on the "next" row, which
// is how adjacent-row constraints (e.g. pc chaining) are expressed.
type ColumnAccess[F field.Element[F]] struct {
	Column uint
	Shift  int
}

// NewColumnAccess constructs an AIR expression representing the value of a
// given column on the current row (shift zero) or a following row.
func NewColumnAccess[F field.Element[F]](column uint, shift int) Expr[F] {
	return &ColumnAccess[F]{column, shift}
}

// Local constructs an access of the given column on the current row.
func Local[F field.Element[F]](column uint) Expr[F] {
	return &ColumnAccess[F]{column, 0}
}

// Next constructs an access of the given column on the following row.
func Next[F field.Element[F]](column uint) Expr[F] {
	return &ColumnAccess[F]{column, 1}
}

// Add two expressions together, producing a third.
func (p *ColumnAccess[F]) Add(other Expr[F]) Expr[F] { return &Add[F]{[]Expr[F]{p, other}} }

// Sub (subtract) one expression from another.
func (p *ColumnAccess[F]) Sub(other Expr[F]) Expr[F] { return &Sub[F]{[]Expr[F]{p, other}} }

// Mul (multiply) two expressions together, producing a third.
func (p *ColumnAccess[F]) Mul(other Expr[F]) Expr[F] { return &Mul[F]{[]Expr[F]{p, other}} }

// MaxShift returns the largest row shift used within this expression.
func (p *ColumnAccess[F]) MaxShift() int {
	if p.Shift > 0 {
		return p.Shift
	}
	//
	return 0
}

// ============================================================================
// Public Value Access
// ============================================================================

// PublicAccess represents reading a value of the public values vector, which
// is shared read-only input to every row's constraints.
type PublicAccess[F field.Element[F]] struct {
	Index uint
}

// NewPublicAccess constructs an AIR expression representing the value of a
// given public input.
func NewPublicAccess[F field.Element[F]](index uint) Expr[F] {
	return &PublicAccess[F]{index}
}

// Add two expressions together, producing a third.
func (p *PublicAccess[F]) Add(other Expr[F]) Expr[F] { return &Add[F]{[]Expr[F]{p, other}} }

// Sub (subtract) one expression from another.
func (p *PublicAccess[F]) Sub(other Expr[F]) Expr[F] { return &Sub[F]{[]Expr[F]{p, other}} }

// Mul (multiply) two expressions together, producing a third.
func (p *PublicAccess[F]) Mul(other Expr[F]) Expr[F] { return &Mul[F]{[]Expr[F]{p, other}} }

// MaxShift returns the largest row shift used within this expression.
func (p *PublicAccess[F]) MaxShift() int { return 0 }

// ============================================================================
// Helpers
// ============================================================================

func maxShiftOfArray[F field.Element[F]](args []Expr[F]) int {
	shift := 0
	//
	for _, arg := range args {
		if s := arg.MaxShift(); s > shift {
			shift = s
		}
	}
	//
	return shift
}
