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

// Domain determines which rows of a module a vanishing constraint applies to.
type Domain uint8

const (
	// DomainAll applies a constraint to every row.
	DomainAll Domain = iota
	// DomainFirstRow applies a constraint to the first row only.
	DomainFirstRow
	// DomainLastRow applies a constraint to the last row only.
	DomainLastRow
	// DomainTransition applies a constraint to every row except the last,
	// permitting expressions which access the following row.
	DomainTransition
)

func (d Domain) String() string {
	switch d {
	case DomainFirstRow:
		return "first"
	case DomainLastRow:
		return "last"
	case DomainTransition:
		return "transition"
	default:
		return "all"
	}
}

// Constraint specifies a vanishing constraint: an expression which must
// evaluate to zero on every row of its domain.  There is no recovery path
// for a failing constraint; it renders the proof unsatisfiable.
type Constraint[F field.Element[F]] struct {
	// Handle is a unique identifier for this constraint, useful primarily for
	// knowing which constraint failed.
	Handle string
	// Domain over which this constraint applies.
	Domain Domain
	// Term which must vanish over the domain.
	Term Expr[F]
}

// NewConstraint constructs a new vanishing constraint.
func NewConstraint[F field.Element[F]](handle string, domain Domain, term Expr[F]) Constraint[F] {
	if term.MaxShift() > 0 && domain == DomainAll {
		panic(fmt.Sprintf("constraint %s: forward shift requires a transition domain", handle))
	}
	//
	return Constraint[F]{handle, domain, term}
}

// Accepts checks whether this constraint evaluates to zero on every row of
// its domain.  If so, nil is returned; otherwise a failure identifying the
// offending row.
func (p *Constraint[F]) Accepts(env trace.Environment[F]) Failure {
	var (
		height     = int(env.Module.Height())
		start, end int
	)
	//
	switch p.Domain {
	case DomainFirstRow:
		start, end = 0, 1
	case DomainLastRow:
		start, end = height-1, height
	case DomainTransition:
		start, end = 0, height-1
	default:
		start, end = 0, height
	}
	//
	for row := start; row < end; row++ {
		if val := p.Term.EvalAt(row, env); !val.IsZero() {
			return &VanishingFailure{p.Handle, uint(row), val.String()}
		}
	}
	// Success
	return nil
}
