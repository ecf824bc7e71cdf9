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

// Builder accumulates the vanishing constraints and interactions of a single
// chip.  Conditions established with When (and friends) multiply into every
// subsequently asserted term, which mirrors how row constraints are gated by
// selector columns.  Builders returned by When share the underlying
// constraint set with their parent.
type Builder[F field.Element[F]] struct {
	chip         string
	condition    Expr[F]
	domain       Domain
	constraints  *[]Constraint[F]
	interactions *[]Interaction[F]
}

// NewBuilder constructs an empty builder for a chip with a given name.  The
// name prefixes every constraint handle.
func NewBuilder[F field.Element[F]](chip string) *Builder[F] {
	var (
		constraints  []Constraint[F]
		interactions []Interaction[F]
	)
	//
	return &Builder[F]{chip, nil, DomainAll, &constraints, &interactions}
}

// When returns a derived builder whose assertions are additionally gated by
// the given (boolean) condition.
func (p *Builder[F]) When(condition Expr[F]) *Builder[F] {
	derived := *p
	//
	if p.condition != nil {
		derived.condition = p.condition.Mul(condition)
	} else {
		derived.condition = condition
	}
	//
	return &derived
}

// WhenNot returns a derived builder gated by the complement of the given
// (boolean) condition.
func (p *Builder[F]) WhenNot(condition Expr[F]) *Builder[F] {
	return p.When(Not(condition))
}

// WhenTransition returns a derived builder whose assertions apply to every
// row except the last, permitting access to the following row.
func (p *Builder[F]) WhenTransition() *Builder[F] {
	derived := *p
	derived.domain = DomainTransition
	//
	return &derived
}

// WhenFirstRow returns a derived builder whose assertions apply to the first
// row only.
func (p *Builder[F]) WhenFirstRow() *Builder[F] {
	derived := *p
	derived.domain = DomainFirstRow
	//
	return &derived
}

// WhenLastRow returns a derived builder whose assertions apply to the last
// row only.
func (p *Builder[F]) WhenLastRow() *Builder[F] {
	derived := *p
	derived.domain = DomainLastRow
	//
	return &derived
}

// AssertZero requires that a given expression vanishes over the current
// domain (under the current condition).
func (p *Builder[F]) AssertZero(handle string, term Expr[F]) {
	if p.condition != nil {
		term = p.condition.Mul(term)
	}
	//
	*p.constraints = append(*p.constraints, NewConstraint(p.chip+"/"+handle, p.domain, term))
}

// AssertEq requires that two expressions agree over the current domain.
func (p *Builder[F]) AssertEq(handle string, lhs Expr[F], rhs Expr[F]) {
	p.AssertZero(handle, lhs.Sub(rhs))
}

// AssertOne requires that a given expression equals one over the current
// domain.
func (p *Builder[F]) AssertOne(handle string, term Expr[F]) {
	p.AssertZero(handle, term.Sub(One[F]()))
}

// AssertBool requires that a given expression is boolean over the current
// domain.
func (p *Builder[F]) AssertBool(handle string, term Expr[F]) {
	p.AssertZero(handle, term.Mul(term.Sub(One[F]())))
}

// AssertWordEq requires that two words agree limb-by-limb over the current
// domain.
func (p *Builder[F]) AssertWordEq(handle string, lhs Word[F], rhs Word[F]) {
	for i := range lhs {
		p.AssertZero(handle, lhs[i].Sub(rhs[i]))
	}
}

// Send emits one tuple of a given kind into a given scope with a given
// multiplicity.  Note that, unlike assertions, the multiplicity is taken as
// is: callers gate sends by passing a selector-derived multiplicity.
func (p *Builder[F]) Send(kind Kind, scope Scope, values []Expr[F], multiplicity Expr[F]) {
	*p.interactions = append(*p.interactions, Interaction[F]{values, multiplicity, kind, scope, true})
}

// Receive consumes one tuple of a given kind from a given scope with a given
// multiplicity.
func (p *Builder[F]) Receive(kind Kind, scope Scope, values []Expr[F], multiplicity Expr[F]) {
	*p.interactions = append(*p.interactions, Interaction[F]{values, multiplicity, kind, scope, false})
}

// Constraints returns all constraints accumulated so far.
func (p *Builder[F]) Constraints() []Constraint[F] {
	return *p.constraints
}

// Interactions returns all interactions accumulated so far.
func (p *Builder[F]) Interactions() []Interaction[F] {
	return *p.interactions
}
