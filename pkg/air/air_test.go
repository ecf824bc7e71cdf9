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
	"testing"

	"github.com/consensys/go-zkvm/pkg/trace"
	"github.com/consensys/go-zkvm/pkg/util/field"
	"github.com/consensys/go-zkvm/pkg/util/field/babybear"
)

type bb = babybear.Element

// env constructs a two-column module from row-major values, along with an
// optional public values vector.
func env(rows [][2]uint64, public ...uint64) trace.Environment[bb] {
	mod := trace.NewModule[bb]("test", uint(len(rows)), []string{"x", "y"})
	//
	for i, row := range rows {
		mod.SetUint64(0, i, row[0])
		mod.SetUint64(1, i, row[1])
	}
	//
	vec := make([]bb, len(public))
	//
	for i, val := range public {
		vec[i] = field.Uint64[bb](val)
	}
	//
	return trace.Environment[bb]{Module: mod, Public: vec}
}

func TestExpr_Eval(t *testing.T) {
	var (
		e    = env([][2]uint64{{3, 4}, {5, 6}}, 10)
		x    = Local[bb](0)
		y    = Local[bb](1)
		p    = NewPublicAccess[bb](0)
		expr = x.Mul(y).Add(NewConst64[bb](2)).Sub(p)
	)
	// 3*4 + 2 - 10 = 4
	if got := expr.EvalAt(0, e); got.ToUint64() != 4 {
		t.Errorf("expected 4, got %s", got)
	}
	// 5*6 + 2 - 10 = 22
	if got := expr.EvalAt(1, e); got.ToUint64() != 22 {
		t.Errorf("expected 22, got %s", got)
	}
}

func TestExpr_NextRow(t *testing.T) {
	var (
		e    = env([][2]uint64{{3, 4}, {5, 6}})
		expr = Next[bb](0).Sub(Local[bb](0))
	)
	//
	if got := expr.EvalAt(0, e); got.ToUint64() != 2 {
		t.Errorf("expected 2, got %s", got)
	}
	//
	if expr.MaxShift() != 1 {
		t.Errorf("expected shift 1, got %d", expr.MaxShift())
	}
}

func TestExpr_Negative(t *testing.T) {
	// 3 - 4 lands on the field's representation of -1.
	var (
		e    = env([][2]uint64{{3, 4}})
		expr = Local[bb](0).Sub(Local[bb](1))
	)
	//
	if got := expr.EvalAt(0, e); !got.Add(field.One[bb]()).IsZero() {
		t.Errorf("expected -1, got %s", got)
	}
}

func TestConstraint_Domains(t *testing.T) {
	e := env([][2]uint64{{1, 0}, {2, 0}, {3, 0}})
	// Holds on the first row only.
	first := NewConstraint("first", DomainFirstRow, Local[bb](0).Sub(One[bb]()))
	if failure := first.Accepts(e); failure != nil {
		t.Errorf("unexpected failure: %s", failure.Message())
	}
	// Fails on the last row.
	last := NewConstraint("last", DomainLastRow, Local[bb](0).Sub(One[bb]()))
	if last.Accepts(e) == nil {
		t.Errorf("expected failure on last row")
	}
	// x increments on every transition.
	step := NewConstraint("step", DomainTransition,
		Next[bb](0).Sub(Local[bb](0)).Sub(One[bb]()))
	if failure := step.Accepts(e); failure != nil {
		t.Errorf("unexpected failure: %s", failure.Message())
	}
	// Holding everywhere fails here on row 1.
	all := NewConstraint("all", DomainAll, Local[bb](0).Sub(One[bb]()))
	failure := all.Accepts(e)
	//
	if failure == nil {
		t.Fatalf("expected failure")
	}
	//
	if vf, ok := failure.(*VanishingFailure); !ok || vf.Row != 1 {
		t.Errorf("expected failure on row 1, got %s", failure.Message())
	}
}

func TestConstraint_ShiftRequiresTransition(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("expected panic for shifted constraint on the all-rows domain")
		}
	}()
	//
	NewConstraint("bad", DomainAll, Next[bb](0))
}

func TestBuilder_Gating(t *testing.T) {
	var (
		builder = NewBuilder[bb]("test")
		e       = env([][2]uint64{{0, 9}, {1, 5}})
	)
	// y = 5 is only required where x is set; row 0 violates it ungated.
	builder.When(Local[bb](0)).AssertEq("gated", Local[bb](1), NewConst64[bb](5))
	//
	constraints := builder.Constraints()
	//
	if n := len(constraints); n != 1 {
		t.Fatalf("expected one constraint, got %d", n)
	}
	//
	if failure := constraints[0].Accepts(e); failure != nil {
		t.Errorf("unexpected failure: %s", failure.Message())
	}
	//
	if constraints[0].Handle != "test/gated" {
		t.Errorf("unexpected handle %s", constraints[0].Handle)
	}
}

func TestBuilder_AssertBool(t *testing.T) {
	var (
		builder = NewBuilder[bb]("test")
		e       = env([][2]uint64{{0, 0}, {1, 2}})
	)
	//
	builder.AssertBool("x_bool", Local[bb](0))
	builder.AssertBool("y_bool", Local[bb](1))
	//
	constraints := builder.Constraints()
	//
	if failure := constraints[0].Accepts(e); failure != nil {
		t.Errorf("unexpected failure: %s", failure.Message())
	}
	//
	if constraints[1].Accepts(e) == nil {
		t.Errorf("expected failure for non-boolean column")
	}
}

func TestBuilder_Interactions(t *testing.T) {
	builder := NewBuilder[bb]("test")
	//
	builder.Send(KindAlu, ScopeLocal, []Expr[bb]{Local[bb](0)}, One[bb]())
	builder.Receive(KindMemory, ScopeGlobal, []Expr[bb]{Local[bb](1)}, Local[bb](0))
	//
	interactions := builder.Interactions()
	//
	if n := len(interactions); n != 2 {
		t.Fatalf("expected two interactions, got %d", n)
	}
	//
	send, receive := interactions[0], interactions[1]
	//
	if !send.IsSend || send.Kind != KindAlu || send.Scope != ScopeLocal {
		t.Errorf("malformed send")
	}
	//
	if receive.IsSend || receive.Kind != KindMemory || receive.Scope != ScopeGlobal {
		t.Errorf("malformed receive")
	}
}

func TestWord_Reduce(t *testing.T) {
	var (
		e    = env([][2]uint64{{0, 0}})
		word = ConstWord[bb](0x01020304)
	)
	//
	if got := word.Reduce().EvalAt(0, e); got.ToUint64() != 0x01020304 {
		t.Errorf("expected 0x01020304, got %s", got)
	}
	//
	ext := ZeroExtend(NewConst64[bb](7))
	//
	if got := ext.Reduce().EvalAt(0, e); got.ToUint64() != 7 {
		t.Errorf("expected 7, got %s", got)
	}
}
