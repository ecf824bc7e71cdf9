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
package babybear

import (
	"math/rand/v2"
	"testing"

	"github.com/consensys/go-zkvm/pkg/util/field"
)

func TestElement_ZeroValue(t *testing.T) {
	// The zero value must be the additive identity.
	var zero Element
	//
	if !zero.IsZero() {
		t.Errorf("zero value is not zero")
	}
	//
	x := field.Uint64[Element](1234)
	//
	if !x.Add(zero).Equals(x) {
		t.Errorf("zero value is not the additive identity")
	}
}

func TestElement_Arithmetic(t *testing.T) {
	for range 10000 {
		a := rand.Uint64N(Modulus)
		b := rand.Uint64N(Modulus)
		//
		var (
			x   = field.Uint64[Element](a)
			y   = field.Uint64[Element](b)
			sum = (a + b) % Modulus
			mul = (a * b) % Modulus
		)
		//
		if got := x.Add(y).ToUint64(); got != sum {
			t.Fatalf("%d + %d: expected %d, got %d", a, b, sum, got)
		}
		//
		if got := x.Mul(y).ToUint64(); got != mul {
			t.Fatalf("%d * %d: expected %d, got %d", a, b, mul, got)
		}
		//
		if got := x.Sub(y).Add(y); !got.Equals(x) {
			t.Fatalf("%d - %d + %d: expected %d, got %s", a, b, b, a, got)
		}
	}
}

func TestElement_Inverse(t *testing.T) {
	for range 1000 {
		a := 1 + rand.Uint64N(Modulus-1)
		x := field.Uint64[Element](a)
		//
		if got := x.Mul(x.Inverse()); !got.IsOne() {
			t.Fatalf("%d * %d⁻¹: expected 1, got %s", a, a, got)
		}
	}
	// Zero inverts to zero, by convention.
	if got := field.Zero[Element]().Inverse(); !got.IsZero() {
		t.Errorf("0⁻¹: expected 0, got %s", got)
	}
}

func TestElement_Reduction(t *testing.T) {
	// SetUint64 reduces into the field.
	x := field.Uint64[Element](Modulus)
	//
	if !x.IsZero() {
		t.Errorf("modulus did not reduce to zero")
	}
	//
	y := field.Uint64[Element](Modulus + 7)
	//
	if y.ToUint64() != 7 {
		t.Errorf("expected 7, got %s", y)
	}
}

func TestElement_Negation(t *testing.T) {
	x := field.Uint64[Element](5)
	//
	if got := x.Add(x.Neg()); !got.IsZero() {
		t.Errorf("5 + (-5): expected 0, got %s", got)
	}
	//
	if got := x.Neg().ToUint64(); got != Modulus-5 {
		t.Errorf("-5: expected %d, got %d", Modulus-5, got)
	}
}
