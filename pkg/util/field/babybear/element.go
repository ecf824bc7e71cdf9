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
	"fmt"

	bb "github.com/consensys/gnark-crypto/field/babybear"
)

// Modulus of the BabyBear field (15 * 2²⁷ + 1).  Word values (four byte
// limbs) do not fit this field, which is why word-valued columns are carried
// in byte limbs and only reduced where a reduction is provably safe.
const Modulus uint64 = 2013265921

// Element wraps babybear.Element from gnark-crypto to conform to the
// field.Element interface.
type Element struct {
	bb.Element
}

// Add x + y
func (x Element) Add(y Element) Element {
	var res bb.Element
	//
	res.Add(&x.Element, &y.Element)
	//
	return Element{res}
}

// Sub x - y
func (x Element) Sub(y Element) Element {
	var res bb.Element
	//
	res.Sub(&x.Element, &y.Element)
	//
	return Element{res}
}

// Mul x * y
func (x Element) Mul(y Element) Element {
	var res bb.Element
	//
	res.Mul(&x.Element, &y.Element)
	//
	return Element{res}
}

// Neg -x
func (x Element) Neg() Element {
	var res bb.Element
	//
	res.Neg(&x.Element)
	//
	return Element{res}
}

// Inverse x⁻¹, or 0 if x = 0.
func (x Element) Inverse() Element {
	var res bb.Element
	//
	res.Inverse(&x.Element)
	//
	return Element{res}
}

// Cmp returns 1 if x > y, 0 if x = y, and -1 if x < y.
func (x Element) Cmp(y Element) int {
	return x.Element.Cmp(&y.Element)
}

// IsZero implementation for the Element interface.
func (x Element) IsZero() bool {
	return x.Element.IsZero()
}

// IsOne implementation for the Element interface.
func (x Element) IsOne() bool {
	return x.Element.IsOne()
}

// Equals implementation for the Element interface.
func (x Element) Equals(y Element) bool {
	return x.Element.Equal(&y.Element)
}

// SetUint64 implementation for the Element interface.
func (x Element) SetUint64(val uint64) Element {
	x.Element.SetUint64(val)
	//
	return x
}

// SetBytes implementation for the Element interface.
func (x Element) SetBytes(bytes []byte) Element {
	x.Element.SetBytes(bytes)
	//
	return x
}

// Bytes returns the big-endian encoded value of this element.
func (x Element) Bytes() []byte {
	return x.Marshal()
}

// ToUint64 returns the numerical value of x.
func (x Element) ToUint64() uint64 {
	if !x.IsUint64() {
		panic(fmt.Errorf("cannot convert to uint64: %s", x.String()))
	}
	//
	return x.Uint64()
}

func (x Element) String() string {
	return x.Element.String()
}

// Text implementation for the Element interface.
func (x Element) Text(base int) string {
	return x.Element.Text(base)
}
