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
package field

import (
	"fmt"
)

// An Element of a prime-order field.  Implementations are expected to have
// value semantics, with the zero value of the implementing type representing
// the additive identity of the field.
type Element[Operand any] interface {
	fmt.Stringer
	// Add x+y
	Add(y Operand) Operand
	// Sub x-y
	Sub(y Operand) Operand
	// Mul x*y
	Mul(y Operand) Operand
	// Neg -x
	Neg() Operand
	// Inverse x⁻¹, or 0 if x = 0.
	Inverse() Operand
	// Cmp returns 1 if x > y, 0 if x = y, and -1 if x < y.
	Cmp(y Operand) int
	// Check whether this value is zero (or not).
	IsZero() bool
	// Check whether this value is one (or not).
	IsOne() bool
	// Equals checks whether this value equals another.
	Equals(y Operand) bool
	// SetUint64 constructs the element representing a given uint64, reduced
	// into the field.
	SetUint64(val uint64) Operand
	// SetBytes constructs an element from big-endian bytes.
	SetBytes(bytes []byte) Operand
	// Bytes returns the big-endian encoding of this element.
	Bytes() []byte
	// ToUint64 returns the numerical value of x, which must fit a uint64.
	ToUint64() uint64
	// Text returns the numerical value of x in the given base.
	Text(base int) string
}

// Zero constructs a field element representing 0.
func Zero[F Element[F]]() F {
	var element F
	//
	return element
}

// One constructs a field element representing 1.
func One[F Element[F]]() F {
	var element F
	//
	return element.SetUint64(1)
}

// Uint64 constructs a field element from a given uint64.
func Uint64[F Element[F]](val uint64) F {
	var element F
	//
	return element.SetUint64(val)
}

// Uint32 constructs a field element from a given uint32.
func Uint32[F Element[F]](val uint32) F {
	return Uint64[F](uint64(val))
}

// ToUint32 returns the numerical value of an element which must fit a uint32.
func ToUint32[F Element[F]](val F) uint32 {
	v := val.ToUint64()
	//
	if v >= 1<<32 {
		panic(fmt.Sprintf("cannot convert to uint32: %d", v))
	}
	//
	return uint32(v)
}
