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

// WordSize is the number of byte limbs making up a machine word.
const WordSize = 4

// Word is a 32-bit machine word held as four byte-limb expressions, least
// significant limb first.  Words are carried limb-wise because a full 32-bit
// value does not fit the BabyBear field.
type Word[F field.Element[F]] [WordSize]Expr[F]

// LocalWord constructs a word from four consecutive columns on the current
// row, starting at the given column.
func LocalWord[F field.Element[F]](base uint) Word[F] {
	var word Word[F]
	//
	for i := range word {
		word[i] = Local[F](base + uint(i))
	}
	//
	return word
}

// ConstWord constructs a word of constants from the byte limbs of a uint32.
func ConstWord[F field.Element[F]](val uint32) Word[F] {
	var word Word[F]
	//
	for i := range word {
		word[i] = NewConst64[F](uint64((val >> (8 * i)) & 0xff))
	}
	//
	return word
}

// ZeroExtend constructs a word whose low limb is the given expression and
// whose remaining limbs are zero.
func ZeroExtend[F field.Element[F]](low Expr[F]) Word[F] {
	return Word[F]{low, Zero[F](), Zero[F](), Zero[F]()}
}

// Reduce sums the limbs weighted by powers of 2⁸.  Note that reduction is
// lossy over BabyBear (2³² exceeds the modulus): it is only meaningful where
// the word has been range checked to fit the field, or where the compared
// value is known small (e.g. exit codes).
func (p Word[F]) Reduce() Expr[F] {
	val := p[0]
	//
	for i := 1; i < WordSize; i++ {
		val = val.Add(p[i].Mul(NewConst64[F](1 << (8 * i))))
	}
	//
	return val
}

// Exprs returns the limbs of this word as a slice, least significant first.
func (p Word[F]) Exprs() []Expr[F] {
	return p[:]
}
