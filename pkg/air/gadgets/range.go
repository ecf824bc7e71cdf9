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
package gadgets

import (
	"github.com/consensys/go-zkvm/pkg/air"
	"github.com/consensys/go-zkvm/pkg/rvm"
	"github.com/consensys/go-zkvm/pkg/util/field"
)

// RangeCheckU24 constrains value to 24 bits, by decomposing it into a 16-bit
// limb and an 8-bit limb and sending both over the byte bus.  The
// decomposition columns are committed by the caller; all constraints are
// gated on multiplicity, so padding rows may leave them zero.
func RangeCheckU24[F field.Element[F]](builder *air.Builder[F], handle string,
	value air.Expr[F], limb16 air.Expr[F], limb8 air.Expr[F], multiplicity air.Expr[F]) {
	// value = limb16 + limb8 * 2^16
	recomposed := limb16.Add(limb8.Mul(air.NewConst64[F](1 << 16)))
	builder.When(multiplicity).AssertEq(handle, value, recomposed)
	//
	SendByte(builder, rvm.ByteU16Range, limb16, air.Zero[F](), multiplicity)
	SendByte(builder, rvm.ByteU8Range, limb8, air.Zero[F](), multiplicity)
}

// WordRangeCheck constrains a word of byte limbs to represent a canonical
// field element, i.e. a value strictly below the BabyBear modulus.  The three
// low limbs are byte-checked pairwise; the top limb is decomposed into bits
// (committed by the caller) and required to stay at or below 0x77, which is
// exactly bit 7 clear and bits 6..3 not all set.
func WordRangeCheck[F field.Element[F]](builder *air.Builder[F], handle string,
	word air.Word[F], topBits [8]air.Expr[F], multiplicity air.Expr[F]) {
	//
	gated := builder.When(multiplicity)
	// Bit decomposition of the top limb.
	recomposed := air.Zero[F]()
	//
	for i, bit := range topBits {
		gated.AssertBool(handle, bit)
		recomposed = recomposed.Add(bit.Mul(air.NewConst64[F](1 << i)))
	}
	//
	gated.AssertEq(handle, word[3], recomposed)
	// Top limb <= 0x77: bit 7 clear, bits 6..3 not simultaneously set.
	gated.AssertZero(handle, topBits[7])
	gated.AssertZero(handle, topBits[6].Mul(topBits[5]).Mul(topBits[4]).Mul(topBits[3]))
	// Low limbs are plain bytes.
	SendByte(builder, rvm.ByteU8Range, word[0], word[1], multiplicity)
	SendByte(builder, rvm.ByteU8Range, word[2], word[3], multiplicity)
}
