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
	"github.com/consensys/go-zkvm/pkg/util/field"
)

// IsZero constrains result to be the zero indicator of x, using a committed
// inverse witness.  On rows where the gate is off, both columns may be left
// zero.  Soundness: result * x == 0 forces result to zero whenever x is
// nonzero, and result == 1 - x * inverse forces it to one whenever x is zero.
func IsZero[F field.Element[F]](builder *air.Builder[F], handle string,
	x air.Expr[F], inverse air.Expr[F], result air.Expr[F], gate air.Expr[F]) {
	//
	gated := builder.When(gate)
	//
	gated.AssertZero(handle, result.Mul(x))
	gated.AssertZero(handle, result.Add(x.Mul(inverse)).Sub(air.One[F]()))
	gated.AssertBool(handle, result)
}

// IsZeroWitness computes the (inverse, result) witness pair for one row of an
// IsZero gadget.
func IsZeroWitness[F field.Element[F]](x F) (F, F) {
	if x.IsZero() {
		return field.Zero[F](), field.One[F]()
	}
	//
	return x.Inverse(), field.Zero[F]()
}
