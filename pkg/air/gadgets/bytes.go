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

// SendByte sends one byte-range claim over the byte bus.  The byte table
// receives the identical tuple shape.
func SendByte[F field.Element[F]](builder *air.Builder[F], opcode rvm.ByteOpcode,
	a air.Expr[F], b air.Expr[F], multiplicity air.Expr[F]) {
	//
	builder.Send(air.KindByte, air.ScopeLocal, ByteTuple(opcode, a, b), multiplicity)
}

// ByteTuple constructs the canonical byte-bus tuple for a given claim.
func ByteTuple[F field.Element[F]](opcode rvm.ByteOpcode, a air.Expr[F], b air.Expr[F]) []air.Expr[F] {
	return []air.Expr[F]{air.NewConst64[F](uint64(opcode)), a, b}
}
