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
	"strings"

	"github.com/consensys/go-zkvm/pkg/util/field"
)

func (p *Add[F]) String() string {
	return nary("+", p.Args)
}

func (p *Sub[F]) String() string {
	return nary("-", p.Args)
}

func (p *Mul[F]) String() string {
	return nary("*", p.Args)
}

func (p *Constant[F]) String() string {
	return p.Value.String()
}

func (p *ColumnAccess[F]) String() string {
	if p.Shift == 0 {
		return fmt.Sprintf("#%d", p.Column)
	}
	//
	return fmt.Sprintf("(shift #%d %d)", p.Column, p.Shift)
}

func (p *PublicAccess[F]) String() string {
	return fmt.Sprintf("(public %d)", p.Index)
}

func nary[F field.Element[F]](op string, args []Expr[F]) string {
	var builder strings.Builder
	//
	builder.WriteString("(")
	builder.WriteString(op)
	//
	for _, arg := range args {
		builder.WriteString(" ")
		builder.WriteString(arg.String())
	}
	//
	builder.WriteString(")")
	//
	return builder.String()
}
