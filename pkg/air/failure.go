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
)

// Failure provides structural information about a failing constraint or an
// unmatched interaction.  Failures are not Go errors: a failure means the
// trace does not satisfy the constraint system, and the only outcome is
// proof rejection.
type Failure interface {
	// Message provides a suitable error message.
	Message() string
}

// VanishingFailure indicates a vanishing constraint which did not evaluate
// to zero on some row.
type VanishingFailure struct {
	// Handle of the failing constraint.
	Handle string
	// Row on which the constraint failed.
	Row uint
	// Value the constraint evaluated to.
	Value string
}

// Message provides a suitable error message.
func (p *VanishingFailure) Message() string {
	return fmt.Sprintf("constraint \"%s\" does not hold (row %d, value %s)", p.Handle, p.Row, p.Value)
}

func (p *VanishingFailure) String() string {
	return p.Message()
}

// InteractionFailure indicates a tuple whose sent and received multiplicities
// did not cancel over the relevant scope.  Listing the exact unmatched tuple
// matters: a silent off-by-one in the lookup argument is the hardest class of
// bug to find by inspection alone.
type InteractionFailure struct {
	// Kind of the unmatched interaction.
	Kind Kind
	// Scope over which matching was attempted.
	Scope Scope
	// Tuple values (as field element strings).
	Tuple []string
	// Net multiplicity (sends minus receives).
	Net string
	// Chips which contributed to this tuple.
	Chips []string
}

// Message provides a suitable error message.
func (p *InteractionFailure) Message() string {
	return fmt.Sprintf("unmatched %s interaction in %s scope: (%s) net %s [from %s]",
		p.Kind, p.Scope, strings.Join(p.Tuple, ", "), p.Net, strings.Join(p.Chips, ", "))
}

func (p *InteractionFailure) String() string {
	return p.Message()
}
