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
package machine

import (
	"sort"
	"strings"

	"github.com/consensys/go-zkvm/pkg/air"
	"github.com/consensys/go-zkvm/pkg/trace"
	"github.com/consensys/go-zkvm/pkg/util/field"
)

// tupleKey identifies one tuple instance within a kind.
type tupleKey struct {
	kind   air.Kind
	values string
}

// tupleNet accumulates the signed multiplicity of one tuple instance, and
// remembers who contributed to it.
type tupleNet[F field.Element[F]] struct {
	tuple []string
	net   F
	chips map[string]bool
}

// CheckInteractions nets every interaction of a given scope over the given
// traces (one trace for the local scope, all shards for the global scope)
// and reports each tuple whose sends and receives do not cancel exactly.
// This module checks the lookup argument as exact multiset cancellation; the
// random-challenge running sum belongs to the proving backend.  A kinds
// filter restricts the check (nil means every kind), which is useful when
// debugging a single bus.
func (p *Machine[F]) CheckInteractions(traces []*trace.Trace[F], scope air.Scope,
	kinds []air.Kind) []air.Failure {
	//
	nets := make(map[tupleKey]*tupleNet[F])
	//
	for _, tr := range traces {
		for _, chip := range p.chips {
			if tr.Module(chip.Name()) == nil {
				continue
			}
			//
			env := tr.Environment(chip.Name())
			//
			for _, interaction := range chip.Interactions() {
				if interaction.Scope != scope || !kindSelected(kinds, interaction.Kind) {
					continue
				}
				//
				accumulate(nets, chip.Name(), interaction, env)
			}
		}
	}
	//
	return unmatched(nets, scope)
}

// accumulate evaluates one interaction on every row of its module, folding
// each row's tuple into the running nets.
func accumulate[F field.Element[F]](nets map[tupleKey]*tupleNet[F], chip string,
	interaction air.Interaction[F], env trace.Environment[F]) {
	//
	height := int(env.Module.Height())
	//
	for row := 0; row < height; row++ {
		mult := interaction.Multiplicity.EvalAt(row, env)
		//
		if mult.IsZero() {
			continue
		}
		//
		tuple := make([]string, len(interaction.Values))
		//
		for i, value := range interaction.Values {
			tuple[i] = value.EvalAt(row, env).String()
		}
		//
		key := tupleKey{interaction.Kind, strings.Join(tuple, ",")}
		entry, ok := nets[key]
		//
		if !ok {
			entry = &tupleNet[F]{tuple, field.Zero[F](), make(map[string]bool)}
			nets[key] = entry
		}
		//
		if interaction.IsSend {
			entry.net = entry.net.Add(mult)
		} else {
			entry.net = entry.net.Sub(mult)
		}
		//
		entry.chips[chip] = true
	}
}

// unmatched turns every non-cancelling net into a failure, deterministically
// ordered.
func unmatched[F field.Element[F]](nets map[tupleKey]*tupleNet[F], scope air.Scope) []air.Failure {
	var failures []air.Failure
	//
	keys := make([]tupleKey, 0, len(nets))
	//
	for key := range nets {
		keys = append(keys, key)
	}
	//
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].kind != keys[j].kind {
			return keys[i].kind < keys[j].kind
		}
		//
		return keys[i].values < keys[j].values
	})
	//
	for _, key := range keys {
		entry := nets[key]
		//
		if entry.net.IsZero() {
			continue
		}
		//
		contributors := make([]string, 0, len(entry.chips))
		//
		for chip := range entry.chips {
			contributors = append(contributors, chip)
		}
		//
		sort.Strings(contributors)
		failures = append(failures, &air.InteractionFailure{
			Kind:  key.kind,
			Scope: scope,
			Tuple: entry.tuple,
			Net:   entry.net.String(),
			Chips: contributors,
		})
	}
	//
	return failures
}

// kindSelected determines whether a kind passes the filter.
func kindSelected(kinds []air.Kind, kind air.Kind) bool {
	if len(kinds) == 0 {
		return true
	}
	//
	for _, k := range kinds {
		if k == kind {
			return true
		}
	}
	//
	return false
}
