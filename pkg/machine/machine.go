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

// Package machine assembles the chips into the full constraint system and
// checks generated traces against it: every vanishing constraint of every
// included chip, and the exact cancellation of every interaction tuple, per
// shard in the local scope and across shards in the global scope.
package machine

import (
	"sort"
	"sync"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/consensys/go-zkvm/pkg/air"
	"github.com/consensys/go-zkvm/pkg/chips"
	"github.com/consensys/go-zkvm/pkg/chips/alu"
	"github.com/consensys/go-zkvm/pkg/chips/bytes"
	"github.com/consensys/go-zkvm/pkg/chips/cpu"
	"github.com/consensys/go-zkvm/pkg/chips/dispatch"
	"github.com/consensys/go-zkvm/pkg/chips/memory"
	"github.com/consensys/go-zkvm/pkg/chips/program"
	"github.com/consensys/go-zkvm/pkg/rvm"
	"github.com/consensys/go-zkvm/pkg/trace"
	"github.com/consensys/go-zkvm/pkg/util/field"
)

// Machine is the full RISC-V constraint system: the fixed set of chips,
// in a stable order.
type Machine[F field.Element[F]] struct {
	chips []chips.Chip[F]
}

// NewMachine assembles the machine.  The byte table sits last: its rows are
// derived from the lookups every other table accumulates while generating
// its trace.
func NewMachine[F field.Element[F]]() *Machine[F] {
	return &Machine[F]{
		chips: []chips.Chip[F]{
			cpu.NewChip[F](),
			dispatch.NewChip[F](),
			program.NewChip[F](),
			alu.NewAddSubChip[F](),
			alu.NewLtChip[F](),
			memory.NewLocalChip[F](air.KindRegister, memory.Initialize),
			memory.NewLocalChip[F](air.KindRegister, memory.Finalize),
			memory.NewLocalChip[F](air.KindMemory, memory.Initialize),
			memory.NewLocalChip[F](air.KindMemory, memory.Finalize),
			memory.NewBoundaryChip[F](air.KindRegister, memory.Initialize),
			memory.NewBoundaryChip[F](air.KindRegister, memory.Finalize),
			memory.NewBoundaryChip[F](air.KindMemory, memory.Initialize),
			memory.NewBoundaryChip[F](air.KindMemory, memory.Finalize),
			bytes.NewChip[F](),
		},
	}
}

// Chips returns the assembled chips, in stable order.
func (p *Machine[F]) Chips() []chips.Chip[F] {
	return p.chips
}

// GenerateTraces lays out the modules of every included chip for one shard.
func (p *Machine[F]) GenerateTraces(record *rvm.ExecutionRecord) *trace.Trace[F] {
	tr := trace.NewTrace(rvm.PublicValuesVec[F](record.Public))
	//
	for _, chip := range p.chips {
		if chip.Included(record) {
			mod := chip.GenerateTrace(record)
			log.Debugf("chip %s: %d x %d", chip.Name(), mod.Height(), mod.Width())
			tr.Add(mod)
		}
	}
	//
	return tr
}

// CheckShard checks one shard's trace: every vanishing constraint of every
// included chip (chips in parallel), then local-scope interaction
// cancellation.  All failures are collected rather than stopping at the
// first.
func (p *Machine[F]) CheckShard(tr *trace.Trace[F]) []air.Failure {
	var (
		mu       sync.Mutex
		failures []air.Failure
		group    errgroup.Group
	)
	//
	for _, chip := range p.chips {
		if tr.Module(chip.Name()) == nil {
			continue
		}
		//
		group.Go(func() error {
			var (
				env   = tr.Environment(chip.Name())
				local []air.Failure
			)
			//
			for _, c := range chip.Constraints() {
				if failure := c.Accepts(env); failure != nil {
					local = append(local, failure)
				}
			}
			//
			if len(local) > 0 {
				mu.Lock()
				failures = append(failures, local...)
				mu.Unlock()
			}
			//
			return nil
		})
	}
	// Row evaluation never errors; failures travel through the slice.
	_ = group.Wait()
	//
	failures = append(failures, p.CheckInteractions([]*trace.Trace[F]{tr}, air.ScopeLocal, nil)...)
	sortFailures(failures)
	//
	return failures
}

// Check checks a full run: every shard locally, then global-scope
// interaction cancellation across all shards.
func (p *Machine[F]) Check(traces []*trace.Trace[F]) []air.Failure {
	var failures []air.Failure
	//
	for _, tr := range traces {
		failures = append(failures, p.CheckShard(tr)...)
	}
	//
	failures = append(failures, p.CheckInteractions(traces, air.ScopeGlobal, nil)...)
	//
	return failures
}

// sortFailures orders failures deterministically, since chips are checked in
// parallel.
func sortFailures(failures []air.Failure) {
	sort.Slice(failures, func(i, j int) bool {
		return failures[i].Message() < failures[j].Message()
	})
}
