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
package trace

import (
	"github.com/consensys/go-zkvm/pkg/util/field"
)

// Environment packages everything needed to evaluate an expression at a given
// row: the enclosing module and the (read-only) public values vector.
type Environment[F field.Element[F]] struct {
	// Module being evaluated.
	Module *Module[F]
	// Public values shared by every row of every module.
	Public []F
}

// Trace holds the generated modules of every chip for one shard, keyed by
// chip name, together with the shard's public values.
type Trace[F field.Element[F]] struct {
	modules map[string]*Module[F]
	// Public values vector for this shard.
	Public []F
}

// NewTrace constructs an empty trace with the given public values.
func NewTrace[F field.Element[F]](public []F) *Trace[F] {
	return &Trace[F]{make(map[string]*Module[F]), public}
}

// Add registers a module under its own name.  A module may only be added
// once.
func (p *Trace[F]) Add(module *Module[F]) {
	if _, ok := p.modules[module.Name()]; ok {
		panic("duplicate trace module: " + module.Name())
	}
	//
	p.modules[module.Name()] = module
}

// Module returns the module for a given chip name, or nil if the chip was not
// included in this shard.
func (p *Trace[F]) Module(name string) *Module[F] {
	return p.modules[name]
}

// Environment constructs the evaluation environment for a given chip.
func (p *Trace[F]) Environment(name string) Environment[F] {
	return Environment[F]{p.modules[name], p.Public}
}
