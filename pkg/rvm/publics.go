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
package rvm

import (
	"github.com/consensys/go-zkvm/pkg/util/field"
)

// DigestWords is the number of words making up each public digest.
const DigestWords = 8

// PublicValues is the fixed-size public input of one shard proof.  It is
// written once, before constraint evaluation begins, and read-only
// thereafter.  The field order of its vector form is part of the proof's
// public structure and must be preserved exactly.
type PublicValues struct {
	// ExecutionShard this proof covers.
	ExecutionShard uint32
	// StartPc of the first real row.
	StartPc uint32
	// NextPc the shard hands over to its successor (or the halt pc).
	NextPc uint32
	// CommittedValueDigest accumulated by COMMIT syscalls.
	CommittedValueDigest [DigestWords]uint32
	// DeferredProofsDigest accumulated by COMMIT_DEFERRED_PROOFS syscalls.
	DeferredProofsDigest [DigestWords]uint32
	// ExitCode declared by the halting instruction.
	ExitCode uint32
}

// Indices into the public values vector.  Committed digest words are spread
// over four byte limbs each; deferred digest entries are single field
// elements.
const (
	// PvExecutionShard indexes the execution shard.
	PvExecutionShard uint = 0
	// PvStartPc indexes the start pc.
	PvStartPc uint = 1
	// PvNextPc indexes the next pc.
	PvNextPc uint = 2
	// PvCommittedDigest is the base index of the committed-value digest.
	PvCommittedDigest uint = 3
	// PvDeferredDigest is the base index of the deferred-proofs digest.
	PvDeferredDigest uint = PvCommittedDigest + DigestWords*4
	// PvExitCode indexes the exit code.
	PvExitCode uint = PvDeferredDigest + DigestWords
	// PvLen is the length of the public values vector.
	PvLen uint = PvExitCode + 1
)

// PublicValuesVec flattens public values into their vector form, in the
// documented field order.
func PublicValuesVec[F field.Element[F]](pv PublicValues) []F {
	vec := make([]F, PvLen)
	//
	vec[PvExecutionShard] = field.Uint32[F](pv.ExecutionShard)
	vec[PvStartPc] = field.Uint32[F](pv.StartPc)
	vec[PvNextPc] = field.Uint32[F](pv.NextPc)
	//
	for i, word := range pv.CommittedValueDigest {
		for j := range 4 {
			limb := (word >> (8 * j)) & 0xff
			vec[PvCommittedDigest+uint(i*4+j)] = field.Uint32[F](limb)
		}
	}
	//
	for i, elem := range pv.DeferredProofsDigest {
		vec[PvDeferredDigest+uint(i)] = field.Uint32[F](elem)
	}
	//
	vec[PvExitCode] = field.Uint32[F](pv.ExitCode)
	//
	return vec
}
