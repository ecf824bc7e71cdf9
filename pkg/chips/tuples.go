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
package chips

import (
	"github.com/consensys/go-zkvm/pkg/air"
	"github.com/consensys/go-zkvm/pkg/util/field"
)

// ProgramTuple is the program-fetch tuple: the fetched instruction in full,
// bound to its pc and the fetching shard.  Sent by the CPU table, received
// by the program table.
func ProgramTuple[F field.Element[F]](pc air.Expr[F], opcode air.Expr[F], opA air.Expr[F],
	opA0 air.Expr[F], opB air.Word[F], opC air.Word[F], selectors []air.Expr[F],
	shard air.Expr[F]) []air.Expr[F] {
	//
	tuple := []air.Expr[F]{pc, opcode, opA, opA0}
	tuple = append(tuple, opB.Exprs()...)
	tuple = append(tuple, opC.Exprs()...)
	tuple = append(tuple, selectors...)
	//
	return append(tuple, shard)
}

// AluTuple is the ALU-bus tuple: an opcode, its result and operands, plus
// the (shard, channel, nonce) coordinates making the tuple unique.  Sent by
// the CPU and dispatch tables, received by the ALU tables.
func AluTuple[F field.Element[F]](opcode air.Expr[F], a air.Word[F], b air.Word[F],
	c air.Word[F], shard air.Expr[F], channel air.Expr[F], nonce air.Expr[F]) []air.Expr[F] {
	//
	tuple := []air.Expr[F]{opcode}
	tuple = append(tuple, a.Exprs()...)
	tuple = append(tuple, b.Exprs()...)
	tuple = append(tuple, c.Exprs()...)
	//
	return append(tuple, shard, channel, nonce)
}

// DispatchTuple is the instruction-dispatch tuple: everything the
// opcode-specific table needs to take over a row.  Sent by the CPU table for
// branch, jump, memory, AUIPC and ECALL rows; received by the dispatch
// table.
func DispatchTuple[F field.Element[F]](clk air.Expr[F], shard air.Expr[F], channel air.Expr[F],
	pc air.Expr[F], nextPc air.Expr[F], selectors []air.Expr[F], opAPrev air.Word[F],
	opA air.Word[F], opB air.Word[F], opC air.Word[F], opA0 air.Expr[F],
	isHalt air.Expr[F]) []air.Expr[F] {
	//
	tuple := []air.Expr[F]{clk, shard, channel, pc, nextPc}
	tuple = append(tuple, selectors...)
	tuple = append(tuple, opAPrev.Exprs()...)
	tuple = append(tuple, opA.Exprs()...)
	tuple = append(tuple, opB.Exprs()...)
	tuple = append(tuple, opC.Exprs()...)
	//
	return append(tuple, opA0, isHalt)
}

// MemoryTuple is the record exchanged over the register and memory buses: an
// address bound to the shard, timestamp and value of one access.
func MemoryTuple[F field.Element[F]](shard air.Expr[F], clk air.Expr[F], addr air.Expr[F],
	value air.Word[F]) []air.Expr[F] {
	//
	return append([]air.Expr[F]{shard, clk, addr}, value.Exprs()...)
}
