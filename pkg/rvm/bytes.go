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

// ByteOpcode identifies a byte-range relation on the byte bus.
type ByteOpcode uint32

const (
	// ByteU8Range claims both operands fit 8 bits.
	ByteU8Range ByteOpcode = iota
	// ByteU16Range claims the first operand fits 16 bits (second is zero).
	ByteU16Range
)

func (op ByteOpcode) String() string {
	if op == ByteU16Range {
		return "u16"
	}
	//
	return "u8"
}

// ByteLookupEvent is one byte-range claim sent over the byte bus.
type ByteLookupEvent struct {
	// Opcode of the claim.
	Opcode ByteOpcode
	// A operand.
	A uint32
	// B operand.
	B uint32
}
