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

// Syscall codes are read from op_a's previous value on ECALL.  The word is
// structured: byte 0 holds the syscall identifier, and byte 2 holds the
// number of extra cycles the syscall consumes beyond the standard 4.  The
// byte-2 slot convention is load-bearing for clock-consistency soundness;
// do not move it.
const (
	// SyscallHalt ends execution, with the exit code in op_b's register.
	SyscallHalt uint32 = 0x00
	// SyscallWrite performs a hinted output write (opaque here).
	SyscallWrite uint32 = 0x02
	// SyscallCommit binds one word of the committed-value digest.
	SyscallCommit uint32 = 0x10
	// SyscallCommitDeferred binds one word of the deferred-proofs digest.
	SyscallCommitDeferred uint32 = 0x1A
)

// SyscallID extracts the syscall identifier from a syscall code word.
func SyscallID(code uint32) uint32 {
	return code & 0xff
}

// SyscallExtraCycles extracts the declared extra-cycle count from a syscall
// code word.
func SyscallExtraCycles(code uint32) uint32 {
	return (code >> 16) & 0xff
}
