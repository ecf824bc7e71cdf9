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
package cmd

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/consensys/go-zkvm/pkg/machine"
	"github.com/consensys/go-zkvm/pkg/rvm"
	"github.com/consensys/go-zkvm/pkg/rvm/emulator"
	"github.com/consensys/go-zkvm/pkg/trace"
	"github.com/consensys/go-zkvm/pkg/util/field/babybear"
)

// GetFlag gets an expected flag, or panics if an error arises.
func GetFlag(cmd *cobra.Command, flag string) bool {
	r, err := cmd.Flags().GetBool(flag)
	if err != nil {
		panic(err)
	}
	//
	return r
}

// GetUint gets an expected uint flag, or panics if an error arises.
func GetUint(cmd *cobra.Command, flag string) uint {
	r, err := cmd.Flags().GetUint(flag)
	if err != nil {
		panic(err)
	}
	//
	return r
}

// GetUint64 gets an expected uint64 flag, or panics if an error arises.
func GetUint64(cmd *cobra.Command, flag string) uint64 {
	r, err := cmd.Flags().GetUint64(flag)
	if err != nil {
		panic(err)
	}
	//
	return r
}

// GetString gets an expected string flag, or panics if an error arises.
func GetString(cmd *cobra.Command, flag string) string {
	r, err := cmd.Flags().GetString(flag)
	if err != nil {
		panic(err)
	}
	//
	return r
}

// configureLogging applies the persistent logging flags.
func configureLogging(cmd *cobra.Command) {
	if GetFlag(cmd, "verbose") {
		log.SetLevel(log.DebugLevel)
	}
}

// executeProgram loads a program file, runs it and generates one trace per
// shard.  Errors here are structural (malformed program, budget exceeded) and
// terminate the command.
func executeProgram(cmd *cobra.Command, filename string) []*trace.Trace[babybear.Element] {
	program, err := rvm.LoadProgram(filename)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	//
	records, err := emulator.NewEmulator(program, GetUint(cmd, "shard-size")).
		Run(GetUint64(cmd, "max-cycles"))
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	//
	mach := machine.NewMachine[babybear.Element]()
	traces := make([]*trace.Trace[babybear.Element], len(records))
	//
	for i, record := range records {
		traces[i] = mach.GenerateTraces(record)
	}
	//
	return traces
}
