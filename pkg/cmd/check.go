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

	"github.com/spf13/cobra"

	"github.com/consensys/go-zkvm/pkg/machine"
	"github.com/consensys/go-zkvm/pkg/util/field/babybear"
)

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check [flags] program_file",
	Short: "Execute a program and check its trace against the constraints.",
	Long: `Execute a given program, generate the trace of every shard and
	check every vanishing constraint and interaction of every chip.  Any
	failure is reported along with the offending rows or tuples.`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 1 {
			fmt.Println(cmd.UsageString())
			os.Exit(1)
		}
		//
		configureLogging(cmd)
		//
		var (
			traces   = executeProgram(cmd, args[0])
			mach     = machine.NewMachine[babybear.Element]()
			failures = mach.Check(traces)
		)
		//
		for _, failure := range failures {
			fmt.Println(failure.Message())
		}
		//
		if len(failures) > 0 {
			fmt.Printf("rejected (%d failures)\n", len(failures))
			os.Exit(1)
		}
		//
		fmt.Printf("accepted (%d shards)\n", len(traces))
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
