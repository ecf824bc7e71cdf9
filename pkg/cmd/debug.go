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
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/consensys/go-zkvm/pkg/air"
	"github.com/consensys/go-zkvm/pkg/machine"
	"github.com/consensys/go-zkvm/pkg/trace"
	"github.com/consensys/go-zkvm/pkg/util/field/babybear"
)

// debugCmd represents the debug command
var debugCmd = &cobra.Command{
	Use:   "debug [flags] program_file",
	Short: "Net the interaction buses and report unmatched tuples.",
	Long: `Execute a given program and net every send against every receive,
	bus by bus.  Local buses are netted per shard, global buses across the
	whole run.  Every tuple whose multiplicities do not cancel is printed
	together with the chips which touched it, which pins down the side of
	the bus that went wrong.`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 1 {
			fmt.Println(cmd.UsageString())
			os.Exit(1)
		}
		//
		configureLogging(cmd)
		//
		kinds, err := parseKinds(GetString(cmd, "kinds"))
		//
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		//
		var (
			traces   = executeProgram(cmd, args[0])
			mach     = machine.NewMachine[babybear.Element]()
			failures []air.Failure
		)
		// Local buses net within each shard.
		for i, tr := range traces {
			shard := mach.CheckInteractions([]*trace.Trace[babybear.Element]{tr}, air.ScopeLocal, kinds)
			log.Debugf("shard %d: %d unmatched local tuples", i+1, len(shard))
			failures = append(failures, shard...)
		}
		// Global buses net across the run.
		failures = append(failures, mach.CheckInteractions(traces, air.ScopeGlobal, kinds)...)
		//
		for _, failure := range failures {
			fmt.Println(failure.Message())
		}
		//
		if len(failures) > 0 {
			fmt.Printf("%d unmatched tuples\n", len(failures))
			os.Exit(1)
		}
		//
		fmt.Println("all buses cancel")
	},
}

// parseKinds maps a comma-separated list of bus names to kinds.  An empty
// list selects every bus.
func parseKinds(names string) ([]air.Kind, error) {
	if names == "" {
		return nil, nil
	}
	//
	var kinds []air.Kind
	//
outer:
	for _, name := range strings.Split(names, ",") {
		for _, kind := range air.Kinds() {
			if kind.String() == name {
				kinds = append(kinds, kind)
				continue outer
			}
		}
		//
		return nil, fmt.Errorf("unknown bus %q", name)
	}
	//
	return kinds, nil
}

func init() {
	rootCmd.AddCommand(debugCmd)
	debugCmd.Flags().String("kinds", "", "comma-separated buses to net (e.g. \"alu,byte\")")
}
