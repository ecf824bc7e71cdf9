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

	"github.com/consensys/go-zkvm/pkg/trace"
	"github.com/consensys/go-zkvm/pkg/util/field/babybear"
	"github.com/consensys/go-zkvm/pkg/util/termio"
)

// traceCmd represents the trace command for inspecting generated traces.
var traceCmd = &cobra.Command{
	Use:   "trace [flags] program_file",
	Short: "Execute a program and print one chip's trace.",
	Long: `Execute a given program and print the trace module of a single
	chip (the cpu by default), one table per shard.  Useful for eyeballing
	what the constraints are actually evaluated against.`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 1 {
			fmt.Println(cmd.UsageString())
			os.Exit(1)
		}
		//
		configureLogging(cmd)
		//
		var (
			traces = executeProgram(cmd, args[0])
			name   = GetString(cmd, "module")
		)
		//
		for _, tr := range traces {
			mod := tr.Module(name)
			//
			if mod == nil {
				fmt.Printf("chip %s not included in this shard\n", name)
				continue
			}
			//
			printModule(mod)
			fmt.Println()
		}
	},
}

// printModule renders one module as a table: a header row of column names,
// then one row per trace row, clamped to the terminal width.
func printModule(mod *trace.Module[babybear.Element]) {
	var (
		width   = mod.Width()
		height  = mod.Height()
		printer = termio.NewTablePrinter(width+1, height+1)
	)
	//
	printer.Set(0, 0, mod.Name())
	//
	for col := uint(0); col < width; col++ {
		printer.Set(col+1, 0, mod.Column(col).Name)
	}
	//
	for row := uint(0); row < height; row++ {
		printer.Set(0, row+1, fmt.Sprintf("%d", row))
		//
		for col := uint(0); col < width; col++ {
			printer.Set(col+1, row+1, mod.Get(col, int(row)).String())
		}
	}
	//
	printer.SetMaxWidths(termio.TerminalWidth() / 8)
	printer.Print()
}

func init() {
	rootCmd.AddCommand(traceCmd)
	traceCmd.Flags().String("module", "cpu", "chip whose trace to print")
}
