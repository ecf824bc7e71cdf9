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

// Package termio provides simple terminal output helpers, such as printing
// aligned tables of trace columns.
package termio

import (
	"fmt"
	"os"

	"golang.org/x/term"
)

// TablePrinter is useful for printing tables to the terminal.
type TablePrinter struct {
	widths []uint
	rows   [][]string
}

// NewTablePrinter constructs a new table with given dimensions.
func NewTablePrinter(width uint, height uint) *TablePrinter {
	var (
		widths = make([]uint, width)
		rows   = make([][]string, height)
	)
	//
	for i := range rows {
		rows[i] = make([]string, width)
	}
	//
	return &TablePrinter{widths, rows}
}

// Set the contents of a given cell in this table.
func (p *TablePrinter) Set(col uint, row uint, val string) {
	p.widths[col] = max(p.widths[col], uint(len(val)))
	p.rows[row][col] = val
}

// SetRow sets the contents of an entire row in this table.
func (p *TablePrinter) SetRow(row uint, vals ...string) {
	if len(vals) != len(p.widths) {
		panic("incorrect number of columns")
	}
	// Update column widths
	for i, val := range vals {
		p.widths[i] = max(p.widths[i], uint(len(val)))
	}
	//
	p.rows[row] = vals
}

// SetMaxWidths puts an upper bound on the width of every column.
func (p *TablePrinter) SetMaxWidths(width uint) {
	for i := range p.widths {
		p.widths[i] = min(p.widths[i], width)
	}
}

// Print the table, one row per line, cells right-aligned and truncated to
// their column width.
func (p *TablePrinter) Print() {
	for _, row := range p.rows {
		for j, col := range row {
			width := p.widths[j]
			//
			if uint(len(col)) > width {
				fmt.Printf(" %*s..", width-2, col[0:width-2])
			} else {
				fmt.Printf(" %*s", width, col)
			}
		}
		//
		fmt.Println()
	}
}

// TerminalWidth returns the width of the attached terminal, or a sensible
// default when stdout is not a terminal.
func TerminalWidth() uint {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	//
	if err != nil || width <= 0 {
		return 80
	}
	//
	return uint(width)
}
