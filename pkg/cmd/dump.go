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
	"io"
	"os"

	"github.com/consensys/go-evmmem/pkg/evm/memory"
	"github.com/consensys/go-evmmem/pkg/evm/trace"
	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"golang.org/x/term"
)

// DefaultWidth is the number of bytes shown per line when dumping memory to
// something other than a terminal.
const DefaultWidth = 32

var (
	tracked   = color.New(color.FgGreen).SprintFunc()
	untracked = color.New(color.FgHiBlack).SprintFunc()
)

// TerminalWidth determines how many bytes can be shown per line when dumping
// memory to stdout.  This is always a non-zero multiple of 8.
func TerminalWidth() uint {
	fd := int(os.Stdout.Fd())
	//
	if !term.IsTerminal(fd) {
		return DefaultWidth
	}
	//
	cols, _, err := term.GetSize(fd)
	// Each line has an 8 character address, and each byte takes 3 characters.
	if err != nil || cols < 8+3*8 {
		return 8
	}
	//
	return min(uint((cols-8)/3)/8*8, 64)
}

// DumpMemory writes the contents of memory as rows of hex bytes, highlighting
// those bytes whose provenance is known.
func DumpMemory(w io.Writer, mem *trace.Memory, width uint) {
	var (
		data  = mem.Data()
		spans = mem.Spans()
		index = 0
	)
	//
	width = max(width, 1)
	//
	fmt.Fprintf(w, "memory: %s (%d words), gas %d, %d spans\n", humanize.Bytes(mem.Size()),
		memory.WordCount(mem.Size()), mem.MemoryCost(), len(spans))
	//
	for i, b := range data {
		var (
			offset = uint64(i)
			text   = fmt.Sprintf("%02x", b)
		)
		//
		if uint(i)%width == 0 {
			if i != 0 {
				fmt.Fprintln(w)
			}
			//
			fmt.Fprintf(w, "%06x:", offset)
		}
		// Spans are sorted, so advance past those ending before this byte.
		for index < len(spans) && spans[index].End < offset {
			index++
		}
		//
		if index < len(spans) && spans[index].Contains(offset) {
			fmt.Fprintf(w, " %s", tracked(text))
		} else {
			fmt.Fprintf(w, " %s", untracked(text))
		}
	}
	//
	if len(data) != 0 {
		fmt.Fprintln(w)
	}
}

// DumpOrigins writes the provenance of memory, one span per line.
func DumpOrigins(w io.Writer, mem *trace.Memory) {
	for _, span := range mem.Spans() {
		fmt.Fprintf(w, "%s %s\n", span.Range.String(), span.Token.String())
	}
}
