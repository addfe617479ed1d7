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

	"github.com/consensys/go-evmmem/pkg/evm/memory"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

// costCmd represents the cost command
var costCmd = &cobra.Command{
	Use:   "cost [flags] offset size",
	Short: "compute the gas cost of expanding memory.",
	Long: `Compute the gas cost of expanding memory to cover a given region, starting from memory of a
given size.  Offsets and sizes are given either in decimal or in hexadecimal (e.g. 0x40).`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 2 {
			fmt.Println(cmd.UsageString())
			os.Exit(1)
		}
		//
		var (
			offset  = GetQuantity(args[0])
			size    = GetQuantity(args[1])
			current = GetQuantity(GetString(cmd, "current"))
			mem     = memory.NewMemory[any]()
		)
		//
		mem.Extend(0, current)
		//
		cost := mem.ExpansionCost(offset, size)
		//
		fmt.Printf("memory of %s (%d words) costs %d gas\n", humanize.Bytes(mem.Size()),
			memory.WordCount(mem.Size()), mem.MemoryCost())
		fmt.Printf("accessing %d bytes at 0x%x costs %d gas\n", size, offset, cost)
	},
}

func init() {
	rootCmd.AddCommand(costCmd)
	costCmd.Flags().String("current", "0", "current size of memory (in bytes)")
}
