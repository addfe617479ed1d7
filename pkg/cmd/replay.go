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

	"github.com/consensys/go-evmmem/pkg/evm/trace"
	"github.com/consensys/go-evmmem/pkg/util"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// replayCmd represents the replay command
var replayCmd = &cobra.Command{
	Use:   "replay [flags] trace_file",
	Short: "replay the memory accesses recorded in a trace file.",
	Long: `Replay the memory accesses recorded in a trace file against an initially empty memory,
reporting the outcome of each access.  Trace files are given either in JSON (.json) or YAML (.yaml).`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 1 {
			fmt.Println(cmd.UsageString())
			os.Exit(1)
		}
		//
		var (
			check   = GetFlag(cmd, "check")
			dump    = GetFlag(cmd, "dump")
			origins = GetFlag(cmd, "origins")
			quiet   = GetFlag(cmd, "quiet")
			width   = GetUint(cmd, "width")
			file    = ReadTraceFile(args[0])
			stats   = util.NewPerfStats()
		)
		//
		mem, results, err := trace.Replay(file, check)
		//
		stats.Log("Replaying trace")
		//
		if !quiet {
			PrintResults(os.Stdout, results)
		}
		// Report final state, even if replay failed part way.
		if mem != nil && dump {
			if width == 0 {
				width = TerminalWidth()
			}
			//
			DumpMemory(os.Stdout, mem, width)
		}
		//
		if mem != nil && origins {
			DumpOrigins(os.Stdout, mem)
		}
		//
		if err != nil {
			log.Error(err)
			os.Exit(4)
		}
	},
}

// PrintResults writes the outcome of each replayed step, one per line.
func PrintResults(w io.Writer, results []trace.Result) {
	for _, result := range results {
		fmt.Fprintln(w, result.String())
	}
}

func init() {
	rootCmd.AddCommand(replayCmd)
	replayCmd.Flags().Bool("check", false, "validate the provenance of memory after every step")
	replayCmd.Flags().Bool("dump", false, "dump the final contents of memory")
	replayCmd.Flags().Bool("origins", false, "list the final provenance of memory")
	replayCmd.Flags().BoolP("quiet", "q", false, "suppress the outcome of each step")
	replayCmd.Flags().Uint("width", 0, "bytes per line when dumping memory (default fits terminal)")
}
