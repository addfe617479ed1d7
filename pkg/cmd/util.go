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

	"github.com/consensys/go-evmmem/pkg/evm/trace"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// GetFlag gets an expected flag, or panic if an error arises.
func GetFlag(cmd *cobra.Command, flag string) bool {
	r, err := cmd.Flags().GetBool(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	return r
}

// GetUint gets an expected unsigned int, or panic if an error arises.
func GetUint(cmd *cobra.Command, flag string) uint {
	r, err := cmd.Flags().GetUint(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	return r
}

// GetString gets an expected string, or panic if an error arises.
func GetString(cmd *cobra.Command, flag string) string {
	r, err := cmd.Flags().GetString(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	return r
}

// GetQuantity parses a command-line argument as a (decimal or hexadecimal)
// quantity, or exits if it is malformed.
func GetQuantity(arg string) uint64 {
	var q trace.Quantity
	//
	if err := q.UnmarshalText([]byte(arg)); err != nil {
		fmt.Println(err)
		os.Exit(2)
	}
	//
	return uint64(q)
}

// ReadTraceFile reads a trace file, or exits if it cannot be read.
func ReadTraceFile(filename string) *trace.File {
	log.Debug(fmt.Sprintf("reading trace file %s", filename))
	//
	file, err := trace.ReadFile(filename)
	// Handle error
	if err != nil {
		fmt.Println(err)
		os.Exit(3)
	}
	//
	return file
}
