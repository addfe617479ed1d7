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
	"bytes"
	"testing"

	"github.com/consensys/go-evmmem/pkg/evm/trace"
	"github.com/ethereum/go-ethereum/core/vm"
	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func init() {
	color.NoColor = true
}

func Test_Dump_Empty(t *testing.T) {
	var buf bytes.Buffer
	//
	DumpMemory(&buf, trace.NewMemory(), 8)
	assert.Equal(t, "memory: 0 B (0 words), gas 0, 0 spans\n", buf.String())
}

func Test_Dump_Rows(t *testing.T) {
	var (
		buf bytes.Buffer
		mem = trace.NewMemory()
	)
	//
	mem.Store(0, 2, []byte{0xab, 0xcd})
	DumpMemory(&buf, mem, 16)
	//
	expected := "memory: 32 B (1 words), gas 3, 0 spans\n" +
		"000000: ab cd 00 00 00 00 00 00 00 00 00 00 00 00 00 00\n" +
		"000010: 00 00 00 00 00 00 00 00 00 00 00 00 00 00 00 00\n"
	assert.Equal(t, expected, buf.String())
}

func Test_Dump_Origins(t *testing.T) {
	var (
		buf   bytes.Buffer
		mem   = trace.NewMemory()
		push  = trace.NewInstruction("a", 0, vm.PUSH1)
		store = trace.NewInstruction("b", 2, vm.MSTORE8, push)
	)
	//
	mem.StoreWithOpcode(4, 1, []byte{0x01}, store)
	mem.StoreWithOpcode(8, 2, []byte{0x02}, push)
	DumpOrigins(&buf, mem)
	//
	assert.Equal(t, "[4..4] MSTORE8@2(PUSH1@0)\n[8..9] PUSH1@0\n", buf.String())
}
