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
package trace

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/core/vm"
)

// Instruction identifies an executed instruction along with the instructions
// which produced its operands.  As such, an instruction is the root of an
// expression tree which can be walked backwards to recover how a value was
// computed.  Instructions are immutable once constructed, hence operands are
// freely shared between the trees which use them.
type Instruction struct {
	// Identifier used to refer to this instruction within a trace.
	Id string
	// Program counter at which this instruction was executed.
	PC uint64
	// Opcode of this instruction.
	Op vm.OpCode
	// Instructions producing the operands of this instruction (in order).
	Inputs []*Instruction
}

// NewInstruction constructs a new instruction from its operands.
func NewInstruction(id string, pc uint64, op vm.OpCode, inputs ...*Instruction) *Instruction {
	return &Instruction{id, pc, op, inputs}
}

// Depth returns the height of the expression tree rooted at this instruction,
// where an instruction without operands has depth 1.
func (p *Instruction) Depth() uint {
	var depth uint
	//
	for _, input := range p.Inputs {
		depth = max(depth, input.Depth())
	}
	//
	return depth + 1
}

// String renders the expression tree rooted at this instruction, such as
// "MSTORE@12(PUSH1@10, CALLVALUE@9)".
func (p *Instruction) String() string {
	var builder strings.Builder
	//
	p.write(&builder)
	//
	return builder.String()
}

func (p *Instruction) write(builder *strings.Builder) {
	builder.WriteString(fmt.Sprintf("%s@%d", p.Op.String(), p.PC))
	//
	if len(p.Inputs) == 0 {
		return
	}
	//
	builder.WriteString("(")
	//
	for i, input := range p.Inputs {
		if i != 0 {
			builder.WriteString(", ")
		}
		//
		input.write(builder)
	}
	//
	builder.WriteString(")")
}
