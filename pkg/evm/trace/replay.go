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

	"github.com/consensys/go-evmmem/pkg/evm/memory"
	"github.com/consensys/go-evmmem/pkg/util"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Memory is the concrete memory used for replaying traces, where the provenance
// of each byte is the instruction which last wrote it.
type Memory = memory.Memory[*Instruction]

// NewMemory constructs an empty memory for replaying traces.
func NewMemory() *Memory {
	return memory.NewMemory[*Instruction]()
}

// Result captures the outcome of replaying a single step of a trace.
type Result struct {
	// Index of the step in the trace.
	Index uint
	// The step itself.
	Step Step
	// Bytes read by a load.
	Data []byte
	// Provenance of the byte queried by an origin step.
	Origin util.Option[*Instruction]
	// Expansion cost of the region accessed by a store or queried by a cost
	// step (a store reports the cost incurred before it was applied).
	Cost uint64
}

// Word returns the bytes read by a load interpreted as a big-endian word.  This
// is only meaningful for loads of at most 32 bytes, and returns nil otherwise.
func (p *Result) Word() *uint256.Int {
	if p.Step.Kind != LOAD || len(p.Data) > 32 {
		return nil
	}
	//
	return new(uint256.Int).SetBytes(p.Data)
}

func (p *Result) String() string {
	var (
		offset = uint64(p.Step.Offset)
		size   = uint64(p.Step.Size)
	)
	//
	switch p.Step.Kind {
	case STORE:
		by := "untracked"
		if p.Step.By != "" {
			by = p.Step.By
		}
		//
		return fmt.Sprintf("[%d] store %d bytes at 0x%x by %s (gas %d)", p.Index, size, offset, by, p.Cost)
	case LOAD:
		if word := p.Word(); word != nil {
			return fmt.Sprintf("[%d] load %d bytes at 0x%x = %s", p.Index, size, offset, word.Hex())
		}
		//
		return fmt.Sprintf("[%d] load %d bytes at 0x%x = %s", p.Index, size, offset, hexutil.Encode(p.Data))
	case ORIGIN:
		if insn, ok := p.Origin.Get(); ok {
			return fmt.Sprintf("[%d] origin of 0x%x is %s", p.Index, offset, insn.String())
		}
		//
		return fmt.Sprintf("[%d] origin of 0x%x is unknown", p.Index, offset)
	case COST:
		return fmt.Sprintf("[%d] expanding to %d bytes at 0x%x costs %d", p.Index, size, offset, p.Cost)
	default:
		return fmt.Sprintf("[%d] %s", p.Index, p.Step.Kind)
	}
}

// Replayer replays the steps of a trace, one at a time, against a memory which
// is initially empty.
type Replayer struct {
	memory       *Memory
	instructions map[string]*Instruction
	// Determines whether memory is validated after every step.
	check bool
	// Number of steps replayed so far.
	count uint
}

// NewReplayer constructs a replayer for the instructions declared in a given
// trace file.  This fails if the declarations are malformed.
func NewReplayer(file *File, check bool) (*Replayer, error) {
	instructions, err := file.Resolve()
	//
	if err != nil {
		return nil, err
	}
	//
	return &Replayer{NewMemory(), instructions, check, 0}, nil
}

// Memory returns the memory being replayed into.
func (p *Replayer) Memory() *Memory {
	return p.memory
}

// Step replays a single step, returning its result.  This fails if the step is
// malformed or, when checking is enabled, if memory is found to be internally
// inconsistent afterwards.
func (p *Replayer) Step(step Step) (Result, error) {
	var (
		result = Result{Index: p.count, Step: step}
		offset = uint64(step.Offset)
		size   = uint64(step.Size)
	)
	//
	switch step.Kind {
	case STORE:
		result.Cost = p.memory.ExpansionCost(offset, size)
		//
		if step.By == "" {
			p.memory.Store(offset, size, step.Value)
		} else if insn, ok := p.instructions[step.By]; ok {
			p.memory.StoreWithOpcode(offset, size, step.Value, insn)
		} else {
			return result, errors.Errorf("step %d stored by undeclared instruction \"%s\"", p.count, step.By)
		}
	case LOAD:
		result.Data = p.memory.Read(offset, size)
	case ORIGIN:
		result.Origin = p.memory.Origin(offset)
	case COST:
		result.Cost = p.memory.ExpansionCost(offset, size)
	default:
		return result, errors.Errorf("step %d has unknown kind \"%s\"", p.count, step.Kind)
	}
	//
	if p.check {
		if err := p.memory.Validate(); err != nil {
			return result, errors.Wrapf(err, "memory inconsistent after step %d", p.count)
		}
	}
	//
	log.WithFields(log.Fields{"step": p.count, "kind": step.Kind, "offset": offset, "size": size}).
		Debug("replayed trace step")
	//
	p.count++
	//
	return result, nil
}

// Replay all steps of a given trace file against an initially empty memory,
// returning the final state of memory along with the result of each step.
func Replay(file *File, check bool) (*Memory, []Result, error) {
	replayer, err := NewReplayer(file, check)
	//
	if err != nil {
		return nil, nil, err
	}
	//
	results := make([]Result, 0, len(file.Steps))
	//
	for _, step := range file.Steps {
		result, err := replayer.Step(step)
		//
		if err != nil {
			return replayer.Memory(), results, err
		}
		//
		results = append(results, result)
	}
	//
	return replayer.Memory(), results, nil
}
