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
	"bytes"
	"os"
	"path"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/vm"
	"github.com/pkg/errors"
	"github.com/segmentio/encoding/json"
	"gopkg.in/yaml.v3"
)

// Kinds of step which can appear in a trace.
const (
	// STORE writes a value into memory, recording its provenance when the step
	// names the instruction responsible.
	STORE = "store"
	// LOAD reads a value from memory.
	LOAD = "load"
	// ORIGIN queries the provenance of a single byte of memory.
	ORIGIN = "origin"
	// COST queries the expansion cost of accessing a region of memory.
	COST = "cost"
)

// File is a recorded sequence of memory accesses made by an executing
// contract, along with the instructions responsible for them.  Instructions are
// declared in execution order, such that an instruction's operands are always
// declared before it.
type File struct {
	Instructions []Declaration `json:"instructions" yaml:"instructions"`
	Steps        []Step        `json:"steps" yaml:"steps"`
}

// Declaration of an executed instruction within a trace file.
type Declaration struct {
	Id     string   `json:"id" yaml:"id"`
	PC     Quantity `json:"pc" yaml:"pc"`
	Op     string   `json:"op" yaml:"op"`
	Inputs []string `json:"inputs,omitempty" yaml:"inputs,omitempty"`
}

// Step is a single memory access within a trace file.  Which fields are
// meaningful depends upon the kind of step.  Specifically, Value and By are
// only meaningful for a store, whilst Size is ignored by an origin query.
type Step struct {
	Kind   string        `json:"kind" yaml:"kind"`
	Offset Quantity      `json:"offset" yaml:"offset"`
	Size   Quantity      `json:"size,omitempty" yaml:"size,omitempty"`
	Value  hexutil.Bytes `json:"value,omitempty" yaml:"value,omitempty"`
	By     string        `json:"by,omitempty" yaml:"by,omitempty"`
}

// Quantity is an unsigned integer which can be written either in decimal or in
// hexadecimal (with a "0x" prefix).
type Quantity uint64

// UnmarshalText implementation for encoding.TextUnmarshaler interface.
func (p *Quantity) UnmarshalText(text []byte) error {
	var (
		str = strings.TrimSpace(string(text))
		val uint64
		err error
	)
	//
	if strings.HasPrefix(str, "0x") || strings.HasPrefix(str, "0X") {
		val, err = strconv.ParseUint(str[2:], 16, 64)
	} else {
		val, err = strconv.ParseUint(str, 10, 64)
	}
	//
	if err != nil {
		return errors.Wrapf(err, "invalid quantity \"%s\"", str)
	}
	//
	*p = Quantity(val)
	//
	return nil
}

// UnmarshalJSON implementation for json.Unmarshaler interface.  This accepts
// both JSON numbers and JSON strings.
func (p *Quantity) UnmarshalJSON(data []byte) error {
	return p.UnmarshalText(bytes.Trim(data, "\""))
}

// ReadFile reads and parses a trace file, using a parser determined by the
// extension of the filename.
func ReadFile(filename string) (*File, error) {
	bytes, err := os.ReadFile(filename)
	//
	if err != nil {
		return nil, err
	}
	//
	switch ext := path.Ext(filename); ext {
	case ".json":
		return ParseJson(bytes)
	case ".yaml", ".yml":
		return ParseYaml(bytes)
	default:
		return nil, errors.Errorf("unknown trace file format: %s", ext)
	}
}

// ParseJson parses a trace file given in JSON.
func ParseJson(bytes []byte) (*File, error) {
	var file File
	//
	if err := json.Unmarshal(bytes, &file); err != nil {
		return nil, errors.Wrap(err, "malformed JSON trace")
	}
	//
	return &file, nil
}

// ParseYaml parses a trace file given in YAML.
func ParseYaml(bytes []byte) (*File, error) {
	var file File
	//
	if err := yaml.Unmarshal(bytes, &file); err != nil {
		return nil, errors.Wrap(err, "malformed YAML trace")
	}
	//
	return &file, nil
}

// Resolve the instructions declared in this trace file, returning them indexed
// by their identifiers.  This fails if an identifier is declared more than
// once, if an opcode is unknown, or if an operand refers to an instruction not
// declared before it.
func (p *File) Resolve() (map[string]*Instruction, error) {
	var instructions = make(map[string]*Instruction, len(p.Instructions))
	//
	for i, decl := range p.Instructions {
		var inputs = make([]*Instruction, len(decl.Inputs))
		//
		if decl.Id == "" {
			return nil, errors.Errorf("instruction %d has no identifier", i)
		} else if _, ok := instructions[decl.Id]; ok {
			return nil, errors.Errorf("instruction \"%s\" declared more than once", decl.Id)
		}
		//
		op, err := parseOpCode(decl.Op)
		//
		if err != nil {
			return nil, errors.Wrapf(err, "instruction \"%s\"", decl.Id)
		}
		//
		for j, id := range decl.Inputs {
			input, ok := instructions[id]
			//
			if !ok {
				return nil, errors.Errorf("instruction \"%s\" uses undeclared operand \"%s\"", decl.Id, id)
			}
			//
			inputs[j] = input
		}
		//
		instructions[decl.Id] = NewInstruction(decl.Id, uint64(decl.PC), op, inputs...)
	}
	//
	return instructions, nil
}

// Parse an opcode mnemonic (e.g. "MSTORE").
func parseOpCode(mnemonic string) (vm.OpCode, error) {
	var (
		name = strings.ToUpper(strings.TrimSpace(mnemonic))
		op   = vm.StringToOp(name)
	)
	// StringToOp returns STOP for any unknown mnemonic
	if op.String() != name {
		return op, errors.Errorf("unknown opcode \"%s\"", mnemonic)
	}
	//
	return op, nil
}
