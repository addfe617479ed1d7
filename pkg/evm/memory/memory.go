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
package memory

import (
	"slices"

	"github.com/consensys/go-evmmem/pkg/util"
	gmath "github.com/ethereum/go-ethereum/common/math"
	log "github.com/sirupsen/logrus"
)

// Ceiling bounds the offset and size of any single store or read.  Accesses
// beyond this are clamped to it, rather than rejected, which bounds the worst
// case cost of emulating a single instruction.
const Ceiling = 1 << 16

// Memory represents the linear, byte-addressable memory of an executing EVM
// contract.  Memory is initially empty, and grows (in whole words) as it is
// written.  Reading a location which lies beyond the current extent of memory
// returns zero, but does not grow it.
//
// In addition to its contents, memory records the provenance of every byte
// written via StoreWithOpcode.  That is, the token of the instruction which
// last wrote it.  Provenance tokens have an arbitrary type T, which memory
// treats as an opaque value.  Typically, T identifies an instruction along with
// the operands from which its value was computed, such that an analysis can
// walk backwards from a memory read to the computation which produced it.
//
// A memory belongs to exactly one execution, and is not safe for concurrent
// use.  Executions which branch should Clone their memory.
type Memory[T any] struct {
	data    []byte
	tracker *Tracker[T]
}

// NewMemory constructs a new memory which is initially empty, and has no
// recorded provenance.
func NewMemory[T any]() *Memory[T] {
	return &Memory[T]{nil, NewTracker[T]()}
}

// Size returns the current size of memory (in bytes).  This is always a
// multiple of the word size.
func (p *Memory[T]) Size() uint64 {
	return uint64(len(p.data))
}

// Extend memory, if necessary, so that it can hold the size bytes starting from
// offset.  The new size is rounded up to the nearest multiple of the word size,
// and new bytes are zero.  Memory never shrinks, hence this has no effect when
// memory is already large enough.  Likewise, extending by zero bytes has no
// effect.
func (p *Memory[T]) Extend(offset uint64, size uint64) {
	if size == 0 {
		return
	}
	//
	end, overflow := gmath.SafeAdd(offset, size)
	//
	if overflow {
		panic("memory extension overflows address space")
	}
	//
	if nsize := WordCount(end) * WordSize; nsize > p.Size() {
		p.data = append(p.data, make([]byte, nsize-p.Size())...)
	}
}

// Store writes size bytes into memory starting at offset, extending memory as
// necessary.  If the given value is larger than size, then only its first size
// bytes are written.  Otherwise, it is padded with leading zeros (i.e. treated
// as a big-endian value).  For example, storing 0xff with a size of 4 writes
// the bytes 00 00 00 ff.  Both offset and size are clamped to the Ceiling.  No
// provenance is recorded for the bytes written.
func (p *Memory[T]) Store(offset uint64, size uint64, value []byte) {
	offset, size = clamp("store", offset, size)
	//
	if size == 0 {
		return
	}
	// Allocate space for the value
	p.Extend(offset, size)
	// Write the value
	fit(p.data[offset:offset+size], value)
}

// StoreWithOpcode writes size bytes into memory starting at offset, exactly as
// for Store, and records the given token as the provenance of every byte
// written.  This is the only way in which provenance is updated, hence callers
// interested in provenance should not use Store.
func (p *Memory[T]) StoreWithOpcode(offset uint64, size uint64, value []byte, token T) {
	p.Store(offset, size, value)
	// Track the same (clamped) span as was written
	offset, size = min(offset, Ceiling), min(size, Ceiling)
	//
	p.tracker.Write(offset, size, token)
}

// Read returns exactly size bytes from memory starting at offset.  Any portion
// of this which lies beyond the current extent of memory is returned as zeros.
// Reading never extends memory.  Both offset and size are clamped to the
// Ceiling.
func (p *Memory[T]) Read(offset uint64, size uint64) []byte {
	offset, size = clamp("read", offset, size)
	//
	var value = make([]byte, size)
	// Copy in-bounds portion (if any)
	if offset < p.Size() {
		copy(value, p.data[offset:min(offset+size, p.Size())])
	}
	//
	return value
}

// MemoryCost returns the total gas charged for memory at its current size.
func (p *Memory[T]) MemoryCost() uint64 {
	return CostOfWords(WordCount(p.Size()))
}

// ExpansionCost returns the additional gas which would be charged for extending
// memory to hold the size bytes starting at offset.  This is never negative
// and, hence, is zero when memory is already large enough (or nothing would be
// accessed).
func (p *Memory[T]) ExpansionCost(offset uint64, size uint64) uint64 {
	if size == 0 {
		return 0
	}
	//
	var (
		current  = p.MemoryCost()
		end, ovf = gmath.SafeAdd(offset, size)
		updated  = CostOfWords(WordCount(end))
	)
	//
	if ovf {
		updated = CostOfWords(WordCount(^uint64(0)))
	}
	//
	if updated < current {
		return 0
	}
	//
	return updated - current
}

// Origin returns the provenance of a given byte of memory, that is the token of
// the instruction which last wrote it.  This is empty for bytes which have never
// been written with a token.
func (p *Memory[T]) Origin(offset uint64) util.Option[T] {
	return p.tracker.GetByOffset(offset)
}

// Spans returns the current provenance of memory as a sequence of disjoint
// spans, in order of their starting offset.
func (p *Memory[T]) Spans() []Span[T] {
	return p.tracker.Spans()
}

// Validate checks the internal consistency of the provenance recorded for this
// memory.
func (p *Memory[T]) Validate() error {
	return p.tracker.Validate()
}

// Data returns a copy of the current contents of memory.
func (p *Memory[T]) Data() []byte {
	return slices.Clone(p.data)
}

// Clone returns a deep copy of this memory, including its provenance.
// Subsequent writes to either copy are not visible in the other.
func (p *Memory[T]) Clone() *Memory[T] {
	return &Memory[T]{slices.Clone(p.data), p.tracker.Clone()}
}

// Clamp the offset and size of an access to the Ceiling.
func clamp(access string, offset uint64, size uint64) (uint64, uint64) {
	if offset > Ceiling || size > Ceiling {
		log.Debugf("memory %s of %d bytes at %d clamped to %d", access, size, offset, uint64(Ceiling))
		//
		return min(offset, Ceiling), min(size, Ceiling)
	}
	//
	return offset, size
}

// Fit a value into a target slice, either by truncating it or by padding it
// with leading zeros.
func fit(target []byte, value []byte) {
	var n = len(target)
	//
	if len(value) >= n {
		copy(target, value[:n])
		return
	}
	// Zero padding
	padding := n - len(value)
	clear(target[:padding])
	copy(target[padding:], value)
}
