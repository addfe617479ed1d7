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
	"fmt"
	"math"
)

// Range identifies a contiguous span of memory bytes.  Unlike the half-open
// ranges used elsewhere, both bounds are inclusive: a write of size bytes at
// offset covers exactly [offset, offset+size-1].  Thus, a range always covers
// at least one byte.
type Range struct {
	Start uint64
	End   uint64
}

// NewRange constructs the range of bytes touched by a write of size bytes at a
// given offset.  Observe that size must be non-zero, since an empty write
// touches no bytes.  A range running off the end of the address space is
// truncated at the last addressable byte.
func NewRange(offset uint64, size uint64) Range {
	// sanity check
	if size == 0 {
		panic("invalid range")
	}
	//
	end := offset + (size - 1)
	// saturate on overflow
	if end < offset {
		end = math.MaxUint64
	}
	//
	return Range{offset, end}
}

// Size returns the number of bytes covered by this range.
func (p Range) Size() uint64 {
	return p.End - p.Start + 1
}

// Contains checks whether a given byte offset lies within this range.
func (p Range) Contains(offset uint64) bool {
	return p.Start <= offset && offset <= p.End
}

// Collides checks whether this range shares at least one byte with another.
// This holds regardless of which range starts first.
func (p Range) Collides(other Range) bool {
	return p.Start <= other.End && p.End >= other.Start
}

// Covers checks whether every byte of the other range lies within this range.
func (p Range) Covers(other Range) bool {
	return p.Start <= other.Start && p.End >= other.End
}

// Within checks whether this range lies strictly inside the other, such that
// the other has at least one byte remaining on either side.
func (p Range) Within(other Range) bool {
	return p.Start > other.Start && p.End < other.End
}

func (p Range) String() string {
	return fmt.Sprintf("[%d..%d]", p.Start, p.End)
}
