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
	"slices"
	"sort"

	"github.com/consensys/go-evmmem/pkg/util"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Span associates a range of memory bytes with the provenance token of the
// write which last touched them.
type Span[T any] struct {
	Range
	// Token identifying the write responsible for these bytes.
	Token T
}

// Tracker records, for every byte of memory which has been written, the token
// of the last write to touch it.  The tracker maintains a set of pairwise
// disjoint ranges, each mapped to a token, such that a byte is covered by at
// most one range.  Writes which overlap existing ranges cause those ranges to
// be deleted, split or shortened as necessary.  Tokens are treated as opaque
// values: they are stored and returned, but never inspected.
//
// Internally, spans are held in a slice sorted by their starting offset.  Since
// spans are disjoint, this is also sorted by their ending offset, which allows
// both point lookups and collision detection to use binary search.
type Tracker[T any] struct {
	spans []Span[T]
}

// NewTracker constructs an initially empty tracker.
func NewTracker[T any]() *Tracker[T] {
	return &Tracker[T]{}
}

// Len returns the number of disjoint spans currently held.
func (p *Tracker[T]) Len() uint {
	return uint(len(p.spans))
}

// Write associates a given token with the size bytes starting at offset, that
// is the range [offset, offset+size-1].  Any existing span which collides with
// this range is dealt with accordingly:
//
//   - deleted, if the new range covers it completely;
//   - split, if the new range lies strictly inside it;
//   - shortened, if the new range overwrites only one of its ends.
//
// In all cases, those bytes of an existing span which are not overwritten
// retain their original token.  A write of zero bytes has no effect.
func (p *Tracker[T]) Write(offset uint64, size uint64, token T) {
	if size == 0 {
		return
	}
	//
	var (
		incoming = NewRange(offset, size)
		// Index of first span which could collide
		lo = p.search(incoming.Start)
		hi = lo
	)
	// Determine the run of colliding spans
	for hi < len(p.spans) && p.spans[hi].Collides(incoming) {
		hi++
	}
	// Construct replacement for the colliding run
	var (
		before []Span[T]
		after  []Span[T]
	)
	//
	for _, incumbent := range p.spans[lo:hi] {
		for _, r := range resolve(incoming, incumbent) {
			if r.End < incoming.Start {
				before = append(before, r)
			} else {
				after = append(after, r)
			}
		}
	}
	//
	replacement := append(before, Span[T]{incoming, token})
	replacement = append(replacement, after...)
	// Splice in the replacement
	p.spans = slices.Replace(p.spans, lo, hi, replacement...)
}

// GetByOffset returns the token associated with the span containing a given
// byte offset, or nothing if that byte has never been written.
func (p *Tracker[T]) GetByOffset(offset uint64) util.Option[T] {
	if i, ok := p.find(offset); ok {
		return util.Some(p.spans[i].Token)
	}
	//
	return util.None[T]()
}

// Contains determines whether or not a given byte has been written.
func (p *Tracker[T]) Contains(offset uint64) bool {
	_, ok := p.find(offset)
	return ok
}

// MustGetByOffset returns the token associated with a given byte offset, where
// the caller has already established that the byte has been written (e.g. via
// Contains).  Failing to find a span at this point means the tracker is
// internally inconsistent, and this will panic.
func (p *Tracker[T]) MustGetByOffset(offset uint64) T {
	i, ok := p.find(offset)
	//
	if !ok {
		log.WithField("offset", offset).WithField("spans", len(p.spans)).Error("provenance tracker inconsistent")
		panic(fmt.Sprintf("no span contains byte %d", offset))
	}
	//
	return p.spans[i].Token
}

// Spans returns a snapshot of the spans currently held, in order of their
// starting offset.
func (p *Tracker[T]) Spans() []Span[T] {
	return slices.Clone(p.spans)
}

// Clone returns a copy of this tracker which can be updated independently of
// the original.  Tokens themselves are copied by value.
func (p *Tracker[T]) Clone() *Tracker[T] {
	return &Tracker[T]{slices.Clone(p.spans)}
}

// Validate checks that the spans held by this tracker are well-formed, sorted
// and pairwise disjoint.  An error is returned identifying the first violation
// found.
func (p *Tracker[T]) Validate() error {
	for i, ith := range p.spans {
		if ith.Start > ith.End {
			return errors.Errorf("malformed span %s at index %d", ith.Range.String(), i)
		} else if i > 0 && p.spans[i-1].End >= ith.Start {
			return errors.Errorf("span %s overlaps or precedes span %s", ith.Range.String(),
				p.spans[i-1].Range.String())
		}
	}
	//
	return nil
}

// Find the index of the first span whose end is at or after a given offset.
// This is the only span which could contain the offset and, likewise, the first
// span which could collide with a range starting at that offset.
func (p *Tracker[T]) search(offset uint64) int {
	return sort.Search(len(p.spans), func(i int) bool {
		return p.spans[i].End >= offset
	})
}

// Find the index of the span containing a given offset (if one exists).
func (p *Tracker[T]) find(offset uint64) (int, bool) {
	i := p.search(offset)
	//
	if i < len(p.spans) && p.spans[i].Contains(offset) {
		return i, true
	}
	//
	return i, false
}

// Resolve a collision between an incoming range and an incumbent span,
// returning whatever remains of the incumbent (in order).  Remainders always
// retain the incumbent's token.
func resolve[T any](incoming Range, incumbent Span[T]) []Span[T] {
	switch {
	case incoming.Covers(incumbent.Range):
		// Incumbent completely overwritten
		return nil
	case incoming.Within(incumbent.Range):
		// Incumbent partitioned by incoming range
		left := Range{incumbent.Start, incoming.Start - 1}
		right := Range{incoming.End + 1, incumbent.End}
		//
		return []Span[T]{{left, incumbent.Token}, {right, incumbent.Token}}
	case incumbent.Start < incoming.Start:
		// Upper end of incumbent overwritten
		return []Span[T]{{Range{incumbent.Start, incoming.Start - 1}, incumbent.Token}}
	default:
		// Lower end of incumbent overwritten
		return []Span[T]{{Range{incoming.End + 1, incumbent.End}, incumbent.Token}}
	}
}
