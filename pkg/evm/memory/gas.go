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
	"math"

	gmath "github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/params"
)

// WordSize is the unit (in bytes) in which memory grows and is charged for.
const WordSize = 32

// WordCount returns the number of words required to hold a given number of
// bytes, that is ceil(bytes/32).
func WordCount(bytes uint64) uint64 {
	if bytes > math.MaxUint64-(WordSize-1) {
		return math.MaxUint64/WordSize + 1
	}
	//
	return (bytes + WordSize - 1) / WordSize
}

// CostOfWords returns the total gas charged for a memory of a given number of
// words.  This has a linear component and a quadratic component, such that:
//
// cost = floor(words^2 / 512) + 3*words
//
// The arithmetic saturates, rather than wrapping, for absurdly large memories.
func CostOfWords(words uint64) uint64 {
	var (
		square, overflow1 = gmath.SafeMul(words, words)
		linear, overflow2 = gmath.SafeMul(words, params.MemoryGas)
	)
	//
	if overflow1 || overflow2 {
		return math.MaxUint64
	}
	//
	cost, overflow := gmath.SafeAdd(square/params.QuadCoeffDiv, linear)
	//
	if overflow {
		return math.MaxUint64
	}
	//
	return cost
}
