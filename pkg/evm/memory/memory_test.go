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
	"bytes"
	"testing"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const word = "0x11223344556677889900aabbccddeeff11223344556677889900aabbccddeeff"

func Test_Memory_Empty(t *testing.T) {
	var mem = NewMemory[int]()
	//
	assert.Equal(t, uint64(0), mem.Size())
	assert.Equal(t, uint64(0), mem.MemoryCost())
	assert.True(t, mem.Origin(0).IsEmpty())
}

func Test_Memory_Extend(t *testing.T) {
	var mem = NewMemory[int]()
	//
	mem.Extend(0, 32)
	assert.Equal(t, uint64(32), mem.Size())
	// Idempotent
	mem.Extend(0, 32)
	mem.Extend(4, 28)
	assert.Equal(t, uint64(32), mem.Size())
	// Rounds up
	mem.Extend(32, 1)
	assert.Equal(t, uint64(64), mem.Size())
	// Never shrinks
	mem.Extend(0, 1)
	assert.Equal(t, uint64(64), mem.Size())
	// Zero size has no effect
	mem.Extend(1024, 0)
	assert.Equal(t, uint64(64), mem.Size())
	assert.Equal(t, make([]byte, 64), mem.Data())
}

func Test_Memory_StoreSimple(t *testing.T) {
	var mem = NewMemory[int]()
	//
	mem.Store(0, 32, hexutil.MustDecode("0x00000000000000000000000000000000000000000000000000000000000000ff"))
	//
	check_Contents(t, mem, "0x00000000000000000000000000000000000000000000000000000000000000ff")
}

func Test_Memory_StoreExtend(t *testing.T) {
	var mem = NewMemory[int]()
	//
	mem.Store(0, 32, []byte{0xff})
	//
	check_Contents(t, mem, "0x00000000000000000000000000000000000000000000000000000000000000ff")
	assert.Equal(t, hexutil.MustDecode("0x00000000000000000000000000000000000000000000000000000000000000ff"),
		mem.Read(0, 32))
}

func Test_Memory_StoreOffset(t *testing.T) {
	var mem = NewMemory[int]()
	//
	mem.Store(4, 32, []byte{0xff})
	//
	check_Contents(t, mem, "0x0000000000000000000000000000000000000000000000000000000000000000"+
		"000000ff00000000000000000000000000000000000000000000000000000000")
}

func Test_Memory_StoreNonStandardOffset(t *testing.T) {
	var mem = NewMemory[int]()
	//
	mem.Store(34, 32, []byte{0xff})
	//
	check_Contents(t, mem, "0x0000000000000000000000000000000000000000000000000000000000000000"+
		"00000000000000000000000000000000000000000000000000000000000000ff"+
		"0000000000000000000000000000000000000000000000000000000000000000")
}

func Test_Memory_StoreByte(t *testing.T) {
	var mem = NewMemory[int]()
	//
	mem.Store(0, 1, []byte{0xff})
	//
	check_Contents(t, mem, "0xff00000000000000000000000000000000000000000000000000000000000000")
}

func Test_Memory_StoreLargeOffset(t *testing.T) {
	var (
		mem      = NewMemory[int]()
		expected = make([]byte, 288)
	)
	//
	mem.Store(255, 32, []byte{0xff})
	// 255 + 32 = 287 bytes, rounded up to 288.
	expected[286] = 0xff
	//
	assert.Equal(t, uint64(288), mem.Size())
	assert.Equal(t, expected, mem.Data())
}

func Test_Memory_StoreTruncates(t *testing.T) {
	var mem = NewMemory[int]()
	//
	mem.Store(0, 2, []byte{0xaa, 0xbb, 0xcc})
	//
	assert.Equal(t, []byte{0xaa, 0xbb, 0x00, 0x00}, mem.Read(0, 4))
}

func Test_Memory_StoreOverwritesPadding(t *testing.T) {
	var mem = NewMemory[int]()
	//
	mem.Store(0, 32, hexutil.MustDecode(word))
	mem.Store(0, 4, []byte{0x01})
	//
	assert.Equal(t, []byte{0, 0, 0, 1, 0x55, 0x66}, mem.Read(0, 6))
}

func Test_Memory_StoreEmpty(t *testing.T) {
	var mem = NewMemory[int]()
	//
	mem.Store(64, 0, []byte{0xff})
	mem.StoreWithOpcode(64, 0, []byte{0xff}, 1)
	//
	assert.Equal(t, uint64(0), mem.Size())
	assert.Empty(t, mem.Spans())
}

func Test_Memory_LoadSimple(t *testing.T) {
	var mem = NewMemory[int]()
	//
	mem.Store(0, 32, hexutil.MustDecode(word))
	//
	assert.Equal(t, hexutil.MustDecode(word), mem.Read(0, 32))
}

func Test_Memory_LoadPadOne(t *testing.T) {
	var mem = NewMemory[int]()
	//
	mem.Store(0, 32, hexutil.MustDecode(word))
	//
	assert.Equal(t, hexutil.MustDecode("0x223344556677889900aabbccddeeff11223344556677889900aabbccddeeff00"),
		mem.Read(1, 32))
	assert.Equal(t, uint64(32), mem.Size())
}

func Test_Memory_LoadPadLarge(t *testing.T) {
	var mem = NewMemory[int]()
	//
	mem.Store(0, 32, hexutil.MustDecode(word))
	//
	assert.Equal(t, hexutil.MustDecode("0xff00000000000000000000000000000000000000000000000000000000000000"),
		mem.Read(31, 32))
}

func Test_Memory_LoadBeyondExtent(t *testing.T) {
	var mem = NewMemory[int]()
	//
	assert.Equal(t, make([]byte, 32), mem.Read(1000, 32))
	assert.Empty(t, mem.Read(0, 0))
	assert.Equal(t, uint64(0), mem.Size())
	//
	mem.Store(0, 32, hexutil.MustDecode(word))
	assert.Equal(t, make([]byte, 64), mem.Read(32, 64))
	assert.Equal(t, uint64(32), mem.Size())
}

func Test_Memory_ClampStore(t *testing.T) {
	var mem = NewMemory[int]()
	// Offset clamped to the ceiling
	mem.StoreWithOpcode(Ceiling+100, 1, []byte{0xff}, 1)
	//
	assert.Equal(t, uint64(Ceiling+WordSize), mem.Size())
	assert.Equal(t, []byte{0xff}, mem.Read(Ceiling, 1))
	assert.Equal(t, 1, mem.Origin(Ceiling).Unwrap())
	assert.True(t, mem.Origin(Ceiling+100).IsEmpty())
}

func Test_Memory_ClampRead(t *testing.T) {
	var mem = NewMemory[int]()
	//
	mem.Store(Ceiling, 1, []byte{0xee})
	// Both offset and size clamped
	value := mem.Read(Ceiling+1000, Ceiling*4)
	//
	assert.Len(t, value, Ceiling)
	assert.Equal(t, byte(0xee), value[0])
	assert.Equal(t, uint64(Ceiling+WordSize), mem.Size())
}

func Test_Memory_RoundTrip(t *testing.T) {
	var mem = NewMemory[int]()
	//
	for _, size := range []uint64{1, 2, 31, 32, 33, 100, 1024} {
		value := bytes.Repeat([]byte{byte(size)}, int(size))
		offset := size * 7
		//
		mem.Store(offset, size, value)
		assert.Equal(t, value, mem.Read(offset, size))
		assert.Zero(t, mem.Size()%WordSize)
	}
}

func Test_Memory_Origin(t *testing.T) {
	var mem = NewMemory[string]()
	//
	mem.StoreWithOpcode(0, 32, hexutil.MustDecode(word), "mstore@1")
	mem.StoreWithOpcode(8, 4, []byte{0x01}, "mstore@2")
	mem.Store(0, 1, []byte{0x02})
	//
	assert.Equal(t, "mstore@1", mem.Origin(0).Unwrap())
	assert.Equal(t, "mstore@1", mem.Origin(7).Unwrap())
	assert.Equal(t, "mstore@2", mem.Origin(8).Unwrap())
	assert.Equal(t, "mstore@2", mem.Origin(11).Unwrap())
	assert.Equal(t, "mstore@1", mem.Origin(12).Unwrap())
	assert.Equal(t, "mstore@1", mem.Origin(31).Unwrap())
	assert.True(t, mem.Origin(32).IsEmpty())
	// Untracked store updates contents only
	assert.Equal(t, byte(0x02), mem.Read(0, 1)[0])
	require.NoError(t, mem.Validate())
	assert.Len(t, mem.Spans(), 3)
}

func Test_Memory_Clone(t *testing.T) {
	var mem = NewMemory[string]()
	//
	mem.StoreWithOpcode(0, 32, []byte{0x01}, "a")
	clone := mem.Clone()
	clone.StoreWithOpcode(16, 32, []byte{0x02}, "b")
	mem.StoreWithOpcode(0, 1, []byte{0x03}, "c")
	// Original unaffected by clone
	assert.Equal(t, uint64(32), mem.Size())
	assert.Equal(t, "a", mem.Origin(16).Unwrap())
	assert.Equal(t, byte(0x03), mem.Read(0, 1)[0])
	// Clone unaffected by original
	assert.Equal(t, uint64(64), clone.Size())
	assert.Equal(t, "b", clone.Origin(16).Unwrap())
	assert.Equal(t, "a", clone.Origin(0).Unwrap())
	assert.Equal(t, byte(0x00), clone.Read(0, 1)[0])
}

func Test_Memory_Data(t *testing.T) {
	var mem = NewMemory[int]()
	//
	mem.Store(0, 1, []byte{0x01})
	data := mem.Data()
	data[0] = 0xff
	//
	assert.Equal(t, byte(0x01), mem.Read(0, 1)[0])
}

// ===================================================================
// Test Helpers
// ===================================================================

func check_Contents[T any](t *testing.T, mem *Memory[T], expected string) {
	assert.Equal(t, hexutil.MustDecode(expected), mem.Data())
}
