// This file provides pooled scratch storage for conversions to reduce GC pressure.

package limbs

import (
	"math/bits"
	"sync"
)

// StackAllocThreshold is the number of limbs a conversion keeps in inline
// (non-pooled) storage before it starts renting from the pools.
const StackAllocThreshold = 64

// ─────────────────────────────────────────────────────────────────────────────
// Word Slice Pools
// ─────────────────────────────────────────────────────────────────────────────

// wordSlicePools pools []Word slices by size class.
// Size classes are powers of 4: 64, 256, 1K, 4K, 16K, 64K, 256K, 1M, 4M limbs.
var wordSlicePools = [...]sync.Pool{
	{New: func() any { return make([]Word, 64) }},
	{New: func() any { return make([]Word, 256) }},
	{New: func() any { return make([]Word, 1024) }},
	{New: func() any { return make([]Word, 4096) }},
	{New: func() any { return make([]Word, 16384) }},
	{New: func() any { return make([]Word, 65536) }},
	{New: func() any { return make([]Word, 262144) }},
	{New: func() any { return make([]Word, 1048576) }}, // 1M limbs = 4MB
	{New: func() any { return make([]Word, 4194304) }}, // 4M limbs = 16MB
}

// wordSliceSizes defines the size classes for word slice pools.
var wordSliceSizes = [...]int{64, 256, 1024, 4096, 16384, 65536, 262144, 1048576, 4194304}

// getWordSlicePoolIndex returns the pool index for a given size.
// Returns -1 if the size is too large for pooling.
//
// wordSliceSizes are powers of 4 starting from 4^3 = 64:
// index i corresponds to size 4^(i+3), so bits.Len(size-1) maps directly to the index.
func getWordSlicePoolIndex(size int) int {
	if size <= 0 {
		return 0
	}
	if size > wordSliceSizes[len(wordSliceSizes)-1] {
		return -1
	}
	idx := (bits.Len(uint(size-1)) - 5) / 2
	if idx < 0 {
		idx = 0
	}
	return idx
}

// getWordSlicePoolIndexLinear is the O(n) reference for getWordSlicePoolIndex.
func getWordSlicePoolIndexLinear(size int) int {
	for i, s := range wordSliceSizes {
		if size <= s {
			return i
		}
	}
	return -1
}

// Acquire rents a zeroed slice of exactly size limbs from the pools. The
// backing array may be larger than requested. Sizes beyond the largest class
// are allocated directly.
//
// The slice should be returned with Release, preferably with defer:
//
//	buf := limbs.Acquire(size)
//	defer limbs.Release(buf)
func Acquire(size int) []Word {
	idx := getWordSlicePoolIndex(size)
	if idx < 0 {
		return make([]Word, size)
	}
	slice := wordSlicePools[idx].Get().([]Word)
	clear(slice)
	return slice[:size]
}

// AcquireUnsafe rents a slice without clearing it. Use this only when the
// caller overwrites every element (e.g., via copy).
func AcquireUnsafe(size int) []Word {
	idx := getWordSlicePoolIndex(size)
	if idx < 0 {
		return make([]Word, size)
	}
	slice := wordSlicePools[idx].Get().([]Word)
	return slice[:size]
}

// Release returns a slice obtained from Acquire or AcquireUnsafe to its pool.
// Slices whose capacity is not a pool size class are left to the GC.
// Safe to call with nil.
func Release(slice []Word) {
	if slice == nil {
		return
	}
	c := cap(slice)
	idx := getWordSlicePoolIndex(c)
	if idx >= 0 && wordSliceSizes[idx] == c {
		wordSlicePools[idx].Put(slice[:c])
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Byte Slice Pools (two's-complement images for hex formatting)
// ─────────────────────────────────────────────────────────────────────────────

var byteSlicePools = [...]sync.Pool{
	{New: func() any { return make([]byte, 256) }},
	{New: func() any { return make([]byte, 4096) }},
	{New: func() any { return make([]byte, 65536) }},
	{New: func() any { return make([]byte, 1048576) }},
}

var byteSliceSizes = [...]int{256, 4096, 65536, 1048576}

// getByteSlicePoolIndex returns the pool index for a given size, or -1.
// byteSliceSizes are powers of 16 starting from 16^2 = 256.
func getByteSlicePoolIndex(size int) int {
	if size <= 0 {
		return 0
	}
	if size > byteSliceSizes[len(byteSliceSizes)-1] {
		return -1
	}
	idx := (bits.Len(uint(size-1)) - 5) / 4
	if idx < 0 {
		idx = 0
	}
	return idx
}

// AcquireBytes rents a byte slice of length zero and capacity of at least
// size. Return it with ReleaseBytes.
func AcquireBytes(size int) []byte {
	idx := getByteSlicePoolIndex(size)
	if idx < 0 {
		return make([]byte, 0, size)
	}
	return byteSlicePools[idx].Get().([]byte)[:0]
}

// ReleaseBytes returns a slice obtained from AcquireBytes. Safe to call with nil.
func ReleaseBytes(slice []byte) {
	if slice == nil {
		return
	}
	c := cap(slice)
	idx := getByteSlicePoolIndex(c)
	if idx >= 0 && byteSliceSizes[idx] == c {
		byteSlicePools[idx].Put(slice[:c])
	}
}
