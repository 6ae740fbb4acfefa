// Pool pre-warming for adaptive buffer pre-allocation based on input size.

package limbs

import "sync/atomic"

// ─────────────────────────────────────────────────────────────────────────────
// Pool Pre-warming
// ─────────────────────────────────────────────────────────────────────────────

// EstimateLimbs returns an upper bound on the number of limbs needed to hold
// a decimal number of the given digit count.
func EstimateLimbs(digits int) int {
	if digits <= 0 {
		return 0
	}
	// log2(10)/32 < 0.1039; ceil plus one spare limb
	return digits/9 + 2
}

// PreWarm pre-allocates buffers in the word pools sized for decoding a number
// of the given digit count. The divide-and-conquer decoder holds two buffers
// of the full result size plus the multiplier, so the number of buffers put
// into the pool scales with the input:
//   - digits < 100,000: 2 buffers
//   - 100,000 ≤ digits < 1,000,000: 3 buffers
//   - digits ≥ 1,000,000: 4 buffers
//
// Parameters:
//   - digits: The largest expected input size in decimal digits.
func PreWarm(digits int) {
	size := EstimateLimbs(digits)
	if size <= StackAllocThreshold {
		return
	}

	numBuffers := 2
	if digits >= 1_000_000 {
		numBuffers = 4
	} else if digits >= 100_000 {
		numBuffers = 3
	}

	idx := getWordSlicePoolIndex(size)
	if idx < 0 {
		return
	}
	for i := 0; i < numBuffers; i++ {
		wordSlicePools[idx].Put(make([]Word, wordSliceSizes[idx]))
	}
}

// poolsWarmed tracks whether pools have been pre-warmed.
var poolsWarmed atomic.Bool

// EnsureWarmed pre-warms the pools exactly once. It is safe to call
// concurrently; only the first call allocates.
//
// Parameters:
//   - digits: The largest expected input size in decimal digits.
func EnsureWarmed(digits int) {
	if poolsWarmed.CompareAndSwap(false, true) {
		PreWarm(digits)
	}
}
