package number

import (
	"github.com/agbru/bigconv/internal/bigint"
	"github.com/agbru/bigconv/internal/limbs"
)

// accumulator is the growing result of a decimal decode. Small results live
// in the inline array; once that is full the words move to a pool rental that
// doubles on every further overflow. An accumulator must not be copied after
// init, and release must run on every exit path.
type accumulator struct {
	inline [limbs.StackAllocThreshold]limbs.Word
	words  []limbs.Word
	n      int
	rented bool
}

func (a *accumulator) init() {
	a.words = a.inline[:]
	a.n = 0
	a.rented = false
}

// adopt takes ownership of a pool rental whose first n words are the value.
func (a *accumulator) adopt(words []limbs.Word, n int) {
	a.release()
	a.words = words
	a.n = n
	a.rented = true
}

// replace swaps in heap storage that is not owned by the pool.
func (a *accumulator) replace(words []limbs.Word) {
	a.release()
	a.words = words
	a.n = len(words)
}

func (a *accumulator) release() {
	if a.rented {
		limbs.Release(a.words)
		a.rented = false
	}
	a.words = nil
}

func (a *accumulator) value() []limbs.Word { return a.words[:a.n] }

// mulAdd sets the accumulator to acc*m + add.
func (a *accumulator) mulAdd(m, add limbs.Word) {
	carry := limbs.MulAddVWW(a.words[:a.n], a.words[:a.n], m, add)
	if carry == 0 {
		return
	}
	if a.n == len(a.words) {
		a.grow()
	}
	a.words[a.n] = carry
	a.n++
}

func (a *accumulator) grow() {
	bigger := limbs.AcquireUnsafe(2 * max(len(a.words), 1))
	copy(bigger, a.words[:a.n])
	rented := a.rented
	old := a.words
	a.words = bigger
	if rented {
		limbs.Release(old)
	}
	a.rented = true
}

// result canonicalizes the accumulated magnitude. The limbs are copied, so
// the accumulator may be released afterwards.
func (a *accumulator) result(negative bool) bigint.Int {
	return bigint.Canonicalize(negative, a.value())
}
