package number

import (
	"github.com/agbru/bigconv/internal/bigint"
	"github.com/agbru/bigconv/internal/limbs"
)

// hexDigitsPerLimb is the number of hex digits folded into one limb.
const hexDigitsPerLimb = 8

func hexValue(c byte) limbs.Word {
	switch {
	case c >= '0' && c <= '9':
		return limbs.Word(c - '0')
	case c >= 'a' && c <= 'f':
		return limbs.Word(c-'a') + 10
	}
	return limbs.Word(c-'A') + 10
}

// HexToInt decodes a hex digit buffer as a two's-complement integer: a first
// digit of 8 or above makes the value negative, and a leading partial block
// is sign-extended with 1 bits. It returns false for an empty buffer.
func (c *Converter) HexToInt(b *Buffer) (bigint.Int, bool) {
	total := b.Len()
	if total == 0 {
		return bigint.Zero, false
	}

	blockCount := total / hexDigitsPerLimb
	partialCount := 0
	if rem := total % hexDigitsPerLimb; rem != 0 {
		blockCount++
		partialCount = hexDigitsPerLimb - rem
	}

	negative := hexValue(b.digits[0]) >= 8
	var partial limbs.Word
	if negative && partialCount > 0 {
		partial = 0xFFFFFFFF
	}

	var inline [limbs.StackAllocThreshold]limbs.Word
	var words []limbs.Word
	if blockCount <= limbs.StackAllocThreshold {
		words = inline[:blockCount]
	} else {
		words = limbs.AcquireUnsafe(blockCount)
		defer limbs.Release(words)
	}

	pos := blockCount - 1
	remaining := total
	for chunk := range b.Chunks() {
		for _, ch := range chunk {
			if remaining == 0 {
				break
			}
			remaining--
			partial = partial<<4 | hexValue(ch)
			partialCount++
			if partialCount == hexDigitsPerLimb {
				words[pos] = partial
				pos--
				partial = 0
				partialCount = 0
			}
		}
	}

	words = limbs.Trim(words)
	if negative {
		limbs.TwosComplement(words)
	}
	return bigint.Canonicalize(negative, words), true
}
