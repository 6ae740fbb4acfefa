package number

import (
	"runtime"
	"sync"

	"github.com/agbru/bigconv/internal/limbs"
)

// digitRatio is log_{2^32}(10^9): the number of limbs a base 10^9 block
// occupies once converted.
const digitRatio = 0.934292276687070661

// divideAndConquer splits the integer digits into base 10^9 blocks, stored
// little-endian, and merges adjacent pairs as low + high*10^(9*blockSize)
// until a single block spans the number. The merged buffer is handed to acc.
func (c *Converter) divideAndConquer(b *Buffer, acc *accumulator) (int, bool) {
	total := min(b.Len(), b.Scale)
	bufferSize := (total + maxPartialDigits - 1) / maxPartialDigits

	buffer := limbs.Acquire(bufferSize)
	newBuffer := limbs.Acquire(bufferSize)
	defer func() {
		limbs.Release(buffer)
		limbs.Release(newBuffer)
	}()

	// Block bufferSize-1 holds the most significant digits and is the only
	// one that may be short.
	index := bufferSize - 1
	var block limbs.Word
	shiftUntil := (total - 1) % maxPartialDigits
	remaining := total

chunks:
	for chunk := range b.Chunks() {
		intPart := chunk[:min(remaining, len(chunk))]
		for _, ch := range intPart {
			block = block*10 + limbs.Word(ch-'0')
			if shiftUntil == 0 {
				buffer[index] = block
				block = 0
				index--
				shiftUntil = maxPartialDigits
			}
			shiftUntil--
		}
		remaining -= len(intPart)

		for _, ch := range chunk[len(intPart):] {
			if ch == 0 {
				break chunks
			}
			if ch != '0' {
				return total, false
			}
		}
	}

	blockSize := 1
	multiplier, releaseMultiplier := c.powerOfBillion(0, nil)
	defer func() { releaseMultiplier() }()

	for round := 1; ; round++ {
		c.mergeRound(buffer, newBuffer, multiplier, blockSize)
		buffer, newBuffer = newBuffer, buffer
		blockSize *= 2
		if bufferSize <= blockSize {
			break
		}
		clear(newBuffer)

		next, releaseNext := c.powerOfBillion(round, multiplier)
		releaseMultiplier()
		multiplier, releaseMultiplier = next, releaseNext
	}

	size := min(int(float64(bufferSize)*digitRatio)+1, bufferSize)
	for size > 0 && buffer[size-1] == 0 {
		size--
	}
	acc.adopt(buffer, size)
	buffer = nil
	return total, true
}

// mergeRound merges every pair of adjacent blocks of src into dst. dst must
// be zeroed. Pairs are independent, so large rounds run up to GOMAXPROCS
// pairs at once.
func (c *Converter) mergeRound(src, dst, multiplier []limbs.Word, blockSize int) {
	step := 2 * blockSize
	if blockSize < c.parallelThreshold || len(src) <= step {
		for i := 0; i < len(src); i += step {
			mergePair(c.kernel, src, dst, multiplier, blockSize, i)
		}
		return
	}

	sem := make(chan struct{}, runtime.GOMAXPROCS(0))
	var wg sync.WaitGroup
	for i := 0; i < len(src); i += step {
		sem <- struct{}{}
		wg.Go(func() {
			defer func() { <-sem }()
			mergePair(c.kernel, src, dst, multiplier, blockSize, i)
		})
	}
	wg.Wait()
}

// mergePair writes low + high*multiplier for the pair starting at limb i.
func mergePair(k limbs.Kernel, src, dst, multiplier []limbs.Word, blockSize, i int) {
	cur := src[i:]
	curNew := dst[i:]

	length := min(len(src)-i, 2*blockSize)
	lowerLen := min(length, blockSize)
	upperLen := length - lowerLen
	if upperLen != 0 {
		k.Multiply(multiplier, cur[blockSize:blockSize+upperLen], curNew[:length])
	}

	if carry := limbs.AddVV(curNew[:lowerLen], curNew[:lowerLen], cur[:lowerLen]); carry != 0 {
		for j := lowerLen; ; j++ {
			curNew[j]++
			if curNew[j] != 0 {
				break
			}
		}
	}
}

// powerOfBillion returns 10^(9*2^round) as exactly 2^round limbs, computed by
// squaring prev (the power of the previous round) unless it is cached. The
// release function must be called once the power is no longer needed.
func (c *Converter) powerOfBillion(round int, prev []limbs.Word) ([]limbs.Word, func()) {
	if c.powers != nil {
		if m, ok := c.powers.Get(round); ok {
			return m, func() {}
		}
		var m []limbs.Word
		if round == 0 {
			m = []limbs.Word{tenPowMaxPartial}
		} else {
			m = make([]limbs.Word, 2*len(prev))
			c.kernel.Square(prev, m)
		}
		c.powers.Add(round, m)
		return m, func() {}
	}

	if round == 0 {
		m := limbs.AcquireUnsafe(1)
		m[0] = tenPowMaxPartial
		return m, func() { limbs.Release(m) }
	}
	m := limbs.AcquireUnsafe(2 * len(prev))
	c.kernel.Square(prev, m)
	return m, func() { limbs.Release(m) }
}
