package number

import (
	"fmt"
	"strings"

	"github.com/agbru/bigconv/internal/bigint"
	apperrors "github.com/agbru/bigconv/internal/errors"
	"github.com/agbru/bigconv/internal/limbs"
)

// Algorithm selects the decimal decoding strategy.
type Algorithm int

const (
	// AlgorithmAuto picks AlgorithmNaive up to the converter's naive
	// threshold and AlgorithmDivideAndConquer above it.
	AlgorithmAuto Algorithm = iota
	// AlgorithmNaive folds nine digits at a time into a running product,
	// O(N^2).
	AlgorithmNaive
	// AlgorithmDivideAndConquer merges base 10^9 blocks pairwise with a
	// squared multiplier per round.
	AlgorithmDivideAndConquer
)

var algorithmNames = [...]string{"auto", "naive", "divide-and-conquer"}

func (a Algorithm) String() string {
	if a < 0 || int(a) >= len(algorithmNames) {
		return fmt.Sprintf("Algorithm(%d)", int(a))
	}
	return algorithmNames[a]
}

// ParseAlgorithm maps a name ("auto", "naive", "divide-and-conquer" or
// "dc") to an Algorithm.
func ParseAlgorithm(name string) (Algorithm, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "auto":
		return AlgorithmAuto, nil
	case "naive":
		return AlgorithmNaive, nil
	case "divide-and-conquer", "dc", "dnc":
		return AlgorithmDivideAndConquer, nil
	}
	return AlgorithmAuto, apperrors.NewConfigError("unknown decoding algorithm %q", name)
}

const (
	maxPartialDigits = 9
	tenPowMaxPartial = 1_000_000_000

	// pow10KernelThreshold is the trailing zero count from which scaling goes
	// through one kernel multiplication by 10^zeros instead of repeated
	// single-limb multiplications.
	pow10KernelThreshold = maxPartialDigits * limbs.StackAllocThreshold
)

var powersOfTen = [...]limbs.Word{1, 10, 100, 1000, 10000, 100000, 1000000, 10000000, 100000000, 1000000000}

// DecimalToInt decodes a decimal digit buffer, choosing the algorithm by
// digit count. It fails with ErrNegativeScale when the buffer has no
// integral digits and ErrNonIntegral when a fractional digit is nonzero.
func (c *Converter) DecimalToInt(b *Buffer) (bigint.Int, error) {
	return c.DecodeDecimal(b, AlgorithmAuto)
}

// DecodeDecimal decodes a decimal digit buffer with the given algorithm.
// Every algorithm yields the same value for the same buffer.
func (c *Converter) DecodeDecimal(b *Buffer, alg Algorithm) (bigint.Int, error) {
	if b.Scale < 0 {
		return bigint.Zero, apperrors.ErrNegativeScale
	}
	if alg == AlgorithmAuto {
		alg = c.SelectAlgorithm(b.Len())
	}
	c.logger.Debug().
		Str("algorithm", alg.String()).
		Int("digits", b.Len()).
		Int("scale", b.Scale).
		Msg("decoding decimal digits")

	var acc accumulator
	acc.init()
	defer acc.release()

	var (
		intDigits int
		ok        bool
	)
	if alg == AlgorithmNaive {
		intDigits, ok = c.naive(b, &acc)
	} else {
		intDigits, ok = c.divideAndConquer(b, &acc)
	}
	if !ok {
		return bigint.Zero, apperrors.ErrNonIntegral
	}

	c.scaleByTrailingZeros(&acc, b.Scale-intDigits)
	return acc.result(b.Negative), nil
}

// SelectAlgorithm returns the algorithm AlgorithmAuto resolves to for a
// digit count.
func (c *Converter) SelectAlgorithm(digits int) Algorithm {
	if digits <= c.naiveThreshold {
		return AlgorithmNaive
	}
	return AlgorithmDivideAndConquer
}

// naive folds the integer digits into acc nine at a time and checks that
// every fractional digit is '0'. It returns the number of integer digits
// consumed, and false on a nonzero fractional digit.
func (c *Converter) naive(b *Buffer, acc *accumulator) (int, bool) {
	var partial limbs.Word
	partialCount := 0
	total := 0

chunks:
	for chunk := range b.Chunks() {
		intCount := min(max(b.Scale-total, 0), len(chunk))
		for _, ch := range chunk[:intCount] {
			if ch == 0 {
				break chunks
			}
			partial = partial*10 + limbs.Word(ch-'0')
			partialCount++
			total++
			if partialCount == maxPartialDigits {
				acc.mulAdd(tenPowMaxPartial, partial)
				partial = 0
				partialCount = 0
			}
		}
		for _, ch := range chunk[intCount:] {
			if ch == 0 {
				break chunks
			}
			if ch != '0' {
				return total, false
			}
		}
	}

	if partialCount > 0 {
		acc.mulAdd(powersOfTen[partialCount], partial)
	}
	return total, true
}

// scaleByTrailingZeros multiplies acc by 10^zeros.
func (c *Converter) scaleByTrailingZeros(acc *accumulator, zeros int) {
	if zeros <= 0 || acc.n == 0 {
		return
	}
	if zeros >= pow10KernelThreshold {
		p := c.pow10(zeros)
		z := make([]limbs.Word, acc.n+len(p))
		c.kernel.Multiply(acc.value(), p, z)
		acc.replace(limbs.Trim(z))
		return
	}
	for zeros >= maxPartialDigits {
		acc.mulAdd(tenPowMaxPartial, 0)
		zeros -= maxPartialDigits
	}
	if zeros > 0 {
		acc.mulAdd(powersOfTen[zeros], 0)
	}
}

// pow10 returns 10^n as trimmed limbs by binary exponentiation.
func (c *Converter) pow10(n int) []limbs.Word {
	result := []limbs.Word{1}
	base := []limbs.Word{10}
	for {
		if n&1 == 1 {
			z := make([]limbs.Word, len(result)+len(base))
			c.kernel.Multiply(result, base, z)
			result = limbs.Trim(z)
		}
		n >>= 1
		if n == 0 {
			return result
		}
		sq := make([]limbs.Word, 2*len(base))
		c.kernel.Square(base, sq)
		base = limbs.Trim(sq)
	}
}
