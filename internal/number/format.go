package number

import (
	"math"
	"slices"
	"strconv"

	"github.com/agbru/bigconv/internal/bigint"
	apperrors "github.com/agbru/bigconv/internal/errors"
	"github.com/agbru/bigconv/internal/limbs"
)

const (
	billion       = 1_000_000_000
	digitsPerWord = 9

	// maxFormattedLength bounds every intermediate size of a decimal
	// conversion. Sizes past it are reported as FormatTooLargeError.
	maxFormattedLength = math.MaxInt32
)

const (
	upperHexDigits = "0123456789ABCDEF"
	lowerHexDigits = "0123456789abcdef"
)

func checkedMul(a, b int) (int, bool) {
	if a != 0 && b > maxFormattedLength/a {
		return 0, false
	}
	return a * b, true
}

func checkedAdd(a, b int) (int, bool) {
	if a > maxFormattedLength-b {
		return 0, false
	}
	return a + b, true
}

// appendFormatted appends v formatted with format to dst.
func appendFormatted(dst []byte, v bigint.Int, format string, info *Info) ([]byte, error) {
	ch, precision, err := ParseFormatSpecifier(format)
	if err != nil {
		return dst, err
	}
	switch ch {
	case 'X', 'x':
		return appendHex(dst, v, ch, precision)
	case 'D', 'd', 'R', 'r', 'G', 'g':
		return appendDecimal(dst, v, precision, info)
	case 'N', 'n', 'F', 'f', 'E', 'e':
		return appendGeneral(dst, v, ch, precision, info)
	}
	return dst, apperrors.FormatSpecError{Format: format, Reason: "unsupported format letter"}
}

// hexWidth returns the number of hex characters appendHex emits for a
// two's-complement image before padding.
func hexWidth(img []byte) int {
	n := 2 * len(img)
	if head := img[len(img)-1]; head > 0xF7 || head < 0x08 {
		n--
	}
	return n
}

// hexCapacity returns the size of the two's-complement image of a
// magnitude of limbCount limbs and the character count of its hex rendering
// padded to precision.
func hexCapacity(limbCount, precision int) (image, text int, err error) {
	image, ok := checkedMul(limbCount, limbs.WordBytes)
	if ok {
		image, ok = checkedAdd(image, 1)
	}
	if ok {
		text, ok = checkedMul(image, 2)
	}
	if !ok {
		return 0, 0, apperrors.FormatTooLargeError{Limbs: limbCount}
	}
	return image, max(text, precision), nil
}

// appendHex appends the two's-complement hex form of v. The most significant
// byte is shortened to one character when that keeps the sign nibble:
// [FF..F8] drop the high F, [F7..08] keep both characters, [07..00] drop the
// high 0. Padding uses '0' for non-negative values and 'F' ('f') otherwise.
func appendHex(dst []byte, v bigint.Int, format byte, precision int) ([]byte, error) {
	digits := upperHexDigits
	pad := byte('0')
	if format == 'x' {
		digits = lowerHexDigits
	}
	if v.Sign() < 0 {
		pad = digits[0xF]
	}

	imageLen, textLen, err := hexCapacity(len(v.Magnitude()), precision)
	if err != nil {
		return dst, err
	}
	if _, ok := checkedAdd(len(dst), textLen); !ok {
		return dst, apperrors.FormatTooLargeError{Limbs: len(v.Magnitude())}
	}

	img := limbs.AcquireBytes(imageLen)
	defer limbs.ReleaseBytes(img)
	img = bigint.AppendTwosComplement(img, v)

	dst = slices.Grow(dst, textLen)
	for n := precision - hexWidth(img); n > 0; n-- {
		dst = append(dst, pad)
	}

	cur := len(img) - 1
	head := img[cur]
	switch {
	case head > 0xF7:
		dst = append(dst, digits[head-0xF0])
		cur--
	case head < 0x08:
		dst = append(dst, digits[head])
		cur--
	}
	for ; cur >= 0; cur-- {
		b := img[cur]
		dst = append(dst, digits[b>>4], digits[b&0xF])
	}
	return dst, nil
}

// appendMagnitudeDigits appends the decimal digits of mag, without leading
// zeros, to dst. Zero is written as "0". The magnitude is first re-expressed
// in base 10^9 by folding in one limb at a time from the top.
func appendMagnitudeDigits(dst []byte, mag []limbs.Word) ([]byte, error) {
	if len(mag) == 0 {
		return append(dst, '0'), nil
	}

	blocksMax, err := decimalBlockCapacity(len(mag))
	if err != nil {
		return dst, err
	}
	blocks := limbs.Acquire(blocksMax)
	defer limbs.Release(blocks)

	n := 0
	for i := len(mag) - 1; i >= 0; i-- {
		carry := mag[i]
		for j := 0; j < n; j++ {
			res := uint64(blocks[j])<<32 | uint64(carry)
			blocks[j] = limbs.Word(res % billion)
			carry = limbs.Word(res / billion)
		}
		if carry != 0 {
			blocks[n] = carry % billion
			n++
			carry /= billion
			if carry != 0 {
				blocks[n] = carry
				n++
			}
		}
	}

	if _, err := decimalTextCapacity(len(mag), n, 0, 0); err != nil {
		return dst, err
	}

	dst = strconv.AppendUint(dst, uint64(blocks[n-1]), 10)
	for i := n - 2; i >= 0; i-- {
		var group [digitsPerWord]byte
		d := blocks[i]
		for k := digitsPerWord - 1; k >= 0; k-- {
			group[k] = byte('0' + d%10)
			d /= 10
		}
		dst = append(dst, group[:]...)
	}
	return dst, nil
}

// decimalBlockCapacity returns the number of base 10^9 blocks reserved for
// a magnitude of the given limb count.
func decimalBlockCapacity(limbCount int) (int, error) {
	x, ok := checkedMul(limbCount, 10)
	if !ok {
		return 0, apperrors.FormatTooLargeError{Limbs: limbCount}
	}
	x, ok = checkedAdd(x/9, 2)
	if !ok {
		return 0, apperrors.FormatTooLargeError{Limbs: limbCount}
	}
	return x, nil
}

// decimalTextCapacity returns the character count of a decimal rendering
// with the given number of base 10^9 blocks, zero padding and sign length.
// It also checks that a terminated scratch copy of that size is addressable.
func decimalTextCapacity(limbCount, blocks, precision, signLen int) (int, error) {
	size, ok := checkedMul(blocks, digitsPerWord)
	if !ok {
		return 0, apperrors.FormatTooLargeError{Limbs: limbCount}
	}
	size = max(size, precision)
	if size, ok = checkedAdd(size, signLen); !ok {
		return 0, apperrors.FormatTooLargeError{Limbs: limbCount}
	}
	if _, ok = checkedAdd(size, 1); !ok {
		return 0, apperrors.FormatTooLargeError{Limbs: limbCount}
	}
	return size, nil
}

// appendDecimal appends the D form of v: the negative sign, zero padding up
// to precision digits, then the digits. R and G share it.
func appendDecimal(dst []byte, v bigint.Int, precision int, info *Info) ([]byte, error) {
	info = info.orInvariant()
	mag := v.Magnitude()

	signLen := 0
	if v.Sign() < 0 {
		signLen = len(info.NegativeSign)
	}
	blocks, err := decimalBlockCapacity(len(mag))
	if err != nil {
		return dst, err
	}
	size, err := decimalTextCapacity(len(mag), blocks, precision, signLen)
	if err != nil {
		return dst, err
	}

	scratch := limbs.AcquireBytes(size)
	defer func() { limbs.ReleaseBytes(scratch) }()
	scratch, err = appendMagnitudeDigits(scratch, mag)
	if err != nil {
		return dst, err
	}

	if signLen > 0 {
		dst = append(dst, info.NegativeSign...)
	}
	for n := precision - len(scratch); n > 0; n-- {
		dst = append(dst, '0')
	}
	return append(dst, scratch...), nil
}
