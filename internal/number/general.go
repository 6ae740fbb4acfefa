package number

import (
	"strconv"

	"github.com/agbru/bigconv/internal/bigint"
	"github.com/agbru/bigconv/internal/limbs"
)

const (
	defaultFixedDecimals      = 2 // F and N
	defaultScientificDecimals = 6 // E
	minExponentDigits         = 3
)

// appendGeneral appends the N (grouped), F (fixed) or E (scientific) form of
// v. Integers have no fractional digits, so N and F only append zeros after
// the decimal separator; E rounds the digits half up to precision decimals.
func appendGeneral(dst []byte, v bigint.Int, format byte, precision int, info *Info) ([]byte, error) {
	info = info.orInvariant()
	mag := v.Magnitude()

	blocks, err := decimalBlockCapacity(len(mag))
	if err != nil {
		return dst, err
	}
	size, err := decimalTextCapacity(len(mag), blocks, 0, 0)
	if err != nil {
		return dst, err
	}
	digits := limbs.AcquireBytes(size)
	defer func() { limbs.ReleaseBytes(digits) }()
	if digits, err = appendMagnitudeDigits(digits, mag); err != nil {
		return dst, err
	}

	if v.Sign() < 0 {
		dst = append(dst, info.NegativeSign...)
	}

	switch format {
	case 'E', 'e':
		if precision < 0 {
			precision = defaultScientificDecimals
		}
		return appendScientific(dst, digits, format, precision, info), nil
	case 'N', 'n':
		dst = appendGrouped(dst, digits, info.GroupSeparator, info.GroupSizes)
	default:
		dst = append(dst, digits...)
	}

	if precision < 0 {
		precision = defaultFixedDecimals
	}
	if precision > 0 {
		dst = append(dst, info.DecimalSeparator...)
		for ; precision > 0; precision-- {
			dst = append(dst, '0')
		}
	}
	return dst, nil
}

// appendGrouped appends digits with sep inserted between groups. sizes are
// the group widths from the right; the last one repeats and 0 ends grouping.
func appendGrouped(dst, digits []byte, sep string, sizes []int) []byte {
	if sep == "" || len(sizes) == 0 {
		return append(dst, digits...)
	}

	// separator positions, collected right to left
	var cuts []int
	pos := len(digits)
	i, size := 0, sizes[0]
	for size > 0 && pos > size {
		pos -= size
		cuts = append(cuts, pos)
		if i < len(sizes)-1 {
			i++
			size = sizes[i]
		}
	}

	prev := 0
	for k := len(cuts) - 1; k >= 0; k-- {
		dst = append(dst, digits[prev:cuts[k]]...)
		dst = append(dst, sep...)
		prev = cuts[k]
	}
	return append(dst, digits[prev:]...)
}

// appendScientific appends d.ddddE+xxx with precision decimals, rounding
// half up on the first dropped digit.
func appendScientific(dst, digits []byte, format byte, precision int, info *Info) []byte {
	exponent := len(digits) - 1
	if len(digits) == 1 && digits[0] == '0' {
		exponent = 0
	}

	mantissa := make([]byte, precision+1)
	for i := range mantissa {
		mantissa[i] = '0'
	}
	copy(mantissa, digits)

	if len(digits) > precision+1 && digits[precision+1] >= '5' {
		i := precision
		for ; i >= 0; i-- {
			if mantissa[i] != '9' {
				mantissa[i]++
				break
			}
			mantissa[i] = '0'
		}
		if i < 0 {
			// 9...9 rounded up to 10...0
			mantissa[0] = '1'
			exponent++
		}
	}

	dst = append(dst, mantissa[0])
	if precision > 0 {
		dst = append(dst, info.DecimalSeparator...)
		dst = append(dst, mantissa[1:]...)
	}
	if format == 'e' {
		dst = append(dst, 'e', '+')
	} else {
		dst = append(dst, 'E', '+')
	}
	exp := strconv.Itoa(exponent)
	for n := minExponentDigits - len(exp); n > 0; n-- {
		dst = append(dst, '0')
	}
	return append(dst, exp...)
}
