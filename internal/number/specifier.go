package number

import apperrors "github.com/agbru/bigconv/internal/errors"

// NoPrecision is the precision ParseFormatSpecifier reports when the letter
// is not followed by digits.
const NoPrecision = -1

func isASCIILetter(c byte) bool { return (c|0x20) >= 'a' && (c|0x20) <= 'z' }

// ParseFormatSpecifier splits a standard format string into its letter and
// precision. An empty format means "R". The letter may be followed by up to
// nine significant digits; leading zeros are allowed and a NUL byte ends the
// specifier. Anything else is a custom format, which is not supported.
func ParseFormatSpecifier(format string) (byte, int, error) {
	if format == "" {
		return 'R', NoPrecision, nil
	}
	ch := format[0]
	if !isASCIILetter(ch) {
		return 0, 0, apperrors.FormatSpecError{Format: format, Reason: "custom format strings are not supported"}
	}

	i := 1
	n := 0
	for i < len(format) && isDecimalDigit(format[i]) {
		if n >= 100_000_000 {
			return 0, 0, apperrors.FormatSpecError{Format: format, Reason: "precision exceeds 999999999"}
		}
		n = n*10 + int(format[i]-'0')
		i++
	}
	if i < len(format) && format[i] != 0 {
		return 0, 0, apperrors.FormatSpecError{Format: format, Reason: "custom format strings are not supported"}
	}
	if i == 1 {
		return ch, NoPrecision, nil
	}
	return ch, n, nil
}

// ValidateFormat reports whether format is a specifier Format accepts.
func ValidateFormat(format string) error {
	ch, _, err := ParseFormatSpecifier(format)
	if err != nil {
		return err
	}
	switch ch | 0x20 {
	case 'x', 'd', 'r', 'g', 'n', 'f', 'e':
		return nil
	}
	return apperrors.FormatSpecError{Format: format, Reason: "unsupported format letter"}
}
