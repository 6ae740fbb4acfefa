package number

import (
	"strings"

	apperrors "github.com/agbru/bigconv/internal/errors"
)

// MaxExponent bounds the magnitude of an exponent accepted by the scanner.
// 10^MaxExponent already needs more than 400 KB of limbs.
const MaxExponent = 1_000_000

const (
	stateSign = 1 << iota
	stateParens
	stateDigits
	stateNonZero
	stateDecimal
	stateCurrency
)

func isWhite(c byte) bool { return c == 0x20 || (c >= 0x09 && c <= 0x0D) }

func isDecimalDigit(c byte) bool { return c >= '0' && c <= '9' }

func isHexDigit(c byte) bool {
	return isDecimalDigit(c) || (c|0x20 >= 'a' && c|0x20 <= 'f')
}

func hasSymbol(s, symbol string) bool {
	return symbol != "" && strings.HasPrefix(s, symbol)
}

// Scan validates text against the grammar selected by style and collects
// its significant digits:
//
//	[ws][$][sign|(]digits[.digits][e[sign]digits][$][sign|)][ws][NUL...]
//
// Leading zeros of the integer part are dropped and adjust nothing; zeros
// after the decimal point but before the first significant digit lower the
// scale. Fractional digits are kept so the decoder can reject a nonzero
// fraction. With AllowHexSpecifier every hex digit is kept, leading zeros
// included, because the first digit carries the two's-complement sign.
//
// The returned error is ErrSyntax or ErrExponentRange; style is assumed to
// have passed ValidateStyle.
func Scan(text string, style Style, info *Info) (*Buffer, error) {
	info = info.orInvariant()
	hex := style.IsHex()
	b := newScanBuffer(len(text))
	state := 0
	p := 0

leading:
	for p < len(text) {
		rest := text[p:]
		switch {
		case style.Has(AllowLeadingWhite) && isWhite(text[p]) &&
			(state&stateSign == 0 || state&stateCurrency != 0):
			p++
		case style.Has(AllowLeadingSign) && state&stateSign == 0 && hasSymbol(rest, info.NegativeSign):
			state |= stateSign
			b.Negative = true
			p += len(info.NegativeSign)
		case style.Has(AllowLeadingSign) && state&stateSign == 0 && hasSymbol(rest, info.PositiveSign):
			state |= stateSign
			p += len(info.PositiveSign)
		case style.Has(AllowParentheses) && state&stateSign == 0 && text[p] == '(':
			state |= stateSign | stateParens
			b.Negative = true
			p++
		case style.Has(AllowCurrencySymbol) && state&stateCurrency == 0 && hasSymbol(rest, info.CurrencySymbol):
			state |= stateCurrency
			p += len(info.CurrencySymbol)
		default:
			break leading
		}
	}

digits:
	for p < len(text) {
		c := text[p]
		rest := text[p:]
		switch {
		case (hex && isHexDigit(c)) || (!hex && isDecimalDigit(c)):
			state |= stateDigits
			if c != '0' || state&stateNonZero != 0 || hex {
				b.appendDigit(c)
				if state&stateDecimal == 0 {
					b.Scale++
				}
				state |= stateNonZero
			} else if state&stateDecimal != 0 {
				b.Scale--
			}
			p++
		case style.Has(AllowDecimalPoint) && state&stateDecimal == 0 && hasSymbol(rest, info.DecimalSeparator):
			state |= stateDecimal
			p += len(info.DecimalSeparator)
		case style.Has(AllowThousands) && state&stateDigits != 0 && state&stateDecimal == 0 &&
			hasSymbol(rest, info.GroupSeparator):
			p += len(info.GroupSeparator)
		default:
			break digits
		}
	}

	if state&stateDigits == 0 {
		return nil, apperrors.ErrSyntax
	}

	if style.Has(AllowExponent) && p < len(text) && text[p]|0x20 == 'e' {
		save := p
		p++
		negativeExp := false
		switch rest := text[p:]; {
		case hasSymbol(rest, info.PositiveSign):
			p += len(info.PositiveSign)
		case hasSymbol(rest, info.NegativeSign):
			negativeExp = true
			p += len(info.NegativeSign)
		}
		if p < len(text) && isDecimalDigit(text[p]) {
			exp := 0
			for p < len(text) && isDecimalDigit(text[p]) {
				exp = exp*10 + int(text[p]-'0')
				if exp > MaxExponent {
					return nil, apperrors.ErrExponentRange
				}
				p++
			}
			if negativeExp {
				exp = -exp
			}
			b.Scale += exp
		} else {
			p = save
		}
	}

trailing:
	for p < len(text) {
		rest := text[p:]
		switch {
		case style.Has(AllowTrailingWhite) && isWhite(text[p]):
			p++
		case style.Has(AllowTrailingSign) && state&stateSign == 0 && hasSymbol(rest, info.NegativeSign):
			state |= stateSign
			b.Negative = true
			p += len(info.NegativeSign)
		case style.Has(AllowTrailingSign) && state&stateSign == 0 && hasSymbol(rest, info.PositiveSign):
			state |= stateSign
			p += len(info.PositiveSign)
		case state&stateParens != 0 && text[p] == ')':
			state &^= stateParens
			p++
		case style.Has(AllowCurrencySymbol) && state&stateCurrency == 0 && hasSymbol(rest, info.CurrencySymbol):
			state |= stateCurrency
			p += len(info.CurrencySymbol)
		default:
			break trailing
		}
	}

	if state&stateParens != 0 {
		return nil, apperrors.ErrSyntax
	}
	for ; p < len(text); p++ {
		if text[p] != 0 {
			return nil, apperrors.ErrSyntax
		}
	}

	if state&stateNonZero == 0 {
		b.Scale = 0
		if state&stateDecimal == 0 {
			b.Negative = false
		}
	}
	b.terminate()
	return b, nil
}
