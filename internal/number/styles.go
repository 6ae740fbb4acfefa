package number

import (
	"strconv"
	"strings"

	apperrors "github.com/agbru/bigconv/internal/errors"
)

// Style is a set of flags that selects which parts of the number grammar the
// scanner accepts. The flag values match the NumberStyles enumeration used by
// .NET so style masks can be exchanged numerically.
type Style uint32

const (
	AllowLeadingWhite   Style = 1 << iota // leading 0x09-0x0D and 0x20
	AllowTrailingWhite                    // trailing 0x09-0x0D and 0x20
	AllowLeadingSign                      // PositiveSign / NegativeSign before the digits
	AllowTrailingSign                     // PositiveSign / NegativeSign after the digits
	AllowParentheses                      // "(123)" means -123
	AllowDecimalPoint                     // DecimalSeparator; fractional digits must be zero
	AllowThousands                        // GroupSeparator between integer digits
	AllowExponent                         // e/E followed by an optionally signed exponent
	AllowCurrencySymbol                   // CurrencySymbol before or after the number
	AllowHexSpecifier                     // digits are hexadecimal, two's-complement

	StyleNone Style = 0

	Integer   = AllowLeadingWhite | AllowTrailingWhite | AllowLeadingSign
	HexNumber = AllowLeadingWhite | AllowTrailingWhite | AllowHexSpecifier
	Number    = Integer | AllowTrailingSign | AllowDecimalPoint | AllowThousands
	Float     = Integer | AllowDecimalPoint | AllowExponent
	Currency  = Number | AllowParentheses | AllowCurrencySymbol
	Any       = Currency | AllowExponent

	validStyleMask = AllowLeadingWhite | AllowTrailingWhite | AllowLeadingSign |
		AllowTrailingSign | AllowParentheses | AllowDecimalPoint | AllowThousands |
		AllowExponent | AllowCurrencySymbol | AllowHexSpecifier
)

var flagNames = []struct {
	flag Style
	name string
}{
	{AllowLeadingWhite, "AllowLeadingWhite"},
	{AllowTrailingWhite, "AllowTrailingWhite"},
	{AllowLeadingSign, "AllowLeadingSign"},
	{AllowTrailingSign, "AllowTrailingSign"},
	{AllowParentheses, "AllowParentheses"},
	{AllowDecimalPoint, "AllowDecimalPoint"},
	{AllowThousands, "AllowThousands"},
	{AllowExponent, "AllowExponent"},
	{AllowCurrencySymbol, "AllowCurrencySymbol"},
	{AllowHexSpecifier, "AllowHexSpecifier"},
}

var compositeNames = map[string]Style{
	"none":      StyleNone,
	"integer":   Integer,
	"hexnumber": HexNumber,
	"hex":       HexNumber,
	"number":    Number,
	"float":     Float,
	"currency":  Currency,
	"any":       Any,
}

// Has reports whether every flag in f is set in s.
func (s Style) Has(f Style) bool { return s&f == f }

// IsHex reports whether s selects the hexadecimal grammar.
func (s Style) IsHex() bool { return s&AllowHexSpecifier != 0 }

// String returns the composite name when s is one, otherwise the set flag
// names joined with '|'.
func (s Style) String() string {
	switch s {
	case StyleNone:
		return "None"
	case Integer:
		return "Integer"
	case HexNumber:
		return "HexNumber"
	case Number:
		return "Number"
	case Float:
		return "Float"
	case Currency:
		return "Currency"
	case Any:
		return "Any"
	}
	var parts []string
	for _, fn := range flagNames {
		if s&fn.flag != 0 {
			parts = append(parts, fn.name)
		}
	}
	if rest := s &^ validStyleMask; rest != 0 {
		parts = append(parts, "0x"+strings.ToUpper(strconv.FormatUint(uint64(rest), 16)))
	}
	return strings.Join(parts, "|")
}

// ParseStyle parses a style name. It accepts the composite names (Integer,
// HexNumber, Number, Float, Currency, Any, None) and flag names separated by
// '|' or ','. Matching is case-insensitive and the "Allow" prefix is
// optional.
func ParseStyle(name string) (Style, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Integer, nil
	}
	var s Style
	for _, part := range strings.FieldsFunc(name, func(r rune) bool { return r == '|' || r == ',' }) {
		key := strings.ToLower(strings.TrimSpace(part))
		if c, ok := compositeNames[key]; ok {
			s |= c
			continue
		}
		found := false
		for _, fn := range flagNames {
			lower := strings.ToLower(fn.name)
			if key == lower || "allow"+key == lower {
				s |= fn.flag
				found = true
				break
			}
		}
		if !found {
			return 0, apperrors.NewConfigError("unknown number style %q", strings.TrimSpace(part))
		}
	}
	return s, nil
}

// ValidateStyle reports whether s is usable for integer parsing. Undefined
// bits and the hex specifier combined with anything outside HexNumber are
// rejected with a StyleError.
func ValidateStyle(s Style) error {
	if s&^validStyleMask != 0 {
		return apperrors.StyleError{Style: uint32(s), Reason: "undefined style flags"}
	}
	if s.IsHex() && s&^HexNumber != 0 {
		return apperrors.StyleError{Style: uint32(s), Reason: "hex specifier may only be combined with HexNumber flags"}
	}
	return nil
}
