package number

import (
	"slices"

	"golang.org/x/text/language"

	apperrors "github.com/agbru/bigconv/internal/errors"
)

// Info holds the culture symbols the scanner and the formatters use. Only
// the symbols an integer conversion needs are modelled.
type Info struct {
	NegativeSign     string
	PositiveSign     string
	DecimalSeparator string
	GroupSeparator   string
	CurrencySymbol   string
	// GroupSizes lists digit group widths from the decimal point outwards.
	// The last size repeats; a trailing 0 stops grouping.
	GroupSizes []int
}

// InvariantInfo returns the culture-independent symbols.
func InvariantInfo() *Info {
	return &Info{
		NegativeSign:     "-",
		PositiveSign:     "+",
		DecimalSeparator: ".",
		GroupSeparator:   ",",
		CurrencySymbol:   "¤",
		GroupSizes:       []int{3},
	}
}

// Clone returns a deep copy of i.
func (i *Info) Clone() *Info {
	c := *i
	c.GroupSizes = slices.Clone(i.GroupSizes)
	return &c
}

// orInvariant returns i, or the invariant symbols when i is nil.
func (i *Info) orInvariant() *Info {
	if i == nil {
		return InvariantInfo()
	}
	return i
}

var localeTags = []language.Tag{
	language.Und,
	language.English,
	language.French,
	language.German,
	language.MustParse("en-IN"),
	language.Japanese,
	language.MustParse("de-CH"),
}

var localeInfos = []Info{
	{NegativeSign: "-", PositiveSign: "+", DecimalSeparator: ".", GroupSeparator: ",", CurrencySymbol: "¤", GroupSizes: []int{3}},
	{NegativeSign: "-", PositiveSign: "+", DecimalSeparator: ".", GroupSeparator: ",", CurrencySymbol: "$", GroupSizes: []int{3}},
	{NegativeSign: "-", PositiveSign: "+", DecimalSeparator: ",", GroupSeparator: " ", CurrencySymbol: "€", GroupSizes: []int{3}},
	{NegativeSign: "-", PositiveSign: "+", DecimalSeparator: ",", GroupSeparator: ".", CurrencySymbol: "€", GroupSizes: []int{3}},
	{NegativeSign: "-", PositiveSign: "+", DecimalSeparator: ".", GroupSeparator: ",", CurrencySymbol: "₹", GroupSizes: []int{3, 2}},
	{NegativeSign: "-", PositiveSign: "+", DecimalSeparator: ".", GroupSeparator: ",", CurrencySymbol: "¥", GroupSizes: []int{3}},
	{NegativeSign: "-", PositiveSign: "+", DecimalSeparator: ".", GroupSeparator: "’", CurrencySymbol: "CHF", GroupSizes: []int{3}},
}

var localeMatcher = language.NewMatcher(localeTags)

// InfoForLocale returns the symbols of the closest supported locale for a
// BCP 47 tag such as "fr-CA" or "en-IN". Tags with no reasonable match get
// the invariant symbols; malformed tags are a ConfigError.
func InfoForLocale(tag string) (*Info, error) {
	if tag == "" {
		return InvariantInfo(), nil
	}
	t, err := language.Parse(tag)
	if err != nil {
		return nil, apperrors.NewConfigError("invalid locale %q: %v", tag, err)
	}
	_, idx, conf := localeMatcher.Match(t)
	if conf == language.No {
		return InvariantInfo(), nil
	}
	return localeInfos[idx].Clone(), nil
}
