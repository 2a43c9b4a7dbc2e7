package importer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cashplan/backend/internal/types"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

// DateLayout is one recognized date format. The list of layouts is data,
// not code: it is exposed so the host can offer a format picker.
type DateLayout struct {
	Name       string `json:"name"`
	Layout     string `json:"layout"`
	DayFirst   bool   `json:"dayFirst"`
	MonthFirst bool   `json:"monthFirst"`
}

// DateLayouts is the fixed ordered list of recognized date layouts.
// Detection and fallback parsing try them in this order.
var DateLayouts = []DateLayout{
	{Name: "iso", Layout: "2006-01-02"},
	{Name: "iso-slash", Layout: "2006/01/02"},
	{Name: "iso-dot", Layout: "2006.01.02"},
	{Name: "day-month-year", Layout: "02/01/2006", DayFirst: true},
	{Name: "day-month-year-dash", Layout: "02-01-2006", DayFirst: true},
	{Name: "day-month-year-dot", Layout: "02.01.2006", DayFirst: true},
	{Name: "month-day-year", Layout: "01/02/2006", MonthFirst: true},
	{Name: "month-day-year-dash", Layout: "01-02-2006", MonthFirst: true},
	{Name: "month-day-year-dot", Layout: "01.02.2006", MonthFirst: true},
}

// CurrencySymbols is the list of symbols and ISO codes stripped from
// amounts before parsing, exposed for the host to inspect.
var CurrencySymbols = currencySymbols()

func currencySymbols() []string {
	codes := []string{"USD", "EUR", "GBP", "JPY", "CHF", "CAD", "AUD", "CNY", "SEK", "NOK", "DKK", "PLN", "INR", "BRL", "ZAR", "KRW"}

	symbols := make([]string, 0, len(codes)*2)
	for _, code := range codes {
		unit := currency.MustParseISO(code)
		symbol := fmt.Sprintf("%v", currency.Symbol(unit))
		if symbol != code {
			symbols = append(symbols, symbol)
		}
		symbols = append(symbols, code)
	}

	return symbols
}

var (
	ErrNoDateFormat        = errors.New("no recognized date format matches all samples")
	ErrAmbiguousDateFormat = errors.New("the samples are ambiguous between day-first and month-first formats")
)

// ParseDate parses a raw date string. The hinted layout name is tried
// first, then all known layouts in order. It returns nil on total
// failure and never guesses a default date.
func ParseDate(raw string, formatHint string) *types.Date {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	if formatHint != "" {
		for _, layout := range DateLayouts {
			if layout.Name == formatHint {
				if d, err := types.ParseDateLayout(raw, layout.Layout); err == nil {
					return &d
				}
				break
			}
		}
	}

	for _, layout := range DateLayouts {
		if d, err := types.ParseDateLayout(raw, layout.Layout); err == nil {
			return &d
		}
	}

	return nil
}

// DetectDateFormat picks the first layout under which all samples parse.
//
// When both the day-first and the month-first variant of a separator
// parse every sample, all sampled day components are 12 or lower and the
// two cannot be told apart. That case is rejected with
// ErrAmbiguousDateFormat instead of guessing, callers must allow a
// manual override.
func DetectDateFormat(samples []string) (string, error) {
	trimmed := make([]string, 0, len(samples))
	for _, sample := range samples {
		if s := strings.TrimSpace(sample); s != "" {
			trimmed = append(trimmed, s)
		}
	}

	if len(trimmed) == 0 {
		return "", ErrNoDateFormat
	}

	parsesAll := func(layout DateLayout) bool {
		for _, sample := range trimmed {
			if _, err := types.ParseDateLayout(sample, layout.Layout); err != nil {
				return false
			}
		}
		return true
	}

	for _, layout := range DateLayouts {
		if !parsesAll(layout) {
			continue
		}

		if layout.DayFirst || layout.MonthFirst {
			for _, other := range DateLayouts {
				if other.Layout == layout.Layout || other.Name == layout.Name {
					continue
				}

				ambiguous := (layout.DayFirst && other.MonthFirst) || (layout.MonthFirst && other.DayFirst)
				if ambiguous && separator(other.Layout) == separator(layout.Layout) && parsesAll(other) {
					return "", ErrAmbiguousDateFormat
				}
			}
		}

		return layout.Name, nil
	}

	return "", ErrNoDateFormat
}

func separator(layout string) string {
	for _, sep := range []string{"/", "-", "."} {
		if strings.Contains(layout, sep) {
			return sep
		}
	}

	return ""
}

// ParseAmount parses a raw amount string into a signed decimal.
//
// Currency symbols and thousands separators are stripped, parenthesized
// values are interpreted as negative per bank statement convention. It
// returns nil, not zero, on unparseable input.
func ParseAmount(raw string) *decimal.Decimal {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}

	for _, symbol := range CurrencySymbols {
		s = strings.ReplaceAll(s, symbol, "")
	}
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "-") {
		negative = !negative
		s = s[1:]
	} else if strings.HasPrefix(s, "+") {
		s = s[1:]
	}

	s = normalizeSeparators(s)

	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil
	}

	if negative {
		d = d.Neg()
	}

	return &d
}

// normalizeSeparators reduces thousands and decimal separators to the
// decimal point form the decimal parser expects. The last separator in
// the string wins as the decimal mark, so both "1,234.56" and
// "1.234,56" come out right.
func normalizeSeparators(s string) string {
	lastComma := strings.LastIndex(s, ",")
	lastDot := strings.LastIndex(s, ".")

	if lastComma > lastDot {
		s = strings.ReplaceAll(s, ".", "")
		i := strings.LastIndex(s, ",")
		s = strings.ReplaceAll(s[:i], ",", "") + "." + s[i+1:]
	} else {
		s = strings.ReplaceAll(s, ",", "")
	}

	return s
}
