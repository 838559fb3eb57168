// Package normalize turns raw workbook cells into typed transaction fields.
// Every function is pure; failures carry sheet/row/column coordinates so
// import runs can report them without aborting.
package normalize

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"
)

// ParseError describes one cell that could not be normalized. Rows that
// produce it are reported and skipped; the import run continues.
type ParseError struct {
	Sheet  string
	Row    int
	Column string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("sheet %q row %d column %q: %s", e.Sheet, e.Row, e.Column, e.Reason)
}

// absentValues are cell contents treated as "no value", compared lowercase.
// They come from spreadsheet exports of missing data, not from users.
var absentValues = map[string]bool{
	"":     true,
	"-":    true,
	"na":   true,
	"n/a":  true,
	"nan":  true,
	"nat":  true,
	"null": true,
}

// currencyTag matches Excel-style bracketed currency markers such as [$],
// [$CHF] or [$CHF-807] (locale-suffixed format codes).
var currencyTag = regexp.MustCompile(`\[\$([^\]]*)\]`)

// IsAbsent reports whether a cell holds no usable value.
func IsAbsent(value string) bool {
	return absentValues[strings.ToLower(strings.TrimSpace(value))]
}

// CleanText trims a cell and collapses inner whitespace runs to single spaces.
func CleanText(value string) string {
	return strings.Join(strings.Fields(value), " ")
}

// StripTag removes bracketed currency markers from a cell and returns the
// remainder plus the currency code embedded in the first non-empty tag, if
// any. A locale suffix after the code ("CHF-807") is dropped.
func StripTag(value string) (rest, code string) {
	rest = currencyTag.ReplaceAllStringFunc(value, func(tag string) string {
		inner := currencyTag.FindStringSubmatch(tag)[1]
		inner, _, _ = strings.Cut(inner, "-")
		if inner = strings.TrimSpace(inner); inner != "" && code == "" {
			code = inner
		}
		return ""
	})
	return strings.TrimSpace(rest), code
}

// CleanAmount parses one numeric cell into a decimal. It strips bracketed
// currency markers (returning any embedded code as a hint), removes
// apostrophe and whitespace grouping separators, and accepts a decimal comma.
// Whatever remains must parse exactly; malformed input is an error, never a
// silent zero.
func CleanAmount(value string) (decimal.Decimal, string, error) {
	rest, hint := StripTag(value)

	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == '\'' || r == '’' {
			return -1
		}
		return r
	}, rest)
	cleaned = strings.ReplaceAll(cleaned, ",", ".")

	amount, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Decimal{}, hint, fmt.Errorf("non-numeric amount %q", value)
	}

	return amount, hint, nil
}

// dateLayouts are tried in order. ISO forms come first so that four-digit
// lead years are never mistaken for days; the remaining forms are day-first,
// matching the source exports.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2.1.2006",
	"2-1-2006",
	"2/1/2006",
}

// CleanDate parses one date cell to a UTC calendar date. Bracketed markers
// are stripped first; datetime forms are truncated to their date.
func CleanDate(value string) (time.Time, error) {
	rest, _ := StripTag(value)
	rest = strings.TrimSpace(rest)

	for _, layout := range dateLayouts {
		parsed, err := time.Parse(layout, rest)
		if err != nil {
			continue
		}
		return time.Date(parsed.Year(), parsed.Month(), parsed.Day(), 0, 0, 0, 0, time.UTC), nil
	}

	return time.Time{}, fmt.Errorf("unparseable date %q", value)
}
