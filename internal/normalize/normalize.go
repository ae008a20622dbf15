// Package normalize holds the pure field normalizers shared by every parser:
// locale-tolerant date and amount parsing plus text encoding cleanup.
package normalize

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// dateLayouts are tried in order. Day-first forms come before anything
// ambiguous because the statements this pipeline sees are day-first.
var dateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"02/01/06",
	"02-01-2006",
	"20060102", // OFX DTPOSTED prefix
}

// ParseDate converts a statement date string into a calendar date at midnight
// UTC. A two-field "DD/MM" form gets the current year. Returns an error on
// anything unparsable; callers must reject the record rather than guess.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return asDay(t), nil
		}
	}

	// "DD/MM" without a year defaults to the current system year.
	if t, err := time.Parse("02/01", s); err == nil {
		now := time.Now()
		return time.Date(now.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
	}

	return time.Time{}, fmt.Errorf("unrecognized date format: %q", s)
}

func asDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// currencyTokens are stripped before numeric interpretation.
var currencyTokens = []string{"R$", "US$", "$", "€", "£", "BRL", "EUR", "USD"}

// ParseAmount converts a locale-formatted monetary string to a float64.
// Both "1.234,56" and "1,234.56" normalize to 1234.56: the last separator is
// taken as the decimal point unless exactly three digits follow it, in which
// case it is a thousands separator.
func ParseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	for _, tok := range currencyTokens {
		s = strings.ReplaceAll(s, tok, "")
	}
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, " ", "")

	// Trailing-minus convention ("45,90-") used by some exports.
	neg := false
	if strings.HasSuffix(s, "-") {
		neg = true
		s = strings.TrimSuffix(s, "-")
	}
	if strings.HasPrefix(s, "-") {
		neg = !neg
		s = strings.TrimPrefix(s, "-")
	}
	if strings.HasPrefix(s, "+") {
		s = strings.TrimPrefix(s, "+")
	}

	if s == "" {
		return 0, fmt.Errorf("no digits in amount")
	}

	lastDot := strings.LastIndexByte(s, '.')
	lastComma := strings.LastIndexByte(s, ',')
	switch {
	case lastDot >= 0 && lastComma >= 0:
		if lastComma > lastDot {
			// 1.234,56 — comma is decimal
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			// 1,234.56 — dot is decimal
			s = strings.ReplaceAll(s, ",", "")
		}
	case lastComma >= 0:
		if strings.Count(s, ",") > 1 || len(s)-lastComma-1 == 3 {
			// 1,234,567 or 1,234 — commas are grouping
			s = strings.ReplaceAll(s, ",", "")
		} else {
			// 1234,56 — comma is decimal
			s = strings.Replace(s, ",", ".", 1)
		}
	case lastDot >= 0:
		if strings.Count(s, ".") > 1 {
			// 1.234.567 — dots are grouping
			s = strings.ReplaceAll(s, ".", "")
		}
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("not a number after normalization: %q", s)
	}
	if neg {
		v = -v
	}
	return v, nil
}

// DecodeText turns raw statement bytes into a UTF-8 string. Exports from
// older bank systems arrive as Windows-1252/Latin-1; if the bytes are not
// valid UTF-8 they are re-decoded through that codepage. A UTF-8 BOM is
// dropped either way.
func DecodeText(b []byte) string {
	b = bytes.TrimPrefix(b, []byte{0xEF, 0xBB, 0xBF})
	if utf8.Valid(b) {
		return string(b)
	}
	decoded, err := charmap.Windows1252.NewDecoder().Bytes(b)
	if err != nil {
		// Windows-1252 decodes any byte sequence; this path is unreachable
		// in practice but the fallback keeps the function total.
		return string(b)
	}
	return string(decoded)
}

// StripControl removes control runes other than newline and tab. Extracted
// PDF text is full of them.
func StripControl(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}
