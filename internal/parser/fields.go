package parser

import (
	"regexp"
	"strconv"
	"strings"
)

// Token patterns shared by the line-oriented parsers.
var (
	// DD/MM/YYYY, DD/MM/YY or DD/MM near the start of a line.
	datePatternSlash = regexp.MustCompile(`\b(\d{1,2}/\d{1,2}(?:/\d{2,4})?)\b`)
	// ISO YYYY-MM-DD.
	datePatternISO = regexp.MustCompile(`\b(\d{4}-\d{2}-\d{2})\b`)
	// Monetary token: 1.234,56 / 1,234.56 / 45.90 / 45,90, optional sign and R$.
	amountPattern = regexp.MustCompile(`(?:[-+]\s*)?(?:R\$\s*)?\d{1,3}(?:[.,]\d{3})*[.,]\d{2}\b|(?:[-+]\s*)?(?:R\$\s*)?\d+[.,]\d{2}\b`)
	// Installment fragment "k/n" inside a description.
	installmentPattern = regexp.MustCompile(`\b(\d{1,3})/(\d{1,3})\b`)
)

// splitQuoted splits a delimited line honoring double-quoted fields that may
// contain the delimiter. Quotes are stripped from the returned fields and
// doubled quotes inside a quoted field collapse to one.
func splitQuoted(line string, sep rune) []string {
	var fields []string
	var cur strings.Builder
	inQuotes := false

	runes := []rune(line)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case r == '"':
			if inQuotes && i+1 < len(runes) && runes[i+1] == '"' {
				cur.WriteRune('"')
				i++
			} else {
				inQuotes = !inQuotes
			}
		case r == sep && !inQuotes:
			fields = append(fields, cur.String())
			cur.Reset()
		default:
			cur.WriteRune(r)
		}
	}
	fields = append(fields, cur.String())
	return fields
}

// detectInstallment looks for a "k/n" pattern in a description and returns it
// when it plausibly describes an installment (1 <= k <= n, n >= 2). The
// description itself is never modified. Returns "" when nothing matches.
func detectInstallment(desc string) string {
	for _, m := range installmentPattern.FindAllStringSubmatch(desc, -1) {
		k, err1 := strconv.Atoi(m[1])
		n, err2 := strconv.Atoi(m[2])
		if err1 != nil || err2 != nil {
			continue
		}
		if k >= 1 && n >= 2 && k <= n {
			return m[1] + "/" + m[2]
		}
	}
	return ""
}

// findDateToken returns the first date-like token in a line and the index
// range it occupies, or ok=false.
func findDateToken(line string) (token string, start, end int, ok bool) {
	if loc := datePatternISO.FindStringIndex(line); loc != nil {
		return line[loc[0]:loc[1]], loc[0], loc[1], true
	}
	if loc := datePatternSlash.FindStringIndex(line); loc != nil {
		return line[loc[0]:loc[1]], loc[0], loc[1], true
	}
	return "", 0, 0, false
}

// findAmountToken returns the first amount-like token at or after the given
// offset, with its start index. The first amount after the description is
// the transaction value; a later token on the same line is a running
// balance and must not be picked up.
func findAmountToken(line string, from int) (token string, start int, ok bool) {
	loc := amountPattern.FindStringIndex(line[from:])
	if loc == nil {
		return "", 0, false
	}
	return line[from+loc[0] : from+loc[1]], from + loc[0], true
}

// containsAnyFold reports whether text contains any of the needles,
// case-insensitively.
func containsAnyFold(text string, needles []string) bool {
	lower := strings.ToLower(text)
	for _, n := range needles {
		if strings.Contains(lower, strings.ToLower(n)) {
			return true
		}
	}
	return false
}

// truncate caps a string at n runes.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
