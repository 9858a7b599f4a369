package search

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/qepting91/edikte-scraper/internal/domain"
)

// caseNumberRe matches "<prefix> <letters> <number>/<yy|yyyy><suffix>",
// e.g. "3 E 456/23w".
var caseNumberRe = regexp.MustCompile(`^(\d+)\s+([A-Za-z]+)\s+(\d+)/(\d{4}|\d{2})(?:\D|$)`)

// ParseCaseNumber splits a human-written Aktenzeichen into its form fields.
// Two-digit years are taken as 20yy. ok is false when raw does not match.
func ParseCaseNumber(raw string) (parts domain.CaseNumberParts, ok bool) {
	m := caseNumberRe.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return domain.CaseNumberParts{}, false
	}
	return domain.CaseNumberParts{
		RegistryPrefix: m[1],
		RegistryLetter: strings.ToUpper(m[2]),
		Number:         m[3],
		Year:           NormalizeYear(m[4]),
	}, true
}

// NormalizeYear maps years below 100 into the 2000s.
func NormalizeYear(y string) string {
	n, err := strconv.Atoi(y)
	if err != nil {
		return y
	}
	if n < 100 {
		n += 2000
	}
	return strconv.Itoa(n)
}

// FormatCaseNumber renders parts as "<prefix> <letter> <number>/<year>".
func FormatCaseNumber(p domain.CaseNumberParts) string {
	return fmt.Sprintf("%s %s %s/%s", p.RegistryPrefix, p.RegistryLetter, p.Number, p.Year)
}

// resolveCaseNumber picks the fields to fill: structured parts win, then a
// parsed raw string, then the raw string verbatim as the number.
func resolveCaseNumber(q domain.CaseNumberQuery) domain.CaseNumberParts {
	if !q.Parts.IsZero() {
		p := q.Parts
		if p.Year != "" {
			p.Year = NormalizeYear(p.Year)
		}
		return p
	}
	raw := strings.TrimSpace(q.Raw)
	if raw == "" {
		return domain.CaseNumberParts{}
	}
	if p, ok := ParseCaseNumber(raw); ok {
		return p
	}
	return domain.CaseNumberParts{Number: raw}
}
