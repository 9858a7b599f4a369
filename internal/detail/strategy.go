package detail

import (
	"regexp"
	"strings"
)

// Strategy extracts one value from a detail page's visible text.
type Strategy interface {
	Match(text string) (string, bool)
}

// Chain tries its strategies in order and returns the first match. Page
// variants are supported by appending strategies, not by new branches.
type Chain []Strategy

// Find returns the first non-empty match, or "".
func (c Chain) Find(text string) string {
	for _, s := range c {
		if v, ok := s.Match(text); ok {
			return v
		}
	}
	return ""
}

// labelStrategy matches "<Label>:" followed by at least one line break and
// the value line.
type labelStrategy struct {
	re *regexp.Regexp
}

const anyValue = `.+`

// Label builds a strategy for label (a regexp fragment) whose value must
// match value. Matching is case-insensitive.
func Label(label, value string) Strategy {
	return labelStrategy{re: regexp.MustCompile(`(?is)` + label + `:\s*\n\s*(` + value + `)`)}
}

func (s labelStrategy) Match(text string) (string, bool) {
	m := s.re.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	v := firstLine(m[1])
	return v, v != ""
}

// firstLine keeps only the first line of v; a label owns exactly one value line.
func firstLine(v string) string {
	v = strings.TrimSpace(v)
	if i := strings.IndexByte(v, '\n'); i >= 0 {
		v = v[:i]
	}
	return strings.TrimSpace(v)
}

func labels(value string, names ...string) Chain {
	c := make(Chain, 0, len(names))
	for _, n := range names {
		c = append(c, Label(n, value))
	}
	return c
}
