package attachment

import (
	"strings"

	"github.com/qepting91/edikte-scraper/internal/browser"
)

// attachmentPath marks Lotus Notes file attachments in a URL.
const attachmentPath = "$file"

// Strategy selects candidate PDF links from a page's anchors.
type Strategy struct {
	Name  string
	Match func(l browser.Link) bool
}

// DefaultStrategies is the fixed priority order. Strategies are never
// combined: each one's candidates are tried before moving to the next.
var DefaultStrategies = []Strategy{
	{"attachment-pdf", func(l browser.Link) bool {
		h := strings.ToLower(l.Href)
		return strings.Contains(h, attachmentPath) && strings.Contains(h, "pdf")
	}},
	{"attachment", func(l browser.Link) bool {
		return strings.Contains(strings.ToLower(l.Href), attachmentPath)
	}},
	{"langgutachten-text", func(l browser.Link) bool {
		return strings.Contains(strings.ToLower(l.Text), "langgutachten")
	}},
	{"pdf-extension", func(l browser.Link) bool {
		return strings.Contains(strings.ToLower(l.Href), ".pdf")
	}},
	{"gutachten-keyword", func(l browser.Link) bool {
		return strings.Contains(strings.ToLower(l.Href), "gutachten") ||
			strings.Contains(strings.ToLower(l.Text), "gutachten")
	}},
	{"langtext-text", func(l browser.Link) bool {
		return strings.Contains(strings.ToLower(l.Text), "langtext")
	}},
	{"pdf-text", func(l browser.Link) bool {
		return strings.Contains(l.Text, "PDF")
	}},
}

// Matches returns the links s accepts, in page order.
func (s Strategy) Matches(links []browser.Link) []browser.Link {
	var out []browser.Link
	for _, l := range links {
		if s.Match(l) {
			out = append(out, l)
		}
	}
	return out
}

// Select returns the first strategy with matches and its matching links.
// ok is false when no strategy matches.
func Select(strategies []Strategy, links []browser.Link) (name string, matched []browser.Link, ok bool) {
	for _, s := range strategies {
		if m := s.Matches(links); len(m) > 0 {
			return s.Name, m, true
		}
	}
	return "", nil, false
}

// directFile reports whether href points straight at a file, which makes a
// plain HTTP fetch worth trying.
func directFile(href string) bool {
	h := strings.ToLower(href)
	return strings.HasSuffix(h, ".pdf") || strings.Contains(h, attachmentPath)
}
