// Package htmltext approximates a browser's innerText for parsed HTML.
package htmltext

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

var blockTags = map[string]bool{
	"address": true, "article": true, "aside": true, "blockquote": true,
	"dd": true, "div": true, "dl": true, "dt": true, "fieldset": true,
	"figure": true, "footer": true, "form": true, "h1": true, "h2": true,
	"h3": true, "h4": true, "h5": true, "h6": true, "header": true,
	"hr": true, "li": true, "main": true, "nav": true, "ol": true,
	"p": true, "section": true, "table": true, "tbody": true, "thead": true,
	"tr": true, "ul": true,
}

var skippedTags = map[string]bool{
	"script": true, "style": true, "noscript": true, "template": true, "head": true,
}

// InnerText returns the text of sel with <br> and block boundaries turned
// into line breaks. Lines are trimmed and runs of blank lines collapsed.
func InnerText(sel *goquery.Selection) string {
	var b strings.Builder
	for _, n := range sel.Nodes {
		walk(&b, n)
	}
	return normalize(b.String())
}

// Lines splits InnerText into its non-empty lines.
func Lines(sel *goquery.Selection) []string {
	text := InnerText(sel)
	if text == "" {
		return nil
	}
	var out []string
	for _, l := range strings.Split(text, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}

func walk(b *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(n.Data)
		return
	case html.ElementNode:
		if skippedTags[n.Data] {
			return
		}
		if n.Data == "br" {
			b.WriteByte('\n')
			return
		}
	}

	block := n.Type == html.ElementNode && blockTags[n.Data]
	if block {
		b.WriteByte('\n')
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(b, c)
		if c.Type == html.ElementNode && (c.Data == "td" || c.Data == "th") {
			b.WriteByte('\t')
		}
	}
	if block {
		b.WriteByte('\n')
	}
}

func normalize(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	blank := false
	for _, l := range lines {
		l = strings.Join(strings.Fields(l), " ")
		if l == "" {
			if !blank && len(out) > 0 {
				out = append(out, "")
			}
			blank = true
			continue
		}
		blank = false
		out = append(out, l)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}
