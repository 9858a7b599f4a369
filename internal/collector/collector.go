// Package collector turns a rendered search result listing into ResultStubs.
package collector

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/qepting91/edikte-scraper/internal/browser"
	"github.com/qepting91/edikte-scraper/internal/domain"
	"github.com/qepting91/edikte-scraper/internal/htmltext"
)

// ResultRows selects the rows of the portal's DataTables result table.
const ResultRows = "#DataTables_Table_0 tbody tr"

// Collector parses result listings. Relative links resolve against baseURL.
type Collector struct {
	base *url.URL
}

// New returns a Collector for the portal at baseURL.
func New(baseURL string) (*Collector, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	return &Collector{base: u}, nil
}

// Collect extracts stubs from listing HTML. It uses the DataTables layout
// when present and a generic row scan otherwise. Rows without a detail link
// are dropped and the rest deduplicated by URL in first-seen order. An empty
// result is not an error.
func (c *Collector) Collect(html string) ([]domain.ResultStub, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse listing: %w", err)
	}

	rows := doc.Find(ResultRows)
	var stubs []domain.ResultStub
	if rows.Length() > 0 {
		stubs = c.fromResultTable(rows)
	} else {
		stubs = c.fromAnyTable(doc)
	}
	return dedupe(stubs), nil
}

// fromResultTable reads the DataTables columns:
// 0 Nr., 1 Edikt und Datum, 2 Adresse und Kategorie(n), 3 Objektbezeichnung.
func (c *Collector) fromResultTable(rows *goquery.Selection) []domain.ResultStub {
	var out []domain.ResultStub
	rows.Each(func(_ int, row *goquery.Selection) {
		cells := row.ChildrenFiltered("td")
		edikt := cells.Eq(1)
		link := edikt.Find("a[href]").First()
		href, _ := link.Attr("href")
		if href == "" {
			return
		}

		lines := htmltext.Lines(cells.Eq(2))
		stub := domain.ResultStub{
			DetailURL:        c.resolve(href),
			Title:            htmltext.InnerText(link),
			PublishedDate:    strings.TrimSpace(edikt.AttrOr("data-sort", "")),
			ShortDescription: htmltext.InnerText(cells.Eq(3)),
		}
		if len(lines) > 0 {
			stub.Address = lines[0]
			stub.CategoryText = strings.Join(lines[1:], ", ")
		}
		out = append(out, stub)
	})
	return out
}

// fromAnyTable is the best-effort fallback: the first link of any row with
// at least two cells is the detail URL, cells 2 and 3 are address and
// description.
func (c *Collector) fromAnyTable(doc *goquery.Document) []domain.ResultStub {
	var out []domain.ResultStub
	doc.Find("table tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.ChildrenFiltered("td")
		if cells.Length() < 2 {
			return
		}
		link := row.Find("a[href]").First()
		href, _ := link.Attr("href")
		if strings.TrimSpace(href) == "" {
			return
		}

		texts := make([]string, cells.Length())
		cells.Each(func(i int, cell *goquery.Selection) {
			texts[i] = htmltext.InnerText(cell)
		})

		stub := domain.ResultStub{
			DetailURL: c.resolve(href),
			Title:     htmltext.InnerText(link),
		}
		if stub.Title == "" {
			stub.Title = texts[0]
		}
		if len(texts) > 2 {
			stub.Address = texts[2]
		}
		if len(texts) > 3 {
			stub.ShortDescription = texts[3]
		}
		out = append(out, stub)
	})
	return out
}

func (c *Collector) resolve(href string) string {
	href = strings.TrimSpace(href)
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return c.base.ResolveReference(ref).String()
}

func dedupe(stubs []domain.ResultStub) []domain.ResultStub {
	seen := make(map[string]bool, len(stubs))
	out := make([]domain.ResultStub, 0, len(stubs))
	for _, s := range stubs {
		if s.DetailURL == "" || seen[s.DetailURL] {
			continue
		}
		seen[s.DetailURL] = true
		out = append(out, s)
	}
	return out
}

// WaitForRows polls page until the result table has rows or timeout
// passes. It reports whether rows appeared.
func WaitForRows(ctx context.Context, page browser.Page, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for {
		if n, err := page.Count(ResultRows); err == nil && n > 0 {
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		select {
		case <-ctx.Done():
			return false
		case <-time.After(250 * time.Millisecond):
		}
	}
}
