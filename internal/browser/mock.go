package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/qepting91/edikte-scraper/internal/domain"
	"github.com/qepting91/edikte-scraper/internal/htmltext"
)

// MockEngine serves pages from memory. It implements Engine without a
// browser, for offline runs against saved pages and for tests.
type MockEngine struct {
	// Pages maps an absolute URL to the HTML served for it.
	Pages map[string]string
	// SubmitURL is loaded when a submit control is clicked.
	SubmitURL string
	// Downloads maps a link href to the bytes a click on it downloads.
	Downloads map[string][]byte

	mu      sync.Mutex
	filled  map[string]string
	clicked []string
	opened  int
	closed  int
}

// NewMockEngine returns an empty MockEngine.
func NewMockEngine() *MockEngine {
	return &MockEngine{
		Pages:     make(map[string]string),
		Downloads: make(map[string][]byte),
		filled:    make(map[string]string),
	}
}

// fixtureIndex is the routes.json file of a fixtures directory.
type fixtureIndex struct {
	Pages     map[string]string `json:"pages"`
	Submit    string            `json:"submit"`
	Downloads map[string]string `json:"downloads"`
}

// LoadMockEngine reads dir/routes.json and the files it references.
func LoadMockEngine(dir string) (*MockEngine, error) {
	data, err := os.ReadFile(filepath.Join(dir, "routes.json"))
	if err != nil {
		return nil, fmt.Errorf("%w: read fixtures: %v", domain.ErrEngineStart, err)
	}
	var idx fixtureIndex
	if err := json.Unmarshal(data, &idx); err != nil {
		return nil, fmt.Errorf("%w: parse routes.json: %v", domain.ErrEngineStart, err)
	}

	e := NewMockEngine()
	e.SubmitURL = idx.Submit
	for u, file := range idx.Pages {
		b, err := os.ReadFile(filepath.Join(dir, file))
		if err != nil {
			return nil, fmt.Errorf("%w: fixture %s: %v", domain.ErrEngineStart, file, err)
		}
		e.Pages[u] = string(b)
	}
	for u, file := range idx.Downloads {
		b, err := os.ReadFile(filepath.Join(dir, file))
		if err != nil {
			return nil, fmt.Errorf("%w: fixture %s: %v", domain.ErrEngineStart, file, err)
		}
		e.Downloads[u] = b
	}
	return e, nil
}

func (e *MockEngine) NewPage(ctx context.Context) (Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	e.mu.Lock()
	e.opened++
	e.mu.Unlock()
	return &mockPage{engine: e}, nil
}

func (e *MockEngine) Close() error { return nil }

// Filled returns the value last filled or selected into selector.
func (e *MockEngine) Filled(selector string) (string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	v, ok := e.filled[selector]
	return v, ok
}

// Clicked returns the selectors clicked so far, in order.
func (e *MockEngine) Clicked() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.clicked...)
}

// OpenPages reports how many pages are currently open.
func (e *MockEngine) OpenPages() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.opened - e.closed
}

type mockPage struct {
	engine *MockEngine
	url    string
	doc    *goquery.Document
	closed bool
}

func (p *mockPage) load(rawURL string) error {
	p.engine.mu.Lock()
	html, ok := p.engine.Pages[rawURL]
	p.engine.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: no fixture for %s", domain.ErrNavigation, rawURL)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return fmt.Errorf("parse fixture %s: %w", rawURL, err)
	}
	p.url, p.doc = rawURL, doc
	return nil
}

func (p *mockPage) Goto(ctx context.Context, rawURL string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return p.load(rawURL)
}

func (p *mockPage) WaitIdle(ctx context.Context) error { return ctx.Err() }

func (p *mockPage) find(selector string) (*goquery.Selection, error) {
	if p.doc == nil {
		return nil, fmt.Errorf("%w: %s (no page loaded)", ErrNoElement, selector)
	}
	sel := p.doc.Find(selector)
	if sel.Length() == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoElement, selector)
	}
	return sel.First(), nil
}

func (p *mockPage) Fill(selector, value string) error {
	if _, err := p.find(selector); err != nil {
		return err
	}
	p.engine.mu.Lock()
	p.engine.filled[selector] = value
	p.engine.mu.Unlock()
	return nil
}

func (p *mockPage) SelectValue(selector string, values ...string) error {
	sel, err := p.find(selector)
	if err != nil {
		return err
	}
	for _, v := range values {
		if sel.Find(fmt.Sprintf("option[value=%q]", v)).Length() == 0 {
			return fmt.Errorf("%w: option %q in %s", ErrNoElement, v, selector)
		}
	}
	p.engine.mu.Lock()
	p.engine.filled[selector] = strings.Join(values, ",")
	p.engine.mu.Unlock()
	return nil
}

func (p *mockPage) Click(selector string, _ time.Duration) error {
	if _, err := p.find(selector); err != nil {
		return err
	}
	p.engine.mu.Lock()
	p.engine.clicked = append(p.engine.clicked, selector)
	target := p.engine.SubmitURL
	p.engine.mu.Unlock()
	if target == "" {
		return nil
	}
	return p.load(target)
}

func (p *mockPage) Count(selector string) (int, error) {
	if p.doc == nil {
		return 0, nil
	}
	return p.doc.Find(selector).Length(), nil
}

func (p *mockPage) HTML() (string, error) {
	if p.doc == nil {
		return "", nil
	}
	return p.doc.Html()
}

func (p *mockPage) Text() (string, error) {
	if p.doc == nil {
		return "", nil
	}
	return htmltext.InnerText(p.doc.Find("body")), nil
}

func (p *mockPage) Links() ([]Link, error) {
	if p.doc == nil {
		return nil, nil
	}
	base, _ := url.Parse(p.url)
	var links []Link
	p.doc.Find("a[href]").Each(func(i int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		if href == "" {
			return
		}
		links = append(links, Link{
			Index: i,
			Href:  resolve(base, href),
			Text:  htmltext.InnerText(s),
		})
	})
	return links, nil
}

func (p *mockPage) DownloadLink(link Link, dest string) error {
	p.engine.mu.Lock()
	body, ok := p.engine.Downloads[link.Href]
	p.engine.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: click on %s started no download", ErrTimeout, link.Href)
	}
	return os.WriteFile(dest, body, 0o644)
}

func (p *mockPage) URL() string { return p.url }

func (p *mockPage) Close() error {
	if p.closed {
		return nil
	}
	p.closed = true
	p.engine.mu.Lock()
	p.engine.closed++
	p.engine.mu.Unlock()
	return nil
}
