package attachment_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qepting91/edikte-scraper/internal/attachment"
	"github.com/qepting91/edikte-scraper/internal/browser"
	"github.com/qepting91/edikte-scraper/internal/domain"
)

var pdfBytes = []byte("%PDF-1.4 test")

func TestSelect_PriorityOrder(t *testing.T) {
	testCases := []struct {
		name     string
		links    []browser.Link
		strategy string
		hrefs    []string
	}{
		{
			name: "attachment pdf beats plain pdf",
			links: []browser.Link{
				{Href: "https://x/doc.pdf"},
				{Href: "https://x/db/0/abc/$FILE/Gutachten.PDF"},
			},
			strategy: "attachment-pdf",
			hrefs:    []string{"https://x/db/0/abc/$FILE/Gutachten.PDF"},
		},
		{
			name: "attachment without pdf",
			links: []browser.Link{
				{Href: "https://x/db/0/abc/$file/scan.tif"},
				{Href: "https://x/other", Text: "Langgutachten"},
			},
			strategy: "attachment",
			hrefs:    []string{"https://x/db/0/abc/$file/scan.tif"},
		},
		{
			name: "langgutachten text",
			links: []browser.Link{
				{Href: "https://x/a.pdf"},
				{Href: "https://x/open?id=1", Text: "Langgutachten (PDF)"},
			},
			strategy: "langgutachten-text",
			hrefs:    []string{"https://x/open?id=1"},
		},
		{
			name: "all pdf links of the winning strategy",
			links: []browser.Link{
				{Href: "https://x/a.pdf"},
				{Href: "https://x/gutachten"},
				{Href: "https://x/b.PDF"},
			},
			strategy: "pdf-extension",
			hrefs:    []string{"https://x/a.pdf", "https://x/b.PDF"},
		},
		{
			name:     "gutachten keyword",
			links:    []browser.Link{{Href: "https://x/show?doc=Gutachten_1"}},
			strategy: "gutachten-keyword",
			hrefs:    []string{"https://x/show?doc=Gutachten_1"},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			name, matched, ok := attachment.Select(attachment.DefaultStrategies, tc.links)
			require.True(t, ok)
			assert.Equal(t, tc.strategy, name)
			var hrefs []string
			for _, l := range matched {
				hrefs = append(hrefs, l.Href)
			}
			assert.Equal(t, tc.hrefs, hrefs)
		})
	}

	_, _, ok := attachment.Select(attachment.DefaultStrategies, []browser.Link{{Href: "https://x/impressum", Text: "Impressum"}})
	assert.False(t, ok)
}

func openPage(t *testing.T, e *browser.MockEngine, u string) browser.Page {
	t.Helper()
	page, err := e.NewPage(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { page.Close() })
	require.NoError(t, page.Goto(context.Background(), u))
	return page
}

func TestDownload_BrowserCapture(t *testing.T) {
	const detailURL = "https://edikte.example/detail/1"
	e := browser.NewMockEngine()
	e.Pages[detailURL] = `<html><body><a href="/db/0/abc/$file/Gutachten.pdf">Gutachten</a></body></html>`
	e.Downloads["https://edikte.example/db/0/abc/$file/Gutachten.pdf"] = pdfBytes

	dir := t.TempDir()
	d := attachment.NewDownloader(dir, nil, nil)

	path, err := d.Download(context.Background(), openPage(t, e, detailURL), "a1b2c3d4")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "gutachten_a1b2c3d4.pdf"), path)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, pdfBytes, got)
}

func TestDownload_DirectFetchFallback(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.UserAgent()
		if strings.Contains(r.URL.Path, "/$file/") {
			w.Write(pdfBytes)
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()

	detailURL := srv.URL + "/detail/2"
	e := browser.NewMockEngine()
	e.Pages[detailURL] = `<html><body><a href="/db/0/xyz/$file/Langgutachten.pdf">Download</a></body></html>`

	dir := t.TempDir()
	d := attachment.NewDownloader(dir, attachment.NewHTTPFetcher("edikte-test", 5*time.Second, 0), nil)

	path, err := d.Download(context.Background(), openPage(t, e, detailURL), "id2")
	require.NoError(t, err)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, pdfBytes, got)
	assert.Equal(t, "edikte-test", gotUA)
}

func TestDownload_FallsThroughToLaterStrategy(t *testing.T) {
	const detailURL = "https://edikte.example/detail/6"
	e := browser.NewMockEngine()
	e.Pages[detailURL] = `<html><body>
<a href="/db/0/abc/$file/broken.pdf">Anhang</a>
<a href="/open?id=1">Langgutachten</a>
</body></html>`
	e.Downloads["https://edikte.example/open?id=1"] = pdfBytes

	d := attachment.NewDownloader(t.TempDir(), nil, nil)

	path, err := d.Download(context.Background(), openPage(t, e, detailURL), "id6")
	require.NoError(t, err)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, pdfBytes, got)
}

func TestDownload_NonOKStatusWritesNothing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	detailURL := srv.URL + "/detail/3"
	e := browser.NewMockEngine()
	e.Pages[detailURL] = `<html><body><a href="/files/gutachten.pdf">PDF</a></body></html>`

	dir := t.TempDir()
	d := attachment.NewDownloader(dir, attachment.NewHTTPFetcher("ua", 5*time.Second, 0), nil)

	_, err := d.Download(context.Background(), openPage(t, e, detailURL), "id3")
	assert.ErrorIs(t, err, domain.ErrNoAttachment)
	assert.NoFileExists(t, d.Path("id3"))
}

func TestDownload_NoCandidateLinks(t *testing.T) {
	const detailURL = "https://edikte.example/detail/4"
	e := browser.NewMockEngine()
	e.Pages[detailURL] = `<html><body><a href="/">Startseite</a><a href="/hilfe">Hilfe</a></body></html>`

	d := attachment.NewDownloader(t.TempDir(), nil, nil)

	_, err := d.Download(context.Background(), openPage(t, e, detailURL), "id4")
	assert.ErrorIs(t, err, domain.ErrNoAttachment)
}

func TestDownload_RejectsPathLikeIDs(t *testing.T) {
	const detailURL = "https://edikte.example/detail/5"
	e := browser.NewMockEngine()
	e.Pages[detailURL] = `<html><body></body></html>`
	d := attachment.NewDownloader(t.TempDir(), nil, nil)
	page := openPage(t, e, detailURL)

	for _, id := range []string{"", "../x", "a/b"} {
		_, err := d.Download(context.Background(), page, id)
		assert.ErrorIs(t, err, domain.ErrInvalidParams, id)
	}
}
