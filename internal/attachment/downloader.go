// Package attachment finds and saves the appraisal PDF ("Gutachten") linked
// from an Edikt detail page.
package attachment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/qepting91/edikte-scraper/internal/browser"
	"github.com/qepting91/edikte-scraper/internal/domain"
)

// Fetcher downloads a URL to a local file.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL, dest string) error
}

// Downloader saves attachments as <dir>/gutachten_<recordID>.pdf.
type Downloader struct {
	dir        string
	fetcher    Fetcher
	strategies []Strategy
	log        *slog.Logger
}

// NewDownloader returns a Downloader writing into dir.
func NewDownloader(dir string, fetcher Fetcher, log *slog.Logger) *Downloader {
	if log == nil {
		log = slog.Default()
	}
	return &Downloader{dir: dir, fetcher: fetcher, strategies: DefaultStrategies, log: log}
}

// PathFor returns where the attachment of recordID is stored.
func PathFor(dir, recordID string) string {
	return filepath.Join(dir, "gutachten_"+recordID+".pdf")
}

// Path returns where the attachment of recordID is stored.
func (d *Downloader) Path(recordID string) string {
	return PathFor(d.dir, recordID)
}

// Download saves the attachment of the detail page already loaded in page.
// It returns domain.ErrNoAttachment when no candidate could be saved.
func (d *Downloader) Download(ctx context.Context, page browser.Page, recordID string) (string, error) {
	if recordID == "" || strings.ContainsAny(recordID, `/\`) || strings.Contains(recordID, "..") {
		return "", fmt.Errorf("%w: record id %q", domain.ErrInvalidParams, recordID)
	}
	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		return "", fmt.Errorf("create downloads dir: %w", err)
	}

	links, err := page.Links()
	if err != nil {
		return "", fmt.Errorf("list links: %w", err)
	}

	dest := d.Path(recordID)
	// A link matched by several strategies is only tried once.
	tried := make(map[int]bool)
	for _, s := range d.strategies {
		candidates := s.Matches(links)
		for _, link := range candidates {
			if err := ctx.Err(); err != nil {
				return "", err
			}
			if tried[link.Index] {
				continue
			}
			tried[link.Index] = true
			if err := d.saveLink(ctx, page, link, dest); err != nil {
				d.log.Debug("candidate failed", "strategy", s.Name, "href", link.Href, "err", err)
				continue
			}
			d.log.Info("Downloaded PDF", "record", recordID, "strategy", s.Name, "path", dest)
			return dest, nil
		}
		if len(candidates) > 0 {
			d.log.Debug("strategy exhausted", "strategy", s.Name, "candidates", len(candidates))
		}
	}

	if len(tried) == 0 {
		d.log.Warn("No PDF link found", "record", recordID, "url", page.URL())
	} else {
		d.log.Warn("No PDF could be downloaded", "record", recordID, "candidates", len(tried))
	}
	return "", domain.ErrNoAttachment
}

// saveLink tries the browser download first and a direct fetch second.
func (d *Downloader) saveLink(ctx context.Context, page browser.Page, link browser.Link, dest string) error {
	clickErr := page.DownloadLink(link, dest)
	if clickErr == nil {
		return nil
	}
	if !directFile(link.Href) || d.fetcher == nil {
		return clickErr
	}
	if err := d.fetcher.Fetch(ctx, link.Href, dest); err != nil {
		return errors.Join(clickErr, err)
	}
	return nil
}
