// Package pipeline runs a search end to end: form, listing, detail
// enrichment and attachment downloads.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/qepting91/edikte-scraper/internal/attachment"
	"github.com/qepting91/edikte-scraper/internal/browser"
	"github.com/qepting91/edikte-scraper/internal/collector"
	"github.com/qepting91/edikte-scraper/internal/detail"
	"github.com/qepting91/edikte-scraper/internal/domain"
	"github.com/qepting91/edikte-scraper/internal/search"
)

const (
	maxWorkers     = 9
	defaultRowWait = 10 * time.Second
)

// Result is one enriched listing entry.
type Result struct {
	Record domain.DetailRecord
	Status domain.Status
	Err    error
}

// Target identifies a stored record whose attachment should be downloaded.
type Target struct {
	ID        string
	DetailURL string
}

// DownloadResult is the outcome of one Target. Skipped results were not
// attempted or were cut short by cancellation; their Status is empty.
type DownloadResult struct {
	ID      string
	Path    string
	Status  domain.Status
	Skipped bool
	Err     error
}

// Options tunes a Pipeline.
type Options struct {
	Workers  int           // parallel detail fetches, 1..9
	Interval time.Duration // minimum gap between detail or download requests
	Timeout  time.Duration // navigation timeout
	RowWait  time.Duration // wait for result rows; defaults to min(Timeout, 10s)
	Logger   *slog.Logger
}

// Pipeline drives one shared engine. Every operation opens its own page.
type Pipeline struct {
	engine     browser.Engine
	filler     *search.Filler
	collector  *collector.Collector
	downloader *attachment.Downloader
	limiter    *rate.Limiter
	workers    int
	rowWait    time.Duration
	log        *slog.Logger
}

// New wires a Pipeline.
func New(engine browser.Engine, filler *search.Filler, coll *collector.Collector, dl *attachment.Downloader, opts Options) *Pipeline {
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > maxWorkers {
		workers = maxWorkers
	}
	limit := rate.Inf
	if opts.Interval > 0 {
		limit = rate.Every(opts.Interval)
	}
	rowWait := opts.RowWait
	if rowWait <= 0 {
		rowWait = defaultRowWait
		if opts.Timeout > 0 && opts.Timeout < rowWait {
			rowWait = opts.Timeout
		}
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Pipeline{
		engine:     engine,
		filler:     filler,
		collector:  coll,
		downloader: dl,
		limiter:    rate.NewLimiter(limit, 1),
		workers:    workers,
		rowWait:    rowWait,
		log:        log,
	}
}

// Search submits params, collects the listing and enriches every entry.
// The results keep listing order.
func (p *Pipeline) Search(ctx context.Context, params domain.SearchParams) ([]Result, error) {
	stubs, err := p.Listing(ctx, params)
	if err != nil {
		return nil, err
	}
	p.log.Info("Listing collected", "mode", params.Mode(), "results", len(stubs))
	return p.Enrich(ctx, stubs), nil
}

// Listing submits params and returns the deduplicated result rows.
func (p *Pipeline) Listing(ctx context.Context, params domain.SearchParams) ([]domain.ResultStub, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	page, err := p.engine.NewPage(ctx)
	if err != nil {
		return nil, err
	}
	defer p.closePage(page)

	if err := p.filler.Run(ctx, page, params); err != nil {
		return nil, err
	}
	if !collector.WaitForRows(ctx, page, p.rowWait) {
		p.log.Debug("No result rows rendered", "url", page.URL())
	}
	html, err := page.HTML()
	if err != nil {
		return nil, fmt.Errorf("read listing: %w", err)
	}
	return p.collector.Collect(html)
}

// Enrich fetches the detail page of every stub on a bounded worker pool.
// A failed fetch marks only its own entry. On cancellation, entries not yet
// enriched are returned as scraped stubs.
func (p *Pipeline) Enrich(ctx context.Context, stubs []domain.ResultStub) []Result {
	results := make([]Result, len(stubs))
	for i, s := range stubs {
		results[i] = Result{Record: domain.FromStub(s), Status: domain.StatusScraped}
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < p.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				p.enrichOne(ctx, &results[i])
			}
		}()
	}

dispatch:
	for i := range stubs {
		select {
		case <-ctx.Done():
			p.log.Warn("Enrichment cancelled", "done", i, "total", len(stubs))
			break dispatch
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()
	return results
}

func (p *Pipeline) enrichOne(ctx context.Context, res *Result) {
	if err := p.limiter.Wait(ctx); err != nil {
		return
	}
	url := res.Record.DetailURL
	rec, err := p.FetchDetail(ctx, url)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		p.log.Warn("Detail fetch failed", "url", url, "err", err)
		res.Status = domain.StatusFetchFailed
		res.Err = err
		return
	}
	res.Record = domain.Merge(res.Record, rec)
}

// FetchDetail opens url on a fresh page and parses it.
func (p *Pipeline) FetchDetail(ctx context.Context, url string) (domain.DetailRecord, error) {
	page, err := p.engine.NewPage(ctx)
	if err != nil {
		return domain.DetailRecord{}, err
	}
	defer p.closePage(page)
	return detail.Fetch(ctx, page, url, p.log)
}

// Download saves the attachment of the notice at detailURL for record id.
func (p *Pipeline) Download(ctx context.Context, id, detailURL string) (string, error) {
	page, err := p.engine.NewPage(ctx)
	if err != nil {
		return "", err
	}
	defer p.closePage(page)

	if err := page.Goto(ctx, detailURL); err != nil {
		if !errors.Is(err, browser.ErrTimeout) {
			return "", err
		}
		p.log.Warn("Detail page load timed out, looking for links anyway", "url", detailURL)
	}
	return p.downloader.Download(ctx, page, id)
}

// DownloadBatch downloads targets one after another. It always returns one
// result per target; a failure never stops the batch. Targets left over when
// ctx is cancelled come back Skipped.
func (p *Pipeline) DownloadBatch(ctx context.Context, targets []Target) []DownloadResult {
	out := make([]DownloadResult, len(targets))
	for i, t := range targets {
		out[i] = DownloadResult{ID: t.ID}
		if err := p.limiter.Wait(ctx); err != nil {
			out[i].Skipped = true
			out[i].Err = err
			continue
		}
		path, err := p.Download(ctx, t.ID, t.DetailURL)
		if err != nil && ctx.Err() != nil {
			out[i].Skipped = true
			out[i].Err = err
			continue
		}
		out[i].Path = path
		out[i].Err = err
		out[i].Status = DownloadStatus(err)
		if err != nil && !errors.Is(err, domain.ErrNoAttachment) {
			p.log.Error("Download failed", "id", t.ID, "url", t.DetailURL, "err", err)
		}
	}
	return out
}

// DownloadStatus maps a Download error to the record status.
func DownloadStatus(err error) domain.Status {
	switch {
	case err == nil:
		return domain.StatusDownloaded
	case errors.Is(err, domain.ErrNoAttachment):
		return domain.StatusNoAttachment
	default:
		return domain.StatusDownloadFailed
	}
}

func (p *Pipeline) closePage(page browser.Page) {
	if err := page.Close(); err != nil {
		p.log.Debug("Page close failed", "err", err)
	}
}
