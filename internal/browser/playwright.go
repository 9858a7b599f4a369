package browser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/qepting91/edikte-scraper/internal/domain"
)

const (
	viewportWidth  = 1400
	viewportHeight = 900
)

// PlaywrightEngine drives a real browser through playwright-go.
type PlaywrightEngine struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	opts    Options
	log     *slog.Logger
}

// OpenPlaywright starts the playwright driver and launches the browser.
// Any failure here wraps domain.ErrEngineStart.
func OpenPlaywright(opts Options) (*PlaywrightEngine, error) {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("%w: start playwright: %v", domain.ErrEngineStart, err)
	}

	launch := playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
	}

	var bt playwright.BrowserType
	switch opts.Browser {
	case "firefox":
		bt = pw.Firefox
	case "webkit":
		bt = pw.WebKit
	default:
		bt = pw.Chromium
		launch.Args = []string{"--no-sandbox", "--disable-dev-shm-usage"}
	}

	b, err := bt.Launch(launch)
	if err != nil {
		_ = pw.Stop()
		return nil, fmt.Errorf("%w: launch %s: %v", domain.ErrEngineStart, opts.Browser, err)
	}

	log.Info("Browser engine started", "browser", opts.Browser, "headless", opts.Headless)
	return &PlaywrightEngine{pw: pw, browser: b, opts: opts, log: log}, nil
}

// NewPage opens a fresh browser context with downloads enabled and a fixed
// viewport, and a single page inside it.
func (e *PlaywrightEngine) NewPage(ctx context.Context) (Page, error) {
	var bc playwright.BrowserContext
	err := retryOnce(ctx, e.log, "new context", func() error {
		c, err := e.browser.NewContext(playwright.BrowserNewContextOptions{
			AcceptDownloads: playwright.Bool(true),
			Viewport:        &playwright.Size{Width: viewportWidth, Height: viewportHeight},
			UserAgent:       playwright.String(e.opts.UserAgent),
		})
		if err != nil {
			return err
		}
		bc = c
		return nil
	})
	if err != nil {
		return nil, err
	}

	page, err := bc.NewPage()
	if err != nil {
		_ = bc.Close()
		return nil, fmt.Errorf("new page: %w", err)
	}
	page.SetDefaultTimeout(ms(e.opts.Timeout))

	return &pwPage{page: page, bctx: bc, timeout: e.opts.Timeout, log: e.log}, nil
}

// Close shuts down the browser and the playwright driver.
func (e *PlaywrightEngine) Close() error {
	var errs []error
	if err := e.browser.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close browser: %w", err))
	}
	if err := e.pw.Stop(); err != nil {
		errs = append(errs, fmt.Errorf("stop playwright: %w", err))
	}
	return errors.Join(errs...)
}

type pwPage struct {
	page    playwright.Page
	bctx    playwright.BrowserContext
	timeout time.Duration
	log     *slog.Logger
}

func (p *pwPage) Goto(ctx context.Context, rawURL string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := p.page.Goto(rawURL, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateNetworkidle,
		Timeout:   playwright.Float(ms(p.timeout)),
	})
	if err != nil {
		return fmt.Errorf("%w: goto %s: %w", domain.ErrNavigation, rawURL, wrapTimeout(err))
	}
	return nil
}

func (p *pwPage) WaitIdle(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := p.page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
		State:   playwright.LoadStateNetworkidle,
		Timeout: playwright.Float(ms(p.timeout)),
	})
	return wrapTimeout(err)
}

func (p *pwPage) first(selector string) (playwright.Locator, error) {
	loc := p.page.Locator(selector)
	n, err := loc.Count()
	if err != nil {
		return nil, wrapTimeout(err)
	}
	if n == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoElement, selector)
	}
	return loc.First(), nil
}

func (p *pwPage) Fill(selector, value string) error {
	loc, err := p.first(selector)
	if err != nil {
		return err
	}
	return wrapTimeout(loc.Fill(value))
}

func (p *pwPage) SelectValue(selector string, values ...string) error {
	loc, err := p.first(selector)
	if err != nil {
		return err
	}
	vals := values
	_, err = loc.SelectOption(playwright.SelectOptionValues{Values: &vals})
	return wrapTimeout(err)
}

func (p *pwPage) Click(selector string, timeout time.Duration) error {
	loc, err := p.first(selector)
	if err != nil {
		return err
	}
	return wrapTimeout(loc.Click(playwright.LocatorClickOptions{
		Timeout: playwright.Float(ms(timeout)),
	}))
}

func (p *pwPage) Count(selector string) (int, error) {
	n, err := p.page.Locator(selector).Count()
	return n, wrapTimeout(err)
}

func (p *pwPage) HTML() (string, error) {
	return p.page.Content()
}

func (p *pwPage) Text() (string, error) {
	s, err := p.page.Locator("body").InnerText()
	return s, wrapTimeout(err)
}

func (p *pwPage) Links() ([]Link, error) {
	locs, err := p.page.Locator("a[href]").All()
	if err != nil {
		return nil, wrapTimeout(err)
	}

	base, _ := url.Parse(p.page.URL())
	links := make([]Link, 0, len(locs))
	for i, l := range locs {
		href, err := l.GetAttribute("href")
		if err != nil || href == "" {
			continue
		}
		text, _ := l.InnerText()
		links = append(links, Link{
			Index: i,
			Href:  resolve(base, href),
			Text:  strings.TrimSpace(text),
		})
	}
	return links, nil
}

func (p *pwPage) DownloadLink(link Link, dest string) error {
	loc := p.page.Locator("a[href]").Nth(link.Index)
	dl, err := p.page.ExpectDownload(func() error {
		return loc.Click()
	}, playwright.PageExpectDownloadOptions{Timeout: playwright.Float(ms(p.timeout))})
	if err != nil {
		return fmt.Errorf("expect download: %w", wrapTimeout(err))
	}
	if err := dl.SaveAs(dest); err != nil {
		return fmt.Errorf("save download: %w", err)
	}
	return nil
}

func (p *pwPage) URL() string { return p.page.URL() }

// Close closes the page and its context; the context close is retried once.
func (p *pwPage) Close() error {
	if err := p.page.Close(); err != nil {
		p.log.Debug("page close failed", "err", err)
	}
	return retryOnce(context.Background(), p.log, "close context", func() error {
		return p.bctx.Close()
	})
}

func wrapTimeout(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, playwright.ErrTimeout) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return err
}

func ms(d time.Duration) float64 {
	return float64(d / time.Millisecond)
}

// resolve turns href into an absolute URL relative to base.
func resolve(base *url.URL, href string) string {
	ref, err := url.Parse(href)
	if err != nil || base == nil {
		return href
	}
	return base.ResolveReference(ref).String()
}
