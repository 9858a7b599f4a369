// Package search drives the portal's three search forms.
package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/qepting91/edikte-scraper/internal/browser"
	"github.com/qepting91/edikte-scraper/internal/domain"
	"github.com/qepting91/edikte-scraper/internal/lookup"
)

const formPath = "/edikte/ex/exedi3.nsf/suche!OpenForm&subf="

var formCodes = map[domain.Mode]string{
	domain.ModeSimple:     "eex",
	domain.ModeCaseNumber: "a",
	domain.ModeAdvanced:   "vex",
}

// EntryURL returns the search form URL for mode.
func EntryURL(baseURL string, mode domain.Mode) (string, error) {
	code, ok := formCodes[mode]
	if !ok {
		return "", fmt.Errorf("%w: unknown mode %q", domain.ErrInvalidParams, mode)
	}
	return strings.TrimRight(baseURL, "/") + formPath + code, nil
}

// Form field selectors, confirmed against the live DOM.
const (
	selCategory   = "#VKat"
	selCity       = "#VOrt"
	selPostalCode = "#VPLZ"
	selState      = "#BL"
	selCourt      = "#Ger"
	selPrefix     = "#GA"
	selLetter     = "#GZ"
	selNumber     = "#AZ"
	selYear       = "#Jahr"
	selFreeText   = "#FT"
	selValueRange = "#VWert"
	selAuctionMin = "#VVDat1"
	selAuctionMax = "#VVDat2"
)

// submitStep is one control in the submit fallback chain.
type submitStep struct {
	selector string
	timeout  time.Duration
}

var genericSubmit = []submitStep{
	{"input[name='sebut']", 5 * time.Second},
	{"input[type='submit']", 3 * time.Second},
	{"button[type='submit']", 3 * time.Second},
}

// Filler fills and submits a search form.
type Filler struct {
	baseURL string
	now     func() time.Time
	log     *slog.Logger
}

// NewFiller returns a Filler for the portal at baseURL.
func NewFiller(baseURL string, log *slog.Logger) *Filler {
	if log == nil {
		log = slog.Default()
	}
	return &Filler{baseURL: baseURL, now: time.Now, log: log}
}

// WithClock replaces the clock used to resolve Today/Yesterday.
func (f *Filler) WithClock(now func() time.Time) *Filler {
	f.now = now
	return f
}

// Run navigates page to the form for params, fills it and submits it.
// Navigation timeouts are tolerated; a failed submit is reported and not
// retried.
func (f *Filler) Run(ctx context.Context, page browser.Page, params domain.SearchParams) error {
	if params == nil {
		return fmt.Errorf("%w: nil params", domain.ErrInvalidParams)
	}
	if err := params.Validate(); err != nil {
		return err
	}
	entry, err := EntryURL(f.baseURL, params.Mode())
	if err != nil {
		return err
	}

	f.log.Info("Opening search page", "url", entry, "mode", params.Mode())
	if err := page.Goto(ctx, entry); err != nil {
		if !errors.Is(err, browser.ErrTimeout) {
			return err
		}
		f.log.Warn("Search page load timed out, continuing", "url", entry, "err", err)
	}

	var since domain.SincePreset
	switch q := params.(type) {
	case domain.SimpleQuery:
		f.fillSimple(page, q.Category, q.City, q.PostalCode, q.FederalState)
		since = q.Since
	case domain.CaseNumberQuery:
		f.fillCaseNumber(page, q)
	case domain.AdvancedQuery:
		f.fillAdvanced(page, q)
		since = q.Since
	default:
		return fmt.Errorf("%w: unsupported params %T", domain.ErrInvalidParams, params)
	}

	if err := f.submit(page, since); err != nil {
		return err
	}

	if err := page.WaitIdle(ctx); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		f.log.Warn("Waiting for results timed out, results may already be rendered", "err", err)
	}
	return nil
}

func (f *Filler) fillSimple(page browser.Page, category, city, plz, state string) {
	if code, ok := lookup.Category(category); ok {
		f.trySelect(page, selCategory, code)
	}
	f.tryFill(page, selCity, city)
	f.tryFill(page, selPostalCode, plz)
	if code, ok := lookup.FederalState(state); ok {
		f.trySelect(page, selState, code)
	}
}

func (f *Filler) fillCaseNumber(page browser.Page, q domain.CaseNumberQuery) {
	if code, ok := lookup.Court(q.Court); ok {
		f.trySelect(page, selCourt, code)
	}
	p := resolveCaseNumber(q)
	f.tryFill(page, selPrefix, p.RegistryPrefix)
	f.trySelect(page, selLetter, strings.ToUpper(p.RegistryLetter))
	f.tryFill(page, selNumber, p.Number)
	f.trySelect(page, selYear, p.Year)
}

func (f *Filler) fillAdvanced(page browser.Page, q domain.AdvancedQuery) {
	f.tryFill(page, selFreeText, q.FreeText)
	f.fillSimple(page, q.Category, q.City, q.PostalCode, q.FederalState)
	if code, ok := lookup.Court(q.Court); ok {
		f.trySelect(page, selCourt, code)
	}
	f.trySelect(page, selValueRange, q.ValueRange)
	f.tryFill(page, selAuctionMin, q.AuctionDateFrom)
	f.tryFill(page, selAuctionMax, q.AuctionDateTo)
}

// submitChain lists the controls to try in order. A Today/Yesterday preset
// puts the matching publication-date button first.
func (f *Filler) submitChain(since domain.SincePreset) []submitStep {
	var chain []submitStep
	if d, ok := since.ResolveDate(f.now()); ok {
		sel := fmt.Sprintf("input[name='datum'][value='%s']", d.Format(domain.DateLayout))
		chain = append(chain, submitStep{sel, 5 * time.Second})
	}
	return append(chain, genericSubmit...)
}

func (f *Filler) submit(page browser.Page, since domain.SincePreset) error {
	for _, step := range f.submitChain(since) {
		err := page.Click(step.selector, step.timeout)
		if err == nil {
			f.log.Info("Submitted search form", "control", step.selector)
			return nil
		}
		f.log.Debug("submit control failed", "control", step.selector, "err", err)
	}
	return domain.ErrSubmitFailed
}

func (f *Filler) tryFill(page browser.Page, selector, value string) {
	if value == "" {
		return
	}
	if err := page.Fill(selector, value); err != nil {
		f.log.Debug("fill failed", "selector", selector, "err", err)
	}
}

func (f *Filler) trySelect(page browser.Page, selector, value string) {
	if value == "" {
		return
	}
	if err := page.SelectValue(selector, value); err != nil {
		f.log.Debug("select failed", "selector", selector, "value", value, "err", err)
	}
}
