package detail

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/qepting91/edikte-scraper/internal/browser"
	"github.com/qepting91/edikte-scraper/internal/domain"
)

// Fetch navigates page to detailURL and parses whatever text is rendered.
// A navigation timeout is not an error: the fields that did not render
// simply stay empty.
func Fetch(ctx context.Context, page browser.Page, detailURL string, log *slog.Logger) (domain.DetailRecord, error) {
	if log == nil {
		log = slog.Default()
	}
	if err := page.Goto(ctx, detailURL); err != nil {
		if !errors.Is(err, browser.ErrTimeout) {
			return domain.DetailRecord{}, err
		}
		log.Warn("Detail page load timed out, parsing partial page", "url", detailURL, "err", err)
	}

	text, err := page.Text()
	if err != nil {
		return domain.DetailRecord{}, fmt.Errorf("read detail text %s: %w", detailURL, err)
	}
	return Parse(detailURL, text), nil
}
