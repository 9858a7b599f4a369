// Package browser owns the browser engine and hands out one isolated page
// (backed by its own browser context) per logical operation.
package browser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

var (
	// ErrTimeout marks a navigation or wait that hit the configured timeout.
	ErrTimeout = errors.New("browser timeout")
	// ErrNoElement is returned when a selector matches nothing.
	ErrNoElement = errors.New("no element matches selector")
)

// Link is an anchor harvested from a page. Index is its position among all
// a[href] elements, so it can be clicked later.
type Link struct {
	Index int
	Href  string // absolute
	Text  string
}

// Page is the part of a browser page the pipeline drives. A Page is used
// for exactly one task and then closed, which also closes its context.
type Page interface {
	Goto(ctx context.Context, url string) error
	WaitIdle(ctx context.Context) error
	Fill(selector, value string) error
	SelectValue(selector string, values ...string) error
	Click(selector string, timeout time.Duration) error
	Count(selector string) (int, error)
	HTML() (string, error)
	Text() (string, error)
	Links() ([]Link, error)
	// DownloadLink clicks link and saves the download it triggers to dest.
	DownloadLink(link Link, dest string) error
	URL() string
	Close() error
}

// Engine is one running browser. It is safe to call NewPage concurrently.
type Engine interface {
	NewPage(ctx context.Context) (Page, error)
	Close() error
}

// Options configures an Engine.
type Options struct {
	Browser     string // chromium, firefox, webkit or mock
	Headless    bool
	Timeout     time.Duration
	UserAgent   string
	FixturesDir string // mock only
	Logger      *slog.Logger
}

// retryOnce runs fn and, if it fails, runs it once more.
func retryOnce(ctx context.Context, log *slog.Logger, what string, fn func() error) error {
	err := fn()
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	log.Warn("retrying browser operation", "op", what, "err", err)
	if err2 := fn(); err2 != nil {
		return fmt.Errorf("%s: %w", what, err2)
	}
	return nil
}
