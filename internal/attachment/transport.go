package attachment

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/time/rate"
)

// HTTPFetcher downloads files directly, outside the browser.
type HTTPFetcher struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	userAgent  string
}

// NewHTTPFetcher returns a fetcher that waits interval between requests.
// Redirects are followed by the default client policy.
func NewHTTPFetcher(userAgent string, timeout, interval time.Duration) *HTTPFetcher {
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	return &HTTPFetcher{
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(limit, 1),
		userAgent:  userAgent,
	}
}

// Fetch GETs rawURL and writes the body to dest. Nothing is written unless
// the server answers 200.
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL, dest string) error {
	if err := f.limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http GET: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("http GET %s: status %d", rawURL, resp.StatusCode)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), ".download-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		return fmt.Errorf("read body: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	return os.Rename(tmp.Name(), dest)
}
