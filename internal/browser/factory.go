package browser

import (
	"fmt"

	"github.com/qepting91/edikte-scraper/internal/domain"
)

// Open selects the engine implementation based on opts.Browser.
func Open(opts Options) (Engine, error) {
	switch opts.Browser {
	case "chromium", "firefox", "webkit", "":
		if opts.Browser == "" {
			opts.Browser = "chromium"
		}
		e, err := OpenPlaywright(opts)
		if err != nil {
			return nil, err
		}
		return e, nil
	case "mock":
		if opts.FixturesDir == "" {
			return nil, fmt.Errorf("%w: MOCK_FIXTURES_DIR is required for mock browser", domain.ErrEngineStart)
		}
		e, err := LoadMockEngine(opts.FixturesDir)
		if err != nil {
			return nil, err
		}
		return e, nil
	default:
		return nil, fmt.Errorf("%w: unknown BROWSER: %s (use 'chromium', 'firefox', 'webkit', or 'mock')", domain.ErrEngineStart, opts.Browser)
	}
}
