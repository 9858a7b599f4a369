// Package config loads and validates runtime configuration at startup.
// Invalid values fail fast; nothing here is mutated after Load.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultBaseURL   = "https://edikte.justiz.gv.at"
	DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36"
	maxDetailWorkers = 9
)

// Config holds all runtime configuration for the scraper.
type Config struct {
	BaseURL         string
	DataDir         string
	DownloadsDir    string
	Browser         string // chromium, firefox, webkit or mock
	MockFixturesDir string
	Headless        bool
	Timeout         time.Duration // every navigation and network-idle wait
	DetailWorkers   int
	RequestInterval time.Duration // politeness gap between detail/download requests
	UserAgent       string
	Port            string
}

// RecordsPath is the JSON file holding stored records.
func (c *Config) RecordsPath() string {
	return filepath.Join(c.DataDir, "jsons", "edikte.json")
}

// SettingsPath is the JSON settings file read by Apply.
func (c *Config) SettingsPath() string {
	return filepath.Join(c.DataDir, "jsons", "settings.json")
}

// Load reads .env (if present) and the environment and returns a validated Config.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		BaseURL:         envOr("EDIKTE_BASE_URL", DefaultBaseURL),
		DataDir:         envOr("DATA_DIR", "data"),
		Browser:         envOr("BROWSER", "chromium"),
		MockFixturesDir: os.Getenv("MOCK_FIXTURES_DIR"),
		UserAgent:       envOr("USER_AGENT", DefaultUserAgent),
		Port:            envOr("PORT", "8080"),
	}
	cfg.DownloadsDir = envOr("DOWNLOADS_DIR", filepath.Join(cfg.DataDir, "downloads"))

	var err error
	if cfg.Headless, err = envBool("HEADLESS", true); err != nil {
		return nil, err
	}
	if cfg.Timeout, err = envDuration("SCRAPER_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.RequestInterval, err = envDuration("REQUEST_INTERVAL", time.Second); err != nil {
		return nil, err
	}
	if cfg.DetailWorkers, err = envInt("DETAIL_WORKERS", 2); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// settings mirrors the user-editable settings.json file.
type settings struct {
	Headless      *bool   `json:"headless"`
	Timeout       *string `json:"timeout"`
	DetailWorkers *int    `json:"detail_workers"`
	Browser       *string `json:"browser"`
}

// Apply overlays the settings file at path onto a copy of c. A missing file
// returns an unchanged copy.
func (c *Config) Apply(path string) (*Config, error) {
	out := *c

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return &out, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	var s settings
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse settings %s: %w", path, err)
	}
	if s.Headless != nil {
		out.Headless = *s.Headless
	}
	if s.Timeout != nil {
		d, err := time.ParseDuration(*s.Timeout)
		if err != nil {
			return nil, fmt.Errorf("settings timeout %q: %w", *s.Timeout, err)
		}
		out.Timeout = d
	}
	if s.DetailWorkers != nil {
		out.DetailWorkers = *s.DetailWorkers
	}
	if s.Browser != nil {
		out.Browser = *s.Browser
	}

	if err := out.validate(); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Config) validate() error {
	switch c.Browser {
	case "chromium", "firefox", "webkit", "mock":
	default:
		return fmt.Errorf("BROWSER must be chromium, firefox, webkit or mock, got %q", c.Browser)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("SCRAPER_TIMEOUT must be positive, got %s", c.Timeout)
	}
	if c.DetailWorkers < 1 || c.DetailWorkers > maxDetailWorkers {
		return fmt.Errorf("DETAIL_WORKERS must be between 1 and %d, got %d", maxDetailWorkers, c.DetailWorkers)
	}
	if c.RequestInterval < 0 {
		return fmt.Errorf("REQUEST_INTERVAL must not be negative, got %s", c.RequestInterval)
	}
	return nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", key, s)
	}
	return v, nil
}

func envBool(key string, def bool) (bool, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean, got %q", key, s)
	}
	return v, nil
}

func envDuration(key string, def time.Duration) (time.Duration, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration like 30s, got %q", key, s)
	}
	return v, nil
}
