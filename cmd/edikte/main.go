package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/qepting91/edikte-scraper/internal/attachment"
	"github.com/qepting91/edikte-scraper/internal/browser"
	"github.com/qepting91/edikte-scraper/internal/collector"
	"github.com/qepting91/edikte-scraper/internal/config"
	"github.com/qepting91/edikte-scraper/internal/pipeline"
	"github.com/qepting91/edikte-scraper/internal/search"
	"github.com/qepting91/edikte-scraper/internal/storage"
)

var (
	version = "dev"
	debug   bool
	logger  *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "edikte",
	Short: "Scrape judicial real-estate auctions from edikte.justiz.gv.at",
	Long: `edikte searches the Austrian Ediktsdatei for judicial real-estate
auctions, enriches every hit from its detail page and downloads the
appraisal PDF (Gutachten) on request.

Configuration is read from the environment and an optional .env file;
<DATA_DIR>/jsons/settings.json overrides headless, timeout, detail_workers
and browser.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if debug {
			level = slog.LevelDebug
		}
		logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
		slog.SetDefault(logger)
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), version)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	rootCmd.AddCommand(versionCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// app is everything a command needs, built from configuration.
type app struct {
	cfg      *config.Config
	store    *storage.Store
	engine   browser.Engine
	pipeline *pipeline.Pipeline
}

// loadConfig reads the environment and overlays settings.json.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg.Apply(cfg.SettingsPath())
}

// openStore opens the record store without starting a browser.
func openStore() (*config.Config, *storage.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	store, err := storage.Open(cfg.RecordsPath())
	if err != nil {
		return nil, nil, err
	}
	return cfg, store, nil
}

// newApp starts the browser engine and wires the pipeline. Engine start
// failures are fatal for the command.
func newApp() (*app, error) {
	cfg, store, err := openStore()
	if err != nil {
		return nil, err
	}

	engine, err := browser.Open(browser.Options{
		Browser:     cfg.Browser,
		Headless:    cfg.Headless,
		Timeout:     cfg.Timeout,
		UserAgent:   cfg.UserAgent,
		FixturesDir: cfg.MockFixturesDir,
		Logger:      logger,
	})
	if err != nil {
		return nil, err
	}
	logger.Info("Browser started", "browser", cfg.Browser, "headless", cfg.Headless)

	coll, err := collector.New(cfg.BaseURL)
	if err != nil {
		engine.Close()
		return nil, err
	}
	fetcher := attachment.NewHTTPFetcher(cfg.UserAgent, cfg.Timeout, cfg.RequestInterval)
	dl := attachment.NewDownloader(cfg.DownloadsDir, fetcher, logger)

	p := pipeline.New(engine, search.NewFiller(cfg.BaseURL, logger), coll, dl, pipeline.Options{
		Workers:  cfg.DetailWorkers,
		Interval: cfg.RequestInterval,
		Timeout:  cfg.Timeout,
		Logger:   logger,
	})
	return &app{cfg: cfg, store: store, engine: engine, pipeline: p}, nil
}

func (a *app) Close() {
	if err := a.engine.Close(); err != nil {
		logger.Warn("Browser close failed", "err", err)
	}
}
