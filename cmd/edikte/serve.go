package main

import (
	"github.com/spf13/cobra"

	"github.com/qepting91/edikte-scraper/internal/dashboard"
	"github.com/qepting91/edikte-scraper/internal/storage"
)

var servePort string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the statistics dashboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		port := cfg.Port
		if servePort != "" {
			port = servePort
		}
		logger.Info("Starting Dashboard", "port", port, "records", cfg.RecordsPath())
		// Reload on every request so a running search shows up.
		src := dashboard.StatsFunc(func() storage.Stats {
			store, err := storage.Open(cfg.RecordsPath())
			if err != nil {
				logger.Error("Failed to load records", "err", err)
				return storage.Stats{}
			}
			return store.Stats()
		})
		return dashboard.StartServer(src, port)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVarP(&servePort, "port", "p", "", "Port (default $PORT or 8080)")
}
