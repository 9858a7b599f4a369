package main

import (
	"fmt"
	"sync"

	"github.com/spf13/cobra"

	"github.com/qepting91/edikte-scraper/internal/domain"
	"github.com/qepting91/edikte-scraper/internal/ingest"
	"github.com/qepting91/edikte-scraper/internal/storage"
)

var (
	searchMode        string
	searchCategory    string
	searchCity        string
	searchPostalCode  string
	searchState       string
	searchSince       string
	searchCourt       string
	searchCaseNumber  string
	searchFreeText    string
	searchAuctionFrom string
	searchAuctionTo   string
	searchValueRange  string
	searchBatch       string
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search auctions, enrich every hit and store the records",
	Long: `Search submits one of the portal's search forms, collects the result
listing and fetches every detail page. Records are stored by detail URL, so
running the same search again updates existing records.

Examples:
  # All condominiums in Vienna published today
  edikte search --category Eigentumswohnung --state Wien --since heute

  # One proceeding by case number
  edikte search --mode case_number --court "BG Döbling" --case-number "3 E 456/23w"

  # Advanced search with an auction window
  edikte search --mode advanced --text Garten --from 01.03.2026 --to 31.03.2026

  # Every query in a CSV file
  edikte search --batch queries.csv`,
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)

	f := searchCmd.Flags()
	f.StringVarP(&searchMode, "mode", "m", "simple", "Search form: simple, case_number or advanced")
	f.StringVarP(&searchCategory, "category", "k", "", "Property category, e.g. Eigentumswohnung")
	f.StringVar(&searchCity, "city", "", "City")
	f.StringVar(&searchPostalCode, "plz", "", "Postal code")
	f.StringVarP(&searchState, "state", "s", "", "Federal state, e.g. Wien")
	f.StringVar(&searchSince, "since", "", "Published since: heute, gestern, letzte 7/14/30 tage")
	f.StringVar(&searchCourt, "court", "", "Court, e.g. \"BG Döbling\"")
	f.StringVar(&searchCaseNumber, "case-number", "", "Case number, e.g. \"3 E 456/23w\"")
	f.StringVar(&searchFreeText, "text", "", "Free text (advanced)")
	f.StringVar(&searchAuctionFrom, "from", "", "Auction date from, DD.MM.YYYY (advanced)")
	f.StringVar(&searchAuctionTo, "to", "", "Auction date to, DD.MM.YYYY (advanced)")
	f.StringVar(&searchValueRange, "value-range", "", "Appraised value range option (advanced)")
	f.StringVar(&searchBatch, "batch", "", "CSV file with one query per row")
}

func runSearch(cmd *cobra.Command, args []string) error {
	queries, err := searchQueries()
	if err != nil {
		return err
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	resultQueue := make(chan storage.Entry, 100)
	writer := &storage.WriterService{Store: a.store, Log: logger}
	var writerWg sync.WaitGroup
	writerWg.Add(1)
	go writer.Start(&writerWg, resultQueue)

	failed := 0
	for _, q := range queries {
		if ctx.Err() != nil {
			break
		}
		results, err := a.pipeline.Search(ctx, q)
		if err != nil {
			logger.Error("Search failed", "mode", q.Mode(), "err", err)
			failed++
			continue
		}
		for _, r := range results {
			resultQueue <- storage.Entry{Record: r.Record, Status: r.Status}
		}
	}
	close(resultQueue)
	writerWg.Wait()

	saved := writer.Saved()
	out := cmd.OutOrStdout()
	for _, r := range saved {
		fmt.Fprintf(out, "%s\t%s\t%s\t%s\n", r.ID, r.Status, r.PublishedDate, r.Title)
	}
	logger.Info("Search complete", "queries", len(queries), "records", len(saved))

	if failed == len(queries) {
		return fmt.Errorf("all %d searches failed", failed)
	}
	return ctx.Err()
}

// searchQueries builds the queries from --batch or from the mode flags.
func searchQueries() ([]domain.SearchParams, error) {
	if searchBatch != "" {
		qs, err := ingest.LoadQueries(searchBatch)
		if err != nil {
			return nil, fmt.Errorf("load batch: %w", err)
		}
		if len(qs) == 0 {
			return nil, fmt.Errorf("%w: no valid queries in %s", domain.ErrInvalidParams, searchBatch)
		}
		return qs, nil
	}

	mode, err := domain.ParseMode(searchMode)
	if err != nil {
		return nil, err
	}
	since, err := domain.ParseSincePreset(searchSince)
	if err != nil {
		return nil, err
	}

	var q domain.SearchParams
	switch mode {
	case domain.ModeCaseNumber:
		q = domain.CaseNumberQuery{Court: searchCourt, Raw: searchCaseNumber}
	case domain.ModeAdvanced:
		q = domain.AdvancedQuery{
			FreeText:        searchFreeText,
			Category:        searchCategory,
			City:            searchCity,
			PostalCode:      searchPostalCode,
			FederalState:    searchState,
			Court:           searchCourt,
			Since:           since,
			AuctionDateFrom: searchAuctionFrom,
			AuctionDateTo:   searchAuctionTo,
			ValueRange:      searchValueRange,
		}
	default:
		q = domain.SimpleQuery{
			Category:     searchCategory,
			City:         searchCity,
			PostalCode:   searchPostalCode,
			FederalState: searchState,
			Since:        since,
		}
	}
	if err := q.Validate(); err != nil {
		return nil, err
	}
	return []domain.SearchParams{q}, nil
}
