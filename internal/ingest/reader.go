// Package ingest reads batch search queries from CSV.
package ingest

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/qepting91/edikte-scraper/internal/domain"
)

// Columns is the expected header of a query file.
var Columns = []string{
	"mode", "category", "city", "postal_code", "state", "since",
	"court", "case_number", "free_text", "auction_from", "auction_to",
}

const (
	colMode = iota
	colCategory
	colCity
	colPostalCode
	colState
	colSince
	colCourt
	colCaseNumber
	colFreeText
	colAuctionFrom
	colAuctionTo
)

// LoadQueries reads path and returns one query per valid row. The header is
// skipped; malformed or invalid rows are logged and skipped.
func LoadQueries(path string) ([]domain.SearchParams, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadQueries(f)
}

// ReadQueries is LoadQueries over an open reader.
func ReadQueries(r io.Reader) ([]domain.SearchParams, error) {
	cr := csv.NewReader(stripBOM(r))
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var queries []domain.SearchParams
	line := 0
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			slog.Warn("Skipping unreadable query row", "line", line, "err", err)
			continue
		}
		if line == 1 {
			continue
		}

		q, err := parseRow(record)
		if err != nil {
			slog.Warn("Skipping invalid query row", "line", line, "err", err)
			continue
		}
		queries = append(queries, q)
	}
	return queries, nil
}

func parseRow(record []string) (domain.SearchParams, error) {
	field := func(i int) string {
		if i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	mode, err := domain.ParseMode(field(colMode))
	if err != nil {
		return nil, err
	}
	since, err := domain.ParseSincePreset(field(colSince))
	if err != nil {
		return nil, err
	}

	var q domain.SearchParams
	switch mode {
	case domain.ModeSimple:
		q = domain.SimpleQuery{
			Category:     field(colCategory),
			City:         field(colCity),
			PostalCode:   field(colPostalCode),
			FederalState: field(colState),
			Since:        since,
		}
	case domain.ModeCaseNumber:
		q = domain.CaseNumberQuery{Court: field(colCourt), Raw: field(colCaseNumber)}
	case domain.ModeAdvanced:
		q = domain.AdvancedQuery{
			FreeText:        field(colFreeText),
			Category:        field(colCategory),
			City:            field(colCity),
			PostalCode:      field(colPostalCode),
			FederalState:    field(colState),
			Court:           field(colCourt),
			Since:           since,
			AuctionDateFrom: field(colAuctionFrom),
			AuctionDateTo:   field(colAuctionTo),
		}
	default:
		return nil, fmt.Errorf("%w: mode %q", domain.ErrInvalidParams, mode)
	}
	if err := q.Validate(); err != nil {
		return nil, err
	}
	return q, nil
}

func stripBOM(r io.Reader) io.Reader {
	br := bufio.NewReader(r)
	rn, _, err := br.ReadRune()
	if err != nil {
		return br
	}
	if rn != '\uFEFF' {
		br.UnreadRune()
	}
	return br
}
