// Package detail extracts the labeled fields of an Edikt detail page.
//
// The page's visible text has the shape
//
//	Label:
//
//	Value
//
// after a header block that mixes navigation text with the notice title.
package detail

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/qepting91/edikte-scraper/internal/domain"
)

const (
	amountEUR      = `[\d.,\s]+EUR`
	areaM2         = `[\d.,\s]+m²[^\n]*`
	descriptionCap = 1000
	titleSeparator = " – "
	maxTitleLines  = 2
)

var (
	caseNumber   = labels(anyValue, `Aktenzeichen`)
	court        = labels(anyValue, `Dienststelle`)
	auctionDate  = labels(anyValue, `Neuer Versteigerungstermin`, `Versteigerungstermin`)
	streetLine   = labels(anyValue, `Liegenschaftsadresse`)
	postalLine   = labels(anyValue, `PLZ/Ort`)
	announcement = labels(anyValue, `Kundmachungsdatum`, `Erscheinungsdatum`, `Veröffentlicht am`)
	lastModified = labels(anyValue, `Letzte .nderung am`)
	categories   = labels(anyValue, `Kategorie\(n\)`)
	minimumBid   = labels(amountEUR, `Geringstes Gebot`)
	appraised    = labels(amountEUR, `Schätzwert`)
	description  = labels(anyValue, `Beschreibung[^:\n]*`)

	objectSize = append(
		labels(anyValue, `Objektgröße`),
		labels(areaM2, `Gesamtfläche`, `Nutzfläche`, `Wohnfläche`, `Grundfläche`, `Grundstücksfläche`)...,
	)
)

// titleBlock captures the header lines between the portal heading and the
// first "Dienststelle" label, dropping an optional "Berichtigte Fassung".
var titleBlock = regexp.MustCompile(
	`(?s)Gerichtliche Versteigerungen\s+.+?\n(.+?)(?:\nBerichtigte Fassung)?\nDienststelle`)

// Parse builds a DetailRecord from a detail page's visible text. It never
// fails: fields it cannot find stay empty. The same text always yields the
// same record.
func Parse(detailURL, text string) domain.DetailRecord {
	text = strings.ReplaceAll(text, "\r\n", "\n")

	rec := domain.DetailRecord{
		ResultStub: domain.ResultStub{
			DetailURL: detailURL,
			Title:     title(text),
		},
		CaseNumber:     caseNumber.Find(text),
		Court:          court.Find(text),
		AuctionDate:    auctionDate.Find(text),
		FullAddress:    joinNonEmpty(", ", streetLine.Find(text), postalLine.Find(text)),
		Categories:     categories.Find(text),
		MinimumBid:     minimumBid.Find(text),
		AppraisedValue: appraised.Find(text),
		ObjectSize:     objectSize.Find(text),
		Description:    truncateRunes(description.Find(text), descriptionCap),
	}

	// The last-modified date is kept on its own and only stands in for
	// the announcement date when no announcement label exists.
	rec.LastModifiedDate = lastModified.Find(text)
	if d := announcement.Find(text); d != "" {
		rec.PublishedDate = d
		rec.PublishedSource = domain.PublishedFromAnnouncement
	} else if rec.LastModifiedDate != "" {
		rec.PublishedDate = rec.LastModifiedDate
		rec.PublishedSource = domain.PublishedFromLastModified
	}
	return rec
}

// title joins the last one or two non-empty lines of the header block.
// This is a heuristic tied to the current page layout.
func title(text string) string {
	m := titleBlock.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	var lines []string
	for _, l := range strings.Split(m[1], "\n") {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	if len(lines) > maxTitleLines {
		lines = lines[len(lines)-maxTitleLines:]
	}
	return strings.Join(lines, titleSeparator)
}

func joinNonEmpty(sep string, parts ...string) string {
	var out []string
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, sep)
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
