package detail_test

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qepting91/edikte-scraper/internal/browser"
	"github.com/qepting91/edikte-scraper/internal/detail"
	"github.com/qepting91/edikte-scraper/internal/domain"
)

const detailURL = "https://edikte.justiz.gv.at/edikte/ex/exedi3.nsf/alldoc/a1!OpenDocument"

const fullPage = `Ediktsdatei
Gerichtliche Versteigerungen
Suche
Versteigerung einer Eigentumswohnung
1190 Wien, Hauptstraße 1
Dienststelle:

BG Döbling

Aktenzeichen:

3 E 456/23w

Kundmachungsdatum:

12.03.2026

Letzte Änderung am:

14.03.2026

Versteigerungstermin:

20.04.2026 um 10:00 Uhr

Liegenschaftsadresse:

Hauptstraße 1

PLZ/Ort:

1190 Wien

Kategorie(n):

Eigentumswohnung, Garage

Schätzwert:

350.000,00 EUR

Geringstes Gebot:

175.000,00 EUR

Nutzfläche:

85,50 m²

Beschreibung des Objekts:

Helle Wohnung mit Balkon.
Zweite Zeile wird nicht übernommen.
`

func TestParse_FullPage(t *testing.T) {
	rec := detail.Parse(detailURL, fullPage)

	assert.Equal(t, detailURL, rec.DetailURL)
	assert.Equal(t, "Versteigerung einer Eigentumswohnung – 1190 Wien, Hauptstraße 1", rec.Title)
	assert.Equal(t, "BG Döbling", rec.Court)
	assert.Equal(t, "3 E 456/23w", rec.CaseNumber)
	assert.Equal(t, "12.03.2026", rec.PublishedDate)
	assert.Equal(t, domain.PublishedFromAnnouncement, rec.PublishedSource)
	assert.Equal(t, "14.03.2026", rec.LastModifiedDate)
	assert.Equal(t, "20.04.2026 um 10:00 Uhr", rec.AuctionDate)
	assert.Equal(t, "Hauptstraße 1, 1190 Wien", rec.FullAddress)
	assert.Equal(t, "Eigentumswohnung, Garage", rec.Categories)
	assert.Equal(t, "350.000,00 EUR", rec.AppraisedValue)
	assert.Equal(t, "175.000,00 EUR", rec.MinimumBid)
	assert.Equal(t, "85,50 m²", rec.ObjectSize)
	assert.Equal(t, "Helle Wohnung mit Balkon.", rec.Description)
}

func TestParse_LastModifiedFallback(t *testing.T) {
	text := "Aktenzeichen:\n\n5 E 1/24\n\nLetzte Änderung am:\n\n05.03.2026\n"

	rec := detail.Parse(detailURL, text)

	assert.Equal(t, "05.03.2026", rec.PublishedDate)
	assert.Equal(t, "05.03.2026", rec.LastModifiedDate)
	assert.Equal(t, domain.PublishedFromLastModified, rec.PublishedSource)
}

func TestParse_AlternateAnnouncementLabel(t *testing.T) {
	text := "Veröffentlicht am:\n\n01.02.2026\n\nLetzte Änderung am:\n\n03.02.2026\n"

	rec := detail.Parse(detailURL, text)

	assert.Equal(t, "01.02.2026", rec.PublishedDate)
	assert.Equal(t, domain.PublishedFromAnnouncement, rec.PublishedSource)
	assert.Equal(t, "03.02.2026", rec.LastModifiedDate)
}

func TestParse_NewAuctionDateWins(t *testing.T) {
	text := "Versteigerungstermin:\n\n01.04.2026\n\nNeuer Versteigerungstermin:\n\n15.05.2026\n"

	assert.Equal(t, "15.05.2026", detail.Parse(detailURL, text).AuctionDate)
}

func TestParse_ObjectSizePriority(t *testing.T) {
	testCases := []struct {
		name string
		text string
		want string
	}{
		{
			name: "explicit object size first",
			text: "Nutzfläche:\n\n85 m²\n\nObjektgröße:\n\n90 m² Wohnung\n",
			want: "90 m² Wohnung",
		},
		{
			name: "total area before living area",
			text: "Wohnfläche:\n\n70 m²\n\nGesamtfläche:\n\n1.200 m²\n",
			want: "1.200 m²",
		},
		{
			name: "value without unit is skipped",
			text: "Nutzfläche:\n\nunbekannt\n\nGrundstücksfläche:\n\n640 m²\n",
			want: "640 m²",
		},
		{
			name: "nothing found",
			text: "Nutzfläche:\n\nunbekannt\n",
			want: "",
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, detail.Parse(detailURL, tc.text).ObjectSize)
		})
	}
}

func TestParse_CorrectedNoticeTitle(t *testing.T) {
	text := "Gerichtliche Versteigerungen\nSuche\nEinfamilienhaus\nBerichtigte Fassung\nDienststelle:\n\nBG Linz\n"

	rec := detail.Parse(detailURL, text)

	assert.Equal(t, "Einfamilienhaus", rec.Title)
	assert.Equal(t, "BG Linz", rec.Court)
}

func TestParse_DescriptionCapped(t *testing.T) {
	text := "Beschreibung:\n\n" + strings.Repeat("ä", 1500) + "\n"

	rec := detail.Parse(detailURL, text)

	assert.Equal(t, 1000, utf8.RuneCountInString(rec.Description))
}

func TestParse_Idempotent(t *testing.T) {
	assert.Equal(t, detail.Parse(detailURL, fullPage), detail.Parse(detailURL, fullPage))
}

func TestParse_EmptyText(t *testing.T) {
	rec := detail.Parse(detailURL, "")
	assert.Equal(t, domain.DetailRecord{ResultStub: domain.ResultStub{DetailURL: detailURL}}, rec)
}

func TestChain_FirstMatchWins(t *testing.T) {
	c := detail.Chain{
		detail.Label("Gericht", `.+`),
		detail.Label("Dienststelle", `.+`),
	}
	assert.Equal(t, "BG Graz-West", c.Find("Dienststelle:\n\nBG Graz-West\n"))
	assert.Equal(t, "", c.Find("Dienststelle: BG Graz-West"))
}

func TestFetch_ParsesRenderedPage(t *testing.T) {
	e := browser.NewMockEngine()
	e.Pages[detailURL] = `<html><body>
<p>Aktenzeichen:</p><p>3 E 456/23w</p>
<p>Schätzwert:</p><p>350.000,00 EUR</p>
</body></html>`

	page, err := e.NewPage(context.Background())
	require.NoError(t, err)
	defer page.Close()

	rec, err := detail.Fetch(context.Background(), page, detailURL, nil)
	require.NoError(t, err)
	assert.Equal(t, "3 E 456/23w", rec.CaseNumber)
	assert.Equal(t, "350.000,00 EUR", rec.AppraisedValue)
}

func TestFetch_MissingPage(t *testing.T) {
	page, err := browser.NewMockEngine().NewPage(context.Background())
	require.NoError(t, err)
	defer page.Close()

	_, err = detail.Fetch(context.Background(), page, detailURL, nil)
	assert.ErrorIs(t, err, domain.ErrNavigation)
}
