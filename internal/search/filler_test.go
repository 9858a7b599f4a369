package search_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qepting91/edikte-scraper/internal/browser"
	"github.com/qepting91/edikte-scraper/internal/domain"
	"github.com/qepting91/edikte-scraper/internal/search"
)

const base = "https://edikte.example"

const simpleForm = `<html><body><form>
<select id="VKat"><option value="">-</option><option value="EW">Eigentumswohnung</option><option value="UL">Grundstück</option></select>
<input id="VOrt"><input id="VPLZ">
<select id="BL"><option value="0">Wien</option><option value="5">Steiermark</option></select>
<input type="button" name="datum" value="01.03.2026">
<input type="button" name="datum" value="28.02.2026">
<input type="submit" name="sebut" value="Suchen">
</form></body></html>`

const caseNumberForm = `<html><body><form>
<select id="Ger"><option value="015">BG Döbling</option></select>
<input id="GA">
<select id="GZ"><option value="E">E</option><option value="S">S</option></select>
<input id="AZ">
<select id="Jahr"><option value="2023">2023</option><option value="2024">2024</option></select>
<input type="submit" name="sebut" value="Suchen">
</form></body></html>`

const advancedForm = `<html><body><form>
<input id="FT">
<select id="VKat"><option value="EW">Eigentumswohnung</option></select>
<input id="VOrt"><input id="VPLZ">
<select id="BL"><option value="0">Wien</option></select>
<select id="Ger"><option value="015">BG Döbling</option></select>
<select id="VWert"><option value="3">100.000 - 200.000</option></select>
<input id="VVDat1"><input id="VVDat2">
<button type="submit">Suchen</button>
</form></body></html>`

const noSubmitForm = `<html><body><form><input id="VOrt"></form></body></html>`

const resultsPage = `<html><body><table id="DataTables_Table_0"><tbody></tbody></table></body></html>`

func fixedClock() time.Time { return time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC) }

func newEngine(t *testing.T, mode domain.Mode, form string) *browser.MockEngine {
	t.Helper()
	entry, err := search.EntryURL(base, mode)
	require.NoError(t, err)
	e := browser.NewMockEngine()
	e.Pages[entry] = form
	e.Pages[base+"/results"] = resultsPage
	e.SubmitURL = base + "/results"
	return e
}

func run(t *testing.T, e *browser.MockEngine, params domain.SearchParams) (browser.Page, error) {
	t.Helper()
	page, err := e.NewPage(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { page.Close() })
	f := search.NewFiller(base, nil).WithClock(fixedClock)
	return page, f.Run(context.Background(), page, params)
}

func TestEntryURL(t *testing.T) {
	u, err := search.EntryURL(base+"/", domain.ModeAdvanced)
	require.NoError(t, err)
	assert.Equal(t, base+"/edikte/ex/exedi3.nsf/suche!OpenForm&subf=vex", u)

	_, err = search.EntryURL(base, "other")
	assert.ErrorIs(t, err, domain.ErrInvalidParams)
}

func TestRun_SimpleFillsCodesAndPrefersDateButton(t *testing.T) {
	e := newEngine(t, domain.ModeSimple, simpleForm)

	page, err := run(t, e, domain.SimpleQuery{
		Category:     "Eigentumswohnung",
		City:         "Wien",
		PostalCode:   "1010",
		FederalState: "Wien",
		Since:        domain.SinceToday,
	})
	require.NoError(t, err)

	v, _ := e.Filled("#VKat")
	assert.Equal(t, "EW", v)
	v, _ = e.Filled("#BL")
	assert.Equal(t, "0", v)
	v, _ = e.Filled("#VPLZ")
	assert.Equal(t, "1010", v)
	assert.Equal(t, []string{"input[name='datum'][value='01.03.2026']"}, e.Clicked())
	assert.Equal(t, base+"/results", page.URL())
}

func TestRun_YesterdayUsesPreviousDay(t *testing.T) {
	e := newEngine(t, domain.ModeSimple, simpleForm)

	_, err := run(t, e, domain.SimpleQuery{Since: domain.SinceYesterday})
	require.NoError(t, err)
	assert.Equal(t, []string{"input[name='datum'][value='28.02.2026']"}, e.Clicked())
}

func TestRun_UnknownFacetIsNoFilter(t *testing.T) {
	e := newEngine(t, domain.ModeSimple, simpleForm)

	_, err := run(t, e, domain.SimpleQuery{Category: "Schloss", Since: domain.SinceLast7Days})
	require.NoError(t, err)

	_, ok := e.Filled("#VKat")
	assert.False(t, ok)
	assert.Equal(t, []string{"input[name='sebut']"}, e.Clicked())
}

func TestRun_CaseNumberFromRaw(t *testing.T) {
	e := newEngine(t, domain.ModeCaseNumber, caseNumberForm)

	_, err := run(t, e, domain.CaseNumberQuery{Court: "BG Döbling", Raw: "3 e 456/23w"})
	require.NoError(t, err)

	want := map[string]string{"#Ger": "015", "#GA": "3", "#GZ": "E", "#AZ": "456", "#Jahr": "2023"}
	for sel, v := range want {
		got, ok := e.Filled(sel)
		assert.True(t, ok, sel)
		assert.Equal(t, v, got, sel)
	}
}

func TestRun_CaseNumberUnparsableGoesToNumberField(t *testing.T) {
	e := newEngine(t, domain.ModeCaseNumber, caseNumberForm)

	_, err := run(t, e, domain.CaseNumberQuery{Raw: "E-456"})
	require.NoError(t, err)

	got, _ := e.Filled("#AZ")
	assert.Equal(t, "E-456", got)
	_, ok := e.Filled("#Jahr")
	assert.False(t, ok)
}

func TestRun_AdvancedFallsBackToButtonSubmit(t *testing.T) {
	e := newEngine(t, domain.ModeAdvanced, advancedForm)

	_, err := run(t, e, domain.AdvancedQuery{
		FreeText:        "Garten",
		Court:           "BG Döbling",
		ValueRange:      "3",
		AuctionDateFrom: "01.03.2026",
		AuctionDateTo:   "31.03.2026",
	})
	require.NoError(t, err)

	v, _ := e.Filled("#FT")
	assert.Equal(t, "Garten", v)
	v, _ = e.Filled("#Ger")
	assert.Equal(t, "015", v)
	v, _ = e.Filled("#VVDat2")
	assert.Equal(t, "31.03.2026", v)
	assert.Equal(t, []string{"button[type='submit']"}, e.Clicked())
}

func TestRun_NoSubmitControl(t *testing.T) {
	e := newEngine(t, domain.ModeSimple, noSubmitForm)

	_, err := run(t, e, domain.SimpleQuery{City: "Graz"})
	assert.ErrorIs(t, err, domain.ErrSubmitFailed)
}

func TestRun_InvalidParamsNeverNavigates(t *testing.T) {
	e := newEngine(t, domain.ModeSimple, simpleForm)

	page, err := run(t, e, domain.SimpleQuery{PostalCode: "abc"})
	assert.ErrorIs(t, err, domain.ErrInvalidParams)
	assert.Empty(t, page.URL())
}

func TestRun_MissingFormPage(t *testing.T) {
	e := browser.NewMockEngine()

	_, err := run(t, e, domain.SimpleQuery{})
	assert.ErrorIs(t, err, domain.ErrNavigation)
}
