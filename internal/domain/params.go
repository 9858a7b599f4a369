package domain

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Mode selects one of the portal's three search forms.
type Mode string

const (
	ModeSimple     Mode = "simple"
	ModeCaseNumber Mode = "case_number"
	ModeAdvanced   Mode = "advanced"
)

// ParseMode accepts the English mode names and the portal's German ones.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "simple", "einfach", "":
		return ModeSimple, nil
	case "case_number", "aktenzeichen":
		return ModeCaseNumber, nil
	case "advanced", "erweitert":
		return ModeAdvanced, nil
	}
	return "", fmt.Errorf("%w: unknown mode %q", ErrInvalidParams, s)
}

// SincePreset is the "published since" filter of the simple and advanced forms.
type SincePreset string

const (
	SinceAny        SincePreset = ""
	SinceToday      SincePreset = "today"
	SinceYesterday  SincePreset = "yesterday"
	SinceLast7Days  SincePreset = "last_7_days"
	SinceLast14Days SincePreset = "last_14_days"
	SinceLast30Days SincePreset = "last_30_days"
)

var sinceAliases = map[string]SincePreset{
	"":               SinceAny,
	"today":          SinceToday,
	"heute":          SinceToday,
	"yesterday":      SinceYesterday,
	"gestern":        SinceYesterday,
	"last_7_days":    SinceLast7Days,
	"letzte 7 tage":  SinceLast7Days,
	"last_14_days":   SinceLast14Days,
	"letzte 14 tage": SinceLast14Days,
	"last_30_days":   SinceLast30Days,
	"letzte 30 tage": SinceLast30Days,
}

// ParseSincePreset maps user input (English or German UI labels) to a preset.
func ParseSincePreset(s string) (SincePreset, error) {
	p, ok := sinceAliases[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return "", fmt.Errorf("%w: unknown since preset %q", ErrInvalidParams, s)
	}
	return p, nil
}

// ResolveDate returns the concrete publication date for Today and Yesterday.
// Other presets have no single date.
func (p SincePreset) ResolveDate(now time.Time) (time.Time, bool) {
	switch p {
	case SinceToday:
		return now, true
	case SinceYesterday:
		return now.AddDate(0, 0, -1), true
	}
	return time.Time{}, false
}

func (p SincePreset) valid() bool {
	for _, v := range sinceAliases {
		if v == p {
			return true
		}
	}
	return false
}

// SearchParams is one of SimpleQuery, CaseNumberQuery or AdvancedQuery.
type SearchParams interface {
	Mode() Mode
	Validate() error
	isSearchParams()
}

// SimpleQuery fills the "Einfache Suche" form.
type SimpleQuery struct {
	Category     string
	City         string
	PostalCode   string
	FederalState string
	Since        SincePreset
}

func (SimpleQuery) Mode() Mode      { return ModeSimple }
func (SimpleQuery) isSearchParams() {}

func (q SimpleQuery) Validate() error {
	if err := validatePostalCode(q.PostalCode); err != nil {
		return err
	}
	if !q.Since.valid() {
		return fmt.Errorf("%w: unknown since preset %q", ErrInvalidParams, q.Since)
	}
	return nil
}

// CaseNumberParts is the structured form of an Aktenzeichen.
type CaseNumberParts struct {
	RegistryPrefix string
	RegistryLetter string
	Number         string
	Year           string
}

func (c CaseNumberParts) IsZero() bool {
	return c.RegistryPrefix == "" && c.RegistryLetter == "" && c.Number == "" && c.Year == ""
}

// CaseNumberQuery fills the "Aktenzeichen" form. Parts wins over Raw when
// both are set.
type CaseNumberQuery struct {
	Court string
	Raw   string
	Parts CaseNumberParts
}

func (CaseNumberQuery) Mode() Mode      { return ModeCaseNumber }
func (CaseNumberQuery) isSearchParams() {}

func (q CaseNumberQuery) Validate() error {
	if y := q.Parts.Year; y != "" && !yearRe.MatchString(y) {
		return fmt.Errorf("%w: year %q must have 2 or 4 digits", ErrInvalidParams, y)
	}
	return nil
}

// AdvancedQuery fills the "Erweiterte Suche" form.
type AdvancedQuery struct {
	FreeText        string
	Category        string
	City            string
	PostalCode      string
	FederalState    string
	Court           string
	Since           SincePreset
	AuctionDateFrom string // DD.MM.YYYY
	AuctionDateTo   string // DD.MM.YYYY
	ValueRange      string // raw VWert option value
}

func (AdvancedQuery) Mode() Mode      { return ModeAdvanced }
func (AdvancedQuery) isSearchParams() {}

func (q AdvancedQuery) Validate() error {
	if err := validatePostalCode(q.PostalCode); err != nil {
		return err
	}
	if !q.Since.valid() {
		return fmt.Errorf("%w: unknown since preset %q", ErrInvalidParams, q.Since)
	}
	for _, d := range []string{q.AuctionDateFrom, q.AuctionDateTo} {
		if d == "" {
			continue
		}
		if _, err := time.Parse(DateLayout, d); err != nil {
			return fmt.Errorf("%w: auction date %q is not DD.MM.YYYY", ErrInvalidParams, d)
		}
	}
	return nil
}

// DateLayout is the portal's date format.
const DateLayout = "02.01.2006"

var (
	postalCodeRe = regexp.MustCompile(`^\d{4,5}$`)
	yearRe       = regexp.MustCompile(`^(\d{2}|\d{4})$`)
)

func validatePostalCode(plz string) error {
	if plz != "" && !postalCodeRe.MatchString(plz) {
		return fmt.Errorf("%w: postal code %q", ErrInvalidParams, plz)
	}
	return nil
}
