// Package lookup maps human-readable facet values to the codes the portal's
// search forms expect.
package lookup

import (
	"slices"
	"strings"
)

var categories = map[string]string{
	"Eigenheim":            "EH",
	"Einfamilienhaus":      "EH",
	"Zweifamilienhaus":     "ZH",
	"Mehrfamilienhaus":     "MH",
	"Mietwohnhaus":         "MW",
	"Eigentumswohnung":     "EW",
	"Gewerbeimmobilie":     "GL",
	"Grundstück":           "UL",
	"Landwirtschaft":       "LF",
	"Sonstiges":            "SO",
	"Sonstige":             "SO",
	"Dachterrassenwohnung": "DTW",
	"Dachgeschoßwohnung":   "DGW",
	"Garconniere":          "GA",
	"Gartenwohnung":        "GW",
	"Reihenhaus":           "RH",
	"Superädifikat":        "SE",
	"Baurecht":             "BR",
}

var federalStates = map[string]string{
	"Wien":             "0",
	"Niederösterreich": "1",
	"Burgenland":       "2",
	"Oberösterreich":   "3",
	"Salzburg":         "4",
	"Steiermark":       "5",
	"Kärnten":          "6",
	"Tirol":            "7",
	"Vorarlberg":       "8",
}

var courts = map[string]string{
	"BG Innere Stadt": "001",
	"BG Favoriten":    "011",
	"BG Hietzing":     "012",
	"BG Fünfhaus":     "013",
	"BG Hernals":      "014",
	"BG Döbling":      "015",
	"BG Floridsdorf":  "016",
	"BG Liesing":      "018",
	"BG Josefstadt":   "028",
	"BG Meidling":     "081",
	"BG Mödling":      "161",
	"BG Linz":         "452",
	"BG Salzburg":     "565",
	"BG Graz-West":    "641",
	"BG Klagenfurt":   "721",
	"BG Innsbruck":    "811",
}

// Category returns the VKat code for a property category. Unknown or empty
// input yields ok=false, which callers treat as "no filter".
func Category(label string) (string, bool) { return find(categories, label) }

// FederalState returns the BL code for an Austrian federal state.
func FederalState(label string) (string, bool) { return find(federalStates, label) }

// Court returns the three-digit Ger code for a district court.
func Court(label string) (string, bool) { return find(courts, label) }

// Categories lists the known category labels.
func Categories() []string { return keys(categories) }

// FederalStates lists the known federal state labels.
func FederalStates() []string { return keys(federalStates) }

// Courts lists the known court labels.
func Courts() []string { return keys(courts) }

func find(table map[string]string, label string) (string, bool) {
	label = strings.TrimSpace(label)
	if label == "" {
		return "", false
	}
	if code, ok := table[label]; ok {
		return code, true
	}
	for k, code := range table {
		if strings.EqualFold(k, label) {
			return code, true
		}
	}
	return "", false
}

func keys(table map[string]string) []string {
	out := make([]string, 0, len(table))
	for k := range table {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}
