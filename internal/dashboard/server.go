// Package dashboard serves charts over the record store.
package dashboard

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"slices"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"

	"github.com/qepting91/edikte-scraper/internal/domain"
	"github.com/qepting91/edikte-scraper/internal/storage"
)

// StatsSource is the part of the store the dashboard reads.
type StatsSource interface {
	Stats() storage.Stats
}

// StatsFunc adapts a function to StatsSource.
type StatsFunc func() storage.Stats

func (f StatsFunc) Stats() storage.Stats { return f() }

// Handler returns the dashboard routes: "/" renders the charts and
// "/api/stats" returns the raw counts as JSON.
func Handler(src StatsSource) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		st := src.Stats()
		page := components.NewPage()
		page.PageTitle = "Edikte"
		page.AddCharts(categoryPie(st), statusBar(st))
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := page.Render(w); err != nil {
			slog.Error("Dashboard render failed", "err", err)
		}
	})
	mux.HandleFunc("/api/stats", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(src.Stats()); err != nil {
			slog.Error("Stats encode failed", "err", err)
		}
	})
	return mux
}

// StartServer blocks serving the dashboard on port.
func StartServer(src StatsSource, port string) error {
	return http.ListenAndServe(":"+port, Handler(src))
}

func categoryPie(st storage.Stats) *charts.Pie {
	pie := charts.NewPie()
	pie.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Kategorien", Subtitle: "Auctions per property category"}),
		charts.WithInitializationOpts(opts.Initialization{Theme: types.ThemeWesteros}),
	)

	var items []opts.PieData
	for _, k := range sortedKeys(st.ByCategory) {
		items = append(items, opts.PieData{Name: k, Value: st.ByCategory[k]})
	}
	pie.AddSeries("Records", items)
	return pie
}

func statusBar(st storage.Stats) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(charts.WithTitleOpts(opts.Title{Title: "Status"}))

	statuses := []domain.Status{
		domain.StatusScraped,
		domain.StatusFetchFailed,
		domain.StatusDownloaded,
		domain.StatusNoAttachment,
		domain.StatusDownloadFailed,
	}
	var x []string
	var y []opts.BarData
	for _, s := range statuses {
		x = append(x, string(s))
		y = append(y, opts.BarData{Value: st.ByStatus[s]})
	}
	bar.SetXAxis(x).AddSeries("Records", y)
	return bar
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
