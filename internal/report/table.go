package report

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"StockPulse/internal/analysis"
	"StockPulse/internal/model"
)

// DefaultRows is the number of sessions shown in the table.
const DefaultRows = 10

var tableHeader = table.Row{"Date", "Open", "High", "Low", "Close", "EMA20", "EMA50", "EMA200", "RSI14", "Signal"}

// Table builds the last-n-sessions table. Values are rounded to 2 decimals
// for display and undefined values show as "-".
func Table(a *analysis.Analysis, n int) table.Writer {
	if n <= 0 {
		n = DefaultRows
	}
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.AppendHeader(tableHeader)

	configs := make([]table.ColumnConfig, 0, len(tableHeader))
	for i := 2; i <= len(tableHeader)-1; i++ {
		configs = append(configs, table.ColumnConfig{Number: i, Align: text.AlignRight})
	}
	t.SetColumnConfigs(configs)

	for _, s := range a.Tail(n) {
		p, r := s.Point, s.Row
		t.AppendRow(table.Row{
			p.Date.Format(model.DateLayout),
			model.Some(p.Open).Format(2),
			model.Some(p.High).Format(2),
			model.Some(p.Low).Format(2),
			model.Some(p.Close).Format(2),
			r.EMA20.Format(2),
			r.EMA50.Format(2),
			r.EMA200.Format(2),
			r.RSI14.Format(2),
			r.Signal.String(),
		})
	}
	return t
}

// RenderText renders the table for a terminal.
func RenderText(a *analysis.Analysis, n int) string {
	return Table(a, n).Render()
}

// RenderHTML renders the table as an HTML <table>.
func RenderHTML(a *analysis.Analysis, n int) string {
	t := Table(a, n)
	t.Style().HTML.CSSClass = "sessions"
	return t.RenderHTML()
}
