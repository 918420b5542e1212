package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockPulse/internal/analysis"
	"StockPulse/internal/collector"
	"StockPulse/internal/model"
)

var lastDay = time.Date(2024, 3, 8, 0, 0, 0, 0, time.UTC)

func analyze(t *testing.T, n int) *analysis.Analysis {
	t.Helper()
	series := &model.PriceSeries{Symbol: "HPG", Points: collector.GenerateMockBars(27000, n, lastDay)}
	a, err := analysis.Compute(series, analysis.DefaultParams())
	require.NoError(t, err)
	return a
}

func TestRenderText(t *testing.T) {
	a := analyze(t, 300)
	out := RenderText(a, 10)

	for _, h := range []string{"DATE", "OPEN", "EMA200", "RSI14", "SIGNAL"} {
		assert.Contains(t, out, h)
	}
	assert.Contains(t, out, "2024-03-08")
	assert.Contains(t, out, a.Rows[299].EMA20.Format(2))
	assert.NotContains(t, out, lastDay.AddDate(0, 0, -20).Format(model.DateLayout))
	assert.Equal(t, 10, strings.Count(out, "2024-"))
}

func TestRenderText_UndefinedShowsDash(t *testing.T) {
	a := analyze(t, 30)
	out := RenderText(a, 5)
	assert.Contains(t, out, " - ")
	assert.NotContains(t, out, "NaN")
}

func TestRenderHTML(t *testing.T) {
	out := RenderHTML(analyze(t, 60), 10)
	assert.True(t, strings.HasPrefix(out, `<table class="sessions">`))
	assert.Contains(t, out, "2024-03-08")
}

func TestChart_RenderPNG(t *testing.T) {
	c := Chart(analyze(t, 300))
	require.Len(t, c.Series, 6)

	var buf bytes.Buffer
	require.NoError(t, c.RenderPNG(&buf))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG\r\n\x1a\n")))
}

func TestChart_SkipsUndefinedSeries(t *testing.T) {
	// 60 sessions: EMA200 never defined, everything else is
	c := Chart(analyze(t, 60))
	var names []string
	for _, s := range c.Series {
		names = append(names, s.GetName())
	}
	assert.NotContains(t, names, "EMA200")
	assert.Contains(t, names, "EMA50")

	var buf bytes.Buffer
	require.NoError(t, c.RenderPNG(&buf))
}

func TestChart_EmptyFails(t *testing.T) {
	c := Chart(analyze(t, 1))
	var buf bytes.Buffer
	assert.Error(t, c.RenderPNG(&buf))
}

func TestFormatLatest(t *testing.T) {
	s := model.Summary{
		Symbol:      "HPG",
		Date:        lastDay,
		Close:       27650.4,
		RSI14:       model.Some(61.236),
		EMA20:       model.Some(27100.6),
		EMA50:       model.Some(26500),
		BBUpper:     model.Some(28800),
		BBLower:     model.Some(25900),
		Signal:      model.Sell,
		High52w:     30000,
		Low52w:      20000,
		Position52w: 0.76,
	}
	out := FormatLatest(s)
	assert.Contains(t, out, "HPG (2024-03-08)")
	assert.Contains(t, out, "27650 VND")
	assert.Contains(t, out, "EMA20: 27101 | EMA50: 26500 | EMA200: -")
	assert.Contains(t, out, "RSI(14): 61.24")
	assert.Contains(t, out, "20000 - 30000 (vị trí 76%)")
	assert.Contains(t, out, "Tín hiệu EMA: BÁN")
}
