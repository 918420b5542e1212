package report

import (
	"fmt"
	"strings"

	"StockPulse/internal/model"
)

// FormatLatest renders the latest-session block shown above the chart.
func FormatLatest(s model.Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Dữ liệu mới nhất %s (%s):\n", s.Symbol, s.Date.Format(model.DateLayout))
	fmt.Fprintf(&b, "Giá hiện tại (close): %.0f VND\n", s.Close)
	fmt.Fprintf(&b, "EMA20: %s | EMA50: %s | EMA200: %s\n", s.EMA20.Format(0), s.EMA50.Format(0), s.EMA200.Format(0))
	fmt.Fprintf(&b, "RSI(14): %s\n", s.RSI14.Format(2))
	fmt.Fprintf(&b, "Bollinger: %s - %s\n", s.BBLower.Format(0), s.BBUpper.Format(0))
	if s.High52w > 0 {
		fmt.Fprintf(&b, "52 tuần: %.0f - %.0f (vị trí %.0f%%)\n", s.Low52w, s.High52w, s.Position52w*100)
	}
	fmt.Fprintf(&b, "Tín hiệu EMA: %s", s.Signal.Label())
	return b.String()
}
