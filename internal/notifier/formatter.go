package notifier

import (
	"errors"
	"fmt"
	"html"
	"strings"

	"StockPulse/internal/analysis"
	"StockPulse/internal/model"
)

func signalIcon(s model.Signal) string {
	switch s {
	case model.Buy:
		return "🟢"
	case model.Sell:
		return "🔴"
	default:
		return "⚪"
	}
}

// FormatReport formats a full analysis into a Telegram HTML message.
func FormatReport(r *analysis.Report) string {
	s := r.Summary
	var b strings.Builder

	b.WriteString(fmt.Sprintf("📊 <b>%s</b> | %s\n\n", html.EscapeString(s.Symbol), s.Date.Format(model.DateLayout)))
	b.WriteString(fmt.Sprintf("Giá đóng cửa: <b>%.0f VND</b>\n", s.Close))
	b.WriteString(fmt.Sprintf("EMA20: %s | EMA50: %s | EMA200: %s\n", s.EMA20.Format(0), s.EMA50.Format(0), s.EMA200.Format(0)))
	b.WriteString(fmt.Sprintf("RSI(14): %s\n", s.RSI14.Format(2)))
	b.WriteString(fmt.Sprintf("Bollinger(20, 2): %s - %s\n", s.BBLower.Format(0), s.BBUpper.Format(0)))
	if s.High52w > 0 {
		b.WriteString(fmt.Sprintf("52 tuần: %.0f - %.0f (vị trí %.0f%%)\n", s.Low52w, s.High52w, s.Position52w*100))
	}

	b.WriteString(fmt.Sprintf("\n%s <b>Tín hiệu EMA:</b> %s\n", signalIcon(s.Signal), s.Signal.Label()))
	if ago, sig := r.LastCrossover(); ago >= 0 {
		b.WriteString(fmt.Sprintf("Giao cắt gần nhất: %s, %d phiên trước\n", sig.Label(), ago))
	} else {
		b.WriteString("Chưa có giao cắt EMA20/EMA50\n")
	}

	switch {
	case r.Commentary != "":
		b.WriteString(fmt.Sprintf("\n🧠 <b>Nhận định từ AI</b>\n%s\n", html.EscapeString(r.Commentary)))
	case r.CommentaryErr != nil:
		b.WriteString(fmt.Sprintf("\n⚠️ Lỗi gọi OpenAI: %s\n", html.EscapeString(r.CommentaryErr.Error())))
	}

	if len(r.Warnings) > 0 {
		b.WriteString("\n<i>Thiếu dữ liệu:</i>\n")
		for _, w := range r.Warnings {
			b.WriteString(fmt.Sprintf("  • %s\n", html.EscapeString(w.Error())))
		}
	}
	return b.String()
}

// FormatSignalAlert formats the short alert sent when the latest session
// carries a Buy or Sell crossover.
func FormatSignalAlert(r *analysis.Report) string {
	s := r.Summary
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🚨 %s <b>%s: %s</b> | %s\n", signalIcon(s.Signal), html.EscapeString(s.Symbol), s.Signal.Label(), s.Date.Format(model.DateLayout)))
	switch s.Signal {
	case model.Buy:
		b.WriteString("EMA20 cắt lên EMA50\n")
	case model.Sell:
		b.WriteString("EMA20 cắt xuống EMA50\n")
	}
	b.WriteString(fmt.Sprintf("Giá: %.0f VND | EMA20: %s | EMA50: %s | RSI(14): %s",
		s.Close, s.EMA20.Format(0), s.EMA50.Format(0), s.RSI14.Format(2)))
	return b.String()
}

// FormatChartCaption is the short caption attached to the chart photo.
func FormatChartCaption(s model.Summary) string {
	return fmt.Sprintf("<b>%s</b> - Biểu đồ kỹ thuật | %s", html.EscapeString(s.Symbol), s.Date.Format(model.DateLayout))
}

// FormatHelp lists the bot commands.
func FormatHelp(defaultSymbol string) string {
	var b strings.Builder
	b.WriteString("📖 <b>Lệnh hỗ trợ</b>\n\n")
	b.WriteString(fmt.Sprintf("/report [MÃ] - báo cáo kỹ thuật (mặc định %s)\n", html.EscapeString(defaultSymbol)))
	b.WriteString("/signal [MÃ] - tín hiệu EMA20/EMA50 phiên gần nhất\n")
	b.WriteString("/help - danh sách lệnh")
	return b.String()
}

// FormatError formats a failed command or job.
func FormatError(symbol string, err error) string {
	var nd *model.NoDataError
	if errors.As(err, &nd) {
		return fmt.Sprintf("❌ <b>%s</b>: %s", html.EscapeString(symbol), model.NoDataMessage)
	}
	return fmt.Sprintf("❌ <b>%s</b>: %s", html.EscapeString(symbol), html.EscapeString(err.Error()))
}
