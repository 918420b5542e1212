package server

import "html/template"

var dashboardTemplate = template.Must(template.New("dashboard").Parse(`<!DOCTYPE html>
<html lang="vi">
<head>
<meta charset="utf-8">
<title>{{.Symbol}} - Phân tích kỹ thuật</title>
<style>
body { font-family: -apple-system, "Segoe UI", Roboto, sans-serif; margin: 24px; color: #222; }
.metrics { display: flex; gap: 24px; flex-wrap: wrap; }
.metric { background: #f5f5f5; padding: 12px 16px; border-radius: 6px; }
.metric b { display: block; font-size: 1.4em; }
.info { background: #e8f1fb; padding: 12px; border-radius: 6px; white-space: pre-wrap; }
.warn { background: #fff4e0; padding: 12px; border-radius: 6px; }
.error { background: #fde8e8; padding: 12px; border-radius: 6px; }
table.sessions { border-collapse: collapse; }
table.sessions td, table.sessions th { border: 1px solid #ddd; padding: 4px 8px; text-align: right; }
</style>
</head>
<body>
<h1>📊 Phân tích kỹ thuật &amp; AI nhận định cổ phiếu</h1>
<form method="get" action="/">
  <label>Nhập mã cổ phiếu (ví dụ: HPG, VNM, FPT): <input name="symbol" value="{{.Symbol}}"></label>
  <button type="submit">Phân tích</button>
</form>
{{if .Error}}
<p class="error">{{.Error}}</p>
{{else}}
<h2>📌 Dữ liệu mới nhất ({{.Latest.Date.Format "2006-01-02"}})</h2>
<div class="metrics">
  <div class="metric">Giá hiện tại (close)<b>{{printf "%.0f" .Latest.Close}} VND</b></div>
  <div class="metric">EMA20<b>{{.Latest.EMA20.Format 0}}</b></div>
  <div class="metric">EMA50<b>{{.Latest.EMA50.Format 0}}</b></div>
  <div class="metric">EMA200<b>{{.Latest.EMA200.Format 0}}</b></div>
  <div class="metric">RSI(14)<b>{{.Latest.RSI14.Format 2}}</b></div>
  <div class="metric">Tín hiệu EMA<b>{{.Latest.Signal.Label}}</b></div>
</div>
{{if .Crossover}}<p>Giao cắt gần nhất: {{.Crossover}}</p>{{end}}
{{range .Warnings}}<p class="warn">⚠️ {{.}}</p>{{end}}
{{if .Commentary}}
<h2>🧠 Nhận định từ AI</h2>
<div class="info">{{.Commentary}}</div>
{{else if .CommentaryError}}
<p class="warn">⚠️ Lỗi gọi OpenAI: {{.CommentaryError}}</p>
{{end}}
<h2>📉 Biểu đồ giá &amp; đường trung bình động</h2>
<img src="{{.ChartURL}}" alt="{{.Symbol}} chart" width="1200" height="500">
<h2>📄 Bảng dữ liệu 10 phiên gần nhất</h2>
{{.Table}}
{{end}}
</body>
</html>
`))
