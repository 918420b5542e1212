package report

import (
	"fmt"
	"io"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"StockPulse/internal/analysis"
	"StockPulse/internal/model"
)

var (
	colorGray      = drawing.Color{R: 128, G: 128, B: 128, A: 255}
	colorLightGray = drawing.Color{R: 190, G: 190, B: 190, A: 255}
)

// Canvas is the price and moving-average chart of one analysis.
type Canvas struct {
	chart.Chart
}

// Chart plots close, EMA20, EMA50, EMA200 and the Bollinger bands. Each line
// starts at its first defined session; lines with fewer than two points are
// left out.
func Chart(a *analysis.Analysis) *Canvas {
	canvas := &Canvas{
		Chart: chart.Chart{
			Title:  fmt.Sprintf("%s - Biểu đồ kỹ thuật", a.Series.Symbol),
			Width:  1200,
			Height: 500,
			XAxis: chart.XAxis{
				ValueFormatter: chart.TimeDateValueFormatter,
			},
			YAxis: chart.YAxis{
				ValueFormatter: func(v interface{}) string {
					if vf, isFloat := v.(float64); isFloat {
						return fmt.Sprintf("%.0f", vf)
					}
					return ""
				},
			},
		},
	}

	points := a.Series.Points
	closes := make([]model.NullFloat, len(points))
	for i, p := range points {
		closes[i] = model.Some(p.Close)
	}
	column := func(get func(model.IndicatorRow) model.NullFloat) []model.NullFloat {
		out := make([]model.NullFloat, len(a.Rows))
		for i, r := range a.Rows {
			out[i] = get(r)
		}
		return out
	}

	dashed := chart.Style{StrokeColor: colorLightGray, StrokeWidth: 1, StrokeDashArray: []float64{5, 5}}
	canvas.plot(points, "BB upper", column(func(r model.IndicatorRow) model.NullFloat { return r.BBUpper }), dashed)
	canvas.plot(points, "BB lower", column(func(r model.IndicatorRow) model.NullFloat { return r.BBLower }), dashed)
	canvas.plot(points, "Giá đóng cửa", closes, chart.Style{StrokeColor: colorGray, StrokeWidth: 1.5})
	canvas.plot(points, "EMA20", column(func(r model.IndicatorRow) model.NullFloat { return r.EMA20 }), chart.Style{StrokeColor: drawing.ColorRed, StrokeWidth: 1.5})
	canvas.plot(points, "EMA50", column(func(r model.IndicatorRow) model.NullFloat { return r.EMA50 }), chart.Style{StrokeColor: drawing.ColorBlue, StrokeWidth: 1.5})
	canvas.plot(points, "EMA200", column(func(r model.IndicatorRow) model.NullFloat { return r.EMA200 }), chart.Style{StrokeColor: drawing.ColorBlack, StrokeWidth: 1.5})

	canvas.Elements = []chart.Renderable{
		chart.LegendLeft(&canvas.Chart),
	}
	return canvas
}

func (c *Canvas) plot(points []model.PricePoint, name string, values []model.NullFloat, style chart.Style) {
	var (
		xs []time.Time
		ys []float64
	)
	for i, v := range values {
		if !v.Valid {
			continue
		}
		xs = append(xs, points[i].Date)
		ys = append(ys, v.Float64)
	}
	if len(xs) < 2 {
		return
	}
	c.Series = append(c.Series, chart.TimeSeries{
		Name:    name,
		Style:   style,
		XValues: xs,
		YValues: ys,
	})
}

// RenderPNG writes the chart as PNG.
func (c *Canvas) RenderPNG(w io.Writer) error {
	if len(c.Series) == 0 {
		return fmt.Errorf("chart %q has no series with two or more points", c.Title)
	}
	return c.Render(chart.PNG, w)
}
