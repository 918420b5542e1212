package calculator

import (
	"gonum.org/v1/gonum/floats"

	"StockPulse/internal/model"
)

// TradingDaysPerYear is the 52-week lookback in sessions.
const TradingDaysPerYear = 252

// SessionRange returns the highest high and lowest low of the most recent
// lookback sessions. ok is false for an empty series.
func SessionRange(points []model.PricePoint, lookback int) (high, low float64, ok bool) {
	mustPositive("range", lookback)
	if len(points) == 0 {
		return 0, 0, false
	}
	start := len(points) - lookback
	if start < 0 {
		start = 0
	}
	window := points[start:]
	highs := make([]float64, len(window))
	lows := make([]float64, len(window))
	for i, p := range window {
		highs[i], lows[i] = p.High, p.Low
	}
	return floats.Max(highs), floats.Min(lows), true
}

// RangePosition returns where current sits within [low, high], clamped to
// 0..1. A collapsed range is the midpoint.
func RangePosition(current, high, low float64) float64 {
	if high <= low {
		return 0.5
	}
	pos := (current - low) / (high - low)
	if pos < 0 {
		return 0
	}
	if pos > 1 {
		return 1
	}
	return pos
}
