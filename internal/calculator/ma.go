package calculator

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"StockPulse/internal/model"
)

func mustPositive(name string, period int) {
	if period <= 0 {
		panic(fmt.Sprintf("calculator: %s period must be positive, got %d", name, period))
	}
}

// EMA computes the exponential moving average seeded with the simple mean of
// the first period closes, then ema[i] = close[i]*k + ema[i-1]*(1-k) with
// k = 2/(period+1).
func EMA(closes []float64, period int) []model.NullFloat {
	mustPositive("EMA", period)
	out := make([]model.NullFloat, len(closes))
	if len(closes) < period {
		return out
	}

	k := 2.0 / float64(period+1)
	prev := floats.Sum(closes[:period]) / float64(period)
	out[period-1] = model.Some(prev)
	for i := period; i < len(closes); i++ {
		prev = closes[i]*k + prev*(1-k)
		out[i] = model.Some(prev)
	}
	return out
}
