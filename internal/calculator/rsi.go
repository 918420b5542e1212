package calculator

import "StockPulse/internal/model"

// RSI computes the Wilder-smoothed relative strength index. Entries before
// index period are undefined. The seed averages the first period deltas,
// later averages use avg = (avg*(period-1) + value) / period.
func RSI(closes []float64, period int) []model.NullFloat {
	mustPositive("RSI", period)
	out := make([]model.NullFloat, len(closes))
	if len(closes) <= period {
		return out
	}

	p := float64(period)
	var avgGain, avgLoss float64
	for i := 1; i <= period; i++ {
		gain, loss := split(closes[i] - closes[i-1])
		avgGain += gain
		avgLoss += loss
	}
	avgGain /= p
	avgLoss /= p
	out[period] = model.Some(rsiValue(avgGain, avgLoss))

	for i := period + 1; i < len(closes); i++ {
		gain, loss := split(closes[i] - closes[i-1])
		avgGain = (avgGain*(p-1) + gain) / p
		avgLoss = (avgLoss*(p-1) + loss) / p
		out[i] = model.Some(rsiValue(avgGain, avgLoss))
	}
	return out
}

func split(change float64) (gain, loss float64) {
	if change > 0 {
		return change, 0
	}
	return 0, -change
}

func rsiValue(avgGain, avgLoss float64) float64 {
	switch {
	case avgGain == 0 && avgLoss == 0:
		// flat price
		return 50
	case avgLoss == 0:
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}
