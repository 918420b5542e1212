package strategy

import (
	"fmt"

	"StockPulse/internal/model"
)

// DetectCrossovers emits one signal per session from the short and long
// moving averages. A crossover is flagged only on the step where the relation
// strictly inverts; equal values never trigger a signal on their own.
func DetectCrossovers(short, long []model.NullFloat) []model.Signal {
	if len(short) != len(long) {
		panic(fmt.Sprintf("strategy: crossover inputs differ in length (%d vs %d)", len(short), len(long)))
	}

	signals := make([]model.Signal, len(short))
	for i := 1; i < len(short); i++ {
		s, sOK := short[i].Get()
		l, lOK := long[i].Get()
		ps, psOK := short[i-1].Get()
		pl, plOK := long[i-1].Get()
		if !sOK || !lOK || !psOK || !plOK {
			continue
		}

		switch {
		case s > l && ps <= pl:
			signals[i] = model.Buy
		case s < l && ps >= pl:
			signals[i] = model.Sell
		}
	}
	return signals
}

// LastCrossover returns the index and signal of the most recent Buy or Sell
// row, or -1 and Hold when there is none.
func LastCrossover(rows []model.IndicatorRow) (int, model.Signal) {
	for i := len(rows) - 1; i >= 0; i-- {
		if rows[i].Signal != model.Hold {
			return i, rows[i].Signal
		}
	}
	return -1, model.Hold
}
