package calculator

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"StockPulse/internal/model"
)

// Bollinger computes the bands around the trailing SMA using the population
// standard deviation of the same window. k is the band width in deviations,
// generally 2.
func Bollinger(closes []float64, period int, k float64) (middle, upper, lower []model.NullFloat) {
	mustPositive("Bollinger", period)
	n := len(closes)
	middle = make([]model.NullFloat, n)
	upper = make([]model.NullFloat, n)
	lower = make([]model.NullFloat, n)

	for i := period - 1; i < n; i++ {
		mean, variance := stat.PopMeanVariance(closes[i-period+1:i+1], nil)
		if variance < 0 {
			variance = 0
		}
		band := k * math.Sqrt(variance)
		middle[i] = model.Some(mean)
		upper[i] = model.Some(mean + band)
		lower[i] = model.Some(mean - band)
	}
	return middle, upper, lower
}
