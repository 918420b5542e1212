package analysis

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"StockPulse/internal/calculator"
	"StockPulse/internal/model"
	"StockPulse/internal/strategy"
)

var log = logrus.WithField("component", "analysis")

// Params holds the indicator periods.
type Params struct {
	EMAShort     int
	EMAMid       int
	EMALong      int
	RSIPeriod    int
	BBPeriod     int
	BBMultiplier float64
}

// DefaultParams returns EMA 20/50/200, RSI 14 and Bollinger 20/2.
func DefaultParams() Params {
	return Params{
		EMAShort:     20,
		EMAMid:       50,
		EMALong:      200,
		RSIPeriod:    14,
		BBPeriod:     20,
		BBMultiplier: 2,
	}
}

// Analysis is the indicator table of one series. Rows are index-aligned with
// Series.Points and must not be modified.
type Analysis struct {
	Series   *model.PriceSeries
	Params   Params
	Rows     []model.IndicatorRow
	Warnings []error
}

// Session pairs a price point with its indicator row.
type Session struct {
	Point model.PricePoint
	Row   model.IndicatorRow
}

// Compute validates the series and derives every indicator and the
// crossover signal. Too-short history leaves columns undefined and is
// reported in Warnings; a malformed point fails the whole computation.
func Compute(series *model.PriceSeries, p Params) (*Analysis, error) {
	if err := series.Validate(); err != nil {
		return nil, fmt.Errorf("compute %s: %w", series.Symbol, err)
	}

	closes := series.Closes()
	var (
		emaShort, emaMid, emaLong []model.NullFloat
		rsi                       []model.NullFloat
		bbMid, bbUp, bbLow        []model.NullFloat
	)

	// Each goroutine writes its own slice and only reads closes.
	var g errgroup.Group
	g.Go(func() error { emaShort = calculator.EMA(closes, p.EMAShort); return nil })
	g.Go(func() error { emaMid = calculator.EMA(closes, p.EMAMid); return nil })
	g.Go(func() error { emaLong = calculator.EMA(closes, p.EMALong); return nil })
	g.Go(func() error { rsi = calculator.RSI(closes, p.RSIPeriod); return nil })
	g.Go(func() error {
		bbMid, bbUp, bbLow = calculator.Bollinger(closes, p.BBPeriod, p.BBMultiplier)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	signals := strategy.DetectCrossovers(emaShort, emaMid)

	rows := make([]model.IndicatorRow, len(closes))
	for i := range rows {
		rows[i] = model.IndicatorRow{
			EMA20:    emaShort[i],
			EMA50:    emaMid[i],
			EMA200:   emaLong[i],
			RSI14:    rsi[i],
			BBMiddle: bbMid[i],
			BBUpper:  bbUp[i],
			BBLower:  bbLow[i],
			Signal:   signals[i],
		}
	}

	a := &Analysis{
		Series:   series,
		Params:   p,
		Rows:     rows,
		Warnings: historyWarnings(len(closes), p),
	}
	for _, w := range a.Warnings {
		log.Infof("%s: %v", series.Symbol, w)
	}
	return a, nil
}

func historyWarnings(n int, p Params) []error {
	var warnings []error
	check := func(name string, period, need int) {
		if n < need {
			warnings = append(warnings, &model.InsufficientHistoryError{Indicator: name, Period: period, Have: n})
		}
	}
	check(fmt.Sprintf("EMA%d", p.EMAShort), p.EMAShort, p.EMAShort)
	check(fmt.Sprintf("EMA%d", p.EMAMid), p.EMAMid, p.EMAMid)
	check(fmt.Sprintf("EMA%d", p.EMALong), p.EMALong, p.EMALong)
	// RSI needs period deltas, one more session than its period.
	check(fmt.Sprintf("RSI%d", p.RSIPeriod), p.RSIPeriod, p.RSIPeriod+1)
	check(fmt.Sprintf("BB%d", p.BBPeriod), p.BBPeriod, p.BBPeriod)
	return warnings
}

// Latest summarizes the most recent session.
func (a *Analysis) Latest() (model.Summary, error) {
	last, ok := a.Series.Last()
	if !ok {
		return model.Summary{}, &model.NoDataError{Symbol: a.Series.Symbol, Reason: "empty series"}
	}
	row := a.Rows[len(a.Rows)-1]
	s := model.Summary{
		Symbol:  a.Series.Symbol,
		Date:    last.Date,
		Close:   last.Close,
		RSI14:   row.RSI14,
		EMA20:   row.EMA20,
		EMA50:   row.EMA50,
		EMA200:  row.EMA200,
		BBUpper: row.BBUpper,
		BBLower: row.BBLower,
		Signal:  row.Signal,
	}
	if high, low, ok := calculator.SessionRange(a.Series.Points, calculator.TradingDaysPerYear); ok {
		s.High52w, s.Low52w = high, low
		s.Position52w = calculator.RangePosition(last.Close, high, low)
	}
	return s, nil
}

// Tail returns the last n sessions, oldest first.
func (a *Analysis) Tail(n int) []Session {
	start := len(a.Rows) - n
	if start < 0 || n < 0 {
		start = 0
	}
	out := make([]Session, 0, len(a.Rows)-start)
	for i := start; i < len(a.Rows); i++ {
		out = append(out, Session{Point: a.Series.Points[i], Row: a.Rows[i]})
	}
	return out
}

// LastCrossover returns how many sessions ago the last Buy or Sell fired,
// or -1 when none did.
func (a *Analysis) LastCrossover() (sessionsAgo int, sig model.Signal) {
	i, sig := strategy.LastCrossover(a.Rows)
	if i < 0 {
		return -1, model.Hold
	}
	return len(a.Rows) - 1 - i, sig
}
