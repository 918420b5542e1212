package collector

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"StockPulse/internal/metrics"
	"StockPulse/internal/model"
	"StockPulse/internal/recorder"
)

var log = logrus.WithField("component", "collector")

// DefaultSize is the number of sessions requested from the provider.
const DefaultSize = 300

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Price float64
	Bars  []model.PricePoint
	Err   error
	End   time.Time // last session date; zero means today
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchDailyBars(_ context.Context, _ string, size int) ([]model.PricePoint, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Bars != nil {
		return m.Bars, nil
	}
	end := m.End
	if end.IsZero() {
		now := time.Now().UTC()
		end = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	}
	price := m.Price
	if price <= 0 {
		price = 25000
	}
	return GenerateMockBars(price, size, end), nil
}

// GenerateMockBars builds count weekday sessions ending at end. The close
// follows a slow sine wave with a mild drift so crossovers occur.
func GenerateMockBars(basePrice float64, count int, end time.Time) []model.PricePoint {
	dates := make([]time.Time, 0, count)
	for d := end; len(dates) < count; d = d.AddDate(0, 0, -1) {
		if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			continue
		}
		dates = append(dates, d)
	}

	bars := make([]model.PricePoint, count)
	for i := 0; i < count; i++ {
		x := float64(i)
		p := basePrice * (1 + 0.12*math.Sin(x/18) + 0.04*math.Sin(x/5) + 0.0004*x)
		bars[i] = model.PricePoint{
			Date:   dates[count-1-i],
			Open:   p * 0.995,
			High:   p * 1.01,
			Low:    p * 0.985,
			Close:  p,
			Volume: 1_000_000 + 250_000*math.Abs(math.Sin(x/3)),
		}
	}
	return bars
}

// Collector loads validated price series, caching raw bars in the recorder
// and falling back to them when the provider is unreachable.
type Collector struct {
	Fetcher  Fetcher
	Recorder recorder.Recorder
	Metrics  *metrics.Metrics
	Size     int
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, rec recorder.Recorder, m *metrics.Metrics, size int) *Collector {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	if size <= 0 {
		size = DefaultSize
	}
	return &Collector{Fetcher: fetcher, Recorder: rec, Metrics: m, Size: size}
}

// NormalizeSymbol trims and upper-cases a ticker.
func NormalizeSymbol(symbol string) (string, error) {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	if s == "" {
		return "", errors.New("empty ticker")
	}
	return s, nil
}

// Load fetches the daily series of symbol.
func (c *Collector) Load(ctx context.Context, symbol string) (*model.PriceSeries, error) {
	sym, err := NormalizeSymbol(symbol)
	if err != nil {
		return nil, err
	}

	source := c.Fetcher.Name()
	start := time.Now()
	bars, err := c.Fetcher.FetchDailyBars(ctx, sym, c.Size)
	c.Metrics.ObserveFetch(source, time.Since(start), err)

	if err != nil {
		if !c.canFallback(ctx, err) {
			return nil, fmt.Errorf("load %s from %s: %w", sym, source, err)
		}
		cached, cerr := c.Recorder.LoadBars(sym, c.Size)
		if cerr != nil || len(cached) == 0 {
			if cerr != nil {
				log.WithError(cerr).Warnf("read bar cache for %s", sym)
			}
			return nil, fmt.Errorf("load %s from %s: %w", sym, source, err)
		}
		log.WithError(err).Warnf("%s unavailable, using %d cached sessions for %s", source, len(cached), sym)
		bars = cached
		source = "cache"
	} else {
		log.Infof("fetched %d sessions for %s from %s", len(bars), sym, source)
	}

	series := &model.PriceSeries{
		Symbol:    sym,
		Source:    source,
		Points:    bars,
		FetchedAt: time.Now(),
	}
	if err := series.Validate(); err != nil {
		return nil, fmt.Errorf("load %s: %w", sym, err)
	}

	if source != "cache" {
		if err := c.Recorder.SaveBars(sym, bars); err != nil {
			log.WithError(err).Warnf("cache bars for %s", sym)
		}
	}
	return series, nil
}

// canFallback reports whether err is a provider outage rather than an
// answer about the ticker.
func (c *Collector) canFallback(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	var mp *model.MalformedPointError
	if errors.As(err, &mp) {
		return false
	}
	var nd *model.NoDataError
	if errors.As(err, &nd) {
		return nd.Status >= 500
	}
	return true
}
