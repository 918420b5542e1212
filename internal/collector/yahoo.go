package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"StockPulse/internal/model"
)

// DefaultYahooURL is the Yahoo Finance chart endpoint.
const DefaultYahooURL = "https://query1.finance.yahoo.com/v8/finance/chart"

// vnLocation anchors session timestamps to the exchange's calendar day.
var vnLocation = time.FixedZone("ICT", 7*60*60)

// YahooFetcher implements Fetcher using Yahoo Finance, which lists HOSE/HNX
// tickers with a ".VN" suffix.
type YahooFetcher struct {
	BaseURL    string
	Client     *http.Client
	MaxRetries int
	BackOff    func() backoff.BackOff
	SymbolMap  map[string]string // maps ticker to Yahoo symbol
}

// NewYahooFetcher creates a new Yahoo Finance fetcher.
func NewYahooFetcher(baseURL, proxyURL string, timeout time.Duration, maxRetries int) *YahooFetcher {
	if baseURL == "" {
		baseURL = DefaultYahooURL
	}
	return &YahooFetcher{
		BaseURL:    baseURL,
		Client:     newHTTPClient(proxyURL, timeout),
		MaxRetries: maxRetries,
		SymbolMap: map[string]string{
			"VNINDEX": "^VNINDEX.VN",
		},
	}
}

func (f *YahooFetcher) Name() string { return "yahoo" }

func (f *YahooFetcher) yahooSymbol(symbol string) string {
	if mapped, ok := f.SymbolMap[symbol]; ok {
		return mapped
	}
	if strings.Contains(symbol, ".") {
		return symbol
	}
	return symbol + ".VN"
}

// yahooChart is the response structure from Yahoo Finance chart API.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// yahooRange picks the smallest chart range covering size sessions.
func yahooRange(size int) string {
	switch {
	case size <= 22:
		return "1mo"
	case size <= 66:
		return "3mo"
	case size <= 130:
		return "6mo"
	case size <= 252:
		return "1y"
	default:
		return "2y"
	}
}

func (f *YahooFetcher) FetchDailyBars(ctx context.Context, symbol string, size int) ([]model.PricePoint, error) {
	u := fmt.Sprintf("%s/%s?interval=1d&range=%s", f.BaseURL, url.PathEscape(f.yahooSymbol(symbol)), yahooRange(size))

	bars, err := fetchWithRetry(ctx, symbol, f.MaxRetries, f.BackOff, func() ([]model.PricePoint, error) {
		return f.fetchChart(ctx, symbol, u)
	})
	if err != nil {
		return nil, err
	}
	if len(bars) > size {
		bars = bars[len(bars)-size:]
	}
	return bars, nil
}

func (f *YahooFetcher) fetchChart(ctx context.Context, symbol, u string) ([]model.PricePoint, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("yahoo fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("yahoo read body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if len(body) > 512 {
			body = body[:512]
		}
		return nil, &statusError{Code: resp.StatusCode, Body: string(body)}
	}

	var chart yahooChart
	if err := json.Unmarshal(body, &chart); err != nil {
		return nil, fmt.Errorf("yahoo decode: %w", err)
	}
	if chart.Chart.Error != nil {
		return nil, &model.NoDataError{Symbol: symbol, Reason: chart.Chart.Error.Description}
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Timestamp) == 0 || len(chart.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, &model.NoDataError{Symbol: symbol, Reason: "empty chart result"}
	}

	result := chart.Chart.Result[0]
	quote := result.Indicators.Quote[0]
	at := func(vals []*float64, i int) *float64 {
		if i < len(vals) {
			return vals[i]
		}
		return nil
	}

	bars := make([]model.PricePoint, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		o, h, l, c := at(quote.Open, i), at(quote.High, i), at(quote.Low, i), at(quote.Close, i)
		if o == nil || h == nil || l == nil || c == nil {
			continue // halted sessions come back as nulls
		}
		var vol float64
		if v := at(quote.Volume, i); v != nil {
			vol = *v
		}
		local := time.Unix(ts, 0).In(vnLocation)
		bars = append(bars, model.PricePoint{
			Date:   time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC),
			Open:   *o,
			High:   *h,
			Low:    *l,
			Close:  *c,
			Volume: vol,
		})
	}
	if len(bars) == 0 {
		return nil, &model.NoDataError{Symbol: symbol, Reason: "every session is empty"}
	}

	sort.Slice(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })
	return bars, nil
}
