package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/shopspring/decimal"

	"StockPulse/internal/model"
)

// DefaultVNDirectURL is the VNDIRECT finfo stock price endpoint.
const DefaultVNDirectURL = "https://finfo-api.vndirect.com.vn/v4/stock_prices"

// VNDirectFetcher implements Fetcher using the VNDIRECT finfo REST API.
type VNDirectFetcher struct {
	BaseURL    string
	Client     *http.Client
	MaxRetries int
	BackOff    func() backoff.BackOff
}

// NewVNDirectFetcher creates a new fetcher with optional proxy support.
func NewVNDirectFetcher(baseURL, proxyURL string, timeout time.Duration, maxRetries int) *VNDirectFetcher {
	if baseURL == "" {
		baseURL = DefaultVNDirectURL
	}
	return &VNDirectFetcher{
		BaseURL:    baseURL,
		Client:     newHTTPClient(proxyURL, timeout),
		MaxRetries: maxRetries,
	}
}

func (f *VNDirectFetcher) Name() string { return "vndirect" }

// vndResponse keeps rows raw so each one can be decoded and reported on its own.
type vndResponse struct {
	Data []json.RawMessage `json:"data"`
}

func (f *VNDirectFetcher) FetchDailyBars(ctx context.Context, symbol string, size int) ([]model.PricePoint, error) {
	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("sort", "date")
	q.Set("size", strconv.Itoa(size))
	endpoint := f.BaseURL + "?" + q.Encode()

	return fetchWithRetry(ctx, symbol, f.MaxRetries, f.BackOff, func() ([]model.PricePoint, error) {
		return f.fetchBars(ctx, symbol, endpoint)
	})
}

func (f *VNDirectFetcher) fetchBars(ctx context.Context, symbol, endpoint string) ([]model.PricePoint, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch bars: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &statusError{Code: resp.StatusCode, Body: string(body)}
	}

	var payload vndResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode bars: %w", err)
	}
	if len(payload.Data) == 0 {
		return nil, &model.NoDataError{Symbol: symbol, Reason: "empty data array"}
	}

	bars := make([]model.PricePoint, len(payload.Data))
	for i, raw := range payload.Data {
		if bars[i], err = decodeVNDirectBar(i, raw); err != nil {
			return nil, err
		}
	}

	// The provider sorts newest first.
	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })
	return bars, nil
}

// decodeVNDirectBar accepts prices as JSON numbers or numeric strings.
func decodeVNDirectBar(index int, raw json.RawMessage) (model.PricePoint, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return model.PricePoint{}, &model.MalformedPointError{Index: index, Reason: "row is not an object"}
	}

	var dateStr string
	if rawDate, ok := fields["date"]; !ok || json.Unmarshal(rawDate, &dateStr) != nil || len(dateStr) < len(model.DateLayout) {
		return model.PricePoint{}, &model.MalformedPointError{Index: index, Field: "date", Reason: "missing or not a string"}
	}
	date, err := time.Parse(model.DateLayout, dateStr[:len(model.DateLayout)])
	if err != nil {
		return model.PricePoint{}, &model.MalformedPointError{Index: index, Field: "date", Reason: err.Error()}
	}

	num := func(name string) (float64, error) {
		malformed := func(reason string) error {
			return &model.MalformedPointError{Index: index, Date: date.Format(model.DateLayout), Field: name, Reason: reason}
		}
		rawNum, ok := fields[name]
		if !ok {
			return 0, malformed("missing")
		}
		var d decimal.NullDecimal
		if err := d.UnmarshalJSON(rawNum); err != nil {
			return 0, malformed("not numeric: " + string(rawNum))
		}
		if !d.Valid {
			return 0, malformed("null")
		}
		v, _ := d.Decimal.Float64()
		return v, nil
	}

	p := model.PricePoint{Date: date}
	for _, f := range []struct {
		name string
		dst  *float64
	}{
		{"open", &p.Open},
		{"high", &p.High},
		{"low", &p.Low},
		{"close", &p.Close},
		{"volume", &p.Volume},
	} {
		if *f.dst, err = num(f.name); err != nil {
			return model.PricePoint{}, err
		}
	}
	return p, nil
}
