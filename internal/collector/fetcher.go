package collector

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"

	"StockPulse/internal/model"
)

// Fetcher loads daily sessions for one ticker from a price provider.
type Fetcher interface {
	FetchDailyBars(ctx context.Context, symbol string, size int) ([]model.PricePoint, error)
	Name() string
}

// newHTTPClient builds a client with optional proxy support.
func newHTTPClient(proxyURL string, timeout time.Duration) *http.Client {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}

// statusError is a non-success provider response.
type statusError struct {
	Code int
	Body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("status %d, body: %s", e.Code, e.Body)
}

func defaultBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxElapsedTime = 30 * time.Second
	return b
}

// fetchWithRetry runs op with exponential backoff. Transport errors and 5xx
// responses are retried; anything else is final. A status error that
// survives the retries becomes a NoDataError carrying the status.
func fetchWithRetry(ctx context.Context, symbol string, maxRetries int, newBackOff func() backoff.BackOff, op func() ([]model.PricePoint, error)) ([]model.PricePoint, error) {
	if newBackOff == nil {
		newBackOff = defaultBackOff
	}
	if maxRetries < 0 {
		maxRetries = 0
	}

	var bars []model.PricePoint
	attempt := func() error {
		var err error
		bars, err = op()
		if err == nil {
			return nil
		}
		var se *statusError
		if errors.As(err, &se) && se.Code >= 500 {
			return err
		}
		if errors.As(err, &se) {
			return backoff.Permanent(err)
		}
		var nd *model.NoDataError
		var mp *model.MalformedPointError
		if errors.As(err, &nd) || errors.As(err, &mp) || ctx.Err() != nil {
			return backoff.Permanent(err)
		}
		return err
	}

	b := backoff.WithContext(backoff.WithMaxRetries(newBackOff(), uint64(maxRetries)), ctx)
	err := backoff.Retry(attempt, b)
	if err == nil {
		return bars, nil
	}

	var se *statusError
	if errors.As(err, &se) {
		return nil, &model.NoDataError{Symbol: symbol, Reason: err.Error(), Status: se.Code}
	}
	return nil, err
}
