package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockPulse/internal/analysis"
	"StockPulse/internal/collector"
	"StockPulse/internal/metrics"
	"StockPulse/internal/model"
)

type stubRunner struct {
	n             int
	commentary    string
	commentaryErr error
	err           error
	calls         []bool
}

func (s *stubRunner) Run(_ context.Context, symbol string, withCommentary bool) (*analysis.Report, error) {
	s.calls = append(s.calls, withCommentary)
	if s.err != nil {
		return nil, s.err
	}
	end := time.Date(2024, 3, 8, 0, 0, 0, 0, time.UTC)
	a, err := analysis.Compute(&model.PriceSeries{Symbol: symbol, Source: "mock", Points: collector.GenerateMockBars(27000, s.n, end)}, analysis.DefaultParams())
	if err != nil {
		return nil, err
	}
	sum, err := a.Latest()
	if err != nil {
		return nil, err
	}
	r := &analysis.Report{Analysis: a, Summary: sum}
	if withCommentary {
		r.Commentary, r.CommentaryErr = s.commentary, s.commentaryErr
	}
	return r, nil
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestServer_Health(t *testing.T) {
	rec := get(t, New(&stubRunner{n: 300}, nil, "", 0).Handler(), "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestServer_Analysis(t *testing.T) {
	runner := &stubRunner{n: 120, commentary: "Tích lũy"}
	h := New(runner, nil, "", 0).Handler()

	rec := get(t, h, "/api/v1/stocks/hpg/analysis")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body struct {
		Series     model.PriceSeries `json:"series"`
		Rows       []map[string]interface{}
		Summary    map[string]interface{}
		Warnings   []string
		Commentary string
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "HPG", body.Series.Symbol)
	assert.Len(t, body.Series.Points, 120)
	require.Len(t, body.Rows, 120)
	assert.Nil(t, body.Rows[0]["ema20"])
	assert.Nil(t, body.Rows[119]["ema200"])
	assert.NotNil(t, body.Rows[119]["ema50"])
	assert.Equal(t, "HOLD", body.Rows[0]["signal"])
	assert.Equal(t, "HPG", body.Summary["symbol"])
	assert.Equal(t, []string{"EMA200 needs 200 sessions, have 120"}, body.Warnings)
	assert.Empty(t, body.Commentary)
	assert.Equal(t, []bool{false}, runner.calls)

	rec = get(t, h, "/api/v1/stocks/HPG/analysis?commentary=1")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"commentary":"Tích lũy"`)
}

func TestServer_AnalysisCommentaryError(t *testing.T) {
	runner := &stubRunner{n: 300, commentaryErr: &model.CommentaryUnavailableError{Err: errors.New("status 401")}}
	rec := get(t, New(runner, nil, "", 0).Handler(), "/api/v1/stocks/HPG/analysis?commentary=1")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"commentary_error":"commentary unavailable: status 401"`)
}

func TestServer_ErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantBody string
	}{
		{"no data", &model.NoDataError{Symbol: "ZZZ"}, http.StatusNotFound, model.NoDataMessage},
		{"malformed", &model.MalformedPointError{Index: 2, Field: "close", Reason: "null"}, http.StatusBadGateway, "malformed point 2"},
		{"transport", errors.New("dial tcp: i/o timeout"), http.StatusBadGateway, "i/o timeout"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := New(&stubRunner{err: tt.err}, nil, "", 0).Handler()
			for _, path := range []string{"/api/v1/stocks/ZZZ/analysis", "/api/v1/stocks/ZZZ/chart.png", "/stocks/ZZZ"} {
				rec := get(t, h, path)
				assert.Equal(t, tt.wantCode, rec.Code, path)
				assert.Contains(t, rec.Body.String(), tt.wantBody, path)
			}
		})
	}
}

func TestServer_Chart(t *testing.T) {
	rec := get(t, New(&stubRunner{n: 300}, nil, "", 0).Handler(), "/api/v1/stocks/HPG/chart.png")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "\x89PNG"))
}

func TestServer_Dashboard(t *testing.T) {
	runner := &stubRunner{n: 300, commentary: "Xu hướng <tăng>"}
	h := New(runner, nil, "VNM", 0).Handler()

	rec := get(t, h, "/")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/stocks/VNM", rec.Header().Get("Location"))

	rec = get(t, h, "/?symbol=+fpt")
	assert.Equal(t, "/stocks/FPT", rec.Header().Get("Location"))

	rec = get(t, h, "/stocks/hpg")
	require.Equal(t, http.StatusOK, rec.Code)
	page := rec.Body.String()
	assert.Contains(t, page, `value="HPG"`)
	assert.Contains(t, page, "Dữ liệu mới nhất (2024-03-08)")
	assert.Contains(t, page, "Xu hướng &lt;tăng&gt;")
	assert.Contains(t, page, `<table class="sessions">`)
	assert.Contains(t, page, `src="/api/v1/stocks/HPG/chart.png"`)
	assert.Equal(t, []bool{true}, runner.calls)
}

func TestServer_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	m.ObserveSignal("BUY")

	srv := httptest.NewServer(New(&stubRunner{n: 300}, reg, "", 0).Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `stockpulse_signals_total{signal="BUY"} 1`)

	rec := get(t, New(&stubRunner{n: 300}, nil, "", 0).Handler(), "/metrics")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_ListenAndServeStops(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- New(&stubRunner{n: 300}, nil, "", 0).ListenAndServe(ctx, "127.0.0.1:0") }()
	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
