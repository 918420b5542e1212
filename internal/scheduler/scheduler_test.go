package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockPulse/internal/analysis"
	"StockPulse/internal/collector"
	"StockPulse/internal/metrics"
	"StockPulse/internal/model"
	"StockPulse/internal/recorder"
)

type fakeMessenger struct {
	mu       sync.Mutex
	texts    []string
	captions []string
	photos   [][]byte
	err      error
}

func (f *fakeMessenger) SendWithRetry(_ context.Context, text string, _ int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.texts = append(f.texts, text)
	return f.err
}

func (f *fakeMessenger) SendPhotoWithRetry(_ context.Context, caption string, png []byte, _ int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.captions = append(f.captions, caption)
	f.photos = append(f.photos, png)
	return f.err
}

type memRecorder struct {
	recorder.NoopRecorder
	events []*recorder.NotificationEvent
}

func (m *memRecorder) RecordNotification(evt *recorder.NotificationEvent) error {
	m.events = append(m.events, evt)
	return nil
}

// stubRunner computes a real analysis and forces the latest signal.
type stubRunner struct {
	signal  model.Signal
	err     error
	symbols []string
}

func (s *stubRunner) Run(_ context.Context, symbol string, withCommentary bool) (*analysis.Report, error) {
	s.symbols = append(s.symbols, symbol)
	if s.err != nil {
		return nil, s.err
	}
	end := time.Date(2024, 3, 8, 0, 0, 0, 0, time.UTC)
	a, err := analysis.Compute(&model.PriceSeries{Symbol: symbol, Points: collector.GenerateMockBars(27000, 300, end)}, analysis.DefaultParams())
	if err != nil {
		return nil, err
	}
	sum, err := a.Latest()
	if err != nil {
		return nil, err
	}
	sum.Signal = s.signal
	r := &analysis.Report{Analysis: a, Summary: sum}
	if withCommentary {
		r.Commentary = "Nhận định thử nghiệm"
	}
	return r, nil
}

func newTestScheduler(runner Runner) (*Scheduler, *fakeMessenger, *memRecorder, *metrics.Metrics) {
	msg := &fakeMessenger{}
	rec := &memRecorder{}
	m := metrics.New(prometheus.NewRegistry())
	loc, _ := time.LoadLocation("Asia/Ho_Chi_Minh")
	return NewScheduler(context.Background(), runner, msg, rec, m, "HPG", loc), msg, rec, m
}

func TestScheduler_RegisterAll(t *testing.T) {
	s, _, _, _ := newTestScheduler(&stubRunner{})
	require.NoError(t, s.RegisterAll("0 30 15 * * 1-5", "0 0 9 * * 1-5"))
	assert.Len(t, s.Cron.Entries(), 2)

	s, _, _, _ = newTestScheduler(&stubRunner{})
	assert.Error(t, s.RegisterAll("not a cron", "0 0 9 * * 1-5"))
}

func TestScheduler_RunNowSendsChartAndReport(t *testing.T) {
	s, msg, rec, m := newTestScheduler(&stubRunner{signal: model.Hold})
	s.RunNow()

	require.Len(t, msg.photos, 1)
	assert.Equal(t, []byte("\x89PNG"), msg.photos[0][:4])
	assert.Contains(t, msg.captions[0], "HPG")
	require.Len(t, msg.texts, 1)
	assert.Contains(t, msg.texts[0], "Nhận định thử nghiệm")

	require.Len(t, rec.events, 1)
	assert.Equal(t, KindReport, rec.events[0].Kind)
	assert.True(t, rec.events[0].Delivered)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.NotificationsTotal.WithLabelValues(KindReport, "ok")))
}

func TestScheduler_ReportFailureIsNotified(t *testing.T) {
	s, msg, rec, _ := newTestScheduler(&stubRunner{err: &model.NoDataError{Symbol: "HPG"}})
	s.RunNow()

	assert.Empty(t, msg.photos)
	require.Len(t, msg.texts, 1)
	assert.Contains(t, msg.texts[0], model.NoDataMessage)
	require.Len(t, rec.events, 1)
}

func TestScheduler_SignalTask(t *testing.T) {
	s, msg, rec, _ := newTestScheduler(&stubRunner{signal: model.Hold})
	s.signalTask()
	assert.Empty(t, msg.texts, "hold sends nothing")
	assert.Empty(t, rec.events)

	s, msg, rec, _ = newTestScheduler(&stubRunner{signal: model.Buy})
	s.signalTask()
	require.Len(t, msg.texts, 1)
	assert.Contains(t, msg.texts[0], "HPG: MUA")
	require.Len(t, rec.events, 1)
	assert.Equal(t, KindSignalAlert, rec.events[0].Kind)
}

func TestScheduler_DeliveryFailureIsRecorded(t *testing.T) {
	s, msg, rec, m := newTestScheduler(&stubRunner{signal: model.Sell})
	msg.err = errors.New("telegram delivery failed after 4 attempts")
	s.signalTask()

	require.Len(t, rec.events, 1)
	assert.False(t, rec.events[0].Delivered)
	assert.Contains(t, rec.events[0].Error, "4 attempts")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.NotificationsTotal.WithLabelValues(KindSignalAlert, "error")))
}

func TestScheduler_HandleCommand(t *testing.T) {
	runner := &stubRunner{signal: model.Sell}
	s, msg, rec, _ := newTestScheduler(runner)
	ctx := context.Background()

	assert.Equal(t, "", s.HandleCommand(ctx, "/report vnm"))
	assert.Equal(t, []string{"VNM"}, runner.symbols)
	require.Len(t, msg.texts, 1)
	assert.Contains(t, msg.texts[0], "<b>VNM</b>")

	assert.Equal(t, "", s.HandleCommand(ctx, "/signal@StockPulseBot"))
	assert.Equal(t, "HPG", runner.symbols[1])
	require.Len(t, msg.texts, 2)
	assert.Contains(t, msg.texts[1], "HPG: BÁN")

	runner.signal = model.Hold
	assert.Equal(t, "", s.HandleCommand(ctx, "/signal FPT"))
	require.Len(t, msg.texts, 3)
	assert.Contains(t, msg.texts[2], "không có giao cắt")

	require.Len(t, rec.events, 3)
	assert.Equal(t, KindCommand, rec.events[1].Kind)
	assert.Equal(t, "FPT", rec.events[2].Symbol)

	assert.Contains(t, s.HandleCommand(ctx, "/help"), "/report")
	assert.Contains(t, s.HandleCommand(ctx, "xin chào"), "/signal")
	assert.Contains(t, s.HandleCommand(ctx, ""), "/help")
}

func TestScheduler_HandleCommandError(t *testing.T) {
	s, msg, _, _ := newTestScheduler(&stubRunner{err: &model.NoDataError{Symbol: "ZZZ"}})
	assert.Equal(t, "", s.HandleCommand(context.Background(), "/signal zzz"))
	require.Len(t, msg.texts, 1)
	assert.Contains(t, msg.texts[0], model.NoDataMessage)
}

func TestScheduler_SignalCommandDeliveryFailureIsRecorded(t *testing.T) {
	s, msg, rec, m := newTestScheduler(&stubRunner{signal: model.Buy})
	msg.err = errors.New("telegram delivery failed after 4 attempts")
	s.HandleCommand(context.Background(), "/signal")

	require.Len(t, rec.events, 1)
	assert.Equal(t, KindCommand, rec.events[0].Kind)
	assert.False(t, rec.events[0].Delivered)
	assert.Equal(t, 0.0, testutil.ToFloat64(m.NotificationsTotal.WithLabelValues(KindCommand, "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.NotificationsTotal.WithLabelValues(KindCommand, "error")))
}
