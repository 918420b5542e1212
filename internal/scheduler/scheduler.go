package scheduler

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"StockPulse/internal/analysis"
	"StockPulse/internal/collector"
	"StockPulse/internal/metrics"
	"StockPulse/internal/model"
	"StockPulse/internal/notifier"
	"StockPulse/internal/recorder"
	"StockPulse/internal/report"
)

var log = logrus.WithField("component", "scheduler")

const (
	KindReport      = "REPORT"
	KindSignalAlert = "SIGNAL_ALERT"
	KindCommand     = "COMMAND"

	sendRetries = 3
)

// Runner produces a report for a ticker.
type Runner interface {
	Run(ctx context.Context, symbol string, withCommentary bool) (*analysis.Report, error)
}

// Messenger delivers messages and chart images to the chat.
type Messenger interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
	SendPhotoWithRetry(ctx context.Context, caption string, png []byte, maxRetries int) error
}

// Scheduler manages all cron tasks.
type Scheduler struct {
	Cron     *cron.Cron
	Service  Runner
	Notifier Messenger
	Recorder recorder.Recorder
	Metrics  *metrics.Metrics
	Symbol   string
	Ctx      context.Context
}

// NewScheduler creates a new Scheduler. Cron specs carry a seconds field and
// are evaluated in loc.
func NewScheduler(ctx context.Context, svc Runner, tn Messenger, rec recorder.Recorder, m *metrics.Metrics, symbol string, loc *time.Location) *Scheduler {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	if loc == nil {
		loc = time.Local
	}
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds(), cron.WithLocation(loc)),
		Service:  svc,
		Notifier: tn,
		Recorder: rec,
		Metrics:  m,
		Symbol:   symbol,
		Ctx:      ctx,
	}
}

// RegisterAll registers the daily report and the signal check.
func (s *Scheduler) RegisterAll(reportCron, signalCron string) error {
	if _, err := s.Cron.AddFunc(reportCron, s.reportTask); err != nil {
		return fmt.Errorf("register report task: %w", err)
	}
	if _, err := s.Cron.AddFunc(signalCron, s.signalTask); err != nil {
		return fmt.Errorf("register signal task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Infof("scheduler started for %s", s.Symbol)
}

// Stop stops the cron scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Info("scheduler stopped")
}

// RunNow sends the daily report immediately (for manual trigger / --run-on-start).
func (s *Scheduler) RunNow() {
	s.reportTask()
}

func (s *Scheduler) reportTask() {
	log.Infof("running report task for %s", s.Symbol)
	s.sendReport(s.Ctx, s.Symbol)
}

func (s *Scheduler) signalTask() {
	log.Infof("running signal check for %s", s.Symbol)
	r, err := s.Service.Run(s.Ctx, s.Symbol, false)
	if err != nil {
		log.WithError(err).Errorf("signal check for %s", s.Symbol)
		return
	}
	if r.Summary.Signal == model.Hold {
		log.Infof("%s: no crossover on %s", s.Symbol, r.Summary.Date.Format(model.DateLayout))
		return
	}
	s.deliver(s.Ctx, s.Symbol, KindSignalAlert, notifier.FormatSignalAlert(r))
}

// sendReport runs a full analysis and delivers the chart and the report.
func (s *Scheduler) sendReport(ctx context.Context, symbol string) {
	r, err := s.Service.Run(ctx, symbol, true)
	if err != nil {
		log.WithError(err).Errorf("report for %s", symbol)
		s.deliver(ctx, symbol, KindReport, notifier.FormatError(symbol, err))
		return
	}

	var png bytes.Buffer
	if err := report.Chart(r.Analysis).RenderPNG(&png); err != nil {
		log.WithError(err).Warnf("render chart for %s", symbol)
	} else if err := s.Notifier.SendPhotoWithRetry(ctx, notifier.FormatChartCaption(r.Summary), png.Bytes(), sendRetries); err != nil {
		log.WithError(err).Warnf("send chart for %s", symbol)
	}
	s.deliver(ctx, r.Summary.Symbol, KindReport, notifier.FormatReport(r))
}

// HandleCommand processes a user command. Report and signal answers are
// delivered and logged here; other commands return their reply text.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return notifier.FormatHelp(s.Symbol)
	}
	// "/report@StockPulseBot HPG" addresses the bot in group chats
	name, _, _ := strings.Cut(strings.ToLower(fields[0]), "@")
	symbol := s.Symbol
	if len(fields) > 1 {
		if sym, err := collector.NormalizeSymbol(fields[1]); err == nil {
			symbol = sym
		}
	}

	switch name {
	case "/report":
		s.sendReport(ctx, symbol)
		return ""
	case "/signal":
		s.deliver(ctx, symbol, KindCommand, s.signalReply(ctx, symbol))
		return ""
	default:
		return notifier.FormatHelp(s.Symbol)
	}
}

func (s *Scheduler) signalReply(ctx context.Context, symbol string) string {
	r, err := s.Service.Run(ctx, symbol, false)
	if err != nil {
		return notifier.FormatError(symbol, err)
	}
	if r.Summary.Signal != model.Hold {
		return notifier.FormatSignalAlert(r)
	}
	msg := fmt.Sprintf("⚪ <b>%s</b>: %s | không có giao cắt EMA20/EMA50 phiên %s",
		r.Summary.Symbol, r.Summary.Signal.Label(), r.Summary.Date.Format(model.DateLayout))
	if ago, sig := r.LastCrossover(); ago >= 0 {
		msg += fmt.Sprintf("\nGiao cắt gần nhất: %s, %d phiên trước", sig.Label(), ago)
	}
	return msg
}

func (s *Scheduler) deliver(ctx context.Context, symbol, kind, text string) {
	err := s.Notifier.SendWithRetry(ctx, text, sendRetries)
	if err != nil {
		log.WithError(err).Errorf("send %s for %s", kind, symbol)
	}
	s.record(symbol, kind, err)
}

func (s *Scheduler) record(symbol, kind string, sendErr error) {
	s.Metrics.ObserveNotification(kind, sendErr)
	evt := &recorder.NotificationEvent{
		Symbol:    symbol,
		Kind:      kind,
		Delivered: sendErr == nil,
		Timestamp: time.Now(),
	}
	if sendErr != nil {
		evt.Error = sendErr.Error()
	}
	if err := s.Recorder.RecordNotification(evt); err != nil {
		log.WithError(err).Error("record notification")
	}
}
