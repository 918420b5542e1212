package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	FetchTotal         *prometheus.CounterVec // labels: source, result
	FetchDuration      prometheus.Histogram
	ComputeDuration    prometheus.Histogram
	CommentaryTotal    *prometheus.CounterVec // labels: result
	NotificationsTotal *prometheus.CounterVec // labels: kind, result
	SignalsTotal       *prometheus.CounterVec // labels: signal
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		FetchTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stockpulse_fetch_total",
			Help: "Price history loads by source and result",
		}, []string{"source", "result"}),
		FetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "stockpulse_fetch_duration_seconds",
			Help:    "Time spent fetching price history from the provider",
			Buckets: prometheus.DefBuckets,
		}),
		ComputeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "stockpulse_compute_duration_seconds",
			Help:    "Time spent computing indicators and signals",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		}),
		CommentaryTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stockpulse_commentary_total",
			Help: "Language-model commentary requests by result",
		}, []string{"result"}),
		NotificationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stockpulse_notifications_total",
			Help: "Telegram deliveries by kind and result",
		}, []string{"kind", "result"}),
		SignalsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stockpulse_signals_total",
			Help: "Latest-session signal of each analysis",
		}, []string{"signal"}),
	}

	reg.MustRegister(
		m.FetchTotal,
		m.FetchDuration,
		m.ComputeDuration,
		m.CommentaryTotal,
		m.NotificationsTotal,
		m.SignalsTotal,
	)
	return m
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// ObserveFetch records one provider load.
func (m *Metrics) ObserveFetch(source string, d time.Duration, err error) {
	if m == nil {
		return
	}
	m.FetchTotal.WithLabelValues(source, result(err)).Inc()
	m.FetchDuration.Observe(d.Seconds())
}

// ObserveCompute records one indicator computation.
func (m *Metrics) ObserveCompute(d time.Duration) {
	if m == nil {
		return
	}
	m.ComputeDuration.Observe(d.Seconds())
}

// ObserveCommentary records one commentary attempt.
func (m *Metrics) ObserveCommentary(err error) {
	if m == nil {
		return
	}
	m.CommentaryTotal.WithLabelValues(result(err)).Inc()
}

// ObserveNotification records one Telegram delivery.
func (m *Metrics) ObserveNotification(kind string, err error) {
	if m == nil {
		return
	}
	m.NotificationsTotal.WithLabelValues(kind, result(err)).Inc()
}

// ObserveSignal counts the latest-session signal of an analysis.
func (m *Metrics) ObserveSignal(signal string) {
	if m == nil {
		return
	}
	m.SignalsTotal.WithLabelValues(signal).Inc()
}
