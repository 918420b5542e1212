package analysis

import (
	"context"
	"time"

	"StockPulse/internal/collector"
	"StockPulse/internal/commentary"
	"StockPulse/internal/metrics"
	"StockPulse/internal/model"
)

// Report is one end-to-end analysis of a ticker. CommentaryErr is set
// instead of Commentary when the language model could not be reached.
type Report struct {
	*Analysis
	Summary       model.Summary
	Commentary    string
	CommentaryErr error
}

// Service wires loading, computation and commentary together.
type Service struct {
	Collector   *collector.Collector
	Commentator commentary.Commentator
	Metrics     *metrics.Metrics
	Params      Params
}

func NewService(c *collector.Collector, cm commentary.Commentator, m *metrics.Metrics) *Service {
	if cm == nil {
		cm = commentary.Disabled{}
	}
	return &Service{Collector: c, Commentator: cm, Metrics: m, Params: DefaultParams()}
}

// Run loads symbol, computes its indicators and, if asked, requests
// commentary. Loader and compute errors are returned; a commentary failure
// is only recorded on the report.
func (s *Service) Run(ctx context.Context, symbol string, withCommentary bool) (*Report, error) {
	series, err := s.Collector.Load(ctx, symbol)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	a, err := Compute(series, s.Params)
	if err != nil {
		return nil, err
	}
	s.Metrics.ObserveCompute(time.Since(start))

	summary, err := a.Latest()
	if err != nil {
		return nil, err
	}
	s.Metrics.ObserveSignal(summary.Signal.String())

	r := &Report{Analysis: a, Summary: summary}
	if withCommentary {
		r.Commentary, r.CommentaryErr = s.Commentator.Comment(ctx, summary)
		s.Metrics.ObserveCommentary(r.CommentaryErr)
		if r.CommentaryErr != nil {
			log.WithError(r.CommentaryErr).Warnf("commentary for %s", series.Symbol)
		}
	}
	return r, nil
}
