package main

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	log "github.com/sirupsen/logrus"

	"StockPulse/internal/analysis"
	"StockPulse/internal/collector"
	"StockPulse/internal/commentary"
	"StockPulse/internal/config"
	"StockPulse/internal/metrics"
	"StockPulse/internal/recorder"
)

// app holds the components shared by every command.
type app struct {
	cfg      *config.Config
	registry *prometheus.Registry
	metrics  *metrics.Metrics
	recorder recorder.Recorder
	service  *analysis.Service
}

func newFetcher(cfg *config.Config) (collector.Fetcher, error) {
	p := cfg.Provider
	switch p.Name {
	case config.ProviderVNDirect:
		return collector.NewVNDirectFetcher(p.BaseURL, cfg.Proxy, p.Timeout, p.MaxRetries), nil
	case config.ProviderYahoo:
		return collector.NewYahooFetcher(p.BaseURL, cfg.Proxy, p.Timeout, p.MaxRetries), nil
	case config.ProviderMock:
		return &collector.MockFetcher{Price: 27000}, nil
	default:
		return nil, fmt.Errorf("unknown provider %q", p.Name)
	}
}

func newApp(cfg *config.Config) (*app, error) {
	fetcher, err := newFetcher(cfg)
	if err != nil {
		return nil, err
	}
	log.Infof("data source: %s", fetcher.Name())

	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.WithError(err).Warn("init sqlite recorder failed, using noop")
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	cm := commentary.New(commentary.Config{
		APIKey:  cfg.Commentary.APIKey,
		BaseURL: cfg.Commentary.BaseURL,
		Model:   cfg.Commentary.Model,
		Proxy:   cfg.Proxy,
		Timeout: cfg.Commentary.Timeout,
	})

	col := collector.NewCollector(fetcher, rec, m, cfg.Provider.Size)
	return &app{
		cfg:      cfg,
		registry: reg,
		metrics:  m,
		recorder: rec,
		service:  analysis.NewService(col, cm, m),
	}, nil
}

func (a *app) Close() {
	if err := a.recorder.Close(); err != nil {
		log.WithError(err).Warn("close recorder")
	}
}
