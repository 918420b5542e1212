package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"StockPulse/internal/analysis"
)

var log = logrus.WithField("component", "server")

// DefaultSymbol is the ticker shown when none is requested.
const DefaultSymbol = "HPG"

// Runner produces a report for a ticker.
type Runner interface {
	Run(ctx context.Context, symbol string, withCommentary bool) (*analysis.Report, error)
}

// Server serves the JSON API, the chart images and the HTML dashboard.
type Server struct {
	Service       Runner
	Gatherer      prometheus.Gatherer
	DefaultSymbol string
	Timeout       time.Duration

	router chi.Router
}

// New builds the router. A nil gatherer disables /metrics.
func New(svc Runner, gatherer prometheus.Gatherer, defaultSymbol string, timeout time.Duration) *Server {
	if defaultSymbol == "" {
		defaultSymbol = DefaultSymbol
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	s := &Server{
		Service:       svc,
		Gatherer:      gatherer,
		DefaultSymbol: defaultSymbol,
		Timeout:       timeout,
	}
	s.setupRouter()
	return s
}

func (s *Server) setupRouter() {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(accessLog)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.Timeout))

	r.Get("/healthz", s.handleHealth)
	r.Get("/", s.handleIndex)
	r.Get("/stocks/{symbol}", s.handleDashboard)

	r.Route("/api/v1/stocks/{symbol}", func(r chi.Router) {
		r.Get("/analysis", s.handleAnalysis)
		r.Get("/chart.png", s.handleChart)
	})

	if s.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.Gatherer, promhttp.HandlerOpts{}))
	}
	s.router = r
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves on addr until ctx is cancelled, then shuts down.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      s.Timeout + 5*time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("http server listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	log.Info("stopping http server")
	return srv.Shutdown(shutdownCtx)
}

func accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		log.WithFields(logrus.Fields{
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     ww.Status(),
			"bytes":      ww.BytesWritten(),
			"duration":   time.Since(start).String(),
			"request_id": middleware.GetReqID(r.Context()),
		}).Debug("request")
	})
}
