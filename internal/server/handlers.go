package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"StockPulse/internal/analysis"
	"StockPulse/internal/collector"
	"StockPulse/internal/model"
	"StockPulse/internal/report"
)

type analysisResponse struct {
	Series          *model.PriceSeries   `json:"series"`
	Rows            []model.IndicatorRow `json:"rows"`
	Summary         model.Summary        `json:"summary"`
	Warnings        []string             `json:"warnings"`
	Commentary      string               `json:"commentary,omitempty"`
	CommentaryError string               `json:"commentary_error,omitempty"`
}

func writeJSON(w http.ResponseWriter, code int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.WithError(err).Warn("encode response")
	}
}

// errorStatus maps loader errors to HTTP status codes and user messages.
func errorStatus(err error) (int, string) {
	var nd *model.NoDataError
	if errors.As(err, &nd) {
		return http.StatusNotFound, model.NoDataMessage
	}
	return http.StatusBadGateway, err.Error()
}

func writeError(w http.ResponseWriter, err error) {
	code, msg := errorStatus(err)
	writeJSON(w, code, map[string]string{"error": msg})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

func (s *Server) symbolParam(r *http.Request) (string, error) {
	return collector.NormalizeSymbol(chi.URLParam(r, "symbol"))
}

func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	symbol, err := s.symbolParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	withCommentary := r.URL.Query().Get("commentary") == "1"

	rep, err := s.Service.Run(r.Context(), symbol, withCommentary)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := analysisResponse{
		Series:     rep.Series,
		Rows:       rep.Rows,
		Summary:    rep.Summary,
		Warnings:   make([]string, 0, len(rep.Warnings)),
		Commentary: rep.Commentary,
	}
	for _, warn := range rep.Warnings {
		resp.Warnings = append(resp.Warnings, warn.Error())
	}
	if rep.CommentaryErr != nil {
		resp.CommentaryError = rep.CommentaryErr.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	symbol, err := s.symbolParam(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	rep, err := s.Service.Run(r.Context(), symbol, false)
	if err != nil {
		code, msg := errorStatus(err)
		http.Error(w, msg, code)
		return
	}

	var buf bytes.Buffer
	if err := report.Chart(rep.Analysis).RenderPNG(&buf); err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(buf.Bytes())
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	symbol := r.URL.Query().Get("symbol")
	if symbol == "" {
		symbol = s.DefaultSymbol
	}
	sym, err := collector.NormalizeSymbol(symbol)
	if err != nil {
		sym = s.DefaultSymbol
	}
	http.Redirect(w, r, "/stocks/"+url.PathEscape(sym), http.StatusFound)
}

type dashboardData struct {
	Symbol          string
	Error           string
	Latest          model.Summary
	Commentary      string
	CommentaryError string
	Warnings        []string
	Crossover       string
	Table           template.HTML
	ChartURL        string
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	symbol, err := s.symbolParam(r)
	if err != nil {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	data := dashboardData{Symbol: symbol}

	withCommentary := r.URL.Query().Get("commentary") != "0"
	rep, err := s.Service.Run(r.Context(), symbol, withCommentary)
	code := http.StatusOK
	if err != nil {
		code, data.Error = errorStatus(err)
	} else {
		s.fillDashboard(&data, rep)
	}

	var buf bytes.Buffer
	if err := dashboardTemplate.Execute(&buf, data); err != nil {
		log.WithError(err).Error("render dashboard")
		http.Error(w, "render dashboard", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(code)
	w.Write(buf.Bytes())
}

func (s *Server) fillDashboard(data *dashboardData, rep *analysis.Report) {
	data.Latest = rep.Summary
	data.Commentary = rep.Commentary
	if rep.CommentaryErr != nil {
		data.CommentaryError = rep.CommentaryErr.Error()
	}
	for _, warn := range rep.Warnings {
		data.Warnings = append(data.Warnings, warn.Error())
	}
	if ago, sig := rep.LastCrossover(); ago >= 0 {
		data.Crossover = sig.Label() + ", " + strconv.Itoa(ago) + " phiên trước"
	}
	// go-pretty escapes cell text itself
	data.Table = template.HTML(report.RenderHTML(rep.Analysis, report.DefaultRows))
	data.ChartURL = "/api/v1/stocks/" + url.PathEscape(rep.Summary.Symbol) + "/chart.png"
}
