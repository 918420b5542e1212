package model

import (
	"math"
	"time"
)

// DateLayout is the calendar-date format used by providers and reports.
const DateLayout = "2006-01-02"

// PricePoint is one trading session of a ticker.
type PricePoint struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// PriceSeries holds the daily sessions of one ticker, ascending by date.
type PriceSeries struct {
	Symbol    string       `json:"symbol"`
	Source    string       `json:"source"`
	Points    []PricePoint `json:"points"`
	FetchedAt time.Time    `json:"fetched_at"`
}

// Len returns the number of sessions.
func (s *PriceSeries) Len() int { return len(s.Points) }

// Closes extracts the close column.
func (s *PriceSeries) Closes() []float64 {
	closes := make([]float64, len(s.Points))
	for i, p := range s.Points {
		closes[i] = p.Close
	}
	return closes
}

// Last returns the most recent session. ok is false for an empty series.
func (s *PriceSeries) Last() (p PricePoint, ok bool) {
	if len(s.Points) == 0 {
		return PricePoint{}, false
	}
	return s.Points[len(s.Points)-1], true
}

// Validate checks every point and the date ordering. It stops at the first
// offending point: skipping one would shift every fixed-period window.
func (s *PriceSeries) Validate() error {
	for i, p := range s.Points {
		if err := p.validate(i); err != nil {
			return err
		}
		if i == 0 {
			continue
		}
		prev := s.Points[i-1].Date
		switch {
		case p.Date.Equal(prev):
			return &MalformedPointError{Index: i, Date: p.Date.Format(DateLayout), Field: "date", Reason: "duplicate date"}
		case p.Date.Before(prev):
			return &MalformedPointError{Index: i, Date: p.Date.Format(DateLayout), Field: "date", Reason: "dates not ascending"}
		}
	}
	return nil
}

func (p PricePoint) validate(index int) error {
	date := p.Date.Format(DateLayout)
	if p.Date.IsZero() {
		return &MalformedPointError{Index: index, Field: "date", Reason: "missing"}
	}
	prices := []struct {
		field string
		value float64
	}{
		{"open", p.Open},
		{"high", p.High},
		{"low", p.Low},
		{"close", p.Close},
	}
	for _, f := range prices {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			return &MalformedPointError{Index: index, Date: date, Field: f.field, Reason: "not a finite number"}
		}
		if f.value <= 0 {
			return &MalformedPointError{Index: index, Date: date, Field: f.field, Reason: "must be positive"}
		}
	}
	if math.IsNaN(p.Volume) || math.IsInf(p.Volume, 0) || p.Volume < 0 {
		return &MalformedPointError{Index: index, Date: date, Field: "volume", Reason: "must be a non-negative number"}
	}
	return nil
}
