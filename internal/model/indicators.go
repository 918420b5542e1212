package model

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"time"
)

// NullFloat is an optional indicator value. An undefined value (Valid == false)
// means "no value yet", never zero.
type NullFloat struct {
	Float64 float64
	Valid   bool
}

// Some wraps a defined value.
func Some(v float64) NullFloat { return NullFloat{Float64: v, Valid: true} }

// Get returns the value and whether it is defined.
func (n NullFloat) Get() (float64, bool) { return n.Float64, n.Valid }

// Format renders the value with prec decimals, or "-" when undefined.
func (n NullFloat) Format(prec int) string {
	if !n.Valid {
		return "-"
	}
	return strconv.FormatFloat(n.Float64, 'f', prec, 64)
}

// Round returns the value rounded to places decimals, for display only.
func (n NullFloat) Round(places int) NullFloat {
	if !n.Valid {
		return n
	}
	pow := math.Pow(10, float64(places))
	return Some(math.Round(n.Float64*pow) / pow)
}

func (n NullFloat) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Float64)
}

func (n *NullFloat) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*n = NullFloat{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*n = Some(v)
	return nil
}

// IndicatorRow holds the derived values for one session, index-aligned with
// the PriceSeries it was computed from.
type IndicatorRow struct {
	EMA20    NullFloat `json:"ema20"`
	EMA50    NullFloat `json:"ema50"`
	EMA200   NullFloat `json:"ema200"`
	RSI14    NullFloat `json:"rsi14"`
	BBMiddle NullFloat `json:"bb_middle"`
	BBUpper  NullFloat `json:"bb_upper"`
	BBLower  NullFloat `json:"bb_lower"`
	Signal   Signal    `json:"signal"`
}

// Summary is the latest session's snapshot handed to commentary and reports.
type Summary struct {
	Symbol  string    `json:"symbol"`
	Date    time.Time `json:"date"`
	Close   float64   `json:"close"`
	RSI14   NullFloat `json:"rsi14"`
	EMA20   NullFloat `json:"ema20"`
	EMA50   NullFloat `json:"ema50"`
	EMA200  NullFloat `json:"ema200"`
	BBUpper NullFloat `json:"bb_upper"`
	BBLower NullFloat `json:"bb_lower"`
	Signal  Signal    `json:"signal"`

	High52w     float64 `json:"high_52w"`
	Low52w      float64 `json:"low_52w"`
	Position52w float64 `json:"position_52w"`
}
