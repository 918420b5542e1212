package model

import "fmt"

// NoDataMessage is the user-facing text for an unknown ticker.
const NoDataMessage = "Không tìm thấy dữ liệu cho mã cổ phiếu này."

// NoDataError means the provider returned no sessions for the ticker.
// Status is the provider's HTTP status when it answered with a non-success
// code, zero otherwise.
type NoDataError struct {
	Symbol string
	Reason string
	Status int
}

func (e *NoDataError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("no data for ticker %s", e.Symbol)
	}
	return fmt.Sprintf("no data for ticker %s: %s", e.Symbol, e.Reason)
}

// MalformedPointError marks a session with a missing or non-numeric field.
// Index is -1 when the position is unknown.
type MalformedPointError struct {
	Index  int
	Date   string
	Field  string
	Reason string
}

func (e *MalformedPointError) Error() string {
	where := fmt.Sprintf("point %d", e.Index)
	if e.Date != "" {
		where += " (" + e.Date + ")"
	}
	if e.Field != "" {
		return fmt.Sprintf("malformed %s field %q: %s", where, e.Field, e.Reason)
	}
	return fmt.Sprintf("malformed %s: %s", where, e.Reason)
}

// InsufficientHistoryError is a soft warning: the indicator's column is left
// undefined because the series is shorter than its window.
type InsufficientHistoryError struct {
	Indicator string
	Period    int
	Have      int
}

func (e *InsufficientHistoryError) Error() string {
	return fmt.Sprintf("%s needs %d sessions, have %d", e.Indicator, e.Period, e.Have)
}

// CommentaryUnavailableError wraps any failure of the language-model call.
type CommentaryUnavailableError struct {
	Err error
}

func (e *CommentaryUnavailableError) Error() string {
	return fmt.Sprintf("commentary unavailable: %v", e.Err)
}

func (e *CommentaryUnavailableError) Unwrap() error { return e.Err }
