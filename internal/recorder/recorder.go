package recorder

import (
	"time"

	"StockPulse/internal/model"
)

// NotificationEvent records one Telegram delivery attempt.
type NotificationEvent struct {
	Symbol    string
	Kind      string // "REPORT", "SIGNAL_ALERT" or "COMMAND"
	Delivered bool
	Error     string
	Timestamp time.Time
}

// Recorder caches raw price bars and logs deliveries. Computed indicators
// are never stored.
type Recorder interface {
	SaveBars(symbol string, bars []model.PricePoint) error
	// LoadBars returns up to limit of the most recent bars, ascending by date.
	LoadBars(symbol string, limit int) ([]model.PricePoint, error)
	RecordNotification(evt *NotificationEvent) error
	Close() error
}
