package recorder

import "StockPulse/internal/model"

// NoopRecorder is used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) SaveBars(_ string, _ []model.PricePoint) error         { return nil }
func (n *NoopRecorder) LoadBars(_ string, _ int) ([]model.PricePoint, error) { return nil, nil }
func (n *NoopRecorder) RecordNotification(_ *NotificationEvent) error        { return nil }
func (n *NoopRecorder) Close() error                                         { return nil }
