package recorder

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockPulse/internal/model"
)

func bar(d int, c float64) model.PricePoint {
	return model.PricePoint{
		Date:   time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, d),
		Open:   c - 100,
		High:   c + 200,
		Low:    c - 300,
		Close:  c,
		Volume: 1_250_000,
	}
}

func newTestRecorder(t *testing.T) *SQLiteRecorder {
	t.Helper()
	r, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "stockpulse.db"))
	require.NoError(t, err)
	t.Cleanup(func() { r.Close() })
	return r
}

func TestSQLiteRecorder_BarsRoundTrip(t *testing.T) {
	r := newTestRecorder(t)

	require.NoError(t, r.SaveBars("HPG", []model.PricePoint{bar(0, 27000), bar(1, 27300), bar(2, 27150)}))
	require.NoError(t, r.SaveBars("VNM", []model.PricePoint{bar(0, 68000)}))

	bars, err := r.LoadBars("HPG", 10)
	require.NoError(t, err)
	require.Len(t, bars, 3)
	assert.Equal(t, bar(0, 27000), bars[0])
	assert.Equal(t, bar(2, 27150), bars[2])

	// limit keeps the most recent sessions, still ascending
	bars, err = r.LoadBars("HPG", 2)
	require.NoError(t, err)
	require.Len(t, bars, 2)
	assert.Equal(t, 27300.0, bars[0].Close)
	assert.Equal(t, 27150.0, bars[1].Close)
}

func TestSQLiteRecorder_SaveBarsUpserts(t *testing.T) {
	r := newTestRecorder(t)

	require.NoError(t, r.SaveBars("FPT", []model.PricePoint{bar(0, 95000), bar(1, 96000)}))
	require.NoError(t, r.SaveBars("FPT", []model.PricePoint{bar(1, 96500), bar(2, 97000)}))

	bars, err := r.LoadBars("FPT", 300)
	require.NoError(t, err)
	require.Len(t, bars, 3)
	assert.Equal(t, 96500.0, bars[1].Close)
}

func TestSQLiteRecorder_UnknownSymbol(t *testing.T) {
	r := newTestRecorder(t)
	bars, err := r.LoadBars("XYZ", 300)
	require.NoError(t, err)
	assert.Empty(t, bars)
}

func TestSQLiteRecorder_RecordNotification(t *testing.T) {
	r := newTestRecorder(t)
	require.NoError(t, r.RecordNotification(&NotificationEvent{Symbol: "HPG", Kind: "REPORT", Delivered: true}))
	require.NoError(t, r.RecordNotification(&NotificationEvent{Symbol: "HPG", Kind: "SIGNAL_ALERT", Error: "status 502"}))

	var count int
	require.NoError(t, r.db.QueryRow(`SELECT COUNT(*) FROM notifications WHERE symbol = ?`, "HPG").Scan(&count))
	assert.Equal(t, 2, count)
}

func TestSQLiteRecorder_CreatesDataDir(t *testing.T) {
	r, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "data", "nested", "stockpulse.db"))
	require.NoError(t, err)
	defer r.Close()

	require.NoError(t, r.SaveBars("HPG", []model.PricePoint{bar(0, 27000)}))
}
