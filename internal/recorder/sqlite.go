package recorder

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"StockPulse/internal/model"
)

var log = logrus.WithField("component", "recorder")

// SQLiteRecorder persists raw bars and delivery logs to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL lets the dashboard read while the scheduler writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Infof("sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS price_bars (
			symbol     TEXT    NOT NULL,
			date       TEXT    NOT NULL,
			open       REAL    NOT NULL,
			high       REAL    NOT NULL,
			low        REAL    NOT NULL,
			close      REAL    NOT NULL,
			volume     REAL    NOT NULL,
			fetched_at INTEGER NOT NULL,
			PRIMARY KEY (symbol, date)
		)`,

		`CREATE TABLE IF NOT EXISTS notifications (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp INTEGER NOT NULL,
			symbol    TEXT,
			kind      TEXT,
			delivered INTEGER,
			error     TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_notifications_ts ON notifications(timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) SaveBars(symbol string, bars []model.PricePoint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	stmt, err := tx.Prepare(`INSERT INTO price_bars
		(symbol, date, open, high, low, close, volume, fetched_at)
		VALUES (?,?,?,?,?,?,?,?)
		ON CONFLICT(symbol, date) DO UPDATE SET
			open = excluded.open, high = excluded.high, low = excluded.low,
			close = excluded.close, volume = excluded.volume, fetched_at = excluded.fetched_at`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	now := time.Now().Unix()
	for _, b := range bars {
		if _, err := stmt.Exec(symbol, b.Date.Format(model.DateLayout), b.Open, b.High, b.Low, b.Close, b.Volume, now); err != nil {
			tx.Rollback()
			return fmt.Errorf("insert bar %s: %w", b.Date.Format(model.DateLayout), err)
		}
	}
	return tx.Commit()
}

func (r *SQLiteRecorder) LoadBars(symbol string, limit int) ([]model.PricePoint, error) {
	rows, err := r.db.Query(`SELECT date, open, high, low, close, volume FROM price_bars
		WHERE symbol = ? ORDER BY date DESC LIMIT ?`, symbol, limit)
	if err != nil {
		return nil, fmt.Errorf("query bars: %w", err)
	}
	defer rows.Close()

	var bars []model.PricePoint
	for rows.Next() {
		var (
			date string
			b    model.PricePoint
		)
		if err := rows.Scan(&date, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume); err != nil {
			return nil, fmt.Errorf("scan bar: %w", err)
		}
		if b.Date, err = time.Parse(model.DateLayout, date); err != nil {
			return nil, fmt.Errorf("parse bar date %q: %w", date, err)
		}
		bars = append(bars, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i, j := 0, len(bars)-1; i < j; i, j = i+1, j-1 {
		bars[i], bars[j] = bars[j], bars[i]
	}
	return bars, nil
}

func (r *SQLiteRecorder) RecordNotification(evt *NotificationEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ts := evt.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	_, err := r.db.Exec(`INSERT INTO notifications
		(timestamp, symbol, kind, delivered, error)
		VALUES (?,?,?,?,?)`,
		ts.Unix(), evt.Symbol, evt.Kind, evt.Delivered, evt.Error,
	)
	return err
}

func (r *SQLiteRecorder) Close() error {
	log.Info("closing sqlite recorder")
	return r.db.Close()
}
