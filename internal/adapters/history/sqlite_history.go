// Package history persists consolidated verdicts for later review.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/diogo/llm-phishing-analyzer/internal/core"
)

// SQLiteHistory is a SQLite implementation of the HistoryRepository interface.
type SQLiteHistory struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSQLiteHistory creates a new SQLite-backed history store.
func NewSQLiteHistory(dbPath string, logger *zap.Logger) (*SQLiteHistory, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS scans (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			url TEXT NOT NULL,
			verdict TEXT NOT NULL,
			confidence REAL NOT NULL,
			description TEXT,
			timestamp TIMESTAMP NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	return &SQLiteHistory{db: db, logger: logger}, nil
}

// Save implements core.HistoryRepository.
func (h *SQLiteHistory) Save(ctx context.Context, record *core.ScanRecord) error {
	ts := record.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	res, err := h.db.ExecContext(ctx, `
		INSERT INTO scans (url, verdict, confidence, description, timestamp)
		VALUES (?, ?, ?, ?, ?)
	`, record.URL, record.Verdict, record.Confidence, record.Description, ts.Format(time.RFC3339))

	if err != nil {
		return fmt.Errorf("failed to save scan record: %w", err)
	}

	if id, err := res.LastInsertId(); err == nil {
		record.ID = id
	}
	return nil
}

// Recent implements core.HistoryRepository.
func (h *SQLiteHistory) Recent(ctx context.Context, limit int) ([]core.ScanRecord, error) {
	rows, err := h.db.QueryContext(ctx, `
		SELECT id, url, verdict, confidence, description, timestamp
		FROM scans
		ORDER BY timestamp DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query scan history: %w", err)
	}
	defer rows.Close()

	var records []core.ScanRecord
	for rows.Next() {
		var rec core.ScanRecord
		var ts string
		if err := rows.Scan(&rec.ID, &rec.URL, &rec.Verdict, &rec.Confidence, &rec.Description, &ts); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		if parsed, err := time.Parse(time.RFC3339, ts); err == nil {
			rec.Timestamp = parsed
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Stats implements core.HistoryRepository.
func (h *SQLiteHistory) Stats(ctx context.Context) (*core.HistoryStats, error) {
	stats := &core.HistoryStats{}

	err := h.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN verdict = ? THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN verdict = ? THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN verdict = ? THEN 1 ELSE 0 END), 0),
			COALESCE(AVG(confidence), 0)
		FROM scans
	`, string(core.VerdictPhishing), string(core.VerdictSuspicious), string(core.VerdictLegitimate)).
		Scan(&stats.Total, &stats.Phishing, &stats.Suspicious, &stats.Legitimate, &stats.AvgConfidence)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate scan history: %w", err)
	}

	if stats.Total > 0 {
		stats.DetectionRate = float64(stats.Phishing+stats.Suspicious) / float64(stats.Total) * 100
	}

	rows, err := h.db.QueryContext(ctx, `
		SELECT timestamp, verdict
		FROM scans
		ORDER BY timestamp DESC, id DESC
		LIMIT 7
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query scan timeline: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var ts, verdict string
		if err := rows.Scan(&ts, &verdict); err != nil {
			return nil, fmt.Errorf("failed to scan timeline row: %w", err)
		}
		date := ts
		if parsed, err := time.Parse(time.RFC3339, ts); err == nil {
			date = parsed.Format("2006-01-02")
		}
		stats.Timeline = append(stats.Timeline, core.TimelinePoint{Date: date, Verdict: verdict})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// The query selects the newest seven; the timeline itself reads oldest
	// to newest.
	for i, j := 0, len(stats.Timeline)-1; i < j; i, j = i+1, j-1 {
		stats.Timeline[i], stats.Timeline[j] = stats.Timeline[j], stats.Timeline[i]
	}
	return stats, nil
}

// Close closes the underlying database.
func (h *SQLiteHistory) Close() error {
	return h.db.Close()
}
