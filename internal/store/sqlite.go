package store

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"StockForecast/internal/model"
)

// SQLiteStore persists snapshots and run history to a SQLite database.
type SQLiteStore struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteStore opens (or creates) the SQLite database and runs migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite store opened: %s", dbPath)
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS snapshots (
			cache_key  TEXT PRIMARY KEY,
			ticker     TEXT NOT NULL,
			fetched_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_snapshots_fetched ON snapshots(fetched_at)`,

		`CREATE TABLE IF NOT EXISTS raw_rows (
			cache_key TEXT NOT NULL,
			seq       INTEGER NOT NULL,
			date      TEXT,
			open      TEXT,
			high      TEXT,
			low       TEXT,
			close     TEXT,
			adj_close TEXT,
			volume    TEXT,
			PRIMARY KEY (cache_key, seq)
		)`,

		`CREATE TABLE IF NOT EXISTS forecast_runs (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id       TEXT NOT NULL,
			timestamp    INTEGER NOT NULL,
			ticker       TEXT NOT NULL,
			years        INTEGER,
			rows         INTEGER,
			removed      INTEGER,
			warnings     INTEGER,
			last_close   REAL,
			final_yhat   REAL,
			final_lower  REAL,
			final_upper  REAL,
			horizon_days INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_ts ON forecast_runs(timestamp)`,
	}

	for _, st := range stmts {
		if _, err := s.db.Exec(st); err != nil {
			return fmt.Errorf("exec %q: %w", st[:40], err)
		}
	}
	return nil
}

// SaveBars replaces any snapshot stored under the same key.
func (s *SQLiteStore) SaveBars(snap *Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM raw_rows WHERE cache_key = ?`, snap.Key); err != nil {
		return fmt.Errorf("clear rows: %w", err)
	}
	if _, err := tx.Exec(`INSERT OR REPLACE INTO snapshots (cache_key, ticker, fetched_at) VALUES (?,?,?)`,
		snap.Key, snap.Ticker, snap.FetchedAt.Unix()); err != nil {
		return fmt.Errorf("insert snapshot: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO raw_rows
		(cache_key, seq, date, open, high, low, close, adj_close, volume)
		VALUES (?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return fmt.Errorf("prepare rows: %w", err)
	}
	defer stmt.Close()

	for i, r := range snap.Rows {
		if _, err := stmt.Exec(snap.Key, i,
			encodeCell(r.Date), encodeCell(r.Open), encodeCell(r.High), encodeCell(r.Low),
			encodeCell(r.Close), encodeCell(r.AdjClose), encodeCell(r.Volume),
		); err != nil {
			return fmt.Errorf("insert row %d: %w", i, err)
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) LoadBars(key string) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := &Snapshot{Key: key}
	var fetched int64
	err := s.db.QueryRow(`SELECT ticker, fetched_at FROM snapshots WHERE cache_key = ?`, key).
		Scan(&snap.Ticker, &fetched)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query snapshot: %w", err)
	}
	snap.FetchedAt = time.Unix(fetched, 0)

	rows, err := s.db.Query(`SELECT date, open, high, low, close, adj_close, volume
		FROM raw_rows WHERE cache_key = ? ORDER BY seq`, key)
	if err != nil {
		return nil, fmt.Errorf("query rows: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var cells [7]sql.NullString
		if err := rows.Scan(&cells[0], &cells[1], &cells[2], &cells[3], &cells[4], &cells[5], &cells[6]); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		snap.Rows = append(snap.Rows, model.RawRow{
			Date:     decodeCell(cells[0]),
			Open:     decodeCell(cells[1]),
			High:     decodeCell(cells[2]),
			Low:      decodeCell(cells[3]),
			Close:    decodeCell(cells[4]),
			AdjClose: decodeCell(cells[5]),
			Volume:   decodeCell(cells[6]),
		})
	}
	return snap, rows.Err()
}

func (s *SQLiteStore) PurgeBefore(t time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := t.Unix()
	if _, err := s.db.Exec(`DELETE FROM raw_rows WHERE cache_key IN
		(SELECT cache_key FROM snapshots WHERE fetched_at < ?)`, cutoff); err != nil {
		return 0, fmt.Errorf("purge rows: %w", err)
	}
	res, err := s.db.Exec(`DELETE FROM snapshots WHERE fetched_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge snapshots: %w", err)
	}
	return res.RowsAffected()
}

func (s *SQLiteStore) DeleteBars(ticker string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.Exec(`DELETE FROM raw_rows WHERE cache_key IN
		(SELECT cache_key FROM snapshots WHERE ticker = ?)`, ticker); err != nil {
		return 0, fmt.Errorf("delete rows: %w", err)
	}
	res, err := s.db.Exec(`DELETE FROM snapshots WHERE ticker = ?`, ticker)
	if err != nil {
		return 0, fmt.Errorf("delete snapshots: %w", err)
	}
	return res.RowsAffected()
}

func (s *SQLiteStore) RecordRun(rec *RunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`INSERT INTO forecast_runs
		(run_id, timestamp, ticker, years, rows, removed, warnings,
		 last_close, final_yhat, final_lower, final_upper, horizon_days)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`,
		rec.RunID, rec.FinishedAt.Unix(), rec.Ticker, rec.Years, rec.Rows, rec.Removed, rec.Warnings,
		rec.LastClose, rec.FinalYHat, rec.FinalLower, rec.FinalUpper, rec.HorizonDays,
	)
	return err
}

func (s *SQLiteStore) Close() error {
	log.Println("[INFO] closing sqlite store")
	return s.db.Close()
}

// encodeCell stores a raw cell as text so unparsed values survive a round-trip.
func encodeCell(v interface{}) sql.NullString {
	switch x := v.(type) {
	case nil:
		return sql.NullString{}
	case string:
		return sql.NullString{String: x, Valid: true}
	case float64:
		return sql.NullString{String: strconv.FormatFloat(x, 'g', -1, 64), Valid: true}
	case float32:
		return sql.NullString{String: strconv.FormatFloat(float64(x), 'g', -1, 32), Valid: true}
	case time.Time:
		return sql.NullString{String: x.Format("2006-01-02"), Valid: true}
	default:
		return sql.NullString{String: fmt.Sprint(x), Valid: true}
	}
}

func decodeCell(c sql.NullString) interface{} {
	if !c.Valid {
		return nil
	}
	return c.String
}
