// Package store archives analysis runs and their delivery results in
// a local SQLite database.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Run is one archived analysis run.
type Run struct {
	ID        string
	StockCode string
	StockName string
	Strategy  string
	Price     string
	JSONPath  string
	CreatedAt time.Time
}

// Delivery is one archived service delivery outcome.
type Delivery struct {
	RunID     string
	Service   string
	OK        bool
	Message   string
	URL       string
	CreatedAt time.Time
}

// Archive wraps the SQLite database.
type Archive struct {
	mu sync.RWMutex
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	stock_code TEXT NOT NULL,
	stock_name TEXT NOT NULL,
	strategy TEXT NOT NULL,
	price TEXT,
	json_path TEXT,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);
CREATE TABLE IF NOT EXISTS deliveries (
	run_id TEXT NOT NULL REFERENCES runs(id),
	service TEXT NOT NULL,
	ok INTEGER NOT NULL,
	message TEXT,
	url TEXT,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_runs_code ON runs(stock_code);
CREATE INDEX IF NOT EXISTS idx_deliveries_run ON deliveries(run_id);
`

// Open opens or creates the archive at path.
func Open(path string) (*Archive, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA busy_timeout = 5000",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("%s: %w", p, err)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Archive{db: db}, nil
}

// Close closes the database.
func (a *Archive) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.db == nil {
		return nil
	}
	err := a.db.Close()
	a.db = nil
	return err
}

// RecordRun inserts one run.
func (a *Archive) RecordRun(run Run) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	_, err := a.db.Exec(
		`INSERT INTO runs (id, stock_code, stock_name, strategy, price, json_path)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID, run.StockCode, run.StockName, run.Strategy, run.Price, run.JSONPath,
	)
	if err != nil {
		return fmt.Errorf("record run %s: %w", run.ID, err)
	}
	return nil
}

// RecordDeliveries inserts the delivery outcomes for a run.
func (a *Archive) RecordDeliveries(runID string, deliveries []Delivery) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	tx, err := a.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	for _, d := range deliveries {
		ok := 0
		if d.OK {
			ok = 1
		}
		if _, err := tx.Exec(
			`INSERT INTO deliveries (run_id, service, ok, message, url)
			 VALUES (?, ?, ?, ?, ?)`,
			runID, d.Service, ok, d.Message, d.URL,
		); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record delivery %s/%s: %w", runID, d.Service, err)
		}
	}
	return tx.Commit()
}

// History returns the most recent runs, newest first.
func (a *Archive) History(limit int) ([]Run, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if limit <= 0 {
		limit = 20
	}
	rows, err := a.db.Query(
		`SELECT id, stock_code, stock_name, strategy, price, json_path, created_at
		 FROM runs ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.StockCode, &r.StockName, &r.Strategy,
			&r.Price, &r.JSONPath, &r.CreatedAt); err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// RunDeliveries returns the delivery outcomes for one run.
func (a *Archive) RunDeliveries(runID string) ([]Delivery, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	rows, err := a.db.Query(
		`SELECT run_id, service, ok, message, url, created_at
		 FROM deliveries WHERE run_id = ? ORDER BY created_at`, runID)
	if err != nil {
		return nil, fmt.Errorf("query deliveries: %w", err)
	}
	defer rows.Close()

	var out []Delivery
	for rows.Next() {
		var d Delivery
		var ok int
		if err := rows.Scan(&d.RunID, &d.Service, &ok, &d.Message, &d.URL, &d.CreatedAt); err != nil {
			return nil, err
		}
		d.OK = ok == 1
		out = append(out, d)
	}
	return out, rows.Err()
}
