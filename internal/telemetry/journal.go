package telemetry

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Entry is one finished exchange, recorded for diagnostics
type Entry struct {
	SessionID  string
	StartedAt  time.Time
	Duration   time.Duration
	Outcome    string // success, network, service, logical
	StatusCode int
	Detail     string
}

// Journal records exchange outcomes in SQLite. It is write-mostly and is
// never used to rebuild a conversation.
type Journal struct {
	db *sql.DB
}

// InitDB opens the SQLite database and creates the journal table
func InitDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	createExchangesTable := `
	CREATE TABLE IF NOT EXISTS exchanges (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT,
		started_at DATETIME,
		duration_ms INTEGER,
		outcome TEXT,
		status_code INTEGER,
		detail TEXT
	);`

	if _, err := db.Exec(createExchangesTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create exchanges table: %w", err)
	}

	return db, nil
}

// OpenJournal opens (or creates) a journal at path
func OpenJournal(path string) (*Journal, error) {
	db, err := InitDB(path)
	if err != nil {
		return nil, err
	}
	return &Journal{db: db}, nil
}

// Record stores one entry
func (j *Journal) Record(ctx context.Context, e Entry) error {
	_, err := j.db.ExecContext(ctx,
		"INSERT INTO exchanges (session_id, started_at, duration_ms, outcome, status_code, detail) VALUES (?, ?, ?, ?, ?, ?)",
		e.SessionID, e.StartedAt, e.Duration.Milliseconds(), e.Outcome, e.StatusCode, e.Detail,
	)
	if err != nil {
		return fmt.Errorf("failed to record exchange: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first
func (j *Journal) Recent(ctx context.Context, limit int) ([]Entry, error) {
	rows, err := j.db.QueryContext(ctx,
		"SELECT session_id, started_at, duration_ms, outcome, status_code, detail FROM exchanges ORDER BY id DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query exchanges: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var e Entry
		var ms int64
		if err := rows.Scan(&e.SessionID, &e.StartedAt, &ms, &e.Outcome, &e.StatusCode, &e.Detail); err != nil {
			return nil, fmt.Errorf("failed to scan exchange: %w", err)
		}
		e.Duration = time.Duration(ms) * time.Millisecond
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Close closes the underlying database
func (j *Journal) Close() error {
	return j.db.Close()
}
