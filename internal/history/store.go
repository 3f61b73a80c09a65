// Package history records regeneration runs in a SQLite database.
//
// The store is purely observational: generation never reads it, and every
// trigger still performs a full rescan. It exists so `routegen history` can
// answer what ran, when, and how it went.
package history

import (
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/harrison/routegen/internal/models"
)

//go:embed schema.sql
var schemaSQL string

// RunRecord is one mapping's outcome within one regeneration trigger.
type RunRecord struct {
	ID           int64
	RunID        string
	Source       string
	Destination  string
	ImportCount  int
	DurationMS   int64
	Success      bool
	ErrorMessage string
	Timestamp    time.Time
}

// MappingStats aggregates history for one mapping.
type MappingStats struct {
	Source      string
	Destination string
	Runs        int
	Failures    int
	AvgImports  float64
	LastRun     time.Time
}

// Store manages the SQLite database holding generation history.
type Store struct {
	db     *sql.DB
	dbPath string
}

// NewStore creates a Store and initializes the database schema.
func NewStore(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// busy_timeout first so subsequent statements wait on locks instead of
	// failing when a watch process and a CLI invocation share the file.
	pragmas := []string{
		"PRAGMA busy_timeout=5000",
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
	}
	for _, pragma := range pragmas {
		if err := execWithRetry(db, pragma, 5, 10*time.Millisecond); err != nil {
			db.Close()
			return nil, fmt.Errorf("set %s: %w", pragma, err)
		}
	}

	if err := execWithRetry(db, schemaSQL, 5, 10*time.Millisecond); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return &Store{db: db, dbPath: dbPath}, nil
}

// execWithRetry executes a statement, retrying "database is locked" errors
// with linear backoff.
func execWithRetry(db *sql.DB, query string, attempts int, backoff time.Duration) error {
	var err error
	for i := 0; i < attempts; i++ {
		if _, err = db.Exec(query); err == nil {
			return nil
		}
		if !strings.Contains(err.Error(), "database is locked") {
			return err
		}
		time.Sleep(time.Duration(i+1) * backoff)
	}
	return err
}

// RecordRun persists one row per mapping result in a single transaction.
func (s *Store) RecordRun(run models.RunResult) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO runs (run_id, source, destination, import_count, duration_ms, success, error_message)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, result := range run.Results {
		errMsg := ""
		if result.Err != nil {
			errMsg = result.Err.Error()
		}
		_, err := stmt.Exec(
			run.RunID,
			result.Mapping.Source,
			result.Mapping.Destination,
			result.ImportCount,
			result.Duration.Milliseconds(),
			result.Err == nil,
			errMsg,
		)
		if err != nil {
			return fmt.Errorf("insert run record: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// RecentRuns returns the most recent records, newest first.
func (s *Store) RecentRuns(limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(`
		SELECT id, run_id, source, destination, import_count, duration_ms, success, error_message, timestamp
		FROM runs
		ORDER BY id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent runs: %w", err)
	}
	defer rows.Close()

	var records []RunRecord
	for rows.Next() {
		var r RunRecord
		if err := rows.Scan(&r.ID, &r.RunID, &r.Source, &r.Destination,
			&r.ImportCount, &r.DurationMS, &r.Success, &r.ErrorMessage, &r.Timestamp); err != nil {
			return nil, fmt.Errorf("scan run record: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// Stats returns per-mapping aggregates over the whole history.
func (s *Store) Stats() ([]MappingStats, error) {
	rows, err := s.db.Query(`
		SELECT source, destination,
		       COUNT(*) AS runs,
		       SUM(CASE WHEN success THEN 0 ELSE 1 END) AS failures,
		       AVG(import_count) AS avg_imports,
		       MAX(timestamp) AS last_run
		FROM runs
		GROUP BY source, destination
		ORDER BY source`)
	if err != nil {
		return nil, fmt.Errorf("query stats: %w", err)
	}
	defer rows.Close()

	var stats []MappingStats
	for rows.Next() {
		var st MappingStats
		var lastRun string
		if err := rows.Scan(&st.Source, &st.Destination, &st.Runs, &st.Failures, &st.AvgImports, &lastRun); err != nil {
			return nil, fmt.Errorf("scan stats: %w", err)
		}
		// MAX() strips the column's declared type, so the driver hands the
		// timestamp back as text.
		st.LastRun, _ = time.Parse("2006-01-02 15:04:05", lastRun)
		stats = append(stats, st)
	}
	return stats, rows.Err()
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
