package history

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"
)

// Run is one recorded workflow invocation. The store is an observational
// audit log only: the orchestrator never reads it back to resume work, so
// workflows stay non-durable.
type Run struct {
	ID         string     `json:"id"`
	Operation  string     `json:"operation"`
	Status     string     `json:"status"`
	AssetID    string     `json:"asset_id,omitempty"`
	PlaylistID string     `json:"playlist_id,omitempty"`
	ScreenID   string     `json:"screen_id,omitempty"`
	Error      string     `json:"error,omitempty"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// Run statuses.
const (
	StatusStarted   = "started"
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
)

// Store wraps a *sql.DB recording workflow runs. It is safe for concurrent
// use because the underlying *sql.DB is concurrency-safe.
type Store struct {
	conn   *sql.DB
	logger *logrus.Logger

	insertRunStmt *sql.Stmt
	finishRunStmt *sql.Stmt
	recentStmt    *sql.Stmt
}

// NewStore opens (or creates) the SQLite history database at the provided
// path and ensures the schema exists. Caller should Close() it when finished.
func NewStore(dbPath string, logger *logrus.Logger) (*Store, error) {
	if logger == nil {
		logger = logrus.New()
	}

	conn, err := sql.Open("sqlite3", dbPath+"?cache=shared&mode=rwc")
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	// SQLite works better with fewer connections
	conn.SetMaxOpenConns(5)
	conn.SetMaxIdleConns(2)
	conn.SetConnMaxLifetime(15 * time.Minute)

	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA temp_store=memory;",
	}
	for _, pragma := range pragmas {
		if _, err := conn.Exec(pragma); err != nil {
			logger.WithError(err).WithField("pragma", pragma).Warn("Failed to set pragma")
		}
	}

	store := &Store{
		conn:   conn,
		logger: logger,
	}

	if err := store.createTables(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	if err := store.prepareStatements(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to prepare statements: %w", err)
	}

	logger.WithField("db_path", dbPath).Info("History store initialized")
	return store, nil
}

// createTables creates the runs table if it does not already exist. This is
// idempotent and safe to call multiple times.
func (s *Store) createTables() error {
	runsTable := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		operation TEXT NOT NULL,
		status TEXT NOT NULL,
		asset_id TEXT DEFAULT '',
		playlist_id TEXT DEFAULT '',
		screen_id TEXT DEFAULT '',
		error TEXT DEFAULT '',
		started_at DATETIME NOT NULL,
		finished_at DATETIME
	);`

	if _, err := s.conn.Exec(runsTable); err != nil {
		return err
	}

	index := `CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at DESC);`
	_, err := s.conn.Exec(index)
	return err
}

func (s *Store) prepareStatements() error {
	var err error

	s.insertRunStmt, err = s.conn.Prepare(`
		INSERT INTO runs (id, operation, status, started_at)
		VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert run: %w", err)
	}

	s.finishRunStmt, err = s.conn.Prepare(`
		UPDATE runs SET status = ?, asset_id = ?, playlist_id = ?, screen_id = ?,
			error = ?, finished_at = ?
		WHERE id = ?`)
	if err != nil {
		return fmt.Errorf("prepare finish run: %w", err)
	}

	s.recentStmt, err = s.conn.Prepare(`
		SELECT id, operation, status, asset_id, playlist_id, screen_id, error,
			started_at, finished_at
		FROM runs ORDER BY started_at DESC LIMIT ?`)
	if err != nil {
		return fmt.Errorf("prepare recent runs: %w", err)
	}

	return nil
}

// RecordStart inserts a new run in the started state and returns its ID.
func (s *Store) RecordStart(operation string) (string, error) {
	runID := uuid.New().String()
	_, err := s.insertRunStmt.Exec(runID, operation, StatusStarted, time.Now().UTC())
	if err != nil {
		return "", fmt.Errorf("record run start: %w", err)
	}
	return runID, nil
}

// Outcome carries the resource ids touched by a finished run.
type Outcome struct {
	AssetID    string
	PlaylistID string
	ScreenID   string
}

// RecordResult marks a run finished. A non-empty errMsg marks it failed.
func (s *Store) RecordResult(runID string, outcome Outcome, errMsg string) error {
	status := StatusSucceeded
	if errMsg != "" {
		status = StatusFailed
	}

	_, err := s.finishRunStmt.Exec(status, outcome.AssetID, outcome.PlaylistID,
		outcome.ScreenID, errMsg, time.Now().UTC(), runID)
	if err != nil {
		return fmt.Errorf("record run result: %w", err)
	}
	return nil
}

// RecentRuns returns the most recent runs, newest first.
func (s *Store) RecentRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.recentStmt.Query(limit)
	if err != nil {
		return nil, fmt.Errorf("query recent runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var finished sql.NullTime
		if err := rows.Scan(&run.ID, &run.Operation, &run.Status, &run.AssetID,
			&run.PlaylistID, &run.ScreenID, &run.Error, &run.StartedAt, &finished); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if finished.Valid {
			t := finished.Time
			run.FinishedAt = &t
		}
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

// Ping verifies database connectivity for health checks.
func (s *Store) Ping() error {
	return s.conn.Ping()
}

// Close releases prepared statements and the underlying connection.
func (s *Store) Close() error {
	for _, stmt := range []*sql.Stmt{s.insertRunStmt, s.finishRunStmt, s.recentStmt} {
		if stmt != nil {
			stmt.Close()
		}
	}
	return s.conn.Close()
}
