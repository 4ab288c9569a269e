package storage

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// RunRecord captures one executed generated shell command.
type RunRecord struct {
	ID         string
	Prompt     string
	Command    string
	ExitCode   int
	ExecutedAt time.Time
}

// RunHistory logs generated commands the user chose to execute. The log
// is advisory: a write failure never blocks execution.
type RunHistory struct {
	db *sql.DB
}

// NewRunHistory opens (creating if needed) the run history database
// under dataDir.
func NewRunHistory(dataDir string) (*RunHistory, error) {
	dbPath := filepath.Join(dataDir, "history.db")

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping history database: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		prompt TEXT NOT NULL,
		command TEXT NOT NULL,
		exit_code INTEGER NOT NULL,
		executed_at TIMESTAMP NOT NULL
	);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize history database: %w", err)
	}

	return &RunHistory{db: db}, nil
}

// Record appends a run record.
func (h *RunHistory) Record(prompt, command string, exitCode int) error {
	_, err := h.db.Exec(
		"INSERT INTO runs (id, prompt, command, exit_code, executed_at) VALUES (?, ?, ?, ?, ?)",
		uuid.New().String(), prompt, command, exitCode, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}
	return nil
}

// Recent returns up to limit records, newest first.
func (h *RunHistory) Recent(limit int) ([]RunRecord, error) {
	rows, err := h.db.Query(
		"SELECT id, prompt, command, exit_code, executed_at FROM runs ORDER BY executed_at DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query run history: %w", err)
	}
	defer rows.Close()

	var records []RunRecord
	for rows.Next() {
		var r RunRecord
		if err := rows.Scan(&r.ID, &r.Prompt, &r.Command, &r.ExitCode, &r.ExecutedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run record: %w", err)
		}
		records = append(records, r)
	}

	return records, rows.Err()
}

// Close closes the database.
func (h *RunHistory) Close() error {
	return h.db.Close()
}
