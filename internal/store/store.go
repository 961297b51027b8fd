// Package store persists the session audit trail: an append-only action
// history, per-call LLM usage analytics, and the prompt history used for
// REPL recall. Everything lives in one sqlite database under the
// workspace's .sheetpilot directory.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"sheetpilot/internal/logging"
	"sheetpilot/internal/types"
)

// Store owns the sqlite handle. It satisfies both types.HistoryStore and
// types.UsageRecorder so callers depend on the narrow interfaces.
type Store struct {
	db     *sql.DB
	dbPath string
	mu     sync.RWMutex
}

// Open creates or opens the database at dbPath, creating parent
// directories as needed.
func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db, dbPath: dbPath}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	logging.Store("opened database at %s", dbPath)
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.dbPath
}

func (s *Store) initSchema() error {
	schema := `
	-- Append-only action audit log
	CREATE TABLE IF NOT EXISTS action_history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL,
		action_name TEXT NOT NULL,
		description TEXT NOT NULL,
		timestamp DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_history_session ON action_history(session_id);
	CREATE INDEX IF NOT EXISTS idx_history_timestamp ON action_history(timestamp);

	-- Per-call LLM usage analytics
	CREATE TABLE IF NOT EXISTS usage_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL,
		model TEXT NOT NULL,
		provider TEXT NOT NULL,
		input_tokens INTEGER NOT NULL,
		output_tokens INTEGER NOT NULL,
		timestamp DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_usage_session ON usage_events(session_id);
	CREATE INDEX IF NOT EXISTS idx_usage_model ON usage_events(model);

	-- Raw prompt history for REPL recall
	CREATE TABLE IF NOT EXISTS prompt_history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL,
		prompt TEXT NOT NULL,
		timestamp DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_prompts_session ON prompt_history(session_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

// AppendHistory writes one audit record. Entries are never updated or
// deleted.
func (s *Store) AppendHistory(ctx context.Context, entry types.HistoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO action_history (session_id, action_name, description, timestamp)
		VALUES (?, ?, ?, ?)
	`, entry.SessionID, entry.ActionName, entry.Description, entry.Timestamp)
	if err != nil {
		return fmt.Errorf("failed to append history: %w", err)
	}
	logging.StoreDebug("history: %s %s", entry.ActionName, entry.Description)
	return nil
}

// RecentHistory returns up to limit entries, newest first.
func (s *Store) RecentHistory(ctx context.Context, limit int) ([]types.HistoryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT session_id, action_name, description, timestamp
		FROM action_history
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var entries []types.HistoryEntry
	for rows.Next() {
		var e types.HistoryEntry
		if err := rows.Scan(&e.SessionID, &e.ActionName, &e.Description, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// RecordUsage writes one LLM round-trip record.
func (s *Store) RecordUsage(ctx context.Context, event types.UsageEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO usage_events (session_id, model, provider, input_tokens, output_tokens, timestamp)
		VALUES (?, ?, ?, ?, ?, ?)
	`, event.SessionID, event.Model, event.Provider, event.InputTokens, event.OutputTokens, event.Timestamp)
	if err != nil {
		return fmt.Errorf("failed to record usage: %w", err)
	}
	return nil
}

// UsageSummary is an aggregate over usage_events for one model.
type UsageSummary struct {
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
}

// UsageByModel aggregates all recorded usage grouped by model.
func (s *Store) UsageByModel(ctx context.Context) ([]UsageSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT model, COUNT(*), SUM(input_tokens), SUM(output_tokens)
		FROM usage_events
		GROUP BY model
		ORDER BY model
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query usage: %w", err)
	}
	defer rows.Close()

	var summaries []UsageSummary
	for rows.Next() {
		var u UsageSummary
		if err := rows.Scan(&u.Model, &u.Calls, &u.InputTokens, &u.OutputTokens); err != nil {
			return nil, fmt.Errorf("failed to scan usage row: %w", err)
		}
		summaries = append(summaries, u)
	}
	return summaries, rows.Err()
}

// AppendPrompt records one raw user prompt for recall.
func (s *Store) AppendPrompt(ctx context.Context, sessionID, prompt string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO prompt_history (session_id, prompt, timestamp)
		VALUES (?, ?, ?)
	`, sessionID, prompt, time.Now())
	if err != nil {
		return fmt.Errorf("failed to append prompt: %w", err)
	}
	return nil
}

// RecentPrompts returns up to limit prompts, newest first.
func (s *Store) RecentPrompts(ctx context.Context, limit int) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT prompt FROM prompt_history
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query prompts: %w", err)
	}
	defer rows.Close()

	var prompts []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("failed to scan prompt row: %w", err)
		}
		prompts = append(prompts, p)
	}
	return prompts, rows.Err()
}
