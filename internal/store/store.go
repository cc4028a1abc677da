// Package store handles SQLite persistence of session history.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/verte-zerg/velotype/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Store wraps SQLite access for session history. It implements history.Backend.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			seq INTEGER PRIMARY KEY,
			id TEXT NOT NULL UNIQUE,
			completed_at TEXT NOT NULL,
			difficulty TEXT NOT NULL,
			wpm INTEGER NOT NULL,
			raw_wpm INTEGER NOT NULL,
			accuracy INTEGER NOT NULL,
			correct_chars INTEGER NOT NULL,
			incorrect_chars INTEGER NOT NULL,
			errors INTEGER NOT NULL,
			time_elapsed REAL NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS session_missed_keys (
			session_id TEXT NOT NULL,
			key TEXT NOT NULL,
			count INTEGER NOT NULL,
			PRIMARY KEY (session_id, key)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_completed_at ON sessions(completed_at);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Save replaces the stored history with items, preserving their order.
func (s *Store) Save(ctx context.Context, items []model.HistoryItem) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM session_missed_keys`); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM sessions`); err != nil {
		return err
	}

	sessionStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO sessions (seq, id, completed_at, difficulty, wpm, raw_wpm, accuracy, correct_chars, incorrect_chars, errors, time_elapsed)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer closeStmt(sessionStmt)
	keyStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO session_missed_keys (session_id, key, count) VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}
	defer closeStmt(keyStmt)

	for i, item := range items {
		if _, err = sessionStmt.ExecContext(ctx,
			i+1,
			item.ID,
			item.Date.UTC().Format(time.RFC3339Nano),
			string(item.Difficulty),
			item.WPM,
			item.RawWPM,
			item.Accuracy,
			item.CorrectChars,
			item.IncorrectChars,
			item.Errors,
			item.TimeElapsed,
		); err != nil {
			return fmt.Errorf("failed to insert session %s: %w", item.ID, err)
		}
		for key, count := range item.MissedKeys {
			if _, err = keyStmt.ExecContext(ctx, item.ID, key, count); err != nil {
				return fmt.Errorf("failed to insert missed key for %s: %w", item.ID, err)
			}
		}
	}

	return tx.Commit()
}

// Load returns all stored sessions in insertion order.
func (s *Store) Load(ctx context.Context) ([]model.HistoryItem, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, completed_at, difficulty, wpm, raw_wpm, accuracy, correct_chars, incorrect_chars, errors, time_elapsed
		FROM sessions
		ORDER BY seq ASC`)
	if err != nil {
		return nil, err
	}
	defer closeRows(rows)

	var items []model.HistoryItem
	index := map[string]int{}
	for rows.Next() {
		var item model.HistoryItem
		var completedAt, difficulty string
		if err := rows.Scan(&item.ID, &completedAt, &difficulty, &item.WPM, &item.RawWPM, &item.Accuracy,
			&item.CorrectChars, &item.IncorrectChars, &item.Errors, &item.TimeElapsed); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(time.RFC3339Nano, completedAt)
		if err != nil {
			return nil, err
		}
		item.Date = parsed
		item.Difficulty = model.Difficulty(difficulty)
		item.MissedKeys = map[string]int{}
		index[item.ID] = len(items)
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return items, nil
	}

	keyRows, err := s.db.QueryContext(ctx, `SELECT session_id, key, count FROM session_missed_keys`)
	if err != nil {
		return nil, err
	}
	defer closeRows(keyRows)
	for keyRows.Next() {
		var sessionID, key string
		var count int
		if err := keyRows.Scan(&sessionID, &key, &count); err != nil {
			return nil, err
		}
		if i, ok := index[sessionID]; ok {
			items[i].MissedKeys[key] = count
		}
	}
	if err := keyRows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// MissedKeyTotals aggregates missed keys over the most recent sessions.
// window <= 0 covers all sessions.
func (s *Store) MissedKeyTotals(ctx context.Context, window int) (map[string]int, error) {
	limit := window
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `WITH recent_sessions AS (
		SELECT id FROM sessions
		ORDER BY seq DESC
		LIMIT ?
	)
	SELECT mk.key, SUM(mk.count)
	FROM session_missed_keys mk
	JOIN recent_sessions r ON r.id = mk.session_id
	GROUP BY mk.key`, limit)
	if err != nil {
		return nil, err
	}
	defer closeRows(rows)

	totals := map[string]int{}
	for rows.Next() {
		var key string
		var count int
		if err := rows.Scan(&key, &count); err != nil {
			return nil, err
		}
		totals[key] = count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return totals, nil
}

func closeRows(rows *sql.Rows) {
	if cerr := rows.Close(); cerr != nil {
		// Best-effort rows close.
		_ = cerr
	}
}

func closeStmt(stmt *sql.Stmt) {
	if cerr := stmt.Close(); cerr != nil {
		// Best-effort statement close.
		_ = cerr
	}
}
