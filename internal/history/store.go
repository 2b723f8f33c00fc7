// Package history persists build reports to a local SQLite database so past
// runs can be inspected with the history command.
package history

import (
	"context"
	"database/sql"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"git.home.luguber.info/inful/blogbuilder/internal/build"
	apperrors "git.home.luguber.info/inful/blogbuilder/internal/errors"
)

// Store is a SQLite-backed build report log.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// Entry is one persisted build record.
type Entry struct {
	ID         int64
	BuildID    string
	Outcome    string
	Start      time.Time
	DurationMS int64
	Payload    []byte // full report JSON
}

// Open creates or opens the history database. Use ":memory:" in tests.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CategoryStorage, apperrors.SeverityFatal, "cannot open history database").
			WithContext("path", path)
	}

	s := &Store{db: db}
	if err := s.initialize(); err != nil {
		_ = db.Close()
		return nil, apperrors.Wrap(err, apperrors.CategoryStorage, apperrors.SeverityFatal, "cannot initialize history schema")
	}
	return s, nil
}

func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS builds (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		build_id TEXT NOT NULL,
		outcome TEXT NOT NULL,
		started_at INTEGER NOT NULL,
		duration_ms INTEGER NOT NULL,
		payload BLOB NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_builds_build_id ON builds(build_id);
	CREATE INDEX IF NOT EXISTS idx_builds_started_at ON builds(started_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Append records one finished build.
func (s *Store) Append(ctx context.Context, report *build.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	payload, err := report.MarshalPayload()
	if err != nil {
		return apperrors.Wrap(err, apperrors.CategoryStorage, apperrors.SeverityWarning, "cannot serialize build report")
	}

	_, err = s.db.ExecContext(ctx,
		"INSERT INTO builds (build_id, outcome, started_at, duration_ms, payload) VALUES (?, ?, ?, ?, ?)",
		report.BuildID, string(report.Outcome), report.Start.Unix(), report.Duration().Milliseconds(), payload,
	)
	if err != nil {
		return apperrors.Wrap(err, apperrors.CategoryStorage, apperrors.SeverityWarning, "cannot insert build record")
	}
	return nil
}

// Recent returns the latest builds, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, build_id, outcome, started_at, duration_ms, payload FROM builds ORDER BY id DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CategoryStorage, apperrors.SeverityError, "cannot query build history")
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var startedUnix int64
		if err := rows.Scan(&e.ID, &e.BuildID, &e.Outcome, &startedUnix, &e.DurationMS, &e.Payload); err != nil {
			return nil, apperrors.Wrap(err, apperrors.CategoryStorage, apperrors.SeverityError, "cannot scan build record")
		}
		e.Start = time.Unix(startedUnix, 0)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CategoryStorage, apperrors.SeverityError, "history row iteration failed")
	}
	return entries, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}
