// Package session persists race sessions, their telemetry, and the events
// the detector emitted, backed by SQLite. The log is what post-race review
// tooling replays.
package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/pitbox/pitwall/internal/domain/model"
	"github.com/pitbox/pitwall/pkg/metrics"
)

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	session_id TEXT PRIMARY KEY,
	started_at TEXT NOT NULL,
	ended_at TEXT,
	laps_completed INTEGER NOT NULL DEFAULT 0,
	events_emitted INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS snapshots (
	session_id TEXT NOT NULL,
	recorded_at TEXT NOT NULL,
	lap INTEGER NOT NULL,
	position INTEGER NOT NULL,
	payload TEXT NOT NULL,
	FOREIGN KEY(session_id) REFERENCES sessions(session_id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS events (
	event_id TEXT PRIMARY KEY,
	session_id TEXT NOT NULL,
	recorded_at TEXT NOT NULL,
	kind TEXT NOT NULL,
	priority INTEGER NOT NULL,
	lap INTEGER NOT NULL,
	message TEXT NOT NULL,
	payload TEXT NOT NULL,
	FOREIGN KEY(session_id) REFERENCES sessions(session_id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_snapshots_session_lap ON snapshots(session_id, lap);
CREATE INDEX IF NOT EXISTS idx_events_session ON events(session_id, recorded_at);
`

// Store logs sessions to a SQLite file.
type Store struct {
	db *sql.DB
}

// Open creates or opens the session database at path and applies the schema.
func Open(ctx context.Context, path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		return nil, errors.Join(fmt.Errorf("ping sqlite: %w", err), db.Close())
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return nil, errors.Join(fmt.Errorf("apply schema: %w", err), db.Close())
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Begin opens a new session row and returns its ID.
func (s *Store) Begin(ctx context.Context, startedAt time.Time) (string, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx, `
INSERT INTO sessions(session_id, started_at) VALUES (?, ?)
`, id, ts(startedAt))
	if err != nil {
		return "", fmt.Errorf("begin session: %w", err)
	}
	return id, nil
}

// LogSnapshot appends one telemetry snapshot to the session.
func (s *Store) LogSnapshot(ctx context.Context, sessionID string, snap model.Snapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
INSERT INTO snapshots(session_id, recorded_at, lap, position, payload)
VALUES (?, ?, ?, ?, ?)
`, sessionID, ts(snap.Timestamp), snap.Lap, snap.Position, string(payload))
	if err != nil {
		return fmt.Errorf("log snapshot: %w", err)
	}
	metrics.RecordSessionRow()
	return nil
}

// LogEvent appends one emitted event to the session.
func (s *Store) LogEvent(ctx context.Context, sessionID string, e model.Event) error {
	payload, err := json.Marshal(e.Payload)
	if err != nil {
		return fmt.Errorf("marshal event payload: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
INSERT INTO events(event_id, session_id, recorded_at, kind, priority, lap, message, payload)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
`, e.ID, sessionID, ts(e.Timestamp), e.Kind.String(), int(e.Priority), e.Lap, e.Message, string(payload))
	if err != nil {
		return fmt.Errorf("log event: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
UPDATE sessions SET events_emitted = events_emitted + 1 WHERE session_id = ?
`, sessionID)
	if err != nil {
		return fmt.Errorf("bump event count: %w", err)
	}
	metrics.RecordSessionRow()
	return nil
}

// End marks the session finished and records the lap count.
func (s *Store) End(ctx context.Context, sessionID string, endedAt time.Time, lapsCompleted int) error {
	res, err := s.db.ExecContext(ctx, `
UPDATE sessions SET ended_at = ?, laps_completed = ? WHERE session_id = ?
`, ts(endedAt), lapsCompleted, sessionID)
	if err != nil {
		return fmt.Errorf("end session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("end session: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// SessionSummary describes one stored session.
type SessionSummary struct {
	ID            string
	StartedAt     time.Time
	EndedAt       *time.Time
	LapsCompleted int
	EventsEmitted int
}

// Sessions lists stored sessions, newest first.
func (s *Store) Sessions(ctx context.Context) ([]SessionSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT session_id, started_at, ended_at, laps_completed, events_emitted
FROM sessions ORDER BY started_at DESC
`)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var out []SessionSummary
	for rows.Next() {
		var (
			sum     SessionSummary
			started string
			ended   sql.NullString
		)
		if err := rows.Scan(&sum.ID, &started, &ended, &sum.LapsCompleted, &sum.EventsEmitted); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		if sum.StartedAt, err = parseTS(started); err != nil {
			return nil, err
		}
		if ended.Valid {
			t, err := parseTS(ended.String)
			if err != nil {
				return nil, err
			}
			sum.EndedAt = &t
		}
		out = append(out, sum)
	}
	return out, rows.Err()
}

// Events returns the events emitted during a session, oldest first.
func (s *Store) Events(ctx context.Context, sessionID string) ([]model.Event, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT event_id, recorded_at, kind, priority, lap, message, payload
FROM events WHERE session_id = ? ORDER BY recorded_at ASC
`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var out []model.Event
	for rows.Next() {
		var (
			e        model.Event
			recorded string
			kind     string
			priority int
			payload  string
		)
		if err := rows.Scan(&e.ID, &recorded, &kind, &priority, &e.Lap, &e.Message, &payload); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		if e.Timestamp, err = parseTS(recorded); err != nil {
			return nil, err
		}
		e.Kind = model.KindFromString(kind)
		e.Priority = model.Priority(priority)
		if err := json.Unmarshal([]byte(payload), &e.Payload); err != nil {
			return nil, fmt.Errorf("unmarshal event payload: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func ts(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTS(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp: %w", err)
	}
	return t, nil
}
