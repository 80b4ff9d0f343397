// Package storage provides SQLite-backed persistence for normalized events
// and computed assessments. The CGO-free modernc.org/sqlite driver keeps the
// binary self-contained; ":memory:" databases are supported for tests.
//
// The events table carries a uniqueness constraint over (target, source,
// timestamp, normalized text), so re-ingesting the same item is idempotent
// at the persistence layer as well as in the normalizer.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/asifah/stormwatch/internal/logger"
	"github.com/asifah/stormwatch/internal/models"
)

// Storage wraps the SQLite database. database/sql handles connection
// concurrency; Storage itself holds no mutable state.
type Storage struct {
	db                 *sql.DB
	maxEventsPerTarget int
}

const schema = `
CREATE TABLE IF NOT EXISTS events (
	id            TEXT PRIMARY KEY,
	target        TEXT NOT NULL,
	source_id     TEXT NOT NULL,
	text          TEXT NOT NULL,
	text_norm     TEXT NOT NULL,
	published_at  TEXT NOT NULL,
	url           TEXT NOT NULL DEFAULT '',
	language      TEXT NOT NULL DEFAULT '',
	ingested_at   TEXT NOT NULL,
	UNIQUE (target, source_id, published_at, text_norm)
);
CREATE INDEX IF NOT EXISTS idx_events_target_published ON events (target, published_at);

CREATE TABLE IF NOT EXISTS assessments (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	target        TEXT NOT NULL,
	score         REAL NOT NULL,
	momentum      TEXT NOT NULL,
	event_count   INTEGER NOT NULL,
	skipped_count INTEGER NOT NULL DEFAULT 0,
	timeline      TEXT NOT NULL DEFAULT '',
	confidence    TEXT NOT NULL DEFAULT '',
	raw_signal    REAL NOT NULL,
	created_at    TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_assessments_target_created ON assessments (target, created_at);
`

// New opens (or creates) the database at dbPath and applies the schema.
// Pass ":memory:" for an ephemeral database.
func New(dbPath string, maxEventsPerTarget int) (*Storage, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// modernc sqlite serializes writes; a single connection avoids
	// SQLITE_BUSY on concurrent writers.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	if maxEventsPerTarget < 1 {
		maxEventsPerTarget = 5000
	}

	return &Storage{db: db, maxEventsPerTarget: maxEventsPerTarget}, nil
}

// Close releases the database handle.
func (s *Storage) Close() error {
	return s.db.Close()
}

// AddEvents inserts events, silently skipping exact duplicates already
// stored. An event that fails validation is skipped and logged rather than
// aborting the batch; the rest of the cycle's events must survive one bad
// record. Returns the number of newly inserted rows.
func (s *Storage) AddEvents(events []models.Event) (int, error) {
	if len(events) == 0 {
		return 0, nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT OR IGNORE INTO events
		(id, target, source_id, text, text_norm, published_at, url, language, ingested_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(time.RFC3339)
	inserted := 0
	for _, e := range events {
		if err := e.Validate(); err != nil {
			logger.Warn("skipping invalid event %s: %v", e.ID, err)
			continue
		}
		res, err := stmt.Exec(
			e.ID, e.Target, e.SourceID, e.Text, foldText(e.Text),
			e.PublishedAt.UTC().Format(time.RFC3339), e.URL, e.Language, now,
		)
		if err != nil {
			return inserted, fmt.Errorf("failed to insert event %s: %w", e.ID, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			inserted++
		}
	}

	if err := tx.Commit(); err != nil {
		return inserted, fmt.Errorf("failed to commit: %w", err)
	}
	return inserted, nil
}

// EventsInWindow returns the target's events published at or after since,
// oldest first.
func (s *Storage) EventsInWindow(target string, since time.Time) ([]models.Event, error) {
	rows, err := s.db.Query(`
		SELECT id, target, source_id, text, published_at, url, language
		FROM events
		WHERE target = ? AND published_at >= ?
		ORDER BY published_at ASC`,
		target, since.UTC().Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var events []models.Event
	for rows.Next() {
		var e models.Event
		var published string
		if err := rows.Scan(&e.ID, &e.Target, &e.SourceID, &e.Text, &published, &e.URL, &e.Language); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		ts, err := time.Parse(time.RFC3339, published)
		if err != nil {
			return nil, fmt.Errorf("corrupt published_at for event %s: %w", e.ID, err)
		}
		e.PublishedAt = ts.UTC()
		events = append(events, e)
	}
	return events, rows.Err()
}

// SaveAssessment appends an assessment to the target's history.
func (s *Storage) SaveAssessment(a *models.ThreatAssessment) error {
	if err := a.Validate(); err != nil {
		return fmt.Errorf("invalid assessment: %w", err)
	}
	_, err := s.db.Exec(`
		INSERT INTO assessments
		(target, score, momentum, event_count, skipped_count, timeline, confidence, raw_signal, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.Target, a.Score, string(a.Momentum), a.EventCount, a.SkippedCount,
		a.Timeline, a.Confidence, a.RawSignal,
		a.Timestamp.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to insert assessment: %w", err)
	}
	return nil
}

// LatestAssessment returns the most recent stored assessment for a target,
// or nil when none exists.
func (s *Storage) LatestAssessment(target string) (*models.ThreatAssessment, error) {
	row := s.db.QueryRow(`
		SELECT target, score, momentum, event_count, skipped_count, timeline, confidence, raw_signal, created_at
		FROM assessments
		WHERE target = ?
		ORDER BY created_at DESC, id DESC
		LIMIT 1`, target)

	a, err := scanAssessment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return a, err
}

// History returns up to limit assessments for a target, newest first.
func (s *Storage) History(target string, limit int) ([]models.ThreatAssessment, error) {
	if limit < 1 {
		limit = 50
	}
	rows, err := s.db.Query(`
		SELECT target, score, momentum, event_count, skipped_count, timeline, confidence, raw_signal, created_at
		FROM assessments
		WHERE target = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?`, target, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var history []models.ThreatAssessment
	for rows.Next() {
		a, err := scanAssessment(rows)
		if err != nil {
			return nil, err
		}
		history = append(history, *a)
	}
	return history, rows.Err()
}

// PruneEvents removes events published before the cutoff instant. Returns
// the number of removed rows.
func (s *Storage) PruneEvents(before time.Time) (int64, error) {
	res, err := s.db.Exec(`DELETE FROM events WHERE published_at < ?`,
		before.UTC().Format(time.RFC3339))
	if err != nil {
		return 0, fmt.Errorf("failed to prune events: %w", err)
	}
	return res.RowsAffected()
}

// RotateEvents caps each target's stored events at the configured maximum,
// dropping the oldest beyond the limit.
func (s *Storage) RotateEvents(targets []string) error {
	for _, target := range targets {
		_, err := s.db.Exec(`
			DELETE FROM events
			WHERE target = ? AND id NOT IN (
				SELECT id FROM events
				WHERE target = ?
				ORDER BY published_at DESC
				LIMIT ?
			)`, target, target, s.maxEventsPerTarget)
		if err != nil {
			return fmt.Errorf("failed to rotate events for %s: %w", target, err)
		}
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAssessment(row rowScanner) (*models.ThreatAssessment, error) {
	var a models.ThreatAssessment
	var momentum, created string
	if err := row.Scan(&a.Target, &a.Score, &momentum, &a.EventCount, &a.SkippedCount, &a.Timeline, &a.Confidence, &a.RawSignal, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan assessment: %w", err)
	}
	a.Momentum = models.Momentum(momentum)
	ts, err := time.Parse(time.RFC3339Nano, created)
	if err != nil {
		return nil, fmt.Errorf("corrupt created_at: %w", err)
	}
	a.Timestamp = ts.UTC()
	return &a, nil
}

// foldText lowercases and collapses internal whitespace for the dedup key,
// mirroring the normalizer's duplicate identity.
func foldText(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
