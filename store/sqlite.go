package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	companionsdk "github.com/soulmesh-ai/companion-sdk-go"
)

// SQLiteActivityStore is an append-only ActivityStore backed by SQLite,
// for single-node and embedded deployments. The schema has no UPDATE or
// DELETE path; rows are immutable once written.
type SQLiteActivityStore struct {
	db      *sql.DB
	entropy *rand.Rand
}

// Fixed-width variant of RFC3339Nano so lexical comparison on the
// created_at column matches chronological order.
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// NewSQLiteActivityStore opens or creates a SQLite database at the given
// path and runs the schema migration.
func NewSQLiteActivityStore(dbPath string) (*SQLiteActivityStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &SQLiteActivityStore{
		db:      db,
		entropy: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// Close closes the underlying database.
func (s *SQLiteActivityStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteActivityStore) newID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), s.entropy).String()
}

func (s *SQLiteActivityStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS activity_events (
		id         TEXT PRIMARY KEY,
		user_id    TEXT NOT NULL,
		type       TEXT NOT NULL,
		metadata   TEXT,
		created_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_activity_user ON activity_events(user_id, created_at);
	CREATE INDEX IF NOT EXISTS idx_activity_created ON activity_events(created_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteActivityStore) Append(ctx context.Context, event *companionsdk.ActivityEvent) error {
	if event.ID == "" {
		event.ID = s.newID()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	var metadata []byte
	if event.Metadata != nil {
		var err error
		metadata, err = json.Marshal(event.Metadata)
		if err != nil {
			return fmt.Errorf("marshal metadata: %w", err)
		}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO activity_events (id, user_id, type, metadata, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		event.ID, event.UserID, event.Type, string(metadata),
		event.Timestamp.UTC().Format(sqliteTimeLayout))
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

func (s *SQLiteActivityStore) ListByUser(ctx context.Context, userID string, since time.Time) ([]companionsdk.ActivityEvent, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, type, metadata, created_at
		FROM activity_events
		WHERE user_id = ? AND created_at >= ?
		ORDER BY created_at`,
		userID, since.UTC().Format(sqliteTimeLayout))
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

func (s *SQLiteActivityStore) ListSince(ctx context.Context, since time.Time) ([]companionsdk.ActivityEvent, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, type, metadata, created_at
		FROM activity_events
		WHERE created_at >= ?
		ORDER BY created_at`,
		since.UTC().Format(sqliteTimeLayout))
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

func scanEvents(rows *sql.Rows) ([]companionsdk.ActivityEvent, error) {
	var events []companionsdk.ActivityEvent
	for rows.Next() {
		var e companionsdk.ActivityEvent
		var metadata, createdAt string
		if err := rows.Scan(&e.ID, &e.UserID, &e.Type, &metadata, &createdAt); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		if metadata != "" {
			if err := json.Unmarshal([]byte(metadata), &e.Metadata); err != nil {
				return nil, fmt.Errorf("unmarshal metadata: %w", err)
			}
		}
		ts, err := time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parse timestamp: %w", err)
		}
		e.Timestamp = ts
		events = append(events, e)
	}
	return events, rows.Err()
}
