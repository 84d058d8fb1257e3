// Package sqlite implements the persistence repositories on top of the
// pure-Go modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/example/deputy-schedule/internal/persistence"

	_ "modernc.org/sqlite"
)

// DB wraps the sql handle shared by the repositories.
type DB struct {
	conn *sql.DB
}

// Open opens (and creates if necessary) the database at the given DSN.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// modernc sqlite serializes writes; a single connection avoids
	// SQLITE_BUSY churn under concurrent handlers.
	conn.SetMaxOpenConns(1)
	if _, err := conn.Exec("PRAGMA foreign_keys = ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close releases the underlying connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrations is the ordered schema history. Version n is the statement at
// index n-1; applied versions are tracked in schema_migrations.
var migrations = []string{
	`CREATE TABLE users (
		id            TEXT PRIMARY KEY,
		login         TEXT NOT NULL UNIQUE,
		email         TEXT NOT NULL UNIQUE,
		full_name     TEXT NOT NULL,
		position      TEXT NOT NULL DEFAULT '',
		role          TEXT NOT NULL DEFAULT 'user',
		password_hash TEXT NOT NULL,
		created_at    TEXT NOT NULL,
		updated_at    TEXT NOT NULL
	)`,
	`CREATE TABLE events (
		id                 TEXT PRIMARY KEY,
		title              TEXT NOT NULL,
		type               TEXT NOT NULL,
		date               TEXT NOT NULL,
		time               TEXT NOT NULL DEFAULT '00:00',
		end_time           TEXT,
		end_date           TEXT,
		location           TEXT,
		vks_link           TEXT,
		description        TEXT,
		status             TEXT NOT NULL DEFAULT 'scheduled',
		region_name        TEXT,
		is_multi_day       INTEGER NOT NULL DEFAULT 0,
		booking_request_id TEXT,
		created_at         TEXT NOT NULL,
		updated_at         TEXT NOT NULL
	)`,
	`CREATE TABLE event_responsible (
		event_id  TEXT NOT NULL REFERENCES events(id) ON DELETE CASCADE,
		person_id TEXT NOT NULL,
		name      TEXT NOT NULL,
		position  TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (event_id, person_id)
	)`,
	`CREATE TABLE event_reminders (
		event_id      TEXT NOT NULL REFERENCES events(id) ON DELETE CASCADE,
		seq           INTEGER NOT NULL,
		reminder_text TEXT NOT NULL,
		PRIMARY KEY (event_id, seq)
	)`,
	`CREATE TABLE booking_requests (
		id                    TEXT PRIMARY KEY,
		requested_by_id       TEXT NOT NULL,
		requested_by_name     TEXT NOT NULL,
		requested_by_position TEXT NOT NULL DEFAULT '',
		title                 TEXT NOT NULL,
		date                  TEXT NOT NULL,
		time                  TEXT NOT NULL,
		end_time              TEXT NOT NULL,
		description           TEXT,
		status                TEXT NOT NULL DEFAULT 'pending',
		created_at            TEXT NOT NULL,
		approved_by           TEXT,
		approved_at           TEXT
	)`,
	`CREATE TABLE sessions (
		token      TEXT PRIMARY KEY,
		user_id    TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		expires_at TEXT NOT NULL,
		created_at TEXT NOT NULL,
		revoked_at TEXT
	)`,
	`CREATE INDEX idx_events_date ON events(date)`,
	`CREATE INDEX idx_events_status ON events(status)`,
	`CREATE INDEX idx_bookings_status ON booking_requests(status)`,
}

// Migrate applies any schema versions not yet recorded, each in its own
// transaction so a failure leaves the history consistent.
func (db *DB) Migrate(ctx context.Context) error {
	if _, err := db.conn.ExecContext(ctx,
		`CREATE TABLE IF NOT EXISTS schema_migrations (version INTEGER PRIMARY KEY, applied_at TEXT NOT NULL)`); err != nil {
		return fmt.Errorf("create migration table: %w", err)
	}

	var current int
	if err := db.conn.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&current); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	for version := current + 1; version <= len(migrations); version++ {
		tx, err := db.conn.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", version, err)
		}
		if _, err := tx.ExecContext(ctx, migrations[version-1]); err != nil {
			tx.Rollback()
			return fmt.Errorf("apply migration %d: %w", version, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO schema_migrations (version, applied_at) VALUES (?, datetime('now'))`, version); err != nil {
			tx.Rollback()
			return fmt.Errorf("record migration %d: %w", version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", version, err)
		}
	}
	return nil
}

// mapError translates driver errors into the persistence sentinels.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return persistence.ErrNotFound
	}
	if strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return persistence.ErrDuplicate
	}
	return err
}

func nullString(value string) sql.NullString {
	return sql.NullString{String: value, Valid: value != ""}
}
