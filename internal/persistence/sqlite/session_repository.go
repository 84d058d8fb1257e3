package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/deputy-schedule/internal/persistence"
)

// SessionRepository implements persistence.SessionRepository.
type SessionRepository struct {
	db *DB
}

// NewSessionRepository wraps the shared database handle.
func NewSessionRepository(db *DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// CreateSession stores a newly issued token.
func (r *SessionRepository) CreateSession(ctx context.Context, session persistence.Session) error {
	_, err := r.db.conn.ExecContext(ctx, `
		INSERT INTO sessions (token, user_id, expires_at, created_at, revoked_at)
		VALUES (?, ?, ?, ?, ?)`,
		session.Token, session.UserID,
		session.ExpiresAt.UTC().Format(time.RFC3339),
		session.CreatedAt.UTC().Format(time.RFC3339),
		nullTime(session.RevokedAt),
	)
	return mapError(err)
}

// GetSession retrieves a session by token.
func (r *SessionRepository) GetSession(ctx context.Context, token string) (persistence.Session, error) {
	var (
		session              persistence.Session
		expiresAt, createdAt string
		revokedAt            sql.NullString
	)
	err := r.db.conn.QueryRowContext(ctx, `
		SELECT token, user_id, expires_at, created_at, revoked_at FROM sessions WHERE token = ?`,
		token).Scan(&session.Token, &session.UserID, &expiresAt, &createdAt, &revokedAt)
	if err != nil {
		return persistence.Session{}, mapError(err)
	}
	if ts, err := time.Parse(time.RFC3339, expiresAt); err == nil {
		session.ExpiresAt = ts
	}
	if ts, err := time.Parse(time.RFC3339, createdAt); err == nil {
		session.CreatedAt = ts
	}
	if revokedAt.Valid {
		if ts, err := time.Parse(time.RFC3339, revokedAt.String); err == nil {
			session.RevokedAt = &ts
		}
	}
	return session, nil
}

// RevokeSession marks the token revoked.
func (r *SessionRepository) RevokeSession(ctx context.Context, token string, revokedAt time.Time) error {
	result, err := r.db.conn.ExecContext(ctx,
		`UPDATE sessions SET revoked_at = ? WHERE token = ? AND revoked_at IS NULL`,
		revokedAt.UTC().Format(time.RFC3339), token)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

// DeleteExpiredSessions prunes tokens past their expiry.
func (r *SessionRepository) DeleteExpiredSessions(ctx context.Context, reference time.Time) error {
	_, err := r.db.conn.ExecContext(ctx,
		`DELETE FROM sessions WHERE expires_at <= ?`, reference.UTC().Format(time.RFC3339))
	return err
}
