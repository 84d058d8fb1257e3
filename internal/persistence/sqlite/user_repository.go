package sqlite

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/example/deputy-schedule/internal/persistence"
)

// UserRepository implements persistence.UserRepository.
type UserRepository struct {
	db *DB
}

// NewUserRepository wraps the shared database handle.
func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, login, email, full_name, position, role, password_hash, created_at, updated_at`

// CreateUser inserts a new directory user.
func (r *UserRepository) CreateUser(ctx context.Context, user persistence.User) error {
	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	_, err := r.db.conn.ExecContext(ctx, `
		INSERT INTO users (id, login, email, full_name, position, role, password_hash, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID, strings.ToLower(user.Login), strings.ToLower(user.Email),
		user.FullName, user.Position, user.Role, user.PasswordHash,
		user.CreatedAt.Format(time.RFC3339), user.UpdatedAt.Format(time.RFC3339),
	)
	return mapError(err)
}

// UpdateUser rewrites an existing user row.
func (r *UserRepository) UpdateUser(ctx context.Context, user persistence.User) error {
	result, err := r.db.conn.ExecContext(ctx, `
		UPDATE users
		SET login = ?, email = ?, full_name = ?, position = ?, role = ?, password_hash = ?, updated_at = ?
		WHERE id = ?`,
		strings.ToLower(user.Login), strings.ToLower(user.Email),
		user.FullName, user.Position, user.Role, user.PasswordHash,
		time.Now().UTC().Format(time.RFC3339), user.ID,
	)
	if err != nil {
		return mapError(err)
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

// GetUser retrieves a user by id.
func (r *UserRepository) GetUser(ctx context.Context, id string) (persistence.User, error) {
	row := r.db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return scanUser(row)
}

// GetUserByLogin retrieves a user by login name.
func (r *UserRepository) GetUserByLogin(ctx context.Context, login string) (persistence.User, error) {
	row := r.db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE login = ?`, strings.ToLower(login))
	return scanUser(row)
}

// ListUsers returns all users ordered by full name.
func (r *UserRepository) ListUsers(ctx context.Context) ([]persistence.User, error) {
	rows, err := r.db.conn.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY full_name, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []persistence.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// DeleteUser removes a user; their sessions cascade.
func (r *UserRepository) DeleteUser(ctx context.Context, id string) error {
	result, err := r.db.conn.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
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

func scanUser(row rowScanner) (persistence.User, error) {
	var (
		user                 persistence.User
		createdAt, updatedAt string
	)
	err := row.Scan(&user.ID, &user.Login, &user.Email, &user.FullName,
		&user.Position, &user.Role, &user.PasswordHash, &createdAt, &updatedAt)
	if err != nil {
		return persistence.User{}, mapError(err)
	}
	if ts, err := time.Parse(time.RFC3339, createdAt); err == nil {
		user.CreatedAt = ts
	}
	if ts, err := time.Parse(time.RFC3339, updatedAt); err == nil {
		user.UpdatedAt = ts
	}
	return user, nil
}
