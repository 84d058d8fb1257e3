package application

import (
	"context"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/example/deputy-schedule/internal/persistence"
)

// UserRepository captures the persistence interactions needed by the service.
type UserRepository interface {
	CreateUser(ctx context.Context, user persistence.User) error
	UpdateUser(ctx context.Context, user persistence.User) error
	GetUser(ctx context.Context, id string) (persistence.User, error)
	GetUserByLogin(ctx context.Context, login string) (persistence.User, error)
	ListUsers(ctx context.Context) ([]persistence.User, error)
	DeleteUser(ctx context.Context, id string) error
}

// UserService manages the staff directory. Every mutation is restricted to
// administrators.
type UserService struct {
	users       UserRepository
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewUserService wires dependencies for directory operations.
func NewUserService(users UserRepository, idGenerator func() string, now func() time.Time) *UserService {
	return NewUserServiceWithLogger(users, idGenerator, now, nil)
}

// NewUserServiceWithLogger constructs a UserService with a specified logger.
func NewUserServiceWithLogger(users UserRepository, idGenerator func() string, now func() time.Time, logger *slog.Logger) *UserService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &UserService{
		users:       users,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

func (s *UserService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "UserService", operation, attrs...)
}

// CreateUser registers a new directory account with a hashed password.
func (s *UserService) CreateUser(ctx context.Context, principal Principal, input UserInput) (User, error) {
	if s == nil || s.users == nil {
		return User{}, fmt.Errorf("user repository not configured")
	}
	if !principal.IsAdmin {
		return User{}, ErrUnauthorized
	}
	logger := s.loggerWith(ctx, "CreateUser", "login", input.Login)

	if vErr := validateUserInput(input, true); vErr.HasErrors() {
		return User{}, vErr
	}

	hash, err := CreatePasswordHash(input.Password, DefaultArgon2idParams)
	if err != nil {
		logger.ErrorContext(ctx, "failed to hash password", "error", err)
		return User{}, fmt.Errorf("hash password: %w", err)
	}

	now := s.now().UTC()
	record := persistence.User{
		ID:           s.idGenerator(),
		Login:        strings.ToLower(strings.TrimSpace(input.Login)),
		Email:        strings.ToLower(strings.TrimSpace(input.Email)),
		FullName:     strings.TrimSpace(input.FullName),
		Position:     strings.TrimSpace(input.Position),
		Role:         input.Role,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.CreateUser(ctx, record); err != nil {
		logger.ErrorContext(ctx, "failed to create user", "error", err, "error_kind", ErrorKind(err))
		return User{}, mapRepoError(err)
	}
	logger.InfoContext(ctx, "user created", "user_id", record.ID)
	return userFromRecord(record), nil
}

// GetUser returns a single directory account.
func (s *UserService) GetUser(ctx context.Context, id string) (User, error) {
	if s == nil || s.users == nil {
		return User{}, fmt.Errorf("user repository not configured")
	}
	record, err := s.users.GetUser(ctx, id)
	if err != nil {
		return User{}, mapRepoError(err)
	}
	return userFromRecord(record), nil
}

// ListUsers returns every directory account without password material.
func (s *UserService) ListUsers(ctx context.Context) ([]User, error) {
	if s == nil || s.users == nil {
		return nil, fmt.Errorf("user repository not configured")
	}
	records, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, mapRepoError(err)
	}
	users := make([]User, 0, len(records))
	for _, record := range records {
		users = append(users, userFromRecord(record))
	}
	return users, nil
}

// UpdateUser modifies an existing account. An empty password keeps the
// stored hash.
func (s *UserService) UpdateUser(ctx context.Context, principal Principal, id string, input UserInput) (User, error) {
	if s == nil || s.users == nil {
		return User{}, fmt.Errorf("user repository not configured")
	}
	if !principal.IsAdmin {
		return User{}, ErrUnauthorized
	}
	logger := s.loggerWith(ctx, "UpdateUser", "user_id", id)

	existing, err := s.users.GetUser(ctx, id)
	if err != nil {
		return User{}, mapRepoError(err)
	}
	if vErr := validateUserInput(input, false); vErr.HasErrors() {
		return User{}, vErr
	}

	record := existing
	record.Login = strings.ToLower(strings.TrimSpace(input.Login))
	record.Email = strings.ToLower(strings.TrimSpace(input.Email))
	record.FullName = strings.TrimSpace(input.FullName)
	record.Position = strings.TrimSpace(input.Position)
	record.Role = input.Role
	record.UpdatedAt = s.now().UTC()
	if input.Password != "" {
		hash, err := CreatePasswordHash(input.Password, DefaultArgon2idParams)
		if err != nil {
			logger.ErrorContext(ctx, "failed to hash password", "error", err)
			return User{}, fmt.Errorf("hash password: %w", err)
		}
		record.PasswordHash = hash
	}

	if err := s.users.UpdateUser(ctx, record); err != nil {
		logger.ErrorContext(ctx, "failed to update user", "error", err, "error_kind", ErrorKind(err))
		return User{}, mapRepoError(err)
	}
	logger.InfoContext(ctx, "user updated")
	return userFromRecord(record), nil
}

// DeleteUser removes an account. Administrators cannot delete themselves,
// which keeps at least the acting admin in the directory.
func (s *UserService) DeleteUser(ctx context.Context, principal Principal, id string) error {
	if s == nil || s.users == nil {
		return fmt.Errorf("user repository not configured")
	}
	if !principal.IsAdmin {
		return ErrUnauthorized
	}
	if principal.UserID == id {
		vErr := &ValidationError{}
		vErr.add("id", "cannot delete own account")
		return vErr
	}
	logger := s.loggerWith(ctx, "DeleteUser", "user_id", id)

	if err := s.users.DeleteUser(ctx, id); err != nil {
		logger.ErrorContext(ctx, "failed to delete user", "error", err, "error_kind", ErrorKind(err))
		return mapRepoError(err)
	}
	logger.InfoContext(ctx, "user deleted")
	return nil
}

func userFromRecord(record persistence.User) User {
	return User{
		ID:        record.ID,
		Login:     record.Login,
		Email:     record.Email,
		FullName:  record.FullName,
		Position:  record.Position,
		Role:      record.Role,
		CreatedAt: record.CreatedAt,
		UpdatedAt: record.UpdatedAt,
	}
}

func validateUserInput(input UserInput, passwordRequired bool) *ValidationError {
	vErr := &ValidationError{}

	if strings.TrimSpace(input.Login) == "" {
		vErr.add("login", "login is required")
	}
	if strings.TrimSpace(input.FullName) == "" {
		vErr.add("fullName", "full name is required")
	}
	if email := strings.TrimSpace(input.Email); email != "" {
		if _, err := mail.ParseAddress(email); err != nil {
			vErr.add("email", "must be a valid email address")
		}
	}
	switch input.Role {
	case RoleAdmin, RoleUser:
	default:
		vErr.add("role", "unknown role")
	}
	if passwordRequired && input.Password == "" {
		vErr.add("password", "password is required")
	}
	if input.Password != "" && len(input.Password) < 8 {
		vErr.add("password", "password must be at least 8 characters")
	}
	return vErr
}
