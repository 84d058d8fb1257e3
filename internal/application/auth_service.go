package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/deputy-schedule/internal/persistence"
)

// DefaultSessionTTL matches the seven day token lifetime issued to the
// frontend.
const DefaultSessionTTL = 7 * 24 * time.Hour

// SessionRepository captures the persistence interactions needed by the
// service.
type SessionRepository interface {
	CreateSession(ctx context.Context, session persistence.Session) error
	GetSession(ctx context.Context, token string) (persistence.Session, error)
	RevokeSession(ctx context.Context, token string, revokedAt time.Time) error
	DeleteExpiredSessions(ctx context.Context, reference time.Time) error
}

// AuthService issues and verifies opaque session tokens.
type AuthService struct {
	users          UserRepository
	sessions       SessionRepository
	tokenGenerator func() string
	now            func() time.Time
	sessionTTL     time.Duration
	logger         *slog.Logger
}

// NewAuthService wires dependencies for authentication.
func NewAuthService(users UserRepository, sessions SessionRepository, tokenGenerator func() string, now func() time.Time) *AuthService {
	return NewAuthServiceWithLogger(users, sessions, tokenGenerator, now, nil)
}

// NewAuthServiceWithLogger constructs an AuthService with a specified logger.
func NewAuthServiceWithLogger(users UserRepository, sessions SessionRepository, tokenGenerator func() string, now func() time.Time, logger *slog.Logger) *AuthService {
	if tokenGenerator == nil {
		tokenGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &AuthService{
		users:          users,
		sessions:       sessions,
		tokenGenerator: tokenGenerator,
		now:            now,
		sessionTTL:     DefaultSessionTTL,
		logger:         defaultLogger(logger),
	}
}

// SetSessionTTL overrides the issued token lifetime.
func (s *AuthService) SetSessionTTL(ttl time.Duration) {
	if ttl > 0 {
		s.sessionTTL = ttl
	}
}

func (s *AuthService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "AuthService", operation, attrs...)
}

// Login checks credentials and issues a fresh session token. Unknown
// logins and wrong passwords are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, params LoginParams) (result LoginResult, err error) {
	if s == nil || s.users == nil || s.sessions == nil {
		return LoginResult{}, fmt.Errorf("auth service not configured")
	}
	logger := s.loggerWith(ctx, "Login", "login", params.Login)
	defer func() {
		if err != nil {
			logger.WarnContext(ctx, "login rejected", "error_kind", ErrorKind(err))
		}
	}()

	login := strings.ToLower(strings.TrimSpace(params.Login))
	if login == "" || params.Password == "" {
		return LoginResult{}, ErrInvalidCredentials
	}

	record, err := s.users.GetUserByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return LoginResult{}, ErrInvalidCredentials
		}
		return LoginResult{}, mapRepoError(err)
	}
	if err := VerifyPassword(record.PasswordHash, params.Password); err != nil {
		return LoginResult{}, err
	}

	now := s.now().UTC()
	session := persistence.Session{
		Token:     s.tokenGenerator(),
		UserID:    record.ID,
		ExpiresAt: now.Add(s.sessionTTL),
		CreatedAt: now,
	}
	if err := s.sessions.CreateSession(ctx, session); err != nil {
		logger.ErrorContext(ctx, "failed to create session", "error", err)
		return LoginResult{}, mapRepoError(err)
	}
	logger.InfoContext(ctx, "login succeeded", "user_id", record.ID)
	return LoginResult{Token: session.Token, User: userFromRecord(record)}, nil
}

// Verify resolves a session token to its user. Expired and revoked
// sessions fail with dedicated sentinels so the transport can distinguish
// them in logs while still answering 401.
func (s *AuthService) Verify(ctx context.Context, token string) (User, error) {
	if s == nil || s.users == nil || s.sessions == nil {
		return User{}, fmt.Errorf("auth service not configured")
	}
	if token == "" {
		return User{}, ErrUnauthorized
	}

	session, err := s.sessions.GetSession(ctx, token)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return User{}, ErrUnauthorized
		}
		return User{}, mapRepoError(err)
	}
	if session.RevokedAt != nil {
		return User{}, ErrSessionRevoked
	}
	if !s.now().UTC().Before(session.ExpiresAt) {
		return User{}, ErrSessionExpired
	}

	record, err := s.users.GetUser(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return User{}, ErrUnauthorized
		}
		return User{}, mapRepoError(err)
	}
	return userFromRecord(record), nil
}

// Logout revokes the session token. Revoking an unknown token is not an
// error.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if s == nil || s.sessions == nil {
		return fmt.Errorf("auth service not configured")
	}
	if token == "" {
		return nil
	}
	if err := s.sessions.RevokeSession(ctx, token, s.now().UTC()); err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return nil
		}
		return mapRepoError(err)
	}
	return nil
}

// PurgeExpiredSessions deletes sessions past their expiry. The archival
// sweep runs it on every tick.
func (s *AuthService) PurgeExpiredSessions(ctx context.Context) error {
	if s == nil || s.sessions == nil {
		return fmt.Errorf("auth service not configured")
	}
	if err := s.sessions.DeleteExpiredSessions(ctx, s.now().UTC()); err != nil {
		return mapRepoError(err)
	}
	return nil
}
