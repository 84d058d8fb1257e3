package persistence

import (
	"context"
	"time"

	"github.com/example/deputy-schedule/internal/schedule"
)

// EventRepository stores schedule events together with their responsible
// person snapshots and reminders.
type EventRepository interface {
	CreateEvent(ctx context.Context, event schedule.Event) error
	UpdateEvent(ctx context.Context, event schedule.Event) error
	GetEvent(ctx context.Context, id string) (schedule.Event, error)
	ListEvents(ctx context.Context) ([]schedule.Event, error)
	DeleteEvent(ctx context.Context, id string) error
}

// UserRepository exposes CRUD operations for directory users.
type UserRepository interface {
	CreateUser(ctx context.Context, user User) error
	UpdateUser(ctx context.Context, user User) error
	GetUser(ctx context.Context, id string) (User, error)
	GetUserByLogin(ctx context.Context, login string) (User, error)
	ListUsers(ctx context.Context) ([]User, error)
	DeleteUser(ctx context.Context, id string) error
}

// BookingRepository stores booking requests across their pending ->
// approved/rejected lifecycle.
type BookingRepository interface {
	CreateBooking(ctx context.Context, request schedule.BookingRequest) error
	UpdateBooking(ctx context.Context, request schedule.BookingRequest) error
	GetBooking(ctx context.Context, id string) (schedule.BookingRequest, error)
	ListBookings(ctx context.Context, status schedule.BookingStatus) ([]schedule.BookingRequest, error)
}

// SessionRepository stores authentication session state.
type SessionRepository interface {
	CreateSession(ctx context.Context, session Session) error
	GetSession(ctx context.Context, token string) (Session, error)
	RevokeSession(ctx context.Context, token string, revokedAt time.Time) error
	DeleteExpiredSessions(ctx context.Context, reference time.Time) error
}
