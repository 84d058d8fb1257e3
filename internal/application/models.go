package application

import (
	"time"

	"github.com/example/deputy-schedule/internal/schedule"
)

// Principal represents the authenticated user invoking a service method.
type Principal struct {
	UserID   string
	Name     string
	Position string
	IsAdmin  bool
}

// Snapshot converts the principal into the denormalized person form stored
// inside events and booking requests.
func (p Principal) Snapshot() schedule.Person {
	return schedule.Person{ID: p.UserID, Name: p.Name, Position: p.Position}
}

// EventInput captures caller provided event fields.
type EventInput struct {
	Title       string
	Type        schedule.EventType
	Date        string
	Time        string
	EndTime     string
	EndDate     string
	Location    string
	VKSLink     string
	Description string
	Responsible []schedule.Person
	Status      schedule.EventStatus
	Reminders   []string
	RegionName  string
}

// CreateEventParams wraps the data required to create an event.
type CreateEventParams struct {
	Principal Principal
	Input     EventInput
}

// UpdateEventParams wraps the data required to update an existing event.
type UpdateEventParams struct {
	Principal Principal
	EventID   string
	Input     EventInput
}

// UserInput captures caller provided directory user attributes.
type UserInput struct {
	Login    string
	Email    string
	FullName string
	Position string
	Role     string
	Password string
}

// User is the directory account exposed by the application services.
type User struct {
	ID        string
	Login     string
	Email     string
	FullName  string
	Position  string
	Role      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsAdmin reports whether the account carries the administrator role.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Snapshot converts the user into the denormalized person form.
func (u User) Snapshot() schedule.Person {
	return schedule.Person{ID: u.ID, Name: u.FullName, Position: u.Position, Login: u.Login, Email: u.Email}
}

// Directory roles. The original system distinguishes administrators, who
// manage the schedule, from ordinary staff, who submit booking requests.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// BookingInput captures a staff member's proposed time slot.
type BookingInput struct {
	Title       string
	Date        string
	Time        string
	EndTime     string
	Description string
}

// LoginParams captures the data required to authenticate a user.
type LoginParams struct {
	Login    string
	Password string
}

// LoginResult captures the outcome of a successful login.
type LoginResult struct {
	Token string
	User  User
}
