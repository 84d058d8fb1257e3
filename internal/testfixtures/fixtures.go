// Package testfixtures provides deterministic builders shared by tests
// across the module: a controllable clock, a sequential id generator and
// canned domain objects.
package testfixtures

import (
	"time"

	"github.com/example/deputy-schedule/internal/application"
	"github.com/example/deputy-schedule/internal/persistence"
	"github.com/example/deputy-schedule/internal/schedule"
)

var referenceTime = time.Date(2025, time.October, 10, 12, 30, 0, 0, time.UTC)

// ReferenceTime returns the shared base instant used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// EventFixture assembles schedule events with sensible defaults.
type EventFixture struct {
	Event schedule.Event
}

// EventOption mutates an EventFixture.
type EventOption func(*EventFixture)

// NewEventFixture returns a scheduled meeting on the reference day.
func NewEventFixture(opts ...EventOption) EventFixture {
	f := EventFixture{Event: schedule.Event{
		ID:        "event-1",
		Title:     "Совещание по повестке",
		Type:      schedule.TypeMeeting,
		Date:      "2025-10-10",
		Time:      "10:00",
		EndTime:   "11:00",
		Status:    schedule.StatusScheduled,
		CreatedAt: referenceTime.Add(-24 * time.Hour),
	}}
	for _, opt := range opts {
		opt(&f)
	}
	return f
}

// WithEventID overrides the event identifier.
func WithEventID(id string) EventOption {
	return func(f *EventFixture) { f.Event.ID = id }
}

// WithEventType sets the event type and applies its forced fields.
func WithEventType(t schedule.EventType) EventOption {
	return func(f *EventFixture) {
		f.Event.Type = t
		f.Event = schedule.Normalize(f.Event)
	}
}

// WithEventDates sets the start and end dates.
func WithEventDates(date, endDate string) EventOption {
	return func(f *EventFixture) {
		f.Event.Date = date
		f.Event.EndDate = endDate
		f.Event = schedule.Normalize(f.Event)
	}
}

// WithEventTimes sets the start and end times.
func WithEventTimes(start, end string) EventOption {
	return func(f *EventFixture) {
		f.Event.Time = start
		f.Event.EndTime = end
	}
}

// WithEventStatus sets the lifecycle status.
func WithEventStatus(status schedule.EventStatus) EventOption {
	return func(f *EventFixture) { f.Event.Status = status }
}

// WithEventRegion sets the region name for trip events.
func WithEventRegion(region string) EventOption {
	return func(f *EventFixture) { f.Event.RegionName = region }
}

// Input converts the fixture into service-layer input.
func (f EventFixture) Input() application.EventInput {
	return application.EventInput{
		Title:       f.Event.Title,
		Type:        f.Event.Type,
		Date:        f.Event.Date,
		Time:        f.Event.Time,
		EndTime:     f.Event.EndTime,
		EndDate:     f.Event.EndDate,
		Location:    f.Event.Location,
		VKSLink:     f.Event.VKSLink,
		Description: f.Event.Description,
		Responsible: append([]schedule.Person(nil), f.Event.Responsible...),
		Status:      f.Event.Status,
		Reminders:   append([]string(nil), f.Event.Reminders...),
		RegionName:  f.Event.RegionName,
	}
}

// UserFixture assembles directory accounts.
type UserFixture struct {
	User     persistence.User
	Password string
}

// UserOption mutates a UserFixture.
type UserOption func(*UserFixture)

// NewUserFixture returns an administrator account.
func NewUserFixture(opts ...UserOption) UserFixture {
	f := UserFixture{
		User: persistence.User{
			ID:        "user-1",
			Login:     "ivanov",
			Email:     "ivanov@example.org",
			FullName:  "Иванов И.И.",
			Position:  "руководитель аппарата",
			Role:      application.RoleAdmin,
			CreatedAt: referenceTime.Add(-30 * 24 * time.Hour),
			UpdatedAt: referenceTime.Add(-30 * 24 * time.Hour),
		},
		Password: "correct horse",
	}
	for _, opt := range opts {
		opt(&f)
	}
	return f
}

// WithUserID overrides the account identifier.
func WithUserID(id string) UserOption {
	return func(f *UserFixture) { f.User.ID = id }
}

// WithUserLogin overrides the login.
func WithUserLogin(login string) UserOption {
	return func(f *UserFixture) { f.User.Login = login }
}

// WithUserRole overrides the role.
func WithUserRole(role string) UserOption {
	return func(f *UserFixture) { f.User.Role = role }
}

// WithUserPasswordHash sets the stored hash directly.
func WithUserPasswordHash(hash string) UserOption {
	return func(f *UserFixture) { f.User.PasswordHash = hash }
}

// Principal converts the fixture into the acting principal form.
func (f UserFixture) Principal() application.Principal {
	return application.Principal{
		UserID:   f.User.ID,
		Name:     f.User.FullName,
		Position: f.User.Position,
		IsAdmin:  f.User.Role == application.RoleAdmin,
	}
}

// Input converts the fixture into service-layer input.
func (f UserFixture) Input() application.UserInput {
	return application.UserInput{
		Login:    f.User.Login,
		Email:    f.User.Email,
		FullName: f.User.FullName,
		Position: f.User.Position,
		Role:     f.User.Role,
		Password: f.Password,
	}
}

// BookingFixture assembles booking requests.
type BookingFixture struct {
	Request schedule.BookingRequest
}

// BookingOption mutates a BookingFixture.
type BookingOption func(*BookingFixture)

// NewBookingFixture returns a pending request from a staff member.
func NewBookingFixture(opts ...BookingOption) BookingFixture {
	f := BookingFixture{Request: schedule.BookingRequest{
		ID:          "booking-1",
		RequestedBy: schedule.Person{ID: "user-2", Name: "Сидорова А.В.", Position: "помощник"},
		Title:       "Обсуждение наказов избирателей",
		Date:        "2025-10-20",
		Time:        "09:30",
		Status:      schedule.BookingPending,
		CreatedAt:   referenceTime.Add(-time.Hour),
	}}
	for _, opt := range opts {
		opt(&f)
	}
	return f
}

// WithBookingID overrides the request identifier.
func WithBookingID(id string) BookingOption {
	return func(f *BookingFixture) { f.Request.ID = id }
}

// WithBookingStatus overrides the request status.
func WithBookingStatus(status schedule.BookingStatus) BookingOption {
	return func(f *BookingFixture) { f.Request.Status = status }
}

// Input converts the fixture into service-layer input.
func (f BookingFixture) Input() application.BookingInput {
	return application.BookingInput{
		Title:       f.Request.Title,
		Date:        f.Request.Date,
		Time:        f.Request.Time,
		EndTime:     f.Request.EndTime,
		Description: f.Request.Description,
	}
}
