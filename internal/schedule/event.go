package schedule

import "time"

// EventType classifies an entry in the deputy's schedule.
type EventType string

const (
	TypeMeeting      EventType = "meeting"
	TypeVKS          EventType = "vks"
	TypeHearing      EventType = "hearing"
	TypeCommittee    EventType = "committee"
	TypeVisit        EventType = "visit"
	TypeReception    EventType = "reception"
	TypeRegionalTrip EventType = "regional-trip"
	TypePCRTest      EventType = "pcr-test"
)

// EventStatus tracks the lifecycle state of an event.
type EventStatus string

const (
	StatusScheduled  EventStatus = "scheduled"
	StatusInProgress EventStatus = "in-progress"
	StatusCompleted  EventStatus = "completed"
	StatusCancelled  EventStatus = "cancelled"
	StatusArchived   EventStatus = "archived"
	StatusPending    EventStatus = "pending"
)

// EventTypes enumerates every valid event type.
var EventTypes = []EventType{
	TypeMeeting, TypeVKS, TypeHearing, TypeCommittee,
	TypeVisit, TypeReception, TypeRegionalTrip, TypePCRTest,
}

// ValidType reports whether t is one of the enumerated event types.
func ValidType(t EventType) bool {
	for _, known := range EventTypes {
		if t == known {
			return true
		}
	}
	return false
}

// ValidStatus reports whether s is one of the enumerated statuses.
func ValidStatus(s EventStatus) bool {
	switch s {
	case StatusScheduled, StatusInProgress, StatusCompleted, StatusCancelled, StatusArchived, StatusPending:
		return true
	}
	return false
}

// Terminal reports whether s is a read-only end state. Events in a terminal
// status live in the archive view and are never re-archived.
func Terminal(s EventStatus) bool {
	return s == StatusCompleted || s == StatusCancelled || s == StatusArchived
}

// Person is an immutable snapshot from the user directory. Events hold
// copies, not references: renaming a user later does not rewrite history.
type Person struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Position string `json:"position"`
	Login    string `json:"login,omitempty"`
	Email    string `json:"email,omitempty"`
}

// Event is a scheduled occurrence. Date fields are ISO "2006-01-02" strings
// and times are zero-padded "15:04" strings, so lexicographic comparison
// matches chronological order.
type Event struct {
	ID               string      `json:"id"`
	Title            string      `json:"title"`
	Type             EventType   `json:"type"`
	Date             string      `json:"date"`
	Time             string      `json:"time"`
	EndTime          string      `json:"endTime,omitempty"`
	EndDate          string      `json:"endDate,omitempty"`
	Location         string      `json:"location,omitempty"`
	VKSLink          string      `json:"vksLink,omitempty"`
	Description      string      `json:"description,omitempty"`
	Responsible      []Person    `json:"responsible"`
	Status           EventStatus `json:"status"`
	CreatedAt        time.Time   `json:"createdAt"`
	Reminders        []string    `json:"reminders,omitempty"`
	RegionName       string      `json:"regionName,omitempty"`
	IsMultiDay       bool        `json:"isMultiDay,omitempty"`
	BookingRequestID string      `json:"bookingRequestId,omitempty"`
}

// BookingStatus tracks the single allowed transition of a booking request.
type BookingStatus string

const (
	BookingPending  BookingStatus = "pending"
	BookingApproved BookingStatus = "approved"
	BookingRejected BookingStatus = "rejected"
)

// BookingRequest is a staff-submitted proposal for a time slot. It moves
// from pending to exactly one of approved or rejected and is immutable
// afterwards.
type BookingRequest struct {
	ID          string        `json:"id"`
	RequestedBy Person        `json:"requestedBy"`
	Title       string        `json:"title"`
	Date        string        `json:"date"`
	Time        string        `json:"time"`
	EndTime     string        `json:"endTime"`
	Description string        `json:"description,omitempty"`
	Status      BookingStatus `json:"status"`
	CreatedAt   time.Time     `json:"createdAt"`
	ApprovedBy  string        `json:"approvedBy,omitempty"`
	ApprovedAt  *time.Time    `json:"approvedAt,omitempty"`
}

// TypeProfile describes which fields apply to an event type and which
// values the type forces. It replaces scattered per-type conditionals.
type TypeProfile struct {
	AllDay      bool
	UsesRegion  bool
	UsesVKSLink bool
	ForcedTime  string
	ForcedEnd   string
}

// ProfileFor returns the field profile for the given event type.
func ProfileFor(t EventType) TypeProfile {
	switch t {
	case TypeRegionalTrip:
		return TypeProfile{AllDay: true, UsesRegion: true, ForcedTime: "00:00", ForcedEnd: "23:59"}
	case TypeVKS:
		return TypeProfile{UsesVKSLink: true}
	default:
		return TypeProfile{}
	}
}

// Normalize applies the forced defaults of the event's type profile and
// derives the multi-day flag from the date span.
func Normalize(e Event) Event {
	profile := ProfileFor(e.Type)
	if profile.ForcedTime != "" {
		e.Time = profile.ForcedTime
	}
	if profile.ForcedEnd != "" {
		e.EndTime = profile.ForcedEnd
	}
	if e.EndDate != "" && e.EndDate != e.Date {
		e.IsMultiDay = true
	}
	return e
}
