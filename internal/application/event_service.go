package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/example/deputy-schedule/internal/persistence"
	"github.com/example/deputy-schedule/internal/schedule"
)

// EventRepository captures the persistence interactions needed by the service.
type EventRepository interface {
	CreateEvent(ctx context.Context, event schedule.Event) error
	UpdateEvent(ctx context.Context, event schedule.Event) error
	GetEvent(ctx context.Context, id string) (schedule.Event, error)
	ListEvents(ctx context.Context) ([]schedule.Event, error)
	DeleteEvent(ctx context.Context, id string) error
}

// EventService orchestrates validation and persistence for schedule events.
type EventService struct {
	events      EventRepository
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewEventService wires dependencies for event operations.
func NewEventService(events EventRepository, idGenerator func() string, now func() time.Time) *EventService {
	return NewEventServiceWithLogger(events, idGenerator, now, nil)
}

// NewEventServiceWithLogger constructs an EventService with a specified logger.
func NewEventServiceWithLogger(events EventRepository, idGenerator func() string, now func() time.Time, logger *slog.Logger) *EventService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &EventService{
		events:      events,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

func (s *EventService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "EventService", operation, attrs...)
}

// CreateEvent validates the draft, applies the type profile defaults, runs
// the regional-trip range check and persists the result.
func (s *EventService) CreateEvent(ctx context.Context, params CreateEventParams) (schedule.Event, error) {
	if s == nil || s.events == nil {
		return schedule.Event{}, fmt.Errorf("event repository not configured")
	}
	logger := s.loggerWith(ctx, "CreateEvent", "title", params.Input.Title, "type", params.Input.Type)

	input := params.Input
	if input.Status == "" {
		input.Status = schedule.StatusScheduled
	}
	if vErr := validateEventInput(input); vErr.HasErrors() {
		return schedule.Event{}, vErr
	}

	draft := schedule.Normalize(eventFromInput(input))
	draft.ID = s.idGenerator()
	draft.CreatedAt = s.now().UTC()

	if err := s.checkTripConflicts(ctx, draft, ""); err != nil {
		return schedule.Event{}, err
	}

	if err := s.events.CreateEvent(ctx, draft); err != nil {
		logger.ErrorContext(ctx, "failed to create event", "error", err, "error_kind", ErrorKind(err))
		return schedule.Event{}, mapRepoError(err)
	}
	logger.InfoContext(ctx, "event created", "event_id", draft.ID)
	return draft, nil
}

// GetEvent returns a single event by id.
func (s *EventService) GetEvent(ctx context.Context, id string) (schedule.Event, error) {
	if s == nil || s.events == nil {
		return schedule.Event{}, fmt.Errorf("event repository not configured")
	}
	event, err := s.events.GetEvent(ctx, id)
	if err != nil {
		return schedule.Event{}, mapRepoError(err)
	}
	return event, nil
}

// ListEvents returns every stored event.
func (s *EventService) ListEvents(ctx context.Context) ([]schedule.Event, error) {
	if s == nil || s.events == nil {
		return nil, fmt.Errorf("event repository not configured")
	}
	events, err := s.events.ListEvents(ctx)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return events, nil
}

// UpdateEvent applies the input over the stored event, preserving creation
// metadata and the booking back-reference.
func (s *EventService) UpdateEvent(ctx context.Context, params UpdateEventParams) (schedule.Event, error) {
	if s == nil || s.events == nil {
		return schedule.Event{}, fmt.Errorf("event repository not configured")
	}
	logger := s.loggerWith(ctx, "UpdateEvent", "event_id", params.EventID)

	existing, err := s.events.GetEvent(ctx, params.EventID)
	if err != nil {
		return schedule.Event{}, mapRepoError(err)
	}

	input := params.Input
	if input.Status == "" {
		input.Status = existing.Status
	}
	if vErr := validateEventInput(input); vErr.HasErrors() {
		return schedule.Event{}, vErr
	}

	updated := schedule.Normalize(eventFromInput(input))
	updated.ID = existing.ID
	updated.CreatedAt = existing.CreatedAt
	updated.BookingRequestID = existing.BookingRequestID

	if err := s.checkTripConflicts(ctx, updated, existing.ID); err != nil {
		return schedule.Event{}, err
	}

	if err := s.events.UpdateEvent(ctx, updated); err != nil {
		logger.ErrorContext(ctx, "failed to update event", "error", err, "error_kind", ErrorKind(err))
		return schedule.Event{}, mapRepoError(err)
	}
	logger.InfoContext(ctx, "event updated")
	return updated, nil
}

// DeleteEvent removes an event. Only administrators may delete.
func (s *EventService) DeleteEvent(ctx context.Context, principal Principal, id string) error {
	if s == nil || s.events == nil {
		return fmt.Errorf("event repository not configured")
	}
	if !principal.IsAdmin {
		return ErrUnauthorized
	}
	logger := s.loggerWith(ctx, "DeleteEvent", "event_id", id)

	if err := s.events.DeleteEvent(ctx, id); err != nil {
		logger.ErrorContext(ctx, "failed to delete event", "error", err, "error_kind", ErrorKind(err))
		return mapRepoError(err)
	}
	logger.InfoContext(ctx, "event deleted")
	return nil
}

// ArchivePastDue transitions every non-terminal event whose effective end
// has passed to the archived status. Events already in a terminal status
// are never touched, so repeated sweeps issue no extra updates. Per-event
// failures are logged and skipped; the next sweep retries naturally.
func (s *EventService) ArchivePastDue(ctx context.Context) (int, error) {
	if s == nil || s.events == nil {
		return 0, fmt.Errorf("event repository not configured")
	}
	logger := s.loggerWith(ctx, "ArchivePastDue")

	events, err := s.events.ListEvents(ctx)
	if err != nil {
		return 0, mapRepoError(err)
	}

	now := s.now()
	nowDate := schedule.DateString(now)
	nowTime := now.Format("15:04")

	archived := 0
	for _, event := range events {
		if schedule.Terminal(event.Status) {
			continue
		}
		if !schedule.PastDue(event, nowDate, nowTime) {
			continue
		}
		event.Status = schedule.StatusArchived
		if err := s.events.UpdateEvent(ctx, event); err != nil {
			logger.ErrorContext(ctx, "failed to archive event", "event_id", event.ID, "error", err)
			continue
		}
		archived++
	}
	if archived > 0 {
		logger.InfoContext(ctx, "events archived", "count", archived)
	}
	return archived, nil
}

// checkTripConflicts rejects a regional trip whose inclusive day range
// touches any other non-terminal event. Ordinary events are deliberately
// not cross-checked, matching the observed behavior.
func (s *EventService) checkTripConflicts(ctx context.Context, candidate schedule.Event, ignoreID string) error {
	if candidate.Type != schedule.TypeRegionalTrip {
		return nil
	}
	events, err := s.events.ListEvents(ctx)
	if err != nil {
		return mapRepoError(err)
	}
	if conflicts := schedule.TripRangeConflicts(events, candidate.Date, candidate.EndDate, ignoreID); len(conflicts) > 0 {
		return ErrTripConflict
	}
	return nil
}

func eventFromInput(input EventInput) schedule.Event {
	return schedule.Event{
		Title:       strings.TrimSpace(input.Title),
		Type:        input.Type,
		Date:        input.Date,
		Time:        input.Time,
		EndTime:     input.EndTime,
		EndDate:     input.EndDate,
		Location:    strings.TrimSpace(input.Location),
		VKSLink:     strings.TrimSpace(input.VKSLink),
		Description: input.Description,
		Responsible: append([]schedule.Person(nil), input.Responsible...),
		Status:      input.Status,
		Reminders:   append([]string(nil), input.Reminders...),
		RegionName:  strings.TrimSpace(input.RegionName),
	}
}

func validateEventInput(input EventInput) *ValidationError {
	vErr := &ValidationError{}

	if strings.TrimSpace(input.Title) == "" {
		vErr.add("title", "title is required")
	}
	if !schedule.ValidType(input.Type) {
		vErr.add("type", "unknown event type")
	}
	if !schedule.ValidStatus(input.Status) {
		vErr.add("status", "unknown event status")
	}

	if input.Date == "" {
		vErr.add("date", "date is required")
	} else if !validISODate(input.Date) {
		vErr.add("date", "date must be formatted YYYY-MM-DD")
	}
	if input.EndDate != "" {
		if !validISODate(input.EndDate) {
			vErr.add("endDate", "end date must be formatted YYYY-MM-DD")
		} else if input.Date != "" && input.EndDate < input.Date {
			vErr.add("endDate", "end date must not precede start date")
		}
	}

	profile := schedule.ProfileFor(input.Type)
	if !profile.AllDay {
		if input.Time == "" {
			vErr.add("time", "time is required")
		} else if !validClock(input.Time) {
			vErr.add("time", "time must be formatted HH:MM")
		}
		if input.EndTime != "" && !validClock(input.EndTime) {
			vErr.add("endTime", "end time must be formatted HH:MM")
		}
	}
	if profile.UsesRegion && strings.TrimSpace(input.RegionName) == "" {
		vErr.add("regionName", "region name is required")
	}
	if input.VKSLink != "" {
		if _, err := url.ParseRequestURI(strings.TrimSpace(input.VKSLink)); err != nil {
			vErr.add("vksLink", "must be a valid URL")
		}
	}
	return vErr
}

func validISODate(value string) bool {
	_, err := time.Parse("2006-01-02", value)
	return err == nil
}

func validClock(value string) bool {
	_, err := time.Parse("15:04", value)
	return err == nil
}

func mapRepoError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, persistence.ErrNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, persistence.ErrDuplicate) {
		return ErrAlreadyExists
	}
	return err
}
