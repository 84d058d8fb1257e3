package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/deputy-schedule/internal/schedule"
)

// BookingRepository captures the persistence interactions needed by the
// service.
type BookingRepository interface {
	CreateBooking(ctx context.Context, request schedule.BookingRequest) error
	UpdateBooking(ctx context.Context, request schedule.BookingRequest) error
	GetBooking(ctx context.Context, id string) (schedule.BookingRequest, error)
	ListBookings(ctx context.Context, status schedule.BookingStatus) ([]schedule.BookingRequest, error)
}

// BookingService manages staff booking requests and their conversion into
// schedule events upon approval.
type BookingService struct {
	bookings    BookingRepository
	events      EventRepository
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewBookingService wires dependencies for booking operations.
func NewBookingService(bookings BookingRepository, events EventRepository, idGenerator func() string, now func() time.Time) *BookingService {
	return NewBookingServiceWithLogger(bookings, events, idGenerator, now, nil)
}

// NewBookingServiceWithLogger constructs a BookingService with a specified
// logger.
func NewBookingServiceWithLogger(bookings BookingRepository, events EventRepository, idGenerator func() string, now func() time.Time, logger *slog.Logger) *BookingService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &BookingService{
		bookings:    bookings,
		events:      events,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

func (s *BookingService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "BookingService", operation, attrs...)
}

// Submit records a new pending booking request on behalf of the caller.
func (s *BookingService) Submit(ctx context.Context, principal Principal, input BookingInput) (schedule.BookingRequest, error) {
	if s == nil || s.bookings == nil {
		return schedule.BookingRequest{}, fmt.Errorf("booking repository not configured")
	}
	logger := s.loggerWith(ctx, "Submit", "title", input.Title)

	if vErr := validateBookingInput(input); vErr.HasErrors() {
		return schedule.BookingRequest{}, vErr
	}

	request := schedule.BookingRequest{
		ID:          s.idGenerator(),
		RequestedBy: principal.Snapshot(),
		Title:       strings.TrimSpace(input.Title),
		Date:        input.Date,
		Time:        input.Time,
		EndTime:     input.EndTime,
		Description: input.Description,
		Status:      schedule.BookingPending,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.bookings.CreateBooking(ctx, request); err != nil {
		logger.ErrorContext(ctx, "failed to create booking request", "error", err, "error_kind", ErrorKind(err))
		return schedule.BookingRequest{}, mapRepoError(err)
	}
	logger.InfoContext(ctx, "booking request submitted", "request_id", request.ID)
	return request, nil
}

// ListPending returns requests awaiting a decision.
func (s *BookingService) ListPending(ctx context.Context) ([]schedule.BookingRequest, error) {
	if s == nil || s.bookings == nil {
		return nil, fmt.Errorf("booking repository not configured")
	}
	requests, err := s.bookings.ListBookings(ctx, schedule.BookingPending)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return requests, nil
}

// Approve turns a pending request into a scheduled meeting. The created
// event carries the requester as the responsible person and a reference
// back to the request. If the event cannot be stored the request stays
// pending so the decision can be retried.
func (s *BookingService) Approve(ctx context.Context, principal Principal, requestID string) (schedule.Event, error) {
	if s == nil || s.bookings == nil || s.events == nil {
		return schedule.Event{}, fmt.Errorf("booking service not configured")
	}
	if !principal.IsAdmin {
		return schedule.Event{}, ErrUnauthorized
	}
	logger := s.loggerWith(ctx, "Approve", "request_id", requestID)

	request, err := s.bookings.GetBooking(ctx, requestID)
	if err != nil {
		return schedule.Event{}, mapRepoError(err)
	}
	if request.Status != schedule.BookingPending {
		return schedule.Event{}, ErrRequestDecided
	}

	event := schedule.Normalize(schedule.Event{
		ID:               s.idGenerator(),
		Title:            request.Title,
		Type:             schedule.TypeMeeting,
		Date:             request.Date,
		Time:             request.Time,
		EndTime:          request.EndTime,
		Description:      request.Description,
		Responsible:      []schedule.Person{request.RequestedBy},
		Status:           schedule.StatusScheduled,
		BookingRequestID: request.ID,
		CreatedAt:        s.now().UTC(),
	})
	if err := s.events.CreateEvent(ctx, event); err != nil {
		logger.ErrorContext(ctx, "failed to create event for approved request", "error", err)
		return schedule.Event{}, mapRepoError(err)
	}

	decidedAt := s.now().UTC()
	request.Status = schedule.BookingApproved
	request.ApprovedBy = principal.Name
	request.ApprovedAt = &decidedAt
	if err := s.bookings.UpdateBooking(ctx, request); err != nil {
		logger.ErrorContext(ctx, "failed to mark request approved", "error", err, "event_id", event.ID)
		return schedule.Event{}, mapRepoError(err)
	}
	logger.InfoContext(ctx, "booking request approved", "event_id", event.ID)
	return event, nil
}

// Reject marks a pending request as declined without creating an event.
func (s *BookingService) Reject(ctx context.Context, principal Principal, requestID string) (schedule.BookingRequest, error) {
	if s == nil || s.bookings == nil {
		return schedule.BookingRequest{}, fmt.Errorf("booking repository not configured")
	}
	if !principal.IsAdmin {
		return schedule.BookingRequest{}, ErrUnauthorized
	}
	logger := s.loggerWith(ctx, "Reject", "request_id", requestID)

	request, err := s.bookings.GetBooking(ctx, requestID)
	if err != nil {
		return schedule.BookingRequest{}, mapRepoError(err)
	}
	if request.Status != schedule.BookingPending {
		return schedule.BookingRequest{}, ErrRequestDecided
	}

	request.Status = schedule.BookingRejected
	if err := s.bookings.UpdateBooking(ctx, request); err != nil {
		logger.ErrorContext(ctx, "failed to mark request rejected", "error", err)
		return schedule.BookingRequest{}, mapRepoError(err)
	}
	logger.InfoContext(ctx, "booking request rejected")
	return request, nil
}

func validateBookingInput(input BookingInput) *ValidationError {
	vErr := &ValidationError{}

	if strings.TrimSpace(input.Title) == "" {
		vErr.add("title", "title is required")
	}
	if input.Date == "" {
		vErr.add("date", "date is required")
	} else if !validISODate(input.Date) {
		vErr.add("date", "date must be formatted YYYY-MM-DD")
	}
	if input.Time == "" {
		vErr.add("time", "time is required")
	} else if !validClock(input.Time) {
		vErr.add("time", "time must be formatted HH:MM")
	}
	if input.EndTime != "" && !validClock(input.EndTime) {
		vErr.add("endTime", "end time must be formatted HH:MM")
	}
	return vErr
}
