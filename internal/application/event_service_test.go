package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/deputy-schedule/internal/persistence"
	"github.com/example/deputy-schedule/internal/schedule"
)

type eventRepoStub struct {
	events    []schedule.Event
	updates   int
	createErr error
	updateErr error
	listErr   error
}

func (s *eventRepoStub) CreateEvent(ctx context.Context, event schedule.Event) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.events = append(s.events, event)
	return nil
}

func (s *eventRepoStub) UpdateEvent(ctx context.Context, event schedule.Event) error {
	if s.updateErr != nil {
		return s.updateErr
	}
	for i := range s.events {
		if s.events[i].ID == event.ID {
			s.events[i] = event
			s.updates++
			return nil
		}
	}
	return persistence.ErrNotFound
}

func (s *eventRepoStub) GetEvent(ctx context.Context, id string) (schedule.Event, error) {
	for _, event := range s.events {
		if event.ID == id {
			return event, nil
		}
	}
	return schedule.Event{}, persistence.ErrNotFound
}

func (s *eventRepoStub) ListEvents(ctx context.Context) ([]schedule.Event, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	out := make([]schedule.Event, len(s.events))
	copy(out, s.events)
	return out, nil
}

func (s *eventRepoStub) DeleteEvent(ctx context.Context, id string) error {
	for i := range s.events {
		if s.events[i].ID == id {
			s.events = append(s.events[:i], s.events[i+1:]...)
			return nil
		}
	}
	return persistence.ErrNotFound
}

func fixedNow(t *testing.T) func() time.Time {
	t.Helper()
	return func() time.Time {
		return time.Date(2025, 10, 10, 12, 30, 0, 0, time.UTC)
	}
}

func TestEventService_CreateEvent_ValidatesRequiredFields(t *testing.T) {
	t.Parallel()

	svc := NewEventService(&eventRepoStub{}, nil, fixedNow(t))

	_, err := svc.CreateEvent(context.Background(), CreateEventParams{
		Input: EventInput{Type: schedule.TypeMeeting},
	})

	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	for _, field := range []string{"title", "date", "time"} {
		if _, ok := vErr.FieldErrors[field]; !ok {
			t.Fatalf("expected %s validation error, got %v", field, vErr.FieldErrors)
		}
	}
}

func TestEventService_CreateEvent_RequiresRegionForTrips(t *testing.T) {
	t.Parallel()

	svc := NewEventService(&eventRepoStub{}, nil, fixedNow(t))

	_, err := svc.CreateEvent(context.Background(), CreateEventParams{
		Input: EventInput{
			Title: "Поездка в округ",
			Type:  schedule.TypeRegionalTrip,
			Date:  "2025-11-01",
		},
	})

	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if _, ok := vErr.FieldErrors["regionName"]; !ok {
		t.Fatalf("expected regionName validation error, got %v", vErr.FieldErrors)
	}
}

func TestEventService_CreateEvent_ForcesTripToFullDays(t *testing.T) {
	t.Parallel()

	repo := &eventRepoStub{}
	svc := NewEventService(repo, func() string { return "event-1" }, fixedNow(t))

	created, err := svc.CreateEvent(context.Background(), CreateEventParams{
		Input: EventInput{
			Title:      "Рабочая поездка",
			Type:       schedule.TypeRegionalTrip,
			Date:       "2025-11-01",
			EndDate:    "2025-11-03",
			RegionName: "Московская область",
		},
	})
	if err != nil {
		t.Fatalf("CreateEvent failed: %v", err)
	}

	if created.Time != "00:00" || created.EndTime != "23:59" {
		t.Fatalf("expected forced trip times, got %q-%q", created.Time, created.EndTime)
	}
	if !created.IsMultiDay {
		t.Fatalf("expected multi-day flag for %q-%q", created.Date, created.EndDate)
	}
	if len(repo.events) != 1 {
		t.Fatalf("expected one stored event, got %d", len(repo.events))
	}
}

func TestEventService_CreateEvent_RejectsOverlappingTrip(t *testing.T) {
	t.Parallel()

	repo := &eventRepoStub{events: []schedule.Event{
		{ID: "event-1", Title: "Приём граждан", Type: schedule.TypeReception, Date: "2025-11-02", Time: "10:00", Status: schedule.StatusScheduled},
	}}
	svc := NewEventService(repo, func() string { return "event-2" }, fixedNow(t))

	_, err := svc.CreateEvent(context.Background(), CreateEventParams{
		Input: EventInput{
			Title:      "Рабочая поездка",
			Type:       schedule.TypeRegionalTrip,
			Date:       "2025-11-01",
			EndDate:    "2025-11-03",
			RegionName: "Тверская область",
		},
	})

	if !errors.Is(err, ErrTripConflict) {
		t.Fatalf("expected ErrTripConflict, got %v", err)
	}
}

func TestEventService_CreateEvent_IgnoresCancelledEventsForTripCheck(t *testing.T) {
	t.Parallel()

	repo := &eventRepoStub{events: []schedule.Event{
		{ID: "event-1", Title: "Приём граждан", Type: schedule.TypeReception, Date: "2025-11-02", Time: "10:00", Status: schedule.StatusCancelled},
	}}
	svc := NewEventService(repo, func() string { return "event-2" }, fixedNow(t))

	_, err := svc.CreateEvent(context.Background(), CreateEventParams{
		Input: EventInput{
			Title:      "Рабочая поездка",
			Type:       schedule.TypeRegionalTrip,
			Date:       "2025-11-01",
			EndDate:    "2025-11-03",
			RegionName: "Тверская область",
		},
	})
	if err != nil {
		t.Fatalf("expected trip to be created, got %v", err)
	}
}

func TestEventService_UpdateEvent_PreservesBookingReference(t *testing.T) {
	t.Parallel()

	repo := &eventRepoStub{events: []schedule.Event{
		{
			ID:               "event-1",
			Title:            "Встреча с избирателями",
			Type:             schedule.TypeMeeting,
			Date:             "2025-11-05",
			Time:             "14:00",
			Status:           schedule.StatusScheduled,
			BookingRequestID: "booking-9",
			CreatedAt:        time.Date(2025, 10, 1, 8, 0, 0, 0, time.UTC),
		},
	}}
	svc := NewEventService(repo, nil, fixedNow(t))

	updated, err := svc.UpdateEvent(context.Background(), UpdateEventParams{
		EventID: "event-1",
		Input: EventInput{
			Title: "Встреча с избирателями района",
			Type:  schedule.TypeMeeting,
			Date:  "2025-11-05",
			Time:  "15:00",
		},
	})
	if err != nil {
		t.Fatalf("UpdateEvent failed: %v", err)
	}

	if updated.BookingRequestID != "booking-9" {
		t.Fatalf("expected booking reference preserved, got %q", updated.BookingRequestID)
	}
	if !updated.CreatedAt.Equal(time.Date(2025, 10, 1, 8, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected creation time preserved, got %v", updated.CreatedAt)
	}
}

func TestEventService_DeleteEvent_RequiresAdmin(t *testing.T) {
	t.Parallel()

	repo := &eventRepoStub{events: []schedule.Event{{ID: "event-1"}}}
	svc := NewEventService(repo, nil, fixedNow(t))

	if err := svc.DeleteEvent(context.Background(), Principal{UserID: "user-1"}, "event-1"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if err := svc.DeleteEvent(context.Background(), Principal{UserID: "admin-1", IsAdmin: true}, "event-1"); err != nil {
		t.Fatalf("expected admin delete to succeed, got %v", err)
	}
	if len(repo.events) != 0 {
		t.Fatalf("expected event removed, got %d remaining", len(repo.events))
	}
}

func TestEventService_ArchivePastDue_IsIdempotent(t *testing.T) {
	t.Parallel()

	repo := &eventRepoStub{events: []schedule.Event{
		{ID: "event-1", Title: "Совещание", Type: schedule.TypeMeeting, Date: "2025-10-09", Time: "10:00", Status: schedule.StatusScheduled},
		{ID: "event-2", Title: "Приём", Type: schedule.TypeReception, Date: "2025-10-10", Time: "11:00", EndTime: "12:00", Status: schedule.StatusScheduled},
		{ID: "event-3", Title: "ВКС", Type: schedule.TypeVKS, Date: "2025-10-10", Time: "13:00", Status: schedule.StatusScheduled},
		{ID: "event-4", Title: "Отменено", Type: schedule.TypeMeeting, Date: "2025-10-01", Time: "09:00", Status: schedule.StatusCancelled},
	}}
	svc := NewEventService(repo, nil, fixedNow(t))

	archived, err := svc.ArchivePastDue(context.Background())
	if err != nil {
		t.Fatalf("ArchivePastDue failed: %v", err)
	}
	if archived != 2 {
		t.Fatalf("expected 2 archived events, got %d", archived)
	}

	for _, id := range []string{"event-1", "event-2"} {
		event, err := repo.GetEvent(context.Background(), id)
		if err != nil {
			t.Fatalf("GetEvent(%s) failed: %v", id, err)
		}
		if event.Status != schedule.StatusArchived {
			t.Fatalf("expected %s archived, got %s", id, event.Status)
		}
	}
	if event, _ := repo.GetEvent(context.Background(), "event-3"); event.Status != schedule.StatusScheduled {
		t.Fatalf("expected future event untouched, got %s", event.Status)
	}
	if event, _ := repo.GetEvent(context.Background(), "event-4"); event.Status != schedule.StatusCancelled {
		t.Fatalf("expected cancelled event untouched, got %s", event.Status)
	}

	updatesAfterFirst := repo.updates
	archived, err = svc.ArchivePastDue(context.Background())
	if err != nil {
		t.Fatalf("second sweep failed: %v", err)
	}
	if archived != 0 {
		t.Fatalf("expected no events on second sweep, got %d", archived)
	}
	if repo.updates != updatesAfterFirst {
		t.Fatalf("expected no extra updates on second sweep")
	}
}
