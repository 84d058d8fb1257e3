package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/deputy-schedule/internal/persistence"
	"github.com/example/deputy-schedule/internal/schedule"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestMigrate_Idempotent(t *testing.T) {
	db := openTestDB(t)
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("second migrate: %v", err)
	}
}

func TestEventRepository_RoundTrip(t *testing.T) {
	db := openTestDB(t)
	repo := NewEventRepository(db)
	ctx := context.Background()

	event := schedule.Event{
		ID:       "evt-1",
		Title:    "Заседание комитета",
		Type:     schedule.TypeCommittee,
		Date:     "2025-10-10",
		Time:     "11:00",
		EndTime:  "13:00",
		Location: "Зал 830",
		Status:   schedule.StatusScheduled,
		Responsible: []schedule.Person{
			{ID: "p-1", Name: "Иванов И.И.", Position: "Помощник"},
		},
		Reminders: []string{"за день", "за час"},
		CreatedAt: time.Date(2025, 10, 1, 9, 0, 0, 0, time.UTC),
	}

	if err := repo.CreateEvent(ctx, event); err != nil {
		t.Fatalf("create: %v", err)
	}

	stored, err := repo.GetEvent(ctx, "evt-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.Title != event.Title || stored.Type != event.Type || stored.Date != event.Date {
		t.Errorf("stored event differs: %+v", stored)
	}
	if len(stored.Responsible) != 1 || stored.Responsible[0].Name != "Иванов И.И." {
		t.Errorf("responsible snapshot lost: %+v", stored.Responsible)
	}
	if len(stored.Reminders) != 2 || stored.Reminders[0] != "за день" {
		t.Errorf("reminders lost or reordered: %v", stored.Reminders)
	}

	stored.Status = schedule.StatusArchived
	if err := repo.UpdateEvent(ctx, stored); err != nil {
		t.Fatalf("update: %v", err)
	}
	updated, err := repo.GetEvent(ctx, "evt-1")
	if err != nil {
		t.Fatalf("get after update: %v", err)
	}
	if updated.Status != schedule.StatusArchived {
		t.Errorf("status = %s, want archived", updated.Status)
	}

	if err := repo.DeleteEvent(ctx, "evt-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.GetEvent(ctx, "evt-1"); !errors.Is(err, persistence.ErrNotFound) {
		t.Errorf("get after delete: %v, want ErrNotFound", err)
	}
}

func TestUserRepository_UniqueLogin(t *testing.T) {
	db := openTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user := persistence.User{
		ID:           "u-1",
		Login:        "ivanov",
		Email:        "ivanov@example.org",
		FullName:     "Иванов Иван",
		Role:         "admin",
		PasswordHash: "hash",
	}
	if err := repo.CreateUser(ctx, user); err != nil {
		t.Fatalf("create: %v", err)
	}

	dup := user
	dup.ID = "u-2"
	dup.Email = "other@example.org"
	if err := repo.CreateUser(ctx, dup); !errors.Is(err, persistence.ErrDuplicate) {
		t.Errorf("duplicate login: %v, want ErrDuplicate", err)
	}

	stored, err := repo.GetUserByLogin(ctx, "IVANOV")
	if err != nil {
		t.Fatalf("get by login: %v", err)
	}
	if stored.ID != "u-1" {
		t.Errorf("login lookup returned %s", stored.ID)
	}
}

func TestBookingRepository_StatusFilter(t *testing.T) {
	db := openTestDB(t)
	repo := NewBookingRepository(db)
	ctx := context.Background()

	requester := schedule.Person{ID: "p-1", Name: "Петров", Position: "Советник"}
	for i, status := range []schedule.BookingStatus{schedule.BookingPending, schedule.BookingApproved, schedule.BookingPending} {
		request := schedule.BookingRequest{
			ID:          "req-" + string(rune('a'+i)),
			RequestedBy: requester,
			Title:       "Планерка",
			Date:        "2025-10-12",
			Time:        "10:00",
			EndTime:     "11:00",
			Status:      status,
			CreatedAt:   time.Date(2025, 10, 1, 9, i, 0, 0, time.UTC),
		}
		if err := repo.CreateBooking(ctx, request); err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
	}

	pending, err := repo.ListBookings(ctx, schedule.BookingPending)
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("expected 2 pending requests, got %d", len(pending))
	}

	approvedAt := time.Date(2025, 10, 2, 12, 0, 0, 0, time.UTC)
	decided := pending[0]
	decided.Status = schedule.BookingApproved
	decided.ApprovedBy = "Иванов Иван"
	decided.ApprovedAt = &approvedAt
	if err := repo.UpdateBooking(ctx, decided); err != nil {
		t.Fatalf("update: %v", err)
	}

	stored, err := repo.GetBooking(ctx, decided.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.Status != schedule.BookingApproved || stored.ApprovedBy == "" || stored.ApprovedAt == nil {
		t.Errorf("approval fields not persisted: %+v", stored)
	}
}

func TestSessionRepository_Lifecycle(t *testing.T) {
	db := openTestDB(t)
	users := NewUserRepository(db)
	repo := NewSessionRepository(db)
	ctx := context.Background()

	if err := users.CreateUser(ctx, persistence.User{
		ID: "u-1", Login: "ivanov", Email: "ivanov@example.org",
		FullName: "Иванов", PasswordHash: "hash",
	}); err != nil {
		t.Fatalf("create user: %v", err)
	}

	now := time.Date(2025, 10, 10, 12, 0, 0, 0, time.UTC)
	session := persistence.Session{
		Token:     "tok-1",
		UserID:    "u-1",
		ExpiresAt: now.Add(7 * 24 * time.Hour),
		CreatedAt: now,
	}
	if err := repo.CreateSession(ctx, session); err != nil {
		t.Fatalf("create session: %v", err)
	}

	stored, err := repo.GetSession(ctx, "tok-1")
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if stored.UserID != "u-1" || stored.RevokedAt != nil {
		t.Errorf("unexpected session: %+v", stored)
	}

	if err := repo.RevokeSession(ctx, "tok-1", now.Add(time.Hour)); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	revoked, err := repo.GetSession(ctx, "tok-1")
	if err != nil {
		t.Fatalf("get revoked: %v", err)
	}
	if revoked.RevokedAt == nil {
		t.Error("revocation not persisted")
	}

	if err := repo.DeleteExpiredSessions(ctx, now.Add(30*24*time.Hour)); err != nil {
		t.Fatalf("prune: %v", err)
	}
	if _, err := repo.GetSession(ctx, "tok-1"); !errors.Is(err, persistence.ErrNotFound) {
		t.Errorf("expired session still present: %v", err)
	}
}
