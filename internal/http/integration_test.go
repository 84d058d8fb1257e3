package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/example/deputy-schedule/internal/application"
	"github.com/example/deputy-schedule/internal/testfixtures"
)

// newIntegrationRouter builds the router over real services and a
// migrated temporary SQLite database, seeded with one admin account.
func newIntegrationRouter(t *testing.T) (http.Handler, testfixtures.UserFixture) {
	t.Helper()

	harness := testfixtures.NewSQLiteHarness(t)
	factory := testfixtures.NewServiceFactory(
		testfixtures.WithClock(testfixtures.NewClock(testfixtures.ReferenceTime())),
		testfixtures.WithIDGenerator(testfixtures.NewIDGenerator("id")),
	)

	params := application.DefaultArgon2idParams
	params.Memory = 16 * 1024
	params.Iterations = 1
	admin := testfixtures.NewUserFixture()
	hash, err := application.CreatePasswordHash(admin.Password, params)
	if err != nil {
		t.Fatalf("CreatePasswordHash failed: %v", err)
	}
	admin.User.PasswordHash = hash
	if err := harness.Users.CreateUser(context.Background(), admin.User); err != nil {
		t.Fatalf("failed to seed admin: %v", err)
	}

	authService := factory.NewAuthService(testfixtures.AuthServiceDeps{
		Users:    harness.Users,
		Sessions: harness.Sessions,
	})
	eventService := factory.NewEventService(testfixtures.EventServiceDeps{Events: harness.Events})
	userService := factory.NewUserService(testfixtures.UserServiceDeps{Users: harness.Users})
	bookingService := factory.NewBookingService(testfixtures.BookingServiceDeps{
		Bookings: harness.Bookings,
		Events:   harness.Events,
	})

	router := NewRouter(RouterConfig{
		Auth:         NewAuthHandler(authService, nil),
		Events:       NewEventHandler(eventService, &exporterStub{payload: "BEGIN:VCALENDAR\r\nEND:VCALENDAR\r\n"}, nil),
		Users:        NewUserHandler(userService, nil),
		Bookings:     NewBookingHandler(bookingService, nil),
		Authenticate: RequireToken(authService, nil),
	})
	return router, admin
}

func loginAs(t *testing.T, router http.Handler, fixture testfixtures.UserFixture) string {
	t.Helper()

	body, _ := json.Marshal(map[string]string{
		"action":   "login",
		"login":    fixture.User.Login,
		"password": fixture.Password,
	})
	req := httptest.NewRequest(http.MethodPost, "/auth", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("login failed: %d %s", rec.Code, rec.Body.String())
	}
	var resp loginResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode login response: %v", err)
	}
	return resp.Token
}

func TestIntegration_EventLifecycleThroughRouter(t *testing.T) {
	t.Parallel()

	router, admin := newIntegrationRouter(t)
	token := loginAs(t, router, admin)

	create := bytes.NewBufferString(`{"title":"Приём граждан","type":"meeting","date":"2025-10-15","time":"10:00"}`)
	req := httptest.NewRequest(http.MethodPost, "/events", create)
	req.Header.Set(AuthTokenHeader, token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("create failed: %d %s", rec.Code, rec.Body.String())
	}
	var created eventResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("failed to decode create response: %v", err)
	}
	if created.Event.ID == "" {
		t.Fatalf("expected generated event id, got %+v", created.Event)
	}

	// Update carries the id in the body, no query string.
	update, _ := json.Marshal(map[string]string{
		"id":    created.Event.ID,
		"title": "Приём граждан (перенос)",
		"type":  "meeting",
		"date":  "2025-10-16",
		"time":  "11:00",
	})
	req = httptest.NewRequest(http.MethodPut, "/events", bytes.NewReader(update))
	req.Header.Set(AuthTokenHeader, token)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("update failed: %d %s", rec.Code, rec.Body.String())
	}
	var updated eventResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &updated); err != nil {
		t.Fatalf("failed to decode update response: %v", err)
	}
	if updated.Event.Date != "2025-10-16" || updated.Event.Title != "Приём граждан (перенос)" {
		t.Fatalf("unexpected updated event: %+v", updated.Event)
	}

	req = httptest.NewRequest(http.MethodGet, "/events?id="+created.Event.ID, nil)
	req.Header.Set(AuthTokenHeader, token)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("get failed: %d %s", rec.Code, rec.Body.String())
	}
	var fetched eventResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &fetched); err != nil {
		t.Fatalf("failed to decode get response: %v", err)
	}
	if fetched.Event.Date != "2025-10-16" {
		t.Fatalf("expected stored update, got %+v", fetched.Event)
	}
}

func TestIntegration_TripConflictRejectedThroughRouter(t *testing.T) {
	t.Parallel()

	router, admin := newIntegrationRouter(t)
	token := loginAs(t, router, admin)

	create := bytes.NewBufferString(`{"title":"Совещание","type":"meeting","date":"2025-11-03","time":"10:00"}`)
	req := httptest.NewRequest(http.MethodPost, "/events", create)
	req.Header.Set(AuthTokenHeader, token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create failed: %d %s", rec.Code, rec.Body.String())
	}

	trip := bytes.NewBufferString(`{"title":"Рабочая поездка","type":"regional-trip","regionName":"Тверская область","date":"2025-11-01","endDate":"2025-11-04"}`)
	req = httptest.NewRequest(http.MethodPost, "/events", trip)
	req.Header.Set(AuthTokenHeader, token)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for overlapping trip, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestIntegration_BookingApprovalCreatesEvent(t *testing.T) {
	t.Parallel()

	router, admin := newIntegrationRouter(t)
	token := loginAs(t, router, admin)

	booking := testfixtures.NewBookingFixture()
	body, _ := json.Marshal(map[string]string{
		"title": booking.Request.Title,
		"date":  booking.Request.Date,
		"time":  booking.Request.Time,
	})
	req := httptest.NewRequest(http.MethodPost, "/bookings", bytes.NewReader(body))
	req.Header.Set(AuthTokenHeader, token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("submit failed: %d %s", rec.Code, rec.Body.String())
	}
	var submitted bookingResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &submitted); err != nil {
		t.Fatalf("failed to decode submit response: %v", err)
	}

	decision, _ := json.Marshal(map[string]string{"id": submitted.Request.ID, "action": "approve"})
	req = httptest.NewRequest(http.MethodPut, "/bookings", bytes.NewReader(decision))
	req.Header.Set(AuthTokenHeader, token)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("approve failed: %d %s", rec.Code, rec.Body.String())
	}
	var approved eventResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &approved); err != nil {
		t.Fatalf("failed to decode approve response: %v", err)
	}
	if approved.Event.BookingRequestID != submitted.Request.ID {
		t.Fatalf("expected event linked to request, got %+v", approved.Event)
	}
}
