package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/deputy-schedule/internal/application"
	"github.com/example/deputy-schedule/internal/schedule"
)

type eventService interface {
	CreateEvent(ctx context.Context, params application.CreateEventParams) (schedule.Event, error)
	UpdateEvent(ctx context.Context, params application.UpdateEventParams) (schedule.Event, error)
	DeleteEvent(ctx context.Context, principal application.Principal, id string) error
	GetEvent(ctx context.Context, id string) (schedule.Event, error)
	ListEvents(ctx context.Context) ([]schedule.Event, error)
}

type calendarExporter interface {
	Export(events []schedule.Event) (string, error)
}

type EventHandler struct {
	service   eventService
	exporter  calendarExporter
	responder responder
}

func NewEventHandler(service eventService, exporter calendarExporter, logger *slog.Logger) *EventHandler {
	return &EventHandler{service: service, exporter: exporter, responder: newResponder(logger)}
}

type eventRequest struct {
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	Type        string            `json:"type"`
	Date        string            `json:"date"`
	Time        string            `json:"time"`
	EndTime     string            `json:"endTime"`
	EndDate     string            `json:"endDate"`
	Location    string            `json:"location"`
	VKSLink     string            `json:"vksLink"`
	Description string            `json:"description"`
	Responsible []schedule.Person `json:"responsible"`
	Status      string            `json:"status"`
	Reminders   []string          `json:"reminders"`
	RegionName  string            `json:"regionName"`
}

func (r eventRequest) toInput() application.EventInput {
	return application.EventInput{
		Title:       r.Title,
		Type:        schedule.EventType(strings.TrimSpace(r.Type)),
		Date:        strings.TrimSpace(r.Date),
		Time:        strings.TrimSpace(r.Time),
		EndTime:     strings.TrimSpace(r.EndTime),
		EndDate:     strings.TrimSpace(r.EndDate),
		Location:    r.Location,
		VKSLink:     r.VKSLink,
		Description: r.Description,
		Responsible: append([]schedule.Person(nil), r.Responsible...),
		Status:      schedule.EventStatus(strings.TrimSpace(r.Status)),
		Reminders:   append([]string(nil), r.Reminders...),
		RegionName:  r.RegionName,
	}
}

type eventResponse struct {
	Event schedule.Event `json:"event"`
}

type listEventsResponse struct {
	Events []schedule.Event `json:"events"`
}

// List answers the full schedule, or a single event when ?id= is present.
func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	if id := strings.TrimSpace(r.URL.Query().Get("id")); id != "" {
		event, err := h.service.GetEvent(r.Context(), id)
		if err != nil {
			h.responder.handleServiceError(r.Context(), w, err)
			return
		}
		h.responder.writeJSON(r.Context(), w, http.StatusOK, eventResponse{Event: event})
		return
	}

	events, err := h.service.ListEvents(r.Context())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	if events == nil {
		events = []schedule.Event{}
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listEventsResponse{Events: events})
}

func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	event, err := h.service.CreateEvent(r.Context(), application.CreateEventParams{
		Principal: principal,
		Input:     req.toInput(),
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, eventResponse{Event: event})
}

func (h *EventHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	// The id travels in the body; ?id= is accepted for older clients.
	id := strings.TrimSpace(req.ID)
	if id == "" {
		id = strings.TrimSpace(r.URL.Query().Get("id"))
	}
	if id == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errMissingEventID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	event, err := h.service.UpdateEvent(r.Context(), application.UpdateEventParams{
		Principal: principal,
		EventID:   id,
		Input:     req.toInput(),
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, eventResponse{Event: event})
}

func (h *EventHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id := strings.TrimSpace(r.URL.Query().Get("id"))
	if id == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errMissingEventID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	if err := h.service.DeleteEvent(r.Context(), principal, id); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

// Export streams the schedule as an iCalendar document.
func (h *EventHandler) Export(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil || h.exporter == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	events, err := h.service.ListEvents(r.Context())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	payload, err := h.exporter.Export(events)
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusInternalServerError, err)
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="schedule.ics"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(payload)); err != nil {
		h.responder.loggerFor(r.Context()).ErrorContext(r.Context(), "failed to write calendar export", "error", err)
	}
}
