package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/deputy-schedule/internal/application"
	"github.com/example/deputy-schedule/internal/schedule"
)

type bookingService interface {
	Submit(ctx context.Context, principal application.Principal, input application.BookingInput) (schedule.BookingRequest, error)
	ListPending(ctx context.Context) ([]schedule.BookingRequest, error)
	Approve(ctx context.Context, principal application.Principal, requestID string) (schedule.Event, error)
	Reject(ctx context.Context, principal application.Principal, requestID string) (schedule.BookingRequest, error)
}

type BookingHandler struct {
	service   bookingService
	responder responder
}

func NewBookingHandler(service bookingService, logger *slog.Logger) *BookingHandler {
	return &BookingHandler{service: service, responder: newResponder(logger)}
}

type bookingSubmitRequest struct {
	Title       string `json:"title"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	EndTime     string `json:"endTime"`
	Description string `json:"description"`
}

type bookingDecisionRequest struct {
	ID     string `json:"id"`
	Action string `json:"action"`
}

type bookingResponse struct {
	Request schedule.BookingRequest `json:"request"`
}

type listBookingsResponse struct {
	Requests []schedule.BookingRequest `json:"requests"`
}

func (h *BookingHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	requests, err := h.service.ListPending(r.Context())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	if requests == nil {
		requests = []schedule.BookingRequest{}
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listBookingsResponse{Requests: requests})
}

func (h *BookingHandler) Submit(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req bookingSubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	request, err := h.service.Submit(r.Context(), principal, application.BookingInput{
		Title:       req.Title,
		Date:        strings.TrimSpace(req.Date),
		Time:        strings.TrimSpace(req.Time),
		EndTime:     strings.TrimSpace(req.EndTime),
		Description: req.Description,
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, bookingResponse{Request: request})
}

// Decide applies an approve or reject action to a pending request.
// Approval answers with the event placed on the schedule.
func (h *BookingHandler) Decide(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req bookingDecisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}
	if strings.TrimSpace(req.ID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errors.New("Не указан идентификатор заявки"))
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	switch strings.ToLower(strings.TrimSpace(req.Action)) {
	case "approve":
		event, err := h.service.Approve(r.Context(), principal, req.ID)
		if err != nil {
			h.responder.handleServiceError(r.Context(), w, err)
			return
		}
		h.responder.writeJSON(r.Context(), w, http.StatusOK, eventResponse{Event: event})
	case "reject":
		request, err := h.service.Reject(r.Context(), principal, req.ID)
		if err != nil {
			h.responder.handleServiceError(r.Context(), w, err)
			return
		}
		h.responder.writeJSON(r.Context(), w, http.StatusOK, bookingResponse{Request: request})
	default:
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errUnknownAction)
	}
}
