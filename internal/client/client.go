// Package client is the Go consumer of the deputy schedule API. It mirrors
// the frontend's transport behavior: every authenticated call carries the
// session token in the X-Auth-Token header, and the token survives process
// restarts through a TokenStore.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/example/deputy-schedule/internal/schedule"
)

const (
	authTokenHeader = "X-Auth-Token"
	fallbackMessage = "Request failed"
)

// APIError is a non-2xx answer from the server.
type APIError struct {
	StatusCode int
	Message    string
	Details    map[string]string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fallbackMessage
	}
	return e.Message
}

// TokenStore persists the session token between runs.
type TokenStore interface {
	Token() (string, error)
	Save(token string) error
	Clear() error
}

// User is the account payload returned by the auth endpoints.
type User struct {
	ID       string `json:"id"`
	Login    string `json:"login"`
	Email    string `json:"email,omitempty"`
	FullName string `json:"fullName"`
	Position string `json:"position,omitempty"`
	Role     string `json:"role"`
}

// Client talks to a deputy schedule server.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenStore
}

// Option adjusts client construction.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// New builds a client for the server at baseURL. The token store may be
// nil, in which case the client works only with explicit logins per run.
func New(baseURL string, tokens TokenStore, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
		tokens:  tokens,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type authRequest struct {
	Action   string `json:"action"`
	Login    string `json:"login,omitempty"`
	Password string `json:"password,omitempty"`
}

type loginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type verifyResponse struct {
	User User `json:"user"`
}

// Login exchanges credentials for a session token and persists it.
func (c *Client) Login(ctx context.Context, login, password string) (User, error) {
	var resp loginResponse
	err := c.do(ctx, http.MethodPost, "/auth", nil, authRequest{Action: "login", Login: login, Password: password}, &resp, false)
	if err != nil {
		return User{}, err
	}
	if c.tokens != nil {
		if err := c.tokens.Save(resp.Token); err != nil {
			return User{}, fmt.Errorf("save token: %w", err)
		}
	}
	return resp.User, nil
}

// Verify checks the stored token against the server.
func (c *Client) Verify(ctx context.Context) (User, error) {
	var resp verifyResponse
	if err := c.do(ctx, http.MethodPost, "/auth", nil, authRequest{Action: "verify"}, &resp, true); err != nil {
		return User{}, err
	}
	return resp.User, nil
}

// Logout revokes the session server-side and drops the stored token.
func (c *Client) Logout(ctx context.Context) error {
	if err := c.do(ctx, http.MethodPost, "/auth", nil, authRequest{Action: "logout"}, nil, true); err != nil {
		return err
	}
	if c.tokens != nil {
		return c.tokens.Clear()
	}
	return nil
}

type eventEnvelope struct {
	Event schedule.Event `json:"event"`
}

type eventsEnvelope struct {
	Events []schedule.Event `json:"events"`
}

// ListEvents fetches the full schedule.
func (c *Client) ListEvents(ctx context.Context) ([]schedule.Event, error) {
	var resp eventsEnvelope
	if err := c.do(ctx, http.MethodGet, "/events", nil, nil, &resp, true); err != nil {
		return nil, err
	}
	return resp.Events, nil
}

// GetEvent fetches a single event.
func (c *Client) GetEvent(ctx context.Context, id string) (schedule.Event, error) {
	var resp eventEnvelope
	if err := c.do(ctx, http.MethodGet, "/events", url.Values{"id": {id}}, nil, &resp, true); err != nil {
		return schedule.Event{}, err
	}
	return resp.Event, nil
}

// CreateEvent places a new event on the schedule.
func (c *Client) CreateEvent(ctx context.Context, event schedule.Event) (schedule.Event, error) {
	var resp eventEnvelope
	if err := c.do(ctx, http.MethodPost, "/events", nil, event, &resp, true); err != nil {
		return schedule.Event{}, err
	}
	return resp.Event, nil
}

// UpdateEvent replaces the stored event with the given id. The id is
// carried in the request body.
func (c *Client) UpdateEvent(ctx context.Context, id string, event schedule.Event) (schedule.Event, error) {
	event.ID = id
	var resp eventEnvelope
	if err := c.do(ctx, http.MethodPut, "/events", nil, event, &resp, true); err != nil {
		return schedule.Event{}, err
	}
	return resp.Event, nil
}

// DeleteEvent removes an event from the schedule.
func (c *Client) DeleteEvent(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/events", url.Values{"id": {id}}, nil, nil, true)
}

// ExportCalendar downloads the schedule as an iCalendar document.
func (c *Client) ExportCalendar(ctx context.Context) ([]byte, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/events/export", nil, nil, true)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, decodeAPIError(resp)
	}
	return io.ReadAll(resp.Body)
}

type bookingEnvelope struct {
	Request schedule.BookingRequest `json:"request"`
}

type bookingsEnvelope struct {
	Requests []schedule.BookingRequest `json:"requests"`
}

type bookingDecision struct {
	ID     string `json:"id"`
	Action string `json:"action"`
}

// SubmitBooking files a new booking request.
func (c *Client) SubmitBooking(ctx context.Context, request schedule.BookingRequest) (schedule.BookingRequest, error) {
	var resp bookingEnvelope
	if err := c.do(ctx, http.MethodPost, "/bookings", nil, request, &resp, true); err != nil {
		return schedule.BookingRequest{}, err
	}
	return resp.Request, nil
}

// ListPendingBookings fetches requests awaiting a decision.
func (c *Client) ListPendingBookings(ctx context.Context) ([]schedule.BookingRequest, error) {
	var resp bookingsEnvelope
	if err := c.do(ctx, http.MethodGet, "/bookings", nil, nil, &resp, true); err != nil {
		return nil, err
	}
	return resp.Requests, nil
}

// ApproveBooking approves a request and returns the scheduled event.
func (c *Client) ApproveBooking(ctx context.Context, id string) (schedule.Event, error) {
	var resp eventEnvelope
	if err := c.do(ctx, http.MethodPut, "/bookings", nil, bookingDecision{ID: id, Action: "approve"}, &resp, true); err != nil {
		return schedule.Event{}, err
	}
	return resp.Event, nil
}

// RejectBooking declines a request.
func (c *Client) RejectBooking(ctx context.Context, id string) (schedule.BookingRequest, error) {
	var resp bookingEnvelope
	if err := c.do(ctx, http.MethodPut, "/bookings", nil, bookingDecision{ID: id, Action: "reject"}, &resp, true); err != nil {
		return schedule.BookingRequest{}, err
	}
	return resp.Request, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body any, authed bool) (*http.Request, error) {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		if c.tokens == nil {
			return nil, fmt.Errorf("no token store configured")
		}
		token, err := c.tokens.Token()
		if err != nil {
			return nil, fmt.Errorf("load token: %w", err)
		}
		if token == "" {
			return nil, &APIError{StatusCode: http.StatusUnauthorized, Message: "not logged in"}
		}
		req.Header.Set(authTokenHeader, token)
	}
	return req, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any, authed bool) error {
	req, err := c.newRequest(ctx, method, path, query, body, authed)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// decodeAPIError turns an error response into an APIError. Bodies that
// are not the expected {"error":...} shape fall back to a generic message.
func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode, Message: fallbackMessage}

	var body struct {
		Error   string            `json:"error"`
		Details map[string]string `json:"details"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil && body.Error != "" {
		apiErr.Message = body.Error
		apiErr.Details = body.Details
	}
	return apiErr
}
