package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/deputy-schedule/internal/application"
)

type authService interface {
	Login(ctx context.Context, params application.LoginParams) (application.LoginResult, error)
	Verify(ctx context.Context, token string) (application.User, error)
	Logout(ctx context.Context, token string) error
}

type AuthHandler struct {
	service   authService
	responder responder
	logger    *slog.Logger
}

func NewAuthHandler(service authService, logger *slog.Logger) *AuthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthHandler{service: service, responder: newResponder(logger), logger: logger}
}

type authRequest struct {
	Action   string `json:"action"`
	Login    string `json:"login"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string  `json:"token"`
	User  userDTO `json:"user"`
}

type verifyResponse struct {
	User userDTO `json:"user"`
}

// Handle dispatches on the "action" field of the request body. The token
// for "verify" and "logout" travels in the X-Auth-Token header, matching
// the rest of the API.
func (h *AuthHandler) Handle(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req authRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	switch strings.ToLower(strings.TrimSpace(req.Action)) {
	case "login":
		h.login(w, r, req)
	case "verify":
		h.verify(w, r)
	case "logout":
		h.logout(w, r)
	default:
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errUnknownAction)
	}
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request, req authRequest) {
	result, err := h.service.Login(r.Context(), application.LoginParams{
		Login:    req.Login,
		Password: req.Password,
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	handlerLogger(r.Context(), h.logger, "AuthHandler", "login").InfoContext(r.Context(), "session issued", "user_id", result.User.ID)
	h.responder.writeJSON(r.Context(), w, http.StatusOK, loginResponse{
		Token: result.Token,
		User:  toUserDTO(result.User),
	})
}

func (h *AuthHandler) verify(w http.ResponseWriter, r *http.Request) {
	token := r.Header.Get(AuthTokenHeader)
	if token == "" {
		h.responder.writeError(r.Context(), w, http.StatusUnauthorized, errMissingToken)
		return
	}

	user, err := h.service.Verify(r.Context(), token)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, verifyResponse{User: toUserDTO(user)})
}

func (h *AuthHandler) logout(w http.ResponseWriter, r *http.Request) {
	token := r.Header.Get(AuthTokenHeader)
	if token == "" {
		h.responder.writeError(r.Context(), w, http.StatusUnauthorized, errMissingToken)
		return
	}

	if err := h.service.Logout(r.Context(), token); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}
