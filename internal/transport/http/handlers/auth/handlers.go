package authhandler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"salesboard/internal/domain/auth"
	"salesboard/internal/platform/metrics"
	"salesboard/internal/transport/http/api"
	"salesboard/internal/transport/http/middleware"
	"salesboard/internal/transport/http/shared"
)

type Handler struct {
	Auth    *auth.Service
	Metrics *metrics.Collector
}

func NewHandler(svc *auth.Service, collector *metrics.Collector) *Handler {
	return &Handler{Auth: svc, Metrics: collector}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.handleLogin)
		r.With(middleware.RequireSession).Post("/logout", h.handleLogout)
		r.With(middleware.RequireSession).Get("/me", h.handleMe)
	})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	var payload auth.LoginInput
	if !shared.DecodeJSON(w, r, &payload, requestID) {
		return
	}
	validator := shared.NewValidator()
	validator.Struct(payload)
	if validator.Reject(w, requestID) {
		return
	}

	token, session, err := h.Auth.Login(r.Context(), payload)
	if err != nil {
		h.Metrics.Inc(metrics.EventLoginFailed)
		switch {
		case errors.Is(err, auth.ErrTOTPRequired):
			api.Fail(w, http.StatusUnauthorized, "totp_required", "one-time code required", requestID)
		case errors.Is(err, auth.ErrTOTPInvalid):
			api.Fail(w, http.StatusUnauthorized, "totp_invalid", "invalid one-time code", requestID)
		case errors.Is(err, auth.ErrInvalidCredentials):
			api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials", requestID)
		default:
			api.Fail(w, http.StatusInternalServerError, "token_error", "failed to issue token", requestID)
		}
		return
	}

	api.Success(w, map[string]any{
		"token":     token,
		"expiresAt": session.ExpiresAt,
		"employee":  session.Employee,
	}, requestID)
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if session, ok := middleware.GetSession(r.Context()); ok {
		h.Auth.Logout(session)
	}
	api.Success(w, map[string]string{"status": "logged_out"}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	session, _ := middleware.GetSession(r.Context())
	api.Success(w, session, middleware.GetRequestID(r.Context()))
}
