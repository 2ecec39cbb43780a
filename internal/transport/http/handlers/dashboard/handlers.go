package dashboardhandler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"salesboard/internal/domain/dashboard"
	"salesboard/internal/transport/http/api"
	"salesboard/internal/transport/http/middleware"
)

type Handler struct {
	Dashboard *dashboard.Service
	Now       func() time.Time
}

func NewHandler(svc *dashboard.Service) *Handler {
	return &Handler{Dashboard: svc, Now: time.Now}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.With(middleware.RequireSession).Get("/dashboard", h.handleOverview)
}

func (h *Handler) handleOverview(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	session, _ := middleware.GetSession(r.Context())
	overview, err := h.Dashboard.Overview(r.Context(), session, h.Now())
	if err != nil {
		log.Error().Err(err).Int("employeeId", session.EmployeeID()).Msg("dashboard overview failed")
		api.Fail(w, http.StatusInternalServerError, "dashboard_failed", "failed to load dashboard", requestID)
		return
	}
	api.Success(w, overview, requestID)
}
