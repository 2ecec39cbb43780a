package systemhandler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"salesboard/internal/platform/jobs"
	"salesboard/internal/platform/metrics"
	"salesboard/internal/transport/http/api"
	"salesboard/internal/transport/http/middleware"
)

// ResetFunc drops all stored ratings and metrics.
type ResetFunc func(ctx context.Context) error

type Handler struct {
	Metrics      *metrics.Collector
	Jobs         *jobs.Service
	WeeklyReport jobs.RunFunc
	// Reset is nil when clearing data is not allowed, e.g. in production.
	Reset ResetFunc
}

func NewHandler(collector *metrics.Collector, jobSvc *jobs.Service, weeklyReport jobs.RunFunc, reset ResetFunc) *Handler {
	return &Handler{Metrics: collector, Jobs: jobSvc, WeeklyReport: weeklyReport, Reset: reset}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/system", func(r chi.Router) {
		r.Use(middleware.RequireSession)
		r.Get("/metrics", h.handleMetrics)
		r.Get("/jobs", h.handleListJobs)
		r.With(middleware.RequireCapability(middleware.CanEvaluate)).Post("/jobs/weekly-report", h.handleRunWeeklyReport)
		if h.Reset != nil {
			r.With(middleware.RequireCapability(middleware.CanEvaluate)).Post("/reset", h.handleReset)
		}
	})
}

func (h *Handler) handleMetrics(w http.ResponseWriter, r *http.Request) {
	api.Success(w, h.Metrics.Snapshot(), middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListJobs(w http.ResponseWriter, r *http.Request) {
	api.Success(w, h.Jobs.Runs(), middleware.GetRequestID(r.Context()))
}

// handleRunWeeklyReport runs the report inline; ?async=true queues it instead.
func (h *Handler) handleRunWeeklyReport(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	if r.URL.Query().Get("async") == "true" {
		if !h.Jobs.Enqueue(jobs.JobWeeklyReport, h.WeeklyReport) {
			api.Fail(w, http.StatusServiceUnavailable, "queue_full", "job queue is full, try again later", requestID)
			return
		}
		api.WriteJSON(w, http.StatusAccepted, api.Envelope{Success: true, Data: map[string]string{"status": "queued"}, RequestID: requestID})
		return
	}
	result, err := h.Jobs.RunNow(r.Context(), jobs.JobWeeklyReport, h.WeeklyReport)
	if err != nil {
		log.Error().Err(err).Msg("weekly report run failed")
		api.Fail(w, http.StatusInternalServerError, "job_failed", "weekly report failed", requestID)
		return
	}
	api.Success(w, result, requestID)
}

func (h *Handler) handleReset(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	if err := h.Reset(r.Context()); err != nil {
		log.Error().Err(err).Msg("data reset failed")
		api.Fail(w, http.StatusInternalServerError, "reset_failed", "failed to clear data", requestID)
		return
	}
	session, _ := middleware.GetSession(r.Context())
	log.Warn().Int("employeeId", session.EmployeeID()).Msg("all ratings and metrics cleared")
	api.Success(w, map[string]string{"status": "cleared"}, requestID)
}
