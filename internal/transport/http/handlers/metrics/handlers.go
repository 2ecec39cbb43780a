package metricshandler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"salesboard/internal/domain/metrics"
	"salesboard/internal/domain/period"
	platformmetrics "salesboard/internal/platform/metrics"
	"salesboard/internal/transport/http/api"
	"salesboard/internal/transport/http/middleware"
	"salesboard/internal/transport/http/shared"
)

type Handler struct {
	Metrics   *metrics.Service
	Collector *platformmetrics.Collector
}

func NewHandler(svc *metrics.Service, collector *platformmetrics.Collector) *Handler {
	return &Handler{Metrics: svc, Collector: collector}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/metrics", func(r chi.Router) {
		r.Use(middleware.RequireSession)
		r.Get("/weekly", h.handleListWeekly)
		r.Get("/weekly/{week}", h.handleGetWeekly)
		r.With(middleware.RequireCapability(middleware.CanInputWeekly)).Put("/weekly/{week}", h.handleSaveWeekly)
		r.Get("/monthly", h.handleListMonthly)
		r.Get("/monthly/{month}", h.handleGetMonthly)
		r.With(middleware.RequireCapability(middleware.CanInputMonthly)).Put("/monthly/{month}", h.handleSaveMonthly)
	})
}

func (h *Handler) handleListWeekly(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	list, err := h.Metrics.ListWeekly(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("list weekly metrics failed")
		api.Fail(w, http.StatusInternalServerError, "metrics_failed", "failed to load weekly metrics", requestID)
		return
	}
	api.Success(w, list, requestID)
}

func (h *Handler) handleGetWeekly(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	weekKey, ok := shared.WeekParam(r, "week")
	if !ok {
		api.Fail(w, http.StatusBadRequest, "invalid_week", period.ErrInvalidWeekKey.Error(), requestID)
		return
	}
	metric, err := h.Metrics.GetWeekly(r.Context(), weekKey)
	if err != nil {
		writeError(w, err, requestID)
		return
	}
	api.Success(w, metric, requestID)
}

func (h *Handler) handleSaveWeekly(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	session, _ := middleware.GetSession(r.Context())
	weekKey, ok := shared.WeekParam(r, "week")
	if !ok {
		api.Fail(w, http.StatusBadRequest, "invalid_week", period.ErrInvalidWeekKey.Error(), requestID)
		return
	}
	var payload metrics.WeeklyMetric
	if !shared.DecodeJSON(w, r, &payload, requestID) {
		return
	}
	validator := shared.NewValidator()
	validator.Struct(payload)
	if validator.Reject(w, requestID) {
		return
	}

	saved, err := h.Metrics.SaveWeekly(r.Context(), session.Employee, weekKey, payload)
	if err != nil {
		writeError(w, err, requestID)
		return
	}
	h.Collector.Inc(platformmetrics.EventMetricSaved)
	api.Success(w, saved, requestID)
}

func (h *Handler) handleListMonthly(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	list, err := h.Metrics.ListMonthly(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("list monthly metrics failed")
		api.Fail(w, http.StatusInternalServerError, "metrics_failed", "failed to load monthly metrics", requestID)
		return
	}
	api.Success(w, list, requestID)
}

func (h *Handler) handleGetMonthly(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	monthKey, ok := shared.MonthParam(r, "month")
	if !ok {
		api.Fail(w, http.StatusBadRequest, "invalid_month", period.ErrInvalidMonthKey.Error(), requestID)
		return
	}
	metric, err := h.Metrics.GetMonthly(r.Context(), monthKey)
	if err != nil {
		writeError(w, err, requestID)
		return
	}
	api.Success(w, metric, requestID)
}

func (h *Handler) handleSaveMonthly(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	session, _ := middleware.GetSession(r.Context())
	monthKey, ok := shared.MonthParam(r, "month")
	if !ok {
		api.Fail(w, http.StatusBadRequest, "invalid_month", period.ErrInvalidMonthKey.Error(), requestID)
		return
	}
	var payload metrics.MonthlyMetric
	if !shared.DecodeJSON(w, r, &payload, requestID) {
		return
	}
	validator := shared.NewValidator()
	validator.Struct(payload)
	if validator.Reject(w, requestID) {
		return
	}

	saved, err := h.Metrics.SaveMonthly(r.Context(), session.Employee, monthKey, payload)
	if err != nil {
		writeError(w, err, requestID)
		return
	}
	h.Collector.Inc(platformmetrics.EventMetricSaved)
	api.Success(w, saved, requestID)
}

func writeError(w http.ResponseWriter, err error, requestID string) {
	switch {
	case errors.Is(err, metrics.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", err.Error(), requestID)
	case errors.Is(err, metrics.ErrWeeklyNotAllowed), errors.Is(err, metrics.ErrMonthlyNotAllowed):
		api.Fail(w, http.StatusForbidden, "forbidden", err.Error(), requestID)
	case errors.Is(err, metrics.ErrNegativeValue):
		api.Fail(w, http.StatusUnprocessableEntity, "invalid_metric", err.Error(), requestID)
	default:
		log.Error().Err(err).Msg("metrics request failed")
		api.Fail(w, http.StatusInternalServerError, "metrics_failed", "failed to process metric", requestID)
	}
}
