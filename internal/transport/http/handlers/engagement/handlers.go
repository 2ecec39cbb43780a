package engagementhandler

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"salesboard/internal/domain/engagement"
	"salesboard/internal/domain/period"
	"salesboard/internal/domain/statistics"
	"salesboard/internal/platform/metrics"
	"salesboard/internal/transport/http/api"
	"salesboard/internal/transport/http/middleware"
	"salesboard/internal/transport/http/shared"
)

const (
	defaultHistoryWeeks = 8
	maxHistoryWeeks     = 52
)

type Handler struct {
	Engagement *engagement.Service
	Statistics *statistics.Service
	Metrics    *metrics.Collector
	Location   *time.Location
	Now        func() time.Time
}

func NewHandler(eng *engagement.Service, stats *statistics.Service, collector *metrics.Collector, loc *time.Location) *Handler {
	if loc == nil {
		loc = time.Local
	}
	return &Handler{Engagement: eng, Statistics: stats, Metrics: collector, Location: loc, Now: time.Now}
}

type submitRequest struct {
	Ratings []engagement.ScoreInput `json:"ratings" validate:"required,min=1,dive"`
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/engagement", func(r chi.Router) {
		r.Use(middleware.RequireSession)
		r.Get("/history", h.handleHistory)
		r.Get("/weeks/{week}", h.handleSummary)
		r.Get("/weeks/{week}/mine", h.handleMine)
		r.Get("/weeks/{week}/report.pdf", h.handleReportPDF)
		r.With(middleware.RequireCapability(middleware.CanEvaluate)).Put("/weeks/{week}", h.handleSubmit)
	})
}

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	weekKey, ok := shared.WeekParam(r, "week")
	if !ok {
		failInvalidWeek(w, requestID)
		return
	}
	report, err := h.Engagement.WeekSummary(r.Context(), weekKey)
	if err != nil {
		log.Error().Err(err).Str("weekKey", weekKey).Msg("engagement summary failed")
		api.Fail(w, http.StatusInternalServerError, "summary_failed", "failed to load engagement summary", requestID)
		return
	}
	api.Success(w, report, requestID)
}

func (h *Handler) handleMine(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	session, _ := middleware.GetSession(r.Context())
	weekKey, ok := shared.WeekParam(r, "week")
	if !ok {
		failInvalidWeek(w, requestID)
		return
	}
	ratings, err := h.Engagement.MyRatings(r.Context(), session.EmployeeID(), weekKey)
	if err != nil {
		log.Error().Err(err).Str("weekKey", weekKey).Msg("my ratings lookup failed")
		api.Fail(w, http.StatusInternalServerError, "ratings_failed", "failed to load ratings", requestID)
		return
	}
	api.Success(w, map[string]any{
		"weekKey":   weekKey,
		"ratings":   ratings,
		"rateable":  h.Engagement.RateableEmployees(session.Employee),
		"evaluator": session.Employee,
	}, requestID)
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	session, _ := middleware.GetSession(r.Context())
	weekKey, ok := shared.WeekParam(r, "week")
	if !ok {
		failInvalidWeek(w, requestID)
		return
	}

	var payload submitRequest
	if !shared.DecodeJSON(w, r, &payload, requestID) {
		return
	}
	validator := shared.NewValidator()
	validator.Struct(payload)
	if validator.Reject(w, requestID) {
		return
	}

	saved, err := h.Engagement.SubmitRatings(r.Context(), session.Employee, weekKey, payload.Ratings)
	if err != nil {
		writeSubmitError(w, err, requestID)
		return
	}
	h.Metrics.Inc(metrics.EventRatingsSubmitted)

	report, err := h.Engagement.WeekSummary(r.Context(), weekKey)
	if err != nil {
		log.Warn().Err(err).Str("weekKey", weekKey).Msg("summary after submit failed")
	}
	api.Success(w, map[string]any{"ratings": saved, "summary": report}, requestID)
}

func writeSubmitError(w http.ResponseWriter, err error, requestID string) {
	var verr engagement.ValidationError
	switch {
	case errors.Is(err, engagement.ErrNotEvaluator), errors.Is(err, engagement.ErrSelfEvaluationNotAllowed):
		api.Fail(w, http.StatusForbidden, "forbidden", err.Error(), requestID)
	case errors.As(err, &verr):
		api.FailWithDetails(w, http.StatusUnprocessableEntity, "invalid_ratings", verr.Message,
			map[string]any{"field": verr.Field, "value": verr.Value}, requestID)
	case errors.Is(err, engagement.ErrScoreOutOfRange), errors.Is(err, engagement.ErrNoScores):
		api.Fail(w, http.StatusUnprocessableEntity, "invalid_ratings", err.Error(), requestID)
	case errors.Is(err, period.ErrInvalidWeekKey):
		failInvalidWeek(w, requestID)
	default:
		log.Error().Err(err).Msg("submit ratings failed")
		api.Fail(w, http.StatusInternalServerError, "submit_failed", "failed to save ratings", requestID)
	}
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	n := shared.IntQuery(r, "weeks", defaultHistoryWeeks, 1, maxHistoryWeeks)
	keys := period.RecentWeeks(h.Now().In(h.Location), n)
	api.Success(w, h.Engagement.History(r.Context(), keys), requestID)
}

func (h *Handler) handleReportPDF(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	weekKey, ok := shared.WeekParam(r, "week")
	if !ok {
		failInvalidWeek(w, requestID)
		return
	}
	data, name, err := h.Statistics.WeekReportPDF(r.Context(), weekKey, h.Now().In(h.Location))
	if err != nil {
		log.Error().Err(err).Str("weekKey", weekKey).Msg("engagement pdf failed")
		api.Fail(w, http.StatusInternalServerError, "report_failed", "failed to render report", requestID)
		return
	}
	h.Metrics.Inc(metrics.EventExport)
	api.Attachment(w, "application/pdf", name, data)
}

func failInvalidWeek(w http.ResponseWriter, requestID string) {
	api.Fail(w, http.StatusBadRequest, "invalid_week", period.ErrInvalidWeekKey.Error(), requestID)
}
