package statisticshandler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"salesboard/internal/domain/statistics"
	"salesboard/internal/platform/metrics"
	"salesboard/internal/transport/http/api"
	"salesboard/internal/transport/http/middleware"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type Handler struct {
	Statistics *statistics.Service
	Metrics    *metrics.Collector
	Now        func() time.Time
}

func NewHandler(svc *statistics.Service, collector *metrics.Collector) *Handler {
	return &Handler{Statistics: svc, Metrics: collector, Now: time.Now}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/statistics", func(r chi.Router) {
		r.Use(middleware.RequireSession)
		r.Get("/charts", h.handleCharts)
		r.Get("/export", h.handleExport)
		r.Get("/export.xlsx", h.handleExportXLSX)
	})
}

func (h *Handler) handleCharts(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	charts, err := h.Statistics.Charts(r.Context(), h.Now())
	if err != nil {
		log.Error().Err(err).Msg("statistics charts failed")
		api.Fail(w, http.StatusInternalServerError, "charts_failed", "failed to build charts", requestID)
		return
	}
	api.Success(w, charts, requestID)
}

// handleExport returns the bundle in the envelope, marked as a download unless
// ?inline=true.
func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	now := h.Now()
	bundle, err := h.Statistics.Export(r.Context(), now)
	if err != nil {
		log.Error().Err(err).Msg("statistics export failed")
		api.Fail(w, http.StatusInternalServerError, "export_failed", "failed to export data", requestID)
		return
	}
	h.Metrics.Inc(metrics.EventExport)
	if r.URL.Query().Get("inline") != "true" {
		w.Header().Set("Content-Disposition", `attachment; filename="`+statistics.ExportFilename(now, "json")+`"`)
	}
	api.Success(w, bundle, requestID)
}

func (h *Handler) handleExportXLSX(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	buf, name, err := h.Statistics.ExportXLSX(r.Context(), h.Now())
	if err != nil {
		log.Error().Err(err).Msg("statistics xlsx export failed")
		api.Fail(w, http.StatusInternalServerError, "export_failed", "failed to export workbook", requestID)
		return
	}
	h.Metrics.Inc(metrics.EventExport)
	api.Attachment(w, xlsxContentType, name, buf.Bytes())
}
