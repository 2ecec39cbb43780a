package middleware

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"salesboard/internal/platform/metrics"
	"salesboard/internal/requestctx"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// Logger writes one access log event per request and records it in collector.
func Logger(collector *metrics.Collector) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(recorder, r)
			duration := time.Since(start)

			if collector != nil {
				collector.Record(recorder.status, duration)
			}

			var event *zerolog.Event
			switch {
			case recorder.status >= 500:
				event = log.Error()
			case recorder.status >= 400:
				event = log.Warn()
			default:
				event = log.Info()
			}
			event = event.
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", recorder.status).
				Int64("durationMs", duration.Milliseconds()).
				Str("requestId", GetRequestID(r.Context()))
			if session, ok := requestctx.GetSession(r.Context()); ok {
				event = event.Int("employeeId", session.EmployeeID())
			}
			event.Msg("http request")
		})
	}
}
