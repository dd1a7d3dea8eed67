// Package appinsightsutils adds request telemetry and access logging to an http.ServeMux.
package appinsightsutils

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/microsoft/ApplicationInsights-Go/appinsights"
	"go.uber.org/zap"
)

// Tracker is the part of appinsights.TelemetryClient the mux uses.
type Tracker interface {
	Track(telemetry appinsights.Telemetry)
}

type ServeMuxWithTrace struct {
	*http.ServeMux
	tracker Tracker
	logger  *zap.Logger
}

func NewServeMuxWithTrace(tracker Tracker, logger *zap.Logger) *ServeMuxWithTrace {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ServeMuxWithTrace{
		ServeMux: http.NewServeMux(),
		tracker:  tracker,
		logger:   logger,
	}
}

func (mux *ServeMuxWithTrace) Handle(pattern string, handler http.Handler) {
	mux.HandleFunc(pattern, handler.ServeHTTP)
}

func (mux *ServeMuxWithTrace) HandleFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	mux.ServeMux.HandleFunc(pattern, mux.traceHttpFunc(pattern, func(w http.ResponseWriter, r *http.Request, _ *appinsights.RequestTelemetry) {
		handler(w, r)
	}))
}

func (mux *ServeMuxWithTrace) HandleFuncWithContext(pattern string, handler func(http.ResponseWriter, *http.Request, *appinsights.RequestTelemetry)) {
	mux.ServeMux.HandleFunc(pattern, mux.traceHttpFunc(pattern, handler))
}

// Handler wraps the mux with request ids and real client addresses.
func (mux *ServeMuxWithTrace) Handler() http.Handler {
	return middleware.RequestID(middleware.RealIP(mux.ServeMux))
}

func (mux *ServeMuxWithTrace) traceHttpFunc(name string, fn func(http.ResponseWriter, *http.Request, *appinsights.RequestTelemetry)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scheme := "https"
		if r.TLS == nil {
			scheme = "http"
		}
		telemetry := appinsights.NewRequestTelemetry(r.Method, fmt.Sprintf("%s://%s%s", scheme, r.Host, r.URL.Path), 0*time.Second, "200")
		if id := middleware.GetReqID(r.Context()); id != "" {
			telemetry.Id = id
		}
		startTime := time.Now().UTC()

		// Recover inside the trace so a panicking handler is still reported as a 500.
		wrappedResponseWriter := NewResponseWriterWithStatusCode(w)
		middleware.Recoverer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fn(w, r, telemetry)
		})).ServeHTTP(wrappedResponseWriter, r)

		duration := time.Since(startTime)
		telemetry.Duration = duration
		telemetry.ResponseCode = fmt.Sprintf("%d", wrappedResponseWriter.StatusCode())
		telemetry.Success = wrappedResponseWriter.StatusCode() < 500
		telemetry.Name = name
		telemetry.Measurements["response-bytes"] = float64(wrappedResponseWriter.BytesWritten())

		mux.logger.Info("request",
			zap.String("route", name),
			zap.String("path", r.URL.Path),
			zap.Int("status", wrappedResponseWriter.StatusCode()),
			zap.Int("bytes", wrappedResponseWriter.BytesWritten()),
			zap.Duration("duration", duration),
			zap.String("requestId", middleware.GetReqID(r.Context())))
		if mux.tracker != nil {
			mux.tracker.Track(telemetry)
		}
	}
}
