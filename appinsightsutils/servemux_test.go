package appinsightsutils

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/microsoft/ApplicationInsights-Go/appinsights"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type recorder struct {
	mu       sync.Mutex
	requests []*appinsights.RequestTelemetry
}

func (r *recorder) Track(t appinsights.Telemetry) {
	if req, ok := t.(*appinsights.RequestTelemetry); ok {
		r.mu.Lock()
		r.requests = append(r.requests, req)
		r.mu.Unlock()
	}
}

func TestServeMuxWithTrace(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	tracker := &recorder{}
	mux := NewServeMuxWithTrace(tracker, zap.New(core))
	mux.HandleFunc("GET /weather/{city}", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusTeapot)
	})
	mux.HandleFuncWithContext("GET /boom", func(w http.ResponseWriter, r *http.Request, telemetry *appinsights.RequestTelemetry) {
		telemetry.Properties["stage"] = "before panic"
		panic("boom")
	})
	handler := mux.Handler()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/weather/Paris", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	require.Len(t, tracker.requests, 2)
	first := tracker.requests[0]
	assert.Equal(t, "GET /weather/{city}", first.Name)
	assert.Equal(t, "418", first.ResponseCode)
	assert.Equal(t, "http://example.com/weather/Paris", first.Url)
	assert.NotEmpty(t, first.Id)
	assert.True(t, first.Success)

	second := tracker.requests[1]
	assert.Equal(t, "500", second.ResponseCode)
	assert.False(t, second.Success)
	assert.Equal(t, "before panic", second.Properties["stage"])

	require.Equal(t, 2, logs.Len())
	assert.Equal(t, "GET /weather/{city}", logs.All()[0].ContextMap()["route"])
}

func TestServeMuxWithoutTracker(t *testing.T) {
	mux := NewServeMuxWithTrace(nil, nil)
	mux.Handle("GET /", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	mux.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
