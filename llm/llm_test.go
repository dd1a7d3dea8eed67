package llm_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/microsoft/ApplicationInsights-Go/appinsights"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/stuartleeks/home-dash/weather-api/llm"
	"github.com/stuartleeks/home-dash/weather-api/llm/llmtest"
	"github.com/stuartleeks/home-dash/weather-api/schema"
)

type recordingTracker struct {
	mu    sync.Mutex
	items []appinsights.Telemetry
}

func (r *recordingTracker) Track(t appinsights.Telemetry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, t)
}

func newGeminiServer(t *testing.T, status int, body string) (*httptest.Server, *[]string) {
	t.Helper()
	var requests []string
	var mu sync.Mutex
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		mu.Lock()
		requests = append(requests, r.URL.Path+" "+string(raw))
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv, &requests
}

func newGemini(t *testing.T, baseURL string) *llm.Gemini {
	t.Helper()
	config := llm.DefaultGeminiConfig("test-key")
	config.BaseURL = baseURL
	g, err := llm.NewGemini(context.Background(), config)
	require.NoError(t, err)
	return g
}

func TestGeminiStructuredGenerate(t *testing.T) {
	srv, requests := newGeminiServer(t, http.StatusOK,
		`{"candidates":[{"content":{"role":"model","parts":[{"text":"{\"suggestions\":[\"x++\"]}"}]},"finishReason":"STOP"}]}`)
	g := newGemini(t, srv.URL)

	text, err := g.Generate(context.Background(), llm.Request{
		System: "You are a weather API.",
		Prompt: "City: London",
		Schema: schema.Suggestions(),
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"suggestions":["x++"]}`, text)

	require.Len(t, *requests, 1)
	sent := (*requests)[0]
	assert.True(t, strings.Contains(sent, ":generateContent"), sent)
	assert.Contains(t, sent, "City: London")
	assert.Contains(t, sent, "application/json")
	assert.Contains(t, sent, "suggestions")
	assert.Equal(t, "gemini:gemini-2.0-flash", g.Name())
}

func TestGeminiEmptyResponse(t *testing.T) {
	srv, _ := newGeminiServer(t, http.StatusOK,
		`{"candidates":[{"content":{"role":"model","parts":[{"text":"   "}]}}]}`)
	g := newGemini(t, srv.URL)

	_, err := g.Generate(context.Background(), llm.Request{Prompt: "hi"})
	assert.ErrorIs(t, err, llm.ErrEmptyResponse)
}

func TestGeminiAPIError(t *testing.T) {
	srv, _ := newGeminiServer(t, http.StatusBadRequest,
		`{"error":{"code":400,"message":"API key not valid","status":"INVALID_ARGUMENT"}}`)
	g := newGemini(t, srv.URL)

	_, err := g.Generate(context.Background(), llm.Request{Prompt: "hi"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gemini generate failed")
}

func TestGeminiRequiresKey(t *testing.T) {
	_, err := llm.NewGemini(context.Background(), llm.GeminiConfig{})
	assert.Error(t, err)
}

func TestRateLimitedForwardsAndHonoursContext(t *testing.T) {
	fake := &llmtest.Fake{Responses: []llmtest.Response{{Text: "ok"}}}
	limited := llm.NewRateLimited(fake, 0.001, 1)
	assert.Equal(t, "fake [Rate Limited]", limited.Name())

	text, err := limited.Generate(context.Background(), llm.Request{Prompt: "a"})
	require.NoError(t, err)
	assert.Equal(t, "ok", text)

	// the bucket is now empty and refills far slower than the deadline
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = limited.Generate(ctx, llm.Request{Prompt: "b"})
	require.Error(t, err)
	assert.Equal(t, 1, fake.Calls())
}

func TestTracedRecordsDependency(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	tracker := &recordingTracker{}
	boom := errors.New("boom")
	fake := &llmtest.Fake{Responses: []llmtest.Response{{Text: "fine"}, {Err: boom}}}
	traced := llm.NewTraced(fake, tracker, zap.New(core))

	_, err := traced.Generate(context.Background(), llm.Request{Prompt: "a", Schema: schema.Suggestions()})
	require.NoError(t, err)
	_, err = traced.Generate(context.Background(), llm.Request{Prompt: "b"})
	require.ErrorIs(t, err, boom)

	require.Len(t, tracker.items, 2)
	ok := tracker.items[0].(*appinsights.RemoteDependencyTelemetry)
	assert.True(t, ok.Success)
	assert.Equal(t, "true", ok.Properties["structured"])
	failed := tracker.items[1].(*appinsights.RemoteDependencyTelemetry)
	assert.False(t, failed.Success)
	assert.Equal(t, "error", failed.ResultCode)

	assert.Equal(t, 1, logs.FilterMessage("backend call failed").Len())
	assert.Equal(t, 1, logs.FilterMessage("backend call").Len())
}

func TestRateLimitedImagesHonoursContext(t *testing.T) {
	images := &llmtest.FakeImages{Image: llm.Image{Bytes: []byte{1}, MIMEType: "image/png"}}
	limited := llm.NewRateLimitedImages(images, 0.001, 0)
	assert.Equal(t, "fake-images [Rate Limited]", limited.Name())

	img, err := limited.GenerateImage(context.Background(), "a city")
	require.NoError(t, err)
	assert.Equal(t, []byte{1}, img.Bytes)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = limited.GenerateImage(ctx, "a city")
	require.Error(t, err)
	assert.Equal(t, 1, images.Calls())
}

func TestTracedImagesRecordsDependency(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	tracker := &recordingTracker{}
	logger := zap.New(core)
	boom := errors.New("blocked")

	ok := llm.NewTracedImages(&llmtest.FakeImages{Image: llm.Image{Bytes: []byte{1, 2}}}, tracker, logger)
	_, err := ok.GenerateImage(context.Background(), "Paris")
	require.NoError(t, err)

	failing := llm.NewTracedImages(&llmtest.FakeImages{Err: boom}, tracker, logger)
	_, err = failing.GenerateImage(context.Background(), "Paris")
	require.ErrorIs(t, err, boom)

	require.Len(t, tracker.items, 2)
	succeeded := tracker.items[0].(*appinsights.RemoteDependencyTelemetry)
	assert.True(t, succeeded.Success)
	assert.Equal(t, "generate-image", succeeded.Name)
	failed := tracker.items[1].(*appinsights.RemoteDependencyTelemetry)
	assert.False(t, failed.Success)
	assert.Equal(t, "error", failed.ResultCode)

	assert.Equal(t, 1, logs.FilterMessage("image generated").Len())
	assert.Equal(t, 1, logs.FilterMessage("image generation failed").Len())
}

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"tagged fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n{\"a\":1}```", `{"a":1}`},
		{"one-line fence", "```json{\"a\":1}```", `{"a":1}`},
		{"one-line array", "```JSON[{\"a\":1}]```", `[{"a":1}]`},
		{"spaced tag", "  ```json {\"a\":1} ```  ", `{"a":1}`},
		{"unfenced", "  {\"a\":1}\n", `{"a":1}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, llm.StripCodeFence(tc.raw))
		})
	}
}

func TestImageDataURI(t *testing.T) {
	img := llm.Image{Bytes: []byte("abc"), MIMEType: "image/jpeg"}
	assert.Equal(t, "data:image/jpeg;base64,YWJj", img.DataURI())
	assert.Equal(t, "data:image/png;base64,", llm.Image{}.DataURI())
}
