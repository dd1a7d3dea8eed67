// Package llmtest provides a scripted backend for tests.
package llmtest

import (
	"context"
	"sync"

	"github.com/stuartleeks/home-dash/weather-api/llm"
)

type Response struct {
	Text string
	Err  error
}

// Fake replays Responses in order, repeating the last one. Respond, when set,
// takes precedence. Gate, when set, blocks each call until a value is received.
type Fake struct {
	Responses []Response
	Respond   func(req llm.Request) (string, error)
	Gate      chan struct{}

	mu       sync.Mutex
	requests []llm.Request
}

func (f *Fake) Name() string {
	return "fake"
}

func (f *Fake) Generate(ctx context.Context, req llm.Request) (string, error) {
	f.mu.Lock()
	index := len(f.requests)
	f.requests = append(f.requests, req)
	f.mu.Unlock()

	if f.Gate != nil {
		select {
		case <-f.Gate:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	if f.Respond != nil {
		return f.Respond(req)
	}
	if len(f.Responses) == 0 {
		return "", llm.ErrEmptyResponse
	}
	if index >= len(f.Responses) {
		index = len(f.Responses) - 1
	}
	r := f.Responses[index]
	return r.Text, r.Err
}

func (f *Fake) Requests() []llm.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]llm.Request(nil), f.requests...)
}

func (f *Fake) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

// FakeImages returns a fixed image or error.
type FakeImages struct {
	Image llm.Image
	Err   error

	mu    sync.Mutex
	calls int
}

func (f *FakeImages) Name() string {
	return "fake-images"
}

func (f *FakeImages) GenerateImage(_ context.Context, _ string) (llm.Image, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	return f.Image, f.Err
}

func (f *FakeImages) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

var (
	_ llm.Backend      = (*Fake)(nil)
	_ llm.ImageBackend = (*FakeImages)(nil)
)
