package llm

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

// RateLimited wraps a Backend with a token bucket so bursts of searches do not
// exhaust the backend quota.
type RateLimited struct {
	backend Backend
	limiter *rate.Limiter
	name    string
}

// NewRateLimited creates a rate limited backend.
// rps is the maximum requests per second allowed (can be fractional)
// burst is the maximum burst size allowed
func NewRateLimited(backend Backend, rps float64, burst int) *RateLimited {
	if burst < 1 {
		burst = 1
	}
	return &RateLimited{
		backend: backend,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
		name:    fmt.Sprintf("%s [Rate Limited]", backend.Name()),
	}
}

// Generate waits for rate limiter permission or context cancellation, then forwards.
func (r *RateLimited) Generate(ctx context.Context, req Request) (string, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait canceled: %w", err)
	}
	return r.backend.Generate(ctx, req)
}

func (r *RateLimited) Name() string {
	return r.name
}

var _ Backend = (*RateLimited)(nil)

// RateLimitedImages applies the same token bucket to image generation, which is
// slower and more expensive than text.
type RateLimitedImages struct {
	backend ImageBackend
	limiter *rate.Limiter
	name    string
}

func NewRateLimitedImages(backend ImageBackend, rps float64, burst int) *RateLimitedImages {
	if burst < 1 {
		burst = 1
	}
	return &RateLimitedImages{
		backend: backend,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
		name:    fmt.Sprintf("%s [Rate Limited]", backend.Name()),
	}
}

func (r *RateLimitedImages) GenerateImage(ctx context.Context, prompt string) (Image, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return Image{}, fmt.Errorf("rate limit wait canceled: %w", err)
	}
	return r.backend.GenerateImage(ctx, prompt)
}

func (r *RateLimitedImages) Name() string {
	return r.name
}

var _ ImageBackend = (*RateLimitedImages)(nil)
