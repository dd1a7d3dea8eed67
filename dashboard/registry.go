package dashboard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"code.cloudfoundry.org/clock"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/stuartleeks/home-dash/weather-api/data"
	"github.com/stuartleeks/home-dash/weather-api/llm"
)

// Registry hands out boards by id. Boards not touched for the TTL are forgotten.
type Registry struct {
	services    Services
	defaultCity string
	boards      *data.Cache[string, Board]
	clock       clock.Clock
	logger      *zap.Logger
	tracker     llm.Tracker
}

type RegistryOption func(*Registry)

func WithLogger(logger *zap.Logger) RegistryOption {
	return func(r *Registry) { r.logger = logger }
}

func WithClock(clk clock.Clock) RegistryOption {
	return func(r *Registry) { r.clock = clk }
}

func WithTelemetry(tracker llm.Tracker) RegistryOption {
	return func(r *Registry) { r.tracker = tracker }
}

func NewRegistry(services Services, defaultCity string, ttl time.Duration, opts ...RegistryOption) *Registry {
	r := &Registry{
		services:    services,
		defaultCity: defaultCity,
		clock:       clock.NewClock(),
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.boards = data.NewCacheWithClock[string, Board](ttl, r.clock)
	return r
}

// Create opens a new board and loads the default city into it, if one is configured.
func (r *Registry) Create(ctx context.Context) (*Board, error) {
	board := newBoard(uuid.NewString(), r.services, r.clock, r.logger, r.tracker)
	r.boards.Set(board.ID, board)

	if r.defaultCity == "" {
		return board, nil
	}
	if _, err := board.Search(ctx, r.defaultCity); err != nil && !errors.Is(err, ErrSuperseded) {
		return nil, fmt.Errorf("loading default city: %w", err)
	}
	return board, nil
}

func (r *Registry) Get(id string) (*Board, error) {
	board := r.boards.Get(id)
	if board == nil {
		return nil, ErrNotFound
	}
	return board, nil
}

// Prune forgets expired boards and returns how many were removed.
func (r *Registry) Prune() int {
	return r.boards.Prune()
}
