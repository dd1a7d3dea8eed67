// Package dashboard keeps the state of each open weather dashboard: which city it
// shows and the latest search result. A newer search always wins over an older one
// that resolves later.
package dashboard

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"code.cloudfoundry.org/clock"
	"github.com/microsoft/ApplicationInsights-Go/appinsights"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/stuartleeks/home-dash/weather-api/data"
	"github.com/stuartleeks/home-dash/weather-api/llm"
)

var (
	ErrEmptyCity  = errors.New("city must not be empty")
	ErrSuperseded = errors.New("search superseded by a newer one")
	ErrNotFound   = errors.New("dashboard not found")
)

type WeatherQuerier interface {
	Query(ctx context.Context, city string) *data.WeatherRecord
}

type Summarizer interface {
	Summarize(ctx context.Context, record *data.WeatherRecord) string
}

type BackgroundResolver interface {
	BackgroundURL(ctx context.Context, city, condition string) string
}

// Services are what a board calls for each search.
type Services struct {
	Weather    WeatherQuerier
	Summaries  Summarizer
	Background BackgroundResolver
}

// View is what a dashboard renders. When Failed is set only City is meaningful.
type View struct {
	City       string              `json:"city"`
	Record     *data.WeatherRecord `json:"weather"`
	Summary    string              `json:"summary"`
	ImageURL   string              `json:"imageUrl"`
	AirQuality data.AQIBand        `json:"airQualityBand"`
	Failed     bool                `json:"failed"`
	Generation uint64              `json:"generation"`
	UpdatedAt  time.Time           `json:"updatedAt"`
}

type Board struct {
	ID string

	services Services
	clock    clock.Clock
	logger   *zap.Logger
	tracker  llm.Tracker

	mu         sync.Mutex
	generation uint64
	view       *View
}

func newBoard(id string, services Services, clk clock.Clock, logger *zap.Logger, tracker llm.Tracker) *Board {
	return &Board{
		ID:       id,
		services: services,
		clock:    clk,
		logger:   logger.With(zap.String("dashboard", id)),
		tracker:  tracker,
	}
}

// View returns the latest committed result, if any.
func (b *Board) View() (View, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.view == nil {
		return View{}, false
	}
	return *b.view, true
}

func (b *Board) isLatest(generation uint64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.generation == generation
}

// Search queries the weather for city and commits the result unless another search
// started on this board in the meantime, in which case ErrSuperseded is returned and
// the board keeps whatever the newer search commits. In-flight backend calls are never
// cancelled.
func (b *Board) Search(ctx context.Context, city string) (View, error) {
	city = strings.TrimSpace(city)
	if city == "" {
		return View{}, ErrEmptyCity
	}

	b.mu.Lock()
	b.generation++
	generation := b.generation
	b.mu.Unlock()

	record := b.services.Weather.Query(ctx, city)
	if !b.isLatest(generation) {
		return View{}, b.superseded(city, generation)
	}

	view := View{
		City:       city,
		Record:     record,
		Failed:     record.IsError(),
		Generation: generation,
		AirQuality: data.AQIBandFor(record.AirQuality.AQI),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		view.Summary = b.services.Summaries.Summarize(gctx, record)
		return nil
	})
	g.Go(func() error {
		view.ImageURL = b.services.Background.BackgroundURL(gctx, city, record.Current.Condition)
		return nil
	})
	_ = g.Wait()

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.generation != generation {
		return View{}, b.superseded(city, generation)
	}
	view.UpdatedAt = b.clock.Now().UTC()
	b.view = &view

	b.logger.Info("dashboard updated",
		zap.String("city", city),
		zap.Uint64("generation", generation),
		zap.Bool("failed", view.Failed))
	return view, nil
}

func (b *Board) superseded(city string, generation uint64) error {
	b.logger.Debug("discarding superseded search",
		zap.String("city", city),
		zap.Uint64("generation", generation))
	if b.tracker != nil {
		event := appinsights.NewEventTelemetry("search-superseded")
		event.Properties["dashboard"] = b.ID
		event.Properties["city"] = city
		b.tracker.Track(event)
	}
	return ErrSuperseded
}
