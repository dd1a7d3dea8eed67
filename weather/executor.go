// Package weather turns a city name into a strictly-typed weather record by asking
// the generation backend for data that conforms to the weather contract.
package weather

import (
	"context"
	"fmt"

	"code.cloudfoundry.org/clock"
	"github.com/microsoft/ApplicationInsights-Go/appinsights"
	"go.uber.org/zap"

	"github.com/stuartleeks/home-dash/weather-api/data"
	"github.com/stuartleeks/home-dash/weather-api/llm"
	"github.com/stuartleeks/home-dash/weather-api/schema"
)

// Executor runs weather queries against a backend. It holds no per-query state and
// is safe for concurrent use.
type Executor struct {
	backend     llm.Backend
	variant     schema.Variant
	contract    *schema.Node
	logger      *zap.Logger
	clock       clock.Clock
	tracker     llm.Tracker
	consistency bool
}

type Option func(*Executor)

func WithLogger(logger *zap.Logger) Option {
	return func(e *Executor) { e.logger = logger }
}

func WithClock(clk clock.Clock) Option {
	return func(e *Executor) { e.clock = clk }
}

func WithTelemetry(tracker llm.Tracker) Option {
	return func(e *Executor) { e.tracker = tracker }
}

// WithConsistencyChecks rejects records whose fields contradict each other
// (minimum above temperature, percentages outside 0-100). Off by default: the
// backend's answer is otherwise trusted as-is.
func WithConsistencyChecks() Option {
	return func(e *Executor) { e.consistency = true }
}

func NewExecutor(backend llm.Backend, variant schema.Variant, opts ...Option) (*Executor, error) {
	if backend == nil {
		return nil, fmt.Errorf("a backend is required")
	}
	if err := variant.Validate(); err != nil {
		return nil, fmt.Errorf("invalid weather variant: %w", err)
	}
	e := &Executor{
		backend:  backend,
		variant:  variant,
		contract: schema.Weather(variant),
		logger:   zap.NewNop(),
		clock:    clock.NewClock(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

func (e *Executor) Variant() schema.Variant {
	return e.variant
}

// Contract is the schema every record produced by this executor satisfies.
func (e *Executor) Contract() *schema.Node {
	return e.contract
}

// Query returns the weather for city. It never fails: on any error it logs the
// cause and returns the fallback record for the executor's variant.
// Callers must not pass an empty city.
func (e *Executor) Query(ctx context.Context, city string) *data.WeatherRecord {
	record, err := e.Fetch(ctx, city)
	if err == nil {
		return record
	}

	kind := ErrorKind(err)
	e.logger.Error("weather query failed, returning fallback record",
		zap.String("city", city),
		zap.String("kind", kind),
		zap.Error(err))
	if e.tracker != nil {
		event := appinsights.NewEventTelemetry("weather-query-failed")
		event.Properties["city"] = city
		event.Properties["kind"] = kind
		e.tracker.Track(event)
	}
	return data.Fallback(city, e.variant)
}

// Fetch performs one backend exchange and returns either a validated record or a
// *SchemaValidationError / *ExecutionError. It does not retry.
func (e *Executor) Fetch(ctx context.Context, city string) (record *data.WeatherRecord, err error) {
	defer func() {
		if r := recover(); r != nil {
			record = nil
			err = &ExecutionError{City: city, Err: fmt.Errorf("backend panicked: %v", r)}
		}
	}()

	raw, err := e.backend.Generate(ctx, llm.Request{
		System: systemPrompt,
		Prompt: instruction(city, e.variant, e.contract, e.clock.Now()),
		Schema: e.contract,
	})
	if err != nil {
		return nil, &ExecutionError{City: city, Err: err}
	}

	var decoded data.WeatherRecord
	if err := e.contract.Decode([]byte(llm.StripCodeFence(raw)), &decoded); err != nil {
		return nil, &SchemaValidationError{City: city, Err: err}
	}
	if e.consistency {
		if err := checkConsistency(&decoded); err != nil {
			return nil, &SchemaValidationError{City: city, Err: err}
		}
	}

	e.logger.Debug("weather query succeeded",
		zap.String("city", city),
		zap.String("condition", decoded.Current.Condition))
	return &decoded, nil
}

func checkConsistency(r *data.WeatherRecord) error {
	if r.Current.Humidity < 0 || r.Current.Humidity > 100 {
		return fmt.Errorf("current.humidity %g outside 0-100", r.Current.Humidity)
	}
	for i, day := range r.Forecast {
		if day.MinTemperature != nil && *day.MinTemperature > day.Temperature {
			return fmt.Errorf("forecast[%d].minTemperature %g above temperature %g", i, *day.MinTemperature, day.Temperature)
		}
		if day.ChanceOfRain != nil && (*day.ChanceOfRain < 0 || *day.ChanceOfRain > 100) {
			return fmt.Errorf("forecast[%d].chanceOfRain %g outside 0-100", i, *day.ChanceOfRain)
		}
	}
	return nil
}
