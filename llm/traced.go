package llm

import (
	"context"
	"strconv"

	"code.cloudfoundry.org/clock"
	"github.com/microsoft/ApplicationInsights-Go/appinsights"
	"go.uber.org/zap"
)

// Traced records every backend call as an Application Insights dependency and logs it.
type Traced struct {
	backend Backend
	tracker Tracker
	logger  *zap.Logger
	clock   clock.Clock
}

func NewTraced(backend Backend, tracker Tracker, logger *zap.Logger) *Traced {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Traced{
		backend: backend,
		tracker: tracker,
		logger:  logger,
		clock:   clock.NewClock(),
	}
}

func (t *Traced) Name() string {
	return t.backend.Name()
}

func (t *Traced) Generate(ctx context.Context, req Request) (string, error) {
	start := t.clock.Now()
	text, err := t.backend.Generate(ctx, req)
	duration := t.clock.Since(start)

	if t.tracker != nil {
		dependency := appinsights.NewRemoteDependencyTelemetry("generate", "LLM", t.backend.Name(), err == nil)
		dependency.Duration = duration
		dependency.Properties["structured"] = strconv.FormatBool(req.Schema != nil)
		if err != nil {
			dependency.ResultCode = "error"
		}
		t.tracker.Track(dependency)
	}

	fields := []zap.Field{
		zap.String("backend", t.backend.Name()),
		zap.Duration("duration", duration),
		zap.Bool("structured", req.Schema != nil),
	}
	if err != nil {
		t.logger.Warn("backend call failed", append(fields, zap.Error(err))...)
	} else {
		t.logger.Debug("backend call", append(fields, zap.Int("responseBytes", len(text)))...)
	}
	return text, err
}

var _ Backend = (*Traced)(nil)

// TracedImages is Traced for image generation.
type TracedImages struct {
	backend ImageBackend
	tracker Tracker
	logger  *zap.Logger
	clock   clock.Clock
}

func NewTracedImages(backend ImageBackend, tracker Tracker, logger *zap.Logger) *TracedImages {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TracedImages{
		backend: backend,
		tracker: tracker,
		logger:  logger,
		clock:   clock.NewClock(),
	}
}

func (t *TracedImages) Name() string {
	return t.backend.Name()
}

func (t *TracedImages) GenerateImage(ctx context.Context, prompt string) (Image, error) {
	start := t.clock.Now()
	img, err := t.backend.GenerateImage(ctx, prompt)
	duration := t.clock.Since(start)

	if t.tracker != nil {
		dependency := appinsights.NewRemoteDependencyTelemetry("generate-image", "LLM", t.backend.Name(), err == nil)
		dependency.Duration = duration
		if err != nil {
			dependency.ResultCode = "error"
		}
		t.tracker.Track(dependency)
	}

	fields := []zap.Field{
		zap.String("backend", t.backend.Name()),
		zap.Duration("duration", duration),
	}
	if err != nil {
		t.logger.Warn("image generation failed", append(fields, zap.Error(err))...)
	} else {
		t.logger.Debug("image generated", append(fields, zap.Int("imageBytes", len(img.Bytes)))...)
	}
	return img, err
}

var _ ImageBackend = (*TracedImages)(nil)
