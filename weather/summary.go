package weather

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/stuartleeks/home-dash/weather-api/data"
	"github.com/stuartleeks/home-dash/weather-api/llm"
)

// UnavailableSummary is shown instead of a generated summary when there is nothing
// meaningful to summarize.
const UnavailableSummary = "Weather details are unavailable right now. Please try another search."

// Summarizer produces a short conversational description of a record.
type Summarizer struct {
	backend llm.Backend
	logger  *zap.Logger
}

func NewSummarizer(backend llm.Backend, logger *zap.Logger) *Summarizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Summarizer{backend: backend, logger: logger}
}

// Summarize never calls the backend for a fallback record.
func (s *Summarizer) Summarize(ctx context.Context, record *data.WeatherRecord) string {
	if record.IsError() {
		return UnavailableSummary
	}

	text, err := s.backend.Generate(ctx, llm.Request{
		System: summarySystemPrompt,
		Prompt: summaryPrompt(record),
	})
	if err != nil {
		s.logger.Warn("weather summary failed",
			zap.String("city", record.Current.City),
			zap.Error(err))
		return UnavailableSummary
	}
	return strings.TrimSpace(text)
}
