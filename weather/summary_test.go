package weather

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stuartleeks/home-dash/weather-api/data"
	"github.com/stuartleeks/home-dash/weather-api/llm"
	"github.com/stuartleeks/home-dash/weather-api/llm/llmtest"
	"github.com/stuartleeks/home-dash/weather-api/schema"
)

func TestSummarize(t *testing.T) {
	fake := &llmtest.Fake{Responses: []llmtest.Response{{Text: "  Mild and cloudy, take a light jacket.\n"}}}
	s := NewSummarizer(fake, nil)

	summary := s.Summarize(context.Background(), llmtest.WeatherRecord(schema.Classic, "London"))

	assert.Equal(t, "Mild and cloudy, take a light jacket.", summary)
	requests := fake.Requests()
	require.Len(t, requests, 1)
	assert.Nil(t, requests[0].Schema)
	assert.Contains(t, requests[0].Prompt, "City: London")
	assert.Contains(t, requests[0].Prompt, "5-Day Forecast:")
	assert.Equal(t, 5, strings.Count(requests[0].Prompt, "\n- Aug"))
}

func TestSummarizeSkipsFallbackRecord(t *testing.T) {
	fake := &llmtest.Fake{}
	s := NewSummarizer(fake, nil)

	summary := s.Summarize(context.Background(), data.Fallback("London", schema.Classic))

	assert.Equal(t, UnavailableSummary, summary)
	assert.Zero(t, fake.Calls())
}

func TestSummarizeBackendFailure(t *testing.T) {
	fake := &llmtest.Fake{Responses: []llmtest.Response{{Err: errors.New("quota exceeded")}}}
	s := NewSummarizer(fake, nil)

	assert.Equal(t, UnavailableSummary, s.Summarize(context.Background(), llmtest.WeatherRecord(schema.Classic, "London")))
}

func TestBackgroundURL(t *testing.T) {
	ctx := context.Background()

	t.Run("no backend", func(t *testing.T) {
		i := NewImages(nil, nil)
		assert.Equal(t, "https://picsum.photos/seed/New%20York/1280/720", i.BackgroundURL(ctx, "New York", "Rain"))
	})

	t.Run("generated", func(t *testing.T) {
		images := &llmtest.FakeImages{Image: llm.Image{Bytes: []byte{0xff, 0xd8}, MIMEType: "image/jpeg"}}
		i := NewImages(images, nil)
		assert.Equal(t, "data:image/jpeg;base64,/9g=", i.BackgroundURL(ctx, "Paris", "Clear"))
		assert.Equal(t, 1, images.Calls())
	})

	t.Run("generation fails", func(t *testing.T) {
		images := &llmtest.FakeImages{Err: errors.New("blocked")}
		i := NewImages(images, nil)
		assert.Equal(t, PlaceholderURL("Paris"), i.BackgroundURL(ctx, "Paris", "Clear"))
	})

	t.Run("fallback record", func(t *testing.T) {
		images := &llmtest.FakeImages{}
		i := NewImages(images, nil)
		assert.Equal(t, PlaceholderURL("Paris"), i.BackgroundURL(ctx, "Paris", data.ErrorCondition))
		assert.Zero(t, images.Calls())
	})
}

func TestImagePrompt(t *testing.T) {
	assert.Equal(t,
		"A wide, photorealistic view of Tokyo under rain weather, suitable as a dashboard background. No text.",
		imagePrompt("Tokyo", "Rain"))
}
