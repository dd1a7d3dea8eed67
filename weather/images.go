package weather

import (
	"context"
	"net/url"

	"go.uber.org/zap"

	"github.com/stuartleeks/home-dash/weather-api/data"
	"github.com/stuartleeks/home-dash/weather-api/llm"
)

// PlaceholderURL is a stable stock photo per city.
func PlaceholderURL(city string) string {
	return "https://picsum.photos/seed/" + url.PathEscape(city) + "/1280/720"
}

// Images resolves the dashboard background for a city and condition.
type Images struct {
	backend llm.ImageBackend
	logger  *zap.Logger
}

// NewImages returns a resolver. With a nil backend every city gets its placeholder.
func NewImages(backend llm.ImageBackend, logger *zap.Logger) *Images {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Images{backend: backend, logger: logger}
}

// BackgroundURL returns an image reference: a data: URI for generated images,
// otherwise the placeholder URL.
func (i *Images) BackgroundURL(ctx context.Context, city, condition string) string {
	if i.backend == nil || condition == "" || condition == data.ErrorCondition {
		return PlaceholderURL(city)
	}

	img, err := i.backend.GenerateImage(ctx, imagePrompt(city, condition))
	if err != nil {
		i.logger.Warn("background image generation failed, using placeholder",
			zap.String("city", city),
			zap.String("condition", condition),
			zap.Error(err))
		return PlaceholderURL(city)
	}
	return img.DataURI()
}
