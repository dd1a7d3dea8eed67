package llm

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

type GeminiConfig struct {
	APIKey     string
	Model      string
	ImageModel string
	// BaseURL overrides the API endpoint; used by tests.
	BaseURL     string
	Temperature *float32
}

// DefaultGeminiConfig returns sensible defaults.
func DefaultGeminiConfig(apiKey string) GeminiConfig {
	return GeminiConfig{
		APIKey:     apiKey,
		Model:      "gemini-2.0-flash",
		ImageModel: "imagen-3.0-generate-002",
	}
}

// Gemini implements Backend and ImageBackend on the Google GenAI SDK.
type Gemini struct {
	client      *genai.Client
	model       string
	imageModel  string
	temperature *float32
}

func NewGemini(ctx context.Context, config GeminiConfig) (*Gemini, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	defaults := DefaultGeminiConfig(config.APIKey)
	if strings.TrimSpace(config.Model) == "" {
		config.Model = defaults.Model
	}
	if strings.TrimSpace(config.ImageModel) == "" {
		config.ImageModel = defaults.ImageModel
	}

	clientConfig := &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if config.BaseURL != "" {
		clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: config.BaseURL}
	}
	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &Gemini{
		client:      client,
		model:       config.Model,
		imageModel:  config.ImageModel,
		temperature: config.Temperature,
	}, nil
}

func (g *Gemini) Name() string {
	return "gemini:" + g.model
}

func (g *Gemini) Generate(ctx context.Context, req Request) (string, error) {
	config := &genai.GenerateContentConfig{
		Temperature: g.temperature,
	}
	if req.System != "" {
		config.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}
	if req.Schema != nil {
		config.ResponseMIMEType = "application/json"
		config.ResponseSchema = req.Schema.GenAI()
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(req.Prompt), config)
	if err != nil {
		return "", fmt.Errorf("gemini generate failed: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

func (g *Gemini) GenerateImage(ctx context.Context, prompt string) (Image, error) {
	resp, err := g.client.Models.GenerateImages(ctx, g.imageModel, prompt, &genai.GenerateImagesConfig{})
	if err != nil {
		return Image{}, fmt.Errorf("gemini image generation failed: %w", err)
	}
	for _, generated := range resp.GeneratedImages {
		if generated.Image != nil && len(generated.Image.ImageBytes) > 0 {
			return Image{Bytes: generated.Image.ImageBytes, MIMEType: generated.Image.MIMEType}, nil
		}
	}
	return Image{}, ErrEmptyResponse
}

var (
	_ Backend      = (*Gemini)(nil)
	_ ImageBackend = (*Gemini)(nil)
)
