// Package llm wraps the generative backend the dashboard delegates to: text
// completion (optionally constrained to a schema) and image generation.
package llm

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"unicode"

	"github.com/microsoft/ApplicationInsights-Go/appinsights"

	"github.com/stuartleeks/home-dash/weather-api/schema"
)

// ErrEmptyResponse is returned when the backend answers with nothing usable.
var ErrEmptyResponse = errors.New("backend returned an empty response")

// Request is one completion call. When Schema is set the backend is asked for JSON
// conforming to it; otherwise plain text is expected.
type Request struct {
	System string
	Prompt string
	Schema *schema.Node
}

// Backend is a text-completion service.
type Backend interface {
	Generate(ctx context.Context, req Request) (string, error)
	Name() string
}

type Image struct {
	Bytes    []byte
	MIMEType string
}

func (i Image) DataURI() string {
	mime := i.MIMEType
	if mime == "" {
		mime = "image/png"
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(i.Bytes)
}

// ImageBackend generates images from a text prompt.
type ImageBackend interface {
	GenerateImage(ctx context.Context, prompt string) (Image, error)
	Name() string
}

// Tracker is the part of appinsights.TelemetryClient the backend decorators need.
type Tracker interface {
	Track(telemetry appinsights.Telemetry)
}

// StripCodeFence unwraps a markdown code fence some models put around JSON
// answers, along with its language tag. Unfenced text is only trimmed.
func StripCodeFence(raw string) string {
	text := strings.TrimSpace(raw)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```")
	tag := strings.IndexFunc(text, func(r rune) bool { return !unicode.IsLetter(r) })
	if tag < 0 {
		tag = len(text)
	}
	if rest := text[tag:]; rest == "" || strings.ContainsRune(" \t\r\n{[", rune(rest[0])) {
		text = rest
	}
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}
