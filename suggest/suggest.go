// Package suggest asks the backend for code completions in an editor session.
package suggest

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/stuartleeks/home-dash/weather-api/llm"
	"github.com/stuartleeks/home-dash/weather-api/schema"
)

var ErrNoLanguage = errors.New("a language is required")

type Input struct {
	Language       string `json:"language"`
	Code           string `json:"code"`
	CursorPosition int    `json:"cursorPosition"`
}

type Suggester struct {
	backend  llm.Backend
	contract *schema.Node
	logger   *zap.Logger
}

func NewSuggester(backend llm.Backend, logger *zap.Logger) *Suggester {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Suggester{
		backend:  backend,
		contract: schema.Suggestions(),
		logger:   logger,
	}
}

const systemPrompt = "You are an AI code completion assistant."

func prompt(in Input) string {
	var sb strings.Builder
	sb.WriteString("Given the current code snippet and the programming language, suggest possible code completions ")
	sb.WriteString("to insert at the cursor. Each suggestion is only the text to insert.\n\n")
	fmt.Fprintf(&sb, "Language: %s\n", in.Language)
	fmt.Fprintf(&sb, "Cursor position: %d\n", in.CursorPosition)
	sb.WriteString("Code:\n")
	sb.WriteString(in.Code)
	sb.WriteString("\n\nSuggestions:\n")
	return sb.String()
}

// Suggest returns the backend's completions for the code at the cursor. The cursor
// is clamped to the code length.
func (s *Suggester) Suggest(ctx context.Context, in Input) ([]string, error) {
	in.Language = strings.TrimSpace(in.Language)
	if in.Language == "" {
		return nil, ErrNoLanguage
	}
	if in.CursorPosition < 0 || in.CursorPosition > len(in.Code) {
		in.CursorPosition = len(in.Code)
	}

	raw, err := s.backend.Generate(ctx, llm.Request{
		System: systemPrompt,
		Prompt: prompt(in),
		Schema: s.contract,
	})
	if err != nil {
		return nil, fmt.Errorf("generating suggestions: %w", err)
	}

	var out struct {
		Suggestions []string `json:"suggestions"`
	}
	if err := s.contract.Decode([]byte(llm.StripCodeFence(raw)), &out); err != nil {
		return nil, fmt.Errorf("invalid suggestions: %w", err)
	}

	suggestions := make([]string, 0, len(out.Suggestions))
	for _, suggestion := range out.Suggestions {
		if strings.TrimSpace(suggestion) != "" {
			suggestions = append(suggestions, suggestion)
		}
	}
	s.logger.Debug("code suggestions",
		zap.String("language", in.Language),
		zap.Int("count", len(suggestions)))
	return suggestions, nil
}
