package llm

import (
	"context"
	"errors"
	"strings"

	"hirewise-backend/internal/config"
)

// ErrDisabled is returned by the disabled client; callers treat it like any
// other model failure and take their fallback path.
var ErrDisabled = errors.New("llm is disabled by configuration")

// Client defines the interface for interacting with LLM services.
type Client interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// NewClientFromConfig builds the configured LLM client. A disabled
// configuration yields a client that always fails, which routes every
// consumer onto its deterministic fallback.
func NewClientFromConfig(cfg config.AIConfig) Client {
	if cfg.Disabled || cfg.URL == "" {
		return disabledClient{}
	}
	return NewOllamaClient(cfg)
}

type disabledClient struct{}

func (disabledClient) Generate(_ context.Context, _ string) (string, error) {
	return "", ErrDisabled
}

// ExtractJSON strips markdown code fences the model tends to wrap JSON in
// and returns the innermost payload candidate. It performs no validation;
// callers unmarshal strictly and fall back on any error.
func ExtractJSON(response string) string {
	text := strings.TrimSpace(response)

	if idx := strings.Index(text, "```json"); idx != -1 {
		text = text[idx+len("```json"):]
		if end := strings.Index(text, "```"); end != -1 {
			text = text[:end]
		}
		return strings.TrimSpace(text)
	}
	if idx := strings.Index(text, "```"); idx != -1 {
		text = text[idx+len("```"):]
		if end := strings.Index(text, "```"); end != -1 {
			text = text[:end]
		}
		return strings.TrimSpace(text)
	}

	// Without fences, trust only the outermost JSON value.
	if start := strings.IndexAny(text, "[{"); start > 0 {
		text = text[start:]
	}
	return strings.TrimSpace(text)
}
