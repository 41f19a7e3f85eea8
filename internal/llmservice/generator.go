package llmservice

import (
	"context"
	"errors"
	"fmt"
	"net"

	"style-rewriter/internal/config"
	"style-rewriter/internal/models"
)

// Generator turns a prompt into generated text with a single request.
// Failures wrap models.ErrGenerationTimeout or models.ErrGenerationUnavailable.
type Generator interface {
	Generate(ctx context.Context, prompt, model string) (string, error)
}

// New returns the generator for the configured backend.
func New(cfg *config.Config) (Generator, error) {
	switch cfg.Backend {
	case config.BackendOllama:
		return NewOllamaClient(&cfg.Ollama), nil
	case config.BackendOpenAI:
		return NewOpenAIClient(&cfg.OpenAI, cfg.Ollama.Temperature, cfg.Ollama.TopP), nil
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}

func classifyError(err error, service string) error {
	if isTimeout(err) {
		return fmt.Errorf("%w: request to %s timed out, the text might be too long", models.ErrGenerationTimeout, service)
	}
	return fmt.Errorf("%w: error calling %s: %v", models.ErrGenerationUnavailable, service, err)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
