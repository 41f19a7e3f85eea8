package llmservice

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"style-rewriter/internal/config"
	"style-rewriter/internal/models"
)

// OpenAIClient generates through any OpenAI-compatible chat endpoint.
type OpenAIClient struct {
	cfg         config.LLMConfig
	temperature float64
	topP        float64
	httpClient  *http.Client
}

func NewOpenAIClient(cfg *config.LLMConfig, temperature, topP float64) *OpenAIClient {
	return &OpenAIClient{
		cfg:         *cfg,
		temperature: temperature,
		topP:        topP,
		httpClient:  &http.Client{Timeout: cfg.Timeout},
	}
}

func (c *OpenAIClient) Generate(ctx context.Context, prompt, model string) (string, error) {
	if model == "" {
		model = c.cfg.Model
	}
	log.Debug().Str("base_url", c.cfg.BaseURL).Str("model", model).Msg("Generating content")

	llm, err := openai.New(
		openai.WithBaseURL(c.cfg.BaseURL),
		openai.WithToken(strings.TrimPrefix(c.cfg.Key, "Bearer ")),
		openai.WithModel(model),
		openai.WithHTTPClient(c.httpClient),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", models.ErrGenerationUnavailable, err)
	}

	out, err := llms.GenerateFromSinglePrompt(ctx, llm, prompt,
		llms.WithTemperature(c.temperature),
		llms.WithTopP(c.topP),
	)
	if err != nil {
		return "", classifyError(err, "the OpenAI-compatible endpoint")
	}
	return strings.TrimSpace(out), nil
}
