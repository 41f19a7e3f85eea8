package llmservice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"style-rewriter/internal/config"
	"style-rewriter/internal/models"
)

const (
	generatePath = "/api/generate"
	tagsPath     = "/api/tags"
	maxErrorBody = 4096
)

// OllamaClient talks to the native Ollama HTTP API.
type OllamaClient struct {
	cfg        config.OllamaConfig
	httpClient *http.Client
}

type generateRequest struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt"`
	Stream  bool            `json:"stream"`
	Options generateOptions `json:"options"`
}

type generateOptions struct {
	Temperature float64 `json:"temperature"`
	TopP        float64 `json:"top_p"`
}

type generateResponse struct {
	Response string `json:"response"`
}

type tagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

func NewOllamaClient(cfg *config.OllamaConfig) *OllamaClient {
	c := *cfg
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	if c.Model == "" {
		c.Model = models.DefaultModel
	}
	return &OllamaClient{
		cfg:        c,
		httpClient: &http.Client{Timeout: c.Timeout},
	}
}

// Generate sends one non-streaming generate request. An empty model uses the
// configured default. An empty response field is a valid, empty result.
func (c *OllamaClient) Generate(ctx context.Context, prompt, model string) (string, error) {
	if model == "" {
		model = c.cfg.Model
	}
	payload := generateRequest{
		Model:  model,
		Prompt: prompt,
		Stream: false,
		Options: generateOptions{
			Temperature: c.cfg.Temperature,
			TopP:        c.cfg.TopP,
		},
	}
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("%w: encode request: %v", models.ErrGenerationUnavailable, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+generatePath, bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("%w: %v", models.ErrGenerationUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")

	log.Debug().Str("model", model).Int("prompt_len", len(prompt)).Msg("Calling Ollama generate")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", classifyError(err, "Ollama")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return "", fmt.Errorf("%w: Ollama returned status %d: %s", models.ErrGenerationUnavailable, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var result generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		if isTimeout(err) {
			return "", classifyError(err, "Ollama")
		}
		return "", fmt.Errorf("%w: malformed Ollama response: %v", models.ErrGenerationUnavailable, err)
	}
	return strings.TrimSpace(result.Response), nil
}

// Available reports whether the Ollama server answers its tags endpoint.
func (c *OllamaClient) Available(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.ProbeTimeout)
	defer cancel()

	resp, err := c.getTags(ctx)
	if err != nil {
		log.Debug().Err(err).Msg("Ollama not available")
		return false
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	return resp.StatusCode == http.StatusOK
}

// ListModels returns the names of locally available models. Any failure
// falls back to the configured default model.
func (c *OllamaClient) ListModels(ctx context.Context) []string {
	fallback := []string{c.cfg.Model}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.ListTimeout)
	defer cancel()

	resp, err := c.getTags(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Listing Ollama models failed")
		return fallback
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		log.Warn().Int("status", resp.StatusCode).Msg("Listing Ollama models failed")
		return fallback
	}

	var tags tagsResponse
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		log.Warn().Err(err).Msg("Malformed Ollama tags response")
		return fallback
	}
	names := make([]string, 0, len(tags.Models))
	for _, m := range tags.Models {
		if m.Name != "" {
			names = append(names, m.Name)
		}
	}
	if len(names) == 0 {
		return fallback
	}
	return names
}

func (c *OllamaClient) getTags(ctx context.Context) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+tagsPath, nil)
	if err != nil {
		return nil, err
	}
	return c.httpClient.Do(req)
}
