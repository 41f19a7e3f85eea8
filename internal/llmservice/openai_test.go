package llmservice

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"style-rewriter/internal/config"
	"style-rewriter/internal/models"
)

func TestOpenAIGenerate(t *testing.T) {
	var prompt string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/chat/completions"), r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req struct {
			Model    string `json:"model"`
			Messages []struct {
				Content any `json:"content"`
			} `json:"messages"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "local-model", req.Model)
		if len(req.Messages) > 0 {
			b, _ := json.Marshal(req.Messages[0].Content)
			prompt = string(b)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"1","object":"chat.completion","created":1,"model":"local-model",` +
			`"choices":[{"index":0,"message":{"role":"assistant","content":"  Formal text. "},"finish_reason":"stop"}],` +
			`"usage":{"prompt_tokens":1,"completion_tokens":1,"total_tokens":2}}`))
	}))
	defer srv.Close()

	cfg := &config.LLMConfig{BaseURL: srv.URL, Key: "test-key", Model: "local-model", Timeout: config.Default().OpenAI.Timeout}
	out, err := NewOpenAIClient(cfg, 0.7, 0.9).Generate(context.Background(), "ORIGINAL TEXT:\nhi\n\nREWRITTEN TEXT:", "")
	require.NoError(t, err)
	assert.Equal(t, "Formal text.", out)
	assert.Contains(t, prompt, "REWRITTEN TEXT:")
}

func TestOpenAIGenerate_ServerErrorIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"message":"bad model","type":"invalid_request_error"}}`))
	}))
	defer srv.Close()

	cfg := &config.LLMConfig{BaseURL: srv.URL, Key: "test-key", Model: "m", Timeout: config.Default().OpenAI.Timeout}
	_, err := NewOpenAIClient(cfg, 0.7, 0.9).Generate(context.Background(), "p", "")
	assert.ErrorIs(t, err, models.ErrGenerationUnavailable)
}

func TestNew_SelectsBackend(t *testing.T) {
	cfg := config.Default()
	g, err := New(cfg)
	require.NoError(t, err)
	assert.IsType(t, &OllamaClient{}, g)

	cfg.Backend = config.BackendOpenAI
	cfg.OpenAI.Model = "m"
	g, err = New(cfg)
	require.NoError(t, err)
	assert.IsType(t, &OpenAIClient{}, g)

	cfg.Backend = "other"
	_, err = New(cfg)
	assert.Error(t, err)
}
