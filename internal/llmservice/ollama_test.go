package llmservice

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"style-rewriter/internal/config"
	"style-rewriter/internal/models"
)

func testOllamaConfig(baseURL string) *config.OllamaConfig {
	cfg := config.Default().Ollama
	cfg.BaseURL = baseURL
	return &cfg
}

func TestOllamaGenerate_SendsContractPayload(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/generate", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"model":"mistral","response":"  Rewritten text.\n","done":true}`))
	}))
	defer srv.Close()

	out, err := NewOllamaClient(testOllamaConfig(srv.URL+"/")).Generate(context.Background(), "PROMPT", "mistral")
	require.NoError(t, err)
	assert.Equal(t, "Rewritten text.", out)

	assert.Equal(t, "mistral", got["model"])
	assert.Equal(t, "PROMPT", got["prompt"])
	assert.Equal(t, false, got["stream"])
	assert.Equal(t, map[string]any{"temperature": 0.7, "top_p": 0.9}, got["options"])
}

func TestOllamaGenerate_DefaultModel(t *testing.T) {
	var model string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req generateRequest
		json.NewDecoder(r.Body).Decode(&req)
		model = req.Model
		w.Write([]byte(`{"response":"ok"}`))
	}))
	defer srv.Close()

	_, err := NewOllamaClient(testOllamaConfig(srv.URL)).Generate(context.Background(), "p", "")
	require.NoError(t, err)
	assert.Equal(t, "llama3.2", model)
}

func TestOllamaGenerate_EmptyResponseIsValid(t *testing.T) {
	for _, body := range []string{`{"response":""}`, `{"done":true}`, `{"response":"   "}`} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(body))
		}))
		out, err := NewOllamaClient(testOllamaConfig(srv.URL)).Generate(context.Background(), "p", "m")
		srv.Close()
		require.NoError(t, err, body)
		assert.Empty(t, out, body)
	}
}

func TestOllamaGenerate_Timeout(t *testing.T) {
	var calls atomic.Int32
	done := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		select {
		case <-r.Context().Done():
		case <-done:
		}
	}))
	defer srv.Close()
	defer close(done) // release the handler before Close waits on it

	cfg := testOllamaConfig(srv.URL)
	cfg.Timeout = 50 * time.Millisecond

	_, err := NewOllamaClient(cfg).Generate(context.Background(), "p", "m")
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrGenerationTimeout)
	assert.NotErrorIs(t, err, models.ErrGenerationUnavailable)
	assert.Contains(t, err.Error(), "too long")
	assert.Equal(t, int32(1), calls.Load())
}

func TestOllamaGenerate_Unavailable(t *testing.T) {
	t.Run("non-success status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"error":"model 'nope' not found"}`, http.StatusNotFound)
		}))
		defer srv.Close()

		_, err := NewOllamaClient(testOllamaConfig(srv.URL)).Generate(context.Background(), "p", "nope")
		assert.ErrorIs(t, err, models.ErrGenerationUnavailable)
		assert.Contains(t, err.Error(), "404")
		assert.Contains(t, err.Error(), "not found")
	})

	t.Run("malformed body", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`<html>proxy error</html>`))
		}))
		defer srv.Close()

		_, err := NewOllamaClient(testOllamaConfig(srv.URL)).Generate(context.Background(), "p", "m")
		assert.ErrorIs(t, err, models.ErrGenerationUnavailable)
	})

	t.Run("connection refused", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		_, err := NewOllamaClient(testOllamaConfig(url)).Generate(context.Background(), "p", "m")
		assert.ErrorIs(t, err, models.ErrGenerationUnavailable)
		assert.NotErrorIs(t, err, models.ErrGenerationTimeout)
	})
}

func TestOllamaAvailable(t *testing.T) {
	up := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tags", r.URL.Path)
		w.Write([]byte(`{"models":[]}`))
	}))
	defer up.Close()
	assert.True(t, NewOllamaClient(testOllamaConfig(up.URL)).Available(context.Background()))

	erroring := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer erroring.Close()
	assert.False(t, NewOllamaClient(testOllamaConfig(erroring.URL)).Available(context.Background()))

	done := make(chan struct{})
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-done:
		}
	}))
	defer slow.Close()
	defer close(done) // release the handler before Close waits on it
	cfg := testOllamaConfig(slow.URL)
	cfg.ProbeTimeout = 50 * time.Millisecond
	assert.False(t, NewOllamaClient(cfg).Available(context.Background()))

	down := httptest.NewServer(http.NotFoundHandler())
	url := down.URL
	down.Close()
	assert.False(t, NewOllamaClient(testOllamaConfig(url)).Available(context.Background()))
}

func TestOllamaListModels(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"models":[{"name":"llama3.2:latest","size":1},{"name":"mistral:7b"}]}`))
	}))
	defer srv.Close()

	got := NewOllamaClient(testOllamaConfig(srv.URL)).ListModels(context.Background())
	assert.Equal(t, []string{"llama3.2:latest", "mistral:7b"}, got)
}

func TestOllamaListModels_FallsBackToDefault(t *testing.T) {
	handlers := map[string]http.HandlerFunc{
		"server error": func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusBadGateway) },
		"bad json":     func(w http.ResponseWriter, r *http.Request) { w.Write([]byte(`nope`)) },
		"no models":    func(w http.ResponseWriter, r *http.Request) { w.Write([]byte(`{"models":[]}`)) },
	}
	for name, h := range handlers {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(h)
			defer srv.Close()

			cfg := testOllamaConfig(srv.URL)
			cfg.Model = "phi3"
			assert.Equal(t, []string{"phi3"}, NewOllamaClient(cfg).ListModels(context.Background()))
		})
	}
}
