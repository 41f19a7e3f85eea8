package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"style-rewriter/internal/models"
)

const (
	BackendOllama = "ollama"
	BackendOpenAI = "openai"
)

type Config struct {
	Backend  string        `yaml:"backend"`
	LogLevel string        `yaml:"log_level"`
	Ollama   OllamaConfig  `yaml:"ollama"`
	OpenAI   LLMConfig     `yaml:"openai"`
	Rewrite  RewriteConfig `yaml:"rewrite"`
}

type OllamaConfig struct {
	BaseURL      string        `yaml:"base_url"`
	Model        string        `yaml:"model"`
	Timeout      time.Duration `yaml:"timeout"`
	ProbeTimeout time.Duration `yaml:"probe_timeout"`
	ListTimeout  time.Duration `yaml:"list_timeout"`
	Temperature  float64       `yaml:"temperature"`
	TopP         float64       `yaml:"top_p"`
}

// LLMConfig describes an OpenAI-compatible endpoint.
type LLMConfig struct {
	BaseURL string        `yaml:"base_url"`
	Key     string        `yaml:"key"`
	Model   string        `yaml:"model"`
	Timeout time.Duration `yaml:"timeout"`
}

type RewriteConfig struct {
	MaxExamples     int  `yaml:"max_examples"`
	MaxExampleChars int  `yaml:"max_example_chars"`
	StripMarkdown   bool `yaml:"strip_markdown"`
	Concurrency     int  `yaml:"concurrency"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Backend:  BackendOllama,
		LogLevel: "info",
		Ollama: OllamaConfig{
			BaseURL:      models.DefaultOllamaURL,
			Model:        models.DefaultModel,
			Timeout:      120 * time.Second,
			ProbeTimeout: 2 * time.Second,
			ListTimeout:  5 * time.Second,
			Temperature:  0.7,
			TopP:         0.9,
		},
		OpenAI: LLMConfig{
			BaseURL: "https://api.openai.com/v1",
			Timeout: 120 * time.Second,
		},
		Rewrite: RewriteConfig{
			MaxExamples:     models.DefaultMaxExamples,
			MaxExampleChars: models.DefaultMaxExampleChars,
			Concurrency:     2,
		},
	}
}

// LoadConfig reads the YAML file at path on top of Default. A missing file
// is not an error. Environment overrides are applied last.
func LoadConfig(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, err
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse %s: %w", path, err)
			}
		}
	}
	cfg.applyEnv()
	if cfg.Ollama.Model == "" {
		cfg.Ollama.Model = models.DefaultModel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("OLLAMA_HOST"); v != "" {
		c.Ollama.BaseURL = v
	}
	if v := os.Getenv("STYLE_REWRITER_MODEL"); v != "" {
		c.Ollama.Model = v
		c.OpenAI.Model = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		c.OpenAI.Key = v
	}
}

func (c *Config) Validate() error {
	switch c.Backend {
	case BackendOllama:
		if c.Ollama.BaseURL == "" {
			return fmt.Errorf("ollama.base_url is required")
		}
		if c.Ollama.Timeout <= 0 || c.Ollama.ProbeTimeout <= 0 || c.Ollama.ListTimeout <= 0 {
			return fmt.Errorf("ollama timeouts must be positive")
		}
	case BackendOpenAI:
		if c.OpenAI.BaseURL == "" || c.OpenAI.Model == "" {
			return fmt.Errorf("openai.base_url and openai.model are required")
		}
		if c.OpenAI.Timeout <= 0 {
			return fmt.Errorf("openai.timeout must be positive")
		}
	default:
		return fmt.Errorf("unknown backend %q", c.Backend)
	}
	return nil
}

// DefaultModel is the model used when a request does not name one.
func (c *Config) DefaultModel() string {
	if c.Backend == BackendOpenAI {
		return c.OpenAI.Model
	}
	return c.Ollama.Model
}
