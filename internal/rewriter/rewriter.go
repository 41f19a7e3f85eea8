// Package rewriter runs the rewrite pipeline: validate the request, load the
// optional style corpus, build the prompt and make one generation call.
package rewriter

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"style-rewriter/internal/config"
	"style-rewriter/internal/helper"
	"style-rewriter/internal/llmservice"
	"style-rewriter/internal/models"
	"style-rewriter/internal/parser"
	"style-rewriter/internal/prompt"
)

type Rewriter struct {
	generator    llmservice.Generator
	builder      *prompt.Builder
	corpusOpts   parser.CorpusOptions
	defaultModel string
}

func NewRewriter(generator llmservice.Generator, cfg *config.Config) *Rewriter {
	return &Rewriter{
		generator: generator,
		builder: prompt.NewBuilder(
			prompt.WithMaxExamples(cfg.Rewrite.MaxExamples),
			prompt.WithMaxExampleChars(cfg.Rewrite.MaxExampleChars),
		),
		corpusOpts:   parser.CorpusOptions{StripMarkdown: cfg.Rewrite.StripMarkdown},
		defaultModel: cfg.DefaultModel(),
	}
}

// Rewrite performs a single rewrite. Generation is attempted exactly once;
// its errors are returned unchanged.
func (r *Rewriter) Rewrite(ctx context.Context, req models.RewriteRequest) (*models.RewriteResult, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return nil, fmt.Errorf("%w: no text provided", models.ErrInvalidInput)
	}
	instructions := strings.TrimSpace(req.Instructions)
	model := strings.TrimSpace(req.Model)
	if model == "" {
		model = r.defaultModel
	}

	requestID, err := helper.GenerateUUID()
	if err != nil {
		log.Warn().Err(err).Msg("Error generating request id")
	}
	logger := log.With().Str("request_id", requestID).Str("model", model).Logger()

	corpus := parser.ReadCorpus(req.CorpusDir, r.corpusOpts)
	switch corpus.Status {
	case models.CorpusNotFound:
		return nil, fmt.Errorf("%w: corpus directory %q not found", models.ErrEmptyCorpus, corpus.Dir)
	case models.CorpusEmpty:
		return nil, fmt.Errorf("%w: no valid text files found in corpus directory %q", models.ErrEmptyCorpus, corpus.Dir)
	}

	promptText, used := r.builder.Build(text, instructions, corpus.Examples)
	logger.Debug().Str("corpus", corpus.Status.String()).Int("examples", used).Int("prompt_len", len(promptText)).Msg("Built prompt")

	rewritten, err := r.generator.Generate(ctx, promptText, model)
	if err != nil {
		logger.Error().Err(err).Msg("Generation failed")
		return nil, err
	}
	logger.Info().Int("examples", used).Int("output_len", len(rewritten)).Msg("Rewrite complete")

	return &models.RewriteResult{
		RequestID:     requestID,
		Model:         model,
		RewrittenText: rewritten,
		ExamplesUsed:  used,
		Diagnostics:   corpus.Diagnostics,
	}, nil
}
