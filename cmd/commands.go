package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"style-rewriter/internal/config"
	"style-rewriter/internal/helper"
	"style-rewriter/internal/llmservice"
	"style-rewriter/internal/models"
	"style-rewriter/internal/rewriter"
)

type rewriteFlags struct {
	file          string
	prompt        string
	corpus        string
	model         string
	stripMarkdown bool
}

func (f *rewriteFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.prompt, "prompt", "p", "", "Custom rewrite instructions")
	cmd.Flags().StringVarP(&f.corpus, "corpus", "c", "", "Directory of .txt/.md/.text style examples")
	cmd.Flags().StringVarP(&f.model, "model", "m", "", "Model name (default from config)")
	cmd.Flags().BoolVar(&f.stripMarkdown, "strip-markdown", false, "Flatten markdown examples to plain text")
}

func newRewriter(opts *rootOptions, f *rewriteFlags) (*rewriter.Rewriter, error) {
	if f.stripMarkdown {
		opts.cfg.Rewrite.StripMarkdown = true
	}
	gen, err := llmservice.New(opts.cfg)
	if err != nil {
		return nil, err
	}
	return rewriter.NewRewriter(gen, opts.cfg), nil
}

func newRewriteCmd(opts *rootOptions) *cobra.Command {
	f := &rewriteFlags{}
	cmd := &cobra.Command{
		Use:   "rewrite [text]",
		Short: "Rewrite a block of text",
		Long:  "Rewrite text given as arguments, with --file, or piped via stdin.",
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(cmd.InOrStdin(), f.file, args)
			if err != nil {
				return err
			}
			rw, err := newRewriter(opts, f)
			if err != nil {
				return err
			}
			res, err := rw.Rewrite(cmd.Context(), models.RewriteRequest{
				Text:         text,
				Instructions: f.prompt,
				CorpusDir:    f.corpus,
				Model:        f.model,
			})
			if err != nil {
				return reportFailure(cmd.OutOrStdout(), err)
			}
			return helper.PrettyPrint(cmd.OutOrStdout(), res)
		},
	}
	cmd.Flags().StringVarP(&f.file, "file", "f", "", "Read the text to rewrite from a file")
	f.register(cmd)
	return cmd
}

type batchEntry struct {
	File    string                `json:"file"`
	Result  *models.RewriteResult `json:"result,omitempty"`
	Error   string                `json:"error,omitempty"`
	Warning string                `json:"warning,omitempty"`
}

func newBatchCmd(opts *rootOptions) *cobra.Command {
	f := &rewriteFlags{}
	var concurrency int
	cmd := &cobra.Command{
		Use:   "rewrite-batch <file>...",
		Short: "Rewrite several files independently",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rw, err := newRewriter(opts, f)
			if err != nil {
				return err
			}
			if concurrency <= 0 {
				concurrency = opts.cfg.Rewrite.Concurrency
			}

			entries := make([]batchEntry, len(args))
			reqs := make([]models.RewriteRequest, len(args))
			for i, path := range args {
				entries[i].File = path
				data, err := os.ReadFile(path)
				if err != nil {
					entries[i].Error = err.Error()
					continue
				}
				reqs[i] = models.RewriteRequest{
					Text:         string(data),
					Instructions: f.prompt,
					CorpusDir:    f.corpus,
					Model:        f.model,
				}
			}

			pending := make([]models.RewriteRequest, 0, len(reqs))
			index := make([]int, 0, len(reqs))
			for i := range reqs {
				if entries[i].Error == "" {
					pending = append(pending, reqs[i])
					index = append(index, i)
				}
			}

			for j, item := range rw.RewriteAll(cmd.Context(), pending, concurrency) {
				e := &entries[index[j]]
				switch models.Category(item.Err) {
				case "":
					e.Result = item.Result
				case models.CategoryWarning:
					e.Warning = item.Err.Error()
				default:
					e.Error = item.Err.Error()
				}
			}
			if err := helper.PrettyPrint(cmd.OutOrStdout(), entries); err != nil {
				return err
			}
			return batchOutcome(entries)
		},
	}
	cmd.Flags().IntVarP(&concurrency, "concurrency", "j", 0, "Rewrites in flight at once (default from config)")
	f.register(cmd)
	return cmd
}

// batchOutcome exits 2 when every failed item is only a warning and 1 when
// any item hit an error.
func batchOutcome(entries []batchEntry) error {
	var errs, warnings int
	for _, e := range entries {
		switch {
		case e.Error != "":
			errs++
		case e.Warning != "":
			warnings++
		}
	}
	switch {
	case errs > 0:
		return &exitError{code: 1, err: fmt.Errorf("%d of %d rewrites failed", errs+warnings, len(entries))}
	case warnings > 0:
		return &exitError{code: 2, err: fmt.Errorf("%d of %d rewrites returned a warning", warnings, len(entries))}
	}
	return nil
}

// requireOllama rejects Ollama server commands when rewrites go to another
// backend.
func requireOllama(cmd *cobra.Command, opts *rootOptions) error {
	if opts.cfg.Backend != config.BackendOllama {
		return fmt.Errorf("%s needs the ollama backend, configured backend is %q", cmd.Name(), opts.cfg.Backend)
	}
	return nil
}

func newCheckCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Check whether the Ollama server is reachable (ollama backend only)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireOllama(cmd, opts); err != nil {
				return err
			}
			available := llmservice.NewOllamaClient(&opts.cfg.Ollama).Available(cmd.Context())
			return helper.PrettyPrint(cmd.OutOrStdout(), map[string]bool{"available": available})
		},
	}
}

func newModelsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List models available on the Ollama server (ollama backend only)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireOllama(cmd, opts); err != nil {
				return err
			}
			names := llmservice.NewOllamaClient(&opts.cfg.Ollama).ListModels(cmd.Context())
			return helper.PrettyPrint(cmd.OutOrStdout(), map[string][]string{"models": names})
		},
	}
}

// readInput picks the text to rewrite: positional args or --file (not both),
// otherwise stdin when it is piped.
func readInput(stdin io.Reader, file string, args []string) (string, error) {
	if len(args) > 0 && file != "" {
		return "", fmt.Errorf("give the text either as arguments or with --file, not both")
	}
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("read %s: %w", file, err)
		}
		return string(data), nil
	}
	if f, ok := stdin.(*os.File); ok {
		stat, err := f.Stat()
		if err != nil || stat.Mode()&os.ModeCharDevice != 0 {
			return "", nil
		}
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return string(data), nil
}

// reportFailure prints a warning or error object and returns the matching
// exit code.
func reportFailure(w io.Writer, err error) error {
	category := models.Category(err)
	if perr := helper.PrettyPrint(w, map[string]string{category: err.Error()}); perr != nil {
		return perr
	}
	code := 1
	if category == models.CategoryWarning {
		code = 2
	}
	return &exitError{code: code, err: err}
}
