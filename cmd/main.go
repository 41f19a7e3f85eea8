package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"style-rewriter/internal/config"
	"style-rewriter/internal/helper"
	"style-rewriter/internal/models"
)

const configFilePath = "./configs/config.yaml"

// exitError carries the process exit code for a failed command whose
// message has already been printed.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func main() {
	os.Exit(execute(newRootCmd()))
}

// execute runs root and returns the process exit code. Failures that were
// not already reported by a command are printed as an error object.
func execute(root *cobra.Command) int {
	err := root.Execute()
	if err == nil {
		return 0
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	if perr := helper.PrettyPrint(root.OutOrStdout(), map[string]string{models.CategoryError: err.Error()}); perr != nil {
		fmt.Fprintln(root.ErrOrStderr(), "error:", err)
	}
	return 1
}

type rootOptions struct {
	configPath string
	logLevel   string
	cfg        *config.Config
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "style-rewriter",
		Short:         "Rewrite text in a target style with a local Ollama model",
		Long:          "Rewrite text with a locally hosted model, optionally matching the style of a directory of example documents.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(opts.configPath)
			if err != nil {
				return err
			}
			opts.cfg = cfg
			level := cfg.LogLevel
			if opts.logLevel != "" {
				level = opts.logLevel
			}
			setupLogger(cmd.ErrOrStderr(), level)
			log.Debug().Interface("config", cfg.Ollama).Str("backend", cfg.Backend).Msg("Loaded config")
			return nil
		},
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", configFilePath, "Path to the YAML config file")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn, error (default from config)")

	root.AddCommand(
		newRewriteCmd(opts),
		newBatchCmd(opts),
		newCheckCmd(opts),
		newModelsCmd(opts),
	)
	return root
}

func setupLogger(w io.Writer, level string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}).With().Caller().Logger()
}
