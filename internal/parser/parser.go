package parser

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog/log"

	"style-rewriter/internal/models"
)

var errInvalidUTF8 = errors.New("file is not valid UTF-8")

type CorpusOptions struct {
	// StripMarkdown flattens .md examples to plain text before use.
	StripMarkdown bool
}

// ReadCorpus loads every supported text file under dir, in lexical walk
// order, as a style example. Unreadable files are skipped and reported in
// Diagnostics; they never abort the walk.
func ReadCorpus(dir string, opts CorpusOptions) models.CorpusResult {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return models.CorpusResult{Status: models.CorpusNotRequested}
	}
	res := models.CorpusResult{Dir: dir}

	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		log.Debug().Str("dir", dir).Msg("Corpus directory not found")
		res.Status = models.CorpusNotFound
		return res
	}

	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if path == dir {
				return walkErr
			}
			addDiagnostic(&res, path, walkErr)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !isCorpusFile(path) {
			return nil
		}
		// follows symlinks, skips sockets, devices and dangling links
		if fi, err := os.Stat(path); err != nil || !fi.Mode().IsRegular() {
			return nil
		}

		content, err := parseText(path, opts)
		if err != nil {
			addDiagnostic(&res, path, err)
			return nil
		}
		if content == "" {
			return nil
		}
		res.Examples = append(res.Examples, content)
		return nil
	})
	if err != nil {
		addDiagnostic(&res, dir, err)
	}

	if len(res.Examples) == 0 {
		res.Status = models.CorpusEmpty
		log.Warn().Str("dir", dir).Int("skipped", len(res.Diagnostics)).Msg("No valid text files found in corpus directory")
		return res
	}
	res.Status = models.CorpusLoaded
	log.Debug().Str("dir", dir).Int("examples", len(res.Examples)).Int("skipped", len(res.Diagnostics)).Msg("Loaded corpus")
	return res
}

func isCorpusFile(path string) bool {
	_, ok := models.CorpusExtensions[strings.ToLower(filepath.Ext(path))]
	return ok
}

func parseText(filePath string, opts CorpusOptions) (string, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(data) {
		return "", errInvalidUTF8
	}
	if opts.StripMarkdown && strings.ToLower(filepath.Ext(filePath)) == ".md" {
		text, err := markdownToText(data)
		if err != nil {
			return "", fmt.Errorf("flatten markdown: %w", err)
		}
		return strings.TrimSpace(text), nil
	}
	return strings.TrimSpace(string(data)), nil
}

func addDiagnostic(res *models.CorpusResult, path string, err error) {
	log.Warn().Err(err).Str("path", path).Msg("Skipping corpus file")
	res.Diagnostics = append(res.Diagnostics, models.FileDiagnostic{Path: path, Err: err.Error()})
}
