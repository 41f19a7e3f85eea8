// Package prompt assembles the single text prompt sent to the generation
// endpoint. Building is pure: equal inputs always give the same prompt.
package prompt

import (
	"fmt"
	"strings"

	"style-rewriter/internal/models"
)

type Builder struct {
	maxExamples     int
	maxExampleChars int
}

type Option func(*Builder)

// WithMaxExamples caps how many corpus examples are embedded. Non-positive
// values keep the default.
func WithMaxExamples(n int) Option {
	return func(b *Builder) {
		if n > 0 {
			b.maxExamples = n
		}
	}
}

// WithMaxExampleChars sets the per-example truncation length in characters.
// Non-positive values keep the default.
func WithMaxExampleChars(n int) Option {
	return func(b *Builder) {
		if n > 0 {
			b.maxExampleChars = n
		}
	}
}

func NewBuilder(opts ...Option) *Builder {
	b := &Builder{
		maxExamples:     models.DefaultMaxExamples,
		maxExampleChars: models.DefaultMaxExampleChars,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build returns the prompt and the number of examples embedded in it.
// With no examples the prompt is the instructions (if any) followed by the
// original text framing; otherwise the first examples are embedded as a
// few-shot preamble. Either way the prompt ends with the rewritten text cue.
func (b *Builder) Build(originalText, instructions string, examples []string) (string, int) {
	var sb strings.Builder

	if len(examples) == 0 {
		if instructions != "" {
			sb.WriteString(instructions)
			sb.WriteString("\n\n")
		}
		writeOriginal(&sb, originalText)
		return sb.String(), 0
	}

	used := examples
	if len(used) > b.maxExamples {
		used = used[:b.maxExamples]
	}

	sb.WriteString(models.FewShotPreamble)
	for i, example := range used {
		fmt.Fprintf(&sb, models.ExampleHeaderFormat, i+1, truncate(example, b.maxExampleChars))
	}
	sb.WriteString(models.FewShotDirective)
	if instructions != "" {
		sb.WriteString(models.InstructionsPrefix)
		sb.WriteString(instructions)
	}
	sb.WriteString("\n\n")
	writeOriginal(&sb, originalText)

	return sb.String(), len(used)
}

func writeOriginal(sb *strings.Builder, originalText string) {
	sb.WriteString(models.OriginalTextHeader)
	sb.WriteString(originalText)
	sb.WriteString("\n\n")
	sb.WriteString(models.RewrittenTextCue)
}

// truncate cuts s to max characters (runes, not bytes) and appends the
// truncation marker when anything was removed.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	n := 0
	for i := range s {
		if n == max {
			return s[:i] + models.TruncationMarker
		}
		n++
	}
	return s
}
