package models

const (
	DefaultModel           = "llama3.2"
	DefaultOllamaURL       = "http://localhost:11434"
	DefaultMaxExamples     = 3
	DefaultMaxExampleChars = 1000
	TruncationMarker       = "..."
)

// prompt framing, kept byte-for-byte stable so prompts are reproducible
const (
	FewShotPreamble     = "You are a text rewriter. Below are examples of the target writing style:\n"
	ExampleHeaderFormat = "EXAMPLE %d:\n%s\n"
	FewShotDirective    = "\nNow, rewrite the following text in the same style as the examples above."
	InstructionsPrefix  = " Additional instructions: "
	OriginalTextHeader  = "ORIGINAL TEXT:\n"
	RewrittenTextCue    = "REWRITTEN TEXT:"
)

// CorpusExtensions lists the lowercased file extensions read as style examples.
var CorpusExtensions = map[string]struct{}{
	".txt":  {},
	".md":   {},
	".text": {},
}
