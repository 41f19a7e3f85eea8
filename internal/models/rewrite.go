package models

// CorpusStatus tags the outcome of reading a corpus directory.
type CorpusStatus int

const (
	CorpusNotRequested CorpusStatus = iota
	CorpusNotFound
	CorpusEmpty
	CorpusLoaded
)

func (s CorpusStatus) String() string {
	switch s {
	case CorpusNotRequested:
		return "not_requested"
	case CorpusNotFound:
		return "not_found"
	case CorpusEmpty:
		return "empty"
	case CorpusLoaded:
		return "loaded"
	default:
		return "unknown"
	}
}

// FileDiagnostic records a corpus file that was skipped.
type FileDiagnostic struct {
	Path string `json:"path"`
	Err  string `json:"error"`
}

// CorpusResult is what the corpus reader hands back. Examples is only
// populated when Status is CorpusLoaded.
type CorpusResult struct {
	Status      CorpusStatus
	Dir         string
	Examples    []string
	Diagnostics []FileDiagnostic
}

type RewriteRequest struct {
	Text         string `json:"text"`
	Instructions string `json:"prompt,omitempty"`
	CorpusDir    string `json:"corpus_path,omitempty"`
	Model        string `json:"model,omitempty"`
}

type RewriteResult struct {
	RequestID     string           `json:"request_id"`
	Model         string           `json:"model"`
	RewrittenText string           `json:"rewritten_text"`
	ExamplesUsed  int              `json:"examples_used"`
	Diagnostics   []FileDiagnostic `json:"skipped_files,omitempty"`
}
