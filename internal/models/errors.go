package models

import "errors"

// Failure classes of a rewrite. Components wrap these with fmt.Errorf("%w: ...").
var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrEmptyCorpus           = errors.New("empty corpus")
	ErrGenerationTimeout     = errors.New("generation timeout")
	ErrGenerationUnavailable = errors.New("generation unavailable")
)

const (
	CategoryWarning = "warning"
	CategoryError   = "error"
)

// Category reports whether err is recoverable by resubmitting without a
// corpus (warning) or not (error). nil yields "".
func Category(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrEmptyCorpus):
		return CategoryWarning
	default:
		return CategoryError
	}
}
