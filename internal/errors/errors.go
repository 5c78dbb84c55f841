package errors

import "errors"

// Common errors used throughout the application
var (
	// Storage errors
	ErrNoteNotFound = errors.New("note not found")
	ErrStorage      = errors.New("storage failure")

	// Validation errors
	ErrEmptyContent     = errors.New("note text cannot be empty")
	ErrInvalidNoteID    = errors.New("invalid note ID")
	ErrInvalidBoolean   = errors.New("invalid boolean value (use true/false)")
	ErrUnknownConfigKey = errors.New("unknown configuration key")

	// Embedding errors
	ErrEmbeddingUnavailable = errors.New("embedding unavailable")
	ErrDimensionMismatch    = errors.New("embedding dimension mismatch")

	// Language model errors
	ErrQueryUnavailable = errors.New("language model unavailable")
	ErrEmptyQuery       = errors.New("query text cannot be empty")
)

// IsValidation reports whether err was rejected before any external call.
func IsValidation(err error) bool {
	return errors.Is(err, ErrEmptyContent) ||
		errors.Is(err, ErrInvalidNoteID) ||
		errors.Is(err, ErrEmptyQuery)
}
