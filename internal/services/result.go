package services

import (
	"errors"
	"fmt"

	interrors "github.com/streed/exo/internal/errors"
	"github.com/streed/exo/internal/models"
	"github.com/streed/exo/internal/search"
)

// Kind classifies the outcome of an operation.
type Kind string

const (
	KindOK                   Kind = "ok"
	KindValidation           Kind = "validation"
	KindNotFound             Kind = "not_found"
	KindEmbeddingUnavailable Kind = "embedding_unavailable"
	KindQueryUnavailable     Kind = "query_unavailable"
	KindStorage              Kind = "storage"
	KindUnknownCommand       Kind = "unknown_command"
)

// Result is what every command returns: a human-readable title and body.
// Failures are Results too, with an error-flavoured title and Kind set.
// Note, Notes and Matches carry the structured data behind Content for the
// API and MCP surfaces.
type Result struct {
	Title   string          `json:"title"`
	Content string          `json:"content"`
	Kind    Kind            `json:"kind"`
	Note    *models.Note    `json:"note,omitempty"`
	Notes   []*models.Note  `json:"notes,omitempty"`
	Matches []search.Result `json:"matches,omitempty"`
}

func (r Result) Failed() bool {
	return r.Kind != "" && r.Kind != KindOK
}

func ok(title, content string) Result {
	return Result{Title: title, Content: content, Kind: KindOK}
}

func failure(title string, kind Kind, content string) Result {
	return Result{Title: title, Content: content, Kind: kind}
}

// Classify maps an error onto the Kind reported to callers.
func Classify(err error) Kind {
	switch {
	case err == nil:
		return KindOK
	case interrors.IsValidation(err):
		return KindValidation
	case errors.Is(err, interrors.ErrNoteNotFound):
		return KindNotFound
	case errors.Is(err, interrors.ErrEmbeddingUnavailable):
		return KindEmbeddingUnavailable
	case errors.Is(err, interrors.ErrQueryUnavailable):
		return KindQueryUnavailable
	default:
		return KindStorage
	}
}

// fromError renders err as a failed Result under title.
func fromError(title string, err error) Result {
	kind := Classify(err)
	var content string
	switch kind {
	case KindValidation, KindNotFound:
		content = capitalize(err.Error())
	case KindEmbeddingUnavailable:
		content = fmt.Sprintf("The embedding service could not process this note: %v", err)
	default:
		content = fmt.Sprintf("The notes store failed: %v", err)
	}
	return failure(title, kind, content)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	if c := s[0]; c >= 'a' && c <= 'z' {
		return string(c-'a'+'A') + s[1:]
	}
	return s
}
