package domain

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyTranscription = errors.New("failed to transcribe audio")
	ErrSymbolExtraction   = errors.New("symbol extraction failed")
	ErrEmptyCompletion    = errors.New("empty response from model")
)

// SearchRequestError reports a search query answered with a non-success status.
type SearchRequestError struct {
	Category Category
	Status   string
}

func (e *SearchRequestError) Error() string {
	return fmt.Sprintf("search request failed for %s: %s", e.Category, e.Status)
}
