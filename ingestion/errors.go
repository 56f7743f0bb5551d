package ingestion

import (
	"errors"
	"fmt"
)

var (
	// ErrRepositoryRequired is returned when a knowledge repository is not provided.
	ErrRepositoryRequired = errors.New("knowledge repository required")

	// ErrAIProviderRequired is returned when an AI provider is not provided.
	ErrAIProviderRequired = errors.New("AI provider required")

	// ErrEmptyText is returned when there is nothing to ingest.
	ErrEmptyText = errors.New("ingestion text is empty")
)

// ExtractionError wraps a failure in the extraction stage. Extraction
// failures are terminal for the batch; nothing is persisted.
type ExtractionError struct {
	CapsuleId string
	Cause     error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extraction failed for capsule %q: %v", e.CapsuleId, e.Cause)
}

func (e *ExtractionError) Unwrap() error {
	return e.Cause
}

// EmbeddingError records an embedding failure for a single atom. It is
// atom-scoped; the batch continues and the atom lands in the fallback
// cluster without a vector.
type EmbeddingError struct {
	Statement string
	Cause     error
}

func (e *EmbeddingError) Error() string {
	return fmt.Sprintf("embedding failed for %q: %v", e.Statement, e.Cause)
}

func (e *EmbeddingError) Unwrap() error {
	return e.Cause
}
