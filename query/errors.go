package query

import "errors"

var (
	// ErrRepositoryRequired is returned when a knowledge repository is not provided.
	ErrRepositoryRequired = errors.New("knowledge repository required")

	// ErrInvalidFilter is returned when a filter or page cannot be parsed.
	// The store is never touched in that case.
	ErrInvalidFilter = errors.New("invalid filter")
)
