package governance

import "errors"

var (
	// ErrRepositoryRequired is returned when a knowledge repository is not provided.
	ErrRepositoryRequired = errors.New("knowledge repository required")

	// ErrClusterNotFound is returned when a decision targets a cluster that
	// does not exist.
	ErrClusterNotFound = errors.New("cluster not found")

	// ErrAtomNotFound is returned when a governance action targets an atom
	// that does not exist.
	ErrAtomNotFound = errors.New("atom not found")
)
