package domain

import "errors"

// Domain errors represent pipeline failures.
// These are distinct from infrastructure errors.
var (
	// ErrInvalidInput indicates malformed or invalid input. It is
	// surfaced before any collaborator is called and never retried.
	ErrInvalidInput = errors.New("invalid input")

	// ErrDimensionMismatch indicates an embedding vector's dimension
	// disagrees with the dimension the index was established with.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")

	// ErrProviderFailure indicates the embedding or synthesis
	// collaborator failed, including timeouts.
	ErrProviderFailure = errors.New("provider failure")

	// ErrIndexFailure indicates a vector index operation failed.
	ErrIndexFailure = errors.New("vector index failure")

	// ErrUnsupportedSource indicates no decoder recognises the input
	// format.
	ErrUnsupportedSource = errors.New("unsupported source format")

	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrZeroVector indicates a similarity computation was attempted
	// against a zero-magnitude vector, for which cosine similarity is
	// undefined.
	ErrZeroVector = errors.New("zero-magnitude vector")
)
