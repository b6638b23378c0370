package domain

import "fmt"

// ParseError means the PDF bytes could not be turned into pages.
type ParseError struct {
	Cause error
}

func (e *ParseError) Error() string { return fmt.Sprintf("parse pdf: %v", e.Cause) }
func (e *ParseError) Unwrap() error { return e.Cause }

// ProviderError means the embedding backend was unreachable,
// unauthorized or rate-limited. Retryable from the caller's side.
type ProviderError struct {
	Provider string
	Cause    error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("embedding provider %s: %v", e.Provider, e.Cause)
}
func (e *ProviderError) Unwrap() error { return e.Cause }

// MalformedResponseError means the embedding backend answered but the
// response did not contain a usable vector. Never downgraded to a
// zero vector.
type MalformedResponseError struct {
	Provider string
	Detail   string
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("embedding provider %s returned malformed response: %s", e.Provider, e.Detail)
}

// StoreError means the vector store rejected or failed a read/write.
type StoreError struct {
	Op        string
	Namespace string
	Cause     error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("vector store %s (namespace %s): %v", e.Op, e.Namespace, e.Cause)
}
func (e *StoreError) Unwrap() error { return e.Cause }

// DimensionMismatchError means a vector's length disagrees with the
// dimensionality established for the namespace. Failing fast here is
// what keeps similarity scores from being silently corrupted.
type DimensionMismatchError struct {
	Want int
	Got  int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("embedding dimension mismatch: want %d, got %d", e.Want, e.Got)
}
