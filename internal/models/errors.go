package models

import (
	"errors"
	"fmt"
)

var (
	// ErrNoText indicates a document yielded no indexable text. It is not fatal.
	ErrNoText = errors.New("no extractable text")

	// ErrUnsupportedType indicates an upload that is not a PDF.
	ErrUnsupportedType = errors.New("unsupported file type")

	// ErrSessionNotFound indicates an unknown or already ended session.
	ErrSessionNotFound = errors.New("session not found")
)

// IngestionError reports an unreadable or corrupt document. It is scoped to one
// file and never aborts a batch.
type IngestionError struct {
	Source string
	Err    error
}

func (e *IngestionError) Error() string {
	return fmt.Sprintf("ingest %s: %v", e.Source, e.Err)
}

func (e *IngestionError) Unwrap() error { return e.Err }

// EmbeddingError reports a failure of the embedding collaborator (network, quota, timeout).
type EmbeddingError struct {
	Op  string
	Err error
}

func (e *EmbeddingError) Error() string {
	return fmt.Sprintf("embedding %s: %v", e.Op, e.Err)
}

func (e *EmbeddingError) Unwrap() error { return e.Err }

// GenerationError reports a failure of the language-model collaborator.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation: %v", e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// PersistenceError reports that durable storage could not be written or read.
// After a failed save the in-memory index is still usable.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// IsCollaboratorFailure reports whether err came from the embedding or generation collaborator.
func IsCollaboratorFailure(err error) bool {
	var embErr *EmbeddingError
	var genErr *GenerationError
	return errors.As(err, &embErr) || errors.As(err, &genErr)
}
