package models

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorTypes_Unwrap(t *testing.T) {
	gen := &GenerationError{Err: context.DeadlineExceeded}
	assert.ErrorIs(t, gen, context.DeadlineExceeded)
	assert.Contains(t, gen.Error(), "generation")

	wrapped := fmt.Errorf("route: %w", &EmbeddingError{Op: "query", Err: errors.New("quota exceeded")})
	var embErr *EmbeddingError
	assert.True(t, errors.As(wrapped, &embErr))
	assert.Equal(t, "query", embErr.Op)

	ing := &IngestionError{Source: "brief.pdf", Err: ErrNoText}
	assert.ErrorIs(t, ing, ErrNoText)
	assert.Contains(t, ing.Error(), "brief.pdf")

	per := &PersistenceError{Op: "save", Err: errors.New("read-only file system")}
	assert.Contains(t, per.Error(), "persistence save")
}

func TestIsCollaboratorFailure(t *testing.T) {
	assert.True(t, IsCollaboratorFailure(&GenerationError{Err: errors.New("503")}))
	assert.True(t, IsCollaboratorFailure(fmt.Errorf("x: %w", &EmbeddingError{Op: "query", Err: errors.New("x")})))
	assert.False(t, IsCollaboratorFailure(&PersistenceError{Op: "save", Err: errors.New("x")}))
	assert.False(t, IsCollaboratorFailure(nil))
}
