package util

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToDomainErrorPassThrough(t *testing.T) {
	original := NewForbidden("nope")
	mapped := ToDomainError(original)
	assert.Equal(t, "FORBIDDEN", mapped.Code)
	assert.Equal(t, http.StatusForbidden, mapped.HTTPStatus)
}

func TestToDomainErrorNoRows(t *testing.T) {
	mapped := ToDomainError(fmt.Errorf("load ticket: %w", pgx.ErrNoRows))
	assert.Equal(t, "NOT_FOUND", mapped.Code)
	assert.Equal(t, http.StatusNotFound, mapped.HTTPStatus)
}

func TestToDomainErrorUnknown(t *testing.T) {
	mapped := ToDomainError(errors.New("boom"))
	assert.Equal(t, "INTERNAL_ERROR", mapped.Code)
	assert.Equal(t, http.StatusInternalServerError, mapped.HTTPStatus)
}

func TestIsCode(t *testing.T) {
	err := NewPrecondition("ticket is not in progress", map[string]any{"status": "Pending"})
	assert.True(t, IsCode(err, "PRECONDITION_FAILED"))
	assert.False(t, IsCode(err, "VALIDATION_FAILED"))
	assert.False(t, IsCode(errors.New("plain"), "PRECONDITION_FAILED"))

	wrapped := fmt.Errorf("outer: %w", err)
	assert.True(t, IsCode(wrapped, "PRECONDITION_FAILED"))
}

func TestDomainErrorUnwrap(t *testing.T) {
	cause := errors.New("disk full")
	err := NewInternalError(cause)

	var domainErr *DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.ErrorIs(t, err, cause)
}
