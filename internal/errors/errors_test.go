package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructorsCarryCategoryAndStatus(t *testing.T) {
	cause := stderrors.New("boom")

	tests := []struct {
		name       string
		err        *AppError
		category   ErrorCategory
		httpStatus int
	}{
		{
			name:       "extraction",
			err:        NewExtractionError("bundle.zip", cause),
			category:   CategoryExtraction,
			httpStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "parse",
			err:        NewParseError("record.json", cause),
			category:   CategoryParse,
			httpStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "validation",
			err:        NewValidationError("wallet address required"),
			category:   CategoryValidation,
			httpStatus: http.StatusBadRequest,
		},
		{
			name:       "network",
			err:        NewNetworkError("validator unreachable", cause),
			category:   CategoryNetwork,
			httpStatus: http.StatusBadGateway,
		},
		{
			name:       "timeout",
			err:        NewTimeoutError("validator too slow", cause),
			category:   CategoryTimeout,
			httpStatus: http.StatusGatewayTimeout,
		},
		{
			name:       "configuration",
			err:        NewConfigurationError("JWT_SECRET_KEY is required", nil),
			category:   CategoryConfiguration,
			httpStatus: http.StatusInternalServerError,
		},
		{
			name:       "internal",
			err:        NewInternalError("unexpected state", cause),
			category:   CategoryInternal,
			httpStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.category, tt.err.Category)
			assert.Equal(t, tt.httpStatus, tt.err.HTTPStatus)
			assert.True(t, IsCategory(tt.err, tt.category))
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}

func TestIsCategory(t *testing.T) {
	err := NewParseError("record.json", nil)

	assert.True(t, IsCategory(err, CategoryParse))
	assert.False(t, IsCategory(err, CategoryNetwork))
	assert.False(t, IsCategory(stderrors.New("plain"), CategoryParse))
	assert.False(t, IsCategory(nil, CategoryParse))

	// A wrapped AppError is still recognized.
	wrapped := fmt.Errorf("while scoring: %w", err)
	assert.True(t, IsCategory(wrapped, CategoryParse))
}

func TestToAppError(t *testing.T) {
	t.Run("nil stays nil", func(t *testing.T) {
		assert.Nil(t, ToAppError(nil))
	})

	t.Run("app errors pass through unchanged", func(t *testing.T) {
		original := NewConfigurationError("missing setting", nil)
		assert.Same(t, original, ToAppError(original))
	})

	t.Run("connection failures map to network", func(t *testing.T) {
		err := ToAppError(stderrors.New("dial tcp 10.0.0.1:443: connection refused"))
		assert.Equal(t, CategoryNetwork, err.Category)
	})

	t.Run("deadline failures map to timeout", func(t *testing.T) {
		err := ToAppError(stderrors.New("context deadline exceeded"))
		assert.Equal(t, CategoryTimeout, err.Category)

		err = ToAppError(context.DeadlineExceeded)
		assert.Equal(t, CategoryTimeout, err.Category)

		err = ToAppError(context.Canceled)
		assert.Equal(t, CategoryTimeout, err.Category)
	})

	t.Run("anything else maps to internal", func(t *testing.T) {
		err := ToAppError(stderrors.New("something odd"))
		assert.Equal(t, CategoryInternal, err.Category)
	})
}

func TestWrapError(t *testing.T) {
	assert.Nil(t, WrapError(nil, "ignored"))

	cause := stderrors.New("boom")
	err := WrapError(cause, "failed to read %s", "record.json")
	require.Error(t, err)
	assert.Equal(t, "failed to read record.json: boom", err.Error())
	assert.True(t, stderrors.Is(err, cause))
}

func TestAppErrorUnwrap(t *testing.T) {
	cause := stderrors.New("boom")
	err := NewNetworkError("validator unreachable", cause)
	assert.True(t, stderrors.Is(err, cause))
}
