package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppErrorMessageAndUnwrap(t *testing.T) {
	cause := errors.New("connection reset")
	err := NewModelCallError(ErrCodeModelCallFailed, "scoring request failed", cause)

	assert.Equal(t, "MODEL_CALL_FAILED: scoring request failed (caused by: connection reset)", err.Error())
	assert.ErrorIs(t, err, cause)

	plain := NewValidationError(ErrCodeInvalidCriteria, "criteria is required", nil)
	assert.Equal(t, "INVALID_CRITERIA: criteria is required", plain.Error())
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want int
	}{
		{"validation", NewValidationError(ErrCodeInvalidRequest, "bad", nil), http.StatusBadRequest},
		{"unsupported", NewUnsupportedFormatError("cv.txt", ".txt"), http.StatusUnsupportedMediaType},
		{"corrupt", NewCorruptFileError(ErrCodeCorruptFile, "cv.pdf", nil), http.StatusUnprocessableEntity},
		{"model", NewModelCallError(ErrCodeModelUnavailable, "down", nil), http.StatusBadGateway},
		{"not found", NewNotFoundError(ErrCodeRunNotFound, "missing"), http.StatusNotFound},
		{"internal", NewInternalError(ErrCodeStorageFailed, "disk", nil), http.StatusInternalServerError},
		{"config", NewConfigError(ErrCodeMissingAPIKey, "key", nil), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.HTTPStatus())
		})
	}
}

func TestAsFindsWrappedAppError(t *testing.T) {
	inner := NewUnsupportedFormatError("notes.txt", ".txt")
	wrapped := fmt.Errorf("failed to load upload: %w", inner)

	appErr, ok := As(wrapped)
	require.True(t, ok)
	assert.Same(t, inner, appErr)
	assert.Equal(t, "notes.txt", appErr.Context["file_name"])
	assert.True(t, IsType(wrapped, ErrorTypeUnsupportedFormat))
	assert.False(t, IsType(errors.New("plain"), ErrorTypeUnsupportedFormat))
}
