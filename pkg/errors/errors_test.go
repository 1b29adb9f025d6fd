package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAsHttpError(t *testing.T) {
	testCases := []struct {
		name         string
		err          error
		expectedCode int
		expectedKind string
	}{
		{name: "not found", err: ErrNotFound, expectedCode: http.StatusNotFound, expectedKind: KindNotFound},
		{name: "forbidden", err: ErrForbidden, expectedCode: http.StatusForbidden, expectedKind: KindForbidden},
		{name: "invalid credentials", err: ErrInvalidCredentials, expectedCode: http.StatusUnauthorized, expectedKind: KindAuthInvalid},
		{name: "empty auth header", err: ErrEmptyAuthHeader, expectedCode: http.StatusUnauthorized, expectedKind: KindAuthRequired},
		{name: "version mismatch", err: ErrVersionMismatch, expectedCode: http.StatusConflict, expectedKind: KindConflict},
		{name: "already taken", err: ErrAlreadyTaken, expectedCode: http.StatusConflict, expectedKind: KindConflict},
		{name: "precondition", err: ErrPreconditionFailed, expectedCode: http.StatusUnprocessableEntity, expectedKind: KindPreconditionFailed},
		{name: "bad request", err: ErrBadRequest, expectedCode: http.StatusBadRequest, expectedKind: KindValidationFailed},
		{name: "произвольная ошибка - internal", err: fmt.Errorf("boom"), expectedCode: http.StatusInternalServerError, expectedKind: KindInternal},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			httpErr := AsHttpError(tc.err)
			require.NotNil(t, httpErr)
			assert.Equal(t, tc.expectedCode, httpErr.Code)
			assert.Equal(t, tc.expectedKind, httpErr.Kind)
		})
	}
}

func TestAsHttpErrorPassesThrough(t *testing.T) {
	original := NotFound("задача не найдена")
	assert.Same(t, original, AsHttpError(original))

	wrapped := fmt.Errorf("контекст: %w", ErrNotFound)
	httpErr := AsHttpError(wrapped)
	assert.Equal(t, http.StatusNotFound, httpErr.Code)
}

func TestHttpErrorUnwrap(t *testing.T) {
	cause := fmt.Errorf("исходная причина")
	httpErr := Conflict("конфликт", cause)

	assert.Equal(t, cause, httpErr.Unwrap())
	assert.Contains(t, httpErr.Error(), "конфликт")
	assert.Contains(t, httpErr.Error(), "исходная причина")
}
