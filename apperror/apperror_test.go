package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want int
	}{
		{"database", NewDatabaseError("db", nil), http.StatusServiceUnavailable},
		{"config", NewConfigError("cfg", nil), http.StatusInternalServerError},
		{"auth", NewAuthError("auth", nil), http.StatusUnauthorized},
		{"not found", NewNotFoundError("nf", nil), http.StatusNotFound},
		{"validation", NewValidationError("v", nil), http.StatusBadRequest},
		{"bad request", NewBadRequestError("br", nil), http.StatusBadRequest},
		{"internal", NewInternalError("i", nil), http.StatusInternalServerError},
		{"conflict", NewConflictError("c", nil), http.StatusConflict},
		{"unknown", NewAppError(UnknownError, "u", nil), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.StatusCode())
		})
	}
}

func TestErrorAndUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewDatabaseError("failed to find user", cause)

	assert.Equal(t, "failed to find user: connection refused", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "plain", NewBadRequestError("plain", nil).Error())
}

func TestFromErrorSeesThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("login: %w", NewConflictError("username already exists", nil))

	appErr, ok := FromError(wrapped)
	require.True(t, ok)
	assert.Equal(t, ConflictError, appErr.Type)
	assert.True(t, IsConflictError(wrapped))
	assert.False(t, IsNotFound(wrapped))

	_, ok = FromError(errors.New("plain"))
	assert.False(t, ok)
	_, ok = FromError(nil)
	assert.False(t, ok)
}

func TestWriteError(t *testing.T) {
	t.Run("auth error carries bearer challenge", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/filter_movies", nil)

		WriteError(rec, req, NewAuthError("Could not validate credentials", nil))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"))
		assert.JSONEq(t, `{"error":"Could not validate credentials"}`, rec.Body.String())
	})

	t.Run("unknown error hides its cause", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)

		WriteError(rec, req, errors.New("secret internals"))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Empty(t, rec.Header().Get("WWW-Authenticate"))
		assert.JSONEq(t, `{"error":"an unexpected error occurred"}`, rec.Body.String())
	})
}

func TestWriteJSONNilBody(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteJSON(rec, http.StatusNoContent, nil)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
}
