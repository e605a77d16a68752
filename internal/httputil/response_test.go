package httputil

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/craftbooks/portal-server-go/internal/errors"
)

func TestStatusFromCode(t *testing.T) {
	tests := []struct {
		code   apperrors.ErrorCode
		status int
	}{
		{apperrors.ErrCodeUnauthorized, http.StatusUnauthorized},
		{apperrors.ErrCodeForbidden, http.StatusForbidden},
		{apperrors.ErrCodeNotFound, http.StatusNotFound},
		{apperrors.ErrCodeValidation, http.StatusBadRequest},
		{apperrors.ErrCodeInvalidInput, http.StatusBadRequest},
		{apperrors.ErrCodeMissingRequired, http.StatusBadRequest},
		{apperrors.ErrCodeConflict, http.StatusConflict},
		{apperrors.ErrCodeRateLimitExceeded, http.StatusTooManyRequests},
		{apperrors.ErrCodeInternal, http.StatusInternalServerError},
		{apperrors.ErrCodeDatabase, http.StatusInternalServerError},
		{apperrors.ErrCodeGateway, http.StatusInternalServerError},
		{apperrors.ErrCodeMailer, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.status, StatusFromCode(tt.code), "code %s", tt.code)
	}
}

func TestWriteError(t *testing.T) {
	t.Run("writes the app error envelope", func(t *testing.T) {
		rec := httptest.NewRecorder()
		WriteError(rec, apperrors.Forbidden("Access denied"))

		assert.Equal(t, http.StatusForbidden, rec.Code)

		var body ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "Access denied", body.Error)
		assert.Equal(t, apperrors.ErrCodeForbidden, body.Code)
	})

	t.Run("wraps unknown errors as internal", func(t *testing.T) {
		rec := httptest.NewRecorder()
		WriteError(rec, errors.New("pq: relation does not exist"))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.NotContains(t, rec.Body.String(), "pq:")
	})

	t.Run("hides collaborator detail on 500s", func(t *testing.T) {
		rec := httptest.NewRecorder()
		WriteError(rec, apperrors.Gateway(errors.New("stripe: invalid api key sk_live_123")))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.NotContains(t, rec.Body.String(), "sk_live_123")

		var body ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "An unexpected error occurred", body.Error)
	})
}
