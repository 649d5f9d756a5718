package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestRespondSuccess(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondSuccess(rec, http.StatusCreated, "Rental request created", map[string]string{"id": "abc"})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	body := decodeEnvelope(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Rental request created", body["message"])
	assert.Equal(t, map[string]any{"id": "abc"}, body["data"])
	assert.NotContains(t, body, "errors")
	assert.NotContains(t, body, "code")
}

func TestRespondErrorWithCodeHidesDevErrors(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondErrorWithCode(rec, http.StatusUnprocessableEntity, ErrCodeValidation, "Validation failed",
		map[string]string{"amount": "is required"}, errors.New("pq: secret detail"))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := decodeEnvelope(t, rec)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, ErrCodeValidation, body["code"])
	assert.Equal(t, map[string]any{"amount": "is required"}, body["errors"])
	assert.NotContains(t, rec.Body.String(), "secret detail")
}

func TestHandleAppError(t *testing.T) {
	t.Run("wrapped app error keeps its status", func(t *testing.T) {
		rec := httptest.NewRecorder()
		appErr := &AppError{StatusCode: http.StatusForbidden, Code: ErrCodeForbidden, Message: "Not yours"}
		HandleAppError(rec, fmt.Errorf("handler: %w", appErr))

		assert.Equal(t, http.StatusForbidden, rec.Code)
		body := decodeEnvelope(t, rec)
		assert.Equal(t, ErrCodeForbidden, body["code"])
		assert.Equal(t, "Not yours", body["message"])
	})

	t.Run("plain error becomes a 500", func(t *testing.T) {
		rec := httptest.NewRecorder()
		HandleAppError(rec, errors.New("boom"))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		body := decodeEnvelope(t, rec)
		assert.Equal(t, ErrCodeInternal, body["code"])
		assert.NotContains(t, rec.Body.String(), "boom")
	})
}

func TestAppErrorUnwrap(t *testing.T) {
	cause := errors.New("duplicate_active_request")
	err := &AppError{StatusCode: http.StatusBadRequest, Code: "duplicate_active_request", Message: "dup", Err: cause}
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "duplicate_active_request", err.Error())

	bare := &AppError{Message: "only message"}
	assert.Equal(t, "only message", bare.Error())
}
