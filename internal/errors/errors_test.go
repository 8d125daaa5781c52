package errors

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIError(t *testing.T) {
	err := ErrValidation("granularity", "must be one of hourly, daily, weekly, monthly")
	assert.Equal(t, http.StatusBadRequest, err.StatusCode)
	assert.Equal(t, "VALIDATION_FAILED", err.ErrorCode)
	assert.Equal(t, "Request validation failed", err.Error())

	detail, ok := err.Details.(ValidationError)
	require.True(t, ok)
	assert.Equal(t, "granularity", detail.Field)
}

func TestHandleErrorRendersEnvelope(t *testing.T) {
	h := NewErrorHandler(slog.Default())

	req := httptest.NewRequest(http.MethodGet, "/api/datasets/nope", nil)
	rec := httptest.NewRecorder()

	h.HandleError(rec, req, ErrDatasetNotFound)

	assert.Equal(t, http.StatusNotFound, rec.Code)

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Equal(t, "DATASET_NOT_FOUND", body.Error.ErrorCode)
}

func TestHandleErrorMapsUnknownToInternal(t *testing.T) {
	h := NewErrorHandler(slog.Default())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	h.HandleError(rec, req, fmt.Errorf("disk on fire"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "INTERNAL_SERVER_ERROR", body.Error.ErrorCode)
	assert.NotContains(t, rec.Body.String(), "disk on fire")
}
