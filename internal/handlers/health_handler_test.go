package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"amount-detection/internal/dto"
	"amount-detection/internal/ocr"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func performHealthCheck(t *testing.T, recognizer ocr.RecognizerInterface) dto.HealthResponse {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := NewHealthCheckHandler(recognizer)
	require.NoError(t, handler.HealthCheck(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var response dto.HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	return response
}

func TestHealthCheck_OCRAvailable(t *testing.T) {
	response := performHealthCheck(t, &stubRecognizer{})

	assert.Equal(t, "healthy", response.Status)
	assert.Equal(t, "amount-detection", response.Service)
	assert.Equal(t, "available", response.OCR)
	assert.False(t, response.Timestamp.IsZero())
}

func TestHealthCheck_OCRMissing(t *testing.T) {
	response := performHealthCheck(t, nil)

	assert.Equal(t, "healthy", response.Status)
	assert.Equal(t, "unavailable", response.OCR)
}
